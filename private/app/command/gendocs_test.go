// Copyright 2026 The ddspipe Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package command_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ddspipe/ddspipe/private/app/command"
)

func TestGendocs(t *testing.T) {
	root := &cobra.Command{Use: "ddspipe", Short: "DDS Pipe"}
	root.AddCommand(
		&cobra.Command{Use: "routes", Short: "Display routes", Run: func(*cobra.Command, []string) {}},
		command.NewGendocs(),
	)
	dir := filepath.Join(t.TempDir(), "docs")
	root.SetArgs([]string{"gendocs", dir})
	require.NoError(t, root.Execute())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"ddspipe.md", "ddspipe_routes.md"}, names)

	raw, err := os.ReadFile(filepath.Join(dir, "ddspipe_routes.md"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Display routes")
	assert.NotContains(t, string(raw), "Auto generated")
}
