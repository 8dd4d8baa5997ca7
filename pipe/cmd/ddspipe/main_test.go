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

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ddspipe/ddspipe/pipe"
	"github.com/ddspipe/ddspipe/pipe/config"
	"github.com/ddspipe/ddspipe/pkg/monitor"
	"github.com/ddspipe/ddspipe/pkg/payload"
	libconfig "github.com/ddspipe/ddspipe/private/config"
)

const baseDescription = `
participants:
  - {id: a, kind: blank}
  - {id: b, kind: blank}
builtin_topics:
  - {name: rt/chatter, type: String}
`

const blockingDescription = baseDescription + `
blocklist:
  - {name: "rt/*"}
`

func writeFile(t *testing.T, file, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(file, []byte(content), 0o644))
}

func TestReload(t *testing.T) {
	dir := t.TempDir()
	globalCfg = config.Config{}
	globalCfg.General.ConfigDir = dir
	globalCfg.InitDefaults()
	file := filepath.Join(dir, config.DefaultDescriptionFile)
	require.Equal(t, file, globalCfg.DescriptionFile())
	writeFile(t, file, baseDescription)

	desc, err := config.LoadDescription(file)
	require.NoError(t, err)
	digest, err := libconfig.Digest(desc)
	require.NoError(t, err)

	pool := &payload.FastPool{}
	participants, err := (&config.Builder{Pool: pool}).Build(desc)
	require.NoError(t, err)
	p, err := newPipe(desc, participants, pool, &pipe.Metrics{}, monitor.Noop{})
	require.NoError(t, err)
	defer p.Close()
	p.Enable()

	allowed := func() bool {
		topics := p.Topics()
		require.Len(t, topics, 1)
		return topics[0].Allowed && topics[0].Enabled
	}
	assert.True(t, allowed())

	t.Run("unchanged", func(t *testing.T) {
		assert.Equal(t, digest, reload(p, digest))
	})
	t.Run("blocked", func(t *testing.T) {
		writeFile(t, file, blockingDescription)
		next := reload(p, digest)
		assert.NotEqual(t, digest, next)
		assert.False(t, allowed())
		digest = next
	})
	t.Run("invalid description keeps the current one", func(t *testing.T) {
		writeFile(t, file, "participants: [")
		assert.Equal(t, digest, reload(p, digest))
		assert.False(t, allowed())
	})
	t.Run("allowed again", func(t *testing.T) {
		writeFile(t, file, baseDescription)
		digest = reload(p, digest)
		assert.True(t, allowed())
	})
}
