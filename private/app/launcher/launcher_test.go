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

package launcher

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ddspipe/ddspipe/pkg/log"
	"github.com/ddspipe/ddspipe/private/config"
	"github.com/ddspipe/ddspipe/private/env"
)

type testConfig struct {
	General env.General `toml:"general,omitempty"`
	Logging log.Config  `toml:"log,omitempty"`
}

func (c *testConfig) InitDefaults() {
	config.InitAll(&c.General, &c.Logging)
}

func (c *testConfig) Validate() error {
	return config.ValidateAll(&c.General, &c.Logging)
}

func (c *testConfig) Sample(dst io.Writer, path config.Path, ctx config.CtxMap) {
	config.WriteSample(dst, path, ctx, &c.General, &c.Logging)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "pipe.toml")
	require.NoError(t, os.WriteFile(file, []byte(content), 0o600))
	return file
}

func TestApplicationRunsMain(t *testing.T) {
	file := writeConfig(t, `
[general]
id = "pipe-test"

[log.console]
level = "debug"
`)
	var cfg testConfig
	var called bool
	a := &Application{
		TOMLConfig: &cfg,
		ShortName:  "DDS Pipe",
		Main: func(ctx context.Context) error {
			called = true
			assert.NotNil(t, ctx)
			return nil
		},
	}
	cmd := a.command("ddspipe", "DDS Pipe")
	cmd.SetArgs([]string{"--config", file})
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.True(t, called)
	assert.Equal(t, "pipe-test", cfg.General.ID)
	assert.Equal(t, "debug", cfg.Logging.Console.Level)
	assert.Equal(t, "human", cfg.Logging.Console.Format)
}

func TestApplicationMainError(t *testing.T) {
	file := writeConfig(t, `
[general]
id = "pipe-test"
`)
	boom := errors.New("boom")
	a := &Application{
		TOMLConfig: &testConfig{},
		Main:       func(context.Context) error { return boom },
	}
	cmd := a.command("ddspipe", "DDS Pipe")
	cmd.SetArgs([]string{"--config", file})
	assert.ErrorIs(t, cmd.ExecuteContext(context.Background()), boom)
}

func TestApplicationInvalidConfig(t *testing.T) {
	file := writeConfig(t, `
[general]
id = ""
`)
	a := &Application{
		TOMLConfig: &testConfig{},
		Main: func(context.Context) error {
			t.Fatal("main must not run")
			return nil
		},
	}
	cmd := a.command("ddspipe", "DDS Pipe")
	cmd.SetArgs([]string{"--config", file})
	assert.Error(t, cmd.ExecuteContext(context.Background()))
}

func TestApplicationMissingConfigFlag(t *testing.T) {
	a := &Application{TOMLConfig: &testConfig{}}
	cmd := a.command("ddspipe", "DDS Pipe")
	cmd.SetArgs(nil)
	assert.Error(t, cmd.ExecuteContext(context.Background()))
}

func TestSampleConfig(t *testing.T) {
	a := &Application{TOMLConfig: &testConfig{}}
	cmd := a.command("ddspipe", "DDS Pipe")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"sample", "config"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	var decoded testConfig
	require.NoError(t, config.Decode(out.Bytes(), &decoded))
	assert.Equal(t, "ddspipe", decoded.General.ID)
	assert.Equal(t, log.DefaultConsoleLevel, decoded.Logging.Console.Level)
}
