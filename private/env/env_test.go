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

package env_test

import (
	"bytes"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ddspipe/ddspipe/private/config"
	"github.com/ddspipe/ddspipe/private/env"
)

func TestGeneralSample(t *testing.T) {
	var sample bytes.Buffer
	var cfg env.General
	cfg.Sample(&sample, nil, config.CtxMap{config.ID: "pipe-1"})
	require.NoError(t, config.Decode(sample.Bytes(), &cfg))
	assert.Equal(t, "pipe-1", cfg.ID)
	assert.Equal(t, "/etc/ddspipe", cfg.ConfigDir)
}

func TestGeneralValidate(t *testing.T) {
	tests := map[string]struct {
		cfg       env.General
		assertErr assert.ErrorAssertionFunc
	}{
		"missing id": {
			cfg:       env.General{},
			assertErr: assert.Error,
		},
		"no config dir": {
			cfg:       env.General{ID: "p"},
			assertErr: assert.NoError,
		},
		"existing dir": {
			cfg:       env.General{ID: "p", ConfigDir: t.TempDir()},
			assertErr: assert.NoError,
		},
		"missing dir": {
			cfg:       env.General{ID: "p", ConfigDir: "/nonexistent/ddspipe"},
			assertErr: assert.Error,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			tc.assertErr(t, tc.cfg.Validate())
		})
	}
}

func TestGeneralPath(t *testing.T) {
	cfg := env.General{ConfigDir: "/etc/ddspipe"}
	assert.Equal(t, "/etc/ddspipe/pipe.yml", cfg.Path("pipe.yml"))
	assert.Equal(t, "/abs/pipe.yml", cfg.Path("/abs/pipe.yml"))
	assert.Equal(t, "", cfg.Path(""))
}

func TestMetricsSample(t *testing.T) {
	var sample bytes.Buffer
	var cfg env.Metrics
	cfg.Sample(&sample, nil, nil)
	require.NoError(t, config.Decode(sample.Bytes(), &cfg))
	assert.Empty(t, cfg.Prometheus)
}

func TestAPISample(t *testing.T) {
	var sample bytes.Buffer
	var cfg env.API
	cfg.Sample(&sample, nil, nil)
	require.NoError(t, config.Decode(sample.Bytes(), &cfg))
	assert.Empty(t, cfg.Addr)
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	promauto.With(reg).NewCounter(prometheus.CounterOpts{
		Name: "ddspipe_test_total",
		Help: "test counter",
	}).Inc()
	srv := httptest.NewServer(env.Handler(reg, reg))
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "ddspipe_test_total 1")
}
