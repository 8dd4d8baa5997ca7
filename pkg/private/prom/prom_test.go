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

package prom_test

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ddspipe/ddspipe/pkg/private/prom"
)

func TestExportElementID(t *testing.T) {
	reg := prometheus.NewRegistry()
	prom.ExportElementID(reg, "pipe-a")
	// Exporting twice reuses the registered collector.
	prom.ExportElementID(reg, "pipe-a")

	expected := `
# HELP ddspipe_elem_id The pipe ID from the config file
# TYPE ddspipe_elem_id gauge
ddspipe_elem_id{cfg="pipe-a"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected)))
}

func TestSafeRegisterPanicsOnConflict(t *testing.T) {
	reg := prometheus.NewRegistry()
	prom.SafeRegister(reg, prometheus.NewCounter(prometheus.CounterOpts{Name: "x", Help: "a"}))
	assert.Panics(t, func() {
		prom.SafeRegister(reg, prometheus.NewGauge(prometheus.GaugeOpts{Name: "x", Help: "b"}))
	})
}
