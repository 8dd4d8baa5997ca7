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

package pipe_test

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ddspipe/ddspipe/pipe"
	"github.com/ddspipe/ddspipe/pkg/metrics"
	"github.com/ddspipe/ddspipe/pkg/payload"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := pipe.NewMetrics(metrics.WithRegistry(reg))
	pool := &payload.FastPool{Allocations: m.PayloadAllocations}
	pipe.RegisterPayloadStats(pool, metrics.WithRegistry(reg))

	var a, b payload.Payload
	require.True(t, pool.Reserve(4, &a))
	require.True(t, pool.Reserve(4, &b))
	require.NoError(t, pool.Release(&a))

	expected := `
# HELP ddspipe_payload_allocations_total Total number of payload buffers allocated.
# TYPE ddspipe_payload_allocations_total counter
ddspipe_payload_allocations_total 2
# HELP ddspipe_payloads_in_use Number of payloads reserved and not yet released.
# TYPE ddspipe_payloads_in_use gauge
ddspipe_payloads_in_use 1
`
	err := testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"ddspipe_payload_allocations_total", "ddspipe_payloads_in_use")
	assert.NoError(t, err)
	require.NoError(t, pool.Release(&b))
	assert.True(t, pool.IsClean())
}
