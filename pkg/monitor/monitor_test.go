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

package monitor_test

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ddspipe/ddspipe/pkg/dds"
	"github.com/ddspipe/ddspipe/pkg/metrics"
	"github.com/ddspipe/ddspipe/pkg/monitor"
)

var (
	chatter = dds.TopicKey{Name: "chatter", Type: "String"}
	point   = dds.TopicKey{Name: "point", Type: "Point"}
)

func report(m monitor.Monitor) {
	m.TypeDiscovered("String")
	m.TypeDiscovered("Point")
	m.MsgReceived(chatter, "P1")
	m.MsgReceived(chatter, "P1")
	m.MsgLost(chatter, "P1")
	m.MsgForwarded(chatter, "P1", "P2")
	m.MsgForwarded(chatter, "P1", "P3")
	m.TypeMismatch(point)
	m.QoSMismatch(chatter)
}

func TestPrometheus(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := monitor.NewPrometheus(metrics.WithRegistry(reg))
	report(m)

	assert.Equal(t, float64(2),
		testutil.ToFloat64(m.MsgsReceived.WithLabelValues("chatter", "String", "P1")))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(m.MsgsForwarded.WithLabelValues("chatter", "String", "P1", "P3")))

	expected := `
# HELP ddspipe_type_mismatch_total Total number of topics discovered with a conflicting type.
# TYPE ddspipe_type_mismatch_total counter
ddspipe_type_mismatch_total{topic="point",type="Point"} 1
# HELP ddspipe_types_discovered_total Total number of distinct data types discovered.
# TYPE ddspipe_types_discovered_total counter
ddspipe_types_discovered_total{type="Point"} 1
ddspipe_types_discovered_total{type="String"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"ddspipe_type_mismatch_total", "ddspipe_types_discovered_total"))
}

func TestCounters(t *testing.T) {
	c := monitor.NewCounters()
	report(c)
	s := c.Snapshot()

	assert.Equal(t, []string{"Point", "String"}, s.TypesDiscovered)
	require.Len(t, s.Topics, 2)
	assert.Equal(t, "chatter", s.Topics[0].Name)
	assert.True(t, s.Topics[0].QoSMismatch)
	assert.Equal(t, monitor.ParticipantCounters{Received: 2, Lost: 1},
		s.Topics[0].Participants["P1"])
	assert.Equal(t, uint64(1), s.Topics[0].Participants["P2"].Forwarded)
	assert.True(t, s.Topics[1].TypeMismatch)

	// The snapshot is a copy.
	s.Topics[0].Participants["P1"] = monitor.ParticipantCounters{}
	assert.Equal(t, uint64(2), c.Snapshot().Topics[0].Participants["P1"].Received)
}

func TestMulti(t *testing.T) {
	a, b := monitor.NewCounters(), monitor.NewCounters()
	report(monitor.Multi{a, b, monitor.Noop{}})
	assert.Equal(t, a.Snapshot(), b.Snapshot())
	assert.Len(t, a.Snapshot().Topics, 2)
}

func TestOrNoop(t *testing.T) {
	assert.Equal(t, monitor.Noop{}, monitor.OrNoop(nil))
	c := monitor.NewCounters()
	assert.Equal(t, monitor.Monitor(c), monitor.OrNoop(c))
}
