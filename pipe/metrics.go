// Copyright 2020 Anapaya Systems
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

package pipe

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ddspipe/ddspipe/pkg/metrics"
	"github.com/ddspipe/ddspipe/pkg/payload"
	"github.com/ddspipe/ddspipe/pkg/threadpool"
)

// Metrics are the process level metrics of the pipe.
type Metrics struct {
	Threads threadpool.Metrics
	// PayloadAllocations counts the buffers allocated by the payload pool.
	PayloadAllocations metrics.Counter
}

// NewMetrics creates the pipe metrics and registers them. Without options
// they are registered on the default registry.
func NewMetrics(opts ...metrics.Option) *Metrics {
	f := metrics.ApplyOptions(opts...).Auto()
	return &Metrics{
		Threads: threadpool.Metrics{
			Runs: f.NewCounter(prometheus.CounterOpts{
				Name: "ddspipe_thread_pool_runs_total",
				Help: "Total number of tasks run by the transmission workers.",
			}),
			Queued: f.NewGauge(prometheus.GaugeOpts{
				Name: "ddspipe_thread_pool_queued_tasks",
				Help: "Number of tasks waiting for a transmission worker.",
			}),
		},
		PayloadAllocations: f.NewCounter(prometheus.CounterOpts{
			Name: "ddspipe_payload_allocations_total",
			Help: "Total number of payload buffers allocated.",
		}),
	}
}

// RegisterPayloadStats exports the number of payloads currently held by the
// readers and writers of the pool.
func RegisterPayloadStats(pool *payload.FastPool, opts ...metrics.Option) {
	f := metrics.ApplyOptions(opts...).Auto()
	f.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "ddspipe_payloads_in_use",
		Help: "Number of payloads reserved and not yet released.",
	}, func() float64 {
		s := pool.Stats()
		return float64(s.Reserved - s.Released)
	})
}
