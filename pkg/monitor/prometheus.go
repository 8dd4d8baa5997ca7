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

package monitor

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ddspipe/ddspipe/pkg/dds"
	"github.com/ddspipe/ddspipe/pkg/metrics"
	"github.com/ddspipe/ddspipe/pkg/private/prom"
)

// Prometheus exports the events as prometheus counters.
type Prometheus struct {
	MsgsReceived    *prometheus.CounterVec
	MsgsLost        *prometheus.CounterVec
	MsgsForwarded   *prometheus.CounterVec
	TypesDiscovered *prometheus.CounterVec
	TypeMismatches  *prometheus.CounterVec
	QoSMismatches   *prometheus.CounterVec
}

// NewPrometheus creates the counters and registers them. Without options they
// are registered on the default registry.
func NewPrometheus(opts ...metrics.Option) *Prometheus {
	f := metrics.ApplyOptions(opts...).Auto()
	topicLabels := []string{prom.LabelTopic, prom.LabelType}
	return &Prometheus{
		MsgsReceived: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ddspipe_msgs_received_total",
				Help: "Total number of samples accepted by the readers.",
			},
			append(topicLabels, prom.LabelParticipant),
		),
		MsgsLost: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ddspipe_msgs_lost_total",
				Help: "Total number of samples known to be lost before reaching a reader.",
			},
			append(topicLabels, prom.LabelParticipant),
		),
		MsgsForwarded: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ddspipe_msgs_forwarded_total",
				Help: "Total number of samples written to a destination participant.",
			},
			append(topicLabels, prom.LabelSrc, prom.LabelDst),
		),
		TypesDiscovered: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ddspipe_types_discovered_total",
				Help: "Total number of distinct data types discovered.",
			},
			[]string{prom.LabelType},
		),
		TypeMismatches: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ddspipe_type_mismatch_total",
				Help: "Total number of topics discovered with a conflicting type.",
			},
			topicLabels,
		),
		QoSMismatches: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ddspipe_qos_mismatch_total",
				Help: "Total number of topics discovered with conflicting QoS.",
			},
			topicLabels,
		),
	}
}

func (p *Prometheus) MsgReceived(topic dds.TopicKey, participant dds.ParticipantID) {
	p.MsgsReceived.WithLabelValues(topic.Name, topic.Type, string(participant)).Inc()
}

func (p *Prometheus) MsgLost(topic dds.TopicKey, participant dds.ParticipantID) {
	p.MsgsLost.WithLabelValues(topic.Name, topic.Type, string(participant)).Inc()
}

func (p *Prometheus) MsgForwarded(topic dds.TopicKey, from, to dds.ParticipantID) {
	p.MsgsForwarded.WithLabelValues(topic.Name, topic.Type, string(from), string(to)).Inc()
}

func (p *Prometheus) TypeDiscovered(typeName string) {
	p.TypesDiscovered.WithLabelValues(typeName).Inc()
}

func (p *Prometheus) TypeMismatch(topic dds.TopicKey) {
	p.TypeMismatches.WithLabelValues(topic.Name, topic.Type).Inc()
}

func (p *Prometheus) QoSMismatch(topic dds.TopicKey) {
	p.QoSMismatches.WithLabelValues(topic.Name, topic.Type).Inc()
}
