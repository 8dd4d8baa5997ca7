// Copyright 2018 ETH Zurich
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

// Package prom contains some utility functions for dealing with prometheus
// metrics.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Namespace is the namespace of all ddspipe metrics.
const Namespace = "ddspipe"

// Common label names.
const (
	LabelTopic       = "topic"
	LabelType        = "type"
	LabelParticipant = "participant"
	// LabelSrc is the label for the participant a sample was read from.
	LabelSrc = "from"
	// LabelDst is the label for the participant a sample was written to.
	LabelDst = "to"
)

// ExportElementID exports the pipe ID as configured in the config file.
func ExportElementID(reg prometheus.Registerer, id string) {
	g := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "elem_id",
			Help:      "The pipe ID from the config file",
		},
		[]string{"cfg"},
	)
	SafeRegister(reg, g).(*prometheus.GaugeVec).WithLabelValues(id).Set(1)
}

// SafeRegister registers c and returns the registered collector. If c was
// already registered the already registered collector is returned. In case of
// any other error this method panics (as MustRegister).
func SafeRegister(reg prometheus.Registerer, c prometheus.Collector) prometheus.Collector {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector
		}
		panic(err)
	}
	return c
}
