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

// Package monitor collects the events the pipe reports while forwarding:
// received, lost and forwarded messages, discovered types and topic
// mismatches.
//
// A Monitor is passed explicitly to every component that reports. Reporting
// never blocks and never fails.
package monitor

import (
	"github.com/ddspipe/ddspipe/pkg/dds"
)

// Monitor receives pipe events.
type Monitor interface {
	// MsgReceived is reported for every sample a reader accepts.
	MsgReceived(topic dds.TopicKey, participant dds.ParticipantID)
	// MsgLost is reported when a reader knows that samples were dropped.
	MsgLost(topic dds.TopicKey, participant dds.ParticipantID)
	// MsgForwarded is reported for every successful write of a sample.
	MsgForwarded(topic dds.TopicKey, from, to dds.ParticipantID)
	// TypeDiscovered is reported the first time a type name is seen.
	TypeDiscovered(typeName string)
	// TypeMismatch is reported when a topic name is seen with another type.
	TypeMismatch(topic dds.TopicKey)
	// QoSMismatch is reported when a topic is seen with different QoS.
	QoSMismatch(topic dds.TopicKey)
}

// Noop discards all events.
type Noop struct{}

func (Noop) MsgReceived(dds.TopicKey, dds.ParticipantID) {}
func (Noop) MsgLost(dds.TopicKey, dds.ParticipantID) {}
func (Noop) MsgForwarded(dds.TopicKey, dds.ParticipantID, dds.ParticipantID) {}
func (Noop) TypeDiscovered(string) {}
func (Noop) TypeMismatch(dds.TopicKey) {}
func (Noop) QoSMismatch(dds.TopicKey) {}

// Multi fans every event out to all monitors.
type Multi []Monitor

func (m Multi) MsgReceived(topic dds.TopicKey, participant dds.ParticipantID) {
	for _, mon := range m {
		mon.MsgReceived(topic, participant)
	}
}

func (m Multi) MsgLost(topic dds.TopicKey, participant dds.ParticipantID) {
	for _, mon := range m {
		mon.MsgLost(topic, participant)
	}
}

func (m Multi) MsgForwarded(topic dds.TopicKey, from, to dds.ParticipantID) {
	for _, mon := range m {
		mon.MsgForwarded(topic, from, to)
	}
}

func (m Multi) TypeDiscovered(typeName string) {
	for _, mon := range m {
		mon.TypeDiscovered(typeName)
	}
}

func (m Multi) TypeMismatch(topic dds.TopicKey) {
	for _, mon := range m {
		mon.TypeMismatch(topic)
	}
}

func (m Multi) QoSMismatch(topic dds.TopicKey) {
	for _, mon := range m {
		mon.QoSMismatch(topic)
	}
}

// OrNoop returns m, or Noop if m is nil.
func OrNoop(m Monitor) Monitor {
	if m == nil {
		return Noop{}
	}
	return m
}
