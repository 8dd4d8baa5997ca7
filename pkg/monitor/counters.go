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
	"sort"
	"sync"

	"github.com/ddspipe/ddspipe/pkg/dds"
)

// ParticipantCounters are the per participant counters of a topic.
type ParticipantCounters struct {
	Received  uint64 `json:"received"`
	Lost      uint64 `json:"lost"`
	Forwarded uint64 `json:"forwarded"`
}

// TopicCounters are the counters of one topic.
type TopicCounters struct {
	Name         string                                    `json:"name"`
	Type         string                                    `json:"type"`
	TypeMismatch bool                                      `json:"type_mismatch"`
	QoSMismatch  bool                                      `json:"qos_mismatch"`
	Participants map[dds.ParticipantID]ParticipantCounters `json:"participants"`
}

// Snapshot is a copy of the collected counters.
type Snapshot struct {
	Topics          []TopicCounters `json:"topics"`
	TypesDiscovered []string        `json:"types_discovered"`
}

// Counters keeps the events in memory so they can be inspected.
type Counters struct {
	mtx    sync.Mutex
	topics map[dds.TopicKey]*TopicCounters
	types  map[string]struct{}
}

func NewCounters() *Counters {
	return &Counters{
		topics: make(map[dds.TopicKey]*TopicCounters),
		types:  make(map[string]struct{}),
	}
}

func (c *Counters) topic(k dds.TopicKey) *TopicCounters {
	t, ok := c.topics[k]
	if !ok {
		t = &TopicCounters{
			Name:         k.Name,
			Type:         k.Type,
			Participants: make(map[dds.ParticipantID]ParticipantCounters),
		}
		c.topics[k] = t
	}
	return t
}

func (c *Counters) update(k dds.TopicKey, p dds.ParticipantID, f func(*ParticipantCounters)) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	t := c.topic(k)
	pc := t.Participants[p]
	f(&pc)
	t.Participants[p] = pc
}

func (c *Counters) MsgReceived(topic dds.TopicKey, participant dds.ParticipantID) {
	c.update(topic, participant, func(pc *ParticipantCounters) { pc.Received++ })
}

func (c *Counters) MsgLost(topic dds.TopicKey, participant dds.ParticipantID) {
	c.update(topic, participant, func(pc *ParticipantCounters) { pc.Lost++ })
}

// MsgForwarded counts the message on the destination participant.
func (c *Counters) MsgForwarded(topic dds.TopicKey, _, to dds.ParticipantID) {
	c.update(topic, to, func(pc *ParticipantCounters) { pc.Forwarded++ })
}

func (c *Counters) TypeDiscovered(typeName string) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.types[typeName] = struct{}{}
}

func (c *Counters) TypeMismatch(topic dds.TopicKey) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.topic(topic).TypeMismatch = true
}

func (c *Counters) QoSMismatch(topic dds.TopicKey) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.topic(topic).QoSMismatch = true
}

// Snapshot returns a deep copy of the counters, topics sorted by name and
// type.
func (c *Counters) Snapshot() Snapshot {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	s := Snapshot{
		Topics:          make([]TopicCounters, 0, len(c.topics)),
		TypesDiscovered: make([]string, 0, len(c.types)),
	}
	for _, t := range c.topics {
		cp := *t
		cp.Participants = make(map[dds.ParticipantID]ParticipantCounters, len(t.Participants))
		for id, pc := range t.Participants {
			cp.Participants[id] = pc
		}
		s.Topics = append(s.Topics, cp)
	}
	for typ := range c.types {
		s.TypesDiscovered = append(s.TypesDiscovered, typ)
	}
	sort.Slice(s.Topics, func(i, j int) bool {
		if s.Topics[i].Name != s.Topics[j].Name {
			return s.Topics[i].Name < s.Topics[j].Name
		}
		return s.Topics[i].Type < s.Topics[j].Type
	})
	sort.Strings(s.TypesDiscovered)
	return s
}
