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

// Package routes resolves which participants forward a topic to which.
//
// A Configuration maps a source participant to the set of participants it
// forwards to. A source without an entry forwards to every participant.
// A participant never forwards to itself unless it is a repeater.
package routes

import (
	"errors"
	"sort"

	"github.com/ddspipe/ddspipe/pkg/dds"
	"github.com/ddspipe/ddspipe/pkg/log"
	"github.com/ddspipe/ddspipe/pkg/private/serrors"
)

var (
	// ErrUnknownParticipant is returned when a route refers to a participant
	// that does not exist.
	ErrUnknownParticipant = errors.New("unknown participant")
	// ErrSelfRoute is returned when a participant that is not a repeater
	// routes to itself.
	ErrSelfRoute = errors.New("self route of non repeater participant")
)

// Participants maps every known participant to whether it is a repeater.
type Participants map[dds.ParticipantID]bool

// IDs returns the participant ids in ascending order.
func (p Participants) IDs() []dds.ParticipantID {
	ids := make([]dds.ParticipantID, 0, len(p))
	for id := range p {
		ids = append(ids, id)
	}
	sortIDs(ids)
	return ids
}

// Set is a set of participant ids.
type Set map[dds.ParticipantID]struct{}

// NewSet creates a set containing ids.
func NewSet(ids ...dds.ParticipantID) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s Set) Contains(id dds.ParticipantID) bool {
	_, ok := s[id]
	return ok
}

// Configuration maps source participants to their destinations.
type Configuration map[dds.ParticipantID]Set

// ReadersForWriter returns the participants whose readers must forward to
// the writer of discoverer. The result is sorted.
func (c Configuration) ReadersForWriter(discoverer dds.ParticipantID,
	participants Participants) []dds.ParticipantID {

	var sources []dds.ParticipantID
	for source, repeater := range participants {
		if dst, ok := c[source]; ok && !dst.Contains(discoverer) {
			continue
		}
		if source == discoverer && !repeater {
			continue
		}
		sources = append(sources, source)
	}
	sortIDs(sources)
	return sources
}

// WritersOfReader returns the participants the reader of source forwards to.
// The result is sorted.
func (c Configuration) WritersOfReader(source dds.ParticipantID,
	participants Participants) []dds.ParticipantID {

	repeater, ok := participants[source]
	if !ok {
		return nil
	}
	dst, explicit := c[source]
	var writers []dds.ParticipantID
	for id := range participants {
		if explicit && !dst.Contains(id) {
			continue
		}
		if id == source && !repeater {
			continue
		}
		writers = append(writers, id)
	}
	sortIDs(writers)
	return writers
}

// ReadersToWriters resolves the complete routing table: every participant
// mapped to the participants its reader forwards to. Sources that forward to
// nobody are omitted.
func (c Configuration) ReadersToWriters(
	participants Participants) map[dds.ParticipantID][]dds.ParticipantID {

	table := make(map[dds.ParticipantID][]dds.ParticipantID, len(participants))
	for source := range participants {
		if writers := c.WritersOfReader(source, participants); len(writers) > 0 {
			table[source] = writers
		}
	}
	return table
}

// Validate checks the configuration against the known participants. Every
// referenced participant must exist and only repeaters may route to
// themselves. A repeater with an explicit route that omits itself is valid
// but logged, since it will not relay back into its own data space.
func (c Configuration) Validate(participants Participants) error {
	var errs serrors.List
	for _, source := range sortedSources(c) {
		repeater, ok := participants[source]
		if !ok {
			errs = append(errs, serrors.JoinNoStack(ErrUnknownParticipant, nil,
				"participant", source, "role", "source"))
			continue
		}
		dst := c[source]
		for _, id := range sortedSet(dst) {
			if _, ok := participants[id]; !ok {
				errs = append(errs, serrors.JoinNoStack(ErrUnknownParticipant, nil,
					"participant", id, "role", "destination", "source", source))
			}
		}
		if dst.Contains(source) && !repeater {
			errs = append(errs, serrors.JoinNoStack(ErrSelfRoute, nil, "participant", source))
		}
		if repeater && !dst.Contains(source) {
			log.Info("Repeater participant omits itself from its routes, warning: "+
				"it will not relay data back to its own data space", "participant", source)
		}
	}
	return errs.ToError()
}

// TopicConfiguration holds routes that apply to single topics only.
type TopicConfiguration map[dds.TopicKey]Configuration

// For returns the routes of topic, which are the topic specific ones if any
// exist and generic otherwise.
func (t TopicConfiguration) For(topic dds.TopicKey, generic Configuration) Configuration {
	if c, ok := t[topic]; ok {
		return c
	}
	return generic
}

// Validate validates the routes of every topic.
func (t TopicConfiguration) Validate(participants Participants) error {
	keys := make([]dds.TopicKey, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Name != keys[j].Name {
			return keys[i].Name < keys[j].Name
		}
		return keys[i].Type < keys[j].Type
	})
	var errs serrors.List
	for _, k := range keys {
		if err := t[k].Validate(participants); err != nil {
			errs = append(errs, serrors.WrapNoStack("invalid topic routes", err, "topic", k))
		}
	}
	return errs.ToError()
}

func sortIDs(ids []dds.ParticipantID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

func sortedSources(c Configuration) []dds.ParticipantID {
	ids := make([]dds.ParticipantID, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sortIDs(ids)
	return ids
}

func sortedSet(s Set) []dds.ParticipantID {
	ids := make([]dds.ParticipantID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sortIDs(ids)
	return ids
}
