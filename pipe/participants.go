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
	"sort"
	"sync"

	"github.com/ddspipe/ddspipe/pkg/dds"
	"github.com/ddspipe/ddspipe/pkg/participant"
	"github.com/ddspipe/ddspipe/pkg/private/serrors"
	"github.com/ddspipe/ddspipe/pkg/routes"
)

// ParticipantsDatabase holds the participants of a pipe. It is safe for
// concurrent use.
type ParticipantsDatabase struct {
	mtx          sync.RWMutex
	participants map[dds.ParticipantID]participant.Participant
}

func NewParticipantsDatabase() *ParticipantsDatabase {
	return &ParticipantsDatabase{
		participants: make(map[dds.ParticipantID]participant.Participant),
	}
}

// Add adds p. Participants with an empty or already known id are rejected.
func (db *ParticipantsDatabase) Add(p participant.Participant) error {
	id := p.ID()
	if id == "" {
		return serrors.New("participant id is empty")
	}
	db.mtx.Lock()
	defer db.mtx.Unlock()
	if _, ok := db.participants[id]; ok {
		return serrors.New("participant already exists", "id", id)
	}
	db.participants[id] = p
	return nil
}

func (db *ParticipantsDatabase) Get(id dds.ParticipantID) (participant.Participant, bool) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	p, ok := db.participants[id]
	return p, ok
}

// IDs returns the participant ids in ascending order.
func (db *ParticipantsDatabase) IDs() []dds.ParticipantID {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	return sortedIDs(db.participants)
}

// All returns the participants ordered by id.
func (db *ParticipantsDatabase) All() []participant.Participant {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	all := make([]participant.Participant, 0, len(db.participants))
	for _, id := range sortedIDs(db.participants) {
		all = append(all, db.participants[id])
	}
	return all
}

// Repeaters maps every participant to whether it is a repeater.
func (db *ParticipantsDatabase) Repeaters() routes.Participants {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	r := make(routes.Participants, len(db.participants))
	for id, p := range db.participants {
		r[id] = p.IsRepeater()
	}
	return r
}

func (db *ParticipantsDatabase) Len() int {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	return len(db.participants)
}

func sortParticipantIDs(ids []dds.ParticipantID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
