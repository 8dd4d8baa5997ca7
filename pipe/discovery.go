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
	"github.com/ddspipe/ddspipe/pkg/private/serrors"
)

// DiscoveryEvent is the kind of change of an endpoint.
type DiscoveryEvent int

const (
	EndpointAdded DiscoveryEvent = iota
	EndpointUpdated
	EndpointErased
)

func (e DiscoveryEvent) String() string {
	switch e {
	case EndpointAdded:
		return "added"
	case EndpointUpdated:
		return "updated"
	case EndpointErased:
		return "erased"
	}
	return "unknown"
}

// DiscoveryCallback is notified of every endpoint change.
type DiscoveryCallback func(event DiscoveryEvent, ep dds.Endpoint)

// DiscoveryDatabase is the registry of the endpoints discovered by all
// participants, keyed by GUID. Callbacks run synchronously in the goroutine
// that changed the database, after the change is applied and without any
// lock held.
type DiscoveryDatabase struct {
	mtx       sync.RWMutex
	endpoints map[dds.GUID]dds.Endpoint
	callbacks []DiscoveryCallback
}

func NewDiscoveryDatabase() *DiscoveryDatabase {
	return &DiscoveryDatabase{endpoints: make(map[dds.GUID]dds.Endpoint)}
}

// Subscribe registers fn for all future changes.
func (db *DiscoveryDatabase) Subscribe(fn DiscoveryCallback) {
	db.mtx.Lock()
	defer db.mtx.Unlock()
	db.callbacks = append(db.callbacks, fn)
}

// AddEndpoint adds a new endpoint. Adding a known GUID is an error.
func (db *DiscoveryDatabase) AddEndpoint(ep dds.Endpoint) error {
	if err := ep.Validate(); err != nil {
		return serrors.Wrap("invalid endpoint", err)
	}
	db.mtx.Lock()
	if _, ok := db.endpoints[ep.GUID]; ok {
		db.mtx.Unlock()
		return serrors.New("endpoint already exists", "guid", ep.GUID)
	}
	db.endpoints[ep.GUID] = ep
	callbacks := db.callbacks
	db.mtx.Unlock()
	notify(callbacks, EndpointAdded, ep)
	return nil
}

// UpdateEndpoint replaces a known endpoint.
func (db *DiscoveryDatabase) UpdateEndpoint(ep dds.Endpoint) error {
	if err := ep.Validate(); err != nil {
		return serrors.Wrap("invalid endpoint", err)
	}
	db.mtx.Lock()
	if _, ok := db.endpoints[ep.GUID]; !ok {
		db.mtx.Unlock()
		return serrors.New("updating unknown endpoint", "guid", ep.GUID)
	}
	db.endpoints[ep.GUID] = ep
	callbacks := db.callbacks
	db.mtx.Unlock()
	notify(callbacks, EndpointUpdated, ep)
	return nil
}

// EraseEndpoint removes a known endpoint. The callbacks receive the last
// version of the endpoint marked inactive.
func (db *DiscoveryDatabase) EraseEndpoint(guid dds.GUID) error {
	db.mtx.Lock()
	ep, ok := db.endpoints[guid]
	if !ok {
		db.mtx.Unlock()
		return serrors.New("erasing unknown endpoint", "guid", guid)
	}
	delete(db.endpoints, guid)
	callbacks := db.callbacks
	db.mtx.Unlock()
	ep.Active = false
	notify(callbacks, EndpointErased, ep)
	return nil
}

// Report records ep as reported by a participant: unknown endpoints are
// added and known ones updated.
func (db *DiscoveryDatabase) Report(ep dds.Endpoint) error {
	if _, ok := db.Get(ep.GUID); ok {
		return db.UpdateEndpoint(ep)
	}
	return db.AddEndpoint(ep)
}

func (db *DiscoveryDatabase) Get(guid dds.GUID) (dds.Endpoint, bool) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	ep, ok := db.endpoints[guid]
	return ep, ok
}

// Endpoints returns all endpoints ordered by GUID.
func (db *DiscoveryDatabase) Endpoints() []dds.Endpoint {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	eps := make([]dds.Endpoint, 0, len(db.endpoints))
	for _, ep := range db.endpoints {
		eps = append(eps, ep)
	}
	sort.Slice(eps, func(i, j int) bool {
		if eps[i].GUID.Prefix != eps[j].GUID.Prefix {
			return eps[i].GUID.Prefix < eps[j].GUID.Prefix
		}
		return eps[i].GUID.Entity < eps[j].GUID.Entity
	})
	return eps
}

// ActiveReaders reports whether participant has an active reader endpoint on
// topic other than except.
func (db *DiscoveryDatabase) ActiveReaders(topic dds.TopicKey, discoverer dds.ParticipantID,
	except dds.GUID) bool {

	db.mtx.RLock()
	defer db.mtx.RUnlock()
	for guid, ep := range db.endpoints {
		if guid == except || !ep.Active || ep.Kind != dds.ReaderEndpoint {
			continue
		}
		if ep.Discoverer == discoverer && ep.Topic.Key() == topic {
			return true
		}
	}
	return false
}

func notify(callbacks []DiscoveryCallback, event DiscoveryEvent, ep dds.Endpoint) {
	for _, cb := range callbacks {
		cb(event, ep)
	}
}
