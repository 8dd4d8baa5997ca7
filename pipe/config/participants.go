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

package config

import (
	"github.com/ddspipe/ddspipe/pipe"
	"github.com/ddspipe/ddspipe/pkg/dds"
	"github.com/ddspipe/ddspipe/pkg/log"
	"github.com/ddspipe/ddspipe/pkg/monitor"
	"github.com/ddspipe/ddspipe/pkg/participant"
	"github.com/ddspipe/ddspipe/pkg/participant/blank"
	"github.com/ddspipe/ddspipe/pkg/participant/echo"
	"github.com/ddspipe/ddspipe/pkg/participant/memory"
	"github.com/ddspipe/ddspipe/pkg/payload"
	"github.com/ddspipe/ddspipe/pkg/private/serrors"
)

// Builder creates the participants of a description.
type Builder struct {
	Pool    payload.Pool
	Monitor monitor.Monitor
	// Domains are the in-process domains by name. Missing domains are
	// created on demand.
	Domains map[string]*memory.Domain
}

// Build creates the participants of d and collects them in a database.
func (b *Builder) Build(d *Description) (*pipe.ParticipantsDatabase, error) {
	db := pipe.NewParticipantsDatabase()
	for _, desc := range d.Participants {
		p, err := b.participant(desc)
		if err != nil {
			return nil, err
		}
		if err := db.Add(p); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// Domain returns the in-process domain with the given name.
func (b *Builder) Domain(name string) *memory.Domain {
	if b.Domains == nil {
		b.Domains = make(map[string]*memory.Domain)
	}
	d, ok := b.Domains[name]
	if !ok {
		d = memory.NewDomain(name)
		b.Domains[name] = d
	}
	return d
}

func (b *Builder) participant(desc ParticipantDesc) (participant.Participant, error) {
	id := dds.ParticipantID(desc.ID)
	qos, err := desc.QoS.TopicQoS()
	if err != nil {
		return nil, serrors.WrapNoStack("invalid participant qos", err, "id", id)
	}
	switch desc.Kind {
	case KindMemory:
		return memory.New(memory.Config{
			ID:       id,
			Repeater: desc.Repeater,
			QoS:      qos,
			Monitor:  b.Monitor,
		}, b.Domain(desc.Domain), b.Pool)
	case KindEcho:
		cfg := echo.Config{ID: id, Data: true, Logger: log.New("participant", id)}
		if desc.Echo != nil {
			cfg.Data = desc.Echo.Data
			cfg.Discovery = desc.Echo.Discovery
			cfg.Verbose = desc.Echo.Verbose
		}
		return echo.New(cfg), nil
	case KindBlank:
		return blank.New(id, desc.Repeater, qos), nil
	default:
		return nil, serrors.New("unknown participant kind", "id", id, "kind", desc.Kind)
	}
}
