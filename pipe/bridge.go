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
	"sync"

	"github.com/ddspipe/ddspipe/pkg/dds"
	"github.com/ddspipe/ddspipe/pkg/log"
	"github.com/ddspipe/ddspipe/pkg/monitor"
	"github.com/ddspipe/ddspipe/pkg/participant"
	"github.com/ddspipe/ddspipe/pkg/private/serrors"
	"github.com/ddspipe/ddspipe/pkg/routes"
	"github.com/ddspipe/ddspipe/pkg/threadpool"
)

// BridgeConfig configures a Bridge.
type BridgeConfig struct {
	Topic        dds.Topic
	Participants *ParticipantsDatabase
	Routes       routes.Configuration
	Pool         *threadpool.Pool
	Monitor      monitor.Monitor
	Logger       log.Logger
	// ManageEntities creates writers only on demand through CreateWriter.
	// Otherwise every track the routes allow is created with the bridge.
	ManageEntities bool
}

// Bridge owns the tracks of one topic. Each participant whose reader
// forwards the topic has one track. Writers are shared: each participant has
// at most one writer on the topic, used by every track forwarding to it.
type Bridge struct {
	topic        dds.Topic
	participants *ParticipantsDatabase
	routes       routes.Configuration
	pool         *threadpool.Pool
	monitor      monitor.Monitor
	logger       log.Logger

	mtx     sync.Mutex
	enabled bool
	tracks  map[dds.ParticipantID]*Track
	writers map[dds.ParticipantID]participant.Writer
}

// NewBridge creates a disabled bridge. Unless cfg.ManageEntities is set,
// all tracks are created immediately. Creation fails with an error wrapping
// participant.ErrInitialization if an endpoint cannot be created; endpoints
// created up to that point are deleted again.
func NewBridge(cfg BridgeConfig) (*Bridge, error) {
	if cfg.Participants == nil || cfg.Pool == nil {
		panic("bridge needs participants and a thread pool")
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New("topic", cfg.Topic.Key())
	}
	b := &Bridge{
		topic:        cfg.Topic,
		participants: cfg.Participants,
		routes:       cfg.Routes,
		pool:         cfg.Pool,
		monitor:      monitor.OrNoop(cfg.Monitor),
		logger:       cfg.Logger,
		tracks:       make(map[dds.ParticipantID]*Track),
		writers:      make(map[dds.ParticipantID]participant.Writer),
	}
	if cfg.ManageEntities {
		b.logger.Debug("Bridge created", "tracks", 0)
		return b, nil
	}

	b.mtx.Lock()
	defer b.mtx.Unlock()
	table := b.routes.ReadersToWriters(b.participants.Repeaters())
	for _, source := range sortedIDs(table) {
		writers := make(map[dds.ParticipantID]participant.Writer, len(table[source]))
		for _, dst := range table[source] {
			w, err := b.writerLocked(dst)
			if err != nil {
				b.closeLocked()
				return nil, err
			}
			writers[dst] = w
		}
		if err := b.createTrackLocked(source, writers); err != nil {
			b.closeLocked()
			return nil, err
		}
	}
	b.logger.Debug("Bridge created", "tracks", len(b.tracks))
	return b, nil
}

// Topic returns the bridged topic.
func (b *Bridge) Topic() dds.Topic {
	return b.topic
}

// CreateWriter makes the writer of discoverer receive the topic from every
// participant the routes allow. Tracks are created as needed.
func (b *Bridge) CreateWriter(discoverer dds.ParticipantID) error {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	sources := b.routes.ReadersForWriter(discoverer, b.participants.Repeaters())
	if len(sources) == 0 {
		return nil
	}
	_, existed := b.writers[discoverer]
	w, err := b.writerLocked(discoverer)
	if err != nil {
		return err
	}
	var added, created []dds.ParticipantID
	for _, source := range sources {
		if t, ok := b.tracks[source]; ok {
			if !t.HasWriter(discoverer) {
				t.AddWriter(discoverer, w)
				added = append(added, source)
			}
			continue
		}
		err := b.createTrackLocked(source, map[dds.ParticipantID]participant.Writer{discoverer: w})
		if err != nil {
			b.rollbackWriterLocked(discoverer, existed, added, created)
			return err
		}
		created = append(created, source)
	}
	return nil
}

// rollbackWriterLocked undoes a failed CreateWriter. The tracks it created are
// deleted, the writer is removed from the tracks it was added to, and a
// writer created by the call is deleted.
func (b *Bridge) rollbackWriterLocked(discoverer dds.ParticipantID, existed bool,
	added, created []dds.ParticipantID) {

	for _, source := range created {
		b.deleteTrackLocked(source, b.tracks[source])
	}
	for _, source := range added {
		t := b.tracks[source]
		if !t.RemoveWriter(discoverer) {
			b.deleteTrackLocked(source, t)
		}
	}
	if existed {
		return
	}
	w := b.writers[discoverer]
	delete(b.writers, discoverer)
	if p, ok := b.participants.Get(discoverer); ok {
		w.Disable()
		p.DeleteWriter(w)
	}
}

// RemoveWriter removes the writer of discoverer from every track and deletes
// it. Tracks left without writers are removed along with their reader.
func (b *Bridge) RemoveWriter(discoverer dds.ParticipantID) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	w, ok := b.writers[discoverer]
	if !ok {
		return
	}
	for _, source := range sortedIDs(b.tracks) {
		t := b.tracks[source]
		if t.RemoveWriter(discoverer) {
			continue
		}
		b.deleteTrackLocked(source, t)
	}
	delete(b.writers, discoverer)
	if p, ok := b.participants.Get(discoverer); ok {
		w.Disable()
		p.DeleteWriter(w)
	}
	b.logger.Debug("Writer removed", "participant", discoverer)
}

// Enable enables every track.
func (b *Bridge) Enable() {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	if b.enabled {
		return
	}
	b.enabled = true
	for _, source := range sortedIDs(b.tracks) {
		b.tracks[source].Enable()
	}
	b.logger.Debug("Bridge enabled")
}

// Disable disables every track and then the writers.
func (b *Bridge) Disable() {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	b.disableLocked()
}

func (b *Bridge) disableLocked() {
	if !b.enabled {
		return
	}
	b.enabled = false
	for _, source := range sortedIDs(b.tracks) {
		b.tracks[source].Disable()
	}
	for _, w := range b.writers {
		w.Disable()
	}
	b.logger.Debug("Bridge disabled")
}

// Enabled reports whether the bridge is enabled.
func (b *Bridge) Enabled() bool {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	return b.enabled
}

// Close disables the bridge and deletes all its endpoints.
func (b *Bridge) Close() {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	b.closeLocked()
}

func (b *Bridge) closeLocked() {
	b.disableLocked()
	for _, source := range sortedIDs(b.tracks) {
		b.deleteTrackLocked(source, b.tracks[source])
	}
	for _, id := range sortedIDs(b.writers) {
		if p, ok := b.participants.Get(id); ok {
			p.DeleteWriter(b.writers[id])
		}
		delete(b.writers, id)
	}
}

// Tracks maps each reading participant to the participants it forwards to.
func (b *Bridge) Tracks() map[dds.ParticipantID][]dds.ParticipantID {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	tracks := make(map[dds.ParticipantID][]dds.ParticipantID, len(b.tracks))
	for source, t := range b.tracks {
		writers := t.Writers()
		sortParticipantIDs(writers)
		tracks[source] = writers
	}
	return tracks
}

// writerLocked returns the writer of id, creating it if necessary.
func (b *Bridge) writerLocked(id dds.ParticipantID) (participant.Writer, error) {
	if w, ok := b.writers[id]; ok {
		return w, nil
	}
	p, ok := b.participants.Get(id)
	if !ok {
		return nil, participant.InitializationError(
			serrors.New("unknown participant"), "participant", id, "topic", b.topic.Key())
	}
	w, err := p.CreateWriter(b.endpointTopic(p))
	if err != nil {
		return nil, participant.InitializationError(err, "participant", id,
			"topic", b.topic.Key(), "endpoint", "writer")
	}
	b.writers[id] = w
	return w, nil
}

func (b *Bridge) createTrackLocked(source dds.ParticipantID,
	writers map[dds.ParticipantID]participant.Writer) error {

	p, ok := b.participants.Get(source)
	if !ok {
		return participant.InitializationError(
			serrors.New("unknown participant"), "participant", source, "topic", b.topic.Key())
	}
	r, err := p.CreateReader(b.endpointTopic(p))
	if err != nil {
		return participant.InitializationError(err, "participant", source,
			"topic", b.topic.Key(), "endpoint", "reader")
	}
	t, err := NewTrack(TrackConfig{
		Topic:   b.topic,
		Source:  source,
		Reader:  r,
		Writers: writers,
		Pool:    b.pool,
		Monitor: b.monitor,
		Logger:  b.logger.New("source", source),
	})
	if err != nil {
		p.DeleteReader(r)
		return participant.InitializationError(err, "participant", source, "topic", b.topic.Key())
	}
	b.tracks[source] = t
	if b.enabled {
		t.Enable()
	}
	return nil
}

func (b *Bridge) deleteTrackLocked(source dds.ParticipantID, t *Track) {
	t.Close()
	if p, ok := b.participants.Get(source); ok {
		p.DeleteReader(t.Reader())
	}
	delete(b.tracks, source)
}

// endpointTopic is the topic with the admission settings the topic leaves
// unset taken from the participant.
func (b *Bridge) endpointTopic(p participant.Participant) dds.Topic {
	t := b.topic
	t.QoS = t.QoS.WithAdmissionDefaults(p.TopicQoS())
	return t
}
