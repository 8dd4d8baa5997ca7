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

// Package pipe forwards the data of distributed topics between
// participants.
//
// The Pipe learns about topics from the endpoints its participants discover.
// For every allowed topic it creates a Bridge, which owns one Track per
// reading participant. Tracks move samples from their reader to the writers
// of the participants the routes allow.
package pipe

import (
	"reflect"
	"sort"
	"sync"

	"github.com/ddspipe/ddspipe/pkg/dds"
	"github.com/ddspipe/ddspipe/pkg/log"
	"github.com/ddspipe/ddspipe/pkg/monitor"
	"github.com/ddspipe/ddspipe/pkg/participant"
	"github.com/ddspipe/ddspipe/pkg/payload"
	"github.com/ddspipe/ddspipe/pkg/private/serrors"
	"github.com/ddspipe/ddspipe/pkg/routes"
	"github.com/ddspipe/ddspipe/pkg/threadpool"
)

// DefaultThreads is the number of transmission workers if none is
// configured.
const DefaultThreads = 12

// QoSRule overrides the admission settings of the topics matching Filter.
type QoSRule struct {
	Filter dds.TopicFilter
	QoS    dds.TopicQoS
}

// Config configures a Pipe.
type Config struct {
	// AllowedTopics decides which topics are bridged. Nil allows all.
	AllowedTopics *dds.AllowedTopicList
	Routes        routes.Configuration
	TopicRoutes   routes.TopicConfiguration
	// TopicQoS is applied in order; the first matching rule wins.
	TopicQoS []QoSRule
	// BuiltinTopics are bridged from the start, without being discovered.
	BuiltinTopics []dds.Topic
	// RemoveUnusedEntities creates the writers of a participant only while
	// it has readers on the topic.
	RemoveUnusedEntities bool
	// MaxHistoryDepth caps the history depth of every topic. Zero disables
	// the cap.
	MaxHistoryDepth uint32
	Threads         int
	ThreadMetrics   threadpool.Metrics
	Monitor         monitor.Monitor
	// Payloads is the pool the participants reserve from. If set, it is
	// checked for leaked payloads on Close.
	Payloads payload.Pool
	Logger   log.Logger
}

// Reload is the part of the configuration that can change at runtime.
type Reload struct {
	AllowedTopics *dds.AllowedTopicList
	Routes        routes.Configuration
	TopicRoutes   routes.TopicConfiguration
}

type discoveryEvent struct {
	event DiscoveryEvent
	ep    dds.Endpoint
}

// Pipe is the forwarding service. It starts disabled.
type Pipe struct {
	cfg          Config
	participants *ParticipantsDatabase
	discovery    *DiscoveryDatabase
	threads      *threadpool.Pool
	monitor      monitor.Monitor
	logger       log.Logger

	eventsTask threadpool.TaskID
	eventsMtx  sync.Mutex
	events     []discoveryEvent
	stops      []func()

	mtx         sync.Mutex
	enabled     bool
	closed      bool
	allowed     *dds.AllowedTopicList
	routes      routes.Configuration
	topicRoutes routes.TopicConfiguration
	topics      map[dds.TopicKey]dds.Topic
	bridges     map[dds.TopicKey]*Bridge
	types       map[string]struct{}
	topicTypes  map[string]map[string]struct{}
}

// New creates a pipe over the participants and starts listening to the
// discovery database. Participants implementing participant.Discoverer
// report their findings into the database.
func New(cfg Config, participants *ParticipantsDatabase,
	discovery *DiscoveryDatabase) (*Pipe, error) {

	if participants == nil || discovery == nil {
		panic("pipe needs participants and discovery databases")
	}
	if participants.Len() == 0 {
		return nil, serrors.New("pipe without participants")
	}
	repeaters := participants.Repeaters()
	if err := cfg.Routes.Validate(repeaters); err != nil {
		return nil, serrors.Wrap("invalid routes", err)
	}
	if err := cfg.TopicRoutes.Validate(repeaters); err != nil {
		return nil, serrors.Wrap("invalid topic routes", err)
	}
	if cfg.Threads <= 0 {
		cfg.Threads = DefaultThreads
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New("component", "pipe")
	}
	p := &Pipe{
		cfg:          cfg,
		participants: participants,
		discovery:    discovery,
		threads:      threadpool.New(cfg.Threads, cfg.ThreadMetrics),
		monitor:      monitor.OrNoop(cfg.Monitor),
		logger:       cfg.Logger,
		allowed:      cfg.AllowedTopics,
		routes:       cfg.Routes,
		topicRoutes:  cfg.TopicRoutes,
		topics:       make(map[dds.TopicKey]dds.Topic),
		bridges:      make(map[dds.TopicKey]*Bridge),
		types:        make(map[string]struct{}),
		topicTypes:   make(map[string]map[string]struct{}),
	}
	p.eventsTask = p.threads.NewTaskID()
	if err := p.threads.Slot(p.eventsTask, p.processEvents); err != nil {
		p.threads.Close()
		return nil, serrors.Wrap("registering discovery processing", err)
	}

	p.mtx.Lock()
	for _, topic := range cfg.BuiltinTopics {
		p.discoverTopicLocked(topic)
	}
	p.mtx.Unlock()

	discovery.Subscribe(p.enqueue)
	for _, ep := range discovery.Endpoints() {
		p.enqueue(EndpointAdded, ep)
	}
	for _, part := range participants.All() {
		d, ok := part.(participant.Discoverer)
		if !ok {
			continue
		}
		id := part.ID()
		p.stops = append(p.stops, d.Discover(func(ep dds.Endpoint) {
			if err := discovery.Report(ep); err != nil {
				p.logger.Debug("Ignoring endpoint report", "participant", id, "err", err)
			}
		}))
	}
	p.logger.Info("Pipe created", "participants", participants.IDs(), "threads", cfg.Threads)
	return p, nil
}

// Enable starts forwarding every allowed topic.
func (p *Pipe) Enable() {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	if p.enabled || p.closed {
		return
	}
	p.enabled = true
	for _, key := range sortedKeys(p.bridges) {
		if p.isAllowed(key) {
			p.bridges[key].Enable()
		}
	}
	p.logger.Info("Pipe enabled")
}

// Disable stops forwarding. It returns once no track is transmitting.
func (p *Pipe) Disable() {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	p.disableLocked()
}

func (p *Pipe) disableLocked() {
	if !p.enabled {
		return
	}
	p.enabled = false
	for _, key := range sortedKeys(p.bridges) {
		p.bridges[key].Disable()
	}
	p.logger.Info("Pipe disabled")
}

// Enabled reports whether the pipe is enabled.
func (p *Pipe) Enabled() bool {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	return p.enabled
}

// ReloadConfiguration applies new topic filters and routes. Topics that
// become allowed are bridged, topics that are no longer allowed are
// disabled but keep their bridge. If the routes change, all bridges are
// rebuilt.
func (p *Pipe) ReloadConfiguration(r Reload) error {
	repeaters := p.participants.Repeaters()
	if err := r.Routes.Validate(repeaters); err != nil {
		return serrors.Wrap("invalid routes", err)
	}
	if err := r.TopicRoutes.Validate(repeaters); err != nil {
		return serrors.Wrap("invalid topic routes", err)
	}

	p.mtx.Lock()
	defer p.mtx.Unlock()
	if p.closed {
		return serrors.New("pipe is closed")
	}
	p.allowed = r.AllowedTopics
	if !reflect.DeepEqual(p.routes, r.Routes) || !reflect.DeepEqual(p.topicRoutes, r.TopicRoutes) {
		p.routes, p.topicRoutes = r.Routes, r.TopicRoutes
		for _, key := range sortedKeys(p.bridges) {
			p.bridges[key].Close()
			delete(p.bridges, key)
		}
		p.logger.Info("Routes changed, bridges rebuilt")
	}
	for _, key := range sortedKeys(p.topics) {
		if !p.isAllowed(key) {
			if b, ok := p.bridges[key]; ok {
				b.Disable()
			}
			continue
		}
		p.activateLocked(p.topics[key])
	}
	p.logger.Info("Configuration reloaded", "topics", len(p.topics), "bridges", len(p.bridges))
	return nil
}

// Close disables the pipe, deletes all bridges and stops the workers. The
// pipe cannot be used afterwards.
func (p *Pipe) Close() {
	p.mtx.Lock()
	if p.closed {
		p.mtx.Unlock()
		return
	}
	p.closed = true
	p.disableLocked()
	stops := p.stops
	p.stops = nil
	for _, key := range sortedKeys(p.bridges) {
		p.bridges[key].Close()
		delete(p.bridges, key)
	}
	p.mtx.Unlock()

	for _, stop := range stops {
		stop()
	}
	p.threads.Unslot(p.eventsTask)
	p.threads.Close()
	if p.cfg.Payloads != nil && !p.cfg.Payloads.IsClean() {
		p.logger.Error("Payloads leaked")
	}
	p.logger.Info("Pipe closed")
}

// TopicInfo describes a known topic.
type TopicInfo struct {
	Topic   dds.Topic
	Allowed bool
	// Enabled is set if the bridge of the topic is forwarding.
	Enabled bool
	// Tracks maps each reading participant to its destinations.
	Tracks map[dds.ParticipantID][]dds.ParticipantID
}

// Topics returns the known topics ordered by name and type.
func (p *Pipe) Topics() []TopicInfo {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	infos := make([]TopicInfo, 0, len(p.topics))
	for _, key := range sortedKeys(p.topics) {
		info := TopicInfo{Topic: p.topics[key], Allowed: p.isAllowed(key)}
		if b, ok := p.bridges[key]; ok {
			info.Enabled = b.Enabled()
			info.Tracks = b.Tracks()
		}
		infos = append(infos, info)
	}
	return infos
}

// ParticipantInfo describes a participant.
type ParticipantInfo struct {
	ID       dds.ParticipantID
	Repeater bool
}

// Snapshot is the state of the pipe at one point in time.
type Snapshot struct {
	Enabled      bool
	Participants []ParticipantInfo
	Topics       []TopicInfo
}

// Snapshot returns the current state of the pipe.
func (p *Pipe) Snapshot() Snapshot {
	s := Snapshot{Enabled: p.Enabled(), Topics: p.Topics()}
	for _, part := range p.participants.All() {
		s.Participants = append(s.Participants, ParticipantInfo{
			ID:       part.ID(),
			Repeater: part.IsRepeater(),
		})
	}
	return s
}

// Participants returns the participants database of the pipe.
func (p *Pipe) Participants() *ParticipantsDatabase {
	return p.participants
}

// enqueue queues a discovery event for processing on the thread pool.
func (p *Pipe) enqueue(event DiscoveryEvent, ep dds.Endpoint) {
	p.eventsMtx.Lock()
	p.events = append(p.events, discoveryEvent{event: event, ep: ep})
	p.eventsMtx.Unlock()
	p.threads.Emit(p.eventsTask)
}

func (p *Pipe) processEvents() {
	for {
		p.eventsMtx.Lock()
		if len(p.events) == 0 {
			p.eventsMtx.Unlock()
			return
		}
		ev := p.events[0]
		p.events = p.events[1:]
		p.eventsMtx.Unlock()
		p.handle(ev)
	}
}

func (p *Pipe) handle(ev discoveryEvent) {
	for _, part := range p.participants.All() {
		if l, ok := part.(participant.DiscoveryListener); ok {
			l.EndpointDiscovered(ev.ep)
		}
	}

	p.mtx.Lock()
	defer p.mtx.Unlock()
	if p.closed {
		return
	}
	if ev.ep.Active && ev.event != EndpointErased {
		p.endpointActiveLocked(ev.ep)
	} else {
		p.endpointInactiveLocked(ev.ep)
	}
}

func (p *Pipe) endpointActiveLocked(ep dds.Endpoint) {
	switch ep.Kind {
	case dds.WriterEndpoint:
		p.discoverTopicLocked(ep.Topic)
	case dds.ReaderEndpoint:
		if !p.cfg.RemoveUnusedEntities {
			return
		}
		p.discoverTopicLocked(ep.Topic)
		b, ok := p.bridges[ep.Topic.Key()]
		if !ok {
			return
		}
		if err := b.CreateWriter(ep.Discoverer); err != nil {
			p.logger.Error("Creating writer failed", "topic", ep.Topic.Key(),
				"participant", ep.Discoverer, "err", err)
		}
	}
}

func (p *Pipe) endpointInactiveLocked(ep dds.Endpoint) {
	if ep.Kind != dds.ReaderEndpoint || !p.cfg.RemoveUnusedEntities {
		return
	}
	key := ep.Topic.Key()
	b, ok := p.bridges[key]
	if !ok || p.discovery.ActiveReaders(key, ep.Discoverer, ep.GUID) {
		return
	}
	b.RemoveWriter(ep.Discoverer)
}

// discoverTopicLocked records topic, reports type and QoS events and
// bridges the topic if it is allowed.
func (p *Pipe) discoverTopicLocked(topic dds.Topic) {
	key := topic.Key()
	if _, ok := p.types[topic.Type]; !ok {
		p.types[topic.Type] = struct{}{}
		p.monitor.TypeDiscovered(topic.Type)
		p.logger.Debug("Type discovered", "type", topic.Type)
	}
	known, ok := p.topics[key]
	if ok {
		if !known.QoS.Equal(topic.QoS) {
			p.monitor.QoSMismatch(key)
			p.logger.Debug("QoS mismatch", "topic", key)
		}
	} else {
		names, ok := p.topicTypes[topic.Name]
		if !ok {
			names = make(map[string]struct{})
			p.topicTypes[topic.Name] = names
		}
		names[topic.Type] = struct{}{}
		if len(names) > 1 {
			p.monitor.TypeMismatch(key)
			p.logger.Info("Topic discovered with several types", "topic", topic.Name,
				"types", len(names))
		}
		p.topics[key] = topic
		p.logger.Info("Topic discovered", "topic", topic)
	}
	if p.isAllowed(key) {
		p.activateLocked(p.topics[key])
	}
}

// activateLocked creates the bridge of topic if it does not exist yet and
// enables it if the pipe is enabled.
func (p *Pipe) activateLocked(topic dds.Topic) {
	key := topic.Key()
	b, ok := p.bridges[key]
	if !ok {
		var err error
		b, err = NewBridge(BridgeConfig{
			Topic:          p.bridgeTopic(topic),
			Participants:   p.participants,
			Routes:         p.topicRoutes.For(key, p.routes),
			Pool:           p.threads,
			Monitor:        p.monitor,
			Logger:         p.logger.New("topic", key),
			ManageEntities: p.cfg.RemoveUnusedEntities,
		})
		if err != nil {
			p.logger.Error("Creating bridge failed", "topic", key, "err", err)
			return
		}
		p.bridges[key] = b
		if p.cfg.RemoveUnusedEntities {
			p.createWritersForKnownReadersLocked(key, b)
		}
	}
	if p.enabled {
		b.Enable()
	}
}

// createWritersForKnownReadersLocked creates the writers of participants
// that discovered readers before the bridge existed.
func (p *Pipe) createWritersForKnownReadersLocked(key dds.TopicKey, b *Bridge) {
	done := make(map[dds.ParticipantID]struct{})
	for _, ep := range p.discovery.Endpoints() {
		if !ep.Active || ep.Kind != dds.ReaderEndpoint || ep.Topic.Key() != key {
			continue
		}
		if _, ok := done[ep.Discoverer]; ok {
			continue
		}
		done[ep.Discoverer] = struct{}{}
		if err := b.CreateWriter(ep.Discoverer); err != nil {
			p.logger.Error("Creating writer failed", "topic", key,
				"participant", ep.Discoverer, "err", err)
		}
	}
}

// bridgeTopic applies the configured QoS rules to topic.
func (p *Pipe) bridgeTopic(topic dds.Topic) dds.Topic {
	for _, rule := range p.cfg.TopicQoS {
		if rule.Filter.Matches(topic.Key()) {
			topic.QoS = topic.QoS.OverrideAdmission(rule.QoS)
			break
		}
	}
	if limit := p.cfg.MaxHistoryDepth; limit > 0 &&
		(topic.QoS.HistoryDepth == 0 || topic.QoS.HistoryDepth > limit) {
		topic.QoS.HistoryDepth = limit
	}
	return topic
}

func (p *Pipe) isAllowed(key dds.TopicKey) bool {
	return p.allowed == nil || p.allowed.IsAllowed(key)
}

func sortedKeys[T any](m map[dds.TopicKey]T) []dds.TopicKey {
	keys := make([]dds.TopicKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Name != keys[j].Name {
			return keys[i].Name < keys[j].Name
		}
		return keys[i].Type < keys[j].Type
	})
	return keys
}
