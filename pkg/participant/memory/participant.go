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

package memory

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/ddspipe/ddspipe/pkg/dds"
	"github.com/ddspipe/ddspipe/pkg/log"
	"github.com/ddspipe/ddspipe/pkg/monitor"
	"github.com/ddspipe/ddspipe/pkg/participant"
	"github.com/ddspipe/ddspipe/pkg/payload"
	"github.com/ddspipe/ddspipe/pkg/private/serrors"
)

var (
	_ participant.Participant = (*Participant)(nil)
	_ participant.Discoverer  = (*Participant)(nil)
)

// Config configures a memory participant.
type Config struct {
	ID       dds.ParticipantID
	Repeater bool
	// QoS is the default QoS of the participant's endpoints.
	QoS     dds.TopicQoS
	Monitor monitor.Monitor
	Clock   clock.Clock
}

// Participant attaches to a Domain. Its readers receive what applications
// publish on the domain and its writers publish to the domain's
// subscribers. Samples written by the participant are never read back by
// it.
type Participant struct {
	cfg      Config
	domain   *Domain
	prefix   string
	pool     payload.Pool
	mediator *payload.Mediator
	logger   log.Logger
}

// New creates a participant on domain. Payloads are reserved from pool.
func New(cfg Config, domain *Domain, pool payload.Pool) (*Participant, error) {
	if cfg.ID == "" {
		return nil, participant.InitializationError(serrors.New("empty participant id"))
	}
	if domain == nil {
		return nil, participant.InitializationError(serrors.New("nil domain"), "id", cfg.ID)
	}
	if pool == nil {
		return nil, participant.InitializationError(serrors.New("nil pool"), "id", cfg.ID)
	}
	if err := cfg.QoS.Validate(); err != nil {
		return nil, participant.InitializationError(err, "id", cfg.ID)
	}
	cfg.Monitor = monitor.OrNoop(cfg.Monitor)
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	return &Participant{
		cfg:      cfg,
		domain:   domain,
		prefix:   domain.NewPrefix(),
		pool:     pool,
		mediator: payload.NewMediator(pool),
		logger:   log.New("participant", cfg.ID, "domain", domain.Name()),
	}, nil
}

func (p *Participant) ID() dds.ParticipantID {
	return p.cfg.ID
}

func (p *Participant) IsRepeater() bool {
	return p.cfg.Repeater
}

func (p *Participant) TopicQoS() dds.TopicQoS {
	return p.cfg.QoS
}

// Discover reports the endpoints of the domain that do not belong to this
// participant.
func (p *Participant) Discover(fn func(dds.Endpoint)) func() {
	return p.domain.Watch(func(ep dds.Endpoint) {
		if ep.GUID.Prefix == p.prefix {
			return
		}
		ep.Discoverer = p.cfg.ID
		fn(ep)
	})
}

func (p *Participant) endpointConfig(topic dds.Topic, kind string) participant.EndpointConfig {
	return participant.EndpointConfig{
		Participant: p.cfg.ID,
		Topic:       topic,
		Clock:       p.cfg.Clock,
		Monitor:     p.cfg.Monitor,
		Logger:      p.logger.New("topic", topic.Key(), "endpoint", kind),
	}
}

func (p *Participant) CreateReader(topic dds.Topic) (participant.Reader, error) {
	if err := topic.Validate(); err != nil {
		return nil, participant.InitializationError(err, "participant", p.cfg.ID)
	}
	r := &reader{p: p, topic: topic}
	r.BaseReader = participant.NewBaseReader(p.endpointConfig(topic, "reader"), r)
	r.sub = p.domain.add(p.prefix, topic, dds.ReaderEndpoint, r.deliver)
	p.logger.Debug("Reader created", "topic", topic, "guid", r.sub)
	return r, nil
}

func (p *Participant) CreateWriter(topic dds.Topic) (participant.Writer, error) {
	if err := topic.Validate(); err != nil {
		return nil, participant.InitializationError(err, "participant", p.cfg.ID)
	}
	w := &writer{p: p, topic: topic}
	w.BaseWriter = participant.NewBaseWriter(p.endpointConfig(topic, "writer"), w)
	w.guid = p.domain.add(p.prefix, topic, dds.WriterEndpoint, nil)
	p.logger.Debug("Writer created", "topic", topic, "guid", w.guid)
	return w, nil
}

func (p *Participant) DeleteReader(r participant.Reader) {
	mr, ok := r.(*reader)
	if !ok || mr.p != p {
		p.logger.Error("Deleting foreign reader")
		return
	}
	mr.Disable()
	p.domain.remove(mr.sub)
	mr.clear()
}

func (p *Participant) DeleteWriter(w participant.Writer) {
	mw, ok := w.(*writer)
	if !ok || mw.p != p {
		p.logger.Error("Deleting foreign writer")
		return
	}
	mw.Disable()
	p.domain.remove(mw.guid)
}

// reader keeps received samples in a FIFO bounded by the history depth of
// its topic. When the FIFO is full the oldest sample is dropped and reported
// as lost.
type reader struct {
	*participant.BaseReader
	p     *Participant
	topic dds.Topic
	sub   dds.GUID

	mtx   sync.Mutex
	queue []*participant.Data
}

func (r *reader) deliver(s Sample) {
	if s.Source.Prefix == r.p.prefix {
		return
	}
	if !r.Enabled() && r.topic.QoS.Durability != dds.TransientLocal {
		return
	}
	if !r.AcceptSample() {
		return
	}
	data := &participant.Data{
		Participant:     r.p.cfg.ID,
		Source:          s.Source,
		SourceTimestamp: s.Timestamp,
	}
	if len(s.Data) > 0 {
		if !r.p.pool.Reserve(len(s.Data), &data.Payload) {
			r.Logger().Error("Reserving payload failed", "size", len(s.Data))
			r.SampleLost(1)
			return
		}
		copy(data.Payload.Bytes(), s.Data)
	}

	r.mtx.Lock()
	r.queue = append(r.queue, data)
	var dropped *participant.Data
	if depth := int(r.topic.QoS.HistoryDepth); depth > 0 && len(r.queue) > depth {
		dropped = r.queue[0]
		r.queue[0] = nil
		r.queue = r.queue[1:]
	}
	r.mtx.Unlock()

	if dropped != nil {
		r.release(dropped)
		r.SampleLost(1)
	}
	// Enable notifies for samples queued before it, so the state is read
	// after queuing.
	if r.Enabled() {
		r.OnDataAvailable()
	}
}

func (r *reader) release(d *participant.Data) {
	if err := d.Release(); err != nil {
		r.Logger().Error("Releasing payload failed", "err", err)
	}
}

func (r *reader) clear() {
	r.mtx.Lock()
	queue := r.queue
	r.queue = nil
	r.mtx.Unlock()
	for _, d := range queue {
		r.release(d)
	}
}

func (r *reader) TakeNTS() (*participant.Data, error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	if len(r.queue) == 0 {
		return nil, participant.ErrNoData
	}
	d := r.queue[0]
	r.queue[0] = nil
	r.queue = r.queue[1:]
	return d, nil
}

func (r *reader) AvailableNTS() bool {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return len(r.queue) > 0
}

func (r *reader) EnableNTS() {}

func (r *reader) DisableNTS() {}

type writer struct {
	*participant.BaseWriter
	p     *Participant
	topic dds.Topic
	guid  dds.GUID

	// ts is the source timestamp of the sample being written.
	ts time.Time
}

func (w *writer) WriteNTS(data *participant.Data) error {
	w.ts = data.SourceTimestamp
	if w.ts.IsZero() {
		w.ts = w.p.cfg.Clock.Now()
	}
	if !data.Payload.Reserved() {
		w.p.domain.publish(w.guid, w.topic.Key(), nil, w.ts)
		return nil
	}
	return w.p.mediator.Write((*pullWriter)(w), &data.Payload)
}

func (w *writer) EnableNTS() {}

func (w *writer) DisableNTS() {}

// pullWriter publishes through the storage handed out by the mediator, which
// already holds the data to send.
type pullWriter writer

func (w *pullWriter) Write(src []byte, alloc payload.Allocator) error {
	var p payload.Payload
	if !alloc.GetPayload(len(src), &p) {
		return serrors.New("allocating payload", "size", len(src))
	}
	w.p.domain.publish(w.guid, w.topic.Key(), p.Bytes(), w.ts)
	return alloc.ReleasePayload(&p)
}
