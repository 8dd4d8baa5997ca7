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

package pipe_test

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/ddspipe/ddspipe/pkg/dds"
	"github.com/ddspipe/ddspipe/pkg/participant"
	"github.com/ddspipe/ddspipe/pkg/payload"
)

var chatter = dds.Topic{Name: "rt/chatter", Type: "std_msgs::msg::String", Kind: dds.KindDDS}

// queueReader is a reader fed by the test.
type queueReader struct {
	mtx      sync.Mutex
	enabled  bool
	queue    []*participant.Data
	callback func()
}

func (r *queueReader) Enable() {
	r.mtx.Lock()
	r.enabled = true
	pending := len(r.queue) > 0
	cb := r.callback
	r.mtx.Unlock()
	if pending && cb != nil {
		cb()
	}
}

func (r *queueReader) Disable() {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.enabled = false
}

func (r *queueReader) Take() (*participant.Data, error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	if !r.enabled {
		return nil, participant.ErrNotEnabled
	}
	if len(r.queue) == 0 {
		return nil, participant.ErrNoData
	}
	d := r.queue[0]
	r.queue = r.queue[1:]
	return d, nil
}

func (r *queueReader) SetOnDataAvailable(fn func()) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.callback = fn
}

func (r *queueReader) UnsetOnDataAvailable() {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.callback = nil
}

// push queues a sample of the given payload and notifies the callback.
func (r *queueReader) push(pool payload.Pool, b []byte) {
	d := &participant.Data{Participant: "src"}
	if !pool.Reserve(len(b), &d.Payload) {
		panic("reserve failed")
	}
	copy(d.Payload.Bytes(), b)
	r.mtx.Lock()
	r.queue = append(r.queue, d)
	cb := r.callback
	r.mtx.Unlock()
	if cb != nil {
		cb()
	}
}

// countingWriter records writes and the number of concurrent writes.
type countingWriter struct {
	enabled   atomic.Bool
	writes    atomic.Int64
	active    atomic.Int32
	maxActive atomic.Int32
	delay     time.Duration

	mtx     sync.Mutex
	written []string
	// entered, if set, receives a value when a write starts; the write then
	// waits for release.
	entered chan struct{}
	release chan struct{}
}

func (w *countingWriter) Enable() { w.enabled.Store(true) }
func (w *countingWriter) Disable() { w.enabled.Store(false) }

func (w *countingWriter) Write(d *participant.Data) error {
	if !w.enabled.Load() {
		return participant.ErrNotEnabled
	}
	n := w.active.Add(1)
	defer w.active.Add(-1)
	for {
		m := w.maxActive.Load()
		if n <= m || w.maxActive.CompareAndSwap(m, n) {
			break
		}
	}
	if w.entered != nil {
		w.entered <- struct{}{}
		<-w.release
	}
	time.Sleep(w.delay)
	w.mtx.Lock()
	w.written = append(w.written, string(d.Payload.Bytes()))
	w.mtx.Unlock()
	w.writes.Add(1)
	return nil
}

func (w *countingWriter) Written() []string {
	w.mtx.Lock()
	defer w.mtx.Unlock()
	return append([]string(nil), w.written...)
}

// fakeParticipant creates queueReaders and countingWriters.
type fakeParticipant struct {
	id       dds.ParticipantID
	repeater bool

	mtx     sync.Mutex
	readers map[dds.TopicKey]*queueReader
	writers map[dds.TopicKey]*countingWriter
	deleted int
}

func newFakeParticipant(id dds.ParticipantID, repeater bool) *fakeParticipant {
	return &fakeParticipant{
		id:       id,
		repeater: repeater,
		readers:  make(map[dds.TopicKey]*queueReader),
		writers:  make(map[dds.TopicKey]*countingWriter),
	}
}

func (p *fakeParticipant) ID() dds.ParticipantID { return p.id }
func (p *fakeParticipant) IsRepeater() bool { return p.repeater }
func (p *fakeParticipant) TopicQoS() dds.TopicQoS { return dds.TopicQoS{} }

func (p *fakeParticipant) CreateReader(topic dds.Topic) (participant.Reader, error) {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	r := &queueReader{}
	p.readers[topic.Key()] = r
	return r, nil
}

func (p *fakeParticipant) CreateWriter(topic dds.Topic) (participant.Writer, error) {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	w := &countingWriter{}
	p.writers[topic.Key()] = w
	return w, nil
}

func (p *fakeParticipant) DeleteReader(participant.Reader) {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	p.deleted++
}

func (p *fakeParticipant) DeleteWriter(participant.Writer) {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	p.deleted++
}

func (p *fakeParticipant) reader(k dds.TopicKey) *queueReader {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	return p.readers[k]
}

func (p *fakeParticipant) writer(k dds.TopicKey) *countingWriter {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	return p.writers[k]
}
