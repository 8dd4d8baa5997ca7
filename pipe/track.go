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
	"errors"
	"sync"
	"sync/atomic"

	"github.com/ddspipe/ddspipe/pkg/dds"
	"github.com/ddspipe/ddspipe/pkg/log"
	"github.com/ddspipe/ddspipe/pkg/monitor"
	"github.com/ddspipe/ddspipe/pkg/participant"
	"github.com/ddspipe/ddspipe/pkg/private/serrors"
	"github.com/ddspipe/ddspipe/pkg/threadpool"
)

// Transmission status of a Track. A notification adds newDataArrived. The
// transmission loop stores transmittingData before every take and subtracts
// it once the reader runs dry; a result of noMoreData ends the loop.
//
//	status  notification             loop
//	0       emit task, status = 2    -
//	1       status = 3               take found nothing: status = 0, exit
//	>= 2    status += 2              take found nothing: status -= 1, take again
const (
	noMoreData       int32 = 0
	transmittingData int32 = 1
	newDataArrived   int32 = 2
)

// TrackConfig configures a Track.
type TrackConfig struct {
	Topic dds.Topic
	// Source is the participant the reader belongs to.
	Source  dds.ParticipantID
	Reader  participant.Reader
	Writers map[dds.ParticipantID]participant.Writer
	Pool    *threadpool.Pool
	Monitor monitor.Monitor
	Logger  log.Logger
}

// Track forwards the samples of one reader to a set of writers. Transmission
// runs as a slot of the shared thread pool, so at most one transmission of a
// Track is active at a time.
type Track struct {
	topic   dds.Topic
	source  dds.ParticipantID
	reader  participant.Reader
	pool    *threadpool.Pool
	taskID  threadpool.TaskID
	monitor monitor.Monitor
	logger  log.Logger

	// mtx serializes enable, disable and changes of the writer set.
	mtx     sync.Mutex
	enabled atomic.Bool
	closed  bool

	// transmitMtx is held while transmitting. It guards writers and order.
	transmitMtx sync.Mutex
	writers     map[dds.ParticipantID]participant.Writer
	order       []dds.ParticipantID

	status atomic.Int32
}

// NewTrack creates a disabled track. The track registers itself as the data
// available callback of the reader.
func NewTrack(cfg TrackConfig) (*Track, error) {
	if cfg.Reader == nil || cfg.Pool == nil {
		panic("track needs a reader and a thread pool")
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New("topic", cfg.Topic.Key(), "source", cfg.Source)
	}
	t := &Track{
		topic:   cfg.Topic,
		source:  cfg.Source,
		reader:  cfg.Reader,
		pool:    cfg.Pool,
		taskID:  cfg.Pool.NewTaskID(),
		monitor: monitor.OrNoop(cfg.Monitor),
		logger:  cfg.Logger,
		writers: make(map[dds.ParticipantID]participant.Writer, len(cfg.Writers)),
	}
	for _, id := range sortedIDs(cfg.Writers) {
		t.writers[id] = cfg.Writers[id]
		t.order = append(t.order, id)
	}
	if err := cfg.Pool.Slot(t.taskID, t.transmit); err != nil {
		return nil, serrors.Wrap("registering transmission", err, "topic", cfg.Topic.Key())
	}
	t.reader.SetOnDataAvailable(t.dataAvailable)
	t.logger.Debug("Track created", "writers", t.order)
	return t, nil
}

// Source returns the participant whose reader feeds the track.
func (t *Track) Source() dds.ParticipantID {
	return t.source
}

// Reader returns the reader of the track.
func (t *Track) Reader() participant.Reader {
	return t.reader
}

// Enable enables the writers and then the reader, so that no data is read
// before every writer is ready.
func (t *Track) Enable() {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	if t.enabled.Load() || t.closed {
		return
	}
	t.status.Store(noMoreData)
	t.enabled.Store(true)
	t.transmitMtx.Lock()
	for _, id := range t.order {
		t.writers[id].Enable()
	}
	t.transmitMtx.Unlock()
	t.reader.Enable()
	t.logger.Debug("Track enabled")
}

// Disable disables the reader and blocks until an ongoing transmission has
// finished. Afterwards no writer receives data until the track is enabled
// again. Writers are left enabled since other tracks may share them.
func (t *Track) Disable() {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	t.disableLocked()
}

func (t *Track) disableLocked() {
	if !t.enabled.Load() {
		return
	}
	t.enabled.Store(false)
	t.reader.Disable()
	// Wait for an ongoing transmission.
	t.transmitMtx.Lock()
	t.transmitMtx.Unlock()
	t.logger.Debug("Track disabled")
}

// Close disables the track and removes its transmission from the thread
// pool. The reader is not deleted.
func (t *Track) Close() {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	if t.closed {
		return
	}
	t.disableLocked()
	t.closed = true
	t.reader.UnsetOnDataAvailable()
	t.pool.Unslot(t.taskID)
}

// AddWriter adds w as the writer of participant id. If the track is enabled
// the writer is enabled first. Adding a writer for an id that already has
// one replaces it.
func (t *Track) AddWriter(id dds.ParticipantID, w participant.Writer) {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	t.transmitMtx.Lock()
	defer t.transmitMtx.Unlock()
	if t.enabled.Load() {
		w.Enable()
	}
	if _, ok := t.writers[id]; !ok {
		t.order = append(t.order, id)
	}
	t.writers[id] = w
}

// RemoveWriter removes the writer of participant id. It reports whether the
// track has writers left.
func (t *Track) RemoveWriter(id dds.ParticipantID) bool {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	t.transmitMtx.Lock()
	defer t.transmitMtx.Unlock()
	if _, ok := t.writers[id]; ok {
		delete(t.writers, id)
		for i, o := range t.order {
			if o == id {
				t.order = append(t.order[:i], t.order[i+1:]...)
				break
			}
		}
	}
	return len(t.writers) > 0
}

// HasWriter reports whether the track forwards to participant id.
func (t *Track) HasWriter(id dds.ParticipantID) bool {
	t.transmitMtx.Lock()
	defer t.transmitMtx.Unlock()
	_, ok := t.writers[id]
	return ok
}

// Writers returns the participants the track forwards to.
func (t *Track) Writers() []dds.ParticipantID {
	t.transmitMtx.Lock()
	defer t.transmitMtx.Unlock()
	return append([]dds.ParticipantID(nil), t.order...)
}

// Enabled reports whether the track is enabled.
func (t *Track) Enabled() bool {
	return t.enabled.Load()
}

// dataAvailable is the data available callback of the reader. Only the
// notification that finds the track idle emits the transmission.
func (t *Track) dataAvailable() {
	if !t.enabled.Load() {
		return
	}
	if prev := t.status.Add(newDataArrived) - newDataArrived; prev == noMoreData {
		t.pool.Emit(t.taskID)
	}
}

// transmit forwards samples until the reader runs dry without a concurrent
// notification or until the track is disabled.
func (t *Track) transmit() {
	t.transmitMtx.Lock()
	defer t.transmitMtx.Unlock()
	for t.enabled.Load() {
		t.status.Store(transmittingData)
		data, err := t.reader.Take()
		if errors.Is(err, participant.ErrNoData) || errors.Is(err, participant.ErrNotEnabled) {
			if t.status.Add(-transmittingData) == noMoreData {
				return
			}
			continue
		}
		if err != nil {
			t.logger.Debug("Taking data failed", "err", err)
			continue
		}
		t.forward(data)
	}
}

func (t *Track) forward(data *participant.Data) {
	for _, id := range t.order {
		if err := t.writers[id].Write(data); err != nil {
			t.logger.Debug("Writing data failed", "writer", id, "err", err)
			continue
		}
		t.monitor.MsgForwarded(t.topic.Key(), t.source, id)
	}
	if err := data.Release(); err != nil {
		t.logger.Error("Releasing payload failed", "err", err)
	}
}

func sortedIDs[T any](m map[dds.ParticipantID]T) []dds.ParticipantID {
	ids := make([]dds.ParticipantID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sortParticipantIDs(ids)
	return ids
}
