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

package participant

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/ddspipe/ddspipe/pkg/dds"
	"github.com/ddspipe/ddspipe/pkg/log"
	"github.com/ddspipe/ddspipe/pkg/monitor"
)

// EndpointConfig configures a BaseReader or BaseWriter.
type EndpointConfig struct {
	Participant dds.ParticipantID
	Topic       dds.Topic
	// Clock drives the rate filters. Defaults to the wall clock.
	Clock clock.Clock
	// Monitor receives reception events. Defaults to monitor.Noop.
	Monitor monitor.Monitor
	// Logger defaults to the root logger.
	Logger log.Logger
}

func (c *EndpointConfig) initDefaults(kind string) {
	if c.Clock == nil {
		c.Clock = clock.New()
	}
	c.Monitor = monitor.OrNoop(c.Monitor)
	if c.Logger == nil {
		c.Logger = log.New("participant", c.Participant, "topic", c.Topic.Key(), "endpoint", kind)
	}
}

// minPeriod converts a rate in samples per second into the minimum time
// between two samples. Zero disables the filter.
func minPeriod(rate float64) time.Duration {
	if rate <= 0 {
		return 0
	}
	return time.Duration(1e9 / rate)
}

// rateFilter drops samples that arrive sooner than period after the last
// accepted one.
type rateFilter struct {
	period   time.Duration
	last     time.Time
	accepted bool
}

func (f *rateFilter) accept(now time.Time) bool {
	if f.period == 0 {
		return true
	}
	if f.accepted && now.Before(f.last.Add(f.period)) {
		return false
	}
	f.last = now
	f.accepted = true
	return true
}

// ReaderImpl is implemented by concrete readers. The methods are called with
// the BaseReader lock held and must not call back into the BaseReader,
// except for OnDataAvailable and AcceptSample which take no lock that is
// held here.
type ReaderImpl interface {
	TakeNTS() (*Data, error)
	EnableNTS()
	DisableNTS()
	// AvailableNTS reports whether data is pending. It is checked on enable
	// so that data received while disabled is not left unnoticed.
	AvailableNTS() bool
}

// BaseReader implements the enable state machine, the callback registration
// and the admission filters shared by all readers.
type BaseReader struct {
	cfg  EndpointConfig
	impl ReaderImpl

	mtx      sync.Mutex
	enabled  bool
	callback func()

	filterMtx       sync.Mutex
	rate            rateFilter
	downsampling    uint32
	downsamplingIdx uint32
}

// NewBaseReader creates a disabled reader delegating to impl.
func NewBaseReader(cfg EndpointConfig, impl ReaderImpl) *BaseReader {
	cfg.initDefaults("reader")
	return &BaseReader{
		cfg:          cfg,
		impl:         impl,
		rate:         rateFilter{period: minPeriod(cfg.Topic.QoS.MaxRxRate)},
		downsampling: cfg.Topic.QoS.Downsampling,
	}
}

func (r *BaseReader) Participant() dds.ParticipantID { return r.cfg.Participant }
func (r *BaseReader) Topic() dds.Topic { return r.cfg.Topic }
func (r *BaseReader) Logger() log.Logger { return r.cfg.Logger }
func (r *BaseReader) Clock() clock.Clock { return r.cfg.Clock }

// Enable enables the reader. If data is already pending, the data available
// callback is invoked.
func (r *BaseReader) Enable() {
	r.mtx.Lock()
	if r.enabled {
		r.mtx.Unlock()
		return
	}
	r.enabled = true
	r.impl.EnableNTS()
	pending := r.impl.AvailableNTS()
	r.mtx.Unlock()
	if pending {
		r.OnDataAvailable()
	}
}

func (r *BaseReader) Disable() {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	if !r.enabled {
		return
	}
	r.enabled = false
	r.impl.DisableNTS()
}

// Enabled reports whether the reader is enabled.
func (r *BaseReader) Enabled() bool {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return r.enabled
}

func (r *BaseReader) Take() (*Data, error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	if !r.enabled {
		return nil, ErrNotEnabled
	}
	return r.impl.TakeNTS()
}

func (r *BaseReader) SetOnDataAvailable(fn func()) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	if r.callback != nil {
		r.cfg.Logger.Error("Data available callback set twice, replacing the previous one")
	}
	r.callback = fn
}

func (r *BaseReader) UnsetOnDataAvailable() {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.callback = nil
}

// OnDataAvailable notifies the registered callback. Concrete readers call it
// whenever new data arrives. It must not be called with the reader lock held.
func (r *BaseReader) OnDataAvailable() {
	r.mtx.Lock()
	fn := r.callback
	r.mtx.Unlock()
	if fn == nil {
		r.cfg.Logger.Error("Data available without a registered callback")
		return
	}
	fn()
}

// AcceptSample applies the admission filters to a sample that arrives now.
// The rate filter is applied first; only samples that pass it advance the
// downsampling counter. Accepted samples are reported to the monitor.
func (r *BaseReader) AcceptSample() bool {
	r.filterMtx.Lock()
	defer r.filterMtx.Unlock()
	if !r.rate.accept(r.cfg.Clock.Now()) {
		return false
	}
	if r.downsampling > 1 {
		idx := r.downsamplingIdx
		r.downsamplingIdx = (r.downsamplingIdx + 1) % r.downsampling
		if idx != 0 {
			return false
		}
	}
	r.cfg.Monitor.MsgReceived(r.cfg.Topic.Key(), r.cfg.Participant)
	return true
}

// SampleLost reports n samples that were lost before reaching the reader.
func (r *BaseReader) SampleLost(n int) {
	for i := 0; i < n; i++ {
		r.cfg.Monitor.MsgLost(r.cfg.Topic.Key(), r.cfg.Participant)
	}
}

// WriterImpl is implemented by concrete writers. The methods are called with
// the BaseWriter lock held.
type WriterImpl interface {
	WriteNTS(data *Data) error
	EnableNTS()
	DisableNTS()
}

// BaseWriter implements the enable state machine and the transmission rate
// filter shared by all writers.
type BaseWriter struct {
	cfg  EndpointConfig
	impl WriterImpl

	mtx     sync.Mutex
	enabled bool
	rate    rateFilter
}

// NewBaseWriter creates a disabled writer delegating to impl.
func NewBaseWriter(cfg EndpointConfig, impl WriterImpl) *BaseWriter {
	cfg.initDefaults("writer")
	return &BaseWriter{
		cfg:  cfg,
		impl: impl,
		rate: rateFilter{period: minPeriod(cfg.Topic.QoS.MaxTxRate)},
	}
}

func (w *BaseWriter) Participant() dds.ParticipantID { return w.cfg.Participant }
func (w *BaseWriter) Topic() dds.Topic { return w.cfg.Topic }
func (w *BaseWriter) Logger() log.Logger { return w.cfg.Logger }

func (w *BaseWriter) Enable() {
	w.mtx.Lock()
	defer w.mtx.Unlock()
	if w.enabled {
		return
	}
	w.enabled = true
	w.impl.EnableNTS()
}

func (w *BaseWriter) Disable() {
	w.mtx.Lock()
	defer w.mtx.Unlock()
	if !w.enabled {
		return
	}
	w.enabled = false
	w.impl.DisableNTS()
}

// Enabled reports whether the writer is enabled.
func (w *BaseWriter) Enabled() bool {
	w.mtx.Lock()
	defer w.mtx.Unlock()
	return w.enabled
}

// Write sends data unless the rate filter throttles it. Throttled samples
// are dropped silently.
func (w *BaseWriter) Write(data *Data) error {
	w.mtx.Lock()
	defer w.mtx.Unlock()
	if !w.enabled {
		return ErrNotEnabled
	}
	if !w.rate.accept(w.cfg.Clock.Now()) {
		return nil
	}
	return w.impl.WriteNTS(data)
}
