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

package participant_test

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ddspipe/ddspipe/pkg/dds"
	"github.com/ddspipe/ddspipe/pkg/log/testlog"
	"github.com/ddspipe/ddspipe/pkg/monitor"
	"github.com/ddspipe/ddspipe/pkg/participant"
	"github.com/ddspipe/ddspipe/pkg/private/xtest"
)

type fakeReader struct {
	pending  []*participant.Data
	enables  int
	disables int
}

func (f *fakeReader) TakeNTS() (*participant.Data, error) {
	if len(f.pending) == 0 {
		return nil, participant.ErrNoData
	}
	d := f.pending[0]
	f.pending = f.pending[1:]
	return d, nil
}

func (f *fakeReader) EnableNTS() { f.enables++ }
func (f *fakeReader) DisableNTS() { f.disables++ }
func (f *fakeReader) AvailableNTS() bool { return len(f.pending) > 0 }

type fakeWriter struct {
	written []*participant.Data
}

func (f *fakeWriter) WriteNTS(d *participant.Data) error {
	f.written = append(f.written, d)
	return nil
}

func (f *fakeWriter) EnableNTS() {}
func (f *fakeWriter) DisableNTS() {}

func topicWithQoS(qos dds.TopicQoS) dds.Topic {
	return dds.Topic{Name: "chatter", Type: "String", Kind: dds.KindDDS, QoS: qos}
}

func TestReaderRateLimitBurst(t *testing.T) {
	mock := clock.NewMock()
	counters := monitor.NewCounters()
	r := participant.NewBaseReader(participant.EndpointConfig{
		Participant: "P1",
		Topic:       topicWithQoS(dds.TopicQoS{MaxRxRate: 10}),
		Clock:       mock,
		Monitor:     counters,
		Logger:      testlog.NewLogger(t),
	}, &fakeReader{})

	accepted := 0
	for i := 0; i < 100; i++ {
		if r.AcceptSample() {
			accepted++
		}
	}
	assert.Equal(t, 1, accepted)

	mock.Add(99 * time.Millisecond)
	assert.False(t, r.AcceptSample())
	mock.Add(time.Millisecond)
	assert.True(t, r.AcceptSample())

	s := counters.Snapshot()
	require.Len(t, s.Topics, 1)
	assert.Equal(t, uint64(2), s.Topics[0].Participants["P1"].Received)
}

func TestReaderRateLimitOverTime(t *testing.T) {
	mock := clock.NewMock()
	r := participant.NewBaseReader(participant.EndpointConfig{
		Topic: topicWithQoS(dds.TopicQoS{MaxRxRate: 10}),
		Clock: mock,
	}, &fakeReader{})

	// A sample every 10ms for one second.
	accepted := 0
	for i := 0; i < 100; i++ {
		if r.AcceptSample() {
			accepted++
		}
		mock.Add(10 * time.Millisecond)
	}
	assert.LessOrEqual(t, accepted, 11)
	assert.GreaterOrEqual(t, accepted, 10)
}

func TestReaderDownsampling(t *testing.T) {
	r := participant.NewBaseReader(participant.EndpointConfig{
		Topic: topicWithQoS(dds.TopicQoS{Downsampling: 3}),
		Clock: clock.NewMock(),
	}, &fakeReader{})

	var kept []int
	for i := 0; i < 300; i++ {
		if r.AcceptSample() {
			kept = append(kept, i)
		}
	}
	require.Len(t, kept, 100)
	for n, idx := range kept {
		assert.Equal(t, 3*n, idx)
	}
}

func TestReaderFiltersCompound(t *testing.T) {
	mock := clock.NewMock()
	r := participant.NewBaseReader(participant.EndpointConfig{
		Topic: topicWithQoS(dds.TopicQoS{MaxRxRate: 10, Downsampling: 2}),
		Clock: mock,
	}, &fakeReader{})

	accepted := 0
	for i := 0; i < 20; i++ {
		if r.AcceptSample() {
			accepted++
		}
		mock.Add(50 * time.Millisecond)
	}
	// 10 samples pass the rate filter, half of them the downsampling.
	assert.Equal(t, 5, accepted)
}

func TestReaderEnableDisable(t *testing.T) {
	impl := &fakeReader{}
	r := participant.NewBaseReader(participant.EndpointConfig{
		Topic:  topicWithQoS(dds.TopicQoS{}),
		Logger: testlog.NewLogger(t),
	}, impl)

	_, err := r.Take()
	xtest.AssertErrorsIs(t, err, participant.ErrNotEnabled)

	r.Enable()
	r.Enable()
	assert.Equal(t, 1, impl.enables)
	assert.True(t, r.Enabled())
	_, err = r.Take()
	xtest.AssertErrorsIs(t, err, participant.ErrNoData)

	r.Disable()
	r.Disable()
	assert.Equal(t, 1, impl.disables)
	_, err = r.Take()
	xtest.AssertErrorsIs(t, err, participant.ErrNotEnabled)
}

func TestReaderEnableNotifiesPendingData(t *testing.T) {
	impl := &fakeReader{pending: []*participant.Data{{Participant: "P1"}}}
	r := participant.NewBaseReader(participant.EndpointConfig{
		Topic:  topicWithQoS(dds.TopicQoS{}),
		Logger: testlog.NewLogger(t),
	}, impl)
	calls := 0
	r.SetOnDataAvailable(func() { calls++ })
	r.Enable()
	assert.Equal(t, 1, calls)

	d, err := r.Take()
	require.NoError(t, err)
	assert.Equal(t, dds.ParticipantID("P1"), d.Participant)
}

func TestReaderCallbackRegistration(t *testing.T) {
	logger, logs := testlog.NewObserved(t)
	r := participant.NewBaseReader(participant.EndpointConfig{
		Topic:  topicWithQoS(dds.TopicQoS{}),
		Logger: logger,
	}, &fakeReader{})

	r.OnDataAvailable()
	assert.Equal(t, 1, logs.FilterMessage("Data available without a registered callback").Len())

	first, second := 0, 0
	r.SetOnDataAvailable(func() { first++ })
	r.SetOnDataAvailable(func() { second++ })
	assert.Equal(t, 1,
		logs.FilterMessage("Data available callback set twice, replacing the previous one").Len())
	r.OnDataAvailable()
	assert.Equal(t, 0, first)
	assert.Equal(t, 1, second)

	r.UnsetOnDataAvailable()
	r.SetOnDataAvailable(func() { first++ })
	assert.Equal(t, 1,
		logs.FilterMessage("Data available callback set twice, replacing the previous one").Len())
	r.OnDataAvailable()
	assert.Equal(t, 1, first)
}

func TestWriter(t *testing.T) {
	mock := clock.NewMock()
	impl := &fakeWriter{}
	w := participant.NewBaseWriter(participant.EndpointConfig{
		Topic:  topicWithQoS(dds.TopicQoS{MaxTxRate: 2}),
		Clock:  mock,
		Logger: testlog.NewLogger(t),
	}, impl)

	xtest.AssertErrorsIs(t, w.Write(&participant.Data{}), participant.ErrNotEnabled)
	w.Enable()
	require.NoError(t, w.Write(&participant.Data{}))
	// Throttled writes succeed without reaching the implementation.
	require.NoError(t, w.Write(&participant.Data{}))
	assert.Len(t, impl.written, 1)
	mock.Add(500 * time.Millisecond)
	require.NoError(t, w.Write(&participant.Data{}))
	assert.Len(t, impl.written, 2)

	w.Disable()
	assert.False(t, w.Enabled())
	xtest.AssertErrorsIs(t, w.Write(&participant.Data{}), participant.ErrNotEnabled)
}

func TestInitializationError(t *testing.T) {
	err := participant.InitializationError(assert.AnError, "participant", "P1")
	xtest.AssertErrorsIs(t, err, participant.ErrInitialization)
	xtest.AssertErrorsIs(t, err, assert.AnError)
}
