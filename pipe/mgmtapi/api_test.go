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

package mgmtapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ddspipe/ddspipe/pipe"
	"github.com/ddspipe/ddspipe/pipe/mgmtapi"
	"github.com/ddspipe/ddspipe/pkg/dds"
	"github.com/ddspipe/ddspipe/pkg/monitor"
)

type fakePipe struct {
	mtx     sync.Mutex
	enabled bool
}

func (p *fakePipe) Snapshot() pipe.Snapshot {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	return pipe.Snapshot{
		Enabled: p.enabled,
		Participants: []pipe.ParticipantInfo{
			{ID: "lan"},
			{ID: "wan", Repeater: true},
		},
		Topics: []pipe.TopicInfo{
			{
				Topic:   dds.Topic{Name: "rt/chatter", Type: "String", Kind: dds.KindDDS},
				Allowed: true,
				Enabled: p.enabled,
				Tracks: map[dds.ParticipantID][]dds.ParticipantID{
					"lan": {"wan"},
					"wan": {"lan", "wan"},
				},
			},
			{
				Topic: dds.Topic{Name: "rt/private", Type: "String", Kind: dds.KindDDS},
			},
		},
	}
}

func (p *fakePipe) Enable() {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	p.enabled = true
}

func (p *fakePipe) Disable() {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	p.enabled = false
}

func do(t *testing.T, h http.Handler, method, path string, out any) *http.Response {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, mgmtapi.BaseURL+path, nil))
	resp := rec.Result()
	t.Cleanup(func() { resp.Body.Close() })
	if out != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestTopics(t *testing.T) {
	h := mgmtapi.Handler(&mgmtapi.Server{Pipe: &fakePipe{enabled: true}})

	var topics []mgmtapi.Topic
	resp := do(t, h, http.MethodGet, "/topics", &topics)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, []mgmtapi.Topic{
		{
			Name:    "rt/chatter",
			Type:    "String",
			Kind:    "dds",
			Allowed: true,
			Enabled: true,
			Tracks: map[string][]string{
				"lan": {"wan"},
				"wan": {"lan", "wan"},
			},
		},
		{Name: "rt/private", Type: "String", Kind: "dds"},
	}, topics)
}

func TestParticipants(t *testing.T) {
	h := mgmtapi.Handler(&mgmtapi.Server{Pipe: &fakePipe{}})

	var participants []mgmtapi.Participant
	resp := do(t, h, http.MethodGet, "/participants", &participants)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []mgmtapi.Participant{
		{ID: "lan"},
		{ID: "wan", Repeater: true},
	}, participants)
}

func TestMonitor(t *testing.T) {
	topic := dds.TopicKey{Name: "rt/chatter", Type: "String"}
	counters := monitor.NewCounters()
	counters.MsgReceived(topic, "lan")
	counters.MsgForwarded(topic, "lan", "wan")
	counters.TypeDiscovered("String")

	testCases := map[string]struct {
		Counters *monitor.Counters
		Want     monitor.Snapshot
	}{
		"counters": {
			Counters: counters,
			Want:     counters.Snapshot(),
		},
		"no counters": {
			Want: monitor.Snapshot{},
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			h := mgmtapi.Handler(&mgmtapi.Server{Pipe: &fakePipe{}, Counters: tc.Counters})
			var got monitor.Snapshot
			resp := do(t, h, http.MethodGet, "/monitor", &got)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, tc.Want, got)
		})
	}
}

func TestEnableDisable(t *testing.T) {
	p := &fakePipe{}
	h := mgmtapi.Handler(&mgmtapi.Server{Pipe: p})

	var status mgmtapi.Status
	do(t, h, http.MethodGet, "/status", &status)
	assert.False(t, status.Enabled)

	do(t, h, http.MethodPost, "/enable", &status)
	assert.True(t, status.Enabled)
	assert.True(t, p.Snapshot().Enabled)

	do(t, h, http.MethodPost, "/disable", &status)
	assert.False(t, status.Enabled)

	resp := do(t, h, http.MethodGet, "/enable", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	resp = do(t, h, http.MethodGet, "/unknown", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
