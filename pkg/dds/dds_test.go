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

package dds_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ddspipe/ddspipe/pkg/dds"
)

func TestTopicValidate(t *testing.T) {
	tests := map[string]struct {
		topic     dds.Topic
		assertErr assert.ErrorAssertionFunc
	}{
		"valid": {
			topic:     dds.Topic{Name: "chatter", Type: "String", Kind: dds.KindDDS},
			assertErr: assert.NoError,
		},
		"empty name": {
			topic:     dds.Topic{Type: "String", Kind: dds.KindDDS},
			assertErr: assert.Error,
		},
		"unknown kind": {
			topic:     dds.Topic{Name: "chatter", Type: "String"},
			assertErr: assert.Error,
		},
		"negative rate": {
			topic: dds.Topic{Name: "chatter", Kind: dds.KindDDS,
				QoS: dds.TopicQoS{MaxRxRate: -1}},
			assertErr: assert.Error,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			tc.assertErr(t, tc.topic.Validate())
		})
	}
}

func TestQoSEqual(t *testing.T) {
	a := dds.TopicQoS{Reliability: dds.Reliable, Partitions: []string{"a"}}
	b := dds.TopicQoS{Reliability: dds.Reliable, Partitions: []string{"a"}}
	assert.True(t, a.Equal(b))
	b.Partitions = []string{"b"}
	assert.False(t, a.Equal(b))
	b.Partitions = []string{"a"}
	b.Durability = dds.TransientLocal
	assert.False(t, a.Equal(b))
}

func TestQoSAdmission(t *testing.T) {
	topic := dds.TopicQoS{Durability: dds.TransientLocal, HistoryDepth: 5, MaxRxRate: 20}
	defaults := dds.TopicQoS{HistoryDepth: 100, Downsampling: 2, MaxRxRate: 1, MaxTxRate: 3}

	merged := topic.WithAdmissionDefaults(defaults)
	assert.Equal(t, dds.TopicQoS{
		Durability:   dds.TransientLocal,
		HistoryDepth: 5,
		Downsampling: 2,
		MaxRxRate:    20,
		MaxTxRate:    3,
	}, merged)

	overridden := topic.OverrideAdmission(dds.TopicQoS{Downsampling: 4, MaxRxRate: 1})
	assert.Equal(t, dds.TopicQoS{
		Durability:   dds.TransientLocal,
		HistoryDepth: 5,
		Downsampling: 4,
		MaxRxRate:    1,
	}, overridden)
}

func TestEndpointValidate(t *testing.T) {
	valid := dds.Endpoint{
		GUID:       dds.GUID{Prefix: "01.0f", Entity: 3},
		Topic:      dds.Topic{Name: "chatter", Type: "String", Kind: dds.KindDDS},
		Kind:       dds.ReaderEndpoint,
		Discoverer: "P1",
		Active:     true,
	}
	assert.NoError(t, valid.Validate())

	invalid := valid
	invalid.GUID = dds.GUID{}
	invalid.Discoverer = ""
	err := invalid.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "guid")
	assert.Contains(t, err.Error(), "discoverer")
}

func TestTopicFilterMatches(t *testing.T) {
	tests := map[string]struct {
		filter dds.TopicFilter
		topic  dds.TopicKey
		want   bool
	}{
		"empty matches all": {
			filter: dds.TopicFilter{},
			topic:  dds.TopicKey{Name: "rt/chatter", Type: "std_msgs::msg::String"},
			want:   true,
		},
		"star crosses slash": {
			filter: dds.TopicFilter{Name: "rt/*"},
			topic:  dds.TopicKey{Name: "rt/ns/chatter"},
			want:   true,
		},
		"question mark": {
			filter: dds.TopicFilter{Name: "topic?"},
			topic:  dds.TopicKey{Name: "topic1"},
			want:   true,
		},
		"type mismatch": {
			filter: dds.TopicFilter{Name: "*", Type: "HelloWorld"},
			topic:  dds.TopicKey{Name: "chatter", Type: "String"},
			want:   false,
		},
		"exact": {
			filter: dds.TopicFilter{Name: "chatter", Type: "String"},
			topic:  dds.TopicKey{Name: "chatter", Type: "String"},
			want:   true,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.filter.Matches(tc.topic))
		})
	}
}

func TestAllowedTopicList(t *testing.T) {
	chatter := dds.TopicKey{Name: "rt/chatter", Type: "String"}
	secret := dds.TopicKey{Name: "rt/secret", Type: "String"}
	other := dds.TopicKey{Name: "other", Type: "Point"}

	tests := map[string]struct {
		allow, block []dds.TopicFilter
		want         map[dds.TopicKey]bool
	}{
		"empty lists allow all": {
			want: map[dds.TopicKey]bool{chatter: true, secret: true, other: true},
		},
		"allowlist restricts": {
			allow: []dds.TopicFilter{{Name: "rt/*"}},
			want:  map[dds.TopicKey]bool{chatter: true, secret: true, other: false},
		},
		"blocklist wins": {
			allow: []dds.TopicFilter{{Name: "rt/*"}},
			block: []dds.TopicFilter{{Name: "*secret"}},
			want:  map[dds.TopicKey]bool{chatter: true, secret: false, other: false},
		},
		"blocklist only": {
			block: []dds.TopicFilter{{Type: "Point"}},
			want:  map[dds.TopicKey]bool{chatter: true, secret: true, other: false},
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			l, err := dds.NewAllowedTopicList(tc.allow, tc.block)
			require.NoError(t, err)
			for topic, want := range tc.want {
				assert.Equal(t, want, l.IsAllowed(topic), topic.String())
				// Cached decision.
				assert.Equal(t, want, l.IsAllowed(topic), topic.String())
			}
		})
	}
}

func TestAllowedTopicListInvalidPattern(t *testing.T) {
	_, err := dds.NewAllowedTopicList([]dds.TopicFilter{{Name: "[a-"}}, nil)
	assert.Error(t, err)
}
