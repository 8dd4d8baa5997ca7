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

// Package dds contains the DDS domain types shared by all pipe components:
// participant ids, topics with their QoS, endpoint identities and topic
// filters.
package dds

import (
	"fmt"
	"strings"

	"github.com/ddspipe/ddspipe/pkg/private/serrors"
)

// ParticipantID identifies a named group of endpoints, for example one DDS
// domain participant. It is immutable once configured.
type ParticipantID string

func (id ParticipantID) String() string {
	return string(id)
}

// TopicKind discriminates the internal representation of a topic's data.
type TopicKind int

const (
	// KindUnknown is the zero value and is never valid.
	KindUnknown TopicKind = iota
	// KindDDS marks user data in its serialized DDS form.
	KindDDS
	// KindRPC marks request/reply topics of a DDS service.
	KindRPC
)

func (k TopicKind) String() string {
	switch k {
	case KindDDS:
		return "dds"
	case KindRPC:
		return "rpc"
	default:
		return "unknown"
	}
}

// DurabilityKind is the DDS durability QoS.
type DurabilityKind int

const (
	Volatile DurabilityKind = iota
	TransientLocal
)

func (d DurabilityKind) String() string {
	if d == TransientLocal {
		return "transient-local"
	}
	return "volatile"
}

// ReliabilityKind is the DDS reliability QoS.
type ReliabilityKind int

const (
	BestEffort ReliabilityKind = iota
	Reliable
)

func (r ReliabilityKind) String() string {
	if r == Reliable {
		return "reliable"
	}
	return "best-effort"
}

// OwnershipKind is the DDS ownership QoS.
type OwnershipKind int

const (
	Shared OwnershipKind = iota
	Exclusive
)

func (o OwnershipKind) String() string {
	if o == Exclusive {
		return "exclusive"
	}
	return "shared"
}

// TopicQoS holds the QoS of a distributed topic together with the pipe
// specific admission settings.
type TopicQoS struct {
	Durability   DurabilityKind
	Reliability  ReliabilityKind
	Ownership    OwnershipKind
	HistoryDepth uint32
	Keyed        bool
	Partitions   []string
	// Downsampling keeps one out of every Downsampling samples. Zero and one
	// disable downsampling.
	Downsampling uint32
	// MaxRxRate is the maximum number of samples per second a reader accepts.
	// Zero means unlimited.
	MaxRxRate float64
	// MaxTxRate is the maximum number of samples per second a writer sends.
	// Zero means unlimited.
	MaxTxRate float64
}

// Validate checks that the admission settings are usable.
func (q TopicQoS) Validate() error {
	if q.MaxRxRate < 0 {
		return serrors.New("negative max reception rate", "rate", q.MaxRxRate)
	}
	if q.MaxTxRate < 0 {
		return serrors.New("negative max transmission rate", "rate", q.MaxTxRate)
	}
	return nil
}

// WithAdmissionDefaults returns q with every unset admission setting
// (history depth, downsampling and rates) taken from d.
func (q TopicQoS) WithAdmissionDefaults(d TopicQoS) TopicQoS {
	if q.HistoryDepth == 0 {
		q.HistoryDepth = d.HistoryDepth
	}
	if q.Downsampling == 0 {
		q.Downsampling = d.Downsampling
	}
	if q.MaxRxRate == 0 {
		q.MaxRxRate = d.MaxRxRate
	}
	if q.MaxTxRate == 0 {
		q.MaxTxRate = d.MaxTxRate
	}
	return q
}

// OverrideAdmission returns q with every admission setting that is set in o
// replaced by the one of o.
func (q TopicQoS) OverrideAdmission(o TopicQoS) TopicQoS {
	if o.HistoryDepth != 0 {
		q.HistoryDepth = o.HistoryDepth
	}
	if o.Downsampling != 0 {
		q.Downsampling = o.Downsampling
	}
	if o.MaxRxRate != 0 {
		q.MaxRxRate = o.MaxRxRate
	}
	if o.MaxTxRate != 0 {
		q.MaxTxRate = o.MaxTxRate
	}
	return q
}

// Equal reports whether both QoS are identical.
func (q TopicQoS) Equal(o TopicQoS) bool {
	if q.Durability != o.Durability || q.Reliability != o.Reliability ||
		q.Ownership != o.Ownership || q.HistoryDepth != o.HistoryDepth ||
		q.Keyed != o.Keyed || q.Downsampling != o.Downsampling ||
		q.MaxRxRate != o.MaxRxRate || q.MaxTxRate != o.MaxTxRate ||
		len(q.Partitions) != len(o.Partitions) {
		return false
	}
	for i := range q.Partitions {
		if q.Partitions[i] != o.Partitions[i] {
			return false
		}
	}
	return true
}

// Topic identifies a data stream.
type Topic struct {
	Name string
	Type string
	Kind TopicKind
	QoS  TopicQoS
}

// Validate checks that the topic has a name and a known kind.
func (t Topic) Validate() error {
	if t.Name == "" {
		return serrors.New("topic name is empty")
	}
	if t.Kind == KindUnknown {
		return serrors.New("topic kind is not set", "topic", t.Name)
	}
	return t.QoS.Validate()
}

// Key returns the identity of the topic regardless of its QoS.
func (t Topic) Key() TopicKey {
	return TopicKey{Name: t.Name, Type: t.Type}
}

func (t Topic) String() string {
	return fmt.Sprintf("%s<%s>", t.Name, t.Type)
}

// TopicKey is the comparable identity of a topic.
type TopicKey struct {
	Name string
	Type string
}

func (k TopicKey) String() string {
	return fmt.Sprintf("%s<%s>", k.Name, k.Type)
}

// GUID identifies a single endpoint within a participant.
type GUID struct {
	Prefix string
	Entity uint32
}

func (g GUID) String() string {
	return fmt.Sprintf("%s.%x", g.Prefix, g.Entity)
}

// IsZero reports whether g is the zero GUID.
func (g GUID) IsZero() bool {
	return g == GUID{}
}

// EndpointKind is the direction of an endpoint.
type EndpointKind int

const (
	ReaderEndpoint EndpointKind = iota + 1
	WriterEndpoint
)

func (k EndpointKind) String() string {
	switch k {
	case ReaderEndpoint:
		return "reader"
	case WriterEndpoint:
		return "writer"
	default:
		return "invalid"
	}
}

// Endpoint is a reader or writer discovered on the wire.
type Endpoint struct {
	GUID  GUID
	Topic Topic
	Kind  EndpointKind
	// Discoverer is the participant that discovered the endpoint.
	Discoverer ParticipantID
	// Active is false once the endpoint is gone but still remembered.
	Active bool
}

// Validate checks that the endpoint is fully specified.
func (e Endpoint) Validate() error {
	var errs serrors.List
	if e.GUID.IsZero() {
		errs = append(errs, serrors.New("endpoint guid is not set"))
	}
	if e.Kind != ReaderEndpoint && e.Kind != WriterEndpoint {
		errs = append(errs, serrors.New("endpoint kind is invalid", "kind", int(e.Kind)))
	}
	if e.Discoverer == "" {
		errs = append(errs, serrors.New("endpoint discoverer is not set"))
	}
	if err := e.Topic.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errs.ToError()
}

func (e Endpoint) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s on %s by %s", e.Kind, e.GUID, e.Topic, e.Discoverer)
	if !e.Active {
		b.WriteString(" (inactive)")
	}
	return b.String()
}
