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

// Package participant defines the endpoints the pipe forwards between and
// the base implementations concrete participants build on.
//
// A Participant creates one Reader and one Writer per topic. Readers and
// writers start disabled. A disabled reader or writer returns ErrNotEnabled
// from Take and Write.
package participant

import (
	"errors"
	"time"

	"github.com/ddspipe/ddspipe/pkg/dds"
	"github.com/ddspipe/ddspipe/pkg/payload"
	"github.com/ddspipe/ddspipe/pkg/private/serrors"
)

var (
	// ErrNoData is returned by Take when the reader has nothing to deliver.
	ErrNoData = errors.New("no data available")
	// ErrNotEnabled is returned by readers and writers that are disabled.
	ErrNotEnabled = errors.New("not enabled")
	// ErrInitialization is returned when an endpoint cannot be created.
	ErrInitialization = errors.New("initialization failed")
)

// Data is one sample in transit.
type Data struct {
	Payload payload.Payload
	// Participant is the participant whose reader took the sample.
	Participant dds.ParticipantID
	// Source is the GUID of the writer that published the sample.
	Source dds.GUID
	// SourceTimestamp is the publication time of the sample.
	SourceTimestamp time.Time
}

// Release gives the payload back to its pool.
func (d *Data) Release() error {
	if !d.Payload.Reserved() {
		return nil
	}
	return d.Payload.Owner().Release(&d.Payload)
}

// Reader takes samples of one topic from a participant.
type Reader interface {
	Enable()
	Disable()
	// Take returns the next sample. The caller owns the returned data and
	// must release it. Take returns ErrNoData if nothing is pending.
	Take() (*Data, error)
	// SetOnDataAvailable registers the function called whenever new data
	// can be taken. Only one function can be registered.
	SetOnDataAvailable(fn func())
	UnsetOnDataAvailable()
}

// Writer writes samples of one topic into a participant.
type Writer interface {
	Enable()
	Disable()
	// Write sends the sample. It does not take ownership of data.
	Write(data *Data) error
}

// Participant is a named group of endpoints the pipe forwards between.
type Participant interface {
	ID() dds.ParticipantID
	// IsRepeater reports whether samples read from the participant may be
	// written back into it.
	IsRepeater() bool
	// TopicQoS returns the default QoS of the participant's endpoints.
	TopicQoS() dds.TopicQoS
	// CreateReader creates a disabled reader. Failures wrap
	// ErrInitialization.
	CreateReader(topic dds.Topic) (Reader, error)
	// CreateWriter creates a disabled writer. Failures wrap
	// ErrInitialization.
	CreateWriter(topic dds.Topic) (Writer, error)
	DeleteReader(r Reader)
	DeleteWriter(w Writer)
}

// Discoverer is implemented by participants that find endpoints in the data
// space they are attached to.
type Discoverer interface {
	// Discover calls fn for every endpoint that is found or that disappears.
	// Endpoints created by the participant itself are not reported. The
	// returned function stops the discovery.
	Discover(fn func(dds.Endpoint)) (stop func())
}

// DiscoveryListener is implemented by participants that want to observe the
// endpoints the pipe discovers.
type DiscoveryListener interface {
	EndpointDiscovered(ep dds.Endpoint)
}

// InitializationError wraps cause as an endpoint creation failure.
func InitializationError(cause error, ctx ...any) error {
	return serrors.Join(ErrInitialization, cause, ctx...)
}
