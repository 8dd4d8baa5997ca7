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

// Package blank implements a participant whose readers never produce data
// and whose writers discard everything.
package blank

import (
	"github.com/ddspipe/ddspipe/pkg/dds"
	"github.com/ddspipe/ddspipe/pkg/participant"
)

var _ participant.Participant = (*Participant)(nil)

// Participant is a sink and an empty source.
type Participant struct {
	id       dds.ParticipantID
	repeater bool
	qos      dds.TopicQoS
}

// New creates a blank participant.
func New(id dds.ParticipantID, repeater bool, qos dds.TopicQoS) *Participant {
	return &Participant{id: id, repeater: repeater, qos: qos}
}

func (p *Participant) ID() dds.ParticipantID { return p.id }
func (p *Participant) IsRepeater() bool { return p.repeater }
func (p *Participant) TopicQoS() dds.TopicQoS { return p.qos }

func (p *Participant) CreateReader(topic dds.Topic) (participant.Reader, error) {
	r := &Reader{}
	r.BaseReader = participant.NewBaseReader(participant.EndpointConfig{
		Participant: p.id,
		Topic:       topic,
	}, r)
	return r, nil
}

func (p *Participant) CreateWriter(topic dds.Topic) (participant.Writer, error) {
	w := &Writer{}
	w.BaseWriter = participant.NewBaseWriter(participant.EndpointConfig{
		Participant: p.id,
		Topic:       topic,
	}, w)
	return w, nil
}

func (p *Participant) DeleteReader(participant.Reader) {}

func (p *Participant) DeleteWriter(participant.Writer) {}

// Reader never has data.
type Reader struct {
	*participant.BaseReader
}

func (r *Reader) TakeNTS() (*participant.Data, error) { return nil, participant.ErrNoData }
func (r *Reader) EnableNTS() {}
func (r *Reader) DisableNTS() {}
func (r *Reader) AvailableNTS() bool { return false }

// Writer drops every sample.
type Writer struct {
	*participant.BaseWriter
}

func (w *Writer) WriteNTS(*participant.Data) error { return nil }
func (w *Writer) EnableNTS() {}
func (w *Writer) DisableNTS() {}
