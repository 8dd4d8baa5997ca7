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

// Package echo implements a participant that logs every sample written to it
// and, optionally, every endpoint the pipe discovers. Its readers never
// produce data.
package echo

import (
	"encoding/hex"

	"github.com/ddspipe/ddspipe/pkg/dds"
	"github.com/ddspipe/ddspipe/pkg/log"
	"github.com/ddspipe/ddspipe/pkg/participant"
	"github.com/ddspipe/ddspipe/pkg/participant/blank"
)

var (
	_ participant.Participant       = (*Participant)(nil)
	_ participant.DiscoveryListener = (*Participant)(nil)
)

// Config configures an echo participant.
type Config struct {
	ID dds.ParticipantID
	// Data enables logging of written samples.
	Data bool
	// Discovery enables logging of discovered endpoints.
	Discovery bool
	// Verbose adds the hex encoded payload to each sample entry.
	Verbose bool
	// Logger defaults to the root logger.
	Logger log.Logger
}

// Participant logs what it is given.
type Participant struct {
	*blank.Participant
	cfg Config
}

// New creates an echo participant.
func New(cfg Config) *Participant {
	if cfg.Logger == nil {
		cfg.Logger = log.New("participant", cfg.ID)
	}
	return &Participant{
		Participant: blank.New(cfg.ID, false, dds.TopicQoS{}),
		cfg:         cfg,
	}
}

func (p *Participant) CreateWriter(topic dds.Topic) (participant.Writer, error) {
	w := &writer{cfg: p.cfg, topic: topic}
	w.BaseWriter = participant.NewBaseWriter(participant.EndpointConfig{
		Participant: p.cfg.ID,
		Topic:       topic,
		Logger:      p.cfg.Logger,
	}, w)
	return w, nil
}

// EndpointDiscovered logs ep if discovery logging is enabled.
func (p *Participant) EndpointDiscovered(ep dds.Endpoint) {
	if !p.cfg.Discovery {
		return
	}
	if ep.Active {
		p.cfg.Logger.Info("Endpoint discovered", "endpoint", ep, "discoverer", ep.Discoverer)
	} else {
		p.cfg.Logger.Info("Endpoint removed", "endpoint", ep, "discoverer", ep.Discoverer)
	}
}

type writer struct {
	*participant.BaseWriter
	cfg   Config
	topic dds.Topic
}

func (w *writer) WriteNTS(data *participant.Data) error {
	if !w.cfg.Data {
		return nil
	}
	ctx := []any{
		"topic", w.topic.Key(),
		"source", data.Source,
		"from", data.Participant,
		"size", data.Payload.Len(),
	}
	if w.cfg.Verbose {
		ctx = append(ctx, "timestamp", data.SourceTimestamp,
			"payload", hex.EncodeToString(data.Payload.Bytes()))
	}
	w.cfg.Logger.Info("Data received", ctx...)
	return nil
}

func (w *writer) EnableNTS() {}
func (w *writer) DisableNTS() {}
