// Copyright 2021 Anapaya Systems
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

// Package mgmtapi implements the http management API of the pipe.
package mgmtapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/ddspipe/ddspipe/pipe"
	"github.com/ddspipe/ddspipe/pkg/log"
	"github.com/ddspipe/ddspipe/pkg/monitor"
)

// BaseURL is the prefix of every endpoint.
const BaseURL = "/api/v1"

// Pipe is the part of the pipe the API observes and controls.
type Pipe interface {
	Snapshot() pipe.Snapshot
	Enable()
	Disable()
}

// Server implements the http management API of the pipe.
type Server struct {
	Pipe Pipe
	// Counters backs the monitor endpoint. If nil, the endpoint reports an
	// empty snapshot.
	Counters *monitor.Counters
}

// Handler returns the http handler serving the API below BaseURL.
func Handler(s *Server) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
	}))
	r.Route(BaseURL, func(r chi.Router) {
		r.Get("/status", s.GetStatus)
		r.Get("/topics", s.GetTopics)
		r.Get("/participants", s.GetParticipants)
		r.Get("/monitor", s.GetMonitor)
		r.Post("/enable", s.Enable)
		r.Post("/disable", s.Disable)
	})
	return r
}

// Status is the forwarding state of the pipe.
type Status struct {
	Enabled bool `json:"enabled"`
}

// Topic describes a known topic.
type Topic struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Kind    string `json:"kind"`
	Allowed bool   `json:"allowed"`
	Enabled bool   `json:"enabled"`
	// Tracks maps every reading participant to its destinations.
	Tracks map[string][]string `json:"tracks,omitempty"`
}

// Participant describes a participant of the pipe.
type Participant struct {
	ID       string `json:"id"`
	Repeater bool   `json:"repeater"`
}

// Problem is an error response.
type Problem struct {
	Status int    `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`
}

// GetStatus reports whether the pipe forwards.
func (s *Server) GetStatus(w http.ResponseWriter, r *http.Request) {
	s.writeStatus(w, r)
}

// GetTopics lists the known topics with their bridges.
func (s *Server) GetTopics(w http.ResponseWriter, r *http.Request) {
	snap := s.Pipe.Snapshot()
	topics := make([]Topic, 0, len(snap.Topics))
	for _, t := range snap.Topics {
		topic := Topic{
			Name:    t.Topic.Name,
			Type:    t.Topic.Type,
			Kind:    t.Topic.Kind.String(),
			Allowed: t.Allowed,
			Enabled: t.Enabled,
		}
		if len(t.Tracks) > 0 {
			topic.Tracks = make(map[string][]string, len(t.Tracks))
			for src, dsts := range t.Tracks {
				writers := make([]string, 0, len(dsts))
				for _, dst := range dsts {
					writers = append(writers, string(dst))
				}
				topic.Tracks[string(src)] = writers
			}
		}
		topics = append(topics, topic)
	}
	writeJSON(w, r, topics)
}

// GetParticipants lists the participants of the pipe.
func (s *Server) GetParticipants(w http.ResponseWriter, r *http.Request) {
	snap := s.Pipe.Snapshot()
	participants := make([]Participant, 0, len(snap.Participants))
	for _, p := range snap.Participants {
		participants = append(participants, Participant{ID: string(p.ID), Repeater: p.Repeater})
	}
	writeJSON(w, r, participants)
}

// GetMonitor reports the collected counters.
func (s *Server) GetMonitor(w http.ResponseWriter, r *http.Request) {
	var snap monitor.Snapshot
	if s.Counters != nil {
		snap = s.Counters.Snapshot()
	}
	writeJSON(w, r, snap)
}

// Enable starts forwarding.
func (s *Server) Enable(w http.ResponseWriter, r *http.Request) {
	s.Pipe.Enable()
	log.FromCtx(r.Context()).Info("Pipe enabled through management API")
	s.writeStatus(w, r)
}

// Disable stops forwarding.
func (s *Server) Disable(w http.ResponseWriter, r *http.Request) {
	s.Pipe.Disable()
	log.FromCtx(r.Context()).Info("Pipe disabled through management API")
	s.writeStatus(w, r)
}

func (s *Server) writeStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, Status{Enabled: s.Pipe.Snapshot().Enabled})
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	raw, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		log.FromCtx(r.Context()).Error("Marshaling response", "err", err)
		ErrorResponse(w, Problem{
			Status: http.StatusInternalServerError,
			Title:  "unable to marshal response",
			Detail: err.Error(),
		})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(append(raw, '\n'))
}

// ErrorResponse writes a detailed error response.
func ErrorResponse(w http.ResponseWriter, p Problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	// no point in catching error here, there is nothing we can do about it anymore.
	_ = enc.Encode(p)
}
