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

package payload

import (
	"sync"
)

// Allocator hands out storage to a PullWriter.
type Allocator interface {
	// GetPayload provides a buffer of size bytes in target.
	GetPayload(size int, target *Payload) bool
	// ReleasePayload gives back a buffer obtained from GetPayload.
	ReleasePayload(p *Payload) error
}

// PullWriter is a writer that obtains its own storage for the data it is
// asked to send. If the storage returned by the allocator already holds src,
// the writer must not copy.
type PullWriter interface {
	Write(src []byte, alloc Allocator) error
}

var _ Allocator = (*Mediator)(nil)

// Mediator lets a PullWriter reuse the pool buffer of the payload it is
// writing instead of allocating and copying. One write passes through the
// mediator at a time.
type Mediator struct {
	pool Pool
	mtx  sync.Mutex
}

// NewMediator creates a mediator over pool.
func NewMediator(pool Pool) *Mediator {
	if pool == nil {
		panic("nil pool")
	}
	return &Mediator{pool: pool}
}

// Write invokes w with the data of p. Allocations w performs during the call
// share the buffer of p.
func (m *Mediator) Write(w PullWriter, p *Payload) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return w.Write(p.Bytes(), scoped{m: m, pending: p})
}

// GetPayload reserves a new buffer. It is used by writers that allocate
// outside of Write.
func (m *Mediator) GetPayload(size int, target *Payload) bool {
	return m.pool.Reserve(size, target)
}

// ReleasePayload forwards to the pool.
func (m *Mediator) ReleasePayload(p *Payload) error {
	return m.pool.Release(p)
}

// scoped is the allocator handed to the writer for the duration of one Write.
type scoped struct {
	m       *Mediator
	pending *Payload
}

// GetPayload ignores size and shares the pending payload.
func (s scoped) GetPayload(_ int, target *Payload) bool {
	return s.m.pool.Share(s.pending, target)
}

func (s scoped) ReleasePayload(p *Payload) error {
	return s.m.pool.Release(p)
}
