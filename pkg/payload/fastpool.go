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
	"sync/atomic"

	"github.com/ddspipe/ddspipe/pkg/metrics"
	"github.com/ddspipe/ddspipe/pkg/private/serrors"
)

var _ Pool = (*FastPool)(nil)
var _ Allocator = (*FastPool)(nil)

// FastPool is a lock free Pool. Buffers are allocated on demand and handed
// back to the runtime once their last reference is released.
type FastPool struct {
	// Allocations, if set, counts every newly allocated buffer.
	Allocations metrics.Counter

	reserved  atomic.Uint64
	released  atomic.Uint64
	allocated atomic.Uint64
}

func (p *FastPool) Reserve(size int, target *Payload) bool {
	if size <= 0 || target == nil || target.buf != nil {
		return false
	}
	b := &buffer{data: make([]byte, size)}
	b.refs.Store(1)
	p.allocated.Add(1)
	metrics.CounterInc(p.Allocations)
	p.reserved.Add(1)
	target.buf = b
	target.owner = p
	return true
}

func (p *FastPool) Share(src, target *Payload) bool {
	if !src.Reserved() || target == nil || target.buf != nil {
		return false
	}
	if src.owner != Pool(p) {
		if !p.Reserve(src.Len(), target) {
			return false
		}
		copy(target.buf.data, src.buf.data)
		return true
	}
	src.buf.refs.Add(1)
	p.reserved.Add(1)
	target.buf = src.buf
	target.owner = p
	return true
}

func (p *FastPool) Release(payload *Payload) error {
	if !payload.Reserved() {
		return serrors.JoinNoStack(ErrInconsistency, nil, "reason", "payload not reserved")
	}
	if payload.owner != Pool(p) {
		return serrors.JoinNoStack(ErrInconsistency, nil, "reason", "payload of other pool")
	}
	for {
		released := p.released.Load()
		if released+1 > p.reserved.Load() {
			return serrors.JoinNoStack(ErrInconsistency, nil,
				"reserved", p.reserved.Load(), "released", released)
		}
		if p.released.CompareAndSwap(released, released+1) {
			break
		}
	}
	if refs := payload.buf.refs.Add(-1); refs < 0 {
		return serrors.JoinNoStack(ErrInconsistency, nil, "reason", "negative reference count")
	}
	payload.reset()
	return nil
}

func (p *FastPool) IsClean() bool {
	return p.reserved.Load() == p.released.Load()
}

// GetPayload implements Allocator by reserving a new buffer.
func (p *FastPool) GetPayload(size int, target *Payload) bool {
	return p.Reserve(size, target)
}

// ReleasePayload implements Allocator.
func (p *FastPool) ReleasePayload(payload *Payload) error {
	return p.Release(payload)
}

// Stats is a point in time view of the pool counters.
type Stats struct {
	Reserved  uint64 `json:"reserved"`
	Released  uint64 `json:"released"`
	Allocated uint64 `json:"allocated"`
}

// Stats returns the current counters.
func (p *FastPool) Stats() Stats {
	return Stats{
		Reserved:  p.reserved.Load(),
		Released:  p.released.Load(),
		Allocated: p.allocated.Load(),
	}
}
