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

// Package payload provides the reference counted byte buffers that carry
// samples from readers to writers.
//
// A Payload is reserved from a Pool, filled by its owner and handed on. Sharing
// a payload that the pool owns does not copy; it only takes another
// reference on the underlying buffer. Every reserved or shared payload must be
// released exactly once.
package payload

import (
	"errors"
	"sync/atomic"
)

// ErrInconsistency indicates that a pool invariant was violated, for
// example by releasing a payload twice. It is a programming error.
var ErrInconsistency = errors.New("payload pool inconsistency")

type buffer struct {
	data []byte
	refs atomic.Int32
}

// Payload is a handle on a pool owned byte buffer. The zero value is an empty
// handle. A Payload must not be copied while it holds a buffer; hand it over
// by pointer or share it through its pool.
type Payload struct {
	buf   *buffer
	owner Pool
}

// Bytes returns the payload data. It is nil for an empty handle.
func (p *Payload) Bytes() []byte {
	if p == nil || p.buf == nil {
		return nil
	}
	return p.buf.data
}

// Len returns the payload size in bytes.
func (p *Payload) Len() int {
	return len(p.Bytes())
}

// Reserved reports whether the handle holds a buffer.
func (p *Payload) Reserved() bool {
	return p != nil && p.buf != nil
}

// Owner returns the pool the buffer was reserved from, or nil.
func (p *Payload) Owner() Pool {
	if p == nil {
		return nil
	}
	return p.owner
}

// SameBuffer reports whether both payloads reference the same buffer.
func (p *Payload) SameBuffer(o *Payload) bool {
	return p.Reserved() && o.Reserved() && p.buf == o.buf
}

func (p *Payload) reset() {
	p.buf = nil
	p.owner = nil
}

// Pool reserves and releases payloads.
type Pool interface {
	// Reserve allocates a buffer of exactly size bytes into target. It
	// returns false, leaving target untouched, if size is zero or target
	// already holds a buffer.
	Reserve(size int, target *Payload) bool
	// Share makes target reference the data of src. If the pool owns src no
	// data is copied. It returns false if src is empty or target already
	// holds a buffer.
	Share(src, target *Payload) bool
	// Release returns the buffer held by p and empties the handle. Releasing
	// more payloads than were reserved returns an error wrapping
	// ErrInconsistency.
	Release(p *Payload) error
	// IsClean reports whether every reserved payload has been released.
	IsClean() bool
}
