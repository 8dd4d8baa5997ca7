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

// Package threadpool runs slotted tasks on a fixed set of workers.
//
// A task is registered once in a slot and then emitted any number of times.
// Emitting a slot that is already queued does nothing. Emitting a slot that is
// currently running schedules exactly one more run after the current one
// returns. A slot therefore never runs concurrently with itself and no
// emission is lost.
package threadpool

import (
	"sync"

	"github.com/ddspipe/ddspipe/pkg/log"
	"github.com/ddspipe/ddspipe/pkg/metrics"
	"github.com/ddspipe/ddspipe/pkg/private/serrors"
)

// TaskID identifies a slot.
type TaskID uint64

type slotState int

const (
	idle slotState = iota
	queued
	running
	// rerun is a running slot that was emitted again.
	rerun
)

type slot struct {
	fn    func()
	state slotState
}

// Metrics are the optional metrics of a Pool.
type Metrics struct {
	// Runs counts executed tasks.
	Runs metrics.Counter
	// Queued tracks the number of queued tasks.
	Queued metrics.Gauge
}

// Pool is a fixed size worker pool for slotted tasks.
type Pool struct {
	metrics Metrics

	mtx    sync.Mutex
	cond   *sync.Cond
	slots  map[TaskID]*slot
	queue  []TaskID
	nextID TaskID
	closed bool
	wg     sync.WaitGroup
}

// New starts a pool with n workers. n must be positive.
func New(n int, m Metrics) *Pool {
	if n <= 0 {
		panic("threadpool needs at least one worker")
	}
	p := &Pool{
		metrics: m,
		slots:   make(map[TaskID]*slot),
	}
	p.cond = sync.NewCond(&p.mtx)
	p.wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer log.HandlePanic()
			defer p.wg.Done()
			p.work()
		}()
	}
	log.Debug("Thread pool started", "workers", n)
	return p
}

// NewTaskID returns an id that was never handed out before by this pool.
func (p *Pool) NewTaskID() TaskID {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	p.nextID++
	return p.nextID
}

// Slot registers fn under id. Registering an id twice is an error.
func (p *Pool) Slot(id TaskID, fn func()) error {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	if _, ok := p.slots[id]; ok {
		return serrors.New("slot already registered", "id", id)
	}
	p.slots[id] = &slot{fn: fn}
	return nil
}

// Unslot removes the slot. A queued run of the slot is dropped; a running one
// completes.
func (p *Pool) Unslot(id TaskID) {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	delete(p.slots, id)
}

// Emit schedules a run of the slot. Emitting an unknown slot or emitting on a
// closed pool does nothing.
func (p *Pool) Emit(id TaskID) {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	s, ok := p.slots[id]
	if !ok || p.closed {
		return
	}
	switch s.state {
	case idle:
		s.state = queued
		p.enqueue(id)
	case running:
		s.state = rerun
	}
}

// Close stops the workers after the running tasks return. Queued tasks are
// dropped. Close blocks until all workers have exited.
func (p *Pool) Close() {
	p.mtx.Lock()
	p.closed = true
	p.queue = nil
	metrics.GaugeSet(p.metrics.Queued, 0)
	p.cond.Broadcast()
	p.mtx.Unlock()
	p.wg.Wait()
}

func (p *Pool) enqueue(id TaskID) {
	p.queue = append(p.queue, id)
	metrics.GaugeAdd(p.metrics.Queued, 1)
	p.cond.Signal()
}

func (p *Pool) work() {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	for {
		for len(p.queue) == 0 && !p.closed {
			p.cond.Wait()
		}
		if p.closed {
			return
		}
		id := p.queue[0]
		p.queue = p.queue[1:]
		metrics.GaugeAdd(p.metrics.Queued, -1)
		s, ok := p.slots[id]
		if !ok || s.state != queued {
			continue
		}
		s.state = running
		p.mtx.Unlock()
		s.fn()
		metrics.CounterInc(p.metrics.Runs)
		p.mtx.Lock()
		switch {
		case s.state == rerun && !p.closed:
			s.state = queued
			p.enqueue(id)
		default:
			s.state = idle
		}
	}
}
