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

package payload_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ddspipe/ddspipe/pkg/payload"
)

// queueWriter mimics a middleware writer: it obtains storage from the
// allocator, fills it unless it already holds the data, and queues it.
type queueWriter struct {
	queued []*payload.Payload
	copies int
}

func (w *queueWriter) Write(src []byte, alloc payload.Allocator) error {
	p := &payload.Payload{}
	if !alloc.GetPayload(len(src), p) {
		return assert.AnError
	}
	if len(src) > 0 && &p.Bytes()[0] != &src[0] {
		copy(p.Bytes(), src)
		w.copies++
	}
	w.queued = append(w.queued, p)
	return nil
}

func (w *queueWriter) drain(t *testing.T, alloc payload.Allocator) {
	for _, p := range w.queued {
		require.NoError(t, alloc.ReleasePayload(p))
	}
	w.queued = nil
}

func TestMediatorAvoidsCopy(t *testing.T) {
	const messages = 10
	tests := map[string]struct {
		write         func(pool *payload.FastPool, w *queueWriter, p *payload.Payload) error
		wantAllocated uint64
		wantCopies    int
	}{
		"through mediator": {
			write: func(pool *payload.FastPool, w *queueWriter, p *payload.Payload) error {
				return payload.NewMediator(pool).Write(w, p)
			},
			wantAllocated: messages,
			wantCopies:    0,
		},
		"bypassing mediator": {
			write: func(pool *payload.FastPool, w *queueWriter, p *payload.Payload) error {
				return w.Write(p.Bytes(), pool)
			},
			wantAllocated: 2 * messages,
			wantCopies:    messages,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			pool := &payload.FastPool{}
			w := &queueWriter{}
			for i := 0; i < messages; i++ {
				var p payload.Payload
				require.True(t, pool.Reserve(8, &p))
				copy(p.Bytes(), "sample-0")
				require.NoError(t, tc.write(pool, w, &p))
				require.NoError(t, pool.Release(&p))
			}
			assert.Equal(t, tc.wantAllocated, pool.Stats().Allocated)
			assert.Equal(t, tc.wantCopies, w.copies)
			for _, p := range w.queued {
				assert.Equal(t, "sample-0", string(p.Bytes()))
			}
			w.drain(t, pool)
			assert.True(t, pool.IsClean())
		})
	}
}

func TestMediatorOutsideWrite(t *testing.T) {
	pool := &payload.FastPool{}
	m := payload.NewMediator(pool)
	var p payload.Payload
	require.True(t, m.GetPayload(4, &p))
	assert.Equal(t, 4, p.Len())
	require.NoError(t, m.ReleasePayload(&p))
	assert.True(t, pool.IsClean())
}
