/*
 * Copyright 2025 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package stream

import (
	"container/heap"
	"sort"

	"github.com/heapql/heapql/value"
)

// rowHeap is a container/heap.Interface over rows, ordered by less. The
// root is always the "worst" kept row — the one evicted first when a
// better candidate arrives — which is why topAccumulator builds it with
// the inverse of the user's requested direction (spec §4.G).
type rowHeap struct {
	rows []*value.Row
	less func(a, b *value.Row) bool
}

func (h *rowHeap) Len() int { return len(h.rows) }
func (h *rowHeap) Less(i, j int) bool {
	return h.less(h.rows[i], h.rows[j])
}
func (h *rowHeap) Swap(i, j int) { h.rows[i], h.rows[j] = h.rows[j], h.rows[i] }
func (h *rowHeap) Push(x any)    { h.rows = append(h.rows, x.(*value.Row)) }
func (h *rowHeap) Pop() any {
	n := len(h.rows)
	last := h.rows[n-1]
	h.rows = h.rows[:n-1]
	return last
}

// topAccumulator maintains a bounded heap of size n while the stream is
// consumed, then sorts the survivors into the requested direction once the
// stream ends (spec §4.G: "maintain a bounded heap of size n using the
// inverse of the desired order; after the stream ends, sort the heap in
// the requested direction").
type topAccumulator struct {
	n          int
	orderBy    []string
	hasOrderBy bool
	desc       bool
	h          *rowHeap
	fifo       []*value.Row // used when there is no orderBy: first n rows seen, per the materialized executor's no-op comparator behavior
}

func newTopAccumulator(n int, orderBy []string, hasOrderBy, desc bool) *topAccumulator {
	t := &topAccumulator{n: n, orderBy: orderBy, hasOrderBy: hasOrderBy, desc: desc}
	if hasOrderBy {
		t.h = &rowHeap{less: func(a, b *value.Row) bool {
			av := value.Extract(a, orderBy)
			bv := value.Extract(b, orderBy)
			cmp := value.Compare(av, bv)
			if desc {
				// keep the n largest: root of a min-heap is the smallest kept
				return cmp < 0
			}
			// keep the n smallest: root of a max-heap is the largest kept
			return cmp > 0
		}}
	}
	return t
}

func (t *topAccumulator) Add(row *value.Row) error {
	if t.n <= 0 {
		return nil
	}
	if !t.hasOrderBy {
		if len(t.fifo) < t.n {
			t.fifo = append(t.fifo, row)
		}
		return nil
	}
	if t.h.Len() < t.n {
		heap.Push(t.h, row)
		return nil
	}
	worst := t.h.rows[0]
	av := value.Extract(row, t.orderBy)
	wv := value.Extract(worst, t.orderBy)
	cmp := value.Compare(av, wv)
	beats := cmp > 0
	if !t.desc {
		beats = cmp < 0
	}
	if beats {
		t.h.rows[0] = row
		heap.Fix(t.h, 0)
	}
	return nil
}

func (t *topAccumulator) Finalize() []*value.Row {
	if !t.hasOrderBy {
		return t.fifo
	}
	out := append([]*value.Row(nil), t.h.rows...)
	sort.SliceStable(out, func(i, j int) bool {
		a := value.Extract(out[i], t.orderBy)
		b := value.Extract(out[j], t.orderBy)
		if t.desc {
			return value.Compare(a, b) > 0
		}
		return value.Compare(a, b) < 0
	})
	return out
}
