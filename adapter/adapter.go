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

// Package adapter defines the boundary between the query core and external
// heap/event sources (spec §4.H/§6). The core never parses a heap dump or
// walks a dominator tree itself; it asks an Adapter for row streams and
// graph-service results and stays agnostic to backend storage, grounded on
// the same isolation the teacher draws between stream.Stream and whatever
// produces its input rows.
package adapter

import (
	"context"

	"github.com/heapql/heapql/ast"
	"github.com/heapql/heapql/value"
)

// RowStream is a lazy pull iterator over rows, the only mandatory
// capability a backend must supply (§6: "each is optional except the base
// stream"). Next returns (nil, false, nil) at end of stream.
type RowStream interface {
	Next(ctx context.Context) (*value.Row, bool, error)
	Close() error
}

// SliceStream adapts a pre-materialized []*value.Row into a RowStream, the
// simplest possible backend and the one the in-memory adapter below and
// the executor tests use.
type SliceStream struct {
	rows []*value.Row
	pos  int
}

func NewSliceStream(rows []*value.Row) *SliceStream { return &SliceStream{rows: rows} }

func (s *SliceStream) Next(ctx context.Context) (*value.Row, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if s.pos >= len(s.rows) {
		return nil, false, nil
	}
	row := s.rows[s.pos]
	s.pos++
	return row, true, nil
}

func (s *SliceStream) Close() error { return nil }

// GraphService backs the graph-oriented pipeline operators (pathToRoot,
// retentionPaths, retainedBreakdown, dominators, checkLeaks). Each method
// returns errors.KindUnsupportedOperation when the backend has not
// precomputed the structure the request needs; the exec package turns that
// into a single {error: ...} result row rather than aborting the query
// (spec §4.F/§7).
type GraphService interface {
	PathToRoot(ctx context.Context, objectID int64) ([]*value.Row, error)
	RetentionPaths(ctx context.Context, objectID int64) ([]*value.Row, error)
	RetainedBreakdown(ctx context.Context, objectID int64, maxDepth int) ([]*value.Row, error)
	Dominators(ctx context.Context, mode string) ([]*value.Row, error)
	CheckLeaks(ctx context.Context, detector string, filter ast.BoolExpr) ([]*value.Row, error)
}

// Adapter is the full capability set the core can draw on for one query.
// Every method beyond Stream/TotalCount is allowed to return
// (nil, ErrUnsupported) when the backend doesn't implement it; the core
// falls back to a full scan or reports UnsupportedOperation, never panics.
type Adapter interface {
	// Stream opens a lazy row stream over root, projected per the schema
	// contracts in spec §6. The caller must Close it.
	Stream(ctx context.Context, root ast.Root) (RowStream, error)

	// TotalCount reports the backend's best known row count for root, used
	// for the streaming-threshold decision (spec §4.G). ok is false when
	// the backend cannot answer cheaply, in which case the core assumes a
	// materialized execution is safe.
	TotalCount(ctx context.Context, root ast.Root) (count int64, ok bool)

	// ObjectsOfClass is an optional index; ok is false when absent and the
	// core must fall back to a full objects() scan plus a type filter.
	ObjectsOfClass(ctx context.Context, className string) (RowStream, bool, error)

	// Graph returns the adapter's graph service, or (nil, false) when the
	// backend offers none.
	Graph() (GraphService, bool)

	// Close releases any backend handles (file maps, indices) acquired for
	// this query. Called exactly once, regardless of outcome.
	Close() error
}

// ErrUnsupported is a sentinel a GraphService implementation can wrap or
// compare against to signal a missing precondition; exec also accepts any
// error carrying errors.KindUnsupportedOperation.
var ErrUnsupported = unsupportedSentinel{}

type unsupportedSentinel struct{}

func (unsupportedSentinel) Error() string { return "adapter: operation not supported" }
