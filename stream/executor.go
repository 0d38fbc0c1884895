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
	"context"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/heapql/heapql/adapter"
	"github.com/heapql/heapql/ast"
	"github.com/heapql/heapql/diagnostic"
	"github.com/heapql/heapql/errors"
	"github.com/heapql/heapql/eval"
	"github.com/heapql/heapql/exec"
	"github.com/heapql/heapql/value"
)

const (
	defaultBufferMultiplier = 5
	defaultBufferMin        = 1000
	defaultTickInterval     = 500 * time.Millisecond
	fallbackTopN            = 100
)

// Executor drives a lazy adapter.RowStream through a single leading
// aggregating operator with bounded memory (spec §4.G), then hands the
// small intermediate result off to the materialized executor for any
// remaining pipeline stages.
type Executor struct {
	Eval     *eval.Evaluator
	Graph    adapter.GraphService
	HasGraph bool
	Diag     diagnostic.Sink
	QueryID  ulid.ULID

	// BufferMultiplier and BufferMin tune the groupBy→top(n) bounded-buffer
	// heuristic: the buffer holds at most max(BufferMultiplier*n, BufferMin)
	// groups (spec §4.G, §5 "the buffer multiplier is tunable").
	BufferMultiplier int
	BufferMin        int

	// TickInterval bounds how often a progress event may be emitted; spec
	// §4.G mandates "at most once every 500ms".
	TickInterval time.Duration
}

// New creates an Executor with the spec's default buffer-tuning constants.
func New(ev *eval.Evaluator, graph adapter.GraphService, hasGraph bool, diag diagnostic.Sink, queryID ulid.ULID) *Executor {
	return &Executor{
		Eval:             ev,
		Graph:            graph,
		HasGraph:         hasGraph,
		Diag:             diag,
		QueryID:          queryID,
		BufferMultiplier: defaultBufferMultiplier,
		BufferMin:        defaultBufferMin,
		TickInterval:     defaultTickInterval,
	}
}

// accumulator is the common shape of every bounded-memory fold this
// package drives over the stream.
type accumulator interface {
	Add(row *value.Row) error
	Finalize() []*value.Row
}

// Run consumes rs under q's type selector and predicate (with leading
// filter operators peeled into the predicate, spec §4.G "Peeling"),
// applies the leading aggregating operator via a bounded accumulator, and
// runs any remaining pipeline stages through the materialized executor.
func (x *Executor) Run(ctx context.Context, q *ast.Query, rs adapter.RowStream) ([]*value.Row, error) {
	defer rs.Close()

	tm, err := exec.NewTypeMatcher(q.TypeSelector)
	if err != nil {
		return nil, errors.ArgumentErrorf(-1, "invalid type selector: %s", err)
	}

	predicate := q.Predicate
	pipeline := q.Pipeline
	idx := 0
	for idx < len(pipeline) {
		fo, ok := pipeline[idx].(*ast.FilterOp)
		if !ok {
			break
		}
		predicate = mergeAnd(predicate, fo.Expr)
		idx++
	}

	acc, idx := x.leadingAccumulator(pipeline, idx)

	ticker := diagnostic.NewTicker(x.TickInterval)
	var processed int64
	for {
		if ctx.Err() != nil {
			return nil, errors.Cancelled
		}
		row, ok, err := rs.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if !tm.Matches(row) {
			continue
		}
		if predicate != nil {
			match, err := x.Eval.EvalBool(predicate, row)
			if err != nil {
				return nil, err
			}
			if !match {
				continue
			}
		}
		processed++
		if err := acc.Add(row); err != nil {
			return nil, err
		}
		if ticker.Ready(time.Now()) {
			diagnostic.Progress(x.Diag, x.QueryID, processed, 0)
		}
	}

	rows := acc.Finalize()

	rest := pipeline[idx:]
	if len(rest) == 0 {
		return rows, nil
	}
	materialized := exec.New(x.Eval, x.Graph, x.HasGraph, x.Diag, x.QueryID)
	restQuery := &ast.Query{Root: q.Root, Pipeline: rest}
	return materialized.Run(ctx, restQuery, rows)
}

// leadingAccumulator selects and constructs the accumulator for the
// pipeline's leading stream-compatible operator, returning the pipeline
// index immediately after the operator(s) it consumed. When no compatible
// leading operator exists, it warns and injects a default top(100) without
// consuming anything from pipeline, per spec §4.G's fallback rule.
func (x *Executor) leadingAccumulator(pipeline []ast.PipelineOp, idx int) (accumulator, int) {
	if idx < len(pipeline) {
		switch o := pipeline[idx].(type) {
		case *ast.TopOp:
			return newTopAccumulator(o.N, o.OrderBy, o.HasOrderBy, o.Desc), idx + 1
		case *ast.CountOp:
			return &foldAccumulator{kind: "count", f: exec.NewFold()}, idx + 1
		case *ast.SumOp:
			return &foldAccumulator{kind: "sum", field: o.Field, f: exec.NewFold()}, idx + 1
		case *ast.StatsOp:
			return &foldAccumulator{kind: "stats", field: o.Field, f: exec.NewFold()}, idx + 1
		case *ast.GroupByOp:
			bufferLimit, topDesc := 0, true
			if idx+1 < len(pipeline) {
				if top, ok := pipeline[idx+1].(*ast.TopOp); ok {
					mult := x.BufferMultiplier
					if mult <= 0 {
						mult = defaultBufferMultiplier
					}
					bufMin := x.BufferMin
					if bufMin <= 0 {
						bufMin = defaultBufferMin
					}
					bufferLimit = mult * top.N
					if bufferLimit < bufMin {
						bufferLimit = bufMin
					}
					topDesc = top.Desc
				}
			}
			return newGroupAccumulator(o, x.Eval, bufferLimit, topDesc), idx + 1
		}
	}

	diagnostic.Warning(x.Diag, x.QueryID, "no stream-compatible leading operator for this input size; falling back to top(100)")
	return newTopAccumulator(fallbackTopN, nil, false, true), idx
}

func mergeAnd(existing ast.BoolExpr, next ast.BoolExpr) ast.BoolExpr {
	if existing == nil {
		return next
	}
	return &ast.And{Left: existing, Right: next}
}

// foldAccumulator implements count()/sum(field)/stats(field) as a single
// running exec.Fold, reusing the materialized executor's folding logic
// rather than re-deriving it (spec §9).
type foldAccumulator struct {
	kind  string
	field []string
	f     *exec.Fold
}

func (fa *foldAccumulator) Add(row *value.Row) error {
	if fa.kind == "count" {
		fa.f.Add(value.Bool(true))
		return nil
	}
	fa.f.Add(value.Extract(row, fa.field))
	return nil
}

func (fa *foldAccumulator) Finalize() []*value.Row {
	r := value.NewRow()
	switch fa.kind {
	case "count":
		r.Set("count", value.Int(fa.f.Count()))
	case "sum":
		name := "sum"
		if exec.IsMemoryField(exec.LeafName(fa.field)) {
			name = exec.LeafName(fa.field)
		}
		r.Set(name, fa.f.SumValue())
	case "stats":
		prefix := ""
		if exec.IsMemoryField(exec.LeafName(fa.field)) {
			prefix = exec.LeafName(fa.field) + "_"
		}
		r.Set(prefix+"count", value.Int(fa.f.Count()))
		r.Set(prefix+"sum", fa.f.SumValue())
		r.Set(prefix+"min", fa.f.MinValue())
		r.Set(prefix+"max", fa.f.MaxValue())
		r.Set(prefix+"avg", fa.f.AvgValue())
	}
	return []*value.Row{r}
}
