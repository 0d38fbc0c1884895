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

// Package exec implements the materialized pipeline executor (spec §4.F):
// given a fully realized row list and a parsed Query, it applies the type
// selector, the predicate, and each pipeline operator in turn, producing a
// new row list. Operators are a closed set dispatched by a type switch
// rather than a virtual-method hierarchy, matching spec §9's "accumulator
// polymorphism" design note and the teacher's own preference for plain
// struct-shaped ops over an open plugin interface.
package exec

import (
	"context"

	"github.com/heapql/heapql/adapter"
	"github.com/heapql/heapql/ast"
	"github.com/heapql/heapql/diagnostic"
	"github.com/heapql/heapql/errors"
	"github.com/heapql/heapql/eval"
	"github.com/heapql/heapql/value"
	"github.com/oklog/ulid/v2"
)

// Executor runs a parsed Query against a materialized row list.
type Executor struct {
	Eval     *eval.Evaluator
	Graph    adapter.GraphService
	HasGraph bool
	Diag     diagnostic.Sink
	QueryID  ulid.ULID
}

// New creates an Executor. graph/hasGraph may be the zero value when the
// adapter offers no graph service; graph-backed operators then fail with
// UnsupportedOperation, surfaced as a single {error: ...} row per spec
// §4.F/§7.
func New(ev *eval.Evaluator, graph adapter.GraphService, hasGraph bool, diag diagnostic.Sink, queryID ulid.ULID) *Executor {
	return &Executor{Eval: ev, Graph: graph, HasGraph: hasGraph, Diag: diag, QueryID: queryID}
}

// Run applies q's type selector, predicate, and pipeline to rows in order,
// returning the final row list. Rows already matching q.Root are expected
// to have been selected by the caller (the adapter streams per-root, not
// per-query); Run itself only narrows by type selector and predicate.
func (x *Executor) Run(ctx context.Context, q *ast.Query, rows []*value.Row) ([]*value.Row, error) {
	tm, err := newTypeMatcher(q.TypeSelector)
	if err != nil {
		return nil, errors.ArgumentErrorf(-1, "invalid type selector: %s", err)
	}

	out := make([]*value.Row, 0, len(rows))
	for _, row := range rows {
		if ctx.Err() != nil {
			return nil, errors.Cancelled
		}
		if !tm.Matches(row) {
			continue
		}
		if q.Predicate != nil {
			ok, err := x.Eval.EvalBool(q.Predicate, row)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}
		out = append(out, row)
	}

	for _, op := range q.Pipeline {
		if ctx.Err() != nil {
			return nil, errors.Cancelled
		}
		next, err := x.applyOp(ctx, op, out)
		if err != nil {
			return nil, err
		}
		out = next
	}
	return out, nil
}

// applyOp dispatches a single pipeline operator to its implementation.
func (x *Executor) applyOp(ctx context.Context, op ast.PipelineOp, rows []*value.Row) ([]*value.Row, error) {
	switch o := op.(type) {
	case *ast.SelectOp:
		return x.applySelect(o, rows)
	case *ast.FilterOp:
		return x.applyFilter(o, rows)
	case *ast.TopOp:
		return applyTop(o, rows)
	case *ast.HeadOp:
		return applyHead(o, rows), nil
	case *ast.TailOp:
		return applyTail(o, rows), nil
	case *ast.SortByOp:
		return applySortBy(o, rows), nil
	case *ast.DistinctOp:
		return applyDistinct(o, rows), nil
	case *ast.CountOp:
		return applyCount(rows), nil
	case *ast.SumOp:
		return applySum(o, rows), nil
	case *ast.StatsOp:
		return applyStats(o, rows), nil
	case *ast.GroupByOp:
		return x.applyGroupBy(o, rows)
	case *ast.TransformOp:
		return x.applyTransform(o, rows)
	case *ast.PathToRootOp:
		return x.applyPathToRoot(ctx, o, rows)
	case *ast.RetentionPathsOp:
		return x.applyRetentionPaths(ctx, o, rows)
	case *ast.RetainedBreakdownOp:
		return x.applyRetainedBreakdown(ctx, o, rows)
	case *ast.DominatorsOp:
		return x.applyDominators(ctx, o, rows)
	case *ast.CheckLeaksOp:
		return x.applyCheckLeaks(ctx, o, rows)
	default:
		return nil, errors.UnknownOperatorf(op.Pos(), "unknown pipeline operator %T", op)
	}
}

func (x *Executor) applySelect(o *ast.SelectOp, rows []*value.Row) ([]*value.Row, error) {
	out := make([]*value.Row, len(rows))
	for i, row := range rows {
		nr := value.NewRow()
		for _, f := range o.Fields {
			v, err := x.Eval.EvalValue(f.Expr, row)
			if err != nil {
				return nil, err
			}
			nr.Set(outputName(f), v)
		}
		out[i] = nr
	}
	return out, nil
}

// outputName implements spec §4.F's select() naming: the leaf path
// segment unless an alias is given.
func outputName(f ast.SelectField) string {
	if f.Alias != "" {
		return f.Alias
	}
	if len(f.Path) > 0 {
		return f.Path[len(f.Path)-1]
	}
	return "value"
}

func (x *Executor) applyFilter(o *ast.FilterOp, rows []*value.Row) ([]*value.Row, error) {
	out := make([]*value.Row, 0, len(rows))
	for _, row := range rows {
		ok, err := x.Eval.EvalBool(o.Expr, row)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, row)
		}
	}
	return out, nil
}

// errorRow builds the single {error: ...} result row spec §4.F/§7 mandates
// for a graph operator failing its precondition (no aborting).
func errorRow(msg string) []*value.Row {
	r := value.NewRow()
	r.Set("error", value.String(msg))
	return []*value.Row{r}
}
