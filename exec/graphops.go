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

package exec

import (
	"context"

	"github.com/heapql/heapql/ast"
	"github.com/heapql/heapql/value"
)

// rowObjectIDs resolves the object id(s) the graph operator applies to
// from the current row set: one call per input row's "id" column, per
// spec §4.F ("the core calls the service, formats the returned structures
// into rows"). A row lacking an "id" column is skipped.
func rowObjectIDs(rows []*value.Row) []int64 {
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		v, ok := row.Get("id")
		if !ok {
			continue
		}
		if i, ok := v.Int(); ok {
			ids = append(ids, i)
		}
	}
	return ids
}

func (x *Executor) applyPathToRoot(ctx context.Context, o *ast.PathToRootOp, rows []*value.Row) ([]*value.Row, error) {
	if !x.HasGraph {
		return errorRow("pathToRoot(): no graph service available"), nil
	}
	var out []*value.Row
	for _, id := range rowObjectIDs(rows) {
		res, err := x.Graph.PathToRoot(ctx, id)
		if err != nil {
			return errorRow(err.Error()), nil
		}
		out = append(out, res...)
	}
	return out, nil
}

func (x *Executor) applyRetentionPaths(ctx context.Context, o *ast.RetentionPathsOp, rows []*value.Row) ([]*value.Row, error) {
	if !x.HasGraph {
		return errorRow("retentionPaths(): no graph service available"), nil
	}
	var out []*value.Row
	for _, id := range rowObjectIDs(rows) {
		res, err := x.Graph.RetentionPaths(ctx, id)
		if err != nil {
			return errorRow(err.Error()), nil
		}
		out = append(out, res...)
	}
	return out, nil
}

func (x *Executor) applyRetainedBreakdown(ctx context.Context, o *ast.RetainedBreakdownOp, rows []*value.Row) ([]*value.Row, error) {
	if !x.HasGraph {
		return errorRow("retainedBreakdown(): no graph service available"), nil
	}
	maxDepth := 0
	if o.HasMaxDepth {
		maxDepth = o.MaxDepth
	}
	var out []*value.Row
	for _, id := range rowObjectIDs(rows) {
		res, err := x.Graph.RetainedBreakdown(ctx, id, maxDepth)
		if err != nil {
			return errorRow(err.Error()), nil
		}
		out = append(out, res...)
	}
	return out, nil
}

func (x *Executor) applyDominators(ctx context.Context, o *ast.DominatorsOp, rows []*value.Row) ([]*value.Row, error) {
	if !x.HasGraph {
		return errorRow("dominators(): no graph service available"), nil
	}
	res, err := x.Graph.Dominators(ctx, o.Mode)
	if err != nil {
		return errorRow(err.Error()), nil
	}
	return res, nil
}

func (x *Executor) applyCheckLeaks(ctx context.Context, o *ast.CheckLeaksOp, rows []*value.Row) ([]*value.Row, error) {
	if !x.HasGraph {
		return errorRow("checkLeaks(): no graph service available"), nil
	}
	res, err := x.Graph.CheckLeaks(ctx, o.Detector, o.Filter)
	if err != nil {
		return errorRow(err.Error()), nil
	}
	return res, nil
}
