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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heapql/heapql/adapter"
	"github.com/heapql/heapql/ast"
	"github.com/heapql/heapql/diagnostic"
	"github.com/heapql/heapql/eval"
	"github.com/heapql/heapql/exec"
	"github.com/heapql/heapql/value"
)

func newStreamExecutor() *Executor {
	return New(eval.New(nil), nil, false, diagnostic.Discard{}, diagnostic.NewQueryID())
}

func rowsOf(cols []string, data [][]any) []*value.Row {
	out := make([]*value.Row, len(data))
	for i, d := range data {
		pairs := make([]any, 0, len(cols)*2)
		for j, c := range cols {
			pairs = append(pairs, c, d[j])
		}
		out[i] = value.NewRowFromPairs(pairs...)
	}
	return out
}

func TestStreamTopMatchesMaterializedTop(t *testing.T) {
	rows := rowsOf([]string{"n"}, [][]any{{5}, {1}, {9}, {3}, {7}, {2}})

	sx := newStreamExecutor()
	q := &ast.Query{Root: ast.Objects, Pipeline: []ast.PipelineOp{
		&ast.TopOp{N: 3, OrderBy: []string{"n"}, HasOrderBy: true, Desc: true},
	}}
	streamed, err := sx.Run(context.Background(), q, adapter.NewSliceStream(rows))
	require.NoError(t, err)

	mx := exec.New(eval.New(nil), nil, false, diagnostic.Discard{}, diagnostic.NewQueryID())
	materialized, err := mx.Run(context.Background(), q, rows)
	require.NoError(t, err)

	require.Len(t, streamed, 3)
	require.Len(t, materialized, 3)
	for i := range streamed {
		sv, _ := streamed[i].Get("n")
		mv, _ := materialized[i].Get("n")
		si, _ := sv.Int()
		mi, _ := mv.Int()
		assert.Equal(t, mi, si, "streaming top(n, desc) must match the materialized result row for row")
	}
}

func TestStreamCountMatchesMaterializedCountAfterFilter(t *testing.T) {
	rows := rowsOf([]string{"shallow"}, [][]any{{10}, {20}, {5}, {30}})
	predicate := &ast.Comparison{Path: []string{"shallow"}, Op: ast.OpGt, Value: &ast.Literal{Value: value.Int(8)}}

	sx := newStreamExecutor()
	sq := &ast.Query{Root: ast.Objects, Predicate: predicate, Pipeline: []ast.PipelineOp{&ast.CountOp{}}}
	streamed, err := sx.Run(context.Background(), sq, adapter.NewSliceStream(rows))
	require.NoError(t, err)

	mx := exec.New(eval.New(nil), nil, false, diagnostic.Discard{}, diagnostic.NewQueryID())
	mq := &ast.Query{Root: ast.Objects, Predicate: predicate, Pipeline: []ast.PipelineOp{&ast.CountOp{}}}
	materialized, err := mx.Run(context.Background(), mq, rows)
	require.NoError(t, err)

	sc, _ := streamed[0].Get("count")
	mc, _ := materialized[0].Get("count")
	si, _ := sc.Int()
	mi, _ := mc.Int()
	assert.Equal(t, mi, si)
	assert.Equal(t, int64(3), si)
}

func TestStreamSumIsBitEqualToMaterializedSum(t *testing.T) {
	rows := rowsOf([]string{"shallow"}, [][]any{{10}, {20}, {30}})

	sx := newStreamExecutor()
	q := &ast.Query{Root: ast.Objects, Pipeline: []ast.PipelineOp{&ast.SumOp{Field: []string{"shallow"}}}}
	streamed, err := sx.Run(context.Background(), q, adapter.NewSliceStream(rows))
	require.NoError(t, err)

	mx := exec.New(eval.New(nil), nil, false, diagnostic.Discard{}, diagnostic.NewQueryID())
	materialized, err := mx.Run(context.Background(), q, rows)
	require.NoError(t, err)

	sv, _ := streamed[0].Get("shallow")
	mv, _ := materialized[0].Get("shallow")
	assert.Equal(t, mv.String(), sv.String())
}

// TestFallbackInjectsTop100WithWarning implements spec scenario D.
func TestFallbackInjectsTop100WithWarning(t *testing.T) {
	rows := rowsOf([]string{"shallow"}, make([][]any, 150))
	for i := range rows {
		rows[i] = value.NewRowFromPairs("shallow", i)
	}

	var warnings []string
	sink := diagnostic.Func(func(e diagnostic.Event) {
		if e.Kind == diagnostic.KindWarning {
			warnings = append(warnings, e.Message)
		}
	})
	sx := New(eval.New(nil), nil, false, sink, diagnostic.NewQueryID())

	predicate := &ast.Comparison{Path: []string{"shallow"}, Op: ast.OpGt, Value: &ast.Literal{Value: value.Int(0)}}
	q := &ast.Query{Root: ast.Objects, Pipeline: []ast.PipelineOp{
		&ast.FilterOp{Keyword: "filter", Expr: predicate},
	}}

	out, err := sx.Run(context.Background(), q, adapter.NewSliceStream(rows))
	require.NoError(t, err)
	assert.LessOrEqual(t, len(out), 100)
	assert.NotEmpty(t, warnings, "a non-stream-compatible leading operator must warn on the diagnostic channel")
}

func TestGroupByTopFusedBufferApproximatesMaterialized(t *testing.T) {
	data := make([][]any, 0, 200)
	for i := 0; i < 200; i++ {
		data = append(data, []any{string(rune('A' + i%50)), 1})
	}
	rows := rowsOf([]string{"class", "n"}, data)

	sx := newStreamExecutor()
	sx.BufferMultiplier = 5
	sx.BufferMin = 1000 // buffer comfortably exceeds the 50 distinct keys
	q := &ast.Query{Root: ast.Objects, Pipeline: []ast.PipelineOp{
		&ast.GroupByOp{Fields: [][]string{{"class"}}, Agg: ast.AggCount, HasAgg: true},
		&ast.TopOp{N: 3, OrderBy: []string{"count"}, HasOrderBy: true, Desc: true},
	}}
	streamed, err := sx.Run(context.Background(), q, adapter.NewSliceStream(rows))
	require.NoError(t, err)

	mx := exec.New(eval.New(nil), nil, false, diagnostic.Discard{}, diagnostic.NewQueryID())
	materialized, err := mx.Run(context.Background(), q, rows)
	require.NoError(t, err)

	require.Len(t, streamed, 3)
	require.Len(t, materialized, 3)
	for i := range streamed {
		sc, _ := streamed[i].Get("count")
		mc, _ := materialized[i].Get("count")
		assert.Equal(t, mc.String(), sc.String())
	}
}

func TestStreamCancellationReturnsCancelledError(t *testing.T) {
	rows := rowsOf([]string{"n"}, [][]any{{1}, {2}, {3}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sx := newStreamExecutor()
	q := &ast.Query{Root: ast.Objects, Pipeline: []ast.PipelineOp{&ast.CountOp{}}}
	_, err := sx.Run(ctx, q, adapter.NewSliceStream(rows))
	require.Error(t, err)
}

func TestStreamPeelsLeadingFilterIntoPredicate(t *testing.T) {
	rows := rowsOf([]string{"shallow"}, [][]any{{1}, {2}, {3}, {4}, {5}})
	sx := newStreamExecutor()
	q := &ast.Query{Root: ast.Objects, Pipeline: []ast.PipelineOp{
		&ast.FilterOp{Keyword: "filter", Expr: &ast.Comparison{
			Path: []string{"shallow"}, Op: ast.OpGt, Value: &ast.Literal{Value: value.Int(2)},
		}},
		&ast.CountOp{},
	}}
	out, err := sx.Run(context.Background(), q, adapter.NewSliceStream(rows))
	require.NoError(t, err)
	c, _ := out[0].Get("count")
	i, _ := c.Int()
	assert.Equal(t, int64(3), i)
}
