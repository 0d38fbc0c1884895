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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heapql/heapql/ast"
	"github.com/heapql/heapql/diagnostic"
	"github.com/heapql/heapql/eval"
	"github.com/heapql/heapql/value"
)

func newExecutor() *Executor {
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

// TestScenarioAGroupBySumSortBy implements spec scenario A.
func TestScenarioAGroupBySumSortBy(t *testing.T) {
	rows := rowsOf([]string{"class", "shallow"}, [][]any{
		{"A", 10}, {"A", 30}, {"B", 20},
	})
	x := newExecutor()
	q := &ast.Query{
		Root: ast.Objects,
		Pipeline: []ast.PipelineOp{
			&ast.GroupByOp{
				Fields: [][]string{{"class"}},
				Agg:    ast.AggSum, HasAgg: true,
				Value: &ast.FieldRef{Path: []string{"shallow"}},
			},
			&ast.SortByOp{Keys: []ast.SortKey{{Path: []string{"shallow"}, Desc: true}}},
		},
	}
	out, err := x.Run(context.Background(), q, rows)
	require.NoError(t, err)
	require.Len(t, out, 2)

	classA, _ := out[0].Get("class")
	shallowA, _ := out[0].Get("shallow")
	assert.Equal(t, "A", classA.String())
	i, _ := shallowA.Int()
	assert.Equal(t, int64(40), i)

	classB, _ := out[1].Get("class")
	shallowB, _ := out[1].Get("shallow")
	assert.Equal(t, "B", classB.String())
	i, _ = shallowB.Int()
	assert.Equal(t, int64(20), i)
}

// TestScenarioBPredicateAndTop implements spec scenario B.
func TestScenarioBPredicateAndTop(t *testing.T) {
	rows := rowsOf([]string{"name", "instanceCount"}, [][]any{
		{"X", 5000}, {"Y", 2000}, {"Z", 500},
	})
	x := newExecutor()
	q := &ast.Query{
		Root: ast.Classes,
		Predicate: &ast.Comparison{
			Path: []string{"instanceCount"}, Op: ast.OpGt,
			Value: &ast.Literal{Value: value.Int(1000)},
		},
		Pipeline: []ast.PipelineOp{
			&ast.TopOp{N: 2, OrderBy: []string{"instanceCount"}, HasOrderBy: true, Desc: true},
		},
	}
	out, err := x.Run(context.Background(), q, rows)
	require.NoError(t, err)
	require.Len(t, out, 2)
	n0, _ := out[0].Get("name")
	n1, _ := out[1].Get("name")
	assert.Equal(t, "X", n0.String())
	assert.Equal(t, "Y", n1.String())
}

// TestScenarioESubstringGlob implements spec scenario E.
func TestScenarioESubstringGlob(t *testing.T) {
	rows := rowsOf([]string{"className"}, [][]any{
		{"java.lang.String"}, {"java.lang.StringBuilder"}, {"java.util.HashMap"},
	})
	x := newExecutor()
	q := &ast.Query{
		Root:         ast.Objects,
		TypeSelector: ast.TypeSelector{Patterns: []string{"*String*"}},
	}
	out, err := x.Run(context.Background(), q, rows)
	require.NoError(t, err)
	require.Len(t, out, 2)
}

// TestScenarioFSelectWithConcatenation implements spec scenario F.
func TestScenarioFSelectWithConcatenation(t *testing.T) {
	rows := rowsOf([]string{"path", "bytes"}, [][]any{{"/tmp/x", 1024}})
	x := newExecutor()
	expr := &ast.Binary{
		Op:   ast.OpAdd,
		Left: &ast.FieldRef{Path: []string{"path"}},
		Right: &ast.Binary{
			Op:   ast.OpAdd,
			Left: &ast.Literal{Value: value.String(" (")},
			Right: &ast.Binary{
				Op:    ast.OpAdd,
				Left:  &ast.FieldRef{Path: []string{"bytes"}},
				Right: &ast.Literal{Value: value.String(" bytes)")},
			},
		},
	}
	q := &ast.Query{
		Root: ast.Objects,
		Pipeline: []ast.PipelineOp{
			&ast.SelectOp{Fields: []ast.SelectField{{Path: []string{"description"}, Alias: "description", Expr: expr}}},
		},
	}
	out, err := x.Run(context.Background(), q, rows)
	require.NoError(t, err)
	require.Len(t, out, 1)
	desc, _ := out[0].Get("description")
	assert.Equal(t, "/tmp/x (1024 bytes)", desc.String())
}

func TestCountOp(t *testing.T) {
	rows := rowsOf([]string{"class"}, [][]any{{"A"}, {"B"}, {"A"}})
	x := newExecutor()
	q := &ast.Query{Root: ast.Objects, Pipeline: []ast.PipelineOp{&ast.CountOp{}}}
	out, err := x.Run(context.Background(), q, rows)
	require.NoError(t, err)
	require.Len(t, out, 1)
	c, _ := out[0].Get("count")
	i, _ := c.Int()
	assert.Equal(t, int64(3), i)
}

func TestSumMemoryFieldNaming(t *testing.T) {
	rows := rowsOf([]string{"shallow"}, [][]any{{10}, {20}})
	x := newExecutor()
	q := &ast.Query{Root: ast.Objects, Pipeline: []ast.PipelineOp{&ast.SumOp{Field: []string{"shallow"}}}}
	out, err := x.Run(context.Background(), q, rows)
	require.NoError(t, err)
	v, ok := out[0].Get("shallow")
	require.True(t, ok, "memory-valued field keeps its own name")
	i, _ := v.Int()
	assert.Equal(t, int64(30), i)

	rows2 := rowsOf([]string{"count"}, [][]any{{10}, {20}})
	q2 := &ast.Query{Root: ast.Objects, Pipeline: []ast.PipelineOp{&ast.SumOp{Field: []string{"count"}}}}
	out2, err := x.Run(context.Background(), q2, rows2)
	require.NoError(t, err)
	_, ok = out2[0].Get("sum")
	assert.True(t, ok, "non-memory field falls back to generic 'sum' column")
}

func TestStatsOp(t *testing.T) {
	rows := rowsOf([]string{"retainedSize"}, [][]any{{10}, {20}, {30}})
	x := newExecutor()
	q := &ast.Query{Root: ast.Objects, Pipeline: []ast.PipelineOp{&ast.StatsOp{Field: []string{"retainedSize"}}}}
	out, err := x.Run(context.Background(), q, rows)
	require.NoError(t, err)
	cnt, ok := out[0].Get("retainedSize_count")
	require.True(t, ok)
	i, _ := cnt.Int()
	assert.Equal(t, int64(3), i)
	avg, _ := out[0].Get("retainedSize_avg")
	f, _ := avg.Float()
	assert.Equal(t, 20.0, f)
}

func TestDistinctKeepsFirstOccurrence(t *testing.T) {
	rows := rowsOf([]string{"class", "id"}, [][]any{{"A", 1}, {"A", 2}, {"B", 3}})
	x := newExecutor()
	q := &ast.Query{Root: ast.Objects, Pipeline: []ast.PipelineOp{&ast.DistinctOp{Field: []string{"class"}}}}
	out, err := x.Run(context.Background(), q, rows)
	require.NoError(t, err)
	require.Len(t, out, 2)
	id0, _ := out[0].Get("id")
	i, _ := id0.Int()
	assert.Equal(t, int64(1), i)
}

func TestHeadTail(t *testing.T) {
	rows := rowsOf([]string{"n"}, [][]any{{1}, {2}, {3}, {4}})
	x := newExecutor()

	q := &ast.Query{Root: ast.Objects, Pipeline: []ast.PipelineOp{&ast.HeadOp{N: 2}}}
	out, err := x.Run(context.Background(), q, rows)
	require.NoError(t, err)
	require.Len(t, out, 2)
	n0, _ := out[0].Get("n")
	i, _ := n0.Int()
	assert.Equal(t, int64(1), i)

	q2 := &ast.Query{Root: ast.Objects, Pipeline: []ast.PipelineOp{&ast.TailOp{N: 2}}}
	out2, err := x.Run(context.Background(), q2, rows)
	require.NoError(t, err)
	require.Len(t, out2, 2)
	n2, _ := out2[0].Get("n")
	i, _ = n2.Int()
	assert.Equal(t, int64(3), i)
}

func TestTopWithoutOrderByIsNoOpComparator(t *testing.T) {
	rows := rowsOf([]string{"n"}, [][]any{{3}, {1}, {2}})
	x := newExecutor()
	q := &ast.Query{Root: ast.Objects, Pipeline: []ast.PipelineOp{&ast.TopOp{N: 2}}}
	out, err := x.Run(context.Background(), q, rows)
	require.NoError(t, err)
	require.Len(t, out, 2)
	n0, _ := out[0].Get("n")
	n1, _ := out[1].Get("n")
	i0, _ := n0.Int()
	i1, _ := n1.Int()
	assert.Equal(t, int64(3), i0, "first N emitted, not sorted, when orderBy is absent")
	assert.Equal(t, int64(1), i1)
}

func TestTransformUppercase(t *testing.T) {
	rows := rowsOf([]string{"name"}, [][]any{{"foo"}})
	x := newExecutor()
	q := &ast.Query{Root: ast.Objects, Pipeline: []ast.PipelineOp{
		&ast.TransformOp{Kind: ast.TransformUppercase, Field: []string{"name"}},
	}}
	out, err := x.Run(context.Background(), q, rows)
	require.NoError(t, err)
	v, _ := out[0].Get("name")
	assert.Equal(t, "FOO", v.String())
}

func TestCheckLeaksNoGraphServiceYieldsErrorRow(t *testing.T) {
	x := newExecutor()
	q := &ast.Query{
		Root: ast.Objects,
		Pipeline: []ast.PipelineOp{
			&ast.CheckLeaksOp{Detector: "duplicateStrings"},
		},
	}
	out, err := x.Run(context.Background(), q, nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	v, ok := out[0].Get("error")
	require.True(t, ok)
	assert.Contains(t, v.String(), "no graph service")
}

func TestIsMemoryField(t *testing.T) {
	assert.True(t, IsMemoryField("bytesRead"))
	assert.False(t, IsMemoryField("byteCount"))
	assert.True(t, IsMemoryField("shallowSize"))
	assert.True(t, IsMemoryField("retainedHeap"))
	assert.False(t, IsMemoryField("instanceCount"))
}
