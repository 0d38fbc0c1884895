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

package heapql

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heapql/heapql/adapter"
	"github.com/heapql/heapql/ast"
	"github.com/heapql/heapql/diagnostic"
	"github.com/heapql/heapql/value"
)

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

// TestScenarioAGroupBySortBy implements spec scenario A.
func TestScenarioAGroupBySortBy(t *testing.T) {
	mem := adapter.NewMemory()
	mem.SetRows(ast.Objects, rowsOf([]string{"class", "shallow"}, [][]any{
		{"A", 10}, {"A", 30}, {"B", 20},
	}))

	eng := New()
	res, err := eng.Run(context.Background(), `objects | groupBy(class, agg=sum, value=shallow) | sortBy(shallow desc)`, mem)
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)

	class0, _ := res.Rows[0].Get("class")
	shallow0, _ := res.Rows[0].Get("shallow")
	assert.Equal(t, "A", class0.String())
	i, _ := shallow0.Int()
	assert.Equal(t, int64(40), i)

	class1, _ := res.Rows[1].Get("class")
	shallow1, _ := res.Rows[1].Get("shallow")
	assert.Equal(t, "B", class1.String())
	i, _ = shallow1.Int()
	assert.Equal(t, int64(20), i)
}

// TestScenarioBPredicateAndTop implements spec scenario B.
func TestScenarioBPredicateAndTop(t *testing.T) {
	mem := adapter.NewMemory()
	mem.SetRows(ast.Classes, rowsOf([]string{"name", "instanceCount"}, [][]any{
		{"X", 5000}, {"Y", 2000}, {"Z", 500},
	}))

	eng := New()
	res, err := eng.Run(context.Background(), `classes[instanceCount > 1000] | top(2, instanceCount)`, mem)
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	n0, _ := res.Rows[0].Get("name")
	n1, _ := res.Rows[1].Get("name")
	assert.Equal(t, "X", n0.String())
	assert.Equal(t, "Y", n1.String())
}

// TestScenarioEGlobTypeSelector implements spec scenario E.
func TestScenarioEGlobTypeSelector(t *testing.T) {
	mem := adapter.NewMemory()
	mem.SetRows(ast.Objects, rowsOf([]string{"className"}, [][]any{
		{"java.lang.String"}, {"java.lang.StringBuilder"}, {"java.util.HashMap"},
	}))

	eng := New()
	res, err := eng.Run(context.Background(), `objects/*String*`, mem)
	require.NoError(t, err)
	assert.Len(t, res.Rows, 2)
}

// TestScenarioFSelectConcatenation implements spec scenario F.
func TestScenarioFSelectConcatenation(t *testing.T) {
	mem := adapter.NewMemory()
	mem.SetRows(ast.Objects, rowsOf([]string{"path", "bytes"}, [][]any{{"/tmp/x", 1024}}))

	eng := New()
	res, err := eng.Run(context.Background(), `select(path + " (" + bytes + " bytes)" as description)`, mem)
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	desc, _ := res.Rows[0].Get("description")
	assert.Equal(t, "/tmp/x (1024 bytes)", desc.String())
}

// TestScenarioDStreamingThresholdFallback implements spec scenario D.
func TestScenarioDStreamingThresholdFallback(t *testing.T) {
	data := make([][]any, 150)
	for i := range data {
		data[i] = []any{i}
	}
	mem := adapter.NewMemory()
	mem.SetRows(ast.Objects, rowsOf([]string{"shallow"}, data))
	mem.SetTotalCount(ast.Objects, 6_000_000)

	var warned bool
	eng := New(WithStreamingThreshold(5_000_000), WithDiagnosticSink(diagnostic.Func(func(e diagnostic.Event) {
		if e.Kind == diagnostic.KindWarning {
			warned = true
		}
	})))
	res, err := eng.Run(context.Background(), `objects | filter(shallow > 0)`, mem)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(res.Rows), 100)
	assert.True(t, warned, "exceeding the streaming threshold with a non-aggregating head must warn")
}

// TestBelowThresholdUsesMaterializedExecutor confirms a small input runs
// the unrestricted materialized path even with a non-aggregating pipeline.
func TestBelowThresholdUsesMaterializedExecutor(t *testing.T) {
	mem := adapter.NewMemory()
	mem.SetRows(ast.Objects, rowsOf([]string{"shallow"}, [][]any{{1}, {2}, {3}}))
	mem.SetTotalCount(ast.Objects, 3)

	eng := New()
	res, err := eng.Run(context.Background(), `objects | filter(shallow > 1)`, mem)
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
}

func TestWithFunctionRegistersCustomFunction(t *testing.T) {
	mem := adapter.NewMemory()
	mem.SetRows(ast.Objects, rowsOf([]string{"temp"}, [][]any{{212}}))

	eng := New(WithFunction("half", func(args []value.Value) (value.Value, error) {
		n, _ := args[0].Numeric()
		return value.Float(n / 2), nil
	}))
	res, err := eng.Run(context.Background(), `select(half(temp) as halved)`, mem)
	require.NoError(t, err)
	v, _ := res.Rows[0].Get("halved")
	f, _ := v.Float()
	assert.Equal(t, 106.0, f)
}

func TestCancelledContextReturnsCancelledError(t *testing.T) {
	mem := adapter.NewMemory()
	mem.SetRows(ast.Objects, rowsOf([]string{"shallow"}, [][]any{{1}, {2}}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	eng := New()
	_, err := eng.Run(ctx, `objects`, mem)
	require.Error(t, err)
}

func TestWithGroupByTopBufferWiresIntoStreamingExecutor(t *testing.T) {
	data := make([][]any, 200)
	for i := range data {
		data[i] = []any{[]string{"A", "B", "C", "D", "E"}[i%5], i}
	}
	mem := adapter.NewMemory()
	mem.SetRows(ast.Objects, rowsOf([]string{"class", "shallow"}, data))
	mem.SetTotalCount(ast.Objects, 6_000_000)

	eng := New(WithGroupByTopBuffer(2, 3))
	res, err := eng.Run(context.Background(), `objects | groupBy(class, agg=sum, value=shallow) | top(2, shallow)`, mem)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(res.Rows), 2)
}
