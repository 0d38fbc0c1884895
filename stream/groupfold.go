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
	"sort"
	"strings"

	"github.com/heapql/heapql/ast"
	"github.com/heapql/heapql/eval"
	"github.com/heapql/heapql/exec"
	"github.com/heapql/heapql/value"
)

// groupEntry is one key's running state, reusing exec.Fold rather than
// re-implementing count/sum/min/max folding (spec §9).
type groupEntry struct {
	keyValues []value.Value
	fold      *exec.Fold
}

// groupAccumulator implements groupBy on a stream: a map from key tuple to
// accumulator, kept in first-seen order until a truncation re-sorts it by
// aggregated value, with an optional bounded-buffer
// eviction policy applied when a top(n) immediately follows (spec §4.G).
type groupAccumulator struct {
	op       *ast.GroupByOp
	ev       *eval.Evaluator
	fallback []string

	order  []string
	groups map[string]*groupEntry
	seen   int64

	bufferLimit int // 0 disables eviction
	topDesc     bool
}

func newGroupAccumulator(op *ast.GroupByOp, ev *eval.Evaluator, bufferLimit int, topDesc bool) *groupAccumulator {
	return &groupAccumulator{
		op:          op,
		ev:          ev,
		groups:      make(map[string]*groupEntry),
		bufferLimit: bufferLimit,
		topDesc:     topDesc,
	}
}

func (g *groupAccumulator) agg() ast.AggFunc {
	if g.op.HasAgg {
		return g.op.Agg
	}
	return ast.AggCount
}

func (g *groupAccumulator) valueName() string {
	agg := g.agg()
	if agg == ast.AggCount {
		return "count"
	}
	if ref, ok := g.op.Value.(*ast.FieldRef); ok {
		return exec.LeafName(ref.Path)
	}
	if g.op.Value != nil {
		return "value"
	}
	if g.fallback != nil {
		return exec.LeafName(g.fallback)
	}
	return "value"
}

// Add folds one row into its group, creating the group on first sight and
// applying the buffer-eviction heuristic every 10,000 inputs when a
// bufferLimit is configured (spec §4.G: "groupBy → top(n) ... maintain at
// most max(5·n, 1000) groups. Every ten-thousand inputs, if the map
// exceeds the buffer, sort accumulators by current aggregated value and
// truncate.").
func (g *groupAccumulator) Add(row *value.Row) error {
	agg := g.agg()
	if agg != ast.AggCount && g.op.Value == nil && g.fallback == nil && len(g.groups) == 0 {
		g.fallback = firstNumericField(row, g.op.Fields)
	}

	keyVals := make([]value.Value, len(g.op.Fields))
	parts := make([]string, len(g.op.Fields))
	for i, f := range g.op.Fields {
		v := value.Extract(row, f)
		keyVals[i] = v
		parts[i] = v.String()
	}
	key := strings.Join(parts, "\x1f")

	entry, ok := g.groups[key]
	if !ok {
		entry = &groupEntry{keyValues: keyVals, fold: exec.NewFold()}
		g.groups[key] = entry
		g.order = append(g.order, key)
	}

	if agg == ast.AggCount {
		entry.fold.Add(value.Bool(true))
	} else {
		var contrib value.Value
		if g.op.Value != nil {
			v, err := g.ev.EvalValue(g.op.Value, row)
			if err != nil {
				return err
			}
			contrib = v
		} else if g.fallback != nil {
			contrib = value.Extract(row, g.fallback)
		}
		entry.fold.Add(contrib)
	}

	g.seen++
	if g.bufferLimit > 0 && g.seen%10000 == 0 && len(g.groups) > g.bufferLimit {
		g.truncate()
	}
	return nil
}

// truncate sorts the current groups by their aggregated value and keeps
// only bufferLimit of them, approximating the eventual top(n): a group
// whose final value would have qualified but was evicted here is lost,
// exactly the tradeoff spec §4.G documents.
func (g *groupAccumulator) truncate() {
	agg := g.agg()
	sort.SliceStable(g.order, func(i, j int) bool {
		a := exec.GroupAggValue(agg, g.groups[g.order[i]].fold)
		b := exec.GroupAggValue(agg, g.groups[g.order[j]].fold)
		if g.topDesc {
			return value.Compare(a, b) > 0
		}
		return value.Compare(a, b) < 0
	})
	if len(g.order) <= g.bufferLimit {
		return
	}
	dropped := g.order[g.bufferLimit:]
	g.order = g.order[:g.bufferLimit]
	for _, key := range dropped {
		delete(g.groups, key)
	}
}

// Finalize renders every surviving group into a row, in g.order: first-seen
// order, except that each truncation re-sorts the survivors by aggregated
// value, and groups first seen after it follow in first-seen order.
func (g *groupAccumulator) Finalize() []*value.Row {
	agg := g.agg()
	name := g.valueName()
	out := make([]*value.Row, 0, len(g.order))
	for _, key := range g.order {
		entry := g.groups[key]
		r := value.NewRow()
		for i, f := range g.op.Fields {
			r.Set(exec.LeafName(f), entry.keyValues[i])
		}
		r.Set(name, exec.GroupAggValue(agg, entry.fold))
		out = append(out, r)
	}
	return out
}

func firstNumericField(row *value.Row, groupFields [][]string) []string {
	excluded := make(map[string]bool, len(groupFields))
	for _, f := range groupFields {
		if len(f) > 0 {
			excluded[f[0]] = true
		}
	}
	for _, key := range row.Keys() {
		if excluded[key] {
			continue
		}
		v, _ := row.Get(key)
		if v.IsNumeric() {
			return []string{key}
		}
	}
	return nil
}
