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
	"sort"
	"strings"

	"github.com/heapql/heapql/ast"
	"github.com/heapql/heapql/value"
)

func applyCount(rows []*value.Row) []*value.Row {
	r := value.NewRow()
	r.Set("count", value.Int(int64(len(rows))))
	return []*value.Row{r}
}

// Fold accumulates count/sum/min/max over one numeric field. It backs
// sum()/stats()/groupBy() in this package and is reused as-is by the
// streaming executor's accumulators, per spec §9's "streaming operators
// reuse the folding logic exported by their materialized counterparts."
type Fold struct {
	count  int64
	sum    float64
	allInt bool
	min    value.Value
	max    value.Value
	hasVal bool
}

func NewFold() *Fold { return &Fold{allInt: true} }

// Count returns the number of values folded so far, including non-numeric
// ones (count() counts rows regardless of numeric-ness).
func (f *Fold) Count() int64 { return f.count }

func (f *Fold) Add(v value.Value) {
	f.count++
	n, ok := v.Numeric()
	if !ok {
		return
	}
	f.sum += n
	if _, isInt := v.Int(); !isInt {
		f.allInt = false
	}
	if !f.hasVal || value.Compare(v, f.min) < 0 {
		f.min = v
	}
	if !f.hasVal || value.Compare(v, f.max) > 0 {
		f.max = v
	}
	f.hasVal = true
}

func (f *Fold) SumValue() value.Value {
	if f.allInt {
		return value.Int(int64(f.sum))
	}
	return value.Float(f.sum)
}

func (f *Fold) AvgValue() value.Value {
	if f.count == 0 {
		return value.Float(0)
	}
	return value.Float(f.sum / float64(f.count))
}

func (f *Fold) MinValue() value.Value {
	if !f.hasVal {
		return value.Null
	}
	return f.min
}

func (f *Fold) MaxValue() value.Value {
	if !f.hasVal {
		return value.Null
	}
	return f.max
}

func LeafName(path []string) string {
	if len(path) == 0 {
		return ""
	}
	return path[len(path)-1]
}

// applySum implements sum(field): a single row whose column is named after
// the field when it is memory-valued, else "sum" (spec §4.F).
func applySum(o *ast.SumOp, rows []*value.Row) []*value.Row {
	f := NewFold()
	for _, row := range rows {
		f.Add(value.Extract(row, o.Field))
	}
	name := "sum"
	if IsMemoryField(LeafName(o.Field)) {
		name = LeafName(o.Field)
	}
	r := value.NewRow()
	r.Set(name, f.SumValue())
	return []*value.Row{r}
}

// applyStats implements stats(field): {count, sum, min, max, avg}, keys
// prefixed with the field name when it is memory-valued (spec §4.F).
func applyStats(o *ast.StatsOp, rows []*value.Row) []*value.Row {
	f := NewFold()
	for _, row := range rows {
		f.Add(value.Extract(row, o.Field))
	}
	prefix := ""
	if IsMemoryField(LeafName(o.Field)) {
		prefix = LeafName(o.Field) + "_"
	}
	r := value.NewRow()
	r.Set(prefix+"count", value.Int(f.count))
	r.Set(prefix+"sum", f.SumValue())
	r.Set(prefix+"min", f.MinValue())
	r.Set(prefix+"max", f.MaxValue())
	r.Set(prefix+"avg", f.AvgValue())
	return []*value.Row{r}
}

// groupAccum is one group's running state plus the row values needed to
// rebuild the key/value output columns once grouping completes.
type groupAccum struct {
	keyValues []value.Value
	fold      *Fold
}

// applyGroupBy implements groupBy(fields, [agg=], [value=], [sortBy=],
// [asc]) per spec §4.F, preserving first-seen key order.
func (x *Executor) applyGroupBy(o *ast.GroupByOp, rows []*value.Row) ([]*value.Row, error) {
	agg := o.Agg
	if !o.HasAgg {
		agg = ast.AggCount
	}

	var fallbackField []string
	if agg != ast.AggCount && o.Value == nil {
		fallbackField = firstNumericFieldExcluding(rows, o.Fields)
	}

	order := make([]string, 0)
	groups := make(map[string]*groupAccum)

	for _, row := range rows {
		keyVals := make([]value.Value, len(o.Fields))
		var keyParts []string
		for i, f := range o.Fields {
			v := value.Extract(row, f)
			keyVals[i] = v
			keyParts = append(keyParts, v.String())
		}
		key := strings.Join(keyParts, "\x1f")

		acc, ok := groups[key]
		if !ok {
			acc = &groupAccum{keyValues: keyVals, fold: NewFold()}
			groups[key] = acc
			order = append(order, key)
		}

		if agg == ast.AggCount {
			acc.fold.count++
			continue
		}
		var contrib value.Value
		if o.Value != nil {
			v, err := x.Eval.EvalValue(o.Value, row)
			if err != nil {
				return nil, err
			}
			contrib = v
		} else if fallbackField != nil {
			contrib = value.Extract(row, fallbackField)
		} else {
			contrib = value.Null
		}
		acc.fold.Add(contrib)
	}

	valueName := groupByValueName(o, fallbackField)

	out := make([]*value.Row, 0, len(order))
	for _, key := range order {
		acc := groups[key]
		r := value.NewRow()
		for i, f := range o.Fields {
			r.Set(LeafName(f), acc.keyValues[i])
		}
		r.Set(valueName, GroupAggValue(agg, acc.fold))
		out = append(out, r)
	}

	if o.SortBy != "" {
		sortGroupByResult(out, o, valueName)
	}
	return out, nil
}

func groupByValueName(o *ast.GroupByOp, fallbackField []string) string {
	agg := o.Agg
	if !o.HasAgg {
		agg = ast.AggCount
	}
	if agg == ast.AggCount {
		return "count"
	}
	if ref, ok := o.Value.(*ast.FieldRef); ok {
		return LeafName(ref.Path)
	}
	if o.Value != nil {
		return "value"
	}
	if fallbackField != nil {
		return LeafName(fallbackField)
	}
	return "value"
}

func GroupAggValue(agg ast.AggFunc, f *Fold) value.Value {
	switch agg {
	case ast.AggCount:
		return value.Int(f.count)
	case ast.AggSum:
		return f.SumValue()
	case ast.AggAvg:
		return f.AvgValue()
	case ast.AggMin:
		return f.MinValue()
	case ast.AggMax:
		return f.MaxValue()
	default:
		return value.Null
	}
}

// firstNumericFieldExcluding finds the first column (by insertion order in
// the first row) holding a numeric value whose top-level name is not one
// of groupFields, implementing the "falls back to the first numeric
// field" rule (spec §4.F) when value= is omitted for a non-count agg.
func firstNumericFieldExcluding(rows []*value.Row, groupFields [][]string) []string {
	if len(rows) == 0 {
		return nil
	}
	excluded := make(map[string]bool, len(groupFields))
	for _, f := range groupFields {
		if len(f) > 0 {
			excluded[f[0]] = true
		}
	}
	row := rows[0]
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

func sortGroupByResult(rows []*value.Row, o *ast.GroupByOp, valueName string) {
	path := []string{valueName}
	if o.SortBy == "key" && len(o.Fields) > 0 {
		path = o.Fields[0]
	}
	desc := !o.Asc // default per groupBy's own HasAsc/Asc; sortBy=value commonly wants descending by default like top()
	if o.HasAsc {
		desc = !o.Asc
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a := value.Extract(rows[i], path)
		b := value.Extract(rows[j], path)
		if value.Equal(a, b) {
			return false
		}
		if a.IsNull() {
			return false
		}
		if b.IsNull() {
			return true
		}
		if desc {
			return value.Compare(a, b) > 0
		}
		return value.Compare(a, b) < 0
	})
}
