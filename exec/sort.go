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

	"github.com/heapql/heapql/ast"
	"github.com/heapql/heapql/value"
)

// applyTop implements top(n [, orderBy [, asc|desc]]) (spec §4.F). Without
// orderBy, ordering is a no-op and the first n rows in current order are
// kept — preserving the source's "comparator is a no-op" behavior
// documented as an open design question in spec §9: the observable effect
// is "first n after whatever came before" rather than any particular sort.
func applyTop(o *ast.TopOp, rows []*value.Row) ([]*value.Row, error) {
	if !o.HasOrderBy {
		return takeFirst(rows, o.N), nil
	}
	sorted := append([]*value.Row(nil), rows...)
	sortByKeys(sorted, []ast.SortKey{{Path: o.OrderBy, Desc: o.Desc}})
	return takeFirst(sorted, o.N), nil
}

func takeFirst(rows []*value.Row, n int) []*value.Row {
	if n < 0 {
		n = 0
	}
	if n > len(rows) {
		n = len(rows)
	}
	out := make([]*value.Row, n)
	copy(out, rows[:n])
	return out
}

func applyHead(o *ast.HeadOp, rows []*value.Row) []*value.Row {
	return takeFirst(rows, o.N)
}

func applyTail(o *ast.TailOp, rows []*value.Row) []*value.Row {
	n := o.N
	if n < 0 {
		n = 0
	}
	if n > len(rows) {
		n = len(rows)
	}
	start := len(rows) - n
	out := make([]*value.Row, n)
	copy(out, rows[start:])
	return out
}

func applySortBy(o *ast.SortByOp, rows []*value.Row) []*value.Row {
	sorted := append([]*value.Row(nil), rows...)
	sortByKeys(sorted, o.Keys)
	return sorted
}

// sortByKeys performs a stable multi-key sort, null-last regardless of
// direction per spec §4.A/§4.F.
func sortByKeys(rows []*value.Row, keys []ast.SortKey) {
	sort.SliceStable(rows, func(i, j int) bool {
		for _, k := range keys {
			a := value.Extract(rows[i], k.Path)
			b := value.Extract(rows[j], k.Path)
			if value.Equal(a, b) {
				continue
			}
			if a.IsNull() {
				return false
			}
			if b.IsNull() {
				return true
			}
			if k.Desc {
				return value.Compare(a, b) > 0
			}
			return value.Compare(a, b) < 0
		}
		return false
	})
}

func applyDistinct(o *ast.DistinctOp, rows []*value.Row) []*value.Row {
	seen := make(map[string]bool, len(rows))
	out := make([]*value.Row, 0, len(rows))
	for _, row := range rows {
		key := value.Extract(row, o.Field).String()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, row)
	}
	return out
}
