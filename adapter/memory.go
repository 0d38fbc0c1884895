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

package adapter

import (
	"context"

	"github.com/heapql/heapql/ast"
	"github.com/heapql/heapql/value"
)

// Memory is a trivial in-memory Adapter backed by plain row slices, one per
// root. It implements no indices and no graph service by default; tests
// and examples build one with NewMemory and populate it with SetRows, then
// optionally attach a GraphService with SetGraph.
type Memory struct {
	rows      map[ast.Root][]*value.Row
	total     map[ast.Root]int64
	hasTotal  map[ast.Root]bool
	graph     GraphService
	hasGraph  bool
}

// NewMemory creates an empty in-memory adapter.
func NewMemory() *Memory {
	return &Memory{
		rows:     make(map[ast.Root][]*value.Row),
		total:    make(map[ast.Root]int64),
		hasTotal: make(map[ast.Root]bool),
	}
}

// SetRows installs the row set for root.
func (m *Memory) SetRows(root ast.Root, rows []*value.Row) {
	m.rows[root] = rows
}

// SetTotalCount overrides TotalCount for root, used in tests that simulate
// a backend reporting a cardinality larger than the rows actually loaded
// (spec scenario D: adapter reports 6,000,000 rows without materializing
// them).
func (m *Memory) SetTotalCount(root ast.Root, count int64) {
	m.total[root] = count
	m.hasTotal[root] = true
}

// SetGraph attaches a GraphService implementation.
func (m *Memory) SetGraph(g GraphService) {
	m.graph = g
	m.hasGraph = true
}

func (m *Memory) Stream(ctx context.Context, root ast.Root) (RowStream, error) {
	return NewSliceStream(m.rows[root]), nil
}

func (m *Memory) TotalCount(ctx context.Context, root ast.Root) (int64, bool) {
	if ok := m.hasTotal[root]; ok {
		return m.total[root], true
	}
	return int64(len(m.rows[root])), true
}

func (m *Memory) ObjectsOfClass(ctx context.Context, className string) (RowStream, bool, error) {
	return nil, false, nil
}

func (m *Memory) Graph() (GraphService, bool) {
	return m.graph, m.hasGraph
}

func (m *Memory) Close() error { return nil }
