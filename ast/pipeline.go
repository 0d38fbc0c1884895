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

package ast

import (
	"bytes"
	"fmt"
	"strings"
)

// PipelineOp is the closed set of pipeline operators from spec §4.F/§4.G.
// Each stage of a Query's Pipeline is one of these concrete types; there is
// no open-ended "Call" representation in the final AST, matching the
// discriminated-union shape the spec calls for.
type PipelineOp interface {
	Node
	isPipelineOp()
	// Pos is the byte offset of the operator name, used for ArgumentError
	// positions raised while binding the op to an executor.
	Pos() int
}

// Position is embedded in every concrete PipelineOp to carry the byte
// offset of the operator name.
type Position int

func (p Position) Pos() int { return int(p) }

// SelectField is one projected column: either a bare path (Expr is a
// *FieldRef over Path) or a computed expression, with an optional alias.
type SelectField struct {
	Path  []string
	Alias string
	Expr  ValueExpr
}

func (f SelectField) format(buf *bytes.Buffer) {
	f.Expr.Format(buf)
	if f.Alias != "" {
		buf.WriteString(" as ")
		buf.WriteString(f.Alias)
	}
}

type SelectOp struct {
	Position
	Fields []SelectField
}

func (*SelectOp) isPipelineOp() {}
func (s *SelectOp) Format(buf *bytes.Buffer) {
	buf.WriteString("select(")
	for i, f := range s.Fields {
		if i > 0 {
			buf.WriteString(", ")
		}
		f.format(buf)
	}
	buf.WriteByte(')')
}

// FilterOp implements filter(expr)/where(expr); Keyword preserves which
// spelling the user wrote for round-trip fidelity.
type FilterOp struct {
	Position
	Keyword string
	Expr    BoolExpr
}

func (*FilterOp) isPipelineOp() {}
func (f *FilterOp) Format(buf *bytes.Buffer) {
	buf.WriteString(f.Keyword)
	buf.WriteByte('(')
	f.Expr.Format(buf)
	buf.WriteByte(')')
}

type TopOp struct {
	Position
	N          int
	OrderBy    []string
	HasOrderBy bool
	Desc       bool // default true (descending) per spec §4.F
}

func (*TopOp) isPipelineOp() {}
func (t *TopOp) Format(buf *bytes.Buffer) {
	fmt.Fprintf(buf, "top(%d", t.N)
	if t.HasOrderBy {
		fmt.Fprintf(buf, ", %s", strings.Join(t.OrderBy, "."))
		if !t.Desc {
			buf.WriteString(", asc")
		}
	}
	buf.WriteByte(')')
}

type HeadOp struct {
	Position
	N int
}

func (*HeadOp) isPipelineOp() {}
func (h *HeadOp) Format(buf *bytes.Buffer) { fmt.Fprintf(buf, "head(%d)", h.N) }

type TailOp struct {
	Position
	N int
}

func (*TailOp) isPipelineOp() {}
func (t *TailOp) Format(buf *bytes.Buffer) { fmt.Fprintf(buf, "tail(%d)", t.N) }

type SortKey struct {
	Path []string
	Desc bool
}

type SortByOp struct {
	Position
	Keys []SortKey
}

func (*SortByOp) isPipelineOp() {}
func (s *SortByOp) Format(buf *bytes.Buffer) {
	buf.WriteString("sortBy(")
	for i, k := range s.Keys {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(strings.Join(k.Path, "."))
		if k.Desc {
			buf.WriteString(" desc")
		} else {
			buf.WriteString(" asc")
		}
	}
	buf.WriteByte(')')
}

type DistinctOp struct {
	Position
	Field []string
}

func (*DistinctOp) isPipelineOp() {}
func (d *DistinctOp) Format(buf *bytes.Buffer) {
	fmt.Fprintf(buf, "distinct(%s)", strings.Join(d.Field, "."))
}

type CountOp struct{ Position }

func (*CountOp) isPipelineOp()            {}
func (*CountOp) Format(buf *bytes.Buffer) { buf.WriteString("count()") }

type SumOp struct {
	Position
	Field []string
}

func (*SumOp) isPipelineOp() {}
func (s *SumOp) Format(buf *bytes.Buffer) {
	fmt.Fprintf(buf, "sum(%s)", strings.Join(s.Field, "."))
}

type StatsOp struct {
	Position
	Field []string
}

func (*StatsOp) isPipelineOp() {}
func (s *StatsOp) Format(buf *bytes.Buffer) {
	fmt.Fprintf(buf, "stats(%s)", strings.Join(s.Field, "."))
}

// AggFunc enumerates groupBy's aggregation kinds.
type AggFunc int

const (
	AggCount AggFunc = iota
	AggSum
	AggAvg
	AggMin
	AggMax
)

func (a AggFunc) String() string {
	switch a {
	case AggCount:
		return "count"
	case AggSum:
		return "sum"
	case AggAvg:
		return "avg"
	case AggMin:
		return "min"
	case AggMax:
		return "max"
	default:
		return "?"
	}
}

// ParseAggFunc maps a lowercased keyword to an AggFunc.
func ParseAggFunc(s string) (AggFunc, bool) {
	switch s {
	case "count":
		return AggCount, true
	case "sum":
		return AggSum, true
	case "avg":
		return AggAvg, true
	case "min":
		return AggMin, true
	case "max":
		return AggMax, true
	default:
		return 0, false
	}
}

type GroupByOp struct {
	Position
	Fields     [][]string
	Agg        AggFunc
	HasAgg     bool
	Value      ValueExpr // nil when value= was not given
	SortBy     string    // "", "key" or "value"
	Asc        bool
	HasAsc     bool
}

func (*GroupByOp) isPipelineOp() {}
func (g *GroupByOp) Format(buf *bytes.Buffer) {
	buf.WriteString("groupBy(")
	parts := make([]string, len(g.Fields))
	for i, f := range g.Fields {
		parts[i] = strings.Join(f, ".")
	}
	buf.WriteString(strings.Join(parts, ", "))
	if g.HasAgg {
		fmt.Fprintf(buf, ", agg=%s", g.Agg.String())
	}
	if g.Value != nil {
		buf.WriteString(", value=")
		g.Value.Format(buf)
	}
	if g.SortBy != "" {
		fmt.Fprintf(buf, ", sortBy=%s", g.SortBy)
	}
	if g.HasAsc {
		fmt.Fprintf(buf, ", asc=%t", g.Asc)
	}
	buf.WriteByte(')')
}

// TransformKind enumerates the element-wise string/number transforms.
type TransformKind int

const (
	TransformLen TransformKind = iota
	TransformUppercase
	TransformLowercase
	TransformTrim
	TransformReplace
	TransformAbs
	TransformRound
	TransformFloor
	TransformCeil
)

var transformNames = map[string]TransformKind{
	"len": TransformLen, "uppercase": TransformUppercase, "lowercase": TransformLowercase,
	"trim": TransformTrim, "replace": TransformReplace, "abs": TransformAbs,
	"round": TransformRound, "floor": TransformFloor, "ceil": TransformCeil,
}

// ParseTransformKind maps an operator name to a TransformKind.
func ParseTransformKind(name string) (TransformKind, bool) {
	k, ok := transformNames[name]
	return k, ok
}

func (k TransformKind) String() string {
	for name, kind := range transformNames {
		if kind == k {
			return name
		}
	}
	return "?"
}

type TransformOp struct {
	Position
	Kind  TransformKind
	Field []string
	Args  []ValueExpr
}

func (*TransformOp) isPipelineOp() {}
func (t *TransformOp) Format(buf *bytes.Buffer) {
	buf.WriteString(t.Kind.String())
	buf.WriteByte('(')
	buf.WriteString(strings.Join(t.Field, "."))
	for _, a := range t.Args {
		buf.WriteString(", ")
		a.Format(buf)
	}
	buf.WriteByte(')')
}

// Graph-service-backed operators (§4.F): these only describe the request;
// the adapter's graph service supplies the shape of the result.

type PathToRootOp struct{ Position }

func (*PathToRootOp) isPipelineOp()            {}
func (*PathToRootOp) Format(buf *bytes.Buffer) { buf.WriteString("pathToRoot()") }

type RetentionPathsOp struct{ Position }

func (*RetentionPathsOp) isPipelineOp()            {}
func (*RetentionPathsOp) Format(buf *bytes.Buffer) { buf.WriteString("retentionPaths()") }

type RetainedBreakdownOp struct {
	Position
	MaxDepth    int
	HasMaxDepth bool
}

func (*RetainedBreakdownOp) isPipelineOp() {}
func (r *RetainedBreakdownOp) Format(buf *bytes.Buffer) {
	buf.WriteString("retainedBreakdown(")
	if r.HasMaxDepth {
		fmt.Fprintf(buf, "maxDepth=%d", r.MaxDepth)
	}
	buf.WriteByte(')')
}

type DominatorsOp struct {
	Position
	Mode string
}

func (*DominatorsOp) isPipelineOp() {}
func (d *DominatorsOp) Format(buf *bytes.Buffer) {
	buf.WriteString("dominators(")
	if d.Mode != "" {
		fmt.Fprintf(buf, "mode=%s", d.Mode)
	}
	buf.WriteByte(')')
}

// CheckLeaksOp carries exactly one of Detector or Filter, per spec §3
// invariant 3; the parser enforces the invariant and returns an
// ArgumentError otherwise.
type CheckLeaksOp struct {
	Position
	Detector   string
	HasFilter  bool
	Filter     BoolExpr
}

func (*CheckLeaksOp) isPipelineOp() {}
func (c *CheckLeaksOp) Format(buf *bytes.Buffer) {
	buf.WriteString("checkLeaks(")
	if c.HasFilter {
		buf.WriteString("filter=")
		c.Filter.Format(buf)
	} else {
		fmt.Fprintf(buf, "detector=%s", c.Detector)
	}
	buf.WriteByte(')')
}
