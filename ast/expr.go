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

	"github.com/heapql/heapql/value"
)

// CompareOp enumerates the field-path comparison operators.
type CompareOp int

const (
	OpEq CompareOp = iota
	OpNeq
	OpGt
	OpGte
	OpLt
	OpLte
	OpRegex
)

func (o CompareOp) String() string {
	switch o {
	case OpEq:
		return "="
	case OpNeq:
		return "!="
	case OpGt:
		return ">"
	case OpGte:
		return ">="
	case OpLt:
		return "<"
	case OpLte:
		return "<="
	case OpRegex:
		return "~"
	default:
		return "?"
	}
}

// Quantifier selects how a Comparison applies when its field path resolves
// to a sequence.
type Quantifier int

const (
	NoQuant    Quantifier = iota // plain comparison, not list-quantified
	QuantAny                     // exists
	QuantAll                     // forall
	QuantNone                    // no element matches
)

func (q Quantifier) String() string {
	switch q {
	case QuantAny:
		return "any"
	case QuantAll:
		return "all"
	case QuantNone:
		return "none"
	default:
		return ""
	}
}

// BoolExpr is Comparison | And | Or | Not.
type BoolExpr interface {
	Node
	isBoolExpr()
}

// Comparison compares a field path against a literal/value expression.
// When Quant is not NoQuant, a one-segment Path must resolve to a
// sequence; a longer Path resolves all but its last segment to the
// sequence and applies the last segment to each element.
type Comparison struct {
	Quant Quantifier
	Path  []string
	Op    CompareOp
	Value ValueExpr
}

func (*Comparison) isBoolExpr() {}

func (c *Comparison) Format(buf *bytes.Buffer) {
	if c.Quant != NoQuant {
		buf.WriteString(c.Quant.String())
		buf.WriteByte('(')
	}
	buf.WriteString(strings.Join(c.Path, "."))
	buf.WriteByte(' ')
	buf.WriteString(c.Op.String())
	buf.WriteByte(' ')
	c.Value.Format(buf)
	if c.Quant != NoQuant {
		buf.WriteByte(')')
	}
}

type And struct{ Left, Right BoolExpr }

func (*And) isBoolExpr() {}
func (a *And) Format(buf *bytes.Buffer) {
	a.Left.Format(buf)
	buf.WriteString(" and ")
	a.Right.Format(buf)
}

type Or struct{ Left, Right BoolExpr }

func (*Or) isBoolExpr() {}
func (o *Or) Format(buf *bytes.Buffer) {
	o.Left.Format(buf)
	buf.WriteString(" or ")
	o.Right.Format(buf)
}

type Not struct{ Expr BoolExpr }

func (*Not) isBoolExpr() {}
func (n *Not) Format(buf *bytes.Buffer) {
	buf.WriteString("not ")
	n.Expr.Format(buf)
}

// ValueExpr is Literal | FieldRef | Binary | FunctionCall | StringTemplate.
type ValueExpr interface {
	Node
	isValueExpr()
}

// Literal is a parsed constant: null, bool, int64, float64 or string.
type Literal struct {
	Value value.Value
}

func (*Literal) isValueExpr() {}
func (l *Literal) Format(buf *bytes.Buffer) {
	if s, ok := l.Value.Str(); ok {
		fmt.Fprintf(buf, "%q", s)
		return
	}
	buf.WriteString(l.Value.String())
}

// FieldRef is a field-path reference.
type FieldRef struct {
	Path []string
}

func (*FieldRef) isValueExpr() {}
func (f *FieldRef) Format(buf *bytes.Buffer) {
	buf.WriteString(strings.Join(f.Path, "."))
}

// BinaryOp enumerates the arithmetic/concatenation operators.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
)

func (o BinaryOp) String() string {
	switch o {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	default:
		return "?"
	}
}

type Binary struct {
	Op          BinaryOp
	Left, Right ValueExpr
}

func (*Binary) isValueExpr() {}
func (b *Binary) Format(buf *bytes.Buffer) {
	buf.WriteByte('(')
	b.Left.Format(buf)
	buf.WriteByte(' ')
	buf.WriteString(b.Op.String())
	buf.WriteByte(' ')
	b.Right.Format(buf)
	buf.WriteByte(')')
}

type FunctionCall struct {
	Name string
	Args []ValueExpr
}

func (*FunctionCall) isValueExpr() {}
func (f *FunctionCall) Format(buf *bytes.Buffer) {
	buf.WriteString(f.Name)
	buf.WriteByte('(')
	for i, a := range f.Args {
		if i > 0 {
			buf.WriteString(", ")
		}
		a.Format(buf)
	}
	buf.WriteByte(')')
}

// TemplatePart is one piece of a StringTemplate: either a literal string
// segment or an embedded expression.
type TemplatePart struct {
	Literal string
	Expr    ValueExpr // nil when this part is a literal segment
}

// StringTemplate interleaves literal text with embedded expressions,
// rendering a null embedded value as empty string (§4.E).
type StringTemplate struct {
	Parts []TemplatePart
}

func (*StringTemplate) isValueExpr() {}
func (s *StringTemplate) Format(buf *bytes.Buffer) {
	buf.WriteByte('`')
	for _, p := range s.Parts {
		if p.Expr == nil {
			buf.WriteString(p.Literal)
			continue
		}
		buf.WriteString("${")
		p.Expr.Format(buf)
		buf.WriteByte('}')
	}
	buf.WriteByte('`')
}
