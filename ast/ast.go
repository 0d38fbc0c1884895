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

// Package ast defines the discriminated-union node types produced by the
// parser: the query root, predicates, boolean and value expressions, and
// pipeline operator invocations. Nodes are created once by the parser and
// are read-only thereafter; a Query owns its whole tree and there is no
// sharing across queries, so no node needs a reference count.
package ast

import "bytes"

// Node is implemented by every AST node; Format renders the node back to
// DSL source, used both for diagnostics and for the parse/print/parse
// round-trip property.
type Node interface {
	Format(buf *bytes.Buffer)
}

// Root names the source collection a query reads from.
type Root int

const (
	Objects Root = iota
	Classes
	GcRoots
	Events
	Metadata
	ConstantPool
	Chunks
)

func (r Root) String() string {
	switch r {
	case Objects:
		return "objects"
	case Classes:
		return "classes"
	case GcRoots:
		return "gcRoots"
	case Events:
		return "events"
	case Metadata:
		return "metadata"
	case ConstantPool:
		return "constantPool"
	case Chunks:
		return "chunks"
	default:
		return "unknown"
	}
}

// ParseRoot maps a root keyword to its Root value.
func ParseRoot(s string) (Root, bool) {
	switch s {
	case "objects":
		return Objects, true
	case "classes":
		return Classes, true
	case "gcRoots":
		return GcRoots, true
	case "events":
		return Events, true
	case "metadata":
		return Metadata, true
	case "constantPool":
		return ConstantPool, true
	case "chunks":
		return Chunks, true
	default:
		return 0, false
	}
}

// TypeSelector is empty, one concrete type pattern, or a set of
// alternatives, with an optional "subtypes" (instanceof) flag. A pattern
// may be an exact name, a glob ('*'/'?'), a Java array suffix ("X[]",
// "X[][]") or a JVM-internal descriptor ("[I", "[Ljava.lang.Object;") —
// the parser normalizes array suffixes to descriptor form (§4.D) but
// leaves glob/descriptor matching itself to the evaluator.
type TypeSelector struct {
	Patterns []string
	Subtypes bool
}

func (t TypeSelector) Empty() bool { return len(t.Patterns) == 0 }

func (t TypeSelector) Format(buf *bytes.Buffer) {
	if t.Empty() {
		return
	}
	if t.Subtypes {
		buf.WriteString("instanceof ")
	}
	if len(t.Patterns) == 1 {
		buf.WriteString(t.Patterns[0])
		return
	}
	buf.WriteByte('(')
	for i, p := range t.Patterns {
		if i > 0 {
			buf.WriteString("|")
		}
		buf.WriteString(p)
	}
	buf.WriteByte(')')
}

// Query is the root AST node: exactly one source, an optional type
// selector, an optional predicate tree, and a left-to-right pipeline.
type Query struct {
	Root         Root
	TypeSelector TypeSelector
	Predicate    BoolExpr // nil if the query carries no predicate
	Pipeline     []PipelineOp
}

func (q *Query) Format(buf *bytes.Buffer) {
	buf.WriteString(q.Root.String())
	if !q.TypeSelector.Empty() {
		buf.WriteByte('/')
		q.TypeSelector.Format(buf)
	}
	if q.Predicate != nil {
		buf.WriteByte('[')
		q.Predicate.Format(buf)
		buf.WriteByte(']')
	}
	for _, op := range q.Pipeline {
		buf.WriteString(" | ")
		op.Format(buf)
	}
}

// String renders the query back to DSL source.
func (q *Query) String() string {
	var buf bytes.Buffer
	q.Format(&buf)
	return buf.String()
}
