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

// Package eval evaluates BoolExpr predicates and ValueExpr scalar
// expressions against a *value.Row, grounded on the teacher's
// functions.Function/Execute dispatch shape but closed over the fixed
// builtin set spec §4.E names plus one escape hatch (expr()) bridging to
// expr-lang/expr for anything richer a caller wants ad hoc.
package eval

import (
	"github.com/heapql/heapql/ast"
	"github.com/heapql/heapql/errors"
	"github.com/heapql/heapql/value"
)

// Evaluator evaluates expressions against rows. It is immutable after
// construction and safe for concurrent use by independent queries (each
// query owns its own row stream, so there is no shared mutable state
// beyond the registered function set).
type Evaluator struct {
	funcs map[string]Function
}

// Function is a user-registerable scalar function, grounded on the
// teacher's functions.Function interface but trimmed to this module's
// evaluator signature: arguments already evaluated to Values, returning a
// Value or an error.
type Function func(args []value.Value) (value.Value, error)

// New creates an Evaluator with the builtin function set. extra overrides
// or adds functions by name (used by heapql.WithFunction).
func New(extra map[string]Function) *Evaluator {
	e := &Evaluator{funcs: make(map[string]Function, len(builtins)+len(extra))}
	for name, fn := range builtins {
		e.funcs[name] = fn
	}
	for name, fn := range extra {
		e.funcs[name] = fn
	}
	return e
}

// EvalBool evaluates a BoolExpr against row.
func (e *Evaluator) EvalBool(expr ast.BoolExpr, row *value.Row) (bool, error) {
	switch n := expr.(type) {
	case *ast.Comparison:
		return e.evalComparison(n, row)
	case *ast.And:
		left, err := e.EvalBool(n.Left, row)
		if err != nil {
			return false, err
		}
		if !left {
			return false, nil
		}
		return e.EvalBool(n.Right, row)
	case *ast.Or:
		left, err := e.EvalBool(n.Left, row)
		if err != nil {
			return false, err
		}
		if left {
			return true, nil
		}
		return e.EvalBool(n.Right, row)
	case *ast.Not:
		inner, err := e.EvalBool(n.Expr, row)
		if err != nil {
			return false, err
		}
		return !inner, nil
	default:
		return false, errors.UnsupportedOperationf("unknown bool expression node %T", expr)
	}
}

func (e *Evaluator) evalComparison(c *ast.Comparison, row *value.Row) (bool, error) {
	rhs, err := e.EvalValue(c.Value, row)
	if err != nil {
		return false, err
	}
	if c.Quant == ast.NoQuant {
		lhs := value.Extract(row, c.Path)
		return compareOne(lhs, c.Op, rhs)
	}

	// List-quantified: the path's first segments must resolve to a
	// sequence; remaining segments (if any) are applied per element. Since
	// field paths are flat string slices, the quantifier syntax binds the
	// whole path to the sequence itself when there is exactly one segment,
	// or treats the last segment as the per-element field when there is
	// more than one (e.g. "refs.size" walks to "refs" then compares each
	// element's "size").
	seqPath, elemField := c.Path, ""
	if len(c.Path) > 1 {
		seqPath = c.Path[:len(c.Path)-1]
		elemField = c.Path[len(c.Path)-1]
	}
	seqVal := value.Extract(row, seqPath)
	seq, ok := seqVal.Sequence()
	if !ok {
		return c.Quant == ast.QuantNone, nil
	}

	matchCount := 0
	for _, elem := range seq {
		target := elem
		if elemField != "" {
			target = value.ExtractFromValue(elem, []string{elemField})
		}
		ok, err := compareOne(target, c.Op, rhs)
		if err != nil {
			return false, err
		}
		if ok {
			matchCount++
		}
	}
	switch c.Quant {
	case ast.QuantAny:
		return matchCount > 0, nil
	case ast.QuantAll:
		return matchCount == len(seq), nil
	case ast.QuantNone:
		return matchCount == 0, nil
	default:
		return false, errors.UnsupportedOperationf("unknown quantifier %v", c.Quant)
	}
}

func compareOne(lhs value.Value, op ast.CompareOp, rhs value.Value) (bool, error) {
	switch op {
	case ast.OpEq:
		return value.Equal(lhs, rhs), nil
	case ast.OpNeq:
		return value.NotEqual(lhs, rhs), nil
	case ast.OpGt:
		return !lhs.IsNull() && !rhs.IsNull() && value.Compare(lhs, rhs) > 0, nil
	case ast.OpGte:
		return !lhs.IsNull() && !rhs.IsNull() && value.Compare(lhs, rhs) >= 0, nil
	case ast.OpLt:
		return !lhs.IsNull() && !rhs.IsNull() && value.Compare(lhs, rhs) < 0, nil
	case ast.OpLte:
		return !lhs.IsNull() && !rhs.IsNull() && value.Compare(lhs, rhs) <= 0, nil
	case ast.OpRegex:
		re, err := value.CompileAnchoredRegex(rhs.String())
		if err != nil {
			return false, errors.ArgumentErrorf(-1, "invalid regex %q: %s", rhs.String(), err)
		}
		return value.MatchesRegex(lhs, re), nil
	default:
		return false, errors.UnsupportedOperationf("unknown comparison operator %v", op)
	}
}
