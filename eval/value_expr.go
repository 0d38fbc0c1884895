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

package eval

import (
	"math"
	"strings"

	"github.com/heapql/heapql/ast"
	"github.com/heapql/heapql/errors"
	"github.com/heapql/heapql/value"
)

// EvalValue evaluates a ValueExpr against row. Runtime errors on an
// individual row's path resolution never abort the query (spec §7
// policy): a missing field yields Null, not an error.
func (e *Evaluator) EvalValue(expr ast.ValueExpr, row *value.Row) (value.Value, error) {
	switch n := expr.(type) {
	case *ast.Literal:
		return n.Value, nil
	case *ast.FieldRef:
		return value.Extract(row, n.Path), nil
	case *ast.Binary:
		return e.evalBinary(n, row)
	case *ast.FunctionCall:
		return e.evalFunctionCall(n, row)
	case *ast.StringTemplate:
		return e.evalStringTemplate(n, row)
	default:
		return value.Null, errors.UnsupportedOperationf("unknown value expression node %T", expr)
	}
}

// evalBinary implements spec §4.E: '+' is arithmetic when both operands
// are numeric, otherwise string concatenation after stringifying each
// side; '-'/'*'/'/' always promote to double, with division by zero
// yielding NaN rather than an error.
func (e *Evaluator) evalBinary(b *ast.Binary, row *value.Row) (value.Value, error) {
	left, err := e.EvalValue(b.Left, row)
	if err != nil {
		return value.Null, err
	}
	right, err := e.EvalValue(b.Right, row)
	if err != nil {
		return value.Null, err
	}

	if b.Op == ast.OpAdd && !(left.IsNumeric() && right.IsNumeric()) {
		return value.String(left.String() + right.String()), nil
	}

	lf, lok := left.Numeric()
	rf, rok := right.Numeric()
	if !lok || !rok {
		// A non-numeric operand (e.g. a missing field resolved to Null) on
		// -, *, / yields Null rather than aborting the query: spec §7
		// policy is that a runtime expression error on one row never
		// aborts the scan.
		return value.Null, nil
	}
	switch b.Op {
	case ast.OpAdd:
		return numericResult(left, right, lf+rf), nil
	case ast.OpSub:
		return value.Float(lf - rf), nil
	case ast.OpMul:
		return value.Float(lf * rf), nil
	case ast.OpDiv:
		if rf == 0 {
			return value.Float(math.NaN()), nil
		}
		return value.Float(lf / rf), nil
	default:
		return value.Null, errors.UnsupportedOperationf("unknown binary operator %v", b.Op)
	}
}

// numericResult keeps integer '+' results as Int (so e.g. two int fields
// summed still render without a trailing fractional part), promoting to
// Float only when either operand already was one.
func numericResult(left, right value.Value, f float64) value.Value {
	li, lok := left.Int()
	ri, rok := right.Int()
	if lok && rok {
		return value.Int(li + ri)
	}
	return value.Float(f)
}

func (e *Evaluator) evalStringTemplate(t *ast.StringTemplate, row *value.Row) (value.Value, error) {
	var b strings.Builder
	for _, part := range t.Parts {
		if part.Expr == nil {
			b.WriteString(part.Literal)
			continue
		}
		v, err := e.EvalValue(part.Expr, row)
		if err != nil {
			return value.Null, err
		}
		if v.IsNull() {
			continue
		}
		b.WriteString(v.String())
	}
	return value.String(b.String()), nil
}

func (e *Evaluator) evalFunctionCall(f *ast.FunctionCall, row *value.Row) (value.Value, error) {
	fn, ok := e.funcs[f.Name]
	if !ok {
		return value.Null, errors.UnknownOperatorf(-1, "unknown function %q", f.Name)
	}
	args := make([]value.Value, len(f.Args))
	for i, a := range f.Args {
		v, err := e.EvalValue(a, row)
		if err != nil {
			return value.Null, err
		}
		args[i] = v
	}
	return fn(args)
}
