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
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/heapql/heapql/errors"
	"github.com/heapql/heapql/value"
)

// builtins is the fixed function(args) set spec §4.E requires at minimum,
// grounded on the teacher's functions.Function registry but collapsed to
// plain Go closures since this evaluator has no separate validate/execute
// split.
var builtins = map[string]Function{
	"upper":      fnUpper,
	"lower":      fnLower,
	"length":     fnLength,
	"substring":  fnSubstring,
	"trim":       fnTrim,
	"replace":    fnReplace,
	"abs":        fnAbs,
	"round":      fnRound,
	"floor":      fnFloor,
	"ceil":       fnCeil,
	"coalesce":   fnCoalesce,
	"if":         fnIf,
	"contains":   fnContains,
	"startsWith": fnStartsWith,
	"endsWith":   fnEndsWith,
	"expr":       fnExpr,
}

func requireArgs(name string, args []value.Value, n int) error {
	if len(args) != n {
		return errors.ArgumentErrorf(-1, "%s() takes %d argument(s), got %d", name, n, len(args))
	}
	return nil
}

func fnUpper(args []value.Value) (value.Value, error) {
	if err := requireArgs("upper", args, 1); err != nil {
		return value.Null, err
	}
	return value.String(strings.ToUpper(args[0].String())), nil
}

func fnLower(args []value.Value) (value.Value, error) {
	if err := requireArgs("lower", args, 1); err != nil {
		return value.Null, err
	}
	return value.String(strings.ToLower(args[0].String())), nil
}

func fnLength(args []value.Value) (value.Value, error) {
	if err := requireArgs("length", args, 1); err != nil {
		return value.Null, err
	}
	if seq, ok := args[0].Sequence(); ok {
		return value.Int(int64(len(seq))), nil
	}
	return value.Int(int64(len([]rune(args[0].String())))), nil
}

func fnSubstring(args []value.Value) (value.Value, error) {
	if len(args) != 2 && len(args) != 3 {
		return value.Null, errors.ArgumentErrorf(-1, "substring() takes 2 or 3 arguments, got %d", len(args))
	}
	s := []rune(args[0].String())
	start, _ := args[0+1].Int()
	if start < 0 {
		start = 0
	}
	if start > int64(len(s)) {
		start = int64(len(s))
	}
	end := int64(len(s))
	if len(args) == 3 {
		n, _ := args[2].Int()
		if start+n < end {
			end = start + n
		}
	}
	return value.String(string(s[start:end])), nil
}

func fnTrim(args []value.Value) (value.Value, error) {
	if err := requireArgs("trim", args, 1); err != nil {
		return value.Null, err
	}
	return value.String(strings.TrimSpace(args[0].String())), nil
}

func fnReplace(args []value.Value) (value.Value, error) {
	if err := requireArgs("replace", args, 3); err != nil {
		return value.Null, err
	}
	return value.String(strings.ReplaceAll(args[0].String(), args[1].String(), args[2].String())), nil
}

func fnAbs(args []value.Value) (value.Value, error) {
	if err := requireArgs("abs", args, 1); err != nil {
		return value.Null, err
	}
	if i, ok := args[0].Int(); ok {
		if i < 0 {
			i = -i
		}
		return value.Int(i), nil
	}
	f, _ := args[0].Numeric()
	return value.Float(math.Abs(f)), nil
}

func fnRound(args []value.Value) (value.Value, error) {
	if err := requireArgs("round", args, 1); err != nil {
		return value.Null, err
	}
	f, _ := args[0].Numeric()
	return value.Int(int64(math.Round(f))), nil
}

func fnFloor(args []value.Value) (value.Value, error) {
	if err := requireArgs("floor", args, 1); err != nil {
		return value.Null, err
	}
	f, _ := args[0].Numeric()
	return value.Int(int64(math.Floor(f))), nil
}

func fnCeil(args []value.Value) (value.Value, error) {
	if err := requireArgs("ceil", args, 1); err != nil {
		return value.Null, err
	}
	f, _ := args[0].Numeric()
	return value.Int(int64(math.Ceil(f))), nil
}

func fnCoalesce(args []value.Value) (value.Value, error) {
	for _, a := range args {
		if !a.IsNull() {
			return a, nil
		}
	}
	return value.Null, nil
}

func fnIf(args []value.Value) (value.Value, error) {
	if err := requireArgs("if", args, 3); err != nil {
		return value.Null, err
	}
	if args[0].Truthy() {
		return args[1], nil
	}
	return args[2], nil
}

func fnContains(args []value.Value) (value.Value, error) {
	if err := requireArgs("contains", args, 2); err != nil {
		return value.Null, err
	}
	return value.Bool(strings.Contains(args[0].String(), args[1].String())), nil
}

func fnStartsWith(args []value.Value) (value.Value, error) {
	if err := requireArgs("startsWith", args, 2); err != nil {
		return value.Null, err
	}
	return value.Bool(strings.HasPrefix(args[0].String(), args[1].String())), nil
}

func fnEndsWith(args []value.Value) (value.Value, error) {
	if err := requireArgs("endsWith", args, 2); err != nil {
		return value.Null, err
	}
	return value.Bool(strings.HasSuffix(args[0].String(), args[1].String())), nil
}

// fnExpr bridges to expr-lang/expr for ad hoc expressions beyond this
// module's closed builtin set, grounded on the teacher's ExprFunction.
// Its first argument is the expression source as a string; row fields
// are not directly reachable from it (expr() takes pre-evaluated
// arguments like every other function here) so composite lookups are
// passed in as extra arguments bound to $1, $2, ... in the expr env.
func fnExpr(args []value.Value) (value.Value, error) {
	if len(args) == 0 {
		return value.Null, errors.ArgumentErrorf(-1, "expr() takes at least 1 argument")
	}
	code, ok := args[0].Str()
	if !ok {
		return value.Null, errors.ArgumentErrorf(-1, "expr() first argument must be a string")
	}
	env := make(map[string]any, len(args))
	for i, a := range args[1:] {
		env[argName(i+1)] = exprNative(a)
	}
	out, err := expr.Eval(code, env)
	if err != nil {
		return value.Null, errors.DataErrorf("expr(%q): %s", code, err)
	}
	return value.FromAny(out), nil
}

func argName(i int) string {
	return "$" + strconv.Itoa(i)
}

// exprNative lowers a Value to the plain Go type expr-lang/expr expects in
// its environment map.
func exprNative(v value.Value) any {
	switch v.Kind() {
	case value.KindNull:
		return nil
	case value.KindBool:
		b, _ := v.Bool()
		return b
	case value.KindInt:
		i, _ := v.Int()
		return i
	case value.KindFloat:
		f, _ := v.Float()
		return f
	case value.KindString:
		s, _ := v.Str()
		return s
	case value.KindSeq:
		seq, _ := v.Sequence()
		out := make([]any, len(seq))
		for i, e := range seq {
			out[i] = exprNative(e)
		}
		return out
	default:
		return v.String()
	}
}
