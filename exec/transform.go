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
	"math"
	"strings"

	"github.com/heapql/heapql/ast"
	"github.com/heapql/heapql/errors"
	"github.com/heapql/heapql/value"
)

// applyTransform maps len/uppercase/lowercase/trim/replace/abs/round/
// floor/ceil element-wise over a named field (spec §4.F). The named
// field's value is replaced in place; every other column passes through
// unchanged.
func (x *Executor) applyTransform(o *ast.TransformOp, rows []*value.Row) ([]*value.Row, error) {
	out := make([]*value.Row, len(rows))
	for i, row := range rows {
		v := value.Extract(row, o.Field)
		nv, err := x.transformValue(o, v, row)
		if err != nil {
			return nil, err
		}
		out[i] = setPath(row, o.Field, nv)
	}
	return out, nil
}

func (x *Executor) transformValue(o *ast.TransformOp, v value.Value, row *value.Row) (value.Value, error) {
	switch o.Kind {
	case ast.TransformLen:
		if seq, ok := v.Sequence(); ok {
			return value.Int(int64(len(seq))), nil
		}
		return value.Int(int64(len([]rune(v.String())))), nil
	case ast.TransformUppercase:
		return value.String(strings.ToUpper(v.String())), nil
	case ast.TransformLowercase:
		return value.String(strings.ToLower(v.String())), nil
	case ast.TransformTrim:
		return value.String(strings.TrimSpace(v.String())), nil
	case ast.TransformReplace:
		if len(o.Args) != 2 {
			return value.Null, errors.ArgumentErrorf(o.Pos(), "replace() transform takes 2 arguments")
		}
		from, err := x.Eval.EvalValue(o.Args[0], row)
		if err != nil {
			return value.Null, err
		}
		to, err := x.Eval.EvalValue(o.Args[1], row)
		if err != nil {
			return value.Null, err
		}
		return value.String(strings.ReplaceAll(v.String(), from.String(), to.String())), nil
	case ast.TransformAbs:
		n, _ := v.Numeric()
		return value.Float(math.Abs(n)), nil
	case ast.TransformRound:
		n, _ := v.Numeric()
		return value.Int(int64(math.Round(n))), nil
	case ast.TransformFloor:
		n, _ := v.Numeric()
		return value.Int(int64(math.Floor(n))), nil
	case ast.TransformCeil:
		n, _ := v.Numeric()
		return value.Int(int64(math.Ceil(n))), nil
	default:
		return value.Null, errors.UnsupportedOperationf("unknown transform %v", o.Kind)
	}
}

// setPath returns a clone of row with path's value replaced, creating
// nested rows along the way only for the common single-segment case; a
// multi-segment path replaces the value at its nested location if the
// intermediate rows already exist, and is a no-op otherwise (transforms
// operate on adapter-projected schemas, which are always at least one
// level deep but rarely deeper for the fields transforms target).
func setPath(row *value.Row, path []string, v value.Value) *value.Row {
	clone := row.Clone()
	if len(path) == 1 {
		clone.Set(path[0], v)
		return clone
	}
	if len(path) == 0 {
		return clone
	}
	head, ok := clone.Get(path[0])
	if !ok {
		return clone
	}
	nested, ok := head.Row()
	if !ok {
		return clone
	}
	clone.Set(path[0], value.FromRow(setPath(nested, path[1:], v)))
	return clone
}
