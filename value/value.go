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

// Package value implements the dynamic value model shared by every stage of
// the query pipeline: a tagged-union Value, an insertion-ordered Row, path
// extraction and the comparison rules the evaluator and executors rely on.
package value

import (
	"fmt"
	"strconv"

	"github.com/spf13/cast"
)

// Kind discriminates the variants of Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindSeq
	KindRow
)

// Value is a dynamic value: null, boolean, 64-bit signed integer, IEEE 754
// double, string, ordered sequence of Value, or a nested Row. Only one of
// the typed fields is meaningful for a given Kind.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	seq  []Value
	row  *Row
}

// Null is the zero Value.
var Null = Value{kind: KindNull}

func Bool(b bool) Value    { return Value{kind: KindBool, b: b} }
func Int(i int64) Value    { return Value{kind: KindInt, i: i} }
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }
func String(s string) Value { return Value{kind: KindString, s: s} }
func Seq(vs []Value) Value  { return Value{kind: KindSeq, seq: vs} }
func FromRow(r *Row) Value  { return Value{kind: KindRow, row: r} }

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) Bool() (bool, bool)       { return v.b, v.kind == KindBool }
func (v Value) Int() (int64, bool)       { return v.i, v.kind == KindInt }
func (v Value) Float() (float64, bool)   { return v.f, v.kind == KindFloat }
func (v Value) Str() (string, bool)      { return v.s, v.kind == KindString }
func (v Value) Sequence() ([]Value, bool) { return v.seq, v.kind == KindSeq }
func (v Value) Row() (*Row, bool)        { return v.row, v.kind == KindRow }

// IsNumeric reports whether the value is an int or a float.
func (v Value) IsNumeric() bool {
	return v.kind == KindInt || v.kind == KindFloat
}

// Numeric returns the value promoted to float64, for numeric kinds only.
func (v Value) Numeric() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	default:
		return 0, false
	}
}

// Truthy implements the "truthy" rule used by if()/StringTemplate/etc:
// non-null, non-zero, non-empty.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNull:
		return false
	case KindBool:
		return v.b
	case KindInt:
		return v.i != 0
	case KindFloat:
		return v.f != 0
	case KindString:
		return v.s != ""
	case KindSeq:
		return len(v.seq) > 0
	case KindRow:
		return v.row != nil && v.row.Len() > 0
	default:
		return false
	}
}

// String renders the value the way the comparison and concatenation rules
// expect: integers without a trailing fractional part, floats via Go's
// shortest round-trip representation, null as empty string.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		return v.s
	case KindSeq:
		out := "["
		for i, e := range v.seq {
			if i > 0 {
				out += ", "
			}
			out += e.String()
		}
		return out + "]"
	case KindRow:
		if v.row == nil {
			return "{}"
		}
		return v.row.String()
	default:
		return ""
	}
}

// FromAny lifts a generic Go value (as an adapter would hand back from a
// backend) into a Value. Used at the adapter boundary only.
func FromAny(x any) Value {
	switch t := x.(type) {
	case nil:
		return Null
	case Value:
		return t
	case bool:
		return Bool(t)
	case string:
		return String(t)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return Int(cast.ToInt64(t))
	case float32, float64:
		return Float(cast.ToFloat64(t))
	case []any:
		out := make([]Value, len(t))
		for i, e := range t {
			out[i] = FromAny(e)
		}
		return Seq(out)
	case []Value:
		return Seq(t)
	case map[string]any:
		// Go map iteration order is random; adapters that care about
		// column order should build a *Row directly instead of routing
		// through a map.
		r := NewRow()
		for k, e := range t {
			r.Set(k, FromAny(e))
		}
		return FromRow(r)
	case *Row:
		return FromRow(t)
	default:
		return String(fmt.Sprintf("%v", t))
	}
}
