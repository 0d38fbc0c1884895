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

package value

import "strings"

// Row is an ordered mapping from string keys to Value. Keys within one row
// are unique; insertion order is preserved for iteration and rendering. A
// Row is built up by an adapter or a pipeline operator and is treated as
// immutable once handed to the next stage — operators that need to change a
// row produce a new one via Clone rather than mutating a shared instance.
type Row struct {
	keys   []string
	index  map[string]int
	values []Value
}

// NewRow creates an empty row.
func NewRow() *Row {
	return &Row{index: make(map[string]int)}
}

// NewRowFromPairs builds a row from key/value pairs in the given order,
// the common case for adapters projecting a backend record.
func NewRowFromPairs(pairs ...any) *Row {
	r := NewRow()
	for i := 0; i+1 < len(pairs); i += 2 {
		key, _ := pairs[i].(string)
		r.Set(key, FromAny(pairs[i+1]))
	}
	return r
}

// Len returns the number of columns.
func (r *Row) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Keys returns the column names in insertion order. The returned slice must
// not be mutated by the caller.
func (r *Row) Keys() []string {
	if r == nil {
		return nil
	}
	return r.keys
}

// Get looks up a column by exact name, returning (Null, false) if absent.
func (r *Row) Get(key string) (Value, bool) {
	if r == nil {
		return Null, false
	}
	idx, ok := r.index[key]
	if !ok {
		return Null, false
	}
	return r.values[idx], true
}

// Set inserts or overwrites a column, preserving first-seen position for an
// overwrite and appending for a new key.
func (r *Row) Set(key string, v Value) {
	if r.index == nil {
		r.index = make(map[string]int)
	}
	if idx, ok := r.index[key]; ok {
		r.values[idx] = v
		return
	}
	r.index[key] = len(r.keys)
	r.keys = append(r.keys, key)
	r.values = append(r.values, v)
}

// Clone returns a shallow copy that can be mutated independently.
func (r *Row) Clone() *Row {
	if r == nil {
		return NewRow()
	}
	out := &Row{
		keys:   append([]string(nil), r.keys...),
		values: append([]Value(nil), r.values...),
		index:  make(map[string]int, len(r.index)),
	}
	for k, i := range r.index {
		out.index[k] = i
	}
	return out
}

// Project returns a new row containing only the named columns, in the
// order requested; missing source columns are skipped (used by select()
// after path resolution has already produced the values).
func (r *Row) Project(names []string, values []Value) *Row {
	out := NewRow()
	for i, n := range names {
		if i < len(values) {
			out.Set(n, values[i])
		}
	}
	return out
}

// String renders the row as a compact "{k: v, ...}" form, used for display
// and for nested-row stringification inside Value.String.
func (r *Row) String() string {
	if r == nil {
		return "{}"
	}
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(r.values[i].String())
	}
	b.WriteByte('}')
	return b.String()
}
