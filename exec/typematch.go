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
	"strings"

	"github.com/gobwas/glob"

	"github.com/heapql/heapql/ast"
	"github.com/heapql/heapql/value"
)

// TypeMatcher compiles a Query's TypeSelector once per query and reuses it
// across every row, grounded on how the teacher's pack-mate holomush
// precompiles glob.Glob values for its command-matching layer rather than
// recompiling a pattern per candidate. Exported so the streaming executor
// can compile it once per query too, instead of per row.
type TypeMatcher struct {
	globs    []glob.Glob
	subtypes bool
}

// newTypeMatcher compiles sel's patterns. An empty selector matches every
// row and is represented as a nil *TypeMatcher.
func newTypeMatcher(sel ast.TypeSelector) (*TypeMatcher, error) {
	return NewTypeMatcher(sel)
}

// NewTypeMatcher compiles sel's patterns. An empty selector matches every
// row and is represented as a nil *TypeMatcher.
func NewTypeMatcher(sel ast.TypeSelector) (*TypeMatcher, error) {
	if sel.Empty() {
		return nil, nil
	}
	tm := &TypeMatcher{subtypes: sel.Subtypes}
	for _, pat := range sel.Patterns {
		// '[' and ']' in a JVM descriptor ("[I") are literal characters,
		// not a glob character class.
		g, err := glob.Compile(strings.NewReplacer("[", `\[`, "]", `\]`).Replace(pat))
		if err != nil {
			return nil, err
		}
		tm.globs = append(tm.globs, g)
	}
	return tm, nil
}

// Matches reports whether row's class name satisfies the selector. When
// Subtypes is set and the adapter supplied an ancestor-chain column
// ("superClasses", a sequence of names), a match anywhere in that chain
// also counts — the core has no class hierarchy of its own, so subtype
// matching degrades gracefully to name + ancestor-chain matching rather
// than requiring a full type system.
func (tm *TypeMatcher) Matches(row *value.Row) bool {
	if tm == nil {
		return true
	}
	name := classNameOf(row)
	for _, g := range tm.globs {
		if g.Match(name) {
			return true
		}
	}
	if !tm.subtypes {
		return false
	}
	chain, ok := row.Get("superClasses")
	if !ok {
		return false
	}
	seq, ok := chain.Sequence()
	if !ok {
		return false
	}
	for _, anc := range seq {
		ancName := anc.String()
		for _, g := range tm.globs {
			if g.Match(ancName) {
				return true
			}
		}
	}
	return false
}

// classNameOf reads whichever of "className"/"class"/"name" the row
// carries, matching the schema contracts for objects, classes, and
// gc roots respectively (spec §6).
func classNameOf(row *value.Row) string {
	for _, key := range []string{"className", "class", "name"} {
		if v, ok := row.Get(key); ok && !v.IsNull() {
			return v.String()
		}
	}
	return ""
}
