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

import "regexp"

// Compare implements the ordering rule from spec §4.A: numeric-vs-numeric
// uses double promotion, otherwise lexicographic comparison of the
// toString renderings. Null is neither less nor greater than anything
// except by the nullsLast convention applied by the caller (sort/top); for
// a direct three-way comparison here Null sorts before any non-null value
// so that an explicit "nulls last" pass can push it to the end.
//
// Returns -1, 0, or 1.
func Compare(a, b Value) int {
	if a.IsNull() && b.IsNull() {
		return 0
	}
	if a.IsNull() {
		return -1
	}
	if b.IsNull() {
		return 1
	}
	if a.IsNumeric() && b.IsNumeric() {
		af, _ := a.Numeric()
		bf, _ := b.Numeric()
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	as, bs := a.String(), b.String()
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}

// Equal implements "=" / "==": numeric equality across int/float, otherwise
// rendered-string equality. Null equals only Null.
func Equal(a, b Value) bool {
	if a.IsNull() || b.IsNull() {
		return a.IsNull() && b.IsNull()
	}
	if a.IsNumeric() && b.IsNumeric() {
		af, _ := a.Numeric()
		bf, _ := b.Numeric()
		return af == bf
	}
	return a.String() == b.String()
}

// NotEqual implements "!=": null is distinct from any non-null value (and
// equal to itself, so two nulls are not "!=").
func NotEqual(a, b Value) bool {
	return !Equal(a, b)
}

// LessNullsLast orders two values for an ascending sort where Null always
// sorts after every non-null value, per the "null ordering sentinel"
// invariant in spec §4.A.
func LessNullsLast(a, b Value) bool {
	if a.IsNull() && b.IsNull() {
		return false
	}
	if a.IsNull() {
		return false
	}
	if b.IsNull() {
		return true
	}
	return Compare(a, b) < 0
}

// MatchesRegex implements the "~"/"=~" operator: the literal side is an
// anchored regular expression tested against the stringified value.
func MatchesRegex(v Value, pattern *regexp.Regexp) bool {
	return pattern.MatchString(v.String())
}

// CompileAnchoredRegex compiles pattern the way the "~" operator expects:
// anchored at both ends unless the caller's pattern already supplies its
// own anchors.
func CompileAnchoredRegex(pattern string) (*regexp.Regexp, error) {
	anchored := pattern
	if len(anchored) == 0 || anchored[0] != '^' {
		anchored = "^(?:" + anchored + ")$"
	}
	return regexp.Compile(anchored)
}
