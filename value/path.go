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

import "strconv"

// Extract walks a sequence of path segments against a row, descending into
// nested rows and, when a segment parses as an index, into sequences. Any
// missing segment yields Null rather than an error — field-path resolution
// never fails a row, per spec §4.A / §7 (UnknownField is at most a
// parse-time heuristic, never a runtime abort).
func Extract(row *Row, segments []string) Value {
	if row == nil || len(segments) == 0 {
		return Null
	}
	cur, ok := row.Get(segments[0])
	if !ok {
		return Null
	}
	return extractRest(cur, segments[1:])
}

// ExtractFromValue continues path extraction starting from an arbitrary
// Value (used when a FieldRef's first segment has already been resolved by
// the caller, e.g. inside a list-quantified predicate over a sequence
// element that is itself a row).
func ExtractFromValue(v Value, segments []string) Value {
	return extractRest(v, segments)
}

func extractRest(cur Value, segments []string) Value {
	for _, seg := range segments {
		switch cur.kind {
		case KindRow:
			next, ok := cur.row.Get(seg)
			if !ok {
				return Null
			}
			cur = next
		case KindSeq:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(cur.seq) {
				return Null
			}
			cur = cur.seq[idx]
		default:
			return Null
		}
	}
	return cur
}
