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

import "strings"

// IsMemoryField implements the memory-field-naming heuristic from spec
// §4.F/§8 testable property 7: case-insensitive suffix "size", or
// substring "bytes"/"shallow"/"retained"/"memory". "bytesRead" triggers
// (contains "bytes"); "byteCount" does not (no second 's', so it contains
// only "byte", never "bytes"). Renderers downstream of the core use this
// to decide whether to byte-format a column; the core itself only uses it
// to pick output column names for sum()/stats().
func IsMemoryField(name string) bool {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, "size") {
		return true
	}
	for _, sub := range []string{"bytes", "shallow", "retained", "memory"} {
		if strings.Contains(lower, sub) {
			return true
		}
	}
	return false
}
