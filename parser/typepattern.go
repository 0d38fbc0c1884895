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

package parser

import "strings"

// normalizeTypePattern translates a Java-style array suffix ("int[]",
// "java.lang.String[][]") into its JVM-internal descriptor form ("[I",
// "[Ljava.lang.String;"), per spec §4.D. Patterns without a trailing "[]"
// and JVM descriptors already in "[...;"/"[[..." form pass through
// unchanged — glob characters ('*', '?') are never array suffixes so they
// are untouched either way.
func normalizeTypePattern(pat string) string {
	depth := 0
	base := pat
	for strings.HasSuffix(base, "[]") {
		base = base[:len(base)-2]
		depth++
	}
	if depth == 0 {
		return pat
	}
	return strings.Repeat("[", depth) + descriptorOf(base)
}

// descriptorOf maps a Java primitive/reference type name to its single JVM
// descriptor character (or "Lname;" for reference types).
func descriptorOf(name string) string {
	switch name {
	case "boolean":
		return "Z"
	case "byte":
		return "B"
	case "char":
		return "C"
	case "short":
		return "S"
	case "int":
		return "I"
	case "long":
		return "J"
	case "float":
		return "F"
	case "double":
		return "D"
	default:
		return "L" + name + ";"
	}
}
