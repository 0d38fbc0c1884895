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

// Package errors defines the machine-readable error kinds surfaced by the
// query core (spec §7), grounded on the teacher's richer rsql.ParseError
// but trimmed to the closed kind set this core actually needs.
package errors

import "fmt"

// Kind is the machine-readable error category.
type Kind string

const (
	KindParseError           Kind = "ParseError"
	KindUnknownField         Kind = "UnknownField"
	KindUnknownOperator      Kind = "UnknownOperator"
	KindArgumentError        Kind = "ArgumentError"
	KindUnsupportedOperation Kind = "UnsupportedOperation"
	KindDataError            Kind = "DataError"
	KindCancelled            Kind = "Cancelled"
)

// Error is the error type returned by every package in this module for
// anything a caller might want to branch on programmatically.
type Error struct {
	Kind Kind
	// Offset is the byte offset into the query string, meaningful for
	// KindParseError and KindArgumentError; -1 when not applicable.
	Offset int
	Msg    string
	Err    error // wrapped cause, if any
}

func (e *Error) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s at offset %d: %s", e.Kind, e.Offset, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(kind Kind, offset int, format string, args ...any) *Error {
	return &Error{Kind: kind, Offset: offset, Msg: fmt.Sprintf(format, args...)}
}

func ParseErrorf(offset int, format string, args ...any) *Error {
	return newErr(KindParseError, offset, format, args...)
}

func UnknownFieldf(format string, args ...any) *Error {
	return newErr(KindUnknownField, -1, format, args...)
}

func UnknownOperatorf(offset int, format string, args ...any) *Error {
	return newErr(KindUnknownOperator, offset, format, args...)
}

func ArgumentErrorf(offset int, format string, args ...any) *Error {
	return newErr(KindArgumentError, offset, format, args...)
}

func UnsupportedOperationf(format string, args ...any) *Error {
	return newErr(KindUnsupportedOperation, -1, format, args...)
}

func DataErrorf(format string, args ...any) *Error {
	return newErr(KindDataError, -1, format, args...)
}

// Cancelled is the sentinel error for cooperative cancellation.
var Cancelled = &Error{Kind: KindCancelled, Offset: -1, Msg: "query cancelled"}

// KindOf extracts the Kind from err if it (or something it wraps) is an
// *Error, and ok=false otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if asError(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// asError is a tiny errors.As shim kept local so this package doesn't need
// to import the stdlib "errors" package under a name that collides with
// its own package name in call sites.
func asError(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
