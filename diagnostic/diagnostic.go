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

// Package diagnostic carries warnings, progress ticks and graph-service
// tree prints on a channel kept separate from result rows (spec §4.G/§6/
// §9's "global diagnostic output" design note). The source writes these
// directly to the process error stream; this core instead injects a sink
// into the executor at construction, the way the teacher injects a
// *logger.Logger into stream.Stream, so tests can capture it and library
// embedders can route it anywhere.
package diagnostic

import "github.com/oklog/ulid/v2"

// Kind discriminates the shape of an Event.
type Kind int

const (
	KindWarning Kind = iota
	KindProgress
	KindTree
)

// Event is one diagnostic line, tagged with the ULID of the query
// invocation that produced it so concurrent queries sharing a process
// remain attributable (the same correlation-id idea the teacher's sink
// pool gives each worker, applied here to whole query runs instead).
type Event struct {
	QueryID ulid.ULID
	Kind    Kind
	Message string

	// Progress-only fields; zero for Warning/Tree events.
	Processed int64
	Total     int64 // 0 when the backend could not report a total
}

// Sink receives diagnostic events. Implementations must not block the
// executor for long; a slow consumer should buffer internally.
type Sink interface {
	Emit(Event)
}

// Func adapts a plain function to Sink.
type Func func(Event)

func (f Func) Emit(e Event) { f(e) }

// Discard drops every event; the zero value Discard{} is ready to use
// and is the default sink when a caller does not supply one.
type Discard struct{}

func (Discard) Emit(Event) {}

// NewQueryID mints a ULID for one query invocation.
func NewQueryID() ulid.ULID {
	return ulid.Make()
}

// Warning emits a KindWarning event, e.g. the streaming executor's
// default-top(100) fallback notice (spec §4.G).
func Warning(sink Sink, queryID ulid.ULID, message string) {
	if sink == nil {
		return
	}
	sink.Emit(Event{QueryID: queryID, Kind: KindWarning, Message: message})
}

// Progress emits a KindProgress event. Callers are responsible for rate
// limiting to at most once per 500ms (spec §4.G); this function does not
// rate-limit itself so it composes with the Ticker below or a caller's own
// timer.
func Progress(sink Sink, queryID ulid.ULID, processed, total int64) {
	if sink == nil {
		return
	}
	sink.Emit(Event{QueryID: queryID, Kind: KindProgress, Processed: processed, Total: total})
}

// Tree emits a KindTree event carrying a pre-rendered graph-service tree
// print (e.g. a retention path or dominator subtree), kept off the result
// channel per spec §6.
func Tree(sink Sink, queryID ulid.ULID, message string) {
	if sink == nil {
		return
	}
	sink.Emit(Event{QueryID: queryID, Kind: KindTree, Message: message})
}
