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

package heapql

import (
	"time"

	"github.com/heapql/heapql/diagnostic"
	"github.com/heapql/heapql/eval"
	"github.com/heapql/heapql/logger"
)

// Option modifies an Engine's default behavior, following the functional
// options pattern the teacher uses for its own top-level Streamsql type.
type Option func(*Engine)

// WithLogger installs a custom logger.Logger, e.g. to route engine-level
// diagnostics through an existing logging pipeline.
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// WithLogLevel is shorthand for configuring the default logger's level.
func WithLogLevel(level logger.Level) Option {
	return func(e *Engine) {
		e.log.SetLevel(level)
	}
}

// WithDiscardLog disables logging entirely.
func WithDiscardLog() Option {
	return func(e *Engine) {
		e.log = logger.NewDiscardLogger()
	}
}

// WithDiagnosticSink installs the sink that receives warnings, progress
// ticks and graph-service tree prints (spec §4.G/§6/§9). The default sink
// discards every event.
func WithDiagnosticSink(sink diagnostic.Sink) Option {
	return func(e *Engine) {
		e.diag = sink
	}
}

// WithFunction registers a custom function under name, available to every
// query this Engine runs, extending the builtin set (spec §5 "custom
// function registration").
func WithFunction(name string, fn eval.Function) Option {
	return func(e *Engine) {
		if e.extraFuncs == nil {
			e.extraFuncs = make(map[string]eval.Function)
		}
		e.extraFuncs[name] = fn
	}
}

// WithStreamingThreshold sets the input-cardinality above which a query is
// run through the streaming executor instead of the materialized one
// (spec §4.G: "selected when the input cardinality exceeds a threshold
// (e.g., 5,000,000 objects or events)").
func WithStreamingThreshold(n int64) Option {
	return func(e *Engine) {
		e.streamingThreshold = n
	}
}

// WithGroupByTopBuffer tunes the groupBy→top(n) bounded-buffer heuristic:
// the buffer holds at most max(multiplier*n, min) groups (spec §4.G,
// §5's "tunable buffer multiplier").
func WithGroupByTopBuffer(multiplier, min int) Option {
	return func(e *Engine) {
		e.bufferMultiplier = multiplier
		e.bufferMin = min
	}
}

// WithProgressInterval bounds how often the streaming executor may emit a
// progress event; spec §4.G mandates "at most once every 500ms", the
// default.
func WithProgressInterval(d time.Duration) Option {
	return func(e *Engine) {
		e.tickInterval = d
	}
}
