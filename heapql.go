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
	"context"
	"time"

	"github.com/heapql/heapql/adapter"
	"github.com/heapql/heapql/ast"
	"github.com/heapql/heapql/diagnostic"
	"github.com/heapql/heapql/errors"
	"github.com/heapql/heapql/eval"
	"github.com/heapql/heapql/exec"
	"github.com/heapql/heapql/logger"
	"github.com/heapql/heapql/parser"
	"github.com/heapql/heapql/stream"
	"github.com/heapql/heapql/value"
)

// defaultStreamingThreshold is the input cardinality above which a query
// moves from the materialized executor to the streaming one (spec §4.G:
// "e.g., 5,000,000 objects or events").
const defaultStreamingThreshold = 5_000_000

// Engine parses and runs DSL queries against an adapter.Adapter, choosing
// between the materialized and streaming executors per spec §4.G.
type Engine struct {
	log        logger.Logger
	diag       diagnostic.Sink
	extraFuncs map[string]eval.Function

	streamingThreshold int64
	bufferMultiplier   int
	bufferMin          int
	tickInterval       time.Duration
}

// New creates an Engine with spec-default tuning, applying any Options.
func New(opts ...Option) *Engine {
	e := &Engine{
		log:                logger.NewDiscardLogger(),
		diag:               diagnostic.Discard{},
		streamingThreshold: defaultStreamingThreshold,
		bufferMultiplier:   5,
		bufferMin:          1000,
		tickInterval:       500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result is one query's output rows plus the parsed query that produced
// them, for callers that want to render the query back or inspect its
// shape (e.g. which root/type selector it resolved to).
type Result struct {
	Rows  []*value.Row
	Query *ast.Query
}

// Run parses dsl and executes it against ad.
func (e *Engine) Run(ctx context.Context, dsl string, ad adapter.Adapter) (*Result, error) {
	q, err := parser.Parse(dsl)
	if err != nil {
		return nil, err
	}
	return e.RunQuery(ctx, q, ad)
}

// RunQuery executes an already-parsed query against ad. It asks the
// adapter for the root's total row count to decide whether the streaming
// or materialized executor drives the query (spec §4.G "Control flow").
func (e *Engine) RunQuery(ctx context.Context, q *ast.Query, ad adapter.Adapter) (*Result, error) {
	defer func() {
		if err := ad.Close(); err != nil {
			e.log.Warn("adapter.Close failed: %v", err)
		}
	}()

	ev := eval.New(e.extraFuncs)
	queryID := diagnostic.NewQueryID()
	graph, hasGraph := ad.Graph()

	if total, known := ad.TotalCount(ctx, q.Root); known && total > e.streamingThreshold {
		rs, err := ad.Stream(ctx, q.Root)
		if err == nil {
			sx := stream.New(ev, graph, hasGraph, e.diag, queryID)
			sx.BufferMultiplier = e.bufferMultiplier
			sx.BufferMin = e.bufferMin
			sx.TickInterval = e.tickInterval
			rows, err := sx.Run(ctx, q, rs)
			if err != nil {
				return nil, err
			}
			return &Result{Rows: rows, Query: q}, nil
		}
		e.log.Warn("adapter.Stream failed (%v), falling back to the materialized executor", err)
	}

	rs, err := ad.Stream(ctx, q.Root)
	if err != nil {
		return nil, err
	}
	rows, err := drain(ctx, rs)
	closeErr := rs.Close()
	if err != nil {
		return nil, err
	}
	if closeErr != nil {
		return nil, closeErr
	}

	mx := exec.New(ev, graph, hasGraph, e.diag, queryID)
	out, err := mx.Run(ctx, q, rows)
	if err != nil {
		return nil, err
	}
	return &Result{Rows: out, Query: q}, nil
}

func drain(ctx context.Context, rs adapter.RowStream) ([]*value.Row, error) {
	var rows []*value.Row
	for {
		if ctx.Err() != nil {
			return nil, errors.Cancelled
		}
		row, ok, err := rs.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return rows, nil
		}
		rows = append(rows, row)
	}
}
