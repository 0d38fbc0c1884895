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

/*
Package heapql is a query engine over heap dumps and flight-recorder
traces. Users submit path-style expressions in a small DSL; the engine
resolves them against a materialized heap or an event stream and returns
tabular rows suitable for display.

# Getting Started

	package main

	import (
		"context"
		"fmt"

		"github.com/heapql/heapql"
		"github.com/heapql/heapql/adapter"
	)

	func main() {
		eng := heapql.New()

		mem := adapter.NewMemory()
		// mem.SetRows(ast.Objects, rows) with rows from your heap dump parser

		result, err := eng.Run(context.Background(), `objects/*String* | top(10, shallow)`, mem)
		if err != nil {
			panic(err)
		}
		fmt.Println(result.Rows)
	}

# Execution strategy

Run decides between the materialized executor (package exec) and the
streaming executor (package stream) by asking the adapter for the root's
total row count: above the configured threshold, and when the query's
first pipeline operator is stream-compatible (top/groupBy/count/sum/
stats), the streaming path runs with bounded memory. Otherwise the full
row set is read into memory first.

# Custom functions

	eng := heapql.New(heapql.WithFunction("fahrenheitToCelsius", func(args []value.Value) (value.Value, error) {
		f, _ := args[0].Numeric()
		return value.Float((f - 32) * 5 / 9), nil
	}))

# Diagnostics

	eng := heapql.New(heapql.WithDiagnosticSink(diagnostic.Func(func(e diagnostic.Event) {
		log.Printf("[%d] %s", e.Kind, e.Message)
	})))
*/
package heapql
