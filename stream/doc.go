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

// Package stream implements the streaming pipeline executor (spec §4.G):
// it drives a lazy adapter.RowStream through a single leading aggregating
// operator under bounded memory, then hands the (now small) intermediate
// result to the materialized executor for any remaining pipeline stages.
//
// It is selected instead of package exec when the adapter reports an input
// cardinality over a configured threshold. A query whose leading operator
// is not one of top/groupBy/count/sum/stats is rewritten to prepend a
// default top(100) and a warning is emitted on the diagnostic channel,
// since none of the other operators can be evaluated without the full row
// set in memory.
package stream
