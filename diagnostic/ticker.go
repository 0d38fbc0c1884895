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

package diagnostic

import "time"

// Ticker rate-limits progress emission to at most once per Interval (spec
// §4.G: "at most once every 500ms"), and doubles as the cooperative
// cancellation check point (spec §5: "checked no coarser than once per
// progress tick").
type Ticker struct {
	last     time.Time
	interval time.Duration
}

// NewTicker creates a Ticker with the given minimum interval between
// progress emissions.
func NewTicker(interval time.Duration) *Ticker {
	return &Ticker{interval: interval}
}

// Ready reports whether at least Interval has elapsed since the last time
// it returned true, and if so records now as the new baseline. The very
// first call always returns true so long-running queries emit at least one
// early progress line.
func (t *Ticker) Ready(now time.Time) bool {
	if t.last.IsZero() || now.Sub(t.last) >= t.interval {
		t.last = now
		return true
	}
	return false
}
