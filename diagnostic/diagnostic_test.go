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

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWarningAndProgressEvents(t *testing.T) {
	var got []Event
	sink := Func(func(e Event) { got = append(got, e) })
	id := NewQueryID()

	Warning(sink, id, "default top(100) injected")
	Progress(sink, id, 50, 100)
	Tree(sink, id, "root -> A -> B")

	require.Len(t, got, 3)
	assert.Equal(t, KindWarning, got[0].Kind)
	assert.Equal(t, KindProgress, got[1].Kind)
	assert.Equal(t, int64(50), got[1].Processed)
	assert.Equal(t, KindTree, got[2].Kind)
	assert.Equal(t, id, got[0].QueryID)
}

func TestDiscardSinkDropsEverything(t *testing.T) {
	assert.NotPanics(t, func() {
		Warning(Discard{}, NewQueryID(), "ignored")
	})
}

func TestNilSinkIsNoOp(t *testing.T) {
	assert.NotPanics(t, func() {
		Warning(nil, NewQueryID(), "ignored")
	})
}

func TestTickerRateLimits(t *testing.T) {
	tk := NewTicker(500 * time.Millisecond)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, tk.Ready(base), "first call always fires")
	assert.False(t, tk.Ready(base.Add(100*time.Millisecond)), "too soon")
	assert.True(t, tk.Ready(base.Add(600*time.Millisecond)), "interval elapsed")
}
