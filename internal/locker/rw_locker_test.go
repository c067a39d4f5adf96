// Copyright 2023 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package locker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetGlobals restores the package-level enable flags so one test's
// toggling doesn't leak into the next.
func resetGlobals(t *testing.T) {
	t.Cleanup(func() {
		gEnableInvariantsCheck = false
		gEnableDebugMessages = false
	})
	gEnableInvariantsCheck = false
	gEnableDebugMessages = false
}

func TestNewRWPlainBehavesLikeRWMutex(t *testing.T) {
	resetGlobals(t)

	l := NewRW("test.plain", func() {})
	_, ok := l.(*rwChecker)
	assert.False(t, ok)
	_, ok = l.(*rwDebugger)
	assert.False(t, ok)

	l.Lock()
	l.Unlock()
	l.RLock()
	l.RUnlock()
}

func TestNewRWWithInvariantsCheckRunsCheckOnEveryTransition(t *testing.T) {
	resetGlobals(t)
	EnableInvariantsCheck()

	var calls int
	l := NewRW("test.checked", func() { calls++ })
	_, ok := l.(*rwChecker)
	require.True(t, ok)

	l.Lock()
	l.Unlock()
	assert.Equal(t, 2, calls)

	l.RLock()
	l.RUnlock()
	assert.Equal(t, 4, calls)
}

func TestNewRWWithDebugMessagesWrapsChecker(t *testing.T) {
	resetGlobals(t)
	EnableInvariantsCheck()
	EnableDebugMessages()

	l := NewRW("test.debugged", func() {})
	dbg, ok := l.(*rwDebugger)
	require.True(t, ok)
	assert.Equal(t, "test.debugged", dbg.name)
	_, ok = dbg.locker.(*rwChecker)
	assert.True(t, ok)

	l.Lock()
	assert.NotEmpty(t, dbg.holder)
	l.Unlock()
	assert.Empty(t, dbg.holder)

	l.RLock()
	l.RUnlock()
}

func TestEnableDebugMessagesAloneWrapsPlainMutex(t *testing.T) {
	resetGlobals(t)
	EnableDebugMessages()

	l := NewRW("test.debug-only", func() {})
	dbg, ok := l.(*rwDebugger)
	require.True(t, ok)
	_, ok = dbg.locker.(*rwChecker)
	assert.False(t, ok)

	l.Lock()
	l.Unlock()
}
