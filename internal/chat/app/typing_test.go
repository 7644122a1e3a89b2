package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypingTracker_SetAndClear(t *testing.T) {
	tracker := NewTypingTracker()

	tracker.Set(10, 1, true)
	tracker.Set(10, 2, true)
	tracker.Set(20, 1, true)

	assert.ElementsMatch(t, []int64{1, 2}, tracker.TypingIn(10))
	assert.ElementsMatch(t, []int64{1}, tracker.TypingIn(20))

	tracker.Set(10, 1, false)
	assert.ElementsMatch(t, []int64{2}, tracker.TypingIn(10))

	// Stopping a user who never typed is a no-op.
	tracker.Set(30, 5, false)
	assert.Empty(t, tracker.TypingIn(30))
}

func TestTypingTracker_ClearUser(t *testing.T) {
	tracker := NewTypingTracker()

	tracker.Set(10, 1, true)
	tracker.Set(20, 1, true)
	tracker.Set(20, 2, true)

	cleared := tracker.ClearUser(1)
	assert.ElementsMatch(t, []int64{10, 20}, cleared)

	assert.Empty(t, tracker.TypingIn(10))
	assert.ElementsMatch(t, []int64{2}, tracker.TypingIn(20))

	// A second clear finds nothing.
	assert.Empty(t, tracker.ClearUser(1))
}
