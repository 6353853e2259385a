package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTracker_RepeatedIntentCounting(t *testing.T) {
	tracker := NewTracker(time.Hour)

	tracker.Observe("s1", "leave_balance")
	s := tracker.Signals("s1", 0.9, "", "neutral")
	assert.Equal(t, 0, s.RepeatedIntentCount)

	tracker.Observe("s1", "leave_balance")
	tracker.Observe("s1", "leave_balance")
	s = tracker.Signals("s1", 0.9, "", "neutral")
	assert.Equal(t, 2, s.RepeatedIntentCount)

	// Intent change resets the counter.
	tracker.Observe("s1", "policy_lookup")
	s = tracker.Signals("s1", 0.9, "", "neutral")
	assert.Equal(t, 0, s.RepeatedIntentCount)
}

func TestTracker_EmptyIntentLeavesCounterAlone(t *testing.T) {
	tracker := NewTracker(time.Hour)

	tracker.Observe("s1", "leave_balance")
	tracker.Observe("s1", "leave_balance")
	tracker.Observe("s1", "")
	s := tracker.Signals("s1", 0.9, "", "neutral")
	assert.Equal(t, 1, s.RepeatedIntentCount)
}

func TestTracker_FallbackAndFormFailures(t *testing.T) {
	tracker := NewTracker(time.Hour)

	tracker.NoteFallback("s1")
	tracker.NoteFallback("s1")
	tracker.NoteFormFailure("s1")

	s := tracker.Signals("s1", 0.9, "", "neutral")
	assert.Equal(t, 2, s.FallbackCount)
	assert.Equal(t, 1, s.FormFailCount)
}

func TestTracker_SessionsAreIndependent(t *testing.T) {
	tracker := NewTracker(time.Hour)

	tracker.NoteFallback("s1")
	s := tracker.Signals("s2", 0.9, "", "neutral")
	assert.Equal(t, 0, s.FallbackCount)
}

func TestTracker_Reset(t *testing.T) {
	tracker := NewTracker(time.Hour)

	tracker.NoteFallback("s1")
	tracker.NoteFormFailure("s1")
	tracker.Reset("s1")

	s := tracker.Signals("s1", 0.9, "", "neutral")
	assert.Equal(t, 0, s.FallbackCount)
	assert.Equal(t, 0, s.FormFailCount)
}

func TestTracker_SignalsCarryCallerFields(t *testing.T) {
	tracker := NewTracker(time.Hour)

	s := tracker.Signals("s1", 0.42, "i need hr", "frustrated")
	assert.Equal(t, 0.42, s.Confidence)
	assert.Equal(t, "i need hr", s.UserInput)
	assert.Equal(t, "frustrated", s.Sentiment)
}
