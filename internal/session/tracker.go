package session

import (
	"sync"
	"time"

	"github.com/mkhalor/juno/internal/escalation"
)

// State holds the cross-turn counters for one conversation. These counters
// feed the escalation gate but live entirely outside it.
type State struct {
	FallbackCount       int
	FormFailCount       int
	RepeatedIntentCount int
	LastIntent          string
	lastSeen            time.Time
}

// Tracker keeps per-session conversation state in memory. Sessions idle past
// the retention window are dropped by a background sweep.
type Tracker struct {
	sessions  map[string]*State
	mu        sync.Mutex
	retention time.Duration
}

func NewTracker(retention time.Duration) *Tracker {
	t := &Tracker{
		sessions:  make(map[string]*State),
		retention: retention,
	}
	go t.sweep()
	return t
}

// Observe records the intent detected for a turn. The repeated-intent counter
// climbs while the intent is unchanged across consecutive turns and resets to
// zero when it changes. An empty intent means no classifier is wired in and
// leaves the counter alone.
func (t *Tracker) Observe(sessionID, intent string) {
	if intent == "" {
		t.touch(sessionID)
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.get(sessionID)
	if s.LastIntent == intent {
		s.RepeatedIntentCount++
	} else {
		s.RepeatedIntentCount = 0
		s.LastIntent = intent
	}
	s.lastSeen = time.Now()
}

// NoteFallback counts a turn the agent could not answer.
func (t *Tracker) NoteFallback(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.get(sessionID)
	s.FallbackCount++
	s.lastSeen = time.Now()
}

// NoteFormFailure counts a failed structured-form attempt.
func (t *Tracker) NoteFormFailure(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.get(sessionID)
	s.FormFailCount++
	s.lastSeen = time.Now()
}

// Signals builds the per-turn escalation inputs from the tracked counters.
// Confidence, user input and sentiment come from the caller.
func (t *Tracker) Signals(sessionID string, confidence float64, userInput, sentiment string) escalation.Signals {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.get(sessionID)
	s.lastSeen = time.Now()

	return escalation.Signals{
		Confidence:          confidence,
		UserInput:           userInput,
		FallbackCount:       s.FallbackCount,
		FormFailCount:       s.FormFailCount,
		Sentiment:           sentiment,
		RepeatedIntentCount: s.RepeatedIntentCount,
	}
}

// Reset clears the counters for a session, e.g. after a human took over.
func (t *Tracker) Reset(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.sessions, sessionID)
}

func (t *Tracker) touch(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.get(sessionID).lastSeen = time.Now()
}

// get returns the state for a session, creating it on first sight.
// Caller must hold t.mu.
func (t *Tracker) get(sessionID string) *State {
	s, ok := t.sessions[sessionID]
	if !ok {
		s = &State{lastSeen: time.Now()}
		t.sessions[sessionID] = s
	}
	return s
}

func (t *Tracker) sweep() {
	ticker := time.NewTicker(t.retention)
	defer ticker.Stop()

	for range ticker.C {
		t.mu.Lock()
		for id, s := range t.sessions {
			if time.Since(s.lastSeen) > t.retention {
				delete(t.sessions, id)
			}
		}
		t.mu.Unlock()
	}
}
