package escalation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func calmSignals() Signals {
	return Signals{
		Confidence:          0.9,
		UserInput:           "how many vacation days do I have left?",
		FallbackCount:       0,
		FormFailCount:       0,
		Sentiment:           "neutral",
		RepeatedIntentCount: 0,
	}
}

func TestEvaluate_NoRuleFiring(t *testing.T) {
	gate := NewGate(DefaultConfig())
	assert.False(t, gate.Evaluate(calmSignals()))
}

func TestEvaluate_LowConfidence(t *testing.T) {
	gate := NewGate(DefaultConfig())

	s := calmSignals()
	s.Confidence = 0.49
	assert.True(t, gate.Evaluate(s))

	s.Confidence = 0.5
	assert.False(t, gate.Evaluate(s))

	// Low confidence wins regardless of every other field.
	s.Confidence = 0.1
	s.Sentiment = "happy"
	assert.True(t, gate.Evaluate(s))
}

func TestEvaluate_UserRequestedEscalation(t *testing.T) {
	gate := NewGate(DefaultConfig())

	for _, input := range []string{
		"i need hr",
		"I need HR",
		"can I please talk to a human about this",
		"this isn't helping at all",
		"please ESCALATE this",
	} {
		s := calmSignals()
		s.UserInput = input
		assert.True(t, gate.Evaluate(s), "input: %s", input)
	}
}

func TestEvaluate_SensitiveTopic(t *testing.T) {
	gate := NewGate(DefaultConfig())

	s := calmSignals()
	s.UserInput = "I think there was a payroll error on my last paycheck"
	assert.True(t, gate.Evaluate(s))

	s.UserInput = "I want to report Harassment by a coworker"
	assert.True(t, gate.Evaluate(s))

	s.UserInput = "what is the travel reimbursement policy"
	assert.False(t, gate.Evaluate(s))
}

func TestEvaluate_FallbackThresholdInclusive(t *testing.T) {
	gate := NewGate(DefaultConfig())

	s := calmSignals()
	s.FallbackCount = 1
	assert.False(t, gate.Evaluate(s))

	// fallback uses >=, two strikes is enough
	s.FallbackCount = 2
	assert.True(t, gate.Evaluate(s))
}

func TestEvaluate_FormFailureThresholdExclusive(t *testing.T) {
	gate := NewGate(DefaultConfig())

	// form failure uses strict >, two failures is still fine
	s := calmSignals()
	s.FormFailCount = 2
	assert.False(t, gate.Evaluate(s))

	s.FormFailCount = 3
	assert.True(t, gate.Evaluate(s))
}

func TestEvaluate_NegativeSentiment(t *testing.T) {
	gate := NewGate(DefaultConfig())

	for _, sentiment := range []string{"frustrated", "angry", "negative"} {
		s := calmSignals()
		s.Sentiment = sentiment
		assert.True(t, gate.Evaluate(s), "sentiment: %s", sentiment)
	}

	s := calmSignals()
	s.Sentiment = "positive"
	assert.False(t, gate.Evaluate(s))
}

func TestEvaluate_IntentLoop(t *testing.T) {
	gate := NewGate(DefaultConfig())

	s := calmSignals()
	s.RepeatedIntentCount = 2
	assert.False(t, gate.Evaluate(s))

	s.RepeatedIntentCount = 3
	assert.True(t, gate.Evaluate(s))
}

func TestEvaluate_Idempotent(t *testing.T) {
	gate := NewGate(DefaultConfig())

	s := calmSignals()
	s.UserInput = "i want a real person"
	first := gate.Evaluate(s)
	second := gate.Evaluate(s)
	assert.Equal(t, first, second)
	assert.True(t, first)
}

func TestEvaluate_ConfigurableThresholds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ConfidenceThreshold = 0.8
	cfg.FallbackThreshold = 5
	gate := NewGate(cfg)

	s := calmSignals()
	s.Confidence = 0.7
	assert.True(t, gate.Evaluate(s))

	s = calmSignals()
	s.FallbackCount = 4
	assert.False(t, gate.Evaluate(s))
}

func TestMessage_Static(t *testing.T) {
	gate := NewGate(DefaultConfig())
	assert.Equal(t, gate.Message(), gate.Message())
	assert.Contains(t, gate.Message(), "HR specialist")

	custom := NewGate(Config{Message: "A colleague will take over shortly."})
	assert.Equal(t, "A colleague will take over shortly.", custom.Message())
}
