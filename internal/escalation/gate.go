package escalation

import (
	"strings"
)

// Signals carries the per-turn inputs to the escalation decision. The caller
// builds a fresh value for every turn; the gate keeps no state of its own.
type Signals struct {
	Confidence          float64
	UserInput           string
	FallbackCount       int
	FormFailCount       int
	Sentiment           string
	RepeatedIntentCount int
}

// userEscalationPhrases are explicit requests for a human, matched as
// case-insensitive substrings.
var userEscalationPhrases = []string{
	"talk to a human", "this isn't helping", "i need hr", "human please", "escalate", "real person",
}

// sensitiveKeywords always route to a human regardless of how well the bot
// could answer.
var sensitiveKeywords = []string{
	"payroll error", "harassment", "termination", "medical leave", "discrimination", "bullying",
}

var negativeSentiments = map[string]bool{
	"frustrated": true,
	"angry":      true,
	"negative":   true,
}

const defaultMessage = "Let me connect you to an HR specialist for further help. You will receive a response soon."

// Config holds the tunable thresholds and the deflection notice.
type Config struct {
	ConfidenceThreshold float64
	FallbackThreshold   int
	FormFailThreshold   int
	LoopThreshold       int
	Message             string
}

func DefaultConfig() Config {
	return Config{
		ConfidenceThreshold: 0.5,
		FallbackThreshold:   2,
		FormFailThreshold:   2,
		LoopThreshold:       3,
		Message:             defaultMessage,
	}
}

// Gate decides whether a turn must be deflected to a human. Each rule is a
// total function over primitive inputs with no cross-rule interaction, so new
// rules can be added without touching existing ones.
type Gate struct {
	config Config
}

func NewGate(config Config) *Gate {
	if config.Message == "" {
		config.Message = defaultMessage
	}
	return &Gate{config: config}
}

// Evaluate returns true iff any escalation rule fires.
func (g *Gate) Evaluate(s Signals) bool {
	return g.lowConfidence(s.Confidence) ||
		g.userRequested(s.UserInput) ||
		g.repeatedFallback(s.FallbackCount) ||
		g.sensitiveTopic(s.UserInput) ||
		g.formFailure(s.FormFailCount) ||
		g.negativeSentiment(s.Sentiment) ||
		g.intentLoop(s.RepeatedIntentCount)
}

// Message returns the static deflection notice shown to the user.
func (g *Gate) Message() string {
	return g.config.Message
}

func (g *Gate) lowConfidence(confidence float64) bool {
	return confidence < g.config.ConfidenceThreshold
}

func (g *Gate) userRequested(userInput string) bool {
	lowered := strings.ToLower(userInput)
	for _, phrase := range userEscalationPhrases {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	return false
}

func (g *Gate) repeatedFallback(fallbackCount int) bool {
	return fallbackCount >= g.config.FallbackThreshold
}

func (g *Gate) sensitiveTopic(userInput string) bool {
	lowered := strings.ToLower(userInput)
	for _, keyword := range sensitiveKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}

// formFailure uses a strict inequality, unlike repeatedFallback. A session
// escalates on the third failed form attempt, not the second.
func (g *Gate) formFailure(formFailCount int) bool {
	return formFailCount > g.config.FormFailThreshold
}

func (g *Gate) negativeSentiment(sentiment string) bool {
	return negativeSentiments[sentiment]
}

func (g *Gate) intentLoop(repeatedIntentCount int) bool {
	return repeatedIntentCount >= g.config.LoopThreshold
}
