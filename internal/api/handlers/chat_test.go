package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mkhalor/juno/internal/agent"
	"github.com/mkhalor/juno/internal/escalation"
	"github.com/mkhalor/juno/internal/models"
	"github.com/mkhalor/juno/internal/session"
	"github.com/mkhalor/juno/pkg/utils"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResponder struct {
	result agent.Result
	calls  int
}

func (s *stubResponder) Respond(_ context.Context, _ string) agent.Result {
	s.calls++
	return s.result
}

func newChatRouter(t *testing.T, responder Responder) (*gin.Engine, *session.Tracker) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	gate := escalation.NewGate(escalation.DefaultConfig())
	events := escalation.NewEventLog(filepath.Join(t.TempDir(), "escalations.log"), logger)
	tracker := session.NewTracker(time.Hour)

	handler := NewChatHandler(gate, events, tracker, responder, nil, logger)

	router := gin.New()
	router.POST("/api/chat", handler.HandleChat)
	return router, tracker
}

func decodeChatResponse(t *testing.T, body []byte) models.ChatResponse {
	t.Helper()

	var envelope utils.APIResponse
	require.NoError(t, json.Unmarshal(body, &envelope))
	require.True(t, envelope.Success)

	data, err := json.Marshal(envelope.Data)
	require.NoError(t, err)

	var resp models.ChatResponse
	require.NoError(t, json.Unmarshal(data, &resp))
	return resp
}

func TestHandleChat_NormalTurn(t *testing.T) {
	responder := &stubResponder{result: agent.Result{
		Response:     "You have 15 days of annual leave remaining.",
		ToolsUsed:    []string{"GetLeaveBalance"},
		ResponseTime: 0.42,
		Confidence:   0.8,
	}}
	router, _ := newChatRouter(t, responder)

	w := postJSON(router, "/api/chat", map[string]interface{}{
		"message":    "how many leave days do I have?",
		"session_id": "session-1",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, responder.calls)

	resp := decodeChatResponse(t, w.Body.Bytes())
	assert.Equal(t, "session-1", resp.SessionID)
	assert.False(t, resp.EscalationTriggered)
	assert.Equal(t, []string{"GetLeaveBalance"}, resp.ToolsUsed)
}

func TestHandleChat_EscalationPhraseBypassesResponder(t *testing.T) {
	responder := &stubResponder{result: agent.Result{Response: "should not be used"}}
	router, _ := newChatRouter(t, responder)

	w := postJSON(router, "/api/chat", map[string]interface{}{
		"message":    "I want to talk to a human",
		"session_id": "session-2",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, responder.calls)

	resp := decodeChatResponse(t, w.Body.Bytes())
	assert.True(t, resp.EscalationTriggered)
	assert.Equal(t, escalation.DefaultConfig().Message, resp.Response)
	assert.Equal(t, 0.5, resp.Confidence)
	assert.Empty(t, resp.ToolsUsed)
}

func TestHandleChat_FallbacksAccumulateIntoEscalation(t *testing.T) {
	responder := &stubResponder{result: agent.Result{
		Response: "I'm sorry, I don't understand.",
		Fallback: true,
	}}
	router, _ := newChatRouter(t, responder)

	// Two fallback turns raise the counter to the threshold.
	for i := 0; i < 2; i++ {
		w := postJSON(router, "/api/chat", map[string]interface{}{
			"message":    "gibberish request",
			"session_id": "session-3",
		})
		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeChatResponse(t, w.Body.Bytes())
		assert.False(t, resp.EscalationTriggered, "turn %d", i)
	}

	w := postJSON(router, "/api/chat", map[string]interface{}{
		"message":    "gibberish request",
		"session_id": "session-3",
	})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeChatResponse(t, w.Body.Bytes())
	assert.True(t, resp.EscalationTriggered)
}

func TestHandleChat_TrackerResetAfterEscalation(t *testing.T) {
	responder := &stubResponder{result: agent.Result{Response: "ok", Confidence: 0.8}}
	router, tracker := newChatRouter(t, responder)

	w := postJSON(router, "/api/chat", map[string]interface{}{
		"message":    "this is urgent, I need HR",
		"session_id": "session-4",
	})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeChatResponse(t, w.Body.Bytes())
	require.True(t, resp.EscalationTriggered)

	signals := tracker.Signals("session-4", agent.ConfidenceDefault, "hello", stubSentiment)
	assert.Equal(t, 0, signals.FallbackCount)
	assert.Equal(t, 0, signals.RepeatedIntentCount)
}

func TestHandleChat_GeneratesSessionIDWhenMissing(t *testing.T) {
	responder := &stubResponder{result: agent.Result{Response: "ok", Confidence: 0.8}}
	router, _ := newChatRouter(t, responder)

	w := postJSON(router, "/api/chat", map[string]interface{}{
		"message": "hello",
	})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeChatResponse(t, w.Body.Bytes())
	assert.NotEmpty(t, resp.SessionID)
}

func TestHandleChat_MissingMessageIs400(t *testing.T) {
	responder := &stubResponder{}
	router, _ := newChatRouter(t, responder)

	w := postJSON(router, "/api/chat", map[string]interface{}{
		"session_id": "session-5",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, responder.calls)
}
