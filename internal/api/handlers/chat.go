// internal/api/handlers/chat.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mkhalor/juno/internal/agent"
	"github.com/mkhalor/juno/internal/escalation"
	"github.com/mkhalor/juno/internal/models"
	"github.com/mkhalor/juno/internal/notify"
	"github.com/mkhalor/juno/internal/session"
	"github.com/mkhalor/juno/pkg/utils"
	"github.com/sirupsen/logrus"
)

// Responder is the conversational collaborator behind the chat endpoint.
type Responder interface {
	Respond(ctx context.Context, userInput string) agent.Result
}

// Sentiment classification is an external concern; until a classifier is
// wired in every turn arrives neutral, as in the API's original behavior.
const stubSentiment = "neutral"

const escalatedConfidence = 0.5

type ChatHandler struct {
	gate      *escalation.Gate
	events    *escalation.EventLog
	tracker   *session.Tracker
	responder Responder
	notifier  *notify.SlackNotifier
	logger    *logrus.Logger
}

func NewChatHandler(
	gate *escalation.Gate,
	events *escalation.EventLog,
	tracker *session.Tracker,
	responder Responder,
	notifier *notify.SlackNotifier,
	logger *logrus.Logger,
) *ChatHandler {
	return &ChatHandler{
		gate:      gate,
		events:    events,
		tracker:   tracker,
		responder: responder,
		notifier:  notifier,
		logger:    logger,
	}
}

// HandleChat processes one conversational turn.
func (h *ChatHandler) HandleChat(c *gin.Context) {
	start := time.Now()

	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Invalid chat request")
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	sessionID := h.resolveSession(c, req.SessionID)

	h.tracker.Observe(sessionID, req.Intent)
	signals := h.tracker.Signals(sessionID, agent.ConfidenceDefault, req.Message, stubSentiment)

	h.logger.WithFields(logrus.Fields{
		"session_id": sessionID,
		"fallbacks":  signals.FallbackCount,
	}).Info("Processing chat turn")

	if h.gate.Evaluate(signals) {
		h.handleEscalation(c, sessionID, req.Message, start)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 60*time.Second)
	defer cancel()

	result := h.responder.Respond(ctx, req.Message)
	if result.Fallback {
		h.tracker.NoteFallback(sessionID)
	}

	utils.SuccessResponse(c, http.StatusOK, "Chat completed", models.ChatResponse{
		Response:            result.Response,
		SessionID:           sessionID,
		ResponseTime:        result.ResponseTime,
		EscalationTriggered: false,
		ToolsUsed:           result.ToolsUsed,
		Confidence:          result.Confidence,
	})
}

func (h *ChatHandler) handleEscalation(c *gin.Context, sessionID, message string, start time.Time) {
	if err := h.events.Record(sessionID, message); err != nil {
		// Reported, not fatal: the user still gets the deflection notice.
		h.logger.WithError(err).WithField("session_id", sessionID).Error("Failed to record escalation event")
	}

	if h.notifier != nil {
		go func() {
			if err := h.notifier.NotifyEscalation(sessionID, message); err != nil {
				h.logger.WithError(err).Error("Failed to notify HR channel")
			}
		}()
	}

	// A human takes over from here; the automated counters start fresh.
	h.tracker.Reset(sessionID)

	utils.SuccessResponse(c, http.StatusOK, "Chat completed", models.ChatResponse{
		Response:            h.gate.Message(),
		SessionID:           sessionID,
		ResponseTime:        time.Since(start).Seconds(),
		EscalationTriggered: true,
		ToolsUsed:           []string{},
		Confidence:          escalatedConfidence,
	})
}

func (h *ChatHandler) resolveSession(c *gin.Context, fromBody string) string {
	if fromBody != "" {
		return fromBody
	}
	if session := c.GetHeader("X-Session-ID"); session != "" {
		return session
	}
	return utils.NewSessionID()
}
