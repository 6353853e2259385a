// internal/api/handlers/feedback.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mkhalor/juno/internal/database"
	"github.com/mkhalor/juno/internal/feedback"
	"github.com/mkhalor/juno/internal/models"
	"github.com/mkhalor/juno/pkg/utils"
	"github.com/sirupsen/logrus"
)

const analyticsCacheTTL = 30 * time.Second

// AnalyticsResponse bundles the derived statistics with a recent-entry window.
type AnalyticsResponse struct {
	feedback.Stats
	RecentFeedback []feedback.Entry `json:"recent_feedback"`
}

type FeedbackHandler struct {
	store  feedback.Store
	cache  *database.Cache
	logger *logrus.Logger
}

// NewFeedbackHandler wires the feedback endpoints. cache may be nil when the
// server runs without Redis; analytics are then computed on every call.
func NewFeedbackHandler(store feedback.Store, cache *database.Cache, logger *logrus.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		store:  store,
		cache:  cache,
		logger: logger,
	}
}

// HandleFeedback accepts one rated interaction.
func (h *FeedbackHandler) HandleFeedback(c *gin.Context) {
	var req models.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid feedback format", err)
		return
	}

	accepted, err := h.store.Record(feedback.Entry{
		SessionID:           req.SessionID,
		UserQuery:           req.UserQuery,
		BotResponse:         req.BotResponse,
		Rating:              req.Rating,
		FeedbackText:        req.FeedbackText,
		EscalationTriggered: req.EscalationTriggered,
		ToolsUsed:           req.ToolsUsed,
		ResponseTime:        req.ResponseTime,
	})
	if err != nil {
		h.logger.WithError(err).Error("Failed to save feedback")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to save feedback", err)
		return
	}
	if !accepted {
		utils.ErrorResponse(c, http.StatusBadRequest, "Rating must be between 1 and 5", nil)
		return
	}

	h.invalidateAnalytics(c.Request.Context())

	utils.SuccessResponse(c, http.StatusCreated, "Feedback recorded", nil)
}

// HandleAnalytics serves the aggregate view over the full feedback log.
func (h *FeedbackHandler) HandleAnalytics(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if h.cache != nil {
		var cached AnalyticsResponse
		if err := h.cache.GetCachedAnalytics(ctx, &cached); err == nil {
			h.logger.Debug("Analytics served from cache")
			utils.SuccessResponse(c, http.StatusOK, "Analytics retrieved", cached)
			return
		}
	}

	stats, err := h.store.Stats()
	if err != nil {
		h.logger.WithError(err).Error("Failed to compute feedback stats")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to compute analytics", err)
		return
	}

	recent, err := h.store.Recent(10)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load recent feedback")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to load recent feedback", err)
		return
	}

	response := AnalyticsResponse{
		Stats:          stats,
		RecentFeedback: recent,
	}

	if h.cache != nil {
		if err := h.cache.CacheAnalytics(ctx, response, analyticsCacheTTL); err != nil {
			h.logger.WithError(err).Warn("Failed to cache analytics")
		}
	}

	utils.SuccessResponse(c, http.StatusOK, "Analytics retrieved", response)
}

// HandleExport snapshots the full log to a file and returns the path.
func (h *FeedbackHandler) HandleExport(c *gin.Context) {
	var req models.ExportRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid export request", err)
			return
		}
	}

	path, err := h.store.Export(req.Destination)
	if err != nil {
		h.logger.WithError(err).Error("Feedback export failed")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Export failed", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Feedback exported", models.ExportResponse{Path: path})
}

func (h *FeedbackHandler) invalidateAnalytics(ctx context.Context) {
	if h.cache == nil {
		return
	}
	if err := h.cache.InvalidateAnalytics(ctx); err != nil {
		h.logger.WithError(err).Warn("Failed to invalidate analytics cache")
	}
}
