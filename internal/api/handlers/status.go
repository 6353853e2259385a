// internal/api/handlers/status.go
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mkhalor/juno/internal/health"
	"github.com/mkhalor/juno/internal/models"
	"github.com/mkhalor/juno/pkg/utils"
)

type StatusHandler struct {
	checker *health.Checker
}

func NewStatusHandler(checker *health.Checker) *StatusHandler {
	return &StatusHandler{checker: checker}
}

// HandleHealth reports component health, preferring the cached periodic
// result to avoid probing on every request.
func (h *StatusHandler) HandleHealth(c *gin.Context) {
	overall, err := h.checker.CheckCached(c.Request.Context())
	if err != nil {
		live := h.checker.CheckAll()
		overall = &live
	}

	services := make(map[string]string, len(overall.Services))
	for _, service := range overall.Services {
		services[service.Name] = service.Status
	}

	code := http.StatusOK
	if overall.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, models.HealthResponse{
		Status:    overall.Status,
		Service:   "juno",
		Timestamp: time.Now().Format(time.RFC3339),
		Services:  services,
	})
}

// HandleStatus reports the coarse component view the dashboard shows.
func (h *StatusHandler) HandleStatus(c *gin.Context) {
	overall := h.checker.CheckAll()

	status := func(name string) string {
		for _, service := range overall.Services {
			if service.Name == name {
				if service.Status == "healthy" {
					return "online"
				}
				return "offline"
			}
		}
		return "not configured"
	}

	utils.SuccessResponse(c, http.StatusOK, "Status retrieved", models.StatusResponse{
		AgentStatus:      "online",
		RetrievalStatus:  status("retrieval"),
		FeedbackStatus:   status("feedback_store"),
		EscalationStatus: "ready",
		Uptime:           h.checker.Uptime(),
	})
}
