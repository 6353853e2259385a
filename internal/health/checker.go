package health

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mkhalor/juno/internal/database"
	"github.com/mkhalor/juno/internal/feedback"
	"github.com/sirupsen/logrus"
)

// Checker manages health checks for the service's components. dbManager is
// nil when the server runs on the file-backed store without Postgres/Redis.
type Checker struct {
	dbManager    *database.Manager
	cache        *database.Cache
	store        feedback.Store
	retrievalURL string
	logger       *logrus.Logger
}

func NewChecker(dbManager *database.Manager, store feedback.Store, retrievalURL string, logger *logrus.Logger) *Checker {
	c := &Checker{
		dbManager:    dbManager,
		store:        store,
		retrievalURL: retrievalURL,
		logger:       logger,
	}
	if dbManager != nil {
		c.cache = database.NewCache(dbManager.Redis, logger)
	}
	return c
}

// ServiceHealth represents the health status of one component
type ServiceHealth struct {
	Name         string `json:"name"`
	Status       string `json:"status"`
	ResponseTime int    `json:"response_time_ms"`
	Error        string `json:"error,omitempty"`
	LastChecked  string `json:"last_checked"`
}

// OverallHealth represents the overall system health
type OverallHealth struct {
	Status   string          `json:"status"`
	Services []ServiceHealth `json:"services"`
	Uptime   string          `json:"uptime"`
}

func (h *Checker) CheckPostgreSQL() ServiceHealth {
	start := time.Now()
	err := h.dbManager.PingDatabase()
	return h.report("postgresql", start, err)
}

func (h *Checker) CheckRedis() ServiceHealth {
	start := time.Now()
	err := h.dbManager.PingRedis()
	return h.report("redis", start, err)
}

// CheckRetrieval probes the knowledge-base service's health endpoint.
func (h *Checker) CheckRetrieval() ServiceHealth {
	start := time.Now()

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(h.retrievalURL + "/health")
	if err == nil {
		defer resp.Body.Close()
		if resp.StatusCode >= 400 {
			err = fmt.Errorf("HTTP %d", resp.StatusCode)
		}
	}

	return h.report("retrieval", start, err)
}

// CheckFeedbackStore verifies the feedback log is readable.
func (h *Checker) CheckFeedbackStore() ServiceHealth {
	start := time.Now()
	_, err := h.store.Stats()
	return h.report("feedback_store", start, err)
}

func (h *Checker) report(name string, start time.Time, err error) ServiceHealth {
	status := "healthy"
	errorMsg := ""
	if err != nil {
		status = "unhealthy"
		errorMsg = err.Error()
		h.logger.WithError(err).WithField("service", name).Error("Health check failed")
	}

	return ServiceHealth{
		Name:         name,
		Status:       status,
		ResponseTime: int(time.Since(start).Milliseconds()),
		Error:        errorMsg,
		LastChecked:  time.Now().Format(time.RFC3339),
	}
}

// CheckAll performs health checks on every wired component.
func (h *Checker) CheckAll() OverallHealth {
	services := []ServiceHealth{
		h.CheckFeedbackStore(),
	}
	if h.dbManager != nil {
		services = append(services, h.CheckPostgreSQL(), h.CheckRedis())
	}
	if h.retrievalURL != "" {
		services = append(services, h.CheckRetrieval())
	}

	overallStatus := "healthy"
	for _, service := range services {
		if service.Status == "unhealthy" {
			overallStatus = "unhealthy"
			break
		}
	}

	return OverallHealth{
		Status:   overallStatus,
		Services: services,
		Uptime:   h.Uptime(),
	}
}

// CheckCached returns the last periodic result if one is cached.
func (h *Checker) CheckCached(ctx context.Context) (*OverallHealth, error) {
	if h.cache == nil {
		return nil, fmt.Errorf("health cache unavailable")
	}

	var cached OverallHealth
	if err := h.cache.GetJSON(ctx, database.SystemHealthKey, &cached); err != nil {
		return nil, err
	}
	cached.Uptime = h.Uptime()
	return &cached, nil
}

var startTime = time.Now()

func (h *Checker) Uptime() string {
	return time.Since(startTime).String()
}

// PeriodicHealthCheck runs health checks on an interval and caches the result.
func (h *Checker) PeriodicHealthCheck(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			health := h.CheckAll()

			if h.cache != nil {
				cacheCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				if err := h.cache.SetJSON(cacheCtx, database.SystemHealthKey, health, 2*interval); err != nil {
					h.logger.WithError(err).Error("Failed to cache health status")
				}
				cancel()
			}

			h.logger.WithField("status", health.Status).Debug("Periodic health check completed")
		}
	}
}
