package api

import (
	"cmp"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmaslov/media-scrape/app/jobs"
	"github.com/dmaslov/media-scrape/app/provider"
	"github.com/dmaslov/media-scrape/app/scrape"
	"github.com/gin-gonic/gin"
)

const defaultTargetCount = 10

func NewHandler(orchestrator OrchestratorInterface, registry *provider.Registry,
	configCache *jobs.ConfigCache) *Handler {
	return &Handler{
		orchestrator: orchestrator,
		registry:     registry,
		configCache:  configCache,
		startedAt:    time.Now(),
	}
}

type ScrapeRequest struct {
	Topic        string   `json:"topic"`
	SearchDates  string   `json:"searchDates"`
	TargetCount  int      `json:"targetCount"`
	Providers    []string `json:"providers"`
	MediaMode    string   `json:"mediaMode"`
	RunID        string   `json:"runId"`
	ExtractNotes bool     `json:"extractNotes"`
}

func (h *Handler) ScrapeAndInsert(c *gin.Context) {
	var req ScrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	mediaMode, err := scrape.ParseMediaMode(req.MediaMode)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summary, err := h.orchestrator.Run(c.Request.Context(), scrape.Request{
		Topic:        req.Topic,
		SearchDates:  req.SearchDates,
		TargetCount:  cmp.Or(req.TargetCount, defaultTargetCount),
		Providers:    req.Providers,
		MediaMode:    mediaMode,
		RunID:        req.RunID,
		ExtractNotes: req.ExtractNotes,
	})
	if err != nil {
		if errors.Is(err, scrape.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		slog.Error("Scrape run failed", "topic", req.Topic, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Scrape run failed", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"providers": h.registry.Count(),
	}

	health["loaded_jobs"] = h.configCache.GetConfigCount()

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := h.orchestrator.GetStats()

	c.JSON(http.StatusOK, map[string]interface{}{
		"runs":        stats.Runs,
		"inserted":    stats.Inserted,
		"skipped":     stats.Skipped,
		"providers":   h.registry.Names(),
		"loaded_jobs": h.configCache.GetConfigCount(),
		"uptime":      time.Since(h.startedAt).Round(time.Second).String(),
	})
}
