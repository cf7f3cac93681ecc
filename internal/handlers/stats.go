package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pqsaaay/internal/services"
	"pqsaaay/internal/store"
	"pqsaaay/internal/utils"
)

type StatsHandler struct {
	stats *services.StatsService
	store *store.Store
}

func NewStatsHandler(stats *services.StatsService, st *store.Store) *StatsHandler {
	return &StatsHandler{stats: stats, store: st}
}

// Stats GET /api/stats
func (h *StatsHandler) Stats(c *gin.Context) {
	respond(c, http.StatusOK, h.stats.ComputeStats(), "")
}

// Health GET /health
func (h *StatsHandler) Health(c *gin.Context) {
	snap := h.store.Snapshot()
	respond(c, http.StatusOK, gin.H{
		"status":      "ok",
		"version":     snap.Version,
		"committedAt": snap.CommittedAt.Format(time.RFC3339),
		"backend":     h.store.Backend(),
	}, "")
}

// Reactions GET /api/reactions
func (h *StatsHandler) Reactions(c *gin.Context) {
	respond(c, http.StatusOK, utils.ReactionEmojis, "")
}
