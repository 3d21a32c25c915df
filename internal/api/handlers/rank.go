package handlers

import (
	"net/http"

	"portfolio-doctor/internal/analysis"
	"portfolio-doctor/internal/api/models"

	"github.com/gin-gonic/gin"
)

const defaultRankLimit = 10

// RankCycles handles GET /api/v1/simulations/:id/rank
func (h *SimulationHandler) RankCycles(c *gin.Context) {
	var req models.RankRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultRankLimit
	}

	run, ok := h.lookup(c)
	if !ok {
		return
	}

	stats := make([]analysis.CycleStats, 0, len(run.Cycles))
	for _, cycle := range run.Cycles {
		cs, err := analysis.SummarizeCycle(cycle)
		if err != nil {
			writeError(c, err)
			return
		}
		stats = append(stats, cs)
	}

	ranked := analysis.RankWorstCycles(stats, limit)
	rankings := make([]models.Ranking, len(ranked))
	for i, cs := range ranked {
		rankings[i] = models.Ranking{Rank: i + 1, Cycle: cs}
	}
	c.JSON(http.StatusOK, models.RankResponse{ID: run.ID, Rankings: rankings})
}
