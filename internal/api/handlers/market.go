package handlers

import (
	"net/http"

	"portfolio-doctor/internal/analysis"
	"portfolio-doctor/internal/api/models"
	"portfolio-doctor/internal/backtest"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// MarketHandler describes the available market datasets
type MarketHandler struct {
	datasets       Datasets
	defaultDataset string
}

func NewMarketHandler(datasets Datasets, defaultDataset string) *MarketHandler {
	return &MarketHandler{datasets: datasets, defaultDataset: defaultDataset}
}

// GetMarket handles GET /api/v1/market?dataset=&include_rows=
func (h *MarketHandler) GetMarket(c *gin.Context) {
	name := c.DefaultQuery("dataset", h.defaultDataset)
	series, err := h.datasets.Load(c.Request.Context(), name)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := models.MarketResponse{
		Dataset:             name,
		FirstYear:           series.FirstYear(),
		LastYear:            series.LastYear(),
		Years:               series.Len(),
		MaxSimulationLength: backtest.MaxSimulationLength(series),
	}
	// Statistics need at least three years; smaller datasets are still listed.
	if stats, err := analysis.ComputeMarketStatistics(series); err == nil {
		resp.Statistics = &stats
	}
	if c.Query("include_rows") == "true" {
		resp.Rows = series
	}
	c.JSON(http.StatusOK, resp)
}

// ListDatasets handles GET /api/v1/datasets
func (h *MarketHandler) ListDatasets(c *gin.Context) {
	datasets, err := h.datasets.List(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list datasets")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "DATASETS_LOAD_ERROR",
				Message: err.Error(),
			},
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"datasets": datasets,
		"default":  h.defaultDataset,
		"count":    len(datasets),
	})
}
