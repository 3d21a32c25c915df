package handlers

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/http"
	"time"

	"portfolio-doctor/internal/analysis"
	"portfolio-doctor/internal/api/models"
	"portfolio-doctor/internal/backtest"
	"portfolio-doctor/internal/config"
	"portfolio-doctor/internal/data"
	"portfolio-doctor/internal/metrics"
	"portfolio-doctor/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// MaxRuns caps Monte Carlo requests. Each run yields every cycle of one
// synthetic market.
const MaxRuns = 2000

// Datasets resolves dataset names to market series.
type Datasets interface {
	Load(ctx context.Context, name string) (model.MarketSeries, error)
	List(ctx context.Context) ([]data.DatasetInfo, error)
}

// SimulationHandler handles simulation requests
type SimulationHandler struct {
	datasets       Datasets
	defaultDataset string
	store          data.RunStore
	metrics        *metrics.Metrics
}

// NewSimulationHandler creates a new simulation handler. store and m may be nil.
func NewSimulationHandler(datasets Datasets, defaultDataset string, store data.RunStore, m *metrics.Metrics) *SimulationHandler {
	return &SimulationHandler{
		datasets:       datasets,
		defaultDataset: defaultDataset,
		store:          store,
		metrics:        m,
	}
}

// simulationInput is what both simulation endpoints boil down to.
type simulationInput struct {
	dataset       string
	method        string
	runs          int
	seed          *uint64
	portfolio     config.PortfolioConfig
	levels        []float64
	includeCycles bool
	// defaultLength allows shortening the cycle length to fit the dataset.
	defaultLength bool
}

// RunSimulation handles POST /api/v1/simulations
func (h *SimulationHandler) RunSimulation(c *gin.Context) {
	var req models.SimulationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	method, err := backtest.ParseMethod(req.Method)
	if err != nil {
		writeError(c, err)
		return
	}
	if req.Runs < 0 || req.Runs > MaxRuns {
		badRequest(c, fmt.Errorf("runs must be between 0 (server default) and %d", MaxRuns))
		return
	}

	h.run(c, simulationInput{
		dataset:       req.Dataset,
		method:        method,
		runs:          req.Runs,
		seed:          req.Seed,
		portfolio:     config.MergePortfolio(config.Defaults(), req.Portfolio),
		levels:        req.Quantiles,
		includeCycles: req.IncludeCycles,
		defaultLength: req.Portfolio.SimulationYears == 0,
	})
}

// QuickSimulation handles GET /api/v1/simulations/quick. Options come from
// the URL query; unknown methods fall back to historical.
func (h *SimulationHandler) QuickSimulation(c *gin.Context) {
	var q models.OptionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	method, err := backtest.ParseMethod(q.SimulationMethod)
	if err != nil {
		method = backtest.MethodHistorical
	}
	h.run(c, simulationInput{
		dataset:       q.Dataset,
		method:        method,
		portfolio:     q.Portfolio(),
		defaultLength: !q.HasSimulationLength(),
	})
}

func (h *SimulationHandler) run(c *gin.Context, in simulationInput) {
	ctx := c.Request.Context()

	opts, err := in.portfolio.ToOptions()
	if err != nil {
		writeError(c, err)
		return
	}
	dataset := in.dataset
	if dataset == "" {
		dataset = h.defaultDataset
	}
	series, err := h.datasets.Load(ctx, dataset)
	if err != nil {
		writeError(c, err)
		return
	}
	if in.defaultLength {
		if fitted, ok := backtest.FitSimulationLength(opts, series); ok {
			log.Debug().
				Str("dataset", dataset).
				Int("years", fitted.SimulationYearsLength).
				Msg("default cycle length shortened to fit dataset")
			opts = fitted
			in.portfolio.SimulationYears = fitted.SimulationYearsLength
		}
	}
	levels := in.levels
	if len(levels) == 0 {
		levels = analysis.DefaultQuantiles
	}

	start := time.Now()
	result, seed, err := h.simulate(ctx, in, series, opts)
	if err != nil {
		h.metrics.ObserveSimulation(in.method, 0, time.Since(start), err)
		writeError(c, err)
		return
	}
	stats, err := analysis.SummarizePortfolio(result.Cycles)
	if err != nil {
		h.metrics.ObserveSimulation(in.method, 0, time.Since(start), err)
		writeError(c, err)
		return
	}
	bands, err := analysis.ComputeQuantiles(result.Cycles, levels)
	if err != nil {
		h.metrics.ObserveSimulation(in.method, 0, time.Since(start), err)
		writeError(c, err)
		return
	}
	h.metrics.ObserveSimulation(in.method, len(result.Cycles), time.Since(start), nil)

	log.Info().
		Str("method", in.method).
		Str("dataset", dataset).
		Int("cycles", len(result.Cycles)).
		Int("failures", stats.Failures).
		Dur("duration", time.Since(start)).
		Msg("simulation completed")

	response := models.SimulationResponse{
		ID:            h.save(ctx, in.method, dataset, result.Cycles),
		Status:        "completed",
		Method:        in.method,
		Dataset:       dataset,
		Stats:         stats,
		Quantiles:     bands,
		QuantileStats: analysis.ComputeQuantileStats(bands),
		MarketStats:   result.MarketStats,
		Seed:          seed,
		Query:         models.NewOptionsQuery(dataset, in.method, in.portfolio).Encode().Encode(),
	}
	if in.includeCycles {
		response.Cycles = result.Cycles
	}
	c.JSON(http.StatusOK, response)
}

// simulate runs the requested method. For Monte Carlo it also returns the
// seed used, so a run without one can be repeated.
func (h *SimulationHandler) simulate(ctx context.Context, in simulationInput, series model.MarketSeries, opts model.SimulationOptions) (*backtest.Result, *uint64, error) {
	if in.method != backtest.MethodMonteCarlo {
		res, err := backtest.RunHistorical(ctx, series, opts)
		return res, nil, err
	}
	runs := in.runs
	if runs == 0 {
		runs = config.DefaultRuns
	}
	seed := rand.Uint64()
	if in.seed != nil {
		seed = *in.seed
	}
	res, err := backtest.RunMonteCarlo(ctx, series, opts, runs, backtest.NewSeededSource(seed))
	return res, &seed, err
}

// save stores the cycles and returns the run ID, or "" when there is no
// store or saving failed.
func (h *SimulationHandler) save(ctx context.Context, method, dataset string, cycles []model.Cycle) string {
	if h.store == nil {
		return ""
	}
	run := &data.StoredRun{
		ID:        data.NewRunID(),
		CreatedAt: time.Now().UTC(),
		Method:    method,
		Dataset:   dataset,
		Cycles:    cycles,
	}
	if err := h.store.Save(ctx, run); err != nil {
		h.metrics.StoreError()
		log.Warn().Err(err).Str("id", run.ID).Msg("failed to store simulation run")
		return ""
	}
	return run.ID
}

// GetCycles handles GET /api/v1/simulations/:id/cycles
func (h *SimulationHandler) GetCycles(c *gin.Context) {
	run, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, models.CyclesResponse{
		ID:      run.ID,
		Method:  run.Method,
		Dataset: run.Dataset,
		Count:   len(run.Cycles),
		Cycles:  run.Cycles,
	})
}

// lookup loads the run named by the :id parameter, writing the error
// response itself when it cannot.
func (h *SimulationHandler) lookup(c *gin.Context) (*data.StoredRun, bool) {
	id := c.Param("id")
	if h.store == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "NOT_FOUND",
				Message: "simulation runs are not stored on this server",
			},
		})
		return nil, false
	}
	run, found, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		h.metrics.StoreError()
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "STORE_ERROR",
				Message: err.Error(),
			},
		})
		return nil, false
	}
	if !found {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "NOT_FOUND",
				Message: fmt.Sprintf("simulation %q not found or expired", id),
			},
		})
		return nil, false
	}
	return run, true
}
