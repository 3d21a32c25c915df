package backtest

import (
	"context"
	"fmt"
	"strings"

	"portfolio-doctor/internal/analysis"
	"portfolio-doctor/internal/model"
)

// Simulation methods.
const (
	MethodHistorical = "historical"
	MethodMonteCarlo = "monte-carlo"
)

// ParseMethod normalizes a simulation method name; empty means historical.
func ParseMethod(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", MethodHistorical, "historic":
		return MethodHistorical, nil
	case MethodMonteCarlo, "montecarlo", "monte_carlo":
		return MethodMonteCarlo, nil
	}
	return "", fmt.Errorf("%w: unknown simulation method %q", model.ErrInvalidOptions, s)
}

// Result is the output of one simulation run: its cycles plus the inputs
// needed to explain them.
type Result struct {
	Method  string
	Options model.SimulationOptions
	Cycles  []model.Cycle

	// Set for Monte Carlo runs only.
	MarketStats *analysis.MarketStatistics
}

// RunHistorical enumerates every historical cycle.
func RunHistorical(ctx context.Context, series model.MarketSeries, opts model.SimulationOptions) (*Result, error) {
	en, err := NewEnumerator(series, opts)
	if err != nil {
		return nil, err
	}
	cycles, err := en.All(ctx)
	if err != nil {
		return nil, err
	}
	return &Result{Method: MethodHistorical, Options: opts, Cycles: cycles}, nil
}

// RunMonteCarlo samples runs cycles using statistics of the whole series.
func RunMonteCarlo(ctx context.Context, series model.MarketSeries, opts model.SimulationOptions, runs int, src RandomSource) (*Result, error) {
	stats, err := analysis.ComputeMarketStatistics(series)
	if err != nil {
		return nil, err
	}
	cycles, err := GenerateMonteCarloRuns(ctx, series, opts, runs, stats, src)
	if err != nil {
		return nil, err
	}
	return &Result{Method: MethodMonteCarlo, Options: opts, Cycles: cycles, MarketStats: &stats}, nil
}
