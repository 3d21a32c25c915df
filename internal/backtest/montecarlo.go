package backtest

import (
	"context"
	"fmt"
	"math/rand/v2"

	"portfolio-doctor/internal/analysis"
	"portfolio-doctor/internal/model"
)

// RandomSource yields uniform variates in [0, 1). *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// NewSeededSource returns a deterministic source for reproducible runs.
func NewSeededSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// GenerateMonteCarloRuns simulates runCount synthetic markets and returns
// every cycle of each, run-major (run 0's cycles in start-year order, then
// run 1, ...).
//
// A run replaces the equities price path of series: the first price is kept
// and each following one is the previous price times stats.PriceFactor(u),
// one uniform per year-to-year transition. Dividends, fixed-income rates and
// inflation stay historical, so the dividend yield follows the synthetic
// price. All runCount*(len(series)-1) uniforms are taken from src up front,
// so results depend only on the sequence src produces.
func GenerateMonteCarloRuns(
	ctx context.Context,
	series model.MarketSeries,
	opts model.SimulationOptions,
	runCount int,
	stats analysis.MarketStatistics,
	src RandomSource,
) ([]model.Cycle, error) {
	engine, err := NewEngine(opts)
	if err != nil {
		return nil, err
	}
	length := opts.SimulationYearsLength
	if length < 1 {
		return nil, fmt.Errorf("%w: simulation length must be >= 1 year", model.ErrInvalidOptions)
	}
	if runCount < 1 {
		return nil, fmt.Errorf("%w: run count must be >= 1", model.ErrInvalidOptions)
	}
	if src == nil {
		return nil, fmt.Errorf("%w: random source is nil", model.ErrInvalidOptions)
	}
	perRun := MaxSimulationCycles(series, length)
	if perRun < 1 {
		return nil, fmt.Errorf("%w: a %d year run needs %d years of data, have %d",
			model.ErrInsufficientData, length, length+1, len(series))
	}

	transitions := len(series) - 1
	runs := make([]*Enumerator, runCount)
	for r := range runs {
		factors := make([]float64, transitions)
		for k := range factors {
			factors[k] = stats.PriceFactor(src.Float64())
		}
		runs[r] = &Enumerator{series: syntheticSeries(series, factors), engine: engine, length: length}
	}

	return runParallel(ctx, runCount*perRun, func(i int) (model.Cycle, error) {
		r := i / perRun
		c, err := runs[r].Cycle(i % perRun)
		if err != nil {
			return nil, fmt.Errorf("monte carlo run %d: %w", r, err)
		}
		return c, nil
	})
}

// syntheticSeries copies series with prices rebuilt from factors; factors[k]
// takes the price from row k to row k+1.
func syntheticSeries(series model.MarketSeries, factors []float64) model.MarketSeries {
	out := make(model.MarketSeries, len(series))
	copy(out, series)
	for k, f := range factors {
		out[k+1].EquitiesPrice = out[k].EquitiesPrice * f
	}
	return out
}
