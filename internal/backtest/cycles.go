package backtest

import (
	"context"
	"fmt"
	"iter"

	"portfolio-doctor/internal/model"
)

// MaxSimulationLength is the longest cycle the series can support. A cycle of
// L years reads L+1 rows because each year's price change needs the next
// year's price.
func MaxSimulationLength(series model.MarketSeries) int {
	if len(series) < 2 {
		return 0
	}
	return len(series) - 1
}

// MaxSimulationCycles is the number of admissible start positions for cycles
// of the given length.
func MaxSimulationCycles(series model.MarketSeries, length int) int {
	if length < 1 {
		return 0
	}
	n := len(series) - length
	if n < 0 {
		return 0
	}
	return n
}

// FitSimulationLength shortens opts to the longest cycle series supports when
// the requested length does not fit, and reports whether it did.
func FitSimulationLength(opts model.SimulationOptions, series model.MarketSeries) (model.SimulationOptions, bool) {
	if longest := MaxSimulationLength(series); longest > 0 && opts.SimulationYearsLength > longest {
		opts.SimulationYearsLength = longest
		return opts, true
	}
	return opts, false
}

// YearIndex returns the position of year within series.
func YearIndex(series model.MarketSeries, year int) (int, error) {
	return series.YearIndex(year)
}

// Enumerator produces every historical cycle of a fixed length, one per
// admissible starting year.
type Enumerator struct {
	series model.MarketSeries
	engine *Engine
	length int
}

// NewEnumerator fails with ErrInsufficientData when the series holds no
// cycle of the requested length.
func NewEnumerator(series model.MarketSeries, opts model.SimulationOptions) (*Enumerator, error) {
	engine, err := NewEngine(opts)
	if err != nil {
		return nil, err
	}
	if opts.SimulationYearsLength < 1 {
		return nil, fmt.Errorf("%w: simulation length must be >= 1 year", model.ErrInvalidOptions)
	}
	if MaxSimulationCycles(series, opts.SimulationYearsLength) < 1 {
		return nil, fmt.Errorf("%w: a %d year cycle needs %d years of data, have %d",
			model.ErrInsufficientData, opts.SimulationYearsLength, opts.SimulationYearsLength+1, len(series))
	}
	return &Enumerator{series: series, engine: engine, length: opts.SimulationYearsLength}, nil
}

// Len is the number of cycles the enumerator yields.
func (e *Enumerator) Len() int { return MaxSimulationCycles(e.series, e.length) }

// Cycle computes the cycle starting at series index i.
func (e *Enumerator) Cycle(i int) (model.Cycle, error) {
	if i < 0 || i >= e.Len() {
		return nil, fmt.Errorf("%w: cycle %d out of range [0, %d)", model.ErrInsufficientData, i, e.Len())
	}
	obs := make([]model.Observation, e.length)
	for j := range obs {
		obs[j] = e.series.Observation(i, i+j)
	}
	c, err := e.engine.Run(obs)
	if err != nil {
		return nil, fmt.Errorf("cycle %d: %w", e.series[i].Year, err)
	}
	return c, nil
}

// Cycles lazily yields cycles in start-year order. Each range over it starts
// from the first cycle again. Iteration stops after the first error.
func (e *Enumerator) Cycles() iter.Seq2[model.Cycle, error] {
	return func(yield func(model.Cycle, error) bool) {
		for i := 0; i < e.Len(); i++ {
			c, err := e.Cycle(i)
			if !yield(c, err) || err != nil {
				return
			}
		}
	}
}

// All computes every cycle on a worker pool. The result is ordered by start
// year and identical to ranging over Cycles.
func (e *Enumerator) All(ctx context.Context) ([]model.Cycle, error) {
	return runParallel(ctx, e.Len(), e.Cycle)
}
