package backtest

import (
	"context"
	"errors"
	"testing"

	"portfolio-doctor/internal/model"
	"portfolio-doctor/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaxSimulation(t *testing.T) {
	series := testutil.Shiller2013to2018()

	assert.Equal(t, 5, MaxSimulationLength(series))
	assert.Equal(t, 0, MaxSimulationLength(series[:1]))
	assert.Equal(t, 3, MaxSimulationCycles(series, 3))
	assert.Equal(t, 1, MaxSimulationCycles(series, 5))
	assert.Equal(t, 0, MaxSimulationCycles(series, 6))
	assert.Equal(t, 0, MaxSimulationCycles(series, 0))

	long := testutil.Flat(148)
	assert.Equal(t, 145, MaxSimulationCycles(long, 3))
	assert.Equal(t, 18, MaxSimulationCycles(testutil.Flat(21), 3))

	// Shrinking the series never adds cycles.
	prev := MaxSimulationCycles(long, 10)
	for n := len(long) - 1; n > 0; n-- {
		cur := MaxSimulationCycles(long[:n], 10)
		assert.LessOrEqual(t, cur, prev)
		prev = cur
	}
}

func TestFitSimulationLength(t *testing.T) {
	series := testutil.Shiller2013to2018()
	opts := testutil.StarterOptions()

	opts.SimulationYearsLength = 60
	fitted, changed := FitSimulationLength(opts, series)
	assert.True(t, changed)
	assert.Equal(t, 5, fitted.SimulationYearsLength)
	assert.Equal(t, 60, opts.SimulationYearsLength)

	opts.SimulationYearsLength = 3
	fitted, changed = FitSimulationLength(opts, series)
	assert.False(t, changed)
	assert.Equal(t, 3, fitted.SimulationYearsLength)

	opts.SimulationYearsLength = 60
	_, changed = FitSimulationLength(opts, series[:1])
	assert.False(t, changed)
}

func TestYearIndex(t *testing.T) {
	long := testutil.Flat(148)
	for i := range long {
		long[i].Year = 1871 + i
	}

	idx, err := YearIndex(long, 1871)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	idx, err = YearIndex(long, 1875)
	require.NoError(t, err)
	assert.Equal(t, 4, idx)

	idx, err = YearIndex(long[119:140], 2005)
	require.NoError(t, err)
	assert.Equal(t, 15, idx)

	_, err = YearIndex(long, 1700)
	assert.True(t, errors.Is(err, model.ErrYearNotFound))
}

func TestEnumeratorCycleCount(t *testing.T) {
	en, err := NewEnumerator(testutil.Shiller2013to2018(), testutil.StarterOptions())
	require.NoError(t, err)
	assert.Equal(t, 3, en.Len())

	starts := []int{}
	for c, err := range en.Cycles() {
		require.NoError(t, err)
		require.Len(t, c, 3)
		starts = append(starts, c.StartYear())
	}
	assert.Equal(t, []int{2013, 2014, 2015}, starts)

	// Ranging again restarts from the first cycle.
	for c := range en.Cycles() {
		assert.Equal(t, 2013, c.StartYear())
		break
	}
}

func TestEnumeratorInsufficientData(t *testing.T) {
	opts := testutil.StarterOptions()
	opts.SimulationYearsLength = 6
	_, err := NewEnumerator(testutil.Shiller2013to2018(), opts)
	assert.True(t, errors.Is(err, model.ErrInsufficientData))

	en, err := NewEnumerator(testutil.Shiller2013to2018(), testutil.StarterOptions())
	require.NoError(t, err)
	_, err = en.Cycle(3)
	assert.True(t, errors.Is(err, model.ErrInsufficientData))
}

func TestAllMatchesSequential(t *testing.T) {
	series := testutil.Shiller2013to2018()
	opts := testutil.StarterOptions()
	opts.SimulationYearsLength = 2

	en, err := NewEnumerator(series, opts)
	require.NoError(t, err)

	all, err := en.All(context.Background())
	require.NoError(t, err)

	var seq []model.Cycle
	for c, err := range en.Cycles() {
		require.NoError(t, err)
		seq = append(seq, c)
	}
	assert.Equal(t, seq, all)
	assert.InDelta(t, 1176866.4432, all[0][0].BalanceEnd, moneyDelta)
}

func TestAllHonorsCancellation(t *testing.T) {
	en, err := NewEnumerator(testutil.Flat(50), testutil.StarterOptions())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = en.All(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunHistorical(t *testing.T) {
	res, err := RunHistorical(context.Background(), testutil.Shiller2013to2018(), testutil.StarterOptions())
	require.NoError(t, err)
	assert.Equal(t, MethodHistorical, res.Method)
	assert.Len(t, res.Cycles, 3)
	assert.Nil(t, res.MarketStats)

	want := []float64{1174839.3694, 1126515.6058, 1191404.6718}
	for i, c := range res.Cycles {
		assert.InDelta(t, want[i], c.Final().BalanceInfAdjEnd, 1e-3)
	}
}

func TestParseMethod(t *testing.T) {
	for in, want := range map[string]string{
		"":            MethodHistorical,
		"Historical":  MethodHistorical,
		"monte-carlo": MethodMonteCarlo,
		"montecarlo":  MethodMonteCarlo,
	} {
		got, err := ParseMethod(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseMethod("bootstrap")
	assert.True(t, errors.Is(err, model.ErrInvalidOptions))
}
