package analysis_test

import (
	"errors"
	"testing"

	"portfolio-doctor/internal/analysis"
	"portfolio-doctor/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}
	assert.Equal(t, 1.0, analysis.Quantile(sorted, 0))
	assert.Equal(t, 4.0, analysis.Quantile(sorted, 1))
	assert.InDelta(t, 2.5, analysis.Quantile(sorted, 0.5), 1e-12)
	assert.InDelta(t, 1.75, analysis.Quantile(sorted, 0.25), 1e-12)
	assert.Equal(t, 0.0, analysis.Quantile(nil, 0.5))

	assert.Equal(t, 2.0, analysis.Median([]float64{3, 1, 2}))
}

func TestComputeQuantiles(t *testing.T) {
	bands, err := analysis.ComputeQuantiles(starterCycles(t), []float64{0.25, 0.5, 0.75})
	require.NoError(t, err)
	require.Len(t, bands, 3)

	want := [][]float64{
		{1002104.4473, 1021920.9142, 1150677.4876},
		{1074419.3335, 1041044.2539, 1174839.3694},
		{1125642.8883, 1146468.3004, 1183122.0206},
	}
	for li, band := range bands {
		require.Len(t, band, 3)
		for idx, y := range band {
			assert.Equal(t, idx, y.CycleYearIndex)
			assert.InDelta(t, want[li][idx], y.BalanceInfAdj, moneyDelta, "level %d year %d", li, idx)
			assert.InDelta(t, 40000, y.WithdrawalInfAdj, 1e-9)
		}
	}
}

func TestQuantilesAreMonotonic(t *testing.T) {
	levels := []float64{0, 0.1, 0.25, 0.5, 0.75, 0.9, 1}
	bands, err := analysis.ComputeQuantiles(starterCycles(t), levels)
	require.NoError(t, err)

	for idx := range bands[0] {
		for li := 1; li < len(bands); li++ {
			assert.LessOrEqual(t, bands[li-1][idx].BalanceInfAdj, bands[li][idx].BalanceInfAdj)
		}
	}
}

func TestComputeQuantileStats(t *testing.T) {
	bands, err := analysis.ComputeQuantiles(starterCycles(t), []float64{0.25, 0.5, 0.75})
	require.NoError(t, err)

	stats := analysis.ComputeQuantileStats(bands)
	require.Len(t, stats, 3)

	want := []struct{ ending, average float64 }{
		{1150677.4876, 1058234.283},
		{1174839.3694, 1096767.6523},
		{1183122.0206, 1151744.4031},
	}
	for i, s := range stats {
		assert.InDelta(t, want[i].ending, s.EndingBalanceInfAdj, moneyDelta)
		assert.InDelta(t, want[i].average, s.AverageBalanceInfAdj, moneyDelta)
		assert.InDelta(t, 40000, s.AverageWithdrawalInfAdj, 1e-9)
	}
	assert.Equal(t, 0.5, stats[1].Quantile)
}

func TestComputeQuantilesErrors(t *testing.T) {
	_, err := analysis.ComputeQuantiles(nil, []float64{0.5})
	assert.True(t, errors.Is(err, model.ErrEmptyCycleSet))

	_, err = analysis.ComputeQuantiles(starterCycles(t), []float64{1.5})
	assert.True(t, errors.Is(err, model.ErrInvalidOptions))
}

func TestQuantilesUseShortestCycle(t *testing.T) {
	cycles := starterCycles(t)
	cycles[1] = cycles[1][:2]
	bands, err := analysis.ComputeQuantiles(cycles, []float64{0.5})
	require.NoError(t, err)
	assert.Len(t, bands[0], 2)
}
