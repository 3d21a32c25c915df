package analysis_test

import (
	"errors"
	"math"
	"testing"

	"portfolio-doctor/internal/analysis"
	"portfolio-doctor/internal/model"
	"portfolio-doctor/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeMarketStatistics(t *testing.T) {
	stats, err := analysis.ComputeMarketStatistics(testutil.Shiller2013to2018())
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Count)
	assert.InDelta(t, 0.1610473196601749, stats.MeanAnnualMarketChange, 1e-12)
	assert.InDelta(t, 0.11923918043312348, stats.StdDevAnnualMarketChange, 1e-12)

	_, err = analysis.ComputeMarketStatistics(testutil.Shiller2013to2018()[:2])
	assert.True(t, errors.Is(err, model.ErrInsufficientData))
}

func TestNormalQuantile(t *testing.T) {
	assert.InDelta(t, 0, analysis.NormalQuantile(0.5), 1e-12)
	assert.InDelta(t, 1.9599639845400536, analysis.NormalQuantile(0.975), 1e-9)
	assert.InDelta(t, -0.5339303238586744, analysis.NormalQuantile(0.296694870605894), 1e-9)
	assert.False(t, math.IsInf(analysis.NormalQuantile(0), 0))
	assert.False(t, math.IsInf(analysis.NormalQuantile(1), 0))
}

func TestDraw(t *testing.T) {
	s := analysis.MarketStatistics{MeanAnnualMarketChange: 0.06, StdDevAnnualMarketChange: 0.18}
	assert.InDelta(t, 0.06, s.Draw(0.5), 1e-12)
	assert.InDelta(t, 0.06+0.18*1.9599639845400536, s.Draw(0.975), 1e-9)
}

func TestPriceFactor(t *testing.T) {
	s := analysis.MarketStatistics{MeanAnnualMarketChange: 0.0602046969835648, StdDevAnnualMarketChange: 0.176139177843765}
	sd := s.StdDevAnnualMarketChange
	assert.InDelta(t, math.Exp(s.MeanAnnualMarketChange-sd*sd/2), s.PriceFactor(0.5), 1e-12)
	assert.InDelta(t, math.Exp(s.Draw(0.296694870605894)-sd*sd/2), s.PriceFactor(0.296694870605894), 1e-12)

	flat := analysis.MarketStatistics{MeanAnnualMarketChange: 0.1}
	assert.InDelta(t, math.Exp(0.1), flat.PriceFactor(0.01), 1e-12)
}
