package backtest

import (
	"context"
	"errors"
	"math"
	"testing"

	"portfolio-doctor/internal/analysis"
	"portfolio-doctor/internal/model"
	"portfolio-doctor/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedSource replays a fixed list of uniforms and fails the test when it
// runs dry.
type scriptedSource struct {
	t      *testing.T
	values []float64
	next   int
}

func (s *scriptedSource) Float64() float64 {
	if s.next >= len(s.values) {
		s.t.Fatalf("random source exhausted after %d draws", s.next)
	}
	v := s.values[s.next]
	s.next++
	return v
}

var referenceUniforms = []float64{
	0.296694870605894, 0.279680326751622, 0.853271701727797, 0.69306737230965, 0.161196456935518,
	0.985188407160825, 0.581885716265265, 0.0833282215968913, 0.511172862727826, 0.457656632902557,
	0.612517212448199, 0.729196831437739, 0.210962776440891, 0.99075579998327, 0.246091026024186,
}

var referenceStats = analysis.MarketStatistics{
	MeanAnnualMarketChange:   0.0602046969835648,
	StdDevAnnualMarketChange: 0.176139177843765,
}

// Per-year inflation-adjusted ending balances of the reference spreadsheet's
// 3-cycle Monte Carlo sheet, [run][cycle][year].
var referenceRunBalances = [3][3][3]float64{
	{
		{936286.074, 857224.388, 1029178.2179},
		{933316.5123, 1125001.2665, 1231556.8765},
		{1207850.8237, 1325644.8941, 1143469.8453},
	},
	{
		{1437921.93665059, 1499639.62612509, 1244732.89767998},
		{1046586.64007377, 858393.599587996, 858909.658787397},
		{817905.095953996, 816388.161623398, 788985.075898638},
	},
	{
		{1063723.99307905, 1175858.18495723, 1063546.71677806},
		{1120766.19503152, 1011963.63868098, 1481580.24701878},
		{898052.69285439, 1307845.7351887, 1173055.45790684},
	},
}

func TestMonteCarloMatchesReferenceSheet(t *testing.T) {
	series := testutil.Shiller2013to2018()
	src := &scriptedSource{t: t, values: referenceUniforms}

	cycles, err := GenerateMonteCarloRuns(context.Background(), series, testutil.StarterOptions(), 3, referenceStats, src)
	require.NoError(t, err)
	require.Len(t, cycles, 9)
	assert.Equal(t, len(referenceUniforms), src.next)

	for r, run := range referenceRunBalances {
		for c, want := range run {
			got := cycles[r*3+c]
			require.Len(t, got, 3)
			assert.Equal(t, series[c].Year, got.StartYear(), "run %d cycle %d", r, c)
			for j := range want {
				assert.InDelta(t, want[j], got[j].BalanceInfAdjEnd, 1e-2, "run %d cycle %d year %d", r, c, j+1)
			}
		}
	}
}

func TestMonteCarloDrawOrder(t *testing.T) {
	series := testutil.Shiller2013to2018()
	src := &scriptedSource{t: t, values: referenceUniforms}

	cycles, err := GenerateMonteCarloRuns(context.Background(), series, testutil.StarterOptions(), 3, referenceStats, src)
	require.NoError(t, err)

	for r := 0; r < 3; r++ {
		price := series[0].EquitiesPrice
		for k := 0; k < 5; k++ {
			factor := referenceStats.PriceFactor(referenceUniforms[r*5+k])
			for c := 0; c <= k && c < 3; c++ {
				j := k - c
				if j >= 3 {
					continue
				}
				y := cycles[r*3+c][j]
				assert.InDelta(t, factor-1, y.EquitiesGrowth/y.Equities, 1e-12, "run %d transition %d", r, k)
				assert.InDelta(t, series[k].EquitiesDividend/price, y.DividendsGrowth/y.Equities, 1e-12, "run %d transition %d", r, k)
			}
			price *= factor
		}
	}
}

func TestMonteCarloUsesHistoricalRatesAndInflation(t *testing.T) {
	series := testutil.Shiller2013to2018()
	opts := testutil.StarterOptions()
	src := &scriptedSource{t: t, values: referenceUniforms[:10]}

	cycles, err := GenerateMonteCarloRuns(context.Background(), series, opts, 2, referenceStats, src)
	require.NoError(t, err)
	require.Len(t, cycles, 6)

	en, err := NewEnumerator(series, opts)
	require.NoError(t, err)
	for i, c := range cycles {
		hist, err := en.Cycle(i % 3)
		require.NoError(t, err)
		for j := range c {
			assert.Equal(t, hist[j].CumulativeInflation, c[j].CumulativeInflation)
			assert.InDelta(t, hist[j].BondsGrowth/hist[j].Bonds, c[j].BondsGrowth/c[j].Bonds, 1e-12)
		}
		assert.Equal(t, 1_000_000.0, c[0].BalanceStart)
		for j := 1; j < len(c); j++ {
			assert.Equal(t, c[j-1].BalanceEnd, c[j].BalanceStart)
		}
	}
}

func TestMonteCarloLeavesInputSeriesAlone(t *testing.T) {
	series := testutil.Shiller2013to2018()
	_, err := GenerateMonteCarloRuns(context.Background(), series, testutil.StarterOptions(), 4, referenceStats, NewSeededSource(9))
	require.NoError(t, err)
	assert.Equal(t, testutil.Shiller2013to2018(), series)
}

func TestMonteCarloDeterministic(t *testing.T) {
	series := testutil.Shiller2013to2018()
	opts := testutil.StarterOptions()

	a, err := GenerateMonteCarloRuns(context.Background(), series, opts, 50, referenceStats, NewSeededSource(7))
	require.NoError(t, err)
	b, err := GenerateMonteCarloRuns(context.Background(), series, opts, 50, referenceStats, NewSeededSource(7))
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := GenerateMonteCarloRuns(context.Background(), series, opts, 50, referenceStats, NewSeededSource(8))
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestMonteCarloZeroSpreadMatchesMean(t *testing.T) {
	series := testutil.Flat(4)
	opts := model.SimulationOptions{
		StartBalance:          1000,
		EquitiesRatio:         1,
		SimulationYearsLength: 3,
		Withdrawal:            model.NominalWithdrawal{},
	}
	stats := analysis.MarketStatistics{MeanAnnualMarketChange: 0.1}

	cycles, err := GenerateMonteCarloRuns(context.Background(), series, opts, 2, stats, NewSeededSource(1))
	require.NoError(t, err)
	require.Len(t, cycles, 2)
	for _, c := range cycles {
		assert.InDelta(t, 1000*math.Exp(0.3), c.Final().BalanceEnd, 1e-9)
	}
}

func TestMonteCarloErrors(t *testing.T) {
	series := testutil.Shiller2013to2018()
	ctx := context.Background()

	opts := testutil.StarterOptions()
	opts.SimulationYearsLength = 6
	_, err := GenerateMonteCarloRuns(ctx, series, opts, 1, referenceStats, NewSeededSource(1))
	assert.True(t, errors.Is(err, model.ErrInsufficientData))

	_, err = GenerateMonteCarloRuns(ctx, series, testutil.StarterOptions(), 0, referenceStats, NewSeededSource(1))
	assert.True(t, errors.Is(err, model.ErrInvalidOptions))

	bad := testutil.StarterOptions()
	bad.EquitiesRatio = 2
	_, err = GenerateMonteCarloRuns(ctx, series, bad, 1, referenceStats, NewSeededSource(1))
	assert.True(t, errors.Is(err, model.ErrInvalidAllocation))
}

func TestMonteCarloExtremeUniformsStayFinite(t *testing.T) {
	src := &scriptedSource{t: t, values: []float64{0, 0.9999999999999999, 0.5, 0.5, 0.5}}
	cycles, err := GenerateMonteCarloRuns(context.Background(), testutil.Shiller2013to2018(),
		testutil.StarterOptions(), 1, referenceStats, src)
	require.NoError(t, err)
	for _, c := range cycles {
		for _, y := range c {
			assert.False(t, math.IsInf(y.BalanceEnd, 0))
			assert.False(t, math.IsNaN(y.BalanceEnd))
		}
	}
}

func TestRunMonteCarlo(t *testing.T) {
	res, err := RunMonteCarlo(context.Background(), testutil.Shiller2013to2018(), testutil.StarterOptions(), 10, NewSeededSource(3))
	require.NoError(t, err)
	assert.Equal(t, MethodMonteCarlo, res.Method)
	assert.Len(t, res.Cycles, 30)
	require.NotNil(t, res.MarketStats)
	assert.Equal(t, 5, res.MarketStats.Count)
}
