package backtest

import (
	"errors"
	"testing"

	"portfolio-doctor/internal/model"
	"portfolio-doctor/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const moneyDelta = 5e-4

func TestAdvanceFirstYear(t *testing.T) {
	series := testutil.Shiller2013to2018()
	opts := testutil.StarterOptions()

	rec, err := Advance(nil, series.Observation(0, 0), 1, opts)
	require.NoError(t, err)

	assert.Equal(t, 1, rec.CycleYear)
	assert.Equal(t, 2013, rec.CycleStartYear)
	assert.Equal(t, 2013, rec.Year())
	assert.Equal(t, 1.0, rec.CumulativeInflation)
	assert.Equal(t, 1_000_000.0, rec.BalanceStart)
	assert.Equal(t, 40000.0, rec.Withdrawal)
	assert.Equal(t, 960000.0, rec.StartSubtotal)
	assert.InDelta(t, 864000, rec.Equities, 1e-6)
	assert.InDelta(t, 96000, rec.Bonds, 1e-6)
	assert.InDelta(t, 1176866.4432, rec.BalanceEnd, moneyDelta)
	assert.InDelta(t, rec.EndSubtotal*0.0025, rec.Fees, 1e-9)
	assert.InDelta(t, rec.Equities+rec.EquitiesGrowth+rec.DividendsGrowth+rec.Bonds+rec.BondsGrowth, rec.EndSubtotal, 1e-6)
}

func TestAdvanceErrors(t *testing.T) {
	series := testutil.Shiller2013to2018()
	obs := series.Observation(0, 0)

	t.Run("allocation above one", func(t *testing.T) {
		opts := testutil.StarterOptions()
		opts.EquitiesRatio = 1.2
		_, err := Advance(nil, obs, 1, opts)
		assert.True(t, errors.Is(err, model.ErrInvalidAllocation))
	})

	t.Run("negative allocation", func(t *testing.T) {
		opts := testutil.StarterOptions()
		opts.EquitiesRatio = -0.1
		_, err := Advance(nil, obs, 1, opts)
		assert.True(t, errors.Is(err, model.ErrInvalidAllocation))
	})

	t.Run("missing inflation", func(t *testing.T) {
		bad := obs
		bad.CumulativeInflation = 0
		_, err := Advance(nil, bad, 1, testutil.StarterOptions())
		assert.True(t, errors.Is(err, model.ErrInsufficientData))
	})

	t.Run("later year without prior", func(t *testing.T) {
		_, err := Advance(nil, obs, 2, testutil.StarterOptions())
		assert.True(t, errors.Is(err, model.ErrInsufficientData))
	})
}

func TestAllocationBoundsAreInclusive(t *testing.T) {
	obs := testutil.Shiller2013to2018().Observation(0, 0)
	for _, ratio := range []float64{0, 1} {
		opts := testutil.StarterOptions()
		opts.EquitiesRatio = ratio
		rec, err := Advance(nil, obs, 1, opts)
		require.NoError(t, err)
		assert.InDelta(t, rec.StartSubtotal*ratio, rec.Equities, 1e-9)
	}
}

func TestRunChainsBalances(t *testing.T) {
	series := testutil.Shiller2013to2018()
	e, err := NewEngine(testutil.StarterOptions())
	require.NoError(t, err)

	obs := []model.Observation{series.Observation(1, 1), series.Observation(1, 2), series.Observation(1, 3)}
	cycle, err := e.Run(obs)
	require.NoError(t, err)
	require.Len(t, cycle, 3)

	assert.Equal(t, 1_000_000.0, cycle[0].BalanceStart)
	for i := 1; i < len(cycle); i++ {
		assert.Equal(t, cycle[i-1].BalanceEnd, cycle[i].BalanceStart)
		assert.Equal(t, 2014, cycle[i].CycleStartYear)
		assert.Equal(t, i+1, cycle[i].CycleYear)
	}
	assert.InDelta(t, 1126515.6058, cycle.Final().BalanceInfAdjEnd, 1e-3)
}

func TestDeferredWithdrawalsAndDeposits(t *testing.T) {
	series := testutil.Shiller2013to2018()
	opts := testutil.StarterOptions()
	opts.Withdrawal = model.InflationAdjustedWithdrawal{StaticAmount: 40000, StartYearIdx: 2}
	opts.Deposits = []model.DepositSpec{
		{StartYearIdx: 1, EndYearIdx: 2, Amount: 10000},
		{StartYearIdx: 3, EndYearIdx: 3, Amount: 12000},
	}

	en, err := NewEnumerator(series, opts)
	require.NoError(t, err)
	last, err := en.Cycle(en.Len() - 1)
	require.NoError(t, err)

	assert.Equal(t, 0.0, last[0].Withdrawal)
	assert.Equal(t, 10000.0, last[0].Deposit)
	assert.Equal(t, 40000.0, last[1].WithdrawalInfAdjust)
	assert.InDelta(t, 12000, last[2].DepositInfAdjust, 1e-9)
	assert.InDelta(t, 12000*last[2].CumulativeInflation, last[2].Deposit, 1e-9)
	assert.InDelta(t, 1287739.0607, last.Final().BalanceInfAdjEnd, moneyDelta)
}

func TestWithdrawalPolicies(t *testing.T) {
	series := testutil.Shiller2013to2018()

	cases := []struct {
		name        string
		policy      model.Withdrawal
		ending      float64
		withdrawals []float64
	}{
		{
			name:        "nominal",
			policy:      model.NominalWithdrawal{StaticAmount: 40000},
			ending:      1622961.7749,
			withdrawals: []float64{40000, 40000, 40000, 40000, 40000},
		},
		{
			name:        "percent",
			policy:      model.PercentWithdrawal{Percentage: 0.04},
			ending:      1570236.1475,
			withdrawals: []float64{40000, 47074.6577, 50577.9224, 47026.8243, 53578.3824},
		},
		{
			name:        "clamped within bounds",
			policy:      model.ClampedPercentWithdrawal{Percentage: 0.04, Floor: 30000, Ceiling: 60000},
			ending:      1570236.1475,
			withdrawals: []float64{40000, 47074.6577, 50577.9224, 47026.8243, 53578.3824},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts := testutil.StarterOptions()
			opts.SimulationYearsLength = 5
			opts.Withdrawal = tc.policy

			en, err := NewEnumerator(series, opts)
			require.NoError(t, err)
			require.Equal(t, 1, en.Len())

			c, err := en.Cycle(0)
			require.NoError(t, err)
			for i, w := range tc.withdrawals {
				assert.InDelta(t, w, c[i].Withdrawal, moneyDelta, "year %d", i+1)
			}
			assert.InDelta(t, tc.ending, c.Final().BalanceEnd, moneyDelta)
		})
	}
}

func TestInflationAdjustedRealWithdrawalIsConstant(t *testing.T) {
	opts := testutil.StarterOptions()
	opts.Withdrawal = model.InflationAdjustedWithdrawal{StaticAmount: 40000, StartYearIdx: 2}

	en, err := NewEnumerator(testutil.Shiller2013to2018(), opts)
	require.NoError(t, err)
	for c, err := range en.Cycles() {
		require.NoError(t, err)
		for _, y := range c {
			if y.CycleYear >= 2 {
				assert.Equal(t, 40000.0, y.WithdrawalInfAdjust)
			} else {
				assert.Equal(t, 0.0, y.WithdrawalInfAdjust)
			}
		}
	}
}

func TestNegativeBalancesContinue(t *testing.T) {
	opts := model.SimulationOptions{
		StartBalance:          30000,
		EquitiesRatio:         0.5,
		SimulationYearsLength: 3,
		Withdrawal:            model.ClampedPercentWithdrawal{Percentage: 0.07, Floor: 20000, Ceiling: 50000},
	}
	en, err := NewEnumerator(testutil.Flat(4), opts)
	require.NoError(t, err)

	c, err := en.Cycle(0)
	require.NoError(t, err)
	require.Len(t, c, 3)

	assert.InDelta(t, 10000, c[0].BalanceEnd, 1e-9)
	assert.InDelta(t, -10000, c[1].BalanceEnd, 1e-9)
	assert.InDelta(t, -30000, c[2].BalanceEnd, 1e-9)
	for _, y := range c {
		assert.GreaterOrEqual(t, y.Withdrawal, 20000.0)
		assert.LessOrEqual(t, y.Withdrawal, 50000.0)
	}
}
