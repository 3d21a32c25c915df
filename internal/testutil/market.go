// Package testutil holds fixtures shared by package tests.
package testutil

import "portfolio-doctor/internal/model"

// Shiller2013to2018 is the 2013-2018 slice of the Shiller dataset (January
// prices, annual dividends, CPI, GS10) used by the reference spreadsheet.
func Shiller2013to2018() model.MarketSeries {
	return model.MarketSeries{
		{Year: 2013, EquitiesPrice: 1480.40, EquitiesDividend: 31.53666667, InflationIndex: 230.280, FixedIncomeInterest: 1.91},
		{Year: 2014, EquitiesPrice: 1822.36, EquitiesDividend: 35.40333333, InflationIndex: 233.916, FixedIncomeInterest: 2.86},
		{Year: 2015, EquitiesPrice: 2028.18, EquitiesDividend: 39.89666667, InflationIndex: 233.707, FixedIncomeInterest: 1.88},
		{Year: 2016, EquitiesPrice: 1918.6, EquitiesDividend: 43.55333333, InflationIndex: 236.916, FixedIncomeInterest: 2.09},
		{Year: 2017, EquitiesPrice: 2275.12, EquitiesDividend: 45.92666667, InflationIndex: 242.839, FixedIncomeInterest: 2.43},
		{Year: 2018, EquitiesPrice: 2789.8, EquitiesDividend: 49.28666667, InflationIndex: 247.867, FixedIncomeInterest: 2.58},
	}
}

// StarterOptions mirrors the reference spreadsheet's starter portfolio with a
// three year cycle.
func StarterOptions() model.SimulationOptions {
	return model.SimulationOptions{
		StartBalance:           1_000_000,
		EquitiesRatio:          0.9,
		InvestmentExpenseRatio: 0.0025,
		SimulationYearsLength:  3,
		Withdrawal:             model.InflationAdjustedWithdrawal{StaticAmount: 40000},
	}
}

// Flat returns a series of n years with constant prices, no dividends, no
// interest and no inflation, starting at 1900.
func Flat(n int) model.MarketSeries {
	out := make(model.MarketSeries, n)
	for i := range out {
		out[i] = model.MarketYear{Year: 1900 + i, EquitiesPrice: 100, InflationIndex: 100}
	}
	return out
}
