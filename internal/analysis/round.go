package analysis

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round rounds half away from zero at the given number of decimal places,
// using decimal arithmetic so 1.005 rounds to 1.01.
func Round(x float64, places int32) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	f, _ := decimal.NewFromFloat(x).Round(places).Float64()
	return f
}

// RoundStats returns a copy of ps with every monetary value rounded.
func RoundStats(ps PortfolioStats, places int32) PortfolioStats {
	r := func(x *float64) { *x = Round(*x, places) }

	out := ps
	r(&out.SuccessRate)
	r(&out.InvestmentExpenses.AverageAnnual)
	r(&out.InvestmentExpenses.MedianTotal)
	r(&out.EquitiesPriceChange.AverageAnnual)
	r(&out.Balance.AverageInflAdj)
	for _, b := range []*CycleBalance{&out.Balance.Min, &out.Balance.Max} {
		r(&b.Balance)
		r(&b.BalanceInflAdj)
	}
	r(&out.Withdrawals.Average)
	for _, w := range []*CycleWithdrawal{&out.Withdrawals.Min, &out.Withdrawals.Max} {
		r(&w.Amount)
		r(&w.AmountInflAdj)
	}

	out.CycleStats = make([]CycleStats, len(ps.CycleStats))
	for i, cs := range ps.CycleStats {
		r(&cs.Fees)
		r(&cs.Balance.Ending)
		r(&cs.Balance.EndingInflAdj)
		r(&cs.Balance.AverageInflAdj)
		for _, b := range []*YearBalance{&cs.Balance.Min, &cs.Balance.Max} {
			r(&b.Balance)
			r(&b.BalanceInflAdj)
		}
		r(&cs.Withdrawals.Median)
		r(&cs.Withdrawals.Average)
		for _, w := range []*YearWithdrawal{&cs.Withdrawals.Min, &cs.Withdrawals.Max} {
			r(&w.Amount)
			r(&w.AmountInflAdj)
		}
		out.CycleStats[i] = cs
	}
	return out
}
