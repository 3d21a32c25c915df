package analysis

import (
	"fmt"
	"math"
	"sort"

	"portfolio-doctor/internal/model"
)

// QuantileYear is one point of a quantile band.
type QuantileYear struct {
	Quantile         float64 `json:"quantile"`
	CycleYearIndex   int     `json:"cycleYearIndex"`
	BalanceInfAdj    float64 `json:"balanceInfAdj"`
	WithdrawalInfAdj float64 `json:"withdrawalInfAdj"`
}

// QuantileBand is the trajectory of one quantile level across cycle years.
type QuantileBand []QuantileYear

// QuantileStats summarizes one band.
type QuantileStats struct {
	Quantile                float64 `json:"quantile"`
	EndingBalanceInfAdj     float64 `json:"endingBalanceInfAdj"`
	AverageBalanceInfAdj    float64 `json:"averageBalanceInfAdj"`
	AverageWithdrawalInfAdj float64 `json:"averageWithdrawalInfAdj"`
}

// DefaultQuantiles are the levels shown when none are requested.
var DefaultQuantiles = []float64{0.1, 0.25, 0.5, 0.75, 0.9}

// ComputeQuantiles returns one band per level. For every cycle-year index the
// inflation-adjusted ending balances and withdrawals of all cycles are sorted
// and interpolated at the level. Bands span the shortest cycle.
func ComputeQuantiles(cycles []model.Cycle, levels []float64) ([]QuantileBand, error) {
	if len(cycles) == 0 {
		return nil, model.ErrEmptyCycleSet
	}
	for _, q := range levels {
		if math.IsNaN(q) || q < 0 || q > 1 {
			return nil, fmt.Errorf("%w: quantile %v outside [0, 1]", model.ErrInvalidOptions, q)
		}
	}

	years := len(cycles[0])
	for _, c := range cycles[1:] {
		if len(c) < years {
			years = len(c)
		}
	}

	bands := make([]QuantileBand, len(levels))
	for i := range bands {
		bands[i] = make(QuantileBand, years)
	}

	balances := make([]float64, len(cycles))
	withdrawals := make([]float64, len(cycles))
	for idx := 0; idx < years; idx++ {
		for ci, c := range cycles {
			balances[ci] = c[idx].BalanceInfAdjEnd
			withdrawals[ci] = c[idx].WithdrawalInfAdjust
		}
		sort.Float64s(balances)
		sort.Float64s(withdrawals)
		for li, q := range levels {
			bands[li][idx] = QuantileYear{
				Quantile:         q,
				CycleYearIndex:   idx,
				BalanceInfAdj:    Quantile(balances, q),
				WithdrawalInfAdj: Quantile(withdrawals, q),
			}
		}
	}
	return bands, nil
}

// ComputeQuantileStats reduces each band to its last balance and its averages.
func ComputeQuantileStats(bands []QuantileBand) []QuantileStats {
	out := make([]QuantileStats, 0, len(bands))
	for _, b := range bands {
		if len(b) == 0 {
			continue
		}
		bal, wd := 0.0, 0.0
		for _, y := range b {
			bal += y.BalanceInfAdj
			wd += y.WithdrawalInfAdj
		}
		n := float64(len(b))
		out = append(out, QuantileStats{
			Quantile:                b[0].Quantile,
			EndingBalanceInfAdj:     b[len(b)-1].BalanceInfAdj,
			AverageBalanceInfAdj:    bal / n,
			AverageWithdrawalInfAdj: wd / n,
		})
	}
	return out
}

// Quantile interpolates linearly between the order statistics of an
// ascending slice.
func Quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Median does not modify values.
func Median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return Quantile(sorted, 0.5)
}

func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func Sum(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum
}
