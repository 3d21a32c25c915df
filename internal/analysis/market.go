package analysis

import (
	"fmt"
	"math"

	"portfolio-doctor/internal/model"
)

// MarketStatistics describes the distribution of annual total market change
// (price change plus dividends) over a historical series.
type MarketStatistics struct {
	MeanAnnualMarketChange   float64 `json:"meanAnnualMarketChange"`
	StdDevAnnualMarketChange float64 `json:"stdDevAnnualMarketChange"`
	Count                    int     `json:"count"`
}

// ComputeMarketStatistics uses every transition k -> k+1 of the series and the
// sample (n-1) standard deviation.
func ComputeMarketStatistics(series model.MarketSeries) (MarketStatistics, error) {
	if len(series) < 3 {
		return MarketStatistics{}, fmt.Errorf("%w: market statistics need at least 3 years, have %d",
			model.ErrInsufficientData, len(series))
	}
	changes := make([]float64, 0, len(series)-1)
	for k := 0; k+1 < len(series); k++ {
		cur, next := series[k], series[k+1]
		if cur.EquitiesPrice <= 0 {
			return MarketStatistics{}, fmt.Errorf("%w: year %d has non-positive price", model.ErrInsufficientData, cur.Year)
		}
		changes = append(changes, (next.EquitiesPrice+cur.EquitiesDividend)/cur.EquitiesPrice-1)
	}
	mean := Mean(changes)
	ss := 0.0
	for _, c := range changes {
		ss += (c - mean) * (c - mean)
	}
	return MarketStatistics{
		MeanAnnualMarketChange:   mean,
		StdDevAnnualMarketChange: math.Sqrt(ss / float64(len(changes)-1)),
		Count:                    len(changes),
	}, nil
}

// uniformEpsilon keeps the inverse CDF finite at the ends of [0, 1).
const uniformEpsilon = 1e-12

// Draw maps a uniform variate u in [0, 1) to an annual market change drawn
// from the normal distribution with these statistics.
func (s MarketStatistics) Draw(u float64) float64 {
	return s.MeanAnnualMarketChange + s.StdDevAnnualMarketChange*NormalQuantile(u)
}

// PriceFactor maps u to a one-year equities price multiplier
// exp(Draw(u) - sd²/2), a lognormal step whose drift is corrected for the
// variance so that synthetic prices compound around the historical mean.
func (s MarketStatistics) PriceFactor(u float64) float64 {
	sd := s.StdDevAnnualMarketChange
	return math.Exp(s.Draw(u) - sd*sd/2)
}

// NormalQuantile is the inverse CDF of the standard normal distribution.
func NormalQuantile(u float64) float64 {
	u = math.Min(math.Max(u, uniformEpsilon), 1-uniformEpsilon)
	return math.Sqrt2 * math.Erfinv(2*u-1)
}
