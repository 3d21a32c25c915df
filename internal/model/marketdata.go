package model

import "fmt"

// MarketYear is one annual observation of the historical market dataset.
//
// FixedIncomeInterest is a percentage (Shiller GS10: 2.58 means 2.58%).
type MarketYear struct {
	Year                int     `json:"year"`
	EquitiesPrice       float64 `json:"equitiesPrice"`
	EquitiesDividend    float64 `json:"equitiesDividend"`
	InflationIndex      float64 `json:"inflationIndex"`
	FixedIncomeInterest float64 `json:"fixedIncomeInterest"`
}

// MarketSeries is a year-ascending, gap-free sequence of market years.
type MarketSeries []MarketYear

// Observation is the normalized market input the year engine consumes for one
// simulated year. Historical cycles derive it from two adjacent MarketYears;
// Monte Carlo cycles substitute a sampled PriceChange.
type Observation struct {
	Year int `json:"year"`

	// Fractional change of the equities price over the year.
	PriceChange float64 `json:"priceChange"`
	// Dividends paid over the year as a fraction of the opening price.
	DividendYield float64 `json:"dividendYield"`
	// Fractional fixed-income return for the year.
	FixedIncomeRate float64 `json:"fixedIncomeRate"`
	// Inflation index at this year divided by the index at cycle start.
	CumulativeInflation float64 `json:"cumulativeInflation"`
}

func (s MarketSeries) Len() int { return len(s) }

func (s MarketSeries) FirstYear() int {
	if len(s) == 0 {
		return 0
	}
	return s[0].Year
}

func (s MarketSeries) LastYear() int {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1].Year
}

// YearIndex returns the position of year within the series.
func (s MarketSeries) YearIndex(year int) (int, error) {
	// Series are gap-free, so try the direct offset before scanning.
	if len(s) > 0 {
		if i := year - s[0].Year; i >= 0 && i < len(s) && s[i].Year == year {
			return i, nil
		}
	}
	for i, y := range s {
		if y.Year == year {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %d", ErrYearNotFound, year)
}

// Slice returns the inclusive calendar-year range [from, to].
func (s MarketSeries) Slice(from, to int) (MarketSeries, error) {
	if from > to {
		return nil, fmt.Errorf("%w: range %d-%d is reversed", ErrInvalidOptions, from, to)
	}
	lo, err := s.YearIndex(from)
	if err != nil {
		return nil, err
	}
	hi, err := s.YearIndex(to)
	if err != nil {
		return nil, err
	}
	return s[lo : hi+1], nil
}

// Observation builds the view of year k for a cycle anchored at index base.
// The caller guarantees base <= k and k+1 < len(s).
func (s MarketSeries) Observation(base, k int) Observation {
	cur, next := s[k], s[k+1]
	return Observation{
		Year:                cur.Year,
		PriceChange:         next.EquitiesPrice/cur.EquitiesPrice - 1,
		DividendYield:       cur.EquitiesDividend / cur.EquitiesPrice,
		FixedIncomeRate:     cur.FixedIncomeInterest / 100,
		CumulativeInflation: cur.InflationIndex / s[base].InflationIndex,
	}
}

// Validate checks the ordering and positivity requirements the engine relies on.
func (s MarketSeries) Validate() error {
	for i, y := range s {
		if y.EquitiesPrice <= 0 {
			return fmt.Errorf("%w: year %d has non-positive equities price", ErrInsufficientData, y.Year)
		}
		if y.InflationIndex <= 0 {
			return fmt.Errorf("%w: year %d has non-positive inflation index", ErrInsufficientData, y.Year)
		}
		if i > 0 && y.Year != s[i-1].Year+1 {
			return fmt.Errorf("%w: year %d does not follow %d", ErrInsufficientData, y.Year, s[i-1].Year)
		}
	}
	return nil
}
