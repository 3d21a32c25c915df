package model

// YearRecord is the full state of one simulated portfolio year. All monetary
// fields are nominal unless the name says otherwise; the InfAdj variants are
// expressed in start-of-cycle dollars.
type YearRecord struct {
	CycleYear           int     `json:"cycleYear"`
	CycleStartYear      int     `json:"cycleStartYear"`
	CumulativeInflation float64 `json:"cumulativeInflation"`

	BalanceStart       float64 `json:"balanceStart"`
	BalanceInfAdjStart float64 `json:"balanceInfAdjStart"`

	Withdrawal          float64 `json:"withdrawal"`
	WithdrawalInfAdjust float64 `json:"withdrawalInfAdjust"`
	Deposit             float64 `json:"deposit"`
	DepositInfAdjust    float64 `json:"depositInfAdjust"`

	StartSubtotal   float64 `json:"startSubtotal"`
	Equities        float64 `json:"equities"`
	EquitiesGrowth  float64 `json:"equitiesGrowth"`
	DividendsGrowth float64 `json:"dividendsGrowth"`
	Bonds           float64 `json:"bonds"`
	BondsGrowth     float64 `json:"bondsGrowth"`
	EndSubtotal     float64 `json:"endSubtotal"`
	Fees            float64 `json:"fees"`

	BalanceEnd       float64 `json:"balanceEnd"`
	BalanceInfAdjEnd float64 `json:"balanceInfAdjEnd"`
}

// Year is the calendar year the record covers.
func (r YearRecord) Year() int { return r.CycleStartYear + r.CycleYear - 1 }

// Failed reports whether the portfolio was exhausted by the end of the year.
func (r YearRecord) Failed() bool { return r.BalanceEnd <= 0 }

// Cycle is one simulated retirement: consecutive YearRecords where each year's
// BalanceStart equals the previous year's BalanceEnd.
type Cycle []YearRecord

func (c Cycle) Len() int { return len(c) }

func (c Cycle) StartYear() int {
	if len(c) == 0 {
		return 0
	}
	return c[0].CycleStartYear
}

// Final returns the last year of the cycle, or the zero record for an empty cycle.
func (c Cycle) Final() YearRecord {
	if len(c) == 0 {
		return YearRecord{}
	}
	return c[len(c)-1]
}
