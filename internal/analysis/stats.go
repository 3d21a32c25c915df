package analysis

import (
	"fmt"

	"portfolio-doctor/internal/model"
)

// YearBalance locates a balance within a cycle by calendar year.
type YearBalance struct {
	Year           int     `json:"year"`
	Balance        float64 `json:"balance"`
	BalanceInflAdj float64 `json:"balanceInflAdj"`
}

// YearWithdrawal locates a withdrawal within a cycle by calendar year.
type YearWithdrawal struct {
	Year          int     `json:"year"`
	Amount        float64 `json:"amount"`
	AmountInflAdj float64 `json:"amountInflAdj"`
}

type CycleBalanceStats struct {
	Ending         float64     `json:"ending"`
	EndingInflAdj  float64     `json:"endingInflAdj"`
	AverageInflAdj float64     `json:"averageInflAdj"`
	Max            YearBalance `json:"max"`
	Min            YearBalance `json:"min"`
}

type CycleWithdrawalStats struct {
	Median  float64        `json:"median"`
	Average float64        `json:"average"`
	Max     YearWithdrawal `json:"max"`
	Min     YearWithdrawal `json:"min"`
}

// CycleStats summarizes one cycle.
type CycleStats struct {
	StartYear int     `json:"startYear"`
	Years     int     `json:"years"`
	Fees      float64 `json:"fees"`
	// FailureYear is the first cycle year ending with a balance <= 0, or 0.
	FailureYear int                  `json:"failureYear"`
	Balance     CycleBalanceStats    `json:"balance"`
	Withdrawals CycleWithdrawalStats `json:"withdrawals"`
}

func (s CycleStats) Failed() bool { return s.FailureYear != 0 }

// SummarizeCycle computes per-cycle statistics. Balance extremes are chosen on
// the inflation-adjusted ending balance, withdrawal extremes on the nominal
// amount; ties keep the earliest year.
func SummarizeCycle(cycle model.Cycle) (CycleStats, error) {
	if len(cycle) == 0 {
		return CycleStats{}, fmt.Errorf("%w: cycle has no years", model.ErrEmptyCycleSet)
	}
	cols := Pivot(cycle)
	final := cycle.Final()

	s := CycleStats{
		StartYear: cycle.StartYear(),
		Years:     len(cycle),
		Fees:      Sum(cols.Fees),
		Balance: CycleBalanceStats{
			Ending:         final.BalanceEnd,
			EndingInflAdj:  final.BalanceInfAdjEnd,
			AverageInflAdj: Mean(cols.BalanceInfAdjEnd),
		},
		Withdrawals: CycleWithdrawalStats{
			Median:  Median(cols.Withdrawal),
			Average: Mean(cols.Withdrawal),
		},
	}

	minB, maxB, minW, maxW := 0, 0, 0, 0
	for i, y := range cycle {
		if s.FailureYear == 0 && y.Failed() {
			s.FailureYear = y.CycleYear
		}
		if y.BalanceInfAdjEnd < cycle[minB].BalanceInfAdjEnd {
			minB = i
		}
		if y.BalanceInfAdjEnd > cycle[maxB].BalanceInfAdjEnd {
			maxB = i
		}
		if y.Withdrawal < cycle[minW].Withdrawal {
			minW = i
		}
		if y.Withdrawal > cycle[maxW].Withdrawal {
			maxW = i
		}
	}
	s.Balance.Min = yearBalance(cycle[minB])
	s.Balance.Max = yearBalance(cycle[maxB])
	s.Withdrawals.Min = yearWithdrawal(cycle[minW])
	s.Withdrawals.Max = yearWithdrawal(cycle[maxW])
	return s, nil
}

func yearBalance(y model.YearRecord) YearBalance {
	return YearBalance{Year: y.Year(), Balance: y.BalanceEnd, BalanceInflAdj: y.BalanceInfAdjEnd}
}

func yearWithdrawal(y model.YearRecord) YearWithdrawal {
	return YearWithdrawal{Year: y.Year(), Amount: y.Withdrawal, AmountInflAdj: y.WithdrawalInfAdjust}
}

// CycleBalance is a cycle's ending balance, keyed by the cycle's start year.
type CycleBalance struct {
	Year           int     `json:"year"`
	Balance        float64 `json:"balance"`
	BalanceInflAdj float64 `json:"balanceInflAdj"`
}

// CycleWithdrawal locates a single withdrawal across all cycles.
// YearInCycle is the calendar year of the withdrawal.
type CycleWithdrawal struct {
	CycleStartYear int     `json:"cycleStartYear"`
	YearInCycle    int     `json:"yearInCycle"`
	Amount         float64 `json:"amount"`
	AmountInflAdj  float64 `json:"amountInflAdj"`
}

type ExpenseStats struct {
	AverageAnnual float64 `json:"averageAnnual"`
	MedianTotal   float64 `json:"medianTotal"`
}

type PriceChangeStats struct {
	AverageAnnual float64 `json:"averageAnnual"`
}

type PortfolioBalanceStats struct {
	AverageInflAdj float64      `json:"averageInflAdj"`
	Max            CycleBalance `json:"max"`
	Min            CycleBalance `json:"min"`
}

type PortfolioWithdrawalStats struct {
	Average float64         `json:"average"`
	Max     CycleWithdrawal `json:"max"`
	Min     CycleWithdrawal `json:"min"`
}

// PortfolioStats summarizes a whole set of cycles.
type PortfolioStats struct {
	Cycles      int     `json:"cycles"`
	Failures    int     `json:"failures"`
	SuccessRate float64 `json:"successRate"`

	InvestmentExpenses  ExpenseStats             `json:"investmentExpenses"`
	EquitiesPriceChange PriceChangeStats         `json:"equitiesPriceChange"`
	Balance             PortfolioBalanceStats    `json:"balance"`
	Withdrawals         PortfolioWithdrawalStats `json:"withdrawals"`

	CycleStats []CycleStats `json:"cycleStats"`
}

// SummarizePortfolio aggregates per-cycle statistics and the row-level
// averages over every year of every cycle.
func SummarizePortfolio(cycles []model.Cycle) (PortfolioStats, error) {
	if len(cycles) == 0 {
		return PortfolioStats{}, model.ErrEmptyCycleSet
	}

	ps := PortfolioStats{
		Cycles:     len(cycles),
		CycleStats: make([]CycleStats, len(cycles)),
	}
	feeTotals := make([]float64, len(cycles))
	endings := make([]float64, len(cycles))
	minC, maxC := 0, 0
	for i, c := range cycles {
		cs, err := SummarizeCycle(c)
		if err != nil {
			return PortfolioStats{}, fmt.Errorf("cycle %d: %w", i, err)
		}
		ps.CycleStats[i] = cs
		feeTotals[i] = cs.Fees
		endings[i] = cs.Balance.EndingInflAdj
		if cs.Failed() {
			ps.Failures++
		}
		if endings[i] < endings[minC] {
			minC = i
		}
		if endings[i] > endings[maxC] {
			maxC = i
		}
	}
	ps.SuccessRate = float64(ps.Cycles-ps.Failures) / float64(ps.Cycles)

	agg := PivotAggregate(cycles)
	ps.InvestmentExpenses = ExpenseStats{
		AverageAnnual: Mean(agg.Fees),
		MedianTotal:   Median(feeTotals),
	}
	ps.EquitiesPriceChange = PriceChangeStats{AverageAnnual: Mean(agg.EquitiesGrowth)}
	ps.Balance = PortfolioBalanceStats{
		AverageInflAdj: Mean(endings),
		Min:            cycleBalance(ps.CycleStats[minC]),
		Max:            cycleBalance(ps.CycleStats[maxC]),
	}

	minW, maxW := 0, 0
	for i, w := range agg.Withdrawal {
		if w < agg.Withdrawal[minW] {
			minW = i
		}
		if w > agg.Withdrawal[maxW] {
			maxW = i
		}
	}
	ps.Withdrawals = PortfolioWithdrawalStats{
		Average: Mean(agg.Withdrawal),
		Min:     cycleWithdrawal(agg.Row(minW)),
		Max:     cycleWithdrawal(agg.Row(maxW)),
	}
	return ps, nil
}

func cycleBalance(cs CycleStats) CycleBalance {
	return CycleBalance{Year: cs.StartYear, Balance: cs.Balance.Ending, BalanceInflAdj: cs.Balance.EndingInflAdj}
}

func cycleWithdrawal(y model.YearRecord) CycleWithdrawal {
	return CycleWithdrawal{
		CycleStartYear: y.CycleStartYear,
		YearInCycle:    y.Year(),
		Amount:         y.Withdrawal,
		AmountInflAdj:  y.WithdrawalInfAdjust,
	}
}
