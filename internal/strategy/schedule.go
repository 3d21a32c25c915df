package strategy

import "portfolio-doctor/internal/model"

// DepositSchedule adds contributions during configured cycle-year windows.
// Amounts are in start-of-cycle dollars and are grown by cumulative inflation;
// overlapping windows add up.
type DepositSchedule struct {
	Deposits []model.DepositSpec
}

func (s *DepositSchedule) Name() string { return "deposits" }

func (s *DepositSchedule) Decide(ctx Context) CashFlow {
	total := 0.0
	for _, d := range s.Deposits {
		if inWindow(ctx.CycleYear, d.StartYearIdx, d.EndYearIdx) {
			total += d.Amount
		}
	}
	if total == 0 {
		return CashFlow{}
	}
	return CashFlow{
		Nominal: total * ctx.CumulativeInflation,
		Real:    total,
	}
}

// inWindow checks whether year is in [start, end].
// A window with end < start is empty.
func inWindow(year, start, end int) bool {
	return year >= start && year <= end
}
