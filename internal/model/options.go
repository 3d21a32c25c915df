package model

import "fmt"

// DepositSpec adds Amount (start-of-cycle dollars) to the portfolio in every
// cycle year within [StartYearIdx, EndYearIdx], both 1-based and inclusive.
type DepositSpec struct {
	StartYearIdx int     `json:"startYearIdx" yaml:"start_year"`
	EndYearIdx   int     `json:"endYearIdx" yaml:"end_year"`
	Amount       float64 `json:"amount" yaml:"amount"`
}

// SimulationOptions is the full parameter set of one simulation.
type SimulationOptions struct {
	StartBalance           float64
	EquitiesRatio          float64
	InvestmentExpenseRatio float64
	SimulationYearsLength  int
	Withdrawal             Withdrawal
	Deposits               []DepositSpec
}

// ValidateAllocation checks the only numeric domain the year engine needs.
func (o SimulationOptions) ValidateAllocation() error {
	if o.EquitiesRatio < 0 || o.EquitiesRatio > 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidAllocation, o.EquitiesRatio)
	}
	return nil
}

// Validate checks every option, not just the ones the engine depends on.
func (o SimulationOptions) Validate() error {
	if err := o.ValidateAllocation(); err != nil {
		return err
	}
	if o.StartBalance <= 0 {
		return fmt.Errorf("%w: start balance must be > 0", ErrInvalidOptions)
	}
	if o.InvestmentExpenseRatio < 0 || o.InvestmentExpenseRatio >= 1 {
		return fmt.Errorf("%w: investment expense ratio must be within [0, 1)", ErrInvalidOptions)
	}
	if o.SimulationYearsLength < 1 {
		return fmt.Errorf("%w: simulation length must be >= 1 year", ErrInvalidOptions)
	}
	if o.Withdrawal == nil {
		return fmt.Errorf("%w: withdrawal policy is required", ErrInvalidOptions)
	}
	if err := o.Withdrawal.Validate(); err != nil {
		return err
	}
	for i, d := range o.Deposits {
		if d.StartYearIdx < 1 || d.EndYearIdx < d.StartYearIdx {
			return fmt.Errorf("%w: deposit %d window %d-%d is invalid", ErrInvalidOptions, i, d.StartYearIdx, d.EndYearIdx)
		}
	}
	return nil
}
