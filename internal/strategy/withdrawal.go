package strategy

import (
	"fmt"
	"math"

	"portfolio-doctor/internal/model"
)

// ForWithdrawal returns the strategy implementing a withdrawal policy.
func ForWithdrawal(w model.Withdrawal) (Strategy, error) {
	if w == nil {
		return nil, fmt.Errorf("%w: withdrawal policy is nil", model.ErrInvalidOptions)
	}
	switch p := w.(type) {
	case model.NominalWithdrawal:
		return &NominalStrategy{Params: p}, nil
	case model.InflationAdjustedWithdrawal:
		return &InflationAdjustedStrategy{Params: p}, nil
	case model.PercentWithdrawal:
		return &PercentStrategy{Params: p}, nil
	case model.ClampedPercentWithdrawal:
		return &ClampedPercentStrategy{Params: p}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported withdrawal policy %T", model.ErrInvalidOptions, w)
	}
}

// NominalStrategy withdraws a fixed dollar amount, ignoring inflation.
type NominalStrategy struct {
	Params model.NominalWithdrawal
}

func (s *NominalStrategy) Name() string { return model.Nominal.String() }

func (s *NominalStrategy) Decide(ctx Context) CashFlow {
	if ctx.CycleYear < s.Params.StartYear() {
		return CashFlow{}
	}
	return fromNominal(s.Params.StaticAmount, ctx)
}

// InflationAdjustedStrategy keeps purchasing power constant.
type InflationAdjustedStrategy struct {
	Params model.InflationAdjustedWithdrawal
}

func (s *InflationAdjustedStrategy) Name() string { return model.InflationAdjusted.String() }

func (s *InflationAdjustedStrategy) Decide(ctx Context) CashFlow {
	if ctx.CycleYear < s.Params.StartYear() {
		return CashFlow{}
	}
	// Real is the configured amount itself, not nominal/cum, so it stays exact.
	return CashFlow{
		Nominal: s.Params.StaticAmount * ctx.CumulativeInflation,
		Real:    s.Params.StaticAmount,
	}
}

// PercentStrategy withdraws a share of the balance at the start of the year.
type PercentStrategy struct {
	Params model.PercentWithdrawal
}

func (s *PercentStrategy) Name() string { return model.PercentPortfolio.String() }

func (s *PercentStrategy) Decide(ctx Context) CashFlow {
	if ctx.CycleYear < s.Params.StartYear() {
		return CashFlow{}
	}
	return fromNominal(s.Params.Percentage*ctx.BalanceStart, ctx)
}

// ClampedPercentStrategy is PercentStrategy bounded to [Floor, Ceiling].
// The floor applies even when the balance is negative.
type ClampedPercentStrategy struct {
	Params model.ClampedPercentWithdrawal
}

func (s *ClampedPercentStrategy) Name() string { return model.PercentPortfolioClamped.String() }

func (s *ClampedPercentStrategy) Decide(ctx Context) CashFlow {
	if ctx.CycleYear < s.Params.StartYear() {
		return CashFlow{}
	}
	w := s.Params.Percentage * ctx.BalanceStart
	w = math.Max(s.Params.Floor, math.Min(s.Params.Ceiling, w))
	return fromNominal(w, ctx)
}
