package backtest

import (
	"fmt"
	"math"

	"portfolio-doctor/internal/model"
	"portfolio-doctor/internal/strategy"
)

// Engine advances a portfolio one year at a time for a fixed set of options.
// It holds no per-cycle state and is safe for concurrent use.
type Engine struct {
	opts       model.SimulationOptions
	withdrawal strategy.Strategy
	deposits   strategy.Strategy
}

// NewEngine validates the allocation and resolves the withdrawal strategy.
func NewEngine(opts model.SimulationOptions) (*Engine, error) {
	if err := opts.ValidateAllocation(); err != nil {
		return nil, err
	}
	w, err := strategy.ForWithdrawal(opts.Withdrawal)
	if err != nil {
		return nil, err
	}
	return &Engine{
		opts:       opts,
		withdrawal: w,
		deposits:   &strategy.DepositSchedule{Deposits: opts.Deposits},
	}, nil
}

// Options returns the options the engine was built with.
func (e *Engine) Options() model.SimulationOptions { return e.opts }

// Advance computes a single year without building an Engine first.
func Advance(prior *model.YearRecord, obs model.Observation, cycleYear int, opts model.SimulationOptions) (model.YearRecord, error) {
	e, err := NewEngine(opts)
	if err != nil {
		return model.YearRecord{}, err
	}
	return e.Advance(prior, obs, cycleYear)
}

// Advance computes year cycleYear (1-based) from the previous year's record,
// or from the starting balance when prior is nil.
func (e *Engine) Advance(prior *model.YearRecord, obs model.Observation, cycleYear int) (model.YearRecord, error) {
	if cycleYear < 1 {
		return model.YearRecord{}, fmt.Errorf("%w: cycle year %d", model.ErrInvalidOptions, cycleYear)
	}
	if prior == nil && cycleYear > 1 {
		return model.YearRecord{}, fmt.Errorf("%w: year %d has no prior year", model.ErrInsufficientData, cycleYear)
	}
	if err := checkObservation(obs); err != nil {
		return model.YearRecord{}, err
	}

	cum := obs.CumulativeInflation
	balanceStart := e.opts.StartBalance
	cycleStartYear := obs.Year
	if prior != nil {
		balanceStart = prior.BalanceEnd
		cycleStartYear = prior.CycleStartYear
	}

	ctx := strategy.Context{
		CycleYear:           cycleYear,
		BalanceStart:        balanceStart,
		CumulativeInflation: cum,
	}
	w := e.withdrawal.Decide(ctx)
	d := e.deposits.Decide(ctx)

	startSubtotal := balanceStart - w.Nominal + d.Nominal
	equities := startSubtotal * e.opts.EquitiesRatio
	bonds := startSubtotal * (1 - e.opts.EquitiesRatio)
	equitiesGrowth := equities * obs.PriceChange
	dividendsGrowth := equities * obs.DividendYield
	bondsGrowth := bonds * obs.FixedIncomeRate
	endSubtotal := equities + equitiesGrowth + dividendsGrowth + bonds + bondsGrowth
	fees := endSubtotal * e.opts.InvestmentExpenseRatio
	balanceEnd := endSubtotal - fees

	return model.YearRecord{
		CycleYear:           cycleYear,
		CycleStartYear:      cycleStartYear,
		CumulativeInflation: cum,

		BalanceStart:       balanceStart,
		BalanceInfAdjStart: balanceStart / cum,

		Withdrawal:          w.Nominal,
		WithdrawalInfAdjust: w.Real,
		Deposit:             d.Nominal,
		DepositInfAdjust:    d.Real,

		StartSubtotal:   startSubtotal,
		Equities:        equities,
		EquitiesGrowth:  equitiesGrowth,
		DividendsGrowth: dividendsGrowth,
		Bonds:           bonds,
		BondsGrowth:     bondsGrowth,
		EndSubtotal:     endSubtotal,
		Fees:            fees,

		BalanceEnd:       balanceEnd,
		BalanceInfAdjEnd: balanceEnd / cum,
	}, nil
}

// Run chains Advance over consecutive observations, one per cycle year.
func (e *Engine) Run(obs []model.Observation) (model.Cycle, error) {
	if len(obs) == 0 {
		return nil, fmt.Errorf("%w: no observations", model.ErrInsufficientData)
	}
	cycle := make(model.Cycle, 0, len(obs))
	var prior *model.YearRecord
	for i, o := range obs {
		rec, err := e.Advance(prior, o, i+1)
		if err != nil {
			return nil, fmt.Errorf("cycle year %d (%d): %w", i+1, o.Year, err)
		}
		cycle = append(cycle, rec)
		prior = &cycle[len(cycle)-1]
	}
	return cycle, nil
}

func checkObservation(obs model.Observation) error {
	if !(obs.CumulativeInflation > 0) || math.IsInf(obs.CumulativeInflation, 0) {
		return fmt.Errorf("%w: year %d has no usable inflation index", model.ErrInsufficientData, obs.Year)
	}
	for _, v := range []float64{obs.PriceChange, obs.DividendYield, obs.FixedIncomeRate} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: year %d has missing market values", model.ErrInsufficientData, obs.Year)
		}
	}
	return nil
}
