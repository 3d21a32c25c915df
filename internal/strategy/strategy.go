package strategy

// Context is what a cash-flow strategy sees for one cycle year.
type Context struct {
	CycleYear           int
	BalanceStart        float64
	CumulativeInflation float64
}

// CashFlow is an amount in nominal dollars together with its value in
// start-of-cycle dollars.
type CashFlow struct {
	Nominal float64
	Real    float64
}

// Strategy decides one kind of cash flow (withdrawals or deposits) for a year.
type Strategy interface {
	Name() string
	Decide(ctx Context) CashFlow
}

func fromNominal(nominal float64, ctx Context) CashFlow {
	return CashFlow{Nominal: nominal, Real: nominal / ctx.CumulativeInflation}
}
