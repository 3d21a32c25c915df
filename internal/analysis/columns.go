package analysis

import "portfolio-doctor/internal/model"

// Columns is the column-oriented form of a run of YearRecords: one slice per
// field, all of the same length.
type Columns struct {
	CycleYear           []int
	CycleStartYear      []int
	CumulativeInflation []float64
	BalanceStart        []float64
	BalanceInfAdjStart  []float64
	Withdrawal          []float64
	WithdrawalInfAdjust []float64
	Deposit             []float64
	DepositInfAdjust    []float64
	StartSubtotal       []float64
	Equities            []float64
	EquitiesGrowth      []float64
	DividendsGrowth     []float64
	Bonds               []float64
	BondsGrowth         []float64
	EndSubtotal         []float64
	Fees                []float64
	BalanceEnd          []float64
	BalanceInfAdjEnd    []float64
}

func newColumns(n int) Columns {
	return Columns{
		CycleYear:           make([]int, 0, n),
		CycleStartYear:      make([]int, 0, n),
		CumulativeInflation: make([]float64, 0, n),
		BalanceStart:        make([]float64, 0, n),
		BalanceInfAdjStart:  make([]float64, 0, n),
		Withdrawal:          make([]float64, 0, n),
		WithdrawalInfAdjust: make([]float64, 0, n),
		Deposit:             make([]float64, 0, n),
		DepositInfAdjust:    make([]float64, 0, n),
		StartSubtotal:       make([]float64, 0, n),
		Equities:            make([]float64, 0, n),
		EquitiesGrowth:      make([]float64, 0, n),
		DividendsGrowth:     make([]float64, 0, n),
		Bonds:               make([]float64, 0, n),
		BondsGrowth:         make([]float64, 0, n),
		EndSubtotal:         make([]float64, 0, n),
		Fees:                make([]float64, 0, n),
		BalanceEnd:          make([]float64, 0, n),
		BalanceInfAdjEnd:    make([]float64, 0, n),
	}
}

func (c *Columns) append(r model.YearRecord) {
	c.CycleYear = append(c.CycleYear, r.CycleYear)
	c.CycleStartYear = append(c.CycleStartYear, r.CycleStartYear)
	c.CumulativeInflation = append(c.CumulativeInflation, r.CumulativeInflation)
	c.BalanceStart = append(c.BalanceStart, r.BalanceStart)
	c.BalanceInfAdjStart = append(c.BalanceInfAdjStart, r.BalanceInfAdjStart)
	c.Withdrawal = append(c.Withdrawal, r.Withdrawal)
	c.WithdrawalInfAdjust = append(c.WithdrawalInfAdjust, r.WithdrawalInfAdjust)
	c.Deposit = append(c.Deposit, r.Deposit)
	c.DepositInfAdjust = append(c.DepositInfAdjust, r.DepositInfAdjust)
	c.StartSubtotal = append(c.StartSubtotal, r.StartSubtotal)
	c.Equities = append(c.Equities, r.Equities)
	c.EquitiesGrowth = append(c.EquitiesGrowth, r.EquitiesGrowth)
	c.DividendsGrowth = append(c.DividendsGrowth, r.DividendsGrowth)
	c.Bonds = append(c.Bonds, r.Bonds)
	c.BondsGrowth = append(c.BondsGrowth, r.BondsGrowth)
	c.EndSubtotal = append(c.EndSubtotal, r.EndSubtotal)
	c.Fees = append(c.Fees, r.Fees)
	c.BalanceEnd = append(c.BalanceEnd, r.BalanceEnd)
	c.BalanceInfAdjEnd = append(c.BalanceInfAdjEnd, r.BalanceInfAdjEnd)
}

// Len is the number of rows.
func (c Columns) Len() int { return len(c.CycleYear) }

// Row reassembles row i.
func (c Columns) Row(i int) model.YearRecord {
	return model.YearRecord{
		CycleYear:           c.CycleYear[i],
		CycleStartYear:      c.CycleStartYear[i],
		CumulativeInflation: c.CumulativeInflation[i],
		BalanceStart:        c.BalanceStart[i],
		BalanceInfAdjStart:  c.BalanceInfAdjStart[i],
		Withdrawal:          c.Withdrawal[i],
		WithdrawalInfAdjust: c.WithdrawalInfAdjust[i],
		Deposit:             c.Deposit[i],
		DepositInfAdjust:    c.DepositInfAdjust[i],
		StartSubtotal:       c.StartSubtotal[i],
		Equities:            c.Equities[i],
		EquitiesGrowth:      c.EquitiesGrowth[i],
		DividendsGrowth:     c.DividendsGrowth[i],
		Bonds:               c.Bonds[i],
		BondsGrowth:         c.BondsGrowth[i],
		EndSubtotal:         c.EndSubtotal[i],
		Fees:                c.Fees[i],
		BalanceEnd:          c.BalanceEnd[i],
		BalanceInfAdjEnd:    c.BalanceInfAdjEnd[i],
	}
}

// Rows is the inverse of Pivot.
func (c Columns) Rows() []model.YearRecord {
	out := make([]model.YearRecord, c.Len())
	for i := range out {
		out[i] = c.Row(i)
	}
	return out
}

// Pivot converts one cycle to column form.
func Pivot(cycle model.Cycle) Columns {
	c := newColumns(len(cycle))
	for _, r := range cycle {
		c.append(r)
	}
	return c
}

// PivotCycles pivots each cycle separately.
func PivotCycles(cycles []model.Cycle) []Columns {
	out := make([]Columns, len(cycles))
	for i, cy := range cycles {
		out[i] = Pivot(cy)
	}
	return out
}

// PivotAggregate concatenates every cycle's rows, cycle 0 first.
func PivotAggregate(cycles []model.Cycle) Columns {
	n := 0
	for _, cy := range cycles {
		n += len(cy)
	}
	c := newColumns(n)
	for _, cy := range cycles {
		for _, r := range cy {
			c.append(r)
		}
	}
	return c
}
