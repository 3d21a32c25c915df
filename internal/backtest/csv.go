package backtest

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"

	"portfolio-doctor/internal/model"

	"github.com/shopspring/decimal"
)

// WriteCyclesCSV writes one row per simulated year, cycles in order.
func WriteCyclesCSV(path string, cycles []model.Cycle) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := WriteCycles(f, cycles); err != nil {
		return err
	}
	return f.Close()
}

func WriteCycles(out io.Writer, cycles []model.Cycle) error {
	w := csv.NewWriter(out)

	header := []string{
		"cycle_start_year",
		"year",
		"cycle_year",
		"cumulative_inflation",
		"balance_start",
		"balance_inf_adj_start",
		"withdrawal",
		"withdrawal_inf_adjust",
		"deposit",
		"deposit_inf_adjust",
		"start_subtotal",
		"equities",
		"equities_growth",
		"dividends_growth",
		"bonds",
		"bonds_growth",
		"end_subtotal",
		"fees",
		"balance_end",
		"balance_inf_adj_end",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, c := range cycles {
		for _, r := range c {
			row := []string{
				strconv.Itoa(r.CycleStartYear),
				strconv.Itoa(r.Year()),
				strconv.Itoa(r.CycleYear),
				fmtRatio(r.CumulativeInflation),
				fmtMoney(r.BalanceStart),
				fmtMoney(r.BalanceInfAdjStart),
				fmtMoney(r.Withdrawal),
				fmtMoney(r.WithdrawalInfAdjust),
				fmtMoney(r.Deposit),
				fmtMoney(r.DepositInfAdjust),
				fmtMoney(r.StartSubtotal),
				fmtMoney(r.Equities),
				fmtMoney(r.EquitiesGrowth),
				fmtMoney(r.DividendsGrowth),
				fmtMoney(r.Bonds),
				fmtMoney(r.BondsGrowth),
				fmtMoney(r.EndSubtotal),
				fmtMoney(r.Fees),
				fmtMoney(r.BalanceEnd),
				fmtMoney(r.BalanceInfAdjEnd),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}

	w.Flush()
	return w.Error()
}

func fmtMoney(x float64) string { return fmtFixed(x, 4) }

func fmtRatio(x float64) string { return fmtFixed(x, 6) }

func fmtFixed(x float64, places int32) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return decimal.NewFromFloat(x).StringFixed(places)
}
