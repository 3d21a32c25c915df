package models

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"portfolio-doctor/internal/config"
	"portfolio-doctor/internal/model"
)

// SimulationRequest represents the request body for running a simulation
type SimulationRequest struct {
	Dataset       string                 `json:"dataset,omitempty"` // default: server MARKET_DATA
	Method        string                 `json:"method,omitempty"`  // "historical" (default) or "monte-carlo"
	Runs          int                    `json:"runs,omitempty"`
	Seed          *uint64                `json:"seed,omitempty"`
	Portfolio     config.PortfolioConfig `json:"portfolio"`
	Quantiles     []float64              `json:"quantiles,omitempty"`
	IncludeCycles bool                   `json:"include_cycles,omitempty"`
}

// OptionsQuery carries a portfolio in URL query form so a simulation can be
// shared as a link. Values are kept as strings: anything missing or
// unparseable falls back to the default portfolio.
type OptionsQuery struct {
	Dataset                string `form:"dataset"`
	SimulationMethod       string `form:"simulationMethod"`
	StartBalance           string `form:"startBalance"`
	EquitiesRatio          string `form:"equitiesRatio"`
	InvestmentExpenseRatio string `form:"investmentExpenseRatio"`
	WithdrawalMethod       string `form:"withdrawalMethod"`
	WithdrawalStaticAmount string `form:"withdrawalStaticAmount"`
	WithdrawalPercent      string `form:"withdrawalPercent"`
	WithdrawalFloor        string `form:"withdrawalFloor"`
	WithdrawalCeiling      string `form:"withdrawalCeiling"`
	SimulationYearsLength  string `form:"simulationYearsLength"`
	WithdrawalStartIdx     string `form:"withdrawalStartIdx"`
	Deposits               string `form:"deposits"` // JSON array of deposits
}

// Portfolio converts the query into a portfolio config, starting from
// config.Defaults.
func (q OptionsQuery) Portfolio() config.PortfolioConfig {
	p := config.Defaults()
	if v, ok := parseFloat(q.StartBalance); ok {
		p.StartBalance = v
	}
	if v, ok := parseFloat(q.EquitiesRatio); ok {
		p.EquitiesRatio = &v
	}
	if v, ok := parseFloat(q.InvestmentExpenseRatio); ok {
		p.InvestmentExpenseRatio = &v
	}
	if v, ok := parseInt(q.SimulationYearsLength); ok {
		p.SimulationYears = v
	}
	if m, err := model.ParseWithdrawalMethod(q.WithdrawalMethod); err == nil {
		p.Withdrawal.Method = m.String()
	}
	if v, ok := parseFloat(q.WithdrawalStaticAmount); ok {
		p.Withdrawal.StaticAmount = v
	}
	if v, ok := parseFloat(q.WithdrawalPercent); ok {
		p.Withdrawal.Percentage = v
	}
	if v, ok := parseFloat(q.WithdrawalFloor); ok {
		p.Withdrawal.Floor = v
	}
	if v, ok := parseFloat(q.WithdrawalCeiling); ok {
		p.Withdrawal.Ceiling = v
	}
	if v, ok := parseInt(q.WithdrawalStartIdx); ok {
		p.Withdrawal.StartYear = v
	}
	if q.Deposits != "" {
		var deposits []config.DepositConfig
		if err := json.Unmarshal([]byte(q.Deposits), &deposits); err == nil {
			p.Deposits = deposits
		}
	}
	return p
}

// HasSimulationLength reports whether the query sets the cycle length rather
// than leaving it to the default.
func (q OptionsQuery) HasSimulationLength() bool {
	_, ok := parseInt(q.SimulationYearsLength)
	return ok
}

// NewOptionsQuery is the inverse of Portfolio. Withdrawal parameters that
// the method does not use are omitted.
func NewOptionsQuery(dataset, method string, p config.PortfolioConfig) OptionsQuery {
	q := OptionsQuery{
		Dataset:               dataset,
		SimulationMethod:      method,
		StartBalance:          formatFloat(p.StartBalance),
		SimulationYearsLength: strconv.Itoa(p.SimulationYears),
		WithdrawalStartIdx:    strconv.Itoa(max(p.Withdrawal.StartYear, 1)),
	}
	if p.EquitiesRatio != nil {
		q.EquitiesRatio = formatFloat(*p.EquitiesRatio)
	}
	if p.InvestmentExpenseRatio != nil {
		q.InvestmentExpenseRatio = formatFloat(*p.InvestmentExpenseRatio)
	}
	m, err := model.ParseWithdrawalMethod(p.Withdrawal.Method)
	if err == nil {
		q.WithdrawalMethod = strconv.Itoa(int(m))
	}
	switch m {
	case model.Nominal, model.InflationAdjusted:
		q.WithdrawalStaticAmount = formatFloat(p.Withdrawal.StaticAmount)
	case model.PercentPortfolio:
		q.WithdrawalPercent = formatFloat(p.Withdrawal.Percentage)
	case model.PercentPortfolioClamped:
		q.WithdrawalPercent = formatFloat(p.Withdrawal.Percentage)
		q.WithdrawalFloor = formatFloat(p.Withdrawal.Floor)
		q.WithdrawalCeiling = formatFloat(p.Withdrawal.Ceiling)
	}
	if len(p.Deposits) > 0 {
		raw, err := json.Marshal(p.Deposits)
		if err == nil {
			q.Deposits = string(raw)
		}
	}
	return q
}

// Encode renders the non-empty fields as URL values.
func (q OptionsQuery) Encode() url.Values {
	v := url.Values{}
	set := func(key, val string) {
		if val != "" {
			v.Set(key, val)
		}
	}
	set("dataset", q.Dataset)
	set("simulationMethod", q.SimulationMethod)
	set("startBalance", q.StartBalance)
	set("equitiesRatio", q.EquitiesRatio)
	set("investmentExpenseRatio", q.InvestmentExpenseRatio)
	set("withdrawalMethod", q.WithdrawalMethod)
	set("withdrawalStaticAmount", q.WithdrawalStaticAmount)
	set("withdrawalPercent", q.WithdrawalPercent)
	set("withdrawalFloor", q.WithdrawalFloor)
	set("withdrawalCeiling", q.WithdrawalCeiling)
	set("simulationYearsLength", q.SimulationYearsLength)
	set("withdrawalStartIdx", q.WithdrawalStartIdx)
	set("deposits", q.Deposits)
	return v
}

// RankRequest represents the query of a worst-cycles ranking
type RankRequest struct {
	Limit int `form:"limit,omitempty"` // default: 10
}

func parseFloat(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return v, err == nil
}

func parseInt(s string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	return v, err == nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
