package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"portfolio-doctor/internal/backtest"
	"portfolio-doctor/internal/model"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	// Market data source: a CSV or JSON file, or an http(s) URL serving CSV.
	MarketData string `yaml:"market_data"`

	// Optional: load the portfolio from a separate YAML (e.g. presets/*.yaml).
	// Fields set in Portfolio override the ones loaded from OptionsFile.
	OptionsFile string           `yaml:"options_file"`
	Portfolio   PortfolioConfig  `yaml:"portfolio"`
	Simulation  SimulationConfig `yaml:"simulation"`

	// DefaultLength is set by Load when neither file set simulation_years, so
	// the cycle length may be shortened to fit the dataset.
	DefaultLength bool `yaml:"-"`
}

type PortfolioConfig struct {
	StartBalance float64 `yaml:"start_balance" json:"start_balance"`
	// Pointers because 0 is a meaningful value for both ratios.
	EquitiesRatio          *float64         `yaml:"equities_ratio" json:"equities_ratio"`
	InvestmentExpenseRatio *float64         `yaml:"investment_expense_ratio" json:"investment_expense_ratio"`
	SimulationYears        int              `yaml:"simulation_years" json:"simulation_years"`
	Withdrawal             WithdrawalConfig `yaml:"withdrawal" json:"withdrawal"`
	Deposits               []DepositConfig  `yaml:"deposits" json:"deposits"`
}

// WithdrawalConfig is the flat wire form of model.Withdrawal. Only the fields
// used by Method are read.
type WithdrawalConfig struct {
	Method       string  `yaml:"method" json:"method"`
	StaticAmount float64 `yaml:"static_amount" json:"static_amount"`
	Percentage   float64 `yaml:"percentage" json:"percentage"`
	Floor        float64 `yaml:"floor" json:"floor"`
	Ceiling      float64 `yaml:"ceiling" json:"ceiling"`
	StartYear    int     `yaml:"start_year" json:"start_year"`
}

type DepositConfig struct {
	StartYear int     `yaml:"start_year" json:"start_year"`
	EndYear   int     `yaml:"end_year" json:"end_year"`
	Amount    float64 `yaml:"amount" json:"amount"`
}

type SimulationConfig struct {
	Method    string    `yaml:"method"` // "historical" (default) or "monte-carlo"
	Runs      int       `yaml:"runs"`
	Seed      uint64    `yaml:"seed"`
	Quantiles []float64 `yaml:"quantiles"`
}

// DefaultRuns is the number of synthetic markets a Monte Carlo simulation
// samples when none is configured.
const DefaultRuns = 500

// DefaultSimulationYears is the starter cycle length.
const DefaultSimulationYears = 60

// Defaults returns the starter portfolio used when a field is left unset.
func Defaults() PortfolioConfig {
	return PortfolioConfig{
		StartBalance:           1_000_000,
		EquitiesRatio:          ptr(0.9),
		InvestmentExpenseRatio: ptr(0.0025),
		SimulationYears:        DefaultSimulationYears,
		Withdrawal: WithdrawalConfig{
			Method:       model.InflationAdjusted.String(),
			StaticAmount: 40000,
			Percentage:   0.04,
			Floor:        30000,
			Ceiling:      60000,
		},
	}
}

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	c.DefaultLength = c.Portfolio.SimulationYears == 0
	c.Portfolio = MergePortfolio(Defaults(), c.Portfolio)
	if c.Simulation.Runs == 0 {
		c.Simulation.Runs = DefaultRuns
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not apply defaults or
// validate it. Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if c.OptionsFile != "" {
		loaded, err := loadPortfolioFile(resolvePath(path, c.OptionsFile))
		if err != nil {
			return nil, err
		}
		c.Portfolio = MergePortfolio(loaded, c.Portfolio)
	}
	if c.MarketData != "" && !isURL(c.MarketData) {
		c.MarketData = resolvePath(path, c.MarketData)
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if _, err := c.Portfolio.ToOptions(); err != nil {
		return fmt.Errorf("portfolio config invalid: %w", err)
	}
	method, err := backtest.ParseMethod(c.Simulation.Method)
	if err != nil {
		return fmt.Errorf("simulation config invalid: %w", err)
	}
	if method == backtest.MethodMonteCarlo && c.Simulation.Runs < 1 {
		return fmt.Errorf("simulation config invalid: %w: runs must be >= 1", model.ErrInvalidOptions)
	}
	for _, q := range c.Simulation.Quantiles {
		if q < 0 || q > 1 {
			return fmt.Errorf("simulation config invalid: %w: quantile %v outside [0, 1]", model.ErrInvalidOptions, q)
		}
	}
	return nil
}

// ToOptions builds validated simulation options.
func (p PortfolioConfig) ToOptions() (model.SimulationOptions, error) {
	w, err := p.Withdrawal.ToModel()
	if err != nil {
		return model.SimulationOptions{}, err
	}
	opts := model.SimulationOptions{
		StartBalance:          p.StartBalance,
		SimulationYearsLength: p.SimulationYears,
		Withdrawal:            w,
	}
	if p.EquitiesRatio != nil {
		opts.EquitiesRatio = *p.EquitiesRatio
	}
	if p.InvestmentExpenseRatio != nil {
		opts.InvestmentExpenseRatio = *p.InvestmentExpenseRatio
	}
	for _, d := range p.Deposits {
		opts.Deposits = append(opts.Deposits, model.DepositSpec{
			StartYearIdx: d.StartYear,
			EndYearIdx:   d.EndYear,
			Amount:       d.Amount,
		})
	}
	if err := opts.Validate(); err != nil {
		return model.SimulationOptions{}, err
	}
	return opts, nil
}

// ToModel selects the withdrawal variant named by Method.
func (w WithdrawalConfig) ToModel() (model.Withdrawal, error) {
	m, err := model.ParseWithdrawalMethod(w.Method)
	if err != nil {
		return nil, err
	}
	switch m {
	case model.Nominal:
		return model.NominalWithdrawal{StaticAmount: w.StaticAmount, StartYearIdx: w.StartYear}, nil
	case model.InflationAdjusted:
		return model.InflationAdjustedWithdrawal{StaticAmount: w.StaticAmount, StartYearIdx: w.StartYear}, nil
	case model.PercentPortfolio:
		return model.PercentWithdrawal{Percentage: w.Percentage, StartYearIdx: w.StartYear}, nil
	default:
		return model.ClampedPercentWithdrawal{
			Percentage:   w.Percentage,
			Floor:        w.Floor,
			Ceiling:      w.Ceiling,
			StartYearIdx: w.StartYear,
		}, nil
	}
}

type portfolioFileWrapper struct {
	Portfolio PortfolioConfig `yaml:"portfolio"`
}

func loadPortfolioFile(path string) (PortfolioConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return PortfolioConfig{}, err
	}
	var w portfolioFileWrapper
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return PortfolioConfig{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return w.Portfolio, nil
}

// MergePortfolio overlays set fields from override onto base. Numbers are
// "set" when non-zero; the two ratios are set when non-nil. Deposits replace
// rather than append.
func MergePortfolio(base, override PortfolioConfig) PortfolioConfig {
	out := base
	if override.StartBalance != 0 {
		out.StartBalance = override.StartBalance
	}
	if override.EquitiesRatio != nil {
		out.EquitiesRatio = override.EquitiesRatio
	}
	if override.InvestmentExpenseRatio != nil {
		out.InvestmentExpenseRatio = override.InvestmentExpenseRatio
	}
	if override.SimulationYears != 0 {
		out.SimulationYears = override.SimulationYears
	}
	if override.Withdrawal.Method != "" {
		out.Withdrawal.Method = override.Withdrawal.Method
	}
	if override.Withdrawal.StaticAmount != 0 {
		out.Withdrawal.StaticAmount = override.Withdrawal.StaticAmount
	}
	if override.Withdrawal.Percentage != 0 {
		out.Withdrawal.Percentage = override.Withdrawal.Percentage
	}
	if override.Withdrawal.Floor != 0 {
		out.Withdrawal.Floor = override.Withdrawal.Floor
	}
	if override.Withdrawal.Ceiling != 0 {
		out.Withdrawal.Ceiling = override.Withdrawal.Ceiling
	}
	if override.Withdrawal.StartYear != 0 {
		out.Withdrawal.StartYear = override.Withdrawal.StartYear
	}
	if len(override.Deposits) > 0 {
		out.Deposits = override.Deposits
	}
	return out
}

// resolvePath interprets a relative path as relative to the config file's
// directory, falling back to the path as given (relative to cwd) if that
// doesn't exist.
func resolvePath(configPath, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	cand := filepath.Join(filepath.Dir(configPath), p)
	if _, err := os.Stat(cand); err == nil {
		return cand
	}
	return p
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func ptr(f float64) *float64 { return &f }
