package model

import (
	"fmt"
	"strconv"
	"strings"
)

// WithdrawalMethod selects how the annual withdrawal is computed.
type WithdrawalMethod int

const (
	Nominal WithdrawalMethod = iota
	InflationAdjusted
	PercentPortfolio
	PercentPortfolioClamped
)

var withdrawalMethodNames = map[WithdrawalMethod]string{
	Nominal:                 "nominal",
	InflationAdjusted:       "inflation-adjusted",
	PercentPortfolio:        "percent",
	PercentPortfolioClamped: "percent-clamped",
}

func (m WithdrawalMethod) String() string {
	if s, ok := withdrawalMethodNames[m]; ok {
		return s
	}
	return fmt.Sprintf("WithdrawalMethod(%d)", int(m))
}

// ParseWithdrawalMethod accepts either a method name ("nominal",
// "inflation-adjusted", "percent", "percent-clamped") or its numeric value.
func ParseWithdrawalMethod(s string) (WithdrawalMethod, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		m := WithdrawalMethod(n)
		if _, ok := withdrawalMethodNames[m]; ok {
			return m, nil
		}
		return 0, fmt.Errorf("%w: unknown withdrawal method %d", ErrInvalidOptions, n)
	}
	s = strings.ReplaceAll(s, "_", "-")
	for m, name := range withdrawalMethodNames {
		if name == s {
			return m, nil
		}
	}
	switch s {
	case "inflation", "infadj":
		return InflationAdjusted, nil
	case "percentage", "percent-portfolio":
		return PercentPortfolio, nil
	case "clamped", "percent-portfolio-clamped":
		return PercentPortfolioClamped, nil
	}
	return 0, fmt.Errorf("%w: unknown withdrawal method %q", ErrInvalidOptions, s)
}

// Withdrawal is the withdrawal policy of a simulation. It is a closed set:
// NominalWithdrawal, InflationAdjustedWithdrawal, PercentWithdrawal and
// ClampedPercentWithdrawal are the only implementations.
type Withdrawal interface {
	Method() WithdrawalMethod
	// StartYear is the 1-based cycle year of the first withdrawal.
	StartYear() int
	Validate() error

	isWithdrawal()
}

// NominalWithdrawal takes the same dollar amount every year.
type NominalWithdrawal struct {
	StaticAmount float64
	StartYearIdx int
}

// InflationAdjustedWithdrawal takes StaticAmount in start-of-cycle dollars,
// grown each year by cumulative inflation.
type InflationAdjustedWithdrawal struct {
	StaticAmount float64
	StartYearIdx int
}

// PercentWithdrawal takes a fraction of the balance at the start of each year.
type PercentWithdrawal struct {
	Percentage   float64
	StartYearIdx int
}

// ClampedPercentWithdrawal is PercentWithdrawal bounded to [Floor, Ceiling]
// nominal dollars.
type ClampedPercentWithdrawal struct {
	Percentage   float64
	Floor        float64
	Ceiling      float64
	StartYearIdx int
}

func (NominalWithdrawal) Method() WithdrawalMethod           { return Nominal }
func (InflationAdjustedWithdrawal) Method() WithdrawalMethod { return InflationAdjusted }
func (PercentWithdrawal) Method() WithdrawalMethod           { return PercentPortfolio }
func (ClampedPercentWithdrawal) Method() WithdrawalMethod    { return PercentPortfolioClamped }

func (w NominalWithdrawal) StartYear() int           { return startYear(w.StartYearIdx) }
func (w InflationAdjustedWithdrawal) StartYear() int { return startYear(w.StartYearIdx) }
func (w PercentWithdrawal) StartYear() int           { return startYear(w.StartYearIdx) }
func (w ClampedPercentWithdrawal) StartYear() int    { return startYear(w.StartYearIdx) }

func (NominalWithdrawal) isWithdrawal()           {}
func (InflationAdjustedWithdrawal) isWithdrawal() {}
func (PercentWithdrawal) isWithdrawal()           {}
func (ClampedPercentWithdrawal) isWithdrawal()    {}

func (w NominalWithdrawal) Validate() error {
	if w.StaticAmount < 0 {
		return fmt.Errorf("%w: static withdrawal amount must be >= 0", ErrInvalidOptions)
	}
	return nil
}

func (w InflationAdjustedWithdrawal) Validate() error {
	if w.StaticAmount < 0 {
		return fmt.Errorf("%w: static withdrawal amount must be >= 0", ErrInvalidOptions)
	}
	return nil
}

func (w PercentWithdrawal) Validate() error {
	if w.Percentage < 0 || w.Percentage > 1 {
		return fmt.Errorf("%w: withdrawal percentage must be within [0, 1]", ErrInvalidOptions)
	}
	return nil
}

func (w ClampedPercentWithdrawal) Validate() error {
	if w.Percentage < 0 || w.Percentage > 1 {
		return fmt.Errorf("%w: withdrawal percentage must be within [0, 1]", ErrInvalidOptions)
	}
	if w.Floor < 0 || w.Ceiling < w.Floor {
		return fmt.Errorf("%w: withdrawal floor/ceiling must satisfy 0 <= floor <= ceiling", ErrInvalidOptions)
	}
	return nil
}

func startYear(idx int) int {
	if idx < 1 {
		return 1
	}
	return idx
}
