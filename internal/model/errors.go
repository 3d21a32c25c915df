package model

import "errors"

// Sentinel errors returned by the simulation core. Callers match them with
// errors.Is; every returned error wraps exactly one of these.
var (
	ErrInvalidAllocation = errors.New("equities ratio must be within [0, 1]")
	ErrInsufficientData  = errors.New("not enough market data")
	ErrYearNotFound      = errors.New("year not found in market series")
	ErrEmptyCycleSet     = errors.New("no cycles to aggregate")
	ErrInvalidOptions    = errors.New("invalid simulation options")
)
