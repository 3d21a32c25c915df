package models

import (
	"portfolio-doctor/internal/analysis"
	"portfolio-doctor/internal/model"
)

// SimulationResponse represents the response from a simulation run
type SimulationResponse struct {
	ID            string                     `json:"id,omitempty"`
	Status        string                     `json:"status"`
	Method        string                     `json:"method"`
	Dataset       string                     `json:"dataset"`
	Stats         analysis.PortfolioStats    `json:"stats"`
	Quantiles     []analysis.QuantileBand    `json:"quantiles"`
	QuantileStats []analysis.QuantileStats   `json:"quantile_stats"`
	MarketStats   *analysis.MarketStatistics `json:"market_stats,omitempty"` // monte-carlo only
	Seed          *uint64                    `json:"seed,omitempty"`         // monte-carlo only
	Query         string                     `json:"query,omitempty"`        // shareable options query
	Cycles        []model.Cycle              `json:"cycles,omitempty"`
}

// CyclesResponse represents the stored cycles of a simulation
type CyclesResponse struct {
	ID      string        `json:"id"`
	Method  string        `json:"method"`
	Dataset string        `json:"dataset"`
	Count   int           `json:"count"`
	Cycles  []model.Cycle `json:"cycles"`
}

// RankResponse represents the worst cycles of a stored simulation
type RankResponse struct {
	ID       string    `json:"id"`
	Rankings []Ranking `json:"rankings"`
}

// Ranking represents one ranked cycle
type Ranking struct {
	Rank  int                 `json:"rank"`
	Cycle analysis.CycleStats `json:"cycle"`
}

// MarketResponse describes a market dataset
type MarketResponse struct {
	Dataset             string                     `json:"dataset"`
	FirstYear           int                        `json:"first_year"`
	LastYear            int                        `json:"last_year"`
	Years               int                        `json:"years"`
	MaxSimulationLength int                        `json:"max_simulation_length"`
	Statistics          *analysis.MarketStatistics `json:"statistics,omitempty"`
	Rows                model.MarketSeries         `json:"rows,omitempty"`
}

// WithdrawalMethodInfo represents information about a withdrawal method
type WithdrawalMethodInfo struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  []ParameterInfo `json:"parameters"`
}

// ParameterInfo describes a withdrawal parameter
type ParameterInfo struct {
	Name        string      `json:"name"`
	Type        string      `json:"type"` // "float", "int"
	Description string      `json:"description"`
	Default     interface{} `json:"default,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
