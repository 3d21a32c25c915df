package data

import (
	"encoding/json"
	"fmt"
	"os"

	"portfolio-doctor/internal/model"
)

// LoadMarketJSON reads a JSON array of model.MarketYear.
func LoadMarketJSON(path string) (model.MarketSeries, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var series model.MarketSeries
	if err := json.Unmarshal(raw, &series); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return series, nil
}
