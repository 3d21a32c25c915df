package data

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"portfolio-doctor/internal/model"
)

var defaultClient = NewMarketDataClient(time.Hour)

// LoadMarket loads a series from a file path (.csv or .json) or an http(s)
// URL and checks that it is usable by the engine.
func LoadMarket(ctx context.Context, source string) (model.MarketSeries, error) {
	var (
		series model.MarketSeries
		err    error
	)
	switch {
	case source == "":
		return nil, fmt.Errorf("%w: no market data source configured", model.ErrInsufficientData)
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		series, err = FetchMarketCSV(ctx, source)
	case strings.EqualFold(filepath.Ext(source), ".json"):
		series, err = LoadMarketJSON(source)
	default:
		series, err = LoadMarketCSV(source)
	}
	if err != nil {
		return nil, err
	}
	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	return series, nil
}

// FetchMarketCSV downloads a market CSV with the shared, caching client.
func FetchMarketCSV(ctx context.Context, url string) (model.MarketSeries, error) {
	return defaultClient.FetchCSV(ctx, url)
}
