package data

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"portfolio-doctor/internal/model"

	"github.com/rs/zerolog/log"
)

// MarketDataClient downloads market data CSVs over HTTP. Successful downloads
// are cached by URL when Cache is set.
type MarketDataClient struct {
	Client *http.Client
	Cache  *TTLCache[model.MarketSeries]
}

func NewMarketDataClient(cacheTTL time.Duration) *MarketDataClient {
	c := &MarketDataClient{
		Client: &http.Client{Timeout: 30 * time.Second},
	}
	if cacheTTL > 0 {
		c.Cache = NewTTLCache[model.MarketSeries](cacheTTL, 5*time.Minute)
	}
	return c
}

// MarketDataError is a non-200 response from a market data server.
type MarketDataError struct {
	StatusCode int
	Code       string
	URL        string
	Message    string
	RetryAfter string
}

func (e *MarketDataError) Error() string {
	return e.Message
}

// FetchCSV downloads and parses a market CSV (header detected automatically).
func (c *MarketDataClient) FetchCSV(ctx context.Context, url string) (model.MarketSeries, error) {
	key := CacheKey(url)
	if cached, ok := c.Cache.Get(key); ok {
		log.Debug().Str("url", url).Int("years", len(cached)).Msg("market data cache hit")
		return cached, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")

	start := time.Now()
	resp, err := c.Client.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("url", url).Dur("duration", time.Since(start)).Msg("market data request failed")
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	log.Debug().Str("url", url).Int("status", resp.StatusCode).Dur("duration", time.Since(start)).Msg("market data response")

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, &MarketDataError{
			StatusCode: resp.StatusCode,
			Code:       "DATASET_NOT_FOUND",
			URL:        url,
			Message:    fmt.Sprintf("market data not found at %s", url),
		}
	case http.StatusTooManyRequests:
		retryAfter := resp.Header.Get("Retry-After")
		return nil, &MarketDataError{
			StatusCode: resp.StatusCode,
			Code:       "RATE_LIMIT_EXCEEDED",
			URL:        url,
			Message:    fmt.Sprintf("Rate limit exceeded. Retry after: %s", retryAfter),
			RetryAfter: retryAfter,
		}
	default:
		return nil, &MarketDataError{
			StatusCode: resp.StatusCode,
			Code:       "DATA_FETCH_ERROR",
			URL:        url,
			Message:    fmt.Sprintf("market data server returned status %d: %s", resp.StatusCode, resp.Status),
		}
	}

	series, err := parseDetectHeader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", url, err)
	}
	c.Cache.Set(key, series)
	log.Info().Str("url", url).Int("years", len(series)).Msg("market data downloaded")
	return series, nil
}
