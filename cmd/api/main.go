package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"portfolio-doctor/internal/api"
	"portfolio-doctor/internal/data"
	"portfolio-doctor/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const defaultDatasetName = "default"

func main() {
	// Get configuration from environment
	port := getenv("API_PORT", "8080")
	production := os.Getenv("API_ENV") == "production"
	dataDir := getenv("DATA_DIR", "./data")

	setupLogging(production)
	resultTTL := getDuration("RESULT_TTL", time.Hour)
	rps := getFloat("RATE_LIMIT_RPS", 2)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog := data.NewCatalog(dataDir)
	defaultDataset := getenv("DEFAULT_DATASET", "shiller-sample")
	if src := os.Getenv("MARKET_DATA"); src != "" {
		series, err := data.LoadMarket(ctx, src)
		if err != nil {
			log.Fatal().Err(err).Str("source", src).Msg("failed to load MARKET_DATA")
		}
		catalog.Register(defaultDatasetName, series)
		defaultDataset = defaultDatasetName
		log.Info().Str("source", src).Int("first_year", series.FirstYear()).Int("last_year", series.LastYear()).Msg("market data loaded")
	}
	log.Info().Str("data_dir", dataDir).Str("default_dataset", defaultDataset).Msg("dataset catalog ready")

	store, closeStore := newRunStore(ctx, os.Getenv("REDIS_URL"), resultTTL)
	defer closeStore()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if production {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(api.Deps{
		Datasets:       catalog,
		DefaultDataset: defaultDataset,
		Store:          store,
		Metrics:        metrics.New(reg),
		Gatherer:       reg,
		CORSOrigins:    splitList(os.Getenv("CORS_ORIGINS")),
		RateLimitRPS:   rps,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// newRunStore uses Redis when REDIS_URL is set and reachable, otherwise an
// in-memory store.
func newRunStore(ctx context.Context, redisURL string, ttl time.Duration) (data.RunStore, func()) {
	if redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid REDIS_URL")
		}
		client := redis.NewClient(opts)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err = client.Ping(pingCtx).Err()
		cancel()
		if err == nil {
			log.Info().Str("addr", opts.Addr).Dur("ttl", ttl).Msg("storing simulation runs in redis")
			return data.NewRedisRunStore(client, ttl), func() { _ = client.Close() }
		}
		_ = client.Close()
		log.Warn().Err(err).Str("addr", opts.Addr).Msg("redis unreachable, falling back to in-memory run store")
	}
	mem := data.NewMemoryRunStore(ttl)
	return mem, mem.Close
}

func setupLogging(production bool) {
	zerolog.TimeFieldFormat = time.RFC3339
	if production {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Warn().Str(key, v).Msg("invalid duration, using default")
		return def
	}
	return d
}

func getFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Warn().Str(key, v).Msg("invalid number, using default")
		return def
	}
	return f
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
