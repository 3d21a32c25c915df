package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"portfolio-doctor/internal/analysis"
	"portfolio-doctor/internal/backtest"
	"portfolio-doctor/internal/config"
	"portfolio-doctor/internal/data"
	"portfolio-doctor/internal/model"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:   "portfolio-doctor",
		Short: "Backtest retirement portfolios against historical and simulated markets",
		Long: `portfolio-doctor runs a retirement portfolio through every historical
cycle of a market dataset (or through Monte Carlo samples of it) and reports
balances, withdrawals, failures and quantile bands.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(verbose)
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(newSimulateCmd(), newMonteCarloCmd(), newQuantilesCmd(), newMarketCmd())
	return root
}

func setupLogging(verbose bool) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

// inputFlags are shared by every command that runs a simulation.
type inputFlags struct {
	configPath string
	dataPath   string
	years      int
	outPath    string
	asJSON     bool
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.configPath, "config", "", "Path to YAML config (defaults to the starter portfolio)")
	cmd.Flags().StringVar(&f.dataPath, "data", "", "Market data CSV/JSON file or URL (overrides market_data)")
	cmd.Flags().IntVar(&f.years, "years", 0, "Override the cycle length in years")
	cmd.Flags().StringVar(&f.outPath, "out", "", "Optional: write every cycle year to this CSV")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "Print statistics as JSON")
}

type inputs struct {
	cfg    *config.Config
	series model.MarketSeries
	opts   model.SimulationOptions
}

func (f *inputFlags) load(ctx context.Context) (*inputs, error) {
	cfg := &config.Config{
		Portfolio:     config.Defaults(),
		Simulation:    config.SimulationConfig{Runs: config.DefaultRuns},
		DefaultLength: true,
	}
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if f.dataPath != "" {
		cfg.MarketData = f.dataPath
	}
	if cfg.MarketData == "" {
		return nil, fmt.Errorf("--data or market_data in --config is required")
	}
	if f.years > 0 {
		cfg.Portfolio.SimulationYears = f.years
		cfg.DefaultLength = false
	}

	series, err := data.LoadMarket(ctx, cfg.MarketData)
	if err != nil {
		return nil, err
	}
	opts, err := cfg.Portfolio.ToOptions()
	if err != nil {
		return nil, err
	}
	if cfg.DefaultLength {
		if fitted, ok := backtest.FitSimulationLength(opts, series); ok {
			log.Info().
				Int("years", fitted.SimulationYearsLength).
				Msgf("dataset is shorter than the %d year default cycle; using %d years", opts.SimulationYearsLength, fitted.SimulationYearsLength)
			opts = fitted
		}
	}
	log.Debug().
		Str("market_data", cfg.MarketData).
		Int("years", series.Len()).
		Int("cycle_length", opts.SimulationYearsLength).
		Str("withdrawal", opts.Withdrawal.Method().String()).
		Msg("inputs loaded")
	return &inputs{cfg: cfg, series: series, opts: opts}, nil
}

func newSimulateCmd() *cobra.Command {
	var f inputFlags
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run every historical cycle of the dataset",
		Example: `  portfolio-doctor simulate --data data/shiller-sample.csv --years 3
  portfolio-doctor simulate --config examples/config.yaml --out results/cycles.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := f.load(cmd.Context())
			if err != nil {
				return err
			}
			res, err := backtest.RunHistorical(cmd.Context(), in.series, in.opts)
			if err != nil {
				return err
			}
			return report(cmd.OutOrStdout(), res, f)
		},
	}
	f.register(cmd)
	return cmd
}

func newMonteCarloCmd() *cobra.Command {
	var (
		f    inputFlags
		runs int
		seed uint64
	)
	cmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "Run cycles on normally distributed market returns",
		Example: `  portfolio-doctor montecarlo --data data/shiller-sample.csv --years 3 --runs 1000 --seed 7`,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := f.load(cmd.Context())
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("runs") {
				runs = in.cfg.Simulation.Runs
			}
			if !cmd.Flags().Changed("seed") {
				seed = in.cfg.Simulation.Seed
				if seed == 0 {
					seed = rand.Uint64()
				}
			}
			log.Info().Int("runs", runs).Uint64("seed", seed).Msg("running monte carlo")

			res, err := backtest.RunMonteCarlo(cmd.Context(), in.series, in.opts, runs, backtest.NewSeededSource(seed))
			if err != nil {
				return err
			}
			return report(cmd.OutOrStdout(), res, f)
		},
	}
	f.register(cmd)
	cmd.Flags().IntVar(&runs, "runs", config.DefaultRuns, "Number of synthetic markets; each yields every cycle of the dataset's length")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Random seed (random when unset)")
	return cmd
}

func newQuantilesCmd() *cobra.Command {
	var (
		f      inputFlags
		levels string
		method string
		runs   int
		seed   uint64
	)
	cmd := &cobra.Command{
		Use:   "quantiles",
		Short: "Print inflation-adjusted balance and withdrawal quantiles",
		Example: `  portfolio-doctor quantiles --data data/shiller-sample.csv --years 3 --levels 0.25,0.5,0.75`,
		RunE: func(cmd *cobra.Command, args []string) error {
			lv, err := parseLevels(levels)
			if err != nil {
				return err
			}
			in, err := f.load(cmd.Context())
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("levels") && len(in.cfg.Simulation.Quantiles) > 0 {
				lv = in.cfg.Simulation.Quantiles
			}
			if !cmd.Flags().Changed("method") {
				method = in.cfg.Simulation.Method
			}
			m, err := backtest.ParseMethod(method)
			if err != nil {
				return err
			}

			var res *backtest.Result
			if m == backtest.MethodMonteCarlo {
				if seed == 0 {
					seed = rand.Uint64()
				}
				res, err = backtest.RunMonteCarlo(cmd.Context(), in.series, in.opts, runs, backtest.NewSeededSource(seed))
			} else {
				res, err = backtest.RunHistorical(cmd.Context(), in.series, in.opts)
			}
			if err != nil {
				return err
			}

			bands, err := analysis.ComputeQuantiles(res.Cycles, lv)
			if err != nil {
				return err
			}
			if err := writeCSV(f.outPath, res.Cycles); err != nil {
				return err
			}
			return printQuantiles(cmd.OutOrStdout(), bands, f.asJSON)
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&levels, "levels", "0.1,0.25,0.5,0.75,0.9", "Comma-separated quantile levels in [0, 1]")
	cmd.Flags().StringVar(&method, "method", backtest.MethodHistorical, "historical or monte-carlo")
	cmd.Flags().IntVar(&runs, "runs", config.DefaultRuns, "Monte Carlo: number of synthetic markets")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Monte Carlo: random seed (random when unset)")
	return cmd
}

func newMarketCmd() *cobra.Command {
	var dataPath string
	cmd := &cobra.Command{
		Use:   "market",
		Short: "Describe a market dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dataPath == "" {
				return fmt.Errorf("--data is required")
			}
			series, err := data.LoadMarket(cmd.Context(), dataPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "years:              %d-%d (%d rows)\n", series.FirstYear(), series.LastYear(), series.Len())
			fmt.Fprintf(out, "max cycle length:   %d\n", backtest.MaxSimulationLength(series))
			stats, err := analysis.ComputeMarketStatistics(series)
			if err != nil {
				fmt.Fprintf(out, "statistics:         unavailable (%v)\n", err)
				return nil
			}
			fmt.Fprintf(out, "mean annual change: %.4f\n", stats.MeanAnnualMarketChange)
			fmt.Fprintf(out, "std dev:            %.4f\n", stats.StdDevAnnualMarketChange)
			return nil
		},
	}
	cmd.Flags().StringVar(&dataPath, "data", "", "Market data CSV/JSON file or URL")
	return cmd
}

func report(out io.Writer, res *backtest.Result, f inputFlags) error {
	if err := writeCSV(f.outPath, res.Cycles); err != nil {
		return err
	}
	stats, err := analysis.SummarizePortfolio(res.Cycles)
	if err != nil {
		return err
	}
	if f.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(analysis.RoundStats(stats, 2))
	}

	fmt.Fprintf(out, "%-6s %-16s %-16s %-14s %-8s\n", "start", "ending", "ending(real)", "avg wd", "failed")
	for _, cs := range stats.CycleStats {
		failed := "-"
		if cs.Failed() {
			failed = fmt.Sprintf("year %d", cs.FailureYear)
		}
		fmt.Fprintf(out, "%-6d %-16.2f %-16.2f %-14.2f %-8s\n",
			cs.StartYear,
			cs.Balance.Ending,
			cs.Balance.EndingInflAdj,
			cs.Withdrawals.Average,
			failed,
		)
	}
	fmt.Fprintf(out, "\n%s: %d cycles, %d failed, success rate %.1f%%\n",
		res.Method, stats.Cycles, stats.Failures, stats.SuccessRate*100)
	fmt.Fprintf(out, "average ending balance (real) $%.2f, average withdrawal $%.2f\n",
		stats.Balance.AverageInflAdj, stats.Withdrawals.Average)
	return nil
}

func printQuantiles(out io.Writer, bands []analysis.QuantileBand, asJSON bool) error {
	qs := analysis.ComputeQuantileStats(bands)
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Bands []analysis.QuantileBand  `json:"bands"`
			Stats []analysis.QuantileStats `json:"stats"`
		}{bands, qs})
	}
	fmt.Fprintf(out, "%-8s %-18s %-18s %-18s\n", "quantile", "ending(real)", "avg balance(real)", "avg wd(real)")
	for _, s := range qs {
		fmt.Fprintf(out, "%-8.2f %-18.2f %-18.2f %-18.2f\n",
			s.Quantile, s.EndingBalanceInfAdj, s.AverageBalanceInfAdj, s.AverageWithdrawalInfAdj)
	}
	return nil
}

func writeCSV(path string, cycles []model.Cycle) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := backtest.WriteCyclesCSV(path, cycles); err != nil {
		return err
	}
	log.Info().Str("path", path).Int("cycles", len(cycles)).Msg("wrote cycles")
	return nil
}

func parseLevels(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid quantile level %q", p)
		}
		if v < 0 || v > 1 {
			return nil, fmt.Errorf("quantile level %v outside [0, 1]", v)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no quantile levels given")
	}
	return out, nil
}
