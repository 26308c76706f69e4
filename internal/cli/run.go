package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/YuPatty/foodsaver/internal/engine"
	"github.com/YuPatty/foodsaver/internal/forecast"
	"github.com/YuPatty/foodsaver/internal/httpapi"
	"github.com/YuPatty/foodsaver/internal/metrics"
	"github.com/YuPatty/foodsaver/internal/writegate"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string
	HTTPAddr string
	NoHTTP   bool
	Seed     uint64
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the stock scheduler and the query API",
		Long: `Run the stock update scheduler and, unless disabled, the HTTP query API.

The database must already be migrated. The scheduler ticks every
simulation.update_interval; the API serves forecasts and notifications.
Both stop on SIGINT/SIGTERM.

Example:
  foodsaver migrate up --db ./foodsaver.db
  foodsaver run --db ./foodsaver.db --http :5000
  foodsaver run -c foodsaver.yaml --no-http --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEngine(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides config)")
	cmd.Flags().StringVar(&opts.HTTPAddr, "http", "", "HTTP listen address (overrides config)")
	cmd.Flags().BoolVar(&opts.NoHTTP, "no-http", false, "run the scheduler only")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "seed the demand source (0 = random)")

	return cmd
}

func runEngine(opts *RunOptions, cmd *cobra.Command) error {
	cfg, err := loadConfig(opts.RootOptions, opts.Database)
	if err != nil {
		return err
	}
	if opts.HTTPAddr != "" {
		cfg.HTTP.Addr = opts.HTTPAddr
	}
	if opts.NoHTTP {
		cfg.HTTP.Enabled = false
	}
	if opts.Seed != 0 {
		cfg.Simulation.Seed = opts.Seed
	}

	gate := writegate.New(cfg.Database.LockTimeout)
	slog.Info("opening database", "path", cfg.Database.Path)
	st, err := openStore(cfg, gate)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	engCfg, err := schedulerConfig(cfg)
	if err != nil {
		return err
	}

	collector := metrics.NewCollector()
	schedOpts := []engine.Option{engine.WithMetrics(collector)}
	fcOpts := []forecast.Option{forecast.WithMetrics(collector)}
	if cfg.Simulation.Seed != 0 {
		schedOpts = append(schedOpts, engine.WithSeed(cfg.Simulation.Seed))
		fcOpts = append(fcOpts, forecast.WithSeed(cfg.Simulation.Seed))
	}

	sched, err := engine.NewScheduler(st, engCfg, schedOpts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid simulation parameters", err)
	}

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sched.Run(ctx)
	})

	if cfg.HTTP.Enabled {
		fc := forecast.New(st, forecastParams(cfg), fcOpts...)
		srv := httpapi.New(st, fc, engCfg.Schedule, httpapi.WithMetrics(collector))
		g.Go(func() error {
			return srv.ListenAndServe(ctx, cfg.HTTP.Addr)
		})
	}

	slog.Info("engine starting",
		"db", cfg.Database.Path,
		"interval", cfg.Simulation.UpdateInterval,
		"http", cfg.HTTP.Enabled,
		"addr", cfg.HTTP.Addr,
	)
	fmt.Fprintln(cmd.OutOrStdout(), "FoodSaver engine started.")
	fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl-C to stop.")

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return WrapExitError(ExitFailure, "engine error", err)
	}

	slog.Info("engine stopped gracefully")
	return nil
}
