package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/YuPatty/foodsaver/internal/forecast"
	"github.com/YuPatty/foodsaver/internal/writegate"
)

// ForecastOptions holds flags for the forecast command.
type ForecastOptions struct {
	*RootOptions
	Database string
	Seed     uint64
}

type forecastResult struct {
	ProductID    int64           `json:"product_id"`
	Status       forecast.Status `json:"status"`
	SellOutHours float64         `json:"sell_out_hours"`
	Message      string          `json:"message"`
	NextRestock  string          `json:"next_restock,omitempty"`
}

func (r forecastResult) String() string {
	s := fmt.Sprintf("product %d: %s (sell_out_hours=%g)", r.ProductID, r.Message, r.SellOutHours)
	if r.NextRestock != "" {
		s += fmt.Sprintf(", next restock %s", r.NextRestock)
	}
	return s
}

// NewForecastCommand creates the forecast command.
func NewForecastCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ForecastOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "forecast <product-id>",
		Short: "Estimate when a product sells out",
		Long: `Run the Monte Carlo sell-out forecast for one product.

sell_out_hours uses the storefront encoding: 0 out of stock, -1 unknown
product, 999 sufficient beyond the horizon, -999 failure.

Example:
  foodsaver forecast 12 --db ./foodsaver.db
  foodsaver forecast 12 --seed 7 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runForecast(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides config)")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "seed the simulation (0 = random)")

	return cmd
}

func runForecast(opts *ForecastOptions, rawID string, cmd *cobra.Command) error {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("invalid product id %q", rawID), err)
	}

	cfg, err := loadConfig(opts.RootOptions, opts.Database)
	if err != nil {
		return err
	}
	schedule, err := cfg.Schedule()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid restock schedule", err)
	}

	st, err := openStore(cfg, writegate.New(cfg.Database.LockTimeout))
	if err != nil {
		return err
	}
	defer st.Close()

	var fcOpts []forecast.Option
	seed := opts.Seed
	if seed == 0 {
		seed = cfg.Simulation.Seed
	}
	if seed != 0 {
		fcOpts = append(fcOpts, forecast.WithSeed(seed))
	}

	out := opts.formatter(cmd)
	res, err := forecast.New(st, forecastParams(cfg), fcOpts...).Forecast(cmd.Context(), id)
	if err != nil {
		_ = out.Error(ErrCodeForecast, err.Error(), map[string]any{
			"product_id":     id,
			"sell_out_hours": res.Hours,
		})
		return WrapExitError(ExitFailure, "forecast failed", err)
	}

	result := forecastResult{
		ProductID:    id,
		Status:       res.Status,
		SellOutHours: res.Hours,
		Message:      res.Message(),
	}
	if res.Status == forecast.StatusDepleted {
		if at, _, ok := schedule.Next(time.Now()); ok {
			result.NextRestock = at.Format("15:04")
		}
	}
	return out.Success(result)
}
