package cli

import (
	"errors"

	"github.com/YuPatty/foodsaver/internal/config"
	"github.com/YuPatty/foodsaver/internal/engine"
	"github.com/YuPatty/foodsaver/internal/forecast"
	"github.com/YuPatty/foodsaver/internal/store"
	"github.com/YuPatty/foodsaver/internal/writegate"
)

// openStore opens the configured database behind gate.
func openStore(cfg config.Config, gate *writegate.Gate) (*store.Store, error) {
	st, err := store.Open(cfg.Database.Path,
		store.WithGate(gate),
		store.WithBusyTimeout(cfg.Database.BusyTimeout),
		store.WithMaxOpenConns(cfg.Database.MaxOpenConns),
	)
	if err != nil {
		if errors.Is(err, store.ErrSchemaMissing) {
			return nil, WrapExitError(ExitCommandError, "database is not migrated (run `foodsaver migrate up`)", err)
		}
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

func schedulerConfig(cfg config.Config) (engine.Config, error) {
	schedule, err := cfg.Schedule()
	if err != nil {
		return engine.Config{}, WrapExitError(ExitCommandError, "invalid restock schedule", err)
	}
	return engine.Config{
		Params: engine.Params{
			UpdateInterval: cfg.Simulation.UpdateInterval,
			Demand:         cfg.Simulation.Demand,
			SafetyStock:    cfg.Simulation.SafetyStock,
			MaxStock:       cfg.Simulation.MaxStock,
		},
		Schedule:      schedule,
		ReadTimeout:   cfg.Database.ReadTimeout,
		CommitTimeout: cfg.Database.CommitTimeout,
	}, nil
}

func forecastParams(cfg config.Config) forecast.Params {
	return forecast.Params{
		Step:         cfg.Simulation.UpdateInterval,
		Demand:       cfg.Simulation.Demand,
		Trials:       cfg.Forecast.Simulations,
		HorizonHours: cfg.Forecast.HorizonHours,
	}
}
