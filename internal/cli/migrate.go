package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/YuPatty/foodsaver/internal/migrations"
)

// MigrateOptions holds flags for the migrate command.
type MigrateOptions struct {
	*RootOptions
	Database string
	Steps    int
}

type migrateResult struct {
	Action  string `json:"action"`
	Version uint   `json:"version"`
	Dirty   bool   `json:"dirty"`
}

func (r migrateResult) String() string {
	s := fmt.Sprintf("%s: schema version %d", r.Action, r.Version)
	if r.Dirty {
		s += " (dirty)"
	}
	return s
}

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MigrateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "migrate [up|down|version]",
		Short: "Apply or inspect the database schema",
		Long: `Manage the products and notifications schema.

The engine never creates tables itself; run "migrate up" once before
"run". "down" rolls back --steps migrations, or all of them.

Example:
  foodsaver migrate up --db ./foodsaver.db
  foodsaver migrate version --format json`,
		Args:          cobra.MaximumNArgs(1),
		ValidArgs:     []string{"up", "down", "version"},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			action := "up"
			if len(args) == 1 {
				action = args[0]
			}
			return runMigrate(opts, action, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides config)")
	cmd.Flags().IntVar(&opts.Steps, "steps", 0, "number of migrations to roll back (down only, 0 = all)")

	return cmd
}

func runMigrate(opts *MigrateOptions, action string, cmd *cobra.Command) error {
	cfg, err := loadConfig(opts.RootOptions, opts.Database)
	if err != nil {
		return err
	}

	m, err := migrations.New(cfg.Database.Path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer m.Close()

	switch action {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down(opts.Steps)
	case "version":
	default:
		return NewExitError(ExitCommandError, fmt.Sprintf("unknown action %q (use up, down, or version)", action))
	}
	if err != nil {
		return WrapExitError(ExitFailure, "migration failed", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return WrapExitError(ExitFailure, "failed to read schema version", err)
	}
	slog.Info("migrate", "action", action, "db", cfg.Database.Path, "version", version)

	return opts.formatter(cmd).Success(migrateResult{Action: action, Version: version, Dirty: dirty})
}
