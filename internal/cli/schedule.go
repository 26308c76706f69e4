package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// ScheduleOptions holds flags for the schedule command.
type ScheduleOptions struct {
	*RootOptions
	At string
}

type scheduleEntry struct {
	At  string `json:"at"`
	Qty int    `json:"qty"`
}

type scheduleResult struct {
	Now       string          `json:"now"`
	Triggers  []scheduleEntry `json:"triggers"`
	Next      *scheduleEntry  `json:"next,omitempty"`
	NextInMin *int            `json:"next_in_minutes,omitempty"`
}

func (r scheduleResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Restock schedule (%d triggers):\n", len(r.Triggers))
	for _, t := range r.Triggers {
		fmt.Fprintf(&b, "  %s  +%d\n", t.At, t.Qty)
	}
	if r.Next == nil {
		b.WriteString("No restock scheduled.")
		return b.String()
	}
	in := time.Duration(*r.NextInMin) * time.Minute
	fmt.Fprintf(&b, "Next restock after %s: %s (+%d) in %s", r.Now, r.Next.At, r.Next.Qty, in)
	return b.String()
}

// NewScheduleCommand creates the schedule command.
func NewScheduleCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ScheduleOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Show the restock schedule and the next restock",
		Long: `Print the configured daily restock triggers and the first one strictly
after now (or --at), wrapping to tomorrow after the last trigger.

Example:
  foodsaver schedule
  foodsaver schedule --at 10:30 -c foodsaver.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchedule(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.At, "at", "", "compute the next restock as if it were HH:MM")

	return cmd
}

func runSchedule(opts *ScheduleOptions, cmd *cobra.Command) error {
	cfg, err := loadConfig(opts.RootOptions, "")
	if err != nil {
		return err
	}
	schedule, err := cfg.Schedule()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid restock schedule", err)
	}
	now, err := parseAt(opts.At, time.Now().Truncate(time.Minute))
	if err != nil {
		return err
	}

	result := scheduleResult{
		Now:      now.Format("15:04"),
		Triggers: []scheduleEntry{},
	}
	for _, t := range schedule.Times() {
		result.Triggers = append(result.Triggers, scheduleEntry{At: t.String(), Qty: t.Qty})
	}
	if at, t, ok := schedule.Next(now); ok {
		mins := int(at.Sub(now) / time.Minute)
		result.Next = &scheduleEntry{At: t.String(), Qty: t.Qty}
		result.NextInMin = &mins
	}

	return opts.formatter(cmd).Success(result)
}
