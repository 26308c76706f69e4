package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/YuPatty/foodsaver/internal/inventory"
	"github.com/YuPatty/foodsaver/internal/store"
	"github.com/YuPatty/foodsaver/internal/writegate"
)

// NotificationsOptions holds flags for the notifications command.
type NotificationsOptions struct {
	*RootOptions
	Database string
	UserID   int64
	Limit    int
}

type notificationList []inventory.Notification

func (l notificationList) String() string {
	if len(l) == 0 {
		return "No notifications."
	}
	var b strings.Builder
	for i, n := range l {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s  #%d", n.CreatedAt.Format("2006-01-02 15:04:05"), n.ID)
		if n.ProductID != nil {
			fmt.Fprintf(&b, "  product=%d", *n.ProductID)
		}
		fmt.Fprintf(&b, "  %s", n.Message)
	}
	return b.String()
}

// NewNotificationsCommand creates the notifications command.
func NewNotificationsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &NotificationsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "List the newest notifications for a user",
		Long: `List notifications newest first. User 0 receives the system-wide
low-stock notifications raised by the scheduler.

Example:
  foodsaver notifications --db ./foodsaver.db
  foodsaver notifications --user 12 --limit 10 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNotifications(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides config)")
	cmd.Flags().Int64Var(&opts.UserID, "user", inventory.SystemUserID, "user id (0 = system notifications)")
	cmd.Flags().IntVar(&opts.Limit, "limit", store.DefaultNotificationLimit, "maximum number of notifications")

	return cmd
}

func runNotifications(opts *NotificationsOptions, cmd *cobra.Command) error {
	cfg, err := loadConfig(opts.RootOptions, opts.Database)
	if err != nil {
		return err
	}

	st, err := openStore(cfg, writegate.New(cfg.Database.LockTimeout))
	if err != nil {
		return err
	}
	defer st.Close()

	notes, err := st.ListNotifications(cmd.Context(), opts.UserID, opts.Limit)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to list notifications", err)
	}
	return opts.formatter(cmd).Success(notificationList(notes))
}
