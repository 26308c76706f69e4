package cli

import (
	"fmt"
	"time"
)

// parseAt resolves an HH:MM flag to that time of day on base's date.
// An empty value returns base unchanged.
func parseAt(value string, base time.Time) (time.Time, error) {
	if value == "" {
		return base, nil
	}
	t, err := time.Parse("15:04", value)
	if err != nil {
		return time.Time{}, NewExitError(ExitCommandError, fmt.Sprintf("invalid --at %q: want HH:MM", value))
	}
	y, m, d := base.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, base.Location()), nil
}
