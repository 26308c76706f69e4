package forecast

import (
	"fmt"
	"math"
)

// Status classifies a forecast.
type Status string

const (
	StatusDepleted   Status = "depleted"
	StatusNotFound   Status = "not_found"
	StatusSufficient Status = "sufficient"
	StatusEstimated  Status = "estimated"
	StatusFailed     Status = "failed"
)

// Numeric sentinels of the legacy sell_out_hours field.
const (
	HoursDepleted   = 0.0
	HoursNotFound   = -1.0
	HoursSufficient = 999.0
	HoursFailed     = -999.0
)

// sufficientAfterHours is where the message switches to "sufficient".
const sufficientAfterHours = 24.0

// Result is the outcome of one forecast. Hours is the median sell-out time
// for StatusEstimated and the matching sentinel otherwise.
type Result struct {
	Status Status  `json:"status"`
	Hours  float64 `json:"hours"`
}

func depleted() Result   { return Result{Status: StatusDepleted, Hours: HoursDepleted} }
func notFound() Result   { return Result{Status: StatusNotFound, Hours: HoursNotFound} }
func sufficient() Result { return Result{Status: StatusSufficient, Hours: HoursSufficient} }
func failed() Result     { return Result{Status: StatusFailed, Hours: HoursFailed} }

func estimated(hours float64) Result {
	return Result{Status: StatusEstimated, Hours: roundTenth(hours)}
}

// Message is the human readable summary shown next to a product.
func (r Result) Message() string {
	switch r.Status {
	case StatusDepleted:
		return "out of stock, restock expected later"
	case StatusNotFound:
		return "product not found or cannot be forecast"
	case StatusSufficient:
		return "stock sufficient (24h+)"
	case StatusEstimated:
		if r.Hours >= sufficientAfterHours {
			return "stock sufficient (24h+)"
		}
		return fmt.Sprintf("expected to sell out within %.1f hours", r.Hours)
	default:
		return "forecast failed"
	}
}

// roundTenth rounds half away from zero to one decimal.
func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
