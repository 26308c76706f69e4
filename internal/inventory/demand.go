package inventory

import (
	"fmt"
	"math/rand/v2"
)

// DemandRange is the inclusive range a per-step consumption is drawn from.
// The scheduler and the forecast engine share the same range.
type DemandRange struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

// Validate rejects negative or inverted ranges.
func (d DemandRange) Validate() error {
	if d.Min < 0 {
		return fmt.Errorf("demand min %d is negative", d.Min)
	}
	if d.Max < d.Min {
		return fmt.Errorf("demand max %d is below min %d", d.Max, d.Min)
	}
	return nil
}

// Draw samples one demand uniformly from [Min, Max].
func (d DemandRange) Draw(r *rand.Rand) int {
	return d.Min + r.IntN(d.Max-d.Min+1)
}
