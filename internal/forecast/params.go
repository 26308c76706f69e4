package forecast

import (
	"fmt"
	"time"

	"github.com/YuPatty/foodsaver/internal/inventory"
)

const (
	DefaultTrials       = 1000
	DefaultHorizonHours = 48
)

// Params configure the simulation. Step must equal the scheduler's
// UpdateInterval and Demand its demand range, so simulated time matches
// the stock process being forecast.
type Params struct {
	Step         time.Duration
	Demand       inventory.DemandRange
	Trials       int
	HorizonHours int
}

// Validate rejects parameters that cannot produce a simulation.
func (p Params) Validate() error {
	if p.Step <= 0 {
		return fmt.Errorf("step must be positive, got %s", p.Step)
	}
	if err := p.Demand.Validate(); err != nil {
		return err
	}
	if p.Trials < 1 {
		return fmt.Errorf("trials must be at least 1, got %d", p.Trials)
	}
	if p.HorizonHours < 1 {
		return fmt.Errorf("horizon must be at least 1 hour, got %d", p.HorizonHours)
	}
	if p.Steps() < 1 {
		return fmt.Errorf("horizon %dh is shorter than one step of %s", p.HorizonHours, p.Step)
	}
	return nil
}

// Horizon is the simulated time span.
func (p Params) Horizon() time.Duration {
	return time.Duration(p.HorizonHours) * time.Hour
}

// Steps is the number of whole steps that fit in the horizon.
func (p Params) Steps() int {
	if p.Step <= 0 {
		return 0
	}
	return int(p.Horizon() / p.Step)
}
