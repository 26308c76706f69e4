package engine

import (
	"fmt"
	"time"

	"github.com/YuPatty/foodsaver/internal/inventory"
)

// Params are the simulation parameters of the scheduler. Immutable after
// construction.
type Params struct {
	UpdateInterval time.Duration
	Demand         inventory.DemandRange
	SafetyStock    int
	MaxStock       int
}

// Validate rejects parameters the compute pass cannot honor.
func (p Params) Validate() error {
	if p.UpdateInterval <= 0 {
		return fmt.Errorf("update interval must be positive, got %s", p.UpdateInterval)
	}
	if err := p.Demand.Validate(); err != nil {
		return err
	}
	if p.SafetyStock < 0 {
		return fmt.Errorf("safety stock %d is negative", p.SafetyStock)
	}
	if p.MaxStock <= p.SafetyStock {
		return fmt.Errorf("max stock %d must exceed safety stock %d", p.MaxStock, p.SafetyStock)
	}
	return nil
}

// Outcome is the result of one compute pass.
type Outcome struct {
	// Batch holds only the quantities that changed, in snapshot order, and
	// the low-stock notifications, in the same order.
	Batch inventory.Batch

	// Restocked counts products that received a scheduled restock.
	Restocked int

	// Trigger is the schedule entry that matched now, if any.
	Trigger *inventory.RestockTime
}

// Plan computes the writes of one tick. It performs no I/O.
//
// For each product, in order:
//   - if now's hour and minute equal a trigger, quantity becomes
//     min(quantity + trigger.Qty, MaxStock)
//   - one demand is drawn and subtracted, flooring at 0
//   - the result is clamped to [0, MaxStock]
//   - a notification for SystemUserID is raised iff the pre-tick quantity
//     was above SafetyStock and the result is in (0, SafetyStock]
//
// draw is called exactly once per product, in product order.
func Plan(products []inventory.Product, now time.Time, p Params, schedule inventory.RestockSchedule, draw func() int) Outcome {
	var out Outcome

	trigger, restock := schedule.Match(now)
	if restock {
		out.Trigger = &trigger
	}

	for _, prod := range products {
		before := prod.RemainingQty
		qty := before

		if restock {
			qty = min(qty+trigger.Qty, p.MaxStock)
			out.Restocked++
		}

		qty = max(qty-draw(), 0)
		qty = min(qty, p.MaxStock)

		if qty != before {
			out.Batch.Updates = append(out.Batch.Updates, inventory.StockUpdate{
				ProductID: prod.ID,
				Qty:       qty,
			})
		}

		if crossedSafetyStock(before, qty, p.SafetyStock) {
			id, name := prod.ID, prod.Name
			out.Batch.Notifications = append(out.Batch.Notifications, inventory.Notification{
				UserID:      inventory.SystemUserID,
				Message:     inventory.LowStockMessage(prod.Name, p.SafetyStock, qty),
				ProductID:   &id,
				ProductName: &name,
			})
		}
	}

	return out
}

// crossedSafetyStock is the edge trigger for low-stock notifications.
// A product that runs out entirely does not notify.
func crossedSafetyStock(before, after, safety int) bool {
	return before > safety && after > 0 && after <= safety
}
