// Package engine implements the stock update scheduler.
//
// The scheduler runs as one long-lived goroutine. Every UpdateInterval it
// executes a tick:
//
//  1. Snapshot read of every product (id, name, remaining_qty) with a short
//     timeout and no lock. A failed read skips the tick.
//  2. Compute pass (Plan), a pure function of the snapshot, the wall clock,
//     the parameters, the restock schedule and a demand source:
//     restock on an exact (hour, minute) trigger match, subtract one random
//     demand draw, floor at 0, clamp to MaxStock, and raise a low-stock
//     notification when the quantity crosses SafetyStock from above.
//  3. Commit of the resulting batch as one transaction under the write gate,
//     with a bounded timeout. Any failure rolls back the whole batch.
//
// Ticks never overlap. A foreground write that lands between the snapshot
// and the commit of a tick is overwritten by that tick; this last-writer-wins
// race is accepted.
//
// Missed triggers are not caught up: if no tick happens during a trigger's
// minute, that restock is skipped.
package engine
