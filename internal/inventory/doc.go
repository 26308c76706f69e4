// Package inventory provides the domain types shared by the stock scheduler,
// the forecast engine and the store adapter.
//
// This package contains value types and pure helpers only. All other internal
// packages import inventory; inventory imports nothing internal.
//
// Key constraints:
//   - Quantities are plain ints bounded by [0, MaxStock] at commit boundaries
//   - The restock schedule is immutable once built
//   - UserID 0 on a Notification means broadcast/system
//   - All JSON and db tags use snake_case
package inventory
