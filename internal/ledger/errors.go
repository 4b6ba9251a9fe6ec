// Package ledger owns the live order state: one session per open
// table, the lifecycle of its lines and the finalize-to-receipt path.
// All mutations to one table are serialized; tables are independent.
package ledger

import (
	"errors"
	"fmt"
)

// ErrTableNotFound is returned when an operation references a table
// with no open session.  Handlers should translate this into a 404.
var ErrTableNotFound = errors.New("table not found")

// ErrItemNotFound is returned when a status change references an
// unknown line id.  Handlers should translate this into a 404.
var ErrItemNotFound = errors.New("item not found")

// ErrNotPending is returned when a status change targets a line that
// is already done or cancelled.  Recoverable caller error.
var ErrNotPending = errors.New("item not pending")

// ErrItemsPending is the sentinel matched by errors.Is for a refused
// finalize; the concrete error is a PendingError carrying the count.
var ErrItemsPending = errors.New("items pending")

// PendingError reports how many lines still block a finalize.  The
// refused finalize performs no mutation.
type PendingError struct {
	Count int
}

func (e *PendingError) Error() string {
	return fmt.Sprintf("finalize refused: %d items pending", e.Count)
}

// Is lets errors.Is(err, ErrItemsPending) match a PendingError.
func (e *PendingError) Is(target error) bool { return target == ErrItemsPending }
