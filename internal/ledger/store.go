package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store is the durable usage-record store.
//
// Mutate runs fn with the (userID, day) record under mutual exclusion against
// other Mutate calls for the same key. If the record does not exist it is
// created first, with ChargedCount zero and EverPages carried forward from
// the user's most recent prior record. fn receives a private copy: changes
// are persisted only when fn returns write=true (or when the record was just
// created), so a decision that ends in a denial leaves no trace.
//
// Get returns the record for exactly (userID, day), or nil if none exists.
type Store interface {
	Mutate(ctx context.Context, userID uuid.UUID, day time.Time, fn func(rec *DailyUsage) (write bool, err error)) error
	Get(ctx context.Context, userID uuid.UUID, day time.Time) (*DailyUsage, error)
}
