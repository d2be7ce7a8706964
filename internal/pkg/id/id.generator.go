package id

import (
	"crypto/rand"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// NewClientReference mints the idempotency token attached to a transaction
// intent. ULIDs are time-sortable, which keeps ledger-side dedup lookups
// cheap.
func NewClientReference() string {
	id := ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(rand.Reader, 0))
	return "REF-" + id.String()
}

// NewFlowID identifies one workflow instance for its in-memory lifetime.
func NewFlowID() string {
	return "FLW-" + uuid.New().String()
}
