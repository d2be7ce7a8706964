// domain/record.go
package domain

import "time"

type RecordStatus int

const (
	StatusPending RecordStatus = iota
	StatusVerified
	StatusFailed
)

func (s RecordStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusVerified:
		return "verified"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

func ParseRecordStatus(s string) (RecordStatus, bool) {
	switch s {
	case "pending", "processing":
		return StatusPending, true
	case "verified", "completed", "success":
		return StatusVerified, true
	case "failed", "rejected", "declined":
		return StatusFailed, true
	default:
		return 0, false
	}
}

// TransactionRecord is the authoritative result returned by the ledger after
// execution. The client holds a read-only copy for the lifetime of the
// success/receipt stage; TransactionID is the join key for receipts and any
// later status polling.
type TransactionRecord struct {
	TransactionID      string       `json:"transaction_id"`
	Amount             float64      `json:"amount"`
	Fee                float64      `json:"fee"`
	NetAmount          float64      `json:"net_amount"`
	Currency           string       `json:"currency"`
	Status             RecordStatus `json:"status"`
	DestinationSummary string       `json:"destination_summary"`
	CreatedAt          time.Time    `json:"created_at"`
}

// Submitted reports whether the ledger accepted the transaction. Pending vs
// verified is a display distinction, not a workflow one.
func (r *TransactionRecord) Submitted() bool {
	return r.Status == StatusVerified || r.Status == StatusPending
}
