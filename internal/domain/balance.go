package domain

import "time"

// Balance is a snapshot of the authoritative account balance. The cached copy
// is only ever replaced wholesale; nothing in the client computes a balance
// from local deltas.
type Balance struct {
	Available float64   `json:"available"`
	Currency  string    `json:"currency"`
	FetchedAt time.Time `json:"fetched_at"`
}
