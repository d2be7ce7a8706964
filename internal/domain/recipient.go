package domain

// Recipient is a resolved transfer counterparty. It is immutable once
// attached to an intent and never outlives the workflow that resolved it.
type Recipient struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"display_name"`
	WalletID    string `json:"wallet_id"`
}
