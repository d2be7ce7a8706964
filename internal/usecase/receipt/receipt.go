// usecase/receipt/receipt.go
package receipt

import (
	"fmt"
	"strings"
	"time"

	"walletflow-service/internal/domain"
)

// Receipt is the canonical, rail-agnostic record handed to export paths.
// Building it from the same TransactionRecord always yields the same value,
// so rendering is idempotent by construction.
type Receipt struct {
	Header        string    `json:"header"`
	TransactionID string    `json:"transaction_id"`
	GrossAmount   float64   `json:"gross_amount"`
	Fee           float64   `json:"fee"`
	NetAmount     float64   `json:"net_amount"`
	Currency      string    `json:"currency"`
	StatusLabel   string    `json:"status_label"`
	Timestamp     time.Time `json:"timestamp"`
}

// Build derives the canonical receipt from the ledger record plus intent
// context. The header names the counterparty for transfers and the rail
// destination for deposits; a rail's payment details (addresses, dial codes)
// belong to payment instructions, not to the settled receipt.
func Build(record *domain.TransactionRecord, intent *domain.TransactionIntent, counterparty *domain.Recipient) *Receipt {
	header := record.DestinationSummary
	if header == "" {
		switch {
		case counterparty != nil:
			header = counterparty.DisplayName
		case intent != nil && intent.Kind == domain.IntentDeposit:
			header = "Deposit"
		default:
			header = "Transfer"
		}
	}

	return &Receipt{
		Header:        header,
		TransactionID: record.TransactionID,
		GrossAmount:   record.Amount,
		Fee:           record.Fee,
		NetAmount:     record.NetAmount,
		Currency:      record.Currency,
		StatusLabel:   statusLabel(record.Status),
		Timestamp:     record.CreatedAt.UTC(),
	}
}

func statusLabel(s domain.RecordStatus) string {
	switch s {
	case domain.StatusVerified:
		return "Verified"
	case domain.StatusPending:
		return "Pending verification"
	default:
		return "Failed"
	}
}

// Lines renders the receipt as ordered label/value pairs shared by both
// export paths. Identical input yields byte-identical output.
func (r *Receipt) Lines() []string {
	return []string{
		r.Header,
		"",
		fmt.Sprintf("Transaction ID: %s", r.TransactionID),
		fmt.Sprintf("Amount:         %s", formatMoney(r.GrossAmount, r.Currency)),
		fmt.Sprintf("Fee:            %s", formatMoney(r.Fee, r.Currency)),
		fmt.Sprintf("Net amount:     %s", formatMoney(r.NetAmount, r.Currency)),
		fmt.Sprintf("Status:         %s", r.StatusLabel),
		fmt.Sprintf("Date:           %s", r.Timestamp.Format("2006-01-02 15:04:05 MST")),
	}
}

// RenderText is the plain-text export path. It is a designed-in degraded
// path for when image capture or the share mechanism is unavailable, never
// an error condition.
func (r *Receipt) RenderText() string {
	return strings.Join(r.Lines(), "\n") + "\n"
}

func formatMoney(amount float64, currency string) string {
	if currency == "" {
		return fmt.Sprintf("%.2f", amount)
	}
	return fmt.Sprintf("%.2f %s", amount, currency)
}
