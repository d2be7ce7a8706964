// ledger/submit.go
package ledger

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"walletflow-service/internal/domain"
)

type recordResponse struct {
	TransactionID      string    `json:"transaction_id"`
	Amount             float64   `json:"amount"`
	Fee                float64   `json:"fee"`
	NetAmount          float64   `json:"net_amount"`
	Currency           string    `json:"currency"`
	Status             string    `json:"status"`
	DestinationSummary string    `json:"destination_summary"`
	CreatedAt          time.Time `json:"created_at"`
}

func (r *recordResponse) toDomain() (*domain.TransactionRecord, error) {
	status, ok := domain.ParseRecordStatus(r.Status)
	if !ok {
		return nil, fmt.Errorf("unrecognized transaction status %q", r.Status)
	}
	return &domain.TransactionRecord{
		TransactionID:      r.TransactionID,
		Amount:             r.Amount,
		Fee:                r.Fee,
		NetAmount:          r.NetAmount,
		Currency:           r.Currency,
		Status:             status,
		DestinationSummary: r.DestinationSummary,
		CreatedAt:          r.CreatedAt,
	}, nil
}

// SubmitTransfer submits a wallet-to-wallet transfer. The client reference
// rides on every submission so the ledger can deduplicate a resend of a
// request that already succeeded server-side.
func (c *Client) SubmitTransfer(ctx context.Context, recipientWalletID string, amount float64, currency, clientReference string) (*domain.TransactionRecord, error) {
	payload := map[string]interface{}{
		"recipient_wallet_id": recipientWalletID,
		"amount":              amount,
		"currency":            currency,
		"client_reference":    clientReference,
	}
	var res recordResponse
	if err := c.doJSON(ctx, http.MethodPost, "/transactions/transfer", payload, &res); err != nil {
		return nil, err
	}
	return res.toDomain()
}

// SubmitDeposit records a deposit claim against the selected rail account.
func (c *Client) SubmitDeposit(ctx context.Context, accountID string, amount float64, currency, clientReference string) (*domain.TransactionRecord, error) {
	payload := map[string]interface{}{
		"account_id":       accountID,
		"amount":           amount,
		"currency":         currency,
		"client_reference": clientReference,
	}
	var res recordResponse
	if err := c.doJSON(ctx, http.MethodPost, "/transactions/deposit", payload, &res); err != nil {
		return nil, err
	}
	return res.toDomain()
}
