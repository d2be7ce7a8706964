// domain/intent.go
package domain

import (
	"errors"
	"fmt"
)

type IntentKind int

const (
	IntentTransfer IntentKind = iota
	IntentDeposit
)

func (k IntentKind) String() string {
	switch k {
	case IntentTransfer:
		return "transfer"
	case IntentDeposit:
		return "deposit"
	default:
		return "unknown"
	}
}

var (
	ErrAmountNotPositive   = errors.New("amount must be greater than zero")
	ErrRecipientRequired   = errors.New("recipient wallet id is required")
	ErrDepositAcctRequired = errors.New("deposit account is required")
	ErrCurrencyRequired    = errors.New("currency is required")
)

// TransactionIntent is the user-declared request before submission.
// ClientReference is minted once when the intent is formed and survives
// retries of the same intent; editing amount or destination mints a new one.
type TransactionIntent struct {
	Kind              IntentKind `json:"kind"`
	Amount            float64    `json:"amount"`
	Currency          string     `json:"currency"`
	RecipientWalletID string     `json:"recipient_wallet_id,omitempty"`
	DepositAccountID  string     `json:"deposit_account_id,omitempty"`
	ClientReference   string     `json:"client_reference"`
}

func (i *TransactionIntent) Validate() error {
	if i.Amount <= 0 {
		return ErrAmountNotPositive
	}
	if i.Currency == "" {
		return ErrCurrencyRequired
	}
	switch i.Kind {
	case IntentTransfer:
		if i.RecipientWalletID == "" {
			return ErrRecipientRequired
		}
	case IntentDeposit:
		if i.DepositAccountID == "" {
			return ErrDepositAcctRequired
		}
	}
	return nil
}

// Fingerprint identifies the user-editable fields of the intent. Two intents
// with the same fingerprint are "the same intent" for idempotency purposes:
// a retry keeps the client reference, an edit mints a new one.
func (i *TransactionIntent) Fingerprint() string {
	return fmt.Sprintf("%s|%.8f|%s|%s|%s",
		i.Kind, i.Amount, i.Currency, i.RecipientWalletID, i.DepositAccountID)
}
