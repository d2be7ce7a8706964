// usecase/recipient/resolver.go
package recipient

import (
	"context"
	"errors"

	"walletflow-service/internal/domain"

	"go.uber.org/zap"
)

const walletIDLength = 6

// WalletLookup is the slice of the ledger client this resolver needs.
type WalletLookup interface {
	ResolveWallet(ctx context.Context, walletID string) (*domain.Recipient, error)
}

type Resolver struct {
	ledger WalletLookup
	logger *zap.Logger
}

func NewResolver(ledger WalletLookup, logger *zap.Logger) *Resolver {
	return &Resolver{ledger: ledger, logger: logger}
}

// ValidWalletID checks the local format rule: exactly six digits.
func ValidWalletID(walletID string) bool {
	if len(walletID) != walletIDLength {
		return false
	}
	for _, r := range walletID {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Resolve maps a wallet id to a counterparty. Format is validated locally
// before any network call; negative lookups are not cached, so a corrected
// digit always re-resolves.
func (r *Resolver) Resolve(ctx context.Context, walletID string) (*domain.Recipient, error) {
	if !ValidWalletID(walletID) {
		return nil, domain.NewFlowError(domain.FailInputInvalid, domain.ErrWalletIDFormat.Error(), domain.ErrWalletIDFormat)
	}

	recipient, err := r.ledger.ResolveWallet(ctx, walletID)
	if err != nil {
		if errors.Is(err, domain.ErrRecipientNotFound) {
			r.logger.Info("recipient not found",
				zap.String("wallet_id", walletID))
			return nil, domain.NewFlowError(domain.FailCounterpartyNotFound, "recipient not found", err)
		}
		r.logger.Error("wallet lookup failed",
			zap.String("wallet_id", walletID),
			zap.Error(err))
		return nil, domain.NewFlowError(domain.FailTransient, "could not reach the server, try again", err)
	}

	r.logger.Info("recipient resolved",
		zap.String("wallet_id", walletID),
		zap.Int64("recipient_id", recipient.ID))
	return recipient, nil
}
