// usecase/rail/resolver.go
package rail

import (
	"context"
	"errors"
	"fmt"

	"walletflow-service/internal/domain"

	"go.uber.org/zap"
)

// RailLookup is the slice of the ledger client this resolver needs.
type RailLookup interface {
	GetRail(ctx context.Context, accountID string) (*domain.RailDescriptor, error)
}

type Resolver struct {
	ledger RailLookup
	logger *zap.Logger
}

func NewResolver(ledger RailLookup, logger *zap.Logger) *Resolver {
	return &Resolver{ledger: ledger, logger: logger}
}

// Resolve fetches the payment rail descriptor for a deposit account. The
// orchestrator never branches on the category; everything rail-specific is
// carried in the descriptor and the Instructions built from it.
func (r *Resolver) Resolve(ctx context.Context, accountID string) (*domain.RailDescriptor, error) {
	if accountID == "" {
		return nil, domain.NewFlowError(domain.FailInputInvalid, domain.ErrDepositAcctRequired.Error(), domain.ErrDepositAcctRequired)
	}

	desc, err := r.ledger.GetRail(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrRailNotFound) {
			r.logger.Warn("no rail for account",
				zap.String("account_id", accountID))
			return nil, domain.NewFlowError(domain.FailRailUnavailable, "payment instructions unavailable for this account", err)
		}
		r.logger.Error("rail fetch failed",
			zap.String("account_id", accountID),
			zap.Error(err))
		return nil, domain.NewFlowError(domain.FailTransient, "could not fetch payment instructions, try again", err)
	}

	r.logger.Info("rail resolved",
		zap.String("account_id", accountID),
		zap.String("category", desc.Category.String()))
	return desc, nil
}

// Instructions flattens a descriptor into the render-ready payment steps for
// the given amount. Dialing, copying and scanning are conveniences offered by
// the caller; none of them is a precondition for completing the deposit.
type Instructions struct {
	Category      domain.RailCategory `json:"category"`
	Fields        map[string]string   `json:"fields,omitempty"`
	DialCode      string              `json:"dial_code,omitempty"`
	WalletAddress string              `json:"wallet_address,omitempty"`
	Network       string              `json:"network,omitempty"`
	Notes         string              `json:"notes,omitempty"`
}

func (r *Resolver) Instructions(desc *domain.RailDescriptor, amount float64) (*Instructions, error) {
	ins := &Instructions{
		Category: desc.Category,
		Fields:   desc.Fields,
		Notes:    desc.FreeTextInstructions,
	}

	switch desc.Category {
	case domain.RailMobileMoney:
		code, err := FormatUSSD(desc.DialCode, amount)
		if err != nil {
			return nil, fmt.Errorf("format dial code: %w", err)
		}
		ins.DialCode = code
	case domain.RailCrypto:
		// Contract: the raw address string, unmodified. QR encoding is a
		// presentation concern.
		ins.WalletAddress = desc.WalletAddress
		ins.Network = desc.Network
	case domain.RailBank:
		// Named fields only, no transformation.
	}
	return ins, nil
}
