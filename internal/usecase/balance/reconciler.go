// usecase/balance/reconciler.go
package balance

import (
	"context"

	"walletflow-service/internal/domain"

	"go.uber.org/zap"
)

// ProfileFetcher is the slice of the ledger client the reconciler needs.
type ProfileFetcher interface {
	GetProfile(ctx context.Context) (*domain.Balance, error)
}

// Store holds the cached balance for a session. Writes are whole-value
// replacements; there is deliberately no increment/decrement operation.
type Store interface {
	Replace(ctx context.Context, userID string, bal *domain.Balance) error
	Get(ctx context.Context, userID string) (*domain.Balance, error)
}

type Reconciler struct {
	ledger ProfileFetcher
	store  Store
	logger *zap.Logger
}

func NewReconciler(ledger ProfileFetcher, store Store, logger *zap.Logger) *Reconciler {
	return &Reconciler{ledger: ledger, store: store, logger: logger}
}

// Reconcile refetches the authoritative balance and replaces the cached
// value. It is observational: callers fire it after state-changing
// operations and when returning to balance-displaying screens, and they
// never block stage progression on its outcome.
func (r *Reconciler) Reconcile(ctx context.Context, userID string) (*domain.Balance, error) {
	bal, err := r.ledger.GetProfile(ctx)
	if err != nil {
		r.logger.Warn("balance refetch failed",
			zap.String("user_id", userID),
			zap.Error(err))
		return nil, err
	}

	if err := r.store.Replace(ctx, userID, bal); err != nil {
		r.logger.Warn("balance cache replace failed",
			zap.String("user_id", userID),
			zap.Error(err))
		return bal, err
	}

	r.logger.Info("balance reconciled",
		zap.String("user_id", userID),
		zap.Float64("available", bal.Available),
		zap.String("currency", bal.Currency))
	return bal, nil
}

// Cached returns the last reconciled balance, if any.
func (r *Reconciler) Cached(ctx context.Context, userID string) (*domain.Balance, error) {
	return r.store.Get(ctx, userID)
}
