package balance

import (
	"context"
	"errors"
	"testing"
	"time"

	"walletflow-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeFetcher struct {
	bal *domain.Balance
	err error
}

func (f *fakeFetcher) GetProfile(ctx context.Context) (*domain.Balance, error) {
	return f.bal, f.err
}

type memStore struct {
	vals     map[string]*domain.Balance
	replaces int
}

func newMemStore() *memStore {
	return &memStore{vals: map[string]*domain.Balance{}}
}

func (s *memStore) Replace(ctx context.Context, userID string, bal *domain.Balance) error {
	s.replaces++
	s.vals[userID] = bal
	return nil
}

func (s *memStore) Get(ctx context.Context, userID string) (*domain.Balance, error) {
	return s.vals[userID], nil
}

func TestReconcileReplacesWholeValue(t *testing.T) {
	store := newMemStore()
	// Stale cached value that local arithmetic would have produced.
	store.vals["u1"] = &domain.Balance{Available: 950, Currency: "USD"}

	fetched := &domain.Balance{Available: 948.50, Currency: "USD", FetchedAt: time.Now()}
	r := NewReconciler(&fakeFetcher{bal: fetched}, store, zap.NewNop())

	got, err := r.Reconcile(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, fetched, got)

	cached, err := r.Cached(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 948.50, cached.Available,
		"cache must hold the server's value, not a locally computed one")
	assert.Equal(t, 1, store.replaces)
}

func TestReconcileFetchFailureKeepsCache(t *testing.T) {
	store := newMemStore()
	stale := &domain.Balance{Available: 1000, Currency: "USD"}
	store.vals["u1"] = stale

	r := NewReconciler(&fakeFetcher{err: errors.New("ledger down")}, store, zap.NewNop())

	_, err := r.Reconcile(context.Background(), "u1")
	require.Error(t, err)

	cached, err := r.Cached(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, stale, cached, "a failed refetch must not clobber the cache")
	assert.Zero(t, store.replaces)
}
