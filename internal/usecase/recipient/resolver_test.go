package recipient

import (
	"context"
	"errors"
	"testing"

	"walletflow-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeWalletLookup struct {
	recipient *domain.Recipient
	err       error
	calls     int
}

func (f *fakeWalletLookup) ResolveWallet(ctx context.Context, walletID string) (*domain.Recipient, error) {
	f.calls++
	return f.recipient, f.err
}

func TestValidWalletID(t *testing.T) {
	tests := []struct {
		walletID string
		want     bool
	}{
		{"123456", true},
		{"000000", true},
		{"12345", false},
		{"1234567", false},
		{"12345a", false},
		{"12 456", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidWalletID(tt.walletID), "walletID=%q", tt.walletID)
	}
}

func TestResolveBadFormatSkipsNetwork(t *testing.T) {
	lookup := &fakeWalletLookup{}
	r := NewResolver(lookup, zap.NewNop())

	_, err := r.Resolve(context.Background(), "12ab56")

	require.Error(t, err)
	assert.Equal(t, domain.FailInputInvalid, domain.ClassifyFlowError(err))
	assert.Zero(t, lookup.calls, "malformed ids must be rejected before any lookup")
}

func TestResolveFound(t *testing.T) {
	want := &domain.Recipient{ID: 7, DisplayName: "Jane", WalletID: "123456"}
	r := NewResolver(&fakeWalletLookup{recipient: want}, zap.NewNop())

	got, err := r.Resolve(context.Background(), "123456")

	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResolveNotFound(t *testing.T) {
	r := NewResolver(&fakeWalletLookup{err: domain.ErrRecipientNotFound}, zap.NewNop())

	_, err := r.Resolve(context.Background(), "999999")

	require.Error(t, err)
	assert.Equal(t, domain.FailCounterpartyNotFound, domain.ClassifyFlowError(err))
}

func TestResolveLedgerDownIsTransient(t *testing.T) {
	r := NewResolver(&fakeWalletLookup{err: errors.New("dial tcp: timeout")}, zap.NewNop())

	_, err := r.Resolve(context.Background(), "123456")

	require.Error(t, err)
	assert.Equal(t, domain.FailTransient, domain.ClassifyFlowError(err))
}

func TestResolveNoNegativeCache(t *testing.T) {
	lookup := &fakeWalletLookup{err: domain.ErrRecipientNotFound}
	r := NewResolver(lookup, zap.NewNop())

	_, _ = r.Resolve(context.Background(), "999999")
	_, _ = r.Resolve(context.Background(), "999999")

	assert.Equal(t, 2, lookup.calls, "a failed lookup must be retried on the next attempt")
}
