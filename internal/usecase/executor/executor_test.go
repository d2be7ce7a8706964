package executor

import (
	"context"
	"errors"
	"testing"
	"time"

	"walletflow-service/internal/domain"
	"walletflow-service/internal/ledger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeSubmitter simulates a ledger keyed on client reference the way the real
// one is: a reference that already applied returns the original record instead
// of applying again.
type fakeSubmitter struct {
	applied map[string]*domain.TransactionRecord
	fail    error
	delay   time.Duration
	calls   int
}

func newFakeSubmitter() *fakeSubmitter {
	return &fakeSubmitter{applied: map[string]*domain.TransactionRecord{}}
}

func (f *fakeSubmitter) submit(ctx context.Context, amount float64, currency, ref string) (*domain.TransactionRecord, error) {
	f.calls++
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.fail != nil {
		err := f.fail
		f.fail = nil
		return nil, err
	}
	if rec, ok := f.applied[ref]; ok {
		return rec, nil
	}
	rec := &domain.TransactionRecord{
		TransactionID: "TX-" + ref,
		Amount:        amount,
		NetAmount:     amount,
		Currency:      currency,
		Status:        domain.StatusVerified,
		CreatedAt:     time.Now(),
	}
	f.applied[ref] = rec
	return rec, nil
}

func (f *fakeSubmitter) SubmitTransfer(ctx context.Context, recipientWalletID string, amount float64, currency, ref string) (*domain.TransactionRecord, error) {
	return f.submit(ctx, amount, currency, ref)
}

func (f *fakeSubmitter) SubmitDeposit(ctx context.Context, accountID string, amount float64, currency, ref string) (*domain.TransactionRecord, error) {
	return f.submit(ctx, amount, currency, ref)
}

func transferIntent(ref string) *domain.TransactionIntent {
	return &domain.TransactionIntent{
		Kind:              domain.IntentTransfer,
		Amount:            50,
		Currency:          "USD",
		RecipientWalletID: "123456",
		ClientReference:   ref,
	}
}

func TestExecuteHappyPath(t *testing.T) {
	sub := newFakeSubmitter()
	e := New(sub, time.Second, zap.NewNop())

	rec, err := e.Execute(context.Background(), transferIntent("REF-1"))

	require.NoError(t, err)
	assert.Equal(t, domain.StatusVerified, rec.Status)
	assert.Equal(t, 50.0, rec.NetAmount)
	assert.True(t, rec.Submitted())
}

func TestExecuteSameReferenceAppliesOnce(t *testing.T) {
	sub := newFakeSubmitter()
	e := New(sub, time.Second, zap.NewNop())

	first, err := e.Execute(context.Background(), transferIntent("REF-1"))
	require.NoError(t, err)
	second, err := e.Execute(context.Background(), transferIntent("REF-1"))
	require.NoError(t, err)

	assert.Equal(t, first.TransactionID, second.TransactionID,
		"a resubmitted reference must surface the original transaction")
	assert.Len(t, sub.applied, 1, "the ledger must have applied exactly one transaction")
}

func TestExecuteTimeoutIsTransientThenRetrySucceeds(t *testing.T) {
	sub := newFakeSubmitter()
	sub.delay = 200 * time.Millisecond
	e := New(sub, 20*time.Millisecond, zap.NewNop())

	_, err := e.Execute(context.Background(), transferIntent("REF-1"))

	require.Error(t, err)
	kind := domain.ClassifyFlowError(err)
	assert.Equal(t, domain.FailTransient, kind, "timeout must never be reported as declined")
	assert.True(t, kind.Retryable())
	assert.False(t, kind.MoneyConfirmedSafe())

	sub.delay = 0
	rec, err := e.Execute(context.Background(), transferIntent("REF-1"))
	require.NoError(t, err)
	assert.Equal(t, "TX-REF-1", rec.TransactionID)
}

func TestExecuteMissingReferenceRejected(t *testing.T) {
	sub := newFakeSubmitter()
	e := New(sub, time.Second, zap.NewNop())

	_, err := e.Execute(context.Background(), transferIntent(""))

	require.Error(t, err)
	assert.Equal(t, domain.FailInputInvalid, domain.ClassifyFlowError(err))
	assert.Zero(t, sub.calls)
}

func TestExecuteClassifiesLedgerErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind domain.FailureKind
	}{
		{"bad request", &ledger.APIError{StatusCode: 400, Message: "bad amount"}, domain.FailInputInvalid},
		{"insufficient funds", &ledger.APIError{StatusCode: 402, Message: "insufficient funds"}, domain.FailDeclined},
		{"forbidden", &ledger.APIError{StatusCode: 403, Message: "limits exceeded"}, domain.FailDeclined},
		{"server down", &ledger.APIError{StatusCode: 503, Message: "unavailable"}, domain.FailTransient},
		{"unclassified", errors.New("mystery"), domain.FailUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := newFakeSubmitter()
			sub.fail = tt.err
			e := New(sub, time.Second, zap.NewNop())

			_, err := e.Execute(context.Background(), transferIntent("REF-1"))

			require.Error(t, err)
			assert.Equal(t, tt.wantKind, domain.ClassifyFlowError(err))
		})
	}
}

func TestExecuteLedgerStatusFailedIsDeclined(t *testing.T) {
	sub := newFakeSubmitter()
	sub.applied["REF-1"] = &domain.TransactionRecord{
		TransactionID: "TX-REF-1",
		Status:        domain.StatusFailed,
	}
	e := New(sub, time.Second, zap.NewNop())

	_, err := e.Execute(context.Background(), transferIntent("REF-1"))

	require.Error(t, err)
	assert.Equal(t, domain.FailDeclined, domain.ClassifyFlowError(err))
}
