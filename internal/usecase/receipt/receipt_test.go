package receipt

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"walletflow-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func verifiedRecord() *domain.TransactionRecord {
	return &domain.TransactionRecord{
		TransactionID:      "TX-01HQZX",
		Amount:             50,
		Fee:                0.75,
		NetAmount:          49.25,
		Currency:           "USD",
		Status:             domain.StatusVerified,
		DestinationSummary: "Jane (wallet 123456)",
		CreatedAt:          time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
	}
}

func TestBuildHeaderSelection(t *testing.T) {
	rec := verifiedRecord()
	r := Build(rec, nil, nil)
	assert.Equal(t, "Jane (wallet 123456)", r.Header)

	rec.DestinationSummary = ""
	r = Build(rec, nil, &domain.Recipient{DisplayName: "Jane"})
	assert.Equal(t, "Jane", r.Header)

	r = Build(rec, &domain.TransactionIntent{Kind: domain.IntentDeposit}, nil)
	assert.Equal(t, "Deposit", r.Header)

	r = Build(rec, nil, nil)
	assert.Equal(t, "Transfer", r.Header)
}

func TestRenderTextDeterministic(t *testing.T) {
	rec := verifiedRecord()

	first := Build(rec, nil, nil).RenderText()
	second := Build(rec, nil, nil).RenderText()

	assert.Equal(t, first, second, "same record must render the same text")
	assert.Contains(t, first, "TX-01HQZX")
	assert.Contains(t, first, "50.00 USD")
	assert.Contains(t, first, "0.75 USD")
	assert.Contains(t, first, "49.25 USD")
	assert.Contains(t, first, "Verified")
	assert.True(t, strings.HasSuffix(first, "\n"))
}

func TestRenderImageDeterministic(t *testing.T) {
	r := Build(verifiedRecord(), nil, nil)

	first, err := r.RenderImage()
	require.NoError(t, err)
	second, err := r.RenderImage()
	require.NoError(t, err)

	assert.True(t, bytes.Equal(first, second), "same receipt must render identical bytes")
	assert.True(t, bytes.HasPrefix(first, []byte("\x89PNG\r\n\x1a\n")), "output must be a PNG")
}

func TestPendingStatusLabel(t *testing.T) {
	rec := verifiedRecord()
	rec.Status = domain.StatusPending

	r := Build(rec, nil, nil)
	assert.Equal(t, "Pending verification", r.StatusLabel)
	assert.Contains(t, r.RenderText(), "Pending verification")
}

func TestReceiptOmitsPaymentDetails(t *testing.T) {
	// Deposit over a crypto rail: the settled receipt carries the ledger's
	// summary, never the deposit address.
	rec := verifiedRecord()
	rec.DestinationSummary = "Crypto deposit (BTC)"
	intent := &domain.TransactionIntent{Kind: domain.IntentDeposit, DepositAccountID: "acct-9"}

	text := Build(rec, intent, nil).RenderText()

	assert.NotContains(t, text, "acct-9")
	assert.Contains(t, text, "Crypto deposit (BTC)")
}
