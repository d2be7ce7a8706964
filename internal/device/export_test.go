package device

import (
	"context"
	"errors"
	"testing"
	"time"

	"walletflow-service/internal/domain"
	"walletflow-service/internal/usecase/receipt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeShare struct {
	result    ShareResult
	err       error
	artifacts []Artifact
}

func (f *fakeShare) Share(ctx context.Context, artifact Artifact) (ShareResult, error) {
	f.artifacts = append(f.artifacts, artifact)
	return f.result, f.err
}

type okDialer struct{ dialed []string }

func (d *okDialer) Dial(code string) error {
	d.dialed = append(d.dialed, code)
	return nil
}

type brokenClipboard struct{}

func (brokenClipboard) Copy(string) error { return errors.New("no clipboard") }

func testReceipt() *receipt.Receipt {
	return receipt.Build(&domain.TransactionRecord{
		TransactionID:      "TX-7",
		Amount:             50,
		NetAmount:          50,
		Currency:           "USD",
		Status:             domain.StatusVerified,
		DestinationSummary: "Jane (wallet 123456)",
		CreatedAt:          time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
	}, nil, nil)
}

func TestExportReceiptImageDelivered(t *testing.T) {
	share := &fakeShare{result: ShareDelivered}
	e := NewExporter(share, nil, nil, zap.NewNop())

	out, err := e.ExportReceipt(context.Background(), testReceipt())

	require.NoError(t, err)
	assert.Equal(t, "image", out.Format)
	assert.True(t, out.Delivered)
	require.Len(t, share.artifacts, 1)
	assert.Equal(t, "image/png", share.artifacts[0].MIME)
	assert.NotEmpty(t, share.artifacts[0].Data)
}

func TestExportReceiptCancelledIsNotAnError(t *testing.T) {
	share := &fakeShare{result: ShareCancelled}
	e := NewExporter(share, nil, nil, zap.NewNop())

	out, err := e.ExportReceipt(context.Background(), testReceipt())

	require.NoError(t, err)
	assert.True(t, out.Cancelled)
	assert.False(t, out.Delivered)
}

func TestExportReceiptShareFailureFallsBackToText(t *testing.T) {
	share := &fakeShare{err: errors.New("share broke")}
	e := NewExporter(share, nil, nil, zap.NewNop())

	out, err := e.ExportReceipt(context.Background(), testReceipt())

	require.NoError(t, err, "degrading to text is a success, not an error")
	assert.Equal(t, "text", out.Format)
	assert.Contains(t, out.Text, "TX-7")
	assert.Contains(t, out.Text, "Jane (wallet 123456)")
}

func TestExportReceiptNoShareSurface(t *testing.T) {
	e := NewExporter(nil, nil, nil, zap.NewNop())

	out, err := e.ExportReceipt(context.Background(), testReceipt())

	require.NoError(t, err)
	assert.Equal(t, "text", out.Format)
	assert.NotEmpty(t, out.Text)
}

func TestOfferDialLadder(t *testing.T) {
	t.Run("telephony available", func(t *testing.T) {
		dialer := &okDialer{}
		e := NewExporter(nil, dialer, nil, zap.NewNop())

		out := e.OfferDial("*123*25.00#")

		assert.Equal(t, "dialed", out.Method)
		assert.Equal(t, []string{"*123*25.00#"}, dialer.dialed)
	})

	t.Run("no telephony falls back to clipboard", func(t *testing.T) {
		clip := &BufferClipboard{}
		e := NewExporter(nil, NoTelephonyDialer{}, clip, zap.NewNop())

		out := e.OfferDial("*123*25.00#")

		assert.Equal(t, "copied", out.Method)
		assert.Equal(t, "*123*25.00#", clip.Last())
	})

	t.Run("no telephony no clipboard shows manual entry", func(t *testing.T) {
		e := NewExporter(nil, NoTelephonyDialer{}, brokenClipboard{}, zap.NewNop())

		out := e.OfferDial("*123*25.00#")

		assert.Equal(t, "manual", out.Method)
		assert.Equal(t, "*123*25.00#", out.Code)
	})
}

func TestFileShareWritesArtifact(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileShare(dir, "/walletflow/svc/uploads")
	require.NoError(t, err)
	e := NewExporter(fs, nil, nil, zap.NewNop())

	out, err := e.ExportReceipt(context.Background(), testReceipt())
	require.NoError(t, err)
	assert.True(t, out.Delivered)
	assert.Equal(t, "/walletflow/svc/uploads/receipt-TX-7.png", out.URL)
}
