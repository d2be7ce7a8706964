// device/export.go
package device

import (
	"context"

	"walletflow-service/internal/usecase/receipt"

	"go.uber.org/zap"
)

// ExportOutcome reports which path a receipt export took. The text path is
// a designed-in degraded mode, so every outcome here is a success.
type ExportOutcome struct {
	Format    string `json:"format"` // "image" or "text"
	Delivered bool   `json:"delivered"`
	Cancelled bool   `json:"cancelled"`
	URL       string `json:"url,omitempty"`
	Text      string `json:"text,omitempty"`
}

// DialOutcome reports how a USSD code was surfaced to the user. Dialing is
// a convenience; "copied" and "manual" complete the deposit just as well.
type DialOutcome struct {
	Code   string `json:"code"`
	Method string `json:"method"` // "dialed", "copied" or "manual"
}

// Exporter drives the device surfaces with their fallback ladder.
type Exporter struct {
	share  ShareSurface
	dialer Dialer
	clip   Clipboard
	logger *zap.Logger
}

func NewExporter(share ShareSurface, dialer Dialer, clip Clipboard, logger *zap.Logger) *Exporter {
	if dialer == nil {
		dialer = NoTelephonyDialer{}
	}
	if clip == nil {
		clip = &BufferClipboard{}
	}
	return &Exporter{share: share, dialer: dialer, clip: clip, logger: logger}
}

// ExportReceipt renders the receipt and hands it to the share surface,
// preferring the image artifact and falling back to plain text when image
// rendering or sharing is unavailable. Share cancellation is passed through
// as a normal outcome.
func (e *Exporter) ExportReceipt(ctx context.Context, rc *receipt.Receipt) (*ExportOutcome, error) {
	outcome := &ExportOutcome{Format: "image"}

	artifact := Artifact{
		Filename: "receipt-" + rc.TransactionID + ".png",
		MIME:     "image/png",
	}
	img, err := rc.RenderImage()
	if err != nil {
		e.logger.Warn("receipt image render failed, using text fallback",
			zap.String("transaction_id", rc.TransactionID),
			zap.Error(err))
		outcome.Format = "text"
	} else {
		artifact.Data = img
	}

	if outcome.Format == "text" {
		artifact = Artifact{
			Filename: "receipt-" + rc.TransactionID + ".txt",
			MIME:     "text/plain",
			Text:     rc.RenderText(),
		}
		outcome.Text = artifact.Text
	}

	if e.share == nil {
		outcome.Format = "text"
		outcome.Text = rc.RenderText()
		return outcome, nil
	}

	result, err := e.share.Share(ctx, artifact)
	switch {
	case err != nil || result == ShareUnavailable:
		if err != nil {
			e.logger.Warn("share surface failed, using text fallback",
				zap.String("transaction_id", rc.TransactionID),
				zap.Error(err))
		}
		outcome.Format = "text"
		outcome.Text = rc.RenderText()
	case result == ShareCancelled:
		outcome.Cancelled = true
	default:
		outcome.Delivered = true
	}

	if fs, ok := e.share.(*FileShare); ok && outcome.Delivered {
		outcome.URL = fs.LastURL()
	}
	return outcome, nil
}

// OfferDial tries to place a USSD call and steps down the fallback ladder:
// dial, copy to clipboard, show for manual entry.
func (e *Exporter) OfferDial(code string) DialOutcome {
	if err := e.dialer.Dial(code); err == nil {
		return DialOutcome{Code: code, Method: "dialed"}
	}
	if err := e.clip.Copy(code); err == nil {
		e.logger.Info("ussd code copied to clipboard", zap.String("code", code))
		return DialOutcome{Code: code, Method: "copied"}
	}
	return DialOutcome{Code: code, Method: "manual"}
}

// CopyText exposes the clipboard to callers copying addresses and
// reference numbers.
func (e *Exporter) CopyText(text string) error {
	return e.clip.Copy(text)
}
