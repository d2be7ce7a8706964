// usecase/executor/executor.go
package executor

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"walletflow-service/internal/domain"
	"walletflow-service/internal/ledger"

	"go.uber.org/zap"
)

// Submitter is the slice of the ledger client the executor needs.
type Submitter interface {
	SubmitTransfer(ctx context.Context, recipientWalletID string, amount float64, currency, clientReference string) (*domain.TransactionRecord, error)
	SubmitDeposit(ctx context.Context, accountID string, amount float64, currency, clientReference string) (*domain.TransactionRecord, error)
}

type Executor struct {
	ledger  Submitter
	timeout time.Duration
	logger  *zap.Logger
}

func New(ledger Submitter, timeout time.Duration, logger *zap.Logger) *Executor {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Executor{ledger: ledger, timeout: timeout, logger: logger}
}

// Execute submits a validated intent to the ledger. The intent's client
// reference rides on every attempt, so resubmitting after a timeout whose
// server-side outcome was success is detected as a duplicate, not a second
// charge. Failures come back as FlowError with one of:
//   - FailInputInvalid: the ledger rejected the shape of the request; the
//     user must change input.
//   - FailDeclined: business rejection; not retryable as-is.
//   - FailTransient: timeout or connectivity; retryable with the same
//     reference. Timeout expiry is always Transient, never Declined — the
//     ledger's true outcome is unknown.
//   - FailUnknown: unclassified transport fault, retryable.
func (e *Executor) Execute(ctx context.Context, intent *domain.TransactionIntent) (*domain.TransactionRecord, error) {
	if err := intent.Validate(); err != nil {
		return nil, domain.NewFlowError(domain.FailInputInvalid, err.Error(), err)
	}
	if intent.ClientReference == "" {
		return nil, domain.NewFlowError(domain.FailInputInvalid, "client reference missing", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	started := time.Now()
	var record *domain.TransactionRecord
	var err error
	switch intent.Kind {
	case domain.IntentTransfer:
		record, err = e.ledger.SubmitTransfer(ctx, intent.RecipientWalletID, intent.Amount, intent.Currency, intent.ClientReference)
	case domain.IntentDeposit:
		record, err = e.ledger.SubmitDeposit(ctx, intent.DepositAccountID, intent.Amount, intent.Currency, intent.ClientReference)
	default:
		return nil, domain.NewFlowError(domain.FailInputInvalid, fmt.Sprintf("unsupported intent kind %s", intent.Kind), nil)
	}

	if err != nil {
		classified := e.classify(err)
		e.logger.Error("execution failed",
			zap.String("kind", intent.Kind.String()),
			zap.String("client_reference", intent.ClientReference),
			zap.String("failure", classified.Kind.String()),
			zap.Duration("elapsed", time.Since(started)),
			zap.Error(err))
		return nil, classified
	}

	if record.Status == domain.StatusFailed {
		e.logger.Warn("ledger rejected transaction",
			zap.String("transaction_id", record.TransactionID),
			zap.String("client_reference", intent.ClientReference))
		return nil, domain.NewFlowError(domain.FailDeclined, domain.ErrLedgerDeclined.Error(), domain.ErrLedgerDeclined)
	}

	e.logger.Info("execution submitted",
		zap.String("transaction_id", record.TransactionID),
		zap.String("status", record.Status.String()),
		zap.String("client_reference", intent.ClientReference),
		zap.Duration("elapsed", time.Since(started)))
	return record, nil
}

func (e *Executor) classify(err error) *domain.FlowError {
	// Deadline or cancellation: outcome unknown, never assert decline.
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domain.NewFlowError(domain.FailTransient, "request timed out", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return domain.NewFlowError(domain.FailTransient, "network error", err)
	}

	var apiErr *ledger.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusBadRequest || apiErr.StatusCode == http.StatusUnprocessableEntity:
			return domain.NewFlowError(domain.FailInputInvalid, apiErr.Message, err)
		case apiErr.StatusCode == http.StatusPaymentRequired ||
			apiErr.StatusCode == http.StatusForbidden ||
			apiErr.StatusCode == http.StatusConflict:
			return domain.NewFlowError(domain.FailDeclined, apiErr.Message, err)
		case apiErr.StatusCode >= 500:
			return domain.NewFlowError(domain.FailTransient, "server unavailable", err)
		}
	}
	return domain.NewFlowError(domain.FailUnknown, "unexpected error", err)
}
