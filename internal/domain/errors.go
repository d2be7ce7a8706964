// domain/errors.go
package domain

import "errors"

// FailureKind classifies everything that can go wrong between forming an
// intent and holding a receipt.
type FailureKind int

const (
	// FailInputInvalid: local validation, never reaches the network.
	FailInputInvalid FailureKind = iota
	// FailCounterpartyNotFound: wallet id did not resolve.
	FailCounterpartyNotFound
	// FailRailUnavailable: deposit rail descriptor could not be fetched.
	FailRailUnavailable
	// FailTransient: timeout or connectivity; retryable with the same
	// client reference.
	FailTransient
	// FailDeclined: business rejection from the ledger; not retryable.
	FailDeclined
	// FailUnknown: unclassified transport error; treated as retryable but
	// surfaced distinctly.
	FailUnknown
)

func (k FailureKind) String() string {
	switch k {
	case FailInputInvalid:
		return "input_invalid"
	case FailCounterpartyNotFound:
		return "counterparty_not_found"
	case FailRailUnavailable:
		return "rail_unavailable"
	case FailTransient:
		return "transient"
	case FailDeclined:
		return "declined"
	default:
		return "unknown"
	}
}

// Retryable reports whether resubmitting the same intent with the same
// client reference is a sane user action.
func (k FailureKind) Retryable() bool {
	return k == FailTransient || k == FailUnknown
}

// MoneyConfirmedSafe reports whether the user can be told nothing moved.
// On transient/unknown failures of a submitted request the true outcome is
// unprovable client-side and must be checked against transaction history.
func (k FailureKind) MoneyConfirmedSafe() bool {
	switch k {
	case FailInputInvalid, FailCounterpartyNotFound, FailRailUnavailable, FailDeclined:
		return true
	default:
		return false
	}
}

func (k FailureKind) SafetyMessage() string {
	if k.MoneyConfirmedSafe() {
		return "No money was moved."
	}
	return "The outcome of this request is unconfirmed. Check your transaction history before resubmitting."
}

// FlowError carries a classified failure through the workflow.
type FlowError struct {
	Kind FailureKind
	Msg  string
	Err  error
}

func (e *FlowError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *FlowError) Unwrap() error { return e.Err }

func NewFlowError(kind FailureKind, msg string, err error) *FlowError {
	return &FlowError{Kind: kind, Msg: msg, Err: err}
}

// ClassifyFlowError extracts the failure kind, defaulting conservatively to
// FailUnknown for anything unclassified.
func ClassifyFlowError(err error) FailureKind {
	var fe *FlowError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return FailUnknown
}

// Resolution and lookup
var (
	ErrWalletIDFormat    = errors.New("wallet id must be exactly 6 digits")
	ErrRecipientNotFound = errors.New("recipient not found")
	ErrRailNotFound      = errors.New("no payment rail configured for this account")
	ErrSelfTransfer      = errors.New("cannot transfer to your own wallet")
)

// Workflow state machine
var (
	ErrFlowNotFound      = errors.New("flow not found")
	ErrStageConflict     = errors.New("operation not valid in current stage")
	ErrNotRetryable      = errors.New("this failure is not retryable")
	ErrRecipientPending  = errors.New("recipient has not been resolved")
	ErrRailPending       = errors.New("payment instructions have not been fetched")
	ErrFlowTerminal      = errors.New("flow already completed")
)

// Session / transport
var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrLedgerDeclined = errors.New("transaction declined by ledger")
)
