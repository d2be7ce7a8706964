// usecase/workflow/state.go
package workflow

import (
	"sync"
	"time"

	"walletflow-service/internal/domain"
	"walletflow-service/internal/usecase/rail"
)

// Stage is the externally observable position of a flow. Transitions are
// handled exhaustively by the orchestrator; there is no string comparison
// anywhere in stage logic.
type Stage int

const (
	StageForm Stage = iota
	StageConfirm
	StageExecuting
	StageSuccess
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageForm:
		return "form"
	case StageConfirm:
		return "confirm"
	case StageExecuting:
		return "executing"
	case StageSuccess:
		return "success"
	case StageFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the only exit from this stage is leaving the
// flow. Failed is not terminal: the user may return to the form.
func (s Stage) Terminal() bool { return s == StageSuccess }

// Flow is the state of one transaction attempt. It lives in memory for the
// lifetime of the flow and is never persisted: an interrupted transaction is
// re-entered from scratch because partial local state cannot be trusted to
// match ledger state. Only the orchestrator mutates it.
type Flow struct {
	mu sync.Mutex

	id          string
	userID      string
	ownerWallet string
	stage       Stage

	intent      domain.TransactionIntent
	fingerprint string // intent fingerprint at reference mint time

	recipient    *domain.Recipient
	railDesc     *domain.RailDescriptor
	instructions *rail.Instructions

	record  *domain.TransactionRecord
	failure *domain.FlowError

	createdAt time.Time
	touchedAt time.Time
}

// Snapshot is a read-only view of a flow for handlers and event payloads.
type Snapshot struct {
	FlowID       string                    `json:"flow_id"`
	Stage        string                    `json:"stage"`
	Intent       domain.TransactionIntent  `json:"intent"`
	Recipient    *domain.Recipient         `json:"recipient,omitempty"`
	Instructions *rail.Instructions        `json:"instructions,omitempty"`
	Record       *domain.TransactionRecord `json:"record,omitempty"`
	Failure      *FailureView              `json:"failure,omitempty"`
}

// FailureView is what the user sees about a failure: the classified kind,
// the message, whether retry is offered, and whether their money is
// confirmed safe.
type FailureView struct {
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
	MoneySafe bool   `json:"money_safe"`
	Safety    string `json:"safety"`
}

func (f *Flow) snapshotLocked() *Snapshot {
	s := &Snapshot{
		FlowID:       f.id,
		Stage:        f.stage.String(),
		Intent:       f.intent,
		Recipient:    f.recipient,
		Instructions: f.instructions,
		Record:       f.record,
	}
	if f.failure != nil {
		s.Failure = &FailureView{
			Kind:      f.failure.Kind.String(),
			Message:   f.failure.Error(),
			Retryable: f.failure.Kind.Retryable(),
			MoneySafe: f.failure.Kind.MoneyConfirmedSafe(),
			Safety:    f.failure.Kind.SafetyMessage(),
		}
	}
	return s
}
