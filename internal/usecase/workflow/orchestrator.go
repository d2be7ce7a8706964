// usecase/workflow/orchestrator.go
package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"walletflow-service/internal/domain"
	"walletflow-service/internal/usecase/rail"
	"walletflow-service/internal/usecase/receipt"

	"go.uber.org/zap"
)

// RecipientResolver resolves transfer counterparties.
type RecipientResolver interface {
	Resolve(ctx context.Context, walletID string) (*domain.Recipient, error)
}

// RailResolver fetches and formats deposit payment instructions.
type RailResolver interface {
	Resolve(ctx context.Context, accountID string) (*domain.RailDescriptor, error)
	Instructions(desc *domain.RailDescriptor, amount float64) (*rail.Instructions, error)
}

// TransactionExecutor submits a validated intent to the ledger.
type TransactionExecutor interface {
	Execute(ctx context.Context, intent *domain.TransactionIntent) (*domain.TransactionRecord, error)
}

// BalanceReconciler replaces the cached balance with a fresh fetch.
type BalanceReconciler interface {
	Reconcile(ctx context.Context, userID string) (*domain.Balance, error)
}

// ReceiptArchiver persists the canonical receipt. Archival failures are
// logged and swallowed.
type ReceiptArchiver interface {
	Save(ctx context.Context, userID string, rc *receipt.Receipt) error
}

// ReferenceMinter issues client references. A reference is minted once per
// intent and reused verbatim on retries of the same intent.
type ReferenceMinter func() string

// Orchestrator owns every stage transition of the money-movement workflow:
//
//	Form -> Confirm -> Executing -> {Success | Failed}
//
// Failed may return to Form with inputs preserved. Success is terminal.
// It is the only component that mutates flow state; the resolvers, executor
// and reconciler are request/response functions over their inputs.
type Orchestrator struct {
	recipients RecipientResolver
	rails      RailResolver
	executor   TransactionExecutor
	reconciler BalanceReconciler
	archive    ReceiptArchiver
	notifier   Notifier
	mintRef    ReferenceMinter
	logger     *zap.Logger

	reconcileTimeout time.Duration
	idleTTL          time.Duration

	mu    sync.RWMutex
	flows map[string]*Flow
}

type Config struct {
	Recipients       RecipientResolver
	Rails            RailResolver
	Executor         TransactionExecutor
	Reconciler       BalanceReconciler
	Archive          ReceiptArchiver
	Notifier         Notifier
	MintRef          ReferenceMinter
	Logger           *zap.Logger
	ReconcileTimeout time.Duration
	IdleTTL          time.Duration
}

func NewOrchestrator(cfg Config) *Orchestrator {
	if cfg.Notifier == nil {
		cfg.Notifier = NopNotifier{}
	}
	if cfg.ReconcileTimeout <= 0 {
		cfg.ReconcileTimeout = 10 * time.Second
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 30 * time.Minute
	}
	return &Orchestrator{
		recipients:       cfg.Recipients,
		rails:            cfg.Rails,
		executor:         cfg.Executor,
		reconciler:       cfg.Reconciler,
		archive:          cfg.Archive,
		notifier:         cfg.Notifier,
		mintRef:          cfg.MintRef,
		logger:           cfg.Logger,
		reconcileTimeout: cfg.ReconcileTimeout,
		idleTTL:          cfg.IdleTTL,
		flows:            make(map[string]*Flow),
	}
}

// Start opens a new flow in the Form stage and mints the intent's client
// reference. ownerWallet is the session user's own wallet id, used to reject
// self-transfers; empty means unknown and the check is skipped.
func (o *Orchestrator) Start(userID, ownerWallet string, kind domain.IntentKind, flowID string) *Snapshot {
	now := time.Now()
	f := &Flow{
		id:          flowID,
		userID:      userID,
		ownerWallet: ownerWallet,
		stage:       StageForm,
		intent: domain.TransactionIntent{
			Kind:            kind,
			ClientReference: o.mintRef(),
		},
		createdAt: now,
		touchedAt: now,
	}
	f.fingerprint = f.intent.Fingerprint()
	snap := f.snapshotLocked()

	o.mu.Lock()
	o.flows[flowID] = f
	o.mu.Unlock()

	o.logger.Info("flow started",
		zap.String("flow_id", flowID),
		zap.String("user_id", userID),
		zap.String("kind", kind.String()),
		zap.String("client_reference", f.intent.ClientReference))
	return snap
}

// Authorize confirms the flow belongs to the session user.
func (o *Orchestrator) Authorize(flowID, userID string) error {
	f, err := o.get(flowID)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.userID != userID {
		return domain.ErrUnauthorized
	}
	return nil
}

func (o *Orchestrator) get(flowID string) (*Flow, error) {
	o.mu.RLock()
	f, ok := o.flows[flowID]
	o.mu.RUnlock()
	if !ok {
		return nil, domain.ErrFlowNotFound
	}
	f.mu.Lock()
	f.touchedAt = time.Now()
	f.mu.Unlock()
	return f, nil
}

// IntentUpdate carries the user-editable form fields.
type IntentUpdate struct {
	Amount            float64
	Currency          string
	RecipientWalletID string
	DepositAccountID  string
}

// UpdateIntent applies form edits. Changing the amount or the destination
// mints a fresh client reference and invalidates anything resolved against
// the old destination; resubmitting byte-identical input keeps the original
// reference so the ledger can deduplicate.
func (o *Orchestrator) UpdateIntent(flowID string, upd IntentUpdate) (*Snapshot, error) {
	f, err := o.get(flowID)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.stage.Terminal() {
		return nil, domain.ErrFlowTerminal
	}
	if f.stage != StageForm {
		return nil, domain.ErrStageConflict
	}

	prevRecipientWallet := f.intent.RecipientWalletID
	prevAccount := f.intent.DepositAccountID

	f.intent.Amount = upd.Amount
	f.intent.Currency = upd.Currency
	f.intent.RecipientWalletID = upd.RecipientWalletID
	f.intent.DepositAccountID = upd.DepositAccountID

	if fp := f.intent.Fingerprint(); fp != f.fingerprint {
		old := f.intent.ClientReference
		f.intent.ClientReference = o.mintRef()
		f.fingerprint = fp
		o.logger.Info("intent edited, client reference reminted",
			zap.String("flow_id", f.id),
			zap.String("old_reference", old),
			zap.String("new_reference", f.intent.ClientReference))
	}

	if f.intent.RecipientWalletID != prevRecipientWallet {
		f.recipient = nil
	}
	if f.intent.DepositAccountID != prevAccount {
		f.railDesc = nil
		f.instructions = nil
	}
	// Instructions embed the amount, so any edit re-derives them.
	if f.railDesc != nil {
		f.instructions = nil
	}

	return f.snapshotLocked(), nil
}

// ResolveRecipient resolves the transfer counterparty while staying in the
// Form stage. Any failure is surfaced as a field-level error and the flow
// does not advance.
func (o *Orchestrator) ResolveRecipient(ctx context.Context, flowID string) (*Snapshot, error) {
	f, err := o.get(flowID)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.stage != StageForm {
		return nil, domain.ErrStageConflict
	}
	if f.intent.Kind != domain.IntentTransfer {
		return nil, domain.NewFlowError(domain.FailInputInvalid, "recipient resolution only applies to transfers", nil)
	}
	if f.ownerWallet != "" && f.intent.RecipientWalletID == f.ownerWallet {
		return f.snapshotLocked(), domain.NewFlowError(domain.FailInputInvalid, domain.ErrSelfTransfer.Error(), domain.ErrSelfTransfer)
	}

	rcp, rerr := o.recipients.Resolve(ctx, f.intent.RecipientWalletID)
	if rerr != nil {
		return f.snapshotLocked(), rerr
	}
	f.recipient = rcp
	return f.snapshotLocked(), nil
}

// PrepareDeposit fetches the rail descriptor for the selected deposit
// account while staying in the Form stage.
func (o *Orchestrator) PrepareDeposit(ctx context.Context, flowID string) (*Snapshot, error) {
	f, err := o.get(flowID)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.stage != StageForm {
		return nil, domain.ErrStageConflict
	}
	if f.intent.Kind != domain.IntentDeposit {
		return nil, domain.NewFlowError(domain.FailInputInvalid, "rail resolution only applies to deposits", nil)
	}

	desc, rerr := o.rails.Resolve(ctx, f.intent.DepositAccountID)
	if rerr != nil {
		return f.snapshotLocked(), rerr
	}
	f.railDesc = desc
	f.instructions = nil
	return f.snapshotLocked(), nil
}

// ToConfirm advances Form -> Confirm. It requires a positive amount and,
// per intent kind, a resolved recipient or a fetched rail descriptor. On any
// violation the flow stays in Form and the error names the field.
func (o *Orchestrator) ToConfirm(flowID string) (*Snapshot, error) {
	f, err := o.get(flowID)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.stage != StageForm {
		return nil, domain.ErrStageConflict
	}
	if verr := f.intent.Validate(); verr != nil {
		return f.snapshotLocked(), domain.NewFlowError(domain.FailInputInvalid, verr.Error(), verr)
	}

	switch f.intent.Kind {
	case domain.IntentTransfer:
		if f.recipient == nil || f.recipient.WalletID != f.intent.RecipientWalletID {
			return f.snapshotLocked(), domain.NewFlowError(domain.FailInputInvalid, domain.ErrRecipientPending.Error(), domain.ErrRecipientPending)
		}
	case domain.IntentDeposit:
		if f.railDesc == nil {
			return f.snapshotLocked(), domain.NewFlowError(domain.FailInputInvalid, domain.ErrRailPending.Error(), domain.ErrRailPending)
		}
		ins, ierr := o.rails.Instructions(f.railDesc, f.intent.Amount)
		if ierr != nil {
			return f.snapshotLocked(), domain.NewFlowError(domain.FailRailUnavailable, "could not prepare payment instructions", ierr)
		}
		f.instructions = ins
	}

	o.transitionLocked(f, StageConfirm)
	return f.snapshotLocked(), nil
}

// Confirm fires Confirm -> Executing exactly once per user confirmation. A
// second press while Executing is a no-op, which guards against duplicate
// submission from a double-tap. The in-flight request is detached from the
// caller's context: once money movement is submitted the workflow waits for
// a definitive resolution instead of abandoning it client-side.
func (o *Orchestrator) Confirm(ctx context.Context, flowID string) (*Snapshot, error) {
	f, err := o.get(flowID)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	switch f.stage {
	case StageExecuting:
		snap := f.snapshotLocked()
		f.mu.Unlock()
		return snap, nil
	case StageConfirm:
		// proceed
	default:
		terminal := f.stage.Terminal()
		f.mu.Unlock()
		if terminal {
			return nil, domain.ErrFlowTerminal
		}
		return nil, domain.ErrStageConflict
	}
	f.failure = nil
	o.transitionLocked(f, StageExecuting)
	intent := f.intent
	f.mu.Unlock()

	detached := context.WithoutCancel(ctx)
	record, execErr := o.executor.Execute(detached, &intent)
	return o.settle(detached, f, record, execErr)
}

// Retry resubmits the identical intent with the identical client reference
// after a retryable failure.
func (o *Orchestrator) Retry(ctx context.Context, flowID string) (*Snapshot, error) {
	f, err := o.get(flowID)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	if f.stage != StageFailed {
		f.mu.Unlock()
		return nil, domain.ErrStageConflict
	}
	if f.failure == nil || !f.failure.Kind.Retryable() {
		f.mu.Unlock()
		return nil, domain.ErrNotRetryable
	}
	f.failure = nil
	o.transitionLocked(f, StageExecuting)
	intent := f.intent
	f.mu.Unlock()

	o.logger.Info("retrying with same client reference",
		zap.String("flow_id", f.id),
		zap.String("client_reference", intent.ClientReference))

	detached := context.WithoutCancel(ctx)
	record, execErr := o.executor.Execute(detached, &intent)
	return o.settle(detached, f, record, execErr)
}

// settle lands an execution outcome in Success or Failed.
func (o *Orchestrator) settle(ctx context.Context, f *Flow, record *domain.TransactionRecord, execErr error) (*Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if execErr != nil {
		f.failure = asFlowError(execErr)
		o.transitionLocked(f, StageFailed)
		return f.snapshotLocked(), execErr
	}

	f.record = record
	o.transitionLocked(f, StageSuccess)

	o.archiveReceipt(ctx, f)
	o.reconcileAsync(ctx, f.userID)

	return f.snapshotLocked(), nil
}

// BackToForm returns a failed flow to the form with inputs preserved. The
// client reference is kept; it is re-minted only if the user then edits the
// amount or destination.
func (o *Orchestrator) BackToForm(flowID string) (*Snapshot, error) {
	f, err := o.get(flowID)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.stage != StageFailed {
		return nil, domain.ErrStageConflict
	}
	f.failure = nil
	o.transitionLocked(f, StageForm)
	return f.snapshotLocked(), nil
}

// Exit abandons or completes a flow. Form and Confirm exit with no side
// effects; leaving Success fires a best-effort reconciliation that never
// blocks navigation; Executing refuses to exit while the server-side
// outcome is unknown.
func (o *Orchestrator) Exit(ctx context.Context, flowID string) error {
	f, err := o.get(flowID)
	if err != nil {
		return err
	}
	f.mu.Lock()
	stage := f.stage
	userID := f.userID
	f.mu.Unlock()

	if stage == StageExecuting {
		return domain.ErrStageConflict
	}

	o.mu.Lock()
	delete(o.flows, flowID)
	o.mu.Unlock()

	if stage == StageSuccess {
		o.reconcileAsync(ctx, userID)
	}
	o.logger.Info("flow exited",
		zap.String("flow_id", flowID),
		zap.String("stage", stage.String()))
	return nil
}

// Snapshot returns the current view of a flow.
func (o *Orchestrator) Snapshot(flowID string) (*Snapshot, error) {
	f, err := o.get(flowID)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked(), nil
}

// Receipt builds the canonical receipt for a successful flow.
func (o *Orchestrator) Receipt(flowID string) (*receipt.Receipt, error) {
	f, err := o.get(flowID)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.stage != StageSuccess || f.record == nil {
		return nil, domain.ErrStageConflict
	}
	return receipt.Build(f.record, &f.intent, f.recipient), nil
}

func (o *Orchestrator) transitionLocked(f *Flow, next Stage) {
	prev := f.stage
	f.stage = next
	o.logger.Info("stage transition",
		zap.String("flow_id", f.id),
		zap.String("from", prev.String()),
		zap.String("to", next.String()))
	o.notify(f.userID, StageEvent{
		Type:     "stage_changed",
		FlowID:   f.id,
		Stage:    next.String(),
		Snapshot: f.snapshotLocked(),
	})
}

// notify delivers a stage event without letting a notifier fault take the
// state machine down with it; transitionLocked runs while holding flow locks
// that an unwinding panic would leave held forever.
func (o *Orchestrator) notify(userID string, ev StageEvent) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("stage notifier panicked",
				zap.String("flow_id", ev.FlowID),
				zap.Any("panic", r))
		}
	}()
	o.notifier.NotifyStage(userID, ev)
}

func (o *Orchestrator) archiveReceipt(parent context.Context, f *Flow) {
	if o.archive == nil {
		return
	}
	rc := receipt.Build(f.record, &f.intent, f.recipient)
	userID := f.userID
	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), o.reconcileTimeout)
		defer cancel()
		if err := o.archive.Save(ctx, userID, rc); err != nil {
			o.logger.Warn("receipt archive failed",
				zap.String("transaction_id", rc.TransactionID),
				zap.Error(err))
		}
	}()
}

// reconcileAsync refreshes the cached balance without ever blocking the
// caller. Failures are logged and swallowed.
func (o *Orchestrator) reconcileAsync(parent context.Context, userID string) {
	if o.reconciler == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), o.reconcileTimeout)
		defer cancel()
		if _, err := o.reconciler.Reconcile(ctx, userID); err != nil {
			o.logger.Warn("post-flow reconciliation failed",
				zap.String("user_id", userID),
				zap.Error(err))
		}
	}()
}

// Sweep evicts flows that have sat untouched past the idle TTL. Executing
// flows are never evicted: the server-side outcome is still unresolved.
// Returns the number of flows removed.
func (o *Orchestrator) Sweep(now time.Time) int {
	o.mu.Lock()
	defer o.mu.Unlock()

	evicted := 0
	for id, f := range o.flows {
		f.mu.Lock()
		stage := f.stage
		idle := stage != StageExecuting && now.Sub(f.touchedAt) > o.idleTTL
		createdAt := f.createdAt
		f.mu.Unlock()

		if !idle {
			continue
		}
		delete(o.flows, id)
		evicted++
		o.logger.Info("idle flow evicted",
			zap.String("flow_id", id),
			zap.String("stage", stage.String()),
			zap.Time("created_at", createdAt))
	}
	return evicted
}

// RunSweeper periodically sweeps idle flows until the context is cancelled.
func (o *Orchestrator) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			o.Sweep(now)
		}
	}
}

func asFlowError(err error) *domain.FlowError {
	if fe, ok := err.(*domain.FlowError); ok {
		return fe
	}
	return domain.NewFlowError(domain.ClassifyFlowError(err), fmt.Sprintf("unexpected failure: %v", err), err)
}
