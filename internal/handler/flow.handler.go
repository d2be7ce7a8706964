// handler/flow.handler.go
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"walletflow-service/internal/device"
	"walletflow-service/internal/domain"
	"walletflow-service/internal/middleware"
	"walletflow-service/internal/pkg/id"
	"walletflow-service/internal/pkg/response"
	"walletflow-service/internal/usecase/balance"
	"walletflow-service/internal/usecase/receipt"
	"walletflow-service/internal/usecase/workflow"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// HistoryStore is the durable receipt archive behind the transaction
// history surface.
type HistoryStore interface {
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]receipt.Receipt, int64, error)
	GetByTransactionID(ctx context.Context, userID, transactionID string) (*receipt.Receipt, error)
}

type FlowHandler struct {
	orch       *workflow.Orchestrator
	reconciler *balance.Reconciler
	history    HistoryStore
	exporter   *device.Exporter
	logger     *zap.Logger
}

func NewFlowHandler(orch *workflow.Orchestrator, reconciler *balance.Reconciler, history HistoryStore, exporter *device.Exporter, logger *zap.Logger) *FlowHandler {
	return &FlowHandler{
		orch:       orch,
		reconciler: reconciler,
		history:    history,
		exporter:   exporter,
		logger:     logger,
	}
}

// ---- flow lifecycle ----

type startFlowRequest struct {
	Kind string `json:"kind"` // "transfer" or "deposit"
}

func (h *FlowHandler) StartFlow(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var req startFlowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request format")
		return
	}

	var kind domain.IntentKind
	switch strings.ToLower(req.Kind) {
	case "transfer":
		kind = domain.IntentTransfer
	case "deposit":
		kind = domain.IntentDeposit
	default:
		response.Error(w, http.StatusBadRequest, "kind must be transfer or deposit")
		return
	}

	snap := h.orch.Start(userID, middleware.WalletID(r.Context()), kind, id.NewFlowID())
	response.JSON(w, http.StatusCreated, snap)
}

type updateIntentRequest struct {
	Amount            string `json:"amount"`
	Currency          string `json:"currency"`
	RecipientWalletID string `json:"recipient_wallet_id,omitempty"`
	DepositAccountID  string `json:"deposit_account_id,omitempty"`
}

func (h *FlowHandler) UpdateIntent(w http.ResponseWriter, r *http.Request) {
	flowID, ok := h.ownedFlow(w, r)
	if !ok {
		return
	}

	var req updateIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request format")
		return
	}

	amount, err := strconv.ParseFloat(strings.TrimSpace(req.Amount), 64)
	if err != nil || amount <= 0 {
		h.flowFailure(w, domain.NewFlowError(domain.FailInputInvalid, "amount must parse as a positive number", domain.ErrAmountNotPositive), nil)
		return
	}

	snap, uerr := h.orch.UpdateIntent(flowID, workflow.IntentUpdate{
		Amount:            amount,
		Currency:          strings.ToUpper(strings.TrimSpace(req.Currency)),
		RecipientWalletID: strings.TrimSpace(req.RecipientWalletID),
		DepositAccountID:  strings.TrimSpace(req.DepositAccountID),
	})
	if uerr != nil {
		h.writeErr(w, uerr, snap)
		return
	}
	response.JSON(w, http.StatusOK, snap)
}

func (h *FlowHandler) ResolveRecipient(w http.ResponseWriter, r *http.Request) {
	flowID, ok := h.ownedFlow(w, r)
	if !ok {
		return
	}
	snap, err := h.orch.ResolveRecipient(r.Context(), flowID)
	if err != nil {
		h.writeErr(w, err, snap)
		return
	}
	response.JSON(w, http.StatusOK, snap)
}

func (h *FlowHandler) PrepareDeposit(w http.ResponseWriter, r *http.Request) {
	flowID, ok := h.ownedFlow(w, r)
	if !ok {
		return
	}
	snap, err := h.orch.PrepareDeposit(r.Context(), flowID)
	if err != nil {
		h.writeErr(w, err, snap)
		return
	}
	response.JSON(w, http.StatusOK, snap)
}

func (h *FlowHandler) ToConfirm(w http.ResponseWriter, r *http.Request) {
	flowID, ok := h.ownedFlow(w, r)
	if !ok {
		return
	}
	snap, err := h.orch.ToConfirm(flowID)
	if err != nil {
		h.writeErr(w, err, snap)
		return
	}
	response.JSON(w, http.StatusOK, snap)
}

func (h *FlowHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	flowID, ok := h.ownedFlow(w, r)
	if !ok {
		return
	}
	snap, err := h.orch.Confirm(r.Context(), flowID)
	if err != nil {
		h.writeErr(w, err, snap)
		return
	}
	response.JSON(w, http.StatusOK, snap)
}

func (h *FlowHandler) Retry(w http.ResponseWriter, r *http.Request) {
	flowID, ok := h.ownedFlow(w, r)
	if !ok {
		return
	}
	snap, err := h.orch.Retry(r.Context(), flowID)
	if err != nil {
		h.writeErr(w, err, snap)
		return
	}
	response.JSON(w, http.StatusOK, snap)
}

func (h *FlowHandler) BackToForm(w http.ResponseWriter, r *http.Request) {
	flowID, ok := h.ownedFlow(w, r)
	if !ok {
		return
	}
	snap, err := h.orch.BackToForm(flowID)
	if err != nil {
		h.writeErr(w, err, snap)
		return
	}
	response.JSON(w, http.StatusOK, snap)
}

func (h *FlowHandler) GetFlow(w http.ResponseWriter, r *http.Request) {
	flowID, ok := h.ownedFlow(w, r)
	if !ok {
		return
	}
	snap, err := h.orch.Snapshot(flowID)
	if err != nil {
		h.writeErr(w, err, nil)
		return
	}
	response.JSON(w, http.StatusOK, snap)
}

func (h *FlowHandler) ExitFlow(w http.ResponseWriter, r *http.Request) {
	flowID, ok := h.ownedFlow(w, r)
	if !ok {
		return
	}
	if err := h.orch.Exit(r.Context(), flowID); err != nil {
		h.writeErr(w, err, nil)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"flow_id": flowID})
}

// ---- receipt export ----

func (h *FlowHandler) ExportReceipt(w http.ResponseWriter, r *http.Request) {
	flowID, ok := h.ownedFlow(w, r)
	if !ok {
		return
	}
	rc, err := h.orch.Receipt(flowID)
	if err != nil {
		h.writeErr(w, err, nil)
		return
	}

	switch r.URL.Query().Get("format") {
	case "text":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(rc.RenderText()))
	case "image":
		img, ierr := rc.RenderImage()
		if ierr != nil {
			// Text fallback is a designed-in path, never an error.
			h.logger.Warn("receipt image render failed, serving text",
				zap.String("transaction_id", rc.TransactionID),
				zap.Error(ierr))
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(rc.RenderText()))
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(img)
	default:
		outcome, oerr := h.exporter.ExportReceipt(r.Context(), rc)
		if oerr != nil {
			response.Error(w, http.StatusInternalServerError, "export failed")
			return
		}
		response.JSON(w, http.StatusOK, map[string]interface{}{
			"receipt": rc,
			"export":  outcome,
		})
	}
}

// DialUSSD hands the formatted dial code to the telephony surface, falling
// back to clipboard and manual display. Every rung of the ladder is a valid
// way to complete the deposit.
func (h *FlowHandler) DialUSSD(w http.ResponseWriter, r *http.Request) {
	flowID, ok := h.ownedFlow(w, r)
	if !ok {
		return
	}
	snap, err := h.orch.Snapshot(flowID)
	if err != nil {
		h.writeErr(w, err, nil)
		return
	}
	if snap.Instructions == nil || snap.Instructions.DialCode == "" {
		response.Error(w, http.StatusConflict, "no dial code for this flow")
		return
	}
	response.JSON(w, http.StatusOK, h.exporter.OfferDial(snap.Instructions.DialCode))
}

type copyRequest struct {
	Text string `json:"text"`
}

// CopyText serves the copy affordance for addresses, codes and references.
func (h *FlowHandler) CopyText(w http.ResponseWriter, r *http.Request) {
	var req copyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		response.Error(w, http.StatusBadRequest, "nothing to copy")
		return
	}
	if err := h.exporter.CopyText(req.Text); err != nil {
		response.Error(w, http.StatusInternalServerError, "copy failed")
		return
	}
	response.JSON(w, http.StatusOK, map[string]bool{"copied": true})
}

// ---- balance & history ----

// GetBalance returns the cached balance and opportunistically reconciles it
// in the background, the way balance-displaying screens do.
func (h *FlowHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	cached, err := h.reconciler.Cached(r.Context(), userID)
	if err != nil {
		h.logger.Warn("balance cache read failed", zap.Error(err))
	}
	if cached == nil {
		// No cached value yet: this fetch is load-bearing for display only.
		fresh, ferr := h.reconciler.Reconcile(r.Context(), userID)
		if ferr != nil {
			response.Error(w, http.StatusServiceUnavailable, "balance unavailable")
			return
		}
		response.JSON(w, http.StatusOK, fresh)
		return
	}

	go func(ctx context.Context) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		_, _ = h.reconciler.Reconcile(rctx, userID)
	}(r.Context())

	response.JSON(w, http.StatusOK, cached)
}

func (h *FlowHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	receipts, total, err := h.history.ListByUser(r.Context(), userID, limit, offset)
	if err != nil {
		h.logger.Error("history list failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "could not load history")
		return
	}
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"receipts": receipts,
		"total":    total,
	})
}

func (h *FlowHandler) GetArchivedReceipt(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	txID := chi.URLParam(r, "transactionID")

	rc, err := h.history.GetByTransactionID(r.Context(), userID, txID)
	if err != nil {
		response.Error(w, http.StatusNotFound, "receipt not found")
		return
	}
	response.JSON(w, http.StatusOK, rc)
}

// ---- helpers ----

func (h *FlowHandler) ownedFlow(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := middleware.UserID(r.Context())
	flowID := chi.URLParam(r, "flowID")
	if err := h.orch.Authorize(flowID, userID); err != nil {
		if errors.Is(err, domain.ErrFlowNotFound) {
			response.Error(w, http.StatusNotFound, "flow not found")
		} else {
			response.Error(w, http.StatusForbidden, "forbidden")
		}
		return "", false
	}
	return flowID, true
}

func (h *FlowHandler) writeErr(w http.ResponseWriter, err error, snap *workflow.Snapshot) {
	var fe *domain.FlowError
	if errors.As(err, &fe) {
		h.flowFailure(w, fe, snap)
		return
	}
	switch {
	case errors.Is(err, domain.ErrFlowNotFound):
		response.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrStageConflict),
		errors.Is(err, domain.ErrNotRetryable),
		errors.Is(err, domain.ErrFlowTerminal):
		response.Error(w, http.StatusConflict, err.Error())
	default:
		response.Error(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *FlowHandler) flowFailure(w http.ResponseWriter, fe *domain.FlowError, snap *workflow.Snapshot) {
	status := http.StatusBadRequest
	switch fe.Kind {
	case domain.FailCounterpartyNotFound:
		status = http.StatusNotFound
	case domain.FailRailUnavailable, domain.FailTransient:
		status = http.StatusServiceUnavailable
	case domain.FailDeclined:
		status = http.StatusConflict
	case domain.FailUnknown:
		status = http.StatusBadGateway
	}
	response.FlowFailure(w, status,
		fe.Kind.String(), fe.Error(),
		fe.Kind.Retryable(), fe.Kind.MoneyConfirmedSafe(), fe.Kind.SafetyMessage(),
		snap)
}
