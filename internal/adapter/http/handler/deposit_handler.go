package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/smartlink/internal/adapter/http/dto"
	"github.com/iho/smartlink/internal/domain"
	"github.com/iho/smartlink/internal/usecase"
)

// DepositService credits user balances.
type DepositService interface {
	GetBalance(ctx context.Context, userID int64) (*domain.User, error)
	Deposit(ctx context.Context, userID int64, amount decimal.Decimal, meta domain.RequestMeta) (*usecase.DepositResult, error)
	InitiateDeposit(ctx context.Context, userID int64, amount decimal.Decimal, description string, meta domain.RequestMeta) (*usecase.DepositCheckout, error)
	ProcessWebhook(ctx context.Context, fields map[string]string, meta domain.RequestMeta) (*usecase.DepositResult, error)
}

// DepositHandler handles balance, deposit and payment webhook requests.
type DepositHandler struct {
	deposits DepositService
	logger   zerolog.Logger
}

// NewDepositHandler creates a new DepositHandler.
func NewDepositHandler(deposits DepositService, logger zerolog.Logger) *DepositHandler {
	return &DepositHandler{
		deposits: deposits,
		logger:   logger.With().Str("component", "deposit_handler").Logger(),
	}
}

// Balance handles GET /balance.
func (h *DepositHandler) Balance(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	user, err := h.deposits.GetBalance(r.Context(), p.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromDomain(user))
}

// Initiate handles POST /deposits/payeer and returns the signed checkout form.
func (h *DepositHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req dto.InitiateDepositRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	checkout, err := h.deposits.InitiateDeposit(r.Context(), p.UserID, req.Amount, req.Description, requestMeta(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.CheckoutResponse{
		OrderID:     checkout.OrderID,
		RedirectURL: checkout.RedirectURL,
		Fields:      checkout.Fields,
	})
}

// Manual handles POST /admin/deposits, an operator top-up of a user's balance.
func (h *DepositHandler) Manual(w http.ResponseWriter, r *http.Request) {
	var req dto.ManualDepositRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	result, err := h.deposits.Deposit(r.Context(), req.UserID, req.Amount, requestMeta(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.DepositFromResult(result))
}

// Webhook handles POST /deposit/payeer-webhook.
//
// A repeated delivery of a completed order answers 200 so the gateway stops retrying.
// Internal faults answer 500 so it retries later.
func (h *DepositHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.WebhookResponse{Status: "error", Message: "Invalid request"})
		return
	}

	fields := make(map[string]string, len(r.Form))
	for key, values := range r.Form {
		if len(values) > 0 {
			fields[key] = values[0]
		}
	}

	_, err := h.deposits.ProcessWebhook(r.Context(), fields, requestMeta(r))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, dto.WebhookResponse{Status: "success"})
	case errors.Is(err, domain.ErrDuplicateDeposit):
		writeJSON(w, http.StatusOK, dto.WebhookResponse{Status: "success", Message: "already_processed"})
	case domain.IsExpected(err):
		h.logger.Warn().Err(err).Str("order_id", fields[usecase.FieldOrderID]).Msg("webhook rejected")
		writeJSON(w, http.StatusBadRequest, dto.WebhookResponse{Status: "error", Message: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, dto.WebhookResponse{Status: "error", Message: domain.ErrInternal.Error()})
	}
}
