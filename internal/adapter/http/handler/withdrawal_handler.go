package handler

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/iho/smartlink/internal/adapter/http/dto"
	"github.com/iho/smartlink/internal/domain"
)

// WithdrawalService drives the withdrawal state machine.
type WithdrawalService interface {
	CreateWithdrawal(ctx context.Context, userID int64, amount decimal.Decimal, meta domain.RequestMeta) (*domain.Withdrawal, error)
	GetWithdrawal(ctx context.Context, id int64) (*domain.Withdrawal, error)
	ListWithdrawals(ctx context.Context, userID int64, limit, offset int) ([]*domain.Withdrawal, error)
	ApproveWithdrawal(ctx context.Context, id int64, notes string, meta domain.RequestMeta) (*domain.Withdrawal, error)
	RejectWithdrawal(ctx context.Context, id int64, notes string, meta domain.RequestMeta) (*domain.Withdrawal, error)
	ProcessWithdrawal(ctx context.Context, id int64, notes string, meta domain.RequestMeta) (*domain.Withdrawal, error)
}

type withdrawalTransition func(ctx context.Context, id int64, notes string, meta domain.RequestMeta) (*domain.Withdrawal, error)

// WithdrawalHandler handles withdrawal requests.
type WithdrawalHandler struct {
	withdrawals WithdrawalService
}

// NewWithdrawalHandler creates a new WithdrawalHandler.
func NewWithdrawalHandler(withdrawals WithdrawalService) *WithdrawalHandler {
	return &WithdrawalHandler{withdrawals: withdrawals}
}

// Create handles POST /withdrawals. The amount is frozen until the withdrawal is reviewed.
func (h *WithdrawalHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req dto.AmountRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	withdrawal, err := h.withdrawals.CreateWithdrawal(r.Context(), p.UserID, req.Amount, requestMeta(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.WithdrawalFromDomain(withdrawal))
}

// List handles GET /withdrawals.
func (h *WithdrawalHandler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	limit, offset := pagination(r)
	withdrawals, err := h.withdrawals.ListWithdrawals(r.Context(), p.UserID, limit, offset)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListResponse[*dto.WithdrawalResponse]{
		Items:  dto.WithdrawalsFromDomain(withdrawals),
		Limit:  limit,
		Offset: offset,
	})
}

// Get handles GET /withdrawals/{id}.
func (h *WithdrawalHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid withdrawal id", "")
		return
	}

	withdrawal, err := h.withdrawals.GetWithdrawal(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.WithdrawalFromDomain(withdrawal))
}

// Approve handles POST /admin/withdrawals/{id}/approve.
func (h *WithdrawalHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.withdrawals.ApproveWithdrawal)
}

// Reject handles POST /admin/withdrawals/{id}/reject. Frozen funds return to the balance.
func (h *WithdrawalHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.withdrawals.RejectWithdrawal)
}

// Process handles POST /admin/withdrawals/{id}/process. Frozen funds leave the system.
func (h *WithdrawalHandler) Process(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.withdrawals.ProcessWithdrawal)
}

func (h *WithdrawalHandler) review(w http.ResponseWriter, r *http.Request, fn withdrawalTransition) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid withdrawal id", "")
		return
	}

	var req dto.ReviewWithdrawalRequest
	if r.ContentLength != 0 && !decodeRequest(w, r, &req) {
		return
	}

	withdrawal, err := fn(r.Context(), id, req.Notes, requestMeta(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.WithdrawalFromDomain(withdrawal))
}
