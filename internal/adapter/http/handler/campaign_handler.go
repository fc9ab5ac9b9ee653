package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/smartlink/internal/adapter/http/dto"
	"github.com/iho/smartlink/internal/domain"
)

// CampaignService is the campaign budget surface used by the handler.
type CampaignService interface {
	CreateCampaign(ctx context.Context, campaign *domain.Campaign, initialBudget decimal.Decimal, meta domain.RequestMeta) (*domain.Campaign, error)
	GetCampaign(ctx context.Context, id int64) (*domain.Campaign, error)
	ListCampaigns(ctx context.Context, userID int64, limit, offset int) ([]*domain.Campaign, error)
	UpdateCampaign(ctx context.Context, id int64, name, description string, startDate time.Time, endDate *time.Time) (*domain.Campaign, error)
	AllocateBudget(ctx context.Context, campaignID int64, amount decimal.Decimal, meta domain.RequestMeta) (*domain.Campaign, error)
	ReleaseBudget(ctx context.Context, campaignID int64, meta domain.RequestMeta) (decimal.Decimal, error)
	CanActivate(ctx context.Context, campaignID int64) (bool, error)
	CheckBudget(ctx context.Context, campaignID int64, amount decimal.Decimal) (bool, error)
	Activate(ctx context.Context, campaignID int64) (*domain.Campaign, error)
	Deactivate(ctx context.Context, campaignID int64) (*domain.Campaign, error)
	DeleteCampaign(ctx context.Context, campaignID int64, meta domain.RequestMeta) error
}

// CampaignHandler handles campaign HTTP requests.
type CampaignHandler struct {
	campaigns CampaignService
}

// NewCampaignHandler creates a new CampaignHandler.
func NewCampaignHandler(campaigns CampaignService) *CampaignHandler {
	return &CampaignHandler{campaigns: campaigns}
}

// Create handles POST /campaigns.
func (h *CampaignHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req dto.CreateCampaignRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	campaign, err := h.campaigns.CreateCampaign(r.Context(), req.ToDomain(p.UserID), req.Budget, requestMeta(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.CampaignFromDomain(campaign))
}

// List handles GET /campaigns.
func (h *CampaignHandler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	limit, offset := pagination(r)
	campaigns, err := h.campaigns.ListCampaigns(r.Context(), p.UserID, limit, offset)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListResponse[*dto.CampaignResponse]{
		Items:  dto.CampaignsFromDomain(campaigns),
		Limit:  limit,
		Offset: offset,
	})
}

// Get handles GET /campaigns/{id}.
func (h *CampaignHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid campaign id", "")
		return
	}

	campaign, err := h.campaigns.GetCampaign(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CampaignFromDomain(campaign))
}

// Update handles PUT /campaigns/{id}.
func (h *CampaignHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid campaign id", "")
		return
	}

	var req dto.UpdateCampaignRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	campaign, err := h.campaigns.UpdateCampaign(r.Context(), id, req.Name, req.Description, req.Start(), req.EndDate)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CampaignFromDomain(campaign))
}

// Delete handles DELETE /campaigns/{id}. Remaining budget returns to the owner first.
func (h *CampaignHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid campaign id", "")
		return
	}

	if err := h.campaigns.DeleteCampaign(r.Context(), id, requestMeta(r)); err != nil {
		writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AllocateBudget handles POST /campaigns/{id}/budget.
func (h *CampaignHandler) AllocateBudget(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid campaign id", "")
		return
	}

	var req dto.AmountRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	campaign, err := h.campaigns.AllocateBudget(r.Context(), id, req.Amount, requestMeta(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CampaignFromDomain(campaign))
}

// ReleaseBudget handles POST /campaigns/{id}/budget/release.
func (h *CampaignHandler) ReleaseBudget(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid campaign id", "")
		return
	}

	released, err := h.campaigns.ReleaseBudget(r.Context(), id, requestMeta(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BudgetReleaseResponse{CampaignID: id, Released: released})
}

// CheckBudget handles GET /campaigns/{id}/budget/check?amount=.
func (h *CampaignHandler) CheckBudget(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid campaign id", "")
		return
	}

	amount := decimal.Zero
	if raw := r.URL.Query().Get("amount"); raw != "" {
		amount, err = decimal.NewFromString(raw)
		if err != nil || amount.IsNegative() {
			writeError(w, http.StatusBadRequest, "invalid amount", "")
			return
		}
	}

	// Loads through the ownership check before answering.
	if _, err := h.campaigns.GetCampaign(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}

	hasBudget, err := h.campaigns.CheckBudget(r.Context(), id, amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	canActivate, err := h.campaigns.CanActivate(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BudgetCheckResponse{
		CampaignID:  id,
		Amount:      amount,
		HasBudget:   hasBudget,
		CanActivate: canActivate,
	})
}

// Activate handles POST /campaigns/{id}/activate.
func (h *CampaignHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, h.campaigns.Activate)
}

// Deactivate handles POST /campaigns/{id}/deactivate.
func (h *CampaignHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, h.campaigns.Deactivate)
}

func (h *CampaignHandler) setActive(w http.ResponseWriter, r *http.Request, fn func(context.Context, int64) (*domain.Campaign, error)) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid campaign id", "")
		return
	}

	campaign, err := fn(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CampaignFromDomain(campaign))
}
