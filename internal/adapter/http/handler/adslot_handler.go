package handler

import (
	"context"
	"net/http"

	"github.com/iho/smartlink/internal/adapter/http/dto"
	"github.com/iho/smartlink/internal/domain"
	"github.com/iho/smartlink/internal/usecase"
)

// AdServer selects and charges an impression for an ad slot.
type AdServer interface {
	ProcessAdRequest(ctx context.Context, adSlotID int64) (*usecase.AdResponse, error)
}

// AdSlotService reads ad slots and manages their campaign links.
type AdSlotService interface {
	GetAdSlot(ctx context.Context, id int64) (*domain.AdSlot, error)
	AssociateCampaign(ctx context.Context, adSlotID, campaignID int64) error
	DissociateCampaign(ctx context.Context, adSlotID, campaignID int64) error
}

// AdSlotHandler handles ad slot and ad serving requests.
type AdSlotHandler struct {
	slots  AdSlotService
	server AdServer
}

// NewAdSlotHandler creates a new AdSlotHandler.
func NewAdSlotHandler(slots AdSlotService, server AdServer) *AdSlotHandler {
	return &AdSlotHandler{slots: slots, server: server}
}

// Get handles GET /ad-slots/{id}.
func (h *AdSlotHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid ad slot id", "")
		return
	}

	slot, err := h.slots.GetAdSlot(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AdSlotFromDomain(slot))
}

// Serve handles GET /ad-slots/{id}/ad. An inactive slot answers 410 Gone.
func (h *AdSlotHandler) Serve(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.AdServeResponse{Error: "invalid ad slot id"})
		return
	}

	ad, err := h.server.ProcessAdRequest(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		msg := err.Error()
		if status == http.StatusInternalServerError {
			msg = domain.ErrInternal.Error()
		}
		writeJSON(w, status, dto.AdServeResponse{Error: msg})
		return
	}

	writeJSON(w, http.StatusOK, dto.AdServeFromResult(ad))
}

// AttachCampaign handles POST /ad-slots/{id}/campaigns/{campaignID}.
func (h *AdSlotHandler) AttachCampaign(w http.ResponseWriter, r *http.Request) {
	h.link(w, r, h.slots.AssociateCampaign)
}

// DetachCampaign handles DELETE /ad-slots/{id}/campaigns/{campaignID}.
func (h *AdSlotHandler) DetachCampaign(w http.ResponseWriter, r *http.Request) {
	h.link(w, r, h.slots.DissociateCampaign)
}

func (h *AdSlotHandler) link(w http.ResponseWriter, r *http.Request, fn func(context.Context, int64, int64) error) {
	slotID, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid ad slot id", "")
		return
	}
	campaignID, err := parseIDParam(r, "campaignID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid campaign id", "")
		return
	}

	if err := fn(r.Context(), slotID, campaignID); err != nil {
		writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
