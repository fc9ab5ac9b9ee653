package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/iho/smartlink/internal/adapter/http/dto"
	"github.com/iho/smartlink/internal/domain"
	"github.com/iho/smartlink/internal/usecase"
)

// TransactionLogService lists transaction log rows.
type TransactionLogService interface {
	List(ctx context.Context, filter domain.TransactionLogFilter) ([]*domain.TransactionLog, error)
}

// ReferralService lists referral earnings.
type ReferralService interface {
	ListEarnings(ctx context.Context, userID int64, limit, offset int) ([]*domain.ReferralEarning, error)
}

// AnalyticsService lists analytics events and resolves their references.
type AnalyticsService interface {
	ListEvents(ctx context.Context, userID int64, eventType domain.AnalyticsEventType, limit, offset int) ([]*domain.AnalyticsEvent, error)
	ResolveRelated(ctx context.Context, ref *domain.RelatedRef) (*domain.Related, error)
}

// LedgerService runs the ledger consistency check.
type LedgerService interface {
	CheckConsistency(ctx context.Context) (*usecase.ConsistencyReport, error)
}

// ReportHandler serves read-only reporting endpoints.
type ReportHandler struct {
	logs      TransactionLogService
	referrals ReferralService
	analytics AnalyticsService
	ledger    LedgerService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(logs TransactionLogService, referrals ReferralService, analytics AnalyticsService, ledger LedgerService) *ReportHandler {
	return &ReportHandler{
		logs:      logs,
		referrals: referrals,
		analytics: analytics,
		ledger:    ledger,
	}
}

// Transactions handles GET /transactions?type=&status=.
func (h *ReportHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	limit, offset := pagination(r)
	logs, err := h.logs.List(r.Context(), domain.TransactionLogFilter{
		UserID: p.UserID,
		Type:   domain.TransactionType(r.URL.Query().Get("type")),
		Status: domain.TransactionStatus(r.URL.Query().Get("status")),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListResponse[*dto.TransactionLogResponse]{
		Items:  dto.TransactionLogsFromDomain(logs),
		Limit:  limit,
		Offset: offset,
	})
}

// ReferralEarnings handles GET /referrals/earnings.
func (h *ReportHandler) ReferralEarnings(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	limit, offset := pagination(r)
	earnings, err := h.referrals.ListEarnings(r.Context(), p.UserID, limit, offset)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListResponse[*dto.ReferralEarningResponse]{
		Items:  dto.ReferralEarningsFromDomain(earnings),
		Limit:  limit,
		Offset: offset,
	})
}

// AnalyticsEvents handles GET /analytics?type=.
func (h *ReportHandler) AnalyticsEvents(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	limit, offset := pagination(r)
	events, err := h.analytics.ListEvents(r.Context(), p.UserID, domain.AnalyticsEventType(r.URL.Query().Get("type")), limit, offset)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListResponse[*dto.AnalyticsEventResponse]{
		Items:  dto.AnalyticsEventsFromDomain(events),
		Limit:  limit,
		Offset: offset,
	})
}

// Related handles GET /admin/analytics/related?type=&id=.
func (h *ReportHandler) Related(w http.ResponseWriter, r *http.Request) {
	relatedType := domain.RelatedType(r.URL.Query().Get("type"))
	if !relatedType.IsValid() {
		writeError(w, http.StatusBadRequest, domain.ErrInvalidRelatedType.Error(), "")
		return
	}
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id", "")
		return
	}

	related, err := h.analytics.ResolveRelated(r.Context(), &domain.RelatedRef{Type: relatedType, ID: id})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.RelatedFromDomain(relatedType, related))
}

// LedgerConsistency handles GET /admin/ledger/consistency. An inconsistent ledger answers 409.
func (h *ReportHandler) LedgerConsistency(w http.ResponseWriter, r *http.Request) {
	report, err := h.ledger.CheckConsistency(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	status := http.StatusOK
	if !report.Consistent {
		status = http.StatusConflict
	}
	writeJSON(w, status, dto.ConsistencyFromReport(report))
}
