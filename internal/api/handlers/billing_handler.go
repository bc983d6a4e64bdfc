package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/fonoclinic/backend/internal/application/services"
	"github.com/fonoclinic/backend/internal/domain/reconciliation"
)

// BillingService defines the billing operations used by the handler
type BillingService interface {
	Review(ctx context.Context) (*reconciliation.Review, error)
	MarkIssued(ctx context.Context, sessionID int64) error
	ExportPending(ctx context.Context) (*services.Report, error)
}

// BillingHandler serves the reconciliation review, invoice issuing and
// the pending report download.
type BillingHandler struct {
	service BillingService
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(service BillingService) *BillingHandler {
	return &BillingHandler{service: service}
}

type totalsResponse struct {
	TotalBilled          string `json:"total_billed"`
	TotalBilledDisplay   string `json:"total_billed_display"`
	PendingAmount        string `json:"pending_amount"`
	PendingAmountDisplay string `json:"pending_amount_display"`
	PendingCount         int    `json:"pending_count"`
}

type reviewResponse struct {
	Completed      []sessionResponse `json:"completed"`
	PendingInvoice []sessionResponse `json:"pending_invoice"`
	Totals         totalsResponse    `json:"totals"`
}

// GetReview handles GET /api/billing/review
func (h *BillingHandler) GetReview(w http.ResponseWriter, r *http.Request) {
	review, err := h.service.Review(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, reviewResponse{
		Completed:      toSessionResponses(review.Completed),
		PendingInvoice: toSessionResponses(review.PendingInvoice),
		Totals: totalsResponse{
			TotalBilled:          review.Totals.TotalBilled.StringFixed(2),
			TotalBilledDisplay:   formatBRL(review.Totals.TotalBilled),
			PendingAmount:        review.Totals.PendingAmount.StringFixed(2),
			PendingAmountDisplay: formatBRL(review.Totals.PendingAmount),
			PendingCount:         review.Totals.PendingCount,
		},
	})
}

// MarkInvoiceIssued handles POST /api/sessions/{id}/invoice
func (h *BillingHandler) MarkInvoiceIssued(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		respondWithError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	if err := h.service.MarkIssued(r.Context(), id); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ExportPending handles GET /api/billing/pending/export
func (h *BillingHandler) ExportPending(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.ExportPending(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(report.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(report.Data); err != nil {
		log.Warn().Err(err).Msg("failed to write pending report")
	}
}
