package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/fonoclinic/backend/internal/domain/entities"
)

// SessionService defines the session operations used by the handler
type SessionService interface {
	Create(ctx context.Context, session *entities.Session) error
	List(ctx context.Context, patientID *int64) ([]*entities.JoinedSession, error)
}

// SessionHandler handles session intake and history requests
type SessionHandler struct {
	service SessionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(service SessionService) *SessionHandler {
	return &SessionHandler{service: service}
}

type sessionRequest struct {
	PatientID     int64            `json:"patient_id"`
	Date          string           `json:"date"`
	Status        string           `json:"status"`
	Amount        *decimal.Decimal `json:"amount"`
	ClinicalNote  string           `json:"clinical_note"`
	InvoiceIssued bool             `json:"invoice_issued"`
}

type sessionResponse struct {
	ID            int64   `json:"id"`
	PatientID     int64   `json:"patient_id"`
	PatientName   string  `json:"patient_name"`
	Date          string  `json:"date"`
	Status        string  `json:"status"`
	Amount        string  `json:"amount"`
	AmountDisplay string  `json:"amount_display"`
	ClinicalNote  string  `json:"clinical_note,omitempty"`
	InvoiceIssued bool    `json:"invoice_issued"`
	IssuedAt      *string `json:"issued_at,omitempty"`
}

func toSessionResponse(s *entities.JoinedSession) sessionResponse {
	return sessionResponse{
		ID:            s.ID,
		PatientID:     s.PatientID,
		PatientName:   s.PatientName,
		Date:          s.Date.Format(entities.DateLayout),
		Status:        string(s.Status),
		Amount:        s.Amount.StringFixed(2),
		AmountDisplay: formatBRL(s.Amount),
		ClinicalNote:  s.ClinicalNote,
		InvoiceIssued: s.InvoiceIssued,
		IssuedAt:      formatTimestamp(s.IssuedAt),
	}
}

func toSessionResponses(sessions []*entities.JoinedSession) []sessionResponse {
	items := make([]sessionResponse, 0, len(sessions))
	for _, s := range sessions {
		items = append(items, toSessionResponse(s))
	}
	return items
}

// CreateSession handles POST /api/sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var payload sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if payload.PatientID <= 0 {
		respondWithError(w, http.StatusBadRequest, "patient_id is required")
		return
	}

	date, err := entities.ParseDate(payload.Date)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	status, err := entities.ParseSessionStatus(payload.Status)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	if payload.Amount == nil {
		respondWithError(w, http.StatusBadRequest, "amount is required")
		return
	}

	session := &entities.Session{
		PatientID:     payload.PatientID,
		Date:          date,
		Status:        status,
		Amount:        *payload.Amount,
		ClinicalNote:  payload.ClinicalNote,
		InvoiceIssued: payload.InvoiceIssued,
	}

	if err := h.service.Create(r.Context(), session); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]int64{"id": session.ID})
}

// ListSessions handles GET /api/sessions
func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	var patientID *int64
	if raw := r.URL.Query().Get("patient_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			respondWithError(w, http.StatusBadRequest, "invalid patient_id")
			return
		}
		patientID = &id
	}

	sessions, err := h.service.List(r.Context(), patientID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	items := toSessionResponses(sessions)
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": items,
		"count":    len(items),
	})
}
