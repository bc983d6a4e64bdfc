package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/fonoclinic/backend/internal/domain/entities"
)

// PatientService defines the patient operations used by the handler
type PatientService interface {
	Create(ctx context.Context, patient *entities.Patient) error
	List(ctx context.Context) ([]*entities.Patient, error)
}

// PatientHandler handles patient registration requests
type PatientHandler struct {
	service PatientService
}

// NewPatientHandler creates a new patient handler
func NewPatientHandler(service PatientService) *PatientHandler {
	return &PatientHandler{service: service}
}

type patientRequest struct {
	Name      string `json:"name"`
	BirthDate string `json:"birth_date"`
}

type patientResponse struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	BirthDate *string `json:"birth_date"`
}

func toPatientResponse(p *entities.Patient) patientResponse {
	resp := patientResponse{ID: p.ID, Name: p.Name}
	if p.BirthDate != nil {
		d := p.BirthDate.Format(entities.DateLayout)
		resp.BirthDate = &d
	}
	return resp
}

// CreatePatient handles POST /api/patients
func (h *PatientHandler) CreatePatient(w http.ResponseWriter, r *http.Request) {
	var payload patientRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	patient := &entities.Patient{Name: payload.Name}
	if birth := strings.TrimSpace(payload.BirthDate); birth != "" {
		d, err := entities.ParseDate(birth)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		patient.BirthDate = &d
	}

	if err := h.service.Create(r.Context(), patient); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]int64{"id": patient.ID})
}

// ListPatients handles GET /api/patients
func (h *PatientHandler) ListPatients(w http.ResponseWriter, r *http.Request) {
	patients, err := h.service.List(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	items := make([]patientResponse, 0, len(patients))
	for _, p := range patients {
		items = append(items, toPatientResponse(p))
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"patients": items,
		"count":    len(items),
	})
}

func formatTimestamp(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
