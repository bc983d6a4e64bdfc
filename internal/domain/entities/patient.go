package entities

import (
	"strings"
	"time"
	"unicode"

	apperrors "github.com/fonoclinic/backend/pkg/errors"
)

// Patient represents a person under care. Patients are created at intake
// and are only ever referenced by sessions afterwards.
type Patient struct {
	ID        int64      `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	BirthDate *time.Time `json:"birth_date,omitempty" db:"birth_date"`
}

// Validate normalizes the patient and checks required fields. Control
// characters are dropped from the name since spreadsheets cannot hold them.
func (p *Patient) Validate() error {
	p.Name = strings.TrimSpace(stripControl(p.Name))
	if p.Name == "" {
		return apperrors.NewValidationError("patient name is required")
	}
	if p.BirthDate != nil {
		d := DateOnly(*p.BirthDate)
		p.BirthDate = &d
	}
	return nil
}

func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
