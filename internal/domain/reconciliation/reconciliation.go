// Package reconciliation classifies sessions into billed and pending
// invoice sets and computes the practice's financial totals. Every
// function is pure: callers re-read the store after a mutation and run
// the engine again, nothing derived is cached here.
package reconciliation

import (
	"github.com/shopspring/decimal"

	"github.com/fonoclinic/backend/internal/domain/entities"
)

// Classification splits a session list into its billable subsets.
// Both slices keep the input order.
type Classification struct {
	Completed      []*entities.JoinedSession `json:"completed"`
	PendingInvoice []*entities.JoinedSession `json:"pending_invoice"`
}

// Totals are the financial figures over a session list
type Totals struct {
	TotalBilled   decimal.Decimal `json:"total_billed"`
	PendingAmount decimal.Decimal `json:"pending_amount"`
	PendingCount  int             `json:"pending_count"`
}

// Review bundles classification and totals computed from the same snapshot
type Review struct {
	Classification
	Totals Totals `json:"totals"`
}

// Classify filters completed sessions and, among them, those whose
// invoice has not been issued.
func Classify(sessions []*entities.JoinedSession) Classification {
	c := Classification{
		Completed:      make([]*entities.JoinedSession, 0),
		PendingInvoice: make([]*entities.JoinedSession, 0),
	}
	for _, s := range sessions {
		if s == nil || !s.IsBillable() {
			continue
		}
		c.Completed = append(c.Completed, s)
		if s.IsPendingInvoice() {
			c.PendingInvoice = append(c.PendingInvoice, s)
		}
	}
	return c
}

// ComputeTotals sums billed and pending amounts in exact decimal arithmetic
func ComputeTotals(sessions []*entities.JoinedSession) Totals {
	t := Totals{
		TotalBilled:   decimal.Zero,
		PendingAmount: decimal.Zero,
	}
	for _, s := range sessions {
		if s == nil || !s.IsBillable() {
			continue
		}
		t.TotalBilled = t.TotalBilled.Add(s.Amount)
		if s.IsPendingInvoice() {
			t.PendingAmount = t.PendingAmount.Add(s.Amount)
			t.PendingCount++
		}
	}
	return t
}

// Run classifies sessions and computes their totals in one pass over the
// same input.
func Run(sessions []*entities.JoinedSession) Review {
	return Review{
		Classification: Classify(sessions),
		Totals:         ComputeTotals(sessions),
	}
}
