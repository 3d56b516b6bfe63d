package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// EntryType indicates whether a ledger entry adds funds to or removes funds from the trust.
type EntryType string

const (
	Credit EntryType = "CREDIT"
	Debit  EntryType = "DEBIT"
)

// IsValid reports whether t is one of the known entry types.
func (t EntryType) IsValid() bool {
	return t == Credit || t == Debit
}

// LedgerEntry is an immutable financial record of the trust.
// Entries are only ever appended; they are never mutated or deleted.
type LedgerEntry struct {
	ID               string          `json:"id"`
	Date             time.Time       `json:"date"`
	Description      string          `json:"description"`
	Amount           decimal.Decimal `json:"amount"` // Always positive
	Type             EntryType       `json:"type"`
	RelatedRequestID *string         `json:"related_request_id,omitempty"` // Weak back-reference, lookup only
	CreatedBy        *string         `json:"created_by,omitempty"`
	// Sequence is assigned by the store at append time and breaks ties between equal dates.
	Sequence int64 `json:"sequence"`
}

// SignedAmount returns the amount with CREDIT positive and DEBIT negative.
func (e LedgerEntry) SignedAmount() decimal.Decimal {
	if e.Type == Debit {
		return e.Amount.Neg()
	}
	return e.Amount
}

// RelatesTo reports whether the entry references the given request id.
func (e LedgerEntry) RelatesTo(requestID string) bool {
	return e.RelatedRequestID != nil && *e.RelatedRequestID == requestID
}

// LedgerTotals holds the credit and debit sums of a ledger.
type LedgerTotals struct {
	TotalCredits decimal.Decimal `json:"total_credits"`
	TotalDebits  decimal.Decimal `json:"total_debits"`
}

// Balance is credits minus debits.
func (t LedgerTotals) Balance() decimal.Decimal {
	return t.TotalCredits.Sub(t.TotalDebits)
}

// BalancePoint is one step of the running balance series.
type BalancePoint struct {
	EntryID string          `json:"entry_id"`
	Date    time.Time       `json:"date"`
	Amount  decimal.Decimal `json:"amount"` // Signed
	Balance decimal.Decimal `json:"balance"`
}

// Ledger is an ordered collection of entries with the derived computations the
// rest of the system relies on.
type Ledger []LedgerEntry

// Totals sums credits and debits. The result does not depend on entry order.
func (l Ledger) Totals() LedgerTotals {
	totals := LedgerTotals{TotalCredits: decimal.Zero, TotalDebits: decimal.Zero}
	for _, e := range l {
		switch e.Type {
		case Credit:
			totals.TotalCredits = totals.TotalCredits.Add(e.Amount)
		case Debit:
			totals.TotalDebits = totals.TotalDebits.Add(e.Amount)
		}
	}
	return totals
}

// Balance returns sum(CREDIT) - sum(DEBIT).
func (l Ledger) Balance() decimal.Decimal {
	return l.Totals().Balance()
}

// Chronological returns a copy sorted ascending by date, ties broken by Sequence.
func (l Ledger) Chronological() Ledger {
	sorted := make(Ledger, len(l))
	copy(sorted, l)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		return sorted[i].Sequence < sorted[j].Sequence
	})
	return sorted
}

// RunningBalanceSeries returns the cumulative signed balance after each entry in
// chronological order.
func (l Ledger) RunningBalanceSeries() []BalancePoint {
	sorted := l.Chronological()
	points := make([]BalancePoint, 0, len(sorted))
	running := decimal.Zero
	for _, e := range sorted {
		signed := e.SignedAmount()
		running = running.Add(signed)
		points = append(points, BalancePoint{
			EntryID: e.ID,
			Date:    e.Date,
			Amount:  signed,
			Balance: running,
		})
	}
	return points
}

// DebitsIn returns the debit entries dated within the given month.
func (l Ledger) DebitsIn(ym YearMonth) Ledger {
	var out Ledger
	for _, e := range l {
		if e.Type == Debit && ym.Contains(e.Date) {
			out = append(out, e)
		}
	}
	return out
}

// GeneralSupportSpend sums the debits within ym that resolve to an approved
// request of beneficiary whose resolution category is General Support.
// Pending and denied requests never contribute.
func (l Ledger) GeneralSupportSpend(requests []TrustRequest, beneficiary string, ym YearMonth) decimal.Decimal {
	eligible := make(map[string]struct{})
	for _, r := range requests {
		if r.Status == StatusApproved && r.Beneficiary == beneficiary && r.ResolvedCategory() == CategoryGeneralSupport {
			eligible[r.ID] = struct{}{}
		}
	}

	total := decimal.Zero
	for _, e := range l.DebitsIn(ym) {
		if e.RelatedRequestID == nil {
			continue
		}
		if _, ok := eligible[*e.RelatedRequestID]; ok {
			total = total.Add(e.Amount)
		}
	}
	return total
}
