package dto

import (
	"github.com/SscSPs/trust_desk_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SubmitRequestRequest creates a new pending request from free text.
type SubmitRequestRequest struct {
	Beneficiary string `json:"beneficiary" binding:"required"`
	RawText     string `json:"raw_text" binding:"required"`
}

// OverrideRequest carries the officer's partial override. Omitted fields keep
// their current effective value.
type OverrideRequest struct {
	Amount   *decimal.Decimal `json:"amount,omitempty" binding:"omitempty,dgt0,dcur"`
	Category *domain.Category `json:"category,omitempty"`
	Urgency  *domain.Urgency  `json:"urgency,omitempty"`
	Notes    *string          `json:"notes,omitempty"`
}

// IsEmpty reports whether no field was supplied.
func (r OverrideRequest) IsEmpty() bool {
	return r.Amount == nil && r.Category == nil && r.Urgency == nil && r.Notes == nil
}

// ApproveRequest is the body of an approval.
type ApproveRequest struct {
	Notes          string           `json:"notes"`
	ApprovedAmount *decimal.Decimal `json:"approved_amount,omitempty" binding:"omitempty,dcur"` // Takes precedence over override and parse
}

// DenyRequest is the body of a denial.
type DenyRequest struct {
	Notes string `json:"notes"`
}

// BatchRequest names the requests a batch action applies to.
type BatchRequest struct {
	IDs   []string `json:"ids" binding:"required,min=1,dive,required"`
	Notes string   `json:"notes"`
}

// ApproveResponse returns the authoritative request and the ledger entry the approval created.
type ApproveResponse struct {
	Request     domain.TrustRequest `json:"request"`
	LedgerEntry domain.LedgerEntry  `json:"ledger_entry"`
}

// RequestResponse wraps a single request.
type RequestResponse struct {
	Request  domain.TrustRequest `json:"request"`
	Severity domain.Severity     `json:"severity"`
	Flags    domain.Flags        `json:"effective_flags"`
}
