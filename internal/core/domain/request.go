package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RequestStatus is the lifecycle state of a trust request.
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusDenied   RequestStatus = "denied"
)

// IsTerminal reports whether no further transition is possible.
func (s RequestStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusDenied
}

// ActivityAction names an entry in a request's activity log.
type ActivityAction string

const (
	ActivitySubmitted       ActivityAction = "submitted"
	ActivityParsed          ActivityAction = "parsed"
	ActivityOverrideUpdated ActivityAction = "override_updated"
	ActivityApproved        ActivityAction = "approved"
	ActivityDenied          ActivityAction = "denied"
)

// ActivityEvent is an append-only log entry on a request.
type ActivityEvent struct {
	Timestamp time.Time      `json:"timestamp"`
	Action    ActivityAction `json:"action"`
	Actor     string         `json:"actor"`
	Detail    string         `json:"detail,omitempty"`
}

// OfficerOverride holds officer-supplied values that take precedence over the
// parsed ones. Unset fields fall back to the parse.
type OfficerOverride struct {
	Amount   *decimal.Decimal `json:"amount,omitempty"`
	Category *Category        `json:"category,omitempty"`
	Urgency  *Urgency         `json:"urgency,omitempty"`
	Notes    *string          `json:"notes,omitempty"`
}

// RequestResolution records the terminal decision on a request.
type RequestResolution struct {
	Action         RequestStatus    `json:"action"`
	DecidedBy      string           `json:"decided_by"`
	DecidedAt      time.Time        `json:"decided_at"`
	Notes          string           `json:"notes"`
	ApprovedAmount *decimal.Decimal `json:"approved_amount,omitempty"` // Present iff approved
	LedgerEntryID  *string          `json:"ledger_entry_id,omitempty"` // Present iff approved
	Category       *Category        `json:"category,omitempty"`        // Effective category at approval
}

// TrustRequest is a beneficiary's distribution request and its lifecycle.
type TrustRequest struct {
	ID              string             `json:"id"`
	Beneficiary     string             `json:"beneficiary"`
	SubmittedAt     time.Time          `json:"submitted_at"`
	RawText         string             `json:"raw_text"`
	Status          RequestStatus      `json:"status"`
	Parsed          *ParsedRequest     `json:"parsed,omitempty"`
	OfficerOverride *OfficerOverride   `json:"officer_override,omitempty"`
	Resolution      *RequestResolution `json:"resolution,omitempty"`
	ActivityLog     []ActivityEvent    `json:"activity_log"`
}

// IsPending reports whether the request still awaits a decision.
func (r TrustRequest) IsPending() bool {
	return r.Status == StatusPending
}

// EffectiveAmount is the override amount if set, else the parsed amount, else zero.
func (r TrustRequest) EffectiveAmount() decimal.Decimal {
	if r.OfficerOverride != nil && r.OfficerOverride.Amount != nil {
		return *r.OfficerOverride.Amount
	}
	if r.Parsed != nil {
		return r.Parsed.Amount
	}
	return decimal.Zero
}

// EffectiveCategory is the override category if set, else the parsed category.
// The boolean is false when neither is available.
func (r TrustRequest) EffectiveCategory() (Category, bool) {
	if r.OfficerOverride != nil && r.OfficerOverride.Category != nil {
		return *r.OfficerOverride.Category, true
	}
	if r.Parsed != nil {
		return r.Parsed.Category, true
	}
	return "", false
}

// EffectiveUrgency is the override urgency if set, else the parsed urgency.
func (r TrustRequest) EffectiveUrgency() (Urgency, bool) {
	if r.OfficerOverride != nil && r.OfficerOverride.Urgency != nil {
		return *r.OfficerOverride.Urgency, true
	}
	if r.Parsed != nil {
		return r.Parsed.Urgency, true
	}
	return "", false
}

// ResolvedCategory is the category captured when the request was approved,
// falling back to the effective category for records written without one.
func (r TrustRequest) ResolvedCategory() Category {
	if r.Resolution != nil && r.Resolution.Category != nil {
		return *r.Resolution.Category
	}
	if c, ok := r.EffectiveCategory(); ok {
		return c
	}
	return CategoryOther
}

// ApprovedAmount returns the resolution amount of an approved request, zero otherwise.
func (r TrustRequest) ApprovedAmount() decimal.Decimal {
	if r.Status != StatusApproved || r.Resolution == nil || r.Resolution.ApprovedAmount == nil {
		return decimal.Zero
	}
	return *r.Resolution.ApprovedAmount
}

// RequestPatch is a partial update merged into an existing request.
// Nil fields are left unchanged; AppendEvents are appended to the activity log.
type RequestPatch struct {
	Status          *RequestStatus
	Parsed          *ParsedRequest
	OfficerOverride *OfficerOverride
	Resolution      *RequestResolution
	AppendEvents    []ActivityEvent
}

// Apply returns a copy of r with the patch merged in.
func (r TrustRequest) Apply(p RequestPatch) TrustRequest {
	out := r.Clone()
	if p.Status != nil {
		out.Status = *p.Status
	}
	if p.Parsed != nil {
		parsed := p.Parsed.clone()
		out.Parsed = &parsed
	}
	if p.OfficerOverride != nil {
		override := p.OfficerOverride.clone()
		out.OfficerOverride = &override
	}
	if p.Resolution != nil {
		resolution := *p.Resolution
		out.Resolution = &resolution
	}
	if len(p.AppendEvents) > 0 {
		out.ActivityLog = append(out.ActivityLog, p.AppendEvents...)
	}
	return out
}

// Clone returns a deep copy so callers can never alias store-owned state.
func (r TrustRequest) Clone() TrustRequest {
	out := r
	if r.Parsed != nil {
		parsed := r.Parsed.clone()
		out.Parsed = &parsed
	}
	if r.OfficerOverride != nil {
		override := r.OfficerOverride.clone()
		out.OfficerOverride = &override
	}
	if r.Resolution != nil {
		resolution := *r.Resolution
		out.Resolution = &resolution
	}
	out.ActivityLog = make([]ActivityEvent, len(r.ActivityLog))
	copy(out.ActivityLog, r.ActivityLog)
	return out
}

func (p ParsedRequest) clone() ParsedRequest {
	out := p
	out.PolicyNotes = append([]string(nil), p.PolicyNotes...)
	out.Flags = append(Flags(nil), p.Flags...)
	return out
}

func (o OfficerOverride) clone() OfficerOverride {
	out := OfficerOverride{}
	if o.Amount != nil {
		v := *o.Amount
		out.Amount = &v
	}
	if o.Category != nil {
		v := *o.Category
		out.Category = &v
	}
	if o.Urgency != nil {
		v := *o.Urgency
		out.Urgency = &v
	}
	if o.Notes != nil {
		v := *o.Notes
		out.Notes = &v
	}
	return out
}
