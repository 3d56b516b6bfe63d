package domain

import "github.com/shopspring/decimal"

// Category classifies what a distribution request is for.
type Category string

const (
	CategoryEducation      Category = "Education"
	CategoryMedical        Category = "Medical"
	CategoryGeneralSupport Category = "General Support"
	CategoryInvestment     Category = "Investment"
	CategoryVehicle        Category = "Vehicle"
	CategoryOther          Category = "Other"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryEducation,
	CategoryMedical,
	CategoryGeneralSupport,
	CategoryInvestment,
	CategoryVehicle,
	CategoryOther,
}

// IsValid reports whether c is a known category.
func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// NormalizeCategory maps unknown values to CategoryOther.
func NormalizeCategory(s string) Category {
	c := Category(s)
	if c.IsValid() {
		return c
	}
	return CategoryOther
}

// Urgency is how time-sensitive a request is.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

// IsValid reports whether u is a known urgency level.
func (u Urgency) IsValid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical:
		return true
	}
	return false
}

// NormalizeUrgency maps unknown values to UrgencyMedium.
func NormalizeUrgency(s string) Urgency {
	u := Urgency(s)
	if u.IsValid() {
		return u
	}
	return UrgencyMedium
}

// ParsedRequest is the structured form of a free-text request, as produced by
// the extraction collaborator and enriched by the policy engine.
type ParsedRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Category    Category        `json:"category"`
	Urgency     Urgency         `json:"urgency"`
	Summary     string          `json:"summary"`
	PolicyNotes []string        `json:"policy_notes"`
	Flags       Flags           `json:"flags"`
}

// Severity derives the request severity from its flags.
func (p ParsedRequest) Severity() Severity {
	return SeverityOf(p.Flags)
}

// ParseOutcome is the result of parsing free text: the merged parse and, when
// the parse was attached to a stored request, that request after the update.
type ParseOutcome struct {
	Parsed   ParsedRequest `json:"parsed"`
	Severity Severity      `json:"severity"`
	Request  *TrustRequest `json:"request,omitempty"`
}
