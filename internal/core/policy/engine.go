// Package policy evaluates parsed distribution requests against the trust policy.
// Everything here is pure: no I/O, no clocks, no shared state.
package policy

import (
	"fmt"
	"strings"

	"github.com/SscSPs/trust_desk_app/internal/core/domain"
	"github.com/SscSPs/trust_desk_app/internal/utils"
	"github.com/shopspring/decimal"
)

// Rules are the numeric and categorical limits of the trust policy.
type Rules struct {
	// MonthlyCap bounds General Support distributions per beneficiary per calendar month.
	MonthlyCap decimal.Decimal
	// ReviewThreshold is the amount above which a request requires high-priority review.
	ReviewThreshold decimal.Decimal
	// ProhibitedCategories maps each prohibited category to the class named in notes.
	ProhibitedCategories map[domain.Category]string
}

// DefaultRules returns the trust's standing policy.
func DefaultRules() Rules {
	return Rules{
		MonthlyCap:      decimal.NewFromInt(5000),
		ReviewThreshold: decimal.NewFromInt(20000),
		ProhibitedCategories: map[domain.Category]string{
			domain.CategoryInvestment: "Speculative investments",
			domain.CategoryVehicle:    "Luxury vehicles",
		},
	}
}

// Registry answers whether a beneficiary is known to the trust.
type Registry interface {
	IsKnown(beneficiary string) bool
	Names() []string
}

// StaticRegistry is a fixed list of known beneficiaries.
type StaticRegistry []string

// IsKnown matches names exactly, ignoring surrounding whitespace.
func (r StaticRegistry) IsKnown(beneficiary string) bool {
	name := strings.TrimSpace(beneficiary)
	for _, known := range r {
		if known == name {
			return true
		}
	}
	return false
}

// Names returns a copy of the registry.
func (r StaticRegistry) Names() []string {
	return append([]string(nil), r...)
}

// Result is the outcome of evaluating one request.
type Result struct {
	Flags    domain.Flags    `json:"flags"`
	Notes    []string        `json:"notes"`
	Severity domain.Severity `json:"severity"`
}

// Engine evaluates requests against a fixed rule set and registry.
type Engine struct {
	rules    Rules
	registry Registry
}

// NewEngine creates a policy engine.
func NewEngine(rules Rules, registry Registry) *Engine {
	if registry == nil {
		registry = StaticRegistry{}
	}
	return &Engine{rules: rules, registry: registry}
}

// Rules returns the rule set the engine enforces.
func (e *Engine) Rules() Rules {
	return e.rules
}

// Registry returns the known-beneficiary registry.
func (e *Engine) Registry() Registry {
	return e.registry
}

// IsProhibited reports whether the category is prohibited outright.
func (e *Engine) IsProhibited(c domain.Category) bool {
	_, ok := e.rules.ProhibitedCategories[c]
	return ok
}

// Evaluate applies every rule independently; flags and notes accumulate.
// cumulativeMonthlySpend is the beneficiary's approved General Support total for the current month.
func (e *Engine) Evaluate(parsed domain.ParsedRequest, beneficiary string, cumulativeMonthlySpend decimal.Decimal) Result {
	var flags domain.Flags
	var notes []string

	if class, ok := e.rules.ProhibitedCategories[parsed.Category]; ok {
		flags = append(flags, domain.FlagProhibited)
		notes = append(notes, fmt.Sprintf("Prohibited: %s are not allowed under trust policy.", class))
	}

	if parsed.Amount.GreaterThan(e.rules.ReviewThreshold) {
		flags = append(flags, domain.FlagRequiresReview)
		notes = append(notes, fmt.Sprintf("Amount exceeds %s — requires high-priority review.",
			utils.FormatUSD(e.rules.ReviewThreshold)))
	}

	if parsed.Category == domain.CategoryGeneralSupport {
		if exceeded, remaining := e.CapCheck(cumulativeMonthlySpend, parsed.Amount); exceeded {
			flags = append(flags, domain.FlagExceedsMonthlyCap)
			notes = append(notes, fmt.Sprintf(
				"General Support is capped at %s/month per beneficiary. Already spent this month: %s. Remaining: %s. Requested: %s.",
				utils.FormatUSD(e.rules.MonthlyCap),
				utils.FormatUSD(cumulativeMonthlySpend),
				utils.FormatUSD(remaining),
				utils.FormatUSD(parsed.Amount),
			))
		}
	}

	if !e.registry.IsKnown(beneficiary) {
		flags = append(flags, domain.FlagUnknownBeneficiary)
		notes = append(notes, fmt.Sprintf("Beneficiary %q is not a known trust beneficiary.", beneficiary))
	}

	return Result{
		Flags:    flags,
		Notes:    notes,
		Severity: domain.SeverityOf(flags),
	}
}

// CapCheck reports whether spent+amount exceeds the monthly cap, and the
// remaining headroom max(0, cap-spent) rounded to currency precision.
func (e *Engine) CapCheck(spent, amount decimal.Decimal) (bool, decimal.Decimal) {
	remaining := decimal.Max(decimal.Zero, e.rules.MonthlyCap.Sub(spent))
	return spent.Add(amount).GreaterThan(e.rules.MonthlyCap), utils.RoundCurrency(remaining)
}

// EffectiveFlags returns the flags that govern a request right now. The stored
// parse flags apply, except that an officer category override replaces a
// prohibition derived from the parsed category with one computed from the
// overriding category. A prohibition the extractor raised on its own survives
// any recategorization.
func (e *Engine) EffectiveFlags(req domain.TrustRequest) domain.Flags {
	var flags domain.Flags
	if req.Parsed != nil {
		flags = append(flags, req.Parsed.Flags...)
	}

	category, ok := req.EffectiveCategory()
	overridden := req.OfficerOverride != nil && req.OfficerOverride.Category != nil
	if overridden && req.Parsed != nil && e.IsProhibited(req.Parsed.Category) {
		flags = flags.Without(domain.FlagProhibited)
	}
	if ok && e.IsProhibited(category) {
		flags = flags.Union(domain.Flags{domain.FlagProhibited})
	}
	return flags
}

// EffectiveSeverity is SeverityOf(EffectiveFlags(req)).
func (e *Engine) EffectiveSeverity(req domain.TrustRequest) domain.Severity {
	return domain.SeverityOf(e.EffectiveFlags(req))
}
