package domain

// PolicyFlag marks a policy observation on a request.
type PolicyFlag string

const (
	FlagProhibited         PolicyFlag = "prohibited"
	FlagOverLimit          PolicyFlag = "over_limit" // Reserved; no rule produces it any more.
	FlagRequiresReview     PolicyFlag = "requires_review"
	FlagUnknownBeneficiary PolicyFlag = "unknown_beneficiary"
	FlagExceedsMonthlyCap  PolicyFlag = "exceeds_monthly_cap"
)

// IsValid reports whether f is a known flag.
func (f PolicyFlag) IsValid() bool {
	switch f {
	case FlagProhibited, FlagOverLimit, FlagRequiresReview, FlagUnknownBeneficiary, FlagExceedsMonthlyCap:
		return true
	}
	return false
}

// Severity returns the severity a single flag carries.
func (f PolicyFlag) Severity() Severity {
	if f == FlagProhibited {
		return SeverityBlocked
	}
	return SeverityWarning
}

// Severity is the derived classification of a flag set.
type Severity string

const (
	SeverityOK      Severity = "ok"
	SeverityWarning Severity = "warning"
	SeverityBlocked Severity = "blocked"
)

// SeverityOf is the one place severity is derived: blocked if any flag blocks,
// warning if any flag is present, ok otherwise.
func SeverityOf(flags Flags) Severity {
	severity := SeverityOK
	for _, f := range flags {
		if f.Severity() == SeverityBlocked {
			return SeverityBlocked
		}
		severity = SeverityWarning
	}
	return severity
}

// Flags is a set of policy flags kept in first-seen order.
type Flags []PolicyFlag

// Has reports whether f is in the set.
func (fs Flags) Has(f PolicyFlag) bool {
	for _, existing := range fs {
		if existing == f {
			return true
		}
	}
	return false
}

// Union returns fs ∪ other with duplicates collapsed.
func (fs Flags) Union(other Flags) Flags {
	out := make(Flags, 0, len(fs)+len(other))
	for _, f := range fs {
		if !out.Has(f) {
			out = append(out, f)
		}
	}
	for _, f := range other {
		if !out.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// Without returns the set with f removed.
func (fs Flags) Without(f PolicyFlag) Flags {
	out := make(Flags, 0, len(fs))
	for _, existing := range fs {
		if existing != f {
			out = append(out, existing)
		}
	}
	return out
}

// Equal reports set equality, ignoring order.
func (fs Flags) Equal(other Flags) bool {
	for _, f := range fs {
		if !other.Has(f) {
			return false
		}
	}
	for _, f := range other {
		if !fs.Has(f) {
			return false
		}
	}
	return true
}
