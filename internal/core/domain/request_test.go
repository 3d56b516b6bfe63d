package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/trust_desk_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverityOf(t *testing.T) {
	tests := []struct {
		name  string
		flags domain.Flags
		want  domain.Severity
	}{
		{name: "no flags", flags: nil, want: domain.SeverityOK},
		{name: "warning only", flags: domain.Flags{domain.FlagUnknownBeneficiary}, want: domain.SeverityWarning},
		{name: "reserved over_limit warns", flags: domain.Flags{domain.FlagOverLimit}, want: domain.SeverityWarning},
		{
			name:  "prohibited wins over warnings",
			flags: domain.Flags{domain.FlagRequiresReview, domain.FlagProhibited},
			want:  domain.SeverityBlocked,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.SeverityOf(tt.flags))
		})
	}
}

func TestFlags_UnionCollapsesDuplicates(t *testing.T) {
	a := domain.Flags{domain.FlagRequiresReview, domain.FlagProhibited}
	b := domain.Flags{domain.FlagProhibited, domain.FlagUnknownBeneficiary}

	union := a.Union(b)
	assert.Equal(t, domain.Flags{domain.FlagRequiresReview, domain.FlagProhibited, domain.FlagUnknownBeneficiary}, union)
	assert.True(t, union.Equal(b.Union(a)))
	assert.False(t, union.Without(domain.FlagProhibited).Has(domain.FlagProhibited))
}

func TestTrustRequest_EffectiveValues(t *testing.T) {
	medical := domain.CategoryMedical
	high := domain.UrgencyHigh
	overrideAmount := decimal.NewFromInt(200)

	req := domain.TrustRequest{
		ID:     "req_1",
		Status: domain.StatusPending,
		Parsed: &domain.ParsedRequest{
			Amount:   decimal.NewFromInt(500),
			Category: domain.CategoryEducation,
			Urgency:  domain.UrgencyLow,
		},
	}

	assert.True(t, decimal.NewFromInt(500).Equal(req.EffectiveAmount()))
	category, ok := req.EffectiveCategory()
	require.True(t, ok)
	assert.Equal(t, domain.CategoryEducation, category)

	req.OfficerOverride = &domain.OfficerOverride{Amount: &overrideAmount, Category: &medical, Urgency: &high}
	assert.True(t, overrideAmount.Equal(req.EffectiveAmount()))
	category, _ = req.EffectiveCategory()
	assert.Equal(t, domain.CategoryMedical, category)
	urgency, _ := req.EffectiveUrgency()
	assert.Equal(t, domain.UrgencyHigh, urgency)

	// Partial override falls back to the parse for unset fields.
	req.OfficerOverride = &domain.OfficerOverride{Urgency: &high}
	assert.True(t, decimal.NewFromInt(500).Equal(req.EffectiveAmount()))

	unparsed := domain.TrustRequest{Status: domain.StatusPending}
	assert.True(t, unparsed.EffectiveAmount().IsZero())
	_, ok = unparsed.EffectiveCategory()
	assert.False(t, ok)
}

func TestTrustRequest_ApplyDoesNotAlias(t *testing.T) {
	original := domain.TrustRequest{
		ID:     "req_1",
		Status: domain.StatusPending,
		ActivityLog: []domain.ActivityEvent{
			{Timestamp: time.Now(), Action: domain.ActivitySubmitted, Actor: "Sam Miller"},
		},
	}

	approved := domain.StatusApproved
	updated := original.Apply(domain.RequestPatch{
		Status:       &approved,
		AppendEvents: []domain.ActivityEvent{{Action: domain.ActivityApproved, Actor: "Officer"}},
	})

	assert.Equal(t, domain.StatusPending, original.Status)
	assert.Len(t, original.ActivityLog, 1)
	assert.Equal(t, domain.StatusApproved, updated.Status)
	require.Len(t, updated.ActivityLog, 2)
	assert.Equal(t, domain.ActivityApproved, updated.ActivityLog[1].Action)
}

func TestNormalizeEnums(t *testing.T) {
	assert.Equal(t, domain.CategoryGeneralSupport, domain.NormalizeCategory("General Support"))
	assert.Equal(t, domain.CategoryOther, domain.NormalizeCategory("Luxury"))
	assert.Equal(t, domain.UrgencyCritical, domain.NormalizeUrgency("critical"))
	assert.Equal(t, domain.UrgencyMedium, domain.NormalizeUrgency("ASAP"))
}
