package policy_test

import (
	"testing"

	"github.com/SscSPs/trust_desk_app/internal/core/domain"
	"github.com/SscSPs/trust_desk_app/internal/core/policy"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine() *policy.Engine {
	return policy.NewEngine(policy.DefaultRules(), policy.StaticRegistry{"Sam Miller", "Katie Miller"})
}

func parsed(amount int64, category domain.Category) domain.ParsedRequest {
	return domain.ParsedRequest{
		Amount:   decimal.NewFromInt(amount),
		Category: category,
		Urgency:  domain.UrgencyMedium,
	}
}

func TestEngine_Evaluate(t *testing.T) {
	tests := []struct {
		name        string
		parsed      domain.ParsedRequest
		beneficiary string
		spend       decimal.Decimal
		wantFlags   domain.Flags
		wantSev     domain.Severity
	}{
		{
			name:        "compliant education request",
			parsed:      parsed(1200, domain.CategoryEducation),
			beneficiary: "Sam Miller",
			spend:       decimal.Zero,
			wantFlags:   nil,
			wantSev:     domain.SeverityOK,
		},
		{
			name:        "investment is prohibited regardless of amount",
			parsed:      parsed(10, domain.CategoryInvestment),
			beneficiary: "Sam Miller",
			spend:       decimal.Zero,
			wantFlags:   domain.Flags{domain.FlagProhibited},
			wantSev:     domain.SeverityBlocked,
		},
		{
			name:        "vehicle over threshold accumulates both flags",
			parsed:      parsed(45000, domain.CategoryVehicle),
			beneficiary: "Katie Miller",
			spend:       decimal.Zero,
			wantFlags:   domain.Flags{domain.FlagProhibited, domain.FlagRequiresReview},
			wantSev:     domain.SeverityBlocked,
		},
		{
			name:        "threshold itself does not require review",
			parsed:      parsed(20000, domain.CategoryMedical),
			beneficiary: "Sam Miller",
			spend:       decimal.Zero,
			wantFlags:   nil,
			wantSev:     domain.SeverityOK,
		},
		{
			name:        "general support over monthly cap",
			parsed:      parsed(3000, domain.CategoryGeneralSupport),
			beneficiary: "Sam Miller",
			spend:       decimal.NewFromInt(2500),
			wantFlags:   domain.Flags{domain.FlagExceedsMonthlyCap},
			wantSev:     domain.SeverityWarning,
		},
		{
			name:        "general support exactly at cap",
			parsed:      parsed(2500, domain.CategoryGeneralSupport),
			beneficiary: "Sam Miller",
			spend:       decimal.NewFromInt(2500),
			wantFlags:   nil,
			wantSev:     domain.SeverityOK,
		},
		{
			name:        "cap ignores other categories",
			parsed:      parsed(4000, domain.CategoryMedical),
			beneficiary: "Sam Miller",
			spend:       decimal.NewFromInt(4900),
			wantFlags:   nil,
			wantSev:     domain.SeverityOK,
		},
		{
			name:        "unknown beneficiary is a warning",
			parsed:      parsed(500, domain.CategoryEducation),
			beneficiary: "Unknown Person",
			spend:       decimal.Zero,
			wantFlags:   domain.Flags{domain.FlagUnknownBeneficiary},
			wantSev:     domain.SeverityWarning,
		},
	}

	engine := newEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := engine.Evaluate(tt.parsed, tt.beneficiary, tt.spend)
			assert.True(t, tt.wantFlags.Equal(result.Flags), "flags: got %v want %v", result.Flags, tt.wantFlags)
			assert.Len(t, result.Notes, len(tt.wantFlags))
			assert.Equal(t, tt.wantSev, result.Severity)
			assert.NotContains(t, result.Flags, domain.FlagOverLimit)
		})
	}
}

func TestEngine_EvaluateNotes(t *testing.T) {
	engine := newEngine()

	result := engine.Evaluate(parsed(3000, domain.CategoryGeneralSupport), "Sam Miller", decimal.NewFromInt(2500))
	require.Len(t, result.Notes, 1)
	assert.Equal(t,
		"General Support is capped at $5,000.00/month per beneficiary. Already spent this month: $2,500.00. Remaining: $2,500.00. Requested: $3,000.00.",
		result.Notes[0])

	result = engine.Evaluate(parsed(100, domain.CategoryGeneralSupport), "Sam Miller", decimal.NewFromInt(6000))
	require.Len(t, result.Notes, 1)
	assert.Contains(t, result.Notes[0], "Remaining: $0.00.")

	result = engine.Evaluate(parsed(50, domain.CategoryInvestment), "Unknown Person", decimal.Zero)
	assert.Equal(t, []string{
		"Prohibited: Speculative investments are not allowed under trust policy.",
		`Beneficiary "Unknown Person" is not a known trust beneficiary.`,
	}, result.Notes)

	result = engine.Evaluate(parsed(25000, domain.CategoryMedical), "Katie Miller", decimal.Zero)
	assert.Equal(t, []string{"Amount exceeds $20,000.00 — requires high-priority review."}, result.Notes)
}

func TestEngine_EvaluateIsDeterministic(t *testing.T) {
	engine := newEngine()
	p := parsed(30000, domain.CategoryGeneralSupport)

	first := engine.Evaluate(p, "Unknown Person", decimal.NewFromInt(1000))
	second := engine.Evaluate(p, "Unknown Person", decimal.NewFromInt(1000))
	assert.Equal(t, first, second)
}

func TestMerge(t *testing.T) {
	engine := newEngine()
	computed := engine.Evaluate(parsed(500, domain.CategoryEducation), "Unknown Person", decimal.Zero)

	t.Run("severity is recomputed from the union", func(t *testing.T) {
		merged := policy.Merge(domain.Flags{domain.FlagProhibited}, []string{"AI says no"}, computed)
		assert.Equal(t, domain.SeverityBlocked, merged.Severity)
		assert.True(t, domain.Flags{domain.FlagProhibited, domain.FlagUnknownBeneficiary}.Equal(merged.Flags))
		assert.Equal(t, []string{"AI says no", computed.Notes[0]}, merged.Notes)
	})

	t.Run("duplicates collapse", func(t *testing.T) {
		merged := policy.Merge(computed.Flags, computed.Notes, computed)
		assert.Len(t, merged.Flags, 1)
		assert.Len(t, merged.Notes, 1)
		assert.Equal(t, domain.SeverityWarning, merged.Severity)
	})

	t.Run("merging twice is idempotent", func(t *testing.T) {
		once := policy.Merge(domain.Flags{domain.FlagRequiresReview}, []string{"n1"}, computed)
		twice := policy.Merge(once.Flags, once.Notes, computed)
		assert.True(t, once.Flags.Equal(twice.Flags))
		assert.ElementsMatch(t, once.Notes, twice.Notes)
		assert.Equal(t, once.Severity, twice.Severity)
	})

	t.Run("empty inputs yield ok", func(t *testing.T) {
		merged := policy.Merge(nil, nil, policy.Result{})
		assert.Empty(t, merged.Flags)
		assert.Empty(t, merged.Notes)
		assert.Equal(t, domain.SeverityOK, merged.Severity)
	})
}

func TestEngine_EffectiveFlags(t *testing.T) {
	engine := newEngine()
	investment := domain.CategoryInvestment
	education := domain.CategoryEducation

	base := domain.TrustRequest{
		ID:          "req_1",
		Beneficiary: "Sam Miller",
		Status:      domain.StatusPending,
		Parsed: &domain.ParsedRequest{
			Amount:   decimal.NewFromInt(800),
			Category: domain.CategoryInvestment,
			Flags:    domain.Flags{domain.FlagProhibited, domain.FlagRequiresReview},
		},
	}

	assert.Equal(t, domain.SeverityBlocked, engine.EffectiveSeverity(base))

	recategorized := base.Clone()
	recategorized.OfficerOverride = &domain.OfficerOverride{Category: &education}
	flags := engine.EffectiveFlags(recategorized)
	assert.False(t, flags.Has(domain.FlagProhibited))
	assert.True(t, flags.Has(domain.FlagRequiresReview))
	assert.Equal(t, domain.SeverityWarning, engine.EffectiveSeverity(recategorized))

	intoInvestment := domain.TrustRequest{
		Parsed:          &domain.ParsedRequest{Category: domain.CategoryMedical},
		OfficerOverride: &domain.OfficerOverride{Category: &investment},
	}
	assert.True(t, engine.EffectiveFlags(intoInvestment).Has(domain.FlagProhibited))

	medical := domain.CategoryMedical
	aiProhibited := domain.TrustRequest{
		Parsed: &domain.ParsedRequest{
			Amount:   decimal.NewFromInt(9000),
			Category: domain.CategoryOther,
			Flags:    domain.Flags{domain.FlagProhibited},
		},
		OfficerOverride: &domain.OfficerOverride{Category: &medical},
	}
	assert.True(t, engine.EffectiveFlags(aiProhibited).Has(domain.FlagProhibited), "extractor prohibition survives recategorization")
	assert.Equal(t, domain.SeverityBlocked, engine.EffectiveSeverity(aiProhibited))

	assert.Empty(t, engine.EffectiveFlags(domain.TrustRequest{}))
}

func TestStaticRegistry(t *testing.T) {
	registry := policy.StaticRegistry{"Sam Miller"}
	assert.True(t, registry.IsKnown("Sam Miller"))
	assert.True(t, registry.IsKnown("  Sam Miller "))
	assert.False(t, registry.IsKnown("sam miller"))

	names := registry.Names()
	names[0] = "changed"
	assert.True(t, registry.IsKnown("Sam Miller"))
}
