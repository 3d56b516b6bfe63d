package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/trust_desk_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(id string, seq int64, date time.Time, amount int64, t domain.EntryType) domain.LedgerEntry {
	return domain.LedgerEntry{
		ID:       id,
		Date:     date,
		Amount:   decimal.NewFromInt(amount),
		Type:     t,
		Sequence: seq,
	}
}

func TestLedger_BalanceEqualsCreditsMinusDebits(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		ledger  domain.Ledger
		credits int64
		debits  int64
	}{
		{name: "empty ledger", ledger: nil, credits: 0, debits: 0},
		{
			name: "credits only",
			ledger: domain.Ledger{
				entry("a", 1, base, 1000, domain.Credit),
				entry("b", 2, base, 250, domain.Credit),
			},
			credits: 1250,
		},
		{
			name: "mixed, unordered",
			ledger: domain.Ledger{
				entry("c", 3, base.Add(48*time.Hour), 300, domain.Debit),
				entry("a", 1, base, 1000, domain.Credit),
				entry("b", 2, base.Add(24*time.Hour), 200, domain.Debit),
			},
			credits: 1000,
			debits:  500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			totals := tt.ledger.Totals()
			assert.True(t, decimal.NewFromInt(tt.credits).Equal(totals.TotalCredits))
			assert.True(t, decimal.NewFromInt(tt.debits).Equal(totals.TotalDebits))
			assert.True(t, decimal.NewFromInt(tt.credits-tt.debits).Equal(tt.ledger.Balance()))
		})
	}
}

func TestLedger_RunningBalanceSeries(t *testing.T) {
	day1 := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)

	ledger := domain.Ledger{
		entry("late", 4, day2, 100, domain.Debit),
		entry("fund", 1, day1, 1000, domain.Credit),
		// Same timestamp: the lower sequence must come first.
		entry("tie-second", 3, day1.Add(time.Hour), 50, domain.Debit),
		entry("tie-first", 2, day1.Add(time.Hour), 200, domain.Debit),
	}

	series := ledger.RunningBalanceSeries()
	require.Len(t, series, 4)

	wantIDs := []string{"fund", "tie-first", "tie-second", "late"}
	wantBalances := []int64{1000, 800, 750, 650}
	for i, point := range series {
		assert.Equal(t, wantIDs[i], point.EntryID)
		assert.True(t, decimal.NewFromInt(wantBalances[i]).Equal(point.Balance), "balance at %d", i)
	}
	assert.True(t, series[len(series)-1].Balance.Equal(ledger.Balance()))
}

func TestLedger_DebitsIn(t *testing.T) {
	march := domain.YearMonth{Year: 2026, Month: time.March}
	ledger := domain.Ledger{
		entry("feb", 1, time.Date(2026, 2, 28, 23, 59, 0, 0, time.UTC), 10, domain.Debit),
		entry("mar-credit", 2, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), 10, domain.Credit),
		entry("mar", 3, time.Date(2026, 3, 31, 23, 59, 0, 0, time.UTC), 10, domain.Debit),
		entry("apr", 4, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), 10, domain.Debit),
	}

	debits := ledger.DebitsIn(march)
	require.Len(t, debits, 1)
	assert.Equal(t, "mar", debits[0].ID)
}

func TestYearMonth(t *testing.T) {
	ym, err := domain.ParseYearMonth("2026-02")
	require.NoError(t, err)
	assert.Equal(t, "2026-02", ym.String())
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), ym.End())
	assert.True(t, ym.Contains(time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)))

	_, err = domain.ParseYearMonth("February")
	assert.Error(t, err)
}

func TestLedger_GeneralSupportSpend(t *testing.T) {
	march := domain.YearMonth{Year: 2026, Month: time.March}
	inMarch := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	support := domain.CategoryGeneralSupport
	medical := domain.CategoryMedical

	approved := func(id, beneficiary string, category *domain.Category) domain.TrustRequest {
		return domain.TrustRequest{
			ID:          id,
			Beneficiary: beneficiary,
			Status:      domain.StatusApproved,
			Resolution:  &domain.RequestResolution{Action: domain.StatusApproved, Category: category},
		}
	}
	linked := func(id, requestID string, date time.Time, amount int64) domain.LedgerEntry {
		e := entry(id, 0, date, amount, domain.Debit)
		e.RelatedRequestID = &requestID
		return e
	}

	requests := []domain.TrustRequest{
		approved("r1", "Sam Miller", &support),
		approved("r2", "Sam Miller", &medical),
		approved("r3", "Katie Miller", &support),
		{ID: "r4", Beneficiary: "Sam Miller", Status: domain.StatusDenied},
		approved("r5", "Sam Miller", &support),
	}
	ledger := domain.Ledger{
		linked("e1", "r1", inMarch, 1500),
		linked("e2", "r2", inMarch, 900),
		linked("e3", "r3", inMarch, 700),
		linked("e4", "r4", inMarch, 300),
		linked("e5", "r5", time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC), 1000),
		entry("e6", 0, inMarch, 50, domain.Debit),
	}

	assert.True(t, decimal.NewFromInt(1500).Equal(ledger.GeneralSupportSpend(requests, "Sam Miller", march)))
	assert.True(t, decimal.NewFromInt(700).Equal(ledger.GeneralSupportSpend(requests, "Katie Miller", march)))
	assert.True(t, decimal.Zero.Equal(ledger.GeneralSupportSpend(requests, "Nobody", march)))
}
