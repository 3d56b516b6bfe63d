package services_test

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/SscSPs/trust_desk_app/internal/adapters/database/memory"
	"github.com/SscSPs/trust_desk_app/internal/core/domain"
	"github.com/SscSPs/trust_desk_app/internal/core/policy"
	"github.com/SscSPs/trust_desk_app/internal/core/ports"
	portsrepo "github.com/SscSPs/trust_desk_app/internal/core/ports/repositories"
)

var (
	testNow     = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	testOfficer = "Margaret Chen"
)

func fixedClock() time.Time { return testNow }

func testEngine() *policy.Engine {
	return policy.NewEngine(policy.DefaultRules(), policy.StaticRegistry{"Sam Miller", "Katie Miller"})
}

func credit(id string, amount int64, date time.Time) domain.LedgerEntry {
	return domain.LedgerEntry{ID: id, Date: date, Description: "Deposit " + id, Amount: decimal.NewFromInt(amount), Type: domain.Credit}
}

// parsedRequest builds a pending request that already carries a parse.
func parsedRequest(id, beneficiary string, amount int64, category domain.Category) domain.TrustRequest {
	r := unparsedRequest(id, beneficiary, "please send funds")
	p := domain.ParsedRequest{
		Amount:   decimal.NewFromInt(amount),
		Category: category,
		Urgency:  domain.UrgencyMedium,
		Summary:  string(category) + " request",
	}
	p.Flags = testEngine().Evaluate(p, beneficiary, decimal.Zero).Flags
	r.Parsed = &p
	return r
}

func unparsedRequest(id, beneficiary, rawText string) domain.TrustRequest {
	submitted := testNow.Add(-24 * time.Hour)
	return domain.TrustRequest{
		ID:          id,
		Beneficiary: beneficiary,
		SubmittedAt: submitted,
		RawText:     rawText,
		Status:      domain.StatusPending,
		ActivityLog: []domain.ActivityEvent{{Timestamp: submitted, Action: domain.ActivitySubmitted, Actor: beneficiary}},
	}
}

// newStore returns a memory store holding the given ledger and requests.
func newStore(entries []domain.LedgerEntry, requests ...domain.TrustRequest) *memory.Store {
	store := memory.NewStore()
	ctx := context.Background()
	_ = store.ReplaceEntries(ctx, entries)
	_ = store.ReplaceRequests(ctx, requests)
	return store
}

// --- Mock Extractor ---
type MockExtractor struct {
	mock.Mock
}

var _ ports.Extractor = (*MockExtractor)(nil)

func (m *MockExtractor) Extract(ctx context.Context, rawText, beneficiary string, known []string) (domain.ParsedRequest, error) {
	args := m.Called(ctx, rawText, beneficiary, known)
	return args.Get(0).(domain.ParsedRequest), args.Error(1)
}

func portsRepos(store *memory.Store) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{LedgerRepo: store, RequestRepo: store}
}
