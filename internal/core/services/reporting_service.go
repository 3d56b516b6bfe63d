package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/trust_desk_app/internal/apperrors"
	"github.com/SscSPs/trust_desk_app/internal/core/domain"
	"github.com/SscSPs/trust_desk_app/internal/core/policy"
	portsrepo "github.com/SscSPs/trust_desk_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/trust_desk_app/internal/core/ports/services"
)

// reportingService derives every view on demand from the two stores.
type reportingService struct {
	BaseService
	ledgerRepo  portsrepo.LedgerReader
	requestRepo portsrepo.RequestReader
	registry    policy.Registry
	now         Clock
}

// ReportingServiceOption is a functional option for configuring the reporting service
type ReportingServiceOption func(*reportingService)

// WithReportingClock sets the clock that decides the current month.
func WithReportingClock(clock Clock) ReportingServiceOption {
	return func(s *reportingService) {
		s.now = clock
	}
}

// NewReportingService creates a new reporting service.
func NewReportingService(ledgerRepo portsrepo.LedgerReader, requestRepo portsrepo.RequestReader, registry policy.Registry, options ...ReportingServiceOption) portssvc.ReportingService {
	s := &reportingService{
		ledgerRepo:  ledgerRepo,
		requestRepo: requestRepo,
		registry:    registry,
		now:         SystemClock,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

var _ portssvc.ReportingService = (*reportingService)(nil)

// BalanceSeries implements portssvc.ReportingService
func (s *reportingService) BalanceSeries(ctx context.Context) ([]domain.BalancePoint, error) {
	entries, err := s.ledgerRepo.ListEntries(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list ledger entries for balance series")
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	return domain.Ledger(entries).RunningBalanceSeries(), nil
}

// CategoryBreakdown implements portssvc.ReportingService
func (s *reportingService) CategoryBreakdown(ctx context.Context) ([]domain.CategoryTotal, error) {
	requests, err := s.requestRepo.ListRequests(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list requests for category breakdown")
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	return categoryTotals(requests), nil
}

// categoryTotals sums approved amounts by the category each request was
// approved under, largest total first.
func categoryTotals(requests []domain.TrustRequest) []domain.CategoryTotal {
	sums := map[domain.Category]decimal.Decimal{}
	for _, r := range requests {
		if r.Status != domain.StatusApproved {
			continue
		}
		category := r.ResolvedCategory()
		sums[category] = sums[category].Add(r.ApprovedAmount())
	}

	totals := make([]domain.CategoryTotal, 0, len(sums))
	for category, total := range sums {
		totals = append(totals, domain.CategoryTotal{Category: category, Total: total})
	}
	sort.Slice(totals, func(i, j int) bool {
		if !totals[i].Total.Equal(totals[j].Total) {
			return totals[i].Total.GreaterThan(totals[j].Total)
		}
		return totals[i].Category < totals[j].Category
	})
	return totals
}

// MonthlyTrend implements portssvc.ReportingService
func (s *reportingService) MonthlyTrend(ctx context.Context) ([]domain.MonthTotal, error) {
	entries, err := s.ledgerRepo.ListEntries(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list ledger entries for monthly trend")
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}

	sums := map[string]decimal.Decimal{}
	for _, e := range entries {
		if e.Type != domain.Debit {
			continue
		}
		month := domain.YearMonthOf(e.Date).String()
		sums[month] = sums[month].Add(e.Amount)
	}

	trend := make([]domain.MonthTotal, 0, len(sums))
	for month, total := range sums {
		trend = append(trend, domain.MonthTotal{Month: month, Total: total})
	}
	sort.Slice(trend, func(i, j int) bool { return trend[i].Month < trend[j].Month })
	return trend, nil
}

// BeneficiaryProfile implements portssvc.ReportingService
func (s *reportingService) BeneficiaryProfile(ctx context.Context, beneficiary string) (*domain.BeneficiaryProfile, error) {
	beneficiary = strings.TrimSpace(beneficiary)
	if beneficiary == "" {
		return nil, apperrors.Validationf("beneficiary is required")
	}

	requests, err := s.requestRepo.ListRequests(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	entries, err := s.ledgerRepo.ListEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}

	profile := &domain.BeneficiaryProfile{
		Beneficiary:       beneficiary,
		Known:             s.registry.IsKnown(beneficiary),
		TotalDistributed:  decimal.Zero,
		CurrentMonthTotal: decimal.Zero,
	}

	var own []domain.TrustRequest
	approvedIDs := map[string]struct{}{}
	for _, r := range requests {
		if r.Beneficiary != beneficiary {
			continue
		}
		own = append(own, r)
		profile.Requests.Total++
		switch r.Status {
		case domain.StatusPending:
			profile.Requests.Pending++
		case domain.StatusApproved:
			profile.Requests.Approved++
			approvedIDs[r.ID] = struct{}{}
		case domain.StatusDenied:
			profile.Requests.Denied++
		}
	}

	currentMonth := domain.YearMonthOf(s.now())
	for _, e := range entries {
		if e.Type != domain.Debit || e.RelatedRequestID == nil {
			continue
		}
		if _, ok := approvedIDs[*e.RelatedRequestID]; !ok {
			continue
		}
		profile.TotalDistributed = profile.TotalDistributed.Add(e.Amount)
		if currentMonth.Contains(e.Date) {
			profile.CurrentMonthTotal = profile.CurrentMonthTotal.Add(e.Amount)
		}
	}

	profile.ByCategory = categoryTotals(own)
	return profile, nil
}
