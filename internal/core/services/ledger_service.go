package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/trust_desk_app/internal/apperrors"
	"github.com/SscSPs/trust_desk_app/internal/core/domain"
	portsrepo "github.com/SscSPs/trust_desk_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/trust_desk_app/internal/core/ports/services"
	"github.com/SscSPs/trust_desk_app/internal/dto"
	"github.com/SscSPs/trust_desk_app/internal/utils"
	"github.com/shopspring/decimal"
)

const defaultLedgerPageSize = 20

// ledgerService implements the ledger read model and manual appends.
type ledgerService struct {
	BaseService
	ledgerRepo  portsrepo.LedgerRepositoryFacade
	requestRepo portsrepo.RequestReader
	lock        *CommitLock
	now         Clock
	officer     string
}

// LedgerServiceOption is a functional option for configuring the ledger service
type LedgerServiceOption func(*ledgerService)

// WithLedgerClock sets the clock used to date entries appended without a date.
func WithLedgerClock(clock Clock) LedgerServiceOption {
	return func(s *ledgerService) {
		s.now = clock
	}
}

// WithLedgerCommitLock shares the container's commit lock with the ledger service.
func WithLedgerCommitLock(lock *CommitLock) LedgerServiceOption {
	return func(s *ledgerService) {
		s.lock = lock
	}
}

// WithLedgerOfficer sets the created_by recorded on manual entries.
func WithLedgerOfficer(officer string) LedgerServiceOption {
	return func(s *ledgerService) {
		s.officer = officer
	}
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(ledgerRepo portsrepo.LedgerRepositoryFacade, requestRepo portsrepo.RequestReader, options ...LedgerServiceOption) portssvc.LedgerSvcFacade {
	s := &ledgerService{
		ledgerRepo:  ledgerRepo,
		requestRepo: requestRepo,
		lock:        NewCommitLock(),
		now:         SystemClock,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// Summary implements portssvc.LedgerReaderSvc
func (s *ledgerService) Summary(ctx context.Context) (*domain.LedgerSummary, error) {
	entries, err := s.ledgerRepo.ListEntries(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list ledger entries")
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}

	ledger := domain.Ledger(entries)
	totals := ledger.Totals()
	return &domain.LedgerSummary{
		Entries:      ledger.Chronological(),
		LedgerTotals: totals,
		Balance:      totals.Balance(),
	}, nil
}

// Balance implements portssvc.LedgerReaderSvc
func (s *ledgerService) Balance(ctx context.Context) (decimal.Decimal, error) {
	entries, err := s.ledgerRepo.ListEntries(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	return domain.Ledger(entries).Balance(), nil
}

// MonthlySpend implements portssvc.LedgerReaderSvc
func (s *ledgerService) MonthlySpend(ctx context.Context, beneficiary string, ym domain.YearMonth) (decimal.Decimal, error) {
	return monthlySpend(ctx, s.ledgerRepo, s.requestRepo, beneficiary, ym)
}

// monthlySpend reads both collections fresh on every call. Approval relies on
// that to enforce the cap against the ledger as it stands at commit time.
func monthlySpend(ctx context.Context, ledgerRepo portsrepo.LedgerReader, requestRepo portsrepo.RequestReader, beneficiary string, ym domain.YearMonth) (decimal.Decimal, error) {
	entries, err := ledgerRepo.ListEntries(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	requests, err := requestRepo.ListRequests(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to list requests: %w", err)
	}
	return domain.Ledger(entries).GeneralSupportSpend(requests, beneficiary, ym), nil
}

// ListEntries implements portssvc.LedgerReaderSvc
func (s *ledgerService) ListEntries(ctx context.Context, params dto.ListLedgerEntriesParams) (*dto.ListLedgerEntriesResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultLedgerPageSize
	}

	entries, nextToken, err := s.ledgerRepo.ListEntriesPage(ctx, limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to page ledger entries", slog.Int("limit", limit))
		return nil, err
	}
	if entries == nil {
		entries = []domain.LedgerEntry{}
	}
	return &dto.ListLedgerEntriesResponse{Entries: entries, NextToken: nextToken}, nil
}

// Append implements portssvc.LedgerWriterSvc
func (s *ledgerService) Append(ctx context.Context, req dto.CreateLedgerEntryRequest) (*domain.LedgerEntry, error) {
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, apperrors.Validationf("description is required")
	}
	if !req.Amount.IsPositive() {
		return nil, apperrors.Validationf("amount must be greater than zero")
	}
	if !utils.HasCurrencyPrecision(req.Amount) {
		return nil, apperrors.Validationf("amount must have at most 2 decimal places")
	}
	if !req.Type.IsValid() {
		return nil, apperrors.Validationf("type must be CREDIT or DEBIT, got %q", req.Type)
	}

	date := s.now()
	if req.Date != nil {
		date = req.Date.UTC()
	}
	entry := domain.LedgerEntry{
		Date:        date,
		Description: description,
		Amount:      req.Amount,
		Type:        req.Type,
	}
	if s.officer != "" {
		officer := s.officer
		entry.CreatedBy = &officer
	}

	var stored *domain.LedgerEntry
	err := s.lock.Do(func() error {
		var appendErr error
		stored, appendErr = s.ledgerRepo.AppendEntry(ctx, entry)
		return appendErr
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to append ledger entry")
		return nil, fmt.Errorf("failed to append ledger entry: %w", err)
	}

	s.LogInfo(ctx, "Ledger entry appended",
		slog.String("ledger_entry_id", stored.ID),
		slog.String("type", string(stored.Type)),
		slog.String("amount", stored.Amount.String()))
	return stored, nil
}
