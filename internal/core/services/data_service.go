package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/trust_desk_app/internal/core/domain"
	portsrepo "github.com/SscSPs/trust_desk_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/trust_desk_app/internal/core/ports/services"
)

// SeedLoader produces the collections a reset restores.
type SeedLoader func() ([]domain.LedgerEntry, []domain.TrustRequest, error)

type dataService struct {
	BaseService
	ledgerRepo  portsrepo.LedgerWriter
	requestRepo portsrepo.RequestWriter
	seed        SeedLoader
	lock        *CommitLock
}

// NewDataService creates a new data service. lock may be nil when the service
// is used alone, e.g. at startup.
func NewDataService(ledgerRepo portsrepo.LedgerWriter, requestRepo portsrepo.RequestWriter, seed SeedLoader, lock *CommitLock) portssvc.DataService {
	if lock == nil {
		lock = NewCommitLock()
	}
	return &dataService{
		ledgerRepo:  ledgerRepo,
		requestRepo: requestRepo,
		seed:        seed,
		lock:        lock,
	}
}

var _ portssvc.DataService = (*dataService)(nil)

// Reset implements portssvc.DataService
func (s *dataService) Reset(ctx context.Context) error {
	entries, requests, err := s.seed()
	if err != nil {
		s.LogError(ctx, err, "Failed to load seed data")
		return fmt.Errorf("failed to load seed data: %w", err)
	}

	err = s.lock.Do(func() error {
		if err := s.ledgerRepo.ReplaceEntries(ctx, entries); err != nil {
			return fmt.Errorf("failed to reset ledger: %w", err)
		}
		if err := s.requestRepo.ReplaceRequests(ctx, requests); err != nil {
			return fmt.Errorf("failed to reset requests: %w", err)
		}
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Reset failed")
		return err
	}

	s.LogInfo(ctx, "Data reset to seed state",
		slog.Int("ledger_entries", len(entries)),
		slog.Int("requests", len(requests)))
	return nil
}
