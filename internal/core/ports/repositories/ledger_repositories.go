package repositories

import (
	"context"

	"github.com/SscSPs/trust_desk_app/internal/core/domain"
)

// LedgerReader defines read operations for ledger entries
type LedgerReader interface {
	// ListEntries returns every entry in append (sequence) order.
	ListEntries(ctx context.Context) ([]domain.LedgerEntry, error)

	// ListEntriesPage returns entries newest first by (date, sequence) using token-based pagination.
	// It returns the entries, a token for the next page, and an error.
	ListEntriesPage(ctx context.Context, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error)

	// FindEntryByID retrieves a single entry.
	FindEntryByID(ctx context.Context, entryID string) (*domain.LedgerEntry, error)

	// FindEntriesByRequestID returns the entries whose related_request_id matches.
	FindEntriesByRequestID(ctx context.Context, requestID string) ([]domain.LedgerEntry, error)
}

// LedgerWriter defines write operations for ledger entries
type LedgerWriter interface {
	// AppendEntry stores a new entry, assigning an id if absent and the next sequence number.
	AppendEntry(ctx context.Context, entry domain.LedgerEntry) (*domain.LedgerEntry, error)

	// ReplaceEntries swaps the whole collection. Used by reset only.
	ReplaceEntries(ctx context.Context, entries []domain.LedgerEntry) error
}

// LedgerRepositoryFacade combines all ledger repository interfaces
type LedgerRepositoryFacade interface {
	LedgerReader
	LedgerWriter
}
