package services

import (
	"context"

	"github.com/SscSPs/trust_desk_app/internal/core/domain"
	"github.com/SscSPs/trust_desk_app/internal/dto"
	"github.com/shopspring/decimal"
)

// LedgerReaderSvc defines read operations over the trust ledger
type LedgerReaderSvc interface {
	// Summary returns all entries chronologically with credit/debit totals and the balance.
	Summary(ctx context.Context) (*domain.LedgerSummary, error)

	// Balance returns sum(CREDIT) - sum(DEBIT).
	Balance(ctx context.Context) (decimal.Decimal, error)

	// ListEntries pages entries newest first.
	ListEntries(ctx context.Context, params dto.ListLedgerEntriesParams) (*dto.ListLedgerEntriesResponse, error)

	// MonthlySpend is the approved General Support total for a beneficiary within ym.
	MonthlySpend(ctx context.Context, beneficiary string, ym domain.YearMonth) (decimal.Decimal, error)
}

// LedgerWriterSvc defines write operations over the trust ledger
type LedgerWriterSvc interface {
	// Append validates and stores a manual entry.
	Append(ctx context.Context, req dto.CreateLedgerEntryRequest) (*domain.LedgerEntry, error)
}

// LedgerSvcFacade combines all ledger service interfaces
type LedgerSvcFacade interface {
	LedgerReaderSvc
	LedgerWriterSvc
}
