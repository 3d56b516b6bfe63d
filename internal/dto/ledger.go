package dto

import (
	"time"

	"github.com/SscSPs/trust_desk_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateLedgerEntryRequest is the body of a manual ledger append.
type CreateLedgerEntryRequest struct {
	Description string           `json:"description" binding:"required"`
	Amount      decimal.Decimal  `json:"amount" binding:"dgt0,dcur"`
	Type        domain.EntryType `json:"type" binding:"required,oneof=CREDIT DEBIT"`
	Date        *time.Time       `json:"date,omitempty"` // Defaults to now
}

// ListLedgerEntriesParams defines the query parameters for paging ledger entries.
type ListLedgerEntriesParams struct {
	Limit     int     `form:"limit" binding:"omitempty,min=1,max=100"`
	NextToken *string `form:"nextToken"`
}

// ListLedgerEntriesResponse is a newest-first page of ledger entries.
type ListLedgerEntriesResponse struct {
	Entries   []domain.LedgerEntry `json:"entries"`
	NextToken *string              `json:"next_token,omitempty"`
}

// LedgerEntryResponse wraps a single entry.
type LedgerEntryResponse struct {
	Entry domain.LedgerEntry `json:"entry"`
}
