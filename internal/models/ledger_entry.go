package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryType mirrors the entry_type column.
type EntryType string

const (
	Debit  EntryType = "DEBIT"
	Credit EntryType = "CREDIT"
)

// LedgerEntry is a row of ledger_entries.
type LedgerEntry struct {
	Sequence         int64           `json:"sequence"` // BIGSERIAL primary key
	EntryID          string          `json:"entryID"`
	EntryDate        time.Time       `json:"entryDate"`
	Description      string          `json:"description"`
	Amount           decimal.Decimal `json:"amount"` // NUMERIC(19,4), always positive
	EntryType        EntryType       `json:"entryType"`
	RelatedRequestID *string         `json:"relatedRequestID"` // Nullable
	CreatedBy        *string         `json:"createdBy"`        // Nullable
}
