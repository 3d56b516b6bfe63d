package mapping

import (
	"github.com/SscSPs/trust_desk_app/internal/core/domain"
	"github.com/SscSPs/trust_desk_app/internal/models"
)

// ToModelLedgerEntry converts a domain LedgerEntry to a model LedgerEntry
func ToModelLedgerEntry(d domain.LedgerEntry) models.LedgerEntry {
	return models.LedgerEntry{
		Sequence:         d.Sequence,
		EntryID:          d.ID,
		EntryDate:        d.Date.UTC(),
		Description:      d.Description,
		Amount:           d.Amount,
		EntryType:        models.EntryType(d.Type),
		RelatedRequestID: d.RelatedRequestID,
		CreatedBy:        d.CreatedBy,
	}
}

// ToDomainLedgerEntry converts a model LedgerEntry to a domain LedgerEntry
func ToDomainLedgerEntry(m models.LedgerEntry) domain.LedgerEntry {
	return domain.LedgerEntry{
		ID:               m.EntryID,
		Date:             m.EntryDate.UTC(),
		Description:      m.Description,
		Amount:           m.Amount,
		Type:             domain.EntryType(m.EntryType),
		RelatedRequestID: m.RelatedRequestID,
		CreatedBy:        m.CreatedBy,
		Sequence:         m.Sequence,
	}
}
