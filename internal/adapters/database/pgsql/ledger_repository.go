package pgsql

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SscSPs/trust_desk_app/internal/apperrors"
	"github.com/SscSPs/trust_desk_app/internal/core/domain"
	portsrepo "github.com/SscSPs/trust_desk_app/internal/core/ports/repositories"
	"github.com/SscSPs/trust_desk_app/internal/models"
	"github.com/SscSPs/trust_desk_app/internal/utils/mapping"
	"github.com/SscSPs/trust_desk_app/internal/utils/pagination"
)

const ledgerColumns = `sequence, entry_id, entry_date, description, amount, entry_type, related_request_id, created_by`

type PgxLedgerRepository struct {
	BaseRepository
}

// newPgxLedgerRepository creates a new repository for ledger entries.
func newPgxLedgerRepository(pool *pgxpool.Pool) *PgxLedgerRepository {
	return &PgxLedgerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

func scanLedgerEntry(row pgx.Row) (domain.LedgerEntry, error) {
	var m models.LedgerEntry
	err := row.Scan(
		&m.Sequence,
		&m.EntryID,
		&m.EntryDate,
		&m.Description,
		&m.Amount,
		&m.EntryType,
		&m.RelatedRequestID,
		&m.CreatedBy,
	)
	if err != nil {
		return domain.LedgerEntry{}, err
	}
	return mapping.ToDomainLedgerEntry(m), nil
}

func collectLedgerEntries(rows pgx.Rows) ([]domain.LedgerEntry, error) {
	defer rows.Close()
	entries := []domain.LedgerEntry{}
	for rows.Next() {
		entry, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, dbError("failed to scan ledger entry", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("failed to iterate ledger entries", err)
	}
	return entries, nil
}

// ListEntries returns every entry in append order.
func (r *PgxLedgerRepository) ListEntries(ctx context.Context) ([]domain.LedgerEntry, error) {
	return listEntries(ctx, r.Pool)
}

func listEntries(ctx context.Context, q querier) ([]domain.LedgerEntry, error) {
	rows, err := q.Query(ctx, `SELECT `+ledgerColumns+` FROM ledger_entries ORDER BY sequence ASC;`)
	if err != nil {
		return nil, dbError("failed to query ledger entries", err)
	}
	return collectLedgerEntries(rows)
}

// ListEntriesPage pages entries newest first by (entry_date, sequence).
func (r *PgxLedgerRepository) ListEntriesPage(ctx context.Context, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// We fetch one extra item to determine if there's a next page.
	fetchLimit := limit + 1

	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries`
	args := []any{}
	if nextToken != nil && *nextToken != "" {
		cursor, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, apperrors.Validationf("invalid nextToken: %v", err)
		}
		query += ` WHERE (entry_date, sequence) < ($1, $2)`
		args = append(args, cursor.Date, cursor.Sequence)
	}
	query += ` ORDER BY entry_date DESC, sequence DESC LIMIT $` + strconv.Itoa(len(args)+1) + `;`
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, dbError("failed to query ledger page", err)
	}
	entries, err := collectLedgerEntries(rows)
	if err != nil {
		return nil, nil, err
	}

	if len(entries) <= limit {
		return entries, nil, nil
	}
	entries = entries[:limit]
	last := entries[len(entries)-1]
	token := pagination.EncodeToken(last.Date, last.Sequence)
	return entries, &token, nil
}

// FindEntryByID retrieves a ledger entry by its id.
func (r *PgxLedgerRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.LedgerEntry, error) {
	row := r.Pool.QueryRow(ctx, `SELECT `+ledgerColumns+` FROM ledger_entries WHERE entry_id = $1;`, entryID)
	entry, err := scanLedgerEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFoundf("ledger entry %s", entryID)
		}
		return nil, dbError("failed to find ledger entry "+entryID, err)
	}
	return &entry, nil
}

// FindEntriesByRequestID returns the entries that reference the request.
func (r *PgxLedgerRepository) FindEntriesByRequestID(ctx context.Context, requestID string) ([]domain.LedgerEntry, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT `+ledgerColumns+` FROM ledger_entries WHERE related_request_id = $1 ORDER BY sequence ASC;`, requestID)
	if err != nil {
		return nil, dbError("failed to query entries for request "+requestID, err)
	}
	return collectLedgerEntries(rows)
}

// AppendEntry validates and inserts an entry; the database assigns the sequence.
func (r *PgxLedgerRepository) AppendEntry(ctx context.Context, entry domain.LedgerEntry) (*domain.LedgerEntry, error) {
	stored, err := insertEntry(ctx, r.Pool, entry)
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

func insertEntry(ctx context.Context, q querier, entry domain.LedgerEntry) (domain.LedgerEntry, error) {
	if !entry.Amount.IsPositive() {
		return domain.LedgerEntry{}, apperrors.Validationf("ledger amount must be greater than zero")
	}
	if !entry.Type.IsValid() {
		return domain.LedgerEntry{}, apperrors.Validationf("ledger type must be CREDIT or DEBIT, got %q", entry.Type)
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	m := mapping.ToModelLedgerEntry(entry)
	err := q.QueryRow(ctx, `
		INSERT INTO ledger_entries (entry_id, entry_date, description, amount, entry_type, related_request_id, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING sequence;
	`,
		m.EntryID,
		m.EntryDate,
		m.Description,
		m.Amount,
		m.EntryType,
		m.RelatedRequestID,
		m.CreatedBy,
	).Scan(&m.Sequence)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.LedgerEntry{}, apperrors.Validationf("ledger entry %s already exists", m.EntryID)
		}
		return domain.LedgerEntry{}, dbError("failed to insert ledger entry "+m.EntryID, err)
	}
	return mapping.ToDomainLedgerEntry(m), nil
}

// ReplaceEntries swaps the whole ledger in one transaction, keeping supplied
// sequence numbers and numbering the rest after them.
func (r *PgxLedgerRepository) ReplaceEntries(ctx context.Context, entries []domain.LedgerEntry) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM ledger_entries;`); err != nil {
			return dbError("failed to clear ledger", err)
		}

		var maxSeq int64
		for _, e := range entries {
			if e.Sequence > maxSeq {
				maxSeq = e.Sequence
			}
		}

		batch := &pgx.Batch{}
		for _, e := range entries {
			if e.ID == "" {
				e.ID = uuid.NewString()
			}
			if e.Sequence == 0 {
				maxSeq++
				e.Sequence = maxSeq
			}
			m := mapping.ToModelLedgerEntry(e)
			batch.Queue(`
				INSERT INTO ledger_entries (sequence, entry_id, entry_date, description, amount, entry_type, related_request_id, created_by)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
			`, m.Sequence, m.EntryID, m.EntryDate, m.Description, m.Amount, m.EntryType, m.RelatedRequestID, m.CreatedBy)
		}
		// Keep the BIGSERIAL ahead of the explicit sequences.
		batch.Queue(`SELECT setval(pg_get_serial_sequence('ledger_entries', 'sequence'), $1 + 1, false);`, maxSeq)

		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return dbError("failed to insert ledger entries", err)
		}
		return nil
	})
}
