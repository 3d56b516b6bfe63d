package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SscSPs/trust_desk_app/internal/apperrors"
	"github.com/SscSPs/trust_desk_app/internal/core/domain"
	portsrepo "github.com/SscSPs/trust_desk_app/internal/core/ports/repositories"
	"github.com/SscSPs/trust_desk_app/internal/models"
	"github.com/SscSPs/trust_desk_app/internal/utils/mapping"
)

const requestColumns = `request_id, beneficiary, submitted_at, raw_text, status, parsed, officer_override, resolution, activity_log`

type PgxRequestRepository struct {
	BaseRepository
}

// newPgxRequestRepository creates a new repository for trust requests.
func newPgxRequestRepository(pool *pgxpool.Pool) *PgxRequestRepository {
	return &PgxRequestRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.RequestRepositoryFacade = (*PgxRequestRepository)(nil)

func scanRequest(row pgx.Row) (domain.TrustRequest, error) {
	var m models.TrustRequest
	err := row.Scan(
		&m.RequestID,
		&m.Beneficiary,
		&m.SubmittedAt,
		&m.RawText,
		&m.Status,
		&m.Parsed,
		&m.OfficerOverride,
		&m.Resolution,
		&m.ActivityLog,
	)
	if err != nil {
		return domain.TrustRequest{}, err
	}
	return mapping.ToDomainTrustRequest(m)
}

// FindRequestByID retrieves a request by its id.
func (r *PgxRequestRepository) FindRequestByID(ctx context.Context, requestID string) (*domain.TrustRequest, error) {
	return findRequest(ctx, r.Pool, requestID, false)
}

// findRequest loads one request, optionally locking its row until the transaction ends.
func findRequest(ctx context.Context, q querier, requestID string, forUpdate bool) (*domain.TrustRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM trust_requests WHERE request_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	request, err := scanRequest(q.QueryRow(ctx, query+`;`, requestID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFoundf("request %s", requestID)
		}
		return nil, dbError("failed to find request "+requestID, err)
	}
	return &request, nil
}

// ListRequests returns every request, oldest submission first.
func (r *PgxRequestRepository) ListRequests(ctx context.Context) ([]domain.TrustRequest, error) {
	rows, err := r.Pool.Query(ctx, `SELECT `+requestColumns+` FROM trust_requests ORDER BY submitted_at ASC, request_id ASC;`)
	if err != nil {
		return nil, dbError("failed to query requests", err)
	}
	defer rows.Close()

	requests := []domain.TrustRequest{}
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, dbError("failed to scan request", err)
		}
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("failed to iterate requests", err)
	}
	return requests, nil
}

const insertRequestQuery = `
	INSERT INTO trust_requests (` + requestColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
`

// CreateRequest inserts a new request; a duplicate id is a validation error.
func (r *PgxRequestRepository) CreateRequest(ctx context.Context, request domain.TrustRequest) error {
	m, err := mapping.ToModelTrustRequest(request)
	if err != nil {
		return dbError("failed to encode request "+request.ID, err)
	}
	_, err = r.Pool.Exec(ctx, insertRequestQuery, requestArgs(m)...)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Validationf("request %s already exists", request.ID)
		}
		return dbError("failed to insert request "+request.ID, err)
	}
	return nil
}

func requestArgs(m models.TrustRequest) []any {
	return []any{
		m.RequestID,
		m.Beneficiary,
		m.SubmittedAt,
		m.RawText,
		m.Status,
		m.Parsed,
		m.OfficerOverride,
		m.Resolution,
		m.ActivityLog,
	}
}

// UpdateRequest merges the patch into the stored request under a row lock.
func (r *PgxRequestRepository) UpdateRequest(ctx context.Context, requestID string, patch domain.RequestPatch) (*domain.TrustRequest, error) {
	var updated *domain.TrustRequest
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		current, err := findRequest(ctx, tx, requestID, true)
		if err != nil {
			return err
		}
		applied := current.Apply(patch)
		if err := writeRequest(ctx, tx, applied); err != nil {
			return err
		}
		updated = &applied
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func writeRequest(ctx context.Context, q querier, request domain.TrustRequest) error {
	m, err := mapping.ToModelTrustRequest(request)
	if err != nil {
		return dbError("failed to encode request "+request.ID, err)
	}
	_, err = q.Exec(ctx, `
		UPDATE trust_requests
		SET status = $2, parsed = $3, officer_override = $4, resolution = $5, activity_log = $6
		WHERE request_id = $1;
	`, m.RequestID, m.Status, m.Parsed, m.OfficerOverride, m.Resolution, m.ActivityLog)
	if err != nil {
		return dbError("failed to update request "+request.ID, err)
	}
	return nil
}

// ReplaceRequests swaps the whole queue in one transaction.
func (r *PgxRequestRepository) ReplaceRequests(ctx context.Context, requests []domain.TrustRequest) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM trust_requests;`); err != nil {
			return dbError("failed to clear requests", err)
		}
		batch := &pgx.Batch{}
		for _, request := range requests {
			m, err := mapping.ToModelTrustRequest(request)
			if err != nil {
				return dbError("failed to encode request "+request.ID, err)
			}
			batch.Queue(insertRequestQuery, requestArgs(m)...)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return dbError("failed to insert requests", err)
		}
		return nil
	})
}

// CommitDecision locks the request row, re-checks that it is pending, inserts
// the debit when one is given and applies the patch, all in one transaction.
func (r *PgxRequestRepository) CommitDecision(ctx context.Context, requestID string, patch domain.RequestPatch, entry *domain.LedgerEntry) (*domain.TrustRequest, *domain.LedgerEntry, error) {
	var (
		updated *domain.TrustRequest
		stored  *domain.LedgerEntry
	)
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		current, err := findRequest(ctx, tx, requestID, true)
		if err != nil {
			return err
		}
		if !current.IsPending() {
			return fmt.Errorf("%w (status %s)", apperrors.ErrInvalidState, current.Status)
		}

		if entry != nil {
			inserted, err := insertEntry(ctx, tx, *entry)
			if err != nil {
				return err
			}
			stored = &inserted
		}

		applied := current.Apply(patch)
		if err := writeRequest(ctx, tx, applied); err != nil {
			return err
		}
		updated = &applied
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return updated, stored, nil
}
