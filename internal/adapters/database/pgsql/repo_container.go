package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/SscSPs/trust_desk_app/internal/core/ports/repositories"
)

// NewRepositoryProvider wires the PostgreSQL repositories onto one pool.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		LedgerRepo:  newPgxLedgerRepository(dbPool),
		RequestRepo: newPgxRequestRepository(dbPool),
	}
}
