package repositories

import (
	"context"

	"github.com/SscSPs/trust_desk_app/internal/core/domain"
)

// RequestReader defines read operations for trust requests
type RequestReader interface {
	// FindRequestByID retrieves a request by id. Returns apperrors.ErrNotFound if absent.
	FindRequestByID(ctx context.Context, requestID string) (*domain.TrustRequest, error)

	// ListRequests returns all requests ordered by submission time.
	ListRequests(ctx context.Context) ([]domain.TrustRequest, error)
}

// RequestWriter defines write operations for trust requests
type RequestWriter interface {
	// CreateRequest stores a new request. The id must be unique.
	CreateRequest(ctx context.Context, request domain.TrustRequest) error

	// UpdateRequest merges the patch into the stored request and returns the result.
	UpdateRequest(ctx context.Context, requestID string, patch domain.RequestPatch) (*domain.TrustRequest, error)

	// ReplaceRequests swaps the whole collection. Used by reset only.
	ReplaceRequests(ctx context.Context, requests []domain.TrustRequest) error
}

// DecisionCommitter applies a terminal decision atomically across both collections.
type DecisionCommitter interface {
	// CommitDecision verifies the request is still pending, appends entry (when non-nil,
	// filling its id and sequence), and applies the patch, all as one unit. The returned
	// entry is the stored one. Fails with apperrors.ErrInvalidState when the request has
	// already left pending; in that case nothing is written.
	CommitDecision(ctx context.Context, requestID string, patch domain.RequestPatch, entry *domain.LedgerEntry) (*domain.TrustRequest, *domain.LedgerEntry, error)
}

// RequestRepositoryFacade combines all request repository interfaces
type RequestRepositoryFacade interface {
	RequestReader
	RequestWriter
	DecisionCommitter
}
