package services

import (
	"context"

	"github.com/SscSPs/trust_desk_app/internal/core/domain"
	"github.com/SscSPs/trust_desk_app/internal/dto"
)

// OverrideSvc applies officer overrides to pending requests
type OverrideSvc interface {
	ApplyOverride(ctx context.Context, requestID string, req dto.OverrideRequest) (*domain.TrustRequest, error)
}

// DecisionSvc moves requests to their terminal states
type DecisionSvc interface {
	// Approve debits the ledger and marks the request approved, atomically.
	Approve(ctx context.Context, requestID string, req dto.ApproveRequest) (*domain.TrustRequest, *domain.LedgerEntry, error)

	// Deny marks the request denied. The ledger is never touched.
	Deny(ctx context.Context, requestID string, req dto.DenyRequest) (*domain.TrustRequest, error)
}

// BatchDecisionSvc applies decisions to many requests, isolating per-item failures
type BatchDecisionSvc interface {
	BatchApprove(ctx context.Context, req dto.BatchRequest) domain.BatchResult
	BatchDeny(ctx context.Context, req dto.BatchRequest) domain.BatchResult
}

// ApprovalSvcFacade combines all approval service interfaces
type ApprovalSvcFacade interface {
	OverrideSvc
	DecisionSvc
	BatchDecisionSvc
}
