package services

import (
	"context"

	"github.com/SscSPs/trust_desk_app/internal/core/domain"
	"github.com/SscSPs/trust_desk_app/internal/dto"
)

// ParseSvc runs free text through the extractor and the policy engine
type ParseSvc interface {
	// Parse extracts and evaluates the text, attaching the result to the request when one is named.
	Parse(ctx context.Context, req dto.ParseRequest) (*domain.ParseOutcome, error)

	// ParseAllPending parses every pending request that has no parse yet.
	ParseAllPending(ctx context.Context) (domain.BatchResult, error)
}
