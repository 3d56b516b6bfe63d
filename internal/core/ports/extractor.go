package ports

import (
	"context"

	"github.com/SscSPs/trust_desk_app/internal/core/domain"
)

// Extractor turns a beneficiary's free-text request into structured fields.
// Implementations must return normalized output: known category and urgency
// values, non-nil notes and flags, and a non-negative amount.
type Extractor interface {
	Extract(ctx context.Context, rawText, beneficiary string, knownBeneficiaries []string) (domain.ParsedRequest, error)
}
