package services

import (
	"context"

	"github.com/SscSPs/trust_desk_app/internal/core/domain"
)

// ReportingService derives read-only views from the ledger and the request queue.
// Nothing is cached; every call recomputes from the stores.
type ReportingService interface {
	BalanceSeries(ctx context.Context) ([]domain.BalancePoint, error)
	CategoryBreakdown(ctx context.Context) ([]domain.CategoryTotal, error)
	MonthlyTrend(ctx context.Context) ([]domain.MonthTotal, error)
	BeneficiaryProfile(ctx context.Context, beneficiary string) (*domain.BeneficiaryProfile, error)
}
