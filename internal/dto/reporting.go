package dto

import (
	"github.com/SscSPs/trust_desk_app/internal/core/domain"
)

// BalanceSeriesResponse is the running balance in chronological order.
type BalanceSeriesResponse struct {
	Points []domain.BalancePoint `json:"points"`
}

// CategoryBreakdownResponse is approved distributions grouped by category, largest first.
type CategoryBreakdownResponse struct {
	Categories []domain.CategoryTotal `json:"categories"`
}

// MonthlyTrendResponse is debit totals per calendar month, oldest first.
type MonthlyTrendResponse struct {
	Months []domain.MonthTotal `json:"months"`
}
