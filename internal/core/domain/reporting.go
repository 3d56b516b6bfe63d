package domain

import (
	"github.com/shopspring/decimal"
)

// CategoryTotal is the approved amount distributed under one category.
type CategoryTotal struct {
	Category Category        `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// MonthTotal is the sum of debits within one calendar month.
type MonthTotal struct {
	Month string          `json:"month"` // 2006-01
	Total decimal.Decimal `json:"total"`
}

// StatusCounts counts requests per lifecycle state.
type StatusCounts struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Denied   int `json:"denied"`
}

// BeneficiaryProfile summarizes one beneficiary's history with the trust.
type BeneficiaryProfile struct {
	Beneficiary       string          `json:"beneficiary"`
	Known             bool            `json:"known"`
	TotalDistributed  decimal.Decimal `json:"total_distributed"`
	CurrentMonthTotal decimal.Decimal `json:"current_month_total"`
	Requests          StatusCounts    `json:"requests"`
	ByCategory        []CategoryTotal `json:"by_category"`
}

// LedgerSummary is the ledger read model: entries plus derived totals.
type LedgerSummary struct {
	Entries []LedgerEntry `json:"entries"`
	LedgerTotals
	Balance decimal.Decimal `json:"balance"`
}

// RequestsSummary is the request queue read model.
type RequestsSummary struct {
	Requests        []TrustRequest  `json:"requests"`
	PendingCount    int             `json:"pending_count"`
	PendingExposure decimal.Decimal `json:"pending_exposure"`
}

// BatchResult reports the outcome of a batch approve or deny.
type BatchResult struct {
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Errors    map[string]string `json:"errors,omitempty"` // Request id -> failure message
}
