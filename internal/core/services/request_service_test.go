package services_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/trust_desk_app/internal/apperrors"
	"github.com/SscSPs/trust_desk_app/internal/core/domain"
	"github.com/SscSPs/trust_desk_app/internal/core/services"
	"github.com/SscSPs/trust_desk_app/internal/dto"
)

func TestRequestService_SubmitRequest(t *testing.T) {
	ctx := context.Background()
	store := newStore(nil)
	service := services.NewRequestService(store, testEngine(), services.WithRequestClock(fixedClock))

	created, err := service.SubmitRequest(ctx, dto.SubmitRequestRequest{Beneficiary: " Sam Miller ", RawText: "Need $3,200 for tuition"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Sam Miller", created.Beneficiary)
	assert.Equal(t, domain.StatusPending, created.Status)
	assert.Nil(t, created.Parsed)
	require.Len(t, created.ActivityLog, 1)
	assert.Equal(t, domain.ActivitySubmitted, created.ActivityLog[0].Action)
	assert.Equal(t, "Sam Miller", created.ActivityLog[0].Actor)

	stored, err := store.FindRequestByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, testNow.Equal(stored.SubmittedAt))

	_, err = service.SubmitRequest(ctx, dto.SubmitRequestRequest{Beneficiary: "", RawText: "x"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	_, err = service.SubmitRequest(ctx, dto.SubmitRequestRequest{Beneficiary: "Sam Miller", RawText: " "})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestRequestService_GetRequest(t *testing.T) {
	ctx := context.Background()
	investment := parsedRequest("r1", "Sam Miller", 800, domain.CategoryInvestment)
	store := newStore(nil, investment)
	service := services.NewRequestService(store, testEngine())

	resp, err := service.GetRequest(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, domain.SeverityBlocked, resp.Severity)
	assert.True(t, resp.Flags.Has(domain.FlagProhibited))

	education := domain.CategoryEducation
	_, err = store.UpdateRequest(ctx, "r1", domain.RequestPatch{OfficerOverride: &domain.OfficerOverride{Category: &education}})
	require.NoError(t, err)

	resp, err = service.GetRequest(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, domain.SeverityOK, resp.Severity)
	assert.Empty(t, resp.Flags)

	_, err = service.GetRequest(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRequestService_Summary(t *testing.T) {
	ctx := context.Background()
	denied := parsedRequest("d", "Katie Miller", 9999, domain.CategoryMedical)
	status := domain.StatusDenied
	store := newStore(nil,
		parsedRequest("a", "Sam Miller", 3200, domain.CategoryEducation),
		parsedRequest("b", "Katie Miller", 850, domain.CategoryMedical),
		parsedRequest("c", "Sam Miller", 15000, domain.CategoryInvestment),
		unparsedRequest("u", "Jordan Blake", "moving costs"),
		denied.Apply(domain.RequestPatch{Status: &status}),
	)
	service := services.NewRequestService(store, testEngine())

	summary, err := service.Summary(ctx)
	require.NoError(t, err)
	assert.Len(t, summary.Requests, 5)
	assert.Equal(t, 4, summary.PendingCount)
	assert.True(t, decimal.NewFromInt(4050).Equal(summary.PendingExposure), "prohibited and decided requests add no exposure, got %s", summary.PendingExposure)

	empty := services.NewRequestService(newStore(nil), testEngine())
	summary, err = empty.Summary(ctx)
	require.NoError(t, err)
	assert.NotNil(t, summary.Requests)
	assert.Zero(t, summary.PendingCount)
}
