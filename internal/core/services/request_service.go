package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/SscSPs/trust_desk_app/internal/apperrors"
	"github.com/SscSPs/trust_desk_app/internal/core/domain"
	"github.com/SscSPs/trust_desk_app/internal/core/policy"
	portsrepo "github.com/SscSPs/trust_desk_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/trust_desk_app/internal/core/ports/services"
	"github.com/SscSPs/trust_desk_app/internal/dto"
)

// requestService implements the request queue read model and submissions.
type requestService struct {
	BaseService
	requestRepo portsrepo.RequestRepositoryFacade
	engine      *policy.Engine
	now         Clock
}

// RequestServiceOption is a functional option for configuring the request service
type RequestServiceOption func(*requestService)

// WithRequestClock sets the clock used to stamp submissions.
func WithRequestClock(clock Clock) RequestServiceOption {
	return func(s *requestService) {
		s.now = clock
	}
}

// NewRequestService creates a new request service.
func NewRequestService(requestRepo portsrepo.RequestRepositoryFacade, engine *policy.Engine, options ...RequestServiceOption) portssvc.RequestSvcFacade {
	s := &requestService{
		requestRepo: requestRepo,
		engine:      engine,
		now:         SystemClock,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

var _ portssvc.RequestSvcFacade = (*requestService)(nil)

// GetRequest implements portssvc.RequestReaderSvc
func (s *requestService) GetRequest(ctx context.Context, requestID string) (*dto.RequestResponse, error) {
	request, err := s.requestRepo.FindRequestByID(ctx, requestID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find request", slog.String("request_id", requestID))
		}
		return nil, err
	}

	flags := s.engine.EffectiveFlags(*request)
	return &dto.RequestResponse{
		Request:  *request,
		Severity: domain.SeverityOf(flags),
		Flags:    flags,
	}, nil
}

// Summary implements portssvc.RequestReaderSvc
func (s *requestService) Summary(ctx context.Context) (*domain.RequestsSummary, error) {
	requests, err := s.requestRepo.ListRequests(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list requests")
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	if requests == nil {
		requests = []domain.TrustRequest{}
	}

	count, exposure := pendingExposure(requests, s.engine)
	return &domain.RequestsSummary{
		Requests:        requests,
		PendingCount:    count,
		PendingExposure: exposure,
	}, nil
}

// pendingExposure counts pending requests and sums their effective amounts.
// Requests whose effective flags block them still count as pending but add no
// exposure, since they can never be approved as they stand.
func pendingExposure(requests []domain.TrustRequest, engine *policy.Engine) (int, decimal.Decimal) {
	count := 0
	exposure := decimal.Zero
	for _, r := range requests {
		if !r.IsPending() {
			continue
		}
		count++
		if engine.EffectiveFlags(r).Has(domain.FlagProhibited) {
			continue
		}
		exposure = exposure.Add(r.EffectiveAmount())
	}
	return count, exposure
}

// SubmitRequest implements portssvc.RequestWriterSvc
func (s *requestService) SubmitRequest(ctx context.Context, req dto.SubmitRequestRequest) (*domain.TrustRequest, error) {
	beneficiary := strings.TrimSpace(req.Beneficiary)
	rawText := strings.TrimSpace(req.RawText)
	if beneficiary == "" {
		return nil, apperrors.Validationf("beneficiary is required")
	}
	if rawText == "" {
		return nil, apperrors.Validationf("raw_text is required")
	}

	now := s.now()
	request := domain.TrustRequest{
		ID:          uuid.NewString(),
		Beneficiary: beneficiary,
		SubmittedAt: now,
		RawText:     rawText,
		Status:      domain.StatusPending,
		ActivityLog: []domain.ActivityEvent{{
			Timestamp: now,
			Action:    domain.ActivitySubmitted,
			Actor:     beneficiary,
		}},
	}

	if err := s.requestRepo.CreateRequest(ctx, request); err != nil {
		s.LogError(ctx, err, "Failed to create request", slog.String("beneficiary", beneficiary))
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	s.LogInfo(ctx, "Request submitted",
		slog.String("request_id", request.ID),
		slog.String("beneficiary", beneficiary),
		slog.Bool("known_beneficiary", s.engine.Registry().IsKnown(beneficiary)))
	return &request, nil
}
