package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/SscSPs/trust_desk_app/internal/apperrors"
	"github.com/SscSPs/trust_desk_app/internal/core/domain"
	"github.com/SscSPs/trust_desk_app/internal/core/policy"
	portsrepo "github.com/SscSPs/trust_desk_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/trust_desk_app/internal/core/ports/services"
	"github.com/SscSPs/trust_desk_app/internal/dto"
	"github.com/SscSPs/trust_desk_app/internal/platform/metrics"
	"github.com/SscSPs/trust_desk_app/internal/utils"
)

const defaultDenyConcurrency = 8

// approvalService is the request state machine: override, approve and deny.
type approvalService struct {
	BaseService
	ledgerRepo      portsrepo.LedgerReader
	requestRepo     portsrepo.RequestRepositoryFacade
	engine          *policy.Engine
	lock            *CommitLock
	now             Clock
	officer         string
	metrics         *metrics.Metrics
	denyConcurrency int
}

// ApprovalServiceOption is a functional option for configuring the approval service
type ApprovalServiceOption func(*approvalService)

// WithApprovalClock sets the clock used for decision timestamps and the cap month.
func WithApprovalClock(clock Clock) ApprovalServiceOption {
	return func(s *approvalService) {
		s.now = clock
	}
}

// WithApprovalCommitLock shares the container's commit lock with the approval service.
func WithApprovalCommitLock(lock *CommitLock) ApprovalServiceOption {
	return func(s *approvalService) {
		s.lock = lock
	}
}

// WithApprovalOfficer sets the officer recorded as actor and decider.
func WithApprovalOfficer(officer string) ApprovalServiceOption {
	return func(s *approvalService) {
		s.officer = officer
	}
}

// WithApprovalMetrics records decisions on the given collectors.
func WithApprovalMetrics(m *metrics.Metrics) ApprovalServiceOption {
	return func(s *approvalService) {
		s.metrics = m
	}
}

// WithDenyConcurrency bounds the number of denials a batch runs at once.
func WithDenyConcurrency(n int) ApprovalServiceOption {
	return func(s *approvalService) {
		if n > 0 {
			s.denyConcurrency = n
		}
	}
}

// NewApprovalService creates a new approval service.
func NewApprovalService(ledgerRepo portsrepo.LedgerReader, requestRepo portsrepo.RequestRepositoryFacade, engine *policy.Engine, options ...ApprovalServiceOption) portssvc.ApprovalSvcFacade {
	s := &approvalService{
		ledgerRepo:      ledgerRepo,
		requestRepo:     requestRepo,
		engine:          engine,
		lock:            NewCommitLock(),
		now:             SystemClock,
		officer:         "Trust Officer",
		denyConcurrency: defaultDenyConcurrency,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

var _ portssvc.ApprovalSvcFacade = (*approvalService)(nil)

// ApplyOverride implements portssvc.OverrideSvc
func (s *approvalService) ApplyOverride(ctx context.Context, requestID string, req dto.OverrideRequest) (*domain.TrustRequest, error) {
	if err := validateOverride(req); err != nil {
		return nil, err
	}

	var updated *domain.TrustRequest
	err := s.lock.Do(func() error {
		request, err := s.findPending(ctx, requestID)
		if err != nil {
			return err
		}

		merged, deltas := mergeOverride(*request, req)
		if len(deltas) == 0 {
			updated = request
			return nil
		}

		patch := domain.RequestPatch{
			OfficerOverride: &merged,
			AppendEvents: []domain.ActivityEvent{{
				Timestamp: s.now(),
				Action:    domain.ActivityOverrideUpdated,
				Actor:     s.officer,
				Detail:    strings.Join(deltas, ", "),
			}},
		}
		updated, err = s.requestRepo.UpdateRequest(ctx, requestID, patch)
		if err != nil {
			return fmt.Errorf("failed to store override: %w", err)
		}
		s.LogInfo(ctx, "Officer override applied",
			slog.String("request_id", requestID),
			slog.String("changes", patch.AppendEvents[0].Detail))
		return nil
	})

	s.metrics.IncDecision("override", err)
	if err != nil {
		s.logRejection(ctx, err, "Override rejected", slog.String("request_id", requestID))
		return nil, err
	}
	return updated, nil
}

func validateOverride(req dto.OverrideRequest) error {
	if req.Amount != nil && !req.Amount.IsPositive() {
		return apperrors.Validationf("override amount must be greater than zero")
	}
	if req.Amount != nil && !utils.HasCurrencyPrecision(*req.Amount) {
		return apperrors.Validationf("override amount must have at most 2 decimal places")
	}
	if req.Category != nil && !req.Category.IsValid() {
		return apperrors.Validationf("unknown category %q", *req.Category)
	}
	if req.Urgency != nil && !req.Urgency.IsValid() {
		return apperrors.Validationf("unknown urgency %q", *req.Urgency)
	}
	return nil
}

// mergeOverride folds the supplied fields into the request's existing override
// and describes every field whose effective value actually changes.
func mergeOverride(request domain.TrustRequest, req dto.OverrideRequest) (domain.OfficerOverride, []string) {
	merged := domain.OfficerOverride{}
	if request.OfficerOverride != nil {
		merged = *request.OfficerOverride
	}
	var deltas []string

	if req.Amount != nil && !req.Amount.Equal(request.EffectiveAmount()) {
		amount := *req.Amount
		merged.Amount = &amount
		deltas = append(deltas, "amount → "+utils.FormatUSD(amount))
	}
	if req.Category != nil {
		if current, ok := request.EffectiveCategory(); !ok || current != *req.Category {
			category := *req.Category
			merged.Category = &category
			deltas = append(deltas, "category → "+string(category))
		}
	}
	if req.Urgency != nil {
		if current, ok := request.EffectiveUrgency(); !ok || current != *req.Urgency {
			urgency := *req.Urgency
			merged.Urgency = &urgency
			deltas = append(deltas, "urgency → "+string(urgency))
		}
	}
	if req.Notes != nil {
		current := ""
		if request.OfficerOverride != nil && request.OfficerOverride.Notes != nil {
			current = *request.OfficerOverride.Notes
		}
		if current != *req.Notes {
			notes := *req.Notes
			merged.Notes = &notes
			deltas = append(deltas, "notes updated")
		}
	}
	return merged, deltas
}

// Approve implements portssvc.DecisionSvc
func (s *approvalService) Approve(ctx context.Context, requestID string, req dto.ApproveRequest) (*domain.TrustRequest, *domain.LedgerEntry, error) {
	var (
		approved *domain.TrustRequest
		entry    *domain.LedgerEntry
	)
	err := s.lock.Do(func() error {
		var err error
		approved, entry, err = s.approveLocked(ctx, requestID, req.Notes, req.ApprovedAmount)
		return err
	})

	s.metrics.IncDecision("approve", err)
	if err != nil {
		s.logRejection(ctx, err, "Approval rejected", slog.String("request_id", requestID))
		return nil, nil, err
	}

	s.LogInfo(ctx, "Request approved",
		slog.String("request_id", requestID),
		slog.String("ledger_entry_id", entry.ID),
		slog.String("beneficiary", approved.Beneficiary),
		slog.String("amount", entry.Amount.String()))
	return approved, entry, nil
}

// approveLocked runs every approval check against the stores as they are now
// and commits the debit and the transition together. Callers hold the commit lock.
func (s *approvalService) approveLocked(ctx context.Context, requestID, notes string, explicitAmount *decimal.Decimal) (*domain.TrustRequest, *domain.LedgerEntry, error) {
	request, err := s.findPending(ctx, requestID)
	if err != nil {
		return nil, nil, err
	}

	category, ok := request.EffectiveCategory()
	if !ok {
		category = domain.CategoryOther
	}
	if s.engine.EffectiveFlags(*request).Has(domain.FlagProhibited) {
		return nil, nil, fmt.Errorf("%w: %s requests are prohibited", apperrors.ErrPolicyBlocked, category)
	}

	amount := request.EffectiveAmount()
	if explicitAmount != nil {
		amount = *explicitAmount
	}
	if !amount.IsPositive() {
		return nil, nil, apperrors.Validationf("approval amount must be greater than zero")
	}
	if !utils.HasCurrencyPrecision(amount) {
		return nil, nil, apperrors.Validationf("approval amount must have at most 2 decimal places")
	}

	entries, err := s.ledgerRepo.ListEntries(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read ledger: %w", err)
	}
	balance := domain.Ledger(entries).Balance()
	if amount.GreaterThan(balance) {
		return nil, nil, &apperrors.InsufficientFundsError{Available: balance, Requested: amount}
	}

	now := s.now()
	if category == domain.CategoryGeneralSupport {
		spent, err := monthlySpend(ctx, s.ledgerRepo, s.requestRepo, request.Beneficiary, domain.YearMonthOf(now))
		if err != nil {
			return nil, nil, err
		}
		if exceeded, remaining := s.engine.CapCheck(spent, amount); exceeded {
			return nil, nil, &apperrors.PolicyCapExceededError{
				Cap:       s.engine.Rules().MonthlyCap,
				Spent:     spent,
				Remaining: remaining,
				Requested: amount,
			}
		}
	}

	officer := s.officer
	entry := domain.LedgerEntry{
		ID:               uuid.NewString(),
		Date:             now,
		Description:      fmt.Sprintf("Beneficiary Distribution — %s (%s)", request.Beneficiary, category),
		Amount:           amount,
		Type:             domain.Debit,
		RelatedRequestID: &request.ID,
		CreatedBy:        &officer,
	}
	status := domain.StatusApproved
	patch := domain.RequestPatch{
		Status: &status,
		Resolution: &domain.RequestResolution{
			Action:         domain.StatusApproved,
			DecidedBy:      officer,
			DecidedAt:      now,
			Notes:          notes,
			ApprovedAmount: &amount,
			LedgerEntryID:  &entry.ID,
			Category:       &category,
		},
		AppendEvents: []domain.ActivityEvent{{
			Timestamp: now,
			Action:    domain.ActivityApproved,
			Actor:     officer,
			Detail:    fmt.Sprintf("Approved %s for %s", utils.FormatUSD(amount), category),
		}},
	}

	return s.requestRepo.CommitDecision(ctx, requestID, patch, &entry)
}

// Deny implements portssvc.DecisionSvc
func (s *approvalService) Deny(ctx context.Context, requestID string, req dto.DenyRequest) (*domain.TrustRequest, error) {
	var denied *domain.TrustRequest
	err := s.lock.Do(func() error {
		if _, err := s.findPending(ctx, requestID); err != nil {
			return err
		}

		now := s.now()
		status := domain.StatusDenied
		patch := domain.RequestPatch{
			Status: &status,
			Resolution: &domain.RequestResolution{
				Action:    domain.StatusDenied,
				DecidedBy: s.officer,
				DecidedAt: now,
				Notes:     req.Notes,
			},
			AppendEvents: []domain.ActivityEvent{{
				Timestamp: now,
				Action:    domain.ActivityDenied,
				Actor:     s.officer,
				Detail:    req.Notes,
			}},
		}

		var err error
		denied, _, err = s.requestRepo.CommitDecision(ctx, requestID, patch, nil)
		return err
	})

	s.metrics.IncDecision("deny", err)
	if err != nil {
		s.logRejection(ctx, err, "Denial rejected", slog.String("request_id", requestID))
		return nil, err
	}
	s.LogInfo(ctx, "Request denied", slog.String("request_id", requestID), slog.String("beneficiary", denied.Beneficiary))
	return denied, nil
}

// BatchApprove implements portssvc.BatchDecisionSvc. Items run one after
// another so each cap check sees the debits of the approvals before it.
func (s *approvalService) BatchApprove(ctx context.Context, req dto.BatchRequest) domain.BatchResult {
	result := domain.BatchResult{Errors: map[string]string{}}
	var errs error
	for _, id := range req.IDs {
		if _, _, err := s.Approve(ctx, id, dto.ApproveRequest{Notes: req.Notes}); err != nil {
			result.Failed++
			result.Errors[id] = err.Error()
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", id, err))
			continue
		}
		result.Succeeded++
	}
	s.logBatch(ctx, "approve", result, errs)
	return result
}

// BatchDeny implements portssvc.BatchDecisionSvc
func (s *approvalService) BatchDeny(ctx context.Context, req dto.BatchRequest) domain.BatchResult {
	result := domain.BatchResult{Errors: map[string]string{}}
	var (
		mu   sync.Mutex
		errs error
		g    errgroup.Group
	)
	g.SetLimit(s.denyConcurrency)

	for _, id := range req.IDs {
		g.Go(func() error {
			_, err := s.Deny(ctx, id, dto.DenyRequest{Notes: req.Notes})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed++
				result.Errors[id] = err.Error()
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", id, err))
				return nil
			}
			result.Succeeded++
			return nil
		})
	}
	_ = g.Wait()

	s.logBatch(ctx, "deny", result, errs)
	return result
}

func (s *approvalService) logBatch(ctx context.Context, action string, result domain.BatchResult, errs error) {
	attrs := []any{
		slog.String("action", action),
		slog.Int("succeeded", result.Succeeded),
		slog.Int("failed", result.Failed),
	}
	if errs != nil {
		attrs = append(attrs, slog.Int("error_count", len(multierr.Errors(errs))))
		s.LogWarn(ctx, errs, "Batch finished with failures", attrs...)
		return
	}
	s.LogInfo(ctx, "Batch finished", attrs...)
}

// findPending loads the request and rejects it unless it is still pending.
func (s *approvalService) findPending(ctx context.Context, requestID string) (*domain.TrustRequest, error) {
	request, err := s.requestRepo.FindRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !request.IsPending() {
		return nil, fmt.Errorf("%w (status %s)", apperrors.ErrInvalidState, request.Status)
	}
	return request, nil
}

// logRejection logs expected business rejections at warn and everything else at error.
func (s *approvalService) logRejection(ctx context.Context, err error, msg string, keyvals ...any) {
	if isBusinessRejection(err) {
		s.LogWarn(ctx, err, msg, keyvals...)
		return
	}
	s.LogError(ctx, err, msg, keyvals...)
}

func isBusinessRejection(err error) bool {
	for _, target := range []error{
		apperrors.ErrValidation,
		apperrors.ErrNotFound,
		apperrors.ErrInvalidState,
		apperrors.ErrInsufficientFunds,
		apperrors.ErrPolicyCapExceeded,
		apperrors.ErrPolicyBlocked,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
