package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/SscSPs/trust_desk_app/internal/apperrors"
	"github.com/SscSPs/trust_desk_app/internal/core/domain"
	"github.com/SscSPs/trust_desk_app/internal/core/policy"
	"github.com/SscSPs/trust_desk_app/internal/core/ports"
	portsrepo "github.com/SscSPs/trust_desk_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/trust_desk_app/internal/core/ports/services"
	"github.com/SscSPs/trust_desk_app/internal/dto"
	"github.com/SscSPs/trust_desk_app/internal/platform/metrics"
	"github.com/SscSPs/trust_desk_app/internal/utils"
)

const defaultParseConcurrency = 4

// parseService runs free text through the extractor and the policy engine and
// attaches the result to pending requests.
type parseService struct {
	BaseService
	extractor   ports.Extractor
	ledgerRepo  portsrepo.LedgerReader
	requestRepo portsrepo.RequestRepositoryFacade
	engine      *policy.Engine
	lock        *CommitLock
	now         Clock
	actor       string
	metrics     *metrics.Metrics
	concurrency int
}

// ParseServiceOption is a functional option for configuring the parse service
type ParseServiceOption func(*parseService)

// WithParseClock sets the clock used for the parsed event and the spend month.
func WithParseClock(clock Clock) ParseServiceOption {
	return func(s *parseService) {
		s.now = clock
	}
}

// WithParseCommitLock shares the container's commit lock with the parse service.
func WithParseCommitLock(lock *CommitLock) ParseServiceOption {
	return func(s *parseService) {
		s.lock = lock
	}
}

// WithParseActor sets the actor recorded on parsed events.
func WithParseActor(actor string) ParseServiceOption {
	return func(s *parseService) {
		s.actor = actor
	}
}

// WithParseMetrics records extraction calls on the given collectors.
func WithParseMetrics(m *metrics.Metrics) ParseServiceOption {
	return func(s *parseService) {
		s.metrics = m
	}
}

// WithParseConcurrency bounds how many extractions ParseAllPending runs at once.
func WithParseConcurrency(n int) ParseServiceOption {
	return func(s *parseService) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// NewParseService creates a new parse service.
func NewParseService(extractor ports.Extractor, ledgerRepo portsrepo.LedgerReader, requestRepo portsrepo.RequestRepositoryFacade, engine *policy.Engine, options ...ParseServiceOption) portssvc.ParseSvc {
	s := &parseService{
		extractor:   extractor,
		ledgerRepo:  ledgerRepo,
		requestRepo: requestRepo,
		engine:      engine,
		lock:        NewCommitLock(),
		now:         SystemClock,
		actor:       "AI",
		concurrency: defaultParseConcurrency,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

var _ portssvc.ParseSvc = (*parseService)(nil)

// Parse implements portssvc.ParseSvc
func (s *parseService) Parse(ctx context.Context, req dto.ParseRequest) (*domain.ParseOutcome, error) {
	rawText := strings.TrimSpace(req.RawText)
	beneficiary := strings.TrimSpace(req.Beneficiary)

	if req.RequestID != nil {
		// Fail fast before paying for an extraction that could never be stored.
		request, err := s.findParsable(ctx, *req.RequestID)
		if err != nil {
			return nil, err
		}
		// A stored request is always evaluated as submitted.
		stored := strings.TrimSpace(request.RawText)
		if rawText != "" && rawText != stored {
			return nil, apperrors.Validationf("raw_text does not match request %s", request.ID)
		}
		if beneficiary != "" && beneficiary != strings.TrimSpace(request.Beneficiary) {
			return nil, apperrors.Validationf("beneficiary does not match request %s", request.ID)
		}
		rawText, beneficiary = stored, request.Beneficiary
	}
	if rawText == "" {
		return nil, apperrors.Validationf("raw_text is required")
	}

	extracted, err := s.extract(ctx, rawText, beneficiary)
	if err != nil {
		return nil, err
	}

	if req.RequestID == nil {
		parsed, err := s.evaluate(ctx, extracted, beneficiary)
		if err != nil {
			return nil, err
		}
		return &domain.ParseOutcome{Parsed: parsed, Severity: parsed.Severity()}, nil
	}

	requestID := *req.RequestID
	var outcome *domain.ParseOutcome
	err = s.lock.Do(func() error {
		// The request may have been decided while the extractor was running.
		if _, err := s.findParsable(ctx, requestID); err != nil {
			return err
		}
		parsed, err := s.evaluate(ctx, extracted, beneficiary)
		if err != nil {
			return err
		}

		updated, err := s.requestRepo.UpdateRequest(ctx, requestID, domain.RequestPatch{
			Parsed: &parsed,
			AppendEvents: []domain.ActivityEvent{{
				Timestamp: s.now(),
				Action:    domain.ActivityParsed,
				Actor:     s.actor,
				Detail:    fmt.Sprintf("Parsed as %s, %s", parsed.Category, utils.FormatUSD(parsed.Amount)),
			}},
		})
		if err != nil {
			return fmt.Errorf("failed to store parse: %w", err)
		}
		outcome = &domain.ParseOutcome{Parsed: parsed, Severity: parsed.Severity(), Request: updated}
		return nil
	})
	if err != nil {
		if !isBusinessRejection(err) {
			s.LogError(ctx, err, "Failed to attach parse", slog.String("request_id", requestID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Request parsed",
		slog.String("request_id", requestID),
		slog.String("beneficiary", beneficiary),
		slog.String("category", string(outcome.Parsed.Category)),
		slog.String("severity", string(outcome.Severity)))
	return outcome, nil
}

func (s *parseService) findParsable(ctx context.Context, requestID string) (*domain.TrustRequest, error) {
	request, err := s.requestRepo.FindRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !request.IsPending() {
		return nil, fmt.Errorf("%w (status %s)", apperrors.ErrInvalidState, request.Status)
	}
	return request, nil
}

func (s *parseService) extract(ctx context.Context, rawText, beneficiary string) (domain.ParsedRequest, error) {
	if s.extractor == nil {
		return domain.ParsedRequest{}, apperrors.External("no extraction service configured", nil)
	}

	start := time.Now()
	parsed, err := s.extractor.Extract(ctx, rawText, beneficiary, s.engine.Registry().Names())
	s.metrics.ObserveExtraction(err, time.Since(start))
	if err != nil {
		s.LogError(ctx, err, "Extraction failed", slog.String("beneficiary", beneficiary))
		if errors.Is(err, apperrors.ErrExternalService) {
			return domain.ParsedRequest{}, err
		}
		return domain.ParsedRequest{}, apperrors.External("failed to parse request", err)
	}
	return clampParsed(parsed), nil
}

// evaluate runs the policy engine against the current month's spend and merges
// its findings with the extractor's.
func (s *parseService) evaluate(ctx context.Context, extracted domain.ParsedRequest, beneficiary string) (domain.ParsedRequest, error) {
	spent := decimal.Zero
	if beneficiary != "" {
		var err error
		spent, err = monthlySpend(ctx, s.ledgerRepo, s.requestRepo, beneficiary, domain.YearMonthOf(s.now()))
		if err != nil {
			return domain.ParsedRequest{}, err
		}
	}

	computed := s.engine.Evaluate(extracted, beneficiary, spent)
	merged := policy.Merge(extracted.Flags, extracted.PolicyNotes, computed)

	parsed := extracted
	parsed.Flags = merged.Flags
	parsed.PolicyNotes = merged.Notes
	return parsed, nil
}

// clampParsed enforces the value ranges the rest of the core relies on,
// whatever the extractor returned.
func clampParsed(p domain.ParsedRequest) domain.ParsedRequest {
	out := p
	out.Category = domain.NormalizeCategory(string(p.Category))
	out.Urgency = domain.NormalizeUrgency(string(p.Urgency))
	if p.Amount.IsNegative() {
		out.Amount = decimal.Zero
	}
	out.Amount = utils.RoundCurrency(out.Amount)
	out.PolicyNotes = []string{}
	for _, note := range p.PolicyNotes {
		if note = strings.TrimSpace(note); note != "" {
			out.PolicyNotes = append(out.PolicyNotes, note)
		}
	}
	out.Flags = domain.Flags{}
	for _, flag := range p.Flags {
		if flag.IsValid() {
			out.Flags = out.Flags.Union(domain.Flags{flag})
		}
	}
	return out
}

// ParseAllPending implements portssvc.ParseSvc
func (s *parseService) ParseAllPending(ctx context.Context) (domain.BatchResult, error) {
	result := domain.BatchResult{Errors: map[string]string{}}

	requests, err := s.requestRepo.ListRequests(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list requests for parsing")
		return result, fmt.Errorf("failed to list requests: %w", err)
	}

	var (
		mu   sync.Mutex
		errs error
		g    errgroup.Group
	)
	g.SetLimit(s.concurrency)
	for _, request := range requests {
		if !request.IsPending() || request.Parsed != nil {
			continue
		}
		g.Go(func() error {
			requestID := request.ID
			_, err := s.Parse(ctx, dto.ParseRequest{
				RequestID:   &requestID,
				RawText:     request.RawText,
				Beneficiary: request.Beneficiary,
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed++
				result.Errors[request.ID] = err.Error()
				errs = multierr.Append(errs, err)
				return nil
			}
			result.Succeeded++
			return nil
		})
	}
	_ = g.Wait()

	if errs != nil {
		s.LogWarn(ctx, errs, "Parse-all finished with failures",
			slog.Int("succeeded", result.Succeeded),
			slog.Int("failed", result.Failed))
	} else {
		s.LogInfo(ctx, "Parse-all finished", slog.Int("succeeded", result.Succeeded))
	}
	return result, nil
}
