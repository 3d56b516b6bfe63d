package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/SscSPs/trust_desk_app/internal/adapters/database/memory"
	"github.com/SscSPs/trust_desk_app/internal/apperrors"
	"github.com/SscSPs/trust_desk_app/internal/core/domain"
	portssvc "github.com/SscSPs/trust_desk_app/internal/core/ports/services"
	"github.com/SscSPs/trust_desk_app/internal/core/services"
	"github.com/SscSPs/trust_desk_app/internal/dto"
)

type ParseServiceTestSuite struct {
	suite.Suite
	store     *memory.Store
	extractor *MockExtractor
	service   portssvc.ParseSvc
	ctx       context.Context
}

func TestParseServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ParseServiceTestSuite))
}

func (suite *ParseServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.load()
}

func (suite *ParseServiceTestSuite) load(requests ...domain.TrustRequest) {
	suite.store = newStore([]domain.LedgerEntry{credit("dep", 100000, testNow)}, requests...)
	suite.extractor = new(MockExtractor)
	suite.service = services.NewParseService(suite.extractor, suite.store, suite.store, testEngine(),
		services.WithParseClock(fixedClock),
		services.WithParseActor("AI (test-model)"),
	)
}

var knownNames = []string{"Sam Miller", "Katie Miller"}

func (suite *ParseServiceTestSuite) TestParse_Standalone() {
	suite.extractor.On("Extract", mock.Anything, "I want to buy bitcoin", "Sam Miller", knownNames).
		Return(domain.ParsedRequest{
			Amount:      decimal.NewFromInt(15000),
			Category:    domain.CategoryInvestment,
			Urgency:     domain.UrgencyHigh,
			Summary:     "Crypto purchase",
			PolicyNotes: []string{"Looks speculative", "  "},
			Flags:       domain.Flags{"made_up_flag"},
		}, nil).Once()

	outcome, err := suite.service.Parse(suite.ctx, dto.ParseRequest{RawText: "I want to buy bitcoin", Beneficiary: "Sam Miller"})
	suite.Require().NoError(err)
	suite.Nil(outcome.Request)
	suite.Equal(domain.SeverityBlocked, outcome.Severity)
	suite.True(domain.Flags{domain.FlagProhibited}.Equal(outcome.Parsed.Flags))
	suite.Equal([]string{
		"Looks speculative",
		"Prohibited: Speculative investments are not allowed under trust policy.",
	}, outcome.Parsed.PolicyNotes)
	suite.extractor.AssertExpectations(suite.T())
}

func (suite *ParseServiceTestSuite) TestParse_ClampsExtractorOutput() {
	suite.extractor.On("Extract", mock.Anything, "text", "Katie Miller", knownNames).
		Return(domain.ParsedRequest{
			Amount:   decimal.NewFromInt(-40),
			Category: "Groceries",
			Urgency:  "yesterday",
		}, nil).Once()

	outcome, err := suite.service.Parse(suite.ctx, dto.ParseRequest{RawText: "text", Beneficiary: "Katie Miller"})
	suite.Require().NoError(err)
	suite.True(outcome.Parsed.Amount.IsZero())
	suite.Equal(domain.CategoryOther, outcome.Parsed.Category)
	suite.Equal(domain.UrgencyMedium, outcome.Parsed.Urgency)
	suite.Equal(domain.SeverityOK, outcome.Severity)
}

func (suite *ParseServiceTestSuite) TestParse_RoundsExtractedAmountToCents() {
	suite.extractor.On("Extract", mock.Anything, "about 850.456", "Katie Miller", knownNames).
		Return(domain.ParsedRequest{Amount: decimal.RequireFromString("850.456"), Category: domain.CategoryMedical}, nil).Once()

	outcome, err := suite.service.Parse(suite.ctx, dto.ParseRequest{RawText: "about 850.456", Beneficiary: "Katie Miller"})
	suite.Require().NoError(err)
	suite.True(decimal.RequireFromString("850.46").Equal(outcome.Parsed.Amount))
}

func (suite *ParseServiceTestSuite) TestParse_AttachesToRequest() {
	suite.load(unparsedRequest("r1", "Katie Miller", "Dental work, $850"))
	suite.extractor.On("Extract", mock.Anything, "Dental work, $850", "Katie Miller", knownNames).
		Return(domain.ParsedRequest{
			Amount:   decimal.NewFromInt(850),
			Category: domain.CategoryMedical,
			Urgency:  domain.UrgencyHigh,
			Summary:  "Dental work",
		}, nil).Once()

	requestID := "r1"
	outcome, err := suite.service.Parse(suite.ctx, dto.ParseRequest{RequestID: &requestID, RawText: "Dental work, $850"})
	suite.Require().NoError(err)
	suite.Require().NotNil(outcome.Request)

	stored, err := suite.store.FindRequestByID(suite.ctx, "r1")
	suite.Require().NoError(err)
	suite.Require().NotNil(stored.Parsed)
	suite.True(decimal.NewFromInt(850).Equal(stored.Parsed.Amount))

	last := stored.ActivityLog[len(stored.ActivityLog)-1]
	suite.Equal(domain.ActivityParsed, last.Action)
	suite.Equal("AI (test-model)", last.Actor)
	suite.Equal("Parsed as Medical, $850.00", last.Detail)
}

func (suite *ParseServiceTestSuite) TestParse_StoredRequestUsesStoredBeneficiary() {
	suite.load(unparsedRequest("r1", "Jordan Blake", "Need $900 for rent"))
	suite.extractor.On("Extract", mock.Anything, "Need $900 for rent", "Jordan Blake", knownNames).
		Return(domain.ParsedRequest{Amount: decimal.NewFromInt(900), Category: domain.CategoryOther}, nil).Once()

	requestID := "r1"
	outcome, err := suite.service.Parse(suite.ctx, dto.ParseRequest{RequestID: &requestID})
	suite.Require().NoError(err)
	suite.True(outcome.Parsed.Flags.Has(domain.FlagUnknownBeneficiary))
	suite.Equal(domain.SeverityWarning, outcome.Severity)

	stored, err := suite.store.FindRequestByID(suite.ctx, "r1")
	suite.Require().NoError(err)
	suite.True(stored.Parsed.Flags.Has(domain.FlagUnknownBeneficiary))
	suite.extractor.AssertExpectations(suite.T())
}

func (suite *ParseServiceTestSuite) TestParse_StoredRequestRejectsMismatchedInput() {
	suite.load(unparsedRequest("r1", "Jordan Blake", "Need $900 for rent"))
	requestID := "r1"

	_, err := suite.service.Parse(suite.ctx, dto.ParseRequest{RequestID: &requestID, RawText: "Need $900 for rent", Beneficiary: "Sam Miller"})
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.service.Parse(suite.ctx, dto.ParseRequest{RequestID: &requestID, RawText: "Need $90 for rent"})
	suite.ErrorIs(err, apperrors.ErrValidation)

	stored, err := suite.store.FindRequestByID(suite.ctx, "r1")
	suite.Require().NoError(err)
	suite.Nil(stored.Parsed)
	suite.extractor.AssertNotCalled(suite.T(), "Extract", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ParseServiceTestSuite) TestParse_TerminalRequestFailsBeforeExtraction() {
	denied := parsedRequest("r1", "Sam Miller", 100, domain.CategoryOther)
	status := domain.StatusDenied
	suite.load(denied.Apply(domain.RequestPatch{Status: &status}))

	requestID := "r1"
	_, err := suite.service.Parse(suite.ctx, dto.ParseRequest{RequestID: &requestID, RawText: "again"})
	suite.ErrorIs(err, apperrors.ErrInvalidState)
	suite.extractor.AssertNotCalled(suite.T(), "Extract", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ParseServiceTestSuite) TestParse_Errors() {
	_, err := suite.service.Parse(suite.ctx, dto.ParseRequest{RawText: "   "})
	suite.ErrorIs(err, apperrors.ErrValidation)

	missing := "missing"
	_, err = suite.service.Parse(suite.ctx, dto.ParseRequest{RequestID: &missing, RawText: "text"})
	suite.ErrorIs(err, apperrors.ErrNotFound)

	suite.extractor.On("Extract", mock.Anything, "text", "", knownNames).
		Return(domain.ParsedRequest{}, errors.New("upstream timeout")).Once()
	_, err = suite.service.Parse(suite.ctx, dto.ParseRequest{RawText: "text"})
	suite.ErrorIs(err, apperrors.ErrExternalService)
	suite.Contains(err.Error(), "upstream timeout")
}

func (suite *ParseServiceTestSuite) TestParse_NoExtractorConfigured() {
	service := services.NewParseService(nil, suite.store, suite.store, testEngine())
	_, err := service.Parse(suite.ctx, dto.ParseRequest{RawText: "text"})
	suite.ErrorIs(err, apperrors.ErrExternalService)
}

func (suite *ParseServiceTestSuite) TestParseAllPending() {
	decided := parsedRequest("done", "Sam Miller", 100, domain.CategoryOther)
	status := domain.StatusApproved
	suite.load(
		unparsedRequest("a", "Sam Miller", "tuition please"),
		unparsedRequest("b", "Katie Miller", "rent please"),
		parsedRequest("c", "Katie Miller", 400, domain.CategoryMedical),
		decided.Apply(domain.RequestPatch{Status: &status}),
	)
	suite.extractor.On("Extract", mock.Anything, "tuition please", "Sam Miller", knownNames).
		Return(domain.ParsedRequest{Amount: decimal.NewFromInt(3200), Category: domain.CategoryEducation}, nil).Once()
	suite.extractor.On("Extract", mock.Anything, "rent please", "Katie Miller", knownNames).
		Return(domain.ParsedRequest{}, errors.New("rate limited")).Once()

	result, err := suite.service.ParseAllPending(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(1, result.Succeeded)
	suite.Equal(1, result.Failed)
	suite.Contains(result.Errors, "b")
	suite.extractor.AssertExpectations(suite.T())

	a, _ := suite.store.FindRequestByID(suite.ctx, "a")
	suite.NotNil(a.Parsed)
	b, _ := suite.store.FindRequestByID(suite.ctx, "b")
	suite.Nil(b.Parsed)
}
