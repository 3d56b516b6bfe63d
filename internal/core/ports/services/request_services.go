package services

import (
	"context"

	"github.com/SscSPs/trust_desk_app/internal/core/domain"
	"github.com/SscSPs/trust_desk_app/internal/dto"
)

// RequestReaderSvc defines read operations over trust requests
type RequestReaderSvc interface {
	// GetRequest retrieves a request with its effective flags and severity.
	GetRequest(ctx context.Context, requestID string) (*dto.RequestResponse, error)

	// Summary returns all requests, the pending count and the pending exposure.
	Summary(ctx context.Context) (*domain.RequestsSummary, error)
}

// RequestWriterSvc defines write operations over trust requests
type RequestWriterSvc interface {
	// SubmitRequest records a new pending request.
	SubmitRequest(ctx context.Context, req dto.SubmitRequestRequest) (*domain.TrustRequest, error)
}

// RequestSvcFacade combines all request service interfaces
type RequestSvcFacade interface {
	RequestReaderSvc
	RequestWriterSvc
}
