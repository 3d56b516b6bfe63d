package mapping

import (
	"encoding/json"
	"fmt"

	"github.com/SscSPs/trust_desk_app/internal/core/domain"
	"github.com/SscSPs/trust_desk_app/internal/models"
)

// ToModelTrustRequest converts a domain TrustRequest to a model TrustRequest
func ToModelTrustRequest(d domain.TrustRequest) (models.TrustRequest, error) {
	m := models.TrustRequest{
		RequestID:   d.ID,
		Beneficiary: d.Beneficiary,
		SubmittedAt: d.SubmittedAt.UTC(),
		RawText:     d.RawText,
		Status:      string(d.Status),
	}

	var err error
	if m.Parsed, err = marshalOptional(d.Parsed); err != nil {
		return m, fmt.Errorf("encode parsed: %w", err)
	}
	if m.OfficerOverride, err = marshalOptional(d.OfficerOverride); err != nil {
		return m, fmt.Errorf("encode officer_override: %w", err)
	}
	if m.Resolution, err = marshalOptional(d.Resolution); err != nil {
		return m, fmt.Errorf("encode resolution: %w", err)
	}

	log := d.ActivityLog
	if log == nil {
		log = []domain.ActivityEvent{}
	}
	if m.ActivityLog, err = json.Marshal(log); err != nil {
		return m, fmt.Errorf("encode activity_log: %w", err)
	}
	return m, nil
}

// ToDomainTrustRequest converts a model TrustRequest to a domain TrustRequest
func ToDomainTrustRequest(m models.TrustRequest) (domain.TrustRequest, error) {
	d := domain.TrustRequest{
		ID:          m.RequestID,
		Beneficiary: m.Beneficiary,
		SubmittedAt: m.SubmittedAt.UTC(),
		RawText:     m.RawText,
		Status:      domain.RequestStatus(m.Status),
		ActivityLog: []domain.ActivityEvent{},
	}

	if len(m.Parsed) > 0 {
		d.Parsed = &domain.ParsedRequest{}
		if err := json.Unmarshal(m.Parsed, d.Parsed); err != nil {
			return d, fmt.Errorf("decode parsed of %s: %w", m.RequestID, err)
		}
	}
	if len(m.OfficerOverride) > 0 {
		d.OfficerOverride = &domain.OfficerOverride{}
		if err := json.Unmarshal(m.OfficerOverride, d.OfficerOverride); err != nil {
			return d, fmt.Errorf("decode officer_override of %s: %w", m.RequestID, err)
		}
	}
	if len(m.Resolution) > 0 {
		d.Resolution = &domain.RequestResolution{}
		if err := json.Unmarshal(m.Resolution, d.Resolution); err != nil {
			return d, fmt.Errorf("decode resolution of %s: %w", m.RequestID, err)
		}
	}
	if len(m.ActivityLog) > 0 {
		if err := json.Unmarshal(m.ActivityLog, &d.ActivityLog); err != nil {
			return d, fmt.Errorf("decode activity_log of %s: %w", m.RequestID, err)
		}
	}
	return d, nil
}

// marshalOptional encodes v, mapping a nil pointer to SQL NULL.
func marshalOptional[T any](v *T) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}
