package models

import "time"

// TrustRequest is a row of trust_requests. The nested documents are stored
// as JSONB and kept here as raw bytes; nil means SQL NULL.
type TrustRequest struct {
	RequestID       string    `json:"requestID"`
	Beneficiary     string    `json:"beneficiary"`
	SubmittedAt     time.Time `json:"submittedAt"`
	RawText         string    `json:"rawText"`
	Status          string    `json:"status"`
	Parsed          []byte    `json:"parsed"`
	OfficerOverride []byte    `json:"officerOverride"`
	Resolution      []byte    `json:"resolution"`
	ActivityLog     []byte    `json:"activityLog"` // Never NULL
}
