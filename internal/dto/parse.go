package dto

// ParseRequest asks for free text to be parsed, and attached to a stored
// request when RequestID is given. A stored request is parsed from its own
// text and beneficiary; RawText and Beneficiary may then be omitted, and
// must match the stored values when present.
type ParseRequest struct {
	RequestID   *string `json:"request_id,omitempty"`
	RawText     string  `json:"raw_text"`
	Beneficiary string  `json:"beneficiary"`
}
