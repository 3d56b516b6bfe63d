// Package openai extracts structured distribution requests from free text
// through any API that speaks the OpenAI chat completions wire format.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/trust_desk_app/internal/apperrors"
	"github.com/SscSPs/trust_desk_app/internal/core/domain"
	"github.com/SscSPs/trust_desk_app/internal/core/policy"
	"github.com/SscSPs/trust_desk_app/internal/core/ports"
	"github.com/SscSPs/trust_desk_app/internal/utils"
)

const maxErrorBody = 2048

const systemPrompt = `You are a trust fund analyst. Parse beneficiary distribution requests and extract structured data.

Trust policy rules:
- Education: Fully covered (tuition, materials, academic travel, professional development)
- Medical: Fully covered (hospital bills, insurance deductibles, treatments)
- General Support: Capped at %[1]s/month per beneficiary (rent, living expenses, subscriptions)
- Large Purchases: Over %[2]s requires high-priority review
- Prohibited: No speculative investments (angel investing, crypto, stocks), luxury vehicles (Tesla, Ferrari, etc.), or luxury goods (designer items)

Known beneficiaries: %[3]s

Return a JSON object with exactly these fields:
- amount: number (the dollar amount requested, as a number without currency symbols)
- category: string (exactly one of: "Education", "Medical", "General Support", "Investment", "Vehicle", "Other")
- urgency: string (exactly one of: "low", "medium", "high", "critical")
- summary: string (one-sentence plain-English summary of what's being requested)
- policy_notes: string[] (relevant policy observations)
- flags: string[] (applicable flag codes: "prohibited", "requires_review", "unknown_beneficiary", "exceeds_monthly_cap")

Urgency guidelines:
- critical: Medical emergencies, time-sensitive deadlines (e.g. "due tomorrow")
- high: Upcoming deadlines within a week, large amounts over %[2]s
- medium: Standard requests with reasonable timelines
- low: No urgency mentioned, future planning`

// Extractor calls the chat completions endpoint with a JSON response format.
type Extractor struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	rules       policy.Rules
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithHTTPClient replaces the default client, e.g. to point tests at a local server.
func WithHTTPClient(client *http.Client) Option {
	return func(e *Extractor) {
		e.httpClient = client
	}
}

// WithTimeout bounds each extraction call.
func WithTimeout(timeout time.Duration) Option {
	return func(e *Extractor) {
		if timeout > 0 {
			e.httpClient.Timeout = timeout
		}
	}
}

// WithRules sets the policy limits quoted to the model. They should match
// the rules the engine enforces.
func WithRules(rules policy.Rules) Option {
	return func(e *Extractor) {
		e.rules = rules
	}
}

// New creates an extractor for the given API root, e.g. https://api.openai.com/v1.
func New(baseURL, apiKey, model string, options ...Option) *Extractor {
	e := &Extractor{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		model:       model,
		temperature: 0.1,
		rules:       policy.DefaultRules(),
	}
	for _, option := range options {
		option(e)
	}
	return e
}

var _ ports.Extractor = (*Extractor)(nil)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	ResponseFormat responseFormat `json:"response_format"`
	Temperature    float64        `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// wireParsed mirrors the JSON object the model is asked to return. Fields are
// loosely typed because models do not always follow the schema.
type wireParsed struct {
	Amount      json.RawMessage `json:"amount"`
	Category    string          `json:"category"`
	Urgency     string          `json:"urgency"`
	Summary     string          `json:"summary"`
	PolicyNotes json.RawMessage `json:"policy_notes"`
	Flags       json.RawMessage `json:"flags"`
}

// Extract implements ports.Extractor
func (e *Extractor) Extract(ctx context.Context, rawText, beneficiary string, known []string) (domain.ParsedRequest, error) {
	if e.apiKey == "" {
		return domain.ParsedRequest{}, apperrors.External("extraction API key is not configured", nil)
	}

	knownList := "none"
	if len(known) > 0 {
		knownList = strings.Join(known, ", ")
	}
	wireRequest := chatRequest{
		Model: e.model,
		Messages: []chatMessage{
			{Role: "system", Content: e.systemPrompt(knownList)},
			{Role: "user", Content: fmt.Sprintf("Beneficiary: %s\n\nRequest:\n%s", beneficiary, rawText)},
		},
		ResponseFormat: responseFormat{Type: "json_object"},
		Temperature:    e.temperature,
	}

	content, err := e.complete(ctx, wireRequest)
	if err != nil {
		return domain.ParsedRequest{}, err
	}

	var wire wireParsed
	if err := json.Unmarshal([]byte(content), &wire); err != nil {
		return domain.ParsedRequest{}, apperrors.External("model returned malformed JSON", err)
	}
	return wire.toDomain(), nil
}

func (e *Extractor) systemPrompt(knownList string) string {
	return fmt.Sprintf(systemPrompt,
		utils.FormatUSD(e.rules.MonthlyCap),
		utils.FormatUSD(e.rules.ReviewThreshold),
		knownList)
}

func (e *Extractor) complete(ctx context.Context, wireRequest chatRequest) (string, error) {
	body, err := json.Marshal(wireRequest)
	if err != nil {
		return "", fmt.Errorf("openai: marshaling request: %w", err)
	}

	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("openai: creating request: %w", err)
	}
	httpRequest.Header.Set("Content-Type", "application/json")
	httpRequest.Header.Set("Authorization", "Bearer "+e.apiKey)

	httpResponse, err := e.httpClient.Do(httpRequest)
	if err != nil {
		return "", apperrors.External("sending extraction request", err)
	}
	defer httpResponse.Body.Close()

	if httpResponse.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(httpResponse.Body, maxErrorBody))
		return "", apperrors.External(
			fmt.Sprintf("extraction API returned HTTP %d", httpResponse.StatusCode),
			fmt.Errorf("%s", strings.TrimSpace(string(detail))))
	}

	var response chatResponse
	if err := json.NewDecoder(httpResponse.Body).Decode(&response); err != nil {
		return "", apperrors.External("decoding extraction response", err)
	}
	if len(response.Choices) == 0 || strings.TrimSpace(response.Choices[0].Message.Content) == "" {
		return "", apperrors.External("empty response from extraction API", nil)
	}
	return response.Choices[0].Message.Content, nil
}

func (w wireParsed) toDomain() domain.ParsedRequest {
	return domain.ParsedRequest{
		Amount:      parseAmount(w.Amount),
		Category:    domain.NormalizeCategory(strings.TrimSpace(w.Category)),
		Urgency:     domain.NormalizeUrgency(strings.ToLower(strings.TrimSpace(w.Urgency))),
		Summary:     strings.TrimSpace(w.Summary),
		PolicyNotes: stringList(w.PolicyNotes),
		Flags:       flagList(w.Flags),
	}
}

// parseAmount accepts a JSON number or a string such as "$3,200.00".
// Anything else, and negative values, become zero.
func parseAmount(raw json.RawMessage) decimal.Decimal {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return decimal.Zero
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		text = s
	}
	text = strings.NewReplacer("$", "", ",", "", " ", "").Replace(text)
	amount, err := decimal.NewFromString(text)
	if err != nil || amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}

// stringList decodes a JSON array of strings; any other shape is an empty list.
func stringList(raw json.RawMessage) []string {
	var items []any
	if err := json.Unmarshal(raw, &items); err != nil {
		return []string{}
	}
	out := []string{}
	for _, item := range items {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

// flagList keeps only recognized flag codes, without duplicates.
func flagList(raw json.RawMessage) domain.Flags {
	flags := domain.Flags{}
	for _, code := range stringList(raw) {
		flag := domain.PolicyFlag(code)
		if flag.IsValid() {
			flags = flags.Union(domain.Flags{flag})
		}
	}
	return flags
}
