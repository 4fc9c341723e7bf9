// Package setu is a stateless adapter for the Setu verification APIs: PAN
// identity checks, reverse-penny-drop (bank challenge) creation and payment
// confirmation. It normalizes the provider's inconsistent response field
// names and status codes into internal outcome values and never persists
// anything itself.
package setu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cradoe/kycflow/internal/config"
)

const defaultTimeout = 30 * time.Second

// Classification buckets an upstream response for the orchestrator's error
// taxonomy. A network failure is returned as a classified outcome, not as an
// error, so the caller decides how to record it.
type Classification string

const (
	ClassNone        Classification = ""
	ClassValidation  Classification = "validation"
	ClassUpstream4xx Classification = "upstream_4xx"
	ClassUpstream5xx Classification = "upstream_5xx"
	ClassNetwork     Classification = "network"
)

// Normalized identity-check statuses.
const (
	IdentityStatusSuccess         = "success"
	IdentityStatusFailed          = "failed"
	IdentityStatusNotFound        = "not_found"
	IdentityStatusError           = "error"
	IdentityStatusConnectionError = "connection_error"
)

// Normalized bank-challenge statuses.
const (
	ChallengeStatusCreated         = "CREATED"
	ChallengeStatusSuccess         = "SUCCESS"
	ChallengeStatusExpired         = "EXPIRED"
	ChallengeStatusError           = "ERROR"
	ChallengeStatusConnectionError = "CONNECTION_ERROR"
)

type Client struct {
	baseURL       string
	clientID      string
	clientSecret  string
	panInstanceID string
	rpdInstanceID string
	httpClient    *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL:       cfg.Setu.BaseURL,
		clientID:      cfg.Setu.ClientID,
		clientSecret:  cfg.Setu.ClientSecret,
		panInstanceID: cfg.Setu.PanInstanceID,
		rpdInstanceID: cfg.Setu.PennyDropInstanceID,
		httpClient:    &http.Client{Timeout: defaultTimeout},
	}
}

// IsSandbox reports whether the client points at the sandbox environment.
// Mock payment confirmation is only permitted there.
func (c *Client) IsSandbox() bool {
	return strings.Contains(c.baseURL, "sandbox")
}

type IdentityOutcome struct {
	Status         string
	Classification Classification
	Message        string

	FullName             string
	Category             string
	AadhaarSeedingStatus string
	FirstName            string
	MiddleName           string
	LastName             string
}

type ChallengeOutcome struct {
	Status         string
	Classification Classification
	Message        string
	HTTPStatus     int

	ID        string
	ShortURL  string
	UpiBillID string
	UpiLink   string
	ValidUpto string
}

type PaymentOutcome struct {
	Success        bool
	Classification Classification
	Message        string
	HTTPStatus     int
}

func (c *Client) CheckIdentity(ctx context.Context, pan, consent, reason, traceID string) *IdentityOutcome {
	payload := map[string]string{
		"pan":     pan,
		"consent": consent,
		"reason":  reason,
	}

	status, body, err := c.post(ctx, "/api/verify/pan", c.panInstanceID, traceID, payload)
	if err != nil {
		return &IdentityOutcome{
			Status:         IdentityStatusConnectionError,
			Classification: ClassNetwork,
			Message:        fmt.Sprintf("Error communicating with Setu API: %v", err),
		}
	}

	data := nestedMap(body, "data")

	outcome := &IdentityOutcome{
		Message: pickString(body, "Error from Setu API", "message"),
	}

	switch {
	case status == http.StatusOK:
		outcome.Status = IdentityStatusSuccess
		if outcome.Message == "Error from Setu API" {
			outcome.Message = "PAN verification completed"
		}
		// the provider spells these fields inconsistently; try each known
		// synonym in priority order
		outcome.FullName = pickString(data, "", "fullName", "full_name")
		outcome.Category = pickString(data, "Unknown", "category")
		outcome.AadhaarSeedingStatus = pickString(data, "", "aadhaarSeedingStatus", "aadhaar_seeding_status")
		outcome.FirstName = pickString(data, "", "firstName", "first_name")
		outcome.MiddleName = pickString(data, "", "middleName", "middle_name")
		outcome.LastName = pickString(data, "", "lastName", "last_name")
	case status == http.StatusBadRequest:
		outcome.Status = IdentityStatusFailed
		outcome.Classification = ClassValidation
		outcome.Message = pickString(body, "Bad request", "message")
	case status == http.StatusNotFound:
		outcome.Status = IdentityStatusNotFound
		outcome.Classification = ClassUpstream4xx
		outcome.Message = pickString(body, "PAN not found", "message")
	case status >= http.StatusInternalServerError:
		outcome.Status = IdentityStatusError
		outcome.Classification = ClassUpstream5xx
	default:
		outcome.Status = IdentityStatusError
		outcome.Classification = ClassUpstream4xx
	}

	return outcome
}

func (c *Client) CreateBankChallenge(ctx context.Context, traceID string) *ChallengeOutcome {
	status, body, err := c.post(ctx, "/api/verify/ban/reverse", c.rpdInstanceID, traceID, map[string]string{})
	if err != nil {
		return &ChallengeOutcome{
			Status:         ChallengeStatusConnectionError,
			Classification: ClassNetwork,
			Message:        fmt.Sprintf("Error communicating with Setu API: %v", err),
		}
	}

	if status == http.StatusCreated {
		return &ChallengeOutcome{
			Status:     ChallengeStatusCreated,
			HTTPStatus: status,
			Message:    "Reverse penny drop created",
			ID:         pickString(body, "", "id"),
			ShortURL:   pickString(body, "", "shortURL", "shortUrl", "short_url"),
			UpiBillID:  pickString(body, "", "upiBillID", "upiBillId", "upi_bill_id"),
			UpiLink:    pickString(body, "", "upiLink", "upi_link"),
			ValidUpto:  pickString(body, "", "validUpto", "valid_upto"),
		}
	}

	return &ChallengeOutcome{
		Status:         ChallengeStatusError,
		Classification: classifyStatus(status),
		HTTPStatus:     status,
		Message:        upstreamErrorMessage(body),
		ID:             pickString(body, "", "id"),
	}
}

func (c *Client) ConfirmPayment(ctx context.Context, requestID string, succeed bool, traceID string) *PaymentOutcome {
	paymentStatus := "expired"
	if succeed {
		paymentStatus = "successful"
	}

	path := "/api/verify/ban/reverse/mock_payment/" + requestID
	status, body, err := c.post(ctx, path, c.rpdInstanceID, traceID, map[string]string{"paymentStatus": paymentStatus})
	if err != nil {
		return &PaymentOutcome{
			Classification: ClassNetwork,
			Message:        fmt.Sprintf("Error communicating with Setu API: %v", err),
		}
	}

	if status == http.StatusOK {
		success := true
		if v, ok := body["success"].(bool); ok {
			success = v
		}
		return &PaymentOutcome{
			Success:    success,
			HTTPStatus: status,
			Message:    "Payment confirmation completed",
		}
	}

	return &PaymentOutcome{
		Classification: classifyStatus(status),
		HTTPStatus:     status,
		Message:        upstreamErrorMessage(body),
	}
}

// post sends a JSON payload with the standard Setu headers and decodes the
// response body into a generic map so callers can normalize field synonyms.
func (c *Client) post(ctx context.Context, path, instanceID, traceID string, payload any) (int, map[string]any, error) {
	js, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(js))
	if err != nil {
		return 0, nil, err
	}

	req.Header.Set("x-client-id", c.clientID)
	req.Header.Set("x-client-secret", c.clientSecret)
	req.Header.Set("x-product-instance-id", instanceID)
	req.Header.Set("Content-Type", "application/json")
	if traceID != "" {
		req.Header.Set("x-request-id", traceID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		// some upstream failures come without a JSON body; the status code
		// is still meaningful
		body = map[string]any{}
	}

	return resp.StatusCode, body, nil
}

// pickString returns the first non-empty string among the given keys,
// falling back to the documented default when none match.
func pickString(m map[string]any, fallback string, keys ...string) string {
	for _, key := range keys {
		if v, ok := m[key].(string); ok && v != "" {
			return v
		}
	}
	return fallback
}

func nestedMap(m map[string]any, key string) map[string]any {
	if nested, ok := m[key].(map[string]any); ok {
		return nested
	}
	return map[string]any{}
}

func classifyStatus(status int) Classification {
	if status >= http.StatusInternalServerError {
		return ClassUpstream5xx
	}
	return ClassUpstream4xx
}

func upstreamErrorMessage(body map[string]any) string {
	if errObj, ok := body["error"].(map[string]any); ok {
		if msg, ok := errObj["message"].(string); ok && msg != "" {
			return msg
		}
	}
	return pickString(body, "Error from Setu API", "message")
}
