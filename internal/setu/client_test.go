package setu

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cradoe/kycflow/internal/config"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *Client {
	cfg := &config.Config{}
	cfg.Setu.BaseURL = baseURL
	cfg.Setu.ClientID = "test-client-id"
	cfg.Setu.ClientSecret = "test-client-secret"
	cfg.Setu.PanInstanceID = "pan-instance"
	cfg.Setu.PennyDropInstanceID = "rpd-instance"

	return NewClient(cfg)
}

func TestCheckIdentity_SuccessNormalizesSnakeCaseFields(t *testing.T) {
	var gotHeaders http.Header

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"message": "PAN is valid",
			"data": map[string]any{
				"full_name":              "JOHN HAMILTON DOE",
				"category":               "Individual",
				"aadhaar_seeding_status": "LINKED",
				"first_name":             "JOHN",
				"middle_name":            "HAMILTON",
				"last_name":              "DOE",
			},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	outcome := client.CheckIdentity(context.Background(), "ABCDE1234A", "Y", "Opening a trading account for the user", "trace-123")

	require.Equal(t, IdentityStatusSuccess, outcome.Status)
	require.Equal(t, ClassNone, outcome.Classification)
	require.Equal(t, "JOHN HAMILTON DOE", outcome.FullName)
	require.Equal(t, "Individual", outcome.Category)
	require.Equal(t, "LINKED", outcome.AadhaarSeedingStatus)
	require.Equal(t, "JOHN", outcome.FirstName)
	require.Equal(t, "HAMILTON", outcome.MiddleName)
	require.Equal(t, "DOE", outcome.LastName)

	require.Equal(t, "test-client-id", gotHeaders.Get("x-client-id"))
	require.Equal(t, "test-client-secret", gotHeaders.Get("x-client-secret"))
	require.Equal(t, "pan-instance", gotHeaders.Get("x-product-instance-id"))
	require.Equal(t, "trace-123", gotHeaders.Get("x-request-id"))
}

func TestCheckIdentity_SuccessNormalizesCamelCaseFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"fullName":             "JANE DOE",
				"aadhaarSeedingStatus": "NOT_LINKED",
				"firstName":            "JANE",
				"lastName":             "DOE",
			},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	outcome := client.CheckIdentity(context.Background(), "FGHIJ5678K", "Y", "Opening a trading account for the user", "trace-456")

	require.Equal(t, IdentityStatusSuccess, outcome.Status)
	require.Equal(t, "JANE DOE", outcome.FullName)
	require.Equal(t, "NOT_LINKED", outcome.AadhaarSeedingStatus)
	require.Equal(t, "JANE", outcome.FirstName)
	require.Equal(t, "DOE", outcome.LastName)

	// no category in the response falls back to the documented default
	require.Equal(t, "Unknown", outcome.Category)
}

func TestCheckIdentity_StatusMapping(t *testing.T) {
	tests := []struct {
		name               string
		upstreamStatus     int
		wantStatus         string
		wantClassification Classification
	}{
		{"bad request", http.StatusBadRequest, IdentityStatusFailed, ClassValidation},
		{"not found", http.StatusNotFound, IdentityStatusNotFound, ClassUpstream4xx},
		{"upstream 5xx", http.StatusInternalServerError, IdentityStatusError, ClassUpstream5xx},
		{"other 4xx", http.StatusTooManyRequests, IdentityStatusError, ClassUpstream4xx},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.upstreamStatus)
				json.NewEncoder(w).Encode(map[string]any{"message": "upstream says no"})
			}))
			defer server.Close()

			client := newTestClient(server.URL)

			outcome := client.CheckIdentity(context.Background(), "ABCDE1234A", "Y", "Opening a trading account for the user", "trace-789")

			require.Equal(t, tt.wantStatus, outcome.Status)
			require.Equal(t, tt.wantClassification, outcome.Classification)
		})
	}
}

func TestCheckIdentity_ConnectionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing is listening anymore

	client := newTestClient(server.URL)

	outcome := client.CheckIdentity(context.Background(), "ABCDE1234A", "Y", "Opening a trading account for the user", "trace-000")

	require.Equal(t, IdentityStatusConnectionError, outcome.Status)
	require.Equal(t, ClassNetwork, outcome.Classification)
	require.Contains(t, outcome.Message, "Error communicating with Setu API")
}

func TestCreateBankChallenge_CreatedNormalizesFieldSynonyms(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"id":        "rpd-001",
			"shortUrl":  "https://sandbox.setu.co/rpd/abc",
			"upiBillId": "bill-001",
			"upiLink":   "upi://pay?pa=test",
			"validUpto": "2026-09-02T00:00:00Z",
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	outcome := client.CreateBankChallenge(context.Background(), "trace-123")

	require.Equal(t, ChallengeStatusCreated, outcome.Status)
	require.Equal(t, ClassNone, outcome.Classification)
	require.Equal(t, "rpd-001", outcome.ID)
	require.Equal(t, "https://sandbox.setu.co/rpd/abc", outcome.ShortURL)
	require.Equal(t, "bill-001", outcome.UpiBillID)
	require.Equal(t, "upi://pay?pa=test", outcome.UpiLink)
	require.Equal(t, "2026-09-02T00:00:00Z", outcome.ValidUpto)
}

func TestCreateBankChallenge_UpstreamErrorCarriesMessageAndStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "instance misconfigured"},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	outcome := client.CreateBankChallenge(context.Background(), "trace-123")

	require.Equal(t, ChallengeStatusError, outcome.Status)
	require.Equal(t, ClassUpstream5xx, outcome.Classification)
	require.Equal(t, http.StatusInternalServerError, outcome.HTTPStatus)
	require.Equal(t, "instance misconfigured", outcome.Message)
}

func TestConfirmPayment_SendsDesiredStatus(t *testing.T) {
	var gotPath string
	var gotPayload map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotPayload)
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	outcome := client.ConfirmPayment(context.Background(), "rpd-001", true, "trace-123")

	require.True(t, outcome.Success)
	require.Equal(t, ClassNone, outcome.Classification)
	require.Equal(t, "/api/verify/ban/reverse/mock_payment/rpd-001", gotPath)
	require.Equal(t, "successful", gotPayload["paymentStatus"])

	outcome = client.ConfirmPayment(context.Background(), "rpd-001", false, "trace-123")

	require.Equal(t, "expired", gotPayload["paymentStatus"])
	require.Equal(t, ClassNone, outcome.Classification)
}

func TestConfirmPayment_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "request not found"},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	outcome := client.ConfirmPayment(context.Background(), "missing", true, "trace-123")

	require.False(t, outcome.Success)
	require.Equal(t, ClassUpstream4xx, outcome.Classification)
	require.Equal(t, http.StatusNotFound, outcome.HTTPStatus)
	require.Equal(t, "request not found", outcome.Message)
}

func TestIsSandbox(t *testing.T) {
	require.True(t, newTestClient("https://dg-sandbox.setu.co").IsSandbox())
	require.False(t, newTestClient("https://dg.setu.co").IsSandbox())
}
