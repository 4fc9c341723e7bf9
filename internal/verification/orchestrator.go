// Package verification drives the three-stage KYC attempt: identity check,
// bank challenge (reverse penny drop) and payment confirmation. The stages
// are persisted independently and joined only by a trace identifier that is
// generated once at the start of the identity stage. Each operation returns
// an explicit result value; the handler layer maps results to status codes.
package verification

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/cradoe/kycflow/internal/models"
	"github.com/cradoe/kycflow/internal/repository"
	"github.com/cradoe/kycflow/internal/setu"
)

// minReasonLength is the shortest acceptable justification for running an
// identity check against the registry.
const minReasonLength = 20

const consentAccepted = "Y"

// ErrChallengeNotFound is returned when a payment confirmation references an
// unknown reverse-penny-drop request.
var ErrChallengeNotFound = errors.New("reverse penny drop request not found")

// ValidationError marks precondition failures detected before any external
// call. Nothing is persisted for these: the attempt never started.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ProviderClient is the slice of the Setu client the orchestrator needs.
type ProviderClient interface {
	CheckIdentity(ctx context.Context, pan, consent, reason, traceID string) *setu.IdentityOutcome
	CreateBankChallenge(ctx context.Context, traceID string) *setu.ChallengeOutcome
	ConfirmPayment(ctx context.Context, requestID string, succeed bool, traceID string) *setu.PaymentOutcome
	IsSandbox() bool
}

type Orchestrator struct {
	client        ProviderClient
	verifications repository.PanVerificationRepository
	pennyDrops    repository.PennyDropRepository
	payments      repository.PaymentRepository
	logger        *slog.Logger
}

func New(client ProviderClient, verifications repository.PanVerificationRepository, pennyDrops repository.PennyDropRepository, payments repository.PaymentRepository, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		client:        client,
		verifications: verifications,
		pennyDrops:    pennyDrops,
		payments:      payments,
		logger:        logger,
	}
}

type IdentityInput struct {
	Pan     string
	Consent string
	Reason  string
}

type IdentityResult struct {
	Status         string
	Classification setu.Classification
	Message        string
	TraceID        string

	FullName             string
	Category             string
	AadhaarSeedingStatus string
	FirstName            string
	MiddleName           string
	LastName             string
}

// VerifyIdentity runs the identity stage. Consent and reason preconditions
// short-circuit with a ValidationError before any external call. Every
// terminal outcome, failures included, is persisted so the attempt stays
// attributable in the funnel.
func (o *Orchestrator) VerifyIdentity(ctx context.Context, input IdentityInput) (*IdentityResult, error) {
	if !strings.EqualFold(input.Consent, consentAccepted) {
		return nil, &ValidationError{Message: "Consent must be 'Y' to proceed with verification"}
	}

	if utf8.RuneCountInString(input.Reason) < minReasonLength {
		return nil, &ValidationError{Message: "Reason must be at least 20 characters long"}
	}

	// the trace identifier is minted here, once per attempt, and reused by
	// every later stage of the same attempt
	traceID := uuid.NewString()

	outcome := o.client.CheckIdentity(ctx, input.Pan, input.Consent, input.Reason, traceID)

	// a provider success without a holder name is unusable downstream, so
	// the stage fails despite the upstream status code
	if outcome.Status == setu.IdentityStatusSuccess && outcome.FullName == "" {
		outcome.Status = setu.IdentityStatusFailed
		outcome.Message = "Verification returned no holder name"
	}

	record := &models.PANVerification{
		Pan:                  input.Pan,
		FullName:             outcome.FullName,
		Category:             outcome.Category,
		AadhaarSeedingStatus: nullString(outcome.AadhaarSeedingStatus),
		FirstName:            nullString(outcome.FirstName),
		MiddleName:           nullString(outcome.MiddleName),
		LastName:             nullString(outcome.LastName),
		Status:               outcome.Status,
		Message:              outcome.Message,
		TraceID:              traceID,
	}

	if _, err := o.verifications.Insert(record); err != nil {
		// the external call already happened and cannot be reversed, so the
		// caller still gets the outcome; the write is not retried
		o.logger.Error("failed to store identity check record", "trace_id", traceID, "error", err)
	}

	return &IdentityResult{
		Status:               outcome.Status,
		Classification:       outcome.Classification,
		Message:              outcome.Message,
		TraceID:              traceID,
		FullName:             outcome.FullName,
		Category:             outcome.Category,
		AadhaarSeedingStatus: outcome.AadhaarSeedingStatus,
		FirstName:            outcome.FirstName,
		MiddleName:           outcome.MiddleName,
		LastName:             outcome.LastName,
	}, nil
}

type ChallengeResult struct {
	Status         string
	Classification setu.Classification
	Message        string
	HTTPStatus     int
	TraceID        string

	ID        string
	ShortURL  string
	UpiBillID string
	UpiLink   string
	ValidUpto string
}

// CreateBankChallenge runs the bank-challenge stage. The caller must supply
// the trace identifier from a successful identity stage; the orchestrator
// additionally checks that such an identity record exists before calling the
// provider, so an arbitrary trace cannot start a challenge.
func (o *Orchestrator) CreateBankChallenge(ctx context.Context, traceID string) (*ChallengeResult, error) {
	if strings.TrimSpace(traceID) == "" {
		return nil, &ValidationError{Message: "A trace_id from a successful identity verification is required"}
	}

	verified, err := o.verifications.ExistsSuccessByTraceID(traceID)
	if err != nil {
		return nil, err
	}
	if !verified {
		return nil, &ValidationError{Message: "No successful identity verification found for this trace_id"}
	}

	outcome := o.client.CreateBankChallenge(ctx, traceID)

	record := &models.ReversePennyDrop{
		ID:        outcome.ID,
		ShortURL:  outcome.ShortURL,
		Status:    outcome.Status,
		TraceID:   traceID,
		UpiBillID: outcome.UpiBillID,
		UpiLink:   outcome.UpiLink,
		ValidUpto: outcome.ValidUpto,
	}

	// failed challenges are recorded too, under a synthetic id, so the
	// attempt remains attributable
	if record.ID == "" {
		switch outcome.Status {
		case setu.ChallengeStatusConnectionError:
			record.ID = "connection_error_" + uuid.NewString()
		default:
			record.ID = "error_" + uuid.NewString()
		}
	}

	if err := o.pennyDrops.Insert(record); err != nil {
		o.logger.Error("failed to store reverse penny drop record", "trace_id", traceID, "error", err)
	}

	return &ChallengeResult{
		Status:         outcome.Status,
		Classification: outcome.Classification,
		Message:        outcome.Message,
		HTTPStatus:     outcome.HTTPStatus,
		TraceID:        traceID,
		ID:             record.ID,
		ShortURL:       outcome.ShortURL,
		UpiBillID:      outcome.UpiBillID,
		UpiLink:        outcome.UpiLink,
		ValidUpto:      outcome.ValidUpto,
	}, nil
}

type PaymentResult struct {
	Success        bool
	Status         string
	Classification setu.Classification
	Message        string
	HTTPStatus     int
	TraceID        string
}

// ConfirmPayment settles a challenge. The trace identifier stored on the
// challenge record is reused; anything supplied by the caller is ignored to
// preserve linkage integrity.
func (o *Orchestrator) ConfirmPayment(ctx context.Context, requestID string, desiredSuccess bool) (*PaymentResult, error) {
	if !o.client.IsSandbox() {
		return nil, &ValidationError{Message: "Mock payments are only available in sandbox mode"}
	}

	drop, found, err := o.pennyDrops.GetOne(requestID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrChallengeNotFound
	}

	traceID := drop.TraceID

	outcome := o.client.ConfirmPayment(ctx, requestID, desiredSuccess, traceID)

	if outcome.Classification == setu.ClassNetwork {
		o.recordPayment(requestID, false, traceID)
		return &PaymentResult{
			Success:        false,
			Status:         setu.ChallengeStatusConnectionError,
			Classification: outcome.Classification,
			Message:        outcome.Message,
			TraceID:        traceID,
		}, nil
	}

	if outcome.Classification != setu.ClassNone {
		o.recordPayment(requestID, false, traceID)
		return &PaymentResult{
			Success:        false,
			Status:         setu.ChallengeStatusError,
			Classification: outcome.Classification,
			Message:        outcome.Message,
			HTTPStatus:     outcome.HTTPStatus,
			TraceID:        traceID,
		}, nil
	}

	o.recordPayment(requestID, desiredSuccess, traceID)

	settled := setu.ChallengeStatusExpired
	if desiredSuccess {
		settled = setu.ChallengeStatusSuccess
	}

	changed, err := o.pennyDrops.SettleStatus(requestID, settled)
	if err != nil {
		o.logger.Error("failed to update reverse penny drop status", "request_id", requestID, "error", err)
	} else if !changed {
		o.logger.Warn("reverse penny drop already settled", "request_id", requestID)
	}

	return &PaymentResult{
		Success: outcome.Success,
		Status:  settled,
		Message: outcome.Message,
		TraceID: traceID,
	}, nil
}

func (o *Orchestrator) recordPayment(requestID string, success bool, traceID string) {
	_, err := o.payments.Insert(&models.Payment{
		RequestID:     requestID,
		PaymentStatus: success,
		TraceID:       traceID,
	})
	if err != nil {
		o.logger.Error("failed to store payment record", "request_id", requestID, "error", err)
	}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
