package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/cradoe/kycflow/internal/errHandler"
	"github.com/cradoe/kycflow/internal/helper"
	"github.com/cradoe/kycflow/internal/request"
	"github.com/cradoe/kycflow/internal/response"
	"github.com/cradoe/kycflow/internal/setu"
	"github.com/cradoe/kycflow/internal/stream"
	"github.com/cradoe/kycflow/internal/validator"
	"github.com/cradoe/kycflow/internal/verification"
)

const (
	// StageCompletedTopic carries one event per terminal stage outcome; the
	// audit worker consumes it into the activity log.
	StageCompletedTopic = "kyc.stage.completed"

	StageIdentity  = "identity"
	StageChallenge = "bank_challenge"
	StagePayment   = "payment"
)

// StageEvent is the message published after each terminal stage outcome.
type StageEvent struct {
	Stage    string `json:"stage"`
	Status   string `json:"status"`
	TraceID  string `json:"trace_id"`
	EntityID string `json:"entity_id"`
}

type VerificationHandler struct {
	Orchestrator *verification.Orchestrator
	Helper       *helper.HelperRepository
	Kafka        *stream.KafkaStream
	ErrHandler   *errHandler.ErrorHandler
}

func NewVerificationHandler(handler *VerificationHandler) *VerificationHandler {
	return &VerificationHandler{
		Orchestrator: handler.Orchestrator,
		Helper:       handler.Helper,
		Kafka:        handler.Kafka,
		ErrHandler:   handler.ErrHandler,
	}
}

func (h *VerificationHandler) HandleVerifyIdentity(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Number  string `json:"number"`
		Consent string `json:"consent"`
		Reason  string `json:"reason"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	if !validator.Matches(input.Number, validator.RgxPAN) {
		h.ErrHandler.BadRequest(w, r, errors.New("invalid PAN format, expected format: ABCDE1234A"))
		return
	}

	result, err := h.Orchestrator.VerifyIdentity(r.Context(), verification.IdentityInput{
		Pan:     input.Number,
		Consent: input.Consent,
		Reason:  input.Reason,
	})
	if err != nil {
		var validationErr *verification.ValidationError
		if errors.As(err, &validationErr) {
			h.ErrHandler.BadRequest(w, r, validationErr)
			return
		}
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	h.publishStageEvent(r, StageIdentity, result.Status, result.TraceID, input.Number)

	body := map[string]any{
		"status":   result.Status,
		"message":  result.Message,
		"trace_id": result.TraceID,
	}

	switch result.Status {
	case setu.IdentityStatusSuccess:
		body["data"] = map[string]any{
			"full_name":              result.FullName,
			"category":               result.Category,
			"aadhaar_seeding_status": result.AadhaarSeedingStatus,
			"first_name":             result.FirstName,
			"middle_name":            result.MiddleName,
			"last_name":              result.LastName,
		}
		err = response.JSONOkResponse(w, body, result.Message, nil)
	case setu.IdentityStatusFailed:
		// a definitive provider rejection is still a completed check; the
		// failure is carried in the payload, not the status code
		err = response.JSONOkResponse(w, body, result.Message, nil)
	case setu.IdentityStatusNotFound:
		err = response.JSONErrorResponse(w, body, result.Message, http.StatusNotFound, nil)
	case setu.IdentityStatusConnectionError:
		err = response.JSONErrorResponse(w, body, result.Message, http.StatusInternalServerError, nil)
	default:
		err = response.JSONErrorResponse(w, body, result.Message, http.StatusBadGateway, nil)
	}

	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *VerificationHandler) HandleCreateBankChallenge(w http.ResponseWriter, r *http.Request) {
	var input struct {
		TraceID string `json:"trace_id"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	result, err := h.Orchestrator.CreateBankChallenge(r.Context(), input.TraceID)
	if err != nil {
		var validationErr *verification.ValidationError
		if errors.As(err, &validationErr) {
			h.ErrHandler.BadRequest(w, r, validationErr)
			return
		}
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	h.publishStageEvent(r, StageChallenge, result.Status, result.TraceID, result.ID)

	body := map[string]any{
		"id":          result.ID,
		"short_url":   result.ShortURL,
		"status":      result.Status,
		"trace_id":    result.TraceID,
		"upi_bill_id": result.UpiBillID,
		"upi_link":    result.UpiLink,
		"valid_upto":  result.ValidUpto,
	}

	switch result.Status {
	case setu.ChallengeStatusCreated:
		err = response.JSONCreatedResponse(w, body, "Reverse penny drop created")
	case setu.ChallengeStatusConnectionError:
		err = response.JSONErrorResponse(w, body, result.Message, http.StatusInternalServerError, nil)
	default:
		status := result.HTTPStatus
		if status < http.StatusBadRequest {
			status = http.StatusBadGateway
		}
		err = response.JSONErrorResponse(w, body, result.Message, status, nil)
	}

	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *VerificationHandler) HandleConfirmPayment(w http.ResponseWriter, r *http.Request) {
	var input struct {
		RequestID      string `json:"request_id"`
		DesiredSuccess bool   `json:"desired_success"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	if input.RequestID == "" {
		h.ErrHandler.BadRequest(w, r, errors.New("request_id is required"))
		return
	}

	result, err := h.Orchestrator.ConfirmPayment(r.Context(), input.RequestID, input.DesiredSuccess)
	if err != nil {
		var validationErr *verification.ValidationError
		switch {
		case errors.As(err, &validationErr):
			h.ErrHandler.BadRequest(w, r, validationErr)
		case errors.Is(err, verification.ErrChallengeNotFound):
			h.ErrHandler.NotFoundMessage(w, r, "Reverse penny drop request not found")
		default:
			h.ErrHandler.ServerError(w, r, err)
		}
		return
	}

	h.publishStageEvent(r, StagePayment, result.Status, result.TraceID, input.RequestID)

	body := map[string]any{
		"success":  result.Success,
		"trace_id": result.TraceID,
	}

	switch {
	case result.Classification == setu.ClassNetwork:
		err = response.JSONErrorResponse(w, body, result.Message, http.StatusInternalServerError, nil)
	case result.Classification != setu.ClassNone:
		status := result.HTTPStatus
		if status < http.StatusBadRequest {
			status = http.StatusBadGateway
		}
		err = response.JSONErrorResponse(w, body, result.Message, status, nil)
	default:
		err = response.JSONOkResponse(w, body, result.Message, nil)
	}

	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *VerificationHandler) publishStageEvent(r *http.Request, stage, status, traceID, entityID string) {
	if h.Kafka == nil {
		return
	}

	event := StageEvent{
		Stage:    stage,
		Status:   status,
		TraceID:  traceID,
		EntityID: entityID,
	}

	h.Helper.BackgroundTask(r, func() error {
		js, err := json.Marshal(event)
		if err != nil {
			return err
		}

		if err := h.Kafka.ProduceMessage(StageCompletedTopic, string(js)); err != nil {
			log.Printf("Error publishing stage event: %v", err)
			return err
		}

		return nil
	})
}
