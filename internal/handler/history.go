package handler

import (
	"net/http"

	"github.com/cradoe/kycflow/internal/errHandler"
	"github.com/cradoe/kycflow/internal/repository"
	"github.com/cradoe/kycflow/internal/response"
)

type HistoryHandler struct {
	VerificationRepo repository.PanVerificationRepository
	PennyDropRepo    repository.PennyDropRepository
	PaymentRepo      repository.PaymentRepository
	ErrHandler       *errHandler.ErrorHandler
}

func NewHistoryHandler(handler *HistoryHandler) *HistoryHandler {
	return &HistoryHandler{
		VerificationRepo: handler.VerificationRepo,
		PennyDropRepo:    handler.PennyDropRepo,
		PaymentRepo:      handler.PaymentRepo,
		ErrHandler:       handler.ErrHandler,
	}
}

type identityHistoryItem struct {
	ID       string `json:"id"`
	Pan      string `json:"pan"`
	FullName string `json:"full_name"`
	Category string `json:"category"`
	Status   string `json:"status"`
	Message  string `json:"message"`
	TraceID  string `json:"trace_id"`
	Created  string `json:"created_at"`
}

func (h *HistoryHandler) HandleIdentityHistory(w http.ResponseWriter, r *http.Request) {
	verifications, err := h.VerificationRepo.GetAll()
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	data := make([]identityHistoryItem, len(verifications))
	for i, v := range verifications {
		data[i] = identityHistoryItem{
			ID:       v.ID,
			Pan:      v.Pan,
			FullName: v.FullName,
			Category: v.Category,
			Status:   v.Status,
			Message:  v.Message,
			TraceID:  v.TraceID,
			Created:  v.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}

	message := "Data retrieved successfully"

	err = response.JSONOkResponse(w, data, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

type challengeHistoryItem struct {
	ID        string `json:"id"`
	ShortURL  string `json:"short_url"`
	Status    string `json:"status"`
	TraceID   string `json:"trace_id"`
	UpiBillID string `json:"upi_bill_id"`
	UpiLink   string `json:"upi_link"`
	ValidUpto string `json:"valid_upto"`
	Created   string `json:"created_at"`
}

func (h *HistoryHandler) HandleChallengeHistory(w http.ResponseWriter, r *http.Request) {
	drops, err := h.PennyDropRepo.GetAll()
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	data := make([]challengeHistoryItem, len(drops))
	for i, d := range drops {
		data[i] = challengeHistoryItem{
			ID:        d.ID,
			ShortURL:  d.ShortURL,
			Status:    d.Status,
			TraceID:   d.TraceID,
			UpiBillID: d.UpiBillID,
			UpiLink:   d.UpiLink,
			ValidUpto: d.ValidUpto,
			Created:   d.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}

	message := "Data retrieved successfully"

	err = response.JSONOkResponse(w, data, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

type paymentHistoryItem struct {
	ID            string `json:"id"`
	RequestID     string `json:"request_id"`
	PaymentStatus bool   `json:"payment_status"`
	TraceID       string `json:"trace_id"`
	Created       string `json:"created_at"`
}

func (h *HistoryHandler) HandlePaymentHistory(w http.ResponseWriter, r *http.Request) {
	payments, err := h.PaymentRepo.GetAll()
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	data := make([]paymentHistoryItem, len(payments))
	for i, p := range payments {
		data[i] = paymentHistoryItem{
			ID:            p.ID,
			RequestID:     p.RequestID,
			PaymentStatus: p.PaymentStatus,
			TraceID:       p.TraceID,
			Created:       p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}

	message := "Data retrieved successfully"

	err = response.JSONOkResponse(w, data, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}
