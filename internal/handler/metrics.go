package handler

import (
	"net/http"

	"github.com/cradoe/kycflow/internal/errHandler"
	"github.com/cradoe/kycflow/internal/funnel"
	"github.com/cradoe/kycflow/internal/response"
)

type MetricsHandler struct {
	Engine     *funnel.Engine
	ErrHandler *errHandler.ErrorHandler
}

func NewMetricsHandler(handler *MetricsHandler) *MetricsHandler {
	return &MetricsHandler{
		Engine:     handler.Engine,
		ErrHandler: handler.ErrHandler,
	}
}

func (h *MetricsHandler) HandleFunnelMetrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.Engine.Snapshot()
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	message := "Data retrieved successfully"

	err = response.JSONOkResponse(w, metrics, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}
