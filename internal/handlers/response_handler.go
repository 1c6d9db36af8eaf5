package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/senyabanana/gig-service/internal/models"
	"github.com/senyabanana/gig-service/internal/services"
	"github.com/senyabanana/gig-service/internal/utils"

	"go.uber.org/zap"
)

// ResponseHandler - структура для обработки HTTP-запросов по откликам.
type ResponseHandler struct {
	Service *services.MatchingService
	Logger  *zap.SugaredLogger
	Timeout time.Duration
}

// NewResponseHandler создаёт новый экземпляр ResponseHandler.
func NewResponseHandler(service *services.MatchingService, logger *zap.SugaredLogger, timeout time.Duration) *ResponseHandler {
	return &ResponseHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// SubmitResponse обрабатывает запросы для создания отклика музыканта.
func (h *ResponseHandler) SubmitResponse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid method, only POST is allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	requestId := r.PathValue("requestId")

	var responseInput models.ResponseInput
	if err := json.NewDecoder(r.Body).Decode(&responseInput); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	response, err := h.Service.SubmitResponse(ctx, requestId, responseInput)
	if err != nil {
		h.writeError(w, err, "failed to submit response")
		return
	}

	h.writeJSON(w, response)
}

// GetRequestResponses обрабатывает запросы для получения откликов на заявку.
func (h *ResponseHandler) GetRequestResponses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid method, only GET is allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	requestId := r.PathValue("requestId")
	limitStr := r.URL.Query().Get("limit")
	offsetStr := r.URL.Query().Get("offset")

	responses, err := h.Service.GetRequestResponses(ctx, requestId, limitStr, offsetStr)
	if err != nil {
		h.writeError(w, err, "failed to fetch responses")
		return
	}

	h.writeJSON(w, responses)
}

// AcceptResponse обрабатывает запросы для принятия отклика кандидата.
func (h *ResponseHandler) AcceptResponse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid method, only PUT is allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	requestId := r.PathValue("requestId")
	candidateId := r.URL.Query().Get("candidateId")
	organizerId := r.URL.Query().Get("organizerId")

	request, err := h.Service.AcceptResponse(ctx, requestId, candidateId, organizerId)
	if err != nil {
		h.writeError(w, err, "failed to accept response")
		return
	}

	h.writeJSON(w, request)
}

func (h *ResponseHandler) writeError(w http.ResponseWriter, err error, fallback string) {
	if errorResponse, ok := err.(*models.ErrorResponse); ok {
		h.Logger.Infow(fallback, "error", err)
		utils.SendErrorResponse(w, errorResponse.StatusCode, errorResponse.Message)
		return
	}
	h.Logger.Errorw(fallback, "error", err)
	utils.SendErrorResponse(w, http.StatusInternalServerError, fallback)
}

func (h *ResponseHandler) writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.Logger.Errorw("failed to encode response", "error", err)
	}
}
