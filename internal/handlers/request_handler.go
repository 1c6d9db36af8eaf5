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

// RequestHandler - структура для обработки HTTP-запросов по заявкам.
type RequestHandler struct {
	Service *services.MatchingService
	Logger  *zap.SugaredLogger
	Timeout time.Duration
}

// NewRequestHandler создаёт новый экземпляр RequestHandler.
func NewRequestHandler(service *services.MatchingService, logger *zap.SugaredLogger, timeout time.Duration) *RequestHandler {
	return &RequestHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// CreateRequest обрабатывает запросы для создания заявки.
func (h *RequestHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid method, only POST is allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var requestInput models.RequestInput
	if err := json.NewDecoder(r.Body).Decode(&requestInput); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	request, err := h.Service.CreateRequest(ctx, requestInput)
	if err != nil {
		h.writeError(w, err, "failed to create request")
		return
	}

	h.writeJSON(w, request)
}

// GetUserRequests обрабатывает запросы для получения списка заявок организатора.
func (h *RequestHandler) GetUserRequests(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid method, only GET is allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	organizerId := r.URL.Query().Get("organizerId")
	limitStr := r.URL.Query().Get("limit")
	offsetStr := r.URL.Query().Get("offset")
	statuses := r.URL.Query()["status"]

	requests, err := h.Service.GetUserRequests(ctx, organizerId, limitStr, offsetStr, statuses)
	if err != nil {
		h.writeError(w, err, "failed to fetch requests")
		return
	}

	h.writeJSON(w, requests)
}

// GetRequest обрабатывает запросы для получения заявки.
func (h *RequestHandler) GetRequest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid method, only GET is allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	requestId := r.PathValue("requestId")

	request, err := h.Service.GetRequest(ctx, requestId)
	if err != nil {
		h.writeError(w, err, "failed to fetch request")
		return
	}

	h.writeJSON(w, request)
}

// GetRequestStatus обрабатывает запросы для получения статуса заявки.
func (h *RequestHandler) GetRequestStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid method, only GET is allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	requestId := r.PathValue("requestId")

	status, err := h.Service.GetRequestStatus(ctx, requestId)
	if err != nil {
		h.writeError(w, err, "failed to fetch request status")
		return
	}

	h.writeJSON(w, status)
}

// CancelRequest обрабатывает запросы для отмены заявки.
func (h *RequestHandler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid method, only PUT is allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	requestId := r.PathValue("requestId")
	organizerId := r.URL.Query().Get("organizerId")

	request, err := h.Service.CancelRequest(ctx, requestId, organizerId)
	if err != nil {
		h.writeError(w, err, "failed to cancel request")
		return
	}

	h.writeJSON(w, request)
}

// ResendRequest обрабатывает запросы для переоткрытия истёкшей заявки.
func (h *RequestHandler) ResendRequest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid method, only PUT is allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	requestId := r.PathValue("requestId")
	organizerId := r.URL.Query().Get("organizerId")

	request, err := h.Service.ResendRequest(ctx, requestId, organizerId)
	if err != nil {
		h.writeError(w, err, "failed to resend request")
		return
	}

	h.writeJSON(w, request)
}

func (h *RequestHandler) writeError(w http.ResponseWriter, err error, fallback string) {
	if errorResponse, ok := err.(*models.ErrorResponse); ok {
		h.Logger.Infow(fallback, "error", err)
		utils.SendErrorResponse(w, errorResponse.StatusCode, errorResponse.Message)
		return
	}
	h.Logger.Errorw(fallback, "error", err)
	utils.SendErrorResponse(w, http.StatusInternalServerError, fallback)
}

func (h *RequestHandler) writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.Logger.Errorw("failed to encode response", "error", err)
	}
}
