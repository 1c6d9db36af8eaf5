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

// RateHandler - структура для обработки HTTP-запросов по рекомендованным ставкам.
type RateHandler struct {
	Service *services.AdviceService
	Logger  *zap.SugaredLogger
	Timeout time.Duration
}

// NewRateHandler создаёт новый экземпляр RateHandler.
func NewRateHandler(service *services.AdviceService, logger *zap.SugaredLogger, timeout time.Duration) *RateHandler {
	return &RateHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// GetRateAdvice обрабатывает запросы для получения рекомендованной ставки.
func (h *RateHandler) GetRateAdvice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid method, only GET is allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	query := r.URL.Query()
	candidateId := query.Get("candidateId")
	instrumentType := models.InstrumentType(query.Get("instrumentType"))
	location := query.Get("location")
	category := models.EventCategory(query.Get("eventCategory"))
	startTime := query.Get("startTime")
	endTime := query.Get("endTime")
	urgent := query.Get("urgent") == "true"

	advice, err := h.Service.GetRateAdvice(ctx, candidateId, instrumentType, location, category, startTime, endTime, urgent)
	if err != nil {
		if errorResponse, ok := err.(*models.ErrorResponse); ok {
			h.Logger.Infow("failed to compute rate advice", "error", err)
			utils.SendErrorResponse(w, errorResponse.StatusCode, errorResponse.Message)
			return
		}
		h.Logger.Errorw("failed to compute rate advice", "error", err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "failed to compute rate advice")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(advice); err != nil {
		h.Logger.Errorw("failed to encode response", "error", err)
	}
}
