package services

import (
	"context"
	"errors"

	"github.com/senyabanana/gig-service/internal/models"
	"github.com/senyabanana/gig-service/internal/pricing"
	"github.com/senyabanana/gig-service/internal/repository"

	"github.com/jackc/pgx/v5"
)

// AdviceService считает рекомендованную ставку по срезам данных о музыканте и рынке.
// Рекомендация не влияет на зафиксированную цену заявки.
type AdviceService struct {
	Snapshots repository.SnapshotRepository
}

// NewAdviceService создаёт новый экземпляр AdviceService.
func NewAdviceService(snapshots repository.SnapshotRepository) *AdviceService {
	return &AdviceService{Snapshots: snapshots}
}

// GetRateAdvice возвращает рекомендованную ставку с разбивкой по факторам.
func (s *AdviceService) GetRateAdvice(ctx context.Context, candidateId string, instrumentType models.InstrumentType, location string, category models.EventCategory, startTime, endTime string, urgent bool) (*models.RateAdvice, error) {
	if candidateId == "" || instrumentType == "" || location == "" || category == "" {
		return nil, models.NewValidationError("missing required query parameters: candidateId, instrumentType, location or eventCategory")
	}
	if _, ok := pricing.TariffFor(category); !ok {
		return nil, models.NewValidationError("unsupported event category: " + string(category))
	}

	durationHours, err := pricing.WindowHours(startTime, endTime)
	if err != nil {
		return nil, err
	}

	candidate, err := s.Snapshots.GetCandidateSnapshot(ctx, candidateId)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.NewNotFoundError("candidate not found")
		}
		return nil, storeError(err)
	}

	market, err := s.Snapshots.GetMarketSnapshot(ctx, instrumentType, location)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.NewNotFoundError("no market data for this instrument and location")
		}
		return nil, storeError(err)
	}

	advice := pricing.Advise(pricing.AdviceInput{
		Candidate:     *candidate,
		Market:        *market,
		EventCategory: category,
		DurationHours: durationHours,
		Urgent:        urgent,
	})
	return &advice, nil
}
