package pricing

import (
	"math"

	"github.com/senyabanana/gig-service/internal/models"
)

// AdviceInput представляет входные данные для расчёта рекомендованной ставки.
type AdviceInput struct {
	Candidate     models.CandidateSnapshot
	Market        models.MarketSnapshot
	EventCategory models.EventCategory
	DurationHours float64
	Urgent        bool
}

var categoryMultipliers = map[models.EventCategory]float64{
	models.Wedding:   1.25,
	models.Corporate: 1.15,
	models.Private:   1.0,
}

var demandMultipliers = map[models.DemandLevel]float64{
	models.LowDemand:    0.9,
	models.NormalDemand: 1.0,
	models.HighDemand:   1.2,
}

// Advise считает необязательную рекомендованную ставку с разбивкой по факторам.
// Рекомендация никогда не меняет зафиксированную цену заявки.
func Advise(input AdviceInput) models.RateAdvice {
	baseRate := input.Market.BaseRate

	factors := []models.RateFactor{
		{Name: "experience", Multiplier: experienceMultiplier(input.Candidate.ExperienceYears)},
		{Name: "demand", Multiplier: demandMultiplier(input.Market.DemandLevel)},
		{Name: "location", Multiplier: nonZero(input.Market.LocationFactor)},
		{Name: "category", Multiplier: categoryMultiplier(input.EventCategory)},
		{Name: "duration", Multiplier: durationMultiplier(input.DurationHours)},
		{Name: "urgency", Multiplier: urgencyMultiplier(input.Urgent)},
		{Name: "season", Multiplier: nonZero(input.Market.SeasonFactor)},
		{Name: "performance", Multiplier: performanceMultiplier(input.Candidate)},
	}

	finalRate := baseRate
	for i := range factors {
		factors[i].Amount = baseRate * (factors[i].Multiplier - 1)
		finalRate *= factors[i].Multiplier
	}

	return models.RateAdvice{
		BaseRate:  baseRate,
		FinalRate: roundToFive(finalRate),
		Factors:   factors,
	}
}

func experienceMultiplier(years int) float64 {
	switch {
	case years < 2:
		return 0.9
	case years < 5:
		return 1.0
	case years < 10:
		return 1.15
	default:
		return 1.3
	}
}

func demandMultiplier(level models.DemandLevel) float64 {
	if multiplier, ok := demandMultipliers[level]; ok {
		return multiplier
	}
	return 1.0
}

func categoryMultiplier(category models.EventCategory) float64 {
	if multiplier, ok := categoryMultipliers[category]; ok {
		return multiplier
	}
	return 1.0
}

func durationMultiplier(hours float64) float64 {
	switch {
	case hours >= 6:
		return 0.93
	case hours >= 4:
		return 0.97
	default:
		return 1.0
	}
}

func urgencyMultiplier(urgent bool) float64 {
	if urgent {
		return 1.2
	}
	return 1.0
}

// performanceMultiplier сворачивает рейтинг, долю завершённых мероприятий и
// отзывчивость в один множитель в диапазоне [0.9, 1.1].
func performanceMultiplier(candidate models.CandidateSnapshot) float64 {
	ratingScore := candidate.Rating / 5
	completionScore := 1.0
	if candidate.TotalEvents > 0 {
		completionScore = float64(candidate.CompletedEvents) / float64(candidate.TotalEvents)
	}
	score := 0.5*ratingScore + 0.3*completionScore + 0.2*candidate.ResponseRate
	return 0.9 + 0.2*score
}

func nonZero(factor float64) float64 {
	if factor <= 0 {
		return 1.0
	}
	return factor
}

func roundToFive(value float64) float64 {
	return math.Round(value/5) * 5
}
