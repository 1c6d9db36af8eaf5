package pricing

import (
	"fmt"
	"time"

	"github.com/senyabanana/gig-service/internal/models"
)

const minutesPerDay = 24 * 60

// Tariff описывает ценовые параметры категории мероприятия.
type Tariff struct {
	BasePrice            float64
	BaseHours            int
	AdditionalHourPrice  float64
	GracePeriodMinutes   int
	MinimumChargeMinutes int
}

var tariffs = map[models.EventCategory]Tariff{
	models.Wedding:   {BasePrice: 500, BaseHours: 2, AdditionalHourPrice: 150, GracePeriodMinutes: 15, MinimumChargeMinutes: 5},
	models.Corporate: {BasePrice: 700, BaseHours: 2, AdditionalHourPrice: 200, GracePeriodMinutes: 10, MinimumChargeMinutes: 5},
	models.Private:   {BasePrice: 400, BaseHours: 2, AdditionalHourPrice: 120, GracePeriodMinutes: 15, MinimumChargeMinutes: 10},
}

// TariffFor возвращает тариф для категории мероприятия.
func TariffFor(category models.EventCategory) (Tariff, bool) {
	tariff, ok := tariffs[category]
	return tariff, ok
}

// Quote считает фиксированную цену заявки по временному окну и категории.
func Quote(startTime, endTime string, category models.EventCategory) (float64, error) {
	tariff, ok := tariffs[category]
	if !ok {
		return 0, models.NewValidationError(fmt.Sprintf("unsupported event category: %s", category))
	}

	totalMinutes, err := WindowMinutes(startTime, endTime)
	if err != nil {
		return 0, err
	}

	baseMinutes := tariff.BaseHours * 60
	if totalMinutes <= baseMinutes {
		return tariff.BasePrice, nil
	}

	additionalMinutes := totalMinutes - baseMinutes
	wholeHours := additionalMinutes / 60
	fractionalMinutes := additionalMinutes % 60

	var additionalCharge float64
	switch {
	case fractionalMinutes > tariff.GracePeriodMinutes:
		additionalCharge = float64(wholeHours+1) * tariff.AdditionalHourPrice
	case fractionalMinutes > tariff.MinimumChargeMinutes:
		additionalCharge = float64(wholeHours)*tariff.AdditionalHourPrice + tariff.AdditionalHourPrice/2
	default:
		additionalCharge = float64(wholeHours) * tariff.AdditionalHourPrice
	}

	return tariff.BasePrice + additionalCharge, nil
}

// WindowMinutes возвращает длительность окна в минутах с учётом перехода через полночь.
func WindowMinutes(startTime, endTime string) (int, error) {
	startMinutes, err := parseMinutes(startTime)
	if err != nil {
		return 0, err
	}
	endMinutes, err := parseMinutes(endTime)
	if err != nil {
		return 0, err
	}

	totalMinutes := endMinutes - startMinutes
	if endMinutes < startMinutes {
		totalMinutes += minutesPerDay
	}
	if totalMinutes == 0 {
		return 0, models.NewValidationError("time window must not be empty")
	}
	return totalMinutes, nil
}

// WindowHours возвращает длительность окна в часах.
func WindowHours(startTime, endTime string) (float64, error) {
	totalMinutes, err := WindowMinutes(startTime, endTime)
	if err != nil {
		return 0, err
	}
	return float64(totalMinutes) / 60, nil
}

func parseMinutes(value string) (int, error) {
	parsed, err := time.Parse("15:04", value)
	if err != nil {
		return 0, models.NewValidationError(fmt.Sprintf("invalid time %q, must be in HH:MM format", value))
	}
	return parsed.Hour()*60 + parsed.Minute(), nil
}
