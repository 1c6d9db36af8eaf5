package pricing_test

import (
	"testing"

	"github.com/senyabanana/gig-service/internal/models"
	"github.com/senyabanana/gig-service/internal/pricing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteBaseWindow(t *testing.T) {
	// Любая длительность в пределах базовых часов стоит базовую цену.
	for _, window := range [][2]string{
		{"20:00", "20:30"},
		{"20:00", "21:30"},
		{"20:00", "22:00"},
	} {
		price, err := pricing.Quote(window[0], window[1], models.Wedding)
		require.NoError(t, err)
		assert.Equal(t, 500.0, price, "window %s-%s", window[0], window[1])
	}
}

func TestQuoteMidnightWrapInvariance(t *testing.T) {
	overnight, err := pricing.Quote("23:00", "01:30", models.Wedding)
	require.NoError(t, err)

	sameDay, err := pricing.Quote("10:00", "12:30", models.Wedding)
	require.NoError(t, err)

	assert.Equal(t, sameDay, overnight)
}

func TestQuoteHalfHourSurcharge(t *testing.T) {
	// 3ч10м: дробные 10 минут больше минимума (5), но в пределах льготных (15).
	price, err := pricing.Quote("18:00", "21:10", models.Wedding)
	require.NoError(t, err)
	assert.Equal(t, 725.0, price)
}

func TestQuoteExactHourNoSurcharge(t *testing.T) {
	price, err := pricing.Quote("18:00", "21:00", models.Wedding)
	require.NoError(t, err)
	assert.Equal(t, 650.0, price)
}

func TestQuoteThresholdBoundaries(t *testing.T) {
	// Строгое сравнение: значение, равное порогу, попадает в дешёвую ветку.
	tests := []struct {
		name     string
		endTime  string
		expected float64
	}{
		{"fractional equals grace period", "21:15", 725},
		{"fractional above grace period", "21:16", 800},
		{"fractional equals minimum charge", "21:05", 650},
		{"fractional above minimum charge", "21:06", 725},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price, err := pricing.Quote("18:00", tt.endTime, models.Wedding)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, price)
		})
	}
}

func TestQuoteCeilBranchOtherTariff(t *testing.T) {
	// Corporate: 1ч30м сверх базы, 30 дробных минут больше льготных 10 - округление вверх.
	price, err := pricing.Quote("10:00", "13:30", models.Corporate)
	require.NoError(t, err)
	assert.Equal(t, 1100.0, price)
}

func TestQuoteInvalidInput(t *testing.T) {
	_, err := pricing.Quote("18:00", "21:00", "Festival")
	assert.True(t, models.IsKind(err, models.ValidationError))

	_, err = pricing.Quote("25:99", "21:00", models.Wedding)
	assert.True(t, models.IsKind(err, models.ValidationError))

	_, err = pricing.Quote("18:00", "18:00", models.Wedding)
	assert.True(t, models.IsKind(err, models.ValidationError))
}
