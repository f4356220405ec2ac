package pricing

import (
	"testing"
	"time"

	"nxtours/src/models"
	"nxtours/src/types"

	"github.com/stretchr/testify/assert"
)

func TestRefundPercentBands(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		days    int
		percent int
	}{
		{45, 90},
		{30, 90},
		{29, 75},
		{14, 75},
		{13, 50},
		{7, 50},
		{6, 25},
		{3, 25},
		{2, 0},
		{1, 0},
		{0, 0},
	}
	for _, tc := range cases {
		start := now.AddDate(0, 0, tc.days)
		assert.Equal(t, tc.percent, RefundPercent(start, now), "at %d days out", tc.days)
	}
}

func TestRefundPercentPartialDayRoundsUp(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	// 29 days and 6 hours out still counts as 30 days.
	start := now.AddDate(0, 0, 29).Add(6 * time.Hour)
	assert.Equal(t, 90, RefundPercent(start, now))
}

func TestRefundAmount(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	booking := models.Booking{
		StartDate: now.AddDate(0, 0, 14),
		Price:     types.PriceBreakdown{TotalPrice: 2200, Currency: "usd"},
	}
	percent, amount := RefundAmount(booking, now)
	assert.Equal(t, 75, percent)
	assert.Equal(t, 1650.0, amount)
}

func TestRefundAmountPastDeparture(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	booking := models.Booking{
		StartDate: now.AddDate(0, 0, -2),
		Price:     types.PriceBreakdown{TotalPrice: 900, Currency: "usd"},
	}
	percent, amount := RefundAmount(booking, now)
	assert.Equal(t, 0, percent)
	assert.Equal(t, 0.0, amount)
}
