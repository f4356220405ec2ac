package pricing

import (
	"math"
	"time"

	"nxtours/src/models"
)

// Cancellation policy bands, by days before departure. Lower bounds are
// inclusive: cancelling exactly 30 days out still refunds 90%.
const (
	refundFullBand = 30
	refundHighBand = 14
	refundMidBand  = 7
	refundLowBand  = 3
)

// RefundPercent maps days-before-departure to a refund percentage.
// The day difference is taken as ceil((startDate - now) / 24h).
func RefundPercent(startDate, now time.Time) int {
	d := int(math.Ceil(startDate.Sub(now).Hours() / 24))
	switch {
	case d >= refundFullBand:
		return 90
	case d >= refundHighBand:
		return 75
	case d >= refundMidBand:
		return 50
	case d >= refundLowBand:
		return 25
	default:
		return 0
	}
}

// RefundAmount applies the policy to a booking's persisted total. The caller
// owns persisting the result and moving the refund status.
func RefundAmount(booking models.Booking, now time.Time) (int, float64) {
	percent := RefundPercent(booking.StartDate, now)
	amount := Round2(booking.Price.TotalPrice * float64(percent) / 100)
	return percent, amount
}
