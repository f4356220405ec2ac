package pricing

import (
	"math"

	"nxtours/src/models"
	"nxtours/src/types"
)

// Pure price calculators. Every total shown to a user and every total
// persisted on a Booking derives from GrandTotal; nothing re-derives the
// formula independently.

// Round2 rounds a monetary amount to cents. Applied once, at breakdown
// assembly, never inside the per-component calculators.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// PerPersonPrice returns the departure's override price when present,
// otherwise the tour's base price with the percentage discount applied.
// Override and percentage discount are never combined.
func PerPersonPrice(tour models.Tour, date models.DepartureDate) float64 {
	if date.PriceOverride != nil {
		return *date.PriceOverride
	}
	return tour.BasePrice * (1 - tour.DiscountPercent/100)
}

// ExtrasTotal sums unit price times traveler count over all selections.
// Zero-count selections contribute nothing; the wizard drops them from the
// draft before they ever reach here.
func ExtrasTotal(extras []types.ExtraSelection) float64 {
	var total float64
	for _, e := range extras {
		total += e.UnitPrice * float64(e.TravelerCount)
	}
	return total
}

// GrandTotal is the single formula of record for a reservation's price.
func GrandTotal(tour models.Tour, date models.DepartureDate, travelerCount uint, extras []types.ExtraSelection) float64 {
	return PerPersonPrice(tour, date)*float64(travelerCount) + ExtrasTotal(extras)
}

// NewBreakdown assembles the persisted price form. The identity
// TotalPrice = BasePrice*travelerCount - DiscountAmount + Taxes is kept by
// construction: DiscountAmount carries the gap between the catalog base price
// and the effective per-person price, and Taxes carries the per-booking
// add-ons (no tax regime is configured on the platform).
func NewBreakdown(tour models.Tour, date models.DepartureDate, travelerCount uint, extras []types.ExtraSelection) types.PriceBreakdown {
	perPerson := PerPersonPrice(tour, date)
	discount := (tour.BasePrice - perPerson) * float64(travelerCount)
	taxes := ExtrasTotal(extras)
	return types.PriceBreakdown{
		BasePrice:      Round2(tour.BasePrice),
		DiscountAmount: Round2(discount),
		Taxes:          Round2(taxes),
		TotalPrice:     Round2(GrandTotal(tour, date, travelerCount, extras)),
		Currency:       tour.Currency,
	}
}
