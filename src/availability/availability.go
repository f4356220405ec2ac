package availability

import (
	"errors"
	"sort"
	"time"

	"nxtours/src/models"
)

var (
	// ErrDateNotFound means the identifier matches no departure of the tour.
	ErrDateNotFound = errors.New("departure date not found")
	// ErrDateNotBookable means the departure exists but is inactive, sold
	// out, or already departed. Callers must keep this distinct from
	// ErrDateNotFound: it is the normal outcome when a date sells out
	// between client selection and server confirmation.
	ErrDateNotBookable = errors.New("departure date is no longer bookable")
)

// ListBookable returns the tour's departures that can still be booked as of
// the given instant, ascending by start date.
func ListBookable(tour models.Tour, asOf time.Time) []models.DepartureDate {
	bookable := make([]models.DepartureDate, 0, len(tour.Departures))
	for _, d := range tour.Departures {
		if d.Bookable(asOf) {
			bookable = append(bookable, d)
		}
	}
	sort.SliceStable(bookable, func(i, j int) bool {
		return bookable[i].StartDate.Before(bookable[j].StartDate)
	})
	return bookable
}

// Resolve looks up a departure by identifier and checks that it is still
// bookable.
func Resolve(tour models.Tour, dateID uint, asOf time.Time) (*models.DepartureDate, error) {
	for i := range tour.Departures {
		d := tour.Departures[i]
		if d.ID != dateID {
			continue
		}
		if !d.Bookable(asOf) {
			return nil, ErrDateNotBookable
		}
		return &d, nil
	}
	return nil, ErrDateNotFound
}

// effectiveDiscount is the fraction saved against the tour's catalog base
// price for the given departure.
func effectiveDiscount(tour models.Tour, d models.DepartureDate) float64 {
	if tour.BasePrice <= 0 {
		return 0
	}
	if d.PriceOverride != nil {
		return 1 - *d.PriceOverride/tour.BasePrice
	}
	return tour.DiscountPercent / 100
}

// BestDiscount picks the bookable departure with the highest effective
// discount. Ties go to the earliest start date: the candidate list is walked
// in start-date order and a later date must beat, not match, the current
// best. Returns nil when no departure is bookable or nothing is discounted.
func BestDiscount(tour models.Tour, asOf time.Time) *models.DepartureDate {
	var best *models.DepartureDate
	bestDiscount := 0.0
	bookable := ListBookable(tour, asOf)
	for i := range bookable {
		d := bookable[i]
		disc := effectiveDiscount(tour, d)
		if disc > bestDiscount {
			bestDiscount = disc
			best = &bookable[i]
		}
	}
	return best
}
