package availability

import (
	"testing"
	"time"

	"nxtours/src/models"

	"github.com/stretchr/testify/assert"
)

var asOf = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

func day(offset int) time.Time {
	return asOf.AddDate(0, 0, offset)
}

func testTour() models.Tour {
	override120 := 120.0
	override90 := 90.0
	return models.Tour{
		ID:              1,
		Name:            "Fjord Explorer",
		BasePrice:       200,
		Currency:        "usd",
		DiscountPercent: 10,
		Departures: []models.DepartureDate{
			{ID: 1, TourID: 1, StartDate: day(-5), EndDate: day(-1), AvailableSpots: 10, IsActive: true},           // departed
			{ID: 2, TourID: 1, StartDate: day(30), EndDate: day(35), AvailableSpots: 0, IsActive: true},            // sold out
			{ID: 3, TourID: 1, StartDate: day(20), EndDate: day(25), AvailableSpots: 4, IsActive: false},           // deactivated
			{ID: 4, TourID: 1, StartDate: day(40), EndDate: day(45), AvailableSpots: 8, IsActive: true},            // bookable
			{ID: 5, TourID: 1, StartDate: day(10), EndDate: day(15), AvailableSpots: 2, IsActive: true},            // bookable, earliest
			{ID: 6, TourID: 1, StartDate: day(50), EndDate: day(55), AvailableSpots: 6, IsActive: true, PriceOverride: &override120},
			{ID: 7, TourID: 1, StartDate: day(60), EndDate: day(65), AvailableSpots: 6, IsActive: true, PriceOverride: &override90},
		},
	}
}

func TestListBookableFiltersAndSorts(t *testing.T) {
	bookable := ListBookable(testTour(), asOf)

	ids := make([]uint, 0, len(bookable))
	for _, d := range bookable {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []uint{5, 4, 6, 7}, ids)
}

func TestResolveDistinguishesFailureModes(t *testing.T) {
	tour := testTour()

	d, err := Resolve(tour, 4, asOf)
	assert.NoError(t, err)
	assert.Equal(t, uint(4), d.ID)

	_, err = Resolve(tour, 99, asOf)
	assert.ErrorIs(t, err, ErrDateNotFound)

	// Exists but sold out: a different failure than not-found, this is the
	// stale-selection case.
	_, err = Resolve(tour, 2, asOf)
	assert.ErrorIs(t, err, ErrDateNotBookable)

	_, err = Resolve(tour, 3, asOf)
	assert.ErrorIs(t, err, ErrDateNotBookable)

	_, err = Resolve(tour, 1, asOf)
	assert.ErrorIs(t, err, ErrDateNotBookable)
}

func TestBestDiscountPicksHighestEffectiveDiscount(t *testing.T) {
	// Override 90 on a 200 base is a 55% saving, beating both the 40%
	// override and the 10% tour discount.
	best := BestDiscount(testTour(), asOf)
	assert.NotNil(t, best)
	assert.Equal(t, uint(7), best.ID)
}

func TestBestDiscountTieBreaksToEarliestDate(t *testing.T) {
	tour := testTour()
	override := 90.0
	// Same 55% saving as departure 7 but two weeks earlier.
	tour.Departures = append(tour.Departures, models.DepartureDate{
		ID: 8, TourID: 1, StartDate: day(46), EndDate: day(51), AvailableSpots: 3, IsActive: true, PriceOverride: &override,
	})

	best := BestDiscount(tour, asOf)
	assert.NotNil(t, best)
	assert.Equal(t, uint(8), best.ID)
}

func TestBestDiscountNoneWhenNothingDiscounted(t *testing.T) {
	tour := models.Tour{
		ID:        2,
		BasePrice: 500,
		Departures: []models.DepartureDate{
			{ID: 1, TourID: 2, StartDate: day(10), AvailableSpots: 5, IsActive: true},
		},
	}
	assert.Nil(t, BestDiscount(tour, asOf))
}
