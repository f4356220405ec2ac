package models

import (
	"time"

	"nxtours/src/types"
)

// DepartureDate is one scheduled instance of a Tour with its own capacity and
// optional per-person price override. When PriceOverride is set it replaces
// the discounted base price entirely, the two are never combined.
type DepartureDate struct {
	ID             uint       `gorm:"primarykey" json:"id"`
	TourID         uint       `json:"tour_id,omitempty"`
	StartDate      time.Time  `json:"start_date"`
	EndDate        time.Time  `json:"end_date"`
	AvailableSpots int64      `json:"available_spots"`
	PriceOverride  *float64   `json:"price_override,omitempty"`
	IsActive       bool       `gorm:"default:true" json:"is_active"`

	Tour *Tour `gorm:"foreignKey:tour_id" json:"-"`

	types.Timestamps
}

// Bookable reports whether the departure can still take reservations as of
// the given instant.
func (d DepartureDate) Bookable(asOf time.Time) bool {
	return d.IsActive && d.AvailableSpots > 0 && d.StartDate.After(asOf)
}
