package models

import (
	"time"

	"nxtours/src/types"

	"github.com/google/uuid"
)

type Booking struct {
	ID               uint                     `gorm:"primarykey" json:"id"`
	BookingReference string                   `gorm:"uniqueIndex" json:"booking_reference"`
	TourID           uint                     `json:"tour_id,omitempty"`
	UserID           uint                     `json:"user_id,omitempty"`
	DepartureDateID  uint                     `json:"departure_date_id,omitempty"`
	StartDate        time.Time                `json:"start_date"`
	TravelerCount    uint                     `json:"traveler_count"`
	Travelers        types.TravelerList       `gorm:"type:jsonb" json:"travelers,omitempty"`
	Extras           types.ExtraSelectionList `gorm:"type:jsonb" json:"extras,omitempty"`
	ContactEmail     string                   `json:"contact_email,omitempty"`
	ContactPhone     string                   `json:"contact_phone,omitempty"`
	Status           types.BookingStatus      `gorm:"default:'pending'" json:"status,omitempty"`
	Price            types.PriceBreakdown     `gorm:"embedded;embeddedPrefix:price_" json:"price"`
	Payment          types.Payment            `gorm:"embedded;embeddedPrefix:payment_" json:"payment"`
	Cancellation     types.Cancellation       `gorm:"embedded;embeddedPrefix:cancellation_" json:"cancellation"`
	RequestID        *uuid.UUID               `gorm:"type:uuid;uniqueIndex" json:"-"`
	TenantID         *uuid.UUID               `gorm:"type:uuid" json:"-"`

	Tour          *Tour          `gorm:"foreignKey:tour_id" json:"tour,omitempty"`
	User          *User          `gorm:"foreignKey:user_id" json:"user,omitempty"`
	DepartureDate *DepartureDate `gorm:"foreignKey:departure_date_id" json:"departure_date,omitempty"`

	types.Timestamps
}

// Cancellable reports whether the booking is in a state the cancellation
// workflow accepts.
func (b Booking) Cancellable() bool {
	switch b.Status {
	case types.BOOKING_PENDING, types.BOOKING_CONFIRMED:
		return true
	default:
		return false
	}
}
