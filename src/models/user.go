package models

import (
	"nxtours/src/types"

	"github.com/google/uuid"
)

// User is owned by the identity service; this engine only reads it to attach
// bookings to an account.
type User struct {
	ID        uint       `gorm:"primarykey" json:"id"`
	Email     string     `gorm:"uniqueIndex" json:"email,omitempty"`
	FirstName string     `json:"first_name,omitempty"`
	LastName  string     `json:"last_name,omitempty"`
	TenantID  *uuid.UUID `gorm:"type:uuid" json:"-"`

	Bookings []Booking `gorm:"foreignKey:user_id" json:"bookings,omitempty"`

	types.Timestamps
}
