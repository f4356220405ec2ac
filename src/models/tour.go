package models

import (
	"nxtours/src/types"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type Tour struct {
	ID              uint       `gorm:"primarykey" json:"id"`
	Name            string     `json:"name,omitempty"`
	Slug            string     `gorm:"uniqueIndex" json:"slug,omitempty"`
	Summary         *string    `json:"summary,omitempty"`
	DurationDays    uint       `json:"duration_days,omitempty"`
	BasePrice       float64    `json:"base_price"`
	Currency        string     `gorm:"default:'usd'" json:"currency,omitempty"`
	DiscountPercent float64    `json:"discount_percent"`
	Rating          float32    `json:"rating,omitempty"`
	IsActive        bool       `gorm:"default:true" json:"is_active"`
	TenantID        *uuid.UUID `gorm:"type:uuid" json:"-"`

	Departures []DepartureDate `gorm:"foreignKey:tour_id" json:"departures,omitempty"`
	Extras     []Extra         `gorm:"foreignKey:tour_id" json:"extras,omitempty"`

	types.Timestamps
}

func (t *Tour) BeforeSave(tx *gorm.DB) error {
	if t.Slug == "" && t.Name != "" {
		t.Slug = slug.Make(t.Name)
	}
	return nil
}
