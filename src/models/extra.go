package models

import (
	"errors"

	"nxtours/src/types"
)

var ErrUnknownExtra = errors.New("extra does not belong to this tour")

const (
	EXTRA_ACTIVITY      = "activity"
	EXTRA_ACCOMMODATION = "accommodation"
)

// Extra is a per-traveler add-on (optional activity or accommodation
// upgrade) priced independently of the tour's base price.
type Extra struct {
	ID        uint    `gorm:"primarykey" json:"id"`
	TourID    uint    `json:"tour_id,omitempty"`
	RefID     string  `gorm:"uniqueIndex" json:"ref_id"`
	Name      string  `json:"name,omitempty"`
	Kind      string  `gorm:"default:'activity'" json:"kind,omitempty"`
	UnitPrice float64 `json:"unit_price"`
	Currency  string  `gorm:"default:'usd'" json:"currency,omitempty"`

	Tour *Tour `gorm:"foreignKey:tour_id" json:"-"`

	types.Timestamps
}

// ResolveExtraSelection matches a selection against the tour's extras
// catalog, stamps the server-side price and clamps the count to the traveler
// total. The client's unit price is never trusted.
func ResolveExtraSelection(tour Tour, sel types.ExtraSelection, travelerCount uint) (types.ExtraSelection, error) {
	var catalog *Extra
	for i := range tour.Extras {
		if tour.Extras[i].RefID == sel.RefID {
			catalog = &tour.Extras[i]
			break
		}
	}
	if catalog == nil {
		return types.ExtraSelection{}, ErrUnknownExtra
	}
	if sel.TravelerCount > travelerCount {
		sel.TravelerCount = travelerCount
	}
	sel.Name = catalog.Name
	sel.UnitPrice = catalog.UnitPrice
	sel.Currency = catalog.Currency
	return sel, nil
}
