package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type Env string

const (
	Production Env = "production"
	Test       Env = "test"
	Local      Env = "local"
)

type BookingStatus string

const (
	BOOKING_PENDING   BookingStatus = "pending"
	BOOKING_CONFIRMED BookingStatus = "confirmed"
	BOOKING_CANCELLED BookingStatus = "cancelled"
	BOOKING_COMPLETED BookingStatus = "completed"
	BOOKING_NO_SHOW   BookingStatus = "no_show"
	BOOKING_EXPIRED   BookingStatus = "expired"
)

type PaymentStatus string

const (
	PAYMENT_PENDING  PaymentStatus = "pending"
	PAYMENT_PAID     PaymentStatus = "paid"
	PAYMENT_REFUNDED PaymentStatus = "refunded"
	PAYMENT_FAILED   PaymentStatus = "failed"
)

type RefundStatus string

const (
	REFUND_NONE      RefundStatus = "none"
	REFUND_PENDING   RefundStatus = "pending"
	REFUND_PROCESSED RefundStatus = "processed"
)

// Traveler is one person on a booking. Only the primary traveler's name is
// required for checkout.
type Traveler struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type ContactInfo struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// ExtraSelection is a priced add-on chosen during checkout. Selections with
// TravelerCount == 0 are dropped from the draft, never stored as zero.
type ExtraSelection struct {
	RefID         string  `json:"ref_id"`
	Name          string  `json:"name,omitempty"`
	UnitPrice     float64 `json:"unit_price"`
	Currency      string  `json:"currency,omitempty"`
	TravelerCount uint    `json:"traveler_count"`
}

// PriceBreakdown is the persisted form of a booking price. The identity
// TotalPrice = BasePrice*travelers - DiscountAmount + Taxes holds at all
// times and equals the pricing engine's grand total at creation.
type PriceBreakdown struct {
	BasePrice      float64 `json:"base_price"`
	DiscountAmount float64 `json:"discount_amount"`
	Taxes          float64 `json:"taxes"`
	TotalPrice     float64 `json:"total_price"`
	Currency       string  `json:"currency"`
}

type Payment struct {
	Method string        `json:"method,omitempty"`
	Status PaymentStatus `gorm:"default:'pending'" json:"status,omitempty"`
}

type Cancellation struct {
	IsCancelled   bool         `json:"is_cancelled"`
	CancelledAt   *time.Time   `json:"cancelled_at,omitempty"`
	RefundPercent int          `json:"refund_percent,omitempty"`
	RefundAmount  float64      `json:"refund_amount,omitempty"`
	RefundStatus  RefundStatus `gorm:"default:'none'" json:"refund_status,omitempty"`
}

type TravelerList []Traveler

func (a TravelerList) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *TravelerList) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, &a)
}

type ExtraSelectionList []ExtraSelection

func (a ExtraSelectionList) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *ExtraSelectionList) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, &a)
}

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type CreateBookingRequestBody struct {
	TourID               uint             `json:"tour_id" binding:"required"`
	SelectedDateID       uint             `json:"selected_date_id" binding:"required"`
	TravelerCount        uint             `json:"traveler_count" binding:"required,min=1"`
	PrimaryTraveler      Traveler         `json:"primary_traveler" binding:"required"`
	Travelers            []Traveler       `json:"travelers,omitempty"`
	Extras               []ExtraSelection `json:"extras,omitempty"`
	AccommodationUpgrade *ExtraSelection  `json:"accommodation_upgrade,omitempty"`
	ContactInfo          ContactInfo      `json:"contact_info" binding:"required"`
	RequestID            string           `json:"request_id,omitempty"`
}

type CancelBookingRequestBody struct {
	RequestedAt string `json:"requested_at,omitempty" binding:"omitempty,notfuture"`
}

type StartCheckoutRequestBody struct {
	TourID uint `json:"tour_id" binding:"required"`
}

type SetTravelersRequestBody struct {
	TravelerCount   uint     `json:"traveler_count" binding:"required,min=1"`
	PrimaryTraveler Traveler `json:"primary_traveler"`
}

type SelectDateRequestBody struct {
	DateID uint `json:"date_id" binding:"required"`
}

type SetExtraRequestBody struct {
	RefID         string `json:"ref_id" binding:"required"`
	TravelerCount uint   `json:"traveler_count"`
}

type SetUpgradeRequestBody struct {
	RefID         string `json:"ref_id"`
	TravelerCount uint   `json:"traveler_count"`
}

type SetContactRequestBody struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type EditStepRequestBody struct {
	Step int `json:"step" binding:"required,min=1,max=5"`
}
