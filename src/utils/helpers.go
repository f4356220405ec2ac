package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"nxtours/src/availability"
	"nxtours/src/config"
	"nxtours/src/db"
	"nxtours/src/lib"
	"nxtours/src/models"
	"nxtours/src/pricing"
	"nxtours/src/store"
	"nxtours/src/types"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ErrStaleAvailability means the selected departure was bookable when the
// client chose it but is not anymore. The draft survives; the user is sent
// back to the date step.
var ErrStaleAvailability = errors.New("selected departure date is no longer available")

const referenceAttempts = 5

// GenerateBookingReference builds an NXT-<epoch-ms tail>-<random> reference.
// Uniqueness is probabilistic only; CreateBooking re-checks against the
// unique index and retries.
func GenerateBookingReference() string {
	ms := time.Now().UnixMilli()
	mss := fmt.Sprintf("%d", ms)
	if len(mss) > 8 {
		mss = mss[len(mss)-8:]
	}
	return fmt.Sprintf("NXT-%s-%03d", mss, rand.Intn(1000))
}

// GetTourWithDepartures loads a tour with its departures and extras catalog.
func GetTourWithDepartures(id uint) (*models.Tour, error) {
	db := db.GetDb()
	var tour models.Tour
	err := db.
		Model(&models.Tour{}).
		Where(&models.Tour{ID: id}).
		Preload("Departures").
		Preload("Extras").
		First(&tour).
		Error
	if err != nil {
		return nil, err
	}
	return &tour, nil
}

// CreateBooking validates a submitted draft against live availability and
// persists the Booking. The availability check and the spot decrement run as
// one conditional update inside the same transaction as the insert: either
// the booking exists and the spots are gone, or neither.
//
// The client's displayed total is advisory; the price breakdown is recomputed
// here from the pricing engine and persisted as the authoritative value.
func CreateBooking(ctx context.Context, params *types.CreateBookingRequestBody, userId uint, tenantId *uuid.UUID) (*models.Booking, error) {
	gdb := db.GetDb()

	var requestId *uuid.UUID
	if params.RequestID != "" {
		rid, err := uuid.Parse(params.RequestID)
		if err != nil {
			return nil, fmt.Errorf("invalid request id: %s", err.Error())
		}
		requestId = &rid
		// Replay of an already-recorded submission returns the original
		// booking instead of double-charging a retried network call.
		var existing models.Booking
		err = gdb.
			Model(&models.Booking{}).
			Where(&models.Booking{RequestID: requestId}).
			First(&existing).
			Error
		if err == nil {
			log.Printf("Replayed booking submission %s -> %s\n", rid.String(), existing.BookingReference)
			return &existing, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	var booking *models.Booking
	err := gdb.Transaction(func(tx *gorm.DB) error {
		var tour models.Tour
		if err := tx.
			Model(&models.Tour{}).
			Where(&models.Tour{ID: params.TourID}).
			Preload("Departures").
			Preload("Extras").
			First(&tour).
			Error; err != nil {
			return err
		}
		now := time.Now()
		date, err := availability.Resolve(tour, params.SelectedDateID, now)
		if err != nil {
			if errors.Is(err, availability.ErrDateNotBookable) {
				return ErrStaleAvailability
			}
			return err
		}

		extras, err := normalizeExtras(tour, params)
		if err != nil {
			return err
		}
		breakdown := pricing.NewBreakdown(tour, *date, params.TravelerCount, extras)

		counter := store.NewDepartureCounter(tx)
		if err := counter.Reserve(ctx, date.ID, params.TravelerCount); err != nil {
			if errors.Is(err, store.ErrInsufficientSpots) {
				return ErrStaleAvailability
			}
			return err
		}

		reference, err := uniqueReference(tx)
		if err != nil {
			return err
		}

		travelers := params.Travelers
		if len(travelers) == 0 {
			travelers = []types.Traveler{params.PrimaryTraveler}
		}
		b := models.Booking{
			BookingReference: reference,
			TourID:           tour.ID,
			UserID:           userId,
			DepartureDateID:  date.ID,
			StartDate:        date.StartDate,
			TravelerCount:    params.TravelerCount,
			Travelers:        travelers,
			Extras:           extras,
			ContactEmail:     params.ContactInfo.Email,
			ContactPhone:     params.ContactInfo.Phone,
			Status:           types.BOOKING_PENDING,
			Price:            breakdown,
			Payment:          types.Payment{Status: types.PAYMENT_PENDING},
			Cancellation:     types.Cancellation{RefundStatus: types.REFUND_NONE},
			RequestID:        requestId,
			TenantID:         tenantId,
		}
		if err := tx.Create(&b).Error; err != nil {
			log.Printf("error in Booking transaction: %s\n", err.Error())
			return err
		}
		booking = &b
		return nil
	})
	if err != nil {
		// Two concurrent submits on one session both pass the replay lookup;
		// the unique index on request_id lets exactly one insert through. The
		// loser returns the winner's booking instead of an error.
		if requestId != nil {
			var existing models.Booking
			lerr := gdb.
				Model(&models.Booking{}).
				Where(&models.Booking{RequestID: requestId}).
				First(&existing).
				Error
			if lerr == nil {
				log.Printf("Replayed booking submission %s -> %s after losing insert race\n", requestId.String(), existing.BookingReference)
				return &existing, nil
			}
		}
		log.Printf("CreateBooking failed: %s\n", err.Error())
		return nil, err
	}
	return booking, nil
}

// uniqueReference draws references until one misses the unique index, within
// a bounded number of attempts.
func uniqueReference(tx *gorm.DB) (string, error) {
	for attempt := 0; attempt < referenceAttempts; attempt++ {
		ref := GenerateBookingReference()
		var count int64
		if err := tx.
			Model(&models.Booking{}).
			Where(&models.Booking{BookingReference: ref}).
			Count(&count).
			Error; err != nil {
			return "", err
		}
		if count == 0 {
			return ref, nil
		}
		log.Printf("Booking reference collision on %s, retrying\n", ref)
	}
	return "", errors.New("could not generate a unique booking reference")
}

func normalizeExtras(tour models.Tour, params *types.CreateBookingRequestBody) ([]types.ExtraSelection, error) {
	extras := make([]types.ExtraSelection, 0, len(params.Extras)+1)
	selections := params.Extras
	if params.AccommodationUpgrade != nil {
		selections = append(selections, *params.AccommodationUpgrade)
	}
	for _, sel := range selections {
		resolved, err := models.ResolveExtraSelection(tour, sel, params.TravelerCount)
		if err != nil {
			return nil, err
		}
		if resolved.TravelerCount == 0 {
			continue
		}
		extras = append(extras, resolved)
	}
	return extras, nil
}

// CancelBooking applies the refund policy to the persisted total and marks
// the booking cancelled, releasing its spots back to the departure, all in
// one transaction.
func CancelBooking(ctx context.Context, bookingId uint, now time.Time) (*models.Booking, error) {
	gdb := db.GetDb()
	var cancelled *models.Booking
	err := gdb.Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.
			Model(&models.Booking{}).
			Where("id = ?", bookingId).
			First(&booking).
			Error; err != nil {
			return err
		}
		if !booking.Cancellable() {
			return fmt.Errorf("booking [%d] cannot be cancelled in status %s", bookingId, booking.Status)
		}
		percent, amount := pricing.RefundAmount(booking, now)
		booking.Status = types.BOOKING_CANCELLED
		booking.Cancellation = types.Cancellation{
			IsCancelled:   true,
			CancelledAt:   &now,
			RefundPercent: percent,
			RefundAmount:  amount,
			RefundStatus:  types.REFUND_PENDING,
		}
		if err := tx.
			Model(&models.Booking{}).
			Where("id = ?", bookingId).
			Updates(map[string]any{
				"status":                      booking.Status,
				"cancellation_is_cancelled":   true,
				"cancellation_cancelled_at":   now,
				"cancellation_refund_percent": percent,
				"cancellation_refund_amount":  amount,
				"cancellation_refund_status":  types.REFUND_PENDING,
			}).
			Error; err != nil {
			return err
		}
		counter := store.NewDepartureCounter(tx)
		if err := counter.Release(ctx, booking.DepartureDateID, booking.TravelerCount); err != nil {
			return err
		}
		cancelled = &booking
		return nil
	})
	if err != nil {
		log.Printf("Could not cancel booking %d: %s\n", bookingId, err.Error())
		return nil, err
	}
	InvalidateBookingCache(ctx, cancelled.BookingReference)
	return cancelled, nil
}

// ExpirePendingBookings releases seats held by bookings whose payment never
// arrived within the hold TTL. Run from the scheduler.
func ExpirePendingBookings() error {
	gdb := db.GetDb()
	cutoff := time.Now().Add(-config.BookingHoldTTL())
	var stale []models.Booking
	err := gdb.
		Model(&models.Booking{}).
		Where(&models.Booking{Status: types.BOOKING_PENDING}).
		Where("created_at < ?", cutoff).
		Find(&stale).
		Error
	if err != nil {
		log.Printf("Error retrieving expired bookings: %s\n", err.Error())
		return err
	}
	for _, b := range stale {
		booking := b
		err := gdb.Transaction(func(tx *gorm.DB) error {
			res := tx.
				Model(&models.Booking{}).
				Where("id = ? AND status = ?", booking.ID, types.BOOKING_PENDING).
				Update("status", types.BOOKING_EXPIRED)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				// Payment landed between the sweep query and here.
				return nil
			}
			counter := store.NewDepartureCounter(tx)
			return counter.Release(context.Background(), booking.DepartureDateID, booking.TravelerCount)
		})
		if err != nil {
			log.Printf("Error expiring booking %d: %s\n", booking.ID, err.Error())
			continue
		}
		InvalidateBookingCache(context.Background(), booking.BookingReference)
	}
	if len(stale) > 0 {
		log.Printf("Expired %d pending bookings\n", len(stale))
	}
	return nil
}

func bookingCacheKey(reference string) string {
	return fmt.Sprintf("booking:ref:%s", reference)
}

// GetBookingByReference serves booking lookups through the Redis cache.
func GetBookingByReference(ctx context.Context, reference string) (*models.Booking, error) {
	rd := lib.GetRedisClient()
	if rd != nil {
		val, err := rd.Get(ctx, bookingCacheKey(reference)).Result()
		if err == nil {
			var cached models.Booking
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				return &cached, nil
			}
		} else if err != redis.Nil {
			log.Printf("Error reading booking %s from cache: %s\n", reference, err.Error())
		}
	}
	gdb := db.GetDb()
	var booking models.Booking
	err := gdb.
		Model(&models.Booking{}).
		Where(&models.Booking{BookingReference: reference}).
		Preload("Tour").
		First(&booking).
		Error
	if err != nil {
		return nil, err
	}
	if rd != nil {
		body, err := json.Marshal(&booking)
		if err == nil {
			if err := rd.Set(ctx, bookingCacheKey(reference), string(body), 30*time.Minute).Err(); err != nil {
				log.Printf("Failed to cache booking %s: %s\n", reference, err.Error())
			}
		}
	}
	return &booking, nil
}

func InvalidateBookingCache(ctx context.Context, reference string) {
	rd := lib.GetRedisClient()
	if rd == nil {
		return
	}
	if err := rd.Del(ctx, bookingCacheKey(reference)).Err(); err != nil {
		log.Printf("Failed to invalidate booking cache %s: %s\n", reference, err.Error())
	}
}
