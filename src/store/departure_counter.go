package store

import (
	"context"
	"errors"
	"log"

	"nxtours/src/models"

	"gorm.io/gorm"
)

// ErrInsufficientSpots means the conditional decrement matched no row: the
// departure is inactive, gone, or does not have the requested spots left.
var ErrInsufficientSpots = errors.New("departure has insufficient spots")

// DepartureCounter guards the shared available_spots counter. Reserve must
// check and decrement in one atomic operation; read-then-write is a
// check-then-act race two checkout sessions will lose.
type DepartureCounter interface {
	Reserve(ctx context.Context, dateID uint, qty uint) error
	Release(ctx context.Context, dateID uint, qty uint) error
}

// GormDepartureCounter runs the counter against the backing store as a single
// conditional UPDATE. Construct it around the enclosing transaction so the
// decrement commits or rolls back together with the booking row.
type GormDepartureCounter struct {
	DB *gorm.DB
}

func NewDepartureCounter(db *gorm.DB) *GormDepartureCounter {
	return &GormDepartureCounter{DB: db}
}

func (c *GormDepartureCounter) Reserve(ctx context.Context, dateID uint, qty uint) error {
	res := c.DB.WithContext(ctx).
		Model(&models.DepartureDate{}).
		Where("id = ? AND is_active = ? AND available_spots >= ?", dateID, true, qty).
		UpdateColumn("available_spots", gorm.Expr("available_spots - ?", qty))
	if res.Error != nil {
		log.Printf("Error reserving %d spots on departure %d: %s\n", qty, dateID, res.Error.Error())
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientSpots
	}
	return nil
}

func (c *GormDepartureCounter) Release(ctx context.Context, dateID uint, qty uint) error {
	res := c.DB.WithContext(ctx).
		Model(&models.DepartureDate{}).
		Where("id = ?", dateID).
		UpdateColumn("available_spots", gorm.Expr("available_spots + ?", qty))
	if res.Error != nil {
		log.Printf("Error releasing %d spots on departure %d: %s\n", qty, dateID, res.Error.Error())
		return res.Error
	}
	return nil
}
