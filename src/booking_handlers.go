package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path"
	"time"

	"nxtours/src/db"
	"nxtours/src/models"
	"nxtours/src/types"
	"nxtours/src/utils"

	"github.com/gin-gonic/gin"
	"github.com/yeqown/go-qrcode"
	"gorm.io/gorm"
)

func bookingHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/bookings", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			db := db.GetDb()
			var bookings []models.Booking
			err := db.
				Model(&models.Booking{}).
				Where(&models.Booking{UserID: userId}).
				Preload("Tour").
				Order("created_at desc").
				Find(&bookings).
				Error
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": bookings, "count": len(bookings)})
		}).
		GET("/bookings/:reference", func(ctx *gin.Context) {
			reference := ctx.Params.ByName("reference")
			booking, err := utils.GetBookingByReference(ctx.Request.Context(), reference)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
					return
				}
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": booking})
		}).
		PUT("/bookings/:reference/cancel", func(ctx *gin.Context) {
			reference := ctx.Params.ByName("reference")
			target, err := utils.GetBookingByReference(ctx.Request.Context(), reference)
			if err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
				return
			}
			var body types.CancelBookingRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil && err.Error() != "EOF" {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			requestedAt := time.Now()
			if body.RequestedAt != "" {
				parsed, err := time.Parse(time.RFC3339, body.RequestedAt)
				if err != nil {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				requestedAt = parsed
			}
			booking, err := utils.CancelBooking(ctx.Request.Context(), target.ID, requestedAt)
			if err != nil {
				log.Printf("Could not complete request: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "Error while processing request"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{
				"refund_percent": booking.Cancellation.RefundPercent,
				"refund_amount":  booking.Cancellation.RefundAmount,
				"refund_status":  booking.Cancellation.RefundStatus,
			})
		}).
		GET("/bookings/:reference/voucher", func(ctx *gin.Context) {
			reference := ctx.Params.ByName("reference")
			booking, err := utils.GetBookingByReference(ctx.Request.Context(), reference)
			if err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
				return
			}
			if booking.Status == types.BOOKING_CANCELLED || booking.Status == types.BOOKING_EXPIRED {
				ctx.JSON(http.StatusConflict, gin.H{"error": "booking is not redeemable"})
				return
			}
			qrc, err := qrcode.New(booking.BookingReference)
			if err != nil {
				log.Printf("Could not build voucher code for %s: %s\n", reference, err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			tempdir := os.Getenv("TEMP_DIR")
			filename := fmt.Sprintf("voucher_%s.jpeg", booking.BookingReference)
			filepath := path.Join(tempdir, filename)
			if err := qrc.Save(filepath); err != nil {
				log.Printf("Could not save voucher to file [%s]: %s\n", filepath, err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			ctx.FileAttachment(filepath, "voucher.jpeg")
		})
	return g
}
