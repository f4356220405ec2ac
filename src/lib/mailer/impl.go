package mailer

import (
	"fmt"
	"log"
	"os"

	"nxtours/src/lib"
	"nxtours/src/models"

	"github.com/wneessen/go-mail"
)

// SendBookingConfirmation emails the booking reference and price breakdown to
// the booking's contact address. Best effort: the booking is already
// persisted when this runs, failures are logged and never bubble up to the
// checkout response.
func SendBookingConfirmation(booking *models.Booking, tour *models.Tour) error {
	from := os.Getenv("MAIL_FROM")
	client, err := lib.GetSMTPClient()
	if err != nil {
		return err
	}
	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return err
	}
	if err := msg.To(booking.ContactEmail); err != nil {
		return err
	}
	msg.Subject(fmt.Sprintf("Your booking %s is confirmed pending payment", booking.BookingReference))
	body := fmt.Sprintf(
		"Thanks for booking %s.\n\nReference: %s\nTravelers: %d\nDeparture: %s\nTotal: %.2f %s\n\nYour seats are held while we wait for payment.",
		tour.Name,
		booking.BookingReference,
		booking.TravelerCount,
		booking.StartDate.Format("2006-01-02"),
		booking.Price.TotalPrice,
		booking.Price.Currency,
	)
	msg.SetBodyString(mail.TypeTextPlain, body)
	if err := client.DialAndSend(msg); err != nil {
		log.Printf("Error sending confirmation for %s: %s\n", booking.BookingReference, err.Error())
		return err
	}
	return nil
}
