package main

import (
	"errors"
	"log"
	"net/http"
	"time"

	"nxtours/src/availability"
	"nxtours/src/lib/mailer"
	"nxtours/src/models"
	"nxtours/src/types"
	"nxtours/src/utils"
	"nxtours/src/wizard"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// fetchTour is swapped out in tests.
var fetchTour = utils.GetTourWithDepartures

type checkoutURIParams struct {
	SessionID string `uri:"id" binding:"required,uuid"`
}

func draftResponse(wctx wizard.Context, s wizard.State) gin.H {
	resp := gin.H{"data": s}
	if quote, err := wizard.Quote(wctx, s); err == nil {
		resp["quote"] = quote
	}
	return resp
}

// applyCheckoutEvent runs one reducer step against the stored draft and
// persists the result. A rejected event leaves the stored draft untouched.
func applyCheckoutEvent(ctx *gin.Context, ev wizard.Event) {
	var params checkoutURIParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	drafts := wizard.GetDraftStore()
	state, err := drafts.Get(ctx.Request.Context(), params.SessionID)
	if err != nil {
		status := http.StatusNotFound
		if !errors.Is(err, wizard.ErrDraftNotFound) {
			status = http.StatusInternalServerError
		}
		ctx.JSON(status, gin.H{"error": err.Error()})
		return
	}
	tour, err := fetchTour(state.TourID)
	if err != nil {
		log.Printf("Error retrieving Tour %d: %s\n", state.TourID, err.Error())
		ctx.JSON(http.StatusBadGateway, gin.H{"error": "could not load tour availability, please retry"})
		return
	}
	wctx := wizard.Context{Tour: *tour, Now: time.Now()}
	next, err := wizard.Reduce(wctx, *state, ev)
	if err != nil {
		ctx.JSON(checkoutErrorStatus(err), gin.H{"error": err.Error(), "data": *state})
		return
	}
	if err := drafts.Save(ctx.Request.Context(), next); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "could not save draft"})
		return
	}
	ctx.JSON(http.StatusOK, draftResponse(wctx, next))
}

func checkoutErrorStatus(err error) int {
	switch {
	case errors.Is(err, availability.ErrDateNotFound):
		return http.StatusNotFound
	case errors.Is(err, availability.ErrDateNotBookable):
		return http.StatusConflict
	case errors.Is(err, wizard.ErrSubmissionInFlight), errors.Is(err, wizard.ErrAlreadySubmitted):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func checkoutHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/checkout", func(ctx *gin.Context) {
			var body types.StartCheckoutRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			tour, err := fetchTour(body.TourID)
			if err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "tour not found"})
				return
			}
			sessionID := uuid.New().String()
			state := wizard.New(sessionID, tour.ID)
			if err := wizard.GetDraftStore().Save(ctx.Request.Context(), state); err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "could not start checkout"})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"session_id": sessionID, "data": state})
		}).
		GET("/checkout/:id", func(ctx *gin.Context) {
			var params checkoutURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			state, err := wizard.GetDraftStore().Get(ctx.Request.Context(), params.SessionID)
			if err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			tour, err := fetchTour(state.TourID)
			if err != nil {
				ctx.JSON(http.StatusBadGateway, gin.H{"error": "could not load tour availability, please retry"})
				return
			}
			wctx := wizard.Context{Tour: *tour, Now: time.Now()}
			ctx.JSON(http.StatusOK, draftResponse(wctx, *state))
		}).
		PUT("/checkout/:id/travelers", func(ctx *gin.Context) {
			var body types.SetTravelersRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			applyCheckoutEvent(ctx, wizard.SetTravelers{Count: body.TravelerCount, Primary: body.PrimaryTraveler})
		}).
		PUT("/checkout/:id/date", func(ctx *gin.Context) {
			var body types.SelectDateRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			applyCheckoutEvent(ctx, wizard.SelectDate{DateID: body.DateID})
		}).
		PUT("/checkout/:id/extras", func(ctx *gin.Context) {
			var body types.SetExtraRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			applyCheckoutEvent(ctx, wizard.SetExtra{Selection: types.ExtraSelection{
				RefID:         body.RefID,
				TravelerCount: body.TravelerCount,
			}})
		}).
		PUT("/checkout/:id/upgrade", func(ctx *gin.Context) {
			var body types.SetUpgradeRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var sel *types.ExtraSelection
			if body.RefID != "" {
				sel = &types.ExtraSelection{RefID: body.RefID, TravelerCount: body.TravelerCount}
			}
			applyCheckoutEvent(ctx, wizard.SetUpgrade{Selection: sel})
		}).
		PUT("/checkout/:id/contact", func(ctx *gin.Context) {
			var body types.SetContactRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			applyCheckoutEvent(ctx, wizard.SetContact{Contact: types.ContactInfo{Email: body.Email, Phone: body.Phone}})
		}).
		POST("/checkout/:id/advance", func(ctx *gin.Context) {
			applyCheckoutEvent(ctx, wizard.Advance{})
		}).
		POST("/checkout/:id/retreat", func(ctx *gin.Context) {
			applyCheckoutEvent(ctx, wizard.Retreat{})
		}).
		POST("/checkout/:id/step", func(ctx *gin.Context) {
			var body types.EditStepRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			applyCheckoutEvent(ctx, wizard.EditStep{Step: body.Step})
		}).
		POST("/checkout/:id/submit", submitCheckout)
	return g
}

// submitCheckout drives the draft through the recorder. The in-flight guard
// lives in the reducer: a concurrent submit on the same session is suppressed
// without issuing a second booking request.
func submitCheckout(ctx *gin.Context) {
	var params checkoutURIParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userId := ctx.GetUint("id")
	drafts := wizard.GetDraftStore()
	state, err := drafts.Get(ctx.Request.Context(), params.SessionID)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	tour, err := fetchTour(state.TourID)
	if err != nil {
		ctx.JSON(http.StatusBadGateway, gin.H{"error": "could not load tour availability, please retry"})
		return
	}
	wctx := wizard.Context{Tour: *tour, Now: time.Now()}

	inFlight, err := wizard.Reduce(wctx, *state, wizard.Submit{})
	if err != nil {
		if errors.Is(err, wizard.ErrSubmissionInFlight) {
			// Duplicate click or retried request: no second booking, no
			// user-facing error.
			ctx.JSON(http.StatusAccepted, gin.H{"data": *state})
			return
		}
		ctx.JSON(checkoutErrorStatus(err), gin.H{"error": err.Error(), "data": *state})
		return
	}
	if err := drafts.Save(ctx.Request.Context(), inFlight); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "could not save draft"})
		return
	}

	var tenantId *uuid.UUID
	if t := ctx.GetString("tenant_id"); t != "" {
		if tid, err := uuid.Parse(t); err == nil {
			tenantId = &tid
		}
	}
	body := types.CreateBookingRequestBody{
		TourID:               state.TourID,
		SelectedDateID:       state.SelectedDateID,
		TravelerCount:        state.TravelerCount,
		PrimaryTraveler:      state.PrimaryTraveler,
		Extras:               state.Extras,
		AccommodationUpgrade: state.Upgrade,
		ContactInfo:          state.Contact,
		// The session id doubles as the idempotency key: a retried submit
		// replays the same booking instead of creating another.
		RequestID: state.SessionID,
	}
	booking, err := utils.CreateBooking(ctx.Request.Context(), &body, userId, tenantId)
	if err != nil {
		stale := errors.Is(err, utils.ErrStaleAvailability)
		failed, _ := wizard.Reduce(wctx, inFlight, wizard.SubmitFailed{Stale: stale})
		if serr := drafts.Save(ctx.Request.Context(), failed); serr != nil {
			log.Printf("Error saving draft after failed submission: %s\n", serr.Error())
		}
		if stale {
			ctx.JSON(http.StatusConflict, gin.H{"error": err.Error(), "data": failed})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "could not record booking, please retry", "data": failed})
		return
	}

	done, _ := wizard.Reduce(wctx, inFlight, wizard.SubmitSucceeded{Reference: booking.BookingReference})
	if err := drafts.Save(ctx.Request.Context(), done); err != nil {
		log.Printf("Error saving submitted draft: %s\n", err.Error())
	}
	go func(b models.Booking, t models.Tour) {
		if err := mailer.SendBookingConfirmation(&b, &t); err != nil {
			log.Printf("Error sending booking confirmation: %s\n", err.Error())
		}
	}(*booking, *tour)

	ctx.JSON(http.StatusCreated, gin.H{
		"booking_reference": booking.BookingReference,
		"status":            booking.Status,
		"price":             booking.Price,
		"data":              done,
	})
}
