package wizard

import (
	"testing"
	"time"

	"nxtours/src/availability"
	"nxtours/src/models"
	"nxtours/src/types"

	"github.com/stretchr/testify/assert"
)

var now = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

func testContext() Context {
	return Context{
		Tour: models.Tour{
			ID:              1,
			Name:            "Sahara Trek",
			BasePrice:       1000,
			Currency:        "usd",
			DiscountPercent: 0,
			Departures: []models.DepartureDate{
				{ID: 10, TourID: 1, StartDate: now.AddDate(0, 0, 30), AvailableSpots: 6, IsActive: true},
				{ID: 11, TourID: 1, StartDate: now.AddDate(0, 0, 60), AvailableSpots: 0, IsActive: true},
			},
			Extras: []models.Extra{
				{ID: 1, TourID: 1, RefID: "camel-ride", Name: "Camel ride", UnitPrice: 100, Currency: "usd"},
				{ID: 2, TourID: 1, RefID: "tent-upgrade", Name: "Luxury tent", Kind: models.EXTRA_ACCOMMODATION, UnitPrice: 250, Currency: "usd"},
			},
		},
		Now: now,
	}
}

func reduceAll(t *testing.T, ctx Context, s State, events ...Event) State {
	t.Helper()
	for _, ev := range events {
		next, err := Reduce(ctx, s, ev)
		assert.NoError(t, err)
		s = next
	}
	return s
}

func validDraft(t *testing.T, ctx Context) State {
	t.Helper()
	s := New("session-1", 1)
	return reduceAll(t, ctx, s,
		SetTravelers{Count: 2, Primary: types.Traveler{FirstName: "Ada", LastName: "Lovelace"}},
		Advance{},
		SelectDate{DateID: 10},
		Advance{},
		Advance{},
		Advance{},
		SetContact{Contact: types.ContactInfo{Email: "ada@example.com", Phone: "+123456"}},
	)
}

func TestAdvanceBlockedOnEmptyName(t *testing.T) {
	ctx := testContext()
	s := New("s", 1)
	s, err := Reduce(ctx, s, SetTravelers{Count: 2, Primary: types.Traveler{FirstName: "", LastName: "Lovelace"}})
	assert.NoError(t, err)

	next, err := Reduce(ctx, s, Advance{})
	assert.ErrorIs(t, err, ErrTravelersInvalid)
	assert.Equal(t, s, next)
	assert.Equal(t, StepTravelers, next.Step)
}

func TestAdvanceBlockedWithoutBookableDate(t *testing.T) {
	ctx := testContext()
	s := New("s", 1)
	s = reduceAll(t, ctx, s,
		SetTravelers{Count: 1, Primary: types.Traveler{FirstName: "Ada", LastName: "Lovelace"}},
		Advance{},
	)

	_, err := Reduce(ctx, s, Advance{})
	assert.ErrorIs(t, err, ErrDateInvalid)

	// A sold-out date cannot even be selected.
	_, err = Reduce(ctx, s, SelectDate{DateID: 11})
	assert.ErrorIs(t, err, availability.ErrDateNotBookable)

	_, err = Reduce(ctx, s, SelectDate{DateID: 99})
	assert.ErrorIs(t, err, availability.ErrDateNotFound)
}

func TestOptionalStepsStillSequential(t *testing.T) {
	ctx := testContext()
	s := validDraft(t, ctx)
	assert.Equal(t, StepContact, s.Step)
}

func TestExtrasClampOnTravelerShrink(t *testing.T) {
	ctx := testContext()
	s := New("s", 1)
	s = reduceAll(t, ctx, s,
		SetTravelers{Count: 4, Primary: types.Traveler{FirstName: "Ada", LastName: "Lovelace"}},
		Advance{},
		SelectDate{DateID: 10},
		Advance{},
		SetExtra{Selection: types.ExtraSelection{RefID: "camel-ride", TravelerCount: 4}},
	)

	s = reduceAll(t, ctx, s, SetTravelers{Count: 2, Primary: s.PrimaryTraveler})
	assert.Len(t, s.Extras, 1)
	assert.Equal(t, uint(2), s.Extras[0].TravelerCount)

	quote, err := Quote(ctx, s)
	assert.NoError(t, err)
	// 1000*2 plus only 2 units of the extra.
	assert.Equal(t, 2200.0, quote.TotalPrice)
}

func TestReduceLeavesInputStateUntouched(t *testing.T) {
	ctx := testContext()
	s := New("s", 1)
	s = reduceAll(t, ctx, s,
		SetTravelers{Count: 4, Primary: types.Traveler{FirstName: "Ada", LastName: "Lovelace"}},
		SetExtra{Selection: types.ExtraSelection{RefID: "camel-ride", TravelerCount: 4}},
		SetUpgrade{Selection: &types.ExtraSelection{RefID: "tent-upgrade", TravelerCount: 4}},
	)

	next, err := Reduce(ctx, s, SetTravelers{Count: 2, Primary: s.PrimaryTraveler})
	assert.NoError(t, err)
	assert.Equal(t, uint(2), next.Extras[0].TravelerCount)
	assert.Equal(t, uint(2), next.Upgrade.TravelerCount)

	// The state handed in keeps its pre-reduction values.
	assert.Equal(t, uint(4), s.TravelerCount)
	assert.Equal(t, uint(4), s.Extras[0].TravelerCount)
	assert.Equal(t, uint(4), s.Upgrade.TravelerCount)
}

func TestZeroCountExtraIsRemoved(t *testing.T) {
	ctx := testContext()
	s := New("s", 1)
	s = reduceAll(t, ctx, s,
		SetTravelers{Count: 2, Primary: types.Traveler{FirstName: "Ada", LastName: "Lovelace"}},
		SetExtra{Selection: types.ExtraSelection{RefID: "camel-ride", TravelerCount: 2}},
		SetExtra{Selection: types.ExtraSelection{RefID: "camel-ride", TravelerCount: 0}},
	)
	assert.Empty(t, s.Extras)
}

func TestUnknownExtraRejected(t *testing.T) {
	ctx := testContext()
	s := New("s", 1)
	_, err := Reduce(ctx, s, SetExtra{Selection: types.ExtraSelection{RefID: "jetski", TravelerCount: 1}})
	assert.ErrorIs(t, err, ErrUnknownExtra)
}

func TestDraftCarriesServerPrices(t *testing.T) {
	ctx := testContext()
	s := New("s", 1)
	s = reduceAll(t, ctx, s,
		SetTravelers{Count: 2, Primary: types.Traveler{FirstName: "Ada", LastName: "Lovelace"}},
		// Client-sent price is ignored in favor of the catalog.
		SetExtra{Selection: types.ExtraSelection{RefID: "camel-ride", UnitPrice: 1, TravelerCount: 2}},
	)
	assert.Equal(t, 100.0, s.Extras[0].UnitPrice)
}

func TestUpgradeClampAndClear(t *testing.T) {
	ctx := testContext()
	s := New("s", 1)
	s = reduceAll(t, ctx, s,
		SetTravelers{Count: 3, Primary: types.Traveler{FirstName: "Ada", LastName: "Lovelace"}},
		SetUpgrade{Selection: &types.ExtraSelection{RefID: "tent-upgrade", TravelerCount: 5}},
	)
	assert.NotNil(t, s.Upgrade)
	assert.Equal(t, uint(3), s.Upgrade.TravelerCount)

	s = reduceAll(t, ctx, s, SetUpgrade{Selection: nil})
	assert.Nil(t, s.Upgrade)

	// Without an explicit count the upgrade covers the whole party.
	s = reduceAll(t, ctx, s, SetUpgrade{Selection: &types.ExtraSelection{RefID: "tent-upgrade"}})
	assert.NotNil(t, s.Upgrade)
	assert.Equal(t, uint(3), s.Upgrade.TravelerCount)
	assert.Equal(t, 250.0, s.Upgrade.UnitPrice)
}

func TestRetreatAndEditStep(t *testing.T) {
	ctx := testContext()
	s := validDraft(t, ctx)

	s = reduceAll(t, ctx, s, Retreat{})
	assert.Equal(t, StepTravelExtras, s.Step)

	s = reduceAll(t, ctx, s, EditStep{Step: StepDate})
	assert.Equal(t, StepDate, s.Step)
	// Draft data survives the jump.
	assert.Equal(t, uint(10), s.SelectedDateID)

	_, err := Reduce(ctx, s, EditStep{Step: StepContact})
	assert.ErrorIs(t, err, ErrStepNotCompleted)
}

func TestSubmissionInFlightGuard(t *testing.T) {
	ctx := testContext()
	s := validDraft(t, ctx)

	inFlight, err := Reduce(ctx, s, Submit{})
	assert.NoError(t, err)
	assert.True(t, inFlight.Submitting)

	_, err = Reduce(ctx, inFlight, Submit{})
	assert.ErrorIs(t, err, ErrSubmissionInFlight)

	// Mutations are blocked while the submission is pending.
	_, err = Reduce(ctx, inFlight, SetTravelers{Count: 5, Primary: s.PrimaryTraveler})
	assert.ErrorIs(t, err, ErrSubmissionInFlight)
}

func TestSubmitRequiresAllGatedSteps(t *testing.T) {
	ctx := testContext()
	s := validDraft(t, ctx)
	s.Contact.Phone = ""

	_, err := Reduce(ctx, s, Submit{})
	assert.ErrorIs(t, err, ErrContactInvalid)
}

func TestSubmitSucceededFinalizesDraft(t *testing.T) {
	ctx := testContext()
	s := validDraft(t, ctx)
	s = reduceAll(t, ctx, s, Submit{}, SubmitSucceeded{Reference: "NXT-12345678-042"})

	assert.Equal(t, StepSubmitted, s.Step)
	assert.False(t, s.Submitting)
	assert.Equal(t, "NXT-12345678-042", s.Reference)

	_, err := Reduce(ctx, s, Submit{})
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
	_, err = Reduce(ctx, s, SetContact{Contact: s.Contact})
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
}

func TestStaleSubmissionReturnsToDateStep(t *testing.T) {
	ctx := testContext()
	s := validDraft(t, ctx)
	inFlight := reduceAll(t, ctx, s, Submit{})

	failed := reduceAll(t, ctx, inFlight, SubmitFailed{Stale: true})
	assert.Equal(t, StepDate, failed.Step)
	assert.False(t, failed.Submitting)
	// Everything the user typed earlier is preserved.
	assert.Equal(t, s.PrimaryTraveler, failed.PrimaryTraveler)
	assert.Equal(t, s.Contact, failed.Contact)
	assert.Equal(t, s.Extras, failed.Extras)
}

func TestNetworkFailureKeepsDraft(t *testing.T) {
	ctx := testContext()
	s := validDraft(t, ctx)
	inFlight := reduceAll(t, ctx, s, Submit{})

	failed := reduceAll(t, ctx, inFlight, SubmitFailed{Stale: false})
	assert.Equal(t, s.Step, failed.Step)
	assert.False(t, failed.Submitting)

	// And the user can immediately try again.
	again, err := Reduce(ctx, failed, Submit{})
	assert.NoError(t, err)
	assert.True(t, again.Submitting)
}

func TestQuoteBeforeDateSelection(t *testing.T) {
	ctx := testContext()
	s := New("s", 1)
	_, err := Quote(ctx, s)
	assert.ErrorIs(t, err, ErrDateInvalid)
}
