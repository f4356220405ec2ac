package wizard

import (
	"errors"
	"time"

	"nxtours/src/availability"
	"nxtours/src/models"
	"nxtours/src/pricing"
	"nxtours/src/types"
)

// Checkout steps. Steps 3 and 4 are optional but still sequential.
const (
	StepTravelers    = 1
	StepDate         = 2
	StepExtras       = 3
	StepTravelExtras = 4
	StepContact      = 5
	StepSubmitted    = 6
)

var (
	ErrTravelersInvalid   = errors.New("traveler count must be at least 1 and the primary traveler needs a first and last name")
	ErrDateInvalid        = errors.New("a bookable departure date must be selected")
	ErrContactInvalid     = errors.New("contact email and phone are required")
	ErrUnknownExtra       = models.ErrUnknownExtra
	ErrStepNotCompleted   = errors.New("cannot jump forward to a step that has not been reached")
	ErrSubmissionInFlight = errors.New("a submission is already in flight")
	ErrAlreadySubmitted   = errors.New("draft has already been submitted")
)

// State is the in-progress reservation draft for one checkout session. It is
// only ever changed by Reduce; totals are derived from it through Quote, never
// stored on it.
type State struct {
	SessionID       string                   `json:"session_id"`
	TourID          uint                     `json:"tour_id"`
	Step            int                      `json:"step"`
	TravelerCount   uint                     `json:"traveler_count"`
	PrimaryTraveler types.Traveler           `json:"primary_traveler"`
	SelectedDateID  uint                     `json:"selected_date_id,omitempty"`
	Extras          []types.ExtraSelection   `json:"extras,omitempty"`
	Upgrade         *types.ExtraSelection    `json:"accommodation_upgrade,omitempty"`
	Contact         types.ContactInfo        `json:"contact_info"`
	Submitting      bool                     `json:"submitting"`
	Reference       string                   `json:"booking_reference,omitempty"`
}

// Context carries the read-only collaborators a reduction needs: the tour the
// draft belongs to (with departures and extras preloaded) and the clock.
type Context struct {
	Tour models.Tour
	Now  time.Time
}

// Event is one user or network input applied to a draft.
type Event interface{ isWizardEvent() }

type SetTravelers struct {
	Count   uint
	Primary types.Traveler
}
type SelectDate struct{ DateID uint }
type SetExtra struct{ Selection types.ExtraSelection }
type SetUpgrade struct{ Selection *types.ExtraSelection }
type SetContact struct{ Contact types.ContactInfo }
type Advance struct{}
type Retreat struct{}
type EditStep struct{ Step int }
type Submit struct{}
type SubmitSucceeded struct{ Reference string }
type SubmitFailed struct{ Stale bool }

func (SetTravelers) isWizardEvent()    {}
func (SelectDate) isWizardEvent()      {}
func (SetExtra) isWizardEvent()        {}
func (SetUpgrade) isWizardEvent()      {}
func (SetContact) isWizardEvent()      {}
func (Advance) isWizardEvent()         {}
func (Retreat) isWizardEvent()         {}
func (EditStep) isWizardEvent()        {}
func (Submit) isWizardEvent()          {}
func (SubmitSucceeded) isWizardEvent() {}
func (SubmitFailed) isWizardEvent()    {}

// New starts a draft at the travelers step with a single traveler.
func New(sessionID string, tourID uint) State {
	return State{
		SessionID:     sessionID,
		TourID:        tourID,
		Step:          StepTravelers,
		TravelerCount: 1,
	}
}

// Reduce applies one event to the draft and returns the next state. On error
// the returned state is the input state unchanged; a rejected event never
// discards draft data.
func Reduce(ctx Context, s State, ev Event) (State, error) {
	switch e := ev.(type) {
	case SetTravelers:
		if err := guardMutable(s); err != nil {
			return s, err
		}
		if e.Count < 1 {
			return s, ErrTravelersInvalid
		}
		s.TravelerCount = e.Count
		s.PrimaryTraveler = e.Primary
		clampExtras(&s)
		return s, nil

	case SelectDate:
		if err := guardMutable(s); err != nil {
			return s, err
		}
		if _, err := availability.Resolve(ctx.Tour, e.DateID, ctx.Now); err != nil {
			return s, err
		}
		s.SelectedDateID = e.DateID
		return s, nil

	case SetExtra:
		if err := guardMutable(s); err != nil {
			return s, err
		}
		sel, err := normalizeSelection(ctx.Tour, e.Selection, s.TravelerCount)
		if err != nil {
			return s, err
		}
		s.Extras = upsertExtra(s.Extras, sel)
		return s, nil

	case SetUpgrade:
		if err := guardMutable(s); err != nil {
			return s, err
		}
		if e.Selection == nil {
			s.Upgrade = nil
			return s, nil
		}
		picked := *e.Selection
		if picked.TravelerCount == 0 {
			// An upgrade with no explicit count covers the whole party.
			picked.TravelerCount = s.TravelerCount
		}
		sel, err := normalizeSelection(ctx.Tour, picked, s.TravelerCount)
		if err != nil {
			return s, err
		}
		s.Upgrade = &sel
		return s, nil

	case SetContact:
		if err := guardMutable(s); err != nil {
			return s, err
		}
		s.Contact = e.Contact
		return s, nil

	case Advance:
		if err := guardMutable(s); err != nil {
			return s, err
		}
		if s.Step >= StepContact {
			// Leaving the contact step is a submission, not an advance.
			return s, ErrStepNotCompleted
		}
		if err := ValidateStep(ctx, s, s.Step); err != nil {
			return s, err
		}
		s.Step++
		return s, nil

	case Retreat:
		if err := guardMutable(s); err != nil {
			return s, err
		}
		if s.Step > StepTravelers {
			s.Step--
		}
		return s, nil

	case EditStep:
		if err := guardMutable(s); err != nil {
			return s, err
		}
		if e.Step < StepTravelers || e.Step > s.Step {
			return s, ErrStepNotCompleted
		}
		s.Step = e.Step
		return s, nil

	case Submit:
		if s.Submitting {
			return s, ErrSubmissionInFlight
		}
		if s.Step == StepSubmitted {
			return s, ErrAlreadySubmitted
		}
		if s.Step != StepContact {
			return s, ErrStepNotCompleted
		}
		// Server-side resubmission of the whole draft: every gated step must
		// hold at once.
		for _, step := range []int{StepTravelers, StepDate, StepContact} {
			if err := ValidateStep(ctx, s, step); err != nil {
				return s, err
			}
		}
		s.Submitting = true
		return s, nil

	case SubmitSucceeded:
		s.Submitting = false
		s.Step = StepSubmitted
		s.Reference = e.Reference
		return s, nil

	case SubmitFailed:
		s.Submitting = false
		if e.Stale {
			// The chosen departure sold out or was deactivated under us.
			// Send the user back to the date step with everything else kept.
			s.Step = StepDate
		}
		return s, nil
	}
	return s, errors.New("unknown wizard event")
}

// ValidateStep checks one step's gate. Steps 3 and 4 are always valid.
func ValidateStep(ctx Context, s State, step int) error {
	switch step {
	case StepTravelers:
		if s.TravelerCount < 1 || s.PrimaryTraveler.FirstName == "" || s.PrimaryTraveler.LastName == "" {
			return ErrTravelersInvalid
		}
	case StepDate:
		if s.SelectedDateID == 0 {
			return ErrDateInvalid
		}
		if _, err := availability.Resolve(ctx.Tour, s.SelectedDateID, ctx.Now); err != nil {
			return err
		}
	case StepContact:
		if s.Contact.Email == "" || s.Contact.Phone == "" {
			return ErrContactInvalid
		}
	}
	return nil
}

// Quote derives the running price breakdown for the draft. Before a date is
// selected there is nothing to price.
func Quote(ctx Context, s State) (types.PriceBreakdown, error) {
	if s.SelectedDateID == 0 {
		return types.PriceBreakdown{Currency: ctx.Tour.Currency}, ErrDateInvalid
	}
	date, err := availability.Resolve(ctx.Tour, s.SelectedDateID, ctx.Now)
	if err != nil {
		return types.PriceBreakdown{Currency: ctx.Tour.Currency}, err
	}
	return pricing.NewBreakdown(ctx.Tour, *date, s.TravelerCount, s.AllExtras()), nil
}

// AllExtras is the flat selection list the pricing engine and the recorder
// consume: activities plus the accommodation upgrade when present.
func (s State) AllExtras() []types.ExtraSelection {
	extras := make([]types.ExtraSelection, 0, len(s.Extras)+1)
	extras = append(extras, s.Extras...)
	if s.Upgrade != nil {
		extras = append(extras, *s.Upgrade)
	}
	return extras
}

func guardMutable(s State) error {
	if s.Submitting {
		return ErrSubmissionInFlight
	}
	if s.Step == StepSubmitted {
		return ErrAlreadySubmitted
	}
	return nil
}

// clampExtras re-clamps every selection to the new traveler count and drops
// the ones that clamp to zero, so the running total always respects the
// per-selection bound. Builds a fresh slice: the input state's backing array
// is shared with the caller and must not be written through.
func clampExtras(s *State) {
	kept := make([]types.ExtraSelection, 0, len(s.Extras))
	for _, e := range s.Extras {
		if e.TravelerCount > s.TravelerCount {
			e.TravelerCount = s.TravelerCount
		}
		if e.TravelerCount > 0 {
			kept = append(kept, e)
		}
	}
	s.Extras = kept
	if s.Upgrade != nil {
		up := *s.Upgrade
		if up.TravelerCount > s.TravelerCount {
			up.TravelerCount = s.TravelerCount
		}
		if up.TravelerCount == 0 {
			s.Upgrade = nil
			return
		}
		s.Upgrade = &up
	}
}

// normalizeSelection resolves the catalog extra behind the selection so the
// draft always carries the server's price, then clamps the count.
func normalizeSelection(tour models.Tour, sel types.ExtraSelection, travelerCount uint) (types.ExtraSelection, error) {
	return models.ResolveExtraSelection(tour, sel, travelerCount)
}

// upsertExtra replaces the selection with the same ref id, removes it when the
// count clamps to zero, and appends it otherwise.
func upsertExtra(extras []types.ExtraSelection, sel types.ExtraSelection) []types.ExtraSelection {
	out := make([]types.ExtraSelection, 0, len(extras)+1)
	for _, e := range extras {
		if e.RefID != sel.RefID {
			out = append(out, e)
		}
	}
	if sel.TravelerCount > 0 {
		out = append(out, sel)
	}
	return out
}
