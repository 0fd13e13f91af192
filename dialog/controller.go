package dialog

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/tablevox/tablevox/call"
	"github.com/tablevox/tablevox/extract"
)

// Reservation is the record handed to the persistence layer once the
// caller confirms.
type Reservation struct {
	CallID       string
	CallerNumber string
	Name         string
	Date         string
	Time         string
	PartySize    string
	Phone        string
	Email        string
}

// Persister stores a confirmed reservation. Saving the same reservation
// twice must not create a duplicate.
type Persister interface {
	PersistReservation(ctx context.Context, res Reservation) error
}

// Controller drives the reservation dialogue. Each Handle method takes
// one telephony event and returns the directive for the next call leg.
type Controller struct {
	registry  *call.Registry
	responder *Responder
	extractor extract.Extractor
	persister Persister

	gatherAction  string
	confirmAction string

	now func() time.Time
}

// NewController wires the dialogue engine together. gatherAction and
// confirmAction are the callback paths speech and confirmation input are
// posted to.
func NewController(registry *call.Registry, responder *Responder, extractor extract.Extractor, persister Persister, gatherAction, confirmAction string) *Controller {
	return &Controller{
		registry:      registry,
		responder:     responder,
		extractor:     extractor,
		persister:     persister,
		gatherAction:  gatherAction,
		confirmAction: confirmAction,
		now:           time.Now,
	}
}

// HandleIncoming answers a new call with the greeting and starts
// gathering speech.
func (c *Controller) HandleIncoming(callID, callerNumber string) Directive {
	c.registry.CreateOrGet(callID, callerNumber)
	c.registry.MarkGreetingPlayed(callID)
	return GatherSpeechAt(c.responder.Greeting(), c.gatherAction)
}

// HandleSpeech processes one gathered utterance and decides the next leg.
func (c *Controller) HandleSpeech(ctx context.Context, callID, speech string) Directive {
	speech = strings.TrimSpace(speech)
	if speech == "" {
		return GatherSpeechAt(c.responder.Clarification(), c.gatherAction)
	}

	st, ok := c.registry.Get(callID)
	if !ok {
		st = c.registry.CreateOrGet(callID, "")
	}
	if st.Status != call.StatusActive {
		return Hangup(c.responder.Goodbye())
	}

	intent := Classify(speech, st)
	log.Printf("🗣️ Call %s said %q, intent %s", callID, speech, intent)

	var directive Directive
	switch {
	case intent == IntentEndConversation:
		directive = Hangup(c.responder.Goodbye())
		c.registry.ApplyUtterance(callID, speech, string(intent), nil)
		c.registry.RecordTurn(callID, call.Turn{Utterance: speech, Intent: string(intent), Response: directive.Text})
		c.registry.UpdateStatus(callID, call.StatusCompleted, 0)
		return directive

	case intent == IntentReservation:
		st, _ = c.registry.ApplyUtterance(callID, speech, string(intent), c.extractSlots(ctx, intent, speech))
		if st.Slots.Complete() {
			st, _ = c.registry.BeginConfirmation(callID)
			directive = GatherDigitsAt(c.responder.Confirmation(st.Slots), c.confirmAction)
		} else if st.Slots.Name == "" {
			directive = GatherSpeechAt(c.responder.ReservationStart(), c.gatherAction)
		} else {
			directive = GatherSpeechAt(c.responder.NextPrompt(st.Slots), c.gatherAction)
		}

	case intent.Providing():
		st, _ = c.registry.ApplyUtterance(callID, speech, string(intent), c.extractSlots(ctx, intent, speech))
		if st.Slots.Complete() {
			st, _ = c.registry.BeginConfirmation(callID)
			directive = GatherDigitsAt(c.responder.Confirmation(st.Slots), c.confirmAction)
		} else {
			directive = GatherSpeechAt(c.responder.NextPrompt(st.Slots), c.gatherAction)
		}

	default:
		c.registry.ApplyUtterance(callID, speech, string(intent), nil)
		directive = GatherSpeechAt(c.responder.TopicAnswer(intent), c.gatherAction)
	}

	c.registry.RecordTurn(callID, call.Turn{Utterance: speech, Intent: string(intent), Response: directive.Text})
	return directive
}

// HandleConfirmation processes the caller's answer to the confirmation
// prompt. A spoken yes or no is normalised to the matching digit.
func (c *Controller) HandleConfirmation(ctx context.Context, callID, digits, speech string) Directive {
	st, ok := c.registry.Get(callID)
	if !ok {
		return Hangup(c.responder.Clarification())
	}
	if st.Status != call.StatusActive {
		return Hangup(c.responder.Goodbye())
	}

	if speech != "" {
		normalized := strings.ToLower(strings.TrimSpace(speech))
		if containsAny(normalized, []string{"yes", "yeah", "yep"}) {
			digits = "1"
		} else if containsAny(normalized, []string{"no", "nope"}) {
			digits = "2"
		}
	}

	switch digits {
	case "1":
		if st.Phase != call.PhaseConfirming || !st.Slots.Complete() {
			return GatherSpeechAt(c.responder.Clarification(), c.gatherAction)
		}
		res := Reservation{
			CallID:       st.ID,
			CallerNumber: st.CallerNumber,
			Name:         st.Slots.Name,
			Date:         st.Slots.Date,
			Time:         st.Slots.Time,
			PartySize:    st.Slots.PartySize,
			Phone:        st.Slots.Phone,
			Email:        st.Slots.Email,
		}
		if err := c.persister.PersistReservation(ctx, res); err != nil {
			log.Printf("❌ Failed to save reservation for call %s: %v", callID, err)
			return GatherDigitsAt(c.responder.SaveFailure()+" "+c.responder.Confirmation(st.Slots), c.confirmAction)
		}
		call.CountReservationSaved()
		log.Printf("✅ Reservation saved for call %s: %s on %s at %s", callID, res.Name, res.Date, res.Time)
		c.registry.CompleteCall(callID)
		return Hangup(c.responder.Completion())

	case "2":
		c.registry.RejectConfirmation(callID)
		return GatherSpeechAt(c.responder.Correction(), c.gatherAction)

	default:
		if st.Phase == call.PhaseConfirming && st.Slots.Complete() {
			return GatherDigitsAt(c.responder.Confirmation(st.Slots), c.confirmAction)
		}
		return GatherSpeechAt(c.responder.Clarification(), c.gatherAction)
	}
}

// HandleStatus applies a telephony status callback. callDuration is the
// provider-reported duration in seconds, "" when not reported.
func (c *Controller) HandleStatus(callID, status, callDuration string) {
	var seconds float64
	if callDuration != "" {
		if v, err := strconv.ParseFloat(callDuration, 64); err == nil {
			seconds = v
		}
	}
	switch status {
	case "completed":
		c.registry.UpdateStatus(callID, call.StatusCompleted, seconds)
	case "failed", "busy", "no-answer", "canceled":
		c.registry.UpdateStatus(callID, call.StatusFailed, seconds)
	default:
		// ringing, in-progress and friends need no state change
	}
}

// extractSlots runs the extractors appropriate for the intent and returns
// only the fields the utterance actually carried.
func (c *Controller) extractSlots(ctx context.Context, intent Intent, speech string) map[call.Field]string {
	slots := make(map[call.Field]string)
	now := c.now()

	info := c.extractor.Extract(ctx, speech, now)
	if info.Name != "" {
		slots[call.FieldName] = info.Name
	}
	if info.Date != "" {
		slots[call.FieldDate] = info.Date
	}
	if info.Time != "" {
		slots[call.FieldTime] = info.Time
	}

	// Positional answers carry no signal phrase, so the intent decides
	// which parser to run on the raw text.
	switch intent {
	case IntentProvidingName:
		if slots[call.FieldName] == "" {
			slots[call.FieldName] = extract.ParseName(speech)
		}
	case IntentProvidingDate:
		if slots[call.FieldDate] == "" {
			slots[call.FieldDate] = extract.ParseDate(speech, now)
		}
	case IntentProvidingTime:
		if slots[call.FieldTime] == "" {
			slots[call.FieldTime] = extract.ParseTime(speech)
		}
	case IntentProvidingParty:
		slots[call.FieldPartySize] = strconv.Itoa(extract.ParsePartySize(speech))
	case IntentProvidingPhone:
		slots[call.FieldPhone] = extract.ParsePhone(speech)
	case IntentProvidingEmail:
		slots[call.FieldEmail] = extract.ParseEmail(speech)
	}
	return slots
}
