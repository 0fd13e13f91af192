package dialog

import (
	"fmt"

	"github.com/tablevox/tablevox/call"
	"github.com/tablevox/tablevox/config"
)

// Responder builds every line the agent says, from a restaurant profile.
type Responder struct {
	profile config.Profile
}

// NewResponder creates a responder for the given restaurant.
func NewResponder(profile config.Profile) *Responder {
	return &Responder{profile: profile}
}

// Greeting opens the call.
func (r *Responder) Greeting() string {
	return fmt.Sprintf("Hello! Welcome to %s. How can I help you today?", r.profile.Name)
}

var slotPrompts = map[call.Field]string{
	call.FieldName:      "May I have your name for the reservation?",
	call.FieldDate:      "What date would you like to make your reservation for?",
	call.FieldTime:      "What time would you prefer?",
	call.FieldPartySize: "How many people will be in your party?",
	call.FieldPhone:     "May I have your phone number for confirmation?",
	call.FieldEmail:     "May I have your email address for confirmation?",
}

// SlotPrompt asks for one missing reservation field.
func (r *Responder) SlotPrompt(f call.Field) string {
	if prompt, ok := slotPrompts[f]; ok {
		return prompt
	}
	return r.Clarification()
}

// NextPrompt asks for the first missing slot, or hands off to
// confirmation when nothing is missing.
func (r *Responder) NextPrompt(slots call.Slots) string {
	if missing := slots.Missing(); len(missing) > 0 {
		return r.SlotPrompt(missing[0])
	}
	return "Thank you for that information. Let me confirm the details with you."
}

// Confirmation reads the reservation back and asks for a keypad answer.
func (r *Responder) Confirmation(slots call.Slots) string {
	name := orDefault(slots.Name, "customer")
	date := orDefault(slots.Date, "the date")
	timeOfDay := orDefault(slots.Time, "the time")
	return fmt.Sprintf("Let me confirm your reservation. %s, you'd like to book for %s at %s. Is that correct? Press 1 for yes or 2 for no.", name, date, timeOfDay)
}

// Completion announces the saved reservation.
func (r *Responder) Completion() string {
	return fmt.Sprintf("Excellent! Your reservation has been confirmed. We look forward to serving you at %s!", r.profile.Name)
}

// Correction restarts information gathering after a rejected confirmation.
func (r *Responder) Correction() string {
	return "Let's start over. Could you please provide your information once more?"
}

// Clarification asks the caller to repeat themselves.
func (r *Responder) Clarification() string {
	return "I'm sorry, I didn't catch that clearly. Could you please repeat that for me?"
}

// SaveFailure apologises when the reservation could not be stored.
func (r *Responder) SaveFailure() string {
	return "There was an error saving your reservation. Please try again."
}

// Goodbye ends the call.
func (r *Responder) Goodbye() string {
	return fmt.Sprintf("Thank you for calling %s. Have a wonderful day!", r.profile.Name)
}

// ReservationStart acknowledges a reservation request and asks for the
// first slot.
func (r *Responder) ReservationStart() string {
	return "I'd be happy to help you make a reservation. May I have your name please?"
}

const anythingElse = " Is there anything else I can help you with?"

// TopicAnswer answers a question about the restaurant. Every topic answer
// ends with an offer of further help.
func (r *Responder) TopicAnswer(intent Intent) string {
	var answer string
	switch intent {
	case IntentHours:
		answer = fmt.Sprintf("We're open from %s.", r.profile.OperatingHours)
	case IntentMenu:
		answer = fmt.Sprintf("We specialize in %s Our prices range from %s per person.", r.profile.Specialties, r.profile.PriceRange)
	case IntentHalal:
		answer = r.profile.HalalOptions
	case IntentVegan:
		answer = r.profile.VeganOptions
	case IntentParking:
		answer = r.profile.Parking
	case IntentLocation:
		answer = fmt.Sprintf("We're located in %s.", r.profile.Location)
	case IntentContact:
		answer = fmt.Sprintf("You can reach us at %s.", r.profile.Phone)
	case IntentPrice:
		answer = fmt.Sprintf("Our prices range from %s per person.", r.profile.PriceRange)
	default:
		answer = r.generalHelp()
	}
	return answer + anythingElse
}

func (r *Responder) generalHelp() string {
	return fmt.Sprintf("I can help you with reservations, menu information, operating hours, or any other questions about %s.", r.profile.Name)
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
