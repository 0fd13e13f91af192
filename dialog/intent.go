package dialog

import (
	"strings"
	"unicode"

	"github.com/tablevox/tablevox/call"
	"github.com/tablevox/tablevox/extract"
)

// Intent labels what the caller wants from one utterance.
type Intent string

const (
	IntentEndConversation Intent = "end_conversation"
	IntentReservation     Intent = "reservation"
	IntentProvidingName   Intent = "providing_name"
	IntentProvidingDate   Intent = "providing_date"
	IntentProvidingTime   Intent = "providing_time"
	IntentProvidingParty  Intent = "providing_party_size"
	IntentProvidingPhone  Intent = "providing_phone"
	IntentProvidingEmail  Intent = "providing_email"
	IntentHours           Intent = "hours"
	IntentMenu            Intent = "menu"
	IntentHalal           Intent = "halal"
	IntentVegan           Intent = "vegan"
	IntentParking         Intent = "parking"
	IntentLocation        Intent = "location"
	IntentContact         Intent = "contact"
	IntentPrice           Intent = "price"
	IntentGeneral         Intent = "general"
)

// Providing reports whether the intent carries reservation slot data.
func (i Intent) Providing() bool {
	return strings.HasPrefix(string(i), "providing_")
}

var endPhrases = []string{
	"that's all", "no more", "nothing else", "that's it", "no thanks",
	"i'm good", "that's fine", "no more questions", "that's everything",
}

var topicBuckets = []struct {
	intent Intent
	words  []string
}{
	{IntentReservation, []string{"book", "reserve", "reservation", "table", "booking", "make a reservation"}},
	{IntentHours, []string{"hours", "open", "close", "time", "operating", "when"}},
	{IntentMenu, []string{"menu", "food", "dish", "eat", "special", "recommend", "what do you have"}},
	{IntentHalal, []string{"halal"}},
	{IntentVegan, []string{"vegan", "vegetarian", "plant-based"}},
	{IntentParking, []string{"parking", "car", "drive", "park"}},
	{IntentLocation, []string{"location", "address", "where", "find", "directions"}},
	{IntentContact, []string{"phone", "call", "contact", "number", "reach you"}},
	{IntentPrice, []string{"price", "cost", "expensive", "cheap", "how much"}},
}

func containsAny(lower string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

func containsDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// inReservation reports whether the call is mid reservation, so slot
// provision rules apply before topic matching.
func inReservation(st call.State) bool {
	return Intent(st.Intent) == IntentReservation || Intent(st.Intent).Providing()
}

// Classify maps an utterance to an intent. It is a pure function of the
// text and the given call state, so the same input always yields the same
// label. Rules run in a fixed order and the first match wins.
func Classify(text string, st call.State) Intent {
	lower := strings.ToLower(text)

	if containsAny(lower, endPhrases) {
		return IntentEndConversation
	}

	if inReservation(st) {
		if extract.HasNamePhrase(lower) {
			return IntentProvidingName
		}
		if extract.HasDateSignal(lower) {
			return IntentProvidingDate
		}
		if extract.HasTimeSignal(lower) {
			return IntentProvidingTime
		}

		// Positional rules: a bare answer right after a slot prompt is
		// taken as that slot even without an explicit signal. These run
		// before the party size check so digits spoken at the phone
		// prompt land in the phone slot.
		if st.Phase == call.PhaseGathering {
			if missing := st.Slots.Missing(); len(missing) > 0 {
				switch missing[0] {
				case call.FieldName:
					words := strings.Fields(strings.TrimSpace(lower))
					if len(words) == 1 && isAlphaWord(words[0]) {
						return IntentProvidingName
					}
				case call.FieldTime:
					if containsAny(lower, []string{"p.m.", "a.m.", "evening", "afternoon", "morning", "night"}) || containsDigit(lower) {
						return IntentProvidingTime
					}
				case call.FieldPartySize:
					if containsDigit(lower) {
						return IntentProvidingParty
					}
				case call.FieldPhone:
					if containsDigit(lower) {
						return IntentProvidingPhone
					}
				case call.FieldEmail:
					if strings.Contains(lower, "@") && strings.Contains(lower, ".") {
						return IntentProvidingEmail
					}
				}
			}
		}

		if extract.HasPartySizeSignal(lower) {
			return IntentProvidingParty
		}
		if extract.HasPhoneSignal(lower) {
			return IntentProvidingPhone
		}
		if extract.HasEmailSignal(lower) {
			return IntentProvidingEmail
		}
	}

	for _, bucket := range topicBuckets {
		if containsAny(lower, bucket.words) {
			return bucket.intent
		}
	}
	return IntentGeneral
}

func isAlphaWord(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
