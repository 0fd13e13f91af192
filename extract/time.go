package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// defaultTime is the dinner-hour fallback used whenever nothing parses.
const defaultTime = "19:00"

var (
	clockRe  = regexp.MustCompile(`(\d{1,4})(?::(\d{2}))?\s*(a\.?m\.?|p\.?m\.?|am|pm)?`)
	oclockRe = regexp.MustCompile(`(\d{1,2})\s*o'?clock`)
)

var numberWords = []struct {
	word string
	num  int
}{
	{"one", 1}, {"two", 2}, {"three", 3}, {"four", 4}, {"five", 5}, {"six", 6},
	{"seven", 7}, {"eight", 8}, {"nine", 9}, {"ten", 10}, {"eleven", 11}, {"twelve", 12},
}

// Literal phrasings kept from the step-by-step flow; checked late so the
// generic rules above take precedence.
var literalTimes = []struct {
	phrase string
	value  string
}{
	{"3:00", "15:00"}, {"3pm", "15:00"}, {"3 pm", "15:00"},
	{"6:00", "18:00"}, {"6pm", "18:00"}, {"6 pm", "18:00"},
	{"7:30", "19:30"}, {"7:30pm", "19:30"},
	{"7:00", "19:00"}, {"7pm", "19:00"}, {"7 pm", "19:00"},
}

// ParseTime converts a spoken time phrase to zero-padded 24-hour "HH:MM".
// Rule order: named periods of the day, an explicit clock time with optional
// am/pm, "o'clock" expressions, spelled-out hour words, literal phrasings,
// and finally the dinner default. When am/pm is absent, hours 1-6 are read
// as afternoon/evening and 7-12 as morning/noon. That heuristic misreads
// some phrasings but is kept for compatibility with existing callers.
func ParseTime(text string) string {
	lower := strings.ToLower(strings.TrimSpace(text))

	switch {
	case strings.Contains(lower, "morning") &&
		!strings.Contains(lower, "evening") &&
		!strings.Contains(lower, "afternoon") &&
		!strings.Contains(lower, "night"):
		return "11:00"
	case strings.Contains(lower, "afternoon"):
		return "15:00"
	case strings.Contains(lower, "evening") || strings.Contains(lower, "night"):
		return "19:00"
	case strings.Contains(lower, "lunch"):
		return "13:00"
	case strings.Contains(lower, "dinner"):
		return "19:00"
	case strings.Contains(lower, "breakfast"):
		return "09:00"
	}

	if match := clockRe.FindStringSubmatch(lower); match != nil {
		rawHour := match[1]
		minute := match[2]
		ampm := match[3]

		var hour int
		if len(rawHour) >= 3 && minute == "" {
			// "730" means 7:30 and "1130" means 11:30.
			split := 1
			if len(rawHour) == 4 {
				split = 2
			}
			hour, _ = strconv.Atoi(rawHour[:split])
			minute = rawHour[split:]
		} else {
			hour, _ = strconv.Atoi(rawHour)
		}
		if minute == "" {
			minute = "00"
		}

		if m, err := strconv.Atoi(minute); err == nil && m <= 59 && hour >= 1 && hour <= 12 {
			switch {
			case strings.HasPrefix(ampm, "a"):
				if hour == 12 {
					hour = 0
				}
			case strings.HasPrefix(ampm, "p"):
				if hour != 12 {
					hour += 12
				}
			default:
				if hour >= 1 && hour <= 6 {
					hour += 12
				}
			}
			return fmt.Sprintf("%02d:%s", hour, minute)
		}
	}

	if match := oclockRe.FindStringSubmatch(lower); match != nil {
		hour, _ := strconv.Atoi(match[1])
		if hour >= 1 && hour <= 12 {
			if hour <= 6 {
				hour += 12
			}
			return fmt.Sprintf("%02d:00", hour)
		}
	}

	for _, nw := range numberWords {
		if !strings.Contains(lower, nw.word) {
			continue
		}
		hour := nw.num
		switch {
		case strings.Contains(lower, "pm") || strings.Contains(lower, "p.m.") ||
			strings.Contains(lower, "evening") || strings.Contains(lower, "night"):
			if hour != 12 {
				hour += 12
			}
		case strings.Contains(lower, "am") || strings.Contains(lower, "a.m.") ||
			strings.Contains(lower, "morning"):
			if hour == 12 {
				hour = 0
			}
		default:
			if hour <= 6 {
				hour += 12
			}
		}
		return fmt.Sprintf("%02d:00", hour)
	}

	for _, lt := range literalTimes {
		if strings.Contains(lower, lt.phrase) {
			return lt.value
		}
	}

	return defaultTime
}

// Cues the classifier treats as a time being offered. "time" in the
// exclusion list keeps "what time do you open" out of slot filling.
var (
	timeIndicators   = []string{"at", "o'clock", "pm", "am", "evening", "afternoon", "morning", "night"}
	hourInquiryWords = []string{"what", "your", "opening", "closing", "hours", "time"}
)

// HasTimeToken reports whether the text carries a concrete time value
// that ParseTime can act on. This is stricter than HasTimeSignal, which
// also accepts bare prepositions like "at"; those loose cues classify an
// utterance but would pull the dinner default out of sentences such as
// "my name is Sam".
func HasTimeToken(lower string) bool {
	if containsDigit(lower) || strings.Contains(lower, "o'clock") || strings.Contains(lower, "oclock") {
		return true
	}
	for _, period := range []string{"morning", "afternoon", "evening", "night", "lunch", "dinner", "breakfast"} {
		if strings.Contains(lower, period) {
			return true
		}
	}
	for _, nw := range numberWords {
		if strings.Contains(lower, nw.word) {
			return true
		}
	}
	return false
}

// HasTimeSignal reports whether the lowercased utterance offers a time
// rather than asking about opening hours.
func HasTimeSignal(lower string) bool {
	found := false
	for _, ind := range timeIndicators {
		if strings.Contains(lower, ind) {
			found = true
			break
		}
	}
	if !found {
		return false
	}
	for _, w := range hourInquiryWords {
		if strings.Contains(lower, w) {
			return false
		}
	}
	return true
}
