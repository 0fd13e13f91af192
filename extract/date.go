package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// dateLayout is the wire format for reservation dates.
const dateLayout = "2006-01-02"

// Ordered so classification and parsing are deterministic; map iteration
// order would not be.
var weekdayNames = []struct {
	name string
	day  time.Weekday
}{
	{"monday", time.Monday},
	{"tuesday", time.Tuesday},
	{"wednesday", time.Wednesday},
	{"thursday", time.Thursday},
	{"friday", time.Friday},
	{"saturday", time.Saturday},
	{"sunday", time.Sunday},
}

// Full month names first so "march" wins over "mar".
var monthNames = []struct {
	name  string
	month time.Month
}{
	{"january", time.January},
	{"february", time.February},
	{"march", time.March},
	{"april", time.April},
	{"may", time.May},
	{"june", time.June},
	{"july", time.July},
	{"august", time.August},
	{"september", time.September},
	{"october", time.October},
	{"november", time.November},
	{"december", time.December},
	{"jan", time.January},
	{"feb", time.February},
	{"mar", time.March},
	{"apr", time.April},
	{"jun", time.June},
	{"jul", time.July},
	{"aug", time.August},
	{"sep", time.September},
	{"oct", time.October},
	{"nov", time.November},
	{"dec", time.December},
}

var dayNumberRe = regexp.MustCompile(`(\d{1,2})`)

// ParseDate resolves a spoken date phrase into an ISO date relative to now.
// Rules are tried in order and the first match wins: today, tomorrow, a
// weekday name (next future occurrence, a further week out when qualified by
// "next"), a month name plus a day number (rolled to next year when already
// past), and finally today as the default.
func ParseDate(text string, now time.Time) string {
	lower := strings.ToLower(text)

	if strings.Contains(lower, "today") {
		return now.Format(dateLayout)
	}
	if strings.Contains(lower, "tomorrow") {
		return now.AddDate(0, 0, 1).Format(dateLayout)
	}

	for _, wd := range weekdayNames {
		if !strings.Contains(lower, wd.name) {
			continue
		}
		daysAhead := int(wd.day - now.Weekday())
		if daysAhead <= 0 {
			// Today and earlier this week mean next week.
			daysAhead += 7
		}
		if strings.Contains(lower, "next "+wd.name) {
			daysAhead += 7
		}
		return now.AddDate(0, 0, daysAhead).Format(dateLayout)
	}

	for _, mn := range monthNames {
		if !strings.Contains(lower, mn.name) {
			continue
		}
		match := dayNumberRe.FindStringSubmatch(lower)
		if match == nil {
			continue
		}
		day, _ := strconv.Atoi(match[1])
		candidate := time.Date(now.Year(), mn.month, day, 0, 0, 0, 0, now.Location())
		if candidate.Month() != mn.month || candidate.Day() != day {
			// The day does not exist in that month, e.g. February 30th.
			continue
		}
		if candidate.Before(now) {
			candidate = candidate.AddDate(1, 0, 0)
		}
		return candidate.Format(dateLayout)
	}

	return now.Format(dateLayout)
}

// HasDateSignal reports whether the lowercased utterance carries a date cue:
// relative-day words, a weekday name, or a dash/slash as in "2025-09-10".
func HasDateSignal(lower string) bool {
	for _, word := range []string{"tomorrow", "today", "next"} {
		if strings.Contains(lower, word) {
			return true
		}
	}
	for _, wd := range weekdayNames {
		if strings.Contains(lower, wd.name) {
			return true
		}
	}
	return strings.Contains(lower, "-") || strings.Contains(lower, "/")
}
