package extract

import (
	"regexp"
	"strconv"
	"strings"
)

const defaultPartySize = 2

var partySizeRe = regexp.MustCompile(`(\d{1,2})`)

// ParsePartySize pulls a head count out of an utterance like "four of us"
// or "a table for 6". Defaults to two when nothing matches.
func ParsePartySize(text string) int {
	lower := strings.ToLower(text)

	if match := partySizeRe.FindStringSubmatch(lower); match != nil {
		if n, err := strconv.Atoi(match[1]); err == nil && n >= 1 {
			return n
		}
	}
	for _, nw := range numberWords {
		if strings.Contains(lower, nw.word) {
			return nw.num
		}
	}
	return defaultPartySize
}

var phoneDigitsRe = regexp.MustCompile(`[\d+]`)

// ParsePhone keeps the digits (and a leading plus) of a spoken phone number.
// With no digits at all it returns the trimmed utterance so the slot still
// fills and the flow can move on.
func ParsePhone(text string) string {
	digits := strings.Join(phoneDigitsRe.FindAllString(text, -1), "")
	if digits != "" {
		return digits
	}
	return strings.TrimSpace(text)
}

// ParseEmail returns the first token containing an "@", lowercased and
// stripped of trailing punctuation, falling back to the trimmed utterance.
func ParseEmail(text string) string {
	for _, token := range strings.Fields(text) {
		if strings.Contains(token, "@") {
			return strings.ToLower(strings.Trim(token, trailingPunct))
		}
	}
	return strings.ToLower(strings.TrimSpace(text))
}

// HasPartySizeSignal reports whether the lowercased utterance looks like a
// head count rather than a question about one.
func HasPartySizeSignal(lower string) bool {
	found := containsDigit(lower)
	if !found {
		for _, w := range []string{"people", "person", "party", "group"} {
			if strings.Contains(lower, w) {
				found = true
				break
			}
		}
	}
	if !found {
		return false
	}
	for _, w := range []string{"how many", "what", "question"} {
		if strings.Contains(lower, w) {
			return false
		}
	}
	return true
}

// HasPhoneSignal reports digits offered alongside phone-number wording.
func HasPhoneSignal(lower string) bool {
	if !containsDigit(lower) {
		return false
	}
	return strings.Contains(lower, "phone") || strings.Contains(lower, "number") || strings.Contains(lower, "call")
}

// HasEmailSignal reports an email-shaped token.
func HasEmailSignal(lower string) bool {
	return strings.Contains(lower, "@") && strings.Contains(lower, ".")
}

func containsDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}
