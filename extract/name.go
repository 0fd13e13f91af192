package extract

import "strings"

// Filler tokens stripped before name extraction.
var fillerWords = []string{"uh", "um", "ah", "er", "like", "so", "actually", "basically"}

// Introduction patterns, tried in order. The order matters: "name is" is a
// suffix of "my name is" and must come after it.
var namePrefixes = []string{"my name is", "i'm", "i am", "name is", "call me"}

var nameStopWords = map[string]bool{
	"is": true, "am": true, "the": true, "a": true, "an": true,
	"and": true, "or": true, "but": true, "please": true, "thank": true, "you": true,
}

const trailingPunct = ".,!?;:"

// ParseName extracts a customer name from free-form speech. It never fails:
// when no introduction pattern matches it falls back to stop-word filtering
// and finally to the cleaned raw text.
func ParseName(text string) string {
	text = stripFillers(strings.TrimSpace(text))
	lower := strings.ToLower(text)

	for _, prefix := range namePrefixes {
		idx := strings.Index(lower, prefix)
		if idx < 0 {
			continue
		}
		rest := strings.TrimSpace(lower[idx+len(prefix):])
		rest = strings.TrimRight(rest, trailingPunct)
		words := strings.Fields(rest)
		if len(words) == 0 {
			continue
		}
		// First name plus last name at most.
		if len(words) > 2 {
			words = words[:2]
		}
		return titleCase(strings.Join(words, " "))
	}

	var kept []string
	for _, word := range strings.Fields(text) {
		if nameStopWords[strings.ToLower(word)] || !isAlpha(word) {
			continue
		}
		kept = append(kept, word)
		if len(kept) == 2 {
			break
		}
	}
	if len(kept) > 0 {
		return titleCase(strings.Join(kept, " "))
	}

	return titleCase(strings.TrimRight(strings.TrimSpace(text), trailingPunct))
}

// HasNamePhrase reports whether the utterance contains an explicit name
// introduction. The classifier uses this to recognize a providing-name turn.
func HasNamePhrase(lower string) bool {
	for _, prefix := range namePrefixes {
		if strings.Contains(lower, prefix) {
			return true
		}
	}
	return false
}

func stripFillers(text string) string {
	for _, filler := range fillerWords {
		lower := strings.ToLower(text)
		if strings.HasPrefix(lower, filler+" ") {
			text = text[len(filler)+1:]
		}
		text = strings.ReplaceAll(text, " "+filler+" ", " ")
	}
	return text
}

func isAlpha(word string) bool {
	if word == "" {
		return false
	}
	for _, r := range word {
		if !(r >= 'a' && r <= 'z') && !(r >= 'A' && r <= 'Z') {
			return false
		}
	}
	return true
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		runes := []rune(strings.ToLower(word))
		if len(runes) > 0 && runes[0] >= 'a' && runes[0] <= 'z' {
			runes[0] = runes[0] - 'a' + 'A'
		}
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
