package extract

import (
	"context"
	"strings"
	"time"
)

// Info carries whichever reservation fields an utterance actually mentioned.
// Empty fields were not present; callers merge non-empty values only.
type Info struct {
	Name string `json:"name"`
	Date string `json:"date"`
	Time string `json:"time"`
}

// Extractor pulls name/date/time out of a whole utterance in one pass, so a
// caller who says "I'm James, tomorrow at 7pm" fills several slots at once.
type Extractor interface {
	Extract(ctx context.Context, text string, now time.Time) Info
}

// RuleExtractor is the deterministic default. A field is only reported when
// the utterance carries the matching cue; the individual parsers' defaults
// would otherwise stamp today/19:00 onto every sentence.
type RuleExtractor struct{}

func (RuleExtractor) Extract(_ context.Context, text string, now time.Time) Info {
	var info Info
	lower := strings.ToLower(strings.TrimSpace(text))
	if HasNamePhrase(lower) {
		info.Name = ParseName(text)
	}
	if HasDateSignal(lower) {
		info.Date = ParseDate(text, now)
	}
	if HasTimeSignal(lower) && HasTimeToken(lower) {
		info.Time = ParseTime(text)
	}
	return info
}
