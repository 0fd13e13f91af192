package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// 2025-01-01 is a Wednesday.
var refNow = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"today", "we'd like to come today", "2025-01-01"},
		{"tomorrow", "tomorrow at 7pm", "2025-01-02"},
		{"upcoming weekday", "friday evening", "2025-01-03"},
		{"same weekday rolls a week", "wednesday please", "2025-01-08"},
		{"next qualifier adds a week", "next friday", "2025-01-10"},
		{"sunday", "this sunday", "2025-01-05"},
		{"month and day", "September 10th, please", "2025-09-10"},
		{"abbreviated month", "sep 10", "2025-09-10"},
		{"past month rolls to next year", "jan 1 works for us", "2026-01-01"},
		{"unparseable defaults to today", "whenever works", "2025-01-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDate(tt.text, refNow))
		})
	}
}

func TestParseDateNeverBeforeReference(t *testing.T) {
	inputs := []string{"today", "tomorrow", "monday", "next saturday", "december 25", "march 3", "no date here"}
	for _, text := range inputs {
		got, err := time.Parse("2006-01-02", ParseDate(text, refNow))
		assert.NoError(t, err, text)
		assert.False(t, got.Before(refNow.Truncate(24*time.Hour)), "%s resolved to the past: %s", text, got)
	}
}

func TestParseDateInvalidDayFallsThrough(t *testing.T) {
	// February 30th does not exist; the rule set falls back to today.
	assert.Equal(t, "2025-01-01", ParseDate("february 30", refNow))
}
