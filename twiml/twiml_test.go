package twiml

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tablevox/tablevox/dialog"
)

func TestRenderGatherSpeech(t *testing.T) {
	got := Render(dialog.GatherSpeechAt("What date would you like?", "/voice/gather"))
	assert.Contains(t, got, "<Say>What date would you like?</Say>")
	assert.Contains(t, got, `<Gather input="speech" speechTimeout="auto" action="/voice/gather"/>`)
}

func TestRenderGatherDigits(t *testing.T) {
	got := Render(dialog.GatherDigitsAt("Press 1 for yes or 2 for no.", "/voice/confirm"))
	assert.Contains(t, got, `<Gather input="dtmf" numDigits="1" action="/voice/confirm"/>`)
}

func TestRenderHangup(t *testing.T) {
	got := Render(dialog.Hangup("Goodbye!"))
	assert.Contains(t, got, "<Say>Goodbye!</Say>")
	assert.Contains(t, got, "<Hangup/>")
}

func TestRenderSpeak(t *testing.T) {
	got := Render(dialog.Speak("One moment."))
	assert.Contains(t, got, "<Say>One moment.</Say>")
	assert.NotContains(t, got, "<Gather")
	assert.NotContains(t, got, "<Hangup")
}

func TestRenderEscapesText(t *testing.T) {
	got := Render(dialog.Speak(`Fish & chips for "two" <tonight>`))
	assert.Contains(t, got, "Fish &amp; chips")
	assert.Contains(t, got, "&lt;tonight&gt;")
	assert.NotContains(t, got, "<tonight>")
}

func TestEmpty(t *testing.T) {
	assert.Equal(t, `<?xml version="1.0" encoding="UTF-8"?><Response></Response>`, Empty())
}
