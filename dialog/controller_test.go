package dialog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablevox/tablevox/call"
	"github.com/tablevox/tablevox/config"
	"github.com/tablevox/tablevox/extract"
)

type fakePersister struct {
	saved []Reservation
	err   error
}

func (f *fakePersister) PersistReservation(_ context.Context, res Reservation) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, res)
	return nil
}

func newTestController(t *testing.T) (*Controller, *call.Registry, *fakePersister) {
	t.Helper()
	registry := call.NewRegistry(nil, 0)
	t.Cleanup(registry.Shutdown)
	persister := &fakePersister{}
	c := NewController(
		registry,
		NewResponder(config.DefaultProfile()),
		extract.RuleExtractor{},
		persister,
		"/voice/gather",
		"/voice/confirm",
	)
	c.now = func() time.Time { return time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC) }
	return c, registry, persister
}

func TestHandleIncoming(t *testing.T) {
	c, registry, _ := newTestController(t)

	d := c.HandleIncoming("CA1", "+447700900123")
	assert.Equal(t, DirectiveGather, d.Kind)
	assert.Equal(t, GatherSpeech, d.Mode)
	assert.Equal(t, "/voice/gather", d.Action)
	assert.Contains(t, d.Text, "Welcome to Korean BBQ House London")

	st, ok := registry.Get("CA1")
	require.True(t, ok)
	assert.True(t, st.GreetingPlayed)
	assert.Equal(t, call.PhaseGathering, st.Phase)
}

func TestHandleSpeechEmptyAsksAgain(t *testing.T) {
	c, _, _ := newTestController(t)
	c.HandleIncoming("CA1", "+4420")

	d := c.HandleSpeech(context.Background(), "CA1", "  ")
	assert.Equal(t, DirectiveGather, d.Kind)
	assert.Contains(t, d.Text, "didn't catch that")
}

func TestHandleSpeechTopicQuestion(t *testing.T) {
	c, registry, _ := newTestController(t)
	c.HandleIncoming("CA1", "+4420")

	d := c.HandleSpeech(context.Background(), "CA1", "what are your opening hours")
	assert.Equal(t, DirectiveGather, d.Kind)
	assert.Contains(t, d.Text, "11:00 AM to 9:00 PM")
	assert.Contains(t, d.Text, "anything else")

	st, _ := registry.Get("CA1")
	require.Len(t, st.History, 1)
	assert.Equal(t, string(IntentHours), st.History[0].Intent)
}

// Full reservation flow: request, slots one by one, confirmation, save.
func TestFullReservationFlow(t *testing.T) {
	c, registry, persister := newTestController(t)
	ctx := context.Background()
	c.HandleIncoming("CA1", "+447700900123")

	d := c.HandleSpeech(ctx, "CA1", "I'd like to book a table")
	assert.Equal(t, DirectiveGather, d.Kind)
	assert.Contains(t, d.Text, "May I have your name")

	d = c.HandleSpeech(ctx, "CA1", "my name is Kim Cheolsu")
	assert.Contains(t, d.Text, "What date")

	d = c.HandleSpeech(ctx, "CA1", "tomorrow")
	assert.Contains(t, d.Text, "What time")

	d = c.HandleSpeech(ctx, "CA1", "7pm")
	assert.Contains(t, d.Text, "How many people")

	d = c.HandleSpeech(ctx, "CA1", "4 people")
	assert.Contains(t, d.Text, "phone number")

	st, _ := registry.Get("CA1")
	assert.Equal(t, "4", st.Slots.PartySize)

	// bare digits right after the phone prompt land in the phone slot
	d = c.HandleSpeech(ctx, "CA1", "07700 900123")
	assert.Contains(t, d.Text, "email")

	d = c.HandleSpeech(ctx, "CA1", "kim@foo.uk")
	assert.Equal(t, DirectiveGather, d.Kind)
	assert.Equal(t, GatherDigits, d.Mode)
	assert.Equal(t, "/voice/confirm", d.Action)
	assert.Contains(t, d.Text, "Kim Cheolsu")
	assert.Contains(t, d.Text, "2025-01-02")
	assert.Contains(t, d.Text, "19:00")
	assert.Contains(t, d.Text, "Press 1 for yes")

	st, _ = registry.Get("CA1")
	assert.Equal(t, call.PhaseConfirming, st.Phase)

	d = c.HandleConfirmation(ctx, "CA1", "1", "")
	assert.Equal(t, DirectiveHangup, d.Kind)
	assert.Contains(t, d.Text, "has been confirmed")

	require.Len(t, persister.saved, 1)
	saved := persister.saved[0]
	assert.Equal(t, "Kim Cheolsu", saved.Name)
	assert.Equal(t, "2025-01-02", saved.Date)
	assert.Equal(t, "19:00", saved.Time)
	assert.Equal(t, "4", saved.PartySize)
	assert.Equal(t, "07700900123", saved.Phone)
	assert.Equal(t, "kim@foo.uk", saved.Email)

	st, _ = registry.Get("CA1")
	assert.Equal(t, call.StatusCompleted, st.Status)
}

func TestCompoundUtteranceFillsSeveralSlots(t *testing.T) {
	c, registry, _ := newTestController(t)
	ctx := context.Background()
	c.HandleIncoming("CA1", "+4420")
	c.HandleSpeech(ctx, "CA1", "I want to make a reservation")

	c.HandleSpeech(ctx, "CA1", "my name is James and I'd like tomorrow at 7pm")

	st, _ := registry.Get("CA1")
	assert.Equal(t, "2025-01-02", st.Slots.Date)
	assert.Equal(t, "19:00", st.Slots.Time)
	assert.NotEmpty(t, st.Slots.Name)
}

func TestDayPeriodAnswersTimePrompt(t *testing.T) {
	c, registry, _ := newTestController(t)
	ctx := context.Background()
	c.HandleIncoming("CA1", "+4420")
	c.HandleSpeech(ctx, "CA1", "I'd like to book a table")
	c.HandleSpeech(ctx, "CA1", "my name is Kim Cheolsu")
	c.HandleSpeech(ctx, "CA1", "tomorrow")

	d := c.HandleSpeech(ctx, "CA1", "morning")

	st, _ := registry.Get("CA1")
	assert.Equal(t, "11:00", st.Slots.Time)
	assert.Contains(t, d.Text, "How many people")
}

func TestConfirmationSpokenYes(t *testing.T) {
	c, _, persister := newTestController(t)
	ctx := context.Background()
	fillToConfirming(t, c)

	d := c.HandleConfirmation(ctx, "CA1", "", "yes that's right")
	assert.Equal(t, DirectiveHangup, d.Kind)
	assert.Len(t, persister.saved, 1)
}

func TestConfirmationRejectedKeepsSlots(t *testing.T) {
	c, registry, persister := newTestController(t)
	ctx := context.Background()
	fillToConfirming(t, c)

	d := c.HandleConfirmation(ctx, "CA1", "2", "")
	assert.Equal(t, DirectiveGather, d.Kind)
	assert.Equal(t, GatherSpeech, d.Mode)
	assert.Contains(t, d.Text, "start over")
	assert.Empty(t, persister.saved)

	st, _ := registry.Get("CA1")
	assert.Equal(t, call.PhaseGathering, st.Phase)
	assert.Equal(t, "Kim Cheolsu", st.Slots.Name, "rejection keeps collected slots")
}

func TestConfirmationRejectedThenCorrected(t *testing.T) {
	c, registry, persister := newTestController(t)
	ctx := context.Background()
	fillToConfirming(t, c)

	c.HandleConfirmation(ctx, "CA1", "2", "")

	// the restated date replaces the rejected one
	d := c.HandleSpeech(ctx, "CA1", "actually next friday")
	st, _ := registry.Get("CA1")
	assert.Equal(t, "2025-01-10", st.Slots.Date)

	// slots are complete again, so the corrected summary is read back
	require.Equal(t, DirectiveGather, d.Kind)
	require.Equal(t, GatherDigits, d.Mode)
	assert.Contains(t, d.Text, "2025-01-10")
	assert.NotContains(t, d.Text, "2025-01-02")

	d = c.HandleConfirmation(ctx, "CA1", "1", "")
	assert.Equal(t, DirectiveHangup, d.Kind)
	require.Len(t, persister.saved, 1)
	assert.Equal(t, "2025-01-10", persister.saved[0].Date)
}

func TestConfirmationGarbageReprompts(t *testing.T) {
	c, _, persister := newTestController(t)
	ctx := context.Background()
	fillToConfirming(t, c)

	d := c.HandleConfirmation(ctx, "CA1", "7", "")
	assert.Equal(t, DirectiveGather, d.Kind)
	assert.Equal(t, GatherDigits, d.Mode)
	assert.Contains(t, d.Text, "Press 1 for yes")
	assert.Empty(t, persister.saved)
}

func TestConfirmationPersistFailureStaysConfirming(t *testing.T) {
	c, registry, persister := newTestController(t)
	ctx := context.Background()
	fillToConfirming(t, c)
	persister.err = errors.New("disk full")

	d := c.HandleConfirmation(ctx, "CA1", "1", "")
	assert.Equal(t, DirectiveGather, d.Kind)
	assert.Equal(t, GatherDigits, d.Mode)
	assert.Contains(t, d.Text, "error saving")

	st, _ := registry.Get("CA1")
	assert.Equal(t, call.PhaseConfirming, st.Phase)
	assert.Equal(t, call.StatusActive, st.Status)

	// retry succeeds and saves exactly once
	persister.err = nil
	d = c.HandleConfirmation(ctx, "CA1", "1", "")
	assert.Equal(t, DirectiveHangup, d.Kind)
	assert.Len(t, persister.saved, 1)
}

func TestConfirmationAfterCompletionDoesNotSaveAgain(t *testing.T) {
	c, _, persister := newTestController(t)
	ctx := context.Background()
	fillToConfirming(t, c)

	c.HandleConfirmation(ctx, "CA1", "1", "")
	d := c.HandleConfirmation(ctx, "CA1", "1", "")
	assert.Equal(t, DirectiveHangup, d.Kind)
	assert.Len(t, persister.saved, 1, "a completed call never persists twice")
}

func TestEndConversationHangsUp(t *testing.T) {
	c, registry, _ := newTestController(t)
	c.HandleIncoming("CA1", "+4420")

	d := c.HandleSpeech(context.Background(), "CA1", "no thanks, that's all")
	assert.Equal(t, DirectiveHangup, d.Kind)
	assert.Contains(t, d.Text, "Have a wonderful day")

	st, _ := registry.Get("CA1")
	assert.Equal(t, call.StatusEarlyDisconnected, st.Status)
}

func TestHandleStatusEarlyHangup(t *testing.T) {
	c, registry, _ := newTestController(t)
	c.HandleIncoming("CA1", "+4420")
	c.HandleSpeech(context.Background(), "CA1", "I'd like to book a table")

	c.HandleStatus("CA1", "completed", "33")
	st, _ := registry.Get("CA1")
	assert.Equal(t, call.StatusEarlyDisconnected, st.Status)
	assert.Equal(t, 1, registry.EarlyDisconnects().Count)
	assert.InDelta(t, 33.0, st.DurationSeconds, 0.001, "reported duration is kept")
}

func TestHandleStatusIgnoresTransient(t *testing.T) {
	c, registry, _ := newTestController(t)
	c.HandleIncoming("CA1", "+4420")

	c.HandleStatus("CA1", "in-progress", "")
	st, _ := registry.Get("CA1")
	assert.Equal(t, call.StatusActive, st.Status)
}

func fillToConfirming(t *testing.T, c *Controller) {
	t.Helper()
	ctx := context.Background()
	c.HandleIncoming("CA1", "+447700900123")
	c.HandleSpeech(ctx, "CA1", "I'd like to book a table")
	c.HandleSpeech(ctx, "CA1", "my name is Kim Cheolsu")
	c.HandleSpeech(ctx, "CA1", "tomorrow")
	c.HandleSpeech(ctx, "CA1", "7pm")
	c.HandleSpeech(ctx, "CA1", "4 people")
	c.HandleSpeech(ctx, "CA1", "07700 900123")
	d := c.HandleSpeech(ctx, "CA1", "kim@foo.uk")
	require.Equal(t, GatherDigits, d.Mode, "call should reach confirmation")
}
