package call

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSlotsMissingOrder(t *testing.T) {
	s := Slots{Date: "2025-01-02", Phone: "+447700900123"}
	missing := s.Missing()
	assert.Equal(t, []Field{FieldName, FieldTime, FieldPartySize, FieldEmail}, missing)
	assert.False(t, s.Complete())
}

func TestSlotsComplete(t *testing.T) {
	s := Slots{
		Name:      "Kim Cheolsu",
		Date:      "2025-01-02",
		Time:      "19:00",
		PartySize: "4",
		Phone:     "+447700900123",
		Email:     "kim@example.com",
	}
	assert.True(t, s.Complete())
	assert.Empty(t, s.Missing())
}

func TestSlotsGetSet(t *testing.T) {
	var s Slots
	for _, f := range SlotOrder {
		assert.Equal(t, "", s.Get(f))
		s.set(f, "x")
		assert.Equal(t, "x", s.Get(f))
	}
}

func TestSnapshotIsolatesHistory(t *testing.T) {
	st := newState("CA1", "+4420", time.Now())
	st.History = append(st.History, Turn{Utterance: "hello"})

	snap := st.snapshot()
	st.History[0].Utterance = "changed"
	st.History = append(st.History, Turn{Utterance: "more"})

	assert.Len(t, snap.History, 1)
	assert.Equal(t, "hello", snap.History[0].Utterance)
}
