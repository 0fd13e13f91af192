package call

import "time"

// Phase is the call's position in the dialogue flow.
type Phase string

const (
	PhaseGreeting          Phase = "greeting"
	PhaseGathering         Phase = "gathering"
	PhaseConfirming        Phase = "confirming"
	PhaseCompleted         Phase = "completed"
	PhaseEarlyDisconnected Phase = "early_disconnected"
	PhaseFailed            Phase = "failed"
)

// Status is the call's lifecycle state. Terminal once not Active.
type Status string

const (
	StatusActive            Status = "active"
	StatusCompleted         Status = "completed"
	StatusFailed            Status = "failed"
	StatusEarlyDisconnected Status = "early_disconnected"
)

// Field names one reservation slot.
type Field string

const (
	FieldName      Field = "name"
	FieldDate      Field = "date"
	FieldTime      Field = "time"
	FieldPartySize Field = "party_size"
	FieldPhone     Field = "phone"
	FieldEmail     Field = "email"
)

// SlotOrder is the fixed priority in which missing slots are requested.
var SlotOrder = []Field{FieldName, FieldDate, FieldTime, FieldPartySize, FieldPhone, FieldEmail}

// Slots holds the reservation fields extracted so far. An empty string
// means the field has not been collected yet.
type Slots struct {
	Name      string
	Date      string
	Time      string
	PartySize string
	Phone     string
	Email     string
}

// Get returns the value of the named slot.
func (s Slots) Get(f Field) string {
	switch f {
	case FieldName:
		return s.Name
	case FieldDate:
		return s.Date
	case FieldTime:
		return s.Time
	case FieldPartySize:
		return s.PartySize
	case FieldPhone:
		return s.Phone
	case FieldEmail:
		return s.Email
	}
	return ""
}

func (s *Slots) set(f Field, value string) {
	switch f {
	case FieldName:
		s.Name = value
	case FieldDate:
		s.Date = value
	case FieldTime:
		s.Time = value
	case FieldPartySize:
		s.PartySize = value
	case FieldPhone:
		s.Phone = value
	case FieldEmail:
		s.Email = value
	}
}

// Missing returns the unfilled slots in priority order.
func (s Slots) Missing() []Field {
	var missing []Field
	for _, f := range SlotOrder {
		if s.Get(f) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

// Complete reports whether every required slot is filled.
func (s Slots) Complete() bool {
	return len(s.Missing()) == 0
}

// Turn is one exchange in the conversation: what the caller said, how it
// was classified, and what the system answered.
type Turn struct {
	Utterance string
	Intent    string
	Response  string
}

// State is the mutable record of one call's dialogue progress. The registry
// owns every live State; everything outside the registry only ever sees
// copies.
type State struct {
	ID           string
	CallerNumber string

	Phase  Phase
	Status Status
	Slots  Slots

	Intent        string
	LastIntent    string
	LastUtterance string
	History       []Turn

	GreetingPlayed  bool
	StartedAt       time.Time
	LastUpdatedAt   time.Time
	DurationSeconds float64
}

func newState(id, callerNumber string, now time.Time) *State {
	return &State{
		ID:            id,
		CallerNumber:  callerNumber,
		Phase:         PhaseGreeting,
		Status:        StatusActive,
		StartedAt:     now,
		LastUpdatedAt: now,
	}
}

func (s *State) terminal() bool {
	return s.Status != StatusActive
}

// snapshot returns a copy safe to hand outside the registry lock.
func (s *State) snapshot() State {
	copied := *s
	copied.History = make([]Turn, len(s.History))
	copy(copied.History, s.History)
	return copied
}

func (s *State) markEarlyDisconnected(now time.Time) {
	s.Phase = PhaseEarlyDisconnected
	s.Status = StatusEarlyDisconnected
	s.DurationSeconds = now.Sub(s.StartedAt).Seconds()
	s.LastUpdatedAt = now
}

func (s *State) complete(now time.Time) {
	s.Phase = PhaseCompleted
	s.Status = StatusCompleted
	s.DurationSeconds = now.Sub(s.StartedAt).Seconds()
	s.LastUpdatedAt = now
}

func (s *State) fail(now time.Time) {
	s.Phase = PhaseFailed
	s.Status = StatusFailed
	s.DurationSeconds = now.Sub(s.StartedAt).Seconds()
	s.LastUpdatedAt = now
}
