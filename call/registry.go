package call

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisCallPrefix = "tablevox:call:"
	redisActiveSet  = "tablevox:calls:active"
)

// Registry tracks every call the service has handled since startup. It is
// the single owner of live State values; callers get copies and apply
// changes through the mutator methods. When a Redis client is supplied the
// registry mirrors call metadata there on a best-effort basis so an
// operator can inspect live calls, but Redis is never read back and every
// decision is made from the in-memory map.
type Registry struct {
	mu    sync.RWMutex
	calls map[string]*State

	rdb       *redis.Client
	mirrorTTL time.Duration

	now func() time.Time

	stopSweep chan struct{}
	sweepOnce sync.Once
}

// NewRegistry creates an empty registry. rdb may be nil, in which case
// mirroring is disabled.
func NewRegistry(rdb *redis.Client, mirrorTTL time.Duration) *Registry {
	return &Registry{
		calls:     make(map[string]*State),
		rdb:       rdb,
		mirrorTTL: mirrorTTL,
		now:       time.Now,
		stopSweep: make(chan struct{}),
	}
}

// DialRedis connects to Redis and verifies the connection with a ping.
// Returns nil (not an error) when Redis is unreachable so the service can
// run without the mirror.
func DialRedis(addr, password string) *redis.Client {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("⚠️ Redis unavailable at %s, running without mirror: %v", addr, err)
		client.Close()
		return nil
	}
	log.Printf("✅ Connected to Redis at %s", addr)
	return client
}

// CreateOrGet registers a new call or returns the existing one. Creation
// is idempotent per call ID.
func (r *Registry) CreateOrGet(id, callerNumber string) State {
	r.mu.Lock()
	st, ok := r.calls[id]
	if !ok {
		st = newState(id, callerNumber, r.now())
		r.calls[id] = st
		log.Printf("📞 New call %s from %s", id, callerNumber)
	}
	snap := st.snapshot()
	r.mu.Unlock()

	if !ok {
		r.mirror(snap)
		callsStarted.Inc()
		activeCalls.Set(float64(r.ActiveCount()))
	}
	return snap
}

// Get returns a copy of the call's state.
func (r *Registry) Get(id string) (State, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.calls[id]
	if !ok {
		return State{}, false
	}
	return st.snapshot(), true
}

// mutate runs fn against the live state under the lock and mirrors the
// result afterwards. fn is never called for unknown or terminal calls.
func (r *Registry) mutate(id string, fn func(*State)) (State, bool) {
	r.mu.Lock()
	st, ok := r.calls[id]
	if !ok || st.terminal() {
		var snap State
		if ok {
			snap = st.snapshot()
		}
		r.mu.Unlock()
		return snap, ok
	}
	fn(st)
	st.LastUpdatedAt = r.now()
	snap := st.snapshot()
	r.mu.Unlock()

	r.mirror(snap)
	return snap, true
}

// ApplyUtterance records the caller's words and the classified intent,
// and merges any extracted slot values. A non-empty value always wins,
// so a caller restating a detail replaces the earlier one. Empty values
// are skipped and never clear a filled slot.
func (r *Registry) ApplyUtterance(id, utterance, intent string, extracted map[Field]string) (State, bool) {
	return r.mutate(id, func(st *State) {
		st.LastUtterance = utterance
		st.LastIntent = st.Intent
		st.Intent = intent
		for _, f := range SlotOrder {
			v, ok := extracted[f]
			if !ok || v == "" {
				continue
			}
			st.Slots.set(f, v)
		}
		if st.Phase == PhaseGreeting {
			st.Phase = PhaseGathering
		}
	})
}

// SetIntent updates the intent without touching slots.
func (r *Registry) SetIntent(id, intent string) (State, bool) {
	return r.mutate(id, func(st *State) {
		st.LastIntent = st.Intent
		st.Intent = intent
	})
}

// SetSlot fills one slot. Empty values are ignored so a failed extraction
// can never erase collected data.
func (r *Registry) SetSlot(id string, f Field, value string) (State, bool) {
	if value == "" {
		return r.Get(id)
	}
	return r.mutate(id, func(st *State) {
		st.Slots.set(f, value)
		if st.Phase == PhaseGreeting {
			st.Phase = PhaseGathering
		}
	})
}

// MarkGreetingPlayed moves the call out of the greeting phase.
func (r *Registry) MarkGreetingPlayed(id string) (State, bool) {
	return r.mutate(id, func(st *State) {
		st.GreetingPlayed = true
		if st.Phase == PhaseGreeting {
			st.Phase = PhaseGathering
		}
	})
}

// BeginConfirmation moves a call with a complete slot set into the
// confirming phase. Calls with missing slots stay where they are.
func (r *Registry) BeginConfirmation(id string) (State, bool) {
	return r.mutate(id, func(st *State) {
		if st.Slots.Complete() {
			st.Phase = PhaseConfirming
		}
	})
}

// RejectConfirmation sends a confirming call back to gathering. Collected
// slots are kept so the caller only restates what they want to change.
func (r *Registry) RejectConfirmation(id string) (State, bool) {
	return r.mutate(id, func(st *State) {
		if st.Phase == PhaseConfirming {
			st.Phase = PhaseGathering
		}
	})
}

// CompleteCall marks the call completed. The state becomes immutable.
func (r *Registry) CompleteCall(id string) (State, bool) {
	snap, ok := r.mutate(id, func(st *State) {
		st.complete(r.now())
	})
	if ok && snap.Status == StatusCompleted {
		callsCompleted.Inc()
		callDuration.Observe(snap.DurationSeconds)
		activeCalls.Set(float64(r.ActiveCount()))
	}
	return snap, ok
}

// RecordTurn appends one exchange to the call's history.
func (r *Registry) RecordTurn(id string, turn Turn) (State, bool) {
	return r.mutate(id, func(st *State) {
		st.History = append(st.History, turn)
	})
}

// UpdateStatus applies a telephony status event. A "completed" event on a
// call that never reached confirmation is reclassified as an early
// disconnection. When the telephony provider reports a call duration it
// wins over the locally computed one; pass zero when none was reported.
// Unknown call IDs are logged and ignored.
func (r *Registry) UpdateStatus(id string, status Status, reportedSeconds float64) (State, bool) {
	r.mu.Lock()
	st, ok := r.calls[id]
	if !ok {
		r.mu.Unlock()
		log.Printf("⚠️ Status %q for unknown call %s", status, id)
		return State{}, false
	}
	if st.terminal() {
		snap := st.snapshot()
		r.mu.Unlock()
		return snap, true
	}
	now := r.now()
	switch status {
	case StatusCompleted:
		if (st.Phase == PhaseGreeting || st.Phase == PhaseGathering) && !st.Slots.Complete() {
			st.markEarlyDisconnected(now)
		} else {
			st.complete(now)
		}
	case StatusEarlyDisconnected:
		st.markEarlyDisconnected(now)
	case StatusFailed:
		st.fail(now)
	default:
		st.LastUpdatedAt = now
	}
	if st.terminal() && reportedSeconds > 0 {
		st.DurationSeconds = reportedSeconds
	}
	snap := st.snapshot()
	r.mu.Unlock()

	if snap.Status != StatusActive {
		r.mirror(snap)
		switch snap.Status {
		case StatusCompleted:
			callsCompleted.Inc()
		case StatusEarlyDisconnected:
			earlyDisconnects.Inc()
			log.Printf("📵 Call %s dropped early after %.1fs in phase %s", id, snap.DurationSeconds, snap.Phase)
		case StatusFailed:
			callsFailed.Inc()
		}
		callDuration.Observe(snap.DurationSeconds)
		activeCalls.Set(float64(r.ActiveCount()))
	}
	return snap, true
}

// Sweep removes terminal calls whose last update is older than maxAge and
// returns how many were removed. Active calls are never swept.
func (r *Registry) Sweep(maxAge time.Duration) int {
	cutoff := r.now().Add(-maxAge)

	r.mu.Lock()
	var removedIDs []string
	for id, st := range r.calls {
		if st.terminal() && st.LastUpdatedAt.Before(cutoff) {
			delete(r.calls, id)
			removedIDs = append(removedIDs, id)
		}
	}
	r.mu.Unlock()

	if len(removedIDs) > 0 {
		log.Printf("🧹 Swept %d finished call(s)", len(removedIDs))
		r.unmirror(removedIDs)
	}
	return len(removedIDs)
}

// EarlyDisconnectStats summarises calls that hung up before completing a
// reservation.
type EarlyDisconnectStats struct {
	Count                  int      `json:"count"`
	AverageDurationSeconds float64  `json:"average_duration_seconds"`
	IDs                    []string `json:"call_ids"`
}

// EarlyDisconnects reports the early-disconnection stats for calls still
// held in memory.
func (r *Registry) EarlyDisconnects() EarlyDisconnectStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := EarlyDisconnectStats{IDs: []string{}}
	var total float64
	for id, st := range r.calls {
		if st.Status == StatusEarlyDisconnected {
			stats.Count++
			stats.IDs = append(stats.IDs, id)
			total += st.DurationSeconds
		}
	}
	if stats.Count > 0 {
		stats.AverageDurationSeconds = total / float64(stats.Count)
	}
	return stats
}

// ActiveCount returns the number of calls still in progress.
func (r *Registry) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, st := range r.calls {
		if !st.terminal() {
			n++
		}
	}
	return n
}

// StartSweepRoutine sweeps finished calls on a fixed interval until
// Shutdown is called.
func (r *Registry) StartSweepRoutine(interval, maxAge time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.Sweep(maxAge)
			case <-r.stopSweep:
				return
			}
		}
	}()
}

// Shutdown stops the sweep routine and closes the Redis connection.
func (r *Registry) Shutdown() {
	r.sweepOnce.Do(func() { close(r.stopSweep) })
	if r.rdb != nil {
		r.rdb.Close()
	}
}

// mirror writes the call's metadata to Redis. Failures are logged and
// otherwise ignored.
func (r *Registry) mirror(snap State) {
	if r.rdb == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	key := redisCallPrefix + snap.ID
	fields := map[string]interface{}{
		"caller":     snap.CallerNumber,
		"phase":      string(snap.Phase),
		"status":     string(snap.Status),
		"intent":     snap.Intent,
		"name":       snap.Slots.Name,
		"date":       snap.Slots.Date,
		"time":       snap.Slots.Time,
		"party_size": snap.Slots.PartySize,
		"started_at": snap.StartedAt.Format(time.RFC3339),
		"updated_at": snap.LastUpdatedAt.Format(time.RFC3339),
	}
	if err := r.rdb.HSet(ctx, key, fields).Err(); err != nil {
		log.Printf("⚠️ Failed to mirror call %s to Redis: %v", snap.ID, err)
		return
	}
	if err := r.rdb.SAdd(ctx, redisActiveSet, snap.ID).Err(); err != nil {
		log.Printf("⚠️ Failed to index call %s in Redis: %v", snap.ID, err)
	}
	if r.mirrorTTL > 0 {
		r.rdb.Expire(ctx, key, r.mirrorTTL)
	}
}

func (r *Registry) unmirror(ids []string) {
	if r.rdb == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	for _, id := range ids {
		if err := r.rdb.Del(ctx, redisCallPrefix+id).Err(); err != nil {
			log.Printf("⚠️ Failed to drop mirrored call %s: %v", id, err)
		}
		r.rdb.SRem(ctx, redisActiveSet, id)
	}
}

// Describe formats a short one-line summary for logs.
func Describe(st State) string {
	return fmt.Sprintf("call %s phase=%s status=%s slots=%d/%d", st.ID, st.Phase, st.Status, len(SlotOrder)-len(st.Slots.Missing()), len(SlotOrder))
}
