package convo

import (
	"sync/atomic"
	"time"
)

// Flow selects one of the two top-level conversation variants.
type Flow int

const (
	FlowManual Flow = iota + 1
	FlowSimple
)

// Session is the per-conversation mutable state. It is created on flow entry,
// owned exclusively by one chat, and destroyed on completion or cancel.
type Session struct {
	Owner         int64
	CorrelationID int64
	Flow          Flow
	// Await reports the reply kind the conversation currently expects.
	Await ReplyKind

	chain     *Chain
	values    map[string]any
	satisfied map[string]struct{}
	current   int
	// touched holds the unix nanoseconds of the last activity. It is the only
	// session field read outside the owning chat's handler (by Manager.Reap),
	// hence atomic.
	touched atomic.Int64
}

func newSession(chain *Chain, flow Flow, owner, correlationID int64) *Session {
	s := &Session{
		Owner:         owner,
		CorrelationID: correlationID,
		Flow:          flow,
		chain:         chain,
		values:        make(map[string]any),
		satisfied:     make(map[string]struct{}),
		current:       chain.firstManual(),
	}
	s.Set(SlotOwner, owner)
	s.Set(SlotCorrelationID, correlationID)
	return s
}

func (s *Session) touch() {
	s.touched.Store(time.Now().UnixNano())
}

// lastActive returns the time of the session's last activity.
func (s *Session) lastActive() time.Time {
	return time.Unix(0, s.touched.Load())
}

// Set stores a typed value and marks its slot satisfied.
func (s *Session) Set(name string, v any) {
	s.values[name] = v
	s.satisfied[name] = struct{}{}
	s.touch()
}

// Value returns the typed value collected for a slot, if any.
func (s *Session) Value(name string) (any, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Satisfied reports whether the named slot has been answered or auto-filled.
func (s *Session) Satisfied(name string) bool {
	_, ok := s.satisfied[name]
	return ok
}

// Count returns the number of collected values, including seeded automatic ones.
func (s *Session) Count() int {
	return len(s.values)
}

// Values returns a copy of the collected values keyed by slot name.
func (s *Session) Values() map[string]any {
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// CurrentSlot returns the slot the session currently points at.
func (s *Session) CurrentSlot() (Slot, bool) {
	return s.chain.At(s.current)
}

// advance moves the pointer forward past every satisfied slot. It terminates
// at the first unsatisfied slot or at End.
func (s *Session) advance() {
	for s.current != End {
		slot, ok := s.chain.At(s.current)
		if !ok || !s.Satisfied(slot.Name) {
			return
		}
		s.current = s.chain.Next(s.current)
	}
}
