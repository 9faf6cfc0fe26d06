package scanline

import (
	"context"
	"sync"
	"time"
)

// SessionState is the state of a render Session.
type SessionState int

const (
	// Idle means no render is running and a request will start one.
	Idle SessionState = iota

	// InProgress means a render is running; requests are ignored.
	InProgress
)

// String returns the state name.
func (s SessionState) String() string {
	switch s {
	case Idle:
		return "Idle"
	case InProgress:
		return "InProgress"
	default:
		return "SessionState(?)"
	}
}

// Affordance is a UI control whose enabled state follows the session,
// such as a render button.
type Affordance interface {
	SetEnabled(enabled bool)
}

// Toggle is an affordance that also carries an on/off value, such as an
// "auto-render on change" checkbox.
type Toggle interface {
	Affordance
	Value() bool
	SetValue(v bool)
}

// Runner executes a render session. *Dispatcher implements Runner.
type Runner interface {
	RunSession(ctx context.Context, sceneInput string, workers int) error
	LastStats() Stats
}

// Result is delivered to the resolution callback when a session ends.
type Result struct {
	Err     error
	Elapsed time.Duration
	Stats   Stats
}

// Session is the render session state machine.
//
// Moving from Idle to InProgress disables the render trigger and the
// auto-render toggle, remembering the toggle's value. Moving back to Idle,
// on success or failure, re-enables both and restores that value exactly.
// A request made while InProgress has no effect.
//
// Thread safety: Session is safe for concurrent use.
type Session struct {
	runner  Runner
	trigger Affordance
	auto    Toggle

	mu         sync.Mutex
	state      SessionState
	prevAuto   bool
	onResolved func(Result)
}

// NewSession creates an Idle session that renders with r. trigger and auto
// may be nil when the collaborator has no such control.
func NewSession(r Runner, trigger Affordance, auto Toggle) *Session {
	return &Session{
		runner:  r,
		trigger: trigger,
		auto:    auto,
	}
}

// State returns the current state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// OnResolved sets the callback invoked after each session returns to Idle.
func (s *Session) OnResolved(fn func(Result)) {
	s.mu.Lock()
	s.onResolved = fn
	s.mu.Unlock()
}

// Request starts a render session and blocks until it resolves.
//
// started is false, with a nil error, when a session was already in
// progress; nothing else happens in that case. Otherwise err is the session
// result. The session is back in Idle before Request returns.
func (s *Session) Request(ctx context.Context, sceneInput string, workers int) (started bool, err error) {
	if !s.enter() {
		return false, nil
	}

	start := time.Now()
	defer func() {
		res := Result{Err: err, Elapsed: time.Since(start), Stats: s.runner.LastStats()}
		if cb := s.leave(); cb != nil {
			cb(res)
		}
	}()

	return true, s.runner.RunSession(ctx, sceneInput, workers)
}

// enter performs the Idle -> InProgress transition.
func (s *Session) enter() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == InProgress {
		return false
	}
	s.state = InProgress

	if s.trigger != nil {
		s.trigger.SetEnabled(false)
	}
	if s.auto != nil {
		s.prevAuto = s.auto.Value()
		s.auto.SetValue(false)
		s.auto.SetEnabled(false)
	}
	return true
}

// leave performs the InProgress -> Idle transition and returns the
// resolution callback.
func (s *Session) leave() func(Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.auto != nil {
		s.auto.SetValue(s.prevAuto)
		s.auto.SetEnabled(true)
	}
	if s.trigger != nil {
		s.trigger.SetEnabled(true)
	}
	s.state = Idle
	return s.onResolved
}

// Switch is a minimal in-memory Toggle for collaborators without a real UI
// control. The zero value is disabled and off.
type Switch struct {
	mu      sync.Mutex
	enabled bool
	value   bool
}

// NewSwitch returns an enabled Switch with the given value.
func NewSwitch(value bool) *Switch {
	return &Switch{enabled: true, value: value}
}

// SetEnabled implements Affordance.
func (w *Switch) SetEnabled(enabled bool) {
	w.mu.Lock()
	w.enabled = enabled
	w.mu.Unlock()
}

// Enabled reports whether the switch is enabled.
func (w *Switch) Enabled() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.enabled
}

// Value implements Toggle.
func (w *Switch) Value() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.value
}

// SetValue implements Toggle.
func (w *Switch) SetValue(v bool) {
	w.mu.Lock()
	w.value = v
	w.mu.Unlock()
}
