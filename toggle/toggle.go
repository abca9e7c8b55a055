// Package toggle implements the optimistic toggle-with-rollback used by every
// boolean switch of the admin console: feature flags, section visibility and
// menu item availability.
//
// A flip is applied to the local view first, then persisted. Success leaves a
// transient "Enabled"/"Disabled" status that clears itself after a delay;
// failure restores the previous value and keeps the error message. While a
// save is in flight the switch refuses further flips.
package toggle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// ErrSaving is returned when a flip is requested while a save is in flight.
var ErrSaving = errors.New("a save is already in progress for this field")

// Persist writes the new value to the backing store.
type Persist func(ctx context.Context, value bool) error

// Result is the outcome of one toggle.
type Result struct {
	Value  bool   // committed value
	Status string // transient confirmation, empty on failure
	Err    error
}

// StatusText is the confirmation shown after a successful save.
func StatusText(v bool) string {
	if v {
		return "Enabled"
	}
	return "Disabled"
}

// Toggle flips current and persists it. On failure the committed value is
// current again, so Toggle(Toggle(x)) == x whenever persist fails.
func Toggle(ctx context.Context, current bool, persist Persist) Result {
	next := !current
	if err := persist(ctx, next); err != nil {
		return Result{Value: current, Err: err}
	}
	return Result{Value: next, Status: StatusText(next)}
}

// State is the view of a switch as rendered by the admin panel.
type State struct {
	Value  bool   `json:"value"`
	Saving bool   `json:"saving"`
	Status string `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Switch holds the local view of one boolean field.
type Switch struct {
	mu       sync.Mutex
	value    bool
	saving   bool
	status   string
	errMsg   string
	delay    time.Duration
	gen      uint64
	timer    *time.Timer
	onChange func(bool)
}

// NewSwitch returns an idle switch. onChange, if set, mirrors every local
// value change (optimistic flip and rollback) into the owning view; it must
// not call back into the switch.
func NewSwitch(initial bool, delay time.Duration, onChange func(bool)) *Switch {
	return &Switch{value: initial, delay: delay, onChange: onChange}
}

// Flip runs the optimistic toggle sequence. A flip requested while saving is
// rejected with ErrSaving and changes nothing.
func (s *Switch) Flip(ctx context.Context, persist Persist) Result {
	s.mu.Lock()
	if s.saving {
		v := s.value
		s.mu.Unlock()
		return Result{Value: v, Err: ErrSaving}
	}
	prev := s.value
	s.value = !prev
	s.saving = true
	s.status, s.errMsg = "", ""
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	onChange := s.onChange
	s.mu.Unlock()

	if onChange != nil {
		onChange(!prev)
	}

	res := Toggle(ctx, prev, persist)

	s.mu.Lock()
	s.saving = false
	s.value = res.Value
	if res.Err != nil {
		s.errMsg = res.Err.Error()
	} else {
		s.status = res.Status
		gen := s.gen
		s.timer = time.AfterFunc(s.delay, func() { s.clearStatus(gen) })
	}
	s.mu.Unlock()

	if res.Err != nil && onChange != nil {
		onChange(prev)
	}
	return res
}

func (s *Switch) clearStatus(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen == gen {
		s.status = ""
		s.timer = nil
	}
}

// Sync adopts a value read from the store. It is ignored while saving.
func (s *Switch) Sync(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.saving {
		s.value = v
	}
}

// Value returns the current local value.
func (s *Switch) Value() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// State returns a snapshot for rendering.
func (s *Switch) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{Value: s.value, Saving: s.saving, Status: s.status, Error: s.errMsg}
}

// Board is a keyed registry of switches shared by all call sites.
type Board struct {
	mu       sync.Mutex
	delay    time.Duration
	switches map[string]*Switch
}

func NewBoard(delay time.Duration) *Board {
	return &Board{delay: delay, switches: make(map[string]*Switch)}
}

// Switch returns the switch registered under key, creating it with current as
// its initial value. An existing idle switch is synced to current.
func (b *Board) Switch(key string, current bool, onChange func(bool)) *Switch {
	b.mu.Lock()
	defer b.mu.Unlock()

	sw, ok := b.switches[key]
	if !ok {
		sw = NewSwitch(current, b.delay, onChange)
		b.switches[key] = sw
		return sw
	}
	sw.Sync(current)
	if onChange != nil {
		sw.mu.Lock()
		sw.onChange = onChange
		sw.mu.Unlock()
	}
	return sw
}

// Lookup returns the switch under key if one was registered.
func (b *Board) Lookup(key string) (*Switch, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	sw, ok := b.switches[key]
	return sw, ok
}

// Key joins parts into a board key, e.g. Key("menu_item", 7, "is_available").
func Key(parts ...any) string {
	s := make([]string, len(parts))
	for i, p := range parts {
		s[i] = fmt.Sprint(p)
	}
	return strings.Join(s, ":")
}
