package docsync

import (
	"sync"
	"time"
)

// Status is the state of the sync state machine.
type Status int

// Sync states. Success and Error return to Idle after a fixed delay.
const (
	StatusIdle Status = iota
	StatusSyncing
	StatusSuccess
	StatusError
)

// String returns the lowercase state name.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusSyncing:
		return "syncing"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// StatusInfo is a point-in-time view of the state machine.
type StatusInfo struct {
	Status    Status    `json:"status"`
	LastError string    `json:"lastError,omitempty"`
	FetchedAt time.Time `json:"fetchedAt,omitempty"`
	Records   int       `json:"records"`
}

// state tracks the current status and the pending return to idle.
// Every transition bumps gen so a stale reset timer cannot clobber a
// newer state.
type state struct {
	mu      sync.Mutex
	status  Status
	lastErr error
	gen     uint64
	timer   *time.Timer

	notify func(Status)
}

func (s *state) get() (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status, s.lastErr
}

// set moves to status. When resetAfter is positive the state returns to
// idle after that delay unless another transition happens first; a zero
// delay returns to idle immediately.
func (s *state) set(status Status, err error, terminal bool, resetAfter time.Duration) {
	s.mu.Lock()
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	changed := s.status != status
	s.status = status
	if status == StatusError {
		s.lastErr = err
	} else if status == StatusSuccess {
		s.lastErr = nil
	}
	gen := s.gen
	if terminal && resetAfter > 0 {
		s.timer = time.AfterFunc(resetAfter, func() { s.reset(gen) })
	}
	s.mu.Unlock()

	if changed {
		s.fire(status)
	}
	if terminal && resetAfter <= 0 {
		s.reset(gen)
	}
}

// reset returns to idle if no transition happened since gen.
func (s *state) reset(gen uint64) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	changed := s.status != StatusIdle
	s.status = StatusIdle
	s.mu.Unlock()

	if changed {
		s.fire(StatusIdle)
	}
}

func (s *state) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *state) fire(status Status) {
	if s.notify != nil {
		s.notify(status)
	}
}
