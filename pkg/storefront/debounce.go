package storefront

import (
	"context"
	"sync"
	"time"
)

// DefaultDebounceDelay is how long typing must pause before a search is issued.
const DefaultDebounceDelay = 500 * time.Millisecond

// SyncState is the state of a Synchronizer.
type SyncState int

const (
	// Idle means no input is waiting and no request is running.
	Idle SyncState = iota
	// Pending means input is waiting for the debounce timer.
	Pending
	// InFlight means a request is running.
	InFlight
)

func (s SyncState) String() string {
	switch s {
	case Pending:
		return "pending"
	case InFlight:
		return "in_flight"
	default:
		return "idle"
	}
}

// SearchFunc issues one search for the given input text.
type SearchFunc func(ctx context.Context, text string) (*SearchResponse, error)

// Result is the outcome of a request that was still the latest when it completed.
type Result struct {
	Seq      uint64
	Text     string
	Response *SearchResponse
	Err      error
}

// Synchronizer turns keystrokes into searches. Typing restarts a delay timer,
// so intermediate values are never searched. Only the latest request's result
// is delivered; earlier requests are cancelled and their responses dropped.
type Synchronizer struct {
	search   SearchFunc
	onResult func(Result)
	delay    time.Duration

	mu       sync.Mutex
	state    SyncState
	text     string
	timer    *time.Timer
	timerGen uint64
	seq      uint64
	cancel   context.CancelFunc
	closed   bool

	deliverMu sync.Mutex
	wg        sync.WaitGroup
}

// NewSynchronizer creates a synchronizer. A non-positive delay uses DefaultDebounceDelay.
// onResult runs on the request goroutine and must not call Close.
func NewSynchronizer(search SearchFunc, onResult func(Result), delay time.Duration) *Synchronizer {
	if delay <= 0 {
		delay = DefaultDebounceDelay
	}
	return &Synchronizer{search: search, onResult: onResult, delay: delay}
}

// Type records new input text and restarts the delay timer.
func (s *Synchronizer) Type(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.text = text
	s.stopTimerLocked()
	s.state = Pending

	gen := s.timerGen
	s.timer = time.AfterFunc(s.delay, func() { s.fire(gen) })
}

// Submit issues a request for the current text immediately, dropping any pending timer.
func (s *Synchronizer) Submit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.stopTimerLocked()
	s.issueLocked()
}

// State returns the current state.
func (s *Synchronizer) State() SyncState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Close stops the timer, cancels any running request and waits for it to return.
// No results are delivered after Close returns.
func (s *Synchronizer) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.stopTimerLocked()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.seq++
	s.state = Idle
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *Synchronizer) fire(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.timerGen || s.state != Pending {
		return
	}
	s.timer = nil
	s.issueLocked()
}

// stopTimerLocked invalidates the current timer even if its callback is already running.
func (s *Synchronizer) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.timerGen++
}

func (s *Synchronizer) issueLocked() {
	if s.cancel != nil {
		s.cancel()
	}
	s.seq++
	seq, text := s.seq, s.text

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.state = InFlight

	s.wg.Add(1)
	go s.run(ctx, cancel, seq, text)
}

func (s *Synchronizer) run(ctx context.Context, cancel context.CancelFunc, seq uint64, text string) {
	defer s.wg.Done()
	defer cancel()

	resp, err := s.search(ctx, text)

	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		return
	}
	if s.state == InFlight {
		s.state = Idle
	}
	s.cancel = nil
	s.mu.Unlock()

	if s.onResult != nil {
		s.onResult(Result{Seq: seq, Text: text, Response: resp, Err: err})
	}
}
