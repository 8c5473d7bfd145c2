package storefront

import (
	"sync"
	"time"
)

// DefaultOverlayDelay is how long a promotion waits before it is shown.
const DefaultOverlayDelay = 3 * time.Second

// Promotion is a promotional overlay payload. It is never persisted.
type Promotion struct {
	Title              string `json:"title"`
	Description        string `json:"description"`
	ButtonText         string `json:"buttonText"`
	IsInsightTriggered bool   `json:"isInsightTriggered"`
}

// Scheduler shows insight-triggered promotions after a delay, one at a time.
// A newer offer replaces the pending one and restarts the delay. Dismissing
// the visible promotion is final; only a new offer shows another.
type Scheduler struct {
	delay  time.Duration
	onShow func(Promotion)

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	pending *Promotion
	visible *Promotion
	closed  bool
}

// NewScheduler creates a scheduler. A non-positive delay uses DefaultOverlayDelay.
// onShow, when set, runs on the timer goroutine each time a promotion becomes visible.
func NewScheduler(delay time.Duration, onShow func(Promotion)) *Scheduler {
	if delay <= 0 {
		delay = DefaultOverlayDelay
	}
	return &Scheduler{delay: delay, onShow: onShow}
}

// Offer schedules p for display. Payloads that are not insight-triggered are
// ignored and Offer reports false.
func (s *Scheduler) Offer(p Promotion) bool {
	if !p.IsInsightTriggered {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.pending = &p
	s.timer = time.AfterFunc(s.delay, func() { s.show(gen) })
	return true
}

// Dismiss hides the visible promotion.
func (s *Scheduler) Dismiss() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible = nil
}

// Visible returns the promotion currently shown.
func (s *Scheduler) Visible() (Promotion, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.visible == nil {
		return Promotion{}, false
	}
	return *s.visible, true
}

// Pending returns the promotion waiting for its delay to elapse.
func (s *Scheduler) Pending() (Promotion, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return Promotion{}, false
	}
	return *s.pending, true
}

// Close drops any pending promotion and stops the timer.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = nil
	s.gen++
}

func (s *Scheduler) show(gen uint64) {
	s.mu.Lock()
	if s.closed || gen != s.gen || s.pending == nil {
		s.mu.Unlock()
		return
	}
	p := *s.pending
	s.visible = &p
	s.pending = nil
	s.timer = nil
	onShow := s.onShow
	s.mu.Unlock()

	if onShow != nil {
		onShow(p)
	}
}
