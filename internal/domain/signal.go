package domain

import (
	"context"
	"sync"
)

// Signal is a single-assignment completion cell. The producer assigns the
// terminal order status exactly once; any number of consumers can await it
// through Done or Wait. Completing never blocks on a consumer.
type Signal struct {
	mu     sync.Mutex
	done   chan struct{}
	status string
	set    bool
}

// NewSignal returns an unfired signal.
func NewSignal() *Signal {
	return &Signal{done: make(chan struct{})}
}

// Complete assigns the terminal status and wakes all waiters. A second
// call fails with ErrSignalAlreadySet and leaves the first value intact.
func (s *Signal) Complete(status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.set {
		return ErrSignalAlreadySet
	}
	s.status = status
	s.set = true
	close(s.done)
	return nil
}

// Done returns a channel closed once the terminal status is assigned.
func (s *Signal) Done() <-chan struct{} {
	return s.done
}

// Outcome returns the assigned status, or "" if the signal has not fired.
func (s *Signal) Outcome() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Wait blocks until the signal fires or ctx ends.
func (s *Signal) Wait(ctx context.Context) (string, error) {
	select {
	case <-s.done:
		return s.Outcome(), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
