package domain

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestOrderCompleteOnce(t *testing.T) {
	o := NewOrder(1, 7, "BTC", SideBuy, 10, decimal.NewFromInt(30000))

	if o.Status() != StatusPending {
		t.Fatalf("expected PENDING, got %s", o.Status())
	}

	if err := o.Complete(StatusExecuted); err != nil {
		t.Fatalf("first Complete failed: %v", err)
	}
	if o.Status() != StatusExecuted {
		t.Errorf("expected EXECUTED, got %s", o.Status())
	}

	err := o.Complete(StatusCancelled)
	if !errors.Is(err, ErrSignalAlreadySet) {
		t.Errorf("expected ErrSignalAlreadySet, got %v", err)
	}
	if o.Status() != StatusExecuted {
		t.Errorf("terminal status regressed to %s", o.Status())
	}
	if o.Signal().Outcome() != StatusExecuted {
		t.Errorf("signal outcome overwritten: %s", o.Signal().Outcome())
	}
}

// Racing terminal transitions resolve first-writer-wins: exactly one
// succeeds, the signal fires exactly once.
func TestOrderCompleteConcurrent(t *testing.T) {
	o := NewOrder(2, 1, "ETH", SideSell, 5, decimal.NewFromInt(2000))

	var wins int32
	var mu sync.Mutex
	var wg sync.WaitGroup
	statuses := []string{StatusExecuted, StatusCancelled, StatusRejected}
	for n := 0; n < 30; n++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if err := o.Complete(statuses[n%len(statuses)]); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(n)
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("expected exactly 1 successful transition, got %d", wins)
	}
	if o.Signal().Outcome() != o.Status() {
		t.Errorf("signal outcome %s disagrees with status %s",
			o.Signal().Outcome(), o.Status())
	}
}

func TestSignalWait(t *testing.T) {
	s := NewSignal()

	go func() {
		time.Sleep(10 * time.Millisecond)
		s.Complete(StatusCancelled)
	}()

	status, err := s.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if status != StatusCancelled {
		t.Errorf("expected CANCELLED, got %s", status)
	}

	// A fired signal keeps answering.
	select {
	case <-s.Done():
	default:
		t.Error("Done channel should stay closed")
	}
}

func TestSignalWaitCancelled(t *testing.T) {
	s := NewSignal()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Wait(ctx); err == nil {
		t.Error("expected context error from Wait")
	}
	if s.Outcome() != "" {
		t.Errorf("unfired signal should have empty outcome, got %q", s.Outcome())
	}
}

func TestOrderAge(t *testing.T) {
	o := NewOrder(3, 1, "AAPL", SideBuy, 1, decimal.NewFromInt(100))
	now := o.CreatedAt.Add(31 * time.Second)
	if got := o.Age(now); got != 31*time.Second {
		t.Errorf("expected age 31s, got %s", got)
	}
}
