package gateway

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestSignal_ReleasesAllWaiters(t *testing.T) {
	s := NewSignal()

	const waiters = 5
	var wg sync.WaitGroup
	released := make(chan struct{}, waiters)
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Wait(context.Background()); err == nil {
				released <- struct{}{}
			}
		}()
	}

	time.Sleep(20 * time.Millisecond)
	if len(released) != 0 {
		t.Fatal("waiters released before Set")
	}

	s.Set()
	s.Clear() // must not un-release anyone
	wg.Wait()

	if len(released) != waiters {
		t.Errorf("released %d waiters, want %d", len(released), waiters)
	}
}

func TestSignal_LevelTriggered(t *testing.T) {
	s := NewSignal()
	s.Set()
	s.Set()

	if !s.IsSet() {
		t.Fatal("expected set")
	}
	// Admitted repeatedly while set
	for i := 0; i < 3; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		if err := s.Wait(ctx); err != nil {
			t.Errorf("wait %d: %v", i, err)
		}
		cancel()
	}

	s.Clear()
	s.Clear()
	if s.IsSet() {
		t.Fatal("expected cleared")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := s.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected DeadlineExceeded after Clear, got %v", err)
	}

	s.Set()
	if err := s.Wait(context.Background()); err != nil {
		t.Errorf("expected release after second Set, got %v", err)
	}
}
