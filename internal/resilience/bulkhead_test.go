package resilience

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestBulkhead_RejectsWhenFull(t *testing.T) {
	var rejected []error
	b := NewBulkhead(BulkheadConfig{
		Name:          "analysis",
		MaxConcurrent: 1,
		OnReject:      func(_ string, err error) { rejected = append(rejected, err) },
	})

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- b.Execute(context.Background(), func(context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	if b.InUse() != 1 {
		t.Errorf("InUse() = %d, want 1", b.InUse())
	}

	called := false
	err := b.Execute(context.Background(), func(context.Context) error {
		called = true
		return nil
	})
	if !errors.Is(err, ErrBulkheadFull) {
		t.Fatalf("err = %v, want ErrBulkheadFull", err)
	}
	if called {
		t.Error("fn must not run when rejected")
	}
	if len(rejected) != 1 {
		t.Errorf("OnReject calls = %d, want 1", len(rejected))
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first call: %v", err)
	}
	if b.InUse() != 0 {
		t.Errorf("InUse() = %d after release, want 0", b.InUse())
	}
}

func TestBulkhead_WaitTimeout(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 1, MaxWait: 20 * time.Millisecond})

	started := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = b.Execute(context.Background(), func(context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started
	defer close(release)

	err := b.Execute(context.Background(), func(context.Context) error { return nil })
	if !errors.Is(err, ErrBulkheadTimeout) {
		t.Fatalf("err = %v, want ErrBulkheadTimeout", err)
	}
}

func TestBulkhead_WaitsForSlot(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 2, MaxWait: 5 * time.Second})

	var (
		mu      sync.Mutex
		active  int
		maxSeen int
		wg      sync.WaitGroup
	)
	for range 6 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := b.Execute(context.Background(), func(context.Context) error {
				mu.Lock()
				active++
				maxSeen = max(maxSeen, active)
				mu.Unlock()
				time.Sleep(5 * time.Millisecond)
				mu.Lock()
				active--
				mu.Unlock()
				return nil
			})
			if err != nil {
				t.Errorf("Execute: %v", err)
			}
		}()
	}
	wg.Wait()

	if maxSeen > 2 {
		t.Errorf("observed %d concurrent calls, want at most 2", maxSeen)
	}
}

func TestBulkhead_PropagatesFnError(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{})
	if b.MaxConcurrent() != 4 {
		t.Errorf("default MaxConcurrent = %d, want 4", b.MaxConcurrent())
	}
	if err := b.Execute(context.Background(), func(context.Context) error { return errTest }); !errors.Is(err, errTest) {
		t.Fatalf("err = %v, want errTest", err)
	}
}
