package resilience

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// Admission errors. Both mean "try again later".
var (
	ErrBulkheadFull    = errors.New("bulkhead is full")
	ErrBulkheadTimeout = errors.New("bulkhead wait timeout")
)

// BulkheadConfig configures a [Bulkhead].
type BulkheadConfig struct {
	// Name identifies the bulkhead in logs.
	Name string

	// MaxConcurrent is the number of calls allowed to run at once. Default: 4.
	MaxConcurrent int

	// MaxWait is how long a call may wait for a slot. Zero rejects
	// immediately when every slot is taken.
	MaxWait time.Duration

	// OnReject is called whenever a call is turned away.
	OnReject func(name string, err error)
}

// Bulkhead bounds concurrency. Calls beyond capacity fail fast (or after
// MaxWait) instead of piling up.
type Bulkhead struct {
	cfg   BulkheadConfig
	sem   *semaphore.Weighted
	inUse atomic.Int64
}

// NewBulkhead creates a [Bulkhead].
func NewBulkhead(cfg BulkheadConfig) *Bulkhead {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 4
	}
	return &Bulkhead{
		cfg: cfg,
		sem: semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
	}
}

// Execute runs fn inside a slot. It returns [ErrBulkheadFull] or
// [ErrBulkheadTimeout] without calling fn when no slot becomes available, or
// ctx.Err() if ctx ends while waiting.
func (b *Bulkhead) Execute(ctx context.Context, fn func(context.Context) error) error {
	if err := b.acquire(ctx); err != nil {
		if b.cfg.OnReject != nil {
			b.cfg.OnReject(b.cfg.Name, err)
		}
		return err
	}
	b.inUse.Add(1)
	defer func() {
		b.inUse.Add(-1)
		b.sem.Release(1)
	}()
	return fn(ctx)
}

func (b *Bulkhead) acquire(ctx context.Context) error {
	if b.sem.TryAcquire(1) {
		return nil
	}
	if b.cfg.MaxWait <= 0 {
		return ErrBulkheadFull
	}

	waitCtx, cancel := context.WithTimeout(ctx, b.cfg.MaxWait)
	defer cancel()
	if err := b.sem.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrBulkheadTimeout
	}
	return nil
}

// InUse returns the number of slots currently held.
func (b *Bulkhead) InUse() int { return int(b.inUse.Load()) }

// MaxConcurrent returns the configured capacity.
func (b *Bulkhead) MaxConcurrent() int { return b.cfg.MaxConcurrent }
