package resilience

import (
	"context"

	"github.com/MrWong99/orator/pkg/provider/stt"
)

// STTFallback implements [stt.Provider] with automatic failover across multiple
// STT backends. Each backend has its own circuit breaker and, when the config
// carries a retry policy, is retried with backoff before the next one is tried.
type STTFallback struct {
	group *FallbackGroup[stt.Provider]
}

// Compile-time interface assertion.
var _ stt.Provider = (*STTFallback)(nil)

// NewSTTFallback creates an [STTFallback] with primary as the preferred backend.
// Rejections that retrying cannot fix (bad credentials, malformed request) do
// not count against a backend's breaker unless cfg overrides IsFailure.
func NewSTTFallback(primary stt.Provider, primaryName string, cfg FallbackConfig) *STTFallback {
	if cfg.CircuitBreaker.IsFailure == nil {
		cfg.CircuitBreaker.IsFailure = func(err error) bool {
			return defaultIsFailure(err) && !stt.IsPermanent(err)
		}
	}
	return &STTFallback{
		group: NewFallbackGroup(primary, primaryName, cfg),
	}
}

// AddFallback registers an additional STT provider as a fallback.
func (f *STTFallback) AddFallback(name string, provider stt.Provider) {
	f.group.AddFallback(name, provider)
}

// Names returns the configured backends in failover order.
func (f *STTFallback) Names() []string { return f.group.Names() }

// Transcribe runs the request against the first healthy provider, moving on
// to the next one when a provider fails or its circuit is open.
func (f *STTFallback) Transcribe(ctx context.Context, req stt.Request) (stt.Transcript, error) {
	return ExecuteWithResult(ctx, f.group, func(ctx context.Context, p stt.Provider) (stt.Transcript, error) {
		return p.Transcribe(ctx, req)
	})
}

// States returns the circuit breaker state of every backend.
func (f *STTFallback) States() map[string]State { return f.group.States() }
