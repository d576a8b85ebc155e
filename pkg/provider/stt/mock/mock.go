// Package mock provides test doubles for the stt package interfaces.
//
// Use Provider to script the transcript (or failure sequence) a backend
// returns and to inspect the requests the caller made.
//
// Example:
//
//	p := &mock.Provider{
//	    Result: stt.Transcript{Words: mock.Words(0, "hello", "world")},
//	    Errs:   []error{errTransient}, // first call fails, second succeeds
//	}
//	tr, err := p.Transcribe(ctx, req)
package mock

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/MrWong99/orator/pkg/provider/stt"
	"github.com/MrWong99/orator/pkg/types"
)

// TranscribeCall records a single invocation of Provider.Transcribe.
type TranscribeCall struct {
	// Ctx is the context passed to Transcribe.
	Ctx context.Context
	// Req is the Request passed to Transcribe.
	Req stt.Request
}

// Provider is a mock implementation of stt.Provider.
type Provider struct {
	mu sync.Mutex

	// Result is returned by every successful call.
	Result stt.Transcript

	// Err, if non-nil, is returned by every call once Errs is exhausted.
	Err error

	// Errs is consumed one entry per call before Err/Result apply. A nil
	// entry makes that call succeed.
	Errs []error

	// Delay blocks each call for the given duration or until ctx is done,
	// whichever comes first.
	Delay time.Duration

	// Calls records every call to Transcribe.
	Calls []TranscribeCall
}

// Transcribe records the call and returns the scripted outcome.
func (p *Provider) Transcribe(ctx context.Context, req stt.Request) (stt.Transcript, error) {
	p.mu.Lock()
	n := len(p.Calls)
	p.Calls = append(p.Calls, TranscribeCall{Ctx: ctx, Req: req})
	delay := p.Delay
	var scripted error
	hasScripted := n < len(p.Errs)
	if hasScripted {
		scripted = p.Errs[n]
	}
	err, result := p.Err, p.Result
	p.mu.Unlock()

	if delay > 0 {
		t := time.NewTimer(delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return stt.Transcript{}, ctx.Err()
		case <-t.C:
		}
	}
	if hasScripted {
		if scripted != nil {
			return stt.Transcript{}, scripted
		}
		return result, nil
	}
	if err != nil {
		return stt.Transcript{}, err
	}
	return result, nil
}

// CallCount returns the number of Transcribe calls. Thread-safe.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Calls)
}

// Reset clears all recorded calls. Thread-safe.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls = nil
}

// Ensure Provider implements stt.Provider at compile time.
var _ stt.Provider = (*Provider)(nil)

// Words lays out the given tokens back to back: each word lasts 300 ms and
// is followed by a 100 ms gap, starting at start. Multi-word strings are
// split on whitespace.
func Words(start time.Duration, tokens ...string) []types.Word {
	const (
		wordLen = 300 * time.Millisecond
		gap     = 100 * time.Millisecond
	)
	var out []types.Word
	at := start
	for _, tok := range tokens {
		for _, f := range strings.Fields(tok) {
			out = append(out, types.Word{Text: f, Start: at, End: at + wordLen, Confidence: 1})
			at += wordLen + gap
		}
	}
	return out
}

// Transcript builds a Transcript whose text is the space-joined words.
func Transcript(words []types.Word) stt.Transcript {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = w.Text
	}
	return stt.Transcript{Text: strings.Join(parts, " "), Words: words, Provider: "mock"}
}
