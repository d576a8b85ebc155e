package analysis

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/MrWong99/orator/internal/resilience"
	"github.com/MrWong99/orator/pkg/audio"
)

// Kind classifies an analysis failure.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidRequest
	KindUnsupportedFormat
	KindPayloadTooLarge
	KindDecode
	KindAudioTooShort
	KindTimeout
	KindTranscriptionUnavailable
	KindInternalScoring
	KindBusy
	KindCanceled
)

// statusClientClosedRequest is the de facto status for a request the client
// abandoned before the response was written.
const statusClientClosedRequest = 499

var kindCodes = map[Kind]string{
	KindInternal:                 "internal_error",
	KindInvalidRequest:           "invalid_request",
	KindUnsupportedFormat:        "unsupported_format",
	KindPayloadTooLarge:          "payload_too_large",
	KindDecode:                   "decode_error",
	KindAudioTooShort:            "audio_too_short",
	KindTimeout:                  "analysis_timeout",
	KindTranscriptionUnavailable: "transcription_service_unavailable",
	KindInternalScoring:          "internal_scoring_error",
	KindBusy:                     "server_busy",
	KindCanceled:                 "client_closed_request",
}

// Code returns the machine-readable wire code.
func (k Kind) Code() string {
	if c, ok := kindCodes[k]; ok {
		return c
	}
	return kindCodes[KindInternal]
}

func (k Kind) String() string { return k.Code() }

// HTTPStatus maps the kind to a response status.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindInvalidRequest:
		return http.StatusBadRequest
	case KindUnsupportedFormat:
		return http.StatusUnsupportedMediaType
	case KindPayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case KindDecode, KindAudioTooShort:
		return http.StatusUnprocessableEntity
	case KindTimeout:
		return http.StatusGatewayTimeout
	case KindTranscriptionUnavailable, KindBusy:
		return http.StatusServiceUnavailable
	case KindCanceled:
		return statusClientClosedRequest
	default:
		return http.StatusInternalServerError
	}
}

// Retryable reports whether the same request may succeed later. Malformed
// input never does.
func (k Kind) Retryable() bool {
	switch k {
	case KindTimeout, KindTranscriptionUnavailable, KindBusy, KindCanceled:
		return true
	default:
		return false
	}
}

// Error is an analysis failure with its classification.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return "analysis: " + e.Kind.Code()
	}
	return fmt.Sprintf("analysis: %s: %v", e.Kind.Code(), e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(k Kind, err error) *Error { return &Error{Kind: k, Err: err} }

// Errorf builds an [Error] of kind k with a formatted cause.
func Errorf(k Kind, format string, args ...any) *Error {
	return newError(k, fmt.Errorf(format, args...))
}

// KindOf classifies err. An [*Error] anywhere in the chain wins; otherwise
// well-known sentinels of the audio, resilience and context packages are
// mapped, and anything else is internal.
func KindOf(err error) Kind {
	var ae *Error
	switch {
	case err == nil:
		return KindInternal
	case errors.As(err, &ae):
		return ae.Kind
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, context.Canceled):
		return KindCanceled
	case errors.Is(err, audio.ErrUnsupportedFormat):
		return KindUnsupportedFormat
	case errors.Is(err, audio.ErrDecode):
		return KindDecode
	case errors.Is(err, resilience.ErrBulkheadFull), errors.Is(err, resilience.ErrBulkheadTimeout):
		return KindBusy
	case errors.Is(err, resilience.ErrAllFailed), errors.Is(err, resilience.ErrCircuitOpen):
		return KindTranscriptionUnavailable
	default:
		return KindInternal
	}
}
