// Package server exposes the analysis engine over HTTP.
//
// Routes:
//
//   - POST /api/v2/analyze        full report
//   - POST /analyze               same, for older mobile clients
//   - POST /api/v2/quick-analyze  reduced report at basic depth
//
// Requests are multipart forms carrying the recording in audio_file plus the
// descriptive fields. Admission is bounded: when every analysis slot is taken
// the server answers 503 with Retry-After instead of queueing.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/MrWong99/orator/internal/analysis"
	"github.com/MrWong99/orator/internal/observe"
	"github.com/MrWong99/orator/internal/report"
	"github.com/MrWong99/orator/internal/resilience"
	"github.com/MrWong99/orator/pkg/types"
)

const (
	// DefaultMaxUploadBytes is the largest accepted recording.
	DefaultMaxUploadBytes = 50 << 20

	// formOverhead is the room left for the non-file form fields and the
	// multipart framing on top of the recording itself.
	formOverhead = 1 << 20

	// memoryLimit is how much of a multipart form is held in memory before
	// spilling to temporary files.
	memoryLimit = 8 << 20

	retryAfterSeconds = 5
)

// Form field names.
const (
	FieldAudio    = "audio_file"
	FieldUserID   = "user_id"
	FieldTopic    = "topic"
	FieldExpected = "expected_duration"
	FieldGender   = "gender"
	FieldDepth    = "analysis_depth"
	FieldTitle    = "speech_title"
)

// Analyzer runs analyses. [*analysis.Engine] implements it.
type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (report.Report, error)
	AnalyzeQuick(ctx context.Context, req analysis.Request) (report.QuickReport, error)
}

var _ Analyzer = (*analysis.Engine)(nil)

// Config tunes admission and upload limits.
type Config struct {
	// MaxUploadBytes caps the recording size. Default 50 MiB.
	MaxUploadBytes int64

	// MaxConcurrent is the number of analyses allowed to run at once.
	// Default 4.
	MaxConcurrent int

	// QueueWait is how long a request may wait for a free slot. Zero rejects
	// at once.
	QueueWait time.Duration
}

// Server holds the HTTP handlers. It is safe for concurrent use.
type Server struct {
	analyzer  Analyzer
	admission *resilience.Bulkhead
	metrics   *observe.Metrics
	maxUpload int64
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics sets the metrics sink. Default is [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// New creates a Server that hands requests to a.
func New(a Analyzer, cfg Config, opts ...Option) *Server {
	s := &Server{analyzer: a, maxUpload: cfg.MaxUploadBytes}
	for _, o := range opts {
		o(s)
	}
	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}
	if s.maxUpload <= 0 {
		s.maxUpload = DefaultMaxUploadBytes
	}
	s.admission = resilience.NewBulkhead(resilience.BulkheadConfig{
		Name:          "analysis",
		MaxConcurrent: cfg.MaxConcurrent,
		MaxWait:       cfg.QueueWait,
		OnReject: func(name string, err error) {
			reason := "full"
			if errors.Is(err, resilience.ErrBulkheadTimeout) {
				reason = "wait_timeout"
			}
			s.metrics.RecordAdmissionRejected(context.Background(), reason)
		},
	})
	return s
}

// Register adds the analysis routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v2/analyze", s.Analyze)
	mux.HandleFunc("POST /analyze", s.Analyze)
	mux.HandleFunc("POST /api/v2/quick-analyze", s.QuickAnalyze)
}

// InUse returns the number of analyses currently admitted.
func (s *Server) InUse() int { return s.admission.InUse() }

// Capacity returns the admission limit.
func (s *Server) Capacity() int { return s.admission.MaxConcurrent() }

// Analyze serves the full analysis endpoint.
func (s *Server) Analyze(w http.ResponseWriter, r *http.Request) {
	s.serve(w, r, func(ctx context.Context, req analysis.Request) (any, error) {
		return s.analyzer.Analyze(ctx, req)
	})
}

// QuickAnalyze serves the quick-analyze endpoint.
func (s *Server) QuickAnalyze(w http.ResponseWriter, r *http.Request) {
	s.serve(w, r, func(ctx context.Context, req analysis.Request) (any, error) {
		return s.analyzer.AnalyzeQuick(ctx, req)
	})
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request, run func(context.Context, analysis.Request) (any, error)) {
	var resp any
	err := s.admission.Execute(r.Context(), func(ctx context.Context) error {
		req, err := s.parse(w, r)
		if err != nil {
			return err
		}
		resp, err = run(ctx, req)
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// parse reads the multipart form into an analysis request.
func (s *Server) parse(w http.ResponseWriter, r *http.Request) (analysis.Request, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload+formOverhead)
	if err := r.ParseMultipartForm(memoryLimit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return analysis.Request{}, analysis.Errorf(analysis.KindPayloadTooLarge,
				"upload exceeds %d MB", s.maxUpload>>20)
		}
		return analysis.Request{}, analysis.Errorf(analysis.KindInvalidRequest, "malformed multipart form: %v", err)
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile(FieldAudio)
	if err != nil {
		return analysis.Request{}, analysis.Errorf(analysis.KindInvalidRequest, "%s is required", FieldAudio)
	}
	defer file.Close()
	if header.Size > s.maxUpload {
		return analysis.Request{}, analysis.Errorf(analysis.KindPayloadTooLarge,
			"recording is %d bytes, limit is %d MB", header.Size, s.maxUpload>>20)
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return analysis.Request{}, analysis.Errorf(analysis.KindInvalidRequest, "read %s: %v", FieldAudio, err)
	}

	return analysis.Request{
		Audio:    data,
		Filename: header.Filename,
		UserID:   r.FormValue(FieldUserID),
		Title:    r.FormValue(FieldTitle),
		Topic:    r.FormValue(FieldTopic),
		Expected: types.DurationBucket(r.FormValue(FieldExpected)),
		Gender:   types.Gender(r.FormValue(FieldGender)),
		Depth:    types.Depth(r.FormValue(FieldDepth)),
	}, nil
}

// errorBody is the wire form of a failed request.
type errorBody struct {
	Status types.Status `json:"status"`
	Error  errorDetail  `json:"error"`
}

type errorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

var kindMessages = map[analysis.Kind]string{
	analysis.KindInternal:                 "The analysis failed unexpectedly.",
	analysis.KindTimeout:                  "The analysis took too long. Please try again.",
	analysis.KindTranscriptionUnavailable: "The transcription service is unavailable. Please try again later.",
	analysis.KindInternalScoring:          "The recording could not be scored.",
	analysis.KindBusy:                     "The server is busy. Please try again shortly.",
	analysis.KindCanceled:                 "The request was cancelled before the analysis finished.",
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := analysis.KindOf(err)
	if errors.Is(err, context.Canceled) && r.Context().Err() != nil {
		observe.Logger(r.Context()).Debug("client went away", "path", r.URL.Path)
		return
	}

	msg, ok := kindMessages[kind]
	if !ok {
		msg = err.Error()
		var ae *analysis.Error
		if errors.As(err, &ae) && ae.Err != nil {
			msg = ae.Err.Error()
		}
	}

	status := kind.HTTPStatus()
	if kind == analysis.KindBusy {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
	}
	log := observe.Logger(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error("request failed", "path", r.URL.Path, "code", kind.Code(), "err", err)
	} else {
		log.Info("request rejected", "path", r.URL.Path, "code", kind.Code(), "err", err)
	}

	writeJSON(w, status, errorBody{
		Status: types.StatusFailed,
		Error: errorDetail{
			Code:      kind.Code(),
			Message:   msg,
			Retryable: kind.Retryable(),
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("server: encode response", "err", err)
	}
}
