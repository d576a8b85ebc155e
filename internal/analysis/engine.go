// Package analysis runs the speech-analysis pipeline: it decodes an uploaded
// recording, transcribes it, extracts the features in parallel, grades them
// and assembles the report.
//
// Every stage is a pure function of the request and the engine's settings.
// The engine itself holds no per-request state, so one [Engine] serves any
// number of concurrent analyses. Settings can be swapped at runtime with
// [Engine.Configure]; an analysis always runs to completion with the settings
// it started with.
package analysis

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/MrWong99/orator/internal/features"
	"github.com/MrWong99/orator/internal/observe"
	"github.com/MrWong99/orator/internal/report"
	"github.com/MrWong99/orator/internal/scoring"
	"github.com/MrWong99/orator/pkg/audio"
	"github.com/MrWong99/orator/pkg/provider/stt"
	"github.com/MrWong99/orator/pkg/provider/vad"
	"github.com/MrWong99/orator/pkg/types"
)

const (
	defaultMinDuration = 10 * time.Second
	defaultTimeout     = 300 * time.Second

	// silenceRatio is the share of speech frames below which a recording is
	// treated as silent and not sent to the STT backend.
	silenceRatio = 0.02

	silenceFrameMs = 20

	// keywordBoost is the hint strength given to topic keywords.
	keywordBoost = 2
)

// Request is one recording to analyse. Enum fields left empty take their
// documented defaults.
type Request struct {
	Audio    []byte
	Filename string

	UserID string
	Title  string
	Topic  string

	Expected types.DurationBucket
	Gender   types.Gender
	Depth    types.Depth
}

// Settings is the hot-reloadable part of the engine configuration.
type Settings struct {
	Features features.Config

	// MinDuration rejects recordings shorter than this. Default 10s.
	MinDuration time.Duration

	// Timeout bounds a whole analysis. Default 300s.
	Timeout time.Duration

	// Language is passed to the STT backend.
	Language string
}

func (s Settings) withDefaults() Settings {
	if s.MinDuration <= 0 {
		s.MinDuration = defaultMinDuration
	}
	if s.Timeout <= 0 {
		s.Timeout = defaultTimeout
	}
	return s
}

// tuning is a compiled Settings value. It is never mutated after Configure
// stores it.
type tuning struct {
	Settings
	extractor *features.Extractor
}

// Engine runs analyses. It is safe for concurrent use.
type Engine struct {
	decoder  *audio.Decoder
	stt      stt.Provider
	sttName  string
	vad      vad.Engine
	metrics  *observe.Metrics
	settings Settings

	tuning atomic.Pointer[tuning]

	now   func() time.Time
	newID func() string
}

// Option is a functional option for configuring an Engine during construction.
type Option func(*Engine)

// WithVAD enables silence detection before transcription and restricts the
// voice contours to speech frames.
func WithVAD(v vad.Engine) Option {
	return func(e *Engine) { e.vad = v }
}

// WithMetrics sets the metrics sink. Default is [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithSettings sets the initial settings.
func WithSettings(s Settings) Option {
	return func(e *Engine) { e.settings = s }
}

// WithProviderName sets the label used for the STT backend in metrics and in
// reports whose transcript does not name its producer.
func WithProviderName(name string) Option {
	return func(e *Engine) { e.sttName = name }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator overrides the analysis id generator.
func WithIDGenerator(f func() string) Option {
	return func(e *Engine) { e.newID = f }
}

// New constructs an Engine that decodes with dec and transcribes with p.
func New(dec *audio.Decoder, p stt.Provider, opts ...Option) *Engine {
	e := &Engine{
		decoder: dec,
		stt:     p,
		sttName: "stt",
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, o := range opts {
		o(e)
	}
	if e.metrics == nil {
		e.metrics = observe.DefaultMetrics()
	}
	e.Configure(e.settings)
	return e
}

// Configure replaces the engine settings. Analyses already running keep the
// settings they started with.
func (e *Engine) Configure(s Settings) {
	s = s.withDefaults()
	cfg := s.Features
	if cfg.VAD == nil {
		cfg.VAD = e.vad
	}
	e.tuning.Store(&tuning{Settings: s, extractor: features.New(cfg)})
}

// Settings returns the settings currently in effect.
func (e *Engine) Settings() Settings { return e.tuning.Load().Settings }

// Analyze runs the full pipeline over req. Failures are returned as [*Error];
// degraded extraction is not a failure and yields a report with status
// partial.
func (e *Engine) Analyze(ctx context.Context, req Request) (report.Report, error) {
	start := e.now()
	t := e.tuning.Load()

	req, err := normalizeRequest(req)
	if err != nil {
		e.metrics.RecordAnalysisError(ctx, KindInvalidRequest.Code())
		return report.Report{}, err
	}

	ctx, span := observe.StartSpan(ctx, "analysis.Analyze",
		trace.WithAttributes(
			attribute.String("analysis.depth", string(req.Depth)),
			attribute.String("analysis.expected", string(req.Expected)),
			attribute.Int("analysis.upload_bytes", len(req.Audio)),
		),
	)
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, t.Timeout)
	defer cancel()

	e.metrics.ActiveAnalyses.Add(ctx, 1)
	defer e.metrics.ActiveAnalyses.Add(context.WithoutCancel(ctx), -1)

	rep, err := e.run(ctx, t, req, start)
	if err != nil {
		err = classify(ctx, err)
		kind := KindOf(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, kind.Code())
		e.metrics.RecordAnalysisError(context.WithoutCancel(ctx), kind.Code())
		level := slog.LevelWarn
		if kind == KindCanceled {
			level = slog.LevelInfo
		}
		observe.Logger(ctx).Log(ctx, level, "analysis failed",
			"user_id", req.UserID,
			"kind", kind.Code(),
			"elapsed", e.now().Sub(start),
			"err", err,
		)
		return report.Report{}, err
	}

	span.SetAttributes(
		attribute.String("analysis.id", rep.AnalysisID),
		attribute.String("analysis.status", string(rep.Status)),
		attribute.Float64("analysis.overall_score", rep.OverallScore),
	)
	e.metrics.RecordAnalysis(ctx, string(rep.Status), e.now().Sub(start))
	observe.Logger(ctx).Info("analysis completed",
		"analysis_id", rep.AnalysisID,
		"user_id", rep.UserID,
		"status", rep.Status,
		"overall_score", rep.OverallScore,
		"words", rep.WordCount,
		"elapsed", e.now().Sub(start),
	)
	return rep, nil
}

// AnalyzeQuick runs the pipeline at basic depth and returns the reduced
// quick-analyze report.
func (e *Engine) AnalyzeQuick(ctx context.Context, req Request) (report.QuickReport, error) {
	req.Depth = types.DepthBasic
	rep, err := e.Analyze(ctx, req)
	if err != nil {
		return report.QuickReport{}, err
	}
	return report.Quick(rep), nil
}

func normalizeRequest(req Request) (Request, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" {
		return req, Errorf(KindInvalidRequest, "user_id is required")
	}
	if len(req.Audio) == 0 {
		return req, Errorf(KindInvalidRequest, "audio_file is required")
	}
	var err error
	if req.Expected, err = types.ParseDurationBucket(string(req.Expected)); err != nil {
		return req, newError(KindInvalidRequest, err)
	}
	if req.Gender, err = types.ParseGender(string(req.Gender)); err != nil {
		return req, newError(KindInvalidRequest, err)
	}
	if req.Depth, err = types.ParseDepth(string(req.Depth)); err != nil {
		return req, newError(KindInvalidRequest, err)
	}
	req.Topic = strings.TrimSpace(req.Topic)
	req.Title = strings.TrimSpace(req.Title)
	return req, nil
}

func (e *Engine) run(ctx context.Context, t *tuning, req Request, start time.Time) (report.Report, error) {
	pcm, container, err := e.ingest(ctx, t, req)
	if err != nil {
		return report.Report{}, err
	}

	tr, err := e.transcribe(ctx, t, req, pcm)
	if err != nil {
		return report.Report{}, err
	}

	in, err := e.extract(ctx, t, req, pcm, tr.Words)
	if err != nil {
		return report.Report{}, err
	}

	scoreStart := e.now()
	res := scoring.Score(in)
	if err := res.Validate(); err != nil {
		return report.Report{}, newError(KindInternalScoring, err)
	}
	e.metrics.RecordStage(ctx, observe.StageScore, e.now().Sub(scoreStart))

	provider := tr.Provider
	if provider == "" && len(tr.Words) > 0 {
		provider = e.sttName
	}
	return report.Build(report.Meta{
		AnalysisID: e.newID(),
		UserID:     req.UserID,
		Title:      req.Title,
		Topic:      req.Topic,
		Expected:   req.Expected,
		Depth:      req.Depth,
		Gender:     req.Gender,
		Format:     string(container),
		Size:       int64(len(req.Audio)),
		SampleRate: pcm.SampleRate,
		Provider:   provider,
		Text:       tr.Text,
		Words:      tr.Words,
		CreatedAt:  start.UTC(),
		Elapsed:    e.now().Sub(start),
	}, in, res), nil
}

// ingest detects the container, decodes the upload and enforces the minimum
// duration.
func (e *Engine) ingest(ctx context.Context, t *tuning, req Request) (audio.PCM, audio.Container, error) {
	ctx, span := observe.StartSpan(ctx, "analysis.ingest")
	defer span.End()
	start := e.now()
	defer func() { e.metrics.RecordStage(ctx, observe.StageIngest, e.now().Sub(start)) }()

	header := req.Audio
	if len(header) > 16 {
		header = header[:16]
	}
	container, err := audio.DetectContainer(req.Filename, header)
	if err != nil {
		return audio.PCM{}, "", err
	}
	span.SetAttributes(attribute.String("audio.container", string(container)))

	pcm, err := e.decoder.Decode(ctx, req.Audio, container)
	if err != nil {
		return audio.PCM{}, container, err
	}
	if d := pcm.Duration(); d < t.MinDuration {
		return audio.PCM{}, container, Errorf(KindAudioTooShort,
			"recording is %.1fs, need at least %.0fs", d.Seconds(), t.MinDuration.Seconds())
	}
	span.SetAttributes(attribute.Float64("audio.duration_s", pcm.Duration().Seconds()))
	return pcm, container, nil
}

// transcribe obtains the word-aligned transcript. A recording the VAD finds
// silent yields an empty transcript without calling the backend.
func (e *Engine) transcribe(ctx context.Context, t *tuning, req Request, pcm audio.PCM) (stt.Transcript, error) {
	ctx, span := observe.StartSpan(ctx, "analysis.transcribe")
	defer span.End()

	if e.silent(ctx, pcm) {
		span.SetAttributes(attribute.Bool("audio.silent", true))
		return stt.Transcript{}, nil
	}

	var boosts []stt.KeywordBoost
	for _, kw := range features.TopicKeywords(req.Topic) {
		boosts = append(boosts, stt.KeywordBoost{Keyword: kw, Boost: keywordBoost})
	}

	start := e.now()
	tr, err := e.stt.Transcribe(ctx, stt.Request{
		Audio:    pcm,
		Language: t.Language,
		Keywords: boosts,
	})
	elapsed := e.now().Sub(start)
	e.metrics.STTDuration.Record(ctx, elapsed.Seconds())
	e.metrics.RecordStage(ctx, observe.StageTranscribe, elapsed)
	if err != nil {
		e.metrics.RecordProviderRequest(ctx, e.sttName, "stt", "error")
		if ctx.Err() != nil {
			return stt.Transcript{}, ctx.Err()
		}
		if KindOf(err) == KindInternal {
			err = newError(KindTranscriptionUnavailable, err)
		}
		return stt.Transcript{}, err
	}
	e.metrics.RecordProviderRequest(ctx, e.sttName, "stt", "ok")

	tr = tr.Normalize()
	span.SetAttributes(
		attribute.String("stt.provider", tr.Provider),
		attribute.Int("stt.words", len(tr.Words)),
	)
	return tr, nil
}

// silent reports whether the VAD found (almost) no speech in pcm. Without a
// VAD, or when it rejects its configuration, nothing is silent.
func (e *Engine) silent(ctx context.Context, pcm audio.PCM) bool {
	if e.vad == nil {
		return false
	}
	mask, err := vad.SpeechMask(e.vad, vad.Config{
		SampleRate:       pcm.SampleRate,
		FrameSizeMs:      silenceFrameMs,
		SpeechThreshold:  0.5,
		SilenceThreshold: 0.35,
	}, pcm.Samples)
	if err != nil {
		observe.Logger(ctx).Debug("silence check skipped", "err", err)
		return false
	}
	return vad.SpeechRatio(mask) < silenceRatio
}

// extract runs the extractors concurrently. Only the voice analysis can fail;
// it degrades to an unavailable voice score unless the analysis itself ran
// out of time. Pronunciation is measured above basic depth.
func (e *Engine) extract(ctx context.Context, t *tuning, req Request, pcm audio.PCM, words []types.Word) (scoring.Input, error) {
	ctx, span := observe.StartSpan(ctx, "analysis.extract")
	defer span.End()
	start := e.now()
	defer func() { e.metrics.RecordStage(ctx, observe.StageExtract, e.now().Sub(start)) }()

	in := features.NewInput(pcm, words, req.Topic, req.Expected, req.Gender)
	x := t.extractor
	out := scoring.Input{EmptyTranscript: len(words) == 0}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out.Filler = x.Filler(in)
		out.Pause = x.Pause(in)
		return nil
	})
	g.Go(func() error {
		out.Structure = x.Structure(in)
		return nil
	})
	g.Go(func() error {
		out.Vocabulary = x.Vocabulary(in)
		out.Grammar = x.Grammar(in)
		return nil
	})
	g.Go(func() error {
		out.Topic = x.Topic(in)
		out.Effectiveness = x.Effectiveness(in)
		return nil
	})
	g.Go(func() error {
		v, err := x.Voice(gctx, in)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			observe.Logger(ctx).Warn("voice analysis degraded", "err", err)
			return nil
		}
		out.Voice = &v
		return nil
	})
	if req.Depth != types.DepthBasic {
		g.Go(func() error {
			p, err := x.Pronunciation(gctx, in)
			if err != nil {
				return err
			}
			out.Pronunciation = &p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return scoring.Input{}, err
	}
	if ctx.Err() != nil {
		return scoring.Input{}, ctx.Err()
	}
	return out, nil
}

// classify turns err into an [*Error]. Anything that failed after the
// analysis deadline passed is a timeout, whatever the stage reported.
func classify(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		var ae *Error
		if !errors.As(err, &ae) || ae.Kind != KindInternalScoring {
			return newError(KindTimeout, err)
		}
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	kind := KindOf(err)
	if kind == KindInternal {
		slog.Error("analysis: unclassified failure", "err", err)
	}
	return newError(kind, err)
}
