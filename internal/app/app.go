// Package app wires the Orator subsystems into a running HTTP service.
//
// The App struct owns the full lifecycle: New builds the decoder, the STT
// failover chain, the analysis engine and the HTTP surface; Run serves until
// the context is cancelled; Shutdown drains in-flight requests and releases
// providers in order.
//
// Providers are built by main.go from the config registry and handed in via
// [Providers], so tests can pass mocks.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrWong99/orator/internal/analysis"
	"github.com/MrWong99/orator/internal/config"
	"github.com/MrWong99/orator/internal/features"
	"github.com/MrWong99/orator/internal/health"
	"github.com/MrWong99/orator/internal/observe"
	"github.com/MrWong99/orator/internal/resilience"
	"github.com/MrWong99/orator/internal/server"
	"github.com/MrWong99/orator/pkg/audio"
	"github.com/MrWong99/orator/pkg/provider/stt"
	"github.com/MrWong99/orator/pkg/provider/vad"
)

const (
	readHeaderTimeout = 10 * time.Second
	idleTimeout       = 120 * time.Second
)

// STTBackend is one named transcription provider.
type STTBackend struct {
	Name     string
	Provider stt.Provider
}

// Providers holds the constructed backends. STT[0] is the primary; the rest
// are fallbacks in order. A nil VAD disables silence detection.
type Providers struct {
	STT []STTBackend
	VAD vad.Engine
}

// App owns all subsystem lifetimes.
type App struct {
	cfg       *config.Config
	providers *Providers

	version        string
	configPath     string
	level          *slog.LevelVar
	metrics        *observe.Metrics
	metricsHandler http.Handler

	// Subsystems, initialised in New and torn down in Shutdown.
	decoder    *audio.Decoder
	stt        *resilience.STTFallback
	engine     *analysis.Engine
	server     *server.Server
	health     *health.Handler
	handler    http.Handler
	httpServer *http.Server
	watcher    *config.Watcher

	// closers are called in order during Shutdown.
	closers []func() error

	stopOnce sync.Once
}

// Option is a functional option for New.
type Option func(*App)

// WithVersion sets the version reported on /health.
func WithVersion(v string) Option {
	return func(a *App) { a.version = v }
}

// WithLogLevel hands New the level variable of the process logger so that
// log_level can be changed by a config reload.
func WithLogLevel(l *slog.LevelVar) Option {
	return func(a *App) { a.level = l }
}

// WithConfigWatch enables hot reload from the config file at path.
func WithConfigWatch(path string) Option {
	return func(a *App) { a.configPath = path }
}

// WithMetrics injects the metrics sink instead of [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(a *App) { a.metrics = m }
}

// WithMetricsHandler overrides the handler mounted at telemetry.metrics_path.
// The default is the Prometheus handler of the default registry.
func WithMetricsHandler(h http.Handler) Option {
	return func(a *App) { a.metricsHandler = h }
}

// ─── New ─────────────────────────────────────────────────────────────────────

// New creates an App by wiring all subsystems together. It fails when no STT
// backend is supplied or the config watcher cannot start.
func New(ctx context.Context, cfg *config.Config, providers *Providers, opts ...Option) (*App, error) {
	if providers == nil || len(providers.STT) == 0 {
		return nil, errors.New("app: at least one STT provider is required")
	}
	a := &App{
		cfg:       cfg,
		providers: providers,
		version:   "dev",
	}
	for _, o := range opts {
		o(a)
	}
	if a.metrics == nil {
		a.metrics = observe.DefaultMetrics()
	}
	if a.metricsHandler == nil {
		a.metricsHandler = promhttp.Handler()
	}

	// ── 1. Decoder ───────────────────────────────────────────────────────
	a.decoder = audio.NewDecoder(
		audio.WithSampleRate(cfg.Audio.SampleRate),
		audio.WithFFmpegPath(cfg.Audio.FFmpegPath),
	)

	// ── 2. STT failover chain ────────────────────────────────────────────
	a.initSTT()

	// ── 3. Analysis engine ───────────────────────────────────────────────
	engineOpts := []analysis.Option{
		analysis.WithMetrics(a.metrics),
		analysis.WithSettings(Settings(cfg)),
		analysis.WithProviderName(providers.STT[0].Name),
	}
	if providers.VAD != nil {
		engineOpts = append(engineOpts, analysis.WithVAD(providers.VAD))
	}
	a.engine = analysis.New(a.decoder, a.stt, engineOpts...)

	// ── 4. HTTP surface ──────────────────────────────────────────────────
	a.server = server.New(a.engine, server.Config{
		MaxUploadBytes: cfg.Limits.MaxUploadBytes,
		MaxConcurrent:  cfg.Limits.MaxConcurrent,
		QueueWait:      cfg.Limits.QueueWait,
	}, server.WithMetrics(a.metrics))

	a.health = health.New(
		health.WithService(cfg.Telemetry.ServiceName, a.version),
		health.WithCapacity(func() health.Capacity {
			return health.Capacity{InUse: a.server.InUse(), Max: a.server.Capacity()}
		}),
		health.WithCheckers(health.Checker{Name: "stt", Check: a.checkSTT}),
	)

	mux := http.NewServeMux()
	a.server.Register(mux)
	a.health.Register(mux)
	mux.Handle("GET "+cfg.Telemetry.MetricsPath, a.metricsHandler)
	a.handler = observe.Middleware(a.metrics)(mux)

	a.httpServer = &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           a.handler,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	// ── 5. Hot reload ────────────────────────────────────────────────────
	if a.configPath != "" {
		w, err := config.NewWatcher(a.configPath, a.Reload)
		if err != nil {
			return nil, fmt.Errorf("app: start config watcher: %w", err)
		}
		a.watcher = w
	}

	for _, b := range providers.STT {
		if c, ok := b.Provider.(io.Closer); ok {
			a.closers = append(a.closers, c.Close)
		}
	}

	return a, nil
}

// initSTT wraps every backend in retry and a circuit breaker and chains them.
func (a *App) initSTT() {
	r := a.cfg.Transcription.Retry
	cfg := resilience.FallbackConfig{
		CircuitBreaker: resilience.CircuitBreakerConfig{Name: "stt"},
		Retry: &resilience.RetryConfig{
			MaxAttempts:    r.MaxAttempts,
			InitialBackoff: r.InitialBackoff,
			MaxBackoff:     r.MaxBackoff,
			RetryIf: func(err error) bool {
				return resilience.DefaultRetryIf(err) && !stt.IsPermanent(err)
			},
		},
		OnFailure: func(name string, err error) {
			a.metrics.RecordProviderError(context.Background(), name, "stt")
			slog.Warn("stt backend failed", "provider", name, "err", err)
		},
	}

	primary := a.providers.STT[0]
	a.stt = resilience.NewSTTFallback(primary.Provider, primary.Name, cfg)
	for _, b := range a.providers.STT[1:] {
		a.stt.AddFallback(b.Name, b.Provider)
	}
}

// checkSTT fails when every backend's circuit is open.
func (a *App) checkSTT(context.Context) error {
	states := a.stt.States()
	for _, s := range states {
		if s != resilience.StateOpen {
			return nil
		}
	}
	return fmt.Errorf("all %d stt circuits open", len(states))
}

// Settings maps the hot-reloadable part of cfg onto engine settings.
func Settings(cfg *config.Config) analysis.Settings {
	a := cfg.Analysis
	return analysis.Settings{
		Features: features.Config{
			Split:              features.Split{Intro: a.IntroFraction, Conclusion: a.ConclusionFraction},
			ExtraFillers:       a.ExtraFillers,
			ExtraAdvancedWords: a.ExtraAdvancedWords,
			EmphasisMargin:     a.EmphasisMargin,
			EmphasisMinSpacing: a.EmphasisMinSpacing,
		},
		MinDuration: cfg.Limits.MinAudioDuration,
		Timeout:     cfg.Limits.AnalysisTimeout,
		Language:    cfg.Transcription.Language,
	}
}

// Handler returns the fully wired HTTP handler.
func (a *App) Handler() http.Handler { return a.handler }

// Engine returns the analysis engine.
func (a *App) Engine() *analysis.Engine { return a.engine }

// Reload applies the hot-reloadable part of a config change and warns about
// the rest. It is the config watcher callback.
func (a *App) Reload(old, new *config.Config) {
	d := config.Diff(old, new)
	if !d.Changed() {
		return
	}
	if d.LogLevelChanged && a.level != nil {
		a.level.Set(d.NewLogLevel.Level())
		slog.Info("log level changed", "level", d.NewLogLevel)
	}
	if d.AnalysisChanged {
		a.engine.Configure(Settings(new))
		slog.Info("analysis settings reloaded")
	}
	for _, section := range d.RestartRequired {
		slog.Warn("config change requires a restart to take effect", "section", section)
	}
}

// ─── Run ─────────────────────────────────────────────────────────────────────

// Run listens on server.listen_addr and serves until ctx is cancelled, in
// which case it returns the context error. Call Shutdown afterwards to drain
// in-flight analyses.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.Server.ListenAddr)
	if err != nil {
		return fmt.Errorf("app: listen %q: %w", a.cfg.Server.ListenAddr, err)
	}

	errCh := make(chan error, 1)
	go func() {
		if tls := a.cfg.Server.TLS; tls != nil {
			errCh <- a.httpServer.ServeTLS(ln, tls.CertFile, tls.KeyFile)
			return
		}
		errCh <- a.httpServer.Serve(ln)
	}()

	slog.Info("app running",
		"addr", ln.Addr().String(),
		"tls", a.cfg.Server.TLS != nil,
		"stt", a.stt.Names(),
		"max_concurrent", a.server.Capacity(),
	)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("app: serve: %w", err)
	}
}

// ─── Shutdown ────────────────────────────────────────────────────────────────

// Shutdown stops accepting requests, waits for running analyses until ctx
// expires, then stops the config watcher and closes the providers.
func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error
	a.stopOnce.Do(func() {
		slog.Info("shutting down", "in_flight", a.server.InUse())

		if err := a.httpServer.Shutdown(ctx); err != nil {
			slog.Warn("http shutdown", "err", err)
			shutdownErr = err
		}
		if a.watcher != nil {
			a.watcher.Stop()
		}

		for i, closer := range a.closers {
			select {
			case <-ctx.Done():
				slog.Warn("shutdown deadline exceeded", "remaining", len(a.closers)-i)
				shutdownErr = ctx.Err()
				return
			default:
			}
			if err := closer(); err != nil {
				slog.Warn("closer error", "index", i, "err", err)
			}
		}

		slog.Info("shutdown complete")
	})
	return shutdownErr
}
