// Command orator is the entry point for the Orator speech-analysis server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/MrWong99/orator/internal/app"
	"github.com/MrWong99/orator/internal/config"
	"github.com/MrWong99/orator/internal/observe"
	"github.com/MrWong99/orator/pkg/provider/stt"
	"github.com/MrWong99/orator/pkg/provider/stt/deepgram"
	oaistt "github.com/MrWong99/orator/pkg/provider/stt/openai"
	"github.com/MrWong99/orator/pkg/provider/stt/whisper"
	"github.com/MrWong99/orator/pkg/provider/vad"
	"github.com/MrWong99/orator/pkg/provider/vad/energy"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	watch := flag.Bool("watch", true, "reload the configuration file when it changes")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("orator", version)
		return 0
	}

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "orator: config file %q not found; copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "orator: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	level := new(slog.LevelVar)
	level.Set(cfg.Server.LogLevel.Level())
	slog.SetDefault(newLogger(level))

	slog.Info("orator starting",
		"version", version,
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Telemetry ─────────────────────────────────────────────────────────────
	chain := []string{cfg.Providers.STT.Name}
	for _, fb := range cfg.Providers.STTFallbacks {
		chain = append(chain, fb.Name)
	}
	otelShutdown, err := observe.InitProvider(context.Background(), observe.ProviderConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: version,
		Environment:    cfg.Telemetry.Environment,
		STTChain:       chain,
		SampleRate:     cfg.Audio.SampleRate,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}

	// ── Provider registry ─────────────────────────────────────────────────────
	reg := config.NewRegistry()
	registerBuiltinProviders(reg)

	providers, err := buildProviders(cfg, reg)
	if err != nil {
		slog.Error("failed to build providers", "err", err)
		return 1
	}

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	printStartupSummary(cfg)

	opts := []app.Option{app.WithVersion(version), app.WithLogLevel(level)}
	if *watch {
		opts = append(opts, app.WithConfigWatch(*configPath))
	}
	application, err := app.New(ctx, cfg, providers, opts...)
	if err != nil {
		slog.Error("failed to initialise application", "err", err)
		return 1
	}

	slog.Info("server ready, press Ctrl+C to shut down")

	if err := application.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	// In-flight analyses may take up to analysis_timeout to finish.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Limits.AnalysisTimeout+15*time.Second)
	defer cancel()

	slog.Info("shutdown signal received, draining analyses")

	code := 0
	if err := application.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
		code = 1
	}
	if err := otelShutdown(shutdownCtx); err != nil {
		slog.Warn("telemetry shutdown error", "err", err)
	}
	slog.Info("goodbye")
	return code
}

// ── Provider wiring ───────────────────────────────────────────────────────────

// registerBuiltinProviders wires all built-in provider factories into reg.
func registerBuiltinProviders(reg *config.Registry) {
	// ── STT ───────────────────────────────────────────────────────────────────

	reg.RegisterSTT("deepgram", func(entry config.ProviderEntry) (stt.Provider, error) {
		var opts []deepgram.Option
		if entry.Model != "" {
			opts = append(opts, deepgram.WithModel(entry.Model))
		}
		if lang := optString(entry.Options, "language"); lang != "" {
			opts = append(opts, deepgram.WithLanguage(lang))
		}
		if entry.BaseURL != "" {
			opts = append(opts, deepgram.WithEndpoint(entry.BaseURL))
		}
		return deepgram.New(entry.APIKey, opts...)
	})

	reg.RegisterSTT("whisper", func(entry config.ProviderEntry) (stt.Provider, error) {
		var opts []whisper.Option
		if entry.Model != "" {
			opts = append(opts, whisper.WithModel(entry.Model))
		}
		if lang := optString(entry.Options, "language"); lang != "" {
			opts = append(opts, whisper.WithLanguage(lang))
		}
		return whisper.New(entry.BaseURL, opts...)
	})

	reg.RegisterSTT("whisper-native", func(entry config.ProviderEntry) (stt.Provider, error) {
		modelPath := entry.Model
		if modelPath == "" {
			modelPath = optString(entry.Options, "model_path")
		}
		var opts []whisper.NativeOption
		if lang := optString(entry.Options, "language"); lang != "" {
			opts = append(opts, whisper.WithNativeLanguage(lang))
		}
		return whisper.NewNative(modelPath, opts...)
	})

	reg.RegisterSTT("openai", func(entry config.ProviderEntry) (stt.Provider, error) {
		var opts []oaistt.Option
		if entry.BaseURL != "" {
			opts = append(opts, oaistt.WithBaseURL(entry.BaseURL))
		}
		if lang := optString(entry.Options, "language"); lang != "" {
			opts = append(opts, oaistt.WithLanguage(lang))
		}
		if d := optString(entry.Options, "timeout"); d != "" {
			timeout, err := time.ParseDuration(d)
			if err != nil {
				return nil, fmt.Errorf("openai: options.timeout: %w", err)
			}
			opts = append(opts, oaistt.WithTimeout(timeout))
		}
		return oaistt.New(entry.APIKey, entry.Model, opts...)
	})

	// ── VAD ───────────────────────────────────────────────────────────────────

	reg.RegisterVAD("energy", func(config.ProviderEntry) (vad.Engine, error) {
		return energy.New(), nil
	})

	slog.Debug("registered providers", "stt", reg.STTNames())
}

// buildProviders instantiates the providers named in cfg using the registry.
func buildProviders(cfg *config.Config, reg *config.Registry) (*app.Providers, error) {
	ps := &app.Providers{}

	entries := append([]config.ProviderEntry{cfg.Providers.STT}, cfg.Providers.STTFallbacks...)
	for i, entry := range entries {
		p, err := reg.CreateSTT(entry)
		if err != nil {
			return nil, fmt.Errorf("create stt provider %q: %w", entry.Name, err)
		}
		name := entry.Name
		if i > 0 {
			name = fmt.Sprintf("%s#%d", entry.Name, i)
		}
		ps.STT = append(ps.STT, app.STTBackend{Name: name, Provider: p})
		slog.Info("provider created", "kind", "stt", "name", name, "fallback", i > 0)
	}

	vadEntry := cfg.Providers.VAD
	if vadEntry.Name == "" {
		vadEntry.Name = "energy"
	}
	v, err := reg.CreateVAD(vadEntry)
	if err != nil {
		return nil, fmt.Errorf("create vad %q: %w", vadEntry.Name, err)
	}
	ps.VAD = v
	slog.Info("provider created", "kind", "vad", "name", vadEntry.Name)

	return ps, nil
}

// ── Startup summary ───────────────────────────────────────────────────────────

func printStartupSummary(cfg *config.Config) {
	fmt.Println("╔═══════════════════════════════════════╗")
	fmt.Println("║         Orator · startup summary      ║")
	fmt.Println("╠═══════════════════════════════════════╣")
	printRow("Version", version)
	printProvider("STT", cfg.Providers.STT.Name, cfg.Providers.STT.Model)
	fallbacks := make([]string, len(cfg.Providers.STTFallbacks))
	for i, fb := range cfg.Providers.STTFallbacks {
		fallbacks[i] = fb.Name
	}
	if len(fallbacks) > 0 {
		printRow("Fallbacks", strings.Join(fallbacks, ","))
	} else {
		printRow("Fallbacks", "(none)")
	}
	printProvider("VAD", cfg.Providers.VAD.Name, "")
	printRow("Concurrency", fmt.Sprintf("%d", cfg.Limits.MaxConcurrent))
	printRow("Timeout", cfg.Limits.AnalysisTimeout.String())
	printRow("Listen addr", cfg.Server.ListenAddr)
	printRow("Metrics", cfg.Telemetry.MetricsPath)
	fmt.Println("╚═══════════════════════════════════════╝")
}

func printProvider(kind, name, model string) {
	value := name
	if value == "" {
		value = "(default)"
	} else if model != "" {
		value = name + " / " + model
	}
	printRow(kind, value)
}

func printRow(label, value string) {
	if len(value) > 19 {
		value = value[:16] + "…"
	}
	fmt.Printf("║  %-12s    : %-19s ║\n", label, value)
}

// ── Logger ─────────────────────────────────────────────────────────────────────

func newLogger(level *slog.LevelVar) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// optString extracts a string value from a provider Options map.
// Returns "" if the map is nil, the key is absent, or the value is not a string.
func optString(opts map[string]any, key string) string {
	s, _ := opts[key].(string)
	return s
}
