package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists known provider names per provider kind.
// Used by [Validate] to warn about unrecognised provider names.
var ValidProviderNames = map[string][]string{
	"stt": {"whisper", "whisper-native", "deepgram", "openai"},
	"vad": {"energy"},
}

// Load reads the YAML configuration file at path and returns a validated
// [Config] with defaults applied.
// It is a convenience wrapper around [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, applies defaults and validates
// the result. Unknown keys are rejected. An empty document yields the
// defaults.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	cfg.ApplyDefaults()
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if tls := cfg.Server.TLS; tls != nil && (tls.CertFile == "" || tls.KeyFile == "") {
		errs = append(errs, errors.New("server.tls requires both cert_file and key_file"))
	}

	// Limits
	l := cfg.Limits
	if l.MaxUploadBytes < 0 {
		errs = append(errs, fmt.Errorf("limits.max_upload_bytes %d must not be negative", l.MaxUploadBytes))
	}
	if l.AnalysisTimeout < 0 {
		errs = append(errs, fmt.Errorf("limits.analysis_timeout %s must not be negative", l.AnalysisTimeout))
	}
	if l.MinAudioDuration < 0 {
		errs = append(errs, fmt.Errorf("limits.min_audio_duration %s must not be negative", l.MinAudioDuration))
	}
	if l.AnalysisTimeout > 0 && l.MinAudioDuration >= l.AnalysisTimeout {
		slog.Warn("limits.min_audio_duration is not below limits.analysis_timeout",
			"min_audio_duration", l.MinAudioDuration,
			"analysis_timeout", l.AnalysisTimeout,
		)
	}
	if l.MaxConcurrent < 0 {
		errs = append(errs, fmt.Errorf("limits.max_concurrent %d must not be negative", l.MaxConcurrent))
	}
	if l.QueueWait < 0 {
		errs = append(errs, fmt.Errorf("limits.queue_wait %s must not be negative", l.QueueWait))
	}

	// Providers
	if cfg.Providers.STT.Name == "" {
		errs = append(errs, errors.New("providers.stt.name is required"))
	}
	validateProviderName("stt", cfg.Providers.STT.Name)
	entryKey := func(e ProviderEntry) string { return e.Name + "|" + e.BaseURL + "|" + e.Model }
	seen := map[string]string{entryKey(cfg.Providers.STT): "providers.stt"}
	for i, fb := range cfg.Providers.STTFallbacks {
		prefix := fmt.Sprintf("providers.stt_fallbacks[%d]", i)
		if fb.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
			continue
		}
		validateProviderName("stt", fb.Name)
		key := entryKey(fb)
		if prev, ok := seen[key]; ok {
			errs = append(errs, fmt.Errorf("%s duplicates %s", prefix, prev))
		}
		seen[key] = prefix
	}
	validateProviderName("vad", cfg.Providers.VAD.Name)

	// Transcription
	r := cfg.Transcription.Retry
	if r.MaxAttempts < 0 {
		errs = append(errs, fmt.Errorf("transcription.retry.max_attempts %d must not be negative", r.MaxAttempts))
	}
	if r.InitialBackoff < 0 || r.MaxBackoff < 0 {
		errs = append(errs, errors.New("transcription.retry backoffs must not be negative"))
	}
	if r.MaxBackoff > 0 && r.InitialBackoff > r.MaxBackoff {
		errs = append(errs, fmt.Errorf("transcription.retry.initial_backoff %s exceeds max_backoff %s", r.InitialBackoff, r.MaxBackoff))
	}

	// Audio
	if sr := cfg.Audio.SampleRate; sr != 0 && (sr < 8000 || sr > 48000) {
		errs = append(errs, fmt.Errorf("audio.sample_rate %d is out of range [8000, 48000]", sr))
	}

	// Analysis
	a := cfg.Analysis
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"analysis.intro_fraction", a.IntroFraction},
		{"analysis.conclusion_fraction", a.ConclusionFraction},
	} {
		if f.v < 0 || f.v >= 0.5 {
			errs = append(errs, fmt.Errorf("%s %.2f is out of range [0, 0.5)", f.name, f.v))
		}
	}
	if a.EmphasisMargin < 0 || a.EmphasisMargin > 1 {
		errs = append(errs, fmt.Errorf("analysis.emphasis_margin %.2f is out of range [0, 1]", a.EmphasisMargin))
	}
	if a.EmphasisMinSpacing < 0 {
		errs = append(errs, fmt.Errorf("analysis.emphasis_min_spacing %s must not be negative", a.EmphasisMinSpacing))
	}
	for i, w := range a.ExtraFillers {
		if strings.TrimSpace(w) == "" {
			errs = append(errs, fmt.Errorf("analysis.extra_fillers[%d] is empty", i))
		}
	}

	// Telemetry
	if p := cfg.Telemetry.MetricsPath; p != "" && !strings.HasPrefix(p, "/") {
		errs = append(errs, fmt.Errorf("telemetry.metrics_path %q must start with /", p))
	}

	return errors.Join(errs...)
}

// validateProviderName logs a warning if name is non-empty and not found in
// the [ValidProviderNames] list for the given kind.
func validateProviderName(kind, name string) {
	if name == "" {
		return
	}
	known, ok := ValidProviderNames[kind]
	if !ok {
		return
	}
	if slices.Contains(known, name) {
		return
	}
	slog.Warn("unknown provider name, may be a typo or third-party provider",
		"kind", kind,
		"name", name,
		"known", known,
	)
}
