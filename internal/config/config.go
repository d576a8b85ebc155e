// Package config provides the configuration schema, loader, provider registry
// and hot-reload watcher for the Orator analysis service.
package config

import (
	"log/slog"
	"time"
)

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Level converts l to the matching [slog.Level]. Unknown values map to info.
func (l LogLevel) Level() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Defaults applied by [Config.ApplyDefaults].
const (
	DefaultListenAddr       = ":8080"
	DefaultMaxUploadBytes   = 50 << 20
	DefaultAnalysisTimeout  = 300 * time.Second
	DefaultMinAudioDuration = 10 * time.Second
	DefaultMaxConcurrent    = 4
	DefaultRetryAttempts    = 3
	DefaultInitialBackoff   = 500 * time.Millisecond
	DefaultMaxBackoff       = 5 * time.Second
	DefaultLanguage         = "en"
	DefaultSampleRate       = 16000
	DefaultFFmpegPath       = "ffmpeg"
	DefaultSectionFraction  = 0.2
	DefaultEmphasisMargin   = 0.15
	DefaultEmphasisSpacing  = 500 * time.Millisecond
	DefaultServiceName      = "orator"
	DefaultMetricsPath      = "/metrics"
)

// Config is the root configuration structure.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Limits        LimitsConfig        `yaml:"limits"`
	Providers     ProvidersConfig     `yaml:"providers"`
	Transcription TranscriptionConfig `yaml:"transcription"`
	Audio         AudioConfig         `yaml:"audio"`
	Analysis      AnalysisConfig      `yaml:"analysis"`
	Telemetry     TelemetryConfig     `yaml:"telemetry"`
}

// ServerConfig holds network and logging settings.
type ServerConfig struct {
	// ListenAddr is the TCP address the server listens on (e.g., ":8080").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`

	// TLS configures TLS for the server. When nil, the server runs plain HTTP.
	TLS *TLSConfig `yaml:"tls"`
}

// TLSConfig holds TLS certificate paths for enabling HTTPS.
type TLSConfig struct {
	// CertFile is the path to the PEM-encoded TLS certificate.
	CertFile string `yaml:"cert_file"`

	// KeyFile is the path to the PEM-encoded TLS private key.
	KeyFile string `yaml:"key_file"`
}

// LimitsConfig bounds what a single request may cost.
type LimitsConfig struct {
	// MaxUploadBytes caps the size of an uploaded recording.
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// AnalysisTimeout bounds one analysis end to end.
	AnalysisTimeout time.Duration `yaml:"analysis_timeout"`

	// MinAudioDuration rejects shorter recordings.
	MinAudioDuration time.Duration `yaml:"min_audio_duration"`

	// MaxConcurrent is the number of analyses that may run at once.
	MaxConcurrent int `yaml:"max_concurrent"`

	// QueueWait is how long a request may wait for a free slot before it is
	// turned away. Zero rejects at once.
	QueueWait time.Duration `yaml:"queue_wait"`
}

// ProvidersConfig selects the backends. Each entry names a provider
// registered in the [Registry].
type ProvidersConfig struct {
	STT ProviderEntry `yaml:"stt"`

	// STTFallbacks are tried in order when the primary STT provider fails or
	// its circuit breaker is open.
	STTFallbacks []ProviderEntry `yaml:"stt_fallbacks"`

	// VAD selects the voice activity detector used for silence detection.
	// Empty means the built-in energy detector.
	VAD ProviderEntry `yaml:"vad"`
}

// ProviderEntry is the common configuration block shared by all provider types.
// The Name field is used to look up the constructor in the [Registry].
type ProviderEntry struct {
	// Name selects the registered provider implementation (e.g., "whisper", "deepgram").
	Name string `yaml:"name"`

	// APIKey is the authentication key for the provider's API if any.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default API endpoint.
	// Leave empty to use the provider's built-in default.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific model within the provider (e.g., "nova-3", "whisper-1").
	Model string `yaml:"model"`

	// Options holds provider-specific configuration values not covered by the
	// standard fields above.
	Options map[string]any `yaml:"options"`
}

// TranscriptionConfig tunes the calls to the STT backends.
type TranscriptionConfig struct {
	Retry RetryConfig `yaml:"retry"`

	// Language is the BCP-47 tag passed to the backend.
	Language string `yaml:"language"`
}

// RetryConfig is the backoff applied to each STT provider before failing
// over to the next.
type RetryConfig struct {
	MaxAttempts    int           `yaml:"max_attempts"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff"`
}

// AudioConfig controls decoding.
type AudioConfig struct {
	// SampleRate is the canonical rate every recording is resampled to.
	SampleRate int `yaml:"sample_rate"`

	// FFmpegPath is the ffmpeg binary used for mp3, m4a and Vorbis input.
	FFmpegPath string `yaml:"ffmpeg_path"`
}

// AnalysisConfig tunes feature extraction. Every field is hot-reloadable.
type AnalysisConfig struct {
	// IntroFraction and ConclusionFraction split the recording into
	// introduction, body and conclusion. Default 0.2 each.
	IntroFraction      float64 `yaml:"intro_fraction"`
	ConclusionFraction float64 `yaml:"conclusion_fraction"`

	// ExtraFillers extend the built-in filler lexicon.
	ExtraFillers []string `yaml:"extra_fillers"`

	// ExtraAdvancedWords always count as advanced vocabulary.
	ExtraAdvancedWords []string `yaml:"extra_advanced_words"`

	// EmphasisMargin is the relative rise over the local pitch baseline that
	// marks an emphasis point.
	EmphasisMargin float64 `yaml:"emphasis_margin"`

	// EmphasisMinSpacing is the minimum distance between emphasis points.
	EmphasisMinSpacing time.Duration `yaml:"emphasis_min_spacing"`
}

// TelemetryConfig controls metrics and tracing.
type TelemetryConfig struct {
	// ServiceName is the OpenTelemetry service.name resource attribute.
	ServiceName string `yaml:"service_name"`

	// MetricsPath is where the Prometheus exporter is served.
	MetricsPath string `yaml:"metrics_path"`

	// Environment is the deployment.environment resource attribute, e.g.
	// "staging". Empty omits it.
	Environment string `yaml:"environment"`
}

// ApplyDefaults fills every zero field with its documented default.
func (c *Config) ApplyDefaults() {
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = DefaultListenAddr
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = LogInfo
	}

	l := &c.Limits
	if l.MaxUploadBytes == 0 {
		l.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if l.AnalysisTimeout == 0 {
		l.AnalysisTimeout = DefaultAnalysisTimeout
	}
	if l.MinAudioDuration == 0 {
		l.MinAudioDuration = DefaultMinAudioDuration
	}
	if l.MaxConcurrent == 0 {
		l.MaxConcurrent = DefaultMaxConcurrent
	}

	r := &c.Transcription.Retry
	if r.MaxAttempts == 0 {
		r.MaxAttempts = DefaultRetryAttempts
	}
	if r.InitialBackoff == 0 {
		r.InitialBackoff = DefaultInitialBackoff
	}
	if r.MaxBackoff == 0 {
		r.MaxBackoff = DefaultMaxBackoff
	}
	if c.Transcription.Language == "" {
		c.Transcription.Language = DefaultLanguage
	}

	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = DefaultSampleRate
	}
	if c.Audio.FFmpegPath == "" {
		c.Audio.FFmpegPath = DefaultFFmpegPath
	}

	a := &c.Analysis
	if a.IntroFraction == 0 {
		a.IntroFraction = DefaultSectionFraction
	}
	if a.ConclusionFraction == 0 {
		a.ConclusionFraction = DefaultSectionFraction
	}
	if a.EmphasisMargin == 0 {
		a.EmphasisMargin = DefaultEmphasisMargin
	}
	if a.EmphasisMinSpacing == 0 {
		a.EmphasisMinSpacing = DefaultEmphasisSpacing
	}

	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = DefaultServiceName
	}
	if c.Telemetry.MetricsPath == "" {
		c.Telemetry.MetricsPath = DefaultMetricsPath
	}
}
