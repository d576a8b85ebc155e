package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/MrWong99/orator/internal/config"
	"github.com/MrWong99/orator/pkg/provider/stt"
)

const fullYAML = `
server:
  listen_addr: ":9090"
  log_level: debug
  tls:
    cert_file: /etc/orator/cert.pem
    key_file: /etc/orator/key.pem
limits:
  max_upload_bytes: 10485760
  analysis_timeout: 2m
  min_audio_duration: 15s
  max_concurrent: 8
  queue_wait: 250ms
providers:
  stt:
    name: whisper
    base_url: http://localhost:8081
    model: base.en
  stt_fallbacks:
    - name: deepgram
      api_key: dg-key
      model: nova-3
    - name: openai
      api_key: sk-test
      model: whisper-1
  vad:
    name: energy
transcription:
  retry:
    max_attempts: 4
    initial_backoff: 200ms
    max_backoff: 2s
  language: de
audio:
  sample_rate: 22050
  ffmpeg_path: /usr/local/bin/ffmpeg
analysis:
  intro_fraction: 0.15
  conclusion_fraction: 0.25
  extra_fillers: ["you see", "right"]
  extra_advanced_words: ["photosynthesis"]
  emphasis_margin: 0.2
  emphasis_min_spacing: 750ms
telemetry:
  service_name: orator-staging
  metrics_path: /internal/metrics
`

func TestLoadFromReader_FullConfig(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadFromReader(strings.NewReader(fullYAML))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}

	if cfg.Server.ListenAddr != ":9090" || cfg.Server.LogLevel != config.LogDebug {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Server.TLS == nil || cfg.Server.TLS.KeyFile != "/etc/orator/key.pem" {
		t.Errorf("tls = %+v", cfg.Server.TLS)
	}
	want := config.LimitsConfig{
		MaxUploadBytes:   10 << 20,
		AnalysisTimeout:  2 * time.Minute,
		MinAudioDuration: 15 * time.Second,
		MaxConcurrent:    8,
		QueueWait:        250 * time.Millisecond,
	}
	if cfg.Limits != want {
		t.Errorf("limits = %+v, want %+v", cfg.Limits, want)
	}
	if cfg.Providers.STT.Name != "whisper" || cfg.Providers.STT.Model != "base.en" {
		t.Errorf("stt = %+v", cfg.Providers.STT)
	}
	if len(cfg.Providers.STTFallbacks) != 2 || cfg.Providers.STTFallbacks[1].Name != "openai" {
		t.Errorf("stt_fallbacks = %+v", cfg.Providers.STTFallbacks)
	}
	if cfg.Transcription.Retry.MaxAttempts != 4 || cfg.Transcription.Retry.InitialBackoff != 200*time.Millisecond {
		t.Errorf("retry = %+v", cfg.Transcription.Retry)
	}
	if cfg.Transcription.Language != "de" {
		t.Errorf("language = %q", cfg.Transcription.Language)
	}
	if cfg.Audio.SampleRate != 22050 {
		t.Errorf("sample_rate = %d", cfg.Audio.SampleRate)
	}
	a := cfg.Analysis
	if a.IntroFraction != 0.15 || a.ConclusionFraction != 0.25 || a.EmphasisMinSpacing != 750*time.Millisecond {
		t.Errorf("analysis = %+v", a)
	}
	if len(a.ExtraFillers) != 2 || a.ExtraAdvancedWords[0] != "photosynthesis" {
		t.Errorf("lexicon extensions = %v, %v", a.ExtraFillers, a.ExtraAdvancedWords)
	}
	if cfg.Telemetry.MetricsPath != "/internal/metrics" {
		t.Errorf("metrics_path = %q", cfg.Telemetry.MetricsPath)
	}
}

func TestLoadFromReader_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadFromReader(strings.NewReader("providers:\n  stt:\n    name: whisper\n"))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}

	checks := []struct {
		name string
		got  any
		want any
	}{
		{"listen_addr", cfg.Server.ListenAddr, config.DefaultListenAddr},
		{"log_level", cfg.Server.LogLevel, config.LogInfo},
		{"max_upload_bytes", cfg.Limits.MaxUploadBytes, int64(50 << 20)},
		{"analysis_timeout", cfg.Limits.AnalysisTimeout, 300 * time.Second},
		{"min_audio_duration", cfg.Limits.MinAudioDuration, 10 * time.Second},
		{"max_concurrent", cfg.Limits.MaxConcurrent, 4},
		{"queue_wait", cfg.Limits.QueueWait, time.Duration(0)},
		{"max_attempts", cfg.Transcription.Retry.MaxAttempts, 3},
		{"language", cfg.Transcription.Language, "en"},
		{"sample_rate", cfg.Audio.SampleRate, 16000},
		{"ffmpeg_path", cfg.Audio.FFmpegPath, "ffmpeg"},
		{"intro_fraction", cfg.Analysis.IntroFraction, 0.2},
		{"conclusion_fraction", cfg.Analysis.ConclusionFraction, 0.2},
		{"emphasis_margin", cfg.Analysis.EmphasisMargin, 0.15},
		{"emphasis_min_spacing", cfg.Analysis.EmphasisMinSpacing, 500 * time.Millisecond},
		{"service_name", cfg.Telemetry.ServiceName, "orator"},
		{"metrics_path", cfg.Telemetry.MetricsPath, "/metrics"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestLoad_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "orator.yaml")
	if err := os.WriteFile(path, []byte(fullYAML), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Telemetry.ServiceName != "orator-staging" {
		t.Errorf("service_name = %q", cfg.Telemetry.ServiceName)
	}

	if _, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load of a missing file succeeded")
	}
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	reg := config.NewRegistry()
	var got config.ProviderEntry
	reg.RegisterSTT("whisper", func(e config.ProviderEntry) (stt.Provider, error) {
		got = e
		return nil, nil
	})

	if _, err := reg.CreateSTT(config.ProviderEntry{Name: "whisper", Model: "base.en"}); err != nil {
		t.Fatalf("CreateSTT: %v", err)
	}
	if got.Model != "base.en" {
		t.Errorf("factory saw %+v", got)
	}

	_, err := reg.CreateSTT(config.ProviderEntry{Name: "nope"})
	if !errors.Is(err, config.ErrProviderNotRegistered) {
		t.Errorf("err = %v, want ErrProviderNotRegistered", err)
	}
	_, err = reg.CreateVAD(config.ProviderEntry{Name: "energy"})
	if !errors.Is(err, config.ErrProviderNotRegistered) {
		t.Errorf("err = %v, want ErrProviderNotRegistered", err)
	}
	if names := reg.STTNames(); len(names) != 1 || names[0] != "whisper" {
		t.Errorf("STTNames = %v", names)
	}
}
