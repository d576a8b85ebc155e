package config_test

import (
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/MrWong99/orator/internal/config"
)

func loadFull(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadFromReader(strings.NewReader(fullYAML))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	return cfg
}

func TestDiff_NoChange(t *testing.T) {
	t.Parallel()

	d := config.Diff(loadFull(t), loadFull(t))
	if d.Changed() {
		t.Errorf("identical configs reported %+v", d)
	}
}

func TestDiff(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		mutate   func(*config.Config)
		logLevel bool
		analysis bool
		restart  []string
	}{
		{
			name:     "log level",
			mutate:   func(c *config.Config) { c.Server.LogLevel = config.LogWarn },
			logLevel: true,
		},
		{
			name:     "split",
			mutate:   func(c *config.Config) { c.Analysis.IntroFraction = 0.1 },
			analysis: true,
		},
		{
			name: "fillers",
			mutate: func(c *config.Config) {
				c.Analysis.ExtraFillers = append(c.Analysis.ExtraFillers, "okay")
			},
			analysis: true,
		},
		{
			name:     "timeout",
			mutate:   func(c *config.Config) { c.Limits.AnalysisTimeout = time.Minute },
			analysis: true,
		},
		{
			name:    "listen addr",
			mutate:  func(c *config.Config) { c.Server.ListenAddr = ":1" },
			restart: []string{"server"},
		},
		{
			name:    "concurrency",
			mutate:  func(c *config.Config) { c.Limits.MaxConcurrent = 1 },
			restart: []string{"limits"},
		},
		{
			name: "provider option",
			mutate: func(c *config.Config) {
				c.Providers.STT.Options = map[string]any{"punctuate": true}
			},
			restart: []string{"providers"},
		},
		{
			name:    "retry",
			mutate:  func(c *config.Config) { c.Transcription.Retry.MaxAttempts = 9 },
			restart: []string{"providers"},
		},
		{
			name:    "audio and telemetry",
			mutate:  func(c *config.Config) { c.Audio.SampleRate = 16000; c.Telemetry.ServiceName = "x" },
			restart: []string{"audio", "telemetry"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			old, updated := loadFull(t), loadFull(t)
			tt.mutate(updated)

			d := config.Diff(old, updated)
			if d.LogLevelChanged != tt.logLevel {
				t.Errorf("LogLevelChanged = %v, want %v", d.LogLevelChanged, tt.logLevel)
			}
			if tt.logLevel && d.NewLogLevel != updated.Server.LogLevel {
				t.Errorf("NewLogLevel = %q", d.NewLogLevel)
			}
			if d.AnalysisChanged != tt.analysis {
				t.Errorf("AnalysisChanged = %v, want %v", d.AnalysisChanged, tt.analysis)
			}
			if !slices.Equal(d.RestartRequired, tt.restart) {
				t.Errorf("RestartRequired = %v, want %v", d.RestartRequired, tt.restart)
			}
			if !d.Changed() {
				t.Error("Changed() = false")
			}
		})
	}
}
