package config

import (
	"fmt"
	"slices"
)

// ConfigDiff describes what changed between two configs.
// Only fields that can be safely hot-reloaded are applied; the rest are
// reported so the operator can be told a restart is needed.
type ConfigDiff struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	// AnalysisChanged is set when the extraction tuning or the per-analysis
	// limits (timeout, minimum duration) or the transcription language
	// changed.
	AnalysisChanged bool

	// RestartRequired lists changed sections that only take effect after a
	// restart.
	RestartRequired []string
}

// Changed reports whether anything changed at all.
func (d ConfigDiff) Changed() bool {
	return d.LogLevelChanged || d.AnalysisChanged || len(d.RestartRequired) > 0
}

// Diff compares old and new configs and returns what changed.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	// Log level
	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}

	if !analysisEqual(old.Analysis, new.Analysis) ||
		old.Limits.AnalysisTimeout != new.Limits.AnalysisTimeout ||
		old.Limits.MinAudioDuration != new.Limits.MinAudioDuration ||
		old.Transcription.Language != new.Transcription.Language {
		d.AnalysisChanged = true
	}

	if old.Server.ListenAddr != new.Server.ListenAddr || !tlsEqual(old.Server.TLS, new.Server.TLS) {
		d.RestartRequired = append(d.RestartRequired, "server")
	}
	if old.Limits.MaxUploadBytes != new.Limits.MaxUploadBytes ||
		old.Limits.MaxConcurrent != new.Limits.MaxConcurrent ||
		old.Limits.QueueWait != new.Limits.QueueWait {
		d.RestartRequired = append(d.RestartRequired, "limits")
	}
	if !providersEqual(old.Providers, new.Providers) || old.Transcription.Retry != new.Transcription.Retry {
		d.RestartRequired = append(d.RestartRequired, "providers")
	}
	if old.Audio != new.Audio {
		d.RestartRequired = append(d.RestartRequired, "audio")
	}
	if old.Telemetry != new.Telemetry {
		d.RestartRequired = append(d.RestartRequired, "telemetry")
	}

	return d
}

func analysisEqual(a, b AnalysisConfig) bool {
	return a.IntroFraction == b.IntroFraction &&
		a.ConclusionFraction == b.ConclusionFraction &&
		a.EmphasisMargin == b.EmphasisMargin &&
		a.EmphasisMinSpacing == b.EmphasisMinSpacing &&
		slices.Equal(a.ExtraFillers, b.ExtraFillers) &&
		slices.Equal(a.ExtraAdvancedWords, b.ExtraAdvancedWords)
}

func tlsEqual(a, b *TLSConfig) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func providersEqual(a, b ProvidersConfig) bool {
	return entryEqual(a.STT, b.STT) &&
		entryEqual(a.VAD, b.VAD) &&
		slices.EqualFunc(a.STTFallbacks, b.STTFallbacks, entryEqual)
}

// entryEqual compares the scalar fields of two entries. Options are compared
// by key set and formatted value.
func entryEqual(a, b ProviderEntry) bool {
	if a.Name != b.Name || a.APIKey != b.APIKey || a.BaseURL != b.BaseURL || a.Model != b.Model {
		return false
	}
	if len(a.Options) != len(b.Options) {
		return false
	}
	for k, av := range a.Options {
		bv, ok := b.Options[k]
		if !ok || !sameValue(av, bv) {
			return false
		}
	}
	return true
}

func sameValue(a, b any) bool {
	return fmt.Sprintf("%#v", a) == fmt.Sprintf("%#v", b)
}
