// Package openai provides an STT provider backed by the OpenAI audio
// transcription API (whisper-1 and compatible self-hosted endpoints).
//
// Requests ask for verbose_json with word-level timestamp granularity; the
// SDK's typed Transcription only carries text, so the word list is decoded
// from the raw response body.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/MrWong99/orator/pkg/audio"
	"github.com/MrWong99/orator/pkg/provider/stt"
	"github.com/MrWong99/orator/pkg/types"
)

const defaultModel = "whisper-1"

var _ stt.Provider = (*Provider)(nil)

// Provider implements stt.Provider using the OpenAI API.
type Provider struct {
	client   oai.Client
	model    string
	language string
}

// config holds optional configuration for the provider.
type config struct {
	baseURL  string
	language string
	timeout  time.Duration
}

// Option is a functional option for Provider.
type Option func(*config)

// WithBaseURL overrides the default OpenAI API base URL.
func WithBaseURL(url string) Option {
	return func(c *config) {
		c.baseURL = url
	}
}

// WithLanguage sets the default ISO-639-1 language hint.
func WithLanguage(lang string) Option {
	return func(c *config) {
		c.language = lang
	}
}

// WithTimeout sets a per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// New constructs a new OpenAI STT Provider. An empty model selects whisper-1.
func New(apiKey string, model string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: apiKey must not be empty")
	}
	if model == "" {
		model = defaultModel
	}

	cfg := &config{}
	for _, o := range opts {
		o(cfg)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		// Retries are owned by the caller's resilience policy.
		option.WithMaxRetries(0),
	}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.timeout > 0 {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{
			Timeout: cfg.timeout,
		}))
	}

	client := oai.NewClient(reqOpts...)
	return &Provider{client: client, model: model, language: cfg.language}, nil
}

// Transcribe implements stt.Provider.
func (p *Provider) Transcribe(ctx context.Context, req stt.Request) (stt.Transcript, error) {
	lang := req.Language
	if lang == "" {
		lang = p.language
	}

	params := oai.AudioTranscriptionNewParams{
		File:                   oai.File(bytes.NewReader(audio.EncodeWAV(req.Audio)), "audio.wav", "audio/wav"),
		Model:                  oai.AudioModel(p.model),
		ResponseFormat:         oai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []string{"word"},
		Temperature:            oai.Float(0),
	}
	if lang != "" {
		params.Language = oai.String(lang)
	}
	if hint := keywordPrompt(req.Keywords); hint != "" {
		params.Prompt = oai.String(hint)
	}

	resp, err := p.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		var apiErr *oai.Error
		if errors.As(err, &apiErr) {
			return stt.Transcript{}, &stt.StatusError{Provider: "openai", Code: apiErr.StatusCode, Body: apiErr.Message}
		}
		return stt.Transcript{}, fmt.Errorf("openai: transcribe: %w", err)
	}

	return parseVerbose([]byte(resp.RawJSON()), lang)
}

// verboseTranscription is the verbose_json body with word timings.
type verboseTranscription struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Words    []struct {
		Word  string  `json:"word"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
	} `json:"words"`
}

func parseVerbose(raw []byte, lang string) (stt.Transcript, error) {
	var v verboseTranscription
	if err := json.Unmarshal(raw, &v); err != nil {
		return stt.Transcript{}, fmt.Errorf("openai: parse verbose response: %w", err)
	}

	words := make([]types.Word, 0, len(v.Words))
	for _, w := range v.Words {
		words = append(words, types.Word{
			Text:  w.Word,
			Start: time.Duration(w.Start * float64(time.Second)),
			End:   time.Duration(w.End * float64(time.Second)),
		})
	}
	if v.Language != "" {
		lang = v.Language
	}

	tr := stt.Transcript{Text: v.Text, Words: words, Language: lang, Provider: "openai"}.Normalize()
	if tr.Text != "" && len(tr.Words) == 0 {
		return stt.Transcript{}, fmt.Errorf("openai: %w", stt.ErrNoWordTimestamps)
	}
	return tr, nil
}

func keywordPrompt(keywords []stt.KeywordBoost) string {
	parts := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k.Keyword != "" {
			parts = append(parts, k.Keyword)
		}
	}
	return strings.Join(parts, ", ")
}
