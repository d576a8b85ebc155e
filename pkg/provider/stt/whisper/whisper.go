// Package whisper provides local whisper.cpp-backed STT providers.
//
// [Provider] talks to a running whisper-server binary (which exposes a REST
// API at POST /inference) and asks for verbose_json output so that every
// segment carries per-word timings. [NativeProvider] links whisper.cpp
// directly through its CGO bindings and needs no server at all.
//
// Usage:
//
//	p, err := whisper.New("http://localhost:8080",
//	    whisper.WithLanguage("en"),
//	)
//	tr, err := p.Transcribe(ctx, stt.Request{Audio: pcm})
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/MrWong99/orator/pkg/audio"
	"github.com/MrWong99/orator/pkg/provider/stt"
	"github.com/MrWong99/orator/pkg/types"
)

const (
	defaultLanguage = "en"
	defaultTimeout  = 5 * time.Minute

	// maxPromptKeywords bounds the initial prompt built from keyword hints.
	maxPromptKeywords = 20
)

// Compile-time assertion that Provider implements stt.Provider.
var _ stt.Provider = (*Provider)(nil)

// Option is a functional option for configuring a Provider.
type Option func(*Provider)

// WithModel sets the model identifier forwarded to the whisper.cpp server
// (e.g., "base.en", "small"). When empty the server uses whichever model it
// was started with. This is the default.
func WithModel(model string) Option {
	return func(p *Provider) {
		p.model = model
	}
}

// WithLanguage sets the BCP-47 language code sent to the whisper.cpp server
// (e.g., "en", "de", "fr"). Defaults to "en".
func WithLanguage(lang string) Option {
	return func(p *Provider) {
		p.language = lang
	}
}

// WithHTTPClient replaces the HTTP client. The default client has a
// five-minute timeout, long enough for a 15-minute recording on CPU.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) {
		p.httpClient = c
	}
}

// Provider implements stt.Provider backed by a whisper.cpp HTTP server.
type Provider struct {
	serverURL  string
	model      string
	language   string
	httpClient *http.Client
}

// New creates a new Provider that connects to the whisper.cpp HTTP server at
// serverURL (e.g., "http://localhost:8080"). serverURL must be non-empty.
func New(serverURL string, opts ...Option) (*Provider, error) {
	if serverURL == "" {
		return nil, errors.New("whisper: serverURL must not be empty")
	}
	p := &Provider{
		serverURL:  strings.TrimRight(serverURL, "/"),
		language:   defaultLanguage,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Transcribe encodes req.Audio as a WAV file, POSTs it to /inference and
// converts the verbose_json response into a Transcript.
func (p *Provider) Transcribe(ctx context.Context, req stt.Request) (stt.Transcript, error) {
	if err := ctx.Err(); err != nil {
		return stt.Transcript{}, fmt.Errorf("whisper: context already cancelled: %w", err)
	}

	lang := req.Language
	if lang == "" {
		lang = p.language
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	// Primary audio field.
	fw, err := mw.CreateFormFile("file", "audio.wav")
	if err != nil {
		return stt.Transcript{}, fmt.Errorf("whisper: create form file: %w", err)
	}
	if _, err := fw.Write(audio.EncodeWAV(req.Audio)); err != nil {
		return stt.Transcript{}, fmt.Errorf("whisper: write wav data: %w", err)
	}

	fields := map[string]string{
		"response_format": "verbose_json",
		"temperature":     "0",
		"language":        lang,
		"model":           p.model,
		"prompt":          prompt(req.Keywords),
	}
	for _, k := range []string{"response_format", "temperature", "language", "model", "prompt"} {
		if fields[k] == "" {
			continue
		}
		if err := mw.WriteField(k, fields[k]); err != nil {
			return stt.Transcript{}, fmt.Errorf("whisper: write %s field: %w", k, err)
		}
	}

	if err := mw.Close(); err != nil {
		return stt.Transcript{}, fmt.Errorf("whisper: close multipart writer: %w", err)
	}

	endpoint := p.serverURL + "/inference"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return stt.Transcript{}, fmt.Errorf("whisper: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return stt.Transcript{}, fmt.Errorf("whisper: http request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return stt.Transcript{}, fmt.Errorf("whisper: read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return stt.Transcript{}, &stt.StatusError{Provider: "whisper", Code: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	var result verboseResponse
	if err := json.Unmarshal(data, &result); err != nil {
		return stt.Transcript{}, fmt.Errorf("whisper: parse JSON response: %w", err)
	}
	return result.transcript(lang)
}

// ---- response decoding -------------------------------------------------------

type verboseResponse struct {
	Text     string           `json:"text"`
	Language string           `json:"language"`
	Segments []verboseSegment `json:"segments"`
}

type verboseSegment struct {
	Text  string        `json:"text"`
	Start float64       `json:"start"`
	End   float64       `json:"end"`
	Words []verboseWord `json:"words"`
}

type verboseWord struct {
	Word        string  `json:"word"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Probability float64 `json:"probability"`
}

func (r verboseResponse) transcript(lang string) (stt.Transcript, error) {
	var words []types.Word
	coarse := 0
	for _, seg := range r.Segments {
		if len(seg.Words) == 0 {
			words = append(words, spreadSegment(seg)...)
			coarse++
			continue
		}
		for _, w := range seg.Words {
			words = append(words, types.Word{
				Text:       w.Word,
				Start:      seconds(w.Start),
				End:        seconds(w.End),
				Confidence: w.Probability,
			})
		}
	}
	if coarse > 0 {
		slog.Debug("whisper: segments without word timings, spreading evenly", "segments", coarse)
	}

	if r.Language != "" {
		lang = r.Language
	}
	tr := stt.Transcript{Text: r.Text, Words: words, Language: lang, Provider: "whisper"}.Normalize()
	if tr.Text != "" && len(tr.Words) == 0 {
		return stt.Transcript{}, fmt.Errorf("whisper: %w", stt.ErrNoWordTimestamps)
	}
	return tr, nil
}

// spreadSegment distributes a segment's words across its time span in
// proportion to their length. Used only when the server omitted word timings.
func spreadSegment(seg verboseSegment) []types.Word {
	fields := strings.Fields(seg.Text)
	if len(fields) == 0 || seg.End <= seg.Start {
		return nil
	}
	var total int
	for _, f := range fields {
		total += len(f)
	}
	span := seg.End - seg.Start
	out := make([]types.Word, 0, len(fields))
	at := seg.Start
	for _, f := range fields {
		d := span * float64(len(f)) / float64(total)
		out = append(out, types.Word{Text: f, Start: seconds(at), End: seconds(at + d)})
		at += d
	}
	return out
}

// ---- helpers ----------------------------------------------------------------

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// prompt turns keyword hints into whisper's initial prompt, which biases the
// decoder towards those spellings.
func prompt(keywords []stt.KeywordBoost) string {
	if len(keywords) == 0 {
		return ""
	}
	parts := make([]string, 0, min(len(keywords), maxPromptKeywords))
	for _, k := range keywords[:min(len(keywords), maxPromptKeywords)] {
		if k.Keyword != "" {
			parts = append(parts, k.Keyword)
		}
	}
	return strings.Join(parts, ", ")
}
