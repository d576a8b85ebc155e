// Package deepgram provides a Deepgram-backed STT provider using the Deepgram
// streaming WebSocket API. It implements the stt.Provider interface.
//
// A recording is replayed over the socket in fixed-size linear16 chunks, the
// stream is closed with a CloseStream control message, and the words of every
// final result are collected until Deepgram closes the connection.
package deepgram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/MrWong99/orator/pkg/audio"
	"github.com/MrWong99/orator/pkg/provider/stt"
	"github.com/MrWong99/orator/pkg/types"
	"github.com/coder/websocket"
	"golang.org/x/sync/errgroup"
)

const (
	deepgramEndpoint = "wss://api.deepgram.com/v1/listen"
	defaultModel     = "nova-3"
	defaultLanguage  = "en"

	// chunkDuration is the amount of audio sent per binary frame.
	chunkDuration = 100 * time.Millisecond
)

var _ stt.Provider = (*Provider)(nil)

// Option is a functional option for configuring the Deepgram Provider.
type Option func(*Provider)

// WithModel sets the Deepgram model to use (e.g., "nova-3", "base").
func WithModel(model string) Option {
	return func(p *Provider) {
		p.model = model
	}
}

// WithLanguage sets the BCP-47 language code for recognition (e.g., "en", "de-DE").
func WithLanguage(language string) Option {
	return func(p *Provider) {
		p.language = language
	}
}

// WithEndpoint overrides the streaming endpoint (ws:// or wss://). Used to
// target self-hosted deployments and test servers.
func WithEndpoint(endpoint string) Option {
	return func(p *Provider) {
		p.endpoint = endpoint
	}
}

// Provider implements stt.Provider backed by the Deepgram streaming API.
type Provider struct {
	apiKey   string
	model    string
	language string
	endpoint string
}

// New creates a new Deepgram Provider. apiKey must be non-empty.
func New(apiKey string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("deepgram: apiKey must not be empty")
	}
	p := &Provider{
		apiKey:   apiKey,
		model:    defaultModel,
		language: defaultLanguage,
		endpoint: deepgramEndpoint,
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Transcribe streams req.Audio to Deepgram and returns the concatenation of
// all final results.
func (p *Provider) Transcribe(ctx context.Context, req stt.Request) (stt.Transcript, error) {
	wsURL, err := p.buildURL(req)
	if err != nil {
		return stt.Transcript{}, fmt.Errorf("deepgram: build URL: %w", err)
	}

	headers := http.Header{}
	headers.Set("Authorization", "Token "+p.apiKey)

	conn, resp, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{
		HTTPHeader: headers,
	})
	if err != nil {
		if ctx.Err() != nil {
			return stt.Transcript{}, fmt.Errorf("deepgram: dial: %w", ctx.Err())
		}
		if resp != nil && resp.StatusCode != http.StatusSwitchingProtocols {
			return stt.Transcript{}, &stt.StatusError{Provider: "deepgram", Code: resp.StatusCode}
		}
		return stt.Transcript{}, fmt.Errorf("deepgram: dial: %w", err)
	}
	defer conn.CloseNow()
	// Recordings up to 50 MB of compressed audio can produce large result
	// messages; the default 32 KiB read limit is too small.
	conn.SetReadLimit(4 << 20)

	pcm := audio.FloatToInt16LE(req.Audio.Samples)
	chunk := 2 * int(float64(req.Audio.SampleRate)*chunkDuration.Seconds())
	if chunk <= 0 {
		chunk = 3200
	}

	var results []result
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return writeAudio(gctx, conn, pcm, chunk)
	})
	g.Go(func() error {
		var err error
		results, err = readResults(gctx, conn)
		return err
	})
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return stt.Transcript{}, fmt.Errorf("deepgram: %w", ctx.Err())
		}
		return stt.Transcript{}, err
	}
	conn.Close(websocket.StatusNormalClosure, "transcription complete")

	return assemble(results, p.languageFor(req)), nil
}

func (p *Provider) languageFor(req stt.Request) string {
	if req.Language != "" {
		return req.Language
	}
	return p.language
}

// buildURL constructs the Deepgram streaming endpoint URL for the given request.
func (p *Provider) buildURL(req stt.Request) (string, error) {
	u, err := url.Parse(p.endpoint)
	if err != nil {
		return "", err
	}

	sr := req.Audio.SampleRate
	if sr == 0 {
		sr = audio.DefaultSampleRate
	}

	q := u.Query()
	q.Set("model", p.model)
	q.Set("language", p.languageFor(req))
	q.Set("punctuate", "true")
	// Fillers ("um", "uh") are dropped by default; the fluency analysis needs them.
	q.Set("filler_words", "true")
	q.Set("encoding", "linear16")
	q.Set("sample_rate", strconv.Itoa(sr))
	q.Set("channels", "1")

	for _, kw := range req.Keywords {
		// Deepgram keyword format: word:boost (e.g., "photosynthesis:2")
		boost := kw.Boost
		if boost == 0 {
			boost = 1
		}
		q.Add("keywords", fmt.Sprintf("%s:%g", kw.Keyword, boost))
	}

	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ---- streaming ----

// writeAudio sends pcm in fixed-size binary frames followed by CloseStream.
func writeAudio(ctx context.Context, conn *websocket.Conn, pcm []byte, chunk int) error {
	for off := 0; off < len(pcm); off += chunk {
		end := min(off+chunk, len(pcm))
		if err := conn.Write(ctx, websocket.MessageBinary, pcm[off:end]); err != nil {
			return fmt.Errorf("deepgram: send audio: %w", err)
		}
	}
	if err := conn.Write(ctx, websocket.MessageText, []byte(`{"type":"CloseStream"}`)); err != nil {
		return fmt.Errorf("deepgram: send CloseStream: %w", err)
	}
	return nil
}

// readResults collects final results until the server closes the stream or
// sends its closing Metadata message.
func readResults(ctx context.Context, conn *websocket.Conn) ([]result, error) {
	var out []result
	for {
		_, msg, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return out, nil
			}
			return nil, fmt.Errorf("deepgram: read: %w", err)
		}

		r, kind := parseDeepgramResponse(msg)
		switch kind {
		case "Results":
			if r.IsFinal {
				out = append(out, r)
			}
		case "Metadata":
			return out, nil
		case "Error":
			return nil, fmt.Errorf("deepgram: server error: %s", r.Text)
		}
	}
}

// ---- response parsing ----

// deepgramResponse is the JSON structure returned by Deepgram for a Results event.
type deepgramResponse struct {
	Type        string  `json:"type"`
	IsFinal     bool    `json:"is_final"`
	Start       float64 `json:"start"`
	Description string  `json:"description"`
	Channel     struct {
		Alternatives []struct {
			Transcript string  `json:"transcript"`
			Confidence float64 `json:"confidence"`
			Words      []struct {
				Word           string  `json:"word"`
				PunctuatedWord string  `json:"punctuated_word"`
				Start          float64 `json:"start"`
				End            float64 `json:"end"`
				Confidence     float64 `json:"confidence"`
			} `json:"words"`
		} `json:"alternatives"`
	} `json:"channel"`
}

type result struct {
	Text    string
	IsFinal bool
	Start   time.Duration
	Words   []types.Word
}

// parseDeepgramResponse parses a raw Deepgram WebSocket message. The second
// return value is the message type, or "" if the message should be ignored.
func parseDeepgramResponse(data []byte) (result, string) {
	var resp deepgramResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return result{}, ""
	}
	switch resp.Type {
	case "Metadata":
		return result{}, "Metadata"
	case "Error":
		return result{Text: resp.Description}, "Error"
	case "Results":
	default:
		return result{}, ""
	}
	if len(resp.Channel.Alternatives) == 0 {
		return result{}, ""
	}

	alt := resp.Channel.Alternatives[0]
	words := make([]types.Word, 0, len(alt.Words))
	for _, w := range alt.Words {
		text := w.PunctuatedWord
		if text == "" {
			text = w.Word
		}
		words = append(words, types.Word{
			Text:       text,
			Start:      time.Duration(w.Start * float64(time.Second)),
			End:        time.Duration(w.End * float64(time.Second)),
			Confidence: w.Confidence,
		})
	}

	return result{
		Text:    alt.Transcript,
		IsFinal: resp.IsFinal,
		Start:   time.Duration(resp.Start * float64(time.Second)),
		Words:   words,
	}, "Results"
}

// assemble orders final results by start offset and joins them.
func assemble(results []result, lang string) stt.Transcript {
	sort.SliceStable(results, func(i, j int) bool { return results[i].Start < results[j].Start })
	var (
		parts []string
		words []types.Word
	)
	for _, r := range results {
		if t := strings.TrimSpace(r.Text); t != "" {
			parts = append(parts, t)
		}
		words = append(words, r.Words...)
	}
	return stt.Transcript{
		Text:     strings.Join(parts, " "),
		Words:    words,
		Language: lang,
		Provider: "deepgram",
	}.Normalize()
}
