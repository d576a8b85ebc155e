package deepgram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MrWong99/orator/pkg/audio"
	"github.com/MrWong99/orator/pkg/provider/stt"
	"github.com/coder/websocket"
)

// ---- URL / query-param tests ----

func TestBuildURL_Defaults(t *testing.T) {
	p, err := New("test-key")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	rawURL, err := p.buildURL(stt.Request{Audio: audio.PCM{SampleRate: 16000}})
	if err != nil {
		t.Fatalf("buildURL: %v", err)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		t.Fatalf("parse URL: %v", err)
	}
	q := u.Query()

	assertEqual(t, "model", "nova-3", q.Get("model"))
	assertEqual(t, "language", "en", q.Get("language"))
	assertEqual(t, "punctuate", "true", q.Get("punctuate"))
	assertEqual(t, "filler_words", "true", q.Get("filler_words"))
	assertEqual(t, "encoding", "linear16", q.Get("encoding"))
	assertEqual(t, "sample_rate", "16000", q.Get("sample_rate"))
	assertEqual(t, "channels", "1", q.Get("channels"))
}

func TestBuildURL_CustomModel(t *testing.T) {
	p, err := New("key", WithModel("base"), WithLanguage("de-DE"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	rawURL, err := p.buildURL(stt.Request{})
	if err != nil {
		t.Fatalf("buildURL: %v", err)
	}

	u, _ := url.Parse(rawURL)
	q := u.Query()

	assertEqual(t, "model", "base", q.Get("model"))
	assertEqual(t, "language", "de-DE", q.Get("language"))
	assertEqual(t, "sample_rate", "16000", q.Get("sample_rate"))
}

func TestBuildURL_LanguageOverridenByRequest(t *testing.T) {
	p, err := New("key", WithLanguage("en"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	rawURL, err := p.buildURL(stt.Request{Language: "fr-FR"})
	if err != nil {
		t.Fatalf("buildURL: %v", err)
	}

	u, _ := url.Parse(rawURL)
	assertEqual(t, "language", "fr-FR", u.Query().Get("language"))
}

func TestBuildURL_Keywords(t *testing.T) {
	p, err := New("key")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	rawURL, err := p.buildURL(stt.Request{
		Keywords: []stt.KeywordBoost{
			{Keyword: "photosynthesis", Boost: 5},
			{Keyword: "chlorophyll"},
		},
	})
	if err != nil {
		t.Fatalf("buildURL: %v", err)
	}

	u, _ := url.Parse(rawURL)
	kws := u.Query()["keywords"]
	if len(kws) != 2 {
		t.Fatalf("expected 2 keywords, got %d: %v", len(kws), kws)
	}
	found := map[string]bool{}
	for _, kw := range kws {
		found[kw] = true
	}
	if !found["photosynthesis:5"] || !found["chlorophyll:1"] {
		t.Errorf("keywords = %v", kws)
	}
}

// ---- JSON parsing tests ----

func TestParseDeepgramResponse_Final(t *testing.T) {
	raw := []byte(`{
		"type": "Results",
		"is_final": true,
		"start": 2.5,
		"channel": {
			"alternatives": [{
				"transcript": "Hello world",
				"confidence": 0.95,
				"words": [
					{"word": "hello", "punctuated_word": "Hello", "start": 2.6, "end": 3.0, "confidence": 0.97},
					{"word": "world", "start": 3.1, "end": 3.5, "confidence": 0.93}
				]
			}]
		}
	}`)

	r, kind := parseDeepgramResponse(raw)
	assertEqual(t, "kind", "Results", kind)
	if !r.IsFinal {
		t.Error("expected IsFinal=true")
	}
	assertEqual(t, "text", "Hello world", r.Text)
	if len(r.Words) != 2 {
		t.Fatalf("expected 2 words, got %d", len(r.Words))
	}
	assertEqual(t, "word[0]", "Hello", r.Words[0].Text)
	assertEqual(t, "word[1]", "world", r.Words[1].Text)
	if r.Start != 2500*time.Millisecond {
		t.Errorf("unexpected start: %v", r.Start)
	}
}

func TestParseDeepgramResponse_Types(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`{"type":"Metadata","request_id":"abc"}`, "Metadata"},
		{`{"type":"Error","description":"bad audio"}`, "Error"},
		{`{"type":"SpeechStarted"}`, ""},
		{`{"type":"Results","is_final":true,"channel":{"alternatives":[]}}`, ""},
		{`{invalid`, ""},
	}
	for _, tt := range tests {
		_, kind := parseDeepgramResponse([]byte(tt.raw))
		assertEqual(t, tt.raw, tt.want, kind)
	}
}

// ---- streaming against a fake server ----

func newFakeDeepgram(t *testing.T, messages []string, gotBytes *atomic.Int64) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Token key" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.CloseNow()
		ctx := r.Context()
		for {
			typ, msg, err := conn.Read(ctx)
			if err != nil {
				return
			}
			if typ == websocket.MessageBinary {
				gotBytes.Add(int64(len(msg)))
				continue
			}
			if strings.Contains(string(msg), "CloseStream") {
				break
			}
		}
		for _, m := range messages {
			if err := conn.Write(ctx, websocket.MessageText, []byte(m)); err != nil {
				return
			}
		}
		conn.Close(websocket.StatusNormalClosure, "")
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestTranscribe_CollectsFinals(t *testing.T) {
	var got atomic.Int64
	messages := []string{
		`{"type":"Results","is_final":false,"start":0,"channel":{"alternatives":[{"transcript":"um hel","words":[]}]}}`,
		`{"type":"Results","is_final":true,"start":3.0,"channel":{"alternatives":[{"transcript":"Today we talk.","words":[
			{"word":"today","punctuated_word":"Today","start":3.0,"end":3.4},
			{"word":"we","start":3.5,"end":3.7},
			{"word":"talk","punctuated_word":"talk.","start":3.8,"end":4.2}]}]}}`,
		`{"type":"Results","is_final":true,"start":0,"channel":{"alternatives":[{"transcript":"Um, hello.","words":[
			{"word":"um","punctuated_word":"Um,","start":0.2,"end":0.4},
			{"word":"hello","punctuated_word":"hello.","start":0.5,"end":0.9}]}]}}`,
		`{"type":"Metadata","request_id":"r1"}`,
	}
	srv := newFakeDeepgram(t, messages, &got)

	p, err := New("key", WithEndpoint("ws"+strings.TrimPrefix(srv.URL, "http")))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	pcm := audio.PCM{Samples: make([]float32, 16000), SampleRate: 16000}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tr, err := p.Transcribe(ctx, stt.Request{Audio: pcm})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if got.Load() != 32000 {
		t.Errorf("server received %d audio bytes, want 32000", got.Load())
	}
	assertEqual(t, "text", "Um, hello. Today we talk.", tr.Text)
	if len(tr.Words) != 5 {
		t.Fatalf("len(Words) = %d, want 5", len(tr.Words))
	}
	assertEqual(t, "first word", "Um,", tr.Words[0].Text)
	assertEqual(t, "provider", "deepgram", tr.Provider)
}

func TestTranscribe_Unauthorized(t *testing.T) {
	var got atomic.Int64
	srv := newFakeDeepgram(t, nil, &got)

	p, _ := New("wrong", WithEndpoint("ws"+strings.TrimPrefix(srv.URL, "http")))
	_, err := p.Transcribe(context.Background(), stt.Request{Audio: audio.PCM{Samples: make([]float32, 160), SampleRate: 16000}})
	if err == nil {
		t.Fatal("expected error for rejected handshake")
	}
	if !stt.IsPermanent(err) {
		t.Errorf("err = %v, want permanent status error", err)
	}
}

// ---- Constructor tests ----

func TestNew_EmptyAPIKey(t *testing.T) {
	_, err := New("")
	if err == nil {
		t.Error("expected error for empty API key")
	}
}

func TestNew_Defaults(t *testing.T) {
	p, err := New("key")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	assertEqual(t, "model", defaultModel, p.model)
	assertEqual(t, "language", defaultLanguage, p.language)
	assertEqual(t, "endpoint", deepgramEndpoint, p.endpoint)
}

// ---- helpers ----

func assertEqual(t *testing.T, label, want, got string) {
	t.Helper()
	if want != got {
		t.Errorf("%s: want %q, got %q", label, want, got)
	}
}
