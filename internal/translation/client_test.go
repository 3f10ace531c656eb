package translation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func writeEvent(t *testing.T, w http.ResponseWriter, ev any) {
	t.Helper()
	b, err := json.Marshal(ev)
	if err != nil {
		t.Error(err)
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", b)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func newTestClient(url string) *Client {
	return NewClient(Options{
		BaseURL:         url + "/",
		OpenAIAPIKey:    "sk-openai",
		AnthropicAPIKey: "sk-ant",
		Timeout:         5 * time.Second,
	})
}

func TestTranslateStream(t *testing.T) {
	t.Parallel()
	bodies := make(chan chatRequest, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		var body chatRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		bodies <- body
		w.Header().Set("Content-Type", "text/event-stream")
		writeEvent(t, w, map[string]any{"progress": 50, "message": "Transliterating"})
		fmt.Fprint(w, "data: {not json}\n")
		fmt.Fprint(w, ": keep-alive\n")
		writeEvent(t, w, map[string]any{"progress": 90})
		writeEvent(t, w, map[string]any{"result": Result{
			MingrelianLatinized: "margali",
			MingrelianMkhedruli: "მარგალი",
			Georgian:            "მეგრელი",
			English:             "Mingrelian",
		}})
	}))
	defer srv.Close()

	var progress []Progress
	res, err := newTestClient(srv.URL).Translate(context.Background(), Request{
		Prompt:         "margali",
		TargetLanguage: "english",
		Model:          "gpt-5-2025-08-07",
	}, func(p Progress) { progress = append(progress, p) })
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}

	if res.English != "Mingrelian" || res.MingrelianMkhedruli != "მარგალი" {
		t.Errorf("result = %+v", res)
	}
	if res.GeorgianLatinized() != "megreli" {
		t.Errorf("GeorgianLatinized = %q", res.GeorgianLatinized())
	}
	if len(progress) != 2 || progress[0].Percent != 50 || progress[0].Message != "Transliterating" || progress[1].Percent != 90 {
		t.Errorf("progress = %+v", progress)
	}
	got := <-bodies
	want := chatRequest{Prompt: "margali", APIKey: "sk-openai", TargetLanguage: "english", Model: "gpt-5-2025-08-07", Provider: ProviderOpenAI}
	if got != want {
		t.Errorf("request = %+v, want %+v", got, want)
	}
}

func TestTranslateAnthropicKey(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body chatRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.APIKey != "sk-ant" || body.Provider != ProviderAnthropic {
			t.Errorf("body = %+v", body)
		}
		writeEvent(t, w, map[string]any{"result": Result{English: "ok"}})
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Translate(context.Background(), Request{
		Prompt: "ma", Model: "claude-sonnet-4-5-20250929", TargetLanguage: "georgian",
	}, nil)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
}

func TestTranslateValidation(t *testing.T) {
	t.Parallel()
	c := NewClient(Options{BaseURL: "http://127.0.0.1:1", OpenAIAPIKey: "sk"})

	if _, err := c.Translate(context.Background(), Request{Prompt: "  \n", Model: "gpt-5-2025-08-07"}, nil); !errors.Is(err, ErrEmptyPrompt) {
		t.Errorf("empty prompt: err = %v", err)
	}
	if _, err := c.Translate(context.Background(), Request{Prompt: "ma", Model: "claude-sonnet-4-5-20250929"}, nil); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("missing key: err = %v", err)
	}
}

func TestTranslateAPIError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		body       string
		wantDetail string
	}{
		{"json detail", `{"detail":"Invalid API key"}`, "Invalid API key"},
		{"plain body", "boom", "Unauthorized"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			_, err := newTestClient(srv.URL).Translate(context.Background(), Request{Prompt: "ma", Model: "gpt-5-2025-08-07"}, nil)
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("err = %v, want *APIError", err)
			}
			if apiErr.StatusCode != http.StatusUnauthorized || apiErr.Detail != tt.wantDetail {
				t.Errorf("apiErr = %+v", apiErr)
			}
		})
	}
}

func TestTranslateStreamError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEvent(t, w, map[string]any{"progress": 10})
		writeEvent(t, w, map[string]any{"error": "model overloaded"})
		writeEvent(t, w, map[string]any{"result": Result{English: "late"}})
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Translate(context.Background(), Request{Prompt: "ma", Model: "gpt-5-2025-08-07"}, nil)
	var streamErr *StreamError
	if !errors.As(err, &streamErr) || streamErr.Message != "model overloaded" {
		t.Fatalf("err = %v, want stream error", err)
	}
}

func TestTranslateNoResult(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEvent(t, w, map[string]any{"progress": 50})
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Translate(context.Background(), Request{Prompt: "ma", Model: "gpt-5-2025-08-07"}, nil)
	if !errors.Is(err, ErrNoResult) {
		t.Fatalf("err = %v, want ErrNoResult", err)
	}
}

func TestTranslateTimeout(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(Options{BaseURL: srv.URL, OpenAIAPIKey: "sk", Timeout: 100 * time.Millisecond})
	_, err := c.Translate(context.Background(), Request{Prompt: "ma", Model: "gpt-5-2025-08-07"}, nil)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
}

func TestTranslateStreamOutlivesTimeout(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for i := 1; i <= 4; i++ {
			writeEvent(t, w, map[string]any{"progress": i * 20})
			time.Sleep(60 * time.Millisecond)
		}
		writeEvent(t, w, map[string]any{"result": Result{English: "done"}})
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL, OpenAIAPIKey: "sk", Timeout: 100 * time.Millisecond})
	var frames int
	res, err := c.Translate(context.Background(), Request{Prompt: "ma", Model: "gpt-5-2025-08-07"},
		func(Progress) { frames++ })
	if err != nil {
		t.Fatalf("stream longer than the response timeout failed: %v", err)
	}
	if res.English != "done" || frames != 4 {
		t.Errorf("English = %q, progress frames = %d", res.English, frames)
	}
}

func TestTranslateCallerCancel(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEvent(t, w, map[string]any{"progress": 5})
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	c := newTestClient(srv.URL)
	_, err := c.Translate(ctx, Request{Prompt: "ma", Model: "gpt-5-2025-08-07"}, func(Progress) { cancel() })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestTranslateSingleInFlight(t *testing.T) {
	t.Parallel()
	started := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
		writeEvent(t, w, map[string]any{"result": Result{English: "done"}})
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	req := Request{Prompt: "ma", Model: "gpt-5-2025-08-07"}

	done := make(chan error, 1)
	go func() {
		_, err := c.Translate(context.Background(), req, nil)
		done <- err
	}()

	<-started
	if _, err := c.Translate(context.Background(), req, nil); !errors.Is(err, ErrRequestInFlight) {
		t.Errorf("second request: err = %v, want ErrRequestInFlight", err)
	}
	close(release)

	if err := <-done; err != nil {
		t.Fatalf("first request: %v", err)
	}
}

func TestProviderFor(t *testing.T) {
	t.Parallel()
	if p := ProviderFor("claude-sonnet-4-5-20250929"); p != ProviderAnthropic {
		t.Errorf("ProviderFor(claude) = %s", p)
	}
	if p := ProviderFor("gpt-5-2025-08-07"); p != ProviderOpenAI {
		t.Errorf("ProviderFor(gpt) = %s", p)
	}
	if p := ProviderFor("unknown"); p != ProviderOpenAI {
		t.Errorf("ProviderFor(unknown) = %s", p)
	}
	if !ValidTargetLanguage("georgian") || ValidTargetLanguage("french") {
		t.Error("ValidTargetLanguage mismatch")
	}
}
