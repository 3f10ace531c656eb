package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/kkahadze/mkhedruli-megruli/internal/translit"
)

var (
	ErrEmptyPrompt     = errors.New("please enter Mingrelian text to translate")
	ErrMissingAPIKey   = errors.New("missing API key for provider")
	ErrRequestInFlight = errors.New("a translation request is already in flight")
	ErrNoResult        = errors.New("no result received from server")
	ErrTimeout         = errors.New("request timed out")

	errResponseTimeout = errors.New("response timeout")
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Detail)
}

// StreamError is an error frame sent inside the event stream.
type StreamError struct {
	Message string
}

func (e *StreamError) Error() string {
	return "API error: " + e.Message
}

// Result is the final translation frame.
type Result struct {
	MingrelianLatinized string `json:"mingrelian_latinized"`
	MingrelianMkhedruli string `json:"mingrelian_mkhedruli"`
	Georgian            string `json:"georgian"`
	English             string `json:"english"`
}

// GeorgianLatinized romanizes the Georgian line.
func (r *Result) GeorgianLatinized() string {
	return translit.ToLatin(r.Georgian)
}

// Progress is reported while the backend works.
type Progress struct {
	Percent float64
	Message string
}

// ProgressFunc receives progress frames in arrival order.
type ProgressFunc func(Progress)

// Request describes one translation.
type Request struct {
	Prompt         string
	TargetLanguage string
	Model          string
}

type chatRequest struct {
	Prompt         string   `json:"prompt"`
	APIKey         string   `json:"api_key"`
	TargetLanguage string   `json:"target_language"`
	Model          string   `json:"model"`
	Provider       Provider `json:"provider"`
}

type errorBody struct {
	Detail string `json:"detail"`
}

// Options configures a Client.
type Options struct {
	BaseURL         string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	Timeout         time.Duration
	HTTPClient      *http.Client
}

// Client streams translations from the Mingrelian translation backend.
// It allows one request in flight at a time.
type Client struct {
	baseURL      string
	openAIKey    string
	anthropicKey string
	timeout      time.Duration
	httpClient   *http.Client
	inflight     *semaphore.Weighted
}

// NewClient creates a translation client.
func NewClient(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		// A client timeout would also cut off the stream body.
		hc = &http.Client{}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 4 * time.Minute
	}
	return &Client{
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		openAIKey:    opts.OpenAIAPIKey,
		anthropicKey: opts.AnthropicAPIKey,
		timeout:      timeout,
		httpClient:   hc,
		inflight:     semaphore.NewWeighted(1),
	}
}

func (c *Client) apiKey(p Provider) string {
	if p == ProviderAnthropic {
		return c.anthropicKey
	}
	return c.openAIKey
}

// Translate sends req and consumes the event stream until it ends.
// onProgress may be nil.
func (c *Client) Translate(ctx context.Context, req Request, onProgress ProgressFunc) (*Result, error) {
	provider := ProviderFor(req.Model)
	key := c.apiKey(provider)
	if key == "" {
		return nil, fmt.Errorf("%w %s", ErrMissingAPIKey, provider)
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, ErrEmptyPrompt
	}

	if !c.inflight.TryAcquire(1) {
		return nil, ErrRequestInFlight
	}
	defer c.inflight.Release(1)

	// The timeout covers the wait for response headers only. Once the
	// backend answers, the stream runs until it ends or ctx is done.
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	timer := time.AfterFunc(c.timeout, func() { cancel(errResponseTimeout) })
	defer timer.Stop()

	body, err := json.Marshal(chatRequest{
		Prompt:         req.Prompt,
		APIKey:         key,
		TargetLanguage: req.TargetLanguage,
		Model:          req.Model,
		Provider:       provider,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal translation request: %w", err)
	}

	log.Debug().
		Str("provider", string(provider)).
		Str("model", req.Model).
		Str("target", req.TargetLanguage).
		Msg("Sending translation request")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, c.wrapNetErr(ctx, err)
	}
	defer resp.Body.Close()
	if !timer.Stop() {
		return nil, c.wrapNetErr(ctx, context.Cause(ctx))
	}

	log.Debug().Int("status", resp.StatusCode).Msg("Response received")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeAPIError(resp)
	}

	result, err := consumeStream(resp.Body, onProgress)
	if err != nil {
		return nil, c.wrapNetErr(ctx, err)
	}
	return result, nil
}

func consumeStream(r io.Reader, onProgress ProgressFunc) (*Result, error) {
	var final *Result
	events := NewEventReader(r)
	for {
		ev, err := events.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read stream: %w", err)
		}

		switch ev.Kind() {
		case KindProgress:
			log.Debug().Float64("progress", ev.Progress).Str("message", ev.Message).Msg("Progress update")
			if onProgress != nil {
				onProgress(Progress{Percent: ev.Progress, Message: ev.Message})
			}
		case KindResult:
			final = ev.Result
		case KindError:
			return nil, &StreamError{Message: ev.Error}
		}
	}

	if final == nil {
		return nil, ErrNoResult
	}
	return final, nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, Detail: http.StatusText(resp.StatusCode)}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apiErr
	}
	var eb errorBody
	if json.Unmarshal(raw, &eb) == nil && eb.Detail != "" {
		apiErr.Detail = eb.Detail
	}
	return apiErr
}

func (c *Client) wrapNetErr(ctx context.Context, err error) error {
	if errors.Is(context.Cause(ctx), errResponseTimeout) {
		return fmt.Errorf("%w: no response after %s", ErrTimeout, c.timeout)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return fmt.Errorf("network error: %w", err)
}
