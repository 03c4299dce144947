package perception

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"athena/internal/logging"
)

// Outcome classifies a single HTTP attempt.
type Outcome int

const (
	OutcomeSuccess     Outcome = iota // 2xx and a usable answer
	OutcomeRateLimited                // quota exhausted, retryable
	OutcomeRejected                   // any other non-2xx, not retried
	OutcomeTransport                  // connection/DNS/TLS failure, not retried
	OutcomeDecode                     // 2xx with an unusable body, not retried
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeRateLimited:
		return "rate_limited"
	case OutcomeRejected:
		return "rejected"
	case OutcomeTransport:
		return "transport"
	case OutcomeDecode:
		return "decode"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// DecodeResult enumerates the shapes a 2xx body can take.
type DecodeResult int

const (
	DecodeOK           DecodeResult = iota
	DecodeMalformed                 // not JSON, or not the response schema
	DecodeNoCandidates              // candidates missing or empty
	DecodeNoText                    // first candidate has no content, parts or text
)

func (d DecodeResult) String() string {
	switch d {
	case DecodeOK:
		return "ok"
	case DecodeMalformed:
		return "malformed"
	case DecodeNoCandidates:
		return "no_candidates"
	case DecodeNoText:
		return "no_text"
	}
	return fmt.Sprintf("decode(%d)", int(d))
}

// RetryState is the state of one Send call.
type RetryState int

const (
	StateAttempting RetryState = iota
	StateBackoff
	StateAbandoned
	StateSucceeded
)

func (s RetryState) String() string {
	switch s {
	case StateAttempting:
		return "attempting"
	case StateBackoff:
		return "backoff"
	case StateAbandoned:
		return "abandoned"
	case StateSucceeded:
		return "succeeded"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// quotaMarkers identify quota exhaustion in an error body.
var quotaMarkers = []string{"429", "RESOURCE_EXHAUSTED"}

const (
	DefaultMaxRetries = 2
	DefaultBackoff    = 10 * time.Second
)

// GeminiConfig holds configuration for the Gemini client.
type GeminiConfig struct {
	APIKey     string
	BaseURL    string
	APIVersion string
	Model      string
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration
}

// DefaultGeminiConfig returns sensible defaults.
func DefaultGeminiConfig(apiKey string) GeminiConfig {
	return GeminiConfig{
		APIKey:     apiKey,
		BaseURL:    "https://generativelanguage.googleapis.com",
		APIVersion: "v1beta",
		Model:      "gemini-2.5-flash",
		Timeout:    120 * time.Second,
		MaxRetries: DefaultMaxRetries,
		Backoff:    DefaultBackoff,
	}
}

// GeminiClient posts generateContent requests with the bounded
// quota-retry protocol.
type GeminiClient struct {
	mu         sync.RWMutex
	cfg        GeminiConfig
	httpClient *http.Client
	sleep      Sleeper
	notifier   Notifier
	usage      UsageRecorder
}

// GeminiOption customises a GeminiClient.
type GeminiOption func(*GeminiClient)

// WithSleeper replaces the backoff sleeper.
func WithSleeper(s Sleeper) GeminiOption {
	return func(c *GeminiClient) { c.sleep = s }
}

// WithNotifier sets the notice sink.
func WithNotifier(n Notifier) GeminiOption {
	return func(c *GeminiClient) { c.notifier = n }
}

// WithUsageRecorder sets the token usage sink.
func WithUsageRecorder(u UsageRecorder) GeminiOption {
	return func(c *GeminiClient) { c.usage = u }
}

// NewGeminiClient creates a new Gemini client.
func NewGeminiClient(cfg GeminiConfig, opts ...GeminiOption) *GeminiClient {
	c := &GeminiClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		sleep:      SleepContext,
		notifier:   nopNotifier{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Reconfigure swaps credential, model and retry settings. Safe to call from
// another goroutine while Send is running; the running call keeps its snapshot.
func (c *GeminiClient) Reconfigure(cfg GeminiConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg = cfg
	if cfg.Timeout > 0 {
		c.httpClient.Timeout = cfg.Timeout
	}
}

// Ready reports whether a credential is configured.
func (c *GeminiClient) Ready() bool {
	return c.snapshot().APIKey != ""
}

// Model returns the configured model name.
func (c *GeminiClient) Model() string {
	return c.snapshot().Model
}

func (c *GeminiClient) snapshot() GeminiConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg
}

func endpoint(cfg GeminiConfig) string {
	base := strings.TrimRight(cfg.BaseURL, "/")
	return fmt.Sprintf("%s/%s/models/%s:generateContent?key=%s",
		base, cfg.APIVersion, cfg.Model, url.QueryEscape(cfg.APIKey))
}

// attemptResult is what one POST produced.
type attemptResult struct {
	outcome Outcome
	decode  DecodeResult
	text    string
	status  int
	detail  string
	usage   *GeminiUsageMetadata
}

// Send posts req, retrying only on quota exhaustion with a fixed backoff.
// At most MaxRetries+1 attempts are made and the sleeper runs only between
// attempts. The answer is returned exactly as the model produced it.
func (c *GeminiClient) Send(ctx context.Context, req GeminiRequest) (string, bool) {
	cfg := c.snapshot()
	mode := ModePlain
	if req.Augmented() {
		mode = ModeAugmented
	}
	log := logging.Get(logging.CategoryAPI).With("mode", mode.String(), "model", cfg.Model)

	if cfg.APIKey == "" {
		log.Warn("Send: API key not configured")
		c.notifier.Notify(Notice{Kind: NoticeMissingKey})
		return "", false
	}

	body, err := json.Marshal(req)
	if err != nil {
		log.Error("Send: marshal request: %v", err)
		return "", false
	}

	target := endpoint(cfg)
	timer := logging.StartTimer(logging.CategoryAPI, "generateContent")
	defer timer.Stop()

	var (
		state   = StateAttempting
		attempt = 0
		last    attemptResult
	)
	for {
		switch state {
		case StateAttempting:
			if attempt > cfg.MaxRetries {
				state = StateAbandoned
				continue
			}
			last = c.attempt(ctx, target, body)
			log.Debug("Send: attempt=%d outcome=%s status=%d", attempt+1, last.outcome, last.status)
			switch last.outcome {
			case OutcomeSuccess:
				state = StateSucceeded
			case OutcomeRateLimited:
				state = StateBackoff
			default:
				state = StateAbandoned
			}

		case StateBackoff:
			attempt++
			if attempt > cfg.MaxRetries {
				state = StateAbandoned
				continue
			}
			log.Warn("Send: quota exhausted, sleeping %v before attempt %d", cfg.Backoff, attempt+1)
			c.notifier.Notify(Notice{Kind: NoticeBackoff, Attempt: attempt, Wait: cfg.Backoff, Status: last.status})
			if err := c.sleep(ctx, cfg.Backoff); err != nil {
				log.Warn("Send: backoff interrupted: %v", err)
				last = attemptResult{outcome: OutcomeTransport, detail: err.Error()}
				state = StateAbandoned
				continue
			}
			state = StateAttempting

		case StateSucceeded:
			if c.usage != nil && last.usage != nil {
				c.usage.Record(mode.String(), cfg.Model, last.usage.PromptTokenCount, last.usage.CandidatesTokenCount)
			}
			log.Info("Send: answered after %d attempt(s), response_len=%d", attempt+1, len(last.text))
			return last.text, true

		case StateAbandoned:
			c.reportAbandon(log, last, attempt)
			return "", false
		}
	}
}

func (c *GeminiClient) reportAbandon(log *logging.Logger, last attemptResult, attempts int) {
	switch last.outcome {
	case OutcomeRateLimited:
		log.Error("Send: gave up after %d attempts still rate limited", attempts)
		c.notifier.Notify(Notice{Kind: NoticeGaveUp, Attempt: attempts, Status: last.status, Detail: last.detail})
	case OutcomeRejected:
		log.Error("Send: rejected with status %d: %s", last.status, last.detail)
		c.notifier.Notify(Notice{Kind: NoticeRejected, Status: last.status, Detail: last.detail})
	case OutcomeTransport:
		log.Error("Send: transport failure: %s", last.detail)
		c.notifier.Notify(Notice{Kind: NoticeTransport, Detail: last.detail})
	case OutcomeDecode:
		log.Warn("Send: unusable response (%s)", last.decode)
		c.notifier.Notify(Notice{Kind: NoticeDecode, Status: last.status, Detail: last.decode.String()})
	}
}

// attempt performs one POST and classifies it.
func (c *GeminiClient) attempt(ctx context.Context, target string, body []byte) attemptResult {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return attemptResult{outcome: OutcomeTransport, detail: err.Error()}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return attemptResult{outcome: OutcomeTransport, detail: redactKey(err.Error())}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return attemptResult{outcome: OutcomeTransport, status: resp.StatusCode, detail: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		outcome := OutcomeRejected
		if IsQuotaExhausted(resp.StatusCode, respBody) {
			outcome = OutcomeRateLimited
		}
		return attemptResult{outcome: outcome, status: resp.StatusCode, detail: string(respBody)}
	}

	text, result, usage := DecodeResponse(respBody)
	if result != DecodeOK {
		return attemptResult{outcome: OutcomeDecode, decode: result, status: resp.StatusCode}
	}
	return attemptResult{outcome: OutcomeSuccess, decode: DecodeOK, text: text, status: resp.StatusCode, usage: usage}
}

// IsQuotaExhausted reports whether an error response means the quota is
// used up. A 429 status or a structured RESOURCE_EXHAUSTED error is
// authoritative; otherwise the body is searched for the markers. The
// substring fallback can match unrelated text that happens to contain "429".
func IsQuotaExhausted(status int, body []byte) bool {
	if status == http.StatusTooManyRequests {
		return true
	}
	var env geminiErrorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error != nil {
		if env.Error.Code == http.StatusTooManyRequests || env.Error.Status == "RESOURCE_EXHAUSTED" {
			return true
		}
	}
	text := string(body)
	for _, marker := range quotaMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// DecodeResponse extracts the first candidate's first text part.
func DecodeResponse(body []byte) (string, DecodeResult, *GeminiUsageMetadata) {
	var resp GeminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", DecodeMalformed, nil
	}
	if len(resp.Candidates) == 0 {
		return "", DecodeNoCandidates, resp.UsageMetadata
	}
	first := resp.Candidates[0]
	if first.Content == nil || len(first.Content.Parts) == 0 {
		return "", DecodeNoText, resp.UsageMetadata
	}
	text := first.Content.Parts[0].Text
	if text == nil || *text == "" {
		return "", DecodeNoText, resp.UsageMetadata
	}
	return *text, DecodeOK, resp.UsageMetadata
}

// redactKey strips the credential from error strings that echo the URL.
func redactKey(s string) string {
	i := strings.Index(s, "key=")
	if i < 0 {
		return s
	}
	end := strings.IndexAny(s[i:], "&\" ")
	if end < 0 {
		return s[:i] + "key=REDACTED"
	}
	return s[:i] + "key=REDACTED" + s[i+end:]
}
