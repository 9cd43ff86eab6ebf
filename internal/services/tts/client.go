package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"learnpod/internal/config"
	"learnpod/internal/logging"
	"learnpod/internal/services/retry"
	"learnpod/internal/textutil"
)

const defaultHTTPTimeout = 300 * time.Second

// ErrNoAudio reports a response stream that finished without any audio data.
var ErrNoAudio = errors.New("tts: response contained no audio")

// Config captures the runtime settings required to talk to the speech model.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Request is one synthesis call: dialogue text plus the voice for each speaker label.
type Request struct {
	Text   string
	Voices map[string]string
}

// Segment is one raw audio payload as delivered by the service.
type Segment struct {
	MIMEType string
	Data     []byte
}

// Sink receives segments as they stream in.
type Sink interface {
	// Reset discards anything written by a previous, failed attempt.
	Reset() error
	Write(Segment) error
}

// Client streams speech from the generateContent endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client
	policy     retry.Policy
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryPolicy overrides the default retry policy.
func WithRetryPolicy(policy retry.Policy) Option {
	return func(c *Client) {
		c.policy = policy
	}
}

// WithRateLimit spaces requests so no more than perMinute are sent per minute.
func WithRateLimit(perMinute int) Option {
	return func(c *Client) {
		if perMinute > 0 {
			c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
		}
	}
}

// WithLogger attaches a logger used for retry diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient constructs a speech client.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	client := &Client{
		cfg: Config{
			APIKey:  strings.TrimSpace(cfg.APIKey),
			BaseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			Model:   strings.TrimSpace(cfg.Model),
			Timeout: timeout,
		},
		httpClient: &http.Client{Timeout: timeout},
		policy:     retry.DefaultPolicy(),
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// NewFromConfig builds a speech client from application configuration.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) *Client {
	return NewClient(Config{
		APIKey:  cfg.Gemini.APIKey,
		BaseURL: cfg.Gemini.BaseURL,
		Model:   cfg.Gemini.TTSModel,
		Timeout: cfg.TTSTimeout(),
	},
		WithRetryPolicy(retry.Policy{
			MaxAttempts: cfg.Gemini.MaxAttempts,
			BaseDelay:   time.Duration(cfg.Gemini.RetryBaseSeconds) * time.Second,
			MaxDelay:    time.Duration(cfg.Gemini.RetryMaxSeconds) * time.Second,
		}),
		WithRateLimit(cfg.Gemini.RequestsPerMinute),
		WithLogger(logging.NewComponentLogger(logger, "tts")),
	)
}

// HTTPStatusError reports a non-2xx response from the service.
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("tts request: http %d: %s", e.StatusCode, textutil.Snippet(e.Body, 200))
}

// Synthesize streams req into sink, retrying the whole stream on failure.
// It returns the number of segments written by the successful attempt.
func (c *Client) Synthesize(ctx context.Context, req Request, sink Sink) (int, error) {
	policy := c.policy
	policy.OnRetry = func(attempt int, delay time.Duration, err error) {
		logging.WithContext(ctx, c.logger).Warn("speech request failed; retrying",
			logging.Int("attempt", attempt),
			logging.Duration("delay", delay),
			logging.Error(err),
			logging.String(logging.FieldEventType, "tts_retry"),
		)
	}
	return retry.Do(ctx, policy, "tts synthesize", func(ctx context.Context, _ int) (int, error) {
		if err := sink.Reset(); err != nil {
			return 0, retry.Permanent(fmt.Errorf("reset sink: %w", err))
		}
		written := 0
		for segment, err := range c.Stream(ctx, req) {
			if err != nil {
				return written, err
			}
			if err := sink.Write(segment); err != nil {
				return written, retry.Permanent(fmt.Errorf("write segment %d: %w", written+1, err))
			}
			written++
		}
		if written == 0 {
			return 0, ErrNoAudio
		}
		return written, nil
	})
}

// Stream performs one streaming request and yields audio segments in arrival
// order. A failure is yielded once as the final element.
func (c *Client) Stream(ctx context.Context, req Request) iter.Seq2[Segment, error] {
	return func(yield func(Segment, error) bool) {
		body, err := c.open(ctx, req)
		if err != nil {
			yield(Segment{}, err)
			return
		}
		defer body.Close()

		stopped := false
		errStop := errors.New("stop")
		err = readSSE(body, func(data string) error {
			segments, err := decodeChunk(data)
			if err != nil {
				return err
			}
			for _, segment := range segments {
				if !yield(segment, nil) {
					stopped = true
					return errStop
				}
			}
			return nil
		})
		if stopped {
			return
		}
		if err != nil {
			yield(Segment{}, fmt.Errorf("tts stream: %w", err))
		}
	}
}

func (c *Client) open(ctx context.Context, req Request) (io.ReadCloser, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, retry.Permanent(errors.New("tts request: text required"))
	}
	if c.cfg.APIKey == "" {
		return nil, retry.Permanent(errors.New("tts request: api key required"))
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	encoded, err := json.Marshal(buildPayload(text, req.Voices))
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("tts request: encode body: %w", err))
	}
	endpoint, err := url.JoinPath(c.cfg.BaseURL, "models", c.cfg.Model+":streamGenerateContent")
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("tts request: build url: %w", err))
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"?alt=sse", bytes.NewReader(encoded))
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("tts request: new request: %w", err))
	}
	httpReq.Header.Set("x-goog-api-key", c.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("tts request: http error (timeout=%s): %w", c.cfg.Timeout, err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		statusErr := &HTTPStatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
		switch resp.StatusCode {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
			return nil, retry.Permanent(statusErr)
		}
		return nil, statusErr
	}
	return resp.Body, nil
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mimeType"`
	Data     []byte `json:"data"`
}

type generationConfig struct {
	Temperature        float64      `json:"temperature"`
	ResponseModalities []string     `json:"responseModalities"`
	SpeechConfig       speechConfig `json:"speechConfig"`
}

type speechConfig struct {
	MultiSpeakerVoiceConfig multiSpeakerVoiceConfig `json:"multiSpeakerVoiceConfig"`
}

type multiSpeakerVoiceConfig struct {
	SpeakerVoiceConfigs []speakerVoiceConfig `json:"speakerVoiceConfigs"`
}

type speakerVoiceConfig struct {
	Speaker     string      `json:"speaker"`
	VoiceConfig voiceConfig `json:"voiceConfig"`
}

type voiceConfig struct {
	PrebuiltVoiceConfig prebuiltVoiceConfig `json:"prebuiltVoiceConfig"`
}

type prebuiltVoiceConfig struct {
	VoiceName string `json:"voiceName"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func buildPayload(text string, voices map[string]string) generateRequest {
	speakers := make([]string, 0, len(voices))
	for speaker := range voices {
		speakers = append(speakers, speaker)
	}
	sort.Strings(speakers)
	configs := make([]speakerVoiceConfig, 0, len(speakers))
	for _, speaker := range speakers {
		configs = append(configs, speakerVoiceConfig{
			Speaker:     speaker,
			VoiceConfig: voiceConfig{PrebuiltVoiceConfig: prebuiltVoiceConfig{VoiceName: voices[speaker]}},
		})
	}
	return generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: text}}}},
		GenerationConfig: generationConfig{
			Temperature:        1,
			ResponseModalities: []string{"audio"},
			SpeechConfig: speechConfig{
				MultiSpeakerVoiceConfig: multiSpeakerVoiceConfig{SpeakerVoiceConfigs: configs},
			},
		},
	}
}

func decodeChunk(data string) ([]Segment, error) {
	var chunk generateResponse
	if err := json.Unmarshal([]byte(data), &chunk); err != nil {
		return nil, fmt.Errorf("decode chunk: %w (snippet: %s)", err, textutil.Snippet(data, 120))
	}
	if chunk.Error != nil {
		return nil, fmt.Errorf("api error %d: %s", chunk.Error.Code, chunk.Error.Message)
	}
	var segments []Segment
	for _, candidate := range chunk.Candidates {
		for _, p := range candidate.Content.Parts {
			if p.InlineData == nil || len(p.InlineData.Data) == 0 {
				continue
			}
			segments = append(segments, Segment{MIMEType: p.InlineData.MIMEType, Data: p.InlineData.Data})
		}
	}
	return segments, nil
}
