package leonardo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const (
	DefaultBaseURL = "https://cloud.leonardo.ai/api/rest/v1"
	// DefaultModelID is Leonardo Diffusion XL.
	DefaultModelID = "aa77f04e-3eec-4034-9c07-d0f619684628"

	defaultUserAgent    = "tinsel/0.1"
	requestTimeout      = 15 * time.Second
	defaultPollInterval = time.Second
	defaultPollAttempts = 30
)

var (
	// ErrNoCredentials is returned when no API key is configured.
	ErrNoCredentials = errors.New("leonardo: api key not configured")
	// ErrGenerationFailed is returned when the service reports FAILED.
	ErrGenerationFailed = errors.New("leonardo: generation failed")
	// ErrPollExhausted is returned when the attempt budget is spent while pending.
	ErrPollExhausted = errors.New("leonardo: generation did not complete in time")

	errPending = errors.New("generation pending")
)

// StatusError reports a non-2xx response.
type StatusError struct {
	Path string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api %s returned status %d", e.Path, e.Code)
}

// PollPolicy bounds how long a generation is awaited.
type PollPolicy struct {
	Interval    time.Duration
	MaxAttempts int
}

// DefaultPollPolicy returns one-second spacing with thirty attempts.
func DefaultPollPolicy() PollPolicy {
	return PollPolicy{Interval: defaultPollInterval, MaxAttempts: defaultPollAttempts}
}

func (p PollPolicy) normalized() PollPolicy {
	if p.Interval <= 0 {
		p.Interval = defaultPollInterval
	}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = defaultPollAttempts
	}
	return p
}

// Option customises a Client.
type Option func(*Client) error

// WithBaseURL points the client at another API root.
func WithBaseURL(raw string) Option {
	return func(c *Client) error {
		u, err := parseBaseURL(raw)
		if err != nil {
			return err
		}
		c.baseURL = u
		return nil
	}
}

// WithPollPolicy overrides the polling budget.
func WithPollPolicy(p PollPolicy) Option {
	return func(c *Client) error {
		c.poll = p.normalized()
		return nil
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) error {
		if h != nil {
			c.http = h
		}
		return nil
	}
}

// Client talks to the image-generation API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	apiKey    string
	userAgent string
	poll      PollPolicy
}

// NewClient builds a Client authenticated with apiKey.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	key := strings.TrimSpace(apiKey)
	if key == "" {
		return nil, ErrNoCredentials
	}
	base, err := parseBaseURL(DefaultBaseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: requestTimeout},
		apiKey:    key,
		userAgent: defaultUserAgent,
		poll:      DefaultPollPolicy(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// PollPolicy returns the active polling budget.
func (c *Client) PollPolicy() PollPolicy {
	return c.poll
}

// CreateGeneration submits req and returns the generation id.
func (c *Client) CreateGeneration(ctx context.Context, req GenerationRequest) (string, error) {
	if c == nil {
		return "", ErrNoCredentials
	}
	var payload createGenerationResponse
	if err := c.do(ctx, http.MethodPost, "generations", req, &payload); err != nil {
		return "", fmt.Errorf("submit generation: %w", err)
	}
	id := strings.TrimSpace(payload.SDGenerationJob.GenerationID)
	if id == "" {
		return "", fmt.Errorf("submit generation: response missing generationId")
	}
	return id, nil
}

// Generation fetches the current state of a generation.
func (c *Client) Generation(ctx context.Context, id string) (Generation, error) {
	if c == nil {
		return Generation{}, ErrNoCredentials
	}
	if strings.TrimSpace(id) == "" {
		return Generation{}, fmt.Errorf("generation id required")
	}
	var payload generationResponse
	if err := c.do(ctx, http.MethodGet, "generations/"+url.PathEscape(id), nil, &payload); err != nil {
		return Generation{}, fmt.Errorf("poll generation: %w", err)
	}
	return payload.Generation, nil
}

// WaitForGeneration polls id until it completes, fails, or the budget runs out.
func (c *Client) WaitForGeneration(ctx context.Context, id string) (GeneratedImage, error) {
	if c == nil {
		return GeneratedImage{}, ErrNoCredentials
	}
	policy := c.poll

	// The first status check also waits one interval.
	if err := sleep(ctx, policy.Interval); err != nil {
		return GeneratedImage{}, err
	}

	check := func() (GeneratedImage, error) {
		gen, err := c.Generation(ctx, id)
		if err != nil {
			// Only a pending status is retried.
			return GeneratedImage{}, backoff.Permanent(err)
		}
		switch gen.Status {
		case StatusComplete:
			if len(gen.GeneratedImages) == 0 || strings.TrimSpace(gen.GeneratedImages[0].URL) == "" {
				return GeneratedImage{}, backoff.Permanent(fmt.Errorf("generation %s completed without images", id))
			}
			return gen.GeneratedImages[0], nil
		case StatusFailed:
			return GeneratedImage{}, backoff.Permanent(ErrGenerationFailed)
		default:
			return GeneratedImage{}, errPending
		}
	}

	budget := time.Duration(policy.MaxAttempts+1)*policy.Interval + time.Minute
	img, err := backoff.Retry(ctx, check,
		backoff.WithBackOff(backoff.NewConstantBackOff(policy.Interval)),
		backoff.WithMaxTries(uint(policy.MaxAttempts)),
		backoff.WithMaxElapsedTime(budget),
	)
	if err != nil {
		if errors.Is(err, errPending) {
			return GeneratedImage{}, ErrPollExhausted
		}
		return GeneratedImage{}, err
	}
	return img, nil
}

// Generate submits req and waits for the first image.
func (c *Client) Generate(ctx context.Context, req GenerationRequest) (GeneratedImage, error) {
	id, err := c.CreateGeneration(ctx, req)
	if err != nil {
		return GeneratedImage{}, err
	}
	return c.WaitForGeneration(ctx, id)
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	reqURL := c.baseURL.JoinPath(path)

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Path: "/" + path, Code: resp.StatusCode}
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", raw, err)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
