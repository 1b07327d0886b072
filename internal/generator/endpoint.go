package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultEndpointBind = "127.0.0.1:8787"
	endpointUserAgent   = "tinsel/0.1"
	// Covers the server's own poll budget plus the round trip.
	endpointTimeout = 45 * time.Second
)

// GenerateRequest is the body of POST /api/generate-element. A nil ElementType
// asks the server to pick a category.
type GenerateRequest struct {
	ElementType *string `json:"elementType"`
}

// GenerateResponse is the body returned by POST /api/generate-element.
type GenerateResponse struct {
	Image *Image `json:"image,omitempty"`
	Error string `json:"error,omitempty"`
}

// Endpoint asks a tinsel server for images.
type Endpoint struct {
	baseURL *url.URL
	http    *http.Client
}

// NewEndpoint builds an Endpoint for the server at bind (host:port or URL).
func NewEndpoint(bind string) (*Endpoint, error) {
	trimmed := strings.TrimSpace(bind)
	if trimmed == "" {
		trimmed = defaultEndpointBind
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint %q: %w", bind, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return &Endpoint{baseURL: u, http: &http.Client{Timeout: endpointTimeout}}, nil
}

// Generate implements Provider.
func (e *Endpoint) Generate(ctx context.Context, hint Category) (Image, error) {
	if e == nil {
		return Image{}, ErrUnavailable
	}
	var body GenerateRequest
	if hint != "" {
		s := string(hint)
		body.ElementType = &s
	}
	encoded, err := json.Marshal(body)
	if err != nil {
		return Image{}, fmt.Errorf("encode request: %w", err)
	}

	reqURL := e.baseURL.ResolveReference(&url.URL{Path: "/api/generate-element"})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL.String(), bytes.NewReader(encoded))
	if err != nil {
		return Image{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", endpointUserAgent)

	resp, err := e.http.Do(req)
	if err != nil {
		return Image{}, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var payload GenerateResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&payload)

	if resp.StatusCode >= 400 {
		if decodeErr == nil && payload.Error != "" {
			return Image{}, fmt.Errorf("api /api/generate-element returned status %d: %s", resp.StatusCode, payload.Error)
		}
		return Image{}, fmt.Errorf("api /api/generate-element returned status %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return Image{}, fmt.Errorf("decode response: %w", decodeErr)
	}
	if payload.Image == nil || strings.TrimSpace(payload.Image.URL) == "" {
		return Image{}, errors.New("response missing image")
	}
	return *payload.Image, nil
}
