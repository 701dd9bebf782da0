// Package apiclient is a small Go client for the adoption API.
//
// Credentials are never attached implicitly: the client holds a
// CredentialSource and each call that needs a session opts in with WithAuth.
// Public calls such as ListPets therefore never leak a token.
package apiclient

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
	"sync"
	"time"
)

// ErrNoCredentials is returned by WithAuth calls when the source has no token.
var ErrNoCredentials = errors.New("apiclient: no credentials available")

// CredentialSource supplies the bearer token for authenticated calls.
type CredentialSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenStore is a CredentialSource holding the token from the last login.
type TokenStore struct {
	mu    sync.RWMutex
	token string
}

func (s *TokenStore) Set(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

func (s *TokenStore) Token(context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return "", ErrNoCredentials
	}
	return s.token, nil
}

// APIError is a non-2xx answer decoded from the {"error": ...} envelope.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("apiclient: %d %s", e.Status, e.Message)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

type Client struct {
	baseURL string
	http    *http.Client
	creds   CredentialSource
}

type Option func(*Client)

// WithHTTPClient replaces the default client (10s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithCredentials sets the source consulted by WithAuth requests.
func WithCredentials(src CredentialSource) Option {
	return func(c *Client) { c.creds = src }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type requestConfig struct {
	auth  bool
	query url.Values
}

// RequestOption tunes a single call.
type RequestOption func(*requestConfig)

// WithAuth attaches the bearer token from the configured CredentialSource.
func WithAuth() RequestOption {
	return func(rc *requestConfig) { rc.auth = true }
}

// WithQuery adds query parameters.
func WithQuery(q url.Values) RequestOption {
	return func(rc *requestConfig) { rc.query = q }
}

// Do sends body as JSON (when non-nil) and decodes a 2xx answer into out
// (when non-nil).
func (c *Client) Do(ctx context.Context, method, path string, body, out any, opts ...RequestOption) error {
	var rc requestConfig
	for _, opt := range opts {
		opt(&rc)
	}

	target := c.baseURL + path
	if len(rc.query) > 0 {
		target += "?" + rc.query.Encode()
	}

	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("apiclient: encode request: %w", err)
		}
		payload = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, payload)
	if err != nil {
		return fmt.Errorf("apiclient: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if rc.auth {
		if c.creds == nil {
			return ErrNoCredentials
		}
		token, err := c.creds.Token(ctx)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("apiclient: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&envelope)
		if envelope.Error == "" {
			envelope.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: envelope.Error}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("apiclient: decode response: %w", err)
	}
	return nil
}
