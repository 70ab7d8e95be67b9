// Package client is a Go client for the storerate HTTP API. A Session holds
// the bearer token and transparently refreshes it once when a request comes
// back 401.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/atomic"
	"golang.org/x/sync/singleflight"

	"github.com/storerate/storerate/web/entity"
)

const refreshPath = "/users/refresh"

// Option configures a Session.
type Option func(*Session)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Session) { s.http = c }
}

// WithTokenStore persists the token in store. The stored token is loaded by
// NewSession.
func WithTokenStore(store TokenStore) Option {
	return func(s *Session) { s.store = store }
}

// Session is one authenticated conversation with the API. It is safe for
// concurrent use.
type Session struct {
	baseURL string
	http    *http.Client
	store   TokenStore

	token atomic.String

	// refresh coalesces concurrent refreshes into one request
	refresh   singleflight.Group
	refreshes atomic.Int64
}

// NewSession returns a session for the API rooted at baseURL, for example
// "http://localhost:8080/api".
func NewSession(baseURL string, opts ...Option) (*Session, error) {
	s := &Session{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		store:   &MemoryTokenStore{},
	}
	for _, opt := range opts {
		opt(s)
	}
	token, err := s.store.Load()
	if err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}
	s.token.Store(token)
	return s, nil
}

// Token returns the current bearer token, empty when logged out.
func (s *Session) Token() string { return s.token.Load() }

// LoggedIn reports whether the session holds a token.
func (s *Session) LoggedIn() bool { return s.token.Load() != "" }

// Refreshes returns how many refresh requests this session has sent.
func (s *Session) Refreshes() int64 { return s.refreshes.Load() }

// SetToken replaces the token and persists it.
func (s *Session) SetToken(token string) error {
	s.token.Store(token)
	if token == "" {
		return s.store.Clear()
	}
	return s.store.Save(token)
}

// Logout forgets the token.
func (s *Session) Logout() error {
	return s.SetToken("")
}

// do sends a request and decodes a 2xx body into out. When authed is set and
// the server answers 401, the token is refreshed once and the request
// retried.
func (s *Session) do(ctx context.Context, method, path string, in, out any, authed bool) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return err
		}
	}

	token := ""
	if authed {
		token = s.token.Load()
	}
	status, body, err := s.send(ctx, method, path, payload, token)
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized && authed {
		if token == "" {
			return ErrSessionExpired
		}
		fresh, err := s.renew(ctx, token)
		if err != nil {
			return err
		}
		if status, body, err = s.send(ctx, method, path, payload, fresh); err != nil {
			return err
		}
	}
	return decode(status, body, out)
}

// renew returns a token to retry with after stale was rejected. If another
// caller already replaced stale, that token is used without a new refresh.
func (s *Session) renew(ctx context.Context, stale string) (string, error) {
	if cur := s.token.Load(); cur != stale {
		if cur == "" {
			return "", ErrSessionExpired
		}
		return cur, nil
	}
	v, err, _ := s.refresh.Do("refresh", func() (any, error) {
		cur := s.token.Load()
		if cur != stale {
			if cur == "" {
				return "", ErrSessionExpired
			}
			return cur, nil
		}
		// waiters share this call, so one caller's cancellation must not fail the rest
		fresh, err := s.requestRefresh(context.WithoutCancel(ctx), cur)
		if err != nil {
			_ = s.SetToken("")
			return "", ErrSessionExpired
		}
		if err := s.SetToken(fresh); err != nil {
			return "", err
		}
		return fresh, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (s *Session) requestRefresh(ctx context.Context, token string) (string, error) {
	s.refreshes.Inc()
	status, body, err := s.send(ctx, http.MethodPost, refreshPath, nil, token)
	if err != nil {
		return "", err
	}
	var res entity.TokenResponse
	if err := decode(status, body, &res); err != nil {
		return "", err
	}
	if res.Token == "" {
		return "", fmt.Errorf("refresh returned an empty token")
	}
	return res.Token, nil
}

func (s *Session) send(ctx context.Context, method, path string, payload []byte, token string) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}

func decode(status int, body []byte, out any) error {
	if status < 200 || status > 299 {
		return decodeError(status, body)
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
