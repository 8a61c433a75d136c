// Package bookingapi is the HTTP client for the booking backend.
package bookingapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"staybook/internal/adapters/observability"
	"staybook/internal/domain"
)

const DefaultTimeout = 30 * time.Second

// Notice texts shown for failed calls.
const (
	msgServerError  = "Server error. Please try again later."
	msgClientError  = "An error occurred"
	msgTimeout      = "Request timeout. Please check your connection."
	msgNetworkError = "Network error. Please check your connection."
)

// Client is safe for concurrent use. WithSession binds it to one session's
// token store and notifier; the transport and rate limiter stay shared.
type Client struct {
	base  string
	hc    *http.Client
	rl    *rate.Limiter
	store domain.KVStore
	note  domain.Notifier
}

func New(base string, rps int, timeout time.Duration) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("backend base URL is required")
	}
	if rps <= 0 {
		rps = 20
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: timeout},
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
		note: nopNotifier{},
	}, nil
}

func (c *Client) WithSession(store domain.KVStore, n domain.Notifier) *Client {
	cp := *c
	cp.store = store
	if n == nil {
		n = nopNotifier{}
	}
	cp.note = n
	return &cp
}

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Error(string)   {}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// call describes one request. route is the low-cardinality metrics label.
type call struct {
	method  string
	route   string
	path    string
	query   url.Values
	body    any
	out     any
	retried bool // set after the single 401 refresh-and-retry
	noAuth  bool // skip the refresh dance (login, register, refresh itself)
}

func (c *Client) do(ctx context.Context, cl call) error {
	status, env, err := c.roundTrip(ctx, cl)
	if err != nil {
		return c.report(err)
	}

	expired := false
	if status == http.StatusUnauthorized && !cl.retried && !cl.noAuth {
		cl.retried = true
		if c.refreshAccessToken(ctx) {
			return c.do(ctx, cl)
		}
		expired = ctx.Err() == nil
	}

	if status >= 400 || !env.Success {
		msg := env.Message
		if msg == "" {
			msg = env.Error
		}
		return c.report(&domain.APIError{Status: status, Message: msg, Code: env.Error, Expired: expired})
	}

	if cl.out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, cl.out); err != nil {
			return fmt.Errorf("decode %s: %w", cl.route, err)
		}
	}
	return nil
}

// roundTrip performs one attempt and decodes the envelope. Non-JSON bodies
// leave env zero-valued so status decides the outcome.
func (c *Client) roundTrip(ctx context.Context, cl call) (int, envelope, error) {
	var env envelope
	if err := c.rl.Wait(ctx); err != nil {
		return 0, env, err
	}

	u := c.base + cl.path
	if len(cl.query) > 0 {
		u += "?" + cl.query.Encode()
	}
	var rdr io.Reader
	if cl.body != nil {
		b, err := json.Marshal(cl.body)
		if err != nil {
			return 0, env, err
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, u, rdr)
	if err != nil {
		return 0, env, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "staybook/1.0")
	if tok := c.token(ctx, domain.KeyAccessToken); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("backend", cl.route, 0, time.Since(start))
		return 0, env, err
	}
	defer resp.Body.Close()
	observability.ObserveExternal("backend", cl.route, resp.StatusCode, time.Since(start))

	b, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return resp.StatusCode, env, err
	}
	if len(bytes.TrimSpace(b)) > 0 {
		if jerr := json.Unmarshal(b, &env); jerr != nil && resp.StatusCode < 400 {
			return resp.StatusCode, env, fmt.Errorf("decode envelope %s: %w", cl.route, jerr)
		}
	}
	return resp.StatusCode, env, nil
}

// refreshAccessToken swaps the stored refresh token for a new access token.
// Any failure clears both tokens.
func (c *Client) refreshAccessToken(ctx context.Context) bool {
	rt := c.token(ctx, domain.KeyRefreshToken)
	if rt == "" {
		return false
	}
	access, err := c.refresh(ctx, rt, false)
	if err != nil || access == "" {
		log.Warn().Err(err).Msg("token refresh after 401 failed")
		c.clearTokens(ctx)
		return false
	}
	if err := c.store.Set(ctx, domain.KeyAccessToken, access); err != nil {
		log.Error().Err(err).Msg("persist refreshed access token failed")
		return false
	}
	return true
}

func (c *Client) refresh(ctx context.Context, refreshToken string, notify bool) (string, error) {
	var out struct {
		AccessToken string `json:"accessToken"`
	}
	cl := call{
		method: http.MethodPost, route: "/auth/refresh", path: "/auth/refresh",
		body: map[string]string{"refreshToken": refreshToken}, out: &out, noAuth: true,
	}
	status, env, err := c.roundTrip(ctx, cl)
	switch {
	case err != nil:
		if notify {
			return "", c.report(err)
		}
		return "", err
	case status >= 400 || !env.Success:
		ae := &domain.APIError{Status: status, Message: env.Message, Code: env.Error}
		if notify {
			return "", c.report(ae)
		}
		return "", ae
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return "", fmt.Errorf("decode refresh: %w", err)
	}
	return out.AccessToken, nil
}

func (c *Client) token(ctx context.Context, key string) string {
	if c.store == nil {
		return ""
	}
	v, ok, err := c.store.Get(ctx, key)
	if err != nil || !ok {
		return ""
	}
	return v
}

func (c *Client) clearTokens(ctx context.Context) {
	if c.store == nil {
		return
	}
	_ = c.store.Remove(ctx, domain.KeyAccessToken)
	_ = c.store.Remove(ctx, domain.KeyRefreshToken)
}

// report converts err into an *APIError and raises the matching notice.
func (c *Client) report(err error) error {
	var ae *domain.APIError
	if !errors.As(err, &ae) {
		ae = &domain.APIError{Message: err.Error()}
		if isTimeout(err) {
			ae.Timeout = true
			ae.Message = msgTimeout
		}
	}
	switch {
	case ae.Timeout:
		c.note.Error(msgTimeout)
	case ae.Status >= 500:
		c.note.Error(msgServerError)
	case ae.Status >= 400:
		if ae.Message == "" {
			ae.Message = msgClientError
		}
		c.note.Error(ae.Message)
	case ae.Status == 0:
		c.note.Error(msgNetworkError)
	default:
		// 2xx with success=false
		if ae.Message == "" {
			ae.Message = "Request failed"
		}
		c.note.Error(ae.Message)
	}
	return ae
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// Health calls /health and reports whether the backend answered success.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, call{method: http.MethodGet, route: "/health", path: "/health", noAuth: true})
}
