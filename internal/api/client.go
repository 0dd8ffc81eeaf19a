// Package api talks to the external storefront API. Every route except
// /auth/* carries the bearer token of the current session.
package api

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

	"github.com/ariefcatur/pandagamers-storefront/internal/logx"
	"go.uber.org/zap"
)

var ErrUnauthorized = errors.New("api: token expired or invalid")

// Error is a non-2xx answer from the API.
type Error struct {
	Status int
	Body   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("upstream error: status=%d body=%s", e.Status, e.Body)
}

func (e *Error) Unwrap() error {
	if e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden {
		return ErrUnauthorized
	}
	return nil
}

// TokenSource is the session side of the client: it hands out the bearer
// token and drops the session when the API rejects it.
type TokenSource interface {
	Token() string
	Invalidate(ctx context.Context)
}

// StaticToken is a fixed service credential for callers without a user
// session. A rejected token stays in place; the 401 surfaces as an error.
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

func (StaticToken) Invalidate(context.Context) {}

type Client struct {
	baseURL string
	client  *http.Client
	tokens  TokenSource
	log     *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, tokens TokenSource, log *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		tokens:  tokens,
		log:     logx.OrNop(log),
	}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if !strings.HasPrefix(path, "/auth/") && c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		apiErr := &Error{Status: resp.StatusCode, Body: string(b)}
		if errors.Is(apiErr, ErrUnauthorized) {
			c.log.Warn("token expired or invalid, sign in again",
				zap.String("method", method), zap.String("path", path), zap.Int("status", resp.StatusCode))
			if c.tokens != nil {
				c.tokens.Invalidate(ctx)
			}
		}
		return apiErr
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// IsStatus reports whether err is an API answer with the given status.
func IsStatus(err error, status int) bool {
	var e *Error
	return errors.As(err, &e) && e.Status == status
}
