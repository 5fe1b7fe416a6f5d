package authflow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/ErlanBelekov/admin-console/internal/domain"
)

var ErrNotSignedIn = errors.New("not signed in")

// APIClient talks to the console's HTTP API. The session cookie lives in the
// client's jar, so one APIClient is one signed-in browser.
type APIClient struct {
	base   *url.URL
	client *http.Client
}

// NewAPIClient targets baseURL (scheme and host, no trailing path). Session
// cookies are Secure unless the server runs with COOKIE_SECURE=false, so a
// plain-http base only works against such a server.
func NewAPIClient(baseURL string) (*APIClient, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	return &APIClient{
		base: base,
		client: &http.Client{
			Jar:     jar,
			Timeout: 10 * time.Second,
			// The guard answers with a redirect; surface it instead of following.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}, nil
}

func (c *APIClient) Login(ctx context.Context, identifier, secret string) (Result, error) {
	return c.post(ctx, "/authentication/login", map[string]string{
		"identifier": identifier,
		"secret":     secret,
	})
}

func (c *APIClient) RequestResetLink(ctx context.Context, identifier string) (Result, error) {
	return c.post(ctx, "/authentication/get-reset-link", map[string]string{
		"identifier": identifier,
	})
}

func (c *APIClient) ResetPassword(ctx context.Context, token, newSecret, confirmationSecret string) (Result, error) {
	return c.post(ctx, "/authentication/reset-password", map[string]string{
		"token":              token,
		"newSecret":          newSecret,
		"confirmationSecret": confirmationSecret,
	})
}

func (c *APIClient) Logout(ctx context.Context) (Result, error) {
	return c.post(ctx, "/authentication/logout", nil)
}

// Session fetches the current session from the protected area. A redirect
// from the route guard yields ErrNotSignedIn.
func (c *APIClient) Session(ctx context.Context) (*domain.AuthSession, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url("/dashboard/session"), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 300 && resp.StatusCode < 400, resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrNotSignedIn
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("get session: unexpected status %d", resp.StatusCode)
	}

	var s domain.AuthSession
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

func (c *APIClient) url(path string) string {
	return c.base.String() + path
}

// post sends body as JSON. Any response carrying the envelope is a Result,
// including 400 and 429; 5xx and undecodable bodies are errors.
func (c *APIClient) post(ctx context.Context, path string, body any) (Result, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return Result{}, fmt.Errorf("encode request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), &buf)
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Result{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return Result{}, fmt.Errorf("post %s: server error %d", path, resp.StatusCode)
	}

	var res Result
	if err := json.Unmarshal(raw, &res); err != nil {
		return Result{}, fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	return res, nil
}
