package splunk

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ssbulk/internal/domain"
	"github.com/kailas-cloud/ssbulk/internal/metrics"
)

const (
	loginPath        = "/services/auth/login"
	savedSearchesAll = "/servicesNS/-/-/saved/searches"

	maxBodySize = 64 << 20
)

// Client is a Splunk REST session. It is not safe for concurrent use.
type Client struct {
	http       *http.Client
	baseURL    *url.URL
	sessionKey string
	logger     *zap.Logger
}

// Config holds the management endpoint settings.
type Config struct {
	Scheme             string // https (default) or http
	Host               string
	Port               int
	InsecureSkipVerify bool
	Timeout            time.Duration
	Logger             *zap.Logger
}

// NewClient creates an unauthenticated client. Call Login before anything else.
func NewClient(cfg *Config) (*Client, error) {
	scheme := cfg.Scheme
	if scheme == "" {
		scheme = "https"
	}
	if scheme != "https" && scheme != "http" {
		return nil, fmt.Errorf("unsupported scheme %q", scheme)
	}
	if cfg.Host == "" {
		return nil, errors.New("host is required")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("port must be between 1 and 65535, got %d", cfg.Port)
	}

	transport := cleanhttp.DefaultPooledTransport()
	transport.TLSClientConfig = &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec // management port usually has a self-signed cert
		MinVersion:         tls.VersionTLS12,
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		http: &http.Client{
			Transport: metrics.RoundTripper(transport),
			Timeout:   cfg.Timeout,
		},
		baseURL: &url.URL{
			Scheme: scheme,
			Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		},
		logger: logger,
	}, nil
}

// Connect creates a client and logs in.
func Connect(ctx context.Context, cfg *Config, username, password string) (*Client, error) {
	c, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	if err := c.Login(ctx, username, password); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

// BaseURL returns the management endpoint URL.
func (c *Client) BaseURL() string { return c.baseURL.String() }

// Login exchanges credentials for a session key used by every later request.
func (c *Client) Login(ctx context.Context, username, password string) error {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, loginPath, form, &resp); err != nil {
		return fmt.Errorf("login as %q: %w", username, err)
	}
	if resp.SessionKey == "" {
		return fmt.Errorf("login as %q: empty session key: %w", username, domain.ErrAuthFailed)
	}

	c.sessionKey = resp.SessionKey
	c.logger.Debug("Logged in", zap.String("url", c.BaseURL()), zap.String("username", username))
	return nil
}

// ListSavedSearches returns every saved search visible to the session, across all apps and owners.
func (c *Client) ListSavedSearches(ctx context.Context) ([]Entry, error) {
	q := url.Values{}
	q.Set("count", "0")

	var f feed
	if err := c.do(ctx, http.MethodGet, savedSearchesAll+"?"+q.Encode(), nil, &f); err != nil {
		return nil, fmt.Errorf("list saved searches: %w", err)
	}
	return f.Entry, nil
}

// GetEntity fetches a single entity by its REST path.
func (c *Client) GetEntity(ctx context.Context, path string) (Entry, error) {
	var f feed
	if err := c.do(ctx, http.MethodGet, path, nil, &f); err != nil {
		return Entry{}, fmt.Errorf("get %s: %w", path, err)
	}
	if len(f.Entry) == 0 {
		return Entry{}, fmt.Errorf("get %s: %w", path, domain.ErrNotFound)
	}
	return f.Entry[0], nil
}

// UpdateEntity posts form to the entity edit path.
func (c *Client) UpdateEntity(ctx context.Context, path string, form url.Values) error {
	if err := c.do(ctx, http.MethodPost, path, form, nil); err != nil {
		return fmt.Errorf("update %s: %w", path, err)
	}
	return nil
}

// do sends one request with output_mode=json and decodes the response into out (if non-nil).
func (c *Client) do(ctx context.Context, method, path string, form url.Values, out any) error {
	ref, err := url.Parse(path)
	if err != nil {
		return fmt.Errorf("parse path %q: %w", path, err)
	}
	u := c.baseURL.ResolveReference(ref)
	q := u.Query()
	q.Set("output_mode", "json")
	u.RawQuery = q.Encode()

	var body io.Reader = http.NoBody
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if c.sessionKey != "" {
		req.Header.Set("Authorization", "Splunk "+c.sessionKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, u.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug("Splunk REST call",
		zap.String("method", method),
		zap.String("path", u.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode >= http.StatusBadRequest {
		return parseAPIError(resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", domain.NewRemoteError(resp.StatusCode, "malformed JSON body"))
	}
	return nil
}

// parseAPIError maps an error status to a domain error carrying the service messages.
func parseAPIError(status int, body []byte) error {
	detail := extractMessages(body)

	switch status {
	case http.StatusUnauthorized:
		if detail == "" {
			return domain.ErrAuthFailed
		}
		return fmt.Errorf("%s: %w", detail, domain.ErrAuthFailed)
	case http.StatusNotFound:
		if detail == "" {
			return domain.ErrNotFound
		}
		return fmt.Errorf("%s: %w", detail, domain.ErrNotFound)
	default:
		if detail == "" {
			detail = strings.TrimSpace(string(body))
			if len(detail) > 256 {
				detail = detail[:256]
			}
		}
		return domain.NewRemoteError(status, detail)
	}
}

// extractMessages joins the "messages" texts of a JSON error body.
func extractMessages(body []byte) string {
	var parsed struct {
		Messages []Message `json:"messages"`
	}
	if json.Unmarshal(body, &parsed) != nil {
		return ""
	}
	texts := make([]string, 0, len(parsed.Messages))
	for _, m := range parsed.Messages {
		if m.Text != "" {
			texts = append(texts, m.Text)
		}
	}
	return strings.Join(texts, "; ")
}
