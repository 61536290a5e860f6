package ocs

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vertextoedge/ocs-userinfo/internal/port"
	"github.com/vertextoedge/ocs-userinfo/internal/util/ratelimiter"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "ocs-userinfo"
	requestIDHeader  = "X-Request-ID"
)

// Client is an OCS API client for ownCloud and Nextcloud servers
type Client struct {
	baseURL    string
	username   string
	password   string
	userAgent  string
	httpClient *http.Client
	limiter    *ratelimiter.Limiter
	logger     *zap.Logger
	version    *Version
	versionMu  sync.RWMutex
}

// Ensure Client implements port.OCSClient
var _ port.OCSClient = (*Client)(nil)

// ClientConfig contains optional client configuration
type ClientConfig struct {
	Timeout           time.Duration // Per-request timeout (default: 30s)
	RequestsPerSecond float64       // Request pacing, 0 disables it
	Burst             int
	UserAgent         string
	Logger            *zap.Logger
}

// NewClient creates a new OCS API client
func NewClient(baseURL, username, password string, skipTLSVerify bool) *Client {
	return NewClientWithConfig(baseURL, username, password, skipTLSVerify, nil)
}

// NewClientWithConfig creates a new OCS API client with custom configuration
func NewClientWithConfig(baseURL, username, password string, skipTLSVerify bool, cfg *ClientConfig) *Client {
	if cfg == nil {
		cfg = &ClientConfig{}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: skipTLSVerify,
		},
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	return &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		username:  username,
		password:  password,
		userAgent: userAgent,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		limiter: ratelimiter.New(cfg.RequestsPerSecond, cfg.Burst),
		logger:  logger,
	}
}

// BaseURL returns the server base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Credentials returns the credentials the client authenticates with
func (c *Client) Credentials() port.Credentials {
	return port.Credentials{Username: c.username}
}

// ServerVersion returns the known server version
func (c *Client) ServerVersion() (Version, bool) {
	c.versionMu.RLock()
	defer c.versionMu.RUnlock()
	if c.version == nil {
		return Version{}, false
	}
	return *c.version, true
}

// SetServerVersion records the server version
func (c *Client) SetServerVersion(v Version) {
	c.versionMu.Lock()
	defer c.versionMu.Unlock()
	c.version = &v
}

// SupportsSelfEndpoint returns true if the known server version provides /cloud/user.
// An unknown version is treated as a legacy server.
func (c *Client) SupportsSelfEndpoint() bool {
	v, ok := c.ServerVersion()
	return ok && v.IsSelfSupported()
}

// ExecuteGet performs an authenticated GET request.
// The caller must close the response body.
func (c *Client) ExecuteGet(ctx context.Context, rawURL string, headers http.Header, query url.Values) (*port.Response, error) {
	if !c.limiter.Allow() {
		c.logger.Debug("pacing request", zap.Duration("interval", c.limiter.Interval()))
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	if len(query) > 0 {
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	requestID := uuid.NewString()
	req.Header.Set(requestIDHeader, requestID)
	req.Header.Set("User-Agent", c.userAgent)
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	c.logger.Debug("ocs request",
		zap.String("method", req.Method),
		zap.String("url", u.Redacted()),
		zap.String("request_id", requestID),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	return &port.Response{StatusCode: resp.StatusCode, Body: resp.Body}, nil
}
