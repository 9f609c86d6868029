// Package solr implements the engine collaborator against the Solr
// JSON API over HTTP.
package solr

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/chatpal/chatpal-search/internal/domain"
	"github.com/chatpal/chatpal-search/internal/domain/params"
	"github.com/chatpal/chatpal-search/internal/engine"
)

// Config holds the engine connection settings.
type Config struct {
	// BaseURL is the Solr endpoint, e.g. http://localhost:8983/solr.
	BaseURL string
	// Core is the collection/core holding the chat index.
	Core string
	// Timeout bounds a single engine call.
	Timeout time.Duration
}

// Client talks to one Solr core.
type Client struct {
	baseURL string
	core    string
	hc      *http.Client
	logger  *zap.Logger
}

var _ engine.Engine = (*Client)(nil)

// New creates a Solr-backed engine client.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: engine base_url is required", domain.ErrInvalidConfig)
	}
	if cfg.Core == "" {
		return nil, fmt.Errorf("%w: engine core is required", domain.ErrInvalidConfig)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		core:    cfg.Core,
		hc:      &http.Client{Timeout: timeout},
		logger:  logger,
	}, nil
}

// Core returns the name of the backing core. Reporting records carry it
// as the client identifier.
func (c *Client) Core() string { return c.core }

// Execute runs one query via the select handler.
func (c *Client) Execute(ctx context.Context, query params.Params) (*engine.Response, error) {
	form := url.Values{}
	for k, vs := range query {
		form[k] = append([]string(nil), vs...)
	}
	form.Set("wt", "json")

	endpoint := fmt.Sprintf("%s/%s/select", c.baseURL, c.core)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build engine request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	c.logger.Debug("engine query", zap.String("core", c.core), zap.Any("params", query))

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEngineUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", domain.ErrEngineUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s: %s", domain.ErrEngineUnavailable,
			resp.Status, truncate(body, 512))
	}

	return parseResponse(body)
}

// Ping checks engine liveness via the core ping handler.
func (c *Client) Ping(ctx context.Context) error {
	endpoint := fmt.Sprintf("%s/%s/admin/ping?wt=json", c.baseURL, c.core)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build ping request: %w", err)
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrEngineUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: ping returned %s", domain.ErrEngineUnavailable, resp.Status)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
