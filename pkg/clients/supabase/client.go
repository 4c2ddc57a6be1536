// Package supabase inserts rows through Supabase's PostgREST endpoint.
package supabase

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

	"github.com/failsafe-go/failsafe-go"

	"github.com/hyperxav/clara/pkg/clients"
)

type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("supabase returned status %d: %s", e.StatusCode, e.Body)
}

type Client struct {
	restURL      string
	apiKey       string
	client       *http.Client
	httpExecutor failsafe.Executor[*http.Response]
	shouldRetry  func(resp *http.Response, err error) bool
}

type Option func(*Client)

func NewClient(projectURL, apiKey string, opts ...Option) (*Client, error) {
	projectURL = strings.TrimRight(strings.TrimSpace(projectURL), "/")
	if projectURL == "" {
		return nil, errors.New("supabase url is required")
	}
	if _, err := url.Parse(projectURL); err != nil {
		return nil, fmt.Errorf("parse supabase url: %w", err)
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("supabase key is required")
	}

	defaultConfig := clients.DefaultHTTPExecutorConfig()
	c := &Client{
		restURL:      projectURL + "/rest/v1",
		apiKey:       apiKey,
		client:       clients.NewHTTPClient(15 * time.Second),
		httpExecutor: clients.NewHTTPExecutor(defaultConfig),
		shouldRetry:  defaultConfig.ShouldRetry,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.client = httpClient
		}
	}
}

func WithHTTPExecutorConfig(cfg clients.HTTPExecutorConfig) Option {
	return func(c *Client) {
		c.httpExecutor = clients.NewHTTPExecutor(cfg)
		c.shouldRetry = cfg.ShouldRetry
		if c.shouldRetry == nil {
			c.shouldRetry = clients.DefaultShouldRetry
		}
	}
}

// Insert writes rows (a struct, map or slice of them) into table.
func (c *Client) Insert(ctx context.Context, table string, rows any) error {
	if table == "" {
		return errors.New("table is required")
	}
	body, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encode rows: %w", err)
	}
	endpoint := c.restURL + "/" + url.PathEscape(table)

	resp, err := clients.Do(ctx, c.client, c.httpExecutor, c.shouldRetry, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Prefer", "return=minimal")
		return req, nil
	})
	if err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	return nil
}
