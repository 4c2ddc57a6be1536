// Package x is a minimal client for the X API v2 endpoints the bot needs:
// creating a post and looking up the authenticated account.
package x

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dghubble/oauth1"

	"github.com/hyperxav/clara/pkg/clients"
)

const defaultBaseURL = "https://api.x.com"

// Credentials are the OAuth 1.0a user-context keys of the posting account.
type Credentials struct {
	ConsumerKey    string
	ConsumerSecret string
	AccessToken    string
	AccessSecret   string
}

func (c Credentials) validate() error {
	var missing []string
	if c.ConsumerKey == "" {
		missing = append(missing, "consumer key")
	}
	if c.ConsumerSecret == "" {
		missing = append(missing, "consumer secret")
	}
	if c.AccessToken == "" {
		missing = append(missing, "access token")
	}
	if c.AccessSecret == "" {
		missing = append(missing, "access secret")
	}
	if len(missing) > 0 {
		return fmt.Errorf("x: missing credentials: %s", strings.Join(missing, ", "))
	}
	return nil
}

type Client struct {
	baseURL string
	http    *http.Client
	now     func() time.Time
}

type Option func(*clientOptions)

type clientOptions struct {
	baseURL string
	base    *http.Client
	now     func() time.Time
}

func WithBaseURL(u string) Option {
	return func(o *clientOptions) {
		if u != "" {
			o.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithHTTPClient sets the client underneath the OAuth signer.
func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) {
		if c != nil {
			o.base = c
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *clientOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// NewClient builds a client that signs every request with OAuth 1.0a.
// Retries are left to the caller: posting must not be replayed blindly.
func NewClient(creds Credentials, opts ...Option) (*Client, error) {
	if err := creds.validate(); err != nil {
		return nil, err
	}
	o := clientOptions{
		baseURL: defaultBaseURL,
		base:    clients.NewHTTPClient(30 * time.Second),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	signer := oauth1.NewConfig(creds.ConsumerKey, creds.ConsumerSecret)
	token := oauth1.NewToken(creds.AccessToken, creds.AccessSecret)
	ctx := context.WithValue(context.Background(), oauth1.HTTPClient, o.base)

	return &Client{
		baseURL: o.baseURL,
		http:    signer.Client(ctx, token),
		now:     o.now,
	}, nil
}

// Tweet is a created post. CreatedAt falls back to the local time of the
// response when the API does not echo it.
type Tweet struct {
	ID            string
	Text          string
	CreatedAt     time.Time
	PublicMetrics map[string]int
}

type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

type createTweetRequest struct {
	Text string `json:"text"`
}

type tweetData struct {
	ID            string         `json:"id"`
	Text          string         `json:"text"`
	CreatedAt     string         `json:"created_at"`
	PublicMetrics map[string]int `json:"public_metrics"`
}

// CreateTweet publishes text and returns the created post.
func (c *Client) CreateTweet(ctx context.Context, text string) (*Tweet, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("x: post text is empty")
	}
	payload, err := json.Marshal(createTweetRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("x: marshal request: %w", err)
	}

	var out struct {
		Data tweetData `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/2/tweets", payload, &out); err != nil {
		return nil, err
	}
	if out.Data.ID == "" {
		return nil, errors.New("x: create post response carried no id")
	}

	tweet := &Tweet{
		ID:            out.Data.ID,
		Text:          out.Data.Text,
		CreatedAt:     c.now().UTC(),
		PublicMetrics: out.Data.PublicMetrics,
	}
	if out.Data.CreatedAt != "" {
		if ts, err := time.Parse(time.RFC3339, out.Data.CreatedAt); err == nil {
			tweet.CreatedAt = ts
		}
	}
	return tweet, nil
}

// Me returns the account the credentials belong to. Used at startup to
// surface authentication problems before any content is generated.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var out struct {
		Data User `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/2/users/me", nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte, out any) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("x: create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("x: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("x: read response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return newAPIError(resp, respBody)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("x: decode response: %w", err)
	}
	return nil
}
