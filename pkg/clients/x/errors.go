package x

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrUnauthorized is matched by errors.Is for every 401 response.
var ErrUnauthorized = errors.New("x: unauthorized")

// APIError is a non-2xx response from the X API.
type APIError struct {
	StatusCode int
	Title      string
	Detail     string
	Body       string
}

func (e *APIError) Error() string {
	msg := e.Detail
	if msg == "" {
		msg = e.Title
	}
	if msg == "" {
		msg = e.Body
	}
	return fmt.Sprintf("x: status %d: %s", e.StatusCode, msg)
}

type UnauthorizedError struct{ APIError }

func (e *UnauthorizedError) Unwrap() error { return ErrUnauthorized }

type BadRequestError struct{ APIError }

type ForbiddenError struct{ APIError }

// IsDuplicate reports whether the platform rejected the post as duplicate content.
func (e *ForbiddenError) IsDuplicate() bool {
	return strings.Contains(strings.ToLower(e.Title+" "+e.Detail+" "+e.Body), "duplicate")
}

// RateLimitError carries the x-rate-limit-* headers of a 429 response.
type RateLimitError struct {
	APIError
	Limit     int
	Remaining int
	Reset     time.Time
}

// RetryAfter is the time left until Reset, or zero when the reset is unknown or past.
func (e *RateLimitError) RetryAfter(now time.Time) time.Duration {
	if e.Reset.IsZero() {
		return 0
	}
	if d := e.Reset.Sub(now); d > 0 {
		return d
	}
	return 0
}

type errorBody struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Errors []struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
	} `json:"errors"`
}

func newAPIError(resp *http.Response, body []byte) error {
	base := APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	var decoded errorBody
	if json.Unmarshal(body, &decoded) == nil {
		base.Title = decoded.Title
		base.Detail = decoded.Detail
		if base.Detail == "" && len(decoded.Errors) > 0 {
			base.Detail = decoded.Errors[0].Message
			if base.Detail == "" {
				base.Detail = decoded.Errors[0].Detail
			}
		}
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return &UnauthorizedError{APIError: base}
	case http.StatusBadRequest:
		return &BadRequestError{APIError: base}
	case http.StatusForbidden:
		return &ForbiddenError{APIError: base}
	case http.StatusTooManyRequests:
		return &RateLimitError{
			APIError:  base,
			Limit:     headerInt(resp.Header, "x-rate-limit-limit", -1),
			Remaining: headerInt(resp.Header, "x-rate-limit-remaining", 0),
			Reset:     headerEpoch(resp.Header, "x-rate-limit-reset"),
		}
	default:
		return &base
	}
}

func headerInt(h http.Header, key string, fallback int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(h.Get(key))); err == nil {
		return v
	}
	return fallback
}

func headerEpoch(h http.Header, key string) time.Time {
	if v, err := strconv.ParseInt(strings.TrimSpace(h.Get(key)), 10, 64); err == nil && v > 0 {
		return time.Unix(v, 0)
	}
	return time.Time{}
}
