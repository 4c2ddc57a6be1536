package x

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testCreds() Credentials {
	return Credentials{
		ConsumerKey:    "ck",
		ConsumerSecret: "cs",
		AccessToken:    "at",
		AccessSecret:   "as",
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	c, err := NewClient(testCreds(), WithBaseURL(srv.URL), WithHTTPClient(srv.Client()), WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(Credentials{ConsumerKey: "ck"})
	if err == nil {
		t.Fatal("expected error for missing credentials")
	}
	if !strings.Contains(err.Error(), "access secret") {
		t.Fatalf("expected missing fields to be listed, got %v", err)
	}
}

func TestCreateTweet(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/2/tweets" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if !strings.HasPrefix(r.Header.Get("Authorization"), "OAuth ") {
			t.Errorf("expected OAuth1 authorization header, got %q", r.Header.Get("Authorization"))
		}
		var req createTweetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.Text != "texte de test" {
			t.Errorf("unexpected text %q", req.Text)
		}
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"data":{"id":"42","text":"texte de test"}}`)
	})

	tweet, err := c.CreateTweet(context.Background(), "texte de test")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if tweet.ID != "42" {
		t.Fatalf("expected id 42, got %q", tweet.ID)
	}
	if !tweet.CreatedAt.Equal(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected clock fallback for created_at, got %v", tweet.CreatedAt)
	}
}

func TestCreateTweetRejectsEmptyText(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Error("no request expected")
	})
	if _, err := c.CreateTweet(context.Background(), "   "); err == nil {
		t.Fatal("expected error for empty text")
	}
}

func TestCreateTweetRateLimited(t *testing.T) {
	reset := time.Date(2025, 3, 1, 12, 5, 0, 0, time.UTC)
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("x-rate-limit-limit", "200")
		w.Header().Set("x-rate-limit-remaining", "0")
		w.Header().Set("x-rate-limit-reset", fmt.Sprint(reset.Unix()))
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"title":"Too Many Requests","detail":"Too Many Requests"}`)
	})

	_, err := c.CreateTweet(context.Background(), "hello")
	var rl *RateLimitError
	if !errors.As(err, &rl) {
		t.Fatalf("expected RateLimitError, got %T %v", err, err)
	}
	if rl.Limit != 200 || rl.Remaining != 0 {
		t.Fatalf("unexpected limits %d/%d", rl.Remaining, rl.Limit)
	}
	if got := rl.RetryAfter(reset.Add(-90 * time.Second)); got != 90*time.Second {
		t.Fatalf("expected 90s retry, got %v", got)
	}
	if got := rl.RetryAfter(reset.Add(time.Second)); got != 0 {
		t.Fatalf("expected zero retry after reset passed, got %v", got)
	}
}

func TestCreateTweetForbiddenDuplicate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"title":"Forbidden","detail":"You are not allowed to create a Tweet with duplicate content.","status":403}`)
	})

	_, err := c.CreateTweet(context.Background(), "hello")
	var fb *ForbiddenError
	if !errors.As(err, &fb) {
		t.Fatalf("expected ForbiddenError, got %T", err)
	}
	if !fb.IsDuplicate() {
		t.Fatal("expected duplicate to be detected")
	}
}

func TestCreateTweetForbiddenPermission(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"errors":[{"message":"Your client app is not configured with the appropriate oauth1 app permissions"}]}`)
	})

	_, err := c.CreateTweet(context.Background(), "hello")
	var fb *ForbiddenError
	if !errors.As(err, &fb) {
		t.Fatalf("expected ForbiddenError, got %T", err)
	}
	if fb.IsDuplicate() {
		t.Fatal("permission error must not be classified as duplicate")
	}
	if !strings.Contains(fb.Detail, "app permissions") {
		t.Fatalf("expected v1 error message to be decoded, got %q", fb.Detail)
	}
}

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		status int
		check  func(error) bool
	}{
		{http.StatusUnauthorized, func(err error) bool { return errors.Is(err, ErrUnauthorized) }},
		{http.StatusBadRequest, func(err error) bool { var e *BadRequestError; return errors.As(err, &e) }},
		{http.StatusServiceUnavailable, func(err error) bool {
			var e *APIError
			return errors.As(err, &e) && e.StatusCode == http.StatusServiceUnavailable
		}},
	}
	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
			})
			_, err := c.CreateTweet(context.Background(), "hello")
			if err == nil || !tc.check(err) {
				t.Fatalf("unexpected error mapping for %d: %T %v", tc.status, err, err)
			}
		})
	}
}

func TestMe(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/2/users/me" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"data":{"id":"1","name":"Clara","username":"clara_bot"}}`)
	})
	user, err := c.Me(context.Background())
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if user.Username != "clara_bot" {
		t.Fatalf("unexpected user %+v", user)
	}
}
