// Package runlock keeps two posting runs from overlapping. It holds a Redis
// lease taken with SET NX and released only by the token that acquired it.
package runlock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const (
	DefaultKey = "clara:run-lock"
	// DefaultTTL outlives the longest run: three attempts with capped
	// rate-limit waits between them.
	DefaultTTL = 45 * time.Minute
)

// ErrHeld is returned when another run holds the lease.
var ErrHeld = errors.New("runlock: another run holds the lock")

var releaseScript = goredis.NewScript(`
if redis.call('get', KEYS[1]) == ARGV[1] then
  return redis.call('del', KEYS[1])
else
  return 0
end
`)

type Locker struct {
	client goredis.UniversalClient
	key    string
	ttl    time.Duration
}

func New(client goredis.UniversalClient, key string, ttl time.Duration) *Locker {
	if key == "" {
		key = DefaultKey
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Locker{client: client, key: key, ttl: ttl}
}

// Lease is a held lock.
type Lease struct {
	locker *Locker
	token  string
}

func (l *Locker) Acquire(ctx context.Context) (*Lease, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return nil, ErrHeld
	}
	return &Lease{locker: l, token: token}, nil
}

func (l *Lease) Token() string { return l.token }

// Release deletes the lock if this lease still owns it. It reports whether
// anything was deleted.
func (l *Lease) Release(ctx context.Context) (bool, error) {
	n, err := releaseScript.Run(ctx, l.locker.client, []string{l.locker.key}, l.token).Int64()
	if err != nil {
		return false, fmt.Errorf("release run lock: %w", err)
	}
	return n == 1, nil
}
