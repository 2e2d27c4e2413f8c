package payment

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// FetchFunc obtains a fresh access token and its lifetime.
type FetchFunc func(ctx context.Context) (token string, ttl time.Duration, err error)

// TokenCache keeps one access token until shortly before it expires.
// Concurrent callers that find it stale share a single refresh.
type TokenCache struct {
	fetch FetchFunc
	skew  time.Duration
	now   func() time.Time

	mu      sync.RWMutex
	token   string
	expires time.Time

	group singleflight.Group
}

// NewTokenCache returns a cache refreshing through fetch.  Tokens are
// treated as expired skew before their real expiry.
func NewTokenCache(fetch FetchFunc, skew time.Duration) *TokenCache {
	return &TokenCache{fetch: fetch, skew: skew, now: time.Now}
}

// Token returns the cached token or refreshes it.
func (c *TokenCache) Token(ctx context.Context) (string, error) {
	c.mu.RLock()
	tok, exp := c.token, c.expires
	c.mu.RUnlock()
	if tok != "" && c.now().Before(exp) {
		return tok, nil
	}

	v, err, _ := c.group.Do("token", func() (any, error) {
		// another caller may have refreshed while we waited on the lock
		c.mu.RLock()
		tok, exp := c.token, c.expires
		c.mu.RUnlock()
		if tok != "" && c.now().Before(exp) {
			return tok, nil
		}

		fresh, ttl, err := c.fetch(context.WithoutCancel(ctx))
		if err != nil {
			return "", err
		}
		c.mu.Lock()
		c.token = fresh
		c.expires = c.now().Add(ttl - c.skew)
		c.mu.Unlock()
		return fresh, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Invalidate drops the cached token, e.g. after the upstream rejects it.
func (c *TokenCache) Invalidate() {
	c.mu.Lock()
	c.token = ""
	c.expires = time.Time{}
	c.mu.Unlock()
}
