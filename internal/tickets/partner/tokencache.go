package partner

import (
	"sync"
	"time"
)

// refreshMargin makes a token count as expired slightly before its real
// expiry, so an in-flight request never carries a token that dies mid-call.
const refreshMargin = 30 * time.Second

// TokenCache stores the partner access token between calls. Safe for
// concurrent use.
type TokenCache struct {
	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// NewTokenCache creates an empty token cache.
func NewTokenCache() *TokenCache {
	return &TokenCache{}
}

// Get returns the cached token, or empty and false when absent or expired.
func (c *TokenCache) Get(now time.Time) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token == "" || expired(c.expiresAt, now) {
		return "", false
	}
	return c.token, true
}

// Set stores a freshly issued token with its expiry.
func (c *TokenCache) Set(token string, expiresAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token = token
	c.expiresAt = expiresAt
}

// Clear drops the cached token, forcing the next call to re-authenticate.
func (c *TokenCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token = ""
	c.expiresAt = time.Time{}
}

// expired reports whether a token with the given expiry should be refreshed
// at the given instant.
func expired(expiresAt, now time.Time) bool {
	return !now.Add(refreshMargin).Before(expiresAt)
}
