package oauth2

import (
	"sync"
	"time"
)

// expirySafetyMargin is subtracted from the lifetime reported by the token
// endpoint before the token is considered stale.
const expirySafetyMargin int64 = 60

// CachedToken is a snapshot of the cache slot.
type CachedToken struct {
	// AccessToken is empty when nothing is cached
	AccessToken string
	// ExpiresAt is the epoch second at or after which AccessToken is stale
	ExpiresAt int64
}

// Valid reports whether the token may still be used at now.
func (t CachedToken) Valid(now time.Time) bool {
	return t.AccessToken != "" && now.Unix() < t.ExpiresAt
}

// Cache holds at most one bearer token.
type Cache struct {
	mu    sync.RWMutex
	token CachedToken
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

// Get returns the cached token if it is valid at now.
func (c *Cache) Get(now time.Time) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.token.Valid(now) {
		return "", false
	}
	return c.token.AccessToken, true
}

// Store replaces the cached token. The stored expiry is
// issuedAt + expiresIn - 60 seconds.
func (c *Cache) Store(accessToken string, expiresIn int64, issuedAt time.Time) CachedToken {
	token := CachedToken{
		AccessToken: accessToken,
		ExpiresAt:   issuedAt.Unix() + expiresIn - expirySafetyMargin,
	}

	c.mu.Lock()
	c.token = token
	c.mu.Unlock()

	return token
}

// Reset clears the slot back to ("", 0).
func (c *Cache) Reset() {
	c.mu.Lock()
	c.token = CachedToken{}
	c.mu.Unlock()
}

// Snapshot returns the raw slot regardless of validity.
func (c *Cache) Snapshot() CachedToken {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}
