package auth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
)

// DefaultJWKSTTL is how long a fetched key set is reused
const DefaultJWKSTTL = time.Hour

// jwksCacheEntry caches one key set
type jwksCacheEntry struct {
	keys    jwk.Set
	expires time.Time
}

// JWKSManager fetches and caches JWKS documents by URL
type JWKSManager struct {
	cache  map[string]jwksCacheEntry
	mu     sync.RWMutex
	ttl    time.Duration
	client *http.Client
}

// NewJWKSManager creates a new JWKS manager
func NewJWKSManager(ttl time.Duration) *JWKSManager {
	if ttl <= 0 {
		ttl = DefaultJWKSTTL
	}
	return &JWKSManager{
		cache:  make(map[string]jwksCacheEntry),
		ttl:    ttl,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// GetJWKS returns the key set published at jwksURL, fetching it when the
// cached copy is missing or stale
func (m *JWKSManager) GetJWKS(ctx context.Context, jwksURL string) (jwk.Set, error) {
	m.mu.RLock()
	entry, ok := m.cache[jwksURL]
	m.mu.RUnlock()

	if ok && time.Now().Before(entry.expires) {
		return entry.keys, nil
	}

	keys, err := m.fetchJWKS(ctx, jwksURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
	}

	m.mu.Lock()
	m.cache[jwksURL] = jwksCacheEntry{
		keys:    keys,
		expires: time.Now().Add(m.ttl),
	}
	m.mu.Unlock()

	return keys, nil
}

// Invalidate drops the cached key set for jwksURL
func (m *JWKSManager) Invalidate(jwksURL string) {
	m.mu.Lock()
	delete(m.cache, jwksURL)
	m.mu.Unlock()
}

func (m *JWKSManager) fetchJWKS(ctx context.Context, jwksURL string) (jwk.Set, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, jwksURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("JWKS endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read JWKS response: %w", err)
	}

	keys, err := jwk.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWKS: %w", err)
	}

	return keys, nil
}
