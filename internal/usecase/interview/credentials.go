package interview

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/johnquangdev/interview-assistant/internal/domain/repositories"
	"github.com/johnquangdev/interview-assistant/internal/infrastructure/cache"
)

type cachedCredential struct {
	key string
	ok  bool
}

// CredentialResolver resolves the scoring credential of a tenant. Lookups,
// including misses, are cached for ttl.
type CredentialResolver struct {
	repo  repositories.CredentialRepository
	store *cache.MemoryStore[cachedCredential]
	ttl   time.Duration
}

// NewCredentialResolver creates a resolver. A zero ttl means five minutes.
func NewCredentialResolver(repo repositories.CredentialRepository, ttl time.Duration) *CredentialResolver {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CredentialResolver{
		repo:  repo,
		store: cache.NewMemoryStore[cachedCredential](ttl),
		ttl:   ttl,
	}
}

// Resolve returns the credential of a tenant. An absent credential is
// ("", false, nil).
func (r *CredentialResolver) Resolve(ctx context.Context, tenantID string) (string, bool, error) {
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" || r == nil || r.repo == nil {
		return "", false, nil
	}
	if c, ok := r.store.Get(tenantID); ok {
		return c.key, c.ok, nil
	}

	cred, err := r.repo.FindActive(ctx, tenantID)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve credential: %w", err)
	}

	entry := cachedCredential{}
	if cred != nil && strings.TrimSpace(cred.APIKey) != "" {
		entry = cachedCredential{key: strings.TrimSpace(cred.APIKey), ok: true}
	}
	r.store.Set(tenantID, entry, r.ttl)
	return entry.key, entry.ok, nil
}

// Invalidate drops the cached credential of a tenant
func (r *CredentialResolver) Invalidate(tenantID string) {
	r.store.Delete(strings.TrimSpace(tenantID))
}

// Close stops the cache sweeper
func (r *CredentialResolver) Close() {
	r.store.Close()
}
