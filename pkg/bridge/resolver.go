package bridge

import (
	"context"
	"net"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

const (
	// defaultResolveTTL caches reverse lookups for this long, hits and
	// misses alike.
	defaultResolveTTL = 5 * time.Minute

	// resolveTimeout bounds one reverse lookup.
	resolveTimeout = 1 * time.Second
)

// HostResolver answers reverse DNS lookups for peer addresses. Results
// are cached and concurrent lookups for the same address collapse into
// one query, so a burst of tile requests costs at most one resolution.
type HostResolver struct {
	lookup  func(ctx context.Context, addr string) ([]string, error)
	cache   *gocache.Cache
	group   singleflight.Group
	timeout time.Duration
}

// NewHostResolver builds a resolver with the given cache lifetime. ttl
// <= 0 selects the default.
func NewHostResolver(ttl time.Duration) *HostResolver {
	if ttl <= 0 {
		ttl = defaultResolveTTL
	}
	return &HostResolver{
		lookup:  net.DefaultResolver.LookupAddr,
		cache:   gocache.New(ttl, 2*ttl),
		timeout: resolveTimeout,
	}
}

// ReverseName returns the reverse DNS name for addr, or "" when none
// resolves. Failures are cached like answers; a flapping resolver never
// slows request handling twice within the cache lifetime.
func (r *HostResolver) ReverseName(ctx context.Context, addr string) string {
	if addr == "" {
		return ""
	}
	if cached, ok := r.cache.Get(addr); ok {
		return cached.(string)
	}

	name, _, _ := r.group.Do(addr, func() (any, error) {
		lctx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()

		resolved := ""
		if names, err := r.lookup(lctx, addr); err == nil && len(names) > 0 {
			resolved = strings.TrimSuffix(names[0], ".")
		}
		r.cache.Set(addr, resolved, gocache.DefaultExpiration)
		return resolved, nil
	})
	return name.(string)
}
