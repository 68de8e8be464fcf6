// Package profile memoizes resolved display identities by user ID.
//
// Entries are weak, derived data: never authoritative, always
// re-fetchable. A failed lookup is logged and left uncached so the next
// call retries; concurrent lookups of the same ID collapse into a single
// outstanding request.
package profile

import (
	"context"
	"io"
	"log"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/boardwalkhq/boardwalk/pkg/metrics"
	"github.com/boardwalkhq/boardwalk/pkg/model"
)

// Unassigned is the display name used when an issue carries no assignee at
// all. LoadingPlaceholder is used while an assignee id is known but its
// profile has not resolved yet.
const (
	Unassigned         = "Unassigned"
	LoadingPlaceholder = "…"
)

// FetchFunc resolves a user id to a profile, typically backed by the
// workspace API's getProfile operation.
type FetchFunc func(ctx context.Context, userID string) (model.Profile, error)

// Cache memoizes profiles per user id for the lifetime of a session.
type Cache struct {
	fetch  FetchFunc
	logger *log.Logger

	mu      sync.RWMutex
	entries map[string]model.Profile

	flight singleflight.Group
}

// NewCache creates a cache backed by the given fetch function.
func NewCache(fetch FetchFunc) *Cache {
	return &Cache{
		fetch: fetch,
		// Silence by default. Callers can opt-in via SetLogger.
		logger:  log.New(io.Discard, "", 0),
		entries: make(map[string]model.Profile),
	}
}

// SetLogger sets a custom logger for fetch failures.
func (c *Cache) SetLogger(logger *log.Logger) {
	c.logger = logger
}

// Get returns the cached profile for userID, if resolved.
func (c *Cache) Get(userID string) (model.Profile, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.entries[userID]
	return p, ok
}

// Len returns the number of cached profiles.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Ensure makes the profile for userID available in the cache, fetching it
// at most once regardless of how many callers ask concurrently. It is a
// no-op for an empty id or an already-cached one. Fetch failures are
// logged and swallowed; the id stays uncached and eligible for retry.
func (c *Cache) Ensure(ctx context.Context, userID string) {
	if userID == "" {
		return
	}
	if _, ok := c.Get(userID); ok {
		return
	}

	// singleflight collapses concurrent callers onto one fetch; the
	// in-flight marker lives inside the group.
	_, err, _ := c.flight.Do(userID, func() (any, error) {
		defer metrics.Timer(metrics.ProfileFetch)()
		p, err := c.fetch(ctx, userID)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[userID] = p
		c.mu.Unlock()
		return p, nil
	})
	if err != nil {
		c.logger.Printf("WARNING: failed to fetch profile for %s: %v", userID, err)
	}
}

// DisplayName resolves the name to show for an issue's assignee, falling
// through inline snapshot -> cache entry -> placeholder.
func (c *Cache) DisplayName(issue model.Issue) string {
	if issue.Assignee != nil {
		if issue.Assignee.FullName != "" {
			return issue.Assignee.FullName
		}
		if issue.Assignee.Name != "" {
			return issue.Assignee.Name
		}
	}
	if issue.AssigneeID == "" {
		return Unassigned
	}
	if p, ok := c.Get(issue.AssigneeID); ok {
		if name := p.DisplayName(); name != "" {
			return name
		}
	}
	return LoadingPlaceholder
}
