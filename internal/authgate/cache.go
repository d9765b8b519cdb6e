// Copyright (c) 2026 VeriClass. All rights reserved.

package authgate

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/vericlass/vericlass/internal/platform/sec"
)

// # Validation Cache

// Verdict is the resolved answer to "is this token currently valid, and as whom".
type Verdict struct {
	Valid bool
	User  *User
}

// cacheEntry is a cached verdict keyed by token fingerprint.
//
// Entries are owned exclusively by the cache. The user identity is stored by
// value and copied out on every hit so a cached entry is never shared by
// reference with callers.
type cacheEntry struct {
	valid     bool
	user      User
	cachedAt  time.Time
	expiresAt time.Time
}

// CacheOptions tunes a [ValidationCache]. All fields are this deployment's
// configuration, not protocol constants.
type CacheOptions struct {
	// TTL is how long a positive verdict is served without revalidation.
	TTL time.Duration

	// FailureTTL is how long a negative verdict is served. Kept much shorter
	// than TTL so a token reissued under the same fingerprint window is not
	// rejected forever, while repeated-request storms from a single bad
	// client are still absorbed.
	FailureTTL time.Duration

	// RequestTimeout bounds every backend validation call.
	RequestTimeout time.Duration

	// MaxSize is the hard capacity bound on cached entries. Zero or
	// negative disables the bound.
	MaxSize int
}

// ValidationCache answers token validations from memory, falling back to the
// identity backend on a miss, with independent TTLs for positive and
// negative verdicts and a hard capacity bound.
//
// # Lifecycle
//
// The cache is created once at process start, owned by the gateway, and
// passed by reference to whatever handles requests — never a hidden
// singleton. Tests construct a fresh instance per case.
//
// # Concurrency
//
// The workload is read-mostly: one lookup per inbound request. Lookups take
// the read lock only; the write lock is scoped to the insert/evict and
// invalidate paths. Backend calls happen outside any lock, and concurrent
// misses on the same fingerprint coalesce into a single backend call.
type ValidationCache struct {
	backend IdentityBackend
	options CacheOptions
	logger  *slog.Logger

	// flight coalesces concurrent backend validations per fingerprint, so
	// a hot token whose TTL just lapsed costs one round trip, not one per
	// queued request.
	flight singleflight.Group

	mu      sync.RWMutex
	entries map[string]*cacheEntry

	// invalidations remembers when a fingerprint was last explicitly
	// invalidated, so a backend result whose fetch began before the
	// invalidation cannot resurrect the entry. Tombstones are pruned once
	// they are older than the longest TTL.
	invalidations map[string]time.Time

	hits   atomic.Uint64
	misses atomic.Uint64

	// now is the clock, overridable in tests.
	now func() time.Time
}

// NewValidationCache constructs a ValidationCache over the given backend.
func NewValidationCache(backend IdentityBackend, options CacheOptions, logger *slog.Logger) *ValidationCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &ValidationCache{
		backend:       backend,
		options:       options,
		logger:        logger,
		entries:       make(map[string]*cacheEntry),
		invalidations: make(map[string]time.Time),
		now:           time.Now,
	}
}

/*
Validate resolves an access token into a [Verdict].

Description: Serves a fresh cached verdict when one exists; otherwise calls
the identity backend under the configured timeout and caches the outcome.

Resolution rules:
  - A cached entry past its TTL is treated as absent, not merely stale.
  - A positive verdict is cached for TTL, a negative one for FailureTTL.
  - Concurrent misses on the same fingerprint share one backend call; every
    waiter receives the same outcome.
  - Timeouts and transport errors are NOT cached: the current request fails
    closed (Verdict{Valid: false} with the error), and the very next request
    retries against the backend immediately.

Returns:
  - Verdict: Always resolved — callers never see an "unknown" state.
  - error: [ErrBackendTimeout] or [ErrBackendUnreachable] when the verdict
    could not be established; nil otherwise.
*/
func (cache *ValidationCache) Validate(ctx context.Context, accessToken string) (Verdict, error) {
	fingerprint := sec.Fingerprint(accessToken)

	// ── 1. Cached verdict ─────────────────────────────────────────────────
	if verdict, ok := cache.lookup(fingerprint); ok {
		cache.hits.Add(1)
		return verdict, nil
	}
	cache.misses.Add(1)

	// ── 2. Coalesced backend fallback ─────────────────────────────────────
	result, err, _ := cache.flight.Do(fingerprint, func() (interface{}, error) {
		verdict, fetchErr := cache.fetch(accessToken, fingerprint)
		return verdict, fetchErr
	})

	if err != nil {
		// Timeout or transport failure: fail closed for this request but do
		// not freeze the transient condition into the cache.
		err = classifyTransportError(err)
		cache.logger.WarnContext(ctx, "token_validation_unresolved",
			slog.String("error", err.Error()),
		)
		return Verdict{Valid: false}, err
	}

	// Waiters share the flight's result; hand each caller its own copy of
	// the identity so no verdict is ever shared by reference.
	verdict := result.(Verdict)
	if verdict.Valid && verdict.User != nil {
		user := *verdict.User
		verdict.User = &user
	}
	return verdict, nil
}

// fetch performs the single backend validation behind a coalesced miss. It
// runs under the cache's own timeout, detached from any one waiter's
// context, so the shared outcome cannot be poisoned by whichever caller
// happens to hang up first.
func (cache *ValidationCache) fetch(accessToken, fingerprint string) (Verdict, error) {
	fetchStarted := cache.now()

	callCtx, cancel := context.WithTimeout(context.Background(), cache.options.RequestTimeout)
	defer cancel()

	user, err := cache.backend.ValidateToken(callCtx, accessToken)

	switch {
	case err == nil:
		verdict := Verdict{Valid: true, User: user}
		cache.store(fingerprint, verdict, cache.options.TTL, fetchStarted)
		return verdict, nil

	case errors.Is(err, ErrInvalidToken):
		// A definitive negative verdict — cacheable, short window.
		verdict := Verdict{Valid: false}
		cache.store(fingerprint, verdict, cache.options.FailureTTL, fetchStarted)
		return verdict, nil

	default:
		return Verdict{}, err
	}
}

// Invalidate removes a token's verdict immediately (logout, rotation).
//
// The removal supersedes any in-flight backend result whose fetch began at
// or before this call, so a racing validation cannot reinstate the entry.
func (cache *ValidationCache) Invalidate(accessToken string) {
	fingerprint := sec.Fingerprint(accessToken)

	cache.mu.Lock()
	defer cache.mu.Unlock()

	delete(cache.entries, fingerprint)
	cache.invalidations[fingerprint] = cache.now()
}

// Len returns the current number of cached entries.
func (cache *ValidationCache) Len() int {
	cache.mu.RLock()
	defer cache.mu.RUnlock()
	return len(cache.entries)
}

// Stats returns the lifetime hit/miss counters.
func (cache *ValidationCache) Stats() (hits, misses uint64) {
	return cache.hits.Load(), cache.misses.Load()
}

// lookup returns a copy of the cached verdict when present and fresh.
func (cache *ValidationCache) lookup(fingerprint string) (Verdict, bool) {
	cache.mu.RLock()
	defer cache.mu.RUnlock()

	entry, ok := cache.entries[fingerprint]
	if !ok || !cache.now().Before(entry.expiresAt) {
		return Verdict{}, false
	}

	if !entry.valid {
		return Verdict{Valid: false}, true
	}

	// Copy the identity out; the entry itself never escapes the cache.
	user := entry.user
	return Verdict{Valid: true, User: &user}, true
}

// store inserts a verdict, honoring invalidations and newer entries.
func (cache *ValidationCache) store(fingerprint string, verdict Verdict, ttl time.Duration, fetchStarted time.Time) {
	cache.mu.Lock()
	defer cache.mu.Unlock()

	// An invalidation issued at or after the fetch began supersedes this
	// result — the backend answered for a session that has since ended.
	if invalidatedAt, ok := cache.invalidations[fingerprint]; ok && !invalidatedAt.Before(fetchStarted) {
		return
	}

	// A late result must not overwrite an entry written by a newer fetch.
	if existing, ok := cache.entries[fingerprint]; ok && existing.cachedAt.After(fetchStarted) {
		return
	}

	cache.pruneInvalidationsLocked()

	if _, exists := cache.entries[fingerprint]; !exists {
		cache.evictLocked()
	}

	now := cache.now()
	entry := &cacheEntry{
		valid:     verdict.Valid,
		cachedAt:  now,
		expiresAt: now.Add(ttl),
	}
	if verdict.Valid && verdict.User != nil {
		entry.user = *verdict.User
	}
	cache.entries[fingerprint] = entry
}

// evictLocked makes room for one insertion by removing entries with the
// nearest expiry. TTL-aware rather than LRU: a nearly-expired entry costs
// almost nothing to lose, a freshly validated one costs a backend round trip.
func (cache *ValidationCache) evictLocked() {
	if cache.options.MaxSize <= 0 {
		return
	}

	for len(cache.entries) >= cache.options.MaxSize {
		var victimKey string
		var victimExpiry time.Time

		for key, entry := range cache.entries {
			if victimKey == "" || entry.expiresAt.Before(victimExpiry) {
				victimKey = key
				victimExpiry = entry.expiresAt
			}
		}

		delete(cache.entries, victimKey)
	}
}

// pruneInvalidationsLocked drops tombstones old enough that no in-flight
// fetch can predate them, keeping the invalidation map bounded.
func (cache *ValidationCache) pruneInvalidationsLocked() {
	horizon := cache.options.TTL
	if cache.options.RequestTimeout > horizon {
		horizon = cache.options.RequestTimeout
	}

	cutoff := cache.now().Add(-2 * horizon)
	for fingerprint, invalidatedAt := range cache.invalidations {
		if invalidatedAt.Before(cutoff) {
			delete(cache.invalidations, fingerprint)
		}
	}
}

// classifyTransportError maps low-level call failures onto the gate's
// error taxonomy.
func classifyTransportError(err error) error {
	switch {
	case errors.Is(err, ErrBackendTimeout) || errors.Is(err, ErrBackendUnreachable):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return ErrBackendTimeout
	default:
		return ErrBackendUnreachable
	}
}
