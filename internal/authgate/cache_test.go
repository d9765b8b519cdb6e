// Copyright (c) 2026 VeriClass. All rights reserved.

package authgate

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedBackend answers ValidateToken from a script and counts calls.
// Only the validation method matters to the cache; the rest panic.
type scriptedBackend struct {
	mu    sync.Mutex
	calls int
	user  *User
	err   error

	// block, when non-nil, is closed by the test to release an in-flight call.
	block chan struct{}
}

func (b *scriptedBackend) ValidateToken(ctx context.Context, accessToken string) (*User, error) {
	b.mu.Lock()
	b.calls++
	block := b.block
	b.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if b.err != nil {
		return nil, b.err
	}
	return b.user, nil
}

func (b *scriptedBackend) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

func (b *scriptedBackend) Authenticate(context.Context, string, string) (*AuthResult, error) {
	panic("not used")
}
func (b *scriptedBackend) VerifyLoginOTP(context.Context, string, string) (*AuthResult, error) {
	panic("not used")
}
func (b *scriptedBackend) RegisterInitiate(context.Context, RegisterInput) (*AuthResult, error) {
	panic("not used")
}
func (b *scriptedBackend) VerifyRegisterOTP(context.Context, string, string) (*AuthResult, error) {
	panic("not used")
}
func (b *scriptedBackend) Refresh(context.Context, string) (*TokenPair, error) { panic("not used") }
func (b *scriptedBackend) Revoke(context.Context, string) error                { panic("not used") }
func (b *scriptedBackend) RequestPasswordReset(context.Context, string) error  { panic("not used") }
func (b *scriptedBackend) ResetPassword(context.Context, string, string) error { panic("not used") }

func testCacheOptions() CacheOptions {
	return CacheOptions{
		TTL:            60 * time.Second,
		FailureTTL:     10 * time.Second,
		RequestTimeout: 5 * time.Second,
		MaxSize:        1000,
	}
}

// fakeClock is a manually advanced clock for cache tests.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

/*
TestValidationCache_HitSkipsBackend tests that a second validation of the
same token within the TTL is answered from memory.
*/
func TestValidationCache_HitSkipsBackend(t *testing.T) {
	backend := &scriptedBackend{user: &User{ID: "u1", Username: "yomira", Role: "student"}}
	cache := NewValidationCache(backend, testCacheOptions(), nil)

	first, err := cache.Validate(context.Background(), "token-a")
	require.NoError(t, err)
	require.True(t, first.Valid)
	require.NotNil(t, first.User)
	assert.Equal(t, "yomira", first.User.Username)

	second, err := cache.Validate(context.Background(), "token-a")
	require.NoError(t, err)
	assert.True(t, second.Valid)
	assert.Equal(t, 1, backend.callCount())

	hits, misses := cache.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)
}

/*
TestValidationCache_PositiveTTLExpiry tests that a positive verdict is
served for the full TTL and refetched once it lapses.
*/
func TestValidationCache_PositiveTTLExpiry(t *testing.T) {
	backend := &scriptedBackend{user: &User{ID: "u1"}}
	clock := newFakeClock()
	cache := NewValidationCache(backend, testCacheOptions(), nil)
	cache.now = clock.Now

	_, err := cache.Validate(context.Background(), "token-a")
	require.NoError(t, err)

	clock.Advance(59 * time.Second)
	_, err = cache.Validate(context.Background(), "token-a")
	require.NoError(t, err)
	assert.Equal(t, 1, backend.callCount(), "verdict inside the TTL must be served from memory")

	clock.Advance(2 * time.Second)
	_, err = cache.Validate(context.Background(), "token-a")
	require.NoError(t, err)
	assert.Equal(t, 2, backend.callCount(), "verdict past the TTL must be refetched")
}

/*
TestValidationCache_NegativeVerdictShortTTL tests that an invalid-token
verdict is cached for the failure TTL only.
*/
func TestValidationCache_NegativeVerdictShortTTL(t *testing.T) {
	backend := &scriptedBackend{err: ErrInvalidToken}
	clock := newFakeClock()
	cache := NewValidationCache(backend, testCacheOptions(), nil)
	cache.now = clock.Now

	verdict, err := cache.Validate(context.Background(), "bad-token")
	require.NoError(t, err, "a definitive negative verdict is not an error")
	assert.False(t, verdict.Valid)
	assert.Nil(t, verdict.User)

	clock.Advance(9 * time.Second)
	_, err = cache.Validate(context.Background(), "bad-token")
	require.NoError(t, err)
	assert.Equal(t, 1, backend.callCount())

	clock.Advance(2 * time.Second)
	_, err = cache.Validate(context.Background(), "bad-token")
	require.NoError(t, err)
	assert.Equal(t, 2, backend.callCount(), "negative verdict past the failure TTL must be refetched")
}

/*
TestValidationCache_TransportErrorsNotCached tests that timeouts and
unreachable-backend conditions fail closed without freezing into the cache.
*/
func TestValidationCache_TransportErrorsNotCached(t *testing.T) {
	tests := []struct {
		name        string
		backendErr  error
		expectedErr error
	}{
		{"timeout", ErrBackendTimeout, ErrBackendTimeout},
		{"unreachable", ErrBackendUnreachable, ErrBackendUnreachable},
		{"deadline_exceeded", context.DeadlineExceeded, ErrBackendTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &scriptedBackend{err: tt.backendErr}
			cache := NewValidationCache(backend, testCacheOptions(), nil)

			verdict, err := cache.Validate(context.Background(), "token-a")
			require.ErrorIs(t, err, tt.expectedErr)
			assert.False(t, verdict.Valid, "unresolved validations fail closed")
			assert.Equal(t, 0, cache.Len(), "transport failures must not be cached")

			_, err = cache.Validate(context.Background(), "token-a")
			require.ErrorIs(t, err, tt.expectedErr)
			assert.Equal(t, 2, backend.callCount(), "the next request retries immediately")
		})
	}
}

/*
TestValidationCache_InvalidateForcesRefetch tests that an explicit
invalidation removes the verdict regardless of remaining TTL.
*/
func TestValidationCache_InvalidateForcesRefetch(t *testing.T) {
	backend := &scriptedBackend{user: &User{ID: "u1"}}
	clock := newFakeClock()
	cache := NewValidationCache(backend, testCacheOptions(), nil)
	cache.now = clock.Now

	_, err := cache.Validate(context.Background(), "token-a")
	require.NoError(t, err)
	require.Equal(t, 1, cache.Len())

	clock.Advance(time.Second)
	cache.Invalidate("token-a")
	assert.Equal(t, 0, cache.Len())

	clock.Advance(time.Second)
	_, err = cache.Validate(context.Background(), "token-a")
	require.NoError(t, err)
	assert.Equal(t, 2, backend.callCount())
}

/*
TestValidationCache_InvalidateSupersedesInflightFetch tests that a backend
result whose fetch began before an invalidation cannot resurrect the entry.
*/
func TestValidationCache_InvalidateSupersedesInflightFetch(t *testing.T) {
	release := make(chan struct{})
	backend := &scriptedBackend{user: &User{ID: "u1"}, block: release}
	cache := NewValidationCache(backend, testCacheOptions(), nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = cache.Validate(context.Background(), "token-a")
	}()

	// Wait for the fetch to be in flight, then invalidate and release it.
	require.Eventually(t, func() bool { return backend.callCount() == 1 },
		time.Second, time.Millisecond)
	cache.Invalidate("token-a")
	close(release)
	<-done

	assert.Equal(t, 0, cache.Len(), "a superseded fetch result must not be stored")
}

/*
TestValidationCache_CoalescesConcurrentMisses tests that concurrent misses
on one token share a single in-flight backend validation and that every
waiter receives the resolved verdict.
*/
func TestValidationCache_CoalescesConcurrentMisses(t *testing.T) {
	release := make(chan struct{})
	backend := &scriptedBackend{user: &User{ID: "u1", Username: "yomira"}, block: release}
	cache := NewValidationCache(backend, testCacheOptions(), nil)

	const callers = 8
	var wg sync.WaitGroup
	verdicts := make([]Verdict, callers)
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			verdicts[i], errs[i] = cache.Validate(context.Background(), "token-a")
		}(i)
	}

	// One fetch goes out; let the remaining callers park behind it before
	// releasing the backend.
	require.Eventually(t, func() bool { return backend.callCount() == 1 },
		time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, 1, backend.callCount(), "concurrent misses must share one backend call")
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.True(t, verdicts[i].Valid)
		require.NotNil(t, verdicts[i].User)
		assert.Equal(t, "u1", verdicts[i].User.ID)
	}
}

/*
TestValidationCache_NoMaxSizeNeverEvicts tests that a non-positive capacity
disables the bound instead of stalling inserts.
*/
func TestValidationCache_NoMaxSizeNeverEvicts(t *testing.T) {
	backend := &scriptedBackend{user: &User{ID: "u1"}}
	options := testCacheOptions()
	options.MaxSize = 0
	cache := NewValidationCache(backend, options, nil)

	for _, token := range []string{"token-0", "token-1", "token-2"} {
		_, err := cache.Validate(context.Background(), token)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, cache.Len())
}

/*
TestValidationCache_MaxSizeEviction tests that the capacity bound holds and
that eviction removes the entry closest to expiry.
*/
func TestValidationCache_MaxSizeEviction(t *testing.T) {
	backend := &scriptedBackend{user: &User{ID: "u1"}}
	clock := newFakeClock()
	options := testCacheOptions()
	options.MaxSize = 3
	cache := NewValidationCache(backend, options, nil)
	cache.now = clock.Now

	// Three entries at staggered ages; "token-0" expires first.
	for _, token := range []string{"token-0", "token-1", "token-2"} {
		_, err := cache.Validate(context.Background(), token)
		require.NoError(t, err)
		clock.Advance(time.Second)
	}
	require.Equal(t, 3, cache.Len())

	_, err := cache.Validate(context.Background(), "token-3")
	require.NoError(t, err)
	assert.Equal(t, 3, cache.Len(), "capacity bound must hold after insertion")

	// The evicted entry was the nearest-expiry one; revalidating it calls
	// the backend again while the surviving entries are still served hot.
	before := backend.callCount()
	_, err = cache.Validate(context.Background(), "token-1")
	require.NoError(t, err)
	assert.Equal(t, before, backend.callCount(), "survivor must still be cached")

	_, err = cache.Validate(context.Background(), "token-0")
	require.NoError(t, err)
	assert.Equal(t, before+1, backend.callCount(), "nearest-expiry entry must have been evicted")
}

/*
TestValidationCache_VerdictCopiesUser tests that callers receive an
independent copy of the cached identity.
*/
func TestValidationCache_VerdictCopiesUser(t *testing.T) {
	backend := &scriptedBackend{user: &User{ID: "u1", Username: "yomira"}}
	cache := NewValidationCache(backend, testCacheOptions(), nil)

	first, err := cache.Validate(context.Background(), "token-a")
	require.NoError(t, err)
	first.User.Username = "mutated"

	second, err := cache.Validate(context.Background(), "token-a")
	require.NoError(t, err)
	assert.Equal(t, "yomira", second.User.Username)
}

/*
TestValidationCache_DistinctTokensDistinctEntries tests that verdicts are
keyed per token.
*/
func TestValidationCache_DistinctTokensDistinctEntries(t *testing.T) {
	backend := &scriptedBackend{user: &User{ID: "u1"}}
	cache := NewValidationCache(backend, testCacheOptions(), nil)

	_, err := cache.Validate(context.Background(), "token-a")
	require.NoError(t, err)
	_, err = cache.Validate(context.Background(), "token-b")
	require.NoError(t, err)

	assert.Equal(t, 2, cache.Len())
	assert.Equal(t, 2, backend.callCount())
}
