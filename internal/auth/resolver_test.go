package auth

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/loganlanou/campusconnect/internal/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	calls atomic.Int32
	gate  chan struct{}

	// ignoreCancel makes the fetch finish even after its context is cancelled,
	// like a response that was already on the wire
	ignoreCancel bool

	mu    sync.Mutex
	user  *api.User
	err   error
	token string
}

func (f *fakeFetcher) CurrentUser(ctx context.Context) (*api.User, error) {
	f.calls.Add(1)
	if f.gate != nil {
		if f.ignoreCancel {
			<-f.gate
		} else {
			select {
			case <-f.gate:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = api.TokenFromContext(ctx)
	return f.user, f.err
}

func (f *fakeFetcher) set(user *api.User, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.user = user
	f.err = err
}

func newTestResolver(t *testing.T, f *fakeFetcher, opts ...ResolverOption) (*Resolver, Store) {
	t.Helper()
	store := NewMemoryStore(time.Minute)
	r := NewResolver(f, store, opts...)
	t.Cleanup(func() { _ = r.Close() })
	return r, store
}

var testUser = &api.User{ID: 7, Email: "asha@example.com", Role: "user", IsVerified: true}

func TestResolve_NoTokenIsGuest(t *testing.T) {
	f := &fakeFetcher{user: testUser}
	r, _ := newTestResolver(t, f)

	s := r.Resolve(context.Background(), "")

	assert.Equal(t, StateReady, s.State)
	assert.Nil(t, s.User)
	assert.Zero(t, f.calls.Load())
}

func TestResolve_CachesUser(t *testing.T) {
	f := &fakeFetcher{user: testUser}
	r, _ := newTestResolver(t, f)
	ctx := context.Background()

	first := r.Resolve(ctx, "tok")
	second := r.Resolve(ctx, "tok")

	assert.True(t, first.IsAuthenticated())
	assert.Equal(t, testUser, second.User)
	assert.Equal(t, int32(1), f.calls.Load())
	assert.Equal(t, "tok", f.token, "token is forwarded upstream")
}

func TestResolve_SingleFlight(t *testing.T) {
	f := &fakeFetcher{user: testUser, gate: make(chan struct{})}
	r, _ := newTestResolver(t, f, WithWaitBudget(0))

	const n = 20
	results := make([]Session, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = r.Resolve(context.Background(), "tok")
		}()
	}

	require.Eventually(t, func() bool { return f.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(f.gate)
	wg.Wait()

	assert.Equal(t, int32(1), f.calls.Load(), "concurrent resolves share one upstream call")
	for _, s := range results {
		assert.True(t, s.IsAuthenticated())
	}
}

func TestResolve_UnauthorizedIsCachedGuest(t *testing.T) {
	f := &fakeFetcher{err: &api.APIError{Status: http.StatusUnauthorized}}
	r, _ := newTestResolver(t, f)
	ctx := context.Background()

	s := r.Resolve(ctx, "expired")
	again := r.Resolve(ctx, "expired")

	assert.Equal(t, StateReady, s.State)
	assert.False(t, s.IsAuthenticated())
	assert.False(t, again.IsAuthenticated())
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestResolve_FailureIsNotCached(t *testing.T) {
	f := &fakeFetcher{err: &api.APIError{Status: http.StatusBadGateway}}
	r, _ := newTestResolver(t, f)
	ctx := context.Background()

	s := r.Resolve(ctx, "tok")
	require.Equal(t, StateFailed, s.State)
	assert.Error(t, s.Err)

	f.set(testUser, nil)
	s = r.Resolve(ctx, "tok")

	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, int32(2), f.calls.Load(), "a failed lookup is asked again on the next navigation")
}

func TestResolve_LoadingWhenBudgetExpires(t *testing.T) {
	f := &fakeFetcher{user: testUser, gate: make(chan struct{})}
	r, _ := newTestResolver(t, f, WithWaitBudget(20*time.Millisecond))
	ctx := context.Background()

	s := r.Resolve(ctx, "tok")
	assert.Equal(t, StateLoading, s.State)
	assert.False(t, s.IsAuthenticated())

	close(f.gate)

	assert.Eventually(t, func() bool {
		return r.Resolve(ctx, "tok").IsAuthenticated()
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestCancel_AbortsFetch(t *testing.T) {
	f := &fakeFetcher{user: testUser, gate: make(chan struct{})}
	r, store := newTestResolver(t, f, WithWaitBudget(0))
	t.Cleanup(func() { close(f.gate) })

	done := make(chan Session, 1)
	go func() { done <- r.Resolve(context.Background(), "tok") }()

	require.Eventually(t, func() bool { return f.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	r.Cancel("tok")

	select {
	case s := <-done:
		assert.Equal(t, StateFailed, s.State)
	case <-time.After(time.Second):
		t.Fatal("Resolve did not return after Cancel")
	}

	_, ok, err := store.Get(context.Background(), CacheKey("tok"))
	require.NoError(t, err)
	assert.False(t, ok)
}

// A logout that clears the session while a fetch is in flight must not be
// undone when that fetch lands
func TestPrime_WinsOverInFlightFetch(t *testing.T) {
	f := &fakeFetcher{user: testUser, gate: make(chan struct{}), ignoreCancel: true}
	r, store := newTestResolver(t, f, WithWaitBudget(0))
	ctx := context.Background()

	done := make(chan Session, 1)
	go func() { done <- r.Resolve(ctx, "tok") }()

	require.Eventually(t, func() bool { return f.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	r.Prime(ctx, "tok", nil)
	close(f.gate)
	<-done

	user, ok, err := store.Get(ctx, CacheKey("tok"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Nil(t, user, "the optimistic logout stays in the cache")
	assert.False(t, r.Resolve(ctx, "tok").IsAuthenticated())
}

func TestInvalidate_ForcesRefetch(t *testing.T) {
	f := &fakeFetcher{user: testUser}
	r, _ := newTestResolver(t, f)
	ctx := context.Background()

	r.Resolve(ctx, "tok")
	updated := *testUser
	updated.FullName = "Asha Rao"
	f.set(&updated, nil)

	r.Invalidate(ctx, "tok")
	s := r.Resolve(ctx, "tok")

	assert.Equal(t, "Asha Rao", s.User.FullName)
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestResolve_ContextCancelled(t *testing.T) {
	f := &fakeFetcher{user: testUser, gate: make(chan struct{})}
	r, _ := newTestResolver(t, f, WithWaitBudget(0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := r.Resolve(ctx, "tok")
	assert.Equal(t, StateFailed, s.State)

	close(f.gate)
	assert.Eventually(t, func() bool {
		return r.Resolve(context.Background(), "tok").IsAuthenticated()
	}, time.Second, 10*time.Millisecond, "the shared fetch outlives the request that started it")
}

func TestCacheKey(t *testing.T) {
	key := CacheKey("secret-token")

	assert.Equal(t, key, CacheKey("secret-token"))
	assert.NotEqual(t, key, CacheKey("other-token"))
	assert.NotContains(t, key, "secret-token")
	assert.Len(t, key, len("user:")+64)
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore(20 * time.Millisecond)
	t.Cleanup(func() { _ = store.Close() })
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", testUser))
	user, ok, _ := store.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, testUser, user)

	assert.Eventually(t, func() bool {
		_, ok, _ := store.Get(ctx, "k")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestMemoryStore_CloseTwice(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}

func (r *Resolver) tracked() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.inflight)
}

func TestResolver_KeepsNoStateForIdleTokens(t *testing.T) {
	f := &fakeFetcher{user: testUser}
	r, _ := newTestResolver(t, f)
	ctx := context.Background()

	for i := range 1000 {
		token := "tok-" + strconv.Itoa(i)
		r.Prime(ctx, token, testUser)
		r.Invalidate(ctx, token)
	}
	assert.Zero(t, r.tracked())

	for i := range 50 {
		r.Resolve(ctx, "fetched-"+strconv.Itoa(i))
	}
	assert.Zero(t, r.tracked(), "finished fetches release their key")
}

func TestResolver_InvalidatedFetchIsNotTracked(t *testing.T) {
	f := &fakeFetcher{user: testUser, gate: make(chan struct{}), ignoreCancel: true}
	r, store := newTestResolver(t, f, WithWaitBudget(0))
	ctx := context.Background()

	done := make(chan Session, 1)
	go func() { done <- r.Resolve(ctx, "tok") }()

	require.Eventually(t, func() bool { return f.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	r.Invalidate(ctx, "tok")
	assert.Zero(t, r.tracked())

	close(f.gate)
	<-done

	_, ok, err := store.Get(ctx, CacheKey("tok"))
	require.NoError(t, err)
	assert.False(t, ok, "the invalidated fetch does not write back")
	assert.Zero(t, r.tracked())
}

func TestAwait_IgnoresWaitBudget(t *testing.T) {
	f := &fakeFetcher{user: testUser, gate: make(chan struct{})}
	r, _ := newTestResolver(t, f, WithWaitBudget(10*time.Millisecond))
	ctx := context.Background()

	assert.Equal(t, StateLoading, r.Resolve(ctx, "tok").State)

	done := make(chan Session, 1)
	go func() { done <- r.Await(ctx, "tok") }()

	select {
	case <-done:
		t.Fatal("Await returned before the fetch finished")
	case <-time.After(50 * time.Millisecond):
	}

	close(f.gate)
	s := <-done
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, int32(1), f.calls.Load(), "Await joins the running fetch")
}
