package auth

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/loganlanou/campusconnect/internal/api"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultCacheTTL   = 30 * time.Second
	DefaultWaitBudget = 3 * time.Second
)

// UserFetcher asks the upstream who owns the token carried by ctx
type UserFetcher interface {
	CurrentUser(ctx context.Context) (*api.User, error)
}

// Resolver answers "who is this browser" with a cached, de-duplicated
// upstream lookup. Failed lookups are never cached and never retried here;
// the next navigation asks again.
type Resolver struct {
	fetcher UserFetcher
	store   Store
	wait    time.Duration
	group   singleflight.Group

	mu       sync.Mutex
	seq      uint64
	inflight map[string]inflightFetch
}

// inflightFetch is the fetch currently allowed to write key back to the
// store. Cancel, Prime and Invalidate remove it, which marks it stale.
type inflightFetch struct {
	id     uint64
	cancel context.CancelFunc
}

// ResolverOption tunes a Resolver
type ResolverOption func(*Resolver)

// WithWaitBudget sets how long Resolve blocks on a running fetch before it
// reports StateLoading. Zero waits for the fetch to finish.
func WithWaitBudget(d time.Duration) ResolverOption {
	return func(r *Resolver) {
		r.wait = d
	}
}

func NewResolver(fetcher UserFetcher, store Store, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		fetcher:  fetcher,
		store:    store,
		wait:     DefaultWaitBudget,
		inflight: make(map[string]inflightFetch),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the session for token. It never fails: upstream errors
// come back as StateFailed, and a fetch that outlasts the wait budget comes
// back as StateLoading.
func (r *Resolver) Resolve(ctx context.Context, token string) Session {
	return r.resolve(ctx, token, r.wait)
}

// Await is Resolve without the wait budget. It never reports StateLoading,
// so requests that cannot be replayed by a refresh get a definite answer.
func (r *Resolver) Await(ctx context.Context, token string) Session {
	return r.resolve(ctx, token, 0)
}

func (r *Resolver) resolve(ctx context.Context, token string, wait time.Duration) Session {
	if token == "" {
		return Anonymous()
	}

	key := CacheKey(token)

	user, ok, err := r.store.Get(ctx, key)
	if err != nil {
		slog.Warn("session cache read failed", "error", err)
	} else if ok {
		return Ready(user)
	}

	ch := r.group.DoChan(key, func() (any, error) {
		return r.fetch(ctx, key, token), nil
	})

	var budget <-chan time.Time
	if wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		budget = timer.C
	}

	select {
	case res := <-ch:
		return res.Val.(Session)
	case <-budget:
		slog.Debug("session fetch still running", "key", key[:12])
		return Loading()
	case <-ctx.Done():
		return Failed(ctx.Err())
	}
}

// fetch runs once per key at a time. It outlives the request that started
// it so that other waiters and the cache still get the answer.
func (r *Resolver) fetch(parent context.Context, key, token string) Session {
	ctx, cancel := context.WithCancel(context.WithoutCancel(parent))
	defer cancel()

	r.mu.Lock()
	r.seq++
	id := r.seq
	r.inflight[key] = inflightFetch{id: id, cancel: cancel}
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		if r.current(key, id) {
			delete(r.inflight, key)
		}
		r.mu.Unlock()
	}()

	user, err := r.fetcher.CurrentUser(api.WithToken(ctx, token))

	var session Session
	switch {
	case err == nil:
		session = Ready(user)
	case api.IsUnauthorized(err):
		session = Anonymous()
	default:
		if !errors.Is(err, context.Canceled) {
			slog.Warn("session fetch failed", "error", err)
		}
		return Failed(err)
	}

	// A Cancel, Prime or Invalidate that happened while we were waiting on
	// the upstream wins over this answer.
	r.mu.Lock()
	stale := !r.current(key, id)
	r.mu.Unlock()
	if stale {
		return session
	}

	if err := r.store.Set(ctx, key, session.User); err != nil {
		slog.Warn("session cache write failed", "error", err)
	}
	return session
}

// current reports whether fetch id still owns key. Callers hold r.mu.
func (r *Resolver) current(key string, id uint64) bool {
	f, ok := r.inflight[key]
	return ok && f.id == id
}

// bump invalidates any running fetch for key so it cannot write back
func (r *Resolver) bump(key string) {
	r.mu.Lock()
	if f, ok := r.inflight[key]; ok {
		f.cancel()
		delete(r.inflight, key)
	}
	r.mu.Unlock()
	r.group.Forget(key)
}

// Cancel aborts a running fetch for token without touching the cache
func (r *Resolver) Cancel(token string) {
	if token == "" {
		return
	}
	r.bump(CacheKey(token))
}

// Invalidate drops the cached session so the next Resolve asks upstream
func (r *Resolver) Invalidate(ctx context.Context, token string) {
	if token == "" {
		return
	}
	key := CacheKey(token)
	r.bump(key)
	if err := r.store.Delete(ctx, key); err != nil {
		slog.Warn("session cache delete failed", "error", err)
	}
}

// Prime stores a user that is known to be fresh, such as the one returned by
// a profile update. A nil user records the browser as logged out.
func (r *Resolver) Prime(ctx context.Context, token string, user *api.User) {
	if token == "" {
		return
	}
	key := CacheKey(token)
	r.bump(key)
	if err := r.store.Set(ctx, key, user); err != nil {
		slog.Warn("session cache write failed", "error", err)
	}
}

// Close cancels running fetches and releases the store
func (r *Resolver) Close() error {
	r.mu.Lock()
	for key, f := range r.inflight {
		f.cancel()
		delete(r.inflight, key)
	}
	r.mu.Unlock()
	return r.store.Close()
}
