package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/loganlanou/campusconnect/internal/api"
	"github.com/loganlanou/campusconnect/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSession_NotSet(t *testing.T) {
	e := echo.New()
	c := e.NewContext(nil, nil)

	s := GetSession(c)

	assert.Equal(t, StateReady, s.State)
	assert.False(t, s.IsAuthenticated())
	assert.False(t, IsAuthenticated(c))
	assert.False(t, IsAdmin(c))
}

func TestGetSession_WrongType(t *testing.T) {
	e := echo.New()
	c := e.NewContext(nil, nil)
	c.Set(SessionKey, "not a session")

	assert.False(t, GetSession(c).IsAuthenticated())
}

func TestCurrentUser(t *testing.T) {
	e := echo.New()
	c := e.NewContext(nil, nil)

	_, ok := CurrentUser(c)
	assert.False(t, ok)

	c.Set(CurrentUserKey, testUser)
	user, ok := CurrentUser(c)
	assert.True(t, ok)
	assert.Equal(t, testUser, user)
}

func TestRequireAuth(t *testing.T) {
	e := echo.New()
	c := e.NewContext(nil, nil)

	err := RequireAuth(c)
	var httpErr *echo.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)

	c.Set(IsAuthenticatedKey, true)
	assert.NoError(t, RequireAuth(c))
}

type guardFixture struct {
	e        *echo.Echo
	fetcher  *fakeFetcher
	sessions *session.Manager
}

func newGuardFixture(t *testing.T, f *fakeFetcher, wait time.Duration) *guardFixture {
	t.Helper()

	policy := newTestPolicy(t)
	resolver := NewResolver(f, NewMemoryStore(time.Minute), WithWaitBudget(wait))
	t.Cleanup(func() { _ = resolver.Close() })
	sessions := session.NewManager("test-secret-key-32-bytes-long!!!", false)

	waitPage := func(c echo.Context) error { return c.String(http.StatusOK, "loading") }
	unavailable := func(c echo.Context) error { return c.String(http.StatusServiceUnavailable, "try again") }
	ok := func(c echo.Context) error {
		assert.Equal(t, Token(c), api.TokenFromContext(c.Request().Context()))
		return c.String(http.StatusOK, "page")
	}

	e := echo.New()
	e.Use(LoadSession(resolver, policy))
	e.GET("/mySpace", ok, Guard(policy, sessions, userAreaRoute, waitPage, unavailable))
	e.POST("/mySpace", ok, Guard(policy, sessions, userAreaRoute, waitPage, unavailable))
	e.GET("/browse", ok, Guard(policy, sessions, browseRoute, waitPage, unavailable))
	e.GET("/notices", func(c echo.Context) error {
		notices := sessions.PopNotices(c)
		returnTo := sessions.PopReturnTo(c)
		ids := ""
		for _, n := range notices {
			ids += n.ID + ";"
		}
		return c.String(http.StatusOK, ids+returnTo)
	})

	return &guardFixture{e: e, fetcher: f, sessions: sessions}
}

func (g *guardFixture) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	g.e.ServeHTTP(rec, req)
	return rec
}

func lastSessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	var found *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name != api.TokenCookie {
			found = c
		}
	}
	return found
}

func TestGuard_GuestRedirectedToLogin(t *testing.T) {
	g := newGuardFixture(t, &fakeFetcher{}, 0)

	rec := g.get("/mySpace?tab=recent")

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))

	cookie := lastSessionCookie(rec)
	require.NotNil(t, cookie)

	rec = g.get("/notices", cookie)
	assert.Equal(t, "auth-error;/mySpace?tab=recent", rec.Body.String())
}

func TestGuard_UnverifiedRedirectedToSetup(t *testing.T) {
	unverified := &api.User{ID: 2, Role: "user"}
	g := newGuardFixture(t, &fakeFetcher{user: unverified}, 0)
	token := &http.Cookie{Name: api.TokenCookie, Value: "tok"}

	rec := g.get("/browse", token)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/profileSetup", rec.Header().Get(echo.HeaderLocation))

	rec = g.get("/notices", lastSessionCookie(rec))
	assert.Equal(t, "profile-toast;", rec.Body.String())
}

func TestGuard_VerifiedUserAllowed(t *testing.T) {
	g := newGuardFixture(t, &fakeFetcher{user: testUser}, 0)

	rec := g.get("/mySpace", &http.Cookie{Name: api.TokenCookie, Value: "tok"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "page", rec.Body.String())
}

func TestGuard_FailedSession(t *testing.T) {
	f := &fakeFetcher{err: &api.APIError{Status: http.StatusInternalServerError}}
	g := newGuardFixture(t, f, 0)
	token := &http.Cookie{Name: api.TokenCookie, Value: "tok"}

	rec := g.get("/mySpace", token)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = g.get("/browse", token)
	assert.Equal(t, http.StatusOK, rec.Code, "guest-friendly pages stay up")
}

func TestGuard_LoadingRendersPlaceholder(t *testing.T) {
	f := &fakeFetcher{user: testUser, gate: make(chan struct{})}
	g := newGuardFixture(t, f, 10*time.Millisecond)
	t.Cleanup(func() { close(f.gate) })

	rec := g.get("/mySpace", &http.Cookie{Name: api.TokenCookie, Value: "tok"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "loading", rec.Body.String())
}

func TestGuard_MutationWaitsForSession(t *testing.T) {
	f := &fakeFetcher{user: testUser, gate: make(chan struct{})}
	g := newGuardFixture(t, f, 10*time.Millisecond)
	time.AfterFunc(50*time.Millisecond, func() { close(f.gate) })

	req := httptest.NewRequest(http.MethodPost, "/mySpace", nil)
	req.AddCookie(&http.Cookie{Name: api.TokenCookie, Value: "tok"})
	rec := httptest.NewRecorder()
	g.e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "page", rec.Body.String(), "a post is never answered with the loading page")
}

func TestReplayable(t *testing.T) {
	assert.True(t, Replayable(http.MethodGet))
	assert.True(t, Replayable(http.MethodHead))
	assert.False(t, Replayable(http.MethodPost))
	assert.False(t, Replayable(http.MethodDelete))
}
