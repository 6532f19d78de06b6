package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/loganlanou/campusconnect/internal/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loginValues() url.Values {
	return url.Values{"email": {"asha@example.com"}, "password": {"hunter22"}}
}

// issueToken answers a login or signup with the upstream token cookie
func issueToken(token string, user *api.User) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: api.TokenCookie, Value: token, Path: "/", HttpOnly: true})
		writeJSON(w, http.StatusOK, map[string]any{"message": "Login successful", "user": user})
	}
}

func TestLoginSubmit_InvalidFormIsRerendered(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(formRequest(http.MethodPost, "/login", url.Values{"email": {"not-an-email"}, "password": {"Zq9-unique-pw"}}))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="not-an-email"`)
	assert.NotContains(t, rec.Body.String(), "Zq9-unique-pw", "passwords are never echoed back")
	assert.Contains(t, rec.Body.String(), "Login failed")
	assert.Zero(t, app.api.called("POST /auth/login/"))
}

func TestLoginSubmit_RelaysTokenAndPrimesSession(t *testing.T) {
	app := newTestApp(t)
	app.api.handle("POST /auth/login/{$}", issueToken("fresh-token", studentUser()))

	rec := app.do(formRequest(http.MethodPost, "/login", loginValues()))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))

	cookie := responseCookie(rec, api.TokenCookie)
	require.NotNil(t, cookie)
	assert.Equal(t, "fresh-token", cookie.Value)
	assert.True(t, cookie.HttpOnly)

	s := app.deps.Resolver.Resolve(context.Background(), "fresh-token")
	assert.True(t, s.IsAuthenticated())
	assert.Zero(t, app.api.called("GET /auth/user/"), "the login answer fills the cache")

	page := app.follow(t, rec, "fresh-token")
	assert.Contains(t, page.Body.String(), "Login successful!")
}

func TestLoginSubmit_UnverifiedUserGoesToProfileSetup(t *testing.T) {
	app := newTestApp(t)
	user := studentUser()
	user.IsVerified = false
	app.api.handle("POST /auth/login/{$}", issueToken("fresh-token", user))

	rec := app.do(formRequest(http.MethodPost, "/login", loginValues()))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/profileSetup", rec.Header().Get(echo.HeaderLocation))
}

func TestLoginSubmit_ReturnsToRememberedPath(t *testing.T) {
	app := newTestApp(t)
	app.api.handle("POST /auth/login/{$}", issueToken("fresh-token", studentUser()))

	// The guard remembered where the guest was going
	guarded := httptest.NewRecorder()
	c := app.e.NewContext(httptest.NewRequest(http.MethodGet, "/mySpace/bookmarks", nil), guarded)
	require.NoError(t, app.deps.Sessions.RememberReturnTo(c, "/mySpace/bookmarks"))

	rec := app.do(carryCookies(formRequest(http.MethodPost, "/login", loginValues()), guarded))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/mySpace/bookmarks", rec.Header().Get(echo.HeaderLocation))
}

func TestLoginSubmit_UpstreamRejects(t *testing.T) {
	app := newTestApp(t)
	app.api.handle("POST /auth/login/{$}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid email or password"})
	})

	rec := app.do(formRequest(http.MethodPost, "/login", loginValues()))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email or password")
	assert.Contains(t, rec.Body.String(), `value="asha@example.com"`)
	assert.Nil(t, responseCookie(rec, api.TokenCookie))
}

func TestLoginSubmit_UpstreamDown(t *testing.T) {
	app := newTestApp(t)
	app.api.handle("POST /auth/login/{$}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	rec := app.do(formRequest(http.MethodPost, "/login", loginValues()))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "Login failed")
}

func TestSignUpSubmit_PasswordsMustMatch(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(formRequest(http.MethodPost, "/signup", url.Values{
		"full_name":        {"Asha Patel"},
		"email":            {"asha@example.com"},
		"phone":            {"9876543210"},
		"password":         {"hunter22"},
		"confirm_password": {"hunter23"},
		"accept_terms":     {"yes"},
	}))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Passwords do not match")
	assert.Zero(t, app.api.called("POST /auth/signup/"))
}

func TestSignUpSubmit_WithoutTokenGoesToLogin(t *testing.T) {
	app := newTestApp(t)

	var got api.Registration
	app.api.handle("POST /auth/signup/{$}", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, decodeJSON(r, &got))
		writeJSON(w, http.StatusCreated, map[string]string{"message": "User registered"})
	})

	rec := app.do(formRequest(http.MethodPost, "/signup", url.Values{
		"full_name":        {" Asha Patel "},
		"email":            {"asha@example.com"},
		"phone":            {"9876543210"},
		"password":         {"hunter22"},
		"confirm_password": {"hunter22"},
		"accept_terms":     {"yes"},
	}))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
	assert.Equal(t, "Asha Patel", got.FullName)
	assert.Equal(t, "user", got.Role)
}

func TestLogout_ClearsCookieAndSession(t *testing.T) {
	app := newTestApp(t)
	app.api.signIn("tok", studentUser())
	app.api.handle("POST /auth/logout/{$}", func(w http.ResponseWriter, r *http.Request) {
		app.api.signOut("tok")
		writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
	})

	rec := app.do(withToken(httptest.NewRequest(http.MethodPost, "/logout", nil), "tok"))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))

	cookie := responseCookie(rec, api.TokenCookie)
	require.NotNil(t, cookie)
	assert.Negative(t, cookie.MaxAge)

	s := app.deps.Resolver.Resolve(context.Background(), "tok")
	assert.False(t, s.IsAuthenticated())
}

func TestLogout_UpstreamFailureRestoresSession(t *testing.T) {
	app := newTestApp(t)
	app.api.signIn("tok", studentUser())
	app.api.handle("POST /auth/logout/{$}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	req := withToken(httptest.NewRequest(http.MethodPost, "/logout", nil), "tok")
	req.Header.Set("Referer", "http://campus.test/browse?page=2")
	rec := app.do(req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/browse?page=2", rec.Header().Get(echo.HeaderLocation))
	assert.Nil(t, responseCookie(rec, api.TokenCookie), "the token cookie is kept")

	fetches := app.api.called("GET /auth/user/")
	s := app.deps.Resolver.Resolve(context.Background(), "tok")
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, fetches, app.api.called("GET /auth/user/"), "the previous session is restored to the cache")
}
