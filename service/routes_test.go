package service

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/loganlanou/campusconnect/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTier1_PublicRoutes tests that public pages render for guests
func TestTier1_PublicRoutes(t *testing.T) {
	e, _ := setupTestEcho(t)

	tests := []struct {
		name string
		path string
	}{
		{"Home page", "/"},
		{"About page", "/about"},
		{"Contact page", "/contact"},
		{"Browse page", "/browse"},
		{"Browse page with filters", "/browse?category=pg&location_city=Pune"},
		{"Login page", "/login"},
		{"Signup page", "/signup"},
		{"Health check", "/health"},
		{"Listing QR code", "/listing/3/qr.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(e, request(http.MethodGet, tt.path, ""))

			assert.Equal(t, http.StatusOK, rec.Code,
				"Route GET %s should return 200, got %d", tt.path, rec.Code)
		})
	}
}

// TestTier2_GuardedRoutesRedirectGuests tests that every signed-in area sends
// guests to the login page
func TestTier2_GuardedRoutesRedirectGuests(t *testing.T) {
	e, _ := setupTestEcho(t)

	tests := []struct {
		name   string
		method string
		path   string
	}{
		{"Dashboard", http.MethodGet, "/mySpace"},
		{"Profile", http.MethodGet, "/mySpace/profile"},
		{"Bookmarks", http.MethodGet, "/mySpace/bookmarks"},
		{"Profile setup", http.MethodGet, "/profileSetup"},
		{"Toggle bookmark", http.MethodPost, "/listing/3/bookmark"},
		{"Submit review", http.MethodPost, "/listing/3/reviews"},
		{"Admin dashboard", http.MethodGet, "/admin"},
		{"Admin users", http.MethodGet, "/admin/users"},
		{"Admin delete user", http.MethodPost, "/admin/users/4/delete"},
		{"Admin listings", http.MethodGet, "/admin/listings"},
		{"Admin reviews", http.MethodGet, "/admin/reviews"},
		{"Admin approve review", http.MethodPost, "/admin/reviews/4/approve"},
		{"Admin analytics", http.MethodGet, "/admin/analytics"},
		{"Admin sentiment", http.MethodPost, "/admin/analytics/sentiment"},
		{"Admin report", http.MethodGet, "/admin/analytics/report.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(e, request(tt.method, tt.path, ""))

			assert.Equal(t, http.StatusFound, rec.Code,
				"Protected route %s %s should redirect, got %d", tt.method, tt.path, rec.Code)
			assert.Equal(t, auth.LoginPath, rec.Header().Get(echo.HeaderLocation))
		})
	}
}

// TestTier2_LoginReturnsToRequestedPage walks a guest from a guarded page
// through login and back
func TestTier2_LoginReturnsToRequestedPage(t *testing.T) {
	e, _ := setupTestEcho(t)

	guarded := serve(e, request(http.MethodGet, "/mySpace/bookmarks", ""))
	require.Equal(t, http.StatusFound, guarded.Code)
	assert.Equal(t, 1, sessionCookies(guarded), "the notice and the return path share one cookie")

	login := serve(e, withCookies(request(http.MethodGet, "/login", ""), guarded))
	require.Equal(t, http.StatusOK, login.Code)
	assert.Contains(t, login.Body.String(), "Please login to access this page")

	form := url.Values{"email": {"asha@example.com"}, "password": {"hunter22"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	submitted := serve(e, withCookies(req, guarded))

	require.Equal(t, http.StatusSeeOther, submitted.Code)
	assert.Equal(t, "/mySpace/bookmarks", submitted.Header().Get(echo.HeaderLocation))
}

// TestTier3_VerificationAndRoles tests where signed-in accounts are sent
func TestTier3_VerificationAndRoles(t *testing.T) {
	e, _ := setupTestEcho(t)

	tests := []struct {
		name         string
		token        string
		path         string
		wantStatus   int
		wantLocation string
	}{
		{"Unverified user browsing", unverifiedToken, "/browse", http.StatusFound, auth.ProfileSetupPath},
		{"Unverified user on a listing", unverifiedToken, "/listing/3", http.StatusFound, auth.ProfileSetupPath},
		{"Unverified user in their area", unverifiedToken, "/mySpace", http.StatusFound, auth.ProfileSetupPath},
		{"Unverified user on setup", unverifiedToken, "/profileSetup", http.StatusOK, ""},
		{"Unverified user on a public page", unverifiedToken, "/about", http.StatusOK, ""},
		{"Verified user on setup", studentToken, "/profileSetup", http.StatusFound, auth.HomePath},
		{"Student in the admin area", studentToken, "/admin", http.StatusFound, auth.HomePath},
		{"Student in their area", studentToken, "/mySpace/profile", http.StatusOK, ""},
		{"Admin in the student area", adminToken, "/mySpace", http.StatusFound, auth.HomePath},
		{"Signed-in user on login", studentToken, "/login", http.StatusFound, auth.HomePath},
		{"Signed-in user on signup", adminToken, "/signup", http.StatusFound, auth.HomePath},
		{"Expired token is a guest", "expired-token", "/login", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(e, request(http.MethodGet, tt.path, tt.token))

			assert.Equal(t, tt.wantStatus, rec.Code,
				"GET %s should return %d, got %d", tt.path, tt.wantStatus, rec.Code)
			if tt.wantLocation != "" {
				assert.Equal(t, tt.wantLocation, rec.Header().Get(echo.HeaderLocation))
			}
		})
	}
}

// TestUnverifiedRedirectCarriesNotice checks the setup page explains the detour
func TestUnverifiedRedirectCarriesNotice(t *testing.T) {
	e, _ := setupTestEcho(t)

	rec := serve(e, request(http.MethodGet, "/mySpace", unverifiedToken))
	require.Equal(t, http.StatusFound, rec.Code)

	setup := serve(e, withCookies(request(http.MethodGet, auth.ProfileSetupPath, unverifiedToken), rec))
	require.Equal(t, http.StatusOK, setup.Code)
	assert.Contains(t, setup.Body.String(), "Complete profile setup first")
}

// TestGuardNoticeShownOnce follows a guard redirect and checks the notice
// appears on the next page and not on the one after
func TestGuardNoticeShownOnce(t *testing.T) {
	e, _ := setupTestEcho(t)

	tests := []struct {
		name   string
		token  string
		path   string
		to     string
		notice string
	}{
		{"Guest sent to login", "", "/mySpace", auth.LoginPath, "Please login to access this page"},
		{"Unverified user sent to setup", unverifiedToken, "/mySpace/bookmarks", auth.ProfileSetupPath, "Complete profile setup first"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(e, request(http.MethodGet, tt.path, tt.token))
			require.Equal(t, http.StatusFound, rec.Code)
			require.Equal(t, tt.to, rec.Header().Get(echo.HeaderLocation))

			first := serve(e, withCookies(request(http.MethodGet, tt.to, tt.token), rec))
			require.Equal(t, http.StatusOK, first.Code)
			assert.Contains(t, first.Body.String(), tt.notice)

			second := serve(e, withCookies(request(http.MethodGet, tt.to, tt.token), first))
			require.Equal(t, http.StatusOK, second.Code)
			assert.NotContains(t, second.Body.String(), tt.notice)
		})
	}
}

// TestSlowSession_MutationIsNotDropped checks a form post made while the
// session lookup outlasts the wait budget still reaches the upstream,
// while a page load gets the self-refreshing shell
func TestSlowSession_MutationIsNotDropped(t *testing.T) {
	e, up := setupTestEcho(t, func(c *Config) { c.Session.Wait = 20 * time.Millisecond })

	page := serve(e, request(http.MethodGet, "/mySpace", slowToken))
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), `http-equiv="refresh"`)
	assert.Equal(t, "no-store", page.Header().Get(echo.HeaderCacheControl))

	req := request(http.MethodPost, "/listing/3/bookmark", slowToken)
	req.Header.Set("Referer", "http://campus.test/listing/3")
	rec := serve(e, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.NotContains(t, rec.Body.String(), `http-equiv="refresh"`)
	assert.Equal(t, 1, up.toggleCount())
}

// TestSessionUnavailable verifies that an upstream outage blocks only the
// pages that need a session
func TestSessionUnavailable(t *testing.T) {
	e, _ := setupTestEcho(t)

	tests := []struct {
		path       string
		wantStatus int
	}{
		{"/mySpace", http.StatusServiceUnavailable},
		{"/admin", http.StatusServiceUnavailable},
		{"/profileSetup", http.StatusServiceUnavailable},
		{"/", http.StatusOK},
		{"/browse", http.StatusOK},
		{"/login", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := serve(e, request(http.MethodGet, tt.path, brokenToken))

			assert.Equal(t, tt.wantStatus, rec.Code,
				"GET %s should return %d while sessions are down, got %d", tt.path, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusServiceUnavailable {
				assert.Equal(t, "no-store", rec.Header().Get(echo.HeaderCacheControl))
			}
		})
	}
}

// TestHealth checks the probe answers without a session
func TestHealth(t *testing.T) {
	e, up := setupTestEcho(t)

	rec := serve(e, request(http.MethodGet, "/health", brokenToken))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "test", body["environment"])
	assert.Equal(t, up.srv.URL, body["api"])
}

// TestNonExistentRoute verifies that unknown routes return 404
func TestNonExistentRoute(t *testing.T) {
	e, _ := setupTestEcho(t)

	tests := []struct {
		name  string
		path  string
		token string
	}{
		{"Random path", "/this-route-does-not-exist", ""},
		{"Random admin path", "/admin/fake-page", ""},
		{"Random path signed in", "/mySpace/settings", studentToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(e, request(http.MethodGet, tt.path, tt.token))

			assert.Equal(t, http.StatusNotFound, rec.Code,
				"Non-existent route GET %s should return 404", tt.path)
			assert.Contains(t, rec.Body.String(), "Page not found")
		})
	}
}

// TestRouteTable checks every route carries the access it is documented with
func TestRouteTable(t *testing.T) {
	e, _ := setupTestEcho(t)

	registered := map[string]bool{}
	for _, r := range e.Routes() {
		registered[r.Method+" "+r.Path] = true
	}

	svc := &Service{}
	for _, r := range svc.routes() {
		assert.True(t, registered[r.Method+" "+r.Path], "%s %s is not registered", r.Method, r.Path)

		switch {
		case strings.HasPrefix(r.Path, "/admin"):
			assert.Equal(t, AdminArea, r.Access, r.Path)
		case strings.HasPrefix(r.Path, "/mySpace"):
			assert.Equal(t, UserArea, r.Access, r.Path)
		}
	}
}
