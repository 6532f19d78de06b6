package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/labstack/echo/v4"
	"github.com/loganlanou/campusconnect/internal/api"
	"github.com/loganlanou/campusconnect/internal/auth"
	"github.com/loganlanou/campusconnect/internal/forms"
	"github.com/loganlanou/campusconnect/internal/session"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-32-bytes-long!!!"

// fakeAPI stands in for the marketplace API. GET /auth/user/ answers from
// the signed-in tokens; everything else is registered per test.
type fakeAPI struct {
	mux *http.ServeMux
	srv *httptest.Server

	mu    sync.Mutex
	users map[string]*api.User
	calls map[string]int
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()

	f := &fakeAPI{
		mux:   http.NewServeMux(),
		users: make(map[string]*api.User),
		calls: make(map[string]int),
	}
	f.mux.HandleFunc("GET /auth/user/{$}", func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(api.TokenCookie)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Authentication credentials were not provided."})
			return
		}
		f.mu.Lock()
		user := f.users[cookie.Value]
		f.mu.Unlock()
		if user == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid token."})
			return
		}
		writeJSON(w, http.StatusOK, user)
	})

	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.calls[r.Method+" "+r.URL.Path]++
		f.mu.Unlock()
		f.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeAPI) handle(pattern string, h http.HandlerFunc) {
	f.mux.HandleFunc(pattern, h)
}

func (f *fakeAPI) signIn(token string, user *api.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[token] = user
}

func (f *fakeAPI) signOut(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, token)
}

// called returns how often "METHOD /path" was requested
func (f *fakeAPI) called(route string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[route]
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// testApp is the handlers mounted behind the session middleware, without
// route guards
type testApp struct {
	e    *echo.Echo
	api  *fakeAPI
	deps *Deps
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	fake := newFakeAPI(t)
	client := api.NewClient(fake.srv.URL, 2*time.Second)
	resolver := auth.NewResolver(client, auth.NewMemoryStore(time.Minute), auth.WithWaitBudget(0))
	t.Cleanup(func() { _ = resolver.Close() })

	policy, err := auth.NewPolicy()
	require.NoError(t, err)

	deps := &Deps{
		API:       client,
		Resolver:  resolver,
		Sessions:  session.NewManager(testSecret, false),
		Validator: forms.New(),
		SiteURL:   "http://campus.test",
	}

	e := echo.New()
	e.Validator = deps.Validator
	e.HTTPErrorHandler = deps.HandleError

	g := e.Group("", session.Middleware(deps.Sessions), auth.LoadSession(resolver, policy))

	pages := NewPageHandler(deps, DefaultGuestBrowseLimit)
	g.GET("/", pages.HandleHome)
	g.GET("/contact", pages.HandleContact)
	g.POST("/contact", pages.HandleContactSubmit)
	g.GET("/browse", pages.HandleBrowse)
	g.POST("/theme", pages.HandleToggleTheme)

	listings := NewListingHandler(deps)
	g.GET("/listing/:id", listings.HandleDetail)
	g.POST("/listing/:id/bookmark", listings.HandleToggleBookmark)
	g.POST("/listing/:id/reviews", listings.HandleSubmitReview)

	share := NewShareHandler(deps)
	g.GET("/listing/:id/card.png", share.HandleCard)
	g.GET("/listing/:id/qr.png", share.HandleQRCode)
	g.GET("/og.png", share.HandleSiteCard)

	authh := NewAuthHandler(deps)
	g.GET("/login", authh.HandleLogin)
	g.POST("/login", authh.HandleLoginSubmit)
	g.POST("/signup", authh.HandleSignUpSubmit)
	g.POST("/logout", authh.HandleLogout)

	profile := NewProfileHandler(deps)
	g.GET("/profileSetup", profile.HandleSetup)
	g.POST("/profileSetup", profile.HandleSetupSubmit)

	mySpace := NewMySpaceHandler(deps)
	g.GET("/mySpace", mySpace.HandleDashboard)
	g.GET("/mySpace/bookmarks", mySpace.HandleBookmarks)

	admin := NewAdminHandler(deps)
	g.GET("/admin", admin.HandlePanel)
	g.GET("/admin/users", admin.HandleUsers)
	g.POST("/admin/users/:id/delete", admin.HandleDeleteUser)
	g.GET("/admin/reviews", admin.HandleReviews)
	g.POST("/admin/reviews/:id/approve", admin.HandleApproveReview)
	g.POST("/admin/analytics/sentiment", admin.HandleSentiment)
	g.GET("/admin/analytics/report.pdf", admin.HandleAnalyticsReport)

	return &testApp{e: e, api: fake, deps: deps}
}

func (a *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func formRequest(method, target string, form url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return req
}

func withToken(req *http.Request, token string) *http.Request {
	req.AddCookie(&http.Cookie{Name: api.TokenCookie, Value: token})
	return req
}

// carryCookies sends the cookies rec set along with req, like a browser
// following the response
func carryCookies(req *http.Request, rec *httptest.ResponseRecorder) *http.Request {
	latest := map[string]*http.Cookie{}
	for _, c := range rec.Result().Cookies() {
		latest[c.Name] = c
	}
	for _, c := range latest {
		if c.MaxAge < 0 {
			continue
		}
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
	return req
}

// follow fetches the redirect target of rec with its cookies and token
func (a *testApp) follow(t *testing.T, rec *httptest.ResponseRecorder, token string) *httptest.ResponseRecorder {
	t.Helper()
	require.Contains(t, []int{http.StatusFound, http.StatusSeeOther}, rec.Code)
	req := httptest.NewRequest(http.MethodGet, rec.Header().Get(echo.HeaderLocation), nil)
	if token != "" {
		withToken(req, token)
	}
	return a.do(carryCookies(req, rec))
}

func responseCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	var found *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			found = c
		}
	}
	return found
}

func studentUser() *api.User {
	return &api.User{ID: 7, FullName: "Asha Patel", Email: "asha@example.com", Role: "user", IsVerified: true, PreferredCity: "Ahmedabad"}
}

func adminUser() *api.User {
	return &api.User{ID: 1, FullName: "Ravi Admin", Email: "ravi@example.com", Role: "admin", IsVerified: true}
}

func fakeListing(id int) api.Listing {
	return api.Listing{
		ID:            id,
		Title:         gofakeit.Company() + " Residency",
		Description:   gofakeit.Sentence(12),
		Category:      "pg",
		ProviderName:  gofakeit.Name(),
		LocationCity:  gofakeit.City(),
		LocationState: "Gujarat",
		Price:         api.Amount(gofakeit.Number(3000, 12000)),
		Availability:  true,
		IsActive:      true,
	}
}

func fakeListings(n int) []api.Listing {
	listings := make([]api.Listing, n)
	for i := range listings {
		listings[i] = fakeListing(i + 1)
	}
	return listings
}
