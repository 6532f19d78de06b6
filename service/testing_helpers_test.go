package service

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
	"github.com/stretchr/testify/require"
)

const (
	studentToken    = "student-token"
	unverifiedToken = "unverified-token"
	adminToken      = "admin-token"
	brokenToken     = "broken-token"
	slowToken       = "slow-token"

	slowLookup = 300 * time.Millisecond
)

// upstream is a stand-in marketplace API with a fixed set of accounts
type upstream struct {
	srv *httptest.Server

	mu      sync.Mutex
	users   map[string]*api.User
	toggles int
}

func newUpstream(t *testing.T) *upstream {
	t.Helper()

	u := &upstream{users: map[string]*api.User{
		studentToken:    {ID: 7, FullName: "Asha Patel", Email: "asha@example.com", Role: "user", IsVerified: true},
		unverifiedToken: {ID: 8, FullName: "Dev Mehta", Email: "dev@example.com", Role: "user"},
		adminToken:      {ID: 1, FullName: "Ravi Admin", Email: "ravi@example.com", Role: "admin", IsVerified: true},
	}}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /auth/user/{$}", func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(api.TokenCookie)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Authentication credentials were not provided."})
			return
		}
		if cookie.Value == brokenToken {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if cookie.Value == slowToken {
			time.Sleep(slowLookup)
			u.mu.Lock()
			user := u.users[studentToken]
			u.mu.Unlock()
			writeJSON(w, http.StatusOK, user)
			return
		}
		u.mu.Lock()
		user := u.users[cookie.Value]
		u.mu.Unlock()
		if user == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid token."})
			return
		}
		writeJSON(w, http.StatusOK, user)
	})
	mux.HandleFunc("POST /auth/login/{$}", func(w http.ResponseWriter, r *http.Request) {
		u.mu.Lock()
		user := u.users[studentToken]
		u.mu.Unlock()
		http.SetCookie(w, &http.Cookie{Name: api.TokenCookie, Value: studentToken, Path: "/", HttpOnly: true})
		writeJSON(w, http.StatusOK, map[string]any{"message": "Login successful", "user": user})
	})
	mux.HandleFunc("GET /listings/{$}", func(w http.ResponseWriter, r *http.Request) {
		listings := make([]api.Listing, 8)
		for i := range listings {
			listings[i] = api.Listing{
				ID:            i + 1,
				Title:         gofakeit.Company() + " Hostel",
				Description:   gofakeit.Sentence(10),
				Category:      "hostel",
				ProviderName:  gofakeit.Name(),
				LocationCity:  gofakeit.City(),
				LocationState: gofakeit.State(),
				Price:         api.Amount(gofakeit.Number(2500, 15000)),
				Availability:  true,
				IsActive:      true,
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": api.Page[api.Listing]{Results: listings, CurrentPage: 1, TotalPages: 2, TotalItems: 16}})
	})
	mux.HandleFunc("POST /bookmarks/toggle/{$}", func(w http.ResponseWriter, r *http.Request) {
		u.mu.Lock()
		u.toggles++
		u.mu.Unlock()
		writeJSON(w, http.StatusCreated, map[string]any{"message": "Bookmark created", "toggled": true})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
	})

	u.srv = httptest.NewServer(mux)
	t.Cleanup(u.srv.Close)
	return u
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func testConfig(apiURL string) *Config {
	config := &Config{
		Environment:      "test",
		Port:             "0",
		BaseURL:          "http://campus.test",
		GuestBrowseLimit: 5,
	}
	config.API.BaseURL = apiURL
	config.API.Timeout = 2 * time.Second
	config.Session.Secret = "test-secret-key-32-bytes-long!!!"
	config.Session.CacheTTL = time.Minute
	return config
}

func (u *upstream) toggleCount() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.toggles
}

// setupTestEcho mounts the full route table against a fake upstream
func setupTestEcho(t *testing.T, opts ...func(*Config)) (*echo.Echo, *upstream) {
	t.Helper()

	up := newUpstream(t)
	config := testConfig(up.srv.URL)
	for _, opt := range opts {
		opt(config)
	}

	svc, err := New(config, auth.NewMemoryStore(config.Session.CacheTTL))
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	e := echo.New()
	svc.RegisterRoutes(e)
	return e, up
}

func request(method, path, token string) *http.Request {
	var req *http.Request
	if method == http.MethodPost {
		req = httptest.NewRequest(method, path, strings.NewReader(url.Values{}.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: api.TokenCookie, Value: token})
	}
	return req
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// withCookies sends the cookies rec set along with req. Like a browser, the
// last cookie written under a name wins.
func withCookies(req *http.Request, rec *httptest.ResponseRecorder) *http.Request {
	latest := map[string]*http.Cookie{}
	var order []string
	for _, c := range rec.Result().Cookies() {
		if _, seen := latest[c.Name]; !seen {
			order = append(order, c.Name)
		}
		latest[c.Name] = c
	}
	for _, name := range order {
		if c := latest[name]; c.MaxAge >= 0 {
			req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
		}
	}
	return req
}

// sessionCookies counts the session cookies rec wrote
func sessionCookies(rec *httptest.ResponseRecorder) int {
	n := 0
	for _, c := range rec.Result().Cookies() {
		if c.Name == "campusconnect_session" {
			n++
		}
	}
	return n
}
