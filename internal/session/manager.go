package session

import (
	"encoding/gob"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
)

const (
	sessionName = "campusconnect_session"

	noticesKey    = "notices"
	returnToKey   = "return_to"
	returnToAtKey = "return_to_at"
	draftKey      = "profile_draft"

	returnToMaxAge = 5 * time.Minute
)

var disallowedReturnTo = map[string]struct{}{
	"/login":        {},
	"/signup":       {},
	"/logout":       {},
	"/profileSetup": {},
}

// Manager keeps per-browser flash notices and the post-login redirect
// intent in a signed cookie
type Manager struct {
	store sessions.Store
	now   func() time.Time
}

// NewManager creates a new session manager
func NewManager(secret string, secure bool) *Manager {
	gob.Register([]Notice{})
	gob.Register(map[string][]string{})

	store := sessions.NewCookieStore([]byte(secret))

	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}

	return &Manager{
		store: store,
		now:   time.Now,
	}
}

func (m *Manager) get(c echo.Context) *sessions.Session {
	// A tampered or stale cookie still yields a usable, empty session
	s, _ := m.store.Get(c.Request(), sessionName)
	return s
}

func (m *Manager) save(c echo.Context, s *sessions.Session) error {
	if err := s.Save(c.Request(), c.Response()); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// AddNotice queues n for the next page. A notice whose ID is already queued
// is dropped.
func (m *Manager) AddNotice(c echo.Context, n Notice) error {
	s := m.get(c)
	if !queueNotice(s, n) {
		return nil
	}
	return m.save(c, s)
}

func queueNotice(s *sessions.Session, n Notice) bool {
	notices, _ := s.Values[noticesKey].([]Notice)

	if n.ID != "" {
		for _, queued := range notices {
			if queued.ID == n.ID {
				return false
			}
		}
	}

	s.Values[noticesKey] = append(notices, n)
	return true
}

// PopNotices returns and clears the queued notices. It must run before the
// response body is written.
func (m *Manager) PopNotices(c echo.Context) []Notice {
	s := m.get(c)
	notices, _ := s.Values[noticesKey].([]Notice)
	if len(notices) == 0 {
		return nil
	}

	delete(s.Values, noticesKey)
	if err := m.save(c, s); err != nil {
		return nil
	}
	return notices
}

// SanitizeReturnTo accepts only local paths outside the auth flow
func SanitizeReturnTo(path string) (string, bool) {
	if path == "" {
		return "", false
	}

	if strings.ContainsAny(path, "\r\n\\") {
		return "", false
	}

	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") || strings.HasPrefix(path, "//") {
		return "", false
	}

	if !strings.HasPrefix(path, "/") {
		return "", false
	}

	base := path
	if idx := strings.IndexAny(path, "?#"); idx != -1 {
		base = path[:idx]
	}

	if _, blocked := disallowedReturnTo[base]; blocked {
		return "", false
	}

	return path, true
}

// RememberReturnTo records where the browser wanted to go before it was
// sent to the login page
func (m *Manager) RememberReturnTo(c echo.Context, path string) error {
	s := m.get(c)
	if !m.setReturnTo(s, path) {
		return nil
	}
	return m.save(c, s)
}

func (m *Manager) setReturnTo(s *sessions.Session, path string) bool {
	sanitized, ok := SanitizeReturnTo(path)
	if !ok {
		return false
	}
	s.Values[returnToKey] = sanitized
	s.Values[returnToAtKey] = m.now().Unix()
	return true
}

// Redirected records what a rejected request leaves behind: an optional
// notice and an optional return path, written in a single cookie.
func (m *Manager) Redirected(c echo.Context, n *Notice, returnTo string) error {
	s := m.get(c)
	changed := false
	if n != nil && queueNotice(s, *n) {
		changed = true
	}
	if returnTo != "" && m.setReturnTo(s, returnTo) {
		changed = true
	}
	if !changed {
		return nil
	}
	return m.save(c, s)
}

// PopReturnTo consumes the redirect intent. An expired or missing intent
// yields "".
func (m *Manager) PopReturnTo(c echo.Context) string {
	s := m.get(c)
	path, _ := s.Values[returnToKey].(string)
	at, _ := s.Values[returnToAtKey].(int64)
	if path == "" {
		return ""
	}

	delete(s.Values, returnToKey)
	delete(s.Values, returnToAtKey)
	_ = m.save(c, s)

	if m.now().Sub(time.Unix(at, 0)) > returnToMaxAge {
		return ""
	}

	sanitized, ok := SanitizeReturnTo(path)
	if !ok {
		return ""
	}
	return sanitized
}

// SaveDraft keeps the profile wizard answers collected so far
func (m *Manager) SaveDraft(c echo.Context, draft url.Values) error {
	s := m.get(c)
	s.Values[draftKey] = map[string][]string(draft)
	return m.save(c, s)
}

// Draft returns the saved wizard answers, or an empty set
func (m *Manager) Draft(c echo.Context) url.Values {
	draft, _ := m.get(c).Values[draftKey].(map[string][]string)
	if draft == nil {
		return url.Values{}
	}
	return url.Values(draft)
}

func (m *Manager) ClearDraft(c echo.Context) error {
	s := m.get(c)
	if _, ok := s.Values[draftKey]; !ok {
		return nil
	}
	delete(s.Values, draftKey)
	return m.save(c, s)
}
