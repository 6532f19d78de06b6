// Package handlers serves the gateway's pages and form posts. Handlers read
// the session LoadSession resolved, call the marketplace API with the
// browser's token and degrade to empty data plus a notice when it fails.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/loganlanou/campusconnect/internal/api"
	"github.com/loganlanou/campusconnect/internal/auth"
	"github.com/loganlanou/campusconnect/internal/email"
	"github.com/loganlanou/campusconnect/internal/forms"
	"github.com/loganlanou/campusconnect/internal/recaptcha"
	"github.com/loganlanou/campusconnect/internal/session"
	"github.com/loganlanou/campusconnect/views/layout"
)

// Deps are shared by every handler
type Deps struct {
	API       *api.Client
	Resolver  *auth.Resolver
	Sessions  *session.Manager
	Validator *forms.Validator
	// Captcha guards the contact form. Nil turns the check off.
	Captcha        *recaptcha.Verifier
	CaptchaSiteKey string
	// Mail queues contact notifications for ContactInbox. Nil only logs them.
	Mail         MailQueue
	ContactInbox string

	SiteURL string
	// SecureCookies marks the relayed token cookie Secure
	SecureCookies bool
}

type MailQueue interface {
	Enqueue(e *email.Email) error
}

func (d *Deps) meta(c echo.Context) layout.PageMeta {
	return layout.NewPageMeta(c, d.SiteURL)
}

// Waiting is shown by the route guard while the session is still loading.
// Queued notices stay queued for the page the refresh lands on. A mutation
// cannot be replayed by a refresh, so it is refused outright.
func (d *Deps) Waiting(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	if !auth.Replayable(c.Request().Method) {
		c.Response().Header().Set("Retry-After", "1")
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Your session is still loading. Please try again.")
	}
	return write(c, http.StatusOK, layout.Loading(c, d.meta(c).WithTitle("Loading")))
}

// SessionUnavailable is shown by the route guard when the session could not
// be resolved for a page that needs it
func (d *Deps) SessionUnavailable(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return RenderStatus(c, http.StatusServiceUnavailable, layout.Unavailable(c, d.meta(c).WithTitle("Temporarily unavailable")))
}

func (d *Deps) setToken(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     api.TokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   d.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (d *Deps) clearToken(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     api.TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   d.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// wantsJSON reports whether the caller is the page script rather than a
// plain form post
func wantsJSON(c echo.Context) bool {
	req := c.Request()
	return req.Header.Get(echo.HeaderContentType) == echo.MIMEApplicationJSON ||
		req.Header.Get(echo.HeaderAccept) == echo.MIMEApplicationJSON
}

// back redirects to the page the form was posted from, or to fallback
func back(c echo.Context, fallback string) error {
	if ref := c.Request().Referer(); ref != "" {
		if path, ok := session.SanitizeReturnTo(refererPath(ref)); ok {
			return c.Redirect(http.StatusSeeOther, path)
		}
	}
	return c.Redirect(http.StatusSeeOther, fallback)
}

func refererPath(ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return u.RequestURI()
}

// HandleError is the echo error handler. Browsers get a page in the
// current shell, the page script gets JSON.
func (d *Deps) HandleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := http.StatusText(code)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		message = http.StatusText(code)
		if m, ok := he.Message.(string); ok && m != "" {
			message = m
		}
	}
	if code >= http.StatusInternalServerError {
		slog.Error("request failed", "method", c.Request().Method, "path", c.Request().URL.Path, "error", err)
	}

	var rerr error
	switch {
	case c.Request().Method == http.MethodHead:
		rerr = c.NoContent(code)
	case wantsJSON(c):
		rerr = c.JSON(code, map[string]string{"message": message})
	case code == http.StatusNotFound:
		rerr = RenderStatus(c, code, layout.NotFound(c, d.meta(c),
			"Page not found", "The page you are looking for does not exist."))
	default:
		rerr = RenderStatus(c, code, layout.NotFound(c, d.meta(c), http.StatusText(code), message))
	}
	if rerr != nil {
		slog.Warn("failed to write error response", "error", rerr)
	}
}
