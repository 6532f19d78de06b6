package auth

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/loganlanou/campusconnect/internal/api"
	"github.com/loganlanou/campusconnect/internal/session"
)

// Context keys for storing auth data
const (
	SessionKey         = "session"
	CurrentUserKey     = "current_user"
	IsAuthenticatedKey = "is_authenticated"
	TokenKey           = "session_token"
	LinksKey           = "nav_links"
)

// LoadSession resolves the browser's session on every request. It never
// blocks a request: failures are recorded in the Session state and left for
// Guard to judge.
func LoadSession(resolver *Resolver, policy *Policy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			token := ""
			if cookie, err := c.Cookie(api.TokenCookie); err == nil {
				token = cookie.Value
			}

			ctx := req.Context()
			if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
				ctx = api.WithRequestID(ctx, id)
			}
			if token != "" {
				ctx = api.WithToken(ctx, token)
			}
			c.SetRequest(req.WithContext(ctx))

			// Only a page load can be replayed by the loading shell's refresh
			var sess Session
			if Replayable(req.Method) {
				sess = resolver.Resolve(ctx, token)
			} else {
				sess = resolver.Await(ctx, token)
			}

			slog.Debug("session resolved",
				"path", req.URL.Path,
				"state", sess.State.String(),
				"authenticated", sess.IsAuthenticated())

			c.Set(TokenKey, token)
			c.Set(SessionKey, sess)
			c.Set(IsAuthenticatedKey, sess.IsAuthenticated())
			if sess.User != nil {
				c.Set(CurrentUserKey, sess.User)
			}
			c.Set(LinksKey, policy.Links(sess))

			return next(c)
		}
	}
}

// Replayable reports whether a request with method can be retried by
// reloading the page
func Replayable(method string) bool {
	return method == http.MethodGet || method == http.MethodHead
}

// Guard enforces req on a route. Rejections become redirects carrying a
// notice and, for login redirects, the requested path. wait renders the
// placeholder shown while the session is still loading; unavailable renders
// the panel shown when it could not be loaded.
func Guard(policy *Policy, sessions *session.Manager, req Requirements, wait, unavailable echo.HandlerFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.RequestURI()
			decision := policy.Decide(GetSession(c), req, path)

			switch decision.Kind {
			case Allow:
				return next(c)

			case Wait:
				return wait(c)

			case Unavailable:
				return unavailable(c)

			default:
				if err := sessions.Redirected(c, decision.Notice, decision.RememberPath); err != nil {
					slog.Warn("failed to record redirect", "error", err)
				}
				slog.Debug("route guard redirect", "path", path, "to", decision.To)
				return c.Redirect(http.StatusFound, decision.To)
			}
		}
	}
}
