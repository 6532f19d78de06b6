package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/loganlanou/campusconnect/internal/api"
)

// GetSession returns the session LoadSession stored, or a guest session
// when the middleware did not run
func GetSession(c echo.Context) Session {
	s, ok := c.Get(SessionKey).(Session)
	if !ok {
		return Anonymous()
	}
	return s
}

// CurrentUser retrieves the resolved user from context
func CurrentUser(c echo.Context) (*api.User, bool) {
	user, ok := c.Get(CurrentUserKey).(*api.User)
	return user, ok && user != nil
}

// IsAuthenticated checks if the current request is authenticated
func IsAuthenticated(c echo.Context) bool {
	isAuth, _ := c.Get(IsAuthenticatedKey).(bool)
	return isAuth
}

func IsAdmin(c echo.Context) bool {
	return GetSession(c).IsAdmin()
}

// Token returns the browser's upstream session token
func Token(c echo.Context) string {
	token, _ := c.Get(TokenKey).(string)
	return token
}

// GetLinks returns the navigation computed for this request
func GetLinks(c echo.Context) Links {
	links, ok := c.Get(LinksKey).(Links)
	if !ok {
		return Links{Main: mainLinks, Guest: true}
	}
	return links
}

// RequireAuth is a helper that checks auth and returns error if not authenticated.
// Use this in handlers reachable from more than one route class.
func RequireAuth(c echo.Context) error {
	if !IsAuthenticated(c) {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}
	return nil
}
