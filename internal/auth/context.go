package auth

import (
	"github.com/labstack/echo/v4"
	"github.com/loganlanou/campusconnect/internal/api"
)

// Context holds authentication data to be passed to templates
type Context struct {
	IsAuthenticated bool
	IsVerified      bool
	IsAdmin         bool
	User            *api.User
	Links           Links
	Path            string
}

// GetAuthContext gets auth context from the request (loaded by LoadSession)
func GetAuthContext(c echo.Context) *Context {
	s := GetSession(c)
	return &Context{
		IsAuthenticated: s.IsAuthenticated(),
		IsVerified:      s.IsVerified(),
		IsAdmin:         s.IsAdmin(),
		User:            s.User,
		Links:           GetLinks(c),
		Path:            c.Request().URL.Path,
	}
}

// FirstName is what the navbar greets the user with
func (a *Context) FirstName() string {
	if a == nil || a.User == nil {
		return ""
	}
	name := a.User.DisplayName()
	for i, r := range name {
		if r == ' ' {
			return name[:i]
		}
	}
	return name
}

// Active reports whether href is the page being rendered
func (a *Context) Active(href string) bool {
	return a != nil && a.Path == href
}
