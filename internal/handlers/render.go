package handlers

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/loganlanou/campusconnect/internal/session"
)

// Render renders a templ component and writes it to the response
func Render(c echo.Context, component templ.Component) error {
	return RenderStatus(c, http.StatusOK, component)
}

// RenderStatus writes component with status. Queued notices are moved into
// the page first, while the session cookie can still be rewritten.
func RenderStatus(c echo.Context, status int, component templ.Component) error {
	session.Flush(c)
	return write(c, status, component)
}

// write renders component without touching queued notices
func write(c echo.Context, status int, component templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(status)
	return component.Render(c.Request().Context(), c.Response().Writer)
}
