package session

import (
	"log/slog"

	"github.com/labstack/echo/v4"
)

const (
	managerKey = "session_manager"
	noticesCtx = "flash_notices"
)

// Middleware makes m reachable from handlers and views for this request
func Middleware(m *Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(managerKey, m)
			return next(c)
		}
	}
}

func FromContext(c echo.Context) *Manager {
	m, _ := c.Get(managerKey).(*Manager)
	return m
}

// Flush moves the queued notices into the request so the page being
// rendered can show them. Call it before the first byte of the body.
func Flush(c echo.Context) {
	m := FromContext(c)
	if m == nil {
		return
	}
	c.Set(noticesCtx, m.PopNotices(c))
}

// Notices returns what Flush collected
func Notices(c echo.Context) []Notice {
	notices, _ := c.Get(noticesCtx).([]Notice)
	return notices
}

// Notify queues n on the request's manager, logging instead of failing
func Notify(c echo.Context, n Notice) {
	m := FromContext(c)
	if m == nil {
		return
	}
	if err := m.AddNotice(c, n); err != nil {
		slog.Warn("failed to queue notice", "id", n.ID, "error", err)
	}
}
