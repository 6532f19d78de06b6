package layout

import "github.com/labstack/echo/v4"

// ThemeCookie remembers the colour scheme a browser picked
const ThemeCookie = "theme"

type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// ThemeOf returns the browser's colour scheme. Anything but an explicit
// dark choice is light.
func ThemeOf(c echo.Context) Theme {
	if cookie, err := c.Cookie(ThemeCookie); err == nil && Theme(cookie.Value) == Dark {
		return Dark
	}
	return Light
}

func (t Theme) Toggled() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}
