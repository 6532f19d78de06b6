package layout

import (
	"strconv"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/loganlanou/campusconnect/internal/auth"
	"github.com/loganlanou/campusconnect/internal/session"
	"github.com/loganlanou/campusconnect/views/helpers"
)

// Kind selects the shell a route is rendered in
type Kind int

const (
	// Plain is navbar + content + footer
	Plain Kind = iota
	// Sidebar is navbar + area sidebar + content, without footer
	Sidebar
)

const kindKey = "layout_kind"

// Use tags every request on a route with the shell it renders in
func Use(kind Kind) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(kindKey, kind)
			return next(c)
		}
	}
}

func KindOf(c echo.Context) Kind {
	kind, _ := c.Get(kindKey).(Kind)
	return kind
}

// Page wraps content in the shell of the current route
func Page(c echo.Context, meta PageMeta, content templ.Component) templ.Component {
	a := auth.GetAuthContext(c)

	theme := ThemeOf(c)

	var body templ.Component
	if KindOf(c) == Sidebar {
		body = sidebarShell(a, theme, content)
	} else {
		body = plainShell(a, theme, content)
	}
	return document(c, meta, 0, body)
}

// Loading is served while the session is still being resolved. It
// refreshes itself and shows nothing that depends on who the user is.
func Loading(c echo.Context, meta PageMeta) templ.Component {
	a := auth.GetAuthContext(c)
	content := helpers.Component(func(h *helpers.Writer) {
		h.Raw(`<div class="flex min-h-[60vh] flex-col items-center justify-center gap-4" role="status" aria-live="polite">`)
		h.Raw(`<span class="h-10 w-10 animate-spin rounded-full border-4 border-indigo-200 border-t-indigo-600"></span>`)
		h.Raw(`<p class="text-sm text-gray-500">Loading your account&hellip;</p></div>`)
	})
	return document(c, meta.Private(), 1, plainShell(a, ThemeOf(c), content))
}

// Unavailable is served when the session could not be resolved for a page
// that needs it
func Unavailable(c echo.Context, meta PageMeta) templ.Component {
	a := auth.GetAuthContext(c)
	retry := c.Request().URL.RequestURI()
	content := helpers.Component(func(h *helpers.Writer) {
		h.Raw(`<div class="mx-auto my-16 max-w-md rounded-xl border border-amber-200 bg-amber-50 p-8 text-center">`)
		h.Raw(`<h1 class="text-xl font-semibold text-amber-900">We couldn&#39;t load your account</h1>`)
		h.Raw(`<p class="mt-2 text-sm text-amber-800">CampusConnect is having trouble reaching its servers. Please try again in a moment.</p>`)
		h.Raw(`<a`).URL("href", retry).Raw(` class="mt-6 inline-block rounded-lg bg-amber-600 px-4 py-2 text-sm font-medium text-white hover:bg-amber-700">Try again</a>`)
		h.Raw(`</div>`)
	})
	return document(c, meta.Private(), 0, plainShell(a, ThemeOf(c), content))
}

// NotFound renders an inline not-found panel inside the current shell
func NotFound(c echo.Context, meta PageMeta, title, message string) templ.Component {
	content := helpers.Component(func(h *helpers.Writer) {
		h.Raw(`<div class="mx-auto my-16 max-w-md rounded-xl border border-gray-200 bg-white p-8 text-center">`)
		h.Raw(`<h1 class="text-xl font-semibold text-gray-900">`).Text(title).Raw(`</h1>`)
		h.Raw(`<p class="mt-2 text-sm text-gray-600">`).Text(message).Raw(`</p>`)
		h.Raw(`<a href="/browse" class="mt-6 inline-block rounded-lg bg-indigo-600 px-4 py-2 text-sm font-medium text-white hover:bg-indigo-700">Browse listings</a>`)
		h.Raw(`</div>`)
	})
	return Page(c, meta.WithTitle(title), content)
}

// document renders the full page. Notices are read from c at render time,
// after the handler has flushed them.
func document(c echo.Context, meta PageMeta, refresh int, body templ.Component) templ.Component {
	return helpers.Component(func(h *helpers.Writer) {
		theme := ThemeOf(c)
		h.Raw(`<!DOCTYPE html><html lang="en"`).Attr("data-theme", string(theme))
		if theme == Dark {
			h.Raw(` class="dark"`)
		}
		h.Raw(`><head><meta charset="utf-8">`)
		h.Raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		if refresh > 0 {
			h.Raw(`<meta http-equiv="refresh"`).Attr("content", strconv.Itoa(refresh)).Raw(`>`)
		}
		h.Raw(`<title>`).Text(meta.Title).Raw(`</title>`)
		h.Raw(`<meta name="description"`).Attr("content", meta.Description).Raw(`>`)
		if len(meta.Keywords) > 0 {
			h.Raw(`<meta name="keywords"`).Attr("content", meta.KeywordsString()).Raw(`>`)
		}
		if meta.NoIndex {
			h.Raw(`<meta name="robots" content="noindex, nofollow">`)
		} else {
			h.Raw(`<link rel="canonical"`).URL("href", meta.CanonicalURL).Raw(`>`)
			h.Raw(`<meta property="og:type"`).Attr("content", meta.OGType).Raw(`>`)
			h.Raw(`<meta property="og:title"`).Attr("content", meta.OGTitle).Raw(`>`)
			h.Raw(`<meta property="og:description"`).Attr("content", meta.OGDescription).Raw(`>`)
			h.Raw(`<meta property="og:image"`).Attr("content", meta.OGImageURL).Raw(`>`)
			h.Raw(`<meta property="og:url"`).Attr("content", meta.OGURL).Raw(`>`)
			h.Raw(`<meta property="og:site_name"`).Attr("content", meta.OGSiteName).Raw(`>`)
		}
		if meta.ListingSchemaJSON != "" {
			h.Raw(`<script type="application/ld+json">`, meta.ListingSchemaJSON, `</script>`)
		}
		h.Raw(`<link rel="stylesheet" href="/public/css/styles.css">`)
		h.Raw(`<script defer src="/public/js/app.js"></script>`)
		h.Raw(`</head><body class="min-h-screen bg-gray-50 text-gray-900 antialiased">`)
		h.Component(noticeList(session.Notices(c)))
		h.Component(body)
		h.Raw(`</body></html>`)
	})
}

func plainShell(a *auth.Context, theme Theme, content templ.Component) templ.Component {
	return helpers.Component(func(h *helpers.Writer) {
		h.Component(navbar(a, theme))
		h.Raw(`<main class="mx-auto min-h-[calc(100vh-200px)] max-w-7xl px-4 py-8">`)
		h.Component(content)
		h.Raw(`</main>`)
		h.Component(footer())
	})
}

func sidebarShell(a *auth.Context, theme Theme, content templ.Component) templ.Component {
	return helpers.Component(func(h *helpers.Writer) {
		h.Component(navbar(a, theme))
		h.Raw(`<div class="flex min-h-[calc(100vh-64px)]">`)
		h.Component(sidebar(a))
		h.Raw(`<main class="flex-1 overflow-x-auto px-6 py-8">`)
		h.Component(content)
		h.Raw(`</main></div>`)
	})
}

const (
	navLink       = "rounded-md px-3 py-2 text-sm font-medium text-gray-700 hover:bg-gray-100"
	navLinkActive = "bg-indigo-50 text-indigo-700 hover:bg-indigo-50"
)

func navbar(a *auth.Context, theme Theme) templ.Component {
	return helpers.Component(func(h *helpers.Writer) {
		h.Raw(`<header class="sticky top-0 z-30 border-b border-gray-200 bg-white/90 backdrop-blur">`)
		h.Raw(`<nav class="mx-auto flex h-16 max-w-7xl items-center justify-between px-4">`)
		h.Raw(`<a href="/" class="text-lg font-bold text-indigo-600">CampusConnect</a>`)

		h.Raw(`<ul class="hidden items-center gap-1 md:flex">`)
		for _, link := range a.Links.Main {
			h.Raw(`<li><a`).URL("href", link.Href).Class(navLink, helpers.ClassIf(a.Active(link.Href), navLinkActive)).Raw(`>`).Text(link.Label).Raw(`</a></li>`)
		}
		h.Raw(`</ul>`)

		h.Raw(`<div class="flex items-center gap-2">`)
		h.Component(themeToggle(theme))
		switch {
		case a.Links.Guest:
			h.Raw(`<a href="/login"`).Class(navLink, helpers.ClassIf(a.Active("/login"), navLinkActive)).Raw(`>Login</a>`)
			h.Raw(`<a href="/signup" class="rounded-md bg-indigo-600 px-3 py-2 text-sm font-medium text-white hover:bg-indigo-700">Sign up</a>`)
		case a.IsAuthenticated:
			h.Raw(`<details class="relative"><summary class="flex cursor-pointer list-none items-center gap-2 rounded-full px-2 py-1 hover:bg-gray-100">`)
			h.Component(avatar(a))
			h.Raw(`<span class="hidden text-sm font-medium sm:inline">`).Text(a.FirstName()).Raw(`</span></summary>`)
			h.Raw(`<div class="absolute right-0 mt-2 w-48 rounded-lg border border-gray-200 bg-white py-1 shadow-lg">`)
			for _, link := range a.Links.Account {
				h.Raw(`<a`).URL("href", link.Href).Raw(` class="block px-4 py-2 text-sm hover:bg-gray-50">`).Text(link.Label).Raw(`</a>`)
			}
			h.Raw(`<form method="post" action="/logout"><button type="submit" class="block w-full px-4 py-2 text-left text-sm text-red-600 hover:bg-gray-50">Logout</button></form>`)
			h.Raw(`</div></details>`)
		}
		h.Raw(`</div></nav></header>`)
	})
}

var themeToggleLabels = map[Theme]string{
	Light: "Switch to dark mode",
	Dark:  "Switch to light mode",
}

func themeToggle(theme Theme) templ.Component {
	return helpers.Component(func(h *helpers.Writer) {
		h.Raw(`<form method="post" action="/theme" data-theme-toggle>`)
		h.Raw(`<button type="submit"`).Attr("aria-label", themeToggleLabels[theme]).Attr("title", themeToggleLabels[theme])
		h.Raw(` class="rounded-full p-2 text-gray-600 hover:bg-gray-100">`)
		if theme == Dark {
			h.Raw(`&#9728;`)
		} else {
			h.Raw(`&#9790;`)
		}
		h.Raw(`</button></form>`)
	})
}

func avatar(a *auth.Context) templ.Component {
	return helpers.Component(func(h *helpers.Writer) {
		if a.User != nil && a.User.ProfileImage != "" {
			h.Raw(`<img`).URL("src", a.User.ProfileImage).Attr("alt", a.User.DisplayName()).Raw(` class="h-8 w-8 rounded-full object-cover">`)
			return
		}
		h.Raw(`<span class="flex h-8 w-8 items-center justify-center rounded-full bg-indigo-100 text-xs font-semibold text-indigo-700">`)
		h.Text(helpers.Initials(a.User.DisplayName())).Raw(`</span>`)
	})
}

const (
	sideLink       = "flex items-center rounded-lg px-3 py-2 text-sm font-medium text-gray-700 hover:bg-gray-100"
	sideLinkActive = "bg-indigo-600 text-white hover:bg-indigo-600"
)

func sidebar(a *auth.Context) templ.Component {
	return helpers.Component(func(h *helpers.Writer) {
		if len(a.Links.Area) == 0 {
			return
		}
		h.Raw(`<aside class="hidden w-60 shrink-0 border-r border-gray-200 bg-white p-4 md:block"><ul class="space-y-1">`)
		for _, link := range a.Links.Area {
			h.Raw(`<li><a`).URL("href", link.Href).Class(sideLink, helpers.ClassIf(a.Active(link.Href), sideLinkActive)).Raw(`>`).Text(link.Label).Raw(`</a></li>`)
		}
		h.Raw(`</ul></aside>`)
	})
}

func footer() templ.Component {
	return helpers.Component(func(h *helpers.Writer) {
		h.Raw(`<footer class="border-t border-gray-200 bg-white"><div class="mx-auto flex max-w-7xl flex-col items-center justify-between gap-2 px-4 py-6 text-sm text-gray-500 sm:flex-row">`)
		h.Raw(`<p>&copy; `).Text(strconv.Itoa(time.Now().Year())).Raw(` CampusConnect. All rights reserved.</p>`)
		h.Raw(`<div class="flex gap-4"><a href="/about" class="hover:text-gray-700">About</a><a href="/contact" class="hover:text-gray-700">Contact</a></div>`)
		h.Raw(`</div></footer>`)
	})
}

var noticeClasses = map[session.Level]string{
	session.LevelInfo:    "border-sky-200 bg-sky-50 text-sky-800",
	session.LevelSuccess: "border-emerald-200 bg-emerald-50 text-emerald-800",
	session.LevelError:   "border-red-200 bg-red-50 text-red-800",
}

func noticeList(notices []session.Notice) templ.Component {
	return helpers.Component(func(h *helpers.Writer) {
		if len(notices) == 0 {
			return
		}
		h.Raw(`<div class="fixed right-4 top-20 z-50 flex w-80 flex-col gap-2" aria-live="polite">`)
		for _, n := range notices {
			h.Raw(`<div role="status"`).Class("rounded-lg border px-4 py-3 text-sm shadow", noticeClasses[n.Level])
			if n.ID != "" {
				h.Attr("data-notice-id", n.ID)
			}
			h.Raw(`>`).Text(n.Message).Raw(`</div>`)
		}
		h.Raw(`</div>`)
	})
}
