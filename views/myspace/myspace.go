package myspace

import (
	"strings"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/loganlanou/campusconnect/internal/api"
	"github.com/loganlanou/campusconnect/views/components"
	"github.com/loganlanou/campusconnect/views/helpers"
	"github.com/loganlanou/campusconnect/views/layout"
)

// DashboardData feeds the mySpace landing page. Failed slots render as
// unavailable rather than as zero.
type DashboardData struct {
	User            *api.User
	BookmarkCount   int
	CountFailed     bool
	Recent          []api.Listing
	RecentFailed    bool
	SuggestedSearch string
}

func header(title, subtitle string) templ.Component {
	return helpers.Component(func(h *helpers.Writer) {
		h.Raw(`<div class="mb-8"><h1 class="text-2xl font-bold">`).Text(title).Raw(`</h1>`)
		if subtitle != "" {
			h.Raw(`<p class="mt-1 text-sm text-gray-500">`).Text(subtitle).Raw(`</p>`)
		}
		h.Raw(`</div>`)
	})
}

func Dashboard(c echo.Context, meta layout.PageMeta, data DashboardData) templ.Component {
	return layout.Page(c, meta, helpers.Component(func(h *helpers.Writer) {
		name := "there"
		if data.User != nil {
			name = data.User.DisplayName()
		}
		h.Component(header("Welcome back, "+name, "Your saved places and recent activity"))

		h.Raw(`<div class="grid grid-cols-1 gap-4 sm:grid-cols-3">`)
		if data.CountFailed {
			h.Component(components.Unavailable("Bookmark count"))
		} else {
			h.Component(components.StatCard("Bookmarks", helpers.FormatInt(data.BookmarkCount), nil))
		}
		if data.User != nil && data.User.Budget != nil {
			h.Component(components.StatCard("Budget", helpers.FormatPrice(api.Amount(*data.User.Budget)), nil))
		}
		if data.User != nil && data.User.PreferredCity != "" {
			h.Component(components.StatCard("Preferred city", data.User.PreferredCity, nil))
		}
		h.Raw(`</div>`)

		h.Raw(`<section class="mt-10"><div class="mb-4 flex items-center justify-between"><h2 class="text-lg font-semibold">Recently bookmarked</h2>`)
		h.Raw(`<a href="/mySpace/bookmarks" class="text-sm font-medium text-indigo-600 hover:underline">View all</a></div>`)
		switch {
		case data.RecentFailed:
			h.Component(components.Unavailable("Recent bookmarks"))
		case len(data.Recent) == 0:
			h.Component(components.EmptyState("No bookmarks yet", "Save listings you like and they will show up here.", "Browse listings", "/browse"+data.SuggestedSearch))
		default:
			h.Component(components.ListingGrid(data.Recent))
		}
		h.Raw(`</section>`)
	}))
}

// Profile shows the verified profile read-only
func Profile(c echo.Context, meta layout.PageMeta, u *api.User) templ.Component {
	return layout.Page(c, meta, helpers.Component(func(h *helpers.Writer) {
		h.Component(header("My profile", ""))
		if u == nil {
			h.Component(components.Unavailable("Profile"))
			return
		}

		h.Raw(`<div class="rounded-2xl bg-white p-8 shadow-sm">`)
		h.Raw(`<div class="mb-6 flex items-center gap-4">`)
		if u.ProfileImage != "" {
			h.Raw(`<img class="h-16 w-16 rounded-full object-cover"`).URL("src", u.ProfileImage).Attr("alt", u.FullName).Raw(`>`)
		} else {
			h.Raw(`<span class="flex h-16 w-16 items-center justify-center rounded-full bg-indigo-100 text-xl font-semibold text-indigo-700">`).Text(helpers.Initials(u.FullName)).Raw(`</span>`)
		}
		h.Raw(`<div><p class="text-lg font-semibold">`).Text(u.FullName).Raw(`</p><p class="text-sm text-gray-500">`).Text(u.Email).Raw(`</p>`)
		if u.IsVerified {
			h.Raw(`<span class="mt-1 inline-block rounded-full bg-emerald-50 px-2 py-0.5 text-xs font-medium text-emerald-700">Verified</span>`)
		}
		h.Raw(`</div></div>`)

		budget := ""
		if u.Budget != nil {
			budget = helpers.FormatPrice(api.Amount(*u.Budget))
		}
		h.Raw(`<dl class="grid grid-cols-1 gap-x-8 gap-y-4 sm:grid-cols-2">`)
		for _, row := range [][2]string{
			{"Phone", u.Phone},
			{"Date of birth", u.DOB},
			{"Gender", u.Gender},
			{"Current location", joinNonEmpty(u.City, u.District, u.State, u.Pincode)},
			{"Preferred location", joinNonEmpty(u.PreferredCity, u.PreferredDistrict, u.PreferredState, u.PreferredPincode)},
			{"Preferred localities", strings.Join(u.PreferredLocations, ", ")},
			{"Affiliation", joinNonEmpty(u.AffiliationName, u.AffiliationType)},
			{"Budget", budget},
			{"Sharing", u.SharingPreference},
			{"Looking for", categoryLabels(u.PreferredCategories)},
			{"Amenities", strings.Join(u.PreferredAmenities, ", ")},
		} {
			value := row[1]
			if value == "" {
				value = "Not provided"
			}
			h.Raw(`<div><dt class="text-xs uppercase tracking-wide text-gray-500">`).Text(row[0]).Raw(`</dt>`)
			h.Raw(`<dd class="mt-1 text-sm">`).Text(value).Raw(`</dd></div>`)
		}
		h.Raw(`</dl></div>`)
	}))
}

type BookmarksData struct {
	Listings []api.Listing
	Failed   bool
}

func Bookmarks(c echo.Context, meta layout.PageMeta, data BookmarksData) templ.Component {
	return layout.Page(c, meta, helpers.Component(func(h *helpers.Writer) {
		h.Component(header("Bookmarks", "Listings you saved"))
		switch {
		case data.Failed:
			h.Component(components.Unavailable("Bookmarks"))
		case len(data.Listings) == 0:
			h.Component(components.EmptyState("No bookmarks yet", "Tap Bookmark on any listing to save it here.", "Browse listings", "/browse"))
		default:
			h.Raw(`<div class="grid grid-cols-1 gap-6 sm:grid-cols-2 lg:grid-cols-3">`)
			for _, l := range data.Listings {
				h.Raw(`<div class="space-y-2">`)
				h.Component(components.ListingCard(l))
				h.Component(components.BookmarkButton(l.ID, true))
				h.Raw(`</div>`)
			}
			h.Raw(`</div>`)
		}
	}))
}

func joinNonEmpty(parts ...string) string {
	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}

func categoryLabels(slugs []string) string {
	labels := make([]string, 0, len(slugs))
	for _, s := range slugs {
		labels = append(labels, helpers.CategoryLabel(s))
	}
	return strings.Join(labels, ", ")
}
