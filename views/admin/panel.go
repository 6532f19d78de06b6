package admin

import (
	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/loganlanou/campusconnect/internal/api"
	"github.com/loganlanou/campusconnect/views/components"
	"github.com/loganlanou/campusconnect/views/helpers"
	"github.com/loganlanou/campusconnect/views/layout"
)

// Slot is one independently fetched panel value
type Slot[T any] struct {
	Value  T
	Failed bool
}

// PanelData holds the five dashboard fetches. Each one fails on its own.
type PanelData struct {
	Users         Slot[api.GrowthStats]
	Listings      Slot[api.GrowthStats]
	Reviews       Slot[api.ReviewStats]
	RecentReviews Slot[[]api.Review]
	RecentUsers   Slot[[]api.User]
}

func heading(title, subtitle string) templ.Component {
	return helpers.Component(func(h *helpers.Writer) {
		h.Raw(`<div class="mb-8"><h1 class="text-2xl font-bold">`).Text(title).Raw(`</h1>`)
		if subtitle != "" {
			h.Raw(`<p class="mt-1 text-sm text-gray-500">`).Text(subtitle).Raw(`</p>`)
		}
		h.Raw(`</div>`)
	})
}

func growthCard(title string, slot Slot[api.GrowthStats]) templ.Component {
	if slot.Failed {
		return components.Unavailable(title)
	}
	stats := slot.Value
	return components.StatCard(title, helpers.FormatInt(stats.Total), &stats)
}

func Panel(c echo.Context, meta layout.PageMeta, data PanelData) templ.Component {
	return layout.Page(c, meta, helpers.Component(func(h *helpers.Writer) {
		h.Component(heading("Dashboard", "Platform activity at a glance"))

		h.Raw(`<div class="grid grid-cols-1 gap-4 sm:grid-cols-2 lg:grid-cols-4">`)
		h.Component(growthCard("Users", data.Users))
		h.Component(growthCard("Listings", data.Listings))
		if data.Reviews.Failed {
			h.Component(components.Unavailable("Reviews"))
			h.Component(components.Unavailable("Pending reviews"))
		} else {
			r := data.Reviews.Value
			h.Component(components.StatCard("Reviews", helpers.FormatInt(r.Total), &r.GrowthStats))
			h.Component(components.StatCard("Pending reviews", helpers.FormatInt(r.Pending), nil))
		}
		h.Raw(`</div>`)

		h.Raw(`<div class="mt-10 grid grid-cols-1 gap-8 lg:grid-cols-2">`)

		h.Raw(`<section><h2 class="mb-4 text-lg font-semibold">Recent reviews</h2>`)
		switch {
		case data.RecentReviews.Failed:
			h.Component(components.Unavailable("Recent reviews"))
		case len(data.RecentReviews.Value) == 0:
			h.Raw(`<p class="text-sm text-gray-500">No reviews yet.</p>`)
		default:
			h.Raw(`<ul class="divide-y divide-gray-100 rounded-xl border border-gray-200 bg-white">`)
			for _, r := range data.RecentReviews.Value {
				h.Raw(`<li class="p-4"><div class="flex justify-between text-sm"><span class="font-medium">`).Text(r.AuthorName()).Raw(`</span>`)
				h.Raw(`<span class="text-amber-500">`).Text(helpers.Stars(r.Rating)).Raw(`</span></div>`)
				h.Raw(`<p class="text-xs text-gray-500">`).Text(r.ListingName()).Raw(`</p>`)
				h.Raw(`<p class="mt-1 line-clamp-2 text-sm">`).Text(r.Comment).Raw(`</p></li>`)
			}
			h.Raw(`</ul>`)
		}
		h.Raw(`</section>`)

		h.Raw(`<section><h2 class="mb-4 text-lg font-semibold">New users</h2>`)
		switch {
		case data.RecentUsers.Failed:
			h.Component(components.Unavailable("Recent users"))
		case len(data.RecentUsers.Value) == 0:
			h.Raw(`<p class="text-sm text-gray-500">No users yet.</p>`)
		default:
			h.Raw(`<ul class="divide-y divide-gray-100 rounded-xl border border-gray-200 bg-white">`)
			for _, u := range data.RecentUsers.Value {
				h.Raw(`<li class="flex items-center justify-between p-4 text-sm"><div><p class="font-medium">`).Text(u.FullName).Raw(`</p>`)
				h.Raw(`<p class="text-xs text-gray-500">`).Text(u.Email).Raw(`</p></div>`)
				h.Raw(`<span class="text-xs text-gray-400">`).Text(helpers.FormatDate(u.CreatedAt)).Raw(`</span></li>`)
			}
			h.Raw(`</ul>`)
		}
		h.Raw(`</section></div>`)
	}))
}
