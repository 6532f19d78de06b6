package home

import (
	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/loganlanou/campusconnect/internal/api"
	"github.com/loganlanou/campusconnect/internal/auth"
	"github.com/loganlanou/campusconnect/views/components"
	"github.com/loganlanou/campusconnect/views/helpers"
	"github.com/loganlanou/campusconnect/views/layout"
)

type feature struct {
	title string
	body  string
}

var features = []feature{
	{"Verified Listings", "Every PG, hostel and mess is checked before it shows up, so what you see is what you get."},
	{"Roommate Matching", "Tell us your budget, locality and habits and find students who fit."},
	{"Honest Reviews", "Ratings come from students who lived there, moderated for spam."},
}

// Index renders the landing page. featured may be empty when the listings
// could not be loaded.
func Index(c echo.Context, meta layout.PageMeta, featured []api.Listing) templ.Component {
	a := auth.GetAuthContext(c)
	return layout.Page(c, meta, helpers.Component(func(h *helpers.Writer) {
		h.Raw(`<section class="rounded-3xl bg-gradient-to-br from-indigo-500 via-purple-600 to-pink-600 px-6 py-16 text-white sm:px-12">`)
		h.Raw(`<h1 class="max-w-3xl text-4xl font-extrabold leading-tight sm:text-5xl">CampusConnect: find the right place, and the right people.</h1>`)
		h.Raw(`<p class="mt-6 max-w-2xl text-lg opacity-90">Verified student listings, roommate matching and honest reviews in one place, so moving campuses feels less like a leap and more like a step.</p>`)
		h.Raw(`<div class="mt-8 flex flex-wrap gap-3">`)
		if a.IsAuthenticated {
			h.Raw(`<a href="/browse" class="rounded-lg bg-white px-5 py-3 font-semibold text-indigo-700 hover:bg-indigo-50">Browse Listings</a>`)
		} else {
			h.Raw(`<a href="/signup" class="rounded-lg bg-white px-5 py-3 font-semibold text-indigo-700 hover:bg-indigo-50">Get Started</a>`)
			h.Raw(`<a href="/browse" class="rounded-lg border border-white px-5 py-3 font-semibold hover:bg-white/10">Browse Listings</a>`)
		}
		h.Raw(`</div></section>`)

		h.Raw(`<section class="mt-16"><h2 class="mb-8 text-center text-3xl font-extrabold">Why students choose us</h2>`)
		h.Raw(`<div class="grid gap-6 md:grid-cols-3">`)
		for _, f := range features {
			h.Raw(`<div class="rounded-xl border border-gray-200 bg-white p-6"><h3 class="mb-2 text-xl font-semibold">`).Text(f.title).Raw(`</h3>`)
			h.Raw(`<p class="text-gray-600">`).Text(f.body).Raw(`</p></div>`)
		}
		h.Raw(`</div></section>`)

		h.Raw(`<section class="mt-16"><h2 class="mb-6 text-2xl font-bold">Explore by category</h2><div class="flex flex-wrap gap-3">`)
		for _, cat := range components.Categories {
			h.Raw(`<a`).URL("href", "/browse?category="+cat.Value).Raw(` class="rounded-full border border-gray-300 bg-white px-4 py-2 text-sm font-medium hover:border-indigo-500 hover:text-indigo-600">`).Text(cat.Label).Raw(`</a>`)
		}
		h.Raw(`</div></section>`)

		if len(featured) > 0 {
			h.Raw(`<section class="mt-16"><div class="mb-6 flex items-center justify-between"><h2 class="text-2xl font-bold">Latest listings</h2>`)
			h.Raw(`<a href="/browse" class="text-sm font-medium text-indigo-600 hover:underline">See all</a></div>`)
			h.Component(components.ListingGrid(featured))
			h.Raw(`</section>`)
		}
	}))
}
