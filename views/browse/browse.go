package browse

import (
	"net/url"
	"strconv"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/loganlanou/campusconnect/internal/api"
	"github.com/loganlanou/campusconnect/views/components"
	"github.com/loganlanou/campusconnect/views/helpers"
	"github.com/loganlanou/campusconnect/views/layout"
)

// Data is everything the browse page shows
type Data struct {
	Query   url.Values
	Results api.Page[api.Listing]

	// Guest pages are cut to the guest limit and end in a login prompt
	Guest bool
	// Failed means the listings could not be loaded at all
	Failed bool
}

func Index(c echo.Context, meta layout.PageMeta, data Data) templ.Component {
	form := components.NewForm(data.Query)
	return layout.Page(c, meta, helpers.Component(func(h *helpers.Writer) {
		h.Raw(`<div class="mb-6 flex flex-wrap items-end justify-between gap-4"><div>`)
		h.Raw(`<h1 class="text-3xl font-bold">Browse listings</h1>`)
		if !data.Failed && data.Results.TotalItems > 0 {
			h.Raw(`<p class="text-sm text-gray-500">`).Text(strconv.Itoa(data.Results.TotalItems)).Raw(` places found</p>`)
		}
		h.Raw(`</div></div>`)

		h.Raw(`<form method="get" action="/browse" class="mb-8 grid gap-4 rounded-xl bg-white p-4 shadow-sm sm:grid-cols-2 lg:grid-cols-6">`)
		h.Raw(`<div class="lg:col-span-2">`)
		h.Component(components.Input(form, components.Field{Name: "search", Label: "Search", Type: "search", Placeholder: "Title, area or provider"}))
		h.Raw(`</div>`)
		h.Component(components.Select(form, components.Field{Name: "category", Label: "Category", Placeholder: "All categories"}, components.Categories))
		h.Component(components.Input(form, components.Field{Name: "location_city", Label: "City"}))
		h.Component(components.Input(form, components.Field{Name: "min_price", Label: "Min price", Type: "number", Extra: templ.Attributes{"min": "0"}}))
		h.Component(components.Input(form, components.Field{Name: "max_price", Label: "Max price", Type: "number", Extra: templ.Attributes{"min": "0"}}))
		h.Raw(`<div class="flex gap-2 sm:col-span-2 lg:col-span-6 lg:justify-end">`)
		h.Raw(`<a href="/browse" class="rounded-lg border border-gray-300 px-4 py-2 text-sm hover:bg-gray-50">Clear</a>`)
		h.Raw(`<button type="submit" class="rounded-lg bg-indigo-600 px-4 py-2 text-sm font-semibold text-white hover:bg-indigo-700">Apply filters</button>`)
		h.Raw(`</div></form>`)

		switch {
		case data.Failed:
			h.Component(components.EmptyState("Listings are unavailable", "We could not load listings right now. Please try again shortly.", "Retry", c.Request().URL.RequestURI()))
			return
		case len(data.Results.Results) == 0:
			h.Component(components.EmptyState("No listings match", "Try widening your price range or clearing some filters.", "Clear filters", "/browse"))
			return
		}

		h.Component(components.ListingGrid(data.Results.Results))

		if data.Guest {
			h.Raw(`<div class="mt-10 rounded-xl border border-indigo-100 bg-indigo-50 p-8 text-center" data-guest-cta>`)
			h.Raw(`<h2 class="text-xl font-semibold text-indigo-900">Want to see everything?</h2>`)
			h.Raw(`<p class="mt-2 text-sm text-indigo-800">Log in to browse every listing, bookmark favourites and read reviews.</p>`)
			h.Raw(`<a href="/login" class="mt-4 inline-block rounded-lg bg-indigo-600 px-5 py-2 text-sm font-semibold text-white hover:bg-indigo-700">Login to see more</a>`)
			h.Raw(`</div>`)
			return
		}

		h.Component(components.Pagination("/browse", data.Query, data.Results.CurrentPage, data.Results.TotalPages))
	}))
}
