package components

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/a-h/templ"
	"github.com/loganlanou/campusconnect/internal/api"
	"github.com/loganlanou/campusconnect/views/helpers"
)

// Categories the API knows, in display order
var Categories = []Option{
	{Value: "pg", Label: "PG"},
	{Value: "hostel", Label: "Hostel"},
	{Value: "mess", Label: "Mess"},
	{Value: "tiffin", Label: "Tiffin Service"},
	{Value: "tutor", Label: "Tutor"},
}

func ListingURL(id int) string {
	return fmt.Sprintf("/listing/%d", id)
}

// ListingCard is the summary tile used on browse, home and bookmarks
func ListingCard(l api.Listing) templ.Component {
	return helpers.Component(func(h *helpers.Writer) {
		h.Raw(`<a data-listing-card`).URL("href", ListingURL(l.ID)).Raw(` class="group block overflow-hidden rounded-xl border border-gray-200 bg-white shadow-sm transition hover:shadow-md">`)
		h.Raw(`<div class="aspect-[4/3] bg-gray-100">`)
		if cover := l.CoverImage(); cover != "" {
			h.Raw(`<img loading="lazy" class="h-full w-full object-cover"`).URL("src", cover).Attr("alt", l.Title).Raw(`>`)
		}
		h.Raw(`</div><div class="space-y-1 p-4">`)
		h.Raw(`<span class="inline-block rounded-full bg-indigo-50 px-2 py-0.5 text-xs font-medium text-indigo-700">`).Text(helpers.CategoryLabel(l.Category)).Raw(`</span>`)
		h.Raw(`<h3 class="truncate font-semibold group-hover:text-indigo-600">`).Text(l.Title).Raw(`</h3>`)
		h.Raw(`<p class="text-sm text-gray-500">`).Text(l.LocationCity)
		if l.LocationState != "" {
			h.Text(", " + l.LocationState)
		}
		h.Raw(`</p><div class="flex items-center justify-between pt-1">`)
		h.Raw(`<span class="font-semibold text-gray-900">`).Text(helpers.FormatPrice(l.Price)).Raw(`</span>`)
		if l.ReviewCount > 0 {
			h.Raw(`<span class="text-sm text-amber-500">&#9733; `).Text(helpers.FormatRating(l.Rating)).Raw(`</span>`)
		}
		h.Raw(`</div></div></a>`)
	})
}

// ListingGrid lays cards out in a responsive grid
func ListingGrid(listings []api.Listing) templ.Component {
	return helpers.Component(func(h *helpers.Writer) {
		h.Raw(`<div class="grid grid-cols-1 gap-6 sm:grid-cols-2 lg:grid-cols-3">`)
		for _, l := range listings {
			h.Component(ListingCard(l))
		}
		h.Raw(`</div>`)
	})
}

// BookmarkButton posts the toggle. Scripted pages send it as JSON and swap
// the label in place; without scripts the form posts and the page reloads.
func BookmarkButton(listingID int, bookmarked bool) templ.Component {
	return helpers.Component(func(h *helpers.Writer) {
		label := "Bookmark"
		aria := "Add bookmark"
		if bookmarked {
			label = "Bookmarked"
			aria = "Remove bookmark"
		}
		h.Raw(`<form method="post" data-bookmark-form`).URL("action", ListingURL(listingID)+"/bookmark").Raw(`>`)
		h.Raw(`<input type="hidden" name="bookmarked"`).Attr("value", strconv.FormatBool(bookmarked)).Raw(`>`)
		h.Raw(`<button type="submit"`).Attr("aria-label", aria).Attr("aria-pressed", strconv.FormatBool(bookmarked))
		h.Class(
			"mb-4 w-full rounded-lg border px-4 py-2 text-sm font-semibold",
			"border-indigo-600 text-indigo-600 hover:bg-indigo-50",
			helpers.ClassIf(bookmarked, "bg-indigo-600 text-white hover:bg-indigo-700"),
		).Raw(`>`).Text(label).Raw(`</button></form>`)
	})
}

// Pagination links to neighbouring pages keeping the current query
func Pagination(path string, query url.Values, current, total int) templ.Component {
	return helpers.Component(func(h *helpers.Writer) {
		if total <= 1 {
			return
		}
		link := func(page int) string {
			q := url.Values{}
			for k, v := range query {
				q[k] = v
			}
			q.Set("page", strconv.Itoa(page))
			return path + "?" + q.Encode()
		}
		const btn = "rounded-lg border border-gray-300 px-3 py-1.5 text-sm hover:bg-gray-50"

		h.Raw(`<nav class="mt-8 flex items-center justify-center gap-3" aria-label="Pagination">`)
		if current > 1 {
			h.Raw(`<a`).URL("href", link(current-1)).Raw(` class="`, btn, `">Previous</a>`)
		}
		h.Raw(`<span class="text-sm text-gray-600">Page `).Text(strconv.Itoa(current)).Raw(` of `).Text(strconv.Itoa(total)).Raw(`</span>`)
		if current < total {
			h.Raw(`<a`).URL("href", link(current+1)).Raw(` class="`, btn, `">Next</a>`)
		}
		h.Raw(`</nav>`)
	})
}

// EmptyState is the placeholder for a list with nothing in it
func EmptyState(title, message, actionLabel, actionHref string) templ.Component {
	return helpers.Component(func(h *helpers.Writer) {
		h.Raw(`<div class="rounded-xl border border-dashed border-gray-300 bg-white px-6 py-16 text-center">`)
		h.Raw(`<h3 class="text-lg font-medium">`).Text(title).Raw(`</h3>`)
		h.Raw(`<p class="mt-2 text-sm text-gray-500">`).Text(message).Raw(`</p>`)
		if actionHref != "" {
			h.Raw(`<a`).URL("href", actionHref).Raw(` class="mt-4 inline-block rounded-lg bg-indigo-600 px-4 py-2 text-sm font-medium text-white hover:bg-indigo-700">`).Text(actionLabel).Raw(`</a>`)
		}
		h.Raw(`</div>`)
	})
}

// StatCard shows one figure, optionally with its month-over-month growth
func StatCard(title, value string, growth *api.GrowthStats) templ.Component {
	return helpers.Component(func(h *helpers.Writer) {
		h.Raw(`<div class="rounded-xl border border-gray-200 bg-white p-5 shadow-sm">`)
		h.Raw(`<p class="text-sm text-gray-500">`).Text(title).Raw(`</p>`)
		h.Raw(`<p class="mt-1 text-2xl font-bold">`).Text(value).Raw(`</p>`)
		if growth != nil {
			h.Raw(`<p`).Class("mt-1 text-xs", helpers.ClassIf(growth.IsPositive, "text-emerald-600"), helpers.ClassIf(!growth.IsPositive, "text-red-600")).Raw(`>`)
			h.Text(helpers.FormatPercentage(growth.Growth)).Raw(` vs last month (`).Text(helpers.FormatInt(growth.ThisMonth)).Raw(` this month)</p>`)
		}
		h.Raw(`</div>`)
	})
}

// Unavailable marks a panel whose data could not be loaded
func Unavailable(what string) templ.Component {
	return helpers.Component(func(h *helpers.Writer) {
		h.Raw(`<div class="rounded-xl border border-gray-200 bg-white p-5 text-sm text-gray-400">`).Text(what).Raw(` unavailable</div>`)
	})
}
