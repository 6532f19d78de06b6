package listing

import (
	"strconv"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/loganlanou/campusconnect/internal/api"
	"github.com/loganlanou/campusconnect/internal/social"
	"github.com/loganlanou/campusconnect/views/components"
	"github.com/loganlanou/campusconnect/views/helpers"
	"github.com/loganlanou/campusconnect/views/layout"
)

// Data is everything the listing page shows
type Data struct {
	Listing api.Listing
	Reviews []api.Review
	// ReviewsFailed hides the review list instead of claiming there are none
	ReviewsFailed bool

	Bookmarked  bool
	CanBookmark bool

	CanReview       bool
	AlreadyReviewed bool
	ReviewForm      components.Form
}

func Detail(c echo.Context, meta layout.PageMeta, data Data) templ.Component {
	l := data.Listing
	return layout.Page(c, meta, helpers.Component(func(h *helpers.Writer) {
		h.Raw(`<nav class="mb-4 text-sm text-gray-500"><a href="/browse" class="hover:underline">Browse</a> / `).Text(helpers.CategoryLabel(l.Category)).Raw(`</nav>`)
		h.Raw(`<div class="grid gap-8 lg:grid-cols-3"><div class="space-y-6 lg:col-span-2">`)
		h.Component(gallery(l))
		h.Component(about(l))
		h.Component(amenities(l))
		h.Component(reviews(data))
		h.Raw(`</div><aside class="space-y-6">`)
		h.Component(priceCard(data))
		h.Component(providerCard(l))
		h.Component(shareCard(l, meta.OGURL))
		h.Raw(`</aside></div>`)
	}))
}

func gallery(l api.Listing) templ.Component {
	return helpers.Component(func(h *helpers.Writer) {
		h.Raw(`<div class="overflow-hidden rounded-2xl bg-gray-100">`)
		if len(l.Images) == 0 {
			h.Raw(`<div class="flex aspect-[16/9] items-center justify-center text-gray-400">No photos yet</div></div>`)
			return
		}
		h.Raw(`<img class="aspect-[16/9] w-full object-cover"`).URL("src", l.Images[0].Image).Attr("alt", l.Title).Raw(`>`)
		if len(l.Images) > 1 {
			h.Raw(`<div class="flex gap-2 overflow-x-auto p-2">`)
			for _, img := range l.Images[1:] {
				h.Raw(`<img loading="lazy" class="h-20 w-28 shrink-0 rounded-lg object-cover"`).URL("src", img.Image).Attr("alt", l.Title).Raw(`>`)
			}
			h.Raw(`</div>`)
		}
		h.Raw(`</div>`)
	})
}

func about(l api.Listing) templ.Component {
	return helpers.Component(func(h *helpers.Writer) {
		h.Raw(`<section class="rounded-xl bg-white p-6 shadow-sm"><h1 class="text-2xl font-bold">`).Text(l.Title).Raw(`</h1>`)
		h.Raw(`<p class="mt-1 text-sm text-gray-500">`).Text(l.Address).Raw(`</p>`)
		h.Raw(`<p class="mt-4 whitespace-pre-line text-gray-700">`).Text(l.Description).Raw(`</p></section>`)
	})
}

func amenities(l api.Listing) templ.Component {
	return helpers.Component(func(h *helpers.Writer) {
		if len(l.Amenities) == 0 {
			return
		}
		h.Raw(`<section class="rounded-xl bg-white p-6 shadow-sm"><h2 class="mb-4 text-lg font-semibold">Amenities</h2><ul class="grid grid-cols-2 gap-2 sm:grid-cols-3">`)
		for _, a := range l.Amenities {
			h.Raw(`<li class="rounded-lg bg-gray-50 px-3 py-2 text-sm">`).Text(a).Raw(`</li>`)
		}
		h.Raw(`</ul></section>`)
	})
}

func priceCard(data Data) templ.Component {
	l := data.Listing
	return helpers.Component(func(h *helpers.Writer) {
		h.Raw(`<section class="rounded-xl bg-white p-6 shadow-sm">`)
		h.Raw(`<p class="text-3xl font-bold">`).Text(helpers.FormatPrice(l.Price)).Raw(`<span class="text-sm font-normal text-gray-500"> / month</span></p>`)
		h.Raw(`<p class="mt-1 text-sm text-gray-500">`).Text(helpers.CategoryLabel(l.Category)).Raw(` in `).Text(l.LocationCity).Raw(`</p>`)
		if l.ReviewCount > 0 {
			h.Raw(`<p class="mt-2 text-sm text-amber-500">`).Text(helpers.Stars(int(l.Rating+0.5))).Raw(` <span class="text-gray-600">`).Text(helpers.FormatRating(l.Rating)).Raw(` (`).Text(strconv.Itoa(l.ReviewCount)).Raw(`)</span></p>`)
		}
		h.Raw(`<p`).Class("mt-3 text-sm font-medium", helpers.ClassIf(l.Availability, "text-emerald-600"), helpers.ClassIf(!l.Availability, "text-red-600")).Raw(`>`)
		if l.Availability {
			h.Raw(`Available`)
		} else {
			h.Raw(`Currently full`)
		}
		h.Raw(`</p><div class="mt-4">`)
		if data.CanBookmark {
			h.Component(components.BookmarkButton(l.ID, data.Bookmarked))
		}
		h.Raw(`</div></section>`)
	})
}

func providerCard(l api.Listing) templ.Component {
	return helpers.Component(func(h *helpers.Writer) {
		h.Raw(`<section class="rounded-xl bg-white p-6 shadow-sm"><h2 class="mb-3 text-lg font-semibold">Provider</h2>`)
		h.Raw(`<p class="font-medium">`).Text(l.ProviderName).Raw(`</p>`)
		if l.ProviderPhone != "" {
			h.Raw(`<a class="mt-1 block text-sm text-indigo-600 hover:underline"`).URL("href", "tel:"+l.ProviderPhone).Raw(`>`).Text(l.ProviderPhone).Raw(`</a>`)
		}
		if l.ProviderEmail != "" {
			h.Raw(`<a class="mt-1 block text-sm text-indigo-600 hover:underline"`).URL("href", "mailto:"+l.ProviderEmail).Raw(`>`).Text(l.ProviderEmail).Raw(`</a>`)
		}
		if !l.CreatedAt.IsZero() {
			h.Raw(`<p class="mt-3 text-xs text-gray-400">Listed `).Text(helpers.FormatDate(l.CreatedAt)).Raw(`</p>`)
		}
		h.Raw(`</section>`)
	})
}

func reviews(data Data) templ.Component {
	return helpers.Component(func(h *helpers.Writer) {
		h.Raw(`<section id="reviews" class="rounded-xl bg-white p-6 shadow-sm"><h2 class="mb-4 text-lg font-semibold">Reviews</h2>`)

		switch {
		case data.CanReview:
			h.Component(reviewForm(data.Listing.ID, data.ReviewForm))
		case data.AlreadyReviewed:
			h.Raw(`<p class="mb-4 rounded-lg bg-gray-50 px-4 py-3 text-sm text-gray-600">You have already reviewed this listing.</p>`)
		}

		switch {
		case data.ReviewsFailed:
			h.Raw(`<p class="text-sm text-gray-400">Reviews are unavailable right now.</p>`)
		case len(data.Reviews) == 0:
			h.Raw(`<p class="text-sm text-gray-500">No reviews yet. Be the first to share your experience.</p>`)
		default:
			h.Raw(`<ul class="divide-y divide-gray-100">`)
			for _, r := range data.Reviews {
				h.Raw(`<li class="flex gap-4 py-4"><span class="flex h-10 w-10 shrink-0 items-center justify-center rounded-full bg-indigo-100 text-sm font-semibold text-indigo-700">`)
				h.Text(helpers.Initials(r.AuthorName())).Raw(`</span><div>`)
				h.Raw(`<p class="font-medium">`).Text(r.AuthorName()).Raw(` <span class="ml-1 text-sm text-amber-500">`).Text(helpers.Stars(r.Rating)).Raw(`</span></p>`)
				h.Raw(`<p class="mt-1 text-gray-700">`).Text(r.Comment).Raw(`</p>`)
				h.Raw(`<p class="mt-1 text-xs text-gray-400">`).Text(r.TimeAgo)
				if !r.IsApproved {
					h.Raw(` &middot; awaiting moderation`)
				}
				h.Raw(`</p></div></li>`)
			}
			h.Raw(`</ul>`)
		}
		h.Raw(`</section>`)
	})
}

var ratings = []components.Option{
	{Value: "5", Label: "5 - Excellent"},
	{Value: "4", Label: "4 - Good"},
	{Value: "3", Label: "3 - Average"},
	{Value: "2", Label: "2 - Poor"},
	{Value: "1", Label: "1 - Terrible"},
}

func reviewForm(listingID int, form components.Form) templ.Component {
	return helpers.Component(func(h *helpers.Writer) {
		h.Raw(`<form method="post" class="mb-6 space-y-3 rounded-lg bg-gray-50 p-4"`).URL("action", components.ListingURL(listingID)+"/reviews").Raw(`>`)
		h.Component(components.Select(form, components.Field{Name: "rating", Label: "Your rating", Placeholder: "Select a rating", Required: true}, ratings))
		h.Component(components.TextArea(form, components.Field{Name: "comment", Label: "Your review", Placeholder: "What was it like to stay here?"}, 3))
		h.Component(components.Submit("Submit review", "sm:w-auto"))
		h.Raw(`</form>`)
	})
}

func shareCard(l api.Listing, absoluteURL string) templ.Component {
	return helpers.Component(func(h *helpers.Writer) {
		base := components.ListingURL(l.ID)
		h.Raw(`<section class="rounded-xl bg-white p-6 text-center shadow-sm"><h2 class="mb-3 text-lg font-semibold">Share</h2>`)
		h.Raw(`<ul class="mb-4 flex flex-wrap justify-center gap-2">`)
		for _, link := range social.Links(social.Listing{
			Title:    l.Title,
			Category: helpers.CategoryLabel(l.Category),
			City:     l.LocationCity,
			Price:    helpers.FormatPrice(l.Price),
			URL:      absoluteURL,
		}) {
			h.Raw(`<li><a class="rounded-full bg-gray-100 px-3 py-1 text-sm hover:bg-gray-200" target="_blank" rel="noopener"`).
				Attr("data-share", string(link.Platform)).URL("href", link.URL).Raw(`>`).Text(link.Label).Raw(`</a></li>`)
		}
		h.Raw(`</ul>`)
		h.Raw(`<img class="mx-auto h-40 w-40" width="160" height="160" loading="lazy" alt="QR code for this listing"`).URL("src", base+"/qr.png").Raw(`>`)
		h.Raw(`<p class="mt-1 text-xs text-gray-500">Scan to open on your phone</p>`)
		h.Raw(`<a class="mt-3 inline-block text-sm text-indigo-600 hover:underline" download`).URL("href", base+"/card.png").Raw(`>Download share image</a>`)
		h.Raw(`</section>`)
	})
}
