package admin

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

const (
	tableClass = "min-w-full divide-y divide-gray-200 overflow-hidden rounded-xl border border-gray-200 bg-white text-sm"
	thClass    = "px-4 py-3 text-left text-xs font-medium uppercase tracking-wide text-gray-500"
	tdClass    = "px-4 py-3 align-top"
)

func tableHead(h *helpers.Writer, columns ...string) {
	h.Raw(`<div class="overflow-x-auto"><table class="`, tableClass, `"><thead class="bg-gray-50"><tr>`)
	for _, col := range columns {
		h.Raw(`<th scope="col" class="`, thClass, `">`).Text(col).Raw(`</th>`)
	}
	h.Raw(`</tr></thead><tbody class="divide-y divide-gray-100">`)
}

func tableFoot(h *helpers.Writer) {
	h.Raw(`</tbody></table></div>`)
}

type UsersData struct {
	Users  []api.User
	Failed bool
	// Errors from a rejected delete, keyed by user id
	Errors map[int]string
}

// Users lists accounts. Deleting one requires typing the account's full
// name into the confirmation box.
func Users(c echo.Context, meta layout.PageMeta, data UsersData) templ.Component {
	return layout.Page(c, meta, helpers.Component(func(h *helpers.Writer) {
		h.Component(heading("Users", "Everyone registered on CampusConnect"))
		switch {
		case data.Failed:
			h.Component(components.Unavailable("Users"))
			return
		case len(data.Users) == 0:
			h.Component(components.EmptyState("No users", "Nobody has signed up yet.", "", ""))
			return
		}

		tableHead(h, "Name", "Email", "Role", "Status", "Joined", "")
		for _, u := range data.Users {
			id := strconv.Itoa(u.ID)
			h.Raw(`<tr data-user-id="`, id, `"><td class="`, tdClass, ` font-medium">`).Text(u.FullName).Raw(`</td>`)
			h.Raw(`<td class="`, tdClass, `">`).Text(u.Email).Raw(`</td>`)
			h.Raw(`<td class="`, tdClass, `">`).Text(u.Role).Raw(`</td>`)
			h.Raw(`<td class="`, tdClass, `">`)
			if u.IsVerified {
				h.Raw(`<span class="rounded-full bg-emerald-50 px-2 py-0.5 text-xs text-emerald-700">Verified</span>`)
			} else {
				h.Raw(`<span class="rounded-full bg-amber-50 px-2 py-0.5 text-xs text-amber-700">Unverified</span>`)
			}
			h.Raw(`</td><td class="`, tdClass, ` text-gray-500">`).Text(helpers.FormatDate(u.CreatedAt)).Raw(`</td>`)

			h.Raw(`<td class="`, tdClass, `"><details><summary class="cursor-pointer text-red-600">Delete</summary>`)
			h.Raw(`<form method="post" class="mt-2 space-y-2"`).URL("action", "/admin/users/"+id+"/delete").Raw(`>`)
			h.Raw(`<label class="block text-xs text-gray-600">Type <strong>`).Text(u.FullName).Raw(`</strong> to confirm</label>`)
			h.Raw(`<input type="text" name="confirm_name" autocomplete="off" class="block w-full rounded border border-gray-300 px-2 py-1 text-xs">`)
			if msg := data.Errors[u.ID]; msg != "" {
				h.Raw(`<p class="text-xs text-red-600">`).Text(msg).Raw(`</p>`)
			}
			h.Raw(`<button type="submit" class="rounded bg-red-600 px-3 py-1 text-xs font-semibold text-white hover:bg-red-700">Delete user</button>`)
			h.Raw(`</form></details></td></tr>`)
		}
		tableFoot(h)
	}))
}

type ListingsData struct {
	Listings []api.Listing
	Failed   bool
}

func Listings(c echo.Context, meta layout.PageMeta, data ListingsData) templ.Component {
	return layout.Page(c, meta, helpers.Component(func(h *helpers.Writer) {
		h.Component(heading("Listings", helpers.FormatInt(len(data.Listings))+" listings"))
		switch {
		case data.Failed:
			h.Component(components.Unavailable("Listings"))
			return
		case len(data.Listings) == 0:
			h.Component(components.EmptyState("No listings", "Listings created by providers appear here.", "", ""))
			return
		}

		tableHead(h, "Title", "Category", "City", "Price", "Rating", "Status")
		for _, l := range data.Listings {
			h.Raw(`<tr><td class="`, tdClass, `"><a class="font-medium text-indigo-600 hover:underline"`).URL("href", components.ListingURL(l.ID)).Raw(`>`).Text(l.Title).Raw(`</a></td>`)
			h.Raw(`<td class="`, tdClass, `">`).Text(helpers.CategoryLabel(l.Category)).Raw(`</td>`)
			h.Raw(`<td class="`, tdClass, `">`).Text(l.LocationCity).Raw(`</td>`)
			h.Raw(`<td class="`, tdClass, `">`).Text(helpers.FormatPrice(l.Price)).Raw(`</td>`)
			h.Raw(`<td class="`, tdClass, `">`).Text(helpers.FormatRating(l.Rating)).Raw(` (`).Text(helpers.FormatInt(l.ReviewCount)).Raw(`)</td>`)
			h.Raw(`<td class="`, tdClass, `">`)
			if l.IsActive {
				h.Raw(`Active`)
			} else {
				h.Raw(`<span class="text-gray-400">Inactive</span>`)
			}
			h.Raw(`</td></tr>`)
		}
		tableFoot(h)
	}))
}

type ReviewsData struct {
	Query   url.Values
	Reviews []api.Review
	Failed  bool
}

var ratings = []components.Option{
	{Value: "5", Label: "5 stars"},
	{Value: "4", Label: "4 stars"},
	{Value: "3", Label: "3 stars"},
	{Value: "2", Label: "2 stars"},
	{Value: "1", Label: "1 star"},
}

// Reviews lists reviews with filters; pending ones can be approved
func Reviews(c echo.Context, meta layout.PageMeta, data ReviewsData) templ.Component {
	form := components.NewForm(data.Query)
	return layout.Page(c, meta, helpers.Component(func(h *helpers.Writer) {
		h.Component(heading("Reviews", "Moderate what students say about listings"))

		h.Raw(`<form method="get" action="/admin/reviews" class="mb-6 grid gap-4 rounded-xl bg-white p-4 shadow-sm sm:grid-cols-2 lg:grid-cols-5">`)
		h.Component(components.Input(form, components.Field{Name: "username", Label: "Reviewer"}))
		h.Component(components.Input(form, components.Field{Name: "listing", Label: "Listing"}))
		h.Component(components.Select(form, components.Field{Name: "rating", Label: "Rating", Placeholder: "Any rating"}, ratings))
		h.Raw(`<label class="flex items-end gap-2 pb-2 text-sm"><input type="checkbox" name="pending" value="1" class="rounded border-gray-300"`)
		if form.Get("pending") != "" {
			h.Raw(` checked`)
		}
		h.Raw(`>Pending only</label>`)
		h.Raw(`<div class="flex items-end"><button type="submit" class="w-full rounded-lg bg-indigo-600 px-4 py-2 text-sm font-semibold text-white hover:bg-indigo-700">Filter</button></div>`)
		h.Raw(`</form>`)

		switch {
		case data.Failed:
			h.Component(components.Unavailable("Reviews"))
			return
		case len(data.Reviews) == 0:
			h.Component(components.EmptyState("No reviews match", "Try clearing the filters.", "Clear filters", "/admin/reviews"))
			return
		}

		tableHead(h, "Reviewer", "Listing", "Rating", "Comment", "Posted", "Status")
		for _, r := range data.Reviews {
			h.Raw(`<tr><td class="`, tdClass, ` font-medium">`).Text(r.AuthorName()).Raw(`</td>`)
			h.Raw(`<td class="`, tdClass, `">`).Text(r.ListingName()).Raw(`</td>`)
			h.Raw(`<td class="`, tdClass, ` text-amber-500">`).Text(helpers.Stars(r.Rating)).Raw(`</td>`)
			h.Raw(`<td class="`, tdClass, ` max-w-md">`).Text(r.Comment).Raw(`</td>`)
			h.Raw(`<td class="`, tdClass, ` text-gray-500">`).Text(r.TimeAgo).Raw(`</td>`)
			h.Raw(`<td class="`, tdClass, `">`)
			if r.IsApproved {
				h.Raw(`<span class="text-emerald-600">Approved</span>`)
			} else {
				h.Raw(`<form method="post"`).URL("action", "/admin/reviews/"+strconv.Itoa(r.ID)+"/approve").Raw(`>`)
				h.Raw(`<button type="submit" class="rounded bg-emerald-600 px-3 py-1 text-xs font-semibold text-white hover:bg-emerald-700">Approve</button></form>`)
			}
			h.Raw(`</td></tr>`)
		}
		tableFoot(h)
	}))
}

type AnalyticsData struct {
	Users     Slot[api.GrowthStats]
	Listings  Slot[api.GrowthStats]
	Reviews   Slot[api.ReviewStats]
	Breakdown Slot[api.AdminStats]

	// Sentiment check of a sample comment
	Comment   string
	Sentiment *api.Sentiment
	CheckErr  string
}

func Analytics(c echo.Context, meta layout.PageMeta, data AnalyticsData) templ.Component {
	return layout.Page(c, meta, helpers.Component(func(h *helpers.Writer) {
		h.Component(heading("Analytics", "Month-over-month growth"))
		h.Raw(`<p class="-mt-4 mb-6"><a href="/admin/analytics/report.pdf" class="text-sm font-medium text-indigo-600 hover:underline">Download PDF report</a></p>`)

		h.Raw(`<div class="grid grid-cols-1 gap-4 sm:grid-cols-3">`)
		h.Component(growthCard("Users", data.Users))
		h.Component(growthCard("Listings", data.Listings))
		if data.Reviews.Failed {
			h.Component(components.Unavailable("Reviews"))
		} else {
			r := data.Reviews.Value
			h.Component(components.StatCard("Reviews", helpers.FormatInt(r.Total), &r.GrowthStats))
		}
		h.Raw(`</div>`)

		if !data.Reviews.Failed {
			r := data.Reviews.Value
			h.Raw(`<div class="mt-6 grid grid-cols-1 gap-4 sm:grid-cols-3">`)
			h.Component(components.StatCard("Average rating", helpers.FormatRating(r.AverageRating), nil))
			h.Component(components.StatCard("Positive reviews", helpers.FormatPercentage(r.PositivePercentage), nil))
			h.Component(components.StatCard("Approved", helpers.FormatInt(r.Approved)+" of "+helpers.FormatInt(r.Total), nil))
			h.Raw(`</div>`)
		}

		h.Raw(`<div class="mt-10 grid grid-cols-1 gap-8 lg:grid-cols-2">`)
		if data.Breakdown.Failed {
			h.Component(components.Unavailable("Breakdown"))
		} else {
			b := data.Breakdown.Value
			h.Raw(`<section><h2 class="mb-4 text-lg font-semibold">Listings by category</h2>`)
			h.Component(bars(len(b.ByCategory), func(i int) (string, int) {
				return helpers.CategoryLabel(b.ByCategory[i].Category), b.ByCategory[i].Count
			}))
			h.Raw(`</section><section><h2 class="mb-4 text-lg font-semibold">Listings by state</h2>`)
			h.Component(bars(len(b.ByState), func(i int) (string, int) {
				return b.ByState[i].State, b.ByState[i].Count
			}))
			h.Raw(`</section>`)
		}
		h.Raw(`</div>`)

		h.Raw(`<section class="mt-10 rounded-xl bg-white p-6 shadow-sm"><h2 class="text-lg font-semibold">Sentiment check</h2>`)
		h.Raw(`<p class="mb-4 text-sm text-gray-500">Run a review comment through the sentiment model.</p>`)
		h.Raw(`<form method="post" action="/admin/analytics/sentiment" class="space-y-3">`)
		form := components.NewForm(url.Values{"comment": {data.Comment}})
		if data.CheckErr != "" {
			form.Errors["comment"] = data.CheckErr
		}
		h.Component(components.TextArea(form, components.Field{Name: "comment", Label: "Comment"}, 3))
		h.Component(components.Submit("Analyze", "w-auto"))
		h.Raw(`</form>`)
		if data.Sentiment != nil {
			h.Raw(`<p class="mt-4 text-sm" data-sentiment>Sentiment: <strong>`).Text(data.Sentiment.Sentiment).Raw(`</strong></p>`)
		}
		h.Raw(`</section>`)
	}))
}

// bars draws a horizontal bar chart scaled to the largest count
func bars(n int, row func(i int) (string, int)) templ.Component {
	return helpers.Component(func(h *helpers.Writer) {
		if n == 0 {
			h.Raw(`<p class="text-sm text-gray-500">No data.</p>`)
			return
		}
		largest := 1
		for i := range n {
			if _, count := row(i); count > largest {
				largest = count
			}
		}
		h.Raw(`<ul class="space-y-2">`)
		for i := range n {
			label, count := row(i)
			width := strconv.Itoa(count * 100 / largest)
			h.Raw(`<li class="text-sm"><div class="flex justify-between"><span>`).Text(label).Raw(`</span><span class="text-gray-500">`).Text(strconv.Itoa(count)).Raw(`</span></div>`)
			h.Raw(`<div class="mt-1 h-2 rounded bg-gray-100"><div class="h-2 rounded bg-indigo-500" style="width: `, width, `%"></div></div></li>`)
		}
		h.Raw(`</ul>`)
	})
}
