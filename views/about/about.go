package about

import (
	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/loganlanou/campusconnect/views/helpers"
	"github.com/loganlanou/campusconnect/views/layout"
)

var pillars = [][2]string{
	{"Verified Listings", "Browse authentic, verified accommodations near your campus with all the details you need."},
	{"Find Roommates", "Match with students who share similar preferences, lifestyle, and values."},
	{"Safe Connections", "We prioritize your safety with profile verification and secure communication tools."},
}

func Index(c echo.Context, meta layout.PageMeta) templ.Component {
	return layout.Page(c, meta, helpers.Component(func(h *helpers.Writer) {
		h.Raw(`<section class="py-12 text-center"><h1 class="mb-4 text-5xl font-bold">About CampusConnect</h1>`)
		h.Raw(`<p class="mx-auto max-w-2xl text-lg text-gray-600">Connecting students with trusted housing and like-minded roommates. Built for students, by students.</p></section>`)

		h.Raw(`<section class="mx-auto max-w-3xl py-8 text-center"><h2 class="mb-6 text-3xl font-bold">Our Mission</h2>`)
		h.Raw(`<p class="text-gray-700">At CampusConnect, our goal is to make your college housing search easy, safe, and reliable. `)
		h.Raw(`Finding the right place to live and the right people to live with is stressful, so we built a platform that brings students together and makes that process smooth.</p></section>`)

		h.Raw(`<section class="grid gap-6 py-8 md:grid-cols-3">`)
		for _, p := range pillars {
			h.Raw(`<div class="rounded-xl bg-white p-6 text-center shadow-sm"><h3 class="mb-2 text-xl font-semibold">`).Text(p[0]).Raw(`</h3><p class="text-gray-600">`).Text(p[1]).Raw(`</p></div>`)
		}
		h.Raw(`</section>`)

		h.Raw(`<section class="py-12 text-center"><h2 class="mb-4 text-3xl font-bold">Join Us Today</h2>`)
		h.Raw(`<p class="mx-auto mb-6 max-w-2xl text-gray-600">Whether you are moving into your first apartment or looking for your next roommate, CampusConnect is here to help you every step of the way.</p>`)
		h.Raw(`<a href="/signup" class="rounded-lg bg-indigo-600 px-5 py-3 font-semibold text-white hover:bg-indigo-700">Get Started</a></section>`)
	}))
}
