package account

import (
	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/loganlanou/campusconnect/views/components"
	"github.com/loganlanou/campusconnect/views/helpers"
	"github.com/loganlanou/campusconnect/views/layout"
)

func card(title, subtitle string, body templ.Component) templ.Component {
	return helpers.Component(func(h *helpers.Writer) {
		h.Raw(`<div class="mx-auto max-w-md rounded-2xl bg-white px-8 py-10 shadow-sm">`)
		h.Raw(`<div class="mb-8 text-center"><h1 class="text-3xl font-bold">`).Text(title).Raw(`</h1>`)
		h.Raw(`<p class="mt-1 text-sm text-gray-500">`).Text(subtitle).Raw(`</p></div>`)
		h.Component(body)
		h.Raw(`</div>`)
	})
}

// Login renders the sign-in form. Passwords are never echoed back.
func Login(c echo.Context, meta layout.PageMeta, form components.Form) templ.Component {
	return layout.Page(c, meta, card("Sign In", "Access your CampusConnect account", helpers.Component(func(h *helpers.Writer) {
		h.Raw(`<form method="post" action="/login" class="space-y-5" novalidate>`)
		h.Component(components.Input(form, components.Field{Name: "email", Label: "Email", Type: "email", Placeholder: "you@example.com", Required: true}))
		h.Component(components.Input(form, components.Field{Name: "password", Label: "Password", Type: "password", Required: true}))
		h.Component(components.Submit("Sign In"))
		h.Raw(`</form><p class="mt-6 text-center text-sm text-gray-600">Don&#39;t have an account? <a href="/signup" class="font-medium text-indigo-600 hover:underline">Create one</a></p>`)
	})))
}

func Signup(c echo.Context, meta layout.PageMeta, form components.Form) templ.Component {
	return layout.Page(c, meta, card("Create Account", "Get started with your free account", helpers.Component(func(h *helpers.Writer) {
		h.Raw(`<form method="post" action="/signup" class="space-y-4" novalidate>`)
		h.Component(components.Input(form, components.Field{Name: "full_name", Label: "Full name", Required: true}))
		h.Component(components.Input(form, components.Field{Name: "email", Label: "Email", Type: "email", Placeholder: "you@example.com", Required: true}))
		h.Component(components.Input(form, components.Field{Name: "phone", Label: "Phone", Type: "tel", Placeholder: "10 digit mobile number", Required: true}))
		h.Component(components.Input(form, components.Field{Name: "password", Label: "Password", Type: "password", Required: true}))
		h.Component(components.Input(form, components.Field{Name: "confirm_password", Label: "Confirm password", Type: "password", Required: true}))
		h.Raw(`<label class="flex items-center gap-2 text-sm"><input type="checkbox" name="accept_terms" value="yes" class="rounded border-gray-300"`)
		if form.Get("accept_terms") != "" {
			h.Raw(` checked`)
		}
		h.Raw(`>I accept the terms and conditions</label>`)
		if msg := form.Error("accept_terms"); msg != "" {
			h.Raw(`<p class="text-xs text-red-600">`).Text(msg).Raw(`</p>`)
		}
		h.Component(components.Submit("Create Account"))
		h.Raw(`</form><p class="mt-6 text-center text-sm text-gray-600">Already have an account? <a href="/login" class="font-medium text-indigo-600 hover:underline">Sign in</a></p>`)
	})))
}
