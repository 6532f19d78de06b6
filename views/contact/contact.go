package contact

import (
	"net/url"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/loganlanou/campusconnect/views/components"
	"github.com/loganlanou/campusconnect/views/helpers"
	"github.com/loganlanou/campusconnect/views/layout"
)

var topics = []components.Option{
	{Value: "general", Label: "General enquiry"},
	{Value: "listing", Label: "Problem with a listing"},
	{Value: "account", Label: "Account and verification"},
	{Value: "partner", Label: "List my property"},
}

// TopicLabel returns the label shown for a topic value, or the value itself
// when it is not one of the listed topics
func TopicLabel(value string) string {
	for _, t := range topics {
		if t.Value == value {
			return t.Label
		}
	}
	return value
}

// Index renders the contact form, re-filled with form after a failed submit.
// A non-empty siteKey loads reCAPTCHA and has the page script attach a token
// on submit.
func Index(c echo.Context, meta layout.PageMeta, form components.Form, siteKey string) templ.Component {
	return layout.Page(c, meta, helpers.Component(func(h *helpers.Writer) {
		h.Raw(`<div class="mx-auto max-w-lg rounded-2xl bg-white p-8 shadow-sm">`)
		h.Raw(`<h1 class="mb-4 text-2xl font-bold">Contact Us</h1>`)
		h.Raw(`<form method="post" action="/contact" class="space-y-4" novalidate`)
		if siteKey != "" {
			h.Attr("data-recaptcha", siteKey).Raw(` data-recaptcha-action="contact"`)
		}
		h.Raw(`>`)
		h.Component(components.Input(form, components.Field{Name: "name", Label: "Name", Required: true}))
		h.Component(components.Input(form, components.Field{Name: "email", Label: "Email", Type: "email", Required: true}))
		h.Component(components.Input(form, components.Field{Name: "phone", Label: "Phone", Type: "tel", Placeholder: "10 digit mobile number", Required: true}))
		h.Component(components.Select(form, components.Field{Name: "category", Label: "Topic", Placeholder: "Choose a topic"}, topics))
		h.Component(components.TextArea(form, components.Field{Name: "message", Label: "Message"}, 4))
		h.Raw(`<label class="flex items-start gap-2 text-sm"><input type="checkbox" name="consent" value="yes" class="mt-0.5 rounded border-gray-300"`)
		if form.Get("consent") != "" {
			h.Raw(` checked`)
		}
		h.Raw(`>I agree to the terms and privacy policy</label>`)
		if msg := form.Error("consent"); msg != "" {
			h.Raw(`<p class="text-xs text-red-600">`).Text(msg).Raw(`</p>`)
		}
		if siteKey != "" {
			h.Raw(`<input type="hidden" name="g-recaptcha-response" value="">`)
		}
		h.Component(components.Submit("Send message"))
		h.Raw(`</form></div>`)
		if siteKey != "" {
			h.Raw(`<script defer`).URL("src", "https://www.google.com/recaptcha/api.js?render="+url.QueryEscape(siteKey)).Raw(`></script>`)
		}
	}))
}
