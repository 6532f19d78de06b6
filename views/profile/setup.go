package profile

import (
	"strconv"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/loganlanou/campusconnect/internal/profile"
	"github.com/loganlanou/campusconnect/views/components"
	"github.com/loganlanou/campusconnect/views/helpers"
	"github.com/loganlanou/campusconnect/views/layout"
)

var (
	genders = []components.Option{
		{Value: "male", Label: "Male"},
		{Value: "female", Label: "Female"},
		{Value: "other", Label: "Other"},
	}

	states = []components.Option{
		{Value: "Gujarat", Label: "Gujarat"},
		{Value: "Rajasthan", Label: "Rajasthan"},
		{Value: "West Bengal", Label: "West Bengal"},
		{Value: "Delhi", Label: "Delhi"},
		{Value: "Maharashtra", Label: "Maharashtra"},
		{Value: "Karnataka", Label: "Karnataka"},
	}

	affiliations = []components.Option{
		{Value: "institution", Label: "Institution"},
		{Value: "organization", Label: "Organization"},
	}

	sharing = []components.Option{
		{Value: "private", Label: "Private Room"},
		{Value: "shared", Label: "Shared Room"},
		{Value: "any", Label: "Any"},
	}

	amenities = []components.Option{
		{Value: "wifi", Label: "WiFi"},
		{Value: "ac", Label: "Air Conditioning"},
		{Value: "laundry", Label: "Laundry"},
		{Value: "attached_bathroom", Label: "Attached Bathroom"},
		{Value: "meals", Label: "Meals Included"},
		{Value: "housekeeping", Label: "Housekeeping"},
		{Value: "parking", Label: "Parking"},
		{Value: "cctv", Label: "CCTV"},
		{Value: "study_table", Label: "Study Table"},
		{Value: "wardrobe", Label: "Wardrobe"},
		{Value: "water", Label: "24x7 Water"},
		{Value: "security", Label: "Security Guard"},
		{Value: "power_backup", Label: "Power Backup"},
		{Value: "fridge", Label: "Refrigerator"},
		{Value: "tv", Label: "TV"},
		{Value: "geyser", Label: "Geyser"},
	}
)

// Data is one page of the setup wizard
type Data struct {
	Step profile.Step
	Form components.Form
}

// Setup renders the current wizard step. Every step posts back to
// /profileSetup; the last one also carries the optional photo.
func Setup(c echo.Context, meta layout.PageMeta, data Data) templ.Component {
	return layout.Page(c, meta, helpers.Component(func(h *helpers.Writer) {
		step := data.Step

		h.Raw(`<div class="mx-auto max-w-2xl px-4 py-10">`)
		h.Raw(`<h1 class="text-2xl font-bold">Complete your profile</h1>`)
		h.Raw(`<p class="mt-1 text-sm text-gray-500">We use this to verify your account and recommend listings.</p>`)
		h.Component(progress(step.Number))

		h.Raw(`<form method="post" action="/profileSetup" class="mt-8 space-y-5 rounded-2xl bg-white p-8 shadow-sm" novalidate`)
		if step.Number == profile.LastStep {
			h.Raw(` enctype="multipart/form-data"`)
		}
		h.Raw(`>`)
		h.Raw(`<input type="hidden" name="step"`).Attr("value", strconv.Itoa(step.Number)).Raw(`>`)
		h.Raw(`<h2 class="text-lg font-semibold">`).Text(step.Title).Raw(`</h2>`)
		if msg := data.Form.Error(""); msg != "" {
			h.Raw(`<p class="rounded-lg bg-red-50 px-3 py-2 text-sm text-red-700" role="alert">`).Text(msg).Raw(`</p>`)
		}

		switch step.Number {
		case 1:
			h.Component(personalFields(data.Form))
		case 2:
			h.Component(locationFields(data.Form))
		case 3:
			h.Component(preferenceFields(data.Form))
		default:
			h.Component(amenityFields(data.Form))
		}

		h.Raw(`<div class="flex items-center justify-between pt-4">`)
		if step.Number > profile.FirstStep {
			h.Raw(`<button type="submit" name="action" value="back" formnovalidate class="rounded-lg border border-gray-300 px-4 py-2 text-sm font-medium hover:bg-gray-50">Previous</button>`)
		} else {
			h.Raw(`<span></span>`)
		}
		h.Raw(`<button type="submit" name="action" class="rounded-lg bg-indigo-600 px-5 py-2 text-sm font-semibold text-white hover:bg-indigo-700"`)
		if step.Number == profile.LastStep {
			h.Raw(` value="submit">Submit</button>`)
		} else {
			h.Raw(` value="next">Next</button>`)
		}
		h.Raw(`</div></form></div>`)
	}))
}

func progress(current int) templ.Component {
	return helpers.Component(func(h *helpers.Writer) {
		h.Raw(`<ol class="mt-6 flex gap-2" aria-label="Progress">`)
		for _, s := range profile.Steps() {
			h.Raw(`<li`)
			if s.Number == current {
				h.Raw(` aria-current="step"`)
			}
			h.Class(
				"flex-1 border-t-4 pt-2 text-xs font-medium text-gray-400",
				"border-gray-200",
				helpers.ClassIf(s.Number <= current, "border-indigo-600 text-indigo-600"),
			).Raw(`>`).Text(strconv.Itoa(s.Number) + ". " + s.Name).Raw(`</li>`)
		}
		h.Raw(`</ol>`)
	})
}

func grid(fields ...templ.Component) templ.Component {
	return helpers.Component(func(h *helpers.Writer) {
		h.Raw(`<div class="grid grid-cols-1 gap-4 sm:grid-cols-2">`)
		for _, f := range fields {
			h.Component(f)
		}
		h.Raw(`</div>`)
	})
}

func personalFields(f components.Form) templ.Component {
	return grid(
		components.Input(f, components.Field{Name: "full_name", Label: "Full name", Required: true}),
		components.Input(f, components.Field{Name: "dob", Label: "Date of birth", Type: "date", Required: true}),
		components.Select(f, components.Field{Name: "gender", Label: "Gender", Placeholder: "Select gender", Required: true}, genders),
		components.Input(f, components.Field{Name: "phone", Label: "Phone", Type: "tel", Placeholder: "10 digit mobile number", Required: true}),
	)
}

func locationFields(f components.Form) templ.Component {
	return grid(
		components.Input(f, components.Field{Name: "city", Label: "City", Required: true}),
		components.Input(f, components.Field{Name: "district", Label: "District", Required: true}),
		components.Select(f, components.Field{Name: "state", Label: "State", Placeholder: "Select state", Required: true}, states),
		components.Input(f, components.Field{Name: "pincode", Label: "Pincode", Placeholder: "6 digits", Required: true}),
	)
}

func preferenceFields(f components.Form) templ.Component {
	return helpers.Component(func(h *helpers.Writer) {
		h.Component(grid(
			components.Input(f, components.Field{Name: "preferred_city", Label: "Preferred city", Required: true}),
			components.Input(f, components.Field{Name: "preferred_district", Label: "Preferred district", Required: true}),
			components.Select(f, components.Field{Name: "preferred_state", Label: "Preferred state", Placeholder: "Select state", Required: true}, states),
			components.Input(f, components.Field{Name: "preferred_pincode", Label: "Preferred pincode", Placeholder: "6 digits", Required: true}),
			components.Select(f, components.Field{Name: "affiliation_type", Label: "Affiliation", Placeholder: "None"}, affiliations),
			components.Input(f, components.Field{Name: "affiliation_name", Label: "Institution or organization name"}),
		))

		// Fixed slots; blank ones are dropped when the step is merged
		h.Raw(`<fieldset><legend class="mb-1 block text-sm font-medium text-gray-700">Preferred localities</legend><div class="space-y-2">`)
		values := f.Values["preferred_locations"]
		for i := range profile.MaxPreferredLocations {
			value := ""
			if i < len(values) {
				value = values[i]
			}
			h.Raw(`<input type="text" name="preferred_locations" class="block w-full rounded-lg border border-gray-300 px-3 py-2 text-sm"`)
			h.Attr("aria-label", "Preferred locality "+strconv.Itoa(i+1)).Attr("value", value).Raw(`>`)
		}
		h.Raw(`</div>`)
		if msg := f.Error("preferred_locations"); msg != "" {
			h.Raw(`<p class="mt-1 text-xs text-red-600">`).Text(msg).Raw(`</p>`)
		}
		h.Raw(`</fieldset>`)
	})
}

func amenityFields(f components.Form) templ.Component {
	return helpers.Component(func(h *helpers.Writer) {
		h.Component(grid(
			components.Input(f, components.Field{
				Name: "budget", Label: "Monthly budget (₹)", Type: "number", Required: true,
				Extra: templ.Attributes{"min": strconv.Itoa(profile.MinBudget), "step": "500"},
			}),
			components.Select(f, components.Field{Name: "sharing_preference", Label: "Sharing preference", Placeholder: "Select"}, sharing),
		))
		h.Component(components.Checkboxes(f, "preferred_categories", "Looking for", components.Categories))
		h.Component(components.Checkboxes(f, "preferred_amenities", "Must-have amenities", amenities))
		h.Component(components.Input(f, components.Field{
			Name: "profileImage", Label: "Profile photo (optional)", Type: "file",
			Extra: templ.Attributes{"accept": "image/*"},
		}))
	})
}
