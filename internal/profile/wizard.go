// Package profile holds the profile setup wizard: which answers each step
// owns, how a step is validated, and how the collected answers become the
// final profile update.
package profile

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/loganlanou/campusconnect/internal/api"
	"github.com/loganlanou/campusconnect/internal/forms"
)

const (
	FirstStep = 1
	LastStep  = 4

	MaxPreferredLocations = 5
	MinBudget             = 1000
)

// Step is one page of the wizard
type Step struct {
	Number int
	Name   string
	Title  string

	fields []string
	lists  []string
	bind   func(url.Values) any
}

var steps = []Step{
	{
		Number: 1, Name: "Personal", Title: "Personal details",
		fields: []string{"full_name", "dob", "gender", "phone"},
		bind: func(v url.Values) any {
			return &personal{
				FullName: get(v, "full_name"),
				DOB:      get(v, "dob"),
				Gender:   get(v, "gender"),
				Phone:    get(v, "phone"),
			}
		},
	},
	{
		Number: 2, Name: "Location", Title: "Current location",
		fields: []string{"city", "district", "state", "pincode"},
		bind: func(v url.Values) any {
			return &location{
				City:     get(v, "city"),
				District: get(v, "district"),
				State:    get(v, "state"),
				Pincode:  get(v, "pincode"),
			}
		},
	},
	{
		Number: 3, Name: "Preferences", Title: "Preferred location",
		fields: []string{"preferred_city", "preferred_district", "preferred_state", "preferred_pincode", "affiliation_type", "affiliation_name"},
		lists:  []string{"preferred_locations"},
		bind: func(v url.Values) any {
			return &preferredLocation{
				City:               get(v, "preferred_city"),
				District:           get(v, "preferred_district"),
				State:              get(v, "preferred_state"),
				Pincode:            get(v, "preferred_pincode"),
				AffiliationType:    get(v, "affiliation_type"),
				AffiliationName:    get(v, "affiliation_name"),
				PreferredLocations: list(v, "preferred_locations"),
			}
		},
	},
	{
		Number: 4, Name: "Amenities", Title: "Preferences",
		fields: []string{"budget", "sharing_preference"},
		lists:  []string{"preferred_categories", "preferred_amenities"},
		bind: func(v url.Values) any {
			budget, _ := strconv.Atoi(get(v, "budget"))
			return &preferences{
				Budget:              budget,
				SharingPreference:   get(v, "sharing_preference"),
				PreferredCategories: list(v, "preferred_categories"),
				PreferredAmenities:  list(v, "preferred_amenities"),
			}
		},
	},
}

type personal struct {
	FullName string `form:"full_name" validate:"required,personname"`
	DOB      string `form:"dob" validate:"required,datetime=2006-01-02"`
	Gender   string `form:"gender" validate:"required,oneof=male female other"`
	Phone    string `form:"phone" validate:"required,len=10,numeric"`
}

type location struct {
	City     string `form:"city" validate:"required"`
	District string `form:"district" validate:"required"`
	State    string `form:"state" validate:"required"`
	Pincode  string `form:"pincode" validate:"required,len=6,numeric"`
}

type preferredLocation struct {
	City               string   `form:"preferred_city" validate:"required"`
	District           string   `form:"preferred_district" validate:"required"`
	State              string   `form:"preferred_state" validate:"required"`
	Pincode            string   `form:"preferred_pincode" validate:"required,len=6,numeric"`
	AffiliationType    string   `form:"affiliation_type" validate:"omitempty,oneof=institution organization"`
	AffiliationName    string   `form:"affiliation_name" validate:"required_with=AffiliationType"`
	PreferredLocations []string `form:"preferred_locations" validate:"min=1,max=5"`
}

type preferences struct {
	Budget              int      `form:"budget" validate:"gte=1000"`
	SharingPreference   string   `form:"sharing_preference" validate:"omitempty,oneof=private shared any"`
	PreferredCategories []string `form:"preferred_categories" validate:"min=1,dive,oneof=pg hostel mess tiffin tutor"`
	PreferredAmenities  []string `form:"preferred_amenities" validate:"min=1"`
}

var messages = forms.Messages{
	"full_name.required":         "Full name is required",
	"full_name.personname":       "Full name can only contain letters",
	"dob.required":               "Date of birth is required",
	"dob.datetime":               "Enter a valid date of birth",
	"gender":                     "Gender is required",
	"phone.required":             "Phone is required",
	"phone":                      "Invalid phone number",
	"pincode.required":           "Pincode is required",
	"pincode":                    "Invalid pincode",
	"preferred_city":             "Preferred city is required",
	"preferred_district":         "Preferred district is required",
	"preferred_state":            "Preferred state is required",
	"preferred_pincode.required": "Preferred pincode is required",
	"preferred_pincode":          "Invalid pincode",
	"affiliation_type":           "Choose institution or organization",
	"affiliation_name":           "Tell us the name of your institution or organization",
	"preferred_locations.min":    "Add at least 1 preferred location",
	"preferred_locations.max":    "Add at most 5 preferred locations",
	"budget":                     "Budget must be at least ₹1,000",
	"sharing_preference":         "Choose a sharing preference",
	"preferred_categories.min":   "Select at least one category",
	"preferred_categories":       "Unknown category",
	"preferred_amenities":        "Select at least one amenity",
}

// Steps lists the wizard pages in order
func Steps() []Step {
	return steps
}

// StepAt returns step n, clamped to the wizard's range
func StepAt(n int) Step {
	if n < FirstStep {
		n = FirstStep
	}
	if n > LastStep {
		n = LastStep
	}
	return steps[n-1]
}

// Merge replaces the answers step owns in draft with the submitted ones.
// Unchecked checkboxes are absent from a submission, so owned list fields
// are always replaced, never kept.
func (s Step) Merge(draft, submitted url.Values) url.Values {
	out := url.Values{}
	for k, v := range draft {
		out[k] = v
	}
	for _, f := range s.fields {
		out.Set(f, strings.TrimSpace(submitted.Get(f)))
	}
	for _, f := range s.lists {
		out[f] = list(submitted, f)
	}
	return out
}

// Validate checks the answers step owns and returns one message per
// invalid field
func (s Step) Validate(v *forms.Validator, answers url.Values) map[string]string {
	return forms.Errors(v.Validate(s.bind(answers)), messages)
}

// Validate checks every step, returning the first step with errors, or 0
func Validate(v *forms.Validator, answers url.Values) (int, map[string]string) {
	for _, s := range steps {
		if errs := s.Validate(v, answers); len(errs) > 0 {
			return s.Number, errs
		}
	}
	return 0, nil
}

// Image is an optional profile photo uploaded with the final step
type Image struct {
	Name     string
	Contents []byte
}

// Update builds the final submission carrying every answer
func Update(answers url.Values, image *Image) api.ProfileUpdate {
	update := api.ProfileUpdate{
		Step:        LastStep,
		FinalSubmit: true,
		Fields:      map[string]string{},
		Lists:       map[string][]string{},
	}
	for _, s := range steps {
		for _, f := range s.fields {
			if value := get(answers, f); value != "" {
				update.Fields[f] = value
			}
		}
		for _, f := range s.lists {
			if values := list(answers, f); len(values) > 0 {
				update.Lists[f] = values
			}
		}
	}
	if image != nil && len(image.Contents) > 0 {
		update.ImageName = image.Name
		update.ImageContents = image.Contents
	}
	return update
}

// FromUser pre-fills the wizard with what the account already has
func FromUser(u *api.User) url.Values {
	v := url.Values{}
	if u == nil {
		return v
	}
	set := func(key, value string) {
		if value != "" {
			v.Set(key, value)
		}
	}
	set("full_name", u.FullName)
	set("dob", u.DOB)
	set("gender", u.Gender)
	set("phone", u.Phone)
	set("city", u.City)
	set("district", u.District)
	set("state", u.State)
	set("pincode", u.Pincode)
	set("preferred_city", u.PreferredCity)
	set("preferred_district", u.PreferredDistrict)
	set("preferred_state", u.PreferredState)
	set("preferred_pincode", u.PreferredPincode)
	set("affiliation_type", u.AffiliationType)
	set("affiliation_name", u.AffiliationName)
	if u.Budget != nil {
		v.Set("budget", strconv.Itoa(*u.Budget))
	}
	set("sharing_preference", u.SharingPreference)
	if v.Get("sharing_preference") == "" {
		v.Set("sharing_preference", "any")
	}
	v["preferred_categories"] = u.PreferredCategories
	v["preferred_amenities"] = u.PreferredAmenities
	v["preferred_locations"] = u.PreferredLocations
	return v
}

func get(v url.Values, key string) string {
	return strings.TrimSpace(v.Get(key))
}

// list returns the non-blank values of key, trimmed and de-duplicated
func list(v url.Values, key string) []string {
	var out []string
	seen := map[string]bool{}
	for _, item := range v[key] {
		item = strings.TrimSpace(item)
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}
