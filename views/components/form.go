package components

import (
	"net/url"
	"slices"

	"github.com/a-h/templ"
	"github.com/loganlanou/campusconnect/views/helpers"
)

// Form is a submitted form being re-rendered: the values the user typed and
// the per-field errors
type Form struct {
	Values url.Values
	Errors map[string]string
}

func NewForm(values url.Values) Form {
	if values == nil {
		values = url.Values{}
	}
	return Form{Values: values, Errors: map[string]string{}}
}

func (f Form) Get(key string) string {
	if f.Values == nil {
		return ""
	}
	return f.Values.Get(key)
}

func (f Form) Has(key, value string) bool {
	return f.Values != nil && slices.Contains(f.Values[key], value)
}

func (f Form) Error(key string) string {
	return f.Errors[key]
}

func (f Form) Valid() bool {
	return len(f.Errors) == 0
}

const (
	inputClass      = "block w-full rounded-lg border border-gray-300 px-3 py-2 text-sm focus:border-indigo-500 focus:outline-none focus:ring-1 focus:ring-indigo-500"
	inputErrorClass = "border-red-400 focus:border-red-500 focus:ring-red-500"
	labelClass      = "mb-1 block text-sm font-medium text-gray-700"
)

// Field describes one input
type Field struct {
	Name        string
	Label       string
	Type        string
	Placeholder string
	Required    bool
	Extra       templ.Attributes
}

// Input renders a labelled input with its error message
func Input(f Form, field Field) templ.Component {
	return helpers.Component(func(h *helpers.Writer) {
		typ := field.Type
		if typ == "" {
			typ = "text"
		}
		errMsg := f.Error(field.Name)

		h.Raw(`<div><label`).Attr("for", field.Name).Raw(` class="`, labelClass, `">`).Text(field.Label).Raw(`</label>`)
		h.Raw(`<input`).Attr("id", field.Name).Attr("name", field.Name).Attr("type", typ)
		if typ != "password" && typ != "file" {
			h.Attr("value", f.Get(field.Name))
		}
		if field.Placeholder != "" {
			h.Attr("placeholder", field.Placeholder)
		}
		if field.Required {
			h.Raw(` required`)
		}
		for k, v := range field.Extra {
			if s, ok := v.(string); ok {
				h.Attr(k, s)
			}
		}
		h.Class(inputClass, helpers.ClassIf(errMsg != "", inputErrorClass)).Raw(`>`)
		h.Component(fieldError(errMsg))
		h.Raw(`</div>`)
	})
}

// Option is one choice of a select, radio group or checkbox group
type Option struct {
	Value string
	Label string
}

func Select(f Form, field Field, options []Option) templ.Component {
	return helpers.Component(func(h *helpers.Writer) {
		errMsg := f.Error(field.Name)
		h.Raw(`<div><label`).Attr("for", field.Name).Raw(` class="`, labelClass, `">`).Text(field.Label).Raw(`</label>`)
		h.Raw(`<select`).Attr("id", field.Name).Attr("name", field.Name)
		if field.Required {
			h.Raw(` required`)
		}
		h.Class(inputClass, helpers.ClassIf(errMsg != "", inputErrorClass)).Raw(`>`)
		h.Raw(`<option value="">`).Text(field.Placeholder).Raw(`</option>`)
		for _, o := range options {
			h.Raw(`<option`).Attr("value", o.Value)
			if f.Get(field.Name) == o.Value {
				h.Raw(` selected`)
			}
			h.Raw(`>`).Text(o.Label).Raw(`</option>`)
		}
		h.Raw(`</select>`)
		h.Component(fieldError(errMsg))
		h.Raw(`</div>`)
	})
}

// Checkboxes renders a multi-choice group posting every checked value under name
func Checkboxes(f Form, name, label string, options []Option) templ.Component {
	return helpers.Component(func(h *helpers.Writer) {
		h.Raw(`<fieldset><legend class="`, labelClass, `">`).Text(label).Raw(`</legend>`)
		h.Raw(`<div class="grid grid-cols-2 gap-2 sm:grid-cols-3">`)
		for _, o := range options {
			h.Raw(`<label class="flex items-center gap-2 text-sm"><input type="checkbox" class="rounded border-gray-300"`).Attr("name", name).Attr("value", o.Value)
			if f.Has(name, o.Value) {
				h.Raw(` checked`)
			}
			h.Raw(`>`).Text(o.Label).Raw(`</label>`)
		}
		h.Raw(`</div>`)
		h.Component(fieldError(f.Error(name)))
		h.Raw(`</fieldset>`)
	})
}

func TextArea(f Form, field Field, rows int) templ.Component {
	return helpers.Component(func(h *helpers.Writer) {
		errMsg := f.Error(field.Name)
		h.Raw(`<div><label`).Attr("for", field.Name).Raw(` class="`, labelClass, `">`).Text(field.Label).Raw(`</label>`)
		h.Raw(`<textarea`).Attr("id", field.Name).Attr("name", field.Name).Attr("rows", helpers.FormatInt(rows))
		if field.Placeholder != "" {
			h.Attr("placeholder", field.Placeholder)
		}
		h.Class(inputClass, helpers.ClassIf(errMsg != "", inputErrorClass)).Raw(`>`)
		h.Text(f.Get(field.Name)).Raw(`</textarea>`)
		h.Component(fieldError(errMsg))
		h.Raw(`</div>`)
	})
}

func fieldError(msg string) templ.Component {
	return helpers.Component(func(h *helpers.Writer) {
		if msg == "" {
			return
		}
		h.Raw(`<p class="mt-1 text-xs text-red-600">`).Text(msg).Raw(`</p>`)
	})
}

// Submit renders the primary button of a form
func Submit(label string, extra ...string) templ.Component {
	return helpers.Component(func(h *helpers.Writer) {
		h.Raw(`<button type="submit"`).Class(append([]string{"w-full rounded-lg bg-indigo-600 px-4 py-2 text-sm font-semibold text-white hover:bg-indigo-700 disabled:opacity-60"}, extra...)...).Raw(`>`)
		h.Text(label).Raw(`</button>`)
	})
}
