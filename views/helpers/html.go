package helpers

import (
	"context"
	"io"
	"strings"

	twmerge "github.com/Oudwins/tailwind-merge-go"
	"github.com/a-h/templ"
)

// Writer accumulates HTML for a component and remembers the first error
type Writer struct {
	ctx context.Context
	w   io.Writer
	err error
}

func NewWriter(ctx context.Context, w io.Writer) *Writer {
	return &Writer{ctx: ctx, w: w}
}

// Raw writes trusted markup as-is
func (h *Writer) Raw(parts ...string) *Writer {
	for _, s := range parts {
		if h.err != nil {
			return h
		}
		_, h.err = io.WriteString(h.w, s)
	}
	return h
}

// Text writes user-visible text, escaped
func (h *Writer) Text(s string) *Writer {
	return h.Raw(templ.EscapeString(s))
}

// Attr writes name="value" with the value escaped
func (h *Writer) Attr(name, value string) *Writer {
	return h.Raw(" ", name, `="`, templ.EscapeString(value), `"`)
}

// URL writes an href/src style attribute, dropping unsafe schemes
func (h *Writer) URL(name, value string) *Writer {
	return h.Attr(name, string(templ.URL(value)))
}

// Class writes a class attribute with conflicting tailwind classes merged
func (h *Writer) Class(classes ...string) *Writer {
	return h.Attr("class", Classes(classes...))
}

// Component renders a nested component in place
func (h *Writer) Component(c templ.Component) *Writer {
	if h.err != nil || c == nil {
		return h
	}
	h.err = c.Render(h.ctx, h.w)
	return h
}

func (h *Writer) Err() error {
	return h.err
}

// Component builds a templ.Component from a function writing through a Writer
func Component(fn func(h *Writer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := NewWriter(ctx, w)
		fn(h)
		return h.Err()
	})
}

// Classes joins class lists, letting later tailwind utilities override
// earlier conflicting ones
func Classes(classes ...string) string {
	return twmerge.Merge(strings.Join(classes, " "))
}

// ClassIf returns class when cond holds
func ClassIf(cond bool, class string) string {
	if cond {
		return class
	}
	return ""
}
