package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Page is the single pagination envelope used throughout the gateway.
// The upstream API answers list endpoints in three shapes: a paginated
// {results, current_page, ...} object, a {data: ...} wrapper around either a
// page or a bare array, and bare arrays or {<name>: [...]} objects. decodePage
// folds all of them into Page.
type Page[T any] struct {
	Results     []T `json:"results"`
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
	TotalItems  int `json:"total_items"`
	PageSize    int `json:"page_size"`
}

func (p Page[T]) HasNext() bool { return p.CurrentPage < p.TotalPages }

func (p Page[T]) HasPrev() bool { return p.CurrentPage > 1 }

// Limit returns a copy of the page holding at most n results. The totals
// are left untouched so callers can still tell how much was withheld.
func (p Page[T]) Limit(n int) Page[T] {
	if n < 0 || len(p.Results) <= n {
		return p
	}
	out := p
	out.Results = append([]T(nil), p.Results[:n]...)
	return out
}

var errEmptyBody = errors.New("empty response body")

func singlePage[T any](items []T) Page[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 1
	if len(items) == 0 {
		totalPages = 0
	}
	return Page[T]{
		Results:     items,
		CurrentPage: 1,
		TotalPages:  totalPages,
		TotalItems:  len(items),
		PageSize:    len(items),
	}
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || string(raw) == "null"
}

// decodePage decodes any of the list envelopes. listKeys names additional
// object keys that may hold the list (for example "reviews").
func decodePage[T any](body []byte, listKeys ...string) (Page[T], error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return Page[T]{}, errEmptyBody
	}

	if body[0] == '[' {
		var items []T
		if err := json.Unmarshal(body, &items); err != nil {
			return Page[T]{}, fmt.Errorf("decode list: %w", err)
		}
		return singlePage(items), nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return Page[T]{}, fmt.Errorf("decode envelope: %w", err)
	}

	if _, ok := obj["results"]; ok {
		var page Page[T]
		if err := json.Unmarshal(body, &page); err != nil {
			return Page[T]{}, fmt.Errorf("decode page: %w", err)
		}
		if page.Results == nil {
			page.Results = []T{}
		}
		if page.CurrentPage == 0 {
			page.CurrentPage = 1
		}
		if page.TotalItems == 0 {
			page.TotalItems = len(page.Results)
		}
		if page.TotalPages == 0 && len(page.Results) > 0 {
			page.TotalPages = 1
		}
		if page.PageSize == 0 {
			page.PageSize = len(page.Results)
		}
		return page, nil
	}

	for _, key := range append([]string{"data"}, listKeys...) {
		if raw, ok := obj[key]; ok && !isNull(raw) {
			return decodePage[T](raw, listKeys...)
		}
	}

	return Page[T]{}, fmt.Errorf("unrecognized list envelope")
}

// decodeData decodes a single object that may or may not be wrapped in
// {data: ...}.
func decodeData[T any](body []byte) (T, error) {
	var zero T
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return zero, errEmptyBody
	}

	if body[0] == '{' {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(body, &obj); err == nil {
			if raw, ok := obj["data"]; ok && !isNull(raw) {
				body = raw
			}
		}
	}

	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		return zero, fmt.Errorf("decode response: %w", err)
	}
	return v, nil
}

// decodeUser accepts a bare user object or one wrapped in {user: ...} or
// {data: ...}.
func decodeUser(body []byte) (*User, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || string(body) == "null" {
		return nil, errEmptyBody
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	for _, key := range []string{"user", "data"} {
		if raw, ok := obj[key]; ok && !isNull(raw) {
			return decodeUser(raw)
		}
	}

	var u User
	if err := json.Unmarshal(body, &u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	if u.ID == 0 && u.Email == "" {
		return nil, fmt.Errorf("decode user: no user in response")
	}
	return &u, nil
}

func decodeMessage(body []byte) string {
	var msg struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &msg); err != nil {
		return ""
	}
	switch {
	case msg.Message != "":
		return msg.Message
	case msg.Detail != "":
		return msg.Detail
	default:
		return msg.Error
	}
}
