package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultTimeout = 10 * time.Second

	// TokenCookie is the upstream session cookie, relayed unchanged between
	// the browser and the API.
	TokenCookie = "token"

	maxResponseBytes = 4 << 20
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the marketplace API at baseURL. A zero
// timeout means DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

type contextKey int

const (
	tokenKey contextKey = iota
	requestIDKey
)

// WithToken returns a context that makes every call on it authenticate as
// the browser holding token.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey).(string)
	return token
}

// WithRequestID attaches the gateway request id so upstream logs can be
// correlated with ours.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func requestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}

type response struct {
	body    []byte
	cookies []*http.Cookie
}

func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) (*response, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID(ctx))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := TokenFromContext(ctx); token != "" {
		req.AddCookie(&http.Cookie{Name: TokenCookie, Value: token})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, newAPIError(resp.StatusCode, data)
	}

	return &response{body: data, cookies: resp.Cookies()}, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload any) (*response, error) {
	var body io.Reader
	contentType := ""
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
		contentType = "application/json"
	}
	return c.doRequest(ctx, method, path, nil, body, contentType)
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, path, query, nil, "")
	if err != nil {
		return nil, err
	}
	return resp.body, nil
}

func tokenFrom(cookies []*http.Cookie) string {
	for _, cookie := range cookies {
		if cookie.Name == TokenCookie {
			return cookie.Value
		}
	}
	return ""
}

// CurrentUser fetches the user the context token belongs to. A missing or
// expired token surfaces as an error for which IsUnauthorized is true.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	body, err := c.get(ctx, "/auth/user/", nil)
	if err != nil {
		return nil, err
	}
	return decodeUser(body)
}

func (c *Client) authenticate(ctx context.Context, path string, payload any) (*AuthResult, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, path, payload)
	if err != nil {
		return nil, err
	}

	result := &AuthResult{
		Message: decodeMessage(resp.body),
		Token:   tokenFrom(resp.cookies),
	}
	if user, err := decodeUser(resp.body); err == nil {
		result.User = user
	}
	return result, nil
}

func (c *Client) Login(ctx context.Context, creds Credentials) (*AuthResult, error) {
	return c.authenticate(ctx, "/auth/login/", creds)
}

func (c *Client) Signup(ctx context.Context, reg Registration) (*AuthResult, error) {
	return c.authenticate(ctx, "/auth/signup/", reg)
}

func (c *Client) Logout(ctx context.Context) error {
	_, err := c.doJSON(ctx, http.MethodPost, "/auth/logout/", nil)
	return err
}

// UpdateProfile sends one profile wizard step as multipart form data.
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*ProfileResult, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	// The API treats any non-empty is_final_submit as true
	fields := map[string]string{
		"step": strconv.Itoa(update.Step),
	}
	if update.FinalSubmit {
		fields["is_final_submit"] = "true"
	}
	for k, v := range update.Fields {
		fields[k] = v
	}
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("write field %s: %w", k, err)
		}
	}
	for k, values := range update.Lists {
		for _, v := range values {
			if err := writer.WriteField(k, v); err != nil {
				return nil, fmt.Errorf("write field %s: %w", k, err)
			}
		}
	}

	if len(update.ImageContents) > 0 {
		part, err := writer.CreateFormFile("profileImage", update.ImageName)
		if err != nil {
			return nil, fmt.Errorf("create form file: %w", err)
		}
		if _, err := part.Write(update.ImageContents); err != nil {
			return nil, fmt.Errorf("write image: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close writer: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPut, "/auth/profile/", nil, &buf, writer.FormDataContentType())
	if err != nil {
		return nil, err
	}

	return decodeProfileResult(resp.body)
}

// The profile endpoint nests its result: {message, user: {user: {...}, is_verified}}.
func decodeProfileResult(body []byte) (*ProfileResult, error) {
	var outer struct {
		Message string          `json:"message"`
		User    json.RawMessage `json:"user"`
	}
	if err := json.Unmarshal(body, &outer); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	result := &ProfileResult{Message: outer.Message}
	if isNull(outer.User) {
		return result, nil
	}

	var inner struct {
		User       *User `json:"user"`
		IsVerified *bool `json:"is_verified"`
	}
	if err := json.Unmarshal(outer.User, &inner); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if inner.User != nil {
		result.User = inner.User
	} else if user, err := decodeUser(outer.User); err == nil {
		result.User = user
	}

	switch {
	case inner.IsVerified != nil:
		result.IsVerified = *inner.IsVerified
	case result.User != nil:
		result.IsVerified = result.User.IsVerified
	}
	if result.User != nil {
		result.User.IsVerified = result.IsVerified
	}
	return result, nil
}

func (f ListingFilter) values() url.Values {
	q := url.Values{}
	set := func(key, value string) {
		if value = strings.TrimSpace(value); value != "" {
			q.Set(key, value)
		}
	}
	set("category", f.Category)
	set("location_city", f.City)
	set("min_price", f.MinPrice)
	set("max_price", f.MaxPrice)
	set("search", f.Search)
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(f.PageSize))
	}
	return q
}

func (c *Client) Listings(ctx context.Context, filter ListingFilter) (Page[Listing], error) {
	body, err := c.get(ctx, "/listings/", filter.values())
	if err != nil {
		return Page[Listing]{}, err
	}
	return decodePage[Listing](body, "listings")
}

// AllListings returns every listing unpaginated, for the admin table
func (c *Client) AllListings(ctx context.Context) ([]Listing, error) {
	body, err := c.get(ctx, "/listings/allListings/", nil)
	if err != nil {
		return nil, err
	}
	page, err := decodePage[Listing](body, "listings")
	if err != nil {
		return nil, err
	}
	return page.Results, nil
}

func (c *Client) Listing(ctx context.Context, id int) (*Listing, error) {
	body, err := c.get(ctx, fmt.Sprintf("/listings/%d/", id), nil)
	if err != nil {
		return nil, err
	}
	listing, err := decodeData[Listing](body)
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// ToggleBookmark flips the bookmark on a listing. The upstream reports the
// new state either at the top level (created) or under data (removed).
func (c *Client) ToggleBookmark(ctx context.Context, listingID int) (*ToggleResult, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/bookmarks/toggle/", map[string]int{"listing": listingID})
	if err != nil {
		return nil, err
	}

	var payload struct {
		Message string `json:"message"`
		Toggled *bool  `json:"toggled"`
		Data    struct {
			Toggled *bool `json:"toggled"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.body, &payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	result := &ToggleResult{Message: payload.Message}
	switch {
	case payload.Toggled != nil:
		result.Toggled = *payload.Toggled
	case payload.Data.Toggled != nil:
		result.Toggled = *payload.Data.Toggled
	default:
		return nil, fmt.Errorf("decode response: toggle state missing")
	}
	return result, nil
}

func (c *Client) Bookmarks(ctx context.Context) ([]Bookmark, error) {
	body, err := c.get(ctx, "/bookmarks/", nil)
	if err != nil {
		return nil, err
	}
	page, err := decodePage[Bookmark](body, "bookmarks")
	if err != nil {
		return nil, err
	}
	return page.Results, nil
}

// IsBookmarked reports whether the current user has bookmarked the listing
func (c *Client) IsBookmarked(ctx context.Context, listingID int) (bool, error) {
	body, err := c.get(ctx, "/bookmarks/", url.Values{"listing": {strconv.Itoa(listingID)}})
	if err != nil {
		return false, err
	}
	page, err := decodePage[Bookmark](body, "bookmarks")
	if err != nil {
		return false, err
	}
	return len(page.Results) > 0, nil
}

func (c *Client) RecentBookmarks(ctx context.Context) ([]Bookmark, error) {
	body, err := c.get(ctx, "/bookmarks/user/recent", nil)
	if err != nil {
		return nil, err
	}
	page, err := decodePage[Bookmark](body, "bookmarks")
	if err != nil {
		return nil, err
	}
	return page.Results, nil
}

func (c *Client) BookmarkCount(ctx context.Context) (int, error) {
	body, err := c.get(ctx, "/bookmarks/user/count/", nil)
	if err != nil {
		return 0, err
	}
	var payload struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	return payload.Count, nil
}

func (c *Client) Reviews(ctx context.Context, listingID int) ([]Review, error) {
	body, err := c.get(ctx, "/reviews/", url.Values{"listing": {strconv.Itoa(listingID)}})
	if err != nil {
		return nil, err
	}
	page, err := decodePage[Review](body, "reviews")
	if err != nil {
		return nil, err
	}
	return page.Results, nil
}

// AllReviews lists the reviews matching filter, for moderation
func (c *Client) AllReviews(ctx context.Context, filter ReviewFilter) ([]Review, error) {
	var q url.Values
	if filter.PendingOnly {
		q = url.Values{"unApproved": {"true"}}
	}
	body, err := c.get(ctx, "/reviews/", q)
	if err != nil {
		return nil, err
	}
	page, err := decodePage[Review](body, "reviews")
	if err != nil {
		return nil, err
	}

	reviews := make([]Review, 0, len(page.Results))
	for _, r := range page.Results {
		if filter.Match(r) {
			reviews = append(reviews, r)
		}
	}
	return reviews, nil
}

// PredictSentiment asks the review classifier about a comment (admin only)
func (c *Client) PredictSentiment(ctx context.Context, comment string) (*Sentiment, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/ml/predict/", map[string]string{"comment": comment})
	if err != nil {
		return nil, err
	}
	sentiment, err := decodeData[Sentiment](resp.body)
	if err != nil {
		return nil, err
	}
	return &sentiment, nil
}

func (c *Client) SubmitReview(ctx context.Context, input ReviewInput) (string, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/reviews/create/", input)
	if err != nil {
		return "", err
	}
	return decodeMessage(resp.body), nil
}

func (c *Client) ApproveReview(ctx context.Context, id int) error {
	_, err := c.doJSON(ctx, http.MethodPatch, fmt.Sprintf("/reviews/admin/%d/approve/", id), map[string]bool{"is_approved": true})
	return err
}

func (c *Client) Users(ctx context.Context) ([]User, error) {
	body, err := c.get(ctx, "/auth/users/", nil)
	if err != nil {
		return nil, err
	}
	page, err := decodePage[User](body, "users")
	if err != nil {
		return nil, err
	}
	return page.Results, nil
}

func (c *Client) DeleteUser(ctx context.Context, id int) error {
	_, err := c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/auth/users/delete/%d/", id), nil, nil, "")
	return err
}

func (c *Client) UserStats(ctx context.Context) (GrowthStats, error) {
	return getData[GrowthStats](ctx, c, "/auth/userStats/")
}

func (c *Client) ListingStats(ctx context.Context) (GrowthStats, error) {
	return getData[GrowthStats](ctx, c, "/listings/listingsStats/")
}

func (c *Client) ReviewStats(ctx context.Context) (ReviewStats, error) {
	return getData[ReviewStats](ctx, c, "/reviews/reviewsStats/")
}

func (c *Client) AdminStats(ctx context.Context) (AdminStats, error) {
	return getData[AdminStats](ctx, c, "/listings/adminStats/")
}

func (c *Client) RecentReviews(ctx context.Context) ([]Review, error) {
	body, err := c.get(ctx, "/reviews/recentReviews/", nil)
	if err != nil {
		return nil, err
	}
	page, err := decodePage[Review](body, "reviews")
	if err != nil {
		return nil, err
	}
	return page.Results, nil
}

func (c *Client) RecentUsers(ctx context.Context) ([]User, error) {
	body, err := c.get(ctx, "/auth/recentUsers/", nil)
	if err != nil {
		return nil, err
	}
	page, err := decodePage[User](body, "users")
	if err != nil {
		return nil, err
	}
	return page.Results, nil
}

func getData[T any](ctx context.Context, c *Client, path string) (T, error) {
	body, err := c.get(ctx, path, nil)
	if err != nil {
		var zero T
		return zero, err
	}
	return decodeData[T](body)
}
