package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/loganlanou/campusconnect/internal/api"
	"github.com/loganlanou/campusconnect/internal/auth"
	"github.com/loganlanou/campusconnect/internal/forms"
	"github.com/loganlanou/campusconnect/internal/mutation"
	"github.com/loganlanou/campusconnect/internal/session"
	"github.com/loganlanou/campusconnect/views/components"
	"github.com/loganlanou/campusconnect/views/layout"
	"github.com/loganlanou/campusconnect/views/listing"
	"golang.org/x/sync/errgroup"
)

// ListingHandler serves a listing's page and the actions taken on it
type ListingHandler struct {
	*Deps
}

func NewListingHandler(deps *Deps) *ListingHandler {
	return &ListingHandler{Deps: deps}
}

func listingID(c echo.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	return id, err == nil && id > 0
}

func (h *ListingHandler) notFound(c echo.Context) error {
	return RenderStatus(c, http.StatusNotFound, layout.NotFound(c, h.meta(c),
		"Listing not found", "This listing does not exist or is no longer available."))
}

func (h *ListingHandler) HandleDetail(c echo.Context) error {
	id, ok := listingID(c)
	if !ok {
		return h.notFound(c)
	}
	return h.renderDetail(c, id, components.NewForm(url.Values{"rating": {"5"}}), http.StatusOK)
}

// renderDetail loads the listing with its reviews and bookmark state. The
// reviews and the bookmark state degrade on their own.
func (h *ListingHandler) renderDetail(c echo.Context, id int, reviewForm components.Form, status int) error {
	ctx := c.Request().Context()

	l, err := h.API.Listing(ctx, id)
	if err != nil {
		if api.IsNotFound(err) {
			return h.notFound(c)
		}
		slog.Error("failed to load listing", "listing_id", id, "error", err)
		return RenderStatus(c, http.StatusBadGateway, layout.NotFound(c, h.meta(c),
			"Listing unavailable", "We could not load this listing right now. Please try again shortly."))
	}

	sess := auth.GetSession(c)
	isUser := sess.IsAuthenticated() && sess.Role() == auth.RoleUser

	data := listing.Data{
		Listing:     *l,
		CanBookmark: isUser,
		ReviewForm:  reviewForm,
	}

	var g errgroup.Group
	g.Go(func() error {
		reviews, err := h.API.Reviews(ctx, id)
		if err != nil {
			slog.Warn("failed to load reviews", "listing_id", id, "error", err)
			data.ReviewsFailed = true
			return nil
		}
		data.Reviews = reviews
		return nil
	})
	if isUser {
		g.Go(func() error {
			bookmarked, err := h.API.IsBookmarked(ctx, id)
			if err != nil {
				slog.Warn("failed to load bookmark state", "listing_id", id, "error", err)
				bookmarked = l.IsBookmarked
			}
			data.Bookmarked = bookmarked
			return nil
		})
	}
	_ = g.Wait()

	if isUser && !data.ReviewsFailed {
		for _, r := range data.Reviews {
			if r.User.ID == sess.User.ID {
				data.AlreadyReviewed = true
				break
			}
		}
		data.CanReview = !data.AlreadyReviewed
	}

	return RenderStatus(c, status, listing.Detail(c, h.meta(c).FromListing(*l), data))
}

type bookmarkRequest struct {
	Bookmarked bool `json:"bookmarked" form:"bookmarked"`
}

type bookmarkResponse struct {
	Bookmarked bool   `json:"bookmarked"`
	Level      string `json:"level"`
	Message    string `json:"message"`
}

// HandleToggleBookmark flips the bookmark optimistically. The page script
// posts JSON and swaps the button from the answer; plain form posts get a
// notice and are sent back to the page they came from.
func (h *ListingHandler) HandleToggleBookmark(c echo.Context) error {
	id, ok := listingID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "listing not found")
	}

	var req bookmarkRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}

	var message string
	state := mutation.New(req.Bookmarked)
	err := state.Run(c.Request().Context(),
		func(prev bool) bool { return !prev },
		func(ctx context.Context, _ bool) (bool, error) {
			result, err := h.API.ToggleBookmark(ctx, id)
			if err != nil {
				return false, err
			}
			message = result.Message
			return result.Toggled, nil
		},
		func(prev bool) {
			slog.Debug("bookmark toggle rolled back", "listing_id", id, "bookmarked", prev)
		},
	)

	var notice session.Notice
	switch {
	case err != nil:
		slog.Warn("bookmark toggle failed", "listing_id", id, "error", err)
		notice = session.Error(api.UserMessage(err, "Failed to toggle bookmark"))
	case state.Value():
		notice = session.Success("Bookmark added")
	default:
		notice = session.Info("Bookmark removed")
	}
	slog.Debug("bookmark toggled", "listing_id", id, "bookmarked", state.Value(), "upstream_message", message)

	if wantsJSON(c) {
		status := http.StatusOK
		if err != nil {
			status = http.StatusBadGateway
		}
		return c.JSON(status, bookmarkResponse{
			Bookmarked: state.Value(),
			Level:      string(notice.Level),
			Message:    notice.Message,
		})
	}

	session.Notify(c, notice)
	return back(c, components.ListingURL(id))
}

type reviewSubmission struct {
	Rating  int    `form:"rating" validate:"min=1,max=5"`
	Comment string `form:"comment" validate:"required,words"`
}

var reviewMessages = forms.Messages{
	"rating":           "Rating must be between 1 and 5",
	"comment.required": "Please write a few words about your stay",
	"comment.words":    "Review cannot be only numbers",
}

// HandleSubmitReview posts a review. On failure the listing is rendered
// again with what the user typed.
func (h *ListingHandler) HandleSubmitReview(c echo.Context) error {
	id, ok := listingID(c)
	if !ok {
		return h.notFound(c)
	}
	user, ok := auth.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}

	values, _ := c.FormParams()
	form := components.NewForm(values)

	rating, _ := strconv.Atoi(c.FormValue("rating"))
	in := reviewSubmission{Rating: rating, Comment: strings.TrimSpace(c.FormValue("comment"))}
	form.Errors = forms.Errors(c.Validate(&in), reviewMessages)
	if !form.Valid() {
		session.Notify(c, session.Error("Please fix the errors in your review"))
		return h.renderDetail(c, id, form, http.StatusUnprocessableEntity)
	}

	msg, err := h.API.SubmitReview(c.Request().Context(), api.ReviewInput{
		UserID:    user.ID,
		ListingID: id,
		Rating:    in.Rating,
		Comment:   in.Comment,
	})
	if err != nil {
		slog.Warn("review submission failed", "listing_id", id, "error", err)
		session.Notify(c, session.Error(api.UserMessage(err, "Failed to submit review")))
		return h.renderDetail(c, id, form, http.StatusBadGateway)
	}

	if msg == "" {
		msg = "Review submitted successfully!"
	}
	session.Notify(c, session.Success(msg))
	return c.Redirect(http.StatusSeeOther, components.ListingURL(id)+"#reviews")
}
