package handlers

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/loganlanou/campusconnect/internal/api"
	"github.com/loganlanou/campusconnect/internal/auth"
	"github.com/loganlanou/campusconnect/views/myspace"
	"golang.org/x/sync/errgroup"
)

// listingFetchLimit bounds concurrent listing lookups for bookmarks that
// arrive without listing details
const listingFetchLimit = 4

// MySpaceHandler serves the student's own area
type MySpaceHandler struct {
	*Deps
}

func NewMySpaceHandler(deps *Deps) *MySpaceHandler {
	return &MySpaceHandler{Deps: deps}
}

func (h *MySpaceHandler) HandleDashboard(c echo.Context) error {
	ctx := c.Request().Context()
	user, _ := auth.CurrentUser(c)

	data := myspace.DashboardData{User: user}
	if user != nil && user.PreferredCity != "" {
		data.SuggestedSearch = "?" + url.Values{"location_city": {user.PreferredCity}}.Encode()
	}

	var g errgroup.Group
	g.Go(func() error {
		count, err := h.API.BookmarkCount(ctx)
		if err != nil {
			slog.Warn("failed to load bookmark count", "error", err)
			data.CountFailed = true
			return nil
		}
		data.BookmarkCount = count
		return nil
	})
	g.Go(func() error {
		recent, err := h.API.RecentBookmarks(ctx)
		if err != nil {
			slog.Warn("failed to load recent bookmarks", "error", err)
			data.RecentFailed = true
			return nil
		}
		data.Recent = h.bookmarkedListings(ctx, recent)
		return nil
	})
	_ = g.Wait()

	meta := h.meta(c).WithTitle("My Space").Private()
	return Render(c, myspace.Dashboard(c, meta, data))
}

func (h *MySpaceHandler) HandleProfile(c echo.Context) error {
	user, _ := auth.CurrentUser(c)
	return Render(c, myspace.Profile(c, h.meta(c).WithTitle("My Profile").Private(), user))
}

func (h *MySpaceHandler) HandleBookmarks(c echo.Context) error {
	ctx := c.Request().Context()

	var data myspace.BookmarksData
	bookmarks, err := h.API.Bookmarks(ctx)
	if err != nil {
		slog.Warn("failed to load bookmarks", "error", err)
		data.Failed = true
	} else {
		data.Listings = h.bookmarkedListings(ctx, bookmarks)
	}

	return Render(c, myspace.Bookmarks(c, h.meta(c).WithTitle("Bookmarks").Private(), data))
}

// bookmarkedListings resolves each bookmark to its listing, in order.
// Listings that cannot be loaded are left out.
func (h *MySpaceHandler) bookmarkedListings(ctx context.Context, bookmarks []api.Bookmark) []api.Listing {
	found := make([]*api.Listing, len(bookmarks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(listingFetchLimit)
	for i, b := range bookmarks {
		if b.ListingInfo != nil {
			found[i] = b.ListingInfo
			continue
		}
		g.Go(func() error {
			l, err := h.API.Listing(gctx, b.Listing)
			if err != nil {
				slog.Warn("failed to load bookmarked listing", "listing_id", b.Listing, "error", err)
				return nil
			}
			found[i] = l
			return nil
		})
	}
	_ = g.Wait()

	listings := make([]api.Listing, 0, len(found))
	for _, l := range found {
		if l != nil {
			listings = append(listings, *l)
		}
	}
	return listings
}
