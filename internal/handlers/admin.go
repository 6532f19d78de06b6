package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/loganlanou/campusconnect/internal/api"
	"github.com/loganlanou/campusconnect/internal/auth"
	"github.com/loganlanou/campusconnect/internal/session"
	"github.com/loganlanou/campusconnect/views/admin"
	"golang.org/x/sync/errgroup"
)

// AdminHandler serves the admin area
type AdminHandler struct {
	*Deps
}

func NewAdminHandler(deps *Deps) *AdminHandler {
	return &AdminHandler{Deps: deps}
}

// fill runs fetch on g and records the outcome in slot. A failure only
// marks its own slot.
func fill[T any](g *errgroup.Group, ctx context.Context, name string, slot *admin.Slot[T], fetch func(context.Context) (T, error)) {
	g.Go(func() error {
		v, err := fetch(ctx)
		if err != nil {
			slog.Warn("admin stat unavailable", "stat", name, "error", err)
			slot.Failed = true
			return nil
		}
		slot.Value = v
		return nil
	})
}

// HandlePanel fetches the five dashboard figures concurrently
func (h *AdminHandler) HandlePanel(c echo.Context) error {
	ctx := c.Request().Context()

	var data admin.PanelData
	var g errgroup.Group
	fill(&g, ctx, "users", &data.Users, h.API.UserStats)
	fill(&g, ctx, "listings", &data.Listings, h.API.ListingStats)
	fill(&g, ctx, "reviews", &data.Reviews, h.API.ReviewStats)
	fill(&g, ctx, "recent_reviews", &data.RecentReviews, h.API.RecentReviews)
	fill(&g, ctx, "recent_users", &data.RecentUsers, h.API.RecentUsers)
	_ = g.Wait()

	return Render(c, admin.Panel(c, h.meta(c).WithTitle("Admin Dashboard").Private(), data))
}

func (h *AdminHandler) renderUsers(c echo.Context, status int, errs map[int]string) error {
	data := admin.UsersData{Errors: errs}
	users, err := h.API.Users(c.Request().Context())
	if err != nil {
		slog.Warn("failed to load users", "error", err)
		data.Failed = true
	}
	data.Users = users
	return RenderStatus(c, status, admin.Users(c, h.meta(c).WithTitle("Users").Private(), data))
}

func (h *AdminHandler) HandleUsers(c echo.Context) error {
	return h.renderUsers(c, http.StatusOK, nil)
}

// HandleDeleteUser deletes an account once the admin has typed its full
// name exactly
func (h *AdminHandler) HandleDeleteUser(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}

	users, err := h.API.Users(ctx)
	if err != nil {
		slog.Warn("failed to load users for delete", "error", err)
		session.Notify(c, session.Error("Failed to delete user."))
		return c.Redirect(http.StatusSeeOther, "/admin/users")
	}
	var target *api.User
	for i := range users {
		if users[i].ID == id {
			target = &users[i]
			break
		}
	}
	if target == nil {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}

	if me, ok := auth.CurrentUser(c); ok && me.ID == id {
		return h.renderUsers(c, http.StatusUnprocessableEntity, map[int]string{id: "You cannot delete your own account."})
	}
	if strings.TrimSpace(c.FormValue("confirm_name")) != target.FullName {
		return h.renderUsers(c, http.StatusUnprocessableEntity, map[int]string{id: "Full name does not match. User not deleted."})
	}

	if err := h.API.DeleteUser(ctx, id); err != nil {
		slog.Warn("failed to delete user", "user_id", id, "error", err)
		session.Notify(c, session.Error(api.UserMessage(err, "Failed to delete user.")))
		return c.Redirect(http.StatusSeeOther, "/admin/users")
	}

	slog.Info("user deleted", "user_id", id)
	session.Notify(c, session.Success(fmt.Sprintf("User %s deleted successfully!", target.FullName)))
	return c.Redirect(http.StatusSeeOther, "/admin/users")
}

func (h *AdminHandler) HandleListings(c echo.Context) error {
	var data admin.ListingsData
	listings, err := h.API.AllListings(c.Request().Context())
	if err != nil {
		slog.Warn("failed to load listings", "error", err)
		data.Failed = true
	}
	data.Listings = listings
	return Render(c, admin.Listings(c, h.meta(c).WithTitle("Listings").Private(), data))
}

func (h *AdminHandler) HandleReviews(c echo.Context) error {
	query := c.QueryParams()
	rating, _ := strconv.Atoi(query.Get("rating"))
	filter := api.ReviewFilter{
		PendingOnly: query.Get("pending") != "",
		Username:    strings.TrimSpace(query.Get("username")),
		Listing:     strings.TrimSpace(query.Get("listing")),
		Rating:      rating,
	}

	data := admin.ReviewsData{Query: query}
	reviews, err := h.API.AllReviews(c.Request().Context(), filter)
	if err != nil {
		slog.Warn("failed to load reviews", "error", err)
		data.Failed = true
	}
	data.Reviews = reviews
	return Render(c, admin.Reviews(c, h.meta(c).WithTitle("Reviews").Private(), data))
}

func (h *AdminHandler) HandleApproveReview(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "review not found")
	}

	if err := h.API.ApproveReview(c.Request().Context(), id); err != nil {
		slog.Warn("failed to approve review", "review_id", id, "error", err)
		session.Notify(c, session.Error(api.UserMessage(err, "Failed to approve review")))
	} else {
		session.Notify(c, session.Success("Review approved"))
	}
	return back(c, "/admin/reviews")
}

func (h *AdminHandler) analytics(c echo.Context) admin.AnalyticsData {
	ctx := c.Request().Context()

	var data admin.AnalyticsData
	var g errgroup.Group
	fill(&g, ctx, "users", &data.Users, h.API.UserStats)
	fill(&g, ctx, "listings", &data.Listings, h.API.ListingStats)
	fill(&g, ctx, "reviews", &data.Reviews, h.API.ReviewStats)
	fill(&g, ctx, "breakdown", &data.Breakdown, h.API.AdminStats)
	_ = g.Wait()
	return data
}

func (h *AdminHandler) HandleAnalytics(c echo.Context) error {
	return Render(c, admin.Analytics(c, h.meta(c).WithTitle("Analytics").Private(), h.analytics(c)))
}

// HandleSentiment runs a comment through the sentiment model and shows the
// result under the analytics
func (h *AdminHandler) HandleSentiment(c echo.Context) error {
	comment := strings.TrimSpace(c.FormValue("comment"))

	data := h.analytics(c)
	data.Comment = comment

	status := http.StatusOK
	if comment == "" {
		data.CheckErr = "Please enter a comment to analyze"
		status = http.StatusUnprocessableEntity
	} else {
		sentiment, err := h.API.PredictSentiment(c.Request().Context(), comment)
		if err != nil {
			slog.Warn("sentiment check failed", "error", err)
			data.CheckErr = api.UserMessage(err, "Unable to analyze sentiment. Please try again.")
			status = http.StatusBadGateway
		}
		data.Sentiment = sentiment
	}

	return RenderStatus(c, status, admin.Analytics(c, h.meta(c).WithTitle("Analytics").Private(), data))
}
