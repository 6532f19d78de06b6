package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/loganlanou/campusconnect/internal/api"
	"github.com/loganlanou/campusconnect/internal/report"
	"github.com/loganlanou/campusconnect/views/admin"
	"github.com/loganlanou/campusconnect/views/helpers"
)

// HandleAnalyticsReport downloads the analytics page as a PDF. Sections whose
// fetch failed are marked unavailable instead of failing the download.
func (h *AdminHandler) HandleAnalyticsReport(c echo.Context) error {
	now := time.Now()
	r := analyticsReport(h.analytics(c), now)

	var buf bytes.Buffer
	if err := r.WritePDF(&buf); err != nil {
		slog.Error("failed to build analytics report", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Could not build the report")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="analytics-%s.pdf"`, now.Format("2006-01-02")))
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return c.Blob(http.StatusOK, "application/pdf", buf.Bytes())
}

func analyticsReport(data admin.AnalyticsData, now time.Time) report.Report {
	r := report.Report{
		Title:     "CampusConnect analytics",
		Subtitle:  "Month-over-month growth as of " + helpers.FormatDate(now),
		Generated: now,
	}

	r.Sections = append(r.Sections,
		growthSection("Users", data.Users),
		growthSection("Listings", data.Listings),
	)

	reviews := report.Section{Heading: "Reviews", Unavailable: data.Reviews.Failed}
	if !data.Reviews.Failed {
		s := data.Reviews.Value
		reviews.Rows = append(growthRows(s.GrowthStats),
			report.Row{Label: "Approved", Value: helpers.FormatInt(s.Approved)},
			report.Row{Label: "Pending", Value: helpers.FormatInt(s.Pending)},
			report.Row{Label: "Average rating", Value: helpers.FormatRating(s.AverageRating)},
			report.Row{Label: "Positive", Value: fmt.Sprintf("%.1f%%", s.PositivePercentage)},
		)
	}
	r.Sections = append(r.Sections, reviews)

	byCategory := report.Section{Heading: "Listings by category", Unavailable: data.Breakdown.Failed}
	byState := report.Section{Heading: "Listings by state", Unavailable: data.Breakdown.Failed}
	if !data.Breakdown.Failed {
		for _, cc := range data.Breakdown.Value.ByCategory {
			byCategory.Rows = append(byCategory.Rows, report.Row{Label: helpers.CategoryLabel(cc.Category), Value: helpers.FormatInt(cc.Count)})
		}
		for _, sc := range data.Breakdown.Value.ByState {
			byState.Rows = append(byState.Rows, report.Row{Label: sc.State, Value: helpers.FormatInt(sc.Count)})
		}
	}
	r.Sections = append(r.Sections, byCategory, byState)
	return r
}

func growthSection(heading string, slot admin.Slot[api.GrowthStats]) report.Section {
	if slot.Failed {
		return report.Section{Heading: heading, Unavailable: true}
	}
	return report.Section{Heading: heading, Rows: growthRows(slot.Value)}
}

func growthRows(g api.GrowthStats) []report.Row {
	return []report.Row{
		{Label: "Total", Value: helpers.FormatInt(g.Total)},
		{Label: "This month", Value: helpers.FormatInt(g.ThisMonth)},
		{Label: "Last month", Value: helpers.FormatInt(g.LastMonth)},
		{Label: "Growth", Value: fmt.Sprintf("%+.1f%%", g.Growth)},
	}
}
