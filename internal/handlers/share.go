package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/loganlanou/campusconnect/internal/api"
	"github.com/loganlanou/campusconnect/internal/ogimage"
	"github.com/loganlanou/campusconnect/views/components"
	"github.com/loganlanou/campusconnect/views/helpers"
	"golang.org/x/sync/singleflight"
)

const (
	defaultQRSize = 256
	minQRSize     = 128
	maxQRSize     = 1024

	shareCacheControl = "public, max-age=3600"

	siteName = "CampusConnect"
)

// ShareHandler serves the images used when a listing is shared: the Open
// Graph card and a QR code linking to the listing
type ShareHandler struct {
	*Deps
	renders singleflight.Group
}

func NewShareHandler(deps *Deps) *ShareHandler {
	return &ShareHandler{Deps: deps}
}

func (h *ShareHandler) listingURL(id int) string {
	return strings.TrimRight(h.SiteURL, "/") + components.ListingURL(id)
}

// HandleCard renders the 1200x630 share card for a listing
func (h *ShareHandler) HandleCard(c echo.Context) error {
	id, ok := listingID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Listing not found")
	}
	ctx := c.Request().Context()

	// Crawlers fetch the same card in bursts when a link is posted
	v, err, _ := h.renders.Do(strconv.Itoa(id), func() (any, error) {
		l, err := h.API.Listing(ctx, id)
		if err != nil {
			return nil, err
		}
		return ogimage.Render(shareCard(*l, h.listingURL(id)))
	})
	if err != nil {
		if api.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "Listing not found")
		}
		slog.Error("failed to render share card", "listing_id", id, "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "Share image unavailable")
	}

	c.Response().Header().Set(echo.HeaderCacheControl, shareCacheControl)
	return c.Blob(http.StatusOK, "image/png", v.([]byte))
}

// HandleSiteCard renders the share card used by pages without their own
func (h *ShareHandler) HandleSiteCard(c echo.Context) error {
	v, err, _ := h.renders.Do("site", func() (any, error) {
		return ogimage.Render(ogimage.Card{
			Site:     siteName,
			Title:    "Find PGs, hostels, mess and tutors near your campus",
			Category: "Student housing",
			Location: "Verified listings across India",
		})
	})
	if err != nil {
		slog.Error("failed to render site card", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Share image unavailable")
	}

	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=86400")
	return c.Blob(http.StatusOK, "image/png", v.([]byte))
}

// HandleQRCode returns a QR code linking to the listing page. The optional
// size query parameter is clamped to a sane range.
func (h *ShareHandler) HandleQRCode(c echo.Context) error {
	id, ok := listingID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Listing not found")
	}

	size := defaultQRSize
	if n, err := strconv.Atoi(c.QueryParam("size")); err == nil {
		size = min(max(n, minQRSize), maxQRSize)
	}

	png, err := ogimage.QRCode(h.listingURL(id), size)
	if err != nil {
		slog.Error("failed to encode qr code", "listing_id", id, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "QR code unavailable")
	}

	c.Response().Header().Set(echo.HeaderCacheControl, shareCacheControl)
	return c.Blob(http.StatusOK, "image/png", png)
}

func shareCard(l api.Listing, url string) ogimage.Card {
	var location []string
	for _, part := range []string{l.LocationCity, l.LocationState} {
		if part != "" {
			location = append(location, part)
		}
	}

	card := ogimage.Card{
		Site:     siteName,
		Title:    l.Title,
		Category: helpers.CategoryLabel(l.Category),
		Location: strings.Join(location, ", "),
		URL:      url,
	}
	if l.Price > 0 {
		// The card font has no rupee glyph
		card.Price = strings.Replace(helpers.FormatPrice(l.Price), "₹", "Rs. ", 1) + " / month"
	}
	return card
}
