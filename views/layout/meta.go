package layout

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/loganlanou/campusconnect/internal/api"
	"github.com/loganlanou/campusconnect/views/helpers"
)

const (
	siteName           = "CampusConnect"
	defaultDescription = "Verified PGs, hostels, mess, tiffin services and tutors near your campus"
	defaultOGImage     = "/og.png"
)

// PageMeta contains all metadata for a page (SEO, Open Graph, Schema.org)
type PageMeta struct {
	// Basic HTML meta
	Title        string
	Description  string
	Keywords     []string
	CanonicalURL string

	// Open Graph
	OGType        string // "website" or "product"
	OGTitle       string
	OGDescription string
	OGImageURL    string // MUST be absolute URL
	OGURL         string // MUST be absolute URL
	OGSiteName    string

	// Pages that must not be indexed (account area, admin)
	NoIndex bool

	SiteURL string

	// Schema.org JSON-LD (pre-computed)
	ListingSchemaJSON string
}

// NewPageMeta creates a PageMeta with site-wide defaults
// Call this first, then chain .WithTitle() or .FromListing()
func NewPageMeta(c echo.Context, siteURL string) PageMeta {
	canonicalURL := BuildAbsoluteURL(siteURL, c.Request().URL.Path)

	return PageMeta{
		Title:        siteName,
		Description:  defaultDescription,
		Keywords:     []string{"student housing", "PG", "hostel", "mess", "tiffin", "tutor"},
		CanonicalURL: canonicalURL,

		OGType:        "website",
		OGTitle:       siteName,
		OGDescription: defaultDescription,
		OGImageURL:    BuildAbsoluteURL(siteURL, defaultOGImage),
		OGURL:         canonicalURL,
		OGSiteName:    siteName,

		SiteURL: siteURL,
	}
}

// WithTitle sets the page title, suffixed with the site name
func (pm PageMeta) WithTitle(title string) PageMeta {
	pm.Title = title + " - " + siteName
	pm.OGTitle = title
	return pm
}

func (pm PageMeta) WithDescription(description string) PageMeta {
	pm.Description = description
	pm.OGDescription = description
	return pm
}

// Private marks account and admin pages as not indexable
func (pm PageMeta) Private() PageMeta {
	pm.NoIndex = true
	return pm
}

// FromListing updates PageMeta with listing-specific information
func (pm PageMeta) FromListing(listing api.Listing) PageMeta {
	pm = pm.WithTitle(listing.Title)

	description := listing.Description
	if len(description) > 160 {
		description = strings.TrimSpace(description[:157]) + "..."
	}
	if description != "" {
		pm = pm.WithDescription(description)
	}

	pm.Keywords = []string{helpers.CategoryLabel(listing.Category), listing.LocationCity, "student housing"}

	listingURL := fmt.Sprintf("%s/listing/%d", strings.TrimRight(pm.SiteURL, "/"), listing.ID)
	pm.CanonicalURL = listingURL
	pm.OGURL = listingURL
	pm.OGType = "product"

	// The generated card carries the title and price, which a bare photo does not
	pm.OGImageURL = listingURL + "/card.png"

	pm.ListingSchemaJSON = pm.listingSchemaJSON(listing)
	return pm
}

// KeywordsString returns keywords as a comma-separated string
func (pm PageMeta) KeywordsString() string {
	return strings.Join(pm.Keywords, ", ")
}

// BuildAbsoluteURL constructs an absolute URL from a path
func BuildAbsoluteURL(siteURL, path string) string {
	if path == "" {
		return siteURL
	}

	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}

	siteURL = strings.TrimRight(siteURL, "/")

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return siteURL + path
}

func (pm PageMeta) listingSchemaJSON(listing api.Listing) string {
	schema := map[string]any{
		"@context":    "https://schema.org/",
		"@type":       "Product",
		"name":        listing.Title,
		"description": pm.Description,
		"category":    helpers.CategoryLabel(listing.Category),
		"offers": map[string]any{
			"@type":         "Offer",
			"url":           pm.OGURL,
			"priceCurrency": "INR",
			"price":         fmt.Sprintf("%.2f", float64(listing.Price)),
		},
	}

	if cover := listing.CoverImage(); cover != "" {
		schema["image"] = BuildAbsoluteURL(pm.SiteURL, cover)
	} else if pm.OGImageURL != "" {
		schema["image"] = pm.OGImageURL
	}
	if listing.ReviewCount > 0 {
		schema["aggregateRating"] = map[string]any{
			"@type":       "AggregateRating",
			"ratingValue": helpers.FormatRating(listing.Rating),
			"reviewCount": listing.ReviewCount,
		}
	}

	bytes, err := json.Marshal(schema)
	if err != nil {
		return ""
	}
	return string(bytes)
}
