package service

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/loganlanou/campusconnect/internal/auth"
	"github.com/loganlanou/campusconnect/internal/session"
	"github.com/loganlanou/campusconnect/views/layout"
)

// Access names the requirement set a route is guarded with
type Access int

const (
	// Public pages render for everyone
	Public Access = iota
	// Browsable pages admit guests but send unverified users to profile setup
	Browsable
	// GuestOnly pages send signed-in users home
	GuestOnly
	// SetupOnly is the profile wizard: signed in and not yet verified
	SetupOnly
	// UserArea needs a verified student account
	UserArea
	// AdminArea needs a verified admin account
	AdminArea
)

var accessRequirements = map[Access]auth.Requirements{
	Public:    {},
	Browsable: {Verified: true},
	GuestOnly: {GuestOnly: true},
	SetupOnly: {SetupOnly: true},
	UserArea:  {Auth: true, Verified: true, Role: auth.RoleUser},
	AdminArea: {Auth: true, Verified: true, Role: auth.RoleAdmin},
}

func (a Access) Requirements() auth.Requirements {
	return accessRequirements[a]
}

// Route is one entry of the route table
type Route struct {
	Method  string
	Path    string
	Access  Access
	Layout  layout.Kind
	Handler echo.HandlerFunc
}

func (s *Service) routes() []Route {
	return []Route{
		// Marketing pages
		{http.MethodGet, "/", Public, layout.Plain, s.pages.HandleHome},
		{http.MethodGet, "/about", Public, layout.Plain, s.pages.HandleAbout},
		{http.MethodGet, "/contact", Public, layout.Plain, s.pages.HandleContact},
		{http.MethodPost, "/contact", Public, layout.Plain, s.pages.HandleContactSubmit},

		// Listings
		{http.MethodGet, "/browse", Browsable, layout.Plain, s.pages.HandleBrowse},
		{http.MethodGet, "/listing/:id", Browsable, layout.Plain, s.listings.HandleDetail},
		{http.MethodPost, "/listing/:id/bookmark", UserArea, layout.Plain, s.listings.HandleToggleBookmark},
		{http.MethodPost, "/listing/:id/reviews", UserArea, layout.Plain, s.listings.HandleSubmitReview},
		{http.MethodGet, "/listing/:id/card.png", Public, layout.Plain, s.share.HandleCard},
		{http.MethodGet, "/listing/:id/qr.png", Public, layout.Plain, s.share.HandleQRCode},
		{http.MethodGet, "/og.png", Public, layout.Plain, s.share.HandleSiteCard},

		// Account
		{http.MethodGet, auth.LoginPath, GuestOnly, layout.Plain, s.auth.HandleLogin},
		{http.MethodPost, auth.LoginPath, GuestOnly, layout.Plain, s.auth.HandleLoginSubmit},
		{http.MethodGet, "/signup", GuestOnly, layout.Plain, s.auth.HandleSignUp},
		{http.MethodPost, "/signup", GuestOnly, layout.Plain, s.auth.HandleSignUpSubmit},
		{http.MethodPost, "/logout", Public, layout.Plain, s.auth.HandleLogout},
		{http.MethodPost, "/theme", Public, layout.Plain, s.pages.HandleToggleTheme},
		{http.MethodGet, auth.ProfileSetupPath, SetupOnly, layout.Plain, s.profile.HandleSetup},
		{http.MethodPost, auth.ProfileSetupPath, SetupOnly, layout.Plain, s.profile.HandleSetupSubmit},

		// Student area
		{http.MethodGet, "/mySpace", UserArea, layout.Sidebar, s.mySpace.HandleDashboard},
		{http.MethodGet, "/mySpace/profile", UserArea, layout.Sidebar, s.mySpace.HandleProfile},
		{http.MethodGet, "/mySpace/bookmarks", UserArea, layout.Sidebar, s.mySpace.HandleBookmarks},

		// Admin area
		{http.MethodGet, "/admin", AdminArea, layout.Sidebar, s.admin.HandlePanel},
		{http.MethodGet, "/admin/users", AdminArea, layout.Sidebar, s.admin.HandleUsers},
		{http.MethodPost, "/admin/users/:id/delete", AdminArea, layout.Sidebar, s.admin.HandleDeleteUser},
		{http.MethodGet, "/admin/listings", AdminArea, layout.Sidebar, s.admin.HandleListings},
		{http.MethodGet, "/admin/reviews", AdminArea, layout.Sidebar, s.admin.HandleReviews},
		{http.MethodPost, "/admin/reviews/:id/approve", AdminArea, layout.Sidebar, s.admin.HandleApproveReview},
		{http.MethodGet, "/admin/analytics", AdminArea, layout.Sidebar, s.admin.HandleAnalytics},
		{http.MethodPost, "/admin/analytics/sentiment", AdminArea, layout.Sidebar, s.admin.HandleSentiment},
		{http.MethodGet, "/admin/analytics/report.pdf", AdminArea, layout.Plain, s.admin.HandleAnalyticsReport},
	}
}

func (s *Service) RegisterRoutes(e *echo.Echo) {
	e.Validator = s.deps.Validator
	e.HTTPErrorHandler = s.deps.HandleError

	// Static files and probes skip session resolution
	e.Static("/public", "public")
	e.GET("/health", s.handleHealth)

	app := e.Group("", session.Middleware(s.deps.Sessions), auth.LoadSession(s.deps.Resolver, s.policy))
	for _, r := range s.routes() {
		guard := auth.Guard(s.policy, s.deps.Sessions, r.Access.Requirements(), s.deps.Waiting, s.deps.SessionUnavailable)
		app.Add(r.Method, r.Path, r.Handler, layout.Use(r.Layout), guard)
	}
}
