package auth

import (
	"fmt"
	"log/slog"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/loganlanou/campusconnect/internal/session"
)

const (
	LoginPath        = "/login"
	ProfileSetupPath = "/profileSetup"
	HomePath         = "/"

	AuthNoticeID    = "auth-error"
	ProfileNoticeID = "profile-toast"
)

// Each role may enter exactly its own area.
const areaModel = `
[request_definition]
r = sub, obj

[policy_definition]
p = sub, obj

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj
`

var areaPolicies = [][]string{
	{string(RoleAdmin), "area:" + string(RoleAdmin)},
	{string(RoleUser), "area:" + string(RoleUser)},
}

// Requirements is what a route asks of the session
type Requirements struct {
	Auth      bool
	Verified  bool
	Role      Role
	GuestOnly bool
	SetupOnly bool
}

// NeedsSession reports whether the route cannot be decided for a guest
// without knowing who the browser is.
func (r Requirements) NeedsSession() bool {
	return r.Auth || r.Role != "" || r.SetupOnly
}

type DecisionKind int

const (
	Allow DecisionKind = iota
	Redirect
	Wait
	Unavailable
)

func (k DecisionKind) String() string {
	switch k {
	case Allow:
		return "allow"
	case Redirect:
		return "redirect"
	case Wait:
		return "wait"
	case Unavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Decision is the outcome of checking a session against a route
type Decision struct {
	Kind         DecisionKind
	To           string
	Notice       *session.Notice
	RememberPath string
}

// Policy is the single authorization decision point for every route
type Policy struct {
	enforcer *casbin.Enforcer
}

func NewPolicy() (*Policy, error) {
	m, err := model.NewModelFromString(areaModel)
	if err != nil {
		return nil, fmt.Errorf("load area model: %w", err)
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create enforcer: %w", err)
	}
	if _, err := e.AddPolicies(areaPolicies); err != nil {
		return nil, fmt.Errorf("add area policies: %w", err)
	}
	return &Policy{enforcer: e}, nil
}

// CanEnter reports whether role may use the area owned by areaRole
func (p *Policy) CanEnter(role, areaRole Role) bool {
	if !role.Valid() {
		return false
	}
	ok, err := p.enforcer.Enforce(string(role), "area:"+string(areaRole))
	if err != nil {
		slog.Error("area enforcement failed", "role", role, "area", areaRole, "error", err)
		return false
	}
	return ok
}

// Decide checks s against req for a request to path. The checks run in a
// fixed order: pending session, failed session, setup page, guest-only
// pages, authentication, verification, role.
func (p *Policy) Decide(s Session, req Requirements, path string) Decision {
	switch s.State {
	case StateLoading:
		return Decision{Kind: Wait}
	case StateFailed:
		if req.NeedsSession() {
			return Decision{Kind: Unavailable}
		}
		// Public and guest-friendly pages stay usable while the API is down
		s = Anonymous()
	}

	if req.SetupOnly {
		switch {
		case !s.IsAuthenticated():
			return loginRedirect(path)
		case s.IsVerified():
			return Decision{Kind: Redirect, To: HomePath}
		default:
			return Decision{Kind: Allow}
		}
	}

	if req.GuestOnly {
		if s.IsAuthenticated() {
			return Decision{Kind: Redirect, To: HomePath}
		}
		return Decision{Kind: Allow}
	}

	if req.Auth && !s.IsAuthenticated() {
		return loginRedirect(path)
	}

	if req.Verified && s.IsAuthenticated() && !s.IsVerified() {
		notice := session.Info("Complete profile setup first").WithID(ProfileNoticeID)
		return Decision{Kind: Redirect, To: ProfileSetupPath, Notice: &notice}
	}

	if req.Role != "" {
		if !s.IsAuthenticated() {
			return loginRedirect(path)
		}
		if !p.CanEnter(s.Role(), req.Role) {
			return Decision{Kind: Redirect, To: HomePath}
		}
	}

	return Decision{Kind: Allow}
}

func loginRedirect(path string) Decision {
	notice := session.Error("Please login to access this page").WithID(AuthNoticeID)
	return Decision{
		Kind:         Redirect,
		To:           LoginPath,
		Notice:       &notice,
		RememberPath: path,
	}
}

// Link is one navigation entry
type Link struct {
	Label string
	Href  string
}

// Links is the navigation a session is entitled to
type Links struct {
	Main    []Link
	Account []Link
	Area    []Link
	Guest   bool
}

var (
	mainLinks = []Link{
		{Label: "Home", Href: "/"},
		{Label: "Browse", Href: "/browse"},
		{Label: "About", Href: "/about"},
		{Label: "Contact", Href: "/contact"},
	}

	userAreaLinks = []Link{
		{Label: "Dashboard", Href: "/mySpace"},
		{Label: "Profile", Href: "/mySpace/profile"},
		{Label: "Bookmarks", Href: "/mySpace/bookmarks"},
	}

	adminAreaLinks = []Link{
		{Label: "Admin Panel", Href: "/admin"},
		{Label: "Users", Href: "/admin/users"},
		{Label: "Listings", Href: "/admin/listings"},
		{Label: "Reviews", Href: "/admin/reviews"},
		{Label: "Analytics", Href: "/admin/analytics"},
	}
)

// Links returns the navbar and sidebar entries for s. It asks the same area
// policy the route guard uses, so a link is shown only if following it
// would be allowed.
func (p *Policy) Links(s Session) Links {
	links := Links{Main: mainLinks}

	// Nothing account-specific until the session is known
	if s.State == StateLoading {
		return links
	}

	if !s.IsAuthenticated() {
		links.Guest = true
		return links
	}

	if !s.IsVerified() {
		links.Account = []Link{{Label: "Complete Profile", Href: ProfileSetupPath}}
		return links
	}

	switch {
	case p.CanEnter(s.Role(), RoleAdmin):
		links.Account = []Link{{Label: "Admin Panel", Href: "/admin"}}
		links.Area = adminAreaLinks
	case p.CanEnter(s.Role(), RoleUser):
		links.Account = []Link{{Label: "Dashboard", Href: "/mySpace"}, {Label: "Profile", Href: "/mySpace/profile"}}
		links.Area = userAreaLinks
	}
	return links
}
