package handlers

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/loganlanou/campusconnect/internal/api"
	"github.com/loganlanou/campusconnect/internal/auth"
	"github.com/loganlanou/campusconnect/internal/email"
	"github.com/loganlanou/campusconnect/internal/forms"
	"github.com/loganlanou/campusconnect/internal/session"
	"github.com/loganlanou/campusconnect/views/about"
	"github.com/loganlanou/campusconnect/views/browse"
	"github.com/loganlanou/campusconnect/views/components"
	"github.com/loganlanou/campusconnect/views/contact"
	"github.com/loganlanou/campusconnect/views/home"
	"github.com/loganlanou/campusconnect/views/layout"
	"github.com/oklog/ulid/v2"
)

const (
	featuredCount = 6

	DefaultGuestBrowseLimit = 5
)

// PageHandler serves the public marketing and browse pages
type PageHandler struct {
	*Deps
	guestLimit int
}

func NewPageHandler(deps *Deps, guestLimit int) *PageHandler {
	if guestLimit <= 0 {
		guestLimit = DefaultGuestBrowseLimit
	}
	return &PageHandler{Deps: deps, guestLimit: guestLimit}
}

func (h *PageHandler) HandleHome(c echo.Context) error {
	page, err := h.API.Listings(c.Request().Context(), api.ListingFilter{Page: 1, PageSize: featuredCount})
	if err != nil {
		slog.Warn("failed to load featured listings", "error", err)
	}
	featured := page.Limit(featuredCount).Results
	return Render(c, home.Index(c, h.meta(c), featured))
}

func (h *PageHandler) HandleAbout(c echo.Context) error {
	meta := h.meta(c).WithTitle("About Us").
		WithDescription("CampusConnect helps students find verified accommodation, food and tutors near campus.")
	return Render(c, about.Index(c, meta))
}

const themeMaxAge = 365 * 24 * 60 * 60

// HandleToggleTheme flips the browser between light and dark and remembers
// the choice in a cookie
func (h *PageHandler) HandleToggleTheme(c echo.Context) error {
	next := layout.ThemeOf(c).Toggled()
	c.SetCookie(&http.Cookie{
		Name:     layout.ThemeCookie,
		Value:    string(next),
		Path:     "/",
		MaxAge:   themeMaxAge,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	if wantsJSON(c) {
		return c.JSON(http.StatusOK, map[string]string{"theme": string(next)})
	}
	return back(c, "/")
}

func (h *PageHandler) HandleContact(c echo.Context) error {
	return Render(c, h.contactPage(c, components.NewForm(nil)))
}

type contactForm struct {
	Name     string `form:"name" validate:"required,min=2,personname"`
	Email    string `form:"email" validate:"required,email"`
	Phone    string `form:"phone" validate:"required,len=10,numeric"`
	Category string `form:"category"`
	Message  string `form:"message"`
	Consent  string `form:"consent" validate:"required"`
}

var contactMessages = forms.Messages{
	"name.required":  "Name is required",
	"name":           "Name must contain only letters and be at least 2 characters",
	"email.required": "Email is required",
	"email":          "Please enter valid Email",
	"phone.required": "Phone number is required",
	"phone":          "Please enter valid Phone number",
	"consent":        "You must agree to the terms & privacy policy before submitting",
}

// contactAction is the reCAPTCHA action the contact page executes
const contactAction = "contact"

func (h *PageHandler) contactPage(c echo.Context, form components.Form) templ.Component {
	return contact.Index(c, h.meta(c).WithTitle("Contact Us"), form, h.CaptchaSiteKey)
}

// HandleContactSubmit validates the enquiry and records it in the log.
// The marketplace API has no contact endpoint.
func (h *PageHandler) HandleContactSubmit(c echo.Context) error {
	var in contactForm
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}

	values, _ := c.FormParams()
	form := components.NewForm(values)
	form.Errors = forms.Errors(c.Validate(&in), contactMessages)
	if !form.Valid() {
		session.Notify(c, session.Error("Please enter valid data before submitting."))
		return RenderStatus(c, http.StatusUnprocessableEntity, h.contactPage(c, form))
	}

	if h.Captcha != nil {
		ok, score, err := h.Captcha.IsValid(c.Request().Context(), c.FormValue("g-recaptcha-response"), contactAction, c.RealIP())
		if err != nil {
			slog.Error("recaptcha verification error", "error", err)
		} else if !ok {
			slog.Debug("recaptcha verification failed", "score", score)
		}
		if err != nil || !ok {
			session.Notify(c, session.Error("reCAPTCHA verification failed. Please try again."))
			return RenderStatus(c, http.StatusUnprocessableEntity, h.contactPage(c, form))
		}
	}

	id := ulid.Make().String()
	slog.Info("contact request received",
		"id", id,
		"email", in.Email,
		"category", in.Category,
		"message_length", len(in.Message),
		"ip", c.RealIP())

	if h.Mail != nil {
		h.notifyContact(c, id, in)
	}

	session.Notify(c, session.Success("Form submitted successfully!"))
	return c.Redirect(http.StatusSeeOther, "/contact")
}

// notifyContact queues the support inbox notification. The visitor is told
// the form went through either way; the request is already in the log.
func (h *PageHandler) notifyContact(c echo.Context, id string, in contactForm) {
	msg, err := email.ContactRequestEmail(h.ContactInbox, email.ContactRequestData{
		ID:          id,
		Name:        in.Name,
		Email:       in.Email,
		Phone:       in.Phone,
		Topic:       contact.TopicLabel(in.Category),
		Message:     in.Message,
		IPAddress:   c.RealIP(),
		SubmittedAt: time.Now().Format("January 2, 2006 at 3:04 PM"),
	})
	if err == nil {
		err = h.Mail.Enqueue(msg)
	}
	if err != nil {
		slog.Warn("failed to queue contact notification", "id", id, "error", err)
	}
}

// HandleBrowse lists listings matching the query. Guests get the first page
// cut to the guest limit, whatever the upstream returned.
func (h *PageHandler) HandleBrowse(c echo.Context) error {
	query := c.QueryParams()
	guest := !auth.GetSession(c).IsAuthenticated()

	filter := api.ListingFilter{
		Category: query.Get("category"),
		City:     query.Get("location_city"),
		MinPrice: query.Get("min_price"),
		MaxPrice: query.Get("max_price"),
		Search:   query.Get("search"),
		Page:     pageParam(query),
	}
	if guest {
		filter.Page = 1
	}

	data := browse.Data{Query: query, Guest: guest}
	results, err := h.API.Listings(c.Request().Context(), filter)
	if err != nil {
		slog.Warn("failed to load listings", "error", err)
		data.Failed = true
	} else {
		if guest {
			results = results.Limit(h.guestLimit)
		}
		data.Results = results
	}

	meta := h.meta(c).WithTitle("Browse Listings").
		WithDescription("PGs, hostels, mess, tiffin services and tutors near your campus.")
	return Render(c, browse.Index(c, meta, data))
}

func pageParam(q url.Values) int {
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
