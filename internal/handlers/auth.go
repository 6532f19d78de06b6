package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/loganlanou/campusconnect/internal/api"
	"github.com/loganlanou/campusconnect/internal/auth"
	"github.com/loganlanou/campusconnect/internal/forms"
	"github.com/loganlanou/campusconnect/internal/mutation"
	"github.com/loganlanou/campusconnect/internal/session"
	"github.com/loganlanou/campusconnect/views/account"
	"github.com/loganlanou/campusconnect/views/components"
)

// AuthHandler handles authentication routes
type AuthHandler struct {
	*Deps
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(deps *Deps) *AuthHandler {
	return &AuthHandler{Deps: deps}
}

var errNoToken = errors.New("upstream did not issue a session token")

type loginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

type signupForm struct {
	FullName        string `form:"full_name" validate:"required,personname"`
	Email           string `form:"email" validate:"required,email"`
	Phone           string `form:"phone" validate:"required,len=10,numeric"`
	Password        string `form:"password" validate:"required"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=Password"`
	AcceptTerms     string `form:"accept_terms" validate:"required"`
}

var accountMessages = forms.Messages{
	"full_name.personname":     "Full name can only contain letters",
	"phone":                    "Please enter a valid 10 digit phone number",
	"confirm_password.eqfield": "Passwords do not match",
	"accept_terms":             "Please accept the terms and conditions",
}

// formStatus is the status a rejected form is re-rendered with
func formStatus(err error) int {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError {
		return http.StatusUnauthorized
	}
	return http.StatusBadGateway
}

func (h *AuthHandler) HandleLogin(c echo.Context) error {
	return Render(c, account.Login(c, h.meta(c).WithTitle("Sign In"), components.NewForm(nil)))
}

func (h *AuthHandler) HandleLoginSubmit(c echo.Context) error {
	var in loginForm
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	in.Email = strings.TrimSpace(in.Email)

	values, _ := c.FormParams()
	form := components.NewForm(values)
	render := func(status int) error {
		return RenderStatus(c, status, account.Login(c, h.meta(c).WithTitle("Sign In"), form))
	}

	form.Errors = forms.Errors(c.Validate(&in), accountMessages)
	if !form.Valid() {
		session.Notify(c, session.Error("Login failed"))
		return render(http.StatusUnprocessableEntity)
	}

	result, err := h.API.Login(c.Request().Context(), api.Credentials{Email: in.Email, Password: in.Password})
	if err == nil && result.Token == "" {
		err = errNoToken
	}
	if err != nil {
		slog.Info("login failed", "email", in.Email, "error", err)
		session.Notify(c, session.Error(api.UserMessage(err, "Login failed")))
		return render(formStatus(err))
	}

	slog.Info("user logged in", "email", in.Email)
	return h.signedIn(c, result, "Login successful!")
}

func (h *AuthHandler) HandleSignUp(c echo.Context) error {
	return Render(c, account.Signup(c, h.meta(c).WithTitle("Create Account"), components.NewForm(nil)))
}

func (h *AuthHandler) HandleSignUpSubmit(c echo.Context) error {
	var in signupForm
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.TrimSpace(in.Email)

	values, _ := c.FormParams()
	form := components.NewForm(values)
	render := func(status int) error {
		return RenderStatus(c, status, account.Signup(c, h.meta(c).WithTitle("Create Account"), form))
	}

	form.Errors = forms.Errors(c.Validate(&in), accountMessages)
	if !form.Valid() {
		msg := "Signup failed"
		for _, field := range []string{"confirm_password", "accept_terms"} {
			if e := form.Error(field); e != "" {
				msg = e
				break
			}
		}
		session.Notify(c, session.Error(msg))
		return render(http.StatusUnprocessableEntity)
	}

	result, err := h.API.Signup(c.Request().Context(), api.Registration{
		Email:    in.Email,
		Password: in.Password,
		FullName: in.FullName,
		Phone:    in.Phone,
		Role:     string(auth.RoleUser),
	})
	if err != nil {
		slog.Info("signup failed", "email", in.Email, "error", err)
		session.Notify(c, session.Error(api.UserMessage(err, "Signup failed")))
		return render(formStatus(err))
	}

	slog.Info("user signed up", "email", in.Email)
	if result.Token == "" {
		// Account exists but no session came with it
		session.Notify(c, session.Success("Signup successful!"))
		return c.Redirect(http.StatusSeeOther, auth.LoginPath)
	}
	return h.signedIn(c, result, "Signup successful!")
}

// signedIn relays the new token, replaces whatever the cache held for the
// browser and sends it where it was going
func (h *AuthHandler) signedIn(c echo.Context, result *api.AuthResult, message string) error {
	ctx := c.Request().Context()

	h.Resolver.Invalidate(ctx, auth.Token(c))
	if result.User != nil {
		h.Resolver.Prime(ctx, result.Token, result.User)
	} else {
		h.Resolver.Invalidate(ctx, result.Token)
	}
	h.setToken(c, result.Token)

	dest := h.Sessions.PopReturnTo(c)
	if dest == "" {
		dest = auth.HomePath
	}
	if result.User != nil && !result.User.IsVerified {
		dest = auth.ProfileSetupPath
	}

	session.Notify(c, session.Success(message))
	return c.Redirect(http.StatusSeeOther, dest)
}

// HandleLogout clears the session before the upstream has confirmed, so no
// refetch started in the meantime can bring it back. If the upstream refuses
// the previous session is restored.
func (h *AuthHandler) HandleLogout(c echo.Context) error {
	ctx := c.Request().Context()
	token := auth.Token(c)

	state := mutation.New(auth.GetSession(c))
	err := state.Run(ctx,
		func(auth.Session) auth.Session {
			h.Resolver.Cancel(token)
			h.Resolver.Prime(ctx, token, nil)
			return auth.Anonymous()
		},
		func(ctx context.Context, optimistic auth.Session) (auth.Session, error) {
			if token == "" {
				return optimistic, nil
			}
			if err := h.API.Logout(ctx); err != nil && !api.IsUnauthorized(err) {
				return optimistic, err
			}
			return optimistic, nil
		},
		func(prev auth.Session) {
			if prev.User != nil {
				h.Resolver.Prime(ctx, token, prev.User)
				return
			}
			h.Resolver.Invalidate(ctx, token)
		},
	)
	if err != nil {
		slog.Warn("logout failed", "error", err)
		session.Notify(c, session.Error(api.UserMessage(err, "Logout failed")))
		return back(c, auth.HomePath)
	}

	h.Resolver.Invalidate(ctx, token)
	h.clearToken(c)

	slog.Info("user logged out")
	session.Notify(c, session.Success("Logged out successfully!"))
	return c.Redirect(http.StatusSeeOther, auth.LoginPath)
}
