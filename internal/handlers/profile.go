package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/loganlanou/campusconnect/internal/api"
	"github.com/loganlanou/campusconnect/internal/auth"
	"github.com/loganlanou/campusconnect/internal/profile"
	"github.com/loganlanou/campusconnect/internal/session"
	"github.com/loganlanou/campusconnect/views/components"
	profileview "github.com/loganlanou/campusconnect/views/profile"
)

const maxProfileImageBytes = 5 << 20

// ProfileHandler runs the profile setup wizard. Answers live in the cookie
// session between steps and reach the API in one final submission.
type ProfileHandler struct {
	*Deps
}

func NewProfileHandler(deps *Deps) *ProfileHandler {
	return &ProfileHandler{Deps: deps}
}

// draft returns the answers so far, starting from the account's own data
func (h *ProfileHandler) draft(c echo.Context) url.Values {
	if d := h.Sessions.Draft(c); len(d) > 0 {
		return d
	}
	user, _ := auth.CurrentUser(c)
	return profile.FromUser(user)
}

func (h *ProfileHandler) saveDraft(c echo.Context, draft url.Values) {
	if err := h.Sessions.SaveDraft(c, draft); err != nil {
		slog.Warn("failed to save profile draft", "error", err)
	}
}

func stepURL(n int) string {
	return fmt.Sprintf("%s?step=%d", auth.ProfileSetupPath, n)
}

func (h *ProfileHandler) render(c echo.Context, status int, step profile.Step, form components.Form) error {
	meta := h.meta(c).WithTitle("Complete your profile").Private()
	return RenderStatus(c, status, profileview.Setup(c, meta, profileview.Data{Step: step, Form: form}))
}

// HandleSetup shows the requested step, but never one past the first step
// that is still incomplete
func (h *ProfileHandler) HandleSetup(c echo.Context) error {
	draft := h.draft(c)

	n, _ := strconv.Atoi(c.QueryParam("step"))
	step := profile.StepAt(n)
	if first, _ := profile.Validate(h.Validator, draft); first != 0 && step.Number > first {
		step = profile.StepAt(first)
	}
	return h.render(c, http.StatusOK, step, components.NewForm(draft))
}

func (h *ProfileHandler) HandleSetupSubmit(c echo.Context) error {
	values, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}

	n, _ := strconv.Atoi(values.Get("step"))
	step := profile.StepAt(n)
	draft := step.Merge(h.draft(c), values)

	if values.Get("action") == "back" {
		h.saveDraft(c, draft)
		return c.Redirect(http.StatusSeeOther, stepURL(max(step.Number-1, profile.FirstStep)))
	}

	if errs := step.Validate(h.Validator, draft); len(errs) > 0 {
		h.saveDraft(c, draft)
		return h.reject(c, step, draft, errs)
	}

	if step.Number < profile.LastStep {
		h.saveDraft(c, draft)
		return c.Redirect(http.StatusSeeOther, stepURL(step.Number+1))
	}

	return h.submit(c, draft)
}

func (h *ProfileHandler) reject(c echo.Context, step profile.Step, draft url.Values, errs map[string]string) error {
	form := components.NewForm(draft)
	form.Errors = errs
	session.Notify(c, session.Error("Please fix the highlighted fields"))
	return h.render(c, http.StatusUnprocessableEntity, step, form)
}

// submit sends every answer with the optional photo
func (h *ProfileHandler) submit(c echo.Context, draft url.Values) error {
	ctx := c.Request().Context()
	last := profile.StepAt(profile.LastStep)

	h.saveDraft(c, draft)

	// Earlier steps may have been skipped by posting directly
	if first, errs := profile.Validate(h.Validator, draft); first != 0 {
		return h.reject(c, profile.StepAt(first), draft, errs)
	}

	image, err := readProfileImage(c)
	if err != nil {
		return h.reject(c, last, draft, map[string]string{"profileImage": err.Error()})
	}

	result, err := h.API.UpdateProfile(ctx, profile.Update(draft, image))
	if err != nil {
		slog.Warn("profile update failed", "error", err)
		form := components.NewForm(draft)
		form.Errors[""] = api.UserMessage(err, "Profile update failed")
		session.Notify(c, session.Error(form.Errors[""]))
		return h.render(c, formStatus(err), last, form)
	}

	if !result.IsVerified {
		msg := result.Message
		if msg == "" {
			msg = "Profile update failed"
		}
		form := components.NewForm(draft)
		form.Errors[""] = msg
		return h.render(c, http.StatusUnprocessableEntity, last, form)
	}

	token := auth.Token(c)
	if result.User != nil {
		h.Resolver.Prime(ctx, token, result.User)
	} else {
		h.Resolver.Invalidate(ctx, token)
	}
	if err := h.Sessions.ClearDraft(c); err != nil {
		slog.Warn("failed to clear profile draft", "error", err)
	}

	msg := result.Message
	if msg == "" {
		msg = "Profile updated successfully"
	}
	slog.Info("profile verified", "user_id", userID(result.User))
	session.Notify(c, session.Success(msg))
	return c.Redirect(http.StatusSeeOther, auth.HomePath)
}

func userID(u *api.User) int {
	if u == nil {
		return 0
	}
	return u.ID
}

// imageError is a problem with the uploaded photo, worded for the user
type imageError string

func (e imageError) Error() string { return string(e) }

const (
	errImageUnreadable imageError = "Could not read the profile photo"
	errImageTooLarge   imageError = "Profile photo must be smaller than 5 MB"
	errImageType       imageError = "Profile photo must be an image"
)

// readProfileImage returns the uploaded photo, or nil when none was sent
func readProfileImage(c echo.Context) (*profile.Image, error) {
	fh, err := c.FormFile("profileImage")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, errImageUnreadable
	}
	if fh.Size > maxProfileImageBytes {
		return nil, errImageTooLarge
	}
	if ct := fh.Header.Get(echo.HeaderContentType); ct != "" && !strings.HasPrefix(ct, "image/") {
		return nil, errImageType
	}

	f, err := fh.Open()
	if err != nil {
		return nil, errImageUnreadable
	}
	defer f.Close()

	contents, err := io.ReadAll(io.LimitReader(f, maxProfileImageBytes+1))
	if err != nil {
		return nil, errImageUnreadable
	}
	if len(contents) > maxProfileImageBytes {
		return nil, errImageTooLarge
	}
	return &profile.Image{Name: fh.Filename, Contents: contents}, nil
}
