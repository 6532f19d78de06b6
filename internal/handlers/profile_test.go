package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/loganlanou/campusconnect/internal/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unverifiedUser() *api.User {
	u := studentUser()
	u.IsVerified = false
	u.PreferredCity = ""
	return u
}

// answeredSteps is a draft with the first three steps filled in
func answeredSteps() url.Values {
	return url.Values{
		"full_name":           {"Asha Patel"},
		"dob":                 {"2003-05-14"},
		"gender":              {"female"},
		"phone":               {"9876543210"},
		"city":                {"Ahmedabad"},
		"district":            {"Ahmedabad"},
		"state":               {"Gujarat"},
		"pincode":             {"380009"},
		"preferred_city":      {"Pune"},
		"preferred_district":  {"Pune"},
		"preferred_state":     {"Maharashtra"},
		"preferred_pincode":   {"411001"},
		"preferred_locations": {"Kothrud"},
	}
}

func lastStepForm() url.Values {
	return url.Values{
		"step":                 {"4"},
		"budget":               {"8000"},
		"sharing_preference":   {"shared"},
		"preferred_categories": {"pg", "hostel"},
		"preferred_amenities":  {"wifi"},
	}
}

// withDraft stores draft in a session cookie and returns the response that set it
func (a *testApp) withDraft(t *testing.T, draft url.Values) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	c := a.e.NewContext(httptest.NewRequest(http.MethodGet, "/profileSetup", nil), rec)
	require.NoError(t, a.deps.Sessions.SaveDraft(c, draft))
	return rec
}

func TestSetupSubmit_InvalidStepIsRerendered(t *testing.T) {
	app := newTestApp(t)
	app.api.signIn("tok", unverifiedUser())

	rec := app.do(withToken(formRequest(http.MethodPost, "/profileSetup", url.Values{
		"step":      {"1"},
		"full_name": {"Asha 2"},
		"dob":       {"2003-05-14"},
		"gender":    {"female"},
		"phone":     {"9876543210"},
	}), "tok"))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Full name can only contain letters")
	assert.Zero(t, app.api.called("PUT /auth/profile/"))
}

func TestSetupSubmit_NextStepKeepsDraft(t *testing.T) {
	app := newTestApp(t)
	app.api.signIn("tok", unverifiedUser())

	rec := app.do(withToken(formRequest(http.MethodPost, "/profileSetup", url.Values{
		"step":      {"1"},
		"full_name": {"Asha Patel"},
		"dob":       {"2003-05-14"},
		"gender":    {"female"},
		"phone":     {"9123456780"},
	}), "tok"))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/profileSetup?step=2", rec.Header().Get(echo.HeaderLocation))
	assert.Zero(t, app.api.called("PUT /auth/profile/"), "answers stay local until the last step")

	// Going back shows what was typed
	back := app.do(withToken(carryCookies(httptest.NewRequest(http.MethodGet, "/profileSetup?step=1", nil), rec), "tok"))
	assert.Equal(t, http.StatusOK, back.Code)
	assert.Contains(t, back.Body.String(), `value="9123456780"`)
}

func TestSetup_CannotSkipAhead(t *testing.T) {
	app := newTestApp(t)
	app.api.signIn("tok", unverifiedUser())

	rec := app.do(withToken(httptest.NewRequest(http.MethodGet, "/profileSetup?step=4", nil), "tok"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="step" value="1"`, "the first incomplete step is shown")
}

func TestSetupSubmit_FinalStepVerifiesUser(t *testing.T) {
	app := newTestApp(t)
	app.api.signIn("tok", unverifiedUser())

	var submitted url.Values
	app.api.handle("PUT /auth/profile/{$}", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		submitted = r.MultipartForm.Value

		verified := studentUser()
		verified.PreferredCity = "Pune"
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "Profile updated successfully",
			"user":    map[string]any{"user": verified, "is_verified": true},
		})
	})

	draft := app.withDraft(t, answeredSteps())
	rec := app.do(withToken(carryCookies(formRequest(http.MethodPost, "/profileSetup", lastStepForm()), draft), "tok"))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))

	require.NotNil(t, submitted)
	assert.Equal(t, "true", submitted.Get("is_final_submit"))
	assert.Equal(t, "Pune", submitted.Get("preferred_city"))
	assert.ElementsMatch(t, []string{"pg", "hostel"}, submitted["preferred_categories"])

	fetches := app.api.called("GET /auth/user/")
	s := app.deps.Resolver.Resolve(context.Background(), "tok")
	assert.True(t, s.IsVerified())
	assert.Equal(t, fetches, app.api.called("GET /auth/user/"), "the verified user is primed into the cache")

	page := app.follow(t, rec, "tok")
	assert.Contains(t, page.Body.String(), "Profile updated successfully")
}

func TestSetupSubmit_NotVerifiedStaysOnLastStep(t *testing.T) {
	app := newTestApp(t)
	app.api.signIn("tok", unverifiedUser())
	app.api.handle("PUT /auth/profile/{$}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "Profile saved but verification is pending",
			"user":    map[string]any{"user": unverifiedUser(), "is_verified": false},
		})
	})

	draft := app.withDraft(t, answeredSteps())
	rec := app.do(withToken(carryCookies(formRequest(http.MethodPost, "/profileSetup", lastStepForm()), draft), "tok"))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Profile saved but verification is pending")
	assert.Contains(t, rec.Body.String(), `name="step" value="4"`)

	s := app.deps.Resolver.Resolve(context.Background(), "tok")
	assert.False(t, s.IsVerified())
}

func TestSetupSubmit_SkippedStepsAreCaught(t *testing.T) {
	app := newTestApp(t)
	app.api.signIn("tok", unverifiedUser())

	rec := app.do(withToken(formRequest(http.MethodPost, "/profileSetup", lastStepForm()), "tok"))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="step" value="1"`)
	assert.Contains(t, rec.Body.String(), "Date of birth is required")
	assert.Zero(t, app.api.called("PUT /auth/profile/"))
}
