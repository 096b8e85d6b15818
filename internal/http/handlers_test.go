package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/availability-scheduler/internal/application"
	"github.com/example/availability-scheduler/internal/scheduler"
)

type fakeConfigService struct {
	config    *application.Config
	err       error
	saved     []application.ConfigInput
	principal application.Principal
}

func (f *fakeConfigService) GetConfig(ctx context.Context) (*application.Config, error) {
	return f.config, f.err
}

func (f *fakeConfigService) SaveConfig(ctx context.Context, principal application.Principal, input application.ConfigInput) (application.Config, error) {
	f.principal = principal
	f.saved = append(f.saved, input)
	if f.err != nil {
		return application.Config{}, f.err
	}
	return application.Config{Title: input.Title, ShowFullSlots: true}, nil
}

type fakeProfileService struct {
	profiles  []application.Profile
	err       error
	slugs     []string
	saved     []application.SaveProfileParams
	deleted   []string
	principal application.Principal
}

func (f *fakeProfileService) ListProfiles(ctx context.Context, principal application.Principal) ([]application.Profile, error) {
	f.principal = principal
	return f.profiles, f.err
}

func (f *fakeProfileService) GetProfileBySlug(ctx context.Context, principal application.Principal, slug string) (application.Profile, error) {
	f.principal = principal
	f.slugs = append(f.slugs, slug)
	if f.err != nil {
		return application.Profile{}, f.err
	}
	return application.Profile{ID: "p1", Slug: slug, Mode: scheduler.ModeCalendar}, nil
}

func (f *fakeProfileService) SaveProfile(ctx context.Context, params application.SaveProfileParams) (application.Profile, error) {
	f.saved = append(f.saved, params)
	if f.err != nil {
		return application.Profile{}, f.err
	}
	id := params.Input.ID
	if id == "" {
		id = "generated"
	}
	return application.Profile{ID: id, Slug: params.Input.Slug, Title: params.Input.Title}, nil
}

func (f *fakeProfileService) DeleteProfile(ctx context.Context, principal application.Principal, id string) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

type fakeSlotService struct {
	slots     []scheduler.Slot
	err       error
	listed    []string
	saved     []application.SaveSlotParams
	deleted   []string
	principal application.Principal
}

func (f *fakeSlotService) ListSlots(ctx context.Context, principal application.Principal, profileID string) ([]scheduler.Slot, error) {
	f.principal = principal
	f.listed = append(f.listed, profileID)
	return f.slots, f.err
}

func (f *fakeSlotService) SaveSlot(ctx context.Context, params application.SaveSlotParams) (scheduler.Slot, error) {
	f.saved = append(f.saved, params)
	if f.err != nil {
		return scheduler.Slot{}, f.err
	}
	return scheduler.Slot{ID: "slot-1", ProfileID: params.Input.ProfileID, DayOfWeek: params.Input.DayOfWeek}, nil
}

func (f *fakeSlotService) DeleteSlot(ctx context.Context, principal application.Principal, id string) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

type fakeRequestService struct {
	err       error
	submitted []application.SubmitRequestParams
	filters   []application.RequestFilter
	reviews   []application.ReviewRequestParams
	updates   []application.UpdateRequestParams
	deleted   []string
}

func (f *fakeRequestService) SubmitRequest(ctx context.Context, params application.SubmitRequestParams) (application.SlotRequest, error) {
	f.submitted = append(f.submitted, params)
	if f.err != nil {
		return application.SlotRequest{}, f.err
	}
	return application.SlotRequest{ID: "req-1", SlotID: params.SlotID, Contact: params.Contact, Status: application.RequestPending}, nil
}

func (f *fakeRequestService) ListRequests(ctx context.Context, principal application.Principal, filter application.RequestFilter) ([]application.SlotRequest, error) {
	f.filters = append(f.filters, filter)
	return nil, f.err
}

func (f *fakeRequestService) ReviewRequest(ctx context.Context, params application.ReviewRequestParams) (application.SlotRequest, error) {
	f.reviews = append(f.reviews, params)
	if f.err != nil {
		return application.SlotRequest{}, f.err
	}
	return application.SlotRequest{ID: params.RequestID, Status: params.Status}, nil
}

func (f *fakeRequestService) UpdateRequest(ctx context.Context, params application.UpdateRequestParams) (application.SlotRequest, error) {
	f.updates = append(f.updates, params)
	if f.err != nil {
		return application.SlotRequest{}, f.err
	}
	return application.SlotRequest{ID: params.RequestID, Contact: params.Contact, Status: application.RequestPending}, nil
}

func (f *fakeRequestService) DeleteRequest(ctx context.Context, principal application.Principal, id string) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

type fakeAuthService struct {
	session  application.Session
	err      error
	revoked  []string
	changes  []application.ChangePasswordParams
	password string
}

func (f *fakeAuthService) Login(ctx context.Context, params application.LoginParams) (application.Session, error) {
	f.password = params.Password
	return f.session, f.err
}

func (f *fakeAuthService) RevokeSession(ctx context.Context, token string) error {
	f.revoked = append(f.revoked, token)
	return f.err
}

func (f *fakeAuthService) ChangePassword(ctx context.Context, params application.ChangePasswordParams) error {
	f.changes = append(f.changes, params)
	return f.err
}

type routerFixture struct {
	config   *fakeConfigService
	profiles *fakeProfileService
	slots    *fakeSlotService
	requests *fakeRequestService
	auth     *fakeAuthService
	limiter  *staticLimiter
	handler  http.Handler
}

const adminToken = "admin-token"

// newRouterFixture accepts adminToken as the only valid session.
func newRouterFixture() *routerFixture {
	f := &routerFixture{
		config:   &fakeConfigService{},
		profiles: &fakeProfileService{},
		slots:    &fakeSlotService{},
		requests: &fakeRequestService{},
		auth:     &fakeAuthService{},
		limiter:  &staticLimiter{ok: true},
	}
	logger := discardLogger()
	validator := validatorFunc(func(ctx context.Context, token string) (application.Principal, error) {
		if token != adminToken {
			return application.Principal{}, application.ErrInvalidCredentials
		}
		return application.Principal{SessionID: "s-1", IsAdmin: true}, nil
	})
	f.handler = NewRouter(RouterConfig{
		Auth:          NewAuthHandler(f.auth, logger),
		Config:        NewConfigHandler(f.config, logger),
		Profiles:      NewProfileHandler(f.profiles, logger),
		Slots:         NewSlotHandler(f.slots, logger),
		Requests:      NewRequestHandler(f.requests, logger),
		Health:        NewHealthHandler(nil, logger),
		RequireAdmin:  RequireSession(validator, logger),
		SubmitLimiter: RateLimit(limiterFunc(func() RateLimiter { return *f.limiter }), nil, logger, false),
	})
	return f
}

type validatorFunc func(ctx context.Context, token string) (application.Principal, error)

func (fn validatorFunc) ValidateSession(ctx context.Context, token string) (application.Principal, error) {
	return fn(ctx, token)
}

// limiterFunc resolves the limiter per call so tests can swap it after the
// router is built.
type limiterFunc func() RateLimiter

func (fn limiterFunc) Allow(ctx context.Context, key string) (bool, error) {
	return fn().Allow(ctx, key)
}

func (f *routerFixture) do(t *testing.T, method, target, body string, admin bool) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if admin {
		req.Header.Set("Authorization", "Bearer "+adminToken)
	}
	recorder := httptest.NewRecorder()
	f.handler.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody[T any](t *testing.T, recorder *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(recorder.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v (status %d)", err, recorder.Code)
	}
	return out
}

func TestRouter_PublicRoutes(t *testing.T) {
	t.Parallel()

	t.Run("config is null until saved", func(t *testing.T) {
		t.Parallel()

		f := newRouterFixture()
		rec := f.do(t, http.MethodGet, "/config", "", false)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if body := strings.TrimSpace(rec.Body.String()); body != `{"config":null}` {
			t.Fatalf("unexpected body %s", body)
		}
	})

	t.Run("profile lookup by slug runs anonymously", func(t *testing.T) {
		t.Parallel()

		f := newRouterFixture()
		rec := f.do(t, http.MethodGet, "/profiles/piano", "", false)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		resp := decodeBody[ProfileResponse](t, rec)
		if resp.Profile.Slug != "piano" || resp.Profile.Mode != "calendar" {
			t.Fatalf("unexpected profile %+v", resp.Profile)
		}
		if f.profiles.principal.IsAdmin {
			t.Fatal("public lookup must not run as admin")
		}
	})

	t.Run("profile slots use the path id", func(t *testing.T) {
		t.Parallel()

		f := newRouterFixture()
		f.slots.slots = []scheduler.Slot{{ID: "s1", ProfileID: "p1", DayOfWeek: 1, StartTime: scheduler.MustTimeOfDay("10:00"), EndTime: scheduler.MustTimeOfDay("11:00")}}
		rec := f.do(t, http.MethodGet, "/profiles/p1/slots", "", false)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		resp := decodeBody[SlotsResponse](t, rec)
		if len(resp.Slots) != 1 || resp.Slots[0].StartTime != "10:00" || resp.Slots[0].Status != "Available" {
			t.Fatalf("unexpected slots %+v", resp.Slots)
		}
		if len(f.slots.listed) != 1 || f.slots.listed[0] != "p1" {
			t.Fatalf("expected p1 listing, got %v", f.slots.listed)
		}
	})

	t.Run("unknown profile maps to 404", func(t *testing.T) {
		t.Parallel()

		f := newRouterFixture()
		f.profiles.err = application.ErrNotFound
		if rec := f.do(t, http.MethodGet, "/profiles/missing", "", false); rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("nested unknown paths are not found", func(t *testing.T) {
		t.Parallel()

		f := newRouterFixture()
		if rec := f.do(t, http.MethodGet, "/profiles/a/b", "", false); rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("wrong method reports allowed methods", func(t *testing.T) {
		t.Parallel()

		f := newRouterFixture()
		rec := f.do(t, http.MethodPost, "/config", "{}", false)
		if rec.Code != http.StatusMethodNotAllowed || rec.Header().Get("Allow") != http.MethodGet {
			t.Fatalf("expected 405 with Allow GET, got %d %q", rec.Code, rec.Header().Get("Allow"))
		}
	})
}

func TestRouter_SubmitRequest(t *testing.T) {
	t.Parallel()

	body := `{"slot_id":"s1","student_name":"Ana","student_contact":"ana@example.com","student_class":"9B"}`

	t.Run("decodes contact fields", func(t *testing.T) {
		t.Parallel()

		f := newRouterFixture()
		rec := f.do(t, http.MethodPost, "/slot-requests", body, false)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		got := f.requests.submitted[0]
		if got.SlotID != "s1" || got.Contact.Name != "Ana" || got.Contact.Class != "9B" {
			t.Fatalf("unexpected submission %+v", got)
		}
		resp := decodeBody[SlotRequestResponse](t, rec)
		if resp.SlotRequest.Status != "pending" {
			t.Fatalf("unexpected response %+v", resp.SlotRequest)
		}
	})

	t.Run("validation errors carry field details", func(t *testing.T) {
		t.Parallel()

		f := newRouterFixture()
		f.requests.err = &application.ValidationError{FieldErrors: map[string]string{"student_name": "name is required"}}
		rec := f.do(t, http.MethodPost, "/slot-requests", body, false)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", rec.Code)
		}
		resp := decodeBody[ErrorResponse](t, rec)
		if resp.Errors["student_name"] != "name is required" {
			t.Fatalf("unexpected error body %+v", resp)
		}
	})

	t.Run("rate limited submissions are refused", func(t *testing.T) {
		t.Parallel()

		f := newRouterFixture()
		f.limiter.ok = false
		rec := f.do(t, http.MethodPost, "/slot-requests", body, false)
		if rec.Code != http.StatusTooManyRequests {
			t.Fatalf("expected 429, got %d", rec.Code)
		}
		if len(f.requests.submitted) != 0 {
			t.Fatal("limited request reached the service")
		}
	})

	t.Run("malformed bodies are bad requests", func(t *testing.T) {
		t.Parallel()

		f := newRouterFixture()
		if rec := f.do(t, http.MethodPost, "/slot-requests", "{", false); rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestRouter_AdminRoutes(t *testing.T) {
	t.Parallel()

	t.Run("admin routes require a session", func(t *testing.T) {
		t.Parallel()

		f := newRouterFixture()
		for _, tc := range []struct{ method, path string }{
			{http.MethodGet, "/admin/profiles"},
			{http.MethodPut, "/admin/config"},
			{http.MethodPost, "/admin/slots"},
			{http.MethodDelete, "/admin/slots/s1"},
			{http.MethodGet, "/admin/slot-requests"},
			{http.MethodGet, "/admin/sessions/current"},
			{http.MethodPost, "/admin/password"},
		} {
			if rec := f.do(t, tc.method, tc.path, "{}", false); rec.Code != http.StatusUnauthorized {
				t.Errorf("%s %s: expected 401, got %d", tc.method, tc.path, rec.Code)
			}
		}
	})

	t.Run("admin profile listing runs with the session principal", func(t *testing.T) {
		t.Parallel()

		f := newRouterFixture()
		f.profiles.profiles = []application.Profile{{ID: "p1", Slug: "one"}, {ID: "p2", Slug: "two"}}
		rec := f.do(t, http.MethodGet, "/admin/profiles", "", true)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !f.profiles.principal.IsAdmin {
			t.Fatal("expected admin principal")
		}
		if resp := decodeBody[ProfilesResponse](t, rec); len(resp.Profiles) != 2 {
			t.Fatalf("unexpected profiles %+v", resp.Profiles)
		}
	})

	t.Run("saving a profile without id creates it", func(t *testing.T) {
		t.Parallel()

		f := newRouterFixture()
		rec := f.do(t, http.MethodPost, "/admin/profiles", `{"slug":"piano","title":"Piano","mode":"weekly","is_public":true}`, true)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rec.Code)
		}
		rec = f.do(t, http.MethodPost, "/admin/profiles", `{"id":"p1","slug":"piano"}`, true)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 on update, got %d", rec.Code)
		}
		if !f.profiles.saved[0].Input.IsPublic || f.profiles.saved[1].Input.ID != "p1" {
			t.Fatalf("unexpected inputs %+v", f.profiles.saved)
		}
	})

	t.Run("duplicate slugs conflict", func(t *testing.T) {
		t.Parallel()

		f := newRouterFixture()
		f.profiles.err = application.ErrAlreadyExists
		if rec := f.do(t, http.MethodPost, "/admin/profiles", `{"slug":"taken"}`, true); rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
	})

	t.Run("delete routes pass path ids", func(t *testing.T) {
		t.Parallel()

		f := newRouterFixture()
		for _, path := range []string{"/admin/profiles/p1", "/admin/slots/s1", "/admin/slot-requests/r1"} {
			if rec := f.do(t, http.MethodDelete, path, "", true); rec.Code != http.StatusNoContent {
				t.Fatalf("DELETE %s: expected 204, got %d", path, rec.Code)
			}
		}
		if f.profiles.deleted[0] != "p1" || f.slots.deleted[0] != "s1" || f.requests.deleted[0] != "r1" {
			t.Fatalf("unexpected deletes %v %v %v", f.profiles.deleted, f.slots.deleted, f.requests.deleted)
		}
	})

	t.Run("admin slot listing and save", func(t *testing.T) {
		t.Parallel()

		f := newRouterFixture()
		if rec := f.do(t, http.MethodGet, "/admin/profiles/p1/slots", "", true); rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !f.slots.principal.IsAdmin || f.slots.listed[0] != "p1" {
			t.Fatalf("expected admin listing of p1, got %+v %v", f.slots.principal, f.slots.listed)
		}

		rec := f.do(t, http.MethodPost, "/admin/slots", `{"profile_id":"p1","day_of_week":3,"start_time":"10:00","end_time":"11:00","visibility":false}`, true)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rec.Code)
		}
		input := f.slots.saved[0].Input
		if input.DayOfWeek != 3 || input.Visibility == nil || *input.Visibility {
			t.Fatalf("unexpected slot input %+v", input)
		}
	})

	t.Run("request listing forwards query filters", func(t *testing.T) {
		t.Parallel()

		f := newRouterFixture()
		rec := f.do(t, http.MethodGet, "/admin/slot-requests?profile_id=p1&status=pending", "", true)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if got := f.requests.filters[0]; got.ProfileID != "p1" || got.Status != application.RequestPending {
			t.Fatalf("unexpected filter %+v", got)
		}
		if body := strings.TrimSpace(rec.Body.String()); body != `{"slot_requests":[]}` {
			t.Fatalf("expected empty list, got %s", body)
		}
	})

	t.Run("review and update target the path id", func(t *testing.T) {
		t.Parallel()

		f := newRouterFixture()
		rec := f.do(t, http.MethodPost, "/admin/slot-requests/r1/review", `{"status":"approved","admin_note":"ok"}`, true)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if got := f.requests.reviews[0]; got.RequestID != "r1" || got.Status != application.RequestApproved || got.AdminNote != "ok" {
			t.Fatalf("unexpected review %+v", got)
		}

		rec = f.do(t, http.MethodPut, "/admin/slot-requests/r1", `{"student_name":"Ion","student_contact":"+373"}`, true)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if got := f.requests.updates[0]; got.RequestID != "r1" || got.Contact.Name != "Ion" {
			t.Fatalf("unexpected update %+v", got)
		}
	})

	t.Run("config save", func(t *testing.T) {
		t.Parallel()

		f := newRouterFixture()
		rec := f.do(t, http.MethodPut, "/admin/config", `{"title":"Orar","show_full_slots":false}`, true)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		input := f.config.saved[0]
		if input.Title != "Orar" || input.ShowFullSlots == nil || *input.ShowFullSlots {
			t.Fatalf("unexpected config input %+v", input)
		}
	})
}

func TestAuthHandler(t *testing.T) {
	t.Parallel()

	t.Run("login issues cookie header and body token", func(t *testing.T) {
		t.Parallel()

		f := newRouterFixture()
		expires := time.Date(2024, time.January, 4, 12, 0, 0, 0, time.UTC)
		f.auth.session = application.Session{ID: "s-1", Token: "tok", ExpiresAt: expires}

		rec := f.do(t, http.MethodPost, "/admin/sessions", `{"password":"secret"}`, false)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rec.Code)
		}
		if f.auth.password != "secret" {
			t.Fatalf("expected password to reach the service, got %q", f.auth.password)
		}
		if rec.Header().Get("X-Session-Token") != "tok" {
			t.Fatalf("expected X-Session-Token header")
		}
		cookies := rec.Result().Cookies()
		if len(cookies) != 1 || cookies[0].Name != "session_token" || cookies[0].Value != "tok" || !cookies[0].HttpOnly {
			t.Fatalf("unexpected cookies %+v", cookies)
		}
		resp := decodeBody[LoginResponse](t, rec)
		if resp.Token != "tok" || resp.ExpiresAt != "2024-01-04T12:00:00Z" {
			t.Fatalf("unexpected login response %+v", resp)
		}
	})

	t.Run("wrong password is 401 with error code", func(t *testing.T) {
		t.Parallel()

		f := newRouterFixture()
		f.auth.err = application.ErrInvalidCredentials
		rec := f.do(t, http.MethodPost, "/admin/sessions", `{"password":"nope"}`, false)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		if resp := decodeBody[ErrorResponse](t, rec); resp.ErrorCode != ErrorCodeInvalidCredentials {
			t.Fatalf("unexpected error body %+v", resp)
		}
	})

	t.Run("restore check reports the principal", func(t *testing.T) {
		t.Parallel()

		f := newRouterFixture()
		rec := f.do(t, http.MethodGet, "/admin/sessions/current", "", true)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if resp := decodeBody[SessionResponse](t, rec); resp.SessionID != "s-1" || !resp.IsAdmin {
			t.Fatalf("unexpected session response %+v", resp)
		}
	})

	t.Run("logout revokes and clears the cookie", func(t *testing.T) {
		t.Parallel()

		f := newRouterFixture()
		rec := f.do(t, http.MethodDelete, "/admin/sessions/current", "", true)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
		if len(f.auth.revoked) != 1 || f.auth.revoked[0] != adminToken {
			t.Fatalf("expected admin token revoked, got %v", f.auth.revoked)
		}
		cookies := rec.Result().Cookies()
		if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
			t.Fatalf("expected cookie to be cleared, got %+v", cookies)
		}

		if rec := f.do(t, http.MethodDelete, "/admin/sessions/current", "", false); rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 without token, got %d", rec.Code)
		}
	})

	t.Run("password change carries the admin principal", func(t *testing.T) {
		t.Parallel()

		f := newRouterFixture()
		rec := f.do(t, http.MethodPost, "/admin/password", `{"current_password":"a","new_password":"b"}`, true)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
		if got := f.auth.changes[0]; !got.Principal.IsAdmin || got.CurrentPassword != "a" || got.NewPassword != "b" {
			t.Fatalf("unexpected change params %+v", got)
		}
	})
}

func TestResponder_HandleServiceError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want int
	}{
		{application.ErrInvalidCredentials, http.StatusUnauthorized},
		{application.ErrSessionExpired, http.StatusUnauthorized},
		{application.ErrSessionRevoked, http.StatusUnauthorized},
		{application.ErrUnauthorized, http.StatusForbidden},
		{application.ErrNotFound, http.StatusNotFound},
		{application.ErrAlreadyExists, http.StatusConflict},
		{application.ErrRateLimited, http.StatusTooManyRequests},
		{&application.ValidationError{FieldErrors: map[string]string{"slug": "bad"}}, http.StatusUnprocessableEntity},
		{errors.New("boom"), http.StatusInternalServerError},
		{nil, http.StatusInternalServerError},
	}

	r := newResponder(discardLogger())
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		r.handleServiceError(context.Background(), rec, tc.err)
		if rec.Code != tc.want {
			t.Errorf("%v: expected %d, got %d", tc.err, tc.want, rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
			t.Errorf("%v: unexpected content type %q", tc.err, ct)
		}
	}
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(ctx context.Context) error { return p.err }

func TestHealthHandler(t *testing.T) {
	t.Parallel()

	ready := NewHealthHandler(fakePinger{}, discardLogger())
	rec := httptest.NewRecorder()
	ready.Ready(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	down := NewHealthHandler(fakePinger{err: errors.New("closed")}, discardLogger())
	rec = httptest.NewRecorder()
	down.Ready(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	down.Live(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("liveness should not depend on the database, got %d", rec.Code)
	}
}
