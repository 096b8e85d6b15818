package widget

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/example/availability-scheduler/internal/application"
	httptransport "github.com/example/availability-scheduler/internal/http"
	"github.com/example/availability-scheduler/internal/scheduler"
)

// StatusError is a non-2xx answer from the store API.
type StatusError struct {
	Status  int
	Code    string
	Message string
	Fields  map[string]string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("store: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("store: %d %s", e.Status, e.Message)
}

// Unwrap maps the status onto the application sentinels so callers can use
// errors.Is regardless of the transport.
func (e *StatusError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		if e.Code == httptransport.ErrorCodeSessionExpired {
			return application.ErrSessionExpired
		}
		return application.ErrInvalidCredentials
	case http.StatusForbidden:
		return application.ErrUnauthorized
	case http.StatusNotFound:
		return application.ErrNotFound
	case http.StatusConflict:
		return application.ErrAlreadyExists
	case http.StatusTooManyRequests:
		return application.ErrRateLimited
	case http.StatusUnprocessableEntity:
		return &application.ValidationError{FieldErrors: e.Fields}
	}
	return nil
}

// HTTPStore implements Store against the store HTTP API. The admin session
// token is kept in storage under StorageKeyAdminSession.
type HTTPStore struct {
	base    *url.URL
	client  *http.Client
	storage Storage
}

// NewHTTPStore builds a client for the API rooted at baseURL. A nil client
// uses http.DefaultClient and a nil storage keeps the token in memory.
func NewHTTPStore(baseURL string, client *http.Client, storage Storage) (*HTTPStore, error) {
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse store url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("store url %q must be absolute", baseURL)
	}
	if client == nil {
		client = http.DefaultClient
	}
	if storage == nil {
		storage = NewMemoryStorage()
	}
	return &HTTPStore{base: base, client: client, storage: storage}, nil
}

func (s *HTTPStore) token() string {
	token, _ := s.storage.Get(StorageKeyAdminSession)
	return strings.TrimSpace(token)
}

func (s *HTTPStore) adminToken() (string, error) {
	token := s.token()
	if token == "" {
		return "", ErrAdminSessionRequired
	}
	return token, nil
}

func (s *HTTPStore) endpoint(path string, query url.Values) string {
	u := *s.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do sends one request. A nil out discards the response body.
func (s *HTTPStore) do(ctx context.Context, method, path string, query url.Values, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.endpoint(path, query), body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{Status: resp.StatusCode}
		var payload httptransport.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
			statusErr.Code = payload.ErrorCode
			statusErr.Message = payload.Message
			statusErr.Fields = payload.Errors
		}
		return statusErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (s *HTTPStore) GetConfig(ctx context.Context) (*application.Config, error) {
	var resp httptransport.ConfigResponse
	if err := s.do(ctx, http.MethodGet, "/config", nil, "", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Config == nil {
		return nil, nil
	}
	cfg, err := resp.Config.Config()
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveConfig stores the singleton configuration.
func (s *HTTPStore) SaveConfig(ctx context.Context, cfg application.Config) (application.Config, error) {
	token, err := s.adminToken()
	if err != nil {
		return application.Config{}, err
	}
	var resp httptransport.ConfigResponse
	if err := s.do(ctx, http.MethodPut, "/admin/config", nil, token, httptransport.ConfigToDTO(cfg), &resp); err != nil {
		return application.Config{}, err
	}
	if resp.Config == nil {
		return application.Config{}, errors.New("store: empty config response")
	}
	return resp.Config.Config()
}

func (s *HTTPStore) GetProfiles(ctx context.Context, asAdmin bool) ([]application.Profile, error) {
	path, token := "/profiles", ""
	if asAdmin {
		var err error
		if token, err = s.adminToken(); err != nil {
			return nil, err
		}
		path = "/admin/profiles"
	}
	var resp httptransport.ProfilesResponse
	if err := s.do(ctx, http.MethodGet, path, nil, token, nil, &resp); err != nil {
		return nil, err
	}
	profiles := make([]application.Profile, 0, len(resp.Profiles))
	for _, dto := range resp.Profiles {
		profile, err := dto.Profile()
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

func (s *HTTPStore) GetProfileBySlug(ctx context.Context, slug string) (application.Profile, error) {
	var resp httptransport.ProfileResponse
	if err := s.do(ctx, http.MethodGet, "/profiles/"+url.PathEscape(slug), nil, s.token(), nil, &resp); err != nil {
		return application.Profile{}, err
	}
	return resp.Profile.Profile()
}

func (s *HTTPStore) GetSlots(ctx context.Context, profileID string, asAdmin bool) ([]scheduler.Slot, error) {
	path, token := "/profiles/"+url.PathEscape(profileID)+"/slots", ""
	if asAdmin {
		var err error
		if token, err = s.adminToken(); err != nil {
			return nil, err
		}
		path = "/admin" + path
	}
	var resp httptransport.SlotsResponse
	if err := s.do(ctx, http.MethodGet, path, nil, token, nil, &resp); err != nil {
		return nil, err
	}
	slots := make([]scheduler.Slot, 0, len(resp.Slots))
	for _, dto := range resp.Slots {
		slot, err := dto.Slot()
		if err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

func (s *HTTPStore) SaveSlot(ctx context.Context, slot scheduler.Slot) (scheduler.Slot, error) {
	token, err := s.adminToken()
	if err != nil {
		return scheduler.Slot{}, err
	}
	var resp httptransport.SlotResponse
	if err := s.do(ctx, http.MethodPost, "/admin/slots", nil, token, httptransport.SlotToDTO(slot), &resp); err != nil {
		return scheduler.Slot{}, err
	}
	return resp.Slot.Slot()
}

func (s *HTTPStore) DeleteSlot(ctx context.Context, id string) error {
	token, err := s.adminToken()
	if err != nil {
		return err
	}
	return s.do(ctx, http.MethodDelete, "/admin/slots/"+url.PathEscape(id), nil, token, nil, nil)
}

func (s *HTTPStore) SaveProfile(ctx context.Context, profile application.Profile) (application.Profile, error) {
	token, err := s.adminToken()
	if err != nil {
		return application.Profile{}, err
	}
	var resp httptransport.ProfileResponse
	if err := s.do(ctx, http.MethodPost, "/admin/profiles", nil, token, httptransport.ProfileToDTO(profile), &resp); err != nil {
		return application.Profile{}, err
	}
	return resp.Profile.Profile()
}

func (s *HTTPStore) DeleteProfile(ctx context.Context, id string) error {
	token, err := s.adminToken()
	if err != nil {
		return err
	}
	return s.do(ctx, http.MethodDelete, "/admin/profiles/"+url.PathEscape(id), nil, token, nil, nil)
}

func (s *HTTPStore) SubmitSlotRequest(ctx context.Context, slotID string, contact application.Contact) (application.SlotRequest, error) {
	body := httptransport.SubmitSlotRequestDTO{SlotID: slotID, ContactDTO: httptransport.ContactToDTO(contact)}
	var resp httptransport.SlotRequestResponse
	if err := s.do(ctx, http.MethodPost, "/slot-requests", nil, "", body, &resp); err != nil {
		return application.SlotRequest{}, err
	}
	return resp.SlotRequest.SlotRequest()
}

func (s *HTTPStore) GetSlotRequests(ctx context.Context, filter application.RequestFilter) ([]application.SlotRequest, error) {
	token, err := s.adminToken()
	if err != nil {
		return nil, err
	}
	query := url.Values{}
	if filter.ProfileID != "" {
		query.Set("profile_id", filter.ProfileID)
	}
	if filter.Status != "" {
		query.Set("status", string(filter.Status))
	}
	var resp httptransport.SlotRequestsResponse
	if err := s.do(ctx, http.MethodGet, "/admin/slot-requests", query, token, nil, &resp); err != nil {
		return nil, err
	}
	requests := make([]application.SlotRequest, 0, len(resp.SlotRequests))
	for _, dto := range resp.SlotRequests {
		request, err := dto.SlotRequest()
		if err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}
	return requests, nil
}

func (s *HTTPStore) ReviewSlotRequest(ctx context.Context, id string, status application.RequestStatus, adminNote string) (application.SlotRequest, error) {
	token, err := s.adminToken()
	if err != nil {
		return application.SlotRequest{}, err
	}
	body := httptransport.ReviewSlotRequestDTO{Status: string(status), AdminNote: adminNote}
	var resp httptransport.SlotRequestResponse
	if err := s.do(ctx, http.MethodPost, "/admin/slot-requests/"+url.PathEscape(id)+"/review", nil, token, body, &resp); err != nil {
		return application.SlotRequest{}, err
	}
	return resp.SlotRequest.SlotRequest()
}

func (s *HTTPStore) UpdateSlotRequest(ctx context.Context, id string, contact application.Contact) (application.SlotRequest, error) {
	token, err := s.adminToken()
	if err != nil {
		return application.SlotRequest{}, err
	}
	var resp httptransport.SlotRequestResponse
	if err := s.do(ctx, http.MethodPut, "/admin/slot-requests/"+url.PathEscape(id), nil, token, httptransport.ContactToDTO(contact), &resp); err != nil {
		return application.SlotRequest{}, err
	}
	return resp.SlotRequest.SlotRequest()
}

func (s *HTTPStore) DeleteSlotRequest(ctx context.Context, id string) error {
	token, err := s.adminToken()
	if err != nil {
		return err
	}
	return s.do(ctx, http.MethodDelete, "/admin/slot-requests/"+url.PathEscape(id), nil, token, nil, nil)
}

func (s *HTTPStore) LoginAdmin(ctx context.Context, password string) (bool, error) {
	var resp httptransport.LoginResponse
	err := s.do(ctx, http.MethodPost, "/admin/sessions", nil, "", httptransport.LoginRequest{Password: password}, &resp)
	if err != nil {
		if errors.Is(err, application.ErrInvalidCredentials) {
			return false, nil
		}
		return false, err
	}
	if resp.Token == "" {
		return false, errors.New("store: login response carried no token")
	}
	if err := s.storage.Set(StorageKeyAdminSession, resp.Token); err != nil {
		return false, fmt.Errorf("store session token: %w", err)
	}
	return true, nil
}

func (s *HTTPStore) RestoreSession(ctx context.Context) (bool, error) {
	token := s.token()
	if token == "" {
		return false, nil
	}
	var resp httptransport.SessionResponse
	if err := s.do(ctx, http.MethodGet, "/admin/sessions/current", nil, token, nil, &resp); err != nil {
		_ = s.storage.Delete(StorageKeyAdminSession)
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.Status == http.StatusUnauthorized {
			return false, nil
		}
		return false, err
	}
	if !resp.IsAdmin {
		_ = s.storage.Delete(StorageKeyAdminSession)
		return false, nil
	}
	return true, nil
}

// Logout revokes the stored session. The local token is forgotten even when
// the store cannot be reached.
func (s *HTTPStore) Logout(ctx context.Context) error {
	token := s.token()
	if token == "" {
		return nil
	}
	err := s.do(ctx, http.MethodDelete, "/admin/sessions/current", nil, token, nil, nil)
	if derr := s.storage.Delete(StorageKeyAdminSession); derr != nil && err == nil {
		err = derr
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.Status == http.StatusUnauthorized {
		return nil
	}
	return err
}

func (s *HTTPStore) ChangeAdminPassword(ctx context.Context, current, next string) error {
	token, err := s.adminToken()
	if err != nil {
		return err
	}
	body := httptransport.ChangePasswordRequest{CurrentPassword: current, NewPassword: next}
	return s.do(ctx, http.MethodPost, "/admin/password", nil, token, body, nil)
}
