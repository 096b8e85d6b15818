package application

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/example/availability-scheduler/internal/persistence"
	"github.com/example/availability-scheduler/internal/scheduler"
)

type configRepoStub struct {
	config  *Config
	getErr  error
	saveErr error
	saved   []Config
}

func (c *configRepoStub) GetConfig(ctx context.Context) (Config, error) {
	if c.getErr != nil {
		return Config{}, c.getErr
	}
	if c.config == nil {
		return Config{}, persistence.ErrNotFound
	}
	return *c.config, nil
}

func (c *configRepoStub) SaveConfig(ctx context.Context, config Config) error {
	if c.saveErr != nil {
		return c.saveErr
	}
	c.saved = append(c.saved, config)
	c.config = &config
	return nil
}

type profileRepoStub struct {
	profiles  map[string]Profile
	upsertErr error
	deleted   []string
}

func newProfileRepoStub(profiles ...Profile) *profileRepoStub {
	stub := &profileRepoStub{profiles: make(map[string]Profile)}
	for _, p := range profiles {
		stub.profiles[p.ID] = p
	}
	return stub
}

func (r *profileRepoStub) UpsertProfile(ctx context.Context, profile Profile) (Profile, error) {
	if r.upsertErr != nil {
		return Profile{}, r.upsertErr
	}
	for id, existing := range r.profiles {
		if id != profile.ID && existing.Slug == profile.Slug {
			return Profile{}, persistence.ErrDuplicate
		}
	}
	if existing, ok := r.profiles[profile.ID]; ok {
		profile.CreatedAt = existing.CreatedAt
	}
	r.profiles[profile.ID] = profile
	return profile, nil
}

func (r *profileRepoStub) GetProfile(ctx context.Context, id string) (Profile, error) {
	p, ok := r.profiles[id]
	if !ok {
		return Profile{}, persistence.ErrNotFound
	}
	return p, nil
}

func (r *profileRepoStub) GetProfileBySlug(ctx context.Context, slug string) (Profile, error) {
	for _, p := range r.profiles {
		if p.Slug == slug {
			return p, nil
		}
	}
	return Profile{}, persistence.ErrNotFound
}

func (r *profileRepoStub) ListProfiles(ctx context.Context, includePrivate bool) ([]Profile, error) {
	out := make([]Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		if includePrivate || p.IsPublic {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *profileRepoStub) DeleteProfile(ctx context.Context, id string) error {
	if _, ok := r.profiles[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(r.profiles, id)
	r.deleted = append(r.deleted, id)
	return nil
}

type slotRepoStub struct {
	slots     map[string]scheduler.Slot
	order     []string
	upsertErr error
	deleted   []string
}

func newSlotRepoStub(slots ...scheduler.Slot) *slotRepoStub {
	stub := &slotRepoStub{slots: make(map[string]scheduler.Slot)}
	for _, s := range slots {
		stub.slots[s.ID] = s
		stub.order = append(stub.order, s.ID)
	}
	return stub
}

func (r *slotRepoStub) UpsertSlot(ctx context.Context, slot scheduler.Slot) (scheduler.Slot, error) {
	if r.upsertErr != nil {
		return scheduler.Slot{}, r.upsertErr
	}
	if _, ok := r.slots[slot.ID]; !ok {
		r.order = append(r.order, slot.ID)
	}
	r.slots[slot.ID] = slot
	return slot, nil
}

func (r *slotRepoStub) GetSlot(ctx context.Context, id string) (scheduler.Slot, error) {
	s, ok := r.slots[id]
	if !ok {
		return scheduler.Slot{}, persistence.ErrNotFound
	}
	return s, nil
}

func (r *slotRepoStub) ListSlotsForProfile(ctx context.Context, profileID string) ([]scheduler.Slot, error) {
	var out []scheduler.Slot
	for _, id := range r.order {
		if s, ok := r.slots[id]; ok && s.ProfileID == profileID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *slotRepoStub) DeleteSlot(ctx context.Context, id string) error {
	if _, ok := r.slots[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(r.slots, id)
	r.deleted = append(r.deleted, id)
	return nil
}

type requestRepoStub struct {
	requests  map[string]SlotRequest
	created   []SlotRequest
	updated   []SlotRequest
	filters   []RequestFilter
	createErr error
}

func newRequestRepoStub(requests ...SlotRequest) *requestRepoStub {
	stub := &requestRepoStub{requests: make(map[string]SlotRequest)}
	for _, r := range requests {
		stub.requests[r.ID] = r
	}
	return stub
}

func (r *requestRepoStub) CreateSlotRequest(ctx context.Context, request SlotRequest) (SlotRequest, error) {
	if r.createErr != nil {
		return SlotRequest{}, r.createErr
	}
	r.requests[request.ID] = request
	r.created = append(r.created, request)
	return request, nil
}

func (r *requestRepoStub) GetSlotRequest(ctx context.Context, id string) (SlotRequest, error) {
	req, ok := r.requests[id]
	if !ok {
		return SlotRequest{}, persistence.ErrNotFound
	}
	return req, nil
}

func (r *requestRepoStub) ListSlotRequests(ctx context.Context, filter RequestFilter) ([]SlotRequest, error) {
	r.filters = append(r.filters, filter)
	var out []SlotRequest
	for _, req := range r.requests {
		if filter.ProfileID != "" && req.ProfileID != filter.ProfileID {
			continue
		}
		if filter.Status != "" && req.Status != filter.Status {
			continue
		}
		out = append(out, req)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *requestRepoStub) UpdateSlotRequest(ctx context.Context, request SlotRequest) (SlotRequest, error) {
	if _, ok := r.requests[request.ID]; !ok {
		return SlotRequest{}, persistence.ErrNotFound
	}
	r.requests[request.ID] = request
	r.updated = append(r.updated, request)
	return request, nil
}

func (r *requestRepoStub) DeleteSlotRequest(ctx context.Context, id string) error {
	if _, ok := r.requests[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(r.requests, id)
	return nil
}

var (
	testAdmin = Principal{SessionID: "session-1", IsAdmin: true}
	testNow   = time.Date(2024, time.January, 3, 12, 0, 0, 0, time.UTC)
)

func fixedNow() time.Time { return testNow }

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func boolPtr(v bool) *bool { return &v }

func intPtr(v int) *int { return &v }
