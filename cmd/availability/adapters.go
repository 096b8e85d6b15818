package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/example/availability-scheduler/internal/application"
	"github.com/example/availability-scheduler/internal/persistence"
	"github.com/example/availability-scheduler/internal/scheduler"
)

type configRepositoryAdapter struct {
	repo persistence.ConfigRepository
}

func newConfigRepositoryAdapter(repo persistence.ConfigRepository) *configRepositoryAdapter {
	return &configRepositoryAdapter{repo: repo}
}

func (a *configRepositoryAdapter) GetConfig(ctx context.Context) (application.Config, error) {
	stored, err := a.repo.GetConfig(ctx)
	if err != nil {
		return application.Config{}, err
	}
	return toApplicationConfig(stored), nil
}

func (a *configRepositoryAdapter) SaveConfig(ctx context.Context, cfg application.Config) error {
	return a.repo.SaveConfig(ctx, toPersistenceConfig(cfg))
}

type profileRepositoryAdapter struct {
	repo persistence.ProfileRepository
}

func newProfileRepositoryAdapter(repo persistence.ProfileRepository) *profileRepositoryAdapter {
	return &profileRepositoryAdapter{repo: repo}
}

func (a *profileRepositoryAdapter) UpsertProfile(ctx context.Context, profile application.Profile) (application.Profile, error) {
	if err := a.repo.UpsertProfile(ctx, toPersistenceProfile(profile)); err != nil {
		return application.Profile{}, err
	}
	stored, err := a.repo.GetProfile(ctx, profile.ID)
	if err != nil {
		return application.Profile{}, err
	}
	return toApplicationProfile(stored), nil
}

func (a *profileRepositoryAdapter) GetProfile(ctx context.Context, id string) (application.Profile, error) {
	stored, err := a.repo.GetProfile(ctx, id)
	if err != nil {
		return application.Profile{}, err
	}
	return toApplicationProfile(stored), nil
}

func (a *profileRepositoryAdapter) GetProfileBySlug(ctx context.Context, slug string) (application.Profile, error) {
	stored, err := a.repo.GetProfileBySlug(ctx, slug)
	if err != nil {
		return application.Profile{}, err
	}
	return toApplicationProfile(stored), nil
}

func (a *profileRepositoryAdapter) ListProfiles(ctx context.Context, includePrivate bool) ([]application.Profile, error) {
	models, err := a.repo.ListProfiles(ctx, includePrivate)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	profiles := make([]application.Profile, 0, len(models))
	for _, model := range models {
		profiles = append(profiles, toApplicationProfile(model))
	}
	return profiles, nil
}

func (a *profileRepositoryAdapter) DeleteProfile(ctx context.Context, id string) error {
	return a.repo.DeleteProfile(ctx, id)
}

// slotRepositoryAdapter stamps rows with the write time. The store keeps
// created_at of existing rows.
type slotRepositoryAdapter struct {
	repo persistence.SlotRepository
	now  func() time.Time
}

func newSlotRepositoryAdapter(repo persistence.SlotRepository, now func() time.Time) *slotRepositoryAdapter {
	if now == nil {
		now = time.Now
	}
	return &slotRepositoryAdapter{repo: repo, now: now}
}

func (a *slotRepositoryAdapter) UpsertSlot(ctx context.Context, slot scheduler.Slot) (scheduler.Slot, error) {
	now := a.now().UTC()
	if err := a.repo.UpsertSlot(ctx, toPersistenceSlot(slot, now)); err != nil {
		return scheduler.Slot{}, err
	}
	stored, err := a.repo.GetSlot(ctx, slot.ID)
	if err != nil {
		return scheduler.Slot{}, err
	}
	return toSchedulerSlot(stored)
}

func (a *slotRepositoryAdapter) GetSlot(ctx context.Context, id string) (scheduler.Slot, error) {
	stored, err := a.repo.GetSlot(ctx, id)
	if err != nil {
		return scheduler.Slot{}, err
	}
	return toSchedulerSlot(stored)
}

func (a *slotRepositoryAdapter) ListSlotsForProfile(ctx context.Context, profileID string) ([]scheduler.Slot, error) {
	models, err := a.repo.ListSlotsForProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	slots := make([]scheduler.Slot, 0, len(models))
	for _, model := range models {
		slot, convErr := toSchedulerSlot(model)
		if convErr != nil {
			return nil, convErr
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

func (a *slotRepositoryAdapter) DeleteSlot(ctx context.Context, id string) error {
	return a.repo.DeleteSlot(ctx, id)
}

type slotRequestRepositoryAdapter struct {
	repo persistence.SlotRequestRepository
}

func newSlotRequestRepositoryAdapter(repo persistence.SlotRequestRepository) *slotRequestRepositoryAdapter {
	return &slotRequestRepositoryAdapter{repo: repo}
}

func (a *slotRequestRepositoryAdapter) CreateSlotRequest(ctx context.Context, request application.SlotRequest) (application.SlotRequest, error) {
	if err := a.repo.CreateSlotRequest(ctx, toPersistenceSlotRequest(request)); err != nil {
		return application.SlotRequest{}, err
	}
	return a.GetSlotRequest(ctx, request.ID)
}

func (a *slotRequestRepositoryAdapter) GetSlotRequest(ctx context.Context, id string) (application.SlotRequest, error) {
	stored, err := a.repo.GetSlotRequest(ctx, id)
	if err != nil {
		return application.SlotRequest{}, err
	}
	return toApplicationSlotRequest(stored)
}

func (a *slotRequestRepositoryAdapter) ListSlotRequests(ctx context.Context, filter application.RequestFilter) ([]application.SlotRequest, error) {
	models, err := a.repo.ListSlotRequests(ctx, persistence.SlotRequestFilter{
		ProfileID: filter.ProfileID,
		Status:    string(filter.Status),
	})
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	requests := make([]application.SlotRequest, 0, len(models))
	for _, model := range models {
		request, convErr := toApplicationSlotRequest(model)
		if convErr != nil {
			return nil, convErr
		}
		requests = append(requests, request)
	}
	return requests, nil
}

func (a *slotRequestRepositoryAdapter) UpdateSlotRequest(ctx context.Context, request application.SlotRequest) (application.SlotRequest, error) {
	if err := a.repo.UpdateSlotRequest(ctx, toPersistenceSlotRequest(request)); err != nil {
		return application.SlotRequest{}, err
	}
	return a.GetSlotRequest(ctx, request.ID)
}

func (a *slotRequestRepositoryAdapter) DeleteSlotRequest(ctx context.Context, id string) error {
	return a.repo.DeleteSlotRequest(ctx, id)
}

type credentialStoreAdapter struct {
	repo persistence.AdminCredentialRepository
}

func newCredentialStoreAdapter(repo persistence.AdminCredentialRepository) *credentialStoreAdapter {
	return &credentialStoreAdapter{repo: repo}
}

func (a *credentialStoreAdapter) GetAdminCredential(ctx context.Context) (application.AdminCredential, error) {
	stored, err := a.repo.GetAdminCredential(ctx)
	if err != nil {
		return application.AdminCredential{}, err
	}
	return application.AdminCredential{PasswordHash: stored.PasswordHash, UpdatedAt: stored.UpdatedAt}, nil
}

func (a *credentialStoreAdapter) SetAdminCredential(ctx context.Context, credential application.AdminCredential) error {
	return a.repo.SetAdminCredential(ctx, persistence.AdminCredential{
		PasswordHash: credential.PasswordHash,
		UpdatedAt:    credential.UpdatedAt,
	})
}

type sessionRepositoryAdapter struct {
	repo persistence.SessionRepository
}

func newSessionRepositoryAdapter(repo persistence.SessionRepository) *sessionRepositoryAdapter {
	return &sessionRepositoryAdapter{repo: repo}
}

func (a *sessionRepositoryAdapter) CreateSession(ctx context.Context, session application.Session) (application.Session, error) {
	stored, err := a.repo.CreateSession(ctx, toPersistenceSession(session))
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) GetSession(ctx context.Context, token string) (application.Session, error) {
	stored, err := a.repo.GetSession(ctx, token)
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (application.Session, error) {
	stored, err := a.repo.RevokeSession(ctx, token, revokedAt)
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) DeleteExpiredSessions(ctx context.Context, reference time.Time) (int64, error) {
	return a.repo.DeleteExpiredSessions(ctx, reference)
}

func toApplicationConfig(model persistence.Config) application.Config {
	showFull := true
	if model.ShowFullSlots != nil {
		showFull = *model.ShowFullSlots
	}
	return application.Config{
		Title:           model.Title,
		DefaultLanguage: stringValue(model.DefaultLanguage),
		Timezone:        stringValue(model.Timezone),
		ShowFullSlots:   showFull,
		UpdatedAt:       model.UpdatedAt,
	}
}

func toPersistenceConfig(cfg application.Config) persistence.Config {
	showFull := cfg.ShowFullSlots
	return persistence.Config{
		Title:           cfg.Title,
		DefaultLanguage: optionalString(cfg.DefaultLanguage),
		Timezone:        optionalString(cfg.Timezone),
		ShowFullSlots:   &showFull,
		UpdatedAt:       cfg.UpdatedAt,
	}
}

func toApplicationProfile(model persistence.Profile) application.Profile {
	return application.Profile{
		ID:              model.ID,
		Slug:            model.Slug,
		Title:           model.Title,
		Description:     stringValue(model.Description),
		Mode:            scheduler.ParseMode(model.Mode),
		Timezone:        stringValue(model.Timezone),
		DefaultLanguage: stringValue(model.DefaultLanguage),
		IsPublic:        model.IsPublic,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}

func toPersistenceProfile(profile application.Profile) persistence.Profile {
	return persistence.Profile{
		ID:              profile.ID,
		Slug:            profile.Slug,
		Title:           profile.Title,
		Description:     optionalString(profile.Description),
		Mode:            profile.Mode.String(),
		Timezone:        optionalString(profile.Timezone),
		DefaultLanguage: optionalString(profile.DefaultLanguage),
		IsPublic:        profile.IsPublic,
		CreatedAt:       profile.CreatedAt,
		UpdatedAt:       profile.UpdatedAt,
	}
}

func toSchedulerSlot(model persistence.Slot) (scheduler.Slot, error) {
	status, err := scheduler.ParseStatus(model.Status)
	if err != nil {
		return scheduler.Slot{}, fmt.Errorf("slot %s: %w", model.ID, err)
	}
	start, err := scheduler.ParseTimeOfDay(model.StartTime)
	if err != nil {
		return scheduler.Slot{}, fmt.Errorf("slot %s: start time: %w", model.ID, err)
	}
	end, err := scheduler.ParseTimeOfDay(model.EndTime)
	if err != nil {
		return scheduler.Slot{}, fmt.Errorf("slot %s: end time: %w", model.ID, err)
	}
	var date scheduler.Date
	if model.SlotDate != nil && strings.TrimSpace(*model.SlotDate) != "" {
		if date, err = scheduler.ParseDate(*model.SlotDate); err != nil {
			return scheduler.Slot{}, fmt.Errorf("slot %s: date: %w", model.ID, err)
		}
	}
	return scheduler.Slot{
		ID:             model.ID,
		ProfileID:      model.ProfileID,
		Date:           date,
		DayOfWeek:      model.DayOfWeek,
		StartTime:      start,
		EndTime:        end,
		Status:         status,
		SpotsTotal:     cloneInt(model.SpotsTotal),
		SpotsAvailable: cloneInt(model.SpotsAvailable),
		Label:          model.Label,
		Note:           stringValue(model.Note),
		Visibility:     cloneBool(model.Visibility),
	}, nil
}

func toPersistenceSlot(slot scheduler.Slot, now time.Time) persistence.Slot {
	return persistence.Slot{
		ID:             slot.ID,
		ProfileID:      slot.ProfileID,
		SlotDate:       optionalDate(slot.Date),
		DayOfWeek:      slot.DayOfWeek,
		StartTime:      slot.StartTime.String(),
		EndTime:        slot.EndTime.String(),
		Status:         slot.Status.String(),
		SpotsTotal:     cloneInt(slot.SpotsTotal),
		SpotsAvailable: cloneInt(slot.SpotsAvailable),
		Label:          slot.Label,
		Note:           optionalString(slot.Note),
		Visibility:     cloneBool(slot.Visibility),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func toApplicationSlotRequest(model persistence.SlotRequest) (application.SlotRequest, error) {
	status, ok := application.ParseRequestStatus(model.Status)
	if !ok {
		return application.SlotRequest{}, fmt.Errorf("slot request %s: unknown status %q", model.ID, model.Status)
	}
	snapshot, err := toSlotSnapshot(model)
	if err != nil {
		return application.SlotRequest{}, fmt.Errorf("slot request %s: %w", model.ID, err)
	}
	return application.SlotRequest{
		ID:           model.ID,
		ProfileID:    model.ProfileID,
		ProfileSlug:  stringValue(model.ProfileSlug),
		ProfileTitle: stringValue(model.ProfileTitle),
		SlotID:       model.SlotID,
		Contact: application.Contact{
			Name:  stringValue(model.StudentName),
			Value: stringValue(model.StudentContact),
			Class: stringValue(model.StudentClass),
			Note:  stringValue(model.StudentNote),
		},
		Status:     status,
		AdminNote:  stringValue(model.AdminNote),
		CreatedAt:  model.CreatedAt,
		ReviewedAt: cloneTime(model.ReviewedAt),
		Snapshot:   snapshot,
	}, nil
}

// toSlotSnapshot returns nil when the row carries no schedule snapshot.
func toSlotSnapshot(model persistence.SlotRequest) (*application.SlotSnapshot, error) {
	if model.SlotDayOfWeek == nil || model.SlotStartTime == nil || model.SlotEndTime == nil {
		return nil, nil
	}
	start, err := scheduler.ParseTimeOfDay(*model.SlotStartTime)
	if err != nil {
		return nil, fmt.Errorf("snapshot start time: %w", err)
	}
	end, err := scheduler.ParseTimeOfDay(*model.SlotEndTime)
	if err != nil {
		return nil, fmt.Errorf("snapshot end time: %w", err)
	}
	snapshot := &application.SlotSnapshot{
		DayOfWeek: *model.SlotDayOfWeek,
		StartTime: start,
		EndTime:   end,
		Label:     stringValue(model.SlotLabel),
	}
	if model.SlotDate != nil && strings.TrimSpace(*model.SlotDate) != "" {
		if snapshot.Date, err = scheduler.ParseDate(*model.SlotDate); err != nil {
			return nil, fmt.Errorf("snapshot date: %w", err)
		}
	}
	return snapshot, nil
}

func toPersistenceSlotRequest(request application.SlotRequest) persistence.SlotRequest {
	model := persistence.SlotRequest{
		ID:             request.ID,
		ProfileID:      request.ProfileID,
		SlotID:         request.SlotID,
		StudentName:    optionalString(request.Contact.Name),
		StudentContact: optionalString(request.Contact.Value),
		StudentClass:   optionalString(request.Contact.Class),
		StudentNote:    optionalString(request.Contact.Note),
		Status:         string(request.Status),
		AdminNote:      optionalString(request.AdminNote),
		CreatedAt:      request.CreatedAt,
		ReviewedAt:     cloneTime(request.ReviewedAt),
	}
	if snapshot := request.Snapshot; snapshot != nil {
		dow := snapshot.DayOfWeek
		start := snapshot.StartTime.String()
		end := snapshot.EndTime.String()
		label := snapshot.Label
		model.SlotDate = optionalDate(snapshot.Date)
		model.SlotDayOfWeek = &dow
		model.SlotStartTime = &start
		model.SlotEndTime = &end
		model.SlotLabel = &label
	}
	return model
}

func toApplicationSession(model persistence.Session) application.Session {
	return application.Session{
		ID:        model.ID,
		Token:     model.Token,
		ExpiresAt: model.ExpiresAt,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
		RevokedAt: cloneTime(model.RevokedAt),
	}
}

func toPersistenceSession(session application.Session) persistence.Session {
	return persistence.Session{
		ID:        session.ID,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
		RevokedAt: cloneTime(session.RevokedAt),
	}
}

func stringValue(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

// optionalString maps blank strings to NULL.
func optionalString(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}

func optionalDate(date scheduler.Date) *string {
	if date.IsZero() {
		return nil
	}
	value := date.String()
	return &value
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}
