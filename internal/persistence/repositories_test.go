package persistence_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/availability-scheduler/internal/persistence"
	"github.com/example/availability-scheduler/internal/testfixtures"
)

func TestConfigRepository(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := testfixtures.NewSQLiteHarness(t).Store

	if _, err := store.GetConfig(ctx); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before first save, got %v", err)
	}

	cfg := persistence.Config{
		Title:           "Lessons",
		DefaultLanguage: testfixtures.Ptr("ru"),
		Timezone:        testfixtures.Ptr("Europe/London"),
		ShowFullSlots:   testfixtures.Ptr(false),
		UpdatedAt:       testfixtures.ReferenceTime(),
	}
	if err := store.SaveConfig(ctx, cfg); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	cfg.Title = "Lessons 2"
	cfg.Timezone = nil
	if err := store.SaveConfig(ctx, cfg); err != nil {
		t.Fatalf("second SaveConfig failed: %v", err)
	}

	got, err := store.GetConfig(ctx)
	if err != nil {
		t.Fatalf("GetConfig failed: %v", err)
	}
	if got.Title != "Lessons 2" || got.Timezone != nil || got.ShowFullSlots == nil || *got.ShowFullSlots {
		t.Fatalf("unexpected config %+v", got)
	}
	if got.DefaultLanguage == nil || *got.DefaultLanguage != "ru" {
		t.Fatalf("unexpected language %v", got.DefaultLanguage)
	}

	t.Run("rejects unsupported language", func(t *testing.T) {
		bad := cfg
		bad.DefaultLanguage = testfixtures.Ptr("de")
		if err := store.SaveConfig(ctx, bad); !errors.Is(err, persistence.ErrConstraintViolation) {
			t.Fatalf("expected ErrConstraintViolation, got %v", err)
		}
	})
}

func TestProfileRepository(t *testing.T) {
	t.Parallel()

	t.Run("upserts and reads profiles", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		store := testfixtures.NewSQLiteHarness(t).Store

		profile := testfixtures.NewProfile(
			testfixtures.WithProfileID("p-1"),
			testfixtures.WithProfileSlug("math"),
		)
		profile.Description = testfixtures.Ptr("Algebra and geometry")
		if err := store.UpsertProfile(ctx, profile); err != nil {
			t.Fatalf("UpsertProfile failed: %v", err)
		}

		bySlug, err := store.GetProfileBySlug(ctx, "math")
		if err != nil {
			t.Fatalf("GetProfileBySlug failed: %v", err)
		}
		if bySlug.ID != "p-1" || bySlug.Description == nil || *bySlug.Description != "Algebra and geometry" {
			t.Fatalf("unexpected profile %+v", bySlug)
		}
		if !bySlug.CreatedAt.Equal(profile.CreatedAt) {
			t.Fatalf("created_at mismatch: %v vs %v", bySlug.CreatedAt, profile.CreatedAt)
		}

		updated := profile
		updated.Title = "Math"
		updated.Mode = "calendar"
		updated.CreatedAt = profile.CreatedAt.Add(time.Hour)
		if err := store.UpsertProfile(ctx, updated); err != nil {
			t.Fatalf("update UpsertProfile failed: %v", err)
		}

		got, err := store.GetProfile(ctx, "p-1")
		if err != nil {
			t.Fatalf("GetProfile failed: %v", err)
		}
		if got.Title != "Math" || got.Mode != "calendar" {
			t.Fatalf("update not applied: %+v", got)
		}
		if !got.CreatedAt.Equal(profile.CreatedAt) {
			t.Fatalf("upsert must preserve created_at, got %v", got.CreatedAt)
		}
	})

	t.Run("duplicate slug", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		store := testfixtures.NewSQLiteHarness(t).Store

		if err := store.UpsertProfile(ctx, testfixtures.NewProfile(testfixtures.WithProfileSlug("same"))); err != nil {
			t.Fatalf("UpsertProfile failed: %v", err)
		}
		err := store.UpsertProfile(ctx, testfixtures.NewProfile(testfixtures.WithProfileSlug("same")))
		if !errors.Is(err, persistence.ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate, got %v", err)
		}
	})

	t.Run("private profiles are listed only when requested", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		store := testfixtures.NewSQLiteHarness(t).Store

		base := testfixtures.ReferenceTime()
		public := testfixtures.NewProfile(testfixtures.WithProfileCreatedAt(base.Add(2 * time.Hour)))
		hidden := testfixtures.NewProfile(testfixtures.WithProfilePrivate(), testfixtures.WithProfileCreatedAt(base))
		for _, p := range []persistence.Profile{public, hidden} {
			if err := store.UpsertProfile(ctx, p); err != nil {
				t.Fatalf("UpsertProfile failed: %v", err)
			}
		}

		publicOnly, err := store.ListProfiles(ctx, false)
		if err != nil {
			t.Fatalf("ListProfiles failed: %v", err)
		}
		if len(publicOnly) != 1 || publicOnly[0].ID != public.ID {
			t.Fatalf("unexpected public listing %+v", publicOnly)
		}

		all, err := store.ListProfiles(ctx, true)
		if err != nil {
			t.Fatalf("ListProfiles failed: %v", err)
		}
		if len(all) != 2 || all[0].ID != hidden.ID || all[1].ID != public.ID {
			t.Fatalf("expected creation order, got %+v", all)
		}
	})

	t.Run("delete cascades to slots and requests", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		store := testfixtures.NewSQLiteHarness(t).Store

		profile := testfixtures.NewProfile()
		if err := store.UpsertProfile(ctx, profile); err != nil {
			t.Fatalf("UpsertProfile failed: %v", err)
		}
		slot := testfixtures.NewSlot(profile.ID)
		if err := store.UpsertSlot(ctx, slot); err != nil {
			t.Fatalf("UpsertSlot failed: %v", err)
		}
		if err := store.CreateSlotRequest(ctx, testfixtures.NewSlotRequest(slot)); err != nil {
			t.Fatalf("CreateSlotRequest failed: %v", err)
		}

		if err := store.DeleteProfile(ctx, profile.ID); err != nil {
			t.Fatalf("DeleteProfile failed: %v", err)
		}
		if _, err := store.GetSlot(ctx, slot.ID); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("slot should be gone, got %v", err)
		}
		requests, err := store.ListSlotRequests(ctx, persistence.SlotRequestFilter{})
		if err != nil {
			t.Fatalf("ListSlotRequests failed: %v", err)
		}
		if len(requests) != 0 {
			t.Fatalf("requests should be removed, got %+v", requests)
		}
		if err := store.DeleteProfile(ctx, profile.ID); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("second delete should be ErrNotFound, got %v", err)
		}
	})
}

func TestSlotRepository(t *testing.T) {
	t.Parallel()

	t.Run("round trips optional fields", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		store := testfixtures.NewSQLiteHarness(t).Store

		profile := testfixtures.NewProfile()
		if err := store.UpsertProfile(ctx, profile); err != nil {
			t.Fatalf("UpsertProfile failed: %v", err)
		}

		slot := testfixtures.NewSlot(profile.ID, testfixtures.WithSlotDate("2024-03-31", 0))
		slot.SpotsTotal = nil
		slot.SpotsAvailable = nil
		slot.Visibility = nil
		slot.Note = testfixtures.Ptr("bring a calculator")
		if err := store.UpsertSlot(ctx, slot); err != nil {
			t.Fatalf("UpsertSlot failed: %v", err)
		}

		got, err := store.GetSlot(ctx, slot.ID)
		if err != nil {
			t.Fatalf("GetSlot failed: %v", err)
		}
		if got.SlotDate == nil || *got.SlotDate != "2024-03-31" || got.DayOfWeek != 0 {
			t.Fatalf("unexpected date fields %+v", got)
		}
		if got.SpotsTotal != nil || got.SpotsAvailable != nil || got.Visibility != nil {
			t.Fatalf("nil fields must stay nil: %+v", got)
		}
		if got.Note == nil || *got.Note != "bring a calculator" {
			t.Fatalf("unexpected note %v", got.Note)
		}
	})

	t.Run("lists dated slots first then weekday and start", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		store := testfixtures.NewSQLiteHarness(t).Store

		profile := testfixtures.NewProfile()
		if err := store.UpsertProfile(ctx, profile); err != nil {
			t.Fatalf("UpsertProfile failed: %v", err)
		}
		slots := []persistence.Slot{
			testfixtures.NewSlot(profile.ID, testfixtures.WithSlotID("weekly-wed"), testfixtures.WithSlotWeekly(3, "09:00", "10:00")),
			testfixtures.NewSlot(profile.ID, testfixtures.WithSlotID("weekly-mon-late"), testfixtures.WithSlotWeekly(1, "15:00", "16:00")),
			testfixtures.NewSlot(profile.ID, testfixtures.WithSlotID("dated"), testfixtures.WithSlotDate("2024-01-10", 3)),
			testfixtures.NewSlot(profile.ID, testfixtures.WithSlotID("weekly-mon-early"), testfixtures.WithSlotWeekly(1, "08:00", "09:00")),
		}
		for _, slot := range slots {
			if err := store.UpsertSlot(ctx, slot); err != nil {
				t.Fatalf("UpsertSlot %s failed: %v", slot.ID, err)
			}
		}

		listed, err := store.ListSlotsForProfile(ctx, profile.ID)
		if err != nil {
			t.Fatalf("ListSlotsForProfile failed: %v", err)
		}
		want := []string{"dated", "weekly-mon-early", "weekly-mon-late", "weekly-wed"}
		if len(listed) != len(want) {
			t.Fatalf("expected %d slots, got %d", len(want), len(listed))
		}
		for i, id := range want {
			if listed[i].ID != id {
				t.Fatalf("position %d: want %s, got %s", i, id, listed[i].ID)
			}
		}
	})

	t.Run("rejects unknown profile and bad status", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		store := testfixtures.NewSQLiteHarness(t).Store

		err := store.UpsertSlot(ctx, testfixtures.NewSlot("missing-profile"))
		if !errors.Is(err, persistence.ErrForeignKeyViolation) {
			t.Fatalf("expected ErrForeignKeyViolation, got %v", err)
		}

		profile := testfixtures.NewProfile()
		if err := store.UpsertProfile(ctx, profile); err != nil {
			t.Fatalf("UpsertProfile failed: %v", err)
		}
		err = store.UpsertSlot(ctx, testfixtures.NewSlot(profile.ID, testfixtures.WithSlotStatus("Booked")))
		if !errors.Is(err, persistence.ErrConstraintViolation) {
			t.Fatalf("expected ErrConstraintViolation, got %v", err)
		}
		err = store.UpsertSlot(ctx, testfixtures.NewSlot(profile.ID, testfixtures.WithSlotWeekly(7, "10:00", "11:00")))
		if !errors.Is(err, persistence.ErrConstraintViolation) {
			t.Fatalf("expected ErrConstraintViolation for dayOfWeek 7, got %v", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		store := testfixtures.NewSQLiteHarness(t).Store

		profile := testfixtures.NewProfile()
		if err := store.UpsertProfile(ctx, profile); err != nil {
			t.Fatalf("UpsertProfile failed: %v", err)
		}
		slot := testfixtures.NewSlot(profile.ID)
		if err := store.UpsertSlot(ctx, slot); err != nil {
			t.Fatalf("UpsertSlot failed: %v", err)
		}
		if err := store.DeleteSlot(ctx, slot.ID); err != nil {
			t.Fatalf("DeleteSlot failed: %v", err)
		}
		if err := store.DeleteSlot(ctx, slot.ID); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestSlotRequestRepository(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := testfixtures.NewSQLiteHarness(t).Store

	first := testfixtures.NewProfile(testfixtures.WithProfileSlug("first"))
	second := testfixtures.NewProfile(testfixtures.WithProfileSlug("second"))
	for _, p := range []persistence.Profile{first, second} {
		if err := store.UpsertProfile(ctx, p); err != nil {
			t.Fatalf("UpsertProfile failed: %v", err)
		}
	}
	slotA := testfixtures.NewSlot(first.ID, testfixtures.WithSlotLabel("Algebra"))
	slotB := testfixtures.NewSlot(second.ID)
	for _, s := range []persistence.Slot{slotA, slotB} {
		if err := store.UpsertSlot(ctx, s); err != nil {
			t.Fatalf("UpsertSlot failed: %v", err)
		}
	}

	base := testfixtures.ReferenceTime()
	older := testfixtures.NewSlotRequest(slotA, testfixtures.WithRequestID("older"), testfixtures.WithRequestCreatedAt(base))
	newer := testfixtures.NewSlotRequest(slotA, testfixtures.WithRequestID("newer"), testfixtures.WithRequestCreatedAt(base.Add(time.Minute)))
	other := testfixtures.NewSlotRequest(slotB, testfixtures.WithRequestID("other"), testfixtures.WithRequestStatus("approved"))
	for _, r := range []persistence.SlotRequest{older, newer, other} {
		if err := store.CreateSlotRequest(ctx, r); err != nil {
			t.Fatalf("CreateSlotRequest %s failed: %v", r.ID, err)
		}
	}

	t.Run("reads denormalised profile and slot fields", func(t *testing.T) {
		got, err := store.GetSlotRequest(ctx, "older")
		if err != nil {
			t.Fatalf("GetSlotRequest failed: %v", err)
		}
		if got.ProfileSlug == nil || *got.ProfileSlug != "first" || got.ProfileTitle == nil {
			t.Fatalf("profile fields not joined: %+v", got)
		}
		if got.SlotLabel == nil || *got.SlotLabel != "Algebra" || got.SlotDayOfWeek == nil || *got.SlotDayOfWeek != 1 {
			t.Fatalf("slot snapshot missing: %+v", got)
		}
		if got.ReviewedAt != nil {
			t.Fatalf("new request must not be reviewed")
		}
	})

	t.Run("filters and orders newest first", func(t *testing.T) {
		forFirst, err := store.ListSlotRequests(ctx, persistence.SlotRequestFilter{ProfileID: first.ID})
		if err != nil {
			t.Fatalf("ListSlotRequests failed: %v", err)
		}
		if len(forFirst) != 2 || forFirst[0].ID != "newer" || forFirst[1].ID != "older" {
			t.Fatalf("unexpected listing %+v", forFirst)
		}

		approved, err := store.ListSlotRequests(ctx, persistence.SlotRequestFilter{Status: "approved"})
		if err != nil {
			t.Fatalf("ListSlotRequests failed: %v", err)
		}
		if len(approved) != 1 || approved[0].ID != "other" {
			t.Fatalf("unexpected approved listing %+v", approved)
		}
	})

	t.Run("update review fields", func(t *testing.T) {
		reviewed := older
		reviewed.Status = "rejected"
		reviewed.AdminNote = testfixtures.Ptr("slot already taken")
		reviewedAt := base.Add(2 * time.Hour)
		reviewed.ReviewedAt = &reviewedAt
		if err := store.UpdateSlotRequest(ctx, reviewed); err != nil {
			t.Fatalf("UpdateSlotRequest failed: %v", err)
		}

		got, err := store.GetSlotRequest(ctx, "older")
		if err != nil {
			t.Fatalf("GetSlotRequest failed: %v", err)
		}
		if got.Status != "rejected" || got.AdminNote == nil || got.ReviewedAt == nil || !got.ReviewedAt.Equal(reviewedAt) {
			t.Fatalf("review not stored: %+v", got)
		}

		missing := reviewed
		missing.ID = "missing"
		if err := store.UpdateSlotRequest(ctx, missing); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := store.DeleteSlotRequest(ctx, "other"); err != nil {
			t.Fatalf("DeleteSlotRequest failed: %v", err)
		}
		if _, err := store.GetSlotRequest(ctx, "other"); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestAdminCredentialRepository(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := testfixtures.NewSQLiteHarness(t).Store

	if _, err := store.GetAdminCredential(ctx); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	for _, hash := range []string{"hash-1", "hash-2"} {
		if err := store.SetAdminCredential(ctx, persistence.AdminCredential{PasswordHash: hash, UpdatedAt: testfixtures.ReferenceTime()}); err != nil {
			t.Fatalf("SetAdminCredential failed: %v", err)
		}
	}

	got, err := store.GetAdminCredential(ctx)
	if err != nil {
		t.Fatalf("GetAdminCredential failed: %v", err)
	}
	if got.PasswordHash != "hash-2" {
		t.Fatalf("expected latest hash, got %q", got.PasswordHash)
	}

	if err := store.SetAdminCredential(ctx, persistence.AdminCredential{}); !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation, got %v", err)
	}
}

func TestSessionRepository(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := testfixtures.NewSQLiteHarness(t).Store

	base := testfixtures.ReferenceTime()
	session := persistence.Session{
		ID:        "s-1",
		Token:     " token-1 ",
		ExpiresAt: base.Add(time.Hour),
		CreatedAt: base,
		UpdatedAt: base,
	}

	created, err := store.CreateSession(ctx, session)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if created.Token != "token-1" {
		t.Fatalf("token should be trimmed, got %q", created.Token)
	}

	if _, err := store.CreateSession(ctx, persistence.Session{ID: "s-2", Token: "token-1", ExpiresAt: base}); !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for reused token, got %v", err)
	}

	revokedAt := base.Add(10 * time.Minute)
	revoked, err := store.RevokeSession(ctx, "token-1", revokedAt)
	if err != nil {
		t.Fatalf("RevokeSession failed: %v", err)
	}
	if revoked.RevokedAt == nil || !revoked.RevokedAt.Equal(revokedAt) {
		t.Fatalf("unexpected revocation %+v", revoked)
	}

	again, err := store.RevokeSession(ctx, "token-1", revokedAt.Add(time.Minute))
	if err != nil {
		t.Fatalf("second RevokeSession failed: %v", err)
	}
	if !again.RevokedAt.Equal(revokedAt) {
		t.Fatalf("first revocation time must be kept, got %v", again.RevokedAt)
	}

	if _, err := store.RevokeSession(ctx, "unknown", revokedAt); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if _, err := store.CreateSession(ctx, persistence.Session{ID: "s-3", Token: "token-3", ExpiresAt: base.Add(3 * time.Hour), CreatedAt: base, UpdatedAt: base}); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	removed, err := store.DeleteExpiredSessions(ctx, base.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("DeleteExpiredSessions failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 expired session removed, got %d", removed)
	}
	if _, err := store.GetSession(ctx, "token-1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expired session should be gone, got %v", err)
	}
	if _, err := store.GetSession(ctx, "token-3"); err != nil {
		t.Fatalf("live session should remain: %v", err)
	}
}
