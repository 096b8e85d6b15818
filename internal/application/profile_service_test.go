package application

import (
	"context"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/example/availability-scheduler/internal/scheduler"
)

func TestSlugify(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Hello World":          "hello-world",
		"  Lecții  de   pian ": "lecii-de-pian",
		"a---b":                "a-b",
		"-edge-":               "edge",
		"Math 101 / Grade 9":   "math-101-grade-9",
		"!!!":                  "",
		"already-a-slug":       "already-a-slug",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestConfigService(t *testing.T) {
	t.Parallel()

	t.Run("absent config is not an error", func(t *testing.T) {
		t.Parallel()

		svc := NewConfigService(&configRepoStub{}, fixedNow)
		config, err := svc.GetConfig(context.Background())
		if err != nil || config != nil {
			t.Fatalf("expected nil config without error, got %+v err=%v", config, err)
		}
	})

	t.Run("propagates storage failures", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("disk full")
		svc := NewConfigService(&configRepoStub{getErr: boom}, fixedNow)
		if _, err := svc.GetConfig(context.Background()); !errors.Is(err, boom) {
			t.Fatalf("expected storage error, got %v", err)
		}
	})

	t.Run("saves normalized config and defaults show full slots", func(t *testing.T) {
		t.Parallel()

		repo := &configRepoStub{}
		svc := NewConfigService(repo, fixedNow)
		saved, err := svc.SaveConfig(context.Background(), testAdmin, ConfigInput{
			Title:           "  Orar  ",
			DefaultLanguage: "RU",
			Timezone:        "Europe/Chisinau",
		})
		if err != nil {
			t.Fatalf("SaveConfig failed: %v", err)
		}
		if saved.Title != "Orar" || saved.DefaultLanguage != "ru" || !saved.ShowFullSlots {
			t.Fatalf("unexpected config %+v", saved)
		}

		loaded, err := svc.GetConfig(context.Background())
		if err != nil || loaded == nil || loaded.Timezone != "Europe/Chisinau" {
			t.Fatalf("expected stored config, got %+v err=%v", loaded, err)
		}
	})

	t.Run("rejects unknown zones and languages", func(t *testing.T) {
		t.Parallel()

		svc := NewConfigService(&configRepoStub{}, fixedNow)
		_, err := svc.SaveConfig(context.Background(), testAdmin, ConfigInput{DefaultLanguage: "de", Timezone: "Mars/Olympus"})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if vErr.FieldErrors["default_language"] == "" || vErr.FieldErrors["timezone"] == "" {
			t.Fatalf("expected language and timezone errors, got %v", vErr.FieldErrors)
		}
	})

	t.Run("requires an admin", func(t *testing.T) {
		t.Parallel()

		svc := NewConfigService(&configRepoStub{}, fixedNow)
		if _, err := svc.SaveConfig(context.Background(), Anonymous, ConfigInput{ShowFullSlots: boolPtr(false)}); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}

func TestProfileService_SaveProfile(t *testing.T) {
	t.Parallel()

	t.Run("normalizes slug title and mode for new profiles", func(t *testing.T) {
		t.Parallel()

		repo := newProfileRepoStub()
		svc := NewProfileService(repo, sequentialIDs("profile"), fixedNow)

		profile, err := svc.SaveProfile(context.Background(), SaveProfileParams{
			Principal: testAdmin,
			Input:     ProfileInput{Title: "  ", Mode: "monthly", IsPublic: true},
		})
		if err != nil {
			t.Fatalf("SaveProfile failed: %v", err)
		}
		if profile.ID != "profile-1" {
			t.Fatalf("expected generated id, got %q", profile.ID)
		}
		if profile.Title != DefaultProfileTitle || profile.Slug != "disponibilitate" {
			t.Fatalf("expected default title and derived slug, got %q / %q", profile.Title, profile.Slug)
		}
		if profile.Mode != scheduler.ModeWeekly {
			t.Fatalf("expected unknown mode to collapse to weekly, got %v", profile.Mode)
		}
		if !profile.CreatedAt.Equal(testNow) {
			t.Fatalf("expected CreatedAt %v, got %v", testNow, profile.CreatedAt)
		}
	})

	t.Run("keeps the id and creation time of existing profiles", func(t *testing.T) {
		t.Parallel()

		created := testNow.Add(-48 * time.Hour)
		repo := newProfileRepoStub(Profile{ID: "p1", Slug: "piano", Title: "Piano", CreatedAt: created})
		svc := NewProfileService(repo, sequentialIDs("unused"), fixedNow)

		profile, err := svc.SaveProfile(context.Background(), SaveProfileParams{
			Principal: testAdmin,
			Input:     ProfileInput{ID: "p1", Slug: "Piano Lessons", Title: "Piano", Mode: "calendar"},
		})
		if err != nil {
			t.Fatalf("SaveProfile failed: %v", err)
		}
		if profile.ID != "p1" || profile.Slug != "piano-lessons" || profile.Mode != scheduler.ModeCalendar {
			t.Fatalf("unexpected profile %+v", profile)
		}
		if !profile.CreatedAt.Equal(created) || !profile.UpdatedAt.Equal(testNow) {
			t.Fatalf("expected created %v updated %v, got %v %v", created, testNow, profile.CreatedAt, profile.UpdatedAt)
		}
	})

	t.Run("maps duplicate slugs", func(t *testing.T) {
		t.Parallel()

		repo := newProfileRepoStub(Profile{ID: "p1", Slug: "taken"})
		svc := NewProfileService(repo, sequentialIDs("profile"), fixedNow)

		_, err := svc.SaveProfile(context.Background(), SaveProfileParams{Principal: testAdmin, Input: ProfileInput{Slug: "taken"}})
		if !errors.Is(err, ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("rejects slugs without letters or digits", func(t *testing.T) {
		t.Parallel()

		svc := NewProfileService(newProfileRepoStub(), nil, fixedNow)
		_, err := svc.SaveProfile(context.Background(), SaveProfileParams{Principal: testAdmin, Input: ProfileInput{Slug: "???", Title: "???"}})
		var vErr *ValidationError
		if !errors.As(err, &vErr) || vErr.FieldErrors["slug"] == "" {
			t.Fatalf("expected slug validation error, got %v", err)
		}
	})

	t.Run("requires an admin", func(t *testing.T) {
		t.Parallel()

		svc := NewProfileService(newProfileRepoStub(), nil, fixedNow)
		if _, err := svc.SaveProfile(context.Background(), SaveProfileParams{Input: ProfileInput{Title: "x"}}); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}

func TestProfileService_Visibility(t *testing.T) {
	t.Parallel()

	repo := newProfileRepoStub(
		Profile{ID: "p1", Slug: "public", IsPublic: true, CreatedAt: testNow},
		Profile{ID: "p2", Slug: "private", IsPublic: false, CreatedAt: testNow.Add(time.Minute)},
	)
	svc := NewProfileService(repo, nil, fixedNow)
	ctx := context.Background()

	public, err := svc.ListProfiles(ctx, Anonymous)
	if err != nil || len(public) != 1 || public[0].ID != "p1" {
		t.Fatalf("expected only the public profile, got %+v err=%v", public, err)
	}
	all, err := svc.ListProfiles(ctx, testAdmin)
	if err != nil || len(all) != 2 || all[0].ID != "p1" || all[1].ID != "p2" {
		t.Fatalf("expected both profiles in creation order, got %+v err=%v", all, err)
	}

	if _, err := svc.GetProfileBySlug(ctx, Anonymous, "private"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected private profile to be hidden, got %v", err)
	}
	if p, err := svc.GetProfileBySlug(ctx, testAdmin, " Private "); err != nil || p.ID != "p2" {
		t.Fatalf("expected admin to resolve private profile, got %+v err=%v", p, err)
	}
	if _, err := svc.GetProfileBySlug(ctx, Anonymous, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestProfileService_DeleteProfile(t *testing.T) {
	t.Parallel()

	repo := newProfileRepoStub(Profile{ID: "p1", Slug: "one"})
	svc := NewProfileService(repo, nil, fixedNow)

	if err := svc.DeleteProfile(context.Background(), Anonymous, "p1"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err := svc.DeleteProfile(context.Background(), testAdmin, "p1"); err != nil {
		t.Fatalf("DeleteProfile failed: %v", err)
	}
	if err := svc.DeleteProfile(context.Background(), testAdmin, "p1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}
