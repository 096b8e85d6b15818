package testfixtures

import (
	"context"
	"testing"

	"github.com/example/availability-scheduler/internal/application"
)

type capturingProfileRepo struct {
	saved application.Profile
}

func (c *capturingProfileRepo) UpsertProfile(ctx context.Context, profile application.Profile) (application.Profile, error) {
	c.saved = profile
	return profile, nil
}

func (c *capturingProfileRepo) GetProfile(ctx context.Context, id string) (application.Profile, error) {
	return application.Profile{}, application.ErrNotFound
}

func (c *capturingProfileRepo) GetProfileBySlug(ctx context.Context, slug string) (application.Profile, error) {
	return application.Profile{}, application.ErrNotFound
}

func (c *capturingProfileRepo) ListProfiles(ctx context.Context, includePrivate bool) ([]application.Profile, error) {
	return nil, nil
}

func (c *capturingProfileRepo) DeleteProfile(ctx context.Context, id string) error {
	return nil
}

func TestServiceFactoryNewProfileService(t *testing.T) {
	factory := NewServiceFactory()
	repo := &capturingProfileRepo{}

	svc := factory.NewProfileService(ProfileServiceDeps{Profiles: repo})
	principal := application.Principal{SessionID: "session-1", IsAdmin: true}
	input := application.ProfileInput{Slug: "math", Title: "Math"}

	profile, err := svc.SaveProfile(context.Background(), application.SaveProfileParams{Principal: principal, Input: input})
	if err != nil {
		t.Fatalf("SaveProfile returned error: %v", err)
	}

	if profile.ID != "id-1" {
		t.Fatalf("expected generated ID id-1, got %q", profile.ID)
	}
	if repo.saved.ID != profile.ID {
		t.Fatalf("repository received unexpected ID: %q", repo.saved.ID)
	}
	if !profile.CreatedAt.Equal(factory.Clock.Now()) {
		t.Fatalf("expected timestamp %v, got %v", factory.Clock.Now(), profile.CreatedAt)
	}
}

func TestServiceFactoryNewAuthService(t *testing.T) {
	factory := NewServiceFactory(WithIDGenerator(NewIDGenerator("token")))
	svc := factory.NewAuthService(AuthServiceDeps{})

	if _, err := svc.Login(context.Background(), application.LoginParams{Password: ""}); err == nil {
		t.Fatal("expected blank password to be rejected")
	}
}
