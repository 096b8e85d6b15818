package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/availability-scheduler/internal/application"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

func (f *ServiceFactory) ids(override func() string) func() string {
	if override != nil {
		return override
	}
	return f.IDGenerator.NextFunc()
}

func (f *ServiceFactory) now(override func() time.Time) func() time.Time {
	if override != nil {
		return override
	}
	return f.Clock.NowFunc()
}

// NewConfigService builds a config service over configs.
func (f *ServiceFactory) NewConfigService(configs application.ConfigRepository, logger *slog.Logger) *application.ConfigService {
	return application.NewConfigServiceWithLogger(configs, f.now(nil), logger)
}

// ProfileServiceDeps captures dependencies for constructing a profile service.
type ProfileServiceDeps struct {
	Profiles    application.ProfileRepository
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewProfileService builds a profile service using the supplied dependencies
// combined with the factory defaults.
func (f *ServiceFactory) NewProfileService(deps ProfileServiceDeps) *application.ProfileService {
	return application.NewProfileServiceWithLogger(deps.Profiles, f.ids(deps.IDGenerator), f.now(deps.Now), deps.Logger)
}

// SlotServiceDeps captures dependencies for constructing a slot service.
type SlotServiceDeps struct {
	Slots       application.SlotRepository
	Profiles    application.ProfileRepository
	IDGenerator func() string
	Logger      *slog.Logger
}

// NewSlotService builds a slot service using the supplied dependencies.
func (f *ServiceFactory) NewSlotService(deps SlotServiceDeps) *application.SlotService {
	return application.NewSlotServiceWithLogger(deps.Slots, deps.Profiles, f.ids(deps.IDGenerator), deps.Logger)
}

// RequestServiceDeps captures dependencies for constructing a request service.
type RequestServiceDeps struct {
	Requests    application.SlotRequestRepository
	Slots       application.SlotRepository
	Profiles    application.ProfileRepository
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewRequestService builds a request service using the supplied dependencies.
func (f *ServiceFactory) NewRequestService(deps RequestServiceDeps) *application.RequestService {
	return application.NewRequestServiceWithLogger(deps.Requests, deps.Slots, deps.Profiles, f.ids(deps.IDGenerator), f.now(deps.Now), deps.Logger)
}

// AuthServiceDeps captures dependencies for constructing an auth service.
type AuthServiceDeps struct {
	Credentials    application.AdminCredentialStore
	Sessions       application.SessionRepository
	TokenGenerator func() string
	Now            func() time.Time
	SessionTTL     time.Duration
	Logger         *slog.Logger
}

// NewAuthService builds an auth service using the supplied dependencies.
// The session TTL defaults to one hour.
func (f *ServiceFactory) NewAuthService(deps AuthServiceDeps) *application.AuthService {
	ttl := deps.SessionTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return application.NewAuthServiceWithLogger(
		deps.Credentials,
		deps.Sessions,
		f.ids(deps.TokenGenerator),
		f.now(deps.Now),
		ttl,
		deps.Logger,
	)
}
