package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/availability-scheduler/internal/locale"
	"github.com/example/availability-scheduler/internal/slottime"
)

// ConfigRepository captures the persistence operations for the widget configuration.
type ConfigRepository interface {
	GetConfig(ctx context.Context) (Config, error)
	SaveConfig(ctx context.Context, config Config) error
}

// ConfigService reads and updates the singleton widget configuration.
type ConfigService struct {
	configs ConfigRepository
	now     func() time.Time
	logger  *slog.Logger
}

// NewConfigService constructs a config service with the provided dependencies.
func NewConfigService(configs ConfigRepository, now func() time.Time) *ConfigService {
	return NewConfigServiceWithLogger(configs, now, nil)
}

// NewConfigServiceWithLogger constructs a config service with a specified logger.
func NewConfigServiceWithLogger(configs ConfigRepository, now func() time.Time, logger *slog.Logger) *ConfigService {
	if now == nil {
		now = time.Now
	}
	return &ConfigService{configs: configs, now: now, logger: defaultLogger(logger)}
}

func (s *ConfigService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ConfigService", operation, attrs...)
}

// GetConfig returns the stored configuration, or nil when none was saved yet.
func (s *ConfigService) GetConfig(ctx context.Context) (config *Config, err error) {
	if s == nil {
		err = fmt.Errorf("ConfigService is nil")
		return
	}
	if s.configs == nil {
		return nil, nil
	}

	logger := s.loggerWith(ctx, "GetConfig")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to load config", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("found", config != nil).DebugContext(ctx, "config loaded")
	}()

	stored, getErr := s.configs.GetConfig(ctx)
	if getErr != nil {
		if mapped := mapRepoError(getErr, "config"); errors.Is(mapped, ErrNotFound) {
			return nil, nil
		}
		err = getErr
		return
	}
	config = &stored
	return
}

// SaveConfig validates and stores the configuration for administrators.
func (s *ConfigService) SaveConfig(ctx context.Context, principal Principal, input ConfigInput) (config Config, err error) {
	if s == nil {
		err = fmt.Errorf("ConfigService is nil")
		return
	}

	logger := s.loggerWith(ctx, "SaveConfig", "session_id", principal.SessionID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to save config", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "config saved")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	vErr := &ValidationError{}
	config = Config{
		Title:         strings.TrimSpace(input.Title),
		ShowFullSlots: true,
		UpdatedAt:     s.now(),
	}
	if input.ShowFullSlots != nil {
		config.ShowFullSlots = *input.ShowFullSlots
	}
	config.DefaultLanguage, vErr = normalizeLanguage(input.DefaultLanguage, "default_language", vErr)
	config.Timezone, vErr = normalizeTimezone(input.Timezone, "timezone", vErr)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if s.configs == nil {
		return
	}
	if err = s.configs.SaveConfig(ctx, config); err != nil {
		err = mapRepoError(err, "config")
	}
	return
}

// normalizeLanguage accepts "", or a code naming one of the supported languages.
func normalizeLanguage(value, field string, vErr *ValidationError) (string, *ValidationError) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", vErr
	}
	lang, ok := locale.Lookup(trimmed)
	if !ok {
		vErr.add(field, "language must be one of ro, en, ru")
		return "", vErr
	}
	return lang.Code(), vErr
}

// normalizeTimezone accepts "", or an IANA zone name known to the runtime.
func normalizeTimezone(value, field string, vErr *ValidationError) (string, *ValidationError) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", vErr
	}
	if _, err := slottime.LoadZone(trimmed); err != nil {
		vErr.add(field, "timezone must be an IANA zone name")
		return "", vErr
	}
	return trimmed, vErr
}
