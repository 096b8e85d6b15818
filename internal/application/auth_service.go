package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// AdminCredentialStore exposes the single admin password hash.
type AdminCredentialStore interface {
	GetAdminCredential(ctx context.Context) (AdminCredential, error)
	SetAdminCredential(ctx context.Context, credential AdminCredential) error
}

// SessionRepository captures the persistence interactions for issued sessions.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) (int64, error)
}

// AuthService guards the admin surface: it verifies the admin password,
// issues session tokens and validates them on every admin request.
type AuthService struct {
	credentials    AdminCredentialStore
	sessions       SessionRepository
	verifyPassword PasswordVerifier
	hashPassword   PasswordHasher
	tokenGenerator func() string
	now            func() time.Time
	sessionTTL     time.Duration
	logger         *slog.Logger
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(credentials AdminCredentialStore, sessions SessionRepository, tokenGenerator func() string, now func() time.Time, sessionTTL time.Duration) *AuthService {
	return NewAuthServiceWithLogger(credentials, sessions, tokenGenerator, now, sessionTTL, nil)
}

// NewAuthServiceWithLogger constructs an AuthService with a specified logger.
func NewAuthServiceWithLogger(credentials AdminCredentialStore, sessions SessionRepository, tokenGenerator func() string, now func() time.Time, sessionTTL time.Duration, logger *slog.Logger) *AuthService {
	if tokenGenerator == nil {
		tokenGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &AuthService{
		credentials:    credentials,
		sessions:       sessions,
		verifyPassword: VerifyPassword,
		hashPassword:   HashPassword,
		tokenGenerator: tokenGenerator,
		now:            now,
		sessionTTL:     sessionTTL,
		logger:         defaultLogger(logger),
	}
}

// WithPasswordFuncs replaces the argon2id hash and verify functions. Nil
// arguments keep the current function.
func (s *AuthService) WithPasswordFuncs(hash PasswordHasher, verify PasswordVerifier) *AuthService {
	if s == nil {
		return nil
	}
	if hash != nil {
		s.hashPassword = hash
	}
	if verify != nil {
		s.verifyPassword = verify
	}
	return s
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// BootstrapPassword stores password as the admin credential unless one is
// already recorded. It reports whether a credential was written.
func (s *AuthService) BootstrapPassword(ctx context.Context, password string) (created bool, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.credentials == nil {
		err = fmt.Errorf("credential store not configured")
		return
	}

	logger := s.loggerWith(ctx, "BootstrapPassword")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "admin password bootstrap failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("created", created).InfoContext(ctx, "admin password bootstrap finished")
	}()

	_, err = s.credentials.GetAdminCredential(ctx)
	err = mapRepoError(err, "password")
	switch {
	case err == nil:
		return
	case !errors.Is(err, ErrNotFound):
		return
	}
	err = nil

	password = strings.TrimSpace(password)
	if password == "" {
		err = fieldError("password", "password is required")
		return
	}

	var hash string
	hash, err = s.hashPassword(password)
	if err != nil {
		return
	}
	if err = s.credentials.SetAdminCredential(ctx, AdminCredential{PasswordHash: hash, UpdatedAt: s.now()}); err != nil {
		return
	}
	created = true
	return
}

// Login verifies the admin password and issues a new session.
func (s *AuthService) Login(ctx context.Context, params LoginParams) (session Session, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.credentials == nil {
		err = fmt.Errorf("credential store not configured")
		return
	}

	logger := s.loggerWith(ctx, "Login")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "admin login failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("session_id", session.ID).InfoContext(ctx, "admin login succeeded")
	}()

	password := strings.TrimSpace(params.Password)
	if password == "" {
		err = ErrInvalidCredentials
		return
	}

	var credential AdminCredential
	credential, err = s.credentials.GetAdminCredential(ctx)
	if err != nil {
		if err = mapRepoError(err, "password"); errors.Is(err, ErrNotFound) {
			err = ErrInvalidCredentials
		}
		return
	}

	if err = s.verifyPassword(credential.PasswordHash, password); err != nil {
		err = ErrInvalidCredentials
		return
	}

	now := s.now()
	id := s.tokenGenerator()
	token := s.tokenGenerator()
	if token == "" {
		token = id
	}

	session = Session{
		ID:        id,
		Token:     token,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}

	if s.sessions != nil {
		if _, err = s.sessions.DeleteExpiredSessions(ctx, now); err != nil {
			return
		}

		var persisted Session
		persisted, err = s.sessions.CreateSession(ctx, session)
		if err != nil {
			err = mapRepoError(err, "token")
			return
		}
		session = persisted
	}
	return
}

// ValidateSession verifies that the token belongs to an active session and
// returns the admin principal for it.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (principal Principal, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.sessions == nil {
		err = fmt.Errorf("session repository not configured")
		return
	}

	trimmed := strings.TrimSpace(token)
	logger := s.loggerWith(ctx, "ValidateSession", "token_provided", trimmed != "")
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "session validation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("session_id", principal.SessionID).DebugContext(ctx, "session validated")
	}()

	if trimmed == "" {
		err = ErrInvalidCredentials
		return
	}

	var session Session
	session, err = s.sessions.GetSession(ctx, trimmed)
	if err != nil {
		if err = mapRepoError(err, "token"); errors.Is(err, ErrNotFound) {
			err = ErrInvalidCredentials
		}
		return
	}

	now := s.now()
	if session.RevokedAt != nil && !session.RevokedAt.IsZero() {
		err = ErrSessionRevoked
		return
	}
	if !session.ExpiresAt.IsZero() && !session.ExpiresAt.After(now) {
		err = ErrSessionExpired
		return
	}

	principal = Principal{SessionID: session.ID, IsAdmin: true}
	return
}

// RevokeSession invalidates an existing session token.
func (s *AuthService) RevokeSession(ctx context.Context, token string) error {
	if s == nil {
		return fmt.Errorf("AuthService is nil")
	}
	if s.sessions == nil {
		return fmt.Errorf("session repository not configured")
	}

	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return ErrInvalidCredentials
	}

	logger := s.loggerWith(ctx, "RevokeSession", "token_provided", true)

	if _, err := s.sessions.RevokeSession(ctx, trimmed, s.now()); err != nil {
		if err = mapRepoError(err, "token"); errors.Is(err, ErrNotFound) {
			logger.ErrorContext(ctx, "failed to revoke session", "error", ErrInvalidCredentials, "error_kind", ErrorKind(ErrInvalidCredentials))
			return ErrInvalidCredentials
		}
		logger.ErrorContext(ctx, "failed to revoke session", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "session revoked")
	return nil
}

// ChangePassword replaces the admin password after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, params ChangePasswordParams) (err error) {
	if s == nil {
		return fmt.Errorf("AuthService is nil")
	}
	if s.credentials == nil {
		return fmt.Errorf("credential store not configured")
	}

	logger := s.loggerWith(ctx, "ChangePassword", "session_id", params.Principal.SessionID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "admin password change failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "admin password changed")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	next := strings.TrimSpace(params.NewPassword)
	if next == "" {
		err = fieldError("new_password", "new password is required")
		return
	}

	var credential AdminCredential
	credential, err = s.credentials.GetAdminCredential(ctx)
	if err != nil {
		if err = mapRepoError(err, "password"); errors.Is(err, ErrNotFound) {
			err = ErrInvalidCredentials
		}
		return
	}
	if err = s.verifyPassword(credential.PasswordHash, strings.TrimSpace(params.CurrentPassword)); err != nil {
		err = ErrInvalidCredentials
		return
	}

	var hash string
	hash, err = s.hashPassword(next)
	if err != nil {
		return
	}
	err = s.credentials.SetAdminCredential(ctx, AdminCredential{PasswordHash: hash, UpdatedAt: s.now()})
	return
}

// PruneExpiredSessions deletes sessions that expired before now.
func (s *AuthService) PruneExpiredSessions(ctx context.Context) (removed int64, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.sessions == nil {
		err = fmt.Errorf("session repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "PruneExpiredSessions")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to prune expired sessions", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("removed", removed).InfoContext(ctx, "expired sessions pruned")
	}()

	removed, err = s.sessions.DeleteExpiredSessions(ctx, s.now())
	return
}
