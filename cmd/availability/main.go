package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/netip"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/example/availability-scheduler/internal/application"
	"github.com/example/availability-scheduler/internal/config"
	httptransport "github.com/example/availability-scheduler/internal/http"
	"github.com/example/availability-scheduler/internal/persistence/sqlite"
	"github.com/example/availability-scheduler/internal/persistence/sqlite/migration"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	storage, err := sqlite.Open(migration.DefaultSQLiteConfig(cfg.SQLiteDSN), logger)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := storage.Migrate(ctx); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	now := time.Now
	repos := newRepositories(storage, now)
	svc := services{
		Config:   application.NewConfigServiceWithLogger(repos.config, now, logger),
		Profiles: application.NewProfileServiceWithLogger(repos.profiles, uuid.NewString, now, logger),
		Slots:    application.NewSlotServiceWithLogger(repos.slots, repos.profiles, uuid.NewString, logger),
		Requests: application.NewRequestServiceWithLogger(repos.requests, repos.slots, repos.profiles, uuid.NewString, now, logger),
		Auth:     application.NewAuthServiceWithLogger(repos.credentials, repos.sessions, func() string { return randomHex(32) }, now, cfg.SessionTTL, logger),
	}

	if _, err := svc.Auth.BootstrapPassword(ctx, cfg.AdminPassword); err != nil {
		logger.Error("failed to bootstrap admin password", "error", err)
		os.Exit(1)
	}
	if err := seedConfig(ctx, svc.Config, cfg); err != nil {
		logger.Error("failed to seed configuration", "error", err)
		os.Exit(1)
	}

	pruner := cron.New()
	if _, err := pruner.AddFunc(cfg.PruneSchedule, func() {
		// Failures are logged by the service.
		_, _ = svc.Auth.PruneExpiredSessions(ctx)
	}); err != nil {
		logger.Error("failed to schedule session pruning", "error", err, "schedule", cfg.PruneSchedule)
		os.Exit(1)
	}
	pruner.Start()
	defer func() { <-pruner.Stop().Done() }()

	limiter, closeLimiter := newRateLimiter(cfg)
	defer func() {
		if cerr := closeLimiter(); cerr != nil {
			logger.Error("failed to close rate limiter", "error", cerr)
		}
	}()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           newHandler(svc, limiter, cfg.TrustedProxies, storage.DB(), cfg.RedisAddr != "", logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("availability API listening", "addr", server.Addr, "redis", cfg.RedisAddr != "")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

type services struct {
	Config   *application.ConfigService
	Profiles *application.ProfileService
	Slots    *application.SlotService
	Requests *application.RequestService
	Auth     *application.AuthService
}

type repositories struct {
	config      *configRepositoryAdapter
	profiles    *profileRepositoryAdapter
	slots       *slotRepositoryAdapter
	requests    *slotRequestRepositoryAdapter
	credentials *credentialStoreAdapter
	sessions    *sessionRepositoryAdapter
}

func newRepositories(storage *sqlite.Store, now func() time.Time) repositories {
	return repositories{
		config:      newConfigRepositoryAdapter(storage),
		profiles:    newProfileRepositoryAdapter(storage),
		slots:       newSlotRepositoryAdapter(storage, now),
		requests:    newSlotRequestRepositoryAdapter(storage),
		credentials: newCredentialStoreAdapter(storage),
		sessions:    newSessionRepositoryAdapter(storage),
	}
}

// newHandler wires the HTTP surface. Join request submission is rate
// limited per client; forwarded addresses count only behind trustedProxies.
// A Redis backed limiter fails open so an outage does not block visitors.
func newHandler(svc services, limiter httptransport.RateLimiter, trustedProxies []netip.Prefix, pinger httptransport.Pinger, failOpen bool, logger *slog.Logger) http.Handler {
	var health *httptransport.HealthHandler
	if pinger != nil {
		health = httptransport.NewHealthHandler(pinger, logger)
	}
	return httptransport.NewRouter(httptransport.RouterConfig{
		Auth:          httptransport.NewAuthHandler(svc.Auth, logger),
		Config:        httptransport.NewConfigHandler(svc.Config, logger),
		Profiles:      httptransport.NewProfileHandler(svc.Profiles, logger),
		Slots:         httptransport.NewSlotHandler(svc.Slots, logger),
		Requests:      httptransport.NewRequestHandler(svc.Requests, logger),
		Health:        health,
		RequireAdmin:  httptransport.RequireSession(svc.Auth, logger),
		SubmitLimiter: httptransport.RateLimit(limiter, httptransport.ClientKey(trustedProxies), logger, failOpen),
		Middleware:    []func(http.Handler) http.Handler{httptransport.RequestLogger(logger)},
	})
}

// newRateLimiter picks the shared Redis limiter when an address is
// configured and the in-process one otherwise.
func newRateLimiter(cfg config.Config) (httptransport.RateLimiter, func() error) {
	if cfg.RedisAddr == "" {
		return httptransport.NewMemoryRateLimiter(cfg.RequestRateLimit, cfg.RequestRateWindow, time.Now), func() error { return nil }
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	return httptransport.NewRedisRateLimiter(rdb, cfg.RequestRateLimit, cfg.RequestRateWindow, "availability:slot-requests"), rdb.Close
}

// bootstrapPrincipal performs startup writes on behalf of the operator.
var bootstrapPrincipal = application.Principal{SessionID: "bootstrap", IsAdmin: true}

// seedConfig stores a configuration built from the process defaults when
// none has been saved yet. An existing configuration is left untouched.
func seedConfig(ctx context.Context, svc *application.ConfigService, cfg config.Config) error {
	existing, err := svc.GetConfig(ctx)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	_, err = svc.SaveConfig(ctx, bootstrapPrincipal, application.ConfigInput{
		Title:           application.DefaultProfileTitle,
		DefaultLanguage: cfg.DefaultLanguage.Code(),
		Timezone:        cfg.DefaultTimezone,
	})
	return err
}

func randomHex(bytes int) string {
	if bytes <= 0 {
		bytes = 16
	}
	buf := make([]byte, bytes)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
