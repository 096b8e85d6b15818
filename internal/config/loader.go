package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/example/availability-scheduler/internal/locale"
	"github.com/example/availability-scheduler/internal/slottime"
)

// Config captures environment driven configuration values for the availability store.
type Config struct {
	HTTPPort        int
	SQLiteDSN       string
	AdminPassword   string
	SessionTTL      time.Duration
	DefaultTimezone string
	DefaultLanguage locale.Language
	// RedisAddr is empty when the in-process rate limiter should be used.
	RedisAddr         string
	RequestRateLimit  int
	RequestRateWindow time.Duration
	// TrustedProxies lists the peers whose X-Forwarded-For header is
	// believed when counting submissions per client.
	TrustedProxies []netip.Prefix
	PruneSchedule  string
}

const (
	DefaultSQLiteDSN     = "file:availability.db?_pragma=foreign_keys(1)"
	DefaultTimezone      = slottime.DefaultZone
	DefaultPruneSchedule = "@every 1h"
)

// Load reads an optional .env file from the working directory and then parses
// the process environment. Variables already set in the environment win over
// the file.
func Load() (Config, error) {
	if err := LoadDotEnv(".env"); err != nil {
		return Config{}, err
	}
	return FromEnv()
}

// LoadDotEnv loads the named files into the environment, ignoring files that
// do not exist.
func LoadDotEnv(filenames ...string) error {
	for _, name := range filenames {
		if err := godotenv.Load(name); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", name, err)
		}
	}
	return nil
}

// FromEnv parses configuration values from the current process environment.
//
// Optional fields fall back to defaults. Every missing or malformed key is
// reported in a single error.
func FromEnv() (Config, error) {
	cfg := Config{
		HTTPPort:          8080,
		SQLiteDSN:         DefaultSQLiteDSN,
		SessionTTL:        24 * time.Hour,
		DefaultTimezone:   DefaultTimezone,
		DefaultLanguage:   locale.Romanian,
		RequestRateLimit:  10,
		RequestRateWindow: time.Minute,
		PruneSchedule:     DefaultPruneSchedule,
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if portValue := env("AVAILABILITY_HTTP_PORT"); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 || port > 65535 {
			invalid = append(invalid, "AVAILABILITY_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := env("AVAILABILITY_SQLITE_DSN"); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if password := env("AVAILABILITY_ADMIN_PASSWORD"); password == "" {
		missing = append(missing, "AVAILABILITY_ADMIN_PASSWORD")
	} else {
		cfg.AdminPassword = password
	}

	if ttlValue := env("AVAILABILITY_SESSION_TTL"); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "AVAILABILITY_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if tz := env("AVAILABILITY_DEFAULT_TIMEZONE"); tz != "" {
		if _, err := slottime.LoadZone(tz); err != nil {
			invalid = append(invalid, "AVAILABILITY_DEFAULT_TIMEZONE")
		} else {
			cfg.DefaultTimezone = tz
		}
	}

	if code := env("AVAILABILITY_DEFAULT_LANGUAGE"); code != "" {
		lang, ok := locale.Lookup(code)
		if !ok {
			invalid = append(invalid, "AVAILABILITY_DEFAULT_LANGUAGE")
		} else {
			cfg.DefaultLanguage = lang
		}
	}

	cfg.RedisAddr = env("AVAILABILITY_REDIS_ADDR")

	if rate := env("AVAILABILITY_REQUEST_RATE_LIMIT"); rate != "" {
		limit, window, err := ParseRate(rate)
		if err != nil {
			invalid = append(invalid, "AVAILABILITY_REQUEST_RATE_LIMIT")
		} else {
			cfg.RequestRateLimit = limit
			cfg.RequestRateWindow = window
		}
	}

	if proxies := env("AVAILABILITY_TRUSTED_PROXIES"); proxies != "" {
		prefixes, err := ParseTrustedProxies(proxies)
		if err != nil {
			invalid = append(invalid, "AVAILABILITY_TRUSTED_PROXIES")
		} else {
			cfg.TrustedProxies = prefixes
		}
	}

	if schedule := env("AVAILABILITY_PRUNE_SCHEDULE"); schedule != "" {
		if _, err := cron.ParseStandard(schedule); err != nil {
			invalid = append(invalid, "AVAILABILITY_PRUNE_SCHEDULE")
		} else {
			cfg.PruneSchedule = schedule
		}
	}

	var errs []error
	if len(missing) > 0 {
		errs = append(errs, fmt.Errorf("required environment variables are not set: %s", strings.Join(missing, ", ")))
	}
	if len(invalid) > 0 {
		errs = append(errs, fmt.Errorf("environment variables have invalid values: %s", strings.Join(invalid, ", ")))
	}
	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}

	return cfg, nil
}

// ParseRate parses "<count>/<unit>" where unit is second, minute, hour or a
// Go duration such as 30s.
func ParseRate(value string) (int, time.Duration, error) {
	countPart, unitPart, ok := strings.Cut(strings.TrimSpace(value), "/")
	if !ok {
		return 0, 0, fmt.Errorf("rate %q: expected <count>/<unit>", value)
	}
	count, err := strconv.Atoi(strings.TrimSpace(countPart))
	if err != nil || count <= 0 {
		return 0, 0, fmt.Errorf("rate %q: count must be a positive integer", value)
	}

	var window time.Duration
	switch unit := strings.ToLower(strings.TrimSpace(unitPart)); unit {
	case "s", "sec", "second":
		window = time.Second
	case "m", "min", "minute":
		window = time.Minute
	case "h", "hour":
		window = time.Hour
	default:
		window, err = time.ParseDuration(unit)
		if err != nil || window <= 0 {
			return 0, 0, fmt.Errorf("rate %q: unknown unit", value)
		}
	}
	return count, window, nil
}

// ParseTrustedProxies parses a comma separated list of CIDR ranges or bare
// addresses such as "10.0.0.0/8, 127.0.0.1".
func ParseTrustedProxies(value string) ([]netip.Prefix, error) {
	var prefixes []netip.Prefix
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.Contains(part, "/") {
			prefix, err := netip.ParsePrefix(part)
			if err != nil {
				return nil, fmt.Errorf("trusted proxy %q: %w", part, err)
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(part)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", part, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
