package slottime

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultZone is used when a viewer zone is missing or cannot be loaded.
const DefaultZone = "Europe/Chisinau"

// ErrUnknownZone is returned for empty or unknown IANA zone names.
var ErrUnknownZone = errors.New("slottime: unknown time zone")

// LoadZone loads an IANA zone. Unlike time.LoadLocation an empty name is an
// error rather than UTC.
func LoadZone(name string) (*time.Location, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty name", ErrUnknownZone)
	}
	loc, err := time.LoadLocation(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrUnknownZone, trimmed, err)
	}
	return loc, nil
}

// ZoneOr loads name, falling back to the fallback zone and finally to UTC.
func ZoneOr(name, fallback string) *time.Location {
	if loc, err := LoadZone(name); err == nil {
		return loc
	}
	if loc, err := LoadZone(fallback); err == nil {
		return loc
	}
	return time.UTC
}

// FirstZone returns the first non-empty candidate, mirroring the
// profile > config > viewer precedence used for slot authoring zones.
func FirstZone(candidates ...string) string {
	for _, c := range candidates {
		if trimmed := strings.TrimSpace(c); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
