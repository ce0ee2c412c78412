package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"drawwatch/internal/schedule"
)

func ParseDurationField(path, raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", path, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: duration must be >= 0", path)
	}
	return d, nil
}

// ParseDurationOrDefault returns def when raw is empty or zero.
func ParseDurationOrDefault(path, raw string, def time.Duration) (time.Duration, error) {
	d, err := ParseDurationField(path, raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return def, nil
	}
	return d, nil
}

// ParseClockField parses a wall-clock time of day ("HH:MM" or "HH:MM:SS").
func ParseClockField(path, raw string) (schedule.TimeOfDay, error) {
	t, err := schedule.ParseTimeOfDay(raw)
	if err != nil {
		return schedule.TimeOfDay{}, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Location loads the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	tz := strings.TrimSpace(c.Timezone)
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("timezone: invalid %q: %w", tz, err)
	}
	return loc, nil
}
