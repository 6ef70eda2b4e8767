package businesstime

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joy095/boardroom/logger"
)

// Defaults: a fixed UTC+2 business zone, bookable from 07:00 to 16:00 local.
const (
	defaultTimezone  = "Etc/GMT-2" // IANA name for fixed UTC+2
	defaultStartHour = 7
	defaultEndHour   = 16
)

// Resolver converts between absolute instants and business-local wall-clock
// time, and applies the working-hours policy. All conversions go through the
// tz database so DST-observing zones behave correctly; requester timezones
// are irrelevant by design.
type Resolver struct {
	loc       *time.Location
	startHour int
	endHour   int
}

// NewResolver builds a Resolver for the given IANA zone and working hours.
func NewResolver(timezone string, startHour, endHour int) (*Resolver, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid business timezone %q: %w", timezone, err)
	}
	if startHour < 0 || endHour > 24 || startHour >= endHour {
		return nil, fmt.Errorf("invalid working hours %d-%d", startHour, endHour)
	}
	return &Resolver{loc: loc, startHour: startHour, endHour: endHour}, nil
}

// NewResolverFromEnv reads BUSINESS_TIMEZONE, WORKING_HOURS_START and
// WORKING_HOURS_END. Misconfiguration here is fatal at startup.
func NewResolverFromEnv() (*Resolver, error) {
	timezone := os.Getenv("BUSINESS_TIMEZONE")
	if timezone == "" {
		timezone = defaultTimezone
	}

	startHour := envHour("WORKING_HOURS_START", defaultStartHour)
	endHour := envHour("WORKING_HOURS_END", defaultEndHour)

	resolver, err := NewResolver(timezone, startHour, endHour)
	if err != nil {
		return nil, err
	}
	logger.InfoLogger.Infof("Business time configured: zone=%s, working hours %02d:00-%02d:00", timezone, startHour, endHour)
	return resolver, nil
}

func envHour(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	hour, err := strconv.Atoi(raw)
	if err != nil {
		logger.WarnLogger.Warnf("Invalid %s value %q, using default %d", key, raw, fallback)
		return fallback
	}
	return hour
}

// Location returns the configured business timezone.
func (r *Resolver) Location() *time.Location {
	return r.loc
}

// ToBusinessLocal converts an absolute instant to business-local time.
func (r *Resolver) ToBusinessLocal(t time.Time) time.Time {
	return t.In(r.loc)
}

// ToInstant converts business-local wall-clock components to an absolute
// instant.
func (r *Resolver) ToInstant(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, r.loc)
}

// IsWithinWorkingHours reports whether the instant falls inside the configured
// business-local working window. The closing hour itself is accepted so a
// booking may end exactly at close of business.
func (r *Resolver) IsWithinWorkingHours(t time.Time) bool {
	local := t.In(r.loc)
	minutes := local.Hour()*60 + local.Minute()
	if minutes == r.endHour*60 && (local.Second() > 0 || local.Nanosecond() > 0) {
		return false
	}
	return minutes >= r.startHour*60 && minutes <= r.endHour*60
}

// WorkingWindow returns the working-hours interval for the business-local day
// containing the given date components.
func (r *Resolver) WorkingWindow(year int, month time.Month, day int) (time.Time, time.Time) {
	return r.ToInstant(year, month, day, r.startHour, 0), r.ToInstant(year, month, day, r.endHour, 0)
}

// DayWindow returns the instant range [midnight, next midnight) for a
// business-local calendar date given as YYYY-MM-DD.
func (r *Resolver) DayWindow(date string) (time.Time, time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", date, r.loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", date, err)
	}
	return day, day.AddDate(0, 0, 1), nil
}
