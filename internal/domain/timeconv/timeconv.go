// Package timeconv converts local availability (clock times and weekdays) to
// UTC and back.
//
// Offsets are whole hours east of UTC, so the label "UTC-5" parses to -5 and
// UTC = local - offset. Clock arithmetic wraps modulo 24h without touching the
// weekday; UTCDay is the only function that carries the day across midnight.
package timeconv

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	minutesPerHour = 60
	minutesPerDay  = 24 * minutesPerHour

	// MinOffset and MaxOffset bound the accepted UTC offsets in hours.
	MinOffset = -12
	MaxOffset = 14

	offsetPrefix = "UTC"
	clockLayout  = "15:04"
)

// referenceMonday anchors weekday arithmetic; 2024-01-01 is a Monday.
var referenceMonday = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// Clock is a wall-clock time expressed as minutes since midnight, in [0, 1440).
type Clock int

// ParseClock parses a strict 24h "HH:MM" value.
func ParseClock(s string) (Clock, error) {
	if len(s) != len(clockLayout) || s[2] != ':' {
		return 0, fmt.Errorf("%w: clock %q must be HH:MM", ErrFormat, s)
	}
	h, errH := strconv.Atoi(s[:2])
	m, errM := strconv.Atoi(s[3:])
	if errH != nil || errM != nil || !isDigits(s[:2]) || !isDigits(s[3:]) {
		return 0, fmt.Errorf("%w: clock %q must be HH:MM", ErrFormat, s)
	}
	if h > 23 || m > 59 {
		return 0, fmt.Errorf("%w: clock %q out of range", ErrFormat, s)
	}
	return Clock(h*minutesPerHour + m), nil
}

// MustClock is ParseClock for constants and tests. It panics on bad input.
func MustClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Minutes returns the number of minutes since midnight.
func (c Clock) Minutes() int { return int(c) }

// Add shifts the clock by delta minutes, wrapping modulo one day.
func (c Clock) Add(delta int) Clock {
	v := (int(c) + delta) % minutesPerDay
	if v < 0 {
		v += minutesPerDay
	}
	return Clock(v)
}

// String formats the clock as HH:MM.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/minutesPerHour, int(c)%minutesPerHour)
}

// MarshalText implements encoding.TextMarshaler.
func (c Clock) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Clock) UnmarshalText(b []byte) error {
	v, err := ParseClock(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// ParseUTCOffset parses a label such as "UTC", "UTC+5" or "UTC-08" into a
// signed hour offset.
func ParseUTCOffset(label string) (int, error) {
	s := strings.ToUpper(strings.TrimSpace(label))
	if !strings.HasPrefix(s, offsetPrefix) {
		return 0, fmt.Errorf("%w: timezone %q must start with %s", ErrFormat, label, offsetPrefix)
	}
	rest := strings.TrimPrefix(s, offsetPrefix)
	if rest == "" {
		return 0, nil
	}
	digits := strings.TrimLeft(rest, "+-")
	if len(rest)-len(digits) != 1 || digits == "" || len(digits) > 2 || !isDigits(digits) {
		return 0, fmt.Errorf("%w: timezone %q", ErrFormat, label)
	}
	offset, err := strconv.Atoi(rest)
	if err != nil {
		return 0, fmt.Errorf("%w: timezone %q: %v", ErrFormat, label, err)
	}
	if err := checkOffset(offset); err != nil {
		return 0, err
	}
	return offset, nil
}

// FormatUTCOffset renders an offset back into its label form.
func FormatUTCOffset(offset int) string {
	switch {
	case offset > 0:
		return fmt.Sprintf("%s+%d", offsetPrefix, offset)
	case offset < 0:
		return fmt.Sprintf("%s%d", offsetPrefix, offset)
	default:
		return offsetPrefix
	}
}

// ToUTC converts a local clock to UTC. The weekday is not adjusted.
func ToUTC(local Clock, offset int) Clock {
	return local.Add(-offset * minutesPerHour)
}

// ToLocal converts a UTC clock to local time. The weekday is not adjusted.
func ToLocal(utc Clock, offset int) Clock {
	return utc.Add(offset * minutesPerHour)
}

// ShiftToUTC converts a local "HH:MM" to UTC "HH:MM".
func ShiftToUTC(local string, offset int) (string, error) {
	if err := checkOffset(offset); err != nil {
		return "", err
	}
	c, err := ParseClock(local)
	if err != nil {
		return "", err
	}
	return ToUTC(c, offset).String(), nil
}

// ShiftToLocal converts a UTC "HH:MM" to local "HH:MM".
func ShiftToLocal(utc string, offset int) (string, error) {
	if err := checkOffset(offset); err != nil {
		return "", err
	}
	c, err := ParseClock(utc)
	if err != nil {
		return "", err
	}
	return ToLocal(c, offset).String(), nil
}

// UTCWeekday returns the UTC weekday on which a local (day, start) pair falls.
func UTCWeekday(day Weekday, start Clock, offset int) Weekday {
	local := referenceMonday.
		AddDate(0, 0, int(day)).
		Add(time.Duration(start.Minutes()) * time.Minute)
	utc := local.Add(-time.Duration(offset) * time.Hour)
	return fromTimeWeekday(utc.Weekday())
}

// UTCDay is the string form of UTCWeekday.
func UTCDay(localDay, localStart string, offset int) (string, error) {
	if err := checkOffset(offset); err != nil {
		return "", err
	}
	day, err := ParseWeekday(localDay)
	if err != nil {
		return "", err
	}
	start, err := ParseClock(localStart)
	if err != nil {
		return "", err
	}
	return UTCWeekday(day, start, offset).String(), nil
}

func checkOffset(offset int) error {
	if offset < MinOffset || offset > MaxOffset {
		return fmt.Errorf("%w: offset %d outside [%d, %d]", ErrFormat, offset, MinOffset, MaxOffset)
	}
	return nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
