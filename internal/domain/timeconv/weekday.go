package timeconv

import (
	"fmt"
	"strings"
	"time"
)

// Weekday is a day token Mon..Sun, with Monday as zero.
type Weekday int

// Weekday values.
const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

const daysPerWeek = 7

var weekdayTokens = [daysPerWeek]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// Weekdays returns all weekdays in calendar order starting Monday.
func Weekdays() []Weekday {
	out := make([]Weekday, daysPerWeek)
	for i := range out {
		out[i] = Weekday(i)
	}
	return out
}

// ParseWeekday parses a three-letter token such as "Mon". Matching ignores
// case and surrounding whitespace.
func ParseWeekday(s string) (Weekday, error) {
	t := strings.TrimSpace(s)
	for i, tok := range weekdayTokens {
		if strings.EqualFold(tok, t) {
			return Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("%w: weekday %q", ErrFormat, s)
}

// String returns the three-letter token.
func (d Weekday) String() string {
	if d < 0 || int(d) >= daysPerWeek {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return weekdayTokens[d]
}

// MarshalText implements encoding.TextMarshaler.
func (d Weekday) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Weekday) UnmarshalText(b []byte) error {
	v, err := ParseWeekday(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

func fromTimeWeekday(w time.Weekday) Weekday {
	return Weekday((int(w) + daysPerWeek - 1) % daysPerWeek)
}
