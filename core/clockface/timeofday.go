package clockface

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jrazmi/taskclock/sdk/validation"
)

// TimeOfDay is a wall clock time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// NewTimeOfDay validates the hour and minute.
func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 {
		return TimeOfDay{}, fmt.Errorf("hour out of range: %d", hour)
	}
	if minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("minute out of range: %d", minute)
	}
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// ParseTimeOfDay accepts "HH:MM" only.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	h, m, err := validation.ParseClock(s)
	if err != nil {
		return TimeOfDay{}, err
	}
	return TimeOfDay{Hour: h, Minute: m}, nil
}

// parseStored also reads the RFC3339 timestamps older clients persisted.
// Those were written in UTC, so they are moved to the local wall clock.
func parseStored(s string) (TimeOfDay, error) {
	tod, err := ParseTimeOfDay(s)
	if err == nil {
		return tod, nil
	}

	t, terr := time.Parse(time.RFC3339, strings.TrimSpace(s))
	if terr != nil {
		return TimeOfDay{}, err
	}
	return FromTime(t.Local()), nil
}

// MustTimeOfDay is ParseTimeOfDay for literals. It panics on bad input.
func MustTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

// FromTime drops the date, seconds and below.
func FromTime(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}
}

// Minutes since midnight.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

func (t TimeOfDay) Before(o TimeOfDay) bool {
	return t.Minutes() < o.Minutes()
}

func (t TimeOfDay) After(o TimeOfDay) bool {
	return t.Minutes() > o.Minutes()
}

// On places the time of day on the date of day, in day's location.
func (t TimeOfDay) On(day time.Time) time.Time {
	y, mo, d := day.Date()
	return time.Date(y, mo, d, t.Hour, t.Minute, 0, 0, day.Location())
}

// Format renders t with a time package layout such as time.Kitchen.
func (t TimeOfDay) Format(layout string) string {
	return time.Date(2000, 1, 1, t.Hour, t.Minute, 0, 0, time.UTC).Format(layout)
}

// Clock12 renders "9:00 AM".
func (t TimeOfDay) Clock12() string {
	return t.Format("3:04 PM")
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("time of day must be a string: %w", err)
	}
	parsed, err := parseStored(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
