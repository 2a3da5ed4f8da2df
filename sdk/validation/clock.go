package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var clockTime = regexp.MustCompile(`^([01][0-9]|2[0-3]):([0-5][0-9])$`)

// ParseClock parses a 24-hour "HH:MM" wall clock value and returns the hour
// and minute. Seconds, dates and single digit hours are rejected.
func ParseClock(s string) (hour, minute int, err error) {
	s = strings.TrimSpace(s)
	m := clockTime.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, fmt.Errorf("unable to parse clock time: %q", s)
	}
	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	return hour, minute, nil
}
