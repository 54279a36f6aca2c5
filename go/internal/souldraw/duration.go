package souldraw

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var durationPattern = regexp.MustCompile(`^(\d+)([smhd])$`)

var unitSeconds = map[string]int64{
	"s": 1,
	"m": 60,
	"h": 3600,
	"d": 86400,
}

// ParseDuration converts inputs like "10s", "5m", "2h" or "1d" into a duration.
// The whole trimmed input must match; the count must be positive.
func ParseDuration(s string) (time.Duration, error) {
	m := durationPattern.FindStringSubmatch(strings.TrimSpace(strings.ToLower(s)))
	if m == nil {
		return 0, ErrInvalidDuration
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || n <= 0 {
		return 0, ErrInvalidDuration
	}
	secs := n * unitSeconds[m[2]]
	// guard against overflow of time.Duration
	if secs/unitSeconds[m[2]] != n || secs > int64(time.Duration(1<<63-1)/time.Second) {
		return 0, ErrInvalidDuration
	}
	return time.Duration(secs) * time.Second, nil
}

// Milliseconds is ParseDuration expressed in whole milliseconds.
func Milliseconds(s string) (int64, error) {
	d, err := ParseDuration(s)
	if err != nil {
		return 0, err
	}
	return d.Milliseconds(), nil
}
