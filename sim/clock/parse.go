package clock

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ocean-sim/ocean-sim/sim"
)

// Layout is the canonical timestamp layout used in configuration files,
// restart markers and log lines.
const Layout = "2006-01-02_15:04:05"

var timeLayouts = []string{
	Layout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTime parses a timestamp in one of the accepted layouts. All times are UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: timestamp %q does not match %s", sim.ErrTimeParse, s, Layout)
}

// ParseDuration accepts "D_hh:mm:ss", "hh:mm:ss", "mm:ss", a plain number of
// seconds, or Go duration syntax ("90m"). Negative durations are rejected.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty duration", sim.ErrTimeParse)
	}
	d, err := parseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: duration %q: %v", sim.ErrTimeParse, s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: duration %q is negative", sim.ErrTimeParse, s)
	}
	return d, nil
}

func parseDuration(s string) (time.Duration, error) {
	var days int64
	rest := s
	if i := strings.IndexByte(s, '_'); i >= 0 {
		n, err := strconv.ParseInt(s[:i], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("day field: %w", err)
		}
		days, rest = n, s[i+1:]
	}
	if !strings.Contains(rest, ":") {
		if rest != s {
			return 0, fmt.Errorf("expected hh:mm:ss after day field")
		}
		if secs, err := strconv.ParseFloat(rest, 64); err == nil {
			return seconds(secs)
		}
		return time.ParseDuration(rest)
	}

	parts := strings.Split(rest, ":")
	var hours, minutes int64
	var secField string
	switch len(parts) {
	case 3:
		h, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("hour field: %w", err)
		}
		hours = h
		parts = parts[1:]
		fallthrough
	case 2:
		m, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("minute field: %w", err)
		}
		minutes = m
		secField = parts[1]
	default:
		return 0, fmt.Errorf("expected hh:mm:ss or mm:ss")
	}
	secs, err := strconv.ParseFloat(secField, 64)
	if err != nil {
		return 0, fmt.Errorf("second field: %w", err)
	}
	if _, err := seconds(float64(days)*86400 + float64(hours)*3600 + float64(minutes)*60 + secs); err != nil {
		return 0, err
	}
	frac, err := seconds(secs)
	if err != nil {
		return 0, err
	}
	total := time.Duration(days)*24*time.Hour +
		time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		frac
	return total, nil
}

// maxSeconds is the longest span a time.Duration holds, in seconds.
const maxSeconds = float64(math.MaxInt64) / float64(time.Second)

// seconds converts a finite number of seconds that fits a time.Duration.
func seconds(secs float64) (time.Duration, error) {
	if math.IsNaN(secs) || math.IsInf(secs, 0) || math.Abs(secs) >= maxSeconds {
		return 0, fmt.Errorf("%v seconds is out of range", secs)
	}
	return time.Duration(secs * float64(time.Second)), nil
}

// ParsePeriod parses an alarm period. "" and "none" disable the alarm and
// return ok == false.
func ParsePeriod(s string) (period time.Duration, ok bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return 0, false, nil
	}
	d, err := ParseDuration(s)
	if err != nil {
		return 0, false, err
	}
	if d == 0 {
		return 0, false, fmt.Errorf("%w: alarm period %q must be positive", sim.ErrConfig, s)
	}
	return d, true, nil
}

// Format renders t in the canonical layout.
func Format(t time.Time) string {
	return t.UTC().Format(Layout)
}
