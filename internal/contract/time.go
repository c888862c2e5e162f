package contract

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Day is the length of a calendar day used for recency arithmetic.
const Day = 24 * time.Hour

// Define the regular expression to capture "N [units] ago"
// e.g., "2 years ago", "3 months ago", "1 week ago".
var relativeTimeRe = regexp.MustCompile(`^(\d+)\s+(year|month|week|day|hour|minute)s?\s+ago$`)

// ParseRelativeTime converts strings like "2 years ago" into a time.Time in the past.
func ParseRelativeTime(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	matches := relativeTimeRe.FindStringSubmatch(s)

	if len(matches) == 0 {
		return time.Time{}, fmt.Errorf("invalid relative time format: %s", s)
	}

	value, err := strconv.Atoi(matches[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid relative time value: %s", matches[1])
	}

	switch matches[2] {
	case "year":
		return now.AddDate(-value, 0, 0), nil
	case "month":
		return now.AddDate(0, -value, 0), nil
	case "week":
		return now.Add(time.Duration(-value) * 7 * Day), nil
	case "day":
		return now.Add(time.Duration(-value) * Day), nil
	case "hour":
		return now.Add(time.Duration(-value) * time.Hour), nil
	default:
		return now.Add(time.Duration(-value) * time.Minute), nil
	}
}

// Define the regular expression to capture "N [units]".
var lookbackDurationRe = regexp.MustCompile(`^(\d+)\s+(year|month|week|day|hour|minute)s?$`)

// ParseLookbackDuration converts strings like "3 months" or "720h" into a single time.Duration.
// It first tries time.ParseDuration, then falls back to human-readable formats.
func ParseLookbackDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	if duration, err := time.ParseDuration(s); err == nil {
		if duration <= 0 {
			return 0, errors.New("zero duration is not useful")
		}
		return duration, nil
	}

	s = strings.ToLower(s)
	matches := lookbackDurationRe.FindStringSubmatch(s)
	if len(matches) == 0 {
		return 0, fmt.Errorf("invalid lookback duration format: %s", s)
	}

	value, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0, fmt.Errorf("invalid lookback duration value: %s", matches[1])
	}

	var totalDuration time.Duration
	switch matches[2] {
	case "year":
		// 1 year ≈ 365 days
		totalDuration = time.Duration(value) * 365 * Day
	case "month":
		// 1 month ≈ 30 days
		totalDuration = time.Duration(value) * 30 * Day
	case "week":
		totalDuration = time.Duration(value) * 7 * Day
	case "day":
		totalDuration = time.Duration(value) * Day
	case "hour":
		totalDuration = time.Duration(value) * time.Hour
	default:
		totalDuration = time.Duration(value) * time.Minute
	}

	if totalDuration <= 0 {
		return 0, errors.New("duration must be positive and within range")
	}
	return totalDuration, nil
}

// DaysBetween returns the number of whole days from then to now, clamped at zero.
func DaysBetween(then, now time.Time) int {
	d := now.Sub(then)
	if d < 0 {
		return 0
	}
	return int(d / Day)
}

// ParseAsOf resolves the audit reference date. Empty means now; otherwise an
// ISO date, an RFC3339 timestamp or an "N [units] ago" phrase is accepted.
func ParseAsOf(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return now, nil
	}
	if t, err := time.Parse(DateTimeFormat, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(DateFormat, s); err == nil {
		return t, nil
	}
	t, err := ParseRelativeTime(s, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid as-of date '%s'. Expected YYYY-MM-DD, RFC3339 or 'N [units] ago'", s)
	}
	return t, nil
}
