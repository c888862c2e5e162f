package ingest

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/kpiaudit/internal/contract"
	"github.com/huangsam/kpiaudit/schema"
)

// Named descriptors map to the far edge of the window they describe.
var bucketDays = map[string]int{
	"today":        0,
	"yesterday":    1,
	"this week":    7,
	"last week":    14,
	"this month":   30,
	"last month":   60,
	"this quarter": 90,
	"last quarter": 180,
	"this year":    365,
	"last year":    730,
}

// Descriptors that mean the event has not happened.
var neverWords = map[string]struct{}{
	"":          {},
	"never":     {},
	"n/a":       {},
	"na":        {},
	"none":      {},
	"-":         {},
	"not used":  {},
	"unknown":   {},
	"no review": {},
}

var unitDays = map[string]int{
	"day":     1,
	"week":    7,
	"month":   30,
	"quarter": 90,
	"year":    365,
}

// Matches "3 months ago", "2 weeks", "over 1 year ago", "more than 6 months".
var relativeDescriptorRe = regexp.MustCompile(`^(over|more than|>)?\s*(\d+)\s*(day|week|month|quarter|year)s?(\s+ago)?$`)

// Calendar layouts accepted for absolute dates.
var dateLayouts = []string{time.RFC3339, time.DateOnly, "2006/01/02", "01/02/2006"}

// ParseRecency normalizes a temporal descriptor against asOf. The boolean is
// false when the value could not be understood and was treated as never.
func ParseRecency(raw string, asOf time.Time) (schema.Recency, bool) {
	s := strings.Join(strings.Fields(strings.ToLower(raw)), " ")
	s = strings.TrimSuffix(s, ".")

	if _, ok := neverWords[s]; ok {
		return schema.Never(raw), true
	}
	if days, ok := bucketDays[s]; ok {
		return schema.DaysAgo(raw, days), true
	}
	if m := relativeDescriptorRe.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[2])
		if err != nil || n > 100000 {
			return schema.Never(raw), false
		}
		days := n * unitDays[m[3]]
		if m[1] != "" {
			days++
		}
		return schema.DaysAgo(raw, days), true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(raw)); err == nil {
			if afterDay(t, asOf) {
				return schema.Never(raw), false
			}
			return schema.DaysAgo(raw, contract.DaysBetween(t, asOf)), true
		}
	}
	return schema.Never(raw), false
}

// afterDay reports whether t falls on a calendar day later than asOf.
func afterDay(t, asOf time.Time) bool {
	y, m, d := asOf.Date()
	nextDay := time.Date(y, m, d+1, 0, 0, 0, 0, asOf.Location())
	return !t.Before(nextDay)
}
