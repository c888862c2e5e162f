// Package schema has models, constants and defaults for all parts of kpiaudit.
package schema

import "fmt"

// MetricRecord is one row of the metric catalog as supplied by a department.
// It carries the seven base fields plus free-text notes that are never scored.
type MetricRecord struct {
	Department           string  `json:"department"`              // Owning business unit
	MetricName           string  `json:"metric_name"`             // Unique within Department
	VisibleInDashboard   bool    `json:"visible_in_dashboard"`    // Currently displayed on a dashboard
	UsedInDecisionMaking bool    `json:"used_in_decision_making"` // Has informed at least one decision
	ExecutiveRequested   bool    `json:"executive_requested"`     // Requested by leadership
	LastReviewed         Recency `json:"last_reviewed"`           // How long since someone reviewed it
	LastUsedForDecision  Recency `json:"last_used_for_decision"`  // How long since it informed a decision
	InterpretationNotes  string  `json:"interpretation_notes,omitempty"`
}

// Key returns the natural key of the record.
func (r MetricRecord) Key() MetricKey {
	return MetricKey{Department: r.Department, MetricName: r.MetricName}
}

// MetricKey identifies a metric within the catalog.
type MetricKey struct {
	Department string `json:"department"`
	MetricName string `json:"metric_name"`
}

// String renders the key as "Department/MetricName".
func (k MetricKey) String() string {
	return fmt.Sprintf("%s/%s", k.Department, k.MetricName)
}

// Recency is a normalized temporal descriptor.
// Known is false for "never" and for anything that could not be parsed, which places
// the value at the least recent end of the domain.
type Recency struct {
	Raw   string `json:"raw"`   // Descriptor as it appeared in the source
	Days  int    `json:"days"`  // Approximate days elapsed, only meaningful when Known
	Known bool   `json:"known"` // False means never or unknown
}

// Never is the recency used for missing or unparseable descriptors.
func Never(raw string) Recency {
	return Recency{Raw: raw}
}

// DaysAgo builds a known recency.
func DaysAgo(raw string, days int) Recency {
	if days < 0 {
		days = 0
	}
	return Recency{Raw: raw, Days: days, Known: true}
}

// OlderThan reports whether the recency is strictly older than the given number of days.
// Unknown recency is older than everything.
func (r Recency) OlderThan(days int) bool {
	return !r.Known || r.Days > days
}

// Within reports whether the recency falls inside the given number of days.
// Unknown recency is never within any window.
func (r Recency) Within(days int) bool {
	return r.Known && r.Days <= days
}

// MoreRecentThan reports whether r is strictly more recent than other.
func (r Recency) MoreRecentThan(other Recency) bool {
	switch {
	case r.Known && !other.Known:
		return true
	case !r.Known:
		return false
	default:
		return r.Days < other.Days
	}
}

// String returns the original descriptor, or a normalized form when it is missing.
func (r Recency) String() string {
	if r.Raw != "" {
		return r.Raw
	}
	if !r.Known {
		return "never"
	}
	return fmt.Sprintf("%d days ago", r.Days)
}

// AnnotatedMetric is a MetricRecord with every derived verdict attached.
type AnnotatedMetric struct {
	MetricRecord
	VanityScore   float64  `json:"vanity_score"`
	VanityReasons []string `json:"vanity_reasons"`
	IsVanity      bool     `json:"is_vanity"`
	ValueScore    float64  `json:"value_score"`
	ValueReasons  []string `json:"value_reasons"`
	IsHighValue   bool     `json:"is_high_value"`
	ImpactScore   float64  `json:"impact_score"`
}

// IngestWarning records an ambiguous field that was resolved to its conservative default.
type IngestWarning struct {
	Row      int       `json:"row"`
	Key      MetricKey `json:"key"`
	Field    string    `json:"field"`
	Value    string    `json:"value"`
	Fallback string    `json:"fallback"`
}

// String formats the warning for log output.
func (w IngestWarning) String() string {
	return fmt.Sprintf("row %d (%s): %s value %q is ambiguous, using %s", w.Row, w.Key, w.Field, w.Value, w.Fallback)
}
