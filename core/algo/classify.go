// Package algo holds the classification, scoring and ranking rules for metric audits.
package algo

import (
	"fmt"
	"maps"
	"strings"

	"github.com/huangsam/kpiaudit/schema"
)

// Default recency policy, expressed in review cycles.
const (
	DefaultReviewCycleDays = 90
	DefaultStaleCycles     = 2
	DefaultFreshCycles     = 1
)

// RecencyPolicy decides when a temporal descriptor counts as stale or fresh.
type RecencyPolicy struct {
	ReviewCycleDays int
	StaleCycles     int
	FreshCycles     int
}

// DefaultRecencyPolicy returns the policy used when nothing is configured.
func DefaultRecencyPolicy() RecencyPolicy {
	return RecencyPolicy{
		ReviewCycleDays: DefaultReviewCycleDays,
		StaleCycles:     DefaultStaleCycles,
		FreshCycles:     DefaultFreshCycles,
	}
}

// StaleAfterDays is the age beyond which a descriptor is stale.
func (p RecencyPolicy) StaleAfterDays() int {
	return p.ReviewCycleDays * p.StaleCycles
}

// FreshWithinDays is the age up to which a descriptor is fresh.
func (p RecencyPolicy) FreshWithinDays() int {
	return p.ReviewCycleDays * p.FreshCycles
}

// IsStale reports whether r is older than the stale window or unknown.
func (p RecencyPolicy) IsStale(r schema.Recency) bool {
	return r.OlderThan(p.StaleAfterDays())
}

// IsFresh reports whether r falls inside the fresh window.
func (p RecencyPolicy) IsFresh(r schema.Recency) bool {
	return r.Within(p.FreshWithinDays())
}

// Rule is one weighted predicate of a classifier.
type Rule struct {
	Key     schema.RuleKey
	Kind    schema.RuleKind
	Weight  float64
	Reason  string
	Applies func(schema.MetricRecord) bool
}

// RuleSet is the full, ordered configuration of both classifiers.
type RuleSet struct {
	Vanity          []Rule
	Value           []Rule
	VanityThreshold float64
	ValueThreshold  float64
	Policy          RecencyPolicy
}

// Reason texts surfaced to users.
var ruleReasons = map[schema.RuleKey]string{
	schema.RuleVisibleUnused:    "Displayed but not used for decisions.",
	schema.RuleStaleDecision:    "Not used for a decision in a long time.",
	schema.RuleStaleReview:      "Has not been reviewed recently.",
	schema.RuleExecutiveVanity:  "Requested by leadership but never used in decisions.",
	schema.RuleActiveDriver:     "Actively used in decision-making.",
	schema.RuleRecentUse:        "Recently used for a decision.",
	schema.RuleAlignedExecutive: "Aligned with leadership's stated priorities and actually used.",
	schema.RuleHiddenGem:        "Drives decisions despite not being on a dashboard — candidate for promotion.",
}

// RuleReason returns the user-facing reason for a rule key.
func RuleReason(key schema.RuleKey) string {
	return ruleReasons[key]
}

// DefaultRuleSet returns the rule set with default weights, thresholds and recency policy.
func DefaultRuleSet() RuleSet {
	return NewRuleSet(nil, nil, DefaultRecencyPolicy())
}

// NewRuleSet builds both rule tables. Weights and thresholds missing from the
// provided maps fall back to their defaults.
func NewRuleSet(weights map[schema.RuleKind]map[schema.RuleKey]float64, thresholds map[schema.RuleKind]float64, policy RecencyPolicy) RuleSet {
	vanityWeights := schema.GetDefaultWeights(schema.VanityKind)
	valueWeights := schema.GetDefaultWeights(schema.ValueKind)
	if w, ok := weights[schema.VanityKind]; ok {
		maps.Copy(vanityWeights, w)
	}
	if w, ok := weights[schema.ValueKind]; ok {
		maps.Copy(valueWeights, w)
	}

	limits := schema.GetDefaultThresholds()
	maps.Copy(limits, thresholds)

	stale := policy.IsStale
	fresh := policy.IsFresh

	predicates := map[schema.RuleKey]func(schema.MetricRecord) bool{
		schema.RuleVisibleUnused: func(r schema.MetricRecord) bool {
			return r.VisibleInDashboard && !r.UsedInDecisionMaking
		},
		schema.RuleStaleDecision: func(r schema.MetricRecord) bool {
			return stale(r.LastUsedForDecision)
		},
		schema.RuleStaleReview: func(r schema.MetricRecord) bool {
			return stale(r.LastReviewed)
		},
		schema.RuleExecutiveVanity: func(r schema.MetricRecord) bool {
			return r.ExecutiveRequested && !r.UsedInDecisionMaking
		},
		schema.RuleActiveDriver: func(r schema.MetricRecord) bool {
			return r.UsedInDecisionMaking
		},
		schema.RuleRecentUse: func(r schema.MetricRecord) bool {
			return fresh(r.LastUsedForDecision)
		},
		schema.RuleAlignedExecutive: func(r schema.MetricRecord) bool {
			return r.ExecutiveRequested && r.UsedInDecisionMaking
		},
		schema.RuleHiddenGem: func(r schema.MetricRecord) bool {
			return !r.VisibleInDashboard && r.UsedInDecisionMaking
		},
	}

	build := func(kind schema.RuleKind, keys []schema.RuleKey, w map[schema.RuleKey]float64) []Rule {
		rules := make([]Rule, 0, len(keys))
		for _, key := range keys {
			rules = append(rules, Rule{
				Key:     key,
				Kind:    kind,
				Weight:  w[key],
				Reason:  ruleReasons[key],
				Applies: predicates[key],
			})
		}
		return rules
	}

	return RuleSet{
		Vanity:          build(schema.VanityKind, schema.VanityRuleKeys, vanityWeights),
		Value:           build(schema.ValueKind, schema.ValueRuleKeys, valueWeights),
		VanityThreshold: limits[schema.VanityKind],
		ValueThreshold:  limits[schema.ValueKind],
		Policy:          policy,
	}
}

// evaluate runs rules in order and returns the summed weight with one reason per fired rule.
// Rules with a non-positive weight are disabled so that a zero score always has no reasons.
func evaluate(rules []Rule, rec schema.MetricRecord) (float64, []string) {
	score := 0.0
	reasons := make([]string, 0, len(rules))
	for _, rule := range rules {
		if rule.Weight <= 0 || !rule.Applies(rec) {
			continue
		}
		score += rule.Weight
		reasons = append(reasons, rule.Reason)
	}
	return score, reasons
}

// ValidateRecords rejects the whole table if any record lacks its natural key.
func ValidateRecords(records []schema.MetricRecord) error {
	for i, rec := range records {
		if strings.TrimSpace(rec.Department) == "" {
			return fmt.Errorf("%w: record %d (%q) is missing Department", schema.ErrInvalidArgument, i, rec.MetricName)
		}
		if strings.TrimSpace(rec.MetricName) == "" {
			return fmt.Errorf("%w: record %d in department %q is missing Metric_Name", schema.ErrInvalidArgument, i, rec.Department)
		}
	}
	return nil
}

// ClassifyVanity scores every record against the vanity rules.
// The input slice is not modified.
func ClassifyVanity(records []schema.MetricRecord, rs RuleSet) ([]schema.AnnotatedMetric, error) {
	if err := ValidateRecords(records); err != nil {
		return nil, err
	}
	out := make([]schema.AnnotatedMetric, len(records))
	for i, rec := range records {
		score, reasons := evaluate(rs.Vanity, rec)
		out[i] = schema.AnnotatedMetric{
			MetricRecord:  rec,
			VanityScore:   score,
			VanityReasons: reasons,
			IsVanity:      score > 0 && score >= rs.VanityThreshold,
		}
	}
	return out, nil
}

// ClassifyValue scores every record against the value rules and then applies
// mutual exclusion: a vanity record is never high-value, though its value score
// and reasons are kept for auditing.
func ClassifyValue(annotated []schema.AnnotatedMetric, rs RuleSet) ([]schema.AnnotatedMetric, error) {
	out := make([]schema.AnnotatedMetric, len(annotated))
	for i, m := range annotated {
		if strings.TrimSpace(m.Department) == "" || strings.TrimSpace(m.MetricName) == "" {
			return nil, fmt.Errorf("%w: annotated record %d (%s) is missing its key", schema.ErrInvalidArgument, i, m.Key())
		}
		score, reasons := evaluate(rs.Value, m.MetricRecord)
		m.VanityReasons = cloneReasons(m.VanityReasons)
		m.ValueScore = score
		m.ValueReasons = reasons
		m.IsHighValue = score > 0 && score >= rs.ValueThreshold
		out[i] = m
	}
	applyMutualExclusion(out)
	return out, nil
}

// applyMutualExclusion forces IsHighValue off wherever IsVanity is set.
func applyMutualExclusion(metrics []schema.AnnotatedMetric) {
	for i := range metrics {
		if metrics[i].IsVanity {
			metrics[i].IsHighValue = false
		}
	}
}

// Classify runs both classifiers and the impact scorer in sequence.
func Classify(records []schema.MetricRecord, rs RuleSet) ([]schema.AnnotatedMetric, error) {
	vanity, err := ClassifyVanity(records, rs)
	if err != nil {
		return nil, err
	}
	value, err := ClassifyValue(vanity, rs)
	if err != nil {
		return nil, err
	}
	return ScoreImpact(value), nil
}

func cloneReasons(reasons []string) []string {
	if reasons == nil {
		return []string{}
	}
	out := make([]string, len(reasons))
	copy(out, reasons)
	return out
}
