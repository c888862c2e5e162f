package iocache

import (
	"encoding/json"
	"fmt"

	"github.com/huangsam/kpiaudit/schema"
)

// ToMetricResultRecord flattens an annotated metric into a history row.
func ToMetricResultRecord(runID int64, position int, m schema.AnnotatedMetric) (schema.MetricResultRecord, error) {
	vanityReasons, err := encodeReasons(m.VanityReasons)
	if err != nil {
		return schema.MetricResultRecord{}, err
	}
	valueReasons, err := encodeReasons(m.ValueReasons)
	if err != nil {
		return schema.MetricResultRecord{}, err
	}
	return schema.MetricResultRecord{
		RunID:                runID,
		Position:             int32(position),
		Department:           m.Department,
		MetricName:           m.MetricName,
		VisibleInDashboard:   m.VisibleInDashboard,
		UsedInDecisionMaking: m.UsedInDecisionMaking,
		ExecutiveRequested:   m.ExecutiveRequested,
		LastReviewed:         m.LastReviewed.Raw,
		LastReviewedDays:     recencyDays(m.LastReviewed),
		LastUsedForDecision:  m.LastUsedForDecision.Raw,
		LastUsedDays:         recencyDays(m.LastUsedForDecision),
		InterpretationNotes:  m.InterpretationNotes,
		VanityScore:          m.VanityScore,
		VanityReasons:        vanityReasons,
		IsVanity:             m.IsVanity,
		ValueScore:           m.ValueScore,
		ValueReasons:         valueReasons,
		IsHighValue:          m.IsHighValue,
		ImpactScore:          m.ImpactScore,
		Label:                schema.GetPlainLabel(m),
	}, nil
}

// FromMetricResultRecord rebuilds the annotated metric stored in a history row.
func FromMetricResultRecord(r schema.MetricResultRecord) (schema.AnnotatedMetric, error) {
	vanityReasons, err := decodeReasons(r.VanityReasons)
	if err != nil {
		return schema.AnnotatedMetric{}, fmt.Errorf("metric %s/%s: %w", r.Department, r.MetricName, err)
	}
	valueReasons, err := decodeReasons(r.ValueReasons)
	if err != nil {
		return schema.AnnotatedMetric{}, fmt.Errorf("metric %s/%s: %w", r.Department, r.MetricName, err)
	}
	return schema.AnnotatedMetric{
		MetricRecord: schema.MetricRecord{
			Department:           r.Department,
			MetricName:           r.MetricName,
			VisibleInDashboard:   r.VisibleInDashboard,
			UsedInDecisionMaking: r.UsedInDecisionMaking,
			ExecutiveRequested:   r.ExecutiveRequested,
			LastReviewed:         toRecency(r.LastReviewed, r.LastReviewedDays),
			LastUsedForDecision:  toRecency(r.LastUsedForDecision, r.LastUsedDays),
			InterpretationNotes:  r.InterpretationNotes,
		},
		VanityScore:   r.VanityScore,
		VanityReasons: vanityReasons,
		IsVanity:      r.IsVanity,
		ValueScore:    r.ValueScore,
		ValueReasons:  valueReasons,
		IsHighValue:   r.IsHighValue,
		ImpactScore:   r.ImpactScore,
	}, nil
}

func recencyDays(r schema.Recency) *int32 {
	if !r.Known {
		return nil
	}
	days := int32(r.Days)
	return &days
}

func toRecency(raw string, days *int32) schema.Recency {
	if days == nil {
		return schema.Never(raw)
	}
	return schema.DaysAgo(raw, int(*days))
}

func encodeReasons(reasons []string) (string, error) {
	if reasons == nil {
		reasons = []string{}
	}
	data, err := json.Marshal(reasons)
	if err != nil {
		return "", fmt.Errorf("failed to encode reasons: %w", err)
	}
	return string(data), nil
}

func decodeReasons(data string) ([]string, error) {
	reasons := []string{}
	if data == "" {
		return reasons, nil
	}
	if err := json.Unmarshal([]byte(data), &reasons); err != nil {
		return nil, fmt.Errorf("failed to decode reasons %q: %w", data, err)
	}
	return reasons, nil
}
