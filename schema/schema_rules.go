package schema

// RuleDefinition describes one active classification rule.
type RuleDefinition struct {
	Kind    RuleKind `json:"kind"`
	Key     RuleKey  `json:"key"`
	Weight  float64  `json:"weight"`
	Enabled bool     `json:"enabled"`
	Reason  string   `json:"reason"`
}

// RulesRenderModel is everything the rules view displays.
type RulesRenderModel struct {
	Title           string           `json:"title"`
	Vanity          []RuleDefinition `json:"vanity"`
	Value           []RuleDefinition `json:"value"`
	VanityThreshold float64          `json:"vanity_threshold"`
	ValueThreshold  float64          `json:"value_threshold"`
	ReviewCycleDays int              `json:"review_cycle_days"`
	StaleAfterDays  int              `json:"stale_after_days"`
	FreshWithinDays int              `json:"fresh_within_days"`
}
