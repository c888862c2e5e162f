package schema

import "errors"

// Custom string types for type safety.
type (
	// RuleKey identifies a single classification rule.
	RuleKey string

	// RuleKind separates vanity rules from value rules.
	RuleKind string

	// OutputMode represents the format of the output.
	OutputMode string

	// SourceMode represents where the audit reads its catalog from.
	SourceMode string

	// DatabaseBackend represents the database backend for audit history.
	DatabaseBackend string
)

// ErrInvalidArgument is wrapped by every rejection of a malformed parameter or record.
var ErrInvalidArgument = errors.New("invalid argument")

// Rule kinds.
const (
	VanityKind RuleKind = "vanity"
	ValueKind  RuleKind = "value"
)

// Vanity rule keys, in evaluation order.
const (
	RuleVisibleUnused   RuleKey = "visible_unused"
	RuleStaleDecision   RuleKey = "stale_decision"
	RuleStaleReview     RuleKey = "stale_review"
	RuleExecutiveVanity RuleKey = "executive_vanity"
)

// Value rule keys, in evaluation order.
const (
	RuleActiveDriver     RuleKey = "active_driver"
	RuleRecentUse        RuleKey = "recent_use"
	RuleAlignedExecutive RuleKey = "aligned_executive"
	RuleHiddenGem        RuleKey = "hidden_gem"
)

// VanityRuleKeys lists vanity rules in evaluation order.
var VanityRuleKeys = []RuleKey{RuleVisibleUnused, RuleStaleDecision, RuleStaleReview, RuleExecutiveVanity}

// ValueRuleKeys lists value rules in evaluation order.
var ValueRuleKeys = []RuleKey{RuleActiveDriver, RuleRecentUse, RuleAlignedExecutive, RuleHiddenGem}

// Verdict labels shown in tables and exports.
const (
	VanityLabel    = "Vanity"
	HighValueLabel = "High-Value"
	NeutralLabel   = "Neutral"
)

// Dashboard placement hints for recommended metrics.
const (
	OnDashboardStatus = "On dashboard"
	PromoteStatus     = "Promote"
)

// Default thresholds.
const (
	DefaultVanityThreshold = 3.0
	DefaultValueThreshold  = 3.0
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All source modes supported.
const (
	FileSource  SourceMode = "file" // default
	StoreSource SourceMode = "store"
)

// All history backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidSourceModes lists all valid source modes.
var ValidSourceModes = map[SourceMode]struct{}{
	FileSource:  {},
	StoreSource: {},
}

// ValidDatabaseBackends lists all valid history backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// GetDefaultWeights returns the default weight map for a rule kind.
func GetDefaultWeights(kind RuleKind) map[RuleKey]float64 {
	switch kind {
	case VanityKind:
		return map[RuleKey]float64{
			RuleVisibleUnused:   3,
			RuleStaleDecision:   2,
			RuleStaleReview:     1,
			RuleExecutiveVanity: 2,
		}
	case ValueKind:
		return map[RuleKey]float64{
			RuleActiveDriver:     3,
			RuleRecentUse:        2,
			RuleAlignedExecutive: 1,
			RuleHiddenGem:        2,
		}
	default:
		return map[RuleKey]float64{}
	}
}

// GetDefaultThresholds returns the default classification threshold per rule kind.
func GetDefaultThresholds() map[RuleKind]float64 {
	return map[RuleKind]float64{
		VanityKind: DefaultVanityThreshold,
		ValueKind:  DefaultValueThreshold,
	}
}
