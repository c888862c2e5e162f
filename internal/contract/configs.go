package contract

import (
	"fmt"
	"maps"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/kpiaudit/schema"
)

// Default values for configuration.
const (
	DefaultTopN        = 3
	DefaultResultLimit = 25
	MaxResultLimit     = 1000
	DefaultPrecision   = 1
	DefaultReviewCycle = "3 months"
	DefaultStaleCycles = 2
	DefaultFreshCycles = 1
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// DateFormat is the calendar date representation accepted for catalog dates.
var DateFormat = time.DateOnly

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// VanityWeightsRaw holds custom vanity rule weights. Pointers mark optional fields.
type VanityWeightsRaw struct {
	VisibleUnused   *float64 `mapstructure:"visible_unused"`
	StaleDecision   *float64 `mapstructure:"stale_decision"`
	StaleReview     *float64 `mapstructure:"stale_review"`
	ExecutiveVanity *float64 `mapstructure:"executive_vanity"`
}

// ValueWeightsRaw holds custom value rule weights. Pointers mark optional fields.
type ValueWeightsRaw struct {
	ActiveDriver     *float64 `mapstructure:"active_driver"`
	RecentUse        *float64 `mapstructure:"recent_use"`
	AlignedExecutive *float64 `mapstructure:"aligned_executive"`
	HiddenGem        *float64 `mapstructure:"hidden_gem"`
}

// WeightsRawInput holds all custom rule weights from the YAML config file.
type WeightsRawInput struct {
	Vanity *VanityWeightsRaw `mapstructure:"vanity"`
	Value  *ValueWeightsRaw  `mapstructure:"value"`
}

// ThresholdsRawInput holds classification thresholds from the YAML config file.
type ThresholdsRawInput struct {
	Vanity *float64 `mapstructure:"vanity"`
	Value  *float64 `mapstructure:"value"`
}

// Config holds the runtime configuration for an audit.
// This struct is the "final, validated" config.
type Config struct {
	InputPath   string
	Source      schema.SourceMode
	RunID       int64
	Save        bool
	Departments []string
	TopN        int
	ResultLimit int
	Workers     int
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Width       int // Terminal width override (0 = auto-detect)
	Detail      bool

	AsOf            time.Time
	ReviewCycle     time.Duration
	ReviewCycleDays int
	StaleCycles     int
	FreshCycles     int

	StoreBackend   schema.DatabaseBackend
	StoreDBConnect string // Please use env var as this is plaintext

	// CustomWeights is a mapping of [RuleKind][RuleKey] = Weight
	CustomWeights map[schema.RuleKind]map[schema.RuleKey]float64

	// ComputedWeights is the final weights map for each kind, computed from defaults + custom overrides
	ComputedWeights map[schema.RuleKind]map[schema.RuleKey]float64

	// Thresholds is a mapping of [RuleKind] = minimum score for the verdict
	Thresholds map[schema.RuleKind]float64

	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args when present
	InputPathStr string `mapstructure:"input"`

	// --- Fields from rootCmd.PersistentFlags() ---
	Source         string `mapstructure:"source"`
	RunID          int64  `mapstructure:"run-id"`
	Save           bool   `mapstructure:"save"`
	Department     string `mapstructure:"department"`
	Top            int    `mapstructure:"top"`
	Limit          int    `mapstructure:"limit"`
	Workers        int    `mapstructure:"workers"`
	Precision      int    `mapstructure:"precision"`
	Output         string `mapstructure:"output"`
	OutputFile     string `mapstructure:"output-file"`
	Width          int    `mapstructure:"width"`
	Detail         bool   `mapstructure:"detail"`
	Color          string `mapstructure:"color"`
	AsOf           string `mapstructure:"as-of"`
	ReviewCycle    string `mapstructure:"review-cycle"`
	StaleCycles    int    `mapstructure:"stale-cycles"`
	FreshCycles    int    `mapstructure:"fresh-cycles"`
	StoreBackend   string `mapstructure:"store-backend"`
	StoreDBConnect string `mapstructure:"store-db-connect"`

	// --- Threshold override flag ---
	ThresholdsStr string `mapstructure:"thresholds-override"`

	// --- Custom weights from config file ---
	Weights WeightsRawInput `mapstructure:"weights"`

	// --- Thresholds from config file ---
	Thresholds ThresholdsRawInput `mapstructure:"thresholds"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Departments != nil {
		clone.Departments = slices.Clone(c.Departments)
	}
	clone.CustomWeights = cloneWeights(c.CustomWeights)
	clone.ComputedWeights = cloneWeights(c.ComputedWeights)
	if c.Thresholds != nil {
		clone.Thresholds = make(map[schema.RuleKind]float64, len(c.Thresholds))
		maps.Copy(clone.Thresholds, c.Thresholds)
	}
	return &clone
}

func cloneWeights(in map[schema.RuleKind]map[schema.RuleKey]float64) map[schema.RuleKind]map[schema.RuleKey]float64 {
	if in == nil {
		return nil
	}
	out := make(map[schema.RuleKind]map[schema.RuleKey]float64, len(in))
	for kind, kindMap := range in {
		out[kind] = make(map[schema.RuleKey]float64, len(kindMap))
		maps.Copy(out[kind], kindMap)
	}
	return out
}

// ConfigParams returns the settings recorded alongside an audit run.
func (c *Config) ConfigParams() map[string]any {
	return map[string]any{
		"source":            string(c.Source),
		"input":             c.InputPath,
		"departments":       c.Departments,
		"as_of":             c.AsOf.Format(DateTimeFormat),
		"review_cycle_days": c.ReviewCycleDays,
		"stale_cycles":      c.StaleCycles,
		"fresh_cycles":      c.FreshCycles,
		"weights":           c.ComputedWeights,
		"thresholds":        c.Thresholds,
	}
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := ProcessSettings(cfg, input); err != nil {
		return err
	}
	return resolveSource(cfg, input)
}

// ProcessSettings validates everything except the catalog source. Commands that
// never read a catalog, like rules and mcp, stop here.
func ProcessSettings(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processRecencyPolicy(cfg, input); err != nil {
		return err
	}
	if err := processCustomWeights(cfg, input); err != nil {
		return err
	}
	return processThresholds(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ValidateBackend parses and validates a history backend and its connection string.
func ValidateBackend(backendStr, connStr string) (schema.DatabaseBackend, error) {
	backend := schema.DatabaseBackend(strings.ToLower(backendStr))
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql, none", backendStr)
	}
	if err := ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", err
	}
	return backend, nil
}

// validateSimpleInputs processes and validates all non-source related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Detail = input.Detail
	cfg.Width = input.Width
	cfg.Save = input.Save
	cfg.Departments = ParseDepartments(input.Department)

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Top-N Validation ---
	if input.Top <= 0 {
		return fmt.Errorf("%w: top must be greater than 0 (received %d)", schema.ErrInvalidArgument, input.Top)
	}
	cfg.TopN = input.Top

	// --- 2. ResultLimit Validation ---
	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	// --- 3. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 4. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	if input.Width < 0 {
		return fmt.Errorf("width cannot be negative (received %d)", input.Width)
	}

	// --- 5. Backend Validation ---
	backend, err := ValidateBackend(input.StoreBackend, input.StoreDBConnect)
	if err != nil {
		return err
	}
	cfg.StoreBackend = backend
	cfg.StoreDBConnect = input.StoreDBConnect

	if cfg.Save && cfg.StoreBackend == schema.NoneBackend {
		return fmt.Errorf("--save requires a store backend other than %s", schema.NoneBackend)
	}

	return nil
}

// processRecencyPolicy resolves the reference date and the review cycle windows.
func processRecencyPolicy(cfg *Config, input *ConfigRawInput) error {
	asOf, err := ParseAsOf(input.AsOf, time.Now())
	if err != nil {
		return err
	}
	cfg.AsOf = asOf

	cycle := input.ReviewCycle
	if strings.TrimSpace(cycle) == "" {
		cycle = DefaultReviewCycle
	}
	duration, err := ParseLookbackDuration(cycle)
	if err != nil {
		return fmt.Errorf("invalid review cycle: %w", err)
	}
	days := int(duration / Day)
	if days < 1 {
		return fmt.Errorf("review cycle must be at least one day (received %s)", cycle)
	}
	cfg.ReviewCycle = duration
	cfg.ReviewCycleDays = days

	if input.StaleCycles < 1 {
		return fmt.Errorf("stale-cycles must be at least 1 (received %d)", input.StaleCycles)
	}
	if input.FreshCycles < 1 {
		return fmt.Errorf("fresh-cycles must be at least 1 (received %d)", input.FreshCycles)
	}
	if input.FreshCycles > input.StaleCycles {
		return fmt.Errorf("fresh-cycles (%d) cannot exceed stale-cycles (%d)", input.FreshCycles, input.StaleCycles)
	}
	cfg.StaleCycles = input.StaleCycles
	cfg.FreshCycles = input.FreshCycles
	return nil
}

// ProcessWeightsRawInput converts WeightsRawInput into a sparse weights map.
// Negative weights are rejected; zero disables a rule.
func ProcessWeightsRawInput(weights WeightsRawInput) (map[schema.RuleKind]map[schema.RuleKey]float64, error) {
	result := make(map[schema.RuleKind]map[schema.RuleKey]float64)

	set := func(kind schema.RuleKind, key schema.RuleKey, value *float64) error {
		if value == nil {
			return nil
		}
		if !isFinite(*value) {
			return fmt.Errorf("weight for %s rule %s must be a finite number (received %v)", kind, key, *value)
		}
		if *value < 0 {
			return fmt.Errorf("weight for %s rule %s cannot be negative (received %.2f)", kind, key, *value)
		}
		if result[kind] == nil {
			result[kind] = make(map[schema.RuleKey]float64)
		}
		result[kind][key] = *value
		return nil
	}

	if v := weights.Vanity; v != nil {
		for key, value := range map[schema.RuleKey]*float64{
			schema.RuleVisibleUnused:   v.VisibleUnused,
			schema.RuleStaleDecision:   v.StaleDecision,
			schema.RuleStaleReview:     v.StaleReview,
			schema.RuleExecutiveVanity: v.ExecutiveVanity,
		} {
			if err := set(schema.VanityKind, key, value); err != nil {
				return nil, err
			}
		}
	}
	if v := weights.Value; v != nil {
		for key, value := range map[schema.RuleKey]*float64{
			schema.RuleActiveDriver:     v.ActiveDriver,
			schema.RuleRecentUse:        v.RecentUse,
			schema.RuleAlignedExecutive: v.AlignedExecutive,
			schema.RuleHiddenGem:        v.HiddenGem,
		} {
			if err := set(schema.ValueKind, key, value); err != nil {
				return nil, err
			}
		}
	}

	return result, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// processCustomWeights converts the raw input into cfg.CustomWeights and
// computes the final ComputedWeights for each rule kind.
func processCustomWeights(cfg *Config, input *ConfigRawInput) error {
	weights, err := ProcessWeightsRawInput(input.Weights)
	if err != nil {
		return err
	}
	cfg.CustomWeights = weights

	cfg.ComputedWeights = make(map[schema.RuleKind]map[schema.RuleKey]float64)
	for _, kind := range []schema.RuleKind{schema.VanityKind, schema.ValueKind} {
		kindWeights := schema.GetDefaultWeights(kind)
		if custom, ok := cfg.CustomWeights[kind]; ok {
			maps.Copy(kindWeights, custom)
		}
		cfg.ComputedWeights[kind] = kindWeights
	}
	return nil
}

// processThresholds resolves classification thresholds from defaults, the config
// file and the --thresholds-override flag, in increasing precedence.
func processThresholds(cfg *Config, input *ConfigRawInput) error {
	thresholds := schema.GetDefaultThresholds()

	if input.Thresholds.Vanity != nil {
		thresholds[schema.VanityKind] = *input.Thresholds.Vanity
	}
	if input.Thresholds.Value != nil {
		thresholds[schema.ValueKind] = *input.Thresholds.Value
	}

	if input.ThresholdsStr != "" {
		parsed, err := parseThresholdsString(input.ThresholdsStr)
		if err != nil {
			return fmt.Errorf("invalid --thresholds-override format: %w", err)
		}
		maps.Copy(thresholds, parsed)
	}

	for kind, threshold := range thresholds {
		if !isFinite(threshold) {
			return fmt.Errorf("threshold for %s must be a finite number (received %v)", kind, threshold)
		}
		if threshold <= 0 {
			return fmt.Errorf("threshold for %s must be greater than 0 (received %.2f)", kind, threshold)
		}
	}

	cfg.Thresholds = thresholds
	return nil
}

// resolveSource decides where the catalog is read from.
func resolveSource(cfg *Config, input *ConfigRawInput) error {
	source := input.Source
	if source == "" {
		source = string(schema.FileSource)
	}
	cfg.Source = schema.SourceMode(strings.ToLower(source))
	if _, ok := schema.ValidSourceModes[cfg.Source]; !ok {
		return fmt.Errorf("invalid source '%s'. must be file, store", input.Source)
	}

	if input.RunID < 0 {
		return fmt.Errorf("run-id cannot be negative (received %d)", input.RunID)
	}
	cfg.RunID = input.RunID

	if cfg.Source == schema.StoreSource {
		if cfg.StoreBackend == schema.NoneBackend {
			return fmt.Errorf("store source requires a store backend other than %s", schema.NoneBackend)
		}
		if cfg.Save {
			return fmt.Errorf("--save cannot be combined with the store source")
		}
		return nil
	}

	if strings.TrimSpace(input.InputPathStr) == "" {
		return fmt.Errorf("a catalog CSV path is required when reading from a file")
	}
	absPath, err := filepath.Abs(input.InputPathStr)
	if err != nil {
		return err
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return fmt.Errorf("cannot read catalog: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("catalog path %s is a directory", absPath)
	}
	cfg.InputPath = filepath.Clean(absPath)
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// ParseDepartments splits a comma-separated department filter, dropping blanks and duplicates.
func ParseDepartments(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" && !slices.Contains(out, part) {
			out = append(out, part)
		}
	}
	return out
}

// parseThresholdsString parses a string like "vanity:4,value:3.5"
// into a map of RuleKind to float64.
func parseThresholdsString(s string) (map[schema.RuleKind]float64, error) {
	thresholds := make(map[schema.RuleKind]float64)

	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		keyValue := strings.Split(part, ":")
		if len(keyValue) != 2 {
			return nil, fmt.Errorf("invalid threshold format '%s', expected 'kind:value'", part)
		}

		kindStr := strings.TrimSpace(keyValue[0])
		valueStr := strings.TrimSpace(keyValue[1])

		var kind schema.RuleKind
		switch strings.ToLower(kindStr) {
		case "vanity":
			kind = schema.VanityKind
		case "value":
			kind = schema.ValueKind
		default:
			return nil, fmt.Errorf("invalid rule kind '%s', must be vanity or value", kindStr)
		}

		value, err := strconv.ParseFloat(valueStr, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid threshold value '%s' for %s: %w", valueStr, kind, err)
		}
		thresholds[kind] = value
	}

	return thresholds, nil
}
