package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/kpiaudit/core/algo"
	"github.com/huangsam/kpiaudit/internal/contract"
	"github.com/huangsam/kpiaudit/schema"
)

// buildRulesRenderModel flattens a rule set into its presentation form.
func buildRulesRenderModel(rs algo.RuleSet) schema.RulesRenderModel {
	convert := func(rules []algo.Rule) []schema.RuleDefinition {
		defs := make([]schema.RuleDefinition, 0, len(rules))
		for _, r := range rules {
			defs = append(defs, schema.RuleDefinition{
				Kind:    r.Kind,
				Key:     r.Key,
				Weight:  r.Weight,
				Enabled: r.Weight > 0,
				Reason:  r.Reason,
			})
		}
		return defs
	}
	return schema.RulesRenderModel{
		Title:           "Classification rules",
		Vanity:          convert(rs.Vanity),
		Value:           convert(rs.Value),
		VanityThreshold: rs.VanityThreshold,
		ValueThreshold:  rs.ValueThreshold,
		ReviewCycleDays: rs.Policy.ReviewCycleDays,
		StaleAfterDays:  rs.Policy.StaleAfterDays(),
		FreshWithinDays: rs.Policy.FreshWithinDays(),
	}
}

// PrintRuleDefinitions prints the active rule tables and thresholds.
func PrintRuleDefinitions(rs algo.RuleSet, cfg *contract.Config) error {
	model := buildRulesRenderModel(rs)

	switch cfg.Output {
	case schema.ParquetOut:
		return unsupportedParquet("rules")
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, model)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRulesCSV(w, model, cfg)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRulesText(w, model, cfg)
		}, "Wrote text")
	}
}

// writeRulesCSV writes one row per rule followed by one row per threshold.
func writeRulesCSV(w io.Writer, model schema.RulesRenderModel, cfg *contract.Config) error {
	fmtFloat := createFormatter(cfg.Precision)
	header := []string{"kind", "key", "weight", "enabled", "reason"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, def := range append(append([]schema.RuleDefinition{}, model.Vanity...), model.Value...) {
			rec := []string{string(def.Kind), string(def.Key), fmtFloat(def.Weight), strconv.FormatBool(def.Enabled), def.Reason}
			if err := cw.Write(rec); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		thresholds := [][]string{
			{string(schema.VanityKind), "threshold", fmtFloat(model.VanityThreshold), "true", ""},
			{string(schema.ValueKind), "threshold", fmtFloat(model.ValueThreshold), "true", ""},
		}
		for _, rec := range thresholds {
			if err := cw.Write(rec); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}

// writeRulesText writes both rule tables and the recency policy.
func writeRulesText(w io.Writer, model schema.RulesRenderModel, cfg *contract.Config) error {
	fmtFloat := createFormatter(cfg.Precision)
	if _, err := fmt.Fprintf(w, "📐 %s\n", model.Title); err != nil {
		return err
	}

	sections := []struct {
		title     string
		rules     []schema.RuleDefinition
		threshold float64
	}{
		{"Vanity rules", model.Vanity, model.VanityThreshold},
		{"Value rules", model.Value, model.ValueThreshold},
	}
	for _, s := range sections {
		if _, err := fmt.Fprintf(w, "\n%s (flagged at score >= %s)\n", s.title, fmtFloat(s.threshold)); err != nil {
			return err
		}
		data := make([][]string, 0, len(s.rules))
		for _, def := range s.rules {
			state := "on"
			if !def.Enabled {
				state = "off"
			}
			data = append(data, []string{string(def.Key), fmtFloat(def.Weight), state, def.Reason})
		}
		if err := renderTable(newTable(w, []string{"Rule", "Weight", "State", "Reason"}), data); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "\nRecency: review cycle %d days, stale after %d days, fresh within %d days\n",
		model.ReviewCycleDays, model.StaleAfterDays, model.FreshWithinDays)
	return err
}
