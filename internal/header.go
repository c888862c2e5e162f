// Package internal has helpers that are only useful within the kpiaudit runtime.
package internal

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/huangsam/kpiaudit/internal/contract"
	"github.com/huangsam/kpiaudit/schema"
)

// headerWriter keeps machine-readable output on stdout clean.
func headerWriter(cfg *contract.Config) io.Writer {
	if cfg.Output == schema.TextOut || cfg.OutputFile != "" {
		return os.Stdout
	}
	return os.Stderr
}

// SourceName describes where the catalog of an audit came from.
func SourceName(cfg *contract.Config) string {
	if cfg.Source == schema.StoreSource {
		if cfg.RunID == 0 {
			return "history (latest run)"
		}
		return fmt.Sprintf("history (run %d)", cfg.RunID)
	}
	name := filepath.Base(cfg.InputPath)
	if name == "" || name == "." {
		return "stdin"
	}
	return name
}

// LogAuditHeader prints a concise, 2-line header for each audit.
func LogAuditHeader(cfg *contract.Config) {
	w := headerWriter(cfg)

	// Line 1: The audit summary (Catalog and Source)
	_, _ = fmt.Fprintf(w, "🔎 Catalog: %s (Source: %s)\n", SourceName(cfg), cfg.Source)

	// Line 2: The recency policy being applied
	_, _ = fmt.Fprintf(w, "📅 As of: %s (cycle: %dd, stale > %dd, fresh <= %dd)\n",
		cfg.AsOf.Format(contract.DateFormat),
		cfg.ReviewCycleDays,
		cfg.ReviewCycleDays*cfg.StaleCycles,
		cfg.ReviewCycleDays*cfg.FreshCycles)
}

// LogIngestWarnings reports values that fell back to their conservative default.
// Individual warnings are listed only in detail mode.
func LogIngestWarnings(cfg *contract.Config, warnings []schema.IngestWarning) {
	if len(warnings) == 0 {
		return
	}
	_, _ = fmt.Fprintf(os.Stderr, "⚠️  %d ambiguous catalog values were defaulted\n", len(warnings))
	if !cfg.Detail {
		return
	}
	for _, w := range warnings {
		_, _ = fmt.Fprintf(os.Stderr, "   %s\n", w)
	}
}

// LogSavedRun reports a tracked audit run.
func LogSavedRun(cfg *contract.Config, runID int64, runUUID string) {
	_, _ = fmt.Fprintf(headerWriter(cfg), "📋 Run: #%d %s\n", runID, runUUID)
}
