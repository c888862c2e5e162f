package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/kpiaudit/schema"
	"github.com/spf13/cast"
)

// Color variables for console output.
var (
	VanityColor    = color.New(color.FgRed, color.Bold) // VanityColor marks metrics to remove.
	HighValueColor = color.New(color.FgGreen, color.Bold)
	NeutralColor   = color.New(color.FgCyan)
)

// GetColorLabel returns a colored verdict label for console output (table).
func GetColorLabel(m schema.AnnotatedMetric) string {
	text := schema.GetPlainLabel(m)

	switch text {
	case schema.VanityLabel:
		return VanityColor.Sprint(text)
	case schema.HighValueLabel:
		return HighValueColor.Sprint(text)
	default:
		return NeutralColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output.
// An empty path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for audit history.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".kpiaudit_history.db"
	}
	return filepath.Join(homeDir, ".kpiaudit_history.db")
}

// TruncateText truncates text to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 so there is room for the ellipsis and one character.
func TruncateText(text string, maxWidth int) string {
	runes := []rune(text)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return text
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "y", "n", "on", "off" and anything cast.ToBoolE understands
// ("true", "false", "1", "0", "t", "f"), case-insensitive.
func ParseBoolString(s string) (bool, error) {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case "yes", "y", "on":
		return true, nil
	case "no", "n", "off":
		return false, nil
	default:
		b, err := cast.ToBoolE(v)
		if err != nil || v == "" {
			return false, fmt.Errorf("invalid boolean string: %q (expected yes/no/true/false/1/0)", s)
		}
		return b, nil
	}
}
