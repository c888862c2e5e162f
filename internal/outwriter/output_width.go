package outwriter

import (
	"os"

	"github.com/huangsam/kpiaudit/internal/contract"
	"golang.org/x/term"
)

// GetMaxTableNameWidth calculates the maximum width for metric names in table output
// based on terminal width and table configuration.
func GetMaxTableNameWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Rank + Department + scores + Label with borders/padding
	baseWidth := 60

	// Flags, recency and reasons columns
	if cfg.Detail {
		baseWidth += 70
	}

	available := termWidth - baseWidth
	if available < 15 {
		return 15
	}
	if available > 50 {
		return 50
	}
	return available
}

// GetMaxReasonWidth bounds the reasons column in detail mode.
func GetMaxReasonWidth(cfg *contract.Config) int {
	return max(20, GetMaxTableNameWidth(cfg)+10)
}
