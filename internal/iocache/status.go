package iocache

import (
	"fmt"
	"maps"
	"slices"

	"github.com/huangsam/kpiaudit/schema"
)

// PrintHistoryStatus prints audit history status information.
func PrintHistoryStatus(status schema.AuditStatus) {
	fmt.Printf("History Backend: %s\n", status.Backend)
	fmt.Printf("Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	fmt.Printf("Total Runs: %d\n", status.TotalRuns)
	if status.TotalRuns > 0 {
		fmt.Printf("Last Run: #%d %s\n", status.LastRunID, status.LastRunUUID)
		fmt.Printf("Last Run Time: %s\n", status.LastRunTime.Format("2006-01-02 15:04:05"))
		fmt.Printf("Oldest Run Time: %s\n", status.OldestRunTime.Format("2006-01-02 15:04:05"))
		fmt.Printf("Total Metrics Audited: %d\n", status.TotalMetrics)
	}
	fmt.Println("Table Sizes:")
	for _, table := range slices.Sorted(maps.Keys(status.TableSizes)) {
		fmt.Printf("  %s: %d rows\n", table, status.TableSizes[table])
	}
}
