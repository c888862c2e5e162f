package iocache

import (
	"errors"
	"fmt"

	"github.com/huangsam/kpiaudit/internal/contract"
	"github.com/huangsam/kpiaudit/internal/parquet"
)

// ExecuteHistoryExport writes every stored run and metric result to Parquet files
// named after outputFile.
func ExecuteHistoryExport(store contract.AuditStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("audit history store is not available")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no audit history found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total audit runs: %d\n", status.TotalRuns)
	fmt.Printf("Total metric records: %d\n", status.TableSizes[metricResultsTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve audit runs: %w", err)
	}

	results, err := store.GetAllMetricResults()
	if err != nil {
		return fmt.Errorf("failed to retrieve metric results: %w", err)
	}

	parquetRuns := parquet.ConvertAuditRunRecords(runs)
	parquetResults := parquet.ConvertMetricResultRecords(results)

	runsFile := outputFile + ".audit_runs.parquet"
	if err := parquet.WriteAuditRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write audit runs: %w", err)
	}
	fmt.Printf("Exported %d audit runs to: %s\n", len(parquetRuns), runsFile)

	resultsFile := outputFile + ".metric_results.parquet"
	if err := parquet.WriteMetricResultsParquet(parquetResults, resultsFile); err != nil {
		return fmt.Errorf("failed to write metric results: %w", err)
	}
	fmt.Printf("Exported %d metric results to: %s\n", len(parquetResults), resultsFile)

	fmt.Println("\nExport complete! The Parquet files can be read with DuckDB, Pandas (via pyarrow), Spark or Arrow.")

	return nil
}
