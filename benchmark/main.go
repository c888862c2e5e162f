// Package main provides a performance benchmarking tool for the kpiaudit CLI.
// It generates synthetic KPI catalogs of increasing size, runs each audit view
// against them with several worker counts, treats the first successful run as
// cold and averages the rest as warm, then writes a CSV for documentation.
//
// Prerequisites:
// - kpiaudit binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory where synthetic catalogs are generated
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark suite (cold run and average of warm runs).
type BenchmarkResult struct {
	Catalog  string
	Command  string
	Workers  int
	ColdTime string
	WarmTime string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir      string
	Timeout      time.Duration
	Runs         int
	WorkerCounts []int
	CatalogSizes []int
	Commands     map[string][]string
}

var (
	departments = []string{"Marketing", "Sales", "Finance", "HR", "Operations", "Product", "Support", "Engineering"}
	descriptors = []string{"Never", "Yesterday", "Last week", "2 weeks ago", "Last month", "Last quarter", "6 months ago", "Last year"}
	yesNo       = []string{"Yes", "No"}
)

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir:      os.Args[1],
		Timeout:      2 * time.Minute,
		Runs:         4,
		WorkerCounts: []int{1, 4, 14},
		CatalogSizes: []int{1_000, 10_000, 100_000},
		Commands: map[string][]string{
			"audit":   {"audit"},
			"remove":  {"remove", "--detail"},
			"summary": {"summary", "--detail"},
		},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	catalogs, err := generateCatalogs(config)
	if err != nil {
		fmt.Printf("Failed to generate catalogs: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config, catalogs)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the kpiaudit binary and the work directory exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("kpiaudit"); err != nil {
		return fmt.Errorf("kpiaudit binary not found in PATH")
	}
	if info, err := os.Stat(config.WorkDir); err != nil || !info.IsDir() {
		return fmt.Errorf("work directory %s not found", config.WorkDir)
	}
	return nil
}

// generateCatalogs writes one synthetic catalog per configured size.
func generateCatalogs(config BenchmarkConfig) (map[int]string, error) {
	catalogs := make(map[int]string, len(config.CatalogSizes))
	rng := rand.New(rand.NewPCG(42, 7))

	for _, size := range config.CatalogSizes {
		path := filepath.Join(config.WorkDir, fmt.Sprintf("catalog_%d.csv", size))
		if err := writeCatalog(path, size, rng); err != nil {
			return nil, err
		}
		fmt.Printf("Generated %s (%d metrics)\n", path, size)
		catalogs[size] = path
	}
	return catalogs, nil
}

func writeCatalog(path string, size int, rng *rand.Rand) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{
		"Department", "Metric_Name", "Visible_in_Dashboard", "Used_in_Decision_Making",
		"Executive_Requested", "Last_Reviewed", "Metric_Last_Used_For_Decision", "Interpretation_Notes",
	}); err != nil {
		return fmt.Errorf("failed to write catalog header: %w", err)
	}

	pick := func(values []string) string { return values[rng.IntN(len(values))] }
	for i := range size {
		row := []string{
			pick(departments),
			"Metric " + strconv.Itoa(i),
			pick(yesNo),
			pick(yesNo),
			pick(yesNo),
			pick(descriptors),
			pick(descriptors),
			"synthetic",
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write catalog row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// runBenchmarks executes every command on every catalog with every worker count
func runBenchmarks(config BenchmarkConfig, catalogs map[int]string) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d catalogs, %v timeout, workers %v, %d runs\n",
		len(catalogs), config.Timeout, config.WorkerCounts, config.Runs)

	for _, size := range config.CatalogSizes {
		path := catalogs[size]
		for _, command := range []string{"audit", "remove", "summary"} {
			for _, workers := range config.WorkerCounts {
				results = append(results, runBenchmarkSuite(config, path, size, command, workers))
			}
		}
	}

	return results
}

// runBenchmarkSuite runs a command several times and records the cold and warm timings
func runBenchmarkSuite(config BenchmarkConfig, path string, size int, command string, workers int) BenchmarkResult {
	fmt.Printf("Running %s on %d metrics with %d workers\n", command, size, workers)

	args := append([]string{}, config.Commands[command]...)
	args = append(args, path, "--workers", strconv.Itoa(workers))

	cold, warm := runBenchmark(config, args)

	coldStr := "TIMEOUT"
	if cold > 0 {
		coldStr = fmt.Sprintf("%.3fs", cold)
	}
	warmStr := "TIMEOUT"
	if len(warm) > 0 {
		var sum float64
		for _, t := range warm {
			sum += t
		}
		warmStr = fmt.Sprintf("%.3fs", sum/float64(len(warm)))
	}

	fmt.Printf("  Cold time: %s, Warm average: %s\n", coldStr, warmStr)

	return BenchmarkResult{
		Catalog:  strconv.Itoa(size),
		Command:  command,
		Workers:  workers,
		ColdTime: coldStr,
		WarmTime: warmStr,
	}
}

// runBenchmark executes kpiaudit repeatedly and returns the cold time and the warm times
func runBenchmark(config BenchmarkConfig, args []string) (coldTime float64, warmTimes []float64) {
	var times []float64
	for range config.Runs {
		ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		start := time.Now()

		cmd := exec.CommandContext(ctx, "kpiaudit", args...)
		output, err := cmd.CombinedOutput()
		elapsed := time.Since(start).Seconds()
		cancel()

		if err == nil && isSuccess(output) {
			times = append(times, elapsed)
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte) bool {
	outputStr := string(output)
	return strings.Contains(outputStr, "Audit completed in") &&
		strings.Contains(outputStr, "workers")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("kpiaudit_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"metrics", "cmd", "workers", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, result := range results {
		if err := writer.Write([]string{result.Catalog, result.Command, strconv.Itoa(result.Workers), result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	printCommandSummary(results, "audit", "Audit:")
	printCommandSummary(results, "remove", "Removal Recommendations:")
	printCommandSummary(results, "summary", "Summary:")
}

// printCommandSummary displays results for a specific command type
func printCommandSummary(results []BenchmarkResult, command, title string) {
	fmt.Printf("%s\n", title)
	for _, result := range results {
		if result.Command == command {
			fmt.Printf("  %8s metrics, %2d workers: Cold: %s, Warm: %s\n", result.Catalog, result.Workers, result.ColdTime, result.WarmTime)
		}
	}
}
