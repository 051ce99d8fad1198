// Package main measures patentspike command latency against the live KIPRIS API.
// Each command runs several times without a cache, then with a fresh SQLite cache,
// treating the first cached run as cold and averaging the rest as warm. Results are
// written to CSV.
//
// Prerequisites:
// - patentspike binary installed and available in PATH
// - KIPRIS_API_KEY exported
//
// Usage: go run benchmark/main.go [company-set ...]
//
//	company-set: comma-separated companies benchmarked together (default: a few presets)
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Companies   string
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	Timeout     time.Duration
	Workers     int
	MaxPages    int
	NoCacheRuns int
	CacheRuns   int
	CompanySets []string
	Commands    []string
}

func main() {
	config := BenchmarkConfig{
		Timeout:     3 * time.Minute,
		Workers:     4,
		MaxPages:    5,
		NoCacheRuns: 2,
		CacheRuns:   4,
		CompanySets: []string{"삼성전자", "삼성전자,SK하이닉스", "삼성전자,SK하이닉스,TSMC,Intel"},
		Commands:    []string{"spikes", "overview", "patents"},
	}
	if len(os.Args) > 1 {
		config.CompanySets = os.Args[1:]
	}

	if err := checkPrerequisites(); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(config, results)
}

// checkPrerequisites verifies that the binary and the API key are available.
func checkPrerequisites() error {
	if _, err := exec.LookPath("patentspike"); err != nil {
		return errors.New("patentspike binary not found in PATH")
	}
	if os.Getenv("KIPRIS_API_KEY") == "" {
		return errors.New("KIPRIS_API_KEY is not set")
	}
	return nil
}

// clearCache drops cached responses so that the first cached run is cold.
func clearCache() {
	out, err := exec.Command("patentspike", "cache", "clear").CombinedOutput()
	if err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(out))
	}
}

// runBenchmarks executes every command for every company set.
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d company sets, %v timeout, %d workers, no-cache: %d runs, cache: %d runs\n",
		len(config.CompanySets), config.Timeout, config.Workers, config.NoCacheRuns, config.CacheRuns)

	for _, companies := range config.CompanySets {
		fmt.Printf("Benchmarking %s\n", companies)
		for _, command := range config.Commands {
			results = append(results, runBenchmarkSuite(config, companies, command))
		}
	}
	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a command.
func runBenchmarkSuite(config BenchmarkConfig, companies, command string) BenchmarkResult {
	fmt.Printf("Running %s for %s\n", command, companies)

	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, companies, command, cacheBackend, numRuns)
		if len(times) == 0 {
			return cold, "TIMEOUT"
		}
		var sum float64
		for _, t := range times {
			sum += t
		}
		return cold, fmt.Sprintf("%.3fs", sum/float64(len(times)))
	}

	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")

	clearCache()
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Companies:   companies,
		Command:     command,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a command numRuns times and returns the cold time and warm times.
// With the none backend every run is effectively cold; the first one is still reported separately.
func runBenchmark(config BenchmarkConfig, companies, command, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := []string{
		command,
		"--companies", companies,
		"--cache-backend", cacheBackend,
		"--workers", fmt.Sprint(config.Workers),
		"--max-pages", fmt.Sprint(config.MaxPages),
		"--output", "json",
	}

	var times []float64
	for range numRuns {
		ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		start := time.Now()
		err := exec.CommandContext(ctx, "patentspike", args...).Run()
		elapsed := time.Since(start).Seconds()
		cancel()
		if err == nil {
			times = append(times, elapsed)
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// saveResults writes benchmark results to a timestamped CSV file.
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s/patentspike_benchmark_%s.csv", os.TempDir(), timestamp)

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

	if err := writer.Write([]string{"companies", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Companies, result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results grouped by command.
func printSummary(config BenchmarkConfig, results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, command := range config.Commands {
		fmt.Printf("%s:\n", strings.ToUpper(command[:1])+command[1:])
		for _, result := range results {
			if result.Command == command {
				fmt.Printf("  %-32s: No-cache: %s, Cold: %s, Warm: %s\n", result.Companies, result.NoCacheTime, result.ColdTime, result.WarmTime)
			}
		}
	}
}
