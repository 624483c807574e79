package kv

import (
	"context"
	"encoding/csv"
	"fmt"
	"github.com/ValentinKolb/kvapp/cmd/util"
	"github.com/ValentinKolb/kvapp/rpc/common"
	"github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"log"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
	"testing"
	"time"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for kvapp servers",
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}
	perfKeyPrefix        = "__test"
	perfLargeValueSizeKB = 100
	perfNumThreads       = 10
	perfKeySpread        = 100
	perfSkip             = make([]string, 0)

	// perfTimers holds one latency timer per test, filled while benchmarking
	perfTimers = metrics.NewRegistry()
)

func init() {
	// add flags
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. put,get)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of threads to use for the benchmark"))
	key = "large-value-size"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How large the value for the put-large test should be (in KB)"))
	key = "keys"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How many different keys to use for the tests"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfLargeValueSizeKB = viper.GetInt("large-value-size")
	perfKeySpread = max(viper.GetInt("keys"), 1)
	perfNumThreads = max(viper.GetInt("threads"), 1)
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	return nil
}

// perfOp is one benchmarked operation. It is called with the key to use and
// the per-goroutine iteration counter.
type perfOp func(ctx context.Context, key string, i int) error

func runPerf(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	db := database()

	fmt.Println("Performance testing tool for kvapp servers")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(util.GetClientConfig().String())
	fmt.Printf("Database: %s\n", db)
	fmt.Printf("Threads: %d\n", perfNumThreads)
	fmt.Println()

	fmt.Println("starting tests...")

	largeValue := make([]byte, perfLargeValueSizeKB*1024)

	tests := []struct {
		name string
		op   perfOp
	}{
		{"put", func(ctx context.Context, key string, _ int) error {
			return kvClient.Put(ctx, db, key, []byte("test"))
		}},
		{"put-large", func(ctx context.Context, key string, _ int) error {
			return kvClient.Put(ctx, db, key, largeValue)
		}},
		{"get", func(ctx context.Context, key string, _ int) error {
			_, _, err := kvClient.Get(ctx, db, key)
			return err
		}},
		{"delete", func(ctx context.Context, key string, _ int) error {
			_, err := kvClient.Delete(ctx, db, key)
			return err
		}},
		{"mixed", func(ctx context.Context, key string, i int) error {
			var err error
			switch i % 3 {
			case 0:
				err = kvClient.Put(ctx, db, key, []byte("test"))
			case 1:
				_, _, err = kvClient.Get(ctx, db, key)
			case 2:
				_, err = kvClient.Delete(ctx, db, key)
			}
			return err
		}},
	}

	// Create results map
	results := make(map[string]testing.BenchmarkResult)
	for _, test := range tests {
		result := benchmark(ctx, test.name, test.op)
		results[test.name] = result
		printResult(test.name, result, timer(test.name))
	}

	// Write results to csv is specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results, util.GetClientConfig()); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func benchmark(ctx context.Context, name string, op perfOp) testing.BenchmarkResult {
	return testing.Benchmark(func(b *testing.B) {
		if shouldSkip(name) {
			return
		}

		// prepare keys
		getKey, iter := getKeys(name)

		// prefill so get and delete hit existing keys
		iter(func(k string) {
			if err := kvClient.Put(ctx, database(), k, []byte("test")); err != nil {
				log.Printf("(%s) - error preparing key: %v\n", name, err)
			}
		})

		// cleanup
		b.Cleanup(func() {
			iter(func(k string) {
				if _, err := kvClient.Delete(ctx, database(), k); err != nil {
					log.Printf("(%s) - error deleting key: %v\n", name, err)
				}
			})
		})

		b.SetParallelism(perfNumThreads)

		b.ResetTimer()

		latency := timer(name)

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				start := time.Now()
				err := op(ctx, getKey(counter), counter)
				latency.UpdateSince(start)
				if err != nil {
					log.Printf("(%s) - error: %v\n", name, err)
				}
				counter++
			}
		})
	})
}

// timer returns the latency timer of a test
func timer(name string) metrics.Timer {
	return metrics.GetOrRegisterTimer(name, perfTimers)
}

func shouldSkip(test string) bool {
	return slices.Contains(perfSkip, test)
}

// creates an array of test keys and functions to work with them
func getKeys(prefix string) (func(int) string, func(func(string))) {
	keys := make([]string, perfKeySpread)
	for i := 0; i < perfKeySpread; i++ {
		keys[i] = fmt.Sprintf("%s-%s-%d", perfKeyPrefix, prefix, i)
	}

	// Function to get a key by index (with wraparound)
	getKey := func(i int) string {
		return keys[i%perfKeySpread]
	}

	// Function to iterate over all keys and apply a function to each
	iterateKeys := func(fn func(string)) {
		for _, key := range keys {
			fn(key)
		}
	}

	return getKey, iterateKeys
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, result testing.BenchmarkResult, latency metrics.Timer) {
	if result.NsPerOp() == 0 {
		fmt.Printf("%-20sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(result.NsPerOp()), 1) // prevent division by zero
	opsPerSec := 1.0 / (nsPerOp / 1e9)
	ps := latency.Percentiles([]float64{0.5, 0.99})

	// Print the formatted result
	fmt.Printf("%-20s%.0fns/op (%s/op)\t%.0f ops/sec\tp50=%s p99=%s\n",
		test, nsPerOp, time.Duration(nsPerOp), opsPerSec, time.Duration(ps[0]), time.Duration(ps[1]))
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results map[string]testing.BenchmarkResult, config *common.ClientConfig) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "Skipped",
		"Endpoints", "TimeoutSec", "RetryCount", "Database",
		"Threads", "LargeValueSizeKB", "Keys Count", "P50", "P99",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	// Write test results
	for test, result := range results {
		ps := timer(test).Percentiles([]float64{0.5, 0.99})

		var nsPerOp, opsPerSec float64
		skipped := "true"
		if result.NsPerOp() != 0 {
			skipped = "false"
			nsPerOp = math.Max(float64(result.NsPerOp()), 1)
			opsPerSec = 1.0 / (nsPerOp / 1e9)
		}

		row := []string{
			test,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", opsPerSec),
			skipped,
			strings.Join(config.Endpoints, ";"),
			strconv.Itoa(config.TimeoutSecond),
			strconv.Itoa(config.RetryCount),
			database(),
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfLargeValueSizeKB),
			strconv.Itoa(perfKeySpread),
			time.Duration(ps[0]).String(),
			time.Duration(ps[1]).String(),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", test, err)
		}
	}

	return nil
}
