package kv

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/minidb/cmd/util"
	"github.com/ValentinKolb/minidb/rpc/client"
	"github.com/ValentinKolb/minidb/rpc/common"
	"github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for miniDB servers",
		Long:    "Runs post, get, delete and mixed workloads with concurrent connections and reports latency percentiles and throughput.",
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}
	perfKeyPrefix  = "__test"
	perfNumThreads = 10
	perfOps        = 1000
	perfKeySpread  = 100
	perfSkip       = make([]string, 0)
)

// perfOp is a single request issued by a benchmark worker
type perfOp func(c *client.Client, key string, i int) error

// perfResult is the outcome of one benchmark
type perfResult struct {
	timer   metrics.Timer
	elapsed time.Duration
	errors  int64
	skipped bool
}

func init() {
	// add flags
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. post,get)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of concurrent connections to use for the benchmark"))
	key = "ops"
	perfTestCmd.Flags().Int(key, 1000, util.WrapString("Number of requests every connection sends per benchmark"))
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
	perfKeySpread = viper.GetInt("keys")
	perfNumThreads = viper.GetInt("threads")
	perfOps = viper.GetInt("ops")
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	if perfKeySpread <= 0 || perfNumThreads <= 0 || perfOps <= 0 {
		return fmt.Errorf("keys, threads and ops must be positive")
	}
	return nil
}

func runPerf(_ *cobra.Command, _ []string) error {
	config := util.GetClientConfig()

	fmt.Println("Performance testing tool for miniDB servers")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(config.String())
	fmt.Printf("Threads: %d, Ops per thread: %d, Keys: %d\n", perfNumThreads, perfOps, perfKeySpread)
	fmt.Println()

	fmt.Println("starting tests...")

	registry := metrics.NewRegistry()
	results := make(map[string]perfResult)
	benchmarks := []struct {
		name    string
		preload bool
		op      perfOp
	}{
		{"post", false, func(c *client.Client, key string, _ int) error {
			return c.Post(key, "test")
		}},
		{"get", true, func(c *client.Client, key string, _ int) error {
			_, _, err := c.Get(key)
			return err
		}},
		{"get-missing", false, func(c *client.Client, key string, _ int) error {
			_, _, err := c.Get(key)
			return err
		}},
		{"delete", true, func(c *client.Client, key string, _ int) error {
			_, err := c.Delete(key)
			return err
		}},
		{"mixed", true, func(c *client.Client, key string, i int) error {
			var err error
			switch i % 4 {
			case 0:
				err = c.Post(key, "test")
			case 1, 2:
				_, _, err = c.Get(key)
			case 3:
				_, err = c.Delete(key)
			}
			return err
		}},
	}

	for _, b := range benchmarks {
		if shouldSkip(b.name) {
			results[b.name] = perfResult{skipped: true}
			printResult(b.name, results[b.name])
			continue
		}
		result, err := runBenchmark(config, registry, b.name, b.preload, b.op)
		if err != nil {
			return err
		}
		results[b.name] = result
		printResult(b.name, result)
	}

	if csvPath := viper.GetString("csv"); csvPath != "" {
		if err := writeResultsToCSV(csvPath, results, config); err != nil {
			return err
		}
		fmt.Printf("results written to %s\n", csvPath)
	}
	return nil
}

// runBenchmark runs op perfOps times on each of perfNumThreads connections
func runBenchmark(config common.ClientConfig, registry metrics.Registry, name string, preload bool, op perfOp) (perfResult, error) {
	clients := make([]*client.Client, perfNumThreads)
	for i := range clients {
		c, err := client.Dial(config)
		if err != nil {
			return perfResult{}, err
		}
		defer c.Close()
		clients[i] = c
	}

	keys := make([]string, perfKeySpread)
	for i := range keys {
		keys[i] = fmt.Sprintf("%s-%s-%d", perfKeyPrefix, name, i)
	}

	// prepare keys
	if preload {
		for _, k := range keys {
			if err := clients[0].Post(k, "test"); err != nil {
				return perfResult{}, fmt.Errorf("(%s) - error preparing key: %w", name, err)
			}
		}
	}

	timer := metrics.GetOrRegisterTimer(name, registry)
	var errCount atomic.Int64
	var wg sync.WaitGroup

	start := time.Now()
	for w, c := range clients {
		wg.Add(1)
		go func(w int, c *client.Client) {
			defer wg.Done()
			for i := 0; i < perfOps; i++ {
				key := keys[(w*perfOps+i)%len(keys)]
				opStart := time.Now()
				err := op(c, key, i)
				timer.UpdateSince(opStart)
				if err != nil {
					errCount.Add(1)
				}
			}
		}(w, c)
	}
	wg.Wait()
	elapsed := time.Since(start)

	// cleanup
	for _, k := range keys {
		if _, err := clients[0].Delete(k); err != nil {
			return perfResult{}, fmt.Errorf("(%s) - error deleting key: %w", name, err)
		}
	}

	return perfResult{
		timer:   timer.Snapshot(),
		elapsed: elapsed,
		errors:  errCount.Load(),
	}, nil
}

func shouldSkip(test string) bool {
	for _, s := range perfSkip {
		if strings.TrimSpace(s) == test {
			return true
		}
	}
	return false
}

func opsPerSec(result perfResult) float64 {
	if result.elapsed <= 0 {
		return 0
	}
	return float64(result.timer.Count()) / result.elapsed.Seconds()
}

func printResult(test string, result perfResult) {
	if result.skipped {
		fmt.Printf("%-14sskipped\n", test)
		return
	}

	ps := result.timer.Percentiles([]float64{0.5, 0.99})
	fmt.Printf("%-14s%d ops\tmean %s\tp50 %s\tp99 %s\tmax %s\t%.0f ops/sec\t%d errors\n",
		test,
		result.timer.Count(),
		time.Duration(result.timer.Mean()),
		time.Duration(ps[0]),
		time.Duration(ps[1]),
		time.Duration(result.timer.Max()),
		opsPerSec(result),
		result.errors,
	)
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results map[string]perfResult, config common.ClientConfig) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	header := []string{
		"Test", "Ops", "MeanNs", "P50Ns", "P99Ns", "MaxNs", "OpsPerSec", "Errors", "Skipped",
		"Endpoint", "TimeoutSec", "Threads", "OpsPerThread", "Keys Count",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	// Write test results
	for test, result := range results {
		row := []string{test, "0", "0", "0", "0", "0", "0", "0", "true"}
		if !result.skipped {
			ps := result.timer.Percentiles([]float64{0.5, 0.99})
			row = []string{
				test,
				strconv.FormatInt(result.timer.Count(), 10),
				fmt.Sprintf("%.0f", result.timer.Mean()),
				fmt.Sprintf("%.0f", ps[0]),
				fmt.Sprintf("%.0f", ps[1]),
				strconv.FormatInt(result.timer.Max(), 10),
				fmt.Sprintf("%.0f", opsPerSec(result)),
				strconv.FormatInt(result.errors, 10),
				"false",
			}
		}
		row = append(row,
			config.Endpoint,
			strconv.Itoa(config.TimeoutSecond),
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfOps),
			strconv.Itoa(perfKeySpread),
		)

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", test, err)
		}
	}

	return nil
}
