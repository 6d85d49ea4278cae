package cli

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hupe1980/pagekv"
	"github.com/hupe1980/pagekv/kvtest"
)

var (
	benchCmd = &cobra.Command{
		Use:   "bench",
		Short: "Run a write/read/range workload against a scratch directory",
		Long: `Run a write/read/range workload against a scratch directory.

Each workload opens a fresh engine in a temporary directory below --dir, so
existing data is never touched.`,
		Args: cobra.NoArgs,
		RunE: runBench,
	}
	metricsCmd = &cobra.Command{
		Use:   "metrics",
		Short: "Open the directory, scan it and print engine metrics in Prometheus format",
		Args:  cobra.NoArgs,
		RunE:  runMetrics,
	}
)

func init() {
	key := "skip"
	benchCmd.Flags().String(key, "", WrapString("Benchmarks to skip (comma separated - e.g. write,range)"))
	key = "threads"
	benchCmd.Flags().Int(key, 4, WrapString("Goroutines per CPU for the parallel workloads"))
	key = "keys"
	benchCmd.Flags().Int(key, 10_000, WrapString("How many different keys to preload for reads and scans"))
	key = "key-size"
	benchCmd.Flags().Int(key, 16, WrapString("Key size in bytes"))
	key = "value-size"
	benchCmd.Flags().Int(key, 128, WrapString("Value size in bytes"))
	key = "prometheus"
	benchCmd.Flags().Bool(key, false, WrapString("Print the collected metrics in Prometheus format after the run"))
}

type benchCase struct {
	name string
	fn   func(b *testing.B, kv pagekv.KV, w kvtest.Workload)
}

var benchCases = []benchCase{
	{"write", kvtest.BenchWrite},
	{"read", kvtest.BenchRead},
	{"range", kvtest.BenchRange},
	{"mixed", kvtest.BenchMixed},
}

func runBench(cmd *cobra.Command, _ []string) error {
	w := kvtest.Workload{
		Keys:      viper.GetInt("keys"),
		KeySize:   viper.GetInt("key-size"),
		ValueSize: viper.GetInt("value-size"),
		Seed:      time.Now().UnixNano(),
	}
	threads := viper.GetInt("threads")
	skip := strings.Split(viper.GetString("skip"), ",")

	collector := pagekv.NewVictoriaMetricsCollector()
	opts, err := EngineOptions(pagekv.WithMetricsCollector(collector))
	if err != nil {
		return err
	}

	root := viper.GetString("dir")
	if err := os.MkdirAll(root, 0o755); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "keys=%d key-size=%d value-size=%d threads=%d\n\n", w.Keys, w.KeySize, w.ValueSize, threads)

	for _, bc := range benchCases {
		if contains(skip, bc.name) {
			printResult(out, bc.name, testing.BenchmarkResult{})
			continue
		}

		dir, err := os.MkdirTemp(root, "bench-"+bc.name+"-")
		if err != nil {
			return err
		}

		var openErr error
		result := testing.Benchmark(func(b *testing.B) {
			sub, err := os.MkdirTemp(dir, "run-")
			if err != nil {
				openErr = err
				return
			}
			db, err := pagekv.Open(sub, opts...)
			if err != nil {
				openErr = err
				return
			}
			b.SetParallelism(threads)
			bc.fn(b, db, w)
		})
		_ = os.RemoveAll(dir)
		if openErr != nil {
			return openErr
		}
		printResult(out, bc.name, result)
	}

	if viper.GetBool("prometheus") {
		fmt.Fprintln(out)
		collector.WritePrometheus(out)
	}
	return nil
}

func runMetrics(cmd *cobra.Command, _ []string) error {
	collector := pagekv.NewVictoriaMetricsCollector()
	db, err := OpenEngine(pagekv.WithMetricsCollector(collector))
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.RangeFunc(nil, nil, func(_, _ []byte) bool { return true }); err != nil {
		return err
	}
	collector.WritePrometheus(cmd.OutOrStdout())
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if strings.TrimSpace(v) == s {
			return true
		}
	}
	return false
}

func printResult(out io.Writer, test string, result testing.BenchmarkResult) {
	if result.NsPerOp() == 0 {
		fmt.Fprintf(out, "%-20sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(result.NsPerOp()), 1)
	opsPerSec := 1.0 / (nsPerOp / 1e9)

	fmt.Fprintf(out, "%-20s%.0fns/op (%s/op)\t%.0f ops/sec\t%d B/op\t%d allocs/op\n",
		test, nsPerOp, time.Duration(nsPerOp), opsPerSec, result.AllocedBytesPerOp(), result.AllocsPerOp())
}
