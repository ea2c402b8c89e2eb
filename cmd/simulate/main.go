// Command simulate runs offline draws against the stored pool (or the
// sample roster) and prints observed vs expected winner shares.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/ichi0g0y/name-picker/internal/env"
	"github.com/ichi0g0y/name-picker/internal/localdb"
	"github.com/ichi0g0y/name-picker/internal/reveal"
	"github.com/ichi0g0y/name-picker/internal/shared/logger"
	"github.com/ichi0g0y/name-picker/internal/simulate"
	"github.com/ichi0g0y/name-picker/internal/tuning"
	"github.com/ichi0g0y/name-picker/internal/types"
)

func main() {
	logger.Init(false)
	defer logger.Sync()

	if err := env.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var (
		trials    int
		seed      uint64
		mode      string
		speed     float64
		weighted  bool
		useSample bool
		asJSON    bool
	)
	flag.IntVar(&trials, "trials", 10000, "number of draws")
	flag.Uint64Var(&seed, "seed", 1, "random seed for reproducibility")
	flag.StringVar(&mode, "mode", "", "run full reveals of this mode (default: selector only)")
	flag.Float64Var(&speed, "speed", env.Value.DefaultSpeed, "animation speed for full reveals")
	flag.BoolVar(&weighted, "weighted", env.Value.WeightingEnabled, "use entry weights")
	flag.BoolVar(&useSample, "sample", false, "use the sample roster instead of the stored pool")
	flag.BoolVar(&asJSON, "json", false, "print the report as JSON")
	flag.Parse()

	entries, err := loadPool(useSample)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	tun, err := tuning.Load(env.Value.TuningPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	report, err := simulate.Run(simulate.Params{
		Entries:  entries,
		Weighted: weighted,
		Mode:     reveal.Mode(mode),
		Speed:    speed,
		Trials:   trials,
		Seed:     seed,
		Tuning:   tun,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(report)
		return
	}

	fmt.Printf("mode=%s trials=%d seed=%d weighted=%t\n\n", report.Mode, report.Trials, seed, weighted)
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tWEIGHT\tWINS\tOBSERVED\tEXPECTED")
	for _, row := range report.Rows {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.4f\t%.4f\n", row.Name, row.Weight, row.Wins, row.Observed, row.Expected)
	}
	_ = tw.Flush()
	fmt.Printf("\nmax deviation: %.4f\n", report.MaxDeviation)
}

func loadPool(useSample bool) ([]types.Entry, error) {
	if !useSample {
		if _, err := os.Stat(env.Value.DBPath); err == nil {
			if _, err := localdb.SetupDB(env.Value.DBPath); err != nil {
				return nil, err
			}
			defer localdb.Close()

			entries, err := localdb.GetAllEntries()
			if err != nil {
				return nil, err
			}
			if len(entries) > 0 {
				return entries, nil
			}
			logger.Info("Stored pool is empty, using sample roster", zap.String("db", env.Value.DBPath))
		}
	}

	entries := make([]types.Entry, len(localdb.SampleNames))
	for i, name := range localdb.SampleNames {
		entries[i] = types.Entry{Name: name, Weight: types.DefaultWeight}
	}
	return entries, nil
}
