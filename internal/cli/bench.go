package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/figwire/pkg/diag"
	"github.com/matzehuels/figwire/pkg/figio"
)

// newBenchCmd creates the bench command: cross-check all available engines
// on an input figure and report per-engine timings.
func newBenchCmd() *cobra.Command {
	var (
		runs    int
		minTime time.Duration
		pretty  bool
		csvPath string
		dumpDir string
	)

	cmd := &cobra.Command{
		Use:   "bench [input]",
		Short: "Cross-check and time every available engine",
		Long: `Bench encodes the input figure with every engine linked into this binary,
verifies that all engines agree on the decoded result, and reports how long
each engine takes. Disagreement between engines is an internal-consistency
failure and aborts the run.

Examples:
  figwire bench fig.json
  figwire bench fig.json --runs 100 --min-time 5s --csv bench.csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			input := "-"
			if len(args) == 1 {
				input = args[0]
			}
			data, err := readInput(input)
			if err != nil {
				return err
			}
			fig, err := figio.FromJSON(data)
			if err != nil {
				if dumpDir != "" {
					if path, derr := diag.DumpSample(dumpDir, string(data)); derr == nil {
						logger.Warn("dumped rejected input", "path", path)
					}
				}
				return err
			}

			spin := newSpinnerWithContext(cmd.Context(), "benchmarking engines")
			spin.Start()
			results, err := diag.Benchmark(fig, pretty, diag.Params{MinRuns: runs, MinTime: minTime})
			if err != nil {
				spin.StopWithError("engines disagree or failed to encode")
				if dumpDir != "" {
					if path, derr := diag.DumpSample(dumpDir, fig); derr == nil {
						logger.Warn("dumped offending input", "path", path)
					}
				}
				return err
			}
			spin.StopWithSuccess(fmt.Sprintf("All engines agree (%d engines)", len(results)))

			printBenchTable(results)

			if csvPath != "" {
				if err := diag.AppendCSV(csvPath, results); err != nil {
					return err
				}
				printFile(csvPath)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&runs, "runs", 10, "minimum encode runs per engine")
	cmd.Flags().DurationVar(&minTime, "min-time", time.Second, "minimum wall-clock time per engine")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "benchmark the indented form")
	cmd.Flags().StringVar(&csvPath, "csv", "", "append timing rows to a CSV file")
	cmd.Flags().StringVar(&dumpDir, "dump-dir", "", "dump inputs that trigger failures to this directory")

	return cmd
}

// printBenchTable renders the per-engine timing table.
func printBenchTable(results []diag.Result) {
	printNewline()
	for _, r := range results {
		printKeyValue(r.Engine, fmt.Sprintf("%s/op over %s runs",
			StyleNumber.Render(r.PerRun().Round(time.Microsecond).String()),
			StyleNumber.Render(fmt.Sprintf("%d", r.Runs))))
	}
	printNewline()
}
