package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/guregu/null/v6"
	"github.com/spf13/cobra"

	"github.com/wonny/trendscore/internal/contracts"
	"github.com/wonny/trendscore/internal/selection"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run the pipeline and print the ranked table",
	Long: `Runs universe → prices → technical → fundamentals → scoring and prints the result.
Results are cached per parameter set and TTL bucket; --refresh recomputes.

Display flags (--min-score, --trend-only, --max-ret-1m, --max-ret-3m, --sort, --asc, --limit)
never change scores or ranks.

Example:
  go run ./cmd/trendscore scan --limit 25
  go run ./cmd/trendscore scan --symbols AAPL,MSFT,NVDA --variant momentum
  go run ./cmd/trendscore scan --trend-only --sort SlopeAnnualizedReturn --format json`,
	RunE: runScan,
}

var (
	scanRun      runFlags
	scanFormat   string
	scanMinScore float64
	scanTrend    bool
	scanMaxRet1M float64
	scanMaxRet3M float64
	scanSort     string
	scanAsc      bool
	scanLimit    int
	scanNoBar    bool
)

func init() {
	rootCmd.AddCommand(scanCmd)

	scanRun.register(scanCmd)
	scanCmd.Flags().StringVar(&scanFormat, "format", formatTable, "output format: table, json")
	scanCmd.Flags().Float64Var(&scanMinScore, "min-score", 0, "hide rows below this FinalScore")
	scanCmd.Flags().BoolVar(&scanTrend, "trend-only", false, "only rows with Trend = true")
	scanCmd.Flags().Float64Var(&scanMaxRet1M, "max-ret-1m", 0, "hide rows with Ret1M above this percent")
	scanCmd.Flags().Float64Var(&scanMaxRet3M, "max-ret-3m", 0, "hide rows with Ret3M above this percent")
	scanCmd.Flags().StringVar(&scanSort, "sort", "", "sort column (default FinalScore)")
	scanCmd.Flags().BoolVar(&scanAsc, "asc", false, "ascending order")
	scanCmd.Flags().IntVar(&scanLimit, "limit", 0, "max rows (0 = all)")
	scanCmd.Flags().BoolVar(&scanNoBar, "no-progress", false, "hide the progress bar")
}

// scanFilter builds the display filter from flags that were actually set
func scanFilter(cmd *cobra.Command) (selection.DisplayFilter, error) {
	col, err := selection.ParseSortColumn(scanSort)
	if err != nil {
		return selection.DisplayFilter{}, err
	}
	if scanLimit < 0 {
		return selection.DisplayFilter{}, fmt.Errorf("--limit must be >= 0")
	}

	f := selection.DisplayFilter{
		TrendOnly: scanTrend,
		SortBy:    col,
		Ascending: scanAsc,
		Limit:     scanLimit,
	}
	if cmd.Flags().Changed("min-score") {
		f.MinScore = null.FloatFrom(scanMinScore)
	}
	if cmd.Flags().Changed("max-ret-1m") {
		f.MaxRet1M = null.FloatFrom(scanMaxRet1M)
	}
	if cmd.Flags().Changed("max-ret-3m") {
		f.MaxRet3M = null.FloatFrom(scanMaxRet3M)
	}
	return f, nil
}

func runScan(cmd *cobra.Command, args []string) error {
	if scanFormat != formatTable && scanFormat != formatJSON {
		return fmt.Errorf("unknown format %q", scanFormat)
	}
	params, err := scanRun.params()
	if err != nil {
		return err
	}
	filter, err := scanFilter(cmd)
	if err != nil {
		return err
	}

	var sink *barSink
	var progress contracts.ProgressSink
	if !scanNoBar && scanFormat == formatTable {
		sink = newBarSink()
		progress = sink
	}

	a, err := newApp(progress)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	table, err := a.runner.Run(ctx, params)
	if sink != nil {
		sink.Close()
	}
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	rows := filter.Apply(table.Rows)

	if scanFormat == formatJSON {
		table.Rows = rows
		return writeJSON(os.Stdout, table)
	}

	fmt.Println()
	PrintDoubleSeparator()
	fmt.Printf("  %s ranking  (run %s)\n", table.Variant, table.RunID)
	PrintSeparator()
	PrintKeyValue("Universe", fmt.Sprintf("%d (excluded %d)", table.Stats.UniverseSize, table.Stats.UniverseExcluded), 12)
	PrintKeyValue("Priced", fmt.Sprintf("%d (failed batches %d)", table.Stats.Priced, table.Stats.FailedBatches), 12)
	if table.Variant.UsesFundamentals() {
		PrintKeyValue("Fundamentals", fmt.Sprintf("%d fetched, %d failed", table.Stats.FundamentalsFetched, table.Stats.FundamentalsFailed), 12)
	}
	PrintKeyValue("Survivors", fmt.Sprintf("%d (showing %d)", len(table.Rows), len(rows)), 12)
	PrintKeyValue("Generated", table.GeneratedAt.Format(time.RFC3339), 12)
	PrintDoubleSeparator()

	if len(rows) == 0 {
		PrintWarning("No rows match the current filters")
		return nil
	}
	if err := renderRanking(os.Stdout, rows); err != nil {
		return err
	}

	fmt.Println()
	PrintSuccess(fmt.Sprintf("Done in %.2fs", time.Since(start).Seconds()))
	return nil
}
