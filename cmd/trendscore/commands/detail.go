package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/wonny/trendscore/internal/contracts"
	"github.com/wonny/trendscore/internal/pipeline"
)

// detailCmd represents the detail command
var detailCmd = &cobra.Command{
	Use:   "detail SYMBOL",
	Short: "Show score components and recent closes for one symbol",
	Long: `Looks the symbol up in the ranked table for the given parameters and fetches
its last 6 months of daily bars.

Example:
  go run ./cmd/trendscore detail AAPL
  go run ./cmd/trendscore detail MSFT --variant momentum --bars 40`,
	Args: cobra.ExactArgs(1),
	RunE: runDetail,
}

var (
	detailRun    runFlags
	detailFormat string
	detailBars   int
)

func init() {
	rootCmd.AddCommand(detailCmd)

	detailRun.register(detailCmd)
	detailCmd.Flags().StringVar(&detailFormat, "format", formatTable, "output format: table, json")
	detailCmd.Flags().IntVar(&detailBars, "bars", 20, "recent bars to print (table format)")
}

func runDetail(cmd *cobra.Command, args []string) error {
	params, err := detailRun.params()
	if err != nil {
		return err
	}

	a, err := newApp(nil)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	detail, err := a.runner.Detail(ctx, params, args[0])
	if err != nil {
		return err
	}

	if detailFormat == formatJSON {
		return writeJSON(os.Stdout, detail)
	}

	printDetail(detail)
	return renderBars(detail.Bars, detailBars)
}

func printDetail(d *pipeline.Detail) {
	fmt.Println()
	PrintDoubleSeparator()
	fmt.Printf("  %s  (run %s)\n", d.Symbol, d.RunID)
	PrintSeparator()

	if !d.Ranked() {
		PrintInfo("Not in the ranked table (filtered out or missing data)")
		PrintDoubleSeparator()
		return
	}

	r := d.Row
	const w = 24
	PrintKeyValue("Rank", strconv.Itoa(r.Rank), w)
	PrintKeyValue("FinalScore", strconv.FormatFloat(r.FinalScore, 'f', 4, 64), w)
	PrintKeyValue("Close / High / Low", fmt.Sprintf("%s / %s / %s", fmtFloat(r.Close, 2), fmtFloat(r.High, 2), fmtFloat(r.Low, 2)), w)
	PrintKeyValue("Volume", fmtInt(r.Volume), w)
	PrintKeyValue("HH / HL / Trend", fmt.Sprintf("%s / %s / %s", fmtBool(r.HH), fmtBool(r.HL), fmtBool(r.Trend)), w)
	PrintKeyValue("Slope", fmtFloat(r.Slope, 4), w)
	PrintKeyValue("SlopeNorm", strconv.FormatFloat(r.SlopeNorm, 'f', 4, 64), w)
	PrintKeyValue("Slope annualized %", fmtFloat(r.SlopeAnnualizedReturn, 1), w)
	PrintKeyValue("Ret1M / Ret3M %", fmt.Sprintf("%s / %s", fmtFloat(r.Ret1M, 1), fmtFloat(r.Ret3M, 1)), w)

	PrintSeparator()
	PrintKeyValue("Revenue", fmt.Sprintf("%s ← %s  growth %s", fmtFloat(r.Revenue, 0), fmtFloat(r.PrevRevenue, 0), fmtBool(r.RevenueGrowth)), w)
	PrintKeyValue("Net income", fmt.Sprintf("%s ← %s  growth %s", fmtFloat(r.NetIncome, 0), fmtFloat(r.PrevNetIncome, 0), fmtBool(r.ProfitGrowth)), w)
	PrintKeyValue("Operating cash flow", fmt.Sprintf("%s ← %s  growth %s", fmtFloat(r.OperatingCashFlow, 0), fmtFloat(r.PrevOperatingCashFlow, 0), fmtBool(r.CashflowGrowth)), w)
	PrintKeyValue("FinancialScore", fmtFloat(r.FinancialScore, 2), w)
	PrintDoubleSeparator()
}

// renderBars prints the most recent n bars, newest last
func renderBars(bars []contracts.PriceBar, n int) error {
	if n > 0 && len(bars) > n {
		bars = bars[len(bars)-n:]
	}
	if len(bars) == 0 {
		return nil
	}

	fmt.Println()
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Date", "Open", "High", "Low", "Close", "Volume"}),
	)
	for _, b := range bars {
		if err := table.Append([]string{
			b.Date.Format("2006-01-02"),
			fmtFloat(b.Open, 2),
			fmtFloat(b.High, 2),
			fmtFloat(b.Low, 2),
			fmtFloat(b.Close, 2),
			fmtInt(b.Volume),
		}); err != nil {
			return err
		}
	}
	return table.Render()
}
