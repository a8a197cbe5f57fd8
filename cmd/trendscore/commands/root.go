package commands

import (
	"github.com/spf13/cobra"

	"github.com/wonny/trendscore/internal/contracts"
	"github.com/wonny/trendscore/internal/pipeline"
)

var (
	// Global flags
	strategyFile string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "trendscore",
	Short: "Trend + fundamentals stock screener",
	Long: `trendscore ranks a stock universe by price trend and fundamental growth.

Pipeline: universe → prices → technical → fundamentals → scoring

Usage:
  go run ./cmd/trendscore [command]

Examples:
  go run ./cmd/trendscore scan --limit 20
  go run ./cmd/trendscore scan --variant momentum --sort Ret3M
  go run ./cmd/trendscore detail AAPL
  go run ./cmd/trendscore serve`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&strategyFile, "strategy", "", "strategy weights YAML (default: STRATEGY_FILE or built-in)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// runFlags are the flags that change what a run computes
type runFlags struct {
	variant   string
	window    int
	batchSize int
	symbols   []string
	refresh   bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.variant, "variant", "", "fundamentals | momentum (default: SCREENER_VARIANT)")
	cmd.Flags().IntVar(&f.window, "window", 0, "slope window in bars (default: SCREENER_SLOPE_WINDOW)")
	cmd.Flags().IntVar(&f.batchSize, "batch-size", 0, "price batch size 1..500 (default: SCREENER_BATCH_SIZE)")
	cmd.Flags().StringSliceVar(&f.symbols, "symbols", nil, "explicit symbols, overrides the universe source")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "ignore cached results")
}

func (f *runFlags) params() (pipeline.RunParams, error) {
	p := pipeline.RunParams{
		Window:    f.window,
		BatchSize: f.batchSize,
		Symbols:   f.symbols,
		Refresh:   f.refresh,
	}
	if f.variant != "" {
		v, err := contracts.ParseVariant(f.variant)
		if err != nil {
			return p, err
		}
		p.Variant = v
	}
	return p, p.Validate()
}
