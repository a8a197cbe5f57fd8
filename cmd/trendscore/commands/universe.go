package commands

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// universeCmd represents the universe command
var universeCmd = &cobra.Command{
	Use:   "universe",
	Short: "Print the resolved universe and exclusions",
	Long: `Resolves the configured symbol source (SCREENER_UNIVERSE_SOURCE), applies the
market cap filter and size cap, and prints the result.

Example:
  go run ./cmd/trendscore universe
  SCREENER_UNIVERSE_SOURCE=wikipedia go run ./cmd/trendscore universe --format json`,
	RunE: runUniverse,
}

var universeFormat string

func init() {
	rootCmd.AddCommand(universeCmd)
	universeCmd.Flags().StringVar(&universeFormat, "format", formatTable, "output format: table, json")
}

func runUniverse(cmd *cobra.Command, args []string) error {
	a, err := newApp(nil)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	universe, err := a.universe(ctx)
	if err != nil {
		return err
	}

	if universeFormat == formatJSON {
		return writeJSON(os.Stdout, universe)
	}

	fmt.Println()
	PrintDoubleSeparator()
	fmt.Printf("  Universe from %s\n", universe.Source)
	PrintSeparator()
	PrintKeyValue("Symbols", fmt.Sprintf("%d", universe.Count()), 10)
	PrintKeyValue("Excluded", fmt.Sprintf("%d", len(universe.Excluded)), 10)
	PrintDoubleSeparator()

	for i := 0; i < len(universe.Symbols); i += 10 {
		end := min(i+10, len(universe.Symbols))
		fmt.Printf("   %s\n", strings.Join(universe.Symbols[i:end], " "))
	}

	if len(universe.Excluded) > 0 {
		fmt.Println()
		PrintSeparator()
		excluded := make([]string, 0, len(universe.Excluded))
		for s := range universe.Excluded {
			excluded = append(excluded, s)
		}
		sort.Strings(excluded)
		for _, s := range excluded {
			PrintKeyValue(s, universe.Excluded[s], 8)
		}
	}
	return nil
}
