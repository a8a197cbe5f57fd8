package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// cacheCmd represents the cache command
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage cached rankings",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Invalidate every cached run and universe",
	Long: `Deletes cached results so the next scan recomputes.
Only meaningful with REDIS_ENABLED=true; the in-memory cache lives and dies with one process.

Example:
  go run ./cmd/trendscore cache clear`,
	RunE: runCacheClear,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	a, err := newApp(nil)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := a.runner.Invalidate(ctx)
	if err != nil {
		return err
	}

	PrintSuccess(fmt.Sprintf("Deleted %d cached entries", n))
	return nil
}
