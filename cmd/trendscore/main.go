package main

import (
	"os"

	"github.com/wonny/trendscore/cmd/trendscore/commands"
)

// main is the entry point for the trendscore CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/trendscore [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
