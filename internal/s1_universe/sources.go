package s1_universe

import (
	"bufio"
	"context"
	_ "embed"
	"strings"

	"github.com/wonny/trendscore/internal/contracts"
)

//go:embed static_universe.txt
var staticUniverse string

// StaticSource serves the embedded index constituents list
type StaticSource struct{}

var _ contracts.SymbolSource = StaticSource{}

// Name returns the source name
func (StaticSource) Name() string { return "static" }

// Symbols returns the embedded list
func (StaticSource) Symbols(_ context.Context) ([]string, error) {
	return parseList(staticUniverse), nil
}

// ListSource serves an explicit symbol list
type ListSource struct {
	symbols []string
}

// NewListSource creates a source over the given symbols
func NewListSource(symbols []string) *ListSource {
	return &ListSource{symbols: symbols}
}

// Name returns the source name
func (s *ListSource) Name() string { return "list" }

// Symbols returns the configured list
func (s *ListSource) Symbols(_ context.Context) ([]string, error) {
	out := make([]string, len(s.symbols))
	copy(out, s.symbols)
	return out, nil
}

// parseList reads one ticker per line; blank lines and # comments are skipped
func parseList(text string) []string {
	var symbols []string
	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		symbols = append(symbols, line)
	}
	return symbols
}
