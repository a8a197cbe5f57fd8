package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"

	"github.com/guregu/null/v6"
	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"

	"github.com/wonny/trendscore/internal/contracts"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

// Output formats
const (
	formatTable = "table"
	formatJSON  = "json"
)

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Println("───────────────────────────────────────────────────────────")
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Println("═══════════════════════════════════════════════════════════")
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Println()
	fmt.Printf("⚠️  %s\n", message)
	fmt.Println()
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("✅ %s\n", message)
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	fmt.Printf("ℹ️  %s\n", message)
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(key string, value string, keyWidth int) {
	fmt.Printf("   %-*s : %s\n", keyWidth, key, value)
}

// writeJSON pretty-prints v
func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// fmtFloat renders an optional number; undefined prints as "-"
func fmtFloat(v null.Float, prec int) string {
	if !v.Valid {
		return "-"
	}
	return strconv.FormatFloat(v.Float64, 'f', prec, 64)
}

func fmtInt(v null.Int) string {
	if !v.Valid {
		return "-"
	}
	return strconv.FormatInt(v.Int64, 10)
}

func fmtBool(v null.Bool) string {
	switch {
	case !v.Valid:
		return "-"
	case v.Bool:
		return "Y"
	default:
		return "N"
	}
}

var rankingHeader = []string{
	"#", "Symbol", "Close", "Trend", "Slope", "Slope%/yr", "SlopeNorm", "Ret1M%", "Ret3M%", "FinScore", "Score",
}

// rankingRecord converts a row to table cells in rankingHeader order
func rankingRecord(r contracts.RankedRow) []string {
	return []string{
		strconv.Itoa(r.Rank),
		r.Symbol,
		fmtFloat(r.Close, 2),
		fmtBool(r.Trend),
		fmtFloat(r.Slope, 4),
		fmtFloat(r.SlopeAnnualizedReturn, 1),
		strconv.FormatFloat(r.SlopeNorm, 'f', 3, 64),
		fmtFloat(r.Ret1M, 1),
		fmtFloat(r.Ret3M, 1),
		fmtFloat(r.FinancialScore, 2),
		strconv.FormatFloat(r.FinalScore, 'f', 4, 64),
	}
}

// renderRanking prints rows as a table
func renderRanking(w io.Writer, rows []contracts.RankedRow) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithHeader(rankingHeader),
	)
	for _, r := range rows {
		if err := table.Append(rankingRecord(r)); err != nil {
			return err
		}
	}
	return table.Render()
}

// barSink draws one progress bar per pipeline stage on stderr
type barSink struct {
	mu    sync.Mutex
	stage string
	bar   *progressbar.ProgressBar
}

func newBarSink() *barSink {
	return &barSink{}
}

// Publish implements contracts.ProgressSink
func (s *barSink) Publish(e contracts.ProgressEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.Stage != s.stage {
		s.finish()
		s.stage = e.Stage
		if e.Stage == contracts.StageDone || e.Stage == contracts.StageFailed || e.Total <= 1 {
			return
		}
		s.bar = progressbar.NewOptions(e.Total,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetDescription(fmt.Sprintf("%-12s", e.Stage)),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]█[reset]",
				SaucerHead:    "[green]█[reset]",
				SaucerPadding: "░",
				BarStart:      "[",
				BarEnd:        "]",
			}),
		)
	}
	if s.bar != nil {
		s.bar.Set(e.Done)
	}
}

// Close finishes the current bar
func (s *barSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finish()
}

func (s *barSink) finish() {
	if s.bar == nil {
		return
	}
	s.bar.Finish()
	fmt.Fprintln(os.Stderr)
	s.bar = nil
}
