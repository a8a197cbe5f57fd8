package selection

import (
	"fmt"
	"sort"
	"strings"

	"github.com/guregu/null/v6"

	"github.com/wonny/trendscore/internal/contracts"
	"github.com/wonny/trendscore/pkg/optional"
)

// SortColumn names a sortable RankedRow column
type SortColumn string

const (
	SortFinalScore            SortColumn = "FinalScore"
	SortSlope                 SortColumn = "Slope"
	SortSlopeAnnualizedReturn SortColumn = "SlopeAnnualizedReturn"
	SortSlopeNorm             SortColumn = "SlopeNorm"
	SortFinancialScore        SortColumn = "FinancialScore"
	SortClose                 SortColumn = "Close"
	SortVolume                SortColumn = "Volume"
	SortRet1M                 SortColumn = "Ret1M"
	SortRet3M                 SortColumn = "Ret3M"
	SortSymbol                SortColumn = "Symbol"
)

var sortColumns = []SortColumn{
	SortFinalScore, SortSlope, SortSlopeAnnualizedReturn, SortSlopeNorm, SortFinancialScore,
	SortClose, SortVolume, SortRet1M, SortRet3M, SortSymbol,
}

// ParseSortColumn accepts a column name case-insensitively; empty means FinalScore
func ParseSortColumn(s string) (SortColumn, error) {
	if s == "" {
		return SortFinalScore, nil
	}
	for _, c := range sortColumns {
		if strings.EqualFold(string(c), s) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown sort column %q", s)
}

// DisplayFilter narrows and orders a ranked table for presentation. It never changes scores or ranks.
type DisplayFilter struct {
	MinScore  null.Float
	TrendOnly bool
	MaxRet1M  null.Float // rows with an undefined Ret1M are kept
	MaxRet3M  null.Float
	SortBy    SortColumn
	Ascending bool
	Limit     int // 0 means all
}

// Apply returns the filtered, sorted rows. The input slice is not modified.
func (f DisplayFilter) Apply(rows []contracts.RankedRow) []contracts.RankedRow {
	out := make([]contracts.RankedRow, 0, len(rows))
	for _, r := range rows {
		if f.MinScore.Valid && r.FinalScore < f.MinScore.Float64 {
			continue
		}
		if f.TrendOnly && !(r.Trend.Valid && r.Trend.Bool) {
			continue
		}
		if exceeds(r.Ret1M, f.MaxRet1M) || exceeds(r.Ret3M, f.MaxRet3M) {
			continue
		}
		out = append(out, r)
	}

	col := f.SortBy
	if col == "" {
		col = SortFinalScore
	}
	sort.SliceStable(out, func(i, j int) bool {
		return f.less(col, &out[i], &out[j])
	})

	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}

// less orders by column in the requested direction; undefined values go last either way,
// ties fall back to symbol ascending
func (f DisplayFilter) less(col SortColumn, a, b *contracts.RankedRow) bool {
	if col == SortSymbol {
		if f.Ascending {
			return a.Symbol < b.Symbol
		}
		return a.Symbol > b.Symbol
	}

	va, vb := columnValue(col, a), columnValue(col, b)
	switch {
	case !va.Valid && !vb.Valid:
		return a.Symbol < b.Symbol
	case !va.Valid:
		return false
	case !vb.Valid:
		return true
	}

	cmp := optional.Compare(va, vb)
	if cmp == 0 {
		return a.Symbol < b.Symbol
	}
	if f.Ascending {
		return cmp < 0
	}
	return cmp > 0
}

func columnValue(col SortColumn, r *contracts.RankedRow) null.Float {
	switch col {
	case SortSlope:
		return r.Slope
	case SortSlopeAnnualizedReturn:
		return r.SlopeAnnualizedReturn
	case SortSlopeNorm:
		return null.FloatFrom(r.SlopeNorm)
	case SortFinancialScore:
		return r.FinancialScore
	case SortClose:
		return r.Close
	case SortVolume:
		if !r.Volume.Valid {
			return null.Float{}
		}
		return null.FloatFrom(float64(r.Volume.Int64))
	case SortRet1M:
		return r.Ret1M
	case SortRet3M:
		return r.Ret3M
	default:
		return null.FloatFrom(r.FinalScore)
	}
}

func exceeds(v, max null.Float) bool {
	return max.Valid && v.Valid && v.Float64 > max.Float64
}
