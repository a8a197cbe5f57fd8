// Package optional holds the combinators used for values that may be undefined.
//
// Missing inputs (a provider null, a series that is too short) are carried as invalid
// null.Float / null.Bool values. Every combinator propagates "undefined" instead of
// inventing a number; the only place a missing value becomes 0 is OrZero, which the
// scoring stage calls at the final blend.
package optional

import (
	"math"

	"github.com/guregu/null/v6"
)

// Float wraps a finite number; NaN and ±Inf become undefined.
func Float(v float64) null.Float {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return null.Float{}
	}
	return null.FloatFrom(v)
}

// FromPtr converts a decoded JSON pointer (nil when the provider sent null or omitted the field).
func FromPtr(v *float64) null.Float {
	if v == nil {
		return null.Float{}
	}
	return Float(*v)
}

// OrZero substitutes 0 for an undefined value.
func OrZero(v null.Float) float64 {
	if !v.Valid {
		return 0
	}
	return v.Float64
}

// Greater is a > b, undefined when either side is undefined.
func Greater(a, b null.Float) null.Bool {
	if !a.Valid || !b.Valid {
		return null.Bool{}
	}
	return null.BoolFrom(a.Float64 > b.Float64)
}

// And is a && b, undefined when either side is undefined.
func And(a, b null.Bool) null.Bool {
	if !a.Valid || !b.Valid {
		return null.Bool{}
	}
	return null.BoolFrom(a.Bool && b.Bool)
}

// AllTrue reports whether every flag is defined and true. An empty set is not all true.
func AllTrue(flags ...null.Bool) bool {
	if len(flags) == 0 {
		return false
	}
	for _, f := range flags {
		if !f.Valid || !f.Bool {
			return false
		}
	}
	return true
}

// MeanOfDefined averages the defined flags (true=1, false=0), skipping undefined ones.
// Undefined when no flag is defined.
func MeanOfDefined(flags ...null.Bool) null.Float {
	var sum float64
	var n int
	for _, f := range flags {
		if !f.Valid {
			continue
		}
		if f.Bool {
			sum++
		}
		n++
	}
	if n == 0 {
		return null.Float{}
	}
	return null.FloatFrom(sum / float64(n))
}

// Ratio is a / b, undefined when either side is undefined or b is zero.
func Ratio(a, b null.Float) null.Float {
	if !a.Valid || !b.Valid || b.Float64 == 0 {
		return null.Float{}
	}
	return Float(a.Float64 / b.Float64)
}

// Scale multiplies a defined value by k.
func Scale(v null.Float, k float64) null.Float {
	if !v.Valid {
		return v
	}
	return Float(v.Float64 * k)
}

// PctChange is (cur/base - 1) * 100.
func PctChange(cur, base null.Float) null.Float {
	r := Ratio(cur, base)
	if !r.Valid {
		return r
	}
	return Float((r.Float64 - 1) * 100)
}

// Bounds returns the min and max of the defined values; ok is false when none is defined.
func Bounds(values []null.Float) (lo, hi float64, ok bool) {
	for _, v := range values {
		if !v.Valid {
			continue
		}
		if !ok {
			lo, hi, ok = v.Float64, v.Float64, true
			continue
		}
		lo = math.Min(lo, v.Float64)
		hi = math.Max(hi, v.Float64)
	}
	return lo, hi, ok
}

// Compare orders two optional values ascending with undefined values last.
// Returns -1, 0 or 1.
func Compare(a, b null.Float) int {
	switch {
	case !a.Valid && !b.Valid:
		return 0
	case !a.Valid:
		return 1
	case !b.Valid:
		return -1
	case a.Float64 < b.Float64:
		return -1
	case a.Float64 > b.Float64:
		return 1
	default:
		return 0
	}
}
