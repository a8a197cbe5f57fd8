package handlers

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/guregu/null/v6"

	"github.com/wonny/trendscore/internal/contracts"
	"github.com/wonny/trendscore/internal/pipeline"
	"github.com/wonny/trendscore/internal/selection"
)

// parseRunParams reads variant, window, batch_size, symbols and refresh
func parseRunParams(q url.Values) (pipeline.RunParams, error) {
	var p pipeline.RunParams

	if v := q.Get("variant"); v != "" {
		variant, err := contracts.ParseVariant(v)
		if err != nil {
			return p, err
		}
		p.Variant = variant
	}

	var err error
	if p.Window, err = intParam(q, "window"); err != nil {
		return p, err
	}
	if p.BatchSize, err = intParam(q, "batch_size"); err != nil {
		return p, err
	}
	if p.Refresh, err = boolParam(q, "refresh"); err != nil {
		return p, err
	}
	if s := q.Get("symbols"); s != "" {
		p.Symbols = strings.Split(s, ",")
	}

	return p, p.Validate()
}

// parseDisplayFilter reads min_score, trend_only, max_ret_1m, max_ret_3m, sort, order, limit
func parseDisplayFilter(q url.Values) (selection.DisplayFilter, error) {
	var f selection.DisplayFilter
	var err error

	if f.MinScore, err = floatParam(q, "min_score"); err != nil {
		return f, err
	}
	if f.MaxRet1M, err = floatParam(q, "max_ret_1m"); err != nil {
		return f, err
	}
	if f.MaxRet3M, err = floatParam(q, "max_ret_3m"); err != nil {
		return f, err
	}
	if f.TrendOnly, err = boolParam(q, "trend_only"); err != nil {
		return f, err
	}
	if f.SortBy, err = selection.ParseSortColumn(q.Get("sort")); err != nil {
		return f, err
	}

	switch strings.ToLower(q.Get("order")) {
	case "", "desc":
	case "asc":
		f.Ascending = true
	default:
		return f, fmt.Errorf("order must be asc or desc")
	}

	if f.Limit, err = intParam(q, "limit"); err != nil {
		return f, err
	}
	if f.Limit < 0 {
		return f, fmt.Errorf("limit must be >= 0")
	}

	return f, nil
}

func intParam(q url.Values, key string) (int, error) {
	s := q.Get(key)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, s)
	}
	return v, nil
}

func floatParam(q url.Values, key string) (null.Float, error) {
	s := q.Get(key)
	if s == "" {
		return null.Float{}, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return null.Float{}, fmt.Errorf("%s: invalid number %q", key, s)
	}
	return null.FloatFrom(v), nil
}

func boolParam(q url.Values, key string) (bool, error) {
	s := q.Get(key)
	if s == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%s: invalid boolean %q", key, s)
	}
	return v, nil
}
