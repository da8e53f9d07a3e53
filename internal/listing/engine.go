// Package listing implements the applications table engine: search, filter,
// sort and paginate over an in-memory slice of records.
package listing

import (
	"slices"
	"strings"

	"github.com/jonathan/jobtrack/internal/types"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Engine computes table views. The zero value is not usable; use NewEngine.
type Engine struct {
	locale language.Tag
}

// NewEngine creates an engine that orders company names by the collation
// rules of the given locale.
func NewEngine(locale language.Tag) *Engine {
	return &Engine{locale: locale}
}

// Locale returns the collation locale.
func (e *Engine) Locale() language.Tag {
	return e.locale
}

var defaultEngine = NewEngine(language.English)

// ComputeView runs the default English-collating engine.
func ComputeView(records []types.ApplicationRecord, params types.ViewParams) types.View {
	return defaultEngine.ComputeView(records, params)
}

// ComputeView filters, sorts and paginates records. It never mutates the
// input and does not clamp the requested page: a page outside
// 1..TotalPages yields an empty Records slice.
func (e *Engine) ComputeView(records []types.ApplicationRecord, params types.ViewParams) types.View {
	filtered := Filter(records, params)
	e.Sort(filtered, params.SortKey, params.SortDir)

	size := params.PageSize
	if size <= 0 {
		size = types.DefaultPageSize
	}

	view := types.View{
		Records:    []types.ApplicationRecord{},
		TotalCount: len(filtered),
		TotalPages: TotalPages(len(filtered), size),
		Page:       params.Page,
		PageSize:   size,
	}

	if params.Page < 1 || len(filtered) == 0 || params.Page-1 > (len(filtered)-1)/size {
		return view
	}
	start := (params.Page - 1) * size
	end := start + min(size, len(filtered)-start)
	view.Records = filtered[start:end]
	return view
}

// Filter returns a new slice with the records that pass the search text and
// both categorical filters, in their original order.
func Filter(records []types.ApplicationRecord, params types.ViewParams) []types.ApplicationRecord {
	needle := strings.ToLower(params.Search)
	out := make([]types.ApplicationRecord, 0, len(records))
	for _, rec := range records {
		if !matchesSearch(rec, needle) {
			continue
		}
		if !matchesFilter(string(rec.JobType), params.JobType) {
			continue
		}
		if !matchesFilter(string(rec.Status), params.Status) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// needle must already be lower-cased.
func matchesSearch(rec types.ApplicationRecord, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(rec.CompanyName), needle) ||
		strings.Contains(strings.ToLower(rec.JobTitle), needle) ||
		strings.Contains(strings.ToLower(rec.Location), needle)
}

func matchesFilter(value, filter string) bool {
	if filter == "" || filter == types.FilterAll {
		return true
	}
	return value == filter
}

// Sort orders records in place. Ties keep their relative order in both
// directions. An unknown key leaves the slice untouched.
func (e *Engine) Sort(records []types.ApplicationRecord, key types.SortKey, dir types.SortDir) {
	var compare func(a, b types.ApplicationRecord) int
	switch key {
	case types.SortByAppliedDate:
		compare = func(a, b types.ApplicationRecord) int {
			return a.AppliedDate.Compare(b.AppliedDate.Time)
		}
	case types.SortByCompanyName:
		// Collators keep scratch buffers and are not safe to share.
		c := collate.New(e.locale)
		compare = func(a, b types.ApplicationRecord) int {
			return c.CompareString(a.CompanyName, b.CompanyName)
		}
	default:
		return
	}

	if dir == types.SortDesc {
		asc := compare
		compare = func(a, b types.ApplicationRecord) int { return asc(b, a) }
	}
	slices.SortStableFunc(records, compare)
}

// TotalPages is ceil(count / pageSize).
func TotalPages(count, pageSize int) int {
	if pageSize <= 0 {
		pageSize = types.DefaultPageSize
	}
	pages := count / pageSize
	if count%pageSize != 0 {
		pages++
	}
	return pages
}

// ClampPage pulls page into 1..max(totalPages, 1).
func ClampPage(page, totalPages int) int {
	return min(max(page, 1), max(totalPages, 1))
}

// ToggleSort applies a column-header click: the same key flips the direction,
// a new key (or the same key already descending) sorts ascending.
func ToggleSort(params types.ViewParams, key types.SortKey) types.ViewParams {
	if params.SortKey == key && params.SortDir == types.SortAsc {
		params.SortDir = types.SortDesc
	} else {
		params.SortDir = types.SortAsc
	}
	params.SortKey = key
	return params
}
