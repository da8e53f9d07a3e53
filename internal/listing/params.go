package listing

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/jonathan/jobtrack/internal/types"
)

// Query parameter names understood by ApplyQuery.
const (
	ParamSearch   = "search"
	ParamJobType  = "jobType"
	ParamStatus   = "status"
	ParamSort     = "sort"
	ParamDir      = "dir"
	ParamPage     = "page"
	ParamPageSize = "pageSize"
)

// MaxPageSize is the largest pageSize ApplyQuery accepts.
const MaxPageSize = 100

// ParamError reports a query parameter that could not be applied.
type ParamError struct {
	Name  string
	Value string
	Msg   string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Name, e.Value, e.Msg)
}

// ValidSortKey reports whether key is a supported sort key.
func ValidSortKey(key types.SortKey) bool {
	return key == types.SortByAppliedDate || key == types.SortByCompanyName
}

// ApplyQuery overlays the parameters present in q on top of current.
// Changing the search text or either filter sends the view back to page 1
// unless q also names a page.
func ApplyQuery(current types.ViewParams, q url.Values) (types.ViewParams, error) {
	next := current
	resetPage := false

	if q.Has(ParamSearch) {
		next.Search = q.Get(ParamSearch)
		resetPage = resetPage || next.Search != current.Search
	}
	if q.Has(ParamJobType) {
		next.JobType = filterValue(q.Get(ParamJobType))
		resetPage = resetPage || next.JobType != current.JobType
	}
	if q.Has(ParamStatus) {
		next.Status = filterValue(q.Get(ParamStatus))
		resetPage = resetPage || next.Status != current.Status
	}
	if q.Has(ParamSort) {
		key := types.SortKey(q.Get(ParamSort))
		if !ValidSortKey(key) {
			return current, &ParamError{Name: ParamSort, Value: string(key), Msg: "must be appliedDate or companyName"}
		}
		next.SortKey = key
	}
	if q.Has(ParamDir) {
		dir := types.SortDir(q.Get(ParamDir))
		if dir != types.SortAsc && dir != types.SortDesc {
			return current, &ParamError{Name: ParamDir, Value: string(dir), Msg: "must be asc or desc"}
		}
		next.SortDir = dir
	}
	if q.Has(ParamPageSize) {
		raw := q.Get(ParamPageSize)
		size, err := positiveInt(ParamPageSize, raw)
		if err != nil {
			return current, err
		}
		if size > MaxPageSize {
			return current, &ParamError{Name: ParamPageSize, Value: raw, Msg: fmt.Sprintf("must be at most %d", MaxPageSize)}
		}
		next.PageSize = size
	}

	switch {
	case q.Has(ParamPage):
		page, err := positiveInt(ParamPage, q.Get(ParamPage))
		if err != nil {
			return current, err
		}
		next.Page = page
	case resetPage:
		next.Page = 1
	}

	return next, nil
}

func filterValue(v string) string {
	if v == "" {
		return types.FilterAll
	}
	return v
}

func positiveInt(name, raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ParamError{Name: name, Value: raw, Msg: "not a number"}
	}
	if n < 1 {
		return 0, &ParamError{Name: name, Value: raw, Msg: "must be at least 1"}
	}
	return n, nil
}
