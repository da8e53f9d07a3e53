//nolint:revive // types is a standard Go package name pattern
package types

// SortKey names a column the applications table can be ordered by.
type SortKey string

// Supported sort keys.
const (
	SortByAppliedDate SortKey = "appliedDate"
	SortByCompanyName SortKey = "companyName"
)

// SortDir is the ordering direction.
type SortDir string

// Sort directions.
const (
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

// DefaultPageSize is the number of records shown per table page.
const DefaultPageSize = 10

// ViewParams selects which subset of records is displayed.
type ViewParams struct {
	Search   string  `json:"search"`
	JobType  string  `json:"jobType"`
	Status   string  `json:"status"`
	SortKey  SortKey `json:"sortKey"`
	SortDir  SortDir `json:"sortDir"`
	Page     int     `json:"page"`
	PageSize int     `json:"pageSize"`
}

// DefaultViewParams returns the view a fresh session starts with, which is
// also what "reset filters" restores.
func DefaultViewParams() ViewParams {
	return ViewParams{
		JobType:  FilterAll,
		Status:   FilterAll,
		SortKey:  SortByAppliedDate,
		SortDir:  SortDesc,
		Page:     1,
		PageSize: DefaultPageSize,
	}
}

// View is one rendered page of the applications table.
type View struct {
	Records    []ApplicationRecord `json:"records"`
	TotalCount int                 `json:"totalCount"`
	TotalPages int                 `json:"totalPages"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"pageSize"`
}
