//nolint:revive // types is a standard Go package name pattern
package types

// DashboardStats are the headline counters on the dashboard.
type DashboardStats struct {
	Total              int     `json:"total"`
	Applied            int     `json:"applied"`
	InterviewScheduled int     `json:"interviewScheduled"`
	Selected           int     `json:"selected"`
	Rejected           int     `json:"rejected"`
	OfferRate          float64 `json:"offerRate"` // percent, one decimal
}

// Dashboard is the full dashboard payload.
type Dashboard struct {
	User   *User               `json:"user,omitempty"`
	Stats  DashboardStats      `json:"stats"`
	Recent []ApplicationRecord `json:"recent"`
	// StatusColors maps each status shown in Recent to its badge colour.
	StatusColors map[Status]string `json:"statusColors"`
}

// TableSummary are the summary cards above the applications table.
type TableSummary struct {
	Total            int `json:"total"`
	ActiveInterviews int `json:"activeInterviews"`
	PendingReview    int `json:"pendingReview"`
	Rejected         int `json:"rejected"`
}
