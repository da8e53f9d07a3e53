// Package dashboard derives the dashboard and table summary figures from the
// current records.
package dashboard

import (
	"math"
	"slices"

	"github.com/jonathan/jobtrack/internal/types"
)

// RecentLimit is how many applications the dashboard lists.
const RecentLimit = 5

// Badge colours.
const (
	ColorWarning   = "warning"
	ColorPrimary   = "primary"
	ColorSuccess   = "success"
	ColorError     = "error"
	ColorSecondary = "secondary"
)

// StatusColor returns the badge colour for a status.
func StatusColor(status types.Status) string {
	switch status {
	case types.StatusApplied:
		return ColorWarning
	case types.StatusInterviewScheduled, types.StatusTechnicalAssessment:
		return ColorPrimary
	case types.StatusSelected, types.StatusOfferReceived, types.StatusAccepted:
		return ColorSuccess
	case types.StatusRejected:
		return ColorError
	default:
		return ColorSecondary
	}
}

// Stats counts records by status. OfferRate is the share of Selected records
// as a percentage rounded to one decimal, 0 when there are no records.
func Stats(records []types.ApplicationRecord) types.DashboardStats {
	var stats types.DashboardStats
	stats.Total = len(records)
	for _, rec := range records {
		switch rec.Status {
		case types.StatusApplied:
			stats.Applied++
		case types.StatusInterviewScheduled:
			stats.InterviewScheduled++
		case types.StatusSelected:
			stats.Selected++
		case types.StatusRejected:
			stats.Rejected++
		}
	}
	if stats.Total > 0 {
		rate := float64(stats.Selected) / float64(stats.Total) * 100
		stats.OfferRate = math.Round(rate*10) / 10
	}
	return stats
}

// Recent returns up to limit records, most recently applied first. Records
// sharing a date keep their stored order.
func Recent(records []types.ApplicationRecord, limit int) []types.ApplicationRecord {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b types.ApplicationRecord) int {
		return b.AppliedDate.Compare(a.AppliedDate.Time)
	})
	if limit >= 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	if sorted == nil {
		sorted = []types.ApplicationRecord{}
	}
	return sorted
}

// Build assembles the dashboard for user.
func Build(user *types.User, records []types.ApplicationRecord) types.Dashboard {
	recent := Recent(records, RecentLimit)
	colors := make(map[types.Status]string, len(recent))
	for _, rec := range recent {
		colors[rec.Status] = StatusColor(rec.Status)
	}
	return types.Dashboard{
		User:         user,
		Stats:        Stats(records),
		Recent:       recent,
		StatusColors: colors,
	}
}

// Summarize computes the cards shown above the applications table. It counts
// every record, not just the filtered page.
func Summarize(records []types.ApplicationRecord) types.TableSummary {
	summary := types.TableSummary{Total: len(records)}
	for _, rec := range records {
		switch rec.Status {
		case types.StatusInterviewScheduled, types.StatusTechnicalAssessment:
			summary.ActiveInterviews++
		case types.StatusApplied:
			summary.PendingReview++
		case types.StatusRejected:
			summary.Rejected++
		}
	}
	return summary
}
