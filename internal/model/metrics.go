package model

import (
	"strconv"
	"time"
)

const (
	dateLayout = "2006-01-02 15:04:05"

	// NoMerger fills the merged-by column of pull requests nobody merged.
	NoMerger = "-"
)

// Header lists the CSV columns in the order Row renders them.
var Header = []string{
	"Repository",
	"PR id",
	"PR title",
	"PR state",
	"PR Creation Date",
	"PR Creator",
	"PR Last Modified",
	"PR is merged",
	"PR Date Merged",
	"PR Merged By",
	"Count Files Changed",
	"Count Comments",
	"Count Commits",
	"Count Deletions",
	"Count Review Requests",
	"Count Reviews",
	"Minutes to First Review",
	"Minutes to Last Review",
	"Minutes Between Reviews",
}

// MetricsRecord is the review latency summary of a single pull request.
type MetricsRecord struct {
	Repository   string
	PrID         int64
	Title        string
	State        string
	CreatedAt    time.Time
	Creator      string
	LastModified string
	Merged       bool
	MergedAt     *time.Time
	MergedBy     string
	ChangedFiles int
	Comments     int
	Commits      int
	Deletions    int

	ReviewRequestCount int
	ReviewCount        int

	MinutesToFirstReview  int
	MinutesToLastReview   int
	MinutesBetweenReviews int
}

// Row renders the record as CSV fields matching Header.
func (r *MetricsRecord) Row() []string {
	mergedAt := ""
	if r.MergedAt != nil {
		mergedAt = FormatDate(*r.MergedAt)
	}
	mergedBy := r.MergedBy
	if mergedBy == "" {
		mergedBy = NoMerger
	}
	return []string{
		r.Repository,
		strconv.FormatInt(r.PrID, 10),
		r.Title,
		r.State,
		FormatDate(r.CreatedAt),
		r.Creator,
		r.LastModified,
		strconv.FormatBool(r.Merged),
		mergedAt,
		mergedBy,
		strconv.Itoa(r.ChangedFiles),
		strconv.Itoa(r.Comments),
		strconv.Itoa(r.Commits),
		strconv.Itoa(r.Deletions),
		strconv.Itoa(r.ReviewRequestCount),
		strconv.Itoa(r.ReviewCount),
		strconv.Itoa(r.MinutesToFirstReview),
		strconv.Itoa(r.MinutesToLastReview),
		strconv.Itoa(r.MinutesBetweenReviews),
	}
}

// FormatDate renders t in UTC without a zone suffix.
func FormatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}
