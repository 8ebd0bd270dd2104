// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package analysis

import (
	"fmt"
	"sort"

	"github.com/mdhender/faultrpt/model"
)

// UploaderKey returns the grouping key for latest-per-uploader selection.
// Precedence: uploader user, then uploader IP. Reports with neither get a
// key derived from their id so unattributed reports never merge with each
// other.
func UploaderKey(r *model.Report) string {
	if r.UploaderUser != nil {
		if user := CleanText(*r.UploaderUser, ""); user != "" {
			return "user:" + user
		}
	}
	if r.UploaderIP != nil {
		if ip := CleanText(*r.UploaderIP, ""); ip != "" {
			return "ip:" + ip
		}
	}
	return fmt.Sprintf("report:%d", r.ID)
}

// LatestPerUploader selects, for each distinct uploader in the history,
// that uploader's most recent report (ties broken by highest id).
// Aggregate reports are never selected, so a prior aggregation cannot
// compound into the next one. The result keeps most-recent-first order.
func LatestPerUploader(history []*model.Report) []*model.Report {
	ordered := make([]*model.Report, 0, len(history))
	for _, r := range history {
		if r == nil || r.IsAggregate() {
			continue
		}
		ordered = append(ordered, r)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.After(ordered[j].CreatedAt)
		}
		return ordered[i].ID > ordered[j].ID
	})

	seen := make(map[string]bool)
	var latest []*model.Report
	for _, r := range ordered {
		key := UploaderKey(r)
		if seen[key] {
			continue
		}
		seen[key] = true
		latest = append(latest, r)
	}
	return latest
}

// CombineReports flattens the summaries of the given reports and merges
// them into one summary using the same grouping and sorting as Aggregate.
func CombineReports(selected []*model.Report) model.Summary {
	var items []model.OwnerSummary
	for _, r := range selected {
		items = append(items, r.Summary...)
	}
	return MergeSummaries(items)
}
