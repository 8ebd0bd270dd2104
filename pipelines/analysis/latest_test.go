// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package analysis_test

import (
	"testing"
	"time"

	"github.com/mdhender/faultrpt/model"
	"github.com/mdhender/faultrpt/pipelines/analysis"
)

func strptr(s string) *string { return &s }

func report(id int64, user, ip string, created time.Time, summary model.Summary) *model.Report {
	r := &model.Report{
		ID:         id,
		Filename:   "r.csv",
		CreatedAt:  created,
		Summary:    summary,
		ReportType: model.ReportTypeNormal,
	}
	if user != "" {
		r.UploaderUser = strptr(user)
	}
	if ip != "" {
		r.UploaderIP = strptr(ip)
	}
	return r
}

func singleOwner(owner, fault string, count int) model.Summary {
	return model.Summary{
		{Owner: owner, Faults: []model.FaultCount{{Name: fault, Count: count}}, Total: count},
	}
}

func TestLatestPerUploader_SelectsNewestPerUploader(t *testing.T) {
	t1 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	t3 := t1.Add(2 * time.Hour)

	s1 := singleOwner("A", "X", 1)
	s2 := singleOwner("A", "X", 5)
	s3 := singleOwner("B", "Y", 2)

	history := []*model.Report{
		report(3, "u2", "", t3, s3),
		report(2, "u1", "", t2, s2),
		report(1, "u1", "", t1, s1),
	}
	latest := analysis.LatestPerUploader(history)

	if len(latest) != 2 {
		t.Fatalf("expected 2 selected reports, got %d", len(latest))
	}
	if latest[0].ID != 3 || latest[1].ID != 2 {
		t.Errorf("expected reports 3 and 2, got %d and %d", latest[0].ID, latest[1].ID)
	}

	combined := analysis.CombineReports(latest)
	if len(combined) != 2 {
		t.Fatalf("expected 2 owners in combined summary, got %d", len(combined))
	}
	if combined[0].Owner != "A" || combined[0].Total != 5 {
		t.Errorf("expected A total 5 (S1 excluded), got %+v", combined[0])
	}
	if combined[1].Owner != "B" || combined[1].Total != 2 {
		t.Errorf("expected B total 2, got %+v", combined[1])
	}
}

func TestLatestPerUploader_TieBrokenByHighestID(t *testing.T) {
	ts := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	history := []*model.Report{
		report(7, "u1", "", ts, singleOwner("A", "X", 1)),
		report(9, "u1", "", ts, singleOwner("A", "X", 2)),
	}
	latest := analysis.LatestPerUploader(history)
	if len(latest) != 1 || latest[0].ID != 9 {
		t.Errorf("expected report 9 selected, got %+v", latest)
	}
}

func TestLatestPerUploader_IPFallbackAndUnknownBuckets(t *testing.T) {
	ts := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	history := []*model.Report{
		report(4, "", "", ts.Add(3*time.Hour), singleOwner("D", "X", 1)),
		report(3, "", "", ts.Add(2*time.Hour), singleOwner("C", "X", 1)),
		report(2, "", "10.0.0.8", ts.Add(time.Hour), singleOwner("B", "X", 1)),
		report(1, "", "10.0.0.8", ts, singleOwner("A", "X", 1)),
	}
	latest := analysis.LatestPerUploader(history)

	// Two unattributed reports stay distinct; the two IP-attributed
	// reports collapse to the newest one.
	if len(latest) != 3 {
		t.Fatalf("expected 3 selected reports, got %d", len(latest))
	}
	ids := map[int64]bool{}
	for _, r := range latest {
		ids[r.ID] = true
	}
	if !ids[4] || !ids[3] || !ids[2] || ids[1] {
		t.Errorf("expected reports 4, 3, 2 selected, got %v", ids)
	}
}

func TestLatestPerUploader_ExcludesAggregates(t *testing.T) {
	ts := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	agg := report(5, "", "", ts.Add(time.Hour), singleOwner("A", "X", 99))
	agg.ReportType = model.ReportTypeAggregateLatestAll
	history := []*model.Report{
		agg,
		report(1, "u1", "", ts, singleOwner("A", "X", 1)),
	}
	latest := analysis.LatestPerUploader(history)
	if len(latest) != 1 || latest[0].ID != 1 {
		t.Errorf("expected aggregate excluded, got %+v", latest)
	}
}

func TestLatestPerUploader_EmptyHistory(t *testing.T) {
	if got := analysis.LatestPerUploader(nil); len(got) != 0 {
		t.Errorf("expected no selections, got %d", len(got))
	}
	if got := analysis.CombineReports(nil); len(got) != 0 {
		t.Errorf("expected empty combined summary, got %+v", got)
	}
}
