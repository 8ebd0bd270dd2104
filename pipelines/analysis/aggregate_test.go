// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package analysis_test

import (
	"testing"

	"github.com/mdhender/faultrpt/model"
	"github.com/mdhender/faultrpt/pipelines/analysis"
)

func rec(owner, fault string) analysis.Record {
	return analysis.Record{Owner: owner, Fault: fault}
}

func TestAggregate_GroupsAndSorts(t *testing.T) {
	records := []analysis.Record{
		rec("A", "X"), rec("A", "X"), rec("A", "Y"), rec("B", "X"),
	}
	summary := analysis.Aggregate(records)

	if len(summary) != 2 {
		t.Fatalf("expected 2 owners, got %d", len(summary))
	}
	a := summary[0]
	if a.Owner != "A" || a.Total != 3 {
		t.Errorf("expected owner A with total 3, got %s/%d", a.Owner, a.Total)
	}
	if len(a.Faults) != 2 || a.Faults[0].Name != "X" || a.Faults[0].Count != 2 {
		t.Errorf("expected fault X count 2 first, got %+v", a.Faults)
	}
	if a.Faults[1].Name != "Y" || a.Faults[1].Count != 1 {
		t.Errorf("expected fault Y count 1 second, got %+v", a.Faults)
	}
	b := summary[1]
	if b.Owner != "B" || b.Total != 1 || len(b.Faults) != 1 {
		t.Errorf("expected owner B with single fault, got %+v", b)
	}
}

func TestAggregate_TotalInvariant(t *testing.T) {
	records := []analysis.Record{
		rec("A", "X"), rec("B", "Y"), rec("A", "Z"), rec("C", "X"), rec("B", "Y"),
	}
	summary := analysis.Aggregate(records)

	sum := 0
	for _, owner := range summary {
		ownerSum := 0
		for _, f := range owner.Faults {
			ownerSum += f.Count
		}
		if ownerSum != owner.Total {
			t.Errorf("owner %s: total %d != fault sum %d", owner.Owner, owner.Total, ownerSum)
		}
		sum += owner.Total
	}
	if sum != len(records) {
		t.Errorf("summary totals %d != record count %d", sum, len(records))
	}
}

func TestAggregate_OwnersAndFaultsAreUnique(t *testing.T) {
	records := []analysis.Record{
		rec("A", "X"), rec("A", "X"), rec("B", "X"), rec("A", "Y"), rec("B", "X"),
	}
	summary := analysis.Aggregate(records)

	owners := make(map[string]bool)
	for _, owner := range summary {
		if owners[owner.Owner] {
			t.Errorf("duplicate owner %q", owner.Owner)
		}
		owners[owner.Owner] = true
		faults := make(map[string]bool)
		for _, f := range owner.Faults {
			if faults[f.Name] {
				t.Errorf("owner %q: duplicate fault %q", owner.Owner, f.Name)
			}
			faults[f.Name] = true
		}
	}
}

func TestAggregate_TieBreakIsFirstSeen(t *testing.T) {
	// B and A tie on total; B was seen first. Within A, Y and X tie on
	// count; Y was seen first.
	records := []analysis.Record{
		rec("B", "X"), rec("A", "Y"), rec("A", "X"),
		rec("B", "X"), rec("A", "Y"), rec("A", "X"),
	}
	summary := analysis.Aggregate(records)

	if summary[0].Owner != "A" || summary[1].Owner != "B" {
		t.Fatalf("expected A (total 4) before B (total 2), got %s, %s",
			summary[0].Owner, summary[1].Owner)
	}
	a := summary[0]
	if a.Faults[0].Name != "Y" || a.Faults[1].Name != "X" {
		t.Errorf("expected tied faults in first-seen order Y, X, got %+v", a.Faults)
	}
}

func TestAggregate_EmptyInput(t *testing.T) {
	summary := analysis.Aggregate(nil)
	if summary == nil {
		t.Fatal("expected empty summary, got nil")
	}
	if len(summary) != 0 {
		t.Errorf("expected empty summary, got %d owners", len(summary))
	}
}

func TestAggregate_SentinelRecordCounts(t *testing.T) {
	summary := analysis.Aggregate([]analysis.Record{
		rec(analysis.UnknownOwner, analysis.UnknownFault),
	})
	if len(summary) != 1 || summary[0].Owner != analysis.UnknownOwner || summary[0].Total != 1 {
		t.Errorf("expected single sentinel bucket, got %+v", summary)
	}
}

func TestAggregate_PermutedInputSameMultiset(t *testing.T) {
	// No ties anywhere, so the result is independent of input order.
	forward := []analysis.Record{
		rec("A", "X"), rec("A", "X"), rec("A", "X"), rec("A", "Y"), rec("B", "Z"),
	}
	backward := make([]analysis.Record, len(forward))
	for i, r := range forward {
		backward[len(forward)-1-i] = r
	}

	s1 := analysis.Aggregate(forward)
	s2 := analysis.Aggregate(backward)

	if len(s1) != len(s2) {
		t.Fatalf("summaries differ in length: %d vs %d", len(s1), len(s2))
	}
	for i := range s1 {
		if s1[i].Owner != s2[i].Owner || s1[i].Total != s2[i].Total {
			t.Errorf("owner %d differs: %+v vs %+v", i, s1[i], s2[i])
		}
		for j := range s1[i].Faults {
			if s1[i].Faults[j] != s2[i].Faults[j] {
				t.Errorf("fault %d/%d differs: %+v vs %+v", i, j, s1[i].Faults[j], s2[i].Faults[j])
			}
		}
	}
}

func TestMergeSummaries_Idempotent(t *testing.T) {
	records := []analysis.Record{
		rec("A", "X"), rec("A", "X"), rec("A", "Y"), rec("B", "X"),
	}
	once := analysis.Aggregate(records)
	twice := analysis.MergeSummaries(once)

	if len(once) != len(twice) {
		t.Fatalf("expected identical summaries, got %d vs %d owners", len(once), len(twice))
	}
	for i := range once {
		if once[i].Owner != twice[i].Owner || once[i].Total != twice[i].Total {
			t.Errorf("owner %d: %+v vs %+v", i, once[i], twice[i])
		}
		for j := range once[i].Faults {
			if once[i].Faults[j] != twice[i].Faults[j] {
				t.Errorf("fault %d/%d: %+v vs %+v", i, j, once[i].Faults[j], twice[i].Faults[j])
			}
		}
	}
}

func TestMergeSummaries_CombinesCounts(t *testing.T) {
	items := []model.OwnerSummary{
		{Owner: "A", Faults: []model.FaultCount{{Name: "X", Count: 2}}, Total: 2},
		{Owner: "A", Faults: []model.FaultCount{{Name: "X", Count: 3}, {Name: "Y", Count: 1}}, Total: 4},
		{Owner: "B", Faults: []model.FaultCount{{Name: "X", Count: 1}}, Total: 1},
	}
	merged := analysis.MergeSummaries(items)

	if merged[0].Owner != "A" || merged[0].Total != 6 {
		t.Errorf("expected A with total 6, got %+v", merged[0])
	}
	if merged[0].Faults[0].Name != "X" || merged[0].Faults[0].Count != 5 {
		t.Errorf("expected X count 5, got %+v", merged[0].Faults)
	}
}

func TestMergeSummaries_SkipsBadCounts(t *testing.T) {
	items := []model.OwnerSummary{
		{Owner: "A", Faults: []model.FaultCount{{Name: "X", Count: 0}, {Name: "Y", Count: -3}}},
	}
	merged := analysis.MergeSummaries(items)
	if len(merged) != 1 || merged[0].Total != 0 || len(merged[0].Faults) != 0 {
		t.Errorf("expected owner A with no faults, got %+v", merged)
	}
}

func TestExtractRecords_BlankOwnerDefaultsToSentinel(t *testing.T) {
	rows := []map[string]string{
		{"pkgs": "alice", "desc": "disk failure"},
		{"pkgs": "   ", "desc": "disk failure"},
		{"desc": "link flap"},
	}
	records := analysis.ExtractRecords(rows)

	if len(records) != len(rows) {
		t.Fatalf("expected %d records, got %d", len(rows), len(records))
	}
	if records[0].Owner != "alice" {
		t.Errorf("expected owner alice, got %q", records[0].Owner)
	}
	if records[1].Owner != analysis.UnknownOwner || records[2].Owner != analysis.UnknownOwner {
		t.Errorf("expected sentinel owners, got %q, %q", records[1].Owner, records[2].Owner)
	}

	summary := analysis.Aggregate(records)
	found := false
	for _, owner := range summary {
		if owner.Owner == analysis.UnknownOwner && owner.Total == 2 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected Unknown bucket with total 2, got %+v", summary)
	}
}

func TestExtractRecords_CandidateOrder(t *testing.T) {
	rows := []map[string]string{
		{"pkgs": "alice", "owner": "bob", "desc": "x"},
		{"pkgs": "", "owner": "bob", "desc": "x"},
		{"负责人": "chen", "故障描述": "链路故障"},
	}
	records := analysis.ExtractRecords(rows)

	if records[0].Owner != "alice" {
		t.Errorf("expected primary key to win, got %q", records[0].Owner)
	}
	if records[1].Owner != "bob" {
		t.Errorf("expected fallthrough to owner column, got %q", records[1].Owner)
	}
	if records[2].Owner != "chen" || records[2].Fault != "链路故障" {
		t.Errorf("expected CJK synonym columns to match, got %+v", records[2])
	}
}

func TestPickField_PlaceholderValues(t *testing.T) {
	row := map[string]string{"pkgs": "NaN", "owner": "null", "负责人": "dana"}
	got := analysis.PickField(row, analysis.OwnerKeys, analysis.UnknownOwner)
	if got != "dana" {
		t.Errorf("expected placeholders skipped, got %q", got)
	}
}
