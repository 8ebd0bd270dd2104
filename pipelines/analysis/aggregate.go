// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package analysis

import (
	"sort"

	"github.com/mdhender/faultrpt/model"
)

// tally accumulates owner -> fault -> count while remembering first-seen
// order of owners and of faults within each owner. Both Aggregate and
// MergeSummaries feed a tally so their grouping and sort semantics are
// identical.
type tally struct {
	owners []string
	counts map[string]*ownerTally
}

type ownerTally struct {
	faults []string
	counts map[string]int
}

func newTally() *tally {
	return &tally{counts: make(map[string]*ownerTally)}
}

func (t *tally) add(owner, fault string, count int) {
	ot, ok := t.counts[owner]
	if !ok {
		ot = &ownerTally{counts: make(map[string]int)}
		t.counts[owner] = ot
		t.owners = append(t.owners, owner)
	}
	if _, ok := ot.counts[fault]; !ok {
		ot.faults = append(ot.faults, fault)
	}
	ot.counts[fault] += count
}

// summary converts the accumulated counts into a sorted Summary.
// Faults sort by count descending and owners by total descending; the
// sorts are stable so ties keep first-seen order.
func (t *tally) summary() model.Summary {
	result := make(model.Summary, 0, len(t.owners))
	for _, owner := range t.owners {
		ot := t.counts[owner]
		faults := make([]model.FaultCount, 0, len(ot.faults))
		total := 0
		for _, name := range ot.faults {
			faults = append(faults, model.FaultCount{Name: name, Count: ot.counts[name]})
			total += ot.counts[name]
		}
		sort.SliceStable(faults, func(i, j int) bool {
			return faults[i].Count > faults[j].Count
		})
		result = append(result, model.OwnerSummary{Owner: owner, Faults: faults, Total: total})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Total > result[j].Total
	})
	return result
}

// Aggregate groups fault records into a per-owner summary.
// Empty input yields an empty (non-nil) summary.
func Aggregate(records []Record) model.Summary {
	t := newTally()
	for _, r := range records {
		t.add(r.Owner, r.Fault, 1)
	}
	return t.summary()
}

// MergeSummaries re-aggregates owner summaries drawn from multiple reports
// into one combined summary. Owner and fault names are cleaned with the
// same sentinel policy as extraction; entries with a non-positive count
// are skipped.
func MergeSummaries(items []model.OwnerSummary) model.Summary {
	t := newTally()
	for _, item := range items {
		owner := CleanText(item.Owner, UnknownOwner)
		// Register the owner even if every fault entry is dropped.
		if _, ok := t.counts[owner]; !ok {
			t.counts[owner] = &ownerTally{counts: make(map[string]int)}
			t.owners = append(t.owners, owner)
		}
		for _, fc := range item.Faults {
			if fc.Count <= 0 {
				continue
			}
			t.add(owner, CleanText(fc.Name, UnknownFault), fc.Count)
		}
	}
	return t.summary()
}
