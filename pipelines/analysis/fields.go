// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package analysis turns tabular fault rows into aggregated per-owner
// summaries. Everything in this package is a pure transformation over
// in-memory collections; no I/O, no store access.
package analysis

import (
	"strings"
)

// Sentinel values substituted when a row has no usable owner or fault
// description column.
const (
	UnknownOwner = "Unknown"
	UnknownFault = "Unknown Fault"
)

// Candidate column names, checked in order. Matching is exact and
// case-sensitive; the first candidate with a non-blank value wins.
var (
	OwnerKeys = []string{"pkgs", "owner", "负责人", "处理人", "责任人"}
	FaultKeys = []string{"desc", "fault", "fault_desc", "故障", "故障描述", "问题描述"}
)

// CleanText trims a cell value and substitutes fallback for blank or
// placeholder content ("nan", "none", "null" in any case).
func CleanText(value, fallback string) string {
	text := strings.TrimSpace(value)
	if text == "" {
		return fallback
	}
	switch strings.ToLower(text) {
	case "nan", "none", "null":
		return fallback
	}
	return text
}

// PickField returns the value of the first candidate column present in the
// row with a non-blank value, or fallback when none match. It never fails;
// absence always resolves to the fallback.
func PickField(row map[string]string, keys []string, fallback string) string {
	for _, key := range keys {
		if value, ok := row[key]; ok {
			if cleaned := CleanText(value, ""); cleaned != "" {
				return cleaned
			}
		}
	}
	return fallback
}
