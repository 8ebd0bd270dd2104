// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package model

import (
	"time"
)

// Report type values stored in the report_type column.
const (
	ReportTypeNormal             = "normal"
	ReportTypeAggregateLatestAll = "aggregate_latest_all"
)

// AggregateReportFilename is the synthesized filename for the derived
// latest-per-uploader report.
const AggregateReportFilename = "汇总"

// FaultCount is one fault description and its occurrence count within an
// owner's summary.
type FaultCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// OwnerSummary is the aggregated fault list for one responsible owner.
// Faults are sorted by count descending; ties keep first-seen order.
// Total is always the sum of the fault counts.
type OwnerSummary struct {
	Owner  string       `json:"owner"`
	Faults []FaultCount `json:"faults"`
	Total  int          `json:"total"`
}

// Summary is the full aggregation result for one report: owners sorted by
// total descending, ties keeping first-seen order. Owners are unique.
type Summary []OwnerSummary

// Report is a persisted analysis result plus uploader metadata.
// Reports are immutable once created; there is no update operation.
type Report struct {
	ID           int64     `json:"id"            db:"id"`
	Filename     string    `json:"filename"      db:"filename"`
	CreatedAt    time.Time `json:"created_at"    db:"created_at"`
	Summary      Summary   `json:"summary"       db:"summary"`
	UploaderUser *string   `json:"uploader_user" db:"uploader_user"`
	UploaderUID  *int64    `json:"uploader_uid"  db:"uploader_uid"`
	UploaderIP   *string   `json:"uploader_ip"   db:"uploader_ip"`
	ReportType   string    `json:"report_type"   db:"report_type"`
}

// IsAggregate reports whether this is a derived latest-per-uploader report.
func (r *Report) IsAggregate() bool {
	return r.ReportType == ReportTypeAggregateLatestAll
}

// RawData is the auxiliary payload stored alongside a report's summary.
// Normal uploads record row counts and archive details; aggregate reports
// record their source reports.
type RawData struct {
	RowCount          int            `json:"rowCount,omitempty"`
	ArchiveMember     *string        `json:"archive_member"`
	ArchiveBackupPath *string        `json:"archive_backup_path"`
	AggregationType   string         `json:"aggregation_type,omitempty"`
	SourceCount       int            `json:"source_count,omitempty"`
	SourceReports     []SourceReport `json:"source_reports,omitempty"`
}

// SourceReport identifies one input report of an aggregate report.
type SourceReport struct {
	ID           int64     `json:"id"`
	Filename     string    `json:"filename"`
	CreatedAt    time.Time `json:"created_at"`
	UploaderUser *string   `json:"uploader_user"`
	UploaderUID  *int64    `json:"uploader_uid"`
	UploaderIP   *string   `json:"uploader_ip"`
}
