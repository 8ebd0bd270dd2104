// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mdhender/faultrpt/model"
)

// AddReport inserts a report row and sets r.ID and r.CreatedAt.
// Raw data may be nil when there is no auxiliary payload.
func (s *SQLiteStore) AddReport(ctx context.Context, r *model.Report, raw *model.RawData) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	if r.ReportType == "" {
		r.ReportType = model.ReportTypeNormal
	}

	summaryJSON, err := json.Marshal(r.Summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	rawJSON, err := marshalRawData(raw)
	if err != nil {
		return err
	}

	const query = `
		INSERT INTO reports (filename, created_at, summary, raw_data, uploader_user, uploader_uid, uploader_ip, report_type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query,
		r.Filename,
		r.CreatedAt.Format(time.RFC3339),
		string(summaryJSON),
		rawJSON,
		nullString(r.UploaderUser),
		nullInt(r.UploaderUID),
		nullString(r.UploaderIP),
		r.ReportType,
	)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	r.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get report id: %w", err)
	}
	return nil
}

// UpdateRawData replaces the raw_data payload of an existing report.
func (s *SQLiteStore) UpdateRawData(ctx context.Context, id int64, raw *model.RawData) error {
	rawJSON, err := marshalRawData(raw)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE reports SET raw_data = ? WHERE id = ?`, rawJSON, id); err != nil {
		return fmt.Errorf("update raw_data: %w", err)
	}
	return nil
}

// GetReport returns a report by ID, or nil if no such report exists.
func (s *SQLiteStore) GetReport(ctx context.Context, id int64) (*model.Report, error) {
	const query = `
		SELECT id, filename, created_at, summary, uploader_user, uploader_uid, uploader_ip, report_type
		FROM reports
		WHERE id = ?
	`
	r, err := scanReport(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query report: %w", err)
	}
	return r, nil
}

// GetRawData returns the raw_data payload for a report, or nil if the report
// has none or does not exist.
func (s *SQLiteStore) GetRawData(ctx context.Context, id int64) (*model.RawData, error) {
	var rawJSON sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT raw_data FROM reports WHERE id = ?`, id).Scan(&rawJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query raw_data: %w", err)
	}
	if !rawJSON.Valid || rawJSON.String == "" {
		return nil, nil
	}
	var raw model.RawData
	if err := json.Unmarshal([]byte(rawJSON.String), &raw); err != nil {
		return nil, fmt.Errorf("unmarshal raw_data: %w", err)
	}
	return &raw, nil
}

// AllReports returns every report, newest first. Ties on timestamp are broken
// by higher ID first.
func (s *SQLiteStore) AllReports(ctx context.Context) ([]*model.Report, error) {
	const query = `
		SELECT id, filename, created_at, summary, uploader_user, uploader_uid, uploader_ip, report_type
		FROM reports
		ORDER BY datetime(created_at) DESC, id DESC
	`
	return s.queryReports(ctx, query)
}

// UploadReports returns the non-aggregate reports, newest first.
// This is the input set for latest-per-uploader aggregation.
func (s *SQLiteStore) UploadReports(ctx context.Context) ([]*model.Report, error) {
	const query = `
		SELECT id, filename, created_at, summary, uploader_user, uploader_uid, uploader_ip, report_type
		FROM reports
		WHERE report_type != ?
		ORDER BY datetime(created_at) DESC, id DESC
	`
	return s.queryReports(ctx, query, model.ReportTypeAggregateLatestAll)
}

// DeleteReport removes a report by ID. Returns false if no row matched.
func (s *SQLiteStore) DeleteReport(ctx context.Context, id int64) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM reports WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete report: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// ReplaceAggregate writes the singleton aggregate report in one transaction.
// The oldest aggregate row is updated in place so its ID stays stable across
// refreshes; any stray extra aggregate rows are pruned.
func (s *SQLiteStore) ReplaceAggregate(ctx context.Context, summary model.Summary, raw *model.RawData) (*model.Report, error) {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return nil, fmt.Errorf("marshal summary: %w", err)
	}
	rawJSON, err := marshalRawData(raw)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		`SELECT id FROM reports WHERE report_type = ? ORDER BY id`,
		model.ReportTypeAggregateLatestAll,
	)
	if err != nil {
		return nil, fmt.Errorf("query aggregates: %w", err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan aggregate id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	var reportID int64
	if len(ids) == 0 {
		result, err := tx.ExecContext(ctx,
			`INSERT INTO reports (filename, created_at, summary, raw_data, report_type) VALUES (?, ?, ?, ?, ?)`,
			model.AggregateReportFilename,
			now.Format(time.RFC3339),
			string(summaryJSON),
			rawJSON,
			model.ReportTypeAggregateLatestAll,
		)
		if err != nil {
			return nil, fmt.Errorf("insert aggregate: %w", err)
		}
		reportID, err = result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("get aggregate id: %w", err)
		}
	} else {
		reportID = ids[0]
		_, err := tx.ExecContext(ctx,
			`UPDATE reports SET filename = ?, created_at = ?, summary = ?, raw_data = ? WHERE id = ?`,
			model.AggregateReportFilename,
			now.Format(time.RFC3339),
			string(summaryJSON),
			rawJSON,
			reportID,
		)
		if err != nil {
			return nil, fmt.Errorf("update aggregate: %w", err)
		}
		for _, extra := range ids[1:] {
			if _, err := tx.ExecContext(ctx, `DELETE FROM reports WHERE id = ?`, extra); err != nil {
				return nil, fmt.Errorf("prune aggregate %d: %w", extra, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit aggregate: %w", err)
	}

	return &model.Report{
		ID:         reportID,
		Filename:   model.AggregateReportFilename,
		CreatedAt:  now,
		Summary:    summary,
		ReportType: model.ReportTypeAggregateLatestAll,
	}, nil
}

// Stats holds basic counts about the store.
type Stats struct {
	Reports    int
	Uploads    int
	Aggregates int
}

// Stats returns basic statistics about the store.
func (s *SQLiteStore) Stats() Stats {

	var stats Stats

	s.db.QueryRow("SELECT COUNT(*) FROM reports").Scan(&stats.Reports)
	s.db.QueryRow("SELECT COUNT(*) FROM reports WHERE report_type != 'aggregate_latest_all'").Scan(&stats.Uploads)
	s.db.QueryRow("SELECT COUNT(*) FROM reports WHERE report_type = 'aggregate_latest_all'").Scan(&stats.Aggregates)

	return stats
}

func (s *SQLiteStore) queryReports(ctx context.Context, query string, args ...any) ([]*model.Report, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	var reports []*model.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*model.Report, error) {
	var r model.Report
	var createdAt, summaryJSON string
	var uploaderUser, uploaderIP sql.NullString
	var uploaderUID sql.NullInt64

	if err := row.Scan(
		&r.ID, &r.Filename, &createdAt, &summaryJSON,
		&uploaderUser, &uploaderUID, &uploaderIP, &r.ReportType,
	); err != nil {
		return nil, err
	}

	ts, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	r.CreatedAt = ts

	if err := json.Unmarshal([]byte(summaryJSON), &r.Summary); err != nil {
		return nil, fmt.Errorf("unmarshal summary: %w", err)
	}
	if r.Summary == nil {
		r.Summary = model.Summary{}
	}

	r.UploaderUser = stringPtr(uploaderUser)
	r.UploaderUID = intPtr(uploaderUID)
	r.UploaderIP = stringPtr(uploaderIP)

	return &r, nil
}

func marshalRawData(raw *model.RawData) (sql.NullString, error) {
	if raw == nil {
		return sql.NullString{}, nil
	}
	buf, err := json.Marshal(raw)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshal raw_data: %w", err)
	}
	return sql.NullString{String: string(buf), Valid: true}, nil
}
