// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package reports wires the upload pipeline together: archive resolution,
// tabular parsing, fault aggregation, persistence, and deletion checks.
package reports

import (
	"context"
	"log"
	"unicode/utf8"

	"github.com/mdhender/faultrpt/backup"
	"github.com/mdhender/faultrpt/model"
	"github.com/mdhender/faultrpt/pipelines/analysis"
	"github.com/mdhender/faultrpt/pipelines/archive"
	"github.com/mdhender/faultrpt/pipelines/tabular"
)

// Store is the persistence surface the service needs.
type Store interface {
	AddReport(ctx context.Context, r *model.Report, raw *model.RawData) error
	UpdateRawData(ctx context.Context, id int64, raw *model.RawData) error
	GetReport(ctx context.Context, id int64) (*model.Report, error)
	GetRawData(ctx context.Context, id int64) (*model.RawData, error)
	AllReports(ctx context.Context) ([]*model.Report, error)
	UploadReports(ctx context.Context) ([]*model.Report, error)
	DeleteReport(ctx context.Context, id int64) (bool, error)
	ReplaceAggregate(ctx context.Context, summary model.Summary, raw *model.RawData) (*model.Report, error)
}

// DeletePolicy decides whether a requester address may delete a report.
type DeletePolicy interface {
	CanDelete(requesterIP string, r *model.Report) bool
}

// Requester identifies who submitted an upload. All fields are optional;
// an upload with no resolvable identity is still accepted.
type Requester struct {
	User *string
	UID  *int64
	IP   *string
}

// Service implements the report operations.
type Service struct {
	store         Store
	vault         *backup.Vault
	policy        DeletePolicy
	warnThreshold int
}

// New creates a Service. The vault may be disabled; the policy must be set.
func New(store Store, vault *backup.Vault, policy DeletePolicy, warnThreshold int) *Service {
	return &Service{
		store:         store,
		vault:         vault,
		policy:        policy,
		warnThreshold: warnThreshold,
	}
}

// Analyze runs the full upload pipeline and persists the result.
// Nothing is persisted when resolution or parsing fails.
func (s *Service) Analyze(ctx context.Context, filename string, content []byte, req Requester) (*model.Report, error) {
	filename = repairFilename(filename)

	resolved, err := archive.Resolve(filename, content)
	if err != nil {
		return nil, err
	}

	rows, err := tabular.Parse(resolved.Filename, resolved.Data)
	if err != nil {
		return nil, err
	}
	if s.warnThreshold > 0 && len(rows) >= s.warnThreshold {
		log.Printf("warning: %s has %d rows (threshold %d)", filename, len(rows), s.warnThreshold)
	}

	records := analysis.ExtractRecords(rows)
	summary := analysis.Aggregate(records)

	raw := &model.RawData{RowCount: len(rows)}
	fromArchive := resolved.Member != ""
	if fromArchive {
		member := resolved.Member
		raw.ArchiveMember = &member
	}

	r := &model.Report{
		Filename:     filename,
		Summary:      summary,
		UploaderUser: req.User,
		UploaderUID:  req.UID,
		UploaderIP:   req.IP,
		ReportType:   model.ReportTypeNormal,
	}
	if err := s.store.AddReport(ctx, r, raw); err != nil {
		return nil, err
	}

	// Back up the original archive bytes. A backup failure is logged but
	// never fails an upload that already parsed and persisted.
	if fromArchive && s.vault != nil && s.vault.Enabled() {
		username := ""
		if req.User != nil {
			username = *req.User
		}
		path, err := s.vault.Save(filename, content, username, r.ID)
		if err != nil {
			log.Printf("warning: archive backup failed for report %d: %v", r.ID, err)
		} else if path != "" {
			raw.ArchiveBackupPath = &path
			if err := s.store.UpdateRawData(ctx, r.ID, raw); err != nil {
				log.Printf("warning: record backup path for report %d: %v", r.ID, err)
			}
		}
	}

	return r, nil
}

// AggregateLatest recomputes the latest-per-uploader aggregate from all
// current uploads and stores it as the singleton aggregate report.
func (s *Service) AggregateLatest(ctx context.Context) (*model.Report, error) {
	history, err := s.store.UploadReports(ctx)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, &ErrNoReports{}
	}

	selected := analysis.LatestPerUploader(history)
	combined := analysis.CombineReports(selected)

	sources := make([]model.SourceReport, 0, len(selected))
	for _, r := range selected {
		sources = append(sources, model.SourceReport{
			ID:           r.ID,
			Filename:     r.Filename,
			CreatedAt:    r.CreatedAt,
			UploaderUser: r.UploaderUser,
			UploaderUID:  r.UploaderUID,
			UploaderIP:   r.UploaderIP,
		})
	}
	raw := &model.RawData{
		AggregationType: model.ReportTypeAggregateLatestAll,
		SourceCount:     len(selected),
		SourceReports:   sources,
	}

	return s.store.ReplaceAggregate(ctx, combined, raw)
}

// Get returns a report and its raw payload by ID.
func (s *Service) Get(ctx context.Context, id int64) (*model.Report, *model.RawData, error) {
	r, err := s.store.GetReport(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if r == nil {
		return nil, nil, &ErrNotFound{ID: id}
	}
	raw, err := s.store.GetRawData(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return r, raw, nil
}

// List returns all reports, newest first.
func (s *Service) List(ctx context.Context) ([]*model.Report, error) {
	return s.store.AllReports(ctx)
}

// Delete removes a report if the requester's address is allowed to.
func (s *Service) Delete(ctx context.Context, id int64, requesterIP string) error {
	r, err := s.store.GetReport(ctx, id)
	if err != nil {
		return err
	}
	if r == nil {
		return &ErrNotFound{ID: id}
	}
	if !s.policy.CanDelete(requesterIP, r) {
		return &ErrForbidden{IP: requesterIP}
	}
	ok, err := s.store.DeleteReport(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return &ErrNotFound{ID: id}
	}
	return nil
}

// repairFilename undoes latin-1 mojibake in multipart filenames. When every
// rune fits in a byte and the repacked bytes form multi-byte UTF-8, the
// repacked form is the intended name.
func repairFilename(name string) string {
	buf := make([]byte, 0, len(name))
	for _, r := range name {
		if r > 0xFF {
			return name
		}
		buf = append(buf, byte(r))
	}
	if len(buf) < len(name) && utf8.Valid(buf) {
		return string(buf)
	}
	return name
}
