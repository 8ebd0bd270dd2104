// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package reports

import (
	"errors"
	"fmt"

	"github.com/mdhender/faultrpt/pipelines/archive"
	"github.com/mdhender/faultrpt/pipelines/tabular"
)

// ErrNotFound is returned when no report exists with the requested ID.
type ErrNotFound struct {
	ID int64
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("report %d not found", e.ID)
}

// ErrForbidden is returned when the requester's address is not allowed to
// delete the report.
type ErrForbidden struct {
	IP string
}

func (e *ErrForbidden) Error() string {
	if e.IP == "" {
		return "delete not allowed from unknown address"
	}
	return fmt.Sprintf("delete not allowed from %s", e.IP)
}

// ErrNoReports is returned when aggregation is requested but no uploaded
// reports exist.
type ErrNoReports struct{}

func (e *ErrNoReports) Error() string {
	return "no reports available"
}

// Error code constants for API responses.
const (
	ErrCodeUnsupportedFormat     = "UNSUPPORTED_FORMAT"
	ErrCodeArchiveMemberNotFound = "ARCHIVE_MEMBER_NOT_FOUND"
	ErrCodeParse                 = "PARSE_ERROR"
	ErrCodeNotFound              = "NOT_FOUND"
	ErrCodeForbidden             = "FORBIDDEN"
	ErrCodeNoReports             = "NO_REPORTS_AVAILABLE"
	ErrCodeUnknown               = "UNKNOWN"
)

// ErrorCode returns the error code string for a given error.
func ErrorCode(err error) string {
	var unsupported *tabular.ErrUnsupportedFormat
	var memberNotFound *archive.ErrMemberNotFound
	var emptyMember *archive.ErrEmptyMember
	var badArchive *archive.ErrBadArchive
	var parseErr *tabular.ErrParse
	var noData *tabular.ErrNoData
	var notFound *ErrNotFound
	var forbidden *ErrForbidden
	var noReports *ErrNoReports

	switch {
	case errors.As(err, &unsupported):
		return ErrCodeUnsupportedFormat
	case errors.As(err, &memberNotFound):
		return ErrCodeArchiveMemberNotFound
	case errors.As(err, &emptyMember), errors.As(err, &badArchive):
		return ErrCodeParse
	case errors.As(err, &parseErr), errors.As(err, &noData):
		return ErrCodeParse
	case errors.As(err, &notFound):
		return ErrCodeNotFound
	case errors.As(err, &forbidden):
		return ErrCodeForbidden
	case errors.As(err, &noReports):
		return ErrCodeNoReports
	default:
		return ErrCodeUnknown
	}
}
