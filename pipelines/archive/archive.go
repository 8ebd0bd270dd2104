// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package archive locates the canonical fault-report data file inside an
// uploaded archive (zip or tar, optionally gzip/bzip2/xz compressed).
// Archives are read fully in memory; uploads at this scale never need
// streaming extraction.
package archive

import (
	"fmt"
	"path"
	"strings"
)

// TargetMember is the base name of the data file an archive must carry.
const TargetMember = "alarm_local.csv"

// Kind identifies the archive container format, detected from the
// filename suffix.
type Kind int

const (
	KindNone Kind = iota
	KindZip
	KindTar
	KindTarGz
	KindTarBz2
	KindTarXz
)

// DetectKind returns the archive kind for a filename, or KindNone when the
// name does not look like a supported archive.
func DetectKind(filename string) Kind {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		return KindZip
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return KindTarGz
	case strings.HasSuffix(lower, ".tar.bz2"), strings.HasSuffix(lower, ".tbz2"):
		return KindTarBz2
	case strings.HasSuffix(lower, ".tar.xz"), strings.HasSuffix(lower, ".txz"):
		return KindTarXz
	case strings.HasSuffix(lower, ".tar"):
		return KindTar
	default:
		return KindNone
	}
}

// IsArchiveFilename reports whether the filename has a supported archive
// suffix.
func IsArchiveFilename(filename string) bool {
	return DetectKind(filename) != KindNone
}

// Resolved is the outcome of archive resolution: the filename and bytes to
// hand to the tabular parser, plus the inner member path when the bytes
// came out of an archive.
type Resolved struct {
	Filename string
	Data     []byte
	Member   string
}

// member is one candidate entry found while scanning an archive.
type member struct {
	name string
	data []byte
}

// Resolve inspects the upload. Non-archives pass through untouched.
// For archives, it extracts the target member and returns its bytes under
// the canonical member name.
func Resolve(filename string, content []byte) (*Resolved, error) {
	kind := DetectKind(filename)
	if kind == KindNone {
		return &Resolved{Filename: filename, Data: content}, nil
	}

	var candidates []member
	var err error
	if kind == KindZip {
		candidates, err = scanZip(content)
	} else {
		candidates, err = scanTar(kind, content)
	}
	if err != nil {
		return nil, err
	}

	selected, err := selectMember(candidates)
	if err != nil {
		return nil, err
	}
	if len(selected.data) == 0 {
		return nil, &ErrEmptyMember{Member: selected.name}
	}

	return &Resolved{Filename: TargetMember, Data: selected.data, Member: selected.name}, nil
}

// selectMember picks the winning entry when an archive holds more than one
// file named after the target. The policy is first-encountered in
// archive-native iteration order; it lives here, apart from the scanners,
// so it can change without touching them.
func selectMember(candidates []member) (member, error) {
	if len(candidates) == 0 {
		return member{}, &ErrMemberNotFound{Member: TargetMember}
	}
	return candidates[0], nil
}

// matchesTarget reports whether an entry's base name is the target member,
// ignoring case and any leading directories.
func matchesTarget(name string) bool {
	return strings.ToLower(path.Base(name)) == TargetMember
}

// ErrMemberNotFound is returned when an archive holds no file with the
// target base name.
type ErrMemberNotFound struct {
	Member string
}

func (e *ErrMemberNotFound) Error() string {
	return fmt.Sprintf("archive does not contain %s", e.Member)
}

// ErrEmptyMember is returned when the target member exists but is empty.
type ErrEmptyMember struct {
	Member string
}

func (e *ErrEmptyMember) Error() string {
	return fmt.Sprintf("%s in archive is empty", e.Member)
}

// ErrBadArchive is returned when the upload cannot be read as the archive
// format its name declares.
type ErrBadArchive struct {
	Format string
	Err    error
}

func (e *ErrBadArchive) Error() string {
	return fmt.Sprintf("invalid %s archive: %v", e.Format, e.Err)
}

func (e *ErrBadArchive) Unwrap() error {
	return e.Err
}
