// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package backup keeps copies of uploaded archives so a report can be
// re-analyzed from its source after the fact.
package backup

import (
	"fmt"
	"path/filepath"
	"regexp"
	"time"

	"github.com/spf13/afero"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Vault writes archive backups under a per-user directory.
type Vault struct {
	enabled bool
	dir     string
	fs      afero.Fs
	now     func() time.Time
}

// NewVault creates a Vault rooted at dir. A disabled vault accepts saves
// and does nothing.
func NewVault(dir string, enabled bool) *Vault {
	return &Vault{
		enabled: enabled,
		dir:     dir,
		fs:      afero.NewOsFs(),
		now:     time.Now,
	}
}

// SetFS sets the filesystem for testing.
func (v *Vault) SetFS(fs afero.Fs) {
	v.fs = fs
}

// SetClock sets the timestamp source for testing.
func (v *Vault) SetClock(now func() time.Time) {
	v.now = now
}

// Enabled reports whether saves actually write anything.
func (v *Vault) Enabled() bool {
	return v.enabled
}

// EnsureDir creates the backup root. Call once at startup.
func (v *Vault) EnsureDir() error {
	if !v.enabled {
		return nil
	}
	if err := v.fs.MkdirAll(v.dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", v.dir, err)
	}
	return nil
}

// Save writes an uploaded archive under the uploader's directory and
// returns the backup path, or "" when the vault is disabled. Usernames
// and filenames are sanitized to a safe character set.
func (v *Vault) Save(filename string, content []byte, username string, reportID int64) (string, error) {
	if !v.enabled {
		return "", nil
	}

	safeUser := sanitize(username, "unknown_user")
	userDir := filepath.Join(v.dir, safeUser)
	if err := v.fs.MkdirAll(userDir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", userDir, err)
	}

	safeName := sanitize(filepath.Base(filename), "archive_upload.bin")
	now := v.now()
	stamp := fmt.Sprintf("%s_%06d", now.Format("20060102_150405"), now.Nanosecond()/1000)
	path := filepath.Join(userDir, fmt.Sprintf("%s_report_%d_%s", stamp, reportID, safeName))

	if err := afero.WriteFile(v.fs, path, content, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

func sanitize(name, fallback string) string {
	cleaned := unsafeChars.ReplaceAllString(name, "_")
	if cleaned == "" || cleaned == "_" {
		return fallback
	}
	return cleaned
}
