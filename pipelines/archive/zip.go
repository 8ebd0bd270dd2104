// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package archive

import (
	"archive/zip"
	"bytes"
	"io"
)

// scanZip returns every zip entry whose base name matches the target
// member, in archive order.
func scanZip(content []byte) ([]member, error) {
	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, &ErrBadArchive{Format: "zip", Err: err}
	}

	var candidates []member
	for _, entry := range reader.File {
		if entry.FileInfo().IsDir() || !matchesTarget(entry.Name) {
			continue
		}
		rc, err := entry.Open()
		if err != nil {
			return nil, &ErrBadArchive{Format: "zip", Err: err}
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, &ErrBadArchive{Format: "zip", Err: err}
		}
		candidates = append(candidates, member{name: entry.Name, data: data})
	}
	return candidates, nil
}
