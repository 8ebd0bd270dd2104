// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package archive

import (
	"archive/tar"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"io"

	"github.com/ulikunitz/xz"
)

// scanTar returns every tar entry whose base name matches the target
// member, in archive order, unwrapping the declared compression first.
func scanTar(kind Kind, content []byte) ([]member, error) {
	var reader io.Reader = bytes.NewReader(content)

	switch kind {
	case KindTarGz:
		gz, err := gzip.NewReader(reader)
		if err != nil {
			return nil, &ErrBadArchive{Format: "tar", Err: err}
		}
		defer gz.Close()
		reader = gz
	case KindTarBz2:
		reader = bzip2.NewReader(reader)
	case KindTarXz:
		xr, err := xz.NewReader(reader)
		if err != nil {
			return nil, &ErrBadArchive{Format: "tar", Err: err}
		}
		reader = xr
	}

	tr := tar.NewReader(reader)
	var candidates []member
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ErrBadArchive{Format: "tar", Err: err}
		}
		if hdr.Typeflag != tar.TypeReg || !matchesTarget(hdr.Name) {
			continue
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, &ErrBadArchive{Format: "tar", Err: err}
		}
		candidates = append(candidates, member{name: hdr.Name, data: data})
	}
	return candidates, nil
}
