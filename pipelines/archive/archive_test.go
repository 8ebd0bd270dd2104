// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package archive_test

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"io"
	"testing"

	"github.com/mdhender/faultrpt/pipelines/archive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

func buildZip(t *testing.T, entries map[string][]byte, order []string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range order {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(entries[name])
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func buildTar(t *testing.T, entries map[string][]byte, order []string) []byte {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for _, name := range order {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     name,
			Typeflag: tar.TypeReg,
			Mode:     0644,
			Size:     int64(len(entries[name])),
		}))
		_, err := tw.Write(entries[name])
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	return buf.Bytes()
}

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write(data)
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func xzBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	xw, err := xz.NewWriter(&buf)
	require.NoError(t, err)
	_, err = xw.Write(data)
	require.NoError(t, err)
	require.NoError(t, xw.Close())
	return buf.Bytes()
}

func TestDetectKind(t *testing.T) {
	cases := map[string]archive.Kind{
		"report.zip":     archive.KindZip,
		"REPORT.ZIP":     archive.KindZip,
		"report.tar":     archive.KindTar,
		"report.tar.gz":  archive.KindTarGz,
		"report.tgz":     archive.KindTarGz,
		"report.tar.bz2": archive.KindTarBz2,
		"report.tbz2":    archive.KindTarBz2,
		"report.tar.xz":  archive.KindTarXz,
		"report.txz":     archive.KindTarXz,
		"report.csv":     archive.KindNone,
		"report.xlsx":    archive.KindNone,
	}
	for name, want := range cases {
		assert.Equal(t, want, archive.DetectKind(name), name)
	}
}

func TestResolve_NonArchivePassesThrough(t *testing.T) {
	content := []byte("pkgs,desc\n")
	resolved, err := archive.Resolve("report.csv", content)
	require.NoError(t, err)
	assert.Equal(t, "report.csv", resolved.Filename)
	assert.Equal(t, content, resolved.Data)
	assert.Empty(t, resolved.Member)
}

func TestResolve_ZipWithTarget(t *testing.T) {
	csv := []byte("pkgs,desc\nalice,x\n")
	data := buildZip(t, map[string][]byte{
		"readme.txt":            []byte("hi"),
		"logs/alarm_local.csv":  csv,
		"logs/other_report.csv": []byte("nope"),
	}, []string{"readme.txt", "logs/alarm_local.csv", "logs/other_report.csv"})

	resolved, err := archive.Resolve("upload.zip", data)
	require.NoError(t, err)
	assert.Equal(t, archive.TargetMember, resolved.Filename)
	assert.Equal(t, "logs/alarm_local.csv", resolved.Member)
	assert.Equal(t, csv, resolved.Data)
}

func TestResolve_ZipWithoutTarget(t *testing.T) {
	data := buildZip(t, map[string][]byte{"readme.txt": []byte("hi")}, []string{"readme.txt"})
	_, err := archive.Resolve("upload.zip", data)
	var notFound *archive.ErrMemberNotFound
	require.True(t, errors.As(err, &notFound), "expected ErrMemberNotFound, got %v", err)
}

func TestResolve_DuplicateMembersFirstWins(t *testing.T) {
	first := []byte("pkgs,desc\nfirst,x\n")
	second := []byte("pkgs,desc\nsecond,x\n")
	data := buildZip(t, map[string][]byte{
		"a/alarm_local.csv": first,
		"b/alarm_local.csv": second,
	}, []string{"a/alarm_local.csv", "b/alarm_local.csv"})

	resolved, err := archive.Resolve("upload.zip", data)
	require.NoError(t, err)
	assert.Equal(t, "a/alarm_local.csv", resolved.Member)
	assert.Equal(t, first, resolved.Data)
}

func TestResolve_EmptyMember(t *testing.T) {
	data := buildZip(t, map[string][]byte{"alarm_local.csv": nil}, []string{"alarm_local.csv"})
	_, err := archive.Resolve("upload.zip", data)
	var empty *archive.ErrEmptyMember
	require.True(t, errors.As(err, &empty), "expected ErrEmptyMember, got %v", err)
}

func TestResolve_TarVariants(t *testing.T) {
	csv := []byte("pkgs,desc\nalice,x\n")
	plain := buildTar(t, map[string][]byte{"dump/alarm_local.csv": csv}, []string{"dump/alarm_local.csv"})

	cases := map[string][]byte{
		"upload.tar":    plain,
		"upload.tar.gz": gzipBytes(t, plain),
		"upload.tgz":    gzipBytes(t, plain),
		"upload.tar.xz": xzBytes(t, plain),
		"upload.txz":    xzBytes(t, plain),
	}
	for name, data := range cases {
		resolved, err := archive.Resolve(name, data)
		require.NoError(t, err, name)
		assert.Equal(t, "dump/alarm_local.csv", resolved.Member, name)
		assert.Equal(t, csv, resolved.Data, name)
	}
}

func TestResolve_TarCaseInsensitiveMatch(t *testing.T) {
	csv := []byte("pkgs,desc\nalice,x\n")
	data := buildTar(t, map[string][]byte{"ALARM_LOCAL.CSV": csv}, []string{"ALARM_LOCAL.CSV"})

	resolved, err := archive.Resolve("upload.tar", data)
	require.NoError(t, err)
	assert.Equal(t, csv, resolved.Data)
}

func TestResolve_CorruptZip(t *testing.T) {
	_, err := archive.Resolve("upload.zip", []byte("not a zip at all"))
	var bad *archive.ErrBadArchive
	require.True(t, errors.As(err, &bad), "expected ErrBadArchive, got %v", err)
}

func TestResolve_CorruptGzip(t *testing.T) {
	_, err := archive.Resolve("upload.tar.gz", []byte("not gzip"))
	var bad *archive.ErrBadArchive
	require.True(t, errors.As(err, &bad), "expected ErrBadArchive, got %v", err)
}

func TestResolve_TarSkipsDirectoriesAndSymlinks(t *testing.T) {
	csv := []byte("pkgs,desc\nalice,x\n")
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name: "alarm_local.csv/", Typeflag: tar.TypeDir, Mode: 0755,
	}))
	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name: "real/alarm_local.csv", Typeflag: tar.TypeReg, Mode: 0644, Size: int64(len(csv)),
	}))
	_, err := io.Copy(tw, bytes.NewReader(csv))
	require.NoError(t, err)
	require.NoError(t, tw.Close())

	resolved, err := archive.Resolve("upload.tar", buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "real/alarm_local.csv", resolved.Member)
}
