// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package handlers

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"

	"github.com/mdhender/faultrpt/ipaddr"
	"github.com/mdhender/faultrpt/reports"
	"github.com/spf13/afero"
)

// resolveRequester identifies the caller from the request's network origin
// plus the user/IP directory.
func (h *Handlers) resolveRequester(r *http.Request) (reports.Requester, string, string) {
	ip, source := ipaddr.ClientIP(r)

	var req reports.Requester
	if ip != "" {
		addr := ip
		req.IP = &addr
	}
	if identity := h.directory.Resolve(ip); identity != nil {
		user := identity.User
		uid := identity.UID
		req.User = &user
		req.UID = &uid
	}
	return req, ip, source
}

// Analyze accepts an upload (multipart field "file") or a server-local path
// (form field "path") and runs the full analysis pipeline.
func (h *Handlers) Analyze(w http.ResponseWriter, r *http.Request) {
	req, _, _ := h.resolveRequester(r)

	maxBytes := h.cfg.MaxUploadSizeBytes()
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	// Path-based analysis arrives as an ordinary form post, so a
	// non-multipart body is not an error here.
	if err := r.ParseMultipartForm(32 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{
				Error: "upload exceeds size limit",
				Code:  "UPLOAD_TOO_LARGE",
			})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: "failed to parse form: " + err.Error(),
			Code:  reports.ErrCodeParse,
		})
		return
	}

	filename, content, ok := h.uploadContent(w, r)
	if !ok {
		return
	}

	report, err := h.svc.Analyze(r.Context(), filename, content, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// uploadContent pulls the bytes to analyze from the request: a multipart
// file if present, otherwise a server-local path. Writes the error response
// itself and returns ok=false on failure.
func (h *Handlers) uploadContent(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	file, header, err := r.FormFile("file")
	if err == nil {
		defer file.Close()
		content, err := io.ReadAll(file)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{
					Error: "upload exceeds size limit",
					Code:  "UPLOAD_TOO_LARGE",
				})
				return "", nil, false
			}
			writeJSON(w, http.StatusBadRequest, errorResponse{
				Error: "failed to read file: " + err.Error(),
				Code:  reports.ErrCodeParse,
			})
			return "", nil, false
		}
		return header.Filename, content, true
	}

	if path := r.FormValue("path"); path != "" {
		// The size limit covers local files too, not just uploads.
		if info, err := h.fs.Stat(path); err == nil && info.Size() > h.cfg.MaxUploadSizeBytes() {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{
				Error: "file exceeds size limit",
				Code:  "UPLOAD_TOO_LARGE",
			})
			return "", nil, false
		}
		content, err := afero.ReadFile(h.fs, path)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{
				Error: "failed to read local file: " + err.Error(),
				Code:  reports.ErrCodeParse,
			})
			return "", nil, false
		}
		return filepath.Base(path), content, true
	}

	writeJSON(w, http.StatusBadRequest, errorResponse{
		Error: "no file uploaded",
		Code:  reports.ErrCodeParse,
	})
	return "", nil, false
}
