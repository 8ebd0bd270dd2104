// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package handlers exposes the JSON API over the report service.
package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/mdhender/faultrpt/config"
	"github.com/mdhender/faultrpt/directory"
	"github.com/mdhender/faultrpt/reports"
	"github.com/spf13/afero"
)

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	svc           *reports.Service
	cfg           *config.Config
	directory     *directory.Map
	localDirsPath string
	fs            afero.Fs
}

// New creates a new Handlers around the report service.
func New(svc *reports.Service, cfg *config.Config, dir *directory.Map, localDirsPath string) *Handlers {
	return &Handlers{
		svc:           svc,
		cfg:           cfg,
		directory:     dir,
		localDirsPath: localDirsPath,
		fs:            afero.NewOsFs(),
	}
}

// SetFS replaces the filesystem used for server-local file analysis.
// Used by tests.
func (h *Handlers) SetFS(fs afero.Fs) {
	h.fs = fs
}

// Routes registers all API routes on the mux.
func (h *Handlers) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", h.Health)
	mux.HandleFunc("GET /api/requester", h.Requester)
	mux.HandleFunc("GET /api/ui-config", h.UIConfig)
	mux.HandleFunc("GET /api/local-dir-config", h.LocalDirConfig)
	mux.HandleFunc("GET /api/reports", h.ListReports)
	mux.HandleFunc("GET /api/reports/{id}", h.GetReport)
	mux.HandleFunc("DELETE /api/reports/{id}", h.DeleteReport)
	mux.HandleFunc("POST /api/reports/analyze", h.Analyze)
	mux.HandleFunc("POST /api/reports/analyze-archive", h.Analyze)
	mux.HandleFunc("POST /api/reports/aggregate-latest", h.AggregateLatest)
	mux.HandleFunc("POST /api/upload", h.Analyze)
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("warning: encode response: %v", err)
	}
}

// writeError maps service error codes onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	code := reports.ErrorCode(err)
	status := http.StatusInternalServerError
	switch code {
	case reports.ErrCodeUnsupportedFormat,
		reports.ErrCodeArchiveMemberNotFound,
		reports.ErrCodeParse,
		reports.ErrCodeNoReports:
		status = http.StatusBadRequest
	case reports.ErrCodeNotFound:
		status = http.StatusNotFound
	case reports.ErrCodeForbidden:
		status = http.StatusForbidden
	}
	if status == http.StatusInternalServerError {
		log.Printf("error: %v", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Code: code})
}
