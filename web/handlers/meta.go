// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package handlers

import (
	"net/http"

	"github.com/mdhender/faultrpt"
	"github.com/mdhender/faultrpt/config"
)

// Health reports service liveness.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": faultrpt.Version().Core(),
	})
}

type requesterResponse struct {
	IP     string  `json:"ip"`
	Source string  `json:"source"`
	User   *string `json:"user"`
	UID    *int64  `json:"uid"`
}

// Requester echoes back the identity the server attributes to the caller.
func (h *Handlers) Requester(w http.ResponseWriter, r *http.Request) {
	req, ip, source := h.resolveRequester(r)
	writeJSON(w, http.StatusOK, requesterResponse{
		IP:     ip,
		Source: source,
		User:   req.User,
		UID:    req.UID,
	})
}

type uiConfigResponse struct {
	MaxUploadSizeMB       int  `json:"max_upload_size_mb"`
	AlarmWarningThreshold int  `json:"alarm_warning_threshold"`
	ArchiveBackupEnabled  bool `json:"archive_backup_enabled"`
}

// UIConfig returns the settings the frontend needs.
func (h *Handlers) UIConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, uiConfigResponse{
		MaxUploadSizeMB:       h.cfg.MaxUploadSizeMB,
		AlarmWarningThreshold: h.cfg.AlarmWarningThreshold,
		ArchiveBackupEnabled:  h.cfg.ArchiveBackupEnabled,
	})
}

// LocalDirConfig returns the configured server-local directories that may
// be analyzed by path. A missing or unparseable config file yields an
// empty document rather than an error.
func (h *Handlers) LocalDirConfig(w http.ResponseWriter, r *http.Request) {
	doc, err := config.LoadLocalDirs(h.localDirsPath)
	if err != nil {
		doc = &config.LocalDirDoc{Path: h.localDirsPath, Dirs: []config.LocalDir{}}
	}
	writeJSON(w, http.StatusOK, doc)
}
