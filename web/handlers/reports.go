// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package handlers

import (
	"net/http"
	"strconv"

	"github.com/mdhender/faultrpt/model"
	"github.com/mdhender/faultrpt/reports"
)

type reportDetail struct {
	*model.Report
	RawData *model.RawData `json:"raw_data,omitempty"`
}

// ListReports returns every stored report, newest first.
func (h *Handlers) ListReports(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []*model.Report{}
	}
	writeJSON(w, http.StatusOK, list)
}

// GetReport returns one report with its raw payload.
func (h *Handlers) GetReport(w http.ResponseWriter, r *http.Request) {
	id, ok := reportID(w, r)
	if !ok {
		return
	}
	report, raw, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reportDetail{Report: report, RawData: raw})
}

// DeleteReport removes a report when the caller's address is authorized.
func (h *Handlers) DeleteReport(w http.ResponseWriter, r *http.Request) {
	id, ok := reportID(w, r)
	if !ok {
		return
	}
	_, ip, _ := h.resolveRequester(r)
	if err := h.svc.Delete(r.Context(), id, ip); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "deleted": id})
}

func reportID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: "invalid report id",
			Code:  reports.ErrCodeNotFound,
		})
		return 0, false
	}
	return id, true
}
