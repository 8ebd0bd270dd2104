// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package handlers

import (
	"net/http"
)

// AggregateLatest recomputes the latest-per-uploader aggregate report and
// returns it.
func (h *Handlers) AggregateLatest(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.AggregateLatest(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
