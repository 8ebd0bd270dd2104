// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// SPAHandler serves a built frontend from distDir, falling back to
// index.html for client-side routes. API paths never fall through here.
type SPAHandler struct {
	distDir string
}

// NewSPAHandler creates a handler serving static files from distDir.
func NewSPAHandler(distDir string) *SPAHandler {
	return &SPAHandler{distDir: distDir}
}

func (s *SPAHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		http.NotFound(w, r)
		return
	}

	// Clean the path so ".." cannot escape the dist directory.
	rel := filepath.Clean(strings.TrimPrefix(r.URL.Path, "/"))
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		rel = "index.html"
	}

	path := filepath.Join(s.distDir, rel)
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		path = filepath.Join(s.distDir, "index.html")
	}

	if _, err := os.Stat(path); err != nil {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, path)
}
