// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"net/http"
)

// handleData serves the feed the display polls. It never fails: storage
// problems degrade to defaults inside the assembler.
func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.feed.Assemble(r.Context()))
}

// handleCatalog serves the admin file table, ineligible items included.
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.feed.Catalog(r.Context()))
}
