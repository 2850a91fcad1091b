// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"golang.org/x/text/unicode/norm"

	"github.com/ManuGH/bardisplay/internal/override"
	"github.com/ManuGH/bardisplay/internal/schedule"
	"github.com/ManuGH/bardisplay/internal/settings"
)

type orderRequest struct {
	Order []string `json:"order"`
}

type windowsRequest struct {
	Windows map[string]schedule.Window `json:"windows"`
}

// fileName returns the {name} path parameter decoded exactly once and
// NFC-normalized so it matches the names the media directory lists. chi
// matches on RawPath when it is set, and only then is the parameter still
// escaped.
func fileName(r *http.Request) (string, bool) {
	name := chi.URLParam(r, "name")
	if r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(name)
		if err != nil {
			return "", false
		}
		name = unescaped
	}
	return norm.NFC.String(name), true
}

func (s *Server) handleReorder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	order := make([]string, len(req.Order))
	for i, name := range req.Order {
		order[i] = norm.NFC.String(name)
	}
	lib, err := s.admin.Reorder(r.Context(), order)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orderRequest{Order: lib.Order})
}

func (s *Server) handleSetWindow(w http.ResponseWriter, r *http.Request) {
	name, ok := fileName(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid file name")
		return
	}
	var win schedule.Window
	if !decodeBody(w, r, &win) {
		return
	}
	out, err := s.admin.SetWindow(r.Context(), name, win)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSetWindows(w http.ResponseWriter, r *http.Request) {
	var req windowsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	windows := make(map[string]schedule.Window, len(req.Windows))
	for name, win := range req.Windows {
		windows[norm.NFC.String(name)] = win
	}
	lib, err := s.admin.SetWindows(r.Context(), windows)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, windowsRequest{Windows: lib.Windows})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	name, ok := fileName(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid file name")
		return
	}
	if err := s.admin.Delete(r.Context(), name); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	view, err := s.admin.Settings(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var form settings.Form
	if !decodeBody(w, r, &form) {
		return
	}
	out, err := s.admin.UpdateSettings(r.Context(), form)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out.AdminView())
}

func (s *Server) handleGetOverride(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.admin.OverrideState())
}

func (s *Server) handleOverride(w http.ResponseWriter, r *http.Request) {
	var action override.Action
	if !decodeBody(w, r, &action) {
		return
	}
	st, err := s.admin.Override(r.Context(), action)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.admin.Presets())
}
