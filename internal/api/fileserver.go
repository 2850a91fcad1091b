// SPDX-License-Identifier: MIT

package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"

	xglog "github.com/ManuGH/bardisplay/internal/log"
	"github.com/ManuGH/bardisplay/internal/metrics"
	platformfs "github.com/ManuGH/bardisplay/internal/platform/fs"
)

// uploadsHandler serves files from the uploads directory read-only. It
// refuses traversal, dotfiles, directories and symlinks leaving the root.
// The request path has the URL prefix already stripped.
func (s *Server) uploadsHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := xglog.WithComponentFromContext(r.Context(), "api")
		deny := func(code int, reason string) {
			logger.Warn().
				Str(xglog.FieldEvent, "media_req.denied").
				Str(xglog.FieldPath, r.URL.Path).
				Str("reason", reason).
				Msg("media request denied")
			metrics.IncMediaRequest(reason)
			http.Error(w, http.StatusText(code), code)
		}

		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			deny(http.StatusMethodNotAllowed, "method_not_allowed")
			return
		}

		name := r.URL.Path
		if isPathTraversal(name) {
			deny(http.StatusForbidden, "path_escape")
			return
		}
		if name == "" || strings.HasSuffix(name, "/") || strings.Contains(name, "/") {
			deny(http.StatusForbidden, "directory_listing")
			return
		}
		if strings.HasPrefix(name, ".") {
			deny(http.StatusNotFound, "not_found")
			return
		}
		name = norm.NFC.String(name)

		realPath, err := platformfs.ConfineName(s.cfg.UploadDir, name)
		if err != nil {
			if errors.Is(err, platformfs.ErrOutsideRoot) {
				deny(http.StatusForbidden, "path_escape")
				return
			}
			deny(http.StatusNotFound, "not_found")
			return
		}

		// #nosec G304 -- realPath is confined to the uploads directory
		f, err := os.Open(realPath)
		if err != nil {
			if os.IsNotExist(err) {
				deny(http.StatusNotFound, "not_found")
				return
			}
			logger.Error().Err(err).Str(xglog.FieldEvent, "media_req.internal_error").Msg("could not open media file")
			metrics.IncMediaRequest("internal_error")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		defer func() { _ = f.Close() }()

		info, err := f.Stat()
		if err != nil || !info.Mode().IsRegular() {
			deny(http.StatusNotFound, "not_found")
			return
		}

		// Weak validator from mtime and size; a re-upload under the same name changes it.
		etag := fmt.Sprintf(`W/"%x-%x"`, info.ModTime().UnixNano(), info.Size())
		w.Header().Set("ETag", etag)
		w.Header().Set("Cache-Control", "public, max-age=300")
		if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
			metrics.IncMediaRequest("not_modified")
			w.WriteHeader(http.StatusNotModified)
			return
		}

		metrics.IncMediaRequest("served")
		http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	})
}

// isPathTraversal decodes p up to three times and looks for parent
// references, NUL bytes and overlong dot encodings.
func isPathTraversal(p string) bool {
	decoded := p
	for i := 0; i < 3; i++ {
		prev := decoded
		if d, err := url.PathUnescape(decoded); err == nil {
			decoded = d
		}
		if decoded == prev {
			break
		}
	}
	if strings.IndexByte(decoded, 0) >= 0 {
		return true
	}

	lower := strings.ToLower(norm.NFC.String(decoded))
	for _, pat := range []string{"%00", "%c0%ae", "%e0%80%ae", "\\"} {
		if strings.Contains(lower, pat) {
			return true
		}
	}
	for _, seg := range strings.Split(lower, "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}
