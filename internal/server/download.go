package server

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"

	"simple-repository/internal/storage"
)

// handleDownload streams one file as an attachment. Name validation
// failures and absence collapse to the same 404, mirroring the catalog.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	project := chi.URLParam(r, "project")
	file := chi.URLParam(r, "file")
	if !isValidName(project) || !isValidName(file) {
		writeError(w, r, http.StatusNotFound, "Not found")
		return
	}

	rc, info, err := s.cfg.Store.Open(r.Context(), project, file)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "Not found")
			return
		}
		s.internalError(w, r, err)
		return
	}
	defer func() { _ = rc.Close() }()

	s.recordAudit(r, "download", project, file)

	ct := mime.TypeByExtension(filepath.Ext(file))
	if ct == "" {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	if info.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	}
	// The identifier charset excludes quotes, so no escaping is needed.
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, file))

	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, rc)
}
