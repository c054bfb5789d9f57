package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"simple-repository/internal/storage"
)

// handleListProjects enumerates the project containers. Both access
// levels may list.
func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	items, err := s.cfg.Store.ListProjects(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.recordAudit(r, "list_projects", "", "")
	writeData(w, r, listing{
		Kind:             "projects",
		TotalItems:       len(items),
		CurrentItemCount: len(items),
		Items:            items,
	})
}

// handleListFiles enumerates the files of one project. An invalid
// project name answers exactly like a missing one so the error shape
// leaks nothing about what exists.
func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	project := chi.URLParam(r, "project")
	if !isValidName(project) {
		writeError(w, r, http.StatusNotFound, "Not found")
		return
	}

	items, err := s.cfg.Store.ListFiles(r.Context(), project)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "Not found")
			return
		}
		s.internalError(w, r, err)
		return
	}

	s.recordAudit(r, "list_files", project, "")
	writeData(w, r, listing{
		Kind:             "files",
		TotalItems:       len(items),
		CurrentItemCount: len(items),
		Items:            items,
	})
}
