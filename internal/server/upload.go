package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

// errMalformedUpload marks client-side body problems: broken multipart
// syntax, a missing or duplicated file part, a truncated transfer.
var errMalformedUpload = errors.New("malformed upload body")

// stagedUpload is a fully received body waiting for commit.
type stagedUpload struct {
	project  string
	filename string
	path     string
}

// handleUpload ingests one file into a project. Checks run in order:
// access level, then names, then the atomic commit. Nothing becomes
// visible in the namespace until the commit succeeds.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if accessFromContext(r.Context()) != accessUpload {
		// Historical wire format: this authorization mismatch has
		// always been reported as 500, not 403. Kept for clients
		// that match on the exact status.
		writeError(w, r, http.StatusInternalServerError, "Forbidden")
		return
	}

	up, err := s.stageUpload(r)
	if err != nil {
		if errors.Is(err, errMalformedUpload) {
			writeError(w, r, http.StatusBadRequest, "Bad request")
			return
		}
		s.internalError(w, r, err)
		return
	}

	if !validUploadName(up.project) || !validUploadName(up.filename) {
		s.discardStaged(up.path)
		writeError(w, r, http.StatusBadRequest, "Bad request")
		return
	}

	if err := s.cfg.Store.EnsureProject(r.Context(), up.project); err != nil {
		s.discardStaged(up.path)
		s.internalError(w, r, fmt.Errorf("ensure project: %w", err))
		return
	}
	if err := s.cfg.Store.Commit(r.Context(), up.project, up.filename, up.path); err != nil {
		s.discardStaged(up.path)
		s.internalError(w, r, fmt.Errorf("commit upload: %w", err))
		return
	}

	s.recordAudit(r, "upload", up.project, up.filename)
	writeAck(w, r)
}

// validUploadName applies the identifier rules to a form field: present,
// non-blank, and a legal path segment.
func validUploadName(name string) bool {
	return strings.TrimSpace(name) != "" && isValidName(name)
}

// stageUpload streams the multipart body, spooling the file part to the
// staging dir while collecting the form fields. The spool file survives
// only on success; any mid-transfer failure removes it so an aborted
// upload leaves nothing behind.
func (s *Server) stageUpload(r *http.Request) (stagedUpload, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return stagedUpload{}, fmt.Errorf("%w: %v", errMalformedUpload, err)
	}

	var up stagedUpload
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			s.discardStaged(up.path)
			return stagedUpload{}, fmt.Errorf("%w: %v", errMalformedUpload, err)
		}

		switch part.FormName() {
		case "project":
			up.project, err = readFormValue(part)
		case "filename":
			up.filename, err = readFormValue(part)
		case "file":
			if up.path != "" {
				err = fmt.Errorf("%w: duplicate file part", errMalformedUpload)
				break
			}
			up.path, err = s.spool(part)
		default:
			// Unknown parts are drained and ignored.
			_, err = io.Copy(io.Discard, part)
		}
		_ = part.Close()

		if err != nil {
			s.discardStaged(up.path)
			if errors.Is(err, errMalformedUpload) {
				return stagedUpload{}, err
			}
			return stagedUpload{}, fmt.Errorf("%w: %v", errMalformedUpload, err)
		}
	}

	if up.path == "" {
		return stagedUpload{}, fmt.Errorf("%w: missing file part", errMalformedUpload)
	}
	return up, nil
}

func readFormValue(part *multipart.Part) (string, error) {
	const maxFieldBytes = 4 << 10
	b, err := io.ReadAll(io.LimitReader(part, maxFieldBytes))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
