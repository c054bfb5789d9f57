package server

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// spool copies an upload part to a randomly named file in the staging
// dir and returns its path. A truncated client transfer surfaces as
// errMalformedUpload; a failure of the spool file itself does not.
func (s *Server) spool(part io.Reader) (string, error) {
	path := filepath.Join(s.cfg.StagingDir, uuid.New().String())

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", fmt.Errorf("create staging file: %w", err)
	}

	tw := &trackedWriter{w: f}
	if _, err := io.Copy(tw, part); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		if tw.err != nil {
			return "", fmt.Errorf("write staging file: %w", tw.err)
		}
		return "", fmt.Errorf("%w: %v", errMalformedUpload, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("close staging file: %w", err)
	}
	return path, nil
}

// discardStaged removes a staged file, tolerating the empty path used
// before any file part arrived.
func (s *Server) discardStaged(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.cfg.Log.Warn("discard staged file", "path", path, "err", err)
	}
}

// trackedWriter remembers whether the destination side of a copy
// failed, separating spool faults from client transfer faults.
type trackedWriter struct {
	w   io.Writer
	err error
}

func (t *trackedWriter) Write(p []byte) (int, error) {
	n, err := t.w.Write(p)
	if err != nil {
		t.err = err
	}
	return n, err
}

// SweepStaging removes leftover spool files from a previous run. The
// staging dir is owned by this single process, so anything present at
// startup is an aborted upload.
func SweepStaging(dir string, log *slog.Logger) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warn("sweep staging dir", "dir", dir, "err", err)
		}
		return
	}
	removed := 0
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			log.Warn("sweep staged file", "name", e.Name(), "err", err)
			continue
		}
		removed++
	}
	if removed > 0 {
		log.Info("swept aborted uploads", "count", removed)
	}
}
