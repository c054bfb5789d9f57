// Package storage resolves project and file names to durable bytes.
// It is the only package that joins user-supplied identifiers into
// storage paths; callers must validate names before passing them in.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when a project or file does not exist.
var ErrNotFound = errors.New("storage: not found")

// FileInfo describes a stored file at open time.
type FileInfo struct {
	Name string
	Size int64
}

// Store is the repository namespace. Projects are flat containers of
// files; both come into existence through Commit and are enumerated
// straight from the backing store, which is the single source of truth.
type Store interface {
	// EnsureProject creates the project container if it does not exist.
	EnsureProject(ctx context.Context, project string) error

	// Commit moves fully staged content from stagedPath into
	// project/filename, replacing any previous file of that name.
	// The move is atomic: readers never observe partial content at the
	// final path. On success the staged file is gone.
	Commit(ctx context.Context, project, filename, stagedPath string) error

	// ListProjects enumerates project names in directory order.
	ListProjects(ctx context.Context) ([]string, error)

	// ListFiles enumerates file names inside a project, or ErrNotFound
	// when the project does not exist.
	ListFiles(ctx context.Context, project string) ([]string, error)

	// Open returns a reader over project/filename, or ErrNotFound.
	Open(ctx context.Context, project, filename string) (io.ReadCloser, FileInfo, error)
}
