package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
)

// Local keeps one directory per project under a root directory and one
// regular file per stored file inside it. There is no metadata index:
// listings read the tree directly.
type Local struct {
	root string
}

// NewLocal creates the root directory if needed and returns the store.
func NewLocal(root string) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &Local{root: root}, nil
}

func (l *Local) EnsureProject(_ context.Context, project string) error {
	return os.MkdirAll(filepath.Join(l.root, project), 0o755)
}

// Commit renames the staged file into place. rename(2) replaces the
// target atomically, so concurrent readers see either the old content or
// the new, never a mix. When the spool lives on a different filesystem
// the content is first copied to a temp file directly under the root
// (invisible to listings, which only report directories there) and the
// rename happens within one filesystem.
func (l *Local) Commit(_ context.Context, project, filename, stagedPath string) error {
	dst := filepath.Join(l.root, project, filename)

	err := os.Rename(stagedPath, dst)
	if err == nil || !errors.Is(err, syscall.EXDEV) {
		return err
	}

	tmp := filepath.Join(l.root, ".staged-"+uuid.New().String())
	if err := copyFile(stagedPath, tmp); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Remove(stagedPath)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func (l *Local) ListProjects(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func (l *Local) ListFiles(_ context.Context, project string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(l.root, project))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func (l *Local) Open(_ context.Context, project, filename string) (io.ReadCloser, FileInfo, error) {
	f, err := os.Open(filepath.Join(l.root, project, filename))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
			return nil, FileInfo{}, ErrNotFound
		}
		return nil, FileInfo{}, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, FileInfo{}, err
	}
	if st.IsDir() {
		_ = f.Close()
		return nil, FileInfo{}, ErrNotFound
	}
	return f, FileInfo{Name: filename, Size: st.Size()}, nil
}
