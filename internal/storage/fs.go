package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path"
	"path/filepath"
	"strings"
)

const (
	// MemoryDir is the workspace subdirectory holding daily memory files.
	MemoryDir = "memory"
	mdExt     = ".md"
)

// FS implements Provider backed by the local file system.
type FS struct {
	root string // absolute path to the workspace
}

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, errors.New("storage: workspace root is not a directory")
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute workspace root.
func (f *FS) Root() string {
	return f.root
}

// safePath resolves a relative path against the workspace root and rejects
// any result that escapes it (directory traversal).
func (f *FS) safePath(rel string) (string, error) {
	if rel == "" {
		return f.root, nil
	}
	cleaned := filepath.Clean(rel)
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage: absolute paths not allowed: %s", rel)
	}
	abs := filepath.Join(f.root, cleaned)
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) && abs != f.root {
		return "", fmt.Errorf("storage: path escapes workspace root: %s", rel)
	}
	return abs, nil
}

// Scan yields the markdown files directly under the root, then those under
// memory/ when that directory exists. Files come in name order per directory.
// A read failure is yielded as an error; the caller decides whether to go on.
func (f *FS) Scan() iter.Seq2[File, error] {
	return func(yield func(File, error) bool) {
		for _, dir := range []string{"", MemoryDir} {
			abs, err := f.safePath(dir)
			if err != nil {
				yield(File{}, err)
				return
			}
			if dir != "" {
				info, statErr := os.Stat(abs)
				if errors.Is(statErr, fs.ErrNotExist) || (statErr == nil && !info.IsDir()) {
					continue
				}
			}
			entries, err := os.ReadDir(abs)
			if err != nil {
				yield(File{}, fmt.Errorf("storage: scan %q: %w", dir, err))
				return
			}
			for _, e := range entries {
				if e.IsDir() || !strings.HasSuffix(e.Name(), mdExt) {
					continue
				}
				file, err := f.readFile(dir, e.Name())
				if !yield(file, err) {
					return
				}
			}
		}
	}
}

func (f *FS) readFile(dir, name string) (File, error) {
	rel := path.Join(dir, name)
	abs := filepath.Join(f.root, filepath.FromSlash(rel))
	data, err := os.ReadFile(abs)
	if err != nil {
		return File{}, fmt.Errorf("storage: read %s: %w", rel, err)
	}
	return File{
		Name:    name,
		RelPath: rel,
		AbsPath: abs,
		Content: string(data),
	}, nil
}

// SanitizePath strips root (with or without a trailing separator) from an
// absolute path and returns the remainder slash-separated, without a leading
// separator. Paths outside root collapse to their base name so the root
// location never leaks.
func SanitizePath(absPath, root string) string {
	p := filepath.ToSlash(absPath)
	r := strings.TrimRight(filepath.ToSlash(root), "/")
	switch {
	case r != "" && strings.HasPrefix(p, r+"/"):
		return strings.TrimLeft(p[len(r)+1:], "/")
	case p == r:
		return ""
	default:
		return path.Base(p)
	}
}
