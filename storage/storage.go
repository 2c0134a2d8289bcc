// Package storage is the filesystem collaborator. The audio core only
// needs byte addressable reads, so a mounted FS hands out files
// implementing io.ReaderAt for reader.Storage.
package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

var (
	// ErrNotMounted is returned when a file is opened before Mount.
	ErrNotMounted = errors.New("filesystem is not mounted")
	// ErrPath is returned for names escaping the filesystem root.
	ErrPath = errors.New("invalid path")
)

type (
	// FS is a mountable filesystem.
	FS interface {
		Mount() error
		// Format erases the filesystem and leaves it mounted.
		Format() error
		Open(name string) (File, error)
	}

	// File is an open, readable file.
	File interface {
		io.ReaderAt
		io.ReadSeeker
		io.Closer
		Size() int64
	}

	// Logger is the logging interface used by this package.
	Logger interface {
		Info(...interface{})
		Warn(...interface{})
	}

	// Dir is a FS backed by a host directory.
	Dir struct {
		root    string
		m       sync.Mutex
		mounted bool
	}

	file struct {
		*os.File
		size int64
	}
)

// NewDir returns an unmounted FS rooted at path.
func NewDir(path string) *Dir {
	return &Dir{root: path}
}

// Mount fails if the root is not an existing directory.
func (d *Dir) Mount() error {
	d.m.Lock()
	defer d.m.Unlock()
	info, err := os.Stat(d.root)
	if err != nil {
		return fmt.Errorf("mount %s: %w", d.root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("mount %s: not a directory", d.root)
	}
	d.mounted = true
	return nil
}

// Format removes the root with its content and creates it empty.
func (d *Dir) Format() error {
	d.m.Lock()
	defer d.m.Unlock()
	d.mounted = false
	if err := os.RemoveAll(d.root); err != nil {
		return fmt.Errorf("format %s: %w", d.root, err)
	}
	if err := os.MkdirAll(d.root, 0755); err != nil {
		return fmt.Errorf("format %s: %w", d.root, err)
	}
	d.mounted = true
	return nil
}

// Mounted returns true after a successful Mount or Format.
func (d *Dir) Mounted() bool {
	d.m.Lock()
	defer d.m.Unlock()
	return d.mounted
}

// Open opens a slash separated name relative to the root.
func (d *Dir) Open(name string) (File, error) {
	if !d.Mounted() {
		return nil, ErrNotMounted
	}
	if !fs.ValidPath(name) {
		return nil, fmt.Errorf("%w: %q", ErrPath, name)
	}
	f, err := os.Open(filepath.Join(d.root, filepath.FromSlash(name)))
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	return file{File: f, size: info.Size()}, nil
}

// Create creates or truncates a file for writing.
func (d *Dir) Create(name string) (*os.File, error) {
	if !d.Mounted() {
		return nil, ErrNotMounted
	}
	if !fs.ValidPath(name) {
		return nil, fmt.Errorf("%w: %q", ErrPath, name)
	}
	return os.Create(filepath.Join(d.root, filepath.FromSlash(name)))
}

func (f file) Size() int64 {
	return f.size
}

// MountOrFormat mounts fsys and formats it if mounting fails.
func MountOrFormat(fsys FS, l Logger) error {
	err := fsys.Mount()
	if err == nil {
		return nil
	}
	l.Warn("mount failed, formatting: ", err)
	if err := fsys.Format(); err != nil {
		return err
	}
	l.Info("filesystem formatted")
	return nil
}
