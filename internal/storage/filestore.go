package storage

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pngstash/pngstash/pkg/png"
)

// FileStore defines the interface for reading and writing PNG files on disk.
type FileStore interface {
	Load(path string) (*png.File, error)
	Save(path string, f *png.File) error
}

// Options configures a FileStore.
type Options struct {
	// MaxChunkBytes bounds the declared data length accepted per chunk
	// while decoding. Zero means the package default.
	MaxChunkBytes uint32

	// Backup keeps a .bak copy of a pre-existing destination before it is
	// overwritten.
	Backup bool
}

type pngFileStore struct {
	limits png.Limits
	backup bool
}

// NewFileStore creates a FileStore with the given options.
func NewFileStore(opts Options) FileStore {
	limits := png.DefaultLimits()
	if opts.MaxChunkBytes > 0 {
		limits.MaxChunkBytes = opts.MaxChunkBytes
	}
	return &pngFileStore{limits: limits, backup: opts.Backup}
}

// Load reads and decodes the PNG at path. The path must name a regular
// file; devices, directories, and pipes are rejected before any read.
func (s *pngFileStore) Load(path string) (*png.File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading png file %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("reading png file %s: not a regular file", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading png file %s: %w", path, err)
	}
	defer file.Close()

	f, err := png.DecodeWithLimits(bufio.NewReader(file), s.limits)
	if err != nil {
		return nil, fmt.Errorf("parsing png file %s: %w", path, err)
	}
	return f, nil
}

// Save writes f to path atomically: the bytes go to a temp file in the
// destination directory first, then a rename swaps it into place. When
// backup is enabled and path already exists, the old content is kept as
// path.bak.
func (s *pngFileStore) Save(path string, f *png.File) error {
	if s.backup {
		if err := s.backupExisting(path); err != nil {
			return fmt.Errorf("saving png file %s: %w", path, err)
		}
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".pngstash-*")
	if err != nil {
		return fmt.Errorf("saving png file %s: creating temp file: %w", path, err)
	}
	tmpName := tmp.Name()

	_, writeErr := tmp.Write(f.Bytes())
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpName)
		return fmt.Errorf("saving png file %s: %w", path, writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpName)
		return fmt.Errorf("saving png file %s: %w", path, closeErr)
	}

	// CreateTemp uses 0o600; saved images should be world-readable.
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("saving png file %s: %w", path, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("saving png file %s: %w", path, err)
	}
	return nil
}

// backupExisting copies the current content of path to path.bak. A missing
// destination means there is nothing to back up.
func (s *pngFileStore) backupExisting(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading existing file for backup: %w", err)
	}
	if err := os.WriteFile(path+".bak", data, 0o644); err != nil {
		return fmt.Errorf("writing backup: %w", err)
	}
	return nil
}
