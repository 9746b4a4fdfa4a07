package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
)

// FileBlobStore stores each blob as <key>.json inside a directory.
type FileBlobStore struct {
	fs  afero.Fs
	dir string
}

// NewFileBlobStore creates a store rooted at dir on the OS filesystem.
func NewFileBlobStore(dir string) (*FileBlobStore, error) {
	return NewFileBlobStoreFs(afero.NewOsFs(), dir)
}

// NewFileBlobStoreFs creates a store rooted at dir on the given filesystem.
func NewFileBlobStoreFs(fsys afero.Fs, dir string) (*FileBlobStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("data directory cannot be empty")
	}
	if err := fsys.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileBlobStore{fs: fsys, dir: dir}, nil
}

func (f *FileBlobStore) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

// Get reads the blob stored under key.
func (f *FileBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validateAccess(ctx, key); err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(f.fs, f.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrBlobNotFound, key)
		}
		return nil, fmt.Errorf("failed to read blob %s: %w", key, err)
	}
	return data, nil
}

// Put writes data to a temporary file and renames it over the blob, so readers
// never observe a partial write.
func (f *FileBlobStore) Put(ctx context.Context, key string, data []byte) error {
	if err := validateAccess(ctx, key); err != nil {
		return err
	}

	tmp, err := afero.TempFile(f.fs, f.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = f.fs.Remove(tmpName)
		return fmt.Errorf("failed to write blob %s: %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = f.fs.Remove(tmpName)
		return fmt.Errorf("failed to sync blob %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = f.fs.Remove(tmpName)
		return fmt.Errorf("failed to close blob %s: %w", key, err)
	}
	if err := f.fs.Rename(tmpName, f.path(key)); err != nil {
		_ = f.fs.Remove(tmpName)
		return fmt.Errorf("failed to replace blob %s: %w", key, err)
	}
	return nil
}

// Close is a no-op.
func (f *FileBlobStore) Close() error {
	return nil
}
