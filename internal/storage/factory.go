package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Backend names accepted by Open.
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// SQLiteFileName is the database file created inside the data directory.
const SQLiteFileName = "tally.db"

// Options selects and configures a blob store backend.
type Options struct {
	Backend string
	Path    string // data directory for file and sqlite
	DSN     string // postgres connection string
}

// Open creates the blob store named by opts.Backend.
func Open(ctx context.Context, opts Options) (BlobStore, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendFile:
		return NewFileBlobStore(opts.Path)
	case BackendMemory:
		return NewMemoryBlobStore(), nil
	case BackendSQLite:
		if opts.Path == "" {
			return nil, fmt.Errorf("sqlite backend requires a data path")
		}
		return NewSQLiteBlobStore(filepath.Join(opts.Path, SQLiteFileName))
	case BackendPostgres:
		return NewPostgresBlobStore(ctx, opts.DSN)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}
