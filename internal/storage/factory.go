package storage

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nutrascan/internal/db"
)

const (
	TypeSQLite = "sqlite"
	TypeMemory = "memory"
	TypeFile   = "file"
)

// Options selects a backend. Only the fields relevant to Type are read.
type Options struct {
	Type         string
	DatabasePath string // sqlite
	DataDir      string // file
}

// New creates the Store described by opts. An empty type defaults to sqlite.
func New(opts Options) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Type)) {
	case "", TypeSQLite:
		gdb, err := db.Open(opts.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return NewGormStore(gdb), nil
	case TypeMemory:
		return NewMemoryStore(), nil
	case TypeFile:
		dir := strings.TrimSpace(opts.DataDir)
		if dir == "" {
			dir = filepath.Join(".", "data")
		}
		store, err := NewFileStore(dir)
		if err != nil {
			return nil, fmt.Errorf("open file store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", opts.Type)
	}
}
