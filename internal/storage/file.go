package storage

import (
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

const fileSuffix = ".json"

// FileStore writes one JSON file per key under root/namespace/.
// Writes go to a temp file first and are renamed into place, so a crash
// leaves either the previous snapshot or the new one.
type FileStore struct {
	mu   sync.Mutex
	root string
}

// NewFileStore creates root if needed and returns a FileStore.
func NewFileStore(root string) (*FileStore, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, errors.New("file store root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{root: root}, nil
}

func (f *FileStore) path(namespace, key string) string {
	return filepath.Join(f.root, namespace, url.PathEscape(key)+fileSuffix)
}

func (f *FileStore) Get(namespace, key string) ([]byte, error) {
	if err := validateKey(namespace, key); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(f.path(namespace, key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, persistenceError("get", namespace, key, err)
	}
	return raw, nil
}

func (f *FileStore) Set(namespace, key string, value []byte) error {
	if err := validateKey(namespace, key); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	dir := filepath.Join(f.root, namespace)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return persistenceError("set", namespace, key, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return persistenceError("set", namespace, key, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return persistenceError("set", namespace, key, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return persistenceError("set", namespace, key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return persistenceError("set", namespace, key, err)
	}

	if err := os.Rename(tmpName, f.path(namespace, key)); err != nil {
		os.Remove(tmpName)
		return persistenceError("set", namespace, key, err)
	}
	return nil
}

func (f *FileStore) Delete(namespace, key string) error {
	if err := validateKey(namespace, key); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path(namespace, key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return persistenceError("delete", namespace, key, err)
	}
	return nil
}

func (f *FileStore) Keys(namespace string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(f.root, namespace))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, persistenceError("keys", namespace, "*", err)
	}

	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, fileSuffix) || strings.HasPrefix(name, ".tmp-") {
			continue
		}
		key, err := url.PathUnescape(strings.TrimSuffix(name, fileSuffix))
		if err != nil {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *FileStore) Close() error { return nil }
