package gate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store persists the access key between runs.
type Store interface {
	Load() (string, bool, error)
	Save(key string) error
	Clear() error
}

// FileStore keeps the key in a single file readable only by its owner.
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore { return &FileStore{Path: path} }

func (f *FileStore) Load() (string, bool, error) {
	b, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read credential: %w", err)
	}
	key := strings.TrimSpace(string(b))
	return key, key != "", nil
}

func (f *FileStore) Save(key string) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return fmt.Errorf("create credential dir: %w", err)
	}
	if err := os.WriteFile(f.Path, []byte(key+"\n"), 0o600); err != nil {
		return fmt.Errorf("write credential: %w", err)
	}
	// WriteFile keeps the mode of an existing file
	if err := os.Chmod(f.Path, 0o600); err != nil {
		return fmt.Errorf("chmod credential: %w", err)
	}
	return nil
}

func (f *FileStore) Clear() error {
	err := os.Remove(f.Path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove credential: %w", err)
	}
	return nil
}

// MemoryStore is a Store for tests and one-shot runs.
type MemoryStore struct {
	mu  sync.Mutex
	key string
}

func (m *MemoryStore) Load() (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.key, m.key != "", nil
}

func (m *MemoryStore) Save(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.key = key
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.key = ""
	return nil
}
