package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// readCacheSize bounds the in-memory layer in front of disk reads. A year of
// daily entries fits with room to spare.
const readCacheSize = 512

var dateKeyPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// FileStore implements Store with one JSON file per key under a cache
// directory. Date-keys map directly to filenames; arbitrary keys are hashed.
// Writes go to a temp file first and are renamed into place, so a crash
// mid-write leaves either the previous complete value or no value.
type FileStore struct {
	dir       string
	writeLock sync.Mutex
	reads     *lru.Cache[string, []byte]
}

// NewFileStore creates a file-backed store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	reads, err := lru.New[string, []byte](readCacheSize)
	if err != nil {
		return nil, err
	}
	return &FileStore{dir: dir, reads: reads}, nil
}

// Dir returns the cache directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// Path returns the filesystem path for the given key.
func (s *FileStore) Path(key string) string {
	return filepath.Join(s.dir, sanitizeKey(key)+".json")
}

// Has reports whether a complete entry exists for the key.
func (s *FileStore) Has(key string) bool {
	if _, ok := s.reads.Get(key); ok {
		return true
	}
	_, err := os.Stat(s.Path(key))
	return err == nil
}

// Get retrieves a value from the cache.
func (s *FileStore) Get(key string) ([]byte, error) {
	if data, ok := s.reads.Get(key); ok {
		return data, nil
	}
	data, err := os.ReadFile(s.Path(key))
	if err != nil {
		return nil, err
	}
	s.reads.Add(key, data)
	return data, nil
}

// Set stores the complete serialized value in one operation.
func (s *FileStore) Set(key string, value []byte) error {
	s.writeLock.Lock()
	defer s.writeLock.Unlock()

	path := s.Path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, value, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	s.reads.Add(key, value)
	return nil
}

// DateKeys lists the date-keys present on disk, derived from filenames. This
// is the ground truth the metadata index is reconciled against.
func (s *FileStore) DateKeys() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var keys []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if filepath.Ext(name) != ".json" {
			continue
		}
		key := name[:len(name)-len(".json")]
		if dateKeyPattern.MatchString(key) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// sanitizeKey maps a key to a filesystem-safe name. Date-keys are used
// directly so cache files stay human-inspectable; anything else is hashed.
func sanitizeKey(key string) string {
	if dateKeyPattern.MatchString(key) {
		return key
	}
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:16])
}
