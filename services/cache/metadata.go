package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// MetadataFile is the name of the scrape metadata document inside the cache
// directory.
const MetadataFile = "scraper_metadata.json"

// Metadata is the singleton document tracking the last successful full fetch
// and, per calendar year, the date-keys already cached.
type Metadata struct {
	LastFetchTimestamp int64               `json:"lastFetchTimestamp"`
	YearCaches         map[string][]string `json:"yearCaches"`
}

// MetadataStore persists Metadata next to the cache entries. Read-modify-write,
// single active run assumed; no file locking.
type MetadataStore struct {
	path string

	// now is swappable for tests
	now func() time.Time

	freshnessWindow time.Duration
}

// NewMetadataStore creates a metadata store for the given cache directory.
func NewMetadataStore(dir string, freshnessWindow time.Duration) *MetadataStore {
	return &MetadataStore{
		path:            filepath.Join(dir, MetadataFile),
		now:             time.Now,
		freshnessWindow: freshnessWindow,
	}
}

// Load reads the metadata document, returning zero-valued defaults when the
// document is missing or unparseable.
func (m *MetadataStore) Load() Metadata {
	meta := Metadata{YearCaches: map[string][]string{}}

	data, err := os.ReadFile(m.path)
	if err != nil {
		return meta
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return Metadata{YearCaches: map[string][]string{}}
	}
	if meta.YearCaches == nil {
		meta.YearCaches = map[string][]string{}
	}
	return meta
}

// Save overwrites the whole document atomically.
func (m *MetadataStore) Save(meta Metadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, m.path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// RecordDate inserts a date-key into the year index if absent. Idempotent.
func (m *MetadataStore) RecordDate(dateKey string) error {
	if len(dateKey) < 4 {
		return nil
	}
	meta := m.Load()
	if insertDateKey(&meta, dateKey) {
		return m.Save(meta)
	}
	return nil
}

// MarkFetched sets the last successful full fetch to now.
func (m *MetadataStore) MarkFetched() error {
	meta := m.Load()
	meta.LastFetchTimestamp = m.now().UnixMilli()
	return m.Save(meta)
}

// IsFresh reports whether the last full fetch is within the freshness window.
// Exactly at the boundary counts as stale.
func (m *MetadataStore) IsFresh() bool {
	meta := m.Load()
	if meta.LastFetchTimestamp == 0 {
		return false
	}
	last := time.UnixMilli(meta.LastFetchTimestamp)
	return m.now().Sub(last) < m.freshnessWindow
}

// CachedDates returns the sorted date-keys indexed for a year.
func (m *MetadataStore) CachedDates(year string) []string {
	meta := m.Load()
	return meta.YearCaches[year]
}

// Reconcile merges the date-keys actually present on disk into the year
// index. A run interrupted between a cache write and its index update heals
// here on the next startup, instead of through after-the-fact repair scripts.
func (m *MetadataStore) Reconcile(store *FileStore) error {
	keys, err := store.DateKeys()
	if err != nil {
		return err
	}
	meta := m.Load()
	changed := false
	for _, key := range keys {
		if insertDateKey(&meta, key) {
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return m.Save(meta)
}

// insertDateKey adds a date-key to its year's sorted set, reporting whether
// the document changed.
func insertDateKey(meta *Metadata, dateKey string) bool {
	year := dateKey[:4]
	dates := meta.YearCaches[year]
	idx := sort.SearchStrings(dates, dateKey)
	if idx < len(dates) && dates[idx] == dateKey {
		return false
	}
	dates = append(dates, "")
	copy(dates[idx+1:], dates[idx:])
	dates[idx] = dateKey
	meta.YearCaches[year] = dates
	return true
}
