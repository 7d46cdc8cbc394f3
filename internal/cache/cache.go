package cache

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"

	xxhash "github.com/cespare/xxhash/v2"

	"github.com/enginesniff/enginesniff/internal/types"
)

// FileName is the cache file written to a root without a .git directory.
const FileName = ".enginesniffcache.json"

// maxEntries bounds the on-disk cache; the oldest half is dropped when full.
const maxEntries = 256

type DB struct {
	// Fingerprint of (listing, engine set) -> detection result
	Entries map[string]types.DetectionResult `json:"entries"`
	// Order records insertion order for eviction
	Order []string `json:"order"`
}

func defaultPath(root string) string {
	// Prefer storing cache under .git to avoid accidental commits
	gitDir := filepath.Join(root, ".git")
	if st, err := os.Stat(gitDir); err == nil && st.IsDir() {
		return filepath.Join(gitDir, "enginesniffcache.json")
	}
	return filepath.Join(root, FileName)
}

func Load(root string) (DB, error) {
	var db DB
	f, err := os.ReadFile(defaultPath(root))
	if err != nil {
		return DB{Entries: map[string]types.DetectionResult{}}, err
	}
	if err := json.Unmarshal(f, &db); err != nil {
		return DB{Entries: map[string]types.DetectionResult{}}, err
	}
	if db.Entries == nil {
		db.Entries = map[string]types.DetectionResult{}
	}
	return db, nil
}

func Save(root string, db DB) error {
	if db.Entries == nil {
		return errors.New("empty cache")
	}
	b, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(defaultPath(root), b, 0644)
}

// Get returns the cached result for key.
func (db DB) Get(key string) (types.DetectionResult, bool) {
	r, ok := db.Entries[key]
	return r, ok
}

// Put stores r under key, evicting the oldest entries when the cache is full.
func (db *DB) Put(key string, r types.DetectionResult) {
	if db.Entries == nil {
		db.Entries = map[string]types.DetectionResult{}
	}
	if _, ok := db.Entries[key]; !ok {
		db.Order = append(db.Order, key)
	}
	db.Entries[key] = r
	if len(db.Order) > maxEntries {
		drop := db.Order[:len(db.Order)-maxEntries/2]
		for _, k := range drop {
			delete(db.Entries, k)
		}
		db.Order = append([]string(nil), db.Order[len(drop):]...)
	}
}

// Fingerprint hashes an ordered listing together with the engine set it is
// classified against. Any change to either yields a different key.
func Fingerprint(files []string, engines []types.EngineConfig) string {
	d := xxhash.New()
	for _, f := range files {
		_, _ = d.WriteString(f)
		_, _ = d.Write([]byte{0})
	}
	_, _ = d.Write([]byte{1})
	if b, err := json.Marshal(engines); err == nil {
		_, _ = d.Write(b)
	}
	return strconv.FormatUint(d.Sum64(), 16) + "-" + strconv.Itoa(len(files))
}
