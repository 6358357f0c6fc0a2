package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketSongs       = []byte("songs")
	bucketAlbums      = []byte("albums")
	bucketArtists     = []byte("artists")
	bucketGenres      = []byte("genres")
	bucketDirectories = []byte("directories")
	bucketPlaylists   = []byte("playlists")
	bucketCacheInfo   = []byte("cacheinfo")
)

var allBuckets = [][]byte{
	bucketSongs, bucketAlbums, bucketArtists, bucketGenres,
	bucketDirectories, bucketPlaylists, bucketCacheInfo,
}

// Tracklists live in the playlists bucket under their own key prefix so a
// playlist row and its song order travel together.
const tracklistPrefix = "tracks:"

// CacheInfo marks one (operation, params) query result as known to the
// cache. Its existence is the sole freshness signal; it never expires on
// its own. Deleted by invalidation, overwritten by every ingestion.
type CacheInfo struct {
	CacheKey      string
	Fingerprint   string
	LastIngestion time.Time
}

// Store implements domain.CacheStore using BoltDB for entity records and
// freshness markers plus a directory tree for blob files. All writes run
// as single serializable transactions; BoltDB's one-writer rule is the
// write lock that keeps concurrent ingestions from interleaving.
type Store struct {
	db       *bolt.DB
	dir      string
	musicDir string
	coverDir string
	logger   *slog.Logger

	mu sync.RWMutex
	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte

	// Injectable clock so tests can pin marker timestamps
	now func() time.Time
}

// Open opens or creates the cache at dir. The layout is a single BoltDB
// file beside a music/ tree (mirroring server paths) and a cover_art/
// directory (fingerprint-named files).
func Open(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	musicDir := filepath.Join(dir, "music")
	coverDir := filepath.Join(dir, "cover_art")
	for _, d := range []string{dir, musicDir, coverDir} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	dbPath := filepath.Join(dir, "descant.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	// Create buckets
	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:       db,
		dir:      dir,
		musicDir: musicDir,
		coverDir: coverDir,
		logger:   logger,
		cache:    make(map[string][]byte),
		now:      time.Now,
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// === Generic helpers ===

func (s *Store) get(bucket []byte, key string, dest interface{}) bool {
	cacheKey := string(bucket) + ":" + key

	// Check memory cache first
	s.mu.RLock()
	if data, ok := s.cache[cacheKey]; ok {
		s.mu.RUnlock()
		return json.Unmarshal(data, dest) == nil
	}
	s.mu.RUnlock()

	// Read from BoltDB
	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})

	if data == nil {
		return false
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	return json.Unmarshal(data, dest) == nil
}

// has reports key existence without decoding the value
func (s *Store) has(bucket []byte, key string) bool {
	cacheKey := string(bucket) + ":" + key

	s.mu.RLock()
	if _, ok := s.cache[cacheKey]; ok {
		s.mu.RUnlock()
		return true
	}
	s.mu.RUnlock()

	found := false
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		found = b.Get([]byte(key)) != nil
		return nil
	})
	return found
}

// txn is one serializable write transaction. It records every touched key
// so the memory cache applies the changes only after the commit succeeds.
type txn struct {
	tx      *bolt.Tx
	touched map[string][]byte // bucket:key -> new bytes, nil = removed
}

func (t *txn) put(bucket []byte, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := t.tx.Bucket(bucket).Put([]byte(key), data); err != nil {
		return err
	}
	t.touched[string(bucket)+":"+key] = data
	return nil
}

func (t *txn) delete(bucket []byte, key string) error {
	if err := t.tx.Bucket(bucket).Delete([]byte(key)); err != nil {
		return err
	}
	t.touched[string(bucket)+":"+key] = nil
	return nil
}

func (t *txn) get(bucket []byte, key string, dest interface{}) bool {
	v := t.tx.Bucket(bucket).Get([]byte(key))
	if v == nil {
		return false
	}
	return json.Unmarshal(v, dest) == nil
}

// update runs fn in one write transaction, then syncs the memory cache
func (s *Store) update(fn func(t *txn) error) error {
	t := &txn{touched: make(map[string][]byte)}
	err := s.db.Update(func(tx *bolt.Tx) error {
		t.tx = tx
		return fn(t)
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	for key, data := range t.touched {
		if data == nil {
			delete(s.cache, key)
		} else {
			s.cache[key] = data
		}
	}
	s.mu.Unlock()
	return nil
}

// dropCache wipes the whole memory cache; used by bulk invalidation
func (s *Store) dropCache() {
	s.mu.Lock()
	s.cache = make(map[string][]byte)
	s.mu.Unlock()
}

// scan decodes every value in a bucket whose key is not excluded by skip
func scan[T any](s *Store, bucket []byte, skip func(key string) bool) []T {
	var out []T
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			if skip != nil && skip(string(k)) {
				return nil
			}
			var item T
			if err := json.Unmarshal(v, &item); err != nil {
				s.logger.Warn("skipping undecodable record", "bucket", string(bucket), "key", string(k))
				return nil
			}
			out = append(out, item)
			return nil
		})
	})
	return out
}

// === Freshness markers ===

// hasMarker reports whether a freshness marker exists for (key, fingerprint)
func (s *Store) hasMarker(key CacheKey, fingerprint string) bool {
	return s.has(bucketCacheInfo, markerKey(key, fingerprint))
}

// Marker returns the full CacheInfo record, if present
func (s *Store) Marker(key CacheKey, fingerprint string) (CacheInfo, bool) {
	var info CacheInfo
	ok := s.get(bucketCacheInfo, markerKey(key, fingerprint), &info)
	return info, ok
}

// putMarker stamps a fresh marker inside an ongoing transaction
func (s *Store) putMarker(t *txn, key CacheKey, fingerprint string) error {
	return t.put(bucketCacheInfo, markerKey(key, fingerprint), CacheInfo{
		CacheKey:      string(key),
		Fingerprint:   fingerprint,
		LastIngestion: s.now(),
	})
}

func isTracklistKey(key string) bool {
	return strings.HasPrefix(key, tracklistPrefix)
}
