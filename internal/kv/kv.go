// Package kv implements the quota-bounded key-value medium backing the
// primary record store. Each key maps to one JSON document persisted as a
// file under the data directory; writes use the temp-file, fsync, rename
// pattern so a crash never leaves a half-written document behind.
package kv

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/lifelog-dev/lifelog/pkg/types"
)

// DefaultQuota is the total byte budget for the medium. The primary store
// deliberately stays small; image payloads belong in the blob store.
const DefaultQuota = 5 << 20

const fileExt = ".json"

// Store is a file-backed key-value store with a hard total-size quota.
type Store struct {
	mu    sync.Mutex
	dir   string
	quota int64
	log   *slog.Logger
}

// Open creates the data directory if needed and returns a Store over it.
// A quota of 0 selects DefaultQuota.
func Open(dir string, quota int64, log *slog.Logger) (*Store, error) {
	if quota <= 0 {
		quota = DefaultQuota
	}
	if log == nil {
		log = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	return &Store{dir: dir, quota: quota, log: log}, nil
}

// Get returns the document stored under key. The second result is false
// when the key has never been written or its file is unreadable; storage
// corruption is treated as "no data" by design, so callers never see an
// error from Get.
func (s *Store) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("unreadable storage key treated as empty",
				"key", key, "error", err)
		}
		return nil, false
	}
	return data, true
}

// Set persists the document under key, replacing any previous value.
// Returns types.ErrQuotaExceeded if the write would push the medium's
// total size past its quota; the previous value is left untouched.
func (s *Store) Set(key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	used, err := s.usedExcept(key)
	if err != nil {
		return err
	}
	if used+int64(len(data)) > s.quota {
		return fmt.Errorf("writing %s (%d bytes, %d in use, quota %d): %w",
			key, len(data), used, s.quota, types.ErrQuotaExceeded)
	}
	return writeAtomic(s.path(key), data)
}

// SetMulti persists several documents under one quota check covering all
// of them, so a write that would only fit partially is rejected before
// any document changes. Each document write is atomic; keys are written
// in sorted order.
func (s *Store) SetMulti(docs map[string][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(docs))
	var incoming int64
	for key, data := range docs {
		keys = append(keys, key)
		incoming += int64(len(data))
	}
	sort.Strings(keys)

	used, err := s.usedExceptAll(docs)
	if err != nil {
		return err
	}
	if used+incoming > s.quota {
		return fmt.Errorf("writing %d documents (%d bytes, %d in use, quota %d): %w",
			len(docs), incoming, used, s.quota, types.ErrQuotaExceeded)
	}
	for _, key := range keys {
		if err := writeAtomic(s.path(key), docs[key]); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the document under key. Deleting a missing key is a no-op.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting key %s: %w", key, err)
	}
	return nil
}

// Keys lists the keys currently stored.
func (s *Store) Keys() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("listing data dir: %w", err)
	}
	var keys []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileExt) {
			continue
		}
		keys = append(keys, strings.TrimSuffix(e.Name(), fileExt))
	}
	return keys, nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+fileExt)
}

// usedExcept sums the size of every stored document except the one under
// key, which is about to be replaced.
func (s *Store) usedExcept(key string) (int64, error) {
	return s.usedExceptAll(map[string][]byte{key: nil})
}

// usedExceptAll sums the size of every stored document whose key is not
// in docs; those are about to be replaced.
func (s *Store) usedExceptAll(docs map[string][]byte) (int64, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("listing data dir: %w", err)
	}
	var used int64
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileExt) {
			continue
		}
		if _, replaced := docs[strings.TrimSuffix(e.Name(), fileExt)]; replaced {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		used += info.Size()
	}
	return used, nil
}

// writeAtomic persists data at path via temp file, fsync, rename.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".kv-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing document: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
