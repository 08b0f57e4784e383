// Package session establishes, restores and tears down the authenticated session.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/carbontrack/internal/storage"
)

// Fixed storage keys for the persisted session
const (
	TokenKey   = "carbontrack_token"
	ProfileKey = "carbontrack_user"
)

// Store persists session values under fixed keys
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// MemoryStore keeps values for the lifetime of the process
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Get implements Store
func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

// Set implements Store
func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Delete implements Store
func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.values, k)
	}
	return nil
}

// FileStore keeps values in a JSON object on disk, readable only by the owner
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store backed by path. The file is created on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) read() (map[string]string, error) {
	values := make(map[string]string)
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parse session file %s: %w", s.path, err)
	}
	return values, nil
}

func (s *FileStore) write(values map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}

// Get implements Store
func (s *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.read()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

// Set implements Store
func (s *FileStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.read()
	if err != nil {
		return err
	}
	values[key] = value
	return s.write(values)
}

// Delete implements Store
func (s *FileStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.read()
	if err != nil {
		// An unreadable file must not block logout.
		return s.write(map[string]string{})
	}
	for _, k := range keys {
		delete(values, k)
	}
	return s.write(values)
}

// RedisStore keeps values in Redis, optionally namespaced and expiring
type RedisStore struct {
	cache  *storage.RedisCache
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a store on top of cache. Keys become prefix+key.
func NewRedisStore(cache *storage.RedisCache, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{cache: cache, prefix: prefix, ttl: ttl}
}

// Get implements Store. With a ttl, reading the token slides both keys forward.
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok, err := s.cache.Lookup(ctx, s.prefix+key)
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if ok && key == TokenKey {
		if err := s.cache.Refresh(ctx, s.ttl, s.prefix+TokenKey, s.prefix+ProfileKey); err != nil {
			return "", false, fmt.Errorf("redis refresh: %w", err)
		}
	}
	return v, ok, nil
}

// Set implements Store
func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.cache.Put(ctx, s.prefix+key, value, s.ttl); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete implements Store
func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.prefix + k
	}
	if err := s.cache.Delete(ctx, full...); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
