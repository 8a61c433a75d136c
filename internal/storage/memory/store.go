// Package memory keeps session stores in process memory. It backs tests and
// single-instance dev runs; nothing survives a restart.
package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"staybook/internal/domain"
)

type Store struct {
	mu      sync.RWMutex
	kv      map[string]string
	touched atomic.Int64 // unix nanos of the last Get/Set/Remove
}

func NewStore() *Store {
	s := &Store{kv: map[string]string{}}
	s.touch()
	return s
}

func (s *Store) touch() { s.touched.Store(time.Now().UnixNano()) }

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.touch()
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.kv[key]
	return v, ok, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.touch()
	s.mu.Lock()
	s.kv[key] = value
	s.mu.Unlock()
	return nil
}

func (s *Store) Remove(_ context.Context, key string) error {
	s.touch()
	s.mu.Lock()
	delete(s.kv, key)
	s.mu.Unlock()
	return nil
}

func (s *Store) empty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.kv) == 0
}

// Factory hands out one Store per session id.
type Factory struct {
	mu       sync.Mutex
	sessions map[string]*Store
}

func NewFactory() *Factory { return &Factory{sessions: map[string]*Store{}} }

func (f *Factory) ForSession(id string) domain.KVStore {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		s = NewStore()
		f.sessions[id] = s
	}
	s.touch()
	return s
}

// Evict forgets the session's store if it holds nothing. Stores with data
// stay until PurgeIdle so a swept session can still be rebuilt.
func (f *Factory) Evict(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok || !s.empty() {
		return false
	}
	delete(f.sessions, id)
	return true
}

// PurgeIdle drops every store untouched for longer than ttl. It has the same
// shape as the MySQL purge so both run from one loop.
func (f *Factory) PurgeIdle(_ context.Context, ttl time.Duration) (int64, error) {
	cutoff := time.Now().Add(-ttl).UnixNano()
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, s := range f.sessions {
		if s.touched.Load() < cutoff {
			delete(f.sessions, id)
			n++
		}
	}
	return n, nil
}

// Len reports how many session stores are held.
func (f *Factory) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sessions)
}
