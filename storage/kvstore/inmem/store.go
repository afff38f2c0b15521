package inmemstore

import (
	"context"
	"sync"

	"github.com/trezcool/acadify/core"
)

// Store keeps keys in memory for the life of the process.
type Store struct {
	sync.RWMutex
	table map[string]string
}

var _ core.KeyValueStore = (*Store)(nil)

func Open() *Store {
	return &Store{table: make(map[string]string)}
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.RLock()
	defer s.RUnlock()

	val, ok := s.table[key]
	return val, ok, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.Lock()
	defer s.Unlock()

	s.table[key] = value
	return nil
}

func (s *Store) Remove(_ context.Context, key string) error {
	s.Lock()
	defer s.Unlock()

	delete(s.table, key)
	return nil
}

// Keys returns the stored keys, in no particular order.
func (s *Store) Keys() []string {
	s.RLock()
	defer s.RUnlock()

	keys := make([]string, 0, len(s.table))
	for k := range s.table {
		keys = append(keys, k)
	}
	return keys
}
