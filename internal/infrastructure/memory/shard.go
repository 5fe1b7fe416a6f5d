package memory

import (
	"hash/maphash"
	"sync"
)

const shardCount = 16

// shardedMap keys by string and locks per shard, so a writer only blocks
// readers and writers whose keys hash to the same shard.
type shardedMap[V any] struct {
	shards [shardCount]*shard[V]
	seed   maphash.Seed
}

type shard[V any] struct {
	mu    sync.RWMutex
	items map[string]V
}

func newShardedMap[V any]() *shardedMap[V] {
	m := &shardedMap[V]{seed: maphash.MakeSeed()}
	for i := range m.shards {
		m.shards[i] = &shard[V]{items: make(map[string]V)}
	}
	return m
}

func (m *shardedMap[V]) shardFor(key string) *shard[V] {
	return m.shards[maphash.String(m.seed, key)%shardCount]
}

func (m *shardedMap[V]) get(key string) (V, bool) {
	s := m.shardFor(key)
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[key]
	return v, ok
}

// setIfAbsent stores v unless key is present. Reports whether it stored.
func (m *shardedMap[V]) setIfAbsent(key string, v V) bool {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[key]; ok {
		return false
	}
	s.items[key] = v
	return true
}

func (m *shardedMap[V]) set(key string, v V) {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = v
}

func (m *shardedMap[V]) delete(key string) {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
}

// update runs fn under the key's shard write lock. fn receives the current
// value (ok=false if absent) and returns the value to store; keep=false
// leaves the map untouched. Nothing else can touch the key while fn runs.
func (m *shardedMap[V]) update(key string, fn func(v V, ok bool) (next V, keep bool, err error)) error {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.items[key]
	next, keep, err := fn(cur, ok)
	if err != nil {
		return err
	}
	if keep {
		s.items[key] = next
	}
	return nil
}

// deleteFunc removes every entry for which pred is true, shard by shard.
func (m *shardedMap[V]) deleteFunc(pred func(key string, v V) bool) int64 {
	var n int64
	for _, s := range m.shards {
		s.mu.Lock()
		for k, v := range s.items {
			if pred(k, v) {
				delete(s.items, k)
				n++
			}
		}
		s.mu.Unlock()
	}
	return n
}

func (m *shardedMap[V]) count() int {
	n := 0
	for _, s := range m.shards {
		s.mu.RLock()
		n += len(s.items)
		s.mu.RUnlock()
	}
	return n
}
