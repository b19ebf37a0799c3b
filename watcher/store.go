/*
Copyright © 2025 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

package watcher

import (
	"hash/fnv"
	"sync"

	"bennypowers.dev/cem/set"
)

// storeShards is the fixed shard count for Store's per-shard locking. It
// doesn't need to track GOMAXPROCS: this bounds *lock contention*, not
// parallelism, and a modest fixed count keeps Store trivially easy to
// reason about.
const storeShards = 32

type shard struct {
	mu    sync.RWMutex
	items map[string]FileItem
}

// Store is a concurrent content-addressed map of absolute file paths to
// FileItems, built by parallel workers with memoization (spec §4.4). It
// supports insert-if-absent (the placeholder/single-flight protocol used by
// ingest), concurrent lookup, concurrent iteration, and per-key mutation.
type Store struct {
	shards [storeShards]*shard
}

// NewStore returns an empty Store.
func NewStore() *Store {
	s := &Store{}
	for i := range s.shards {
		s.shards[i] = &shard{items: make(map[string]FileItem)}
	}
	return s
}

func (s *Store) shardFor(path string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(path))
	return s.shards[h.Sum32()%storeShards]
}

// Get returns the FileItem stored at path, if any.
func (s *Store) Get(path string) (FileItem, bool) {
	sh := s.shardFor(path)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	item, ok := sh.items[path]
	return item, ok
}

// Has reports whether path is a key in the store.
func (s *Store) Has(path string) bool {
	_, ok := s.Get(path)
	return ok
}

// InsertPlaceholder inserts an empty-deps FileItem at path if absent. It
// returns the entry present at path after the call (either the one just
// inserted or one that already existed) and whether it already existed —
// the cycle-break and single-flight guard described in spec §4.4 step 4 and
// §5: two goroutines racing to ingest the same path both land here, and
// only the first proceeds to parse and recurse.
func (s *Store) InsertPlaceholder(path string) (FileItem, bool) {
	sh := s.shardFor(path)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if existing, ok := sh.items[path]; ok {
		return existing, true
	}
	item := FileItem{Path: path, Deps: set.NewSet[string]()}
	sh.items[path] = item
	return item, false
}

// Set writes the final FileItem for path, replacing any placeholder.
func (s *Store) Set(path string, item FileItem) {
	sh := s.shardFor(path)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	sh.items[path] = item
}

// Delete removes path from the store.
func (s *Store) Delete(path string) {
	sh := s.shardFor(path)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	delete(sh.items, path)
}

// Range calls fn for every entry in the store. fn operates on a cloned
// FileItem so mutation by the caller never corrupts the store, and iteration
// is safe to run concurrently with Set/Delete on other keys (each shard's
// snapshot is taken under its own read lock). Stops early if fn returns
// false.
func (s *Store) Range(fn func(path string, item FileItem) bool) {
	for _, sh := range s.shards {
		sh.mu.RLock()
		snapshot := make(map[string]FileItem, len(sh.items))
		for k, v := range sh.items {
			snapshot[k] = v.clone()
		}
		sh.mu.RUnlock()
		for k, v := range snapshot {
			if !fn(k, v) {
				return
			}
		}
	}
}

// Len returns the number of keys currently in the store.
func (s *Store) Len() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		n += len(sh.items)
		sh.mu.RUnlock()
	}
	return n
}
