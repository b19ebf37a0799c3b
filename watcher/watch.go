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
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultPollInterval is the watch loop's default polling period (spec §4.6).
const DefaultPollInterval = 250 * time.Millisecond

// Watcher owns the Store, the Entries[] vector, and the polling loop built
// on top of the change engine. Its mutable fields (store + entries + cache
// dir) are protected by mu, which serializes makeChanges and the accessor
// methods — the same "watcher-wide mutex" described in spec §5 and §9.
type Watcher struct {
	mu sync.Mutex

	cfg       Config
	cacheDir  string
	resolver  *Resolver
	supported SupportedPaths
	store     *Store
	entries   []FileItem

	stop    atomic.Bool
	running atomic.Bool
	wg      sync.WaitGroup
}

// Entries returns a snapshot of the current Entries[] vector; callers get
// an independent copy safe to read without holding any lock.
func (w *Watcher) Entries() []FileItem {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]FileItem, len(w.entries))
	for i, e := range w.entries {
		out[i] = e.clone()
	}
	return out
}

// CacheDir returns the directory holding the persisted fingerprint cache.
func (w *Watcher) CacheDir() string {
	return w.cacheDir
}

// Dirs returns the union of directories containing any tracked file —
// useful for future kernel-notify-based modes, per spec §4.7; the core poll
// loop does not use it.
func (w *Watcher) Dirs() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	seen := make(map[string]bool)
	var dirs []string
	w.store.Range(func(path string, _ FileItem) bool {
		dir := filepath.Dir(path)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
		return true
	})
	return dirs
}

// MakeChanges runs one change-engine cycle directly, without the polling
// loop. Watch's background worker calls this on every tick; callers that
// want synchronous, on-demand polling can call it themselves.
func (w *Watcher) MakeChanges() ([]EntryChange, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.makeChangesLocked()
}

// Watch starts a single background worker that polls at interval (or
// DefaultPollInterval if zero) until Stop is called, invoking callback with
// every non-empty change list. The callback runs outside the watcher lock,
// so it may safely call back into the Watcher's own methods.
func (w *Watcher) Watch(interval time.Duration, callback func([]EntryChange)) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	w.stop.Store(false)
	w.running.Store(true)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer w.running.Store(false)
		for {
			if w.stop.Load() {
				w.stop.Store(false) // signal to Stop() that we've quiesced
				return
			}

			w.mu.Lock()
			changes, err := w.makeChangesLocked()
			w.mu.Unlock()

			if err == nil && len(changes) > 0 {
				callback(changes)
			}

			time.Sleep(interval)
		}
	}()
}

// Stop signals the background worker to exit and busy-waits until it has
// quiesced, giving callers a synchronous "watcher has stopped" guarantee
// before they mutate files deterministically (spec §4.6).
func (w *Watcher) Stop() {
	if !w.running.Load() {
		return
	}
	w.stop.Store(true)
	for w.stop.Load() {
		// busy-wait, per spec: the worker clears the flag itself right
		// before it returns.
	}
	w.wg.Wait()
}
