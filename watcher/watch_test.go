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
	"testing"
	"time"
)

func TestWatchLoopDeliversChangesAndStops(t *testing.T) {
	root := t.TempDir()
	e := filepath.Join(root, "e.js")
	writeFile(t, e, ``)
	w := setupWatcher(t, root, []string{e})

	var mu sync.Mutex
	var batches [][]EntryChange
	w.Watch(20*time.Millisecond, func(changes []EntryChange) {
		mu.Lock()
		batches = append(batches, changes)
		mu.Unlock()
	})

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := len(batches)
		mu.Unlock()
		if n > 0 || time.Now().After(deadline) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	w.Stop()

	mu.Lock()
	defer mu.Unlock()
	if len(batches) == 0 {
		t.Fatal("expected at least one non-empty change batch (initial Added)")
	}
}

func TestCacheDirDefault(t *testing.T) {
	root := t.TempDir()
	e := filepath.Join(root, "e.js")
	writeFile(t, e, ``)
	w, err := Setup(Config{ProjectRoot: root, Entries: []string{e}})
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(root, "mw-cache")
	if w.CacheDir() != want {
		t.Fatalf("CacheDir() = %q, want %q", w.CacheDir(), want)
	}
}

func TestDirsReturnsTrackedDirectories(t *testing.T) {
	root := t.TempDir()
	e := filepath.Join(root, "src", "e.js")
	d := filepath.Join(root, "lib", "d.js")
	writeFile(t, e, `import '../lib/d.js';`)
	writeFile(t, d, ``)
	w := setupWatcher(t, root, []string{e})

	dirs := w.Dirs()
	found := map[string]bool{}
	for _, dir := range dirs {
		found[dir] = true
	}
	if !found[filepath.Join(root, "src")] || !found[filepath.Join(root, "lib")] {
		t.Fatalf("expected src and lib directories, got %v", dirs)
	}
}
