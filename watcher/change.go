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
	"os"
	"sync"

	"golang.org/x/sync/errgroup"

	"bennypowers.dev/cem/set"
)

// stateOf classifies path's content relative to fOld, returning the
// checksum to persist for this tick and the file's FileState (spec §4.5).
func stateOf(path string, fOld map[string]int64) (int64, FileState) {
	data, err := os.ReadFile(path)
	if err != nil {
		if prev, ok := fOld[path]; ok && prev == Absent {
			return Absent, NotModified
		}
		return Absent, Deleted
	}

	checksum := Checksum(data)
	prev, ok := fOld[path]
	switch {
	case !ok:
		return checksum, Created
	case prev == Absent:
		return checksum, Created
	case prev == checksum:
		return checksum, NotModified
	default:
		return checksum, Modified
	}
}

// makeChangesLocked is the change engine's single operation, makeChanges
// (spec §4.5). Caller must hold w.mu.
func (w *Watcher) makeChangesLocked() ([]EntryChange, error) {
	fOld := loadFingerprintCache(w.cacheDir)
	fNew := make(map[string]int64)
	var fNewMu sync.Mutex

	if err := w.expandMissingEntriesLocked(); err != nil {
		return nil, err
	}

	paths := make([]string, len(w.entries))
	for i, e := range w.entries {
		paths[i] = e.Path
	}

	results := make([][]EntryChange, len(paths))
	g := new(errgroup.Group)
	g.SetLimit(parallelism())
	for idx, path := range paths {
		idx, path := idx, path
		g.Go(func() error {
			changes, err := w.processEntryLocked(path, fOld, fNew, &fNewMu)
			if err != nil {
				return err
			}
			results[idx] = changes
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []EntryChange
	for _, r := range results {
		all = append(all, r...)
	}

	if err := saveFingerprintCache(w.cacheDir, fNew); err != nil {
		return nil, err
	}

	w.reconcileEntriesLocked()

	return all, nil
}

// processEntryLocked computes the entry-scoped change list for one entry
// path (spec §4.5 step 4). It may mutate the store (re-ingesting a modified
// entry), which is safe because makeChangesLocked's caller holds w.mu and
// the parallel entry goroutines each touch a disjoint root, relying on
// Store's own per-key locking for the rest.
func (w *Watcher) processEntryLocked(entryPath string, fOld, fNew map[string]int64, mu *sync.Mutex) ([]EntryChange, error) {
	checksum, state := stateOf(entryPath, fOld)

	var deps set.Set[string]
	if state == Modified {
		w.store.Delete(entryPath)
		reingested, ok, err := ingest(w.store, w.resolver, w.supported, entryPath)
		if err != nil {
			return nil, err
		}
		if ok {
			deps = reingested.Deps
		} else {
			deps = set.NewSet[string]()
		}
	} else if current, ok := w.store.Get(entryPath); ok {
		deps = current.Deps
	} else {
		deps = set.NewSet[string]()
	}

	type walkItem struct {
		path   string
		isRoot bool
	}
	walk := make([]walkItem, 0, 1+len(deps))
	walk = append(walk, walkItem{entryPath, true})
	for d := range deps {
		walk = append(walk, walkItem{d, false})
	}

	var changes []EntryChange
	var chain []string
	for _, item := range walk {
		var cs int64
		var st FileState
		if item.isRoot {
			cs, st = checksum, state
		} else {
			cs, st = stateOf(item.path, fOld)
		}

		mu.Lock()
		fNew[item.path] = cs
		mu.Unlock()

		chain = append([]string{item.path}, chain...)

		if st == NotModified {
			continue
		}

		change := EntryChange{Entry: entryPath}
		if item.isRoot {
			switch st {
			case Created:
				change.ChangeType = Added
			case Modified:
				change.ChangeType = ModifiedChange
			case Deleted:
				change.ChangeType = DeletedChange
			}
		} else {
			switch st {
			case Created:
				change.ChangeType = DepAdded
			case Modified:
				change.ChangeType = DepModified
			case Deleted:
				change.ChangeType = DepDeleted
			}
			change.Cause = &Cause{File: item.path, State: st}
			change.Tree = append([]string(nil), chain...)
		}
		changes = append(changes, change)
	}

	return changes, nil
}

// expandMissingEntriesLocked re-globs and re-reads explicit entries,
// inserting any newly matching files into the store and appending
// corresponding FileItems to Entries[], without re-processing entries
// already present (spec §4.5 step 3).
func (w *Watcher) expandMissingEntriesLocked() error {
	candidates, err := expandCandidates(BuildOptions{
		ProjectRoot: w.cfg.ProjectRoot,
		Entries:     w.cfg.Entries,
		GlobEntries: w.cfg.GlobEntries,
	})
	if err != nil {
		return err
	}

	existing := make(map[string]bool, len(w.entries))
	for _, e := range w.entries {
		existing[e.Path] = true
	}

	for _, path := range candidates {
		if existing[path] {
			continue
		}
		item, ok, err := ingest(w.store, w.resolver, w.supported, path)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		w.entries = append(w.entries, item)
		existing[path] = true
	}
	return nil
}

// reconcileEntriesLocked refreshes each Entries[] snapshot from the current
// store state, dropping entries whose path has left the store entirely
// (spec §4.5 step 6).
func (w *Watcher) reconcileEntriesLocked() {
	kept := w.entries[:0]
	for _, e := range w.entries {
		current, ok := w.store.Get(e.Path)
		if !ok {
			continue
		}
		filtered := set.NewSet[string]()
		for d := range current.Deps {
			if w.store.Has(d) {
				filtered.Add(d)
			}
		}
		kept = append(kept, FileItem{Path: current.Path, Deps: filtered})
	}
	w.entries = kept
}
