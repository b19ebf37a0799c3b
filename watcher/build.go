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
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/bmatcuk/doublestar"
	ignore "github.com/sabhiram/go-gitignore"
)

// BuildOptions configures one buildEntries/Setup call (spec §6's recognized
// options, minus the parts the CLI driver owns).
type BuildOptions struct {
	ProjectRoot    string
	Entries        []string
	GlobEntries    []string
	SupportedPaths SupportedPaths
	// Resolver, if non-nil, is reused instead of constructing a fresh one
	// scoped to ProjectRoot — letting a caller share its node_modules memo
	// cache between the initial build and later re-ingests (see Setup).
	Resolver *Resolver
}

// buildEntries expands opts.GlobEntries and opts.Entries into a concurrent
// Store of file -> transitive dependency set, parallelizing ingestion across
// a worker pool (spec §4.4). Returns the Store and the ordered Entries[]
// corresponding exactly to the candidate path list (explicit paths first,
// preserving input order, then glob matches).
func buildEntries(opts BuildOptions) (*Store, []FileItem, error) {
	store := NewStore()
	resolver := opts.Resolver
	if resolver == nil {
		resolver = NewResolver(opts.ProjectRoot)
	}
	supported := opts.SupportedPaths.Merge(DefaultSupportedPaths())

	candidates, err := expandCandidates(opts)
	if err != nil {
		return nil, nil, err
	}
	if len(candidates) == 0 {
		return nil, nil, fmt.Errorf("%w: no entries or glob patterns supplied", ErrConfig)
	}

	found := make([]bool, len(candidates))
	items := make([]FileItem, len(candidates))
	g := new(errgroup.Group)
	g.SetLimit(parallelism())
	for idx, path := range candidates {
		idx, path := idx, path
		g.Go(func() error {
			item, ok, err := ingest(store, resolver, supported, path)
			if err != nil {
				return err
			}
			items[idx] = item
			found[idx] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	// Candidates that aren't recognized module sources (e.g. a glob like
	// "**/*" sweeping up non-source files) are dropped from Entries[]
	// entirely, matching entry.rs's make_missing_entries filter.
	entries := make([]FileItem, 0, len(items))
	for idx, item := range items {
		if found[idx] {
			entries = append(entries, item)
		}
	}
	return store, entries, nil
}

// expandCandidates expands GlobEntries (relative patterns joined with
// ProjectRoot, absolute patterns used literally, entries matched by the
// project's .gitignore pruned) and concatenates them with Entries,
// deduplicating while preserving order, explicit entries first.
func expandCandidates(opts BuildOptions) ([]string, error) {
	var ordered []string
	seen := make(map[string]bool)
	add := func(path string) {
		path = Clean(path)
		if !seen[path] {
			seen[path] = true
			ordered = append(ordered, path)
		}
	}

	for _, e := range opts.Entries {
		add(e)
	}

	matcher := loadGitignore(opts.ProjectRoot)
	for _, pattern := range opts.GlobEntries {
		globPattern := pattern
		if !filepath.IsAbs(globPattern) {
			globPattern = filepath.Join(opts.ProjectRoot, globPattern)
		}
		matches, err := doublestar.Glob(globPattern)
		if err != nil {
			return nil, fmt.Errorf("glob pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if matcher != nil {
				if rel, err := filepath.Rel(opts.ProjectRoot, m); err == nil && matcher.MatchesPath(rel) {
					continue
				}
			}
			add(m)
		}
	}

	return ordered, nil
}

// loadGitignore compiles projectRoot/.gitignore if present, returning nil
// (meaning "ignore nothing") when absent or unreadable — a missing
// .gitignore is not an error, it just means glob expansion prunes nothing.
func loadGitignore(projectRoot string) *ignore.GitIgnore {
	content, err := os.ReadFile(filepath.Join(projectRoot, ".gitignore"))
	if err != nil {
		return nil
	}
	return ignore.CompileIgnoreLines(strings.Split(string(content), "\n")...)
}

// ingest recursively resolves path's transitive import closure, memoized on
// store[path] (spec §4.4). It is safe to call concurrently on distinct root
// paths; InsertPlaceholder doubles as the cycle break and single-flight
// guard described in spec §4.4 and §4.9 ("Design notes — cycles"). The
// returned bool reports whether path is a recognized module source; when
// false, the FileItem is the zero value and the caller must not treat path
// as an entry (mirrors entry.rs's make_missing_entries filtering out
// candidates the store has no record for).
func ingest(store *Store, resolver *Resolver, supported SupportedPaths, path string) (FileItem, bool, error) {
	if existing, ok := store.Get(path); ok {
		return existing, true, nil
	}

	conditions := ConditionsFor(path, supported)
	if !conditions.Any() {
		// Not a module source; not inserted, not an error (spec §4.4 step 3).
		return FileItem{}, false, nil
	}

	placeholder, existed := store.InsertPlaceholder(path)
	if existed {
		return placeholder, true, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		panic(fmt.Sprintf("watcher: failed to read entry file %q: %v", path, err))
	}

	deps := placeholder.Deps
	specs := ParseImports(string(content), conditions)
	for _, spec := range specs {
		resolved, ok := resolver.Resolve(spec, path)
		if !ok {
			continue // external; not tracked
		}
		resolved = CompletePath(resolved)
		deps.Add(resolved)

		child, ok, err := ingest(store, resolver, supported, resolved)
		if err != nil {
			return FileItem{}, false, err
		}
		if ok {
			for d := range child.Deps {
				deps.Add(d)
			}
		}
	}

	final := FileItem{Path: path, Deps: deps}
	store.Set(path, final)
	return final, true, nil
}

// parallelism bounds the number of in-flight ingest/makeChanges goroutines
// to the number of usable CPUs, matching the "data-parallel worker pool"
// language in spec §5.
func parallelism() int {
	return runtime.GOMAXPROCS(0)
}
