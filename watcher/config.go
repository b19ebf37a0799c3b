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

import "path/filepath"

// Config is the external setup configuration recognized by Setup (spec §6).
type Config struct {
	// Project is a human-readable label; not used by the core.
	Project string
	// ProjectRoot is the absolute basis for glob expansion, "~/"
	// specifiers, and node-module search. Required.
	ProjectRoot string
	// Entries is the sequence of absolute entry file paths.
	Entries []string
	// GlobEntries is a sequence of glob patterns; relative patterns are
	// relative to ProjectRoot.
	GlobEntries []string
	// CacheDir is the directory for the fingerprint file. Defaults to
	// "<ProjectRoot>/mw-cache".
	CacheDir string
	// SupportedPaths optionally overrides the default per-family extension
	// sets.
	SupportedPaths SupportedPaths
	// Debug is reserved for verbose logging by callers; the core does not
	// log on its own.
	Debug bool
}

// defaultCacheDirName is the subdirectory created under ProjectRoot when
// CacheDir is left unset.
const defaultCacheDirName = "mw-cache"

// Setup converts a Config into an initialized Watcher: it expands entries
// and glob patterns into a Store via buildEntries, and prepares (but does
// not start) the polling loop.
func Setup(cfg Config) (*Watcher, error) {
	cacheDir := cfg.CacheDir
	if cacheDir == "" {
		cacheDir = filepath.Join(cfg.ProjectRoot, defaultCacheDirName)
	}

	resolver := NewResolver(cfg.ProjectRoot)

	buildOpts := BuildOptions{
		ProjectRoot:    cfg.ProjectRoot,
		Entries:        cfg.Entries,
		GlobEntries:    cfg.GlobEntries,
		SupportedPaths: cfg.SupportedPaths,
		Resolver:       resolver,
	}

	store, entries, err := buildEntries(buildOpts)
	if err != nil {
		return nil, err
	}

	return &Watcher{
		cfg:       cfg,
		cacheDir:  cacheDir,
		resolver:  resolver,
		supported: cfg.SupportedPaths.Merge(DefaultSupportedPaths()),
		store:     store,
		entries:   entries,
	}, nil
}
