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

// Clean lexically normalizes a path: it collapses repeated separators, drops
// "." components, and pops ".." against the preceding segment (or keeps it,
// unresolved, when the path isn't rooted and has no preceding segment to
// pop). It never touches the filesystem.
//
// This is exactly filepath.Clean's algorithm, which already satisfies the
// idempotency invariant clean(clean(p)) == clean(p); there is no third-party
// alternative in the retrieval pack for lexical-only path normalization, so
// this wraps the standard library directly (see DESIGN.md).
func Clean(path string) string {
	if path == "" {
		return "."
	}
	return filepath.Clean(path)
}

// Join joins dir and elem, then cleans the result. Used whenever a resolved
// path is produced relative to some base directory (the importing file's
// directory, the project root, a node_modules package directory).
func Join(dir string, elem ...string) string {
	parts := append([]string{dir}, elem...)
	return Clean(filepath.Join(parts...))
}
