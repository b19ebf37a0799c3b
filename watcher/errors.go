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

import "errors"

// ErrConfig is returned at Setup time when no entries and no glob patterns
// were supplied (spec §7, Config kind). It is the only error kind this
// package returns rather than panics with: everything else in §7 ("IO —
// missing source", "IO — path completion failed", "IO — missing
// node_modules") is promised-to-exist territory and panics instead, by
// design — a developer tool driven from a config surfaces "we can't resolve
// this import" immediately rather than silently desynchronizing the graph.
var ErrConfig = errors.New("watcher: config error")
