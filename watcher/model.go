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

// Package watcher implements a module-aware file watcher: it parses source
// files for import-like statements, resolves each specifier to a concrete
// file on disk following package-manager resolution rules, and polls the
// resulting dependency graph for content changes.
package watcher

import "bennypowers.dev/cem/set"

// SpecifierKind identifies which import family produced a Specifier. Export
// conditions during resolution (C3) depend on this, so it must survive from
// parse time through to resolution.
type SpecifierKind int

const (
	// KindEsm covers static and dynamic ESM import statements.
	KindEsm SpecifierKind = iota
	// KindRequire covers CommonJS require(...) calls.
	KindRequire
	// KindCSS covers @import statements in stylesheets.
	KindCSS
)

func (k SpecifierKind) String() string {
	switch k {
	case KindEsm:
		return "esm"
	case KindRequire:
		return "require"
	case KindCSS:
		return "css"
	default:
		return "unknown"
	}
}

// Specifier is a raw import string extracted from source, not yet resolved.
type Specifier struct {
	Raw  string
	Kind SpecifierKind
}

// ParseConditions tells the parser which statement families are legal for
// the file currently being scanned.
type ParseConditions struct {
	Esm     bool
	Require bool
	LazyEsm bool
	CSS     bool
}

// Any reports whether at least one family is enabled; a file with none
// enabled is not a module source and is skipped entirely by ingest.
func (c ParseConditions) Any() bool {
	return c.Esm || c.Require || c.LazyEsm || c.CSS
}

// SupportedPaths configures, per import family, which file extensions
// qualify a file for that family's ParseConditions. Unset fields fall back
// to DefaultSupportedPaths.
type SupportedPaths struct {
	Esm    []string
	DynEsm []string
	Cjs    []string
	CSS    []string
}

var defaultJSFamily = []string{"cjs", "mjs", "js", "ts", "tsx", "jsx", "cts", "mts", "mdx"}
var defaultCSSFamily = []string{"css", "scss", "sass", "mdx"}

// DefaultSupportedPaths returns the built-in extension sets used whenever a
// SupportedPaths field is left unset.
func DefaultSupportedPaths() SupportedPaths {
	return SupportedPaths{
		Esm:    append([]string(nil), defaultJSFamily...),
		DynEsm: append([]string(nil), defaultJSFamily...),
		Cjs:    append([]string(nil), defaultJSFamily...),
		CSS:    append([]string(nil), defaultCSSFamily...),
	}
}

// Merge fills any unset field of sp with the corresponding field from
// defaults, returning the merged configuration. The receiver is treated as
// user-supplied overrides; defaults never overwrite a non-empty field.
func (sp SupportedPaths) Merge(defaults SupportedPaths) SupportedPaths {
	merged := sp
	if len(merged.Esm) == 0 {
		merged.Esm = defaults.Esm
	}
	if len(merged.DynEsm) == 0 {
		merged.DynEsm = defaults.DynEsm
	}
	if len(merged.Cjs) == 0 {
		merged.Cjs = defaults.Cjs
	}
	if len(merged.CSS) == 0 {
		merged.CSS = defaults.CSS
	}
	return merged
}

// ConditionsFor determines the ParseConditions applicable to path's
// extension under the given SupportedPaths configuration.
func ConditionsFor(path string, sp SupportedPaths) ParseConditions {
	ext := extNoDot(path)
	return ParseConditions{
		Esm:     containsExt(sp.Esm, ext),
		LazyEsm: containsExt(sp.DynEsm, ext),
		Require: containsExt(sp.Cjs, ext),
		CSS:     containsExt(sp.CSS, ext),
	}
}

func containsExt(exts []string, ext string) bool {
	for _, e := range exts {
		if e == ext {
			return true
		}
	}
	return false
}

// FileItem is a resolved source file: its cleaned absolute path and the
// transitive closure of every file it (directly or indirectly) imports.
// Invariant I1: every path in Deps is also a key in the owning Store.
type FileItem struct {
	Path string
	Deps set.Set[string]
}

// clone returns a FileItem with an independent copy of Deps, so a caller
// holding a snapshot (e.g. an Entries[] element) can't observe later
// mutation of the store's copy.
func (fi FileItem) clone() FileItem {
	deps := set.NewSet[string]()
	for d := range fi.Deps {
		deps.Add(d)
	}
	return FileItem{Path: fi.Path, Deps: deps}
}

// FileState classifies a file's content relative to the last recorded
// fingerprint.
type FileState int

const (
	NotModified FileState = iota
	Created
	Modified
	Deleted
)

func (s FileState) String() string {
	switch s {
	case NotModified:
		return "NotModified"
	case Created:
		return "Created"
	case Modified:
		return "Modified"
	case Deleted:
		return "Deleted"
	default:
		return "Unknown"
	}
}

// ChangeType classifies one EntryChange record: whether the subject is the
// entry itself or one of its dependencies.
type ChangeType int

const (
	Added ChangeType = iota
	ModifiedChange
	DeletedChange
	DepAdded
	DepModified
	DepDeleted
)

func (t ChangeType) String() string {
	switch t {
	case Added:
		return "Added"
	case ModifiedChange:
		return "Modified"
	case DeletedChange:
		return "Deleted"
	case DepAdded:
		return "DepAdded"
	case DepModified:
		return "DepModified"
	case DepDeleted:
		return "DepDeleted"
	default:
		return "Unknown"
	}
}

// Cause records the dependency path and state that triggered a Dep* change.
// Absent (nil) for entry-level changes.
type Cause struct {
	File  string
	State FileState
}

// EntryChange is one state transition emitted by the change engine, with
// enough context to replay the cause.
type EntryChange struct {
	ChangeType ChangeType
	Entry      string
	Cause      *Cause
	// Tree is the dep-chain from the leaf dep (index 0) up to the entry;
	// present only for dependency-level changes.
	Tree []string
}
