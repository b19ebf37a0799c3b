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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// maxNodeModulesHops bounds the ancestor walk used to find a node_modules
// directory, guarding against pathological or cyclic filesystem layouts.
const maxNodeModulesHops = 100

// Resolver maps a specifier plus its importing file's context to a concrete
// absolute file path on disk, following relative, project-rooted ("~/"),
// and node-module resolution rules (spec §4.3).
type Resolver struct {
	projectRoot string

	nmMu    sync.Mutex
	nmCache map[string]string // projectRoot -> node_modules dir, "" = not found
}

// NewResolver returns a Resolver rooted at projectRoot.
func NewResolver(projectRoot string) *Resolver {
	return &Resolver{
		projectRoot: projectRoot,
		nmCache:     make(map[string]string),
	}
}

// Resolve maps spec (discovered while scanning fromFile) to an absolute,
// cleaned file path, or ok=false if the specifier resolves outside the
// project and cannot be located in node_modules (i.e. it is external).
func (r *Resolver) Resolve(spec Specifier, fromFile string) (string, bool) {
	raw := spec.Raw
	switch {
	case strings.HasPrefix(raw, "./") || strings.HasPrefix(raw, "../"):
		return Join(filepath.Dir(fromFile), raw), true
	case strings.HasPrefix(raw, "~/"):
		return Join(r.projectRoot, strings.TrimPrefix(raw, "~/")), true
	default:
		return r.resolveBare(raw, spec.Kind)
	}
}

// resolveBare performs node-module resolution for a bare specifier such as
// "pkg" or "pkg/sub/path".
func (r *Resolver) resolveBare(specifier string, kind SpecifierKind) (string, bool) {
	nodeModules, ok := r.findNodeModules()
	if !ok {
		// Bare specifier with no reachable node_modules: per §7 this is
		// fatal, not a soft failure, because the caller has no way to
		// distinguish "genuinely external" from "misconfigured project".
		panic(fmt.Sprintf("watcher: no node_modules reachable from project root %q (needed to resolve %q)", r.projectRoot, specifier))
	}

	segments := strings.Split(specifier, "/")
	for end := 1; end <= len(segments); end++ {
		prefix := strings.Join(segments[:end], "/")
		pkgDir := filepath.Join(nodeModules, filepath.FromSlash(prefix))
		pkgJSONPath := filepath.Join(pkgDir, "package.json")
		data, err := os.ReadFile(pkgJSONPath)
		if err != nil {
			continue
		}
		var pkg packageJSON
		if err := json.Unmarshal(data, &pkg); err != nil {
			continue
		}

		subKey := exportsKeyFor(specifier, prefix)
		if target, ok := dispatchExports(pkg.Exports, subKey, kind); ok {
			return Join(pkgDir, target), true
		}

		if end == len(segments) && pkg.Main != "" {
			return Join(pkgDir, pkg.Main), true
		}
	}
	return "", false
}

// exportsKeyFor rewrites a specifier into the relative key used to index an
// object-shaped "exports" field: "pkg" -> ".", "pkg/sub" -> "./sub".
func exportsKeyFor(specifier, prefix string) string {
	rest := strings.TrimPrefix(specifier, prefix)
	if rest == "" {
		return "."
	}
	return "." + rest
}

// packageJSON is the subset of package.json fields node-module resolution
// consults.
type packageJSON struct {
	Main    string          `json:"main"`
	Exports json.RawMessage `json:"exports"`
}

// dispatchExports resolves a package.json "exports" field for the given
// relative key (only meaningful when exports is object-shaped) and import
// kind. Returns ok=false when exports is absent/unparseable; callers then
// fall back to "main" at the top-level prefix.
func dispatchExports(raw json.RawMessage, key string, kind SpecifierKind) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}

	// exports: "./string.js"
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString, true
	}

	// exports: [array, of, values]
	var asArray []json.RawMessage
	if err := json.Unmarshal(raw, &asArray); err == nil {
		for _, entry := range asArray {
			if target, ok := dispatchExportValue(entry, kind); ok {
				return target, true
			}
		}
		return "", false
	}

	// exports: { "." : ..., "./sub": ... } — a conditional map at the top
	// level is also object-shaped, so try the relative key first; if that
	// key isn't present treat the whole object as a single conditional
	// value (covers `"exports": {"import": "...", "require": "..."}`
	// with no subpath keys at all).
	var asObject map[string]json.RawMessage
	if err := json.Unmarshal(raw, &asObject); err == nil {
		if entry, ok := asObject[key]; ok {
			return dispatchExportValue(entry, kind)
		}
		if looksLikeConditionalMap(asObject) {
			return dispatchExportValue(raw, kind)
		}
		return "", false
	}

	return "", false
}

// looksLikeConditionalMap reports whether an object's keys are condition
// names (import/require/default/...) rather than subpath keys (which start
// with ".").
func looksLikeConditionalMap(obj map[string]json.RawMessage) bool {
	for k := range obj {
		if strings.HasPrefix(k, ".") {
			return false
		}
	}
	return len(obj) > 0
}

// dispatchExportValue resolves one "exports" value (string, array, or
// conditional object) for kind. The conditional-object case matches
// "import"/"require" to kind, "default" unconditionally, and otherwise
// lenient-falls-back to the first entry's value — this is deliberately
// preserved from the original implementation (see spec.md §4.3 and
// DESIGN.md).
func dispatchExportValue(raw json.RawMessage, kind SpecifierKind) (string, bool) {
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString, true
	}

	var asArray []json.RawMessage
	if err := json.Unmarshal(raw, &asArray); err == nil {
		for _, entry := range asArray {
			if target, ok := dispatchExportValue(entry, kind); ok {
				return target, true
			}
		}
		return "", false
	}

	var asObject map[string]json.RawMessage
	if err := json.Unmarshal(raw, &asObject); err == nil {
		if len(asObject) == 0 {
			return "", false
		}
		if v, ok := asObject["import"]; ok && kind == KindEsm {
			return dispatchExportValue(v, kind)
		}
		if v, ok := asObject["require"]; ok && kind == KindRequire {
			return dispatchExportValue(v, kind)
		}
		if v, ok := asObject["default"]; ok {
			return dispatchExportValue(v, kind)
		}
		// Lenient fallback: first entry, in object iteration order. Go map
		// iteration order is randomized, but package.json "exports" blocks
		// are small and, per spec, this branch only exists because no
		// condition matched - any entry is an equally-unprincipled choice.
		for _, v := range asObject {
			return dispatchExportValue(v, kind)
		}
	}
	return "", false
}

// findNodeModules walks ancestors of r.projectRoot looking for a directory
// literally named "node_modules", memoized per project-root string for the
// lifetime of the Resolver (see spec §5 and DESIGN.md's Open Question about
// invalidation).
func (r *Resolver) findNodeModules() (string, bool) {
	r.nmMu.Lock()
	defer r.nmMu.Unlock()

	if dir, ok := r.nmCache[r.projectRoot]; ok {
		return dir, dir != ""
	}

	dir := r.projectRoot
	for hop := 0; hop < maxNodeModulesHops; hop++ {
		candidate := filepath.Join(dir, "node_modules")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			r.nmCache[r.projectRoot] = candidate
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	r.nmCache[r.projectRoot] = ""
	return "", false
}

// CompletePath finishes resolution of a candidate path that may be a
// directory or an extensionless stem: a directory is completed to its
// "index.*" file; an extensionless stem is completed to a sibling file
// sharing the stem. Panics if completion cannot find a target, per §7
// ("import cannot be resolved" is fatal).
func CompletePath(path string) string {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		if found, ok := findSiblingByStem(path, "index"); ok {
			return found
		}
		panic(fmt.Sprintf("watcher: directory %q has no index.* file", path))
	}

	if extNoDot(path) != "" {
		return path
	}

	dir := filepath.Dir(path)
	stem := filepath.Base(path)
	if found, ok := findSiblingByStem(dir, stem); ok {
		return found
	}
	panic(fmt.Sprintf("watcher: no file matching stem %q in %q", stem, dir))
}

// findSiblingByStem searches dir's immediate entries for a file whose name
// (without extension) equals stem, returning its cleaned path.
func findSiblingByStem(dir, stem string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.TrimSuffix(name, filepath.Ext(name)) == stem {
			return Join(dir, name), true
		}
	}
	return "", false
}
