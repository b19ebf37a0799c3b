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
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// S1: Direct dependency.
func TestIngestDirectDependency(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a.js")
	b := filepath.Join(root, "b.js")
	writeFile(t, a, `import './b.js';`)
	writeFile(t, b, ``)

	store := NewStore()
	resolver := NewResolver(root)
	item, ok, err := ingest(store, resolver, DefaultSupportedPaths(), a)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected a.js to be recognized as a module source")
	}
	if !item.Deps.Has(b) {
		t.Fatalf("expected a.js deps to contain b.js, got %v", item.Deps)
	}
	bItem, _ := store.Get(b)
	if len(bItem.Deps) != 0 {
		t.Fatalf("expected b.js to have no deps, got %v", bItem.Deps)
	}
}

// S2: Extensionless and index resolution.
func TestIngestIndexResolution(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a.js")
	idx := filepath.Join(root, "c", "index.js")
	writeFile(t, a, `import './c';`)
	writeFile(t, idx, `export {};`)

	store := NewStore()
	resolver := NewResolver(root)
	item, ok, err := ingest(store, resolver, DefaultSupportedPaths(), a)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected a.js to be recognized as a module source")
	}
	if !item.Deps.Has(idx) {
		t.Fatalf("expected a.js deps to contain %s, got %v", idx, item.Deps)
	}
}

// S3: Transitive closure.
func TestIngestTransitiveClosure(t *testing.T) {
	root := t.TempDir()
	x := filepath.Join(root, "x.js")
	y := filepath.Join(root, "y.js")
	z := filepath.Join(root, "z.js")
	writeFile(t, x, `import './y.js';`)
	writeFile(t, y, `import './z.js';`)
	writeFile(t, z, ``)

	store := NewStore()
	resolver := NewResolver(root)
	item, ok, err := ingest(store, resolver, DefaultSupportedPaths(), x)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected x.js to be recognized as a module source")
	}
	if !item.Deps.Has(y) || !item.Deps.Has(z) {
		t.Fatalf("expected x.js deps to contain y.js and z.js, got %v", item.Deps)
	}
}

// S6: Cycle tolerance.
func TestIngestCycleTolerance(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a.js")
	b := filepath.Join(root, "b.js")
	writeFile(t, a, `import './b.js';`)
	writeFile(t, b, `import './a.js';`)

	store := NewStore()
	resolver := NewResolver(root)
	done := make(chan struct{})
	go func() {
		_, _, err := ingest(store, resolver, DefaultSupportedPaths(), a)
		if err != nil {
			t.Error(err)
		}
		close(done)
	}()
	<-done

	aItem, ok := store.Get(a)
	if !ok {
		t.Fatal("expected a.js in store")
	}
	bItem, ok := store.Get(b)
	if !ok {
		t.Fatal("expected b.js in store")
	}
	if !aItem.Deps.Has(b) {
		t.Fatalf("expected a.js deps to contain b.js, got %v", aItem.Deps)
	}
	if !bItem.Deps.Has(a) {
		t.Fatalf("expected b.js deps to contain a.js, got %v", bItem.Deps)
	}
}

// S4: Conditional exports.
func TestResolveConditionalExports(t *testing.T) {
	root := t.TempDir()
	pkgDir := filepath.Join(root, "node_modules", "pkg")
	writeFile(t, filepath.Join(pkgDir, "package.json"), `{
		"exports": {
			".": { "import": "./im.js", "require": "./rq.js" }
		}
	}`)
	writeFile(t, filepath.Join(pkgDir, "im.js"), ``)
	writeFile(t, filepath.Join(pkgDir, "rq.js"), ``)

	resolver := NewResolver(root)

	esmPath, ok := resolver.Resolve(Specifier{Raw: "pkg", Kind: KindEsm}, filepath.Join(root, "entry.js"))
	if !ok || esmPath != Clean(filepath.Join(pkgDir, "im.js")) {
		t.Fatalf("ESM resolution = %q, ok=%v", esmPath, ok)
	}

	cjsPath, ok := resolver.Resolve(Specifier{Raw: "pkg", Kind: KindRequire}, filepath.Join(root, "entry.js"))
	if !ok || cjsPath != Clean(filepath.Join(pkgDir, "rq.js")) {
		t.Fatalf("CJS resolution = %q, ok=%v", cjsPath, ok)
	}
}

func TestBuildEntriesRequiresAtLeastOneCandidate(t *testing.T) {
	root := t.TempDir()
	_, _, err := buildEntries(BuildOptions{ProjectRoot: root})
	if err == nil {
		t.Fatal("expected an error when no entries or globs are supplied")
	}
}

func TestBuildEntriesExpandsGlobs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src", "a.js"), `import './b.js';`)
	writeFile(t, filepath.Join(root, "src", "b.js"), ``)

	_, entries, err := buildEntries(BuildOptions{
		ProjectRoot: root,
		GlobEntries: []string{"src/*.js"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries from glob expansion, got %d", len(entries))
	}
}

func TestBuildEntriesDropsNonModuleCandidates(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src", "a.js"), ``)
	writeFile(t, filepath.Join(root, "src", "notes.txt"), `not a module`)

	_, entries, err := buildEntries(BuildOptions{
		ProjectRoot: root,
		GlobEntries: []string{"src/*"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Path != Clean(filepath.Join(root, "src", "a.js")) {
		t.Fatalf("expected only a.js to survive as an entry, got %+v", entries)
	}
}
