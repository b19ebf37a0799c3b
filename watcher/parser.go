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

import "strings"

// ParseImports extracts every import-like specifier from src in textual
// order, gating each statement family by conditions. Unlike the tree-sitter
// based parsing elsewhere in this module (modulegraph), this is a lexical
// scan, not an AST walk: content outside of a recognized statement start is
// skipped one byte at a time, and a half-open string literal is simply not
// a match rather than a parse error for the whole file. Ported from the
// byte-scanner in original_source/js_watcher/src/parser.rs.
func ParseImports(src string, conditions ParseConditions) []Specifier {
	var specs []Specifier
	i := 0
	n := len(src)
	for i < n {
		if conditions.Esm {
			if s, next, ok := matchNamedOrSideEffectEsm(src, i, "import"); ok {
				specs = append(specs, Specifier{Raw: s, Kind: KindEsm})
				i = next
				continue
			}
			if s, next, ok := matchNamedOrSideEffectEsm(src, i, "export"); ok {
				specs = append(specs, Specifier{Raw: s, Kind: KindEsm})
				i = next
				continue
			}
		}
		if conditions.LazyEsm {
			if s, next, ok := matchCallLike(src, i, "import"); ok {
				specs = append(specs, Specifier{Raw: s, Kind: KindEsm})
				i = next
				continue
			}
		}
		if conditions.Require {
			if s, next, ok := matchCallLike(src, i, "require"); ok {
				specs = append(specs, Specifier{Raw: s, Kind: KindRequire})
				i = next
				continue
			}
		}
		if conditions.CSS {
			if operands, next, ok := matchCSSImport(src, i); ok {
				for _, op := range operands {
					specs = append(specs, Specifier{Raw: normalizeCSSSpecifier(op), Kind: KindCSS})
				}
				i = next
				continue
			}
		}
		i++
	}
	return specs
}

// matchNamedOrSideEffectEsm matches `<keyword> ... from "S"` (named/re-export)
// or the side-effect form `<keyword> "S"` when keyword is "import". Returns
// the specifier, the offset just past the statement's closing quote, and
// whether a match occurred.
func matchNamedOrSideEffectEsm(src string, i int, keyword string) (string, int, bool) {
	if !hasKeywordAt(src, i, keyword) {
		return "", i, false
	}
	j := i + len(keyword)

	// Side-effect form: import "S" / export "S" (export alone has no
	// side-effect form in practice, but scanning it is harmless — it simply
	// won't match because export statements without "from" don't end in a
	// bare string literal at this position).
	k := skipSpace(src, j)
	if lit, after, ok := readStringLiteral(src, k); ok {
		return lit, after, true
	}

	// Named / re-export form: <keyword> ... from "S". Scan forward for a
	// standalone "from" token before end of statement; bail at the first
	// semicolon without finding one. Named import/export clauses routinely
	// span multiple lines (e.g. `import {\n  foo,\n} from './bar.js'`), so
	// unlike the semicolon this scan does not stop at '\n'.
	pos := j
	for pos < len(src) {
		if hasKeywordAt(src, pos, "from") {
			after := skipSpace(src, pos+4)
			if lit, end, ok := readStringLiteral(src, after); ok {
				return lit, end, true
			}
			return "", i, false
		}
		if src[pos] == ';' {
			return "", i, false
		}
		pos++
	}
	return "", i, false
}

// matchCallLike matches `<keyword>(...)"S"...)` shapes: dynamic import(...)
// and require(...), each optionally preceded by whitespace before the paren.
func matchCallLike(src string, i int, keyword string) (string, int, bool) {
	if !hasKeywordAt(src, i, keyword) {
		return "", i, false
	}
	j := skipSpace(src, i+len(keyword))
	if j >= len(src) || src[j] != '(' {
		return "", i, false
	}
	j = skipSpace(src, j+1)
	lit, after, ok := readStringLiteral(src, j)
	if !ok {
		return "", i, false
	}
	after = skipSpace(src, after)
	if after >= len(src) || src[after] != ')' {
		return "", i, false
	}
	return lit, after + 1, true
}

// matchCSSImport matches `@import <operand>, <operand>, ...;` where each
// operand is a bare string literal or url("...")/url(...). Returns every
// operand's raw specifier text.
func matchCSSImport(src string, i int) ([]string, int, bool) {
	if !hasKeywordAt(src, i, "@import") {
		return nil, i, false
	}
	j := skipSpace(src, i+len("@import"))
	var operands []string
	for {
		var lit string
		var ok bool
		var next int
		if hasKeywordAt(src, j, "url") {
			k := skipSpace(src, j+3)
			if k >= len(src) || src[k] != '(' {
				break
			}
			k = skipSpace(src, k+1)
			lit, next, ok = readStringLiteral(src, k)
			if !ok {
				break
			}
			next = skipSpace(src, next)
			if next >= len(src) || src[next] != ')' {
				break
			}
			next++
		} else {
			lit, next, ok = readStringLiteral(src, j)
			if !ok {
				break
			}
		}
		operands = append(operands, lit)
		j = skipSpace(src, next)
		if j < len(src) && src[j] == ',' {
			j = skipSpace(src, j+1)
			continue
		}
		break
	}
	if len(operands) == 0 {
		return nil, i, false
	}
	return operands, j, true
}

// normalizeCSSSpecifier rewrites a bare CSS specifier (no leading "./" or
// "../") to a "./"-prefixed one so relative resolution succeeds. This does
// not attempt to distinguish true CSS package imports; see DESIGN.md.
func normalizeCSSSpecifier(s string) string {
	if strings.HasPrefix(s, "./") || strings.HasPrefix(s, "../") {
		return s
	}
	return "./" + s
}

// hasKeywordAt reports whether src[i:] begins with keyword as a standalone
// token (not a prefix of a longer identifier).
func hasKeywordAt(src string, i int, keyword string) bool {
	if i+len(keyword) > len(src) {
		return false
	}
	if src[i:i+len(keyword)] != keyword {
		return false
	}
	if i > 0 && isIdentByte(src[i-1]) {
		return false
	}
	end := i + len(keyword)
	if end < len(src) && isIdentByte(src[end]) {
		return false
	}
	return true
}

func isIdentByte(b byte) bool {
	return b == '_' || b == '$' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func skipSpace(src string, i int) int {
	for i < len(src) && (src[i] == ' ' || src[i] == '\t' || src[i] == '\n' || src[i] == '\r') {
		i++
	}
	return i
}

// readStringLiteral reads a single- or double-quoted string literal starting
// at i. A half-open literal (no closing quote before EOF or newline) is not
// a match at all, per spec.
func readStringLiteral(src string, i int) (string, int, bool) {
	if i >= len(src) || (src[i] != '"' && src[i] != '\'') {
		return "", i, false
	}
	quote := src[i]
	j := i + 1
	for j < len(src) {
		if src[j] == quote {
			return src[i+1 : j], j + 1, true
		}
		if src[j] == '\n' {
			return "", i, false
		}
		j++
	}
	return "", i, false
}
