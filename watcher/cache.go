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
	"hash/crc32"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Absent is the fingerprint cache sentinel meaning "file was known to be
// absent at the last poll" (spec §3). A CRC32 cast into signed 64-bit space
// never produces -1, which is exactly why a signed integer was chosen for
// the cache's value type.
const Absent int64 = -1

// Checksum computes the fast content fingerprint used to detect
// modifications: a CRC32 (IEEE) of the bytes, widened to int64. Equal bytes
// always give equal output; this is the only property stateOf relies on.
func Checksum(content []byte) int64 {
	return int64(crc32.ChecksumIEEE(content))
}

// checksumFileName is the fixed file name within a watcher's cache
// directory (spec §6: "<cacheDir>/checksums").
const checksumFileName = "checksums"

// loadFingerprintCache reads cacheDir/checksums into a path -> checksum map.
// A missing or unreadable cache file is non-fatal: it is treated as an
// empty cache (spec §7, "IO — cache").
func loadFingerprintCache(cacheDir string) map[string]int64 {
	cache := make(map[string]int64)
	data, err := os.ReadFile(filepath.Join(cacheDir, checksumFileName))
	if err != nil {
		return cache
	}
	for _, line := range strings.Split(string(data), "\n") {
		if line == "" {
			continue
		}
		sep := strings.LastIndex(line, " ")
		if sep < 0 {
			continue
		}
		path := line[:sep]
		value, err := strconv.ParseInt(line[sep+1:], 10, 64)
		if err != nil {
			continue
		}
		cache[path] = value
	}
	return cache
}

// saveFingerprintCache fully rewrites cacheDir/checksums from cache, one
// "<absolute path> <signed 64-bit checksum>" record per line, no trailing
// newline, matching spec §6's file format exactly. The whole file is
// rewritten per call so readers never observe a partial write.
func saveFingerprintCache(cacheDir string, cache map[string]int64) error {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return err
	}
	lines := make([]string, 0, len(cache))
	for path, value := range cache {
		lines = append(lines, path+" "+strconv.FormatInt(value, 10))
	}
	return os.WriteFile(filepath.Join(cacheDir, checksumFileName), []byte(strings.Join(lines, "\n")), 0o644)
}
