// Package cache provides the content fingerprinter and the JSON stage
// cache that lets the judging pipeline skip redundant analysis work.
package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"io/fs"
	"path/filepath"
	"strconv"
)

// Directory names that never contribute to a fingerprint, typically build
// caches and tooling artifacts.
var ignoredDirectories = map[string]struct{}{
	"__pycache__":  {},
	".git":         {},
	"node_modules": {},
	"__MACOSX":     {},
}

// File suffixes that never contribute to a fingerprint: compiled
// artifacts, logs, and temp files.
var ignoredSuffixes = map[string]struct{}{
	".pyc": {},
	".pyo": {},
	".log": {},
	".tmp": {},
}

// DirectoryFingerprint computes a deterministic digest over the files
// under root. Files are visited in lexicographic path order; for each
// contributing file the path relative to root, the modification time in
// nanoseconds, and the byte size are folded into a SHA-1 digest.
//
// When includeSuffixes is non-empty, only files whose suffix appears in it
// contribute. Unreadable files are silently skipped rather than aborting
// the traversal.
//
// The digest is identical across runs iff the set of included files, their
// relative paths, sizes, and modification times are unchanged. A file
// rewritten with identical size on a filesystem with coarse mtime
// resolution can produce a false negative; no invariant is claimed
// against that.
func DirectoryFingerprint(root string, includeSuffixes []string) (string, error) {
	include := make(map[string]struct{}, len(includeSuffixes))
	for _, s := range includeSuffixes {
		include[s] = struct{}{}
	}

	digest := sha1.New()

	// WalkDir visits entries in lexical order, which keeps the digest
	// stable across runs and platforms.
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if entry != nil && entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if entry.IsDir() {
			if _, skip := ignoredDirectories[entry.Name()]; skip {
				return fs.SkipDir
			}
			return nil
		}

		suffix := filepath.Ext(path)
		if len(include) > 0 {
			if _, ok := include[suffix]; !ok {
				return nil
			}
		}
		if _, skip := ignoredSuffixes[suffix]; skip {
			return nil
		}

		info, statErr := entry.Info()
		if statErr != nil {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}

		digest.Write([]byte(filepath.ToSlash(rel)))
		digest.Write([]byte(strconv.FormatInt(info.ModTime().UnixNano(), 10)))
		digest.Write([]byte(strconv.FormatInt(info.Size(), 10)))
		return nil
	})
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(digest.Sum(nil)), nil
}
