package scan

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// Walk traverses the tree under root and hands the slash-separated relative
// path of every file to emit. Nothing is opened or read. Returning false from
// emit stops the walk.
func Walk(root string, defaultExcludes bool, emit func(rel string) bool) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// unreadable subtrees are skipped, a missing root is not
			if p == root {
				return err
			}
			return nil
		}
		if d.IsDir() {
			if p != root && defaultExcludes && isDefaultDirExcluded(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if defaultExcludes && isDefaultFileExcluded(strings.ToLower(rel)) {
			return nil
		}
		if !emit(rel) {
			return fs.SkipAll
		}
		return nil
	})
}
