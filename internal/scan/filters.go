package scan

import (
	"path"
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"
)

// Tooling and VCS directories never carry engine evidence. Build output
// directories are kept since exported games live there.
var defaultExcludeDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
	".venv":        true,
	"venv":         true,
	"__pycache__":  true,
	".idea":        true,
	".vscode":      true,
}

// OS cruft
var defaultExcludeFileNames = map[string]bool{
	".ds_store":   true,
	"thumbs.db":   true,
	"desktop.ini": true,
}

func isDefaultDirExcluded(name string) bool {
	return defaultExcludeDirs[name]
}

func isDefaultFileExcluded(lowerRel string) bool {
	return defaultExcludeFileNames[path.Base(lowerRel)]
}

// underExcludedDir reports whether any leading segment of rel is a default
// exclude directory. Used for sources that are not walked directory by directory.
func underExcludedDir(rel string) bool {
	segs := strings.Split(rel, "/")
	for _, s := range segs[:len(segs)-1] {
		if isDefaultDirExcluded(s) {
			return true
		}
	}
	return false
}

type globs struct {
	include []string
	exclude []string
}

func newGlobs(include, exclude string) globs {
	return globs{include: parseGlobsList(include), exclude: parseGlobsList(exclude)}
}

func (g globs) allowed(relPath string) bool {
	rp := strings.ReplaceAll(relPath, "\\", "/")
	if len(g.include) > 0 && !matchAnyGlob(rp, g.include) {
		return false
	}
	if len(g.exclude) > 0 && matchAnyGlob(rp, g.exclude) {
		return false
	}
	return true
}

func parseGlobsList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
			if t := trimGlobPrefix(p); t != p {
				out = append(out, t)
			}
		}
	}
	return out
}

func matchAnyGlob(pathToMatch string, globs []string) bool {
	base := path.Base(pathToMatch)
	for _, g := range globs {
		if ok, _ := doublestar.Match(g, pathToMatch); ok {
			return true
		}
		if ok, _ := doublestar.Match(g, base); ok {
			return true
		}
	}
	return false
}

func trimGlobPrefix(g string) string {
	s := strings.TrimPrefix(g, "./")
	for strings.HasPrefix(s, "**/") {
		s = strings.TrimPrefix(s, "**/")
	}
	return s
}
