package ignore

import (
	"bufio"
	"os"
	"path"
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"
)

// Matcher holds gitignore-style patterns loaded from an ignore file.
type Matcher struct {
	patterns []pattern
}

type pattern struct {
	glob string
	dir  bool
}

// Load reads patterns from path. A missing file yields an empty matcher and
// the open error, so callers may ignore the error.
func Load(p string) (Matcher, error) {
	var m Matcher
	f, err := os.Open(p)
	if err != nil {
		return m, err
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		m.Add(sc.Text())
	}
	return m, sc.Err()
}

// Add appends one pattern line. Blank lines and comments are skipped.
func (m *Matcher) Add(line string) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}
	dir := strings.HasSuffix(line, "/")
	line = strings.TrimPrefix(strings.TrimSuffix(line, "/"), "/")
	if line == "" {
		return
	}
	m.patterns = append(m.patterns, pattern{glob: line, dir: dir})
}

// Len returns the number of patterns.
func (m Matcher) Len() int { return len(m.patterns) }

// Match reports whether rel (slash or backslash separated) is ignored.
func (m Matcher) Match(rel string) bool {
	if len(m.patterns) == 0 {
		return false
	}
	rel = strings.TrimPrefix(strings.ReplaceAll(rel, "\\", "/"), "./")
	base := path.Base(rel)
	segs := strings.Split(rel, "/")
	for _, p := range m.patterns {
		if p.dir {
			// directory pattern: any leading directory chain matches
			for i := 1; i < len(segs); i++ {
				prefix := strings.Join(segs[:i], "/")
				if ok, _ := doublestar.Match(p.glob, prefix); ok {
					return true
				}
				if ok, _ := doublestar.Match(p.glob, segs[i-1]); ok {
					return true
				}
			}
			continue
		}
		if ok, _ := doublestar.Match(p.glob, rel); ok {
			return true
		}
		if !strings.Contains(p.glob, "/") {
			if ok, _ := doublestar.Match(p.glob, base); ok {
				return true
			}
		}
	}
	return false
}
