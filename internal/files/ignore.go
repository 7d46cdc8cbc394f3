package files

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"
)

// AppendIgnore ensures each pattern is present in .gitignore at repoRoot.
// It creates the file if missing and terminates a dangling last line first.
// Idempotent. Returns the patterns actually added.
func AppendIgnore(repoRoot string, patterns ...string) ([]string, error) {
	path := filepath.Join(repoRoot, ".gitignore")
	existing := map[string]bool{}
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		existing[strings.TrimSpace(sc.Text())] = true
	}

	var add []string
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" || existing[p] {
			continue
		}
		existing[p] = true
		add = append(add, p)
	}
	if len(add) == 0 {
		return nil, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var b strings.Builder
	if len(data) > 0 && data[len(data)-1] != '\n' {
		b.WriteByte('\n')
	}
	for _, p := range add {
		b.WriteString(p)
		b.WriteByte('\n')
	}
	if _, err := f.WriteString(b.String()); err != nil {
		return nil, err
	}
	return add, nil
}

// ToolArtifacts returns the files enginesniff may write into a project root
// that has no .git directory.
func ToolArtifacts() []string {
	return []string{
		".enginesniffcache.json",
		".enginesniff_audit.jsonl",
	}
}
