package git

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// validateRoot validates and normalizes a git repository root path.
// Returns the cleaned absolute path or an error if invalid.
func validateRoot(root string) (string, error) {
	if strings.ContainsRune(root, 0) {
		return "", fmt.Errorf("invalid path: contains null byte")
	}
	abs, err := filepath.Abs(filepath.Clean(root))
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("cannot access path %q: %w", root, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("path is not a directory: %s", root)
	}
	return abs, nil
}

func open(root string) (*gogit.Repository, error) {
	validRoot, err := validateRoot(root)
	if err != nil {
		return nil, err
	}
	repo, err := gogit.PlainOpenWithOptions(validRoot, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository %s: %w", root, err)
	}
	return repo, nil
}

// ListRevision emits every file path in the tree of rev (a branch, tag or
// commit-ish such as "HEAD~2") without touching the working tree.
func ListRevision(root, rev string, emit func(path string)) error {
	repo, err := open(root)
	if err != nil {
		return err
	}
	if rev == "" {
		rev = "HEAD"
	}
	hash, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return fmt.Errorf("resolve %q: %w", rev, err)
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return fmt.Errorf("commit %s: %w", hash, err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return fmt.Errorf("tree of %s: %w", hash, err)
	}
	return tree.Files().ForEach(func(f *object.File) error {
		emit(f.Name)
		return nil
	})
}

// RepoMetadata returns (repo, commit, branch) best-effort for the given root.
// Empty strings are returned on failure.
func RepoMetadata(root string) (string, string, string) {
	r, err := open(root)
	if err != nil {
		return "", "", ""
	}
	repo := ""
	if rem, err := r.Remote("origin"); err == nil && len(rem.Config().URLs) > 0 {
		repo = shortRemote(rem.Config().URLs[0])
	}
	commit, branch := "", ""
	head, err := r.Head()
	if err != nil && !errors.Is(err, plumbing.ErrReferenceNotFound) {
		return repo, "", ""
	}
	if head != nil {
		commit = head.Hash().String()
		if head.Name().IsBranch() {
			branch = head.Name().Short()
		}
	}
	return repo, commit, branch
}

// shortRemote keeps owner/name when possible.
func shortRemote(u string) string {
	s := strings.TrimSuffix(strings.TrimSpace(u), ".git")
	if i := strings.Index(s, "github.com/"); i >= 0 {
		return s[i+len("github.com/"):]
	}
	if i := strings.LastIndex(s, ":"); i >= 0 && !strings.Contains(s[i:], "//") {
		s = s[i+1:]
	}
	return s
}
