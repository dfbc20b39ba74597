package git

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

var (
	ErrDirty         = errors.New("file has uncommitted changes")
	ErrStagedChanges = errors.New("other paths are already staged")
)

// Repo is the repository that tracks one file.
type Repo struct {
	repo   *git.Repository
	root   string
	path   string
	client *Client
}

// Open finds the repository enclosing path by walking up to the nearest
// .git directory.
func (c *Client) Open(path string) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	abs, err = filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, err
	}

	repo, err := git.PlainOpenWithOptions(filepath.Dir(abs), &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("error opening repository for %s: %w", path, err)
	}
	w, err := repo.Worktree()
	if err != nil {
		return nil, err
	}
	root := w.Filesystem.Root()
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return nil, err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("%s is outside the worktree %s", path, root)
	}
	c.a.Debugf("%s is %s in repository %s", path, rel, root)

	return &Repo{
		repo:   repo,
		root:   root,
		path:   filepath.ToSlash(rel),
		client: c,
	}, nil
}

func (r *Repo) Root() string { return r.root }

// Path is the file's slash-separated path relative to the worktree root.
func (r *Repo) Path() string { return r.path }

// IsClean reports whether the file is tracked and matches HEAD in both the
// index and the worktree.
func (r *Repo) IsClean() (bool, error) {
	w, err := r.repo.Worktree()
	if err != nil {
		return false, err
	}
	s, err := w.Status()
	if err != nil {
		return false, err
	}
	// clean tracked files are absent from the status map
	fs, ok := s[r.path]
	if !ok {
		return true, nil
	}
	return fs.Staging == git.Unmodified && fs.Worktree == git.Unmodified, nil
}

// Commit stages the file and commits it on its own.
// It returns the new commit hash and whether there was a change to commit.
func (r *Repo) Commit(commitMessage string) (plumbing.Hash, bool, error) {
	w, err := r.repo.Worktree()
	if err != nil {
		return plumbing.ZeroHash, false, err
	}

	s, err := w.Status()
	if err != nil {
		return plumbing.ZeroHash, false, err
	}
	for p, fs := range s {
		if p == r.path {
			continue
		}
		if fs.Staging != git.Unmodified && fs.Staging != git.Untracked {
			return plumbing.ZeroHash, false, fmt.Errorf("%w: %s", ErrStagedChanges, p)
		}
	}

	_, err = w.Add(r.path)
	if err != nil {
		return plumbing.ZeroHash, false, err
	}

	s, err = w.Status()
	if err != nil {
		return plumbing.ZeroHash, false, err
	}
	fs, ok := s[r.path]
	if !ok || fs.Staging == git.Unmodified {
		return plumbing.ZeroHash, false, nil
	}

	hash, err := w.Commit(commitMessage, &git.CommitOptions{
		Author: &object.Signature{
			Name:  r.client.authorName,
			Email: r.client.authorEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return plumbing.ZeroHash, false, err
	}
	return hash, true, nil
}
