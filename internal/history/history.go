// Package history records destructive vault edits as git commits so a
// removed tag can be recovered with ordinary git tooling.
package history

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Author identifies the committer of history entries.
type Author struct {
	Name  string
	Email string
}

// Repository wraps a git repository rooted at the vault directory.
type Repository struct {
	root   string
	repo   *git.Repository
	author Author
}

// Open opens the git repository at root, initialising one if none exists.
func Open(root string, author Author) (*Repository, error) {
	repo, err := git.PlainOpen(root)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		if err := os.MkdirAll(root, 0o755); err != nil {
			return nil, fmt.Errorf("history: create root: %w", err)
		}
		repo, err = git.PlainInit(root, false)
	}
	if err != nil {
		return nil, fmt.Errorf("history: open repository: %w", err)
	}
	return &Repository{root: root, repo: repo, author: author}, nil
}

// Commit stages paths (relative to the vault root) and commits them with
// message. It returns the new commit hash, or "" when the paths carry no
// changes.
func (r *Repository) Commit(paths []string, message string) (string, error) {
	if len(paths) == 0 {
		return "", nil
	}
	worktree, err := r.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("history: worktree: %w", err)
	}
	for _, p := range paths {
		if _, err := worktree.Add(filepath.ToSlash(p)); err != nil {
			return "", fmt.Errorf("history: add %s: %w", p, err)
		}
	}

	status, err := worktree.Status()
	if err != nil {
		return "", fmt.Errorf("history: status: %w", err)
	}
	staged := false
	for _, s := range status {
		if s.Staging != git.Unmodified && s.Staging != git.Untracked {
			staged = true
			break
		}
	}
	if !staged {
		return "", nil
	}

	hash, err := worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  r.author.Name,
			Email: r.author.Email,
			When:  time.Now(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("history: commit: %w", err)
	}
	return hash.String(), nil
}

// Snapshot commits every vault file that differs from HEAD. It is used to
// record the state before a destructive edit so the edit commit shows only
// what the edit changed.
func (r *Repository) Snapshot(message string) (string, error) {
	worktree, err := r.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("history: worktree: %w", err)
	}
	if err := worktree.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return "", fmt.Errorf("history: stage all: %w", err)
	}
	status, err := worktree.Status()
	if err != nil {
		return "", fmt.Errorf("history: status: %w", err)
	}
	if status.IsClean() {
		return "", nil
	}
	hash, err := worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{Name: r.author.Name, Email: r.author.Email, When: time.Now()},
	})
	if err != nil {
		return "", fmt.Errorf("history: commit: %w", err)
	}
	return hash.String(), nil
}

// Log returns the messages of the most recent commits, newest first.
func (r *Repository) Log(limit int) ([]string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("history: head: %w", err)
	}
	iter, err := r.repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return nil, fmt.Errorf("history: log: %w", err)
	}
	defer iter.Close()

	var out []string
	for len(out) < limit {
		c, err := iter.Next()
		if err != nil {
			break
		}
		out = append(out, c.Message)
	}
	return out, nil
}
