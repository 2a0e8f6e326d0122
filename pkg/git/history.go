package git

import (
	"errors"
	"fmt"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// ListCommits retrieves all commits reachable from HEAD, newest first.
func ListCommits(repo *gogit.Repository) ([]*object.Commit, error) {
	return CommitsSince(repo, "")
}

// CommitsSince returns the commits reachable from HEAD up to, but not
// including, rev. An empty rev walks the whole history.
func CommitsSince(repo *gogit.Repository, rev string) ([]*object.Commit, error) {
	headRef, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("cannot find HEAD: %w", err)
	}

	var stop plumbing.Hash
	if rev != "" {
		h, err := repo.ResolveRevision(plumbing.Revision(rev))
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", rev, err)
		}
		stop = *h
	}

	commitIter, err := repo.Log(&gogit.LogOptions{From: headRef.Hash()})
	if err != nil {
		return nil, fmt.Errorf("failed to get commit log: %w", err)
	}
	defer commitIter.Close()

	var commits []*object.Commit
	err = commitIter.ForEach(func(c *object.Commit) error {
		if !stop.IsZero() && c.Hash == stop {
			return storer.ErrStop
		}
		commits = append(commits, c)
		return nil
	})
	if err != nil && !errors.Is(err, storer.ErrStop) {
		return nil, fmt.Errorf("unable to iterate commits: %w", err)
	}
	return commits, nil
}

// CommitPatch returns the unified diff a commit introduced against its first
// parent, or against the empty tree for a root commit.
func CommitPatch(commit *object.Commit) (string, error) {
	if commit.NumParents() == 0 {
		tree, err := commit.Tree()
		if err != nil {
			return "", err
		}
		patch, err := (&object.Tree{}).Patch(tree)
		if err != nil {
			return "", err
		}
		return patch.String(), nil
	}

	parent, err := commit.Parent(0)
	if err != nil {
		return "", err
	}
	patch, err := parent.Patch(commit)
	if err != nil {
		return "", err
	}
	return patch.String(), nil
}
