package git

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Author is the signature used for commits created by gitpick.
type Author struct {
	Name  string
	Email string
}

// OpenRepository opens the repository containing dir, walking up to the
// nearest .git directory.
func OpenRepository(dir string) (*gogit.Repository, error) {
	repo, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}
	return repo, nil
}

// RepoRoot returns the working tree root of the repository containing dir.
func RepoRoot(dir string) (string, error) {
	repo, err := OpenRepository(dir)
	if err != nil {
		return "", err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to get worktree: %w", err)
	}
	return wt.Filesystem.Root(), nil
}

// CheckGitRepository verifies if the current folder is inside a Git repository.
func CheckGitRepository(ctx context.Context) bool {
	_, err := OpenRepository(".")
	return err == nil
}

// GetHeadCommitMessage retrieves the last commit message on HEAD.
func GetHeadCommitMessage(ctx context.Context) (string, error) {
	repo, err := OpenRepository(".")
	if err != nil {
		return "", err
	}
	headRef, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD reference: %w", err)
	}
	commit, err := repo.CommitObject(headRef.Hash())
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD commit: %w", err)
	}
	return strings.TrimSpace(commit.Message), nil
}

// GetCurrentBranch returns the current branch name.
func GetCurrentBranch(ctx context.Context) (string, error) {
	repo, err := OpenRepository(".")
	if err != nil {
		return "", err
	}
	headRef, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD reference: %w", err)
	}
	return headRef.Name().Short(), nil
}

// HasStagedChanges reports whether the index differs from HEAD.
func HasStagedChanges(ctx context.Context) (bool, error) {
	repo, err := OpenRepository(".")
	if err != nil {
		return false, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("failed to get worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("failed to get worktree status: %w", err)
	}
	for _, fs := range status {
		if fs.Staging != gogit.Unmodified && fs.Staging != gogit.Untracked {
			return true, nil
		}
	}
	return false, nil
}

// CommitChanges commits the index with the provided message.
func CommitChanges(ctx context.Context, commitMessage string, author Author) error {
	repo, err := OpenRepository(".")
	if err != nil {
		return err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}
	opts := &gogit.CommitOptions{}
	// Without a configured author go-git falls back to user.name/user.email.
	if author.Name != "" {
		opts.Author = &object.Signature{
			Name:  author.Name,
			Email: author.Email,
			When:  time.Now(),
		}
	}
	_, err = wt.Commit(commitMessage, opts)
	if err != nil {
		return fmt.Errorf("failed to commit changes: %w", err)
	}
	return nil
}

// FilterLockFiles drops files whose base name matches one of lockFiles
// (shell patterns such as "go.sum" or "*.lock"). It returns the kept files and
// the names that were dropped.
func FilterLockFiles(files []*FileDiff, lockFiles []string) ([]*FileDiff, []string) {
	var kept []*FileDiff
	var skipped []string
	for _, fd := range files {
		if isLockFile(fd.FileName, lockFiles) {
			skipped = append(skipped, fd.FileName)
			continue
		}
		kept = append(kept, fd)
	}
	return kept, skipped
}

func isLockFile(name string, lockFiles []string) bool {
	base := path.Base(name)
	for _, lf := range lockFiles {
		if ok, _ := path.Match(lf, base); ok {
			return true
		}
	}
	return false
}
