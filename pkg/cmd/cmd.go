// Package cmd provides the gitpick subcommands.
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/renatogalera/gitpick/pkg/config"
	"github.com/renatogalera/gitpick/pkg/git"
)

// SetupFunc prepares what every subcommand needs: a context cancelled on
// interrupt and the validated configuration. It is passed in from main so the
// persistent flags are already parsed when it runs.
type SetupFunc func() (context.Context, context.CancelFunc, *config.Config, error)

// repoRelative rewrites paths given relative to the current directory so
// they are relative to the repository root, which is where git runs.
func repoRelative(root string, paths []string) ([]string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		abs := p
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(cwd, p)
		}
		rel, err := filepath.Rel(root, abs)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil, fmt.Errorf("%s is outside the repository", p)
		}
		out = append(out, filepath.ToSlash(rel))
	}
	return out, nil
}

func openRepo() (*git.Repo, error) {
	root, err := git.RepoRoot(".")
	if err != nil {
		return nil, err
	}
	return git.NewRepo(root), nil
}

func firstLine(msg string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(msg), "\n")
	return strings.TrimSpace(line)
}
