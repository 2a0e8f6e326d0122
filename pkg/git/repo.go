package git

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"
)

// DiffOptions selects what "git diff" compares and how it prints it.
type DiffOptions struct {
	// Revisions holds zero, one or two branches or commits.
	Revisions []string
	// Paths limits the diff to these files or directories.
	Paths []string
	// Cached compares the index instead of the working tree.
	Cached bool

	ContextLines      int
	IgnoreAllSpace    bool
	IgnoreSpaceChange bool
	IgnoreBlankLines  bool
}

// Args returns the "git diff" arguments for the options.
func (o DiffOptions) Args() []string {
	args := []string{"diff", "--no-color", "--no-ext-diff"}
	if o.Cached {
		args = append(args, "--cached")
	}
	if o.ContextLines > 0 {
		args = append(args, fmt.Sprintf("-U%d", o.ContextLines))
	}
	if o.IgnoreAllSpace {
		args = append(args, "--ignore-all-space")
	}
	if o.IgnoreSpaceChange {
		args = append(args, "--ignore-space-change")
	}
	if o.IgnoreBlankLines {
		args = append(args, "--ignore-blank-lines")
	}
	args = append(args, o.Revisions...)
	args = append(args, "--")
	return append(args, o.Paths...)
}

// Repo runs git commands against a working tree. It is the piece of the
// selection flow that touches the repository: diff, checkout, apply and add.
type Repo struct {
	dir string
}

// NewRepo returns a Repo rooted at dir.
func NewRepo(dir string) *Repo {
	return &Repo{dir: dir}
}

// Dir returns the working tree root.
func (r *Repo) Dir() string {
	return r.dir
}

// Diff returns raw unified diff text.
func (r *Repo) Diff(ctx context.Context, opts DiffOptions) (string, error) {
	out, err := r.run(ctx, opts.Args()...)
	if err != nil {
		return "", fmt.Errorf("failed to get diff: %w", err)
	}
	return out, nil
}

// RevertFile drops the unstaged changes of name.
func (r *Repo) RevertFile(ctx context.Context, name string) error {
	if _, err := r.run(ctx, "checkout", "--", name); err != nil {
		return fmt.Errorf("failed to revert %s: %w", name, err)
	}
	return nil
}

// ApplyPatch applies the patch file at path to the working tree.
func (r *Repo) ApplyPatch(ctx context.Context, path string) error {
	if _, err := r.run(ctx, "apply", "--whitespace=nowarn", path); err != nil {
		return fmt.Errorf("failed to apply %s: %w", path, err)
	}
	return nil
}

// StageFile adds name to the index.
func (r *Repo) StageFile(ctx context.Context, name string) error {
	if _, err := r.run(ctx, "add", "--", name); err != nil {
		return fmt.Errorf("failed to stage %s: %w", name, err)
	}
	return nil
}

func (r *Repo) run(ctx context.Context, args ...string) (string, error) {
	log.Debug().Strs("args", args).Str("dir", r.dir).Msg("git")
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.dir
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("git %s: %w: %s", args[0], err, msg)
		}
		return "", fmt.Errorf("git %s: %w", args[0], err)
	}
	return string(out), nil
}
