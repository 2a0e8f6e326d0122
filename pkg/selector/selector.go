// Package selector walks the hunks of each changed file, asks the operator
// which ones to keep, and replays the answer onto the index and working tree:
// accepted hunks end up staged, rejected hunks stay as unstaged changes.
package selector

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/renatogalera/gitpick/pkg/git"
	"github.com/renatogalera/gitpick/pkg/patchcache"
)

var (
	// ErrAborted is returned when the operator stops the selection.
	ErrAborted = errors.New("selection aborted")
	// ErrRecoveryFailed is returned when neither the accepted patch nor the
	// original patch could be applied after the file was reverted.
	ErrRecoveryFailed = errors.New("failed to restore original changes")
)

// Applier is the set of repository mutations the selection needs.
type Applier interface {
	RevertFile(ctx context.Context, name string) error
	ApplyPatch(ctx context.Context, path string) error
	StageFile(ctx context.Context, name string) error
}

// HunkPrompt is what the operator sees for one decision.
type HunkPrompt struct {
	FileName string
	Index    int
	Total    int
	Hunk     string
	Stats    git.Stats
}

// Prompter asks for an accept (true) or reject (false) decision. Returning an
// error stops the selection; ErrAborted marks an operator abort.
type Prompter interface {
	Confirm(ctx context.Context, p HunkPrompt) (bool, error)
}

// PrompterFunc adapts a function to Prompter.
type PrompterFunc func(ctx context.Context, p HunkPrompt) (bool, error)

func (f PrompterFunc) Confirm(ctx context.Context, p HunkPrompt) (bool, error) {
	return f(ctx, p)
}

// Outcome is how a file left the selection.
type Outcome int

const (
	// OutcomeSkipped means no hunk was accepted and nothing was touched.
	OutcomeSkipped Outcome = iota
	// OutcomeStaged means the accepted hunks are staged and the rejected
	// hunks are back in the working tree.
	OutcomeStaged
	// OutcomeRecovered means the accepted hunks did not apply and the file
	// was restored to its original changes.
	OutcomeRecovered
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeStaged:
		return "staged"
	case OutcomeRecovered:
		return "recovered"
	}
	return "unknown"
}

// FileResult records what happened to one file.
type FileResult struct {
	FileName string
	Outcome  Outcome
	Accepted int
	Ignored  int
	// Hash is the patch cache entry used for the file, empty when skipped.
	Hash string
	// ApplyErr holds the failure of the accepted patch for OutcomeRecovered.
	ApplyErr error
}

// Report collects the results of a run in processing order.
type Report struct {
	Files []FileResult
}

// Count returns how many files ended with outcome o.
func (r Report) Count(o Outcome) int {
	n := 0
	for _, f := range r.Files {
		if f.Outcome == o {
			n++
		}
	}
	return n
}

// Selector drives the per-file selection. Files are processed one at a time
// because every step depends on the working tree left by the previous one.
type Selector struct {
	repo     Applier
	prompter Prompter
	cache    *patchcache.Cache
}

// New returns a Selector.
func New(repo Applier, prompter Prompter, cache *patchcache.Cache) *Selector {
	return &Selector{
		repo:     repo,
		prompter: prompter,
		cache:    cache,
	}
}

// Run processes files in order. It stops at the first error; files already
// processed keep their result and appear in the returned report.
func (s *Selector) Run(ctx context.Context, files []*git.FileDiff) (Report, error) {
	var report Report
	for _, fd := range files {
		res, err := s.ProcessFile(ctx, fd)
		if err != nil {
			return report, err
		}
		report.Files = append(report.Files, res)
	}
	return report, nil
}

// ProcessFile classifies every hunk of fd and, if any was accepted, stages
// exactly the accepted hunks while leaving the rejected ones unstaged.
func (s *Selector) ProcessFile(ctx context.Context, fd *git.FileDiff) (FileResult, error) {
	res := FileResult{FileName: fd.FileName}
	if err := s.classify(ctx, fd); err != nil {
		return res, err
	}
	res.Accepted = len(fd.Accepted())
	res.Ignored = len(fd.Ignored())

	accepted, ok := fd.AcceptedPatch()
	if !ok {
		log.Debug().Str("file", fd.FileName).Msg("No hunks accepted, skipping file")
		return res, nil
	}
	total, _ := fd.TotalPatch()
	ignored, _ := fd.IgnoredPatch()

	hash, err := s.cache.Create(fd.FileName, total, accepted, ignored)
	if err != nil {
		return res, fmt.Errorf("failed to cache patches for %s: %w", fd.FileName, err)
	}
	res.Hash = hash
	entry, _ := s.cache.Lookup(hash)
	logger := log.With().Str("file", fd.FileName).Str("hash", hash).Logger()

	if err := s.repo.RevertFile(ctx, fd.FileName); err != nil {
		return res, keepPatches(entry, err)
	}

	if err := s.repo.ApplyPatch(ctx, entry.Accepted.Path); err != nil {
		logger.Warn().Err(err).Str("patch", entry.Accepted.Path).
			Msg("Accepted hunks did not apply, restoring original changes")
		if rerr := s.repo.ApplyPatch(ctx, entry.Original.Path); rerr != nil {
			return res, keepPatches(entry, fmt.Errorf("%w for %s: %w", ErrRecoveryFailed, fd.FileName, rerr))
		}
		res.Outcome = OutcomeRecovered
		res.ApplyErr = err
		return res, s.clear(hash)
	}

	if err := s.repo.StageFile(ctx, fd.FileName); err != nil {
		return res, keepPatches(entry, err)
	}

	if entry.Ignored != nil {
		if err := s.repo.ApplyPatch(ctx, entry.Ignored.Path); err != nil {
			return res, keepPatches(entry, fmt.Errorf("failed to restore rejected hunks of %s: %w", fd.FileName, err))
		}
	}

	logger.Debug().Int("accepted", res.Accepted).Int("ignored", res.Ignored).Msg("Staged accepted hunks")
	res.Outcome = OutcomeStaged
	return res, s.clear(hash)
}

// classify asks for every hunk in order; hunk i+1 is only shown once the
// answer for hunk i is recorded.
func (s *Selector) classify(ctx context.Context, fd *git.FileDiff) error {
	for i, hunk := range fd.Hunks {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrAborted, err)
		}
		stats, err := git.HunkStats(fd, i)
		if err != nil {
			log.Debug().Err(err).Str("file", fd.FileName).Int("hunk", i).Msg("Could not count hunk lines")
		}
		accept, err := s.prompter.Confirm(ctx, HunkPrompt{
			FileName: fd.FileName,
			Index:    i,
			Total:    len(fd.Hunks),
			Hunk:     hunk,
			Stats:    stats,
		})
		if err != nil {
			return fmt.Errorf("classifying %s: %w", fd.FileName, err)
		}
		if accept {
			err = fd.Accept(i)
		} else {
			err = fd.Ignore(i)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Selector) clear(hash string) error {
	if _, err := s.cache.Clear(hash); err != nil {
		return fmt.Errorf("failed to clear patches %s: %w", hash, err)
	}
	return nil
}

// keepPatches leaves the scratch files in place so the operator can recover
// the file by hand, and names them in the error.
func keepPatches(entry patchcache.Entry, err error) error {
	return fmt.Errorf("%w (patches kept: %s)", err, strings.Join(entry.Paths(), ", "))
}
