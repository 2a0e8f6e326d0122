package selector

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renatogalera/gitpick/pkg/git"
	"github.com/renatogalera/gitpick/pkg/patchcache"
)

// memRepo keeps index and working tree contents in memory and applies
// patches with go-gitdiff, which refuses any hunk that does not match.
type memRepo struct {
	index map[string]string
	work  map[string]string
	// failApply makes ApplyPatch fail for matching patch paths.
	failApply func(path string) bool
	calls     []string
}

func newMemRepo() *memRepo {
	return &memRepo{index: map[string]string{}, work: map[string]string{}}
}

func (r *memRepo) RevertFile(_ context.Context, name string) error {
	r.calls = append(r.calls, "revert "+name)
	r.work[name] = r.index[name]
	return nil
}

func (r *memRepo) StageFile(_ context.Context, name string) error {
	r.calls = append(r.calls, "stage "+name)
	r.index[name] = r.work[name]
	return nil
}

func (r *memRepo) ApplyPatch(_ context.Context, path string) error {
	r.calls = append(r.calls, "apply "+path[strings.LastIndex(path, "-"):])
	if r.failApply != nil && r.failApply(path) {
		return errors.New("patch does not apply")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	files, _, err := gitdiff.Parse(bytes.NewReader(data))
	if err != nil {
		return err
	}
	for _, f := range files {
		var out bytes.Buffer
		if err := gitdiff.Apply(&out, strings.NewReader(r.work[f.NewName]), f); err != nil {
			return err
		}
		r.work[f.NewName] = out.String()
	}
	return nil
}

// answers replies to hunks in order, failing the test on extra prompts.
func answers(t *testing.T, replies ...bool) (Prompter, *[]HunkPrompt) {
	t.Helper()
	var seen []HunkPrompt
	return PrompterFunc(func(_ context.Context, p HunkPrompt) (bool, error) {
		seen = append(seen, p)
		require.LessOrEqual(t, len(seen), len(replies), "unexpected prompt for %s hunk %d", p.FileName, p.Index)
		return replies[len(seen)-1], nil
	}), &seen
}

func numbered(n int, upper ...int) string {
	var sb strings.Builder
	for i := 1; i <= n; i++ {
		line := fmt.Sprintf("line%02d", i)
		for _, u := range upper {
			if u == i {
				line = strings.ToUpper(line)
			}
		}
		sb.WriteString(line + "\n")
	}
	return sb.String()
}

// changeDiff builds the "git diff" text for uppercasing the given lines of a
// numbered file of n lines, one hunk per line with three lines of context.
func changeDiff(name string, n int, changed ...int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "diff --git a/%s b/%s\n", name, name)
	sb.WriteString("index 1111111..2222222 100644\n")
	fmt.Fprintf(&sb, "--- a/%s\n+++ b/%s\n", name, name)
	for _, c := range changed {
		start, end := max(1, c-3), min(n, c+3)
		count := end - start + 1
		fmt.Fprintf(&sb, "@@ -%d,%d +%d,%d @@\n", start, count, start, count)
		for i := start; i <= end; i++ {
			line := fmt.Sprintf("line%02d", i)
			if i == c {
				fmt.Fprintf(&sb, "-%s\n+%s\n", line, strings.ToUpper(line))
				continue
			}
			sb.WriteString(" " + line + "\n")
		}
	}
	return sb.String()
}

func newCache(t *testing.T) *patchcache.Cache {
	t.Helper()
	c, err := patchcache.New(t.TempDir())
	require.NoError(t, err)
	return c
}

func assertNoScratchFiles(t *testing.T, c *patchcache.Cache) {
	t.Helper()
	entries, err := os.ReadDir(c.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Zero(t, c.Len())
}

func TestProcessFile_AcceptFirstAndLast(t *testing.T) {
	repo := newMemRepo()
	repo.index["src/a.txt"] = numbered(30)
	repo.work["src/a.txt"] = numbered(30, 2, 14, 26)

	files := git.ParseDiff(changeDiff("src/a.txt", 30, 2, 14, 26))
	require.Len(t, files, 1)
	fd := files[0]
	require.Len(t, fd.Hunks, 3)

	prompter, seen := answers(t, true, false, true)
	cache := newCache(t)
	res, err := New(repo, prompter, cache).ProcessFile(context.Background(), fd)
	require.NoError(t, err)

	assert.Equal(t, OutcomeStaged, res.Outcome)
	assert.Equal(t, 2, res.Accepted)
	assert.Equal(t, 1, res.Ignored)
	assert.NotEmpty(t, res.Hash)
	assert.Equal(t, []string{fd.Hunks[0], fd.Hunks[2]}, fd.Accepted())
	assert.Equal(t, []string{fd.Hunks[1]}, fd.Ignored())

	require.Len(t, *seen, 3)
	for i, p := range *seen {
		assert.Equal(t, i, p.Index)
		assert.Equal(t, 3, p.Total)
		assert.Equal(t, "src/a.txt", p.FileName)
		assert.Equal(t, git.Stats{Added: 1, Deleted: 1}, p.Stats)
	}

	assert.Equal(t, numbered(30, 2, 26), repo.index["src/a.txt"], "index holds the accepted hunks only")
	assert.Equal(t, numbered(30, 2, 14, 26), repo.work["src/a.txt"], "working tree also carries the rejected hunk")
	assert.Equal(t, []string{
		"revert src/a.txt",
		"apply -ac.patch",
		"stage src/a.txt",
		"apply -ig.patch",
	}, repo.calls)
	assertNoScratchFiles(t, cache)
}

func TestProcessFile_AcceptAll(t *testing.T) {
	repo := newMemRepo()
	repo.index["a.txt"] = numbered(20)
	repo.work["a.txt"] = numbered(20, 3, 15)

	fd := git.ParseDiff(changeDiff("a.txt", 20, 3, 15))[0]
	prompter, _ := answers(t, true, true)
	cache := newCache(t)
	res, err := New(repo, prompter, cache).ProcessFile(context.Background(), fd)
	require.NoError(t, err)

	assert.Equal(t, OutcomeStaged, res.Outcome)
	assert.Equal(t, numbered(20, 3, 15), repo.index["a.txt"])
	assert.Equal(t, numbered(20, 3, 15), repo.work["a.txt"])
	assert.NotContains(t, repo.calls, "apply -ig.patch")
	assertNoScratchFiles(t, cache)
}

func TestProcessFile_RejectAllTouchesNothing(t *testing.T) {
	repo := newMemRepo()
	repo.index["a.txt"] = numbered(20)
	repo.work["a.txt"] = numbered(20, 3, 15)

	fd := git.ParseDiff(changeDiff("a.txt", 20, 3, 15))[0]
	prompter, _ := answers(t, false, false)
	cache := newCache(t)
	res, err := New(repo, prompter, cache).ProcessFile(context.Background(), fd)
	require.NoError(t, err)

	assert.Equal(t, OutcomeSkipped, res.Outcome)
	assert.Empty(t, res.Hash)
	assert.Empty(t, repo.calls)
	assert.Equal(t, numbered(20, 3, 15), repo.work["a.txt"])
	assertNoScratchFiles(t, cache)
}

func TestProcessFile_RecoversWhenAcceptedPatchFails(t *testing.T) {
	repo := newMemRepo()
	repo.index["a.txt"] = numbered(20)
	repo.work["a.txt"] = numbered(20, 3, 15)
	repo.failApply = func(path string) bool { return strings.HasSuffix(path, "-ac.patch") }

	fd := git.ParseDiff(changeDiff("a.txt", 20, 3, 15))[0]
	prompter, _ := answers(t, true, false)
	cache := newCache(t)
	res, err := New(repo, prompter, cache).ProcessFile(context.Background(), fd)
	require.NoError(t, err)

	assert.Equal(t, OutcomeRecovered, res.Outcome)
	assert.Error(t, res.ApplyErr)
	assert.Equal(t, numbered(20, 3, 15), repo.work["a.txt"], "working tree is fully original")
	assert.Equal(t, numbered(20), repo.index["a.txt"], "nothing staged")
	assert.Equal(t, []string{
		"revert a.txt",
		"apply -ac.patch",
		"apply -or.patch",
	}, repo.calls)
	assertNoScratchFiles(t, cache)
}

func TestProcessFile_RecoveryFailureKeepsPatches(t *testing.T) {
	repo := newMemRepo()
	repo.index["a.txt"] = numbered(20)
	repo.work["a.txt"] = numbered(20, 3, 15)
	repo.failApply = func(string) bool { return true }

	fd := git.ParseDiff(changeDiff("a.txt", 20, 3, 15))[0]
	prompter, _ := answers(t, true, true)
	cache := newCache(t)
	res, err := New(repo, prompter, cache).ProcessFile(context.Background(), fd)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRecoveryFailed)

	e, ok := cache.Lookup(res.Hash)
	require.True(t, ok, "scratch files stay for manual recovery")
	for _, p := range e.Paths() {
		assert.FileExists(t, p)
		assert.Contains(t, err.Error(), p)
	}
}

func TestRun_AbortKeepsEarlierFiles(t *testing.T) {
	repo := newMemRepo()
	repo.index["a.txt"] = numbered(20)
	repo.work["a.txt"] = numbered(20, 3, 15)
	repo.index["b.txt"] = numbered(20)
	repo.work["b.txt"] = numbered(20, 4, 16)

	raw := changeDiff("a.txt", 20, 3, 15) + changeDiff("b.txt", 20, 4, 16)
	files := git.ParseDiff(raw)
	require.Len(t, files, 2)

	calls := 0
	prompter := PrompterFunc(func(_ context.Context, p HunkPrompt) (bool, error) {
		calls++
		if p.FileName == "b.txt" && p.Index == 1 {
			return false, ErrAborted
		}
		return true, nil
	})

	cache := newCache(t)
	report, err := New(repo, prompter, cache).Run(context.Background(), files)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAborted)
	assert.Equal(t, 4, calls)

	require.Len(t, report.Files, 1)
	assert.Equal(t, OutcomeStaged, report.Files[0].Outcome)
	assert.Equal(t, numbered(20, 3, 15), repo.index["a.txt"])

	assert.Equal(t, numbered(20), repo.index["b.txt"], "aborted file is untouched")
	assert.Equal(t, numbered(20, 4, 16), repo.work["b.txt"])
	assertNoScratchFiles(t, cache)
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fd := git.ParseDiff(changeDiff("a.txt", 20, 3))[0]
	prompter, seen := answers(t)
	_, err := New(newMemRepo(), prompter, newCache(t)).Run(ctx, []*git.FileDiff{fd})
	assert.ErrorIs(t, err, ErrAborted)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, *seen)
}

func TestRun_MixedReport(t *testing.T) {
	repo := newMemRepo()
	repo.index["a.txt"] = numbered(20)
	repo.work["a.txt"] = numbered(20, 3)
	repo.index["b.txt"] = numbered(20)
	repo.work["b.txt"] = numbered(20, 5)
	repo.index["c.txt"] = numbered(20)
	repo.work["c.txt"] = numbered(20, 7)
	repo.failApply = func(path string) bool {
		return strings.HasSuffix(path, "-ac.patch") && repo.calls[len(repo.calls)-2] == "revert c.txt"
	}

	raw := changeDiff("a.txt", 20, 3) + changeDiff("b.txt", 20, 5) + changeDiff("c.txt", 20, 7)
	prompter, _ := answers(t, true, false, true)
	report, err := New(repo, prompter, newCache(t)).Run(context.Background(), git.ParseDiff(raw))
	require.NoError(t, err)

	require.Len(t, report.Files, 3)
	assert.Equal(t, 1, report.Count(OutcomeStaged))
	assert.Equal(t, 1, report.Count(OutcomeSkipped))
	assert.Equal(t, 1, report.Count(OutcomeRecovered))
	assert.Equal(t, "recovered", report.Files[2].Outcome.String())
}
