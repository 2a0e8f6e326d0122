package git

import (
	"fmt"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
)

// Stats counts the changed lines of a patch.
type Stats struct {
	Added   int
	Deleted int
}

func (s Stats) String() string {
	return fmt.Sprintf("+%d -%d", s.Added, s.Deleted)
}

// FileStats returns the line counts across all hunks of fd.
func FileStats(fd *FileDiff) (Stats, error) {
	doc, ok := fd.TotalPatch()
	if !ok {
		return Stats{}, nil
	}
	return patchStats(doc)
}

// HunkStats returns the line counts of hunk i of fd.
func HunkStats(fd *FileDiff, i int) (Stats, error) {
	if i < 0 || i >= len(fd.Hunks) {
		return Stats{}, fmt.Errorf("hunk %d out of range for %s", i, fd.FileName)
	}
	doc, _ := fd.buildPatch(fd.Hunks[i : i+1])
	return patchStats(doc)
}

func patchStats(doc string) (Stats, error) {
	files, _, err := gitdiff.Parse(strings.NewReader(doc))
	if err != nil {
		return Stats{}, fmt.Errorf("failed to parse patch: %w", err)
	}
	var s Stats
	for _, f := range files {
		for _, frag := range f.TextFragments {
			s.Added += int(frag.LinesAdded)
			s.Deleted += int(frag.LinesDeleted)
		}
	}
	return s, nil
}
