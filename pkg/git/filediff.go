package git

import (
	"fmt"
	"strings"
)

type decision int

const (
	undecided decision = iota
	accepted
	ignored
)

// FileDiff is one file of a parsed diff: its header lines and its hunks in
// order of appearance, plus the accept/ignore decision for every hunk.
type FileDiff struct {
	// FilePath is the raw "a/... b/..." pair from the "diff --git" line.
	FilePath string
	// FileName is the path relative to the repository root.
	FileName string
	// Header holds the lines between "diff --git" and the first hunk,
	// usually the index, "---" and "+++" lines.
	Header []string
	// Hunks holds each "@@" block including its marker line.
	Hunks []string

	decisions []decision
}

// IndexLine returns the "index ..." header line, or "" when absent.
func (fd *FileDiff) IndexLine() string { return fd.headerLine("index ") }

// AFileLine returns the "--- ..." header line, or "" when absent.
func (fd *FileDiff) AFileLine() string { return fd.headerLine("--- ") }

// BFileLine returns the "+++ ..." header line, or "" when absent.
func (fd *FileDiff) BFileLine() string { return fd.headerLine("+++ ") }

func (fd *FileDiff) headerLine(prefix string) string {
	for _, line := range fd.Header {
		if strings.HasPrefix(line, prefix) {
			return line
		}
	}
	return ""
}

// Accept marks hunk i as accepted.
func (fd *FileDiff) Accept(i int) error { return fd.classify(i, accepted) }

// Ignore marks hunk i as ignored.
func (fd *FileDiff) Ignore(i int) error { return fd.classify(i, ignored) }

func (fd *FileDiff) classify(i int, d decision) error {
	if i < 0 || i >= len(fd.Hunks) {
		return fmt.Errorf("hunk %d out of range for %s (%d hunks)", i, fd.FileName, len(fd.Hunks))
	}
	if fd.decisions == nil {
		fd.decisions = make([]decision, len(fd.Hunks))
	}
	if fd.decisions[i] != undecided {
		return fmt.Errorf("hunk %d of %s is already classified", i, fd.FileName)
	}
	fd.decisions[i] = d
	return nil
}

// Classified reports whether every hunk has been accepted or ignored.
func (fd *FileDiff) Classified() bool {
	if len(fd.decisions) != len(fd.Hunks) {
		return len(fd.Hunks) == 0
	}
	for _, d := range fd.decisions {
		if d == undecided {
			return false
		}
	}
	return true
}

// Accepted returns the accepted hunks in their original order.
func (fd *FileDiff) Accepted() []string { return fd.hunksWith(accepted) }

// Ignored returns the ignored hunks in their original order.
func (fd *FileDiff) Ignored() []string { return fd.hunksWith(ignored) }

func (fd *FileDiff) hunksWith(d decision) []string {
	var out []string
	for i, got := range fd.decisions {
		if got == d {
			out = append(out, fd.Hunks[i])
		}
	}
	return out
}

// TotalPatch rebuilds the patch for all hunks of the file.
// ok is false when the file has no hunks.
func (fd *FileDiff) TotalPatch() (doc string, ok bool) { return fd.buildPatch(fd.Hunks) }

// AcceptedPatch rebuilds the patch for the accepted hunks only.
// ok is false when no hunk was accepted.
func (fd *FileDiff) AcceptedPatch() (doc string, ok bool) { return fd.buildPatch(fd.Accepted()) }

// IgnoredPatch rebuilds the patch for the ignored hunks only.
// ok is false when no hunk was ignored.
func (fd *FileDiff) IgnoredPatch() (doc string, ok bool) { return fd.buildPatch(fd.Ignored()) }

// buildPatch reuses the file headers for every subset so that each document
// applies on its own.
func (fd *FileDiff) buildPatch(hunks []string) (string, bool) {
	if len(hunks) == 0 {
		return "", false
	}
	var sb strings.Builder
	sb.WriteString(fileMarker)
	sb.WriteString(fd.FilePath)
	sb.WriteByte('\n')
	for _, line := range fd.Header {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	for _, h := range hunks {
		sb.WriteString(h)
	}
	return strings.TrimRight(sb.String(), "\n") + "\n", true
}
