package git

import (
	"strings"
)

const (
	fileMarker = "diff --git "
	hunkMarker = "@@"
)

// ParseDiff splits raw unified diff text, as printed by "git diff", into one
// FileDiff per file. Hunks keep their text verbatim, one "\n" per line.
//
// Everything between the file marker and the first hunk marker is kept as
// header lines. Text before the first file marker is ignored.
func ParseDiff(raw string) []*FileDiff {
	var files []*FileDiff
	var current *FileDiff
	var hunk strings.Builder
	inHeader := false

	flush := func() {
		if current != nil && hunk.Len() > 0 {
			current.Hunks = append(current.Hunks, hunk.String())
		}
		hunk.Reset()
	}

	for _, line := range splitLines(raw) {
		switch {
		case strings.HasPrefix(line, fileMarker):
			flush()
			current = newFileDiff(strings.TrimPrefix(line, fileMarker))
			files = append(files, current)
			inHeader = true
		case current == nil:
			// preamble, e.g. the commit header of "git show"
		case strings.HasPrefix(line, hunkMarker):
			flush()
			inHeader = false
			hunk.WriteString(line)
			hunk.WriteByte('\n')
		case inHeader:
			current.Header = append(current.Header, line)
		default:
			hunk.WriteString(line)
			hunk.WriteByte('\n')
		}
	}
	flush()

	return files
}

func newFileDiff(filePath string) *FileDiff {
	return &FileDiff{
		FilePath: filePath,
		FileName: parseFileName(filePath),
	}
}

// parseFileName takes the "a/..." side of the path pair.
// example: "a/pkg/git/git.go b/pkg/git/git.go" -> "pkg/git/git.go"
func parseFileName(filePath string) string {
	fields := strings.Fields(filePath)
	if len(fields) == 0 {
		return ""
	}
	return strings.TrimPrefix(fields[0], "a/")
}

func splitLines(raw string) []string {
	if raw == "" {
		return nil
	}
	lines := strings.Split(raw, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
