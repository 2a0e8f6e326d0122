package splitter

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sergi/go-diff/diffmatchpatch"
)

var (
	hunkHeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	contextStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	addedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
	removedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("160"))
	addedEmphStyle  = addedStyle.Bold(true).Underline(true)
	removedEmph     = removedStyle.Bold(true).Underline(true)
)

// segment is a piece of a changed line; Changed marks the characters that
// differ from the paired line.
type segment struct {
	Text    string
	Changed bool
}

// pairSegments splits a removed line and the added line replacing it into
// equal and changed runs.
func pairSegments(oldLine, newLine string) (oldSegs, newSegs []segment) {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(oldLine, newLine, false))
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			oldSegs = append(oldSegs, segment{Text: d.Text})
			newSegs = append(newSegs, segment{Text: d.Text})
		case diffmatchpatch.DiffDelete:
			oldSegs = append(oldSegs, segment{Text: d.Text, Changed: true})
		case diffmatchpatch.DiffInsert:
			newSegs = append(newSegs, segment{Text: d.Text, Changed: true})
		}
	}
	return oldSegs, newSegs
}

func renderSegments(prefix string, segs []segment, base, emph lipgloss.Style) string {
	var sb strings.Builder
	sb.WriteString(base.Render(prefix))
	for _, s := range segs {
		if s.Changed {
			sb.WriteString(emph.Render(s.Text))
		} else {
			sb.WriteString(base.Render(s.Text))
		}
	}
	return sb.String()
}

// renderHunk colours a hunk. A run of removed lines directly followed by the
// same number of added lines is treated as line-by-line replacements and gets
// intra-line highlighting.
func renderHunk(hunk string) string {
	lines := strings.Split(strings.TrimSuffix(hunk, "\n"), "\n")
	out := make([]string, 0, len(lines))
	for i := 0; i < len(lines); {
		line := lines[i]
		switch {
		case strings.HasPrefix(line, "@@"):
			out = append(out, hunkHeaderStyle.Render(line))
			i++
		case strings.HasPrefix(line, "-"):
			j := i
			for j < len(lines) && strings.HasPrefix(lines[j], "-") {
				j++
			}
			k := j
			for k < len(lines) && strings.HasPrefix(lines[k], "+") {
				k++
			}
			removed, added := lines[i:j], lines[j:k]
			if len(removed) != len(added) {
				for _, l := range removed {
					out = append(out, removedStyle.Render(l))
				}
				for _, l := range added {
					out = append(out, addedStyle.Render(l))
				}
				i = k
				continue
			}
			newLines := make([]string, 0, len(added))
			for n := range removed {
				oldSegs, newSegs := pairSegments(removed[n][1:], added[n][1:])
				out = append(out, renderSegments("-", oldSegs, removedStyle, removedEmph))
				newLines = append(newLines, renderSegments("+", newSegs, addedStyle, addedEmphStyle))
			}
			out = append(out, newLines...)
			i = k
		case strings.HasPrefix(line, "+"):
			out = append(out, addedStyle.Render(line))
			i++
		default:
			out = append(out, contextStyle.Render(line))
			i++
		}
	}
	return strings.Join(out, "\n")
}
