// Package changelog renders conventional commits as a markdown changelog.
package changelog

import (
	"fmt"
	"strings"
	"time"

	gogitobj "github.com/go-git/go-git/v5/plumbing/object"

	"github.com/renatogalera/gitpick/pkg/committypes"
)

// otherSection collects commits that are not conventional or use an unknown
// type.
const otherSection = "other"

var sectionTitles = map[string]string{
	"feat":     "Features",
	"fix":      "Bug Fixes",
	"perf":     "Performance",
	"refactor": "Refactoring",
	"docs":     "Documentation",
	"test":     "Tests",
	"build":    "Build",
	"ci":       "CI",
	"style":    "Style",
	"chore":    "Chores",
	"other":    "Other Changes",
}

// Entry is one changelog line.
type Entry struct {
	ShortHash string
	Scope     string
	Subject   string
	Breaking  bool
}

// Changelog groups entries by commit type.
type Changelog struct {
	Title    string
	Date     time.Time
	Sections map[string][]Entry
	Breaking []Entry
}

// Build groups commits (newest first, as returned by a log walk) by type.
// Entries keep the log order within a section.
func Build(title string, date time.Time, commits []*gogitobj.Commit) Changelog {
	cl := Changelog{Title: title, Date: date, Sections: make(map[string][]Entry)}
	for _, c := range commits {
		if c.NumParents() > 1 {
			continue
		}
		h, ok := committypes.Parse(c.Message)
		section := h.Type
		if !ok || !committypes.IsValidCommitType(section) {
			section = otherSection
		}
		e := Entry{
			ShortHash: c.Hash.String()[:7],
			Scope:     h.Scope,
			Subject:   h.Subject,
			Breaking:  h.Breaking,
		}
		cl.Sections[section] = append(cl.Sections[section], e)
		if h.Breaking {
			cl.Breaking = append(cl.Breaking, e)
		}
	}
	return cl
}

// order lists the configured types first, then "other".
func order() []string {
	return append(committypes.AllTypes(), otherSection)
}

// Markdown renders the changelog.
func (cl Changelog) Markdown() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s (%s)\n", cl.Title, cl.Date.Format("2006-01-02"))

	if len(cl.Breaking) > 0 {
		sb.WriteString("\n### ⚠ BREAKING CHANGES\n\n")
		for _, e := range cl.Breaking {
			sb.WriteString(e.line())
		}
	}
	for _, section := range order() {
		entries := cl.Sections[section]
		if len(entries) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "\n### %s\n\n", title(section))
		for _, e := range entries {
			sb.WriteString(e.line())
		}
	}
	if len(cl.Sections) == 0 {
		sb.WriteString("\nNo changes.\n")
	}
	return sb.String()
}

func (e Entry) line() string {
	if e.Scope != "" {
		return fmt.Sprintf("- **%s:** %s (%s)\n", e.Scope, e.Subject, e.ShortHash)
	}
	return fmt.Sprintf("- %s (%s)\n", e.Subject, e.ShortHash)
}

func title(section string) string {
	if t, ok := sectionTitles[section]; ok {
		return t
	}
	return strings.ToUpper(section[:1]) + section[1:]
}
