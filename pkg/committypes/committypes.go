package committypes

import (
	"regexp"
	"strings"
	"sync"
)

var defaultTypes = []string{
	"feat", "fix", "docs", "style", "refactor", "test", "chore", "perf", "build", "ci",
}

var (
	mu         sync.RWMutex
	validTypes = defaultTypes
)

const emojiPrefix = `((\p{So}\x{FE0F}?|\p{Sk}|:\w+:)\s*)?`

var headerPattern = regexp.MustCompile(`^` + emojiPrefix + `(\w+)(\(([^)]+)\))?(!)?:\s*(.*)$`)

// SetTypes replaces the accepted commit types, usually with the ones from the
// config file. An empty list restores the defaults.
func SetTypes(types []string) {
	mu.Lock()
	defer mu.Unlock()
	if len(types) == 0 {
		validTypes = defaultTypes
		return
	}
	validTypes = append([]string(nil), types...)
}

func BuildRegexPatternWithEmoji() *regexp.Regexp {
	pattern := `^` + emojiPrefix + `(` + TypesRegexPattern() + `)(\([^)]+\))?!?:`
	return regexp.MustCompile(pattern)
}

func IsValidCommitType(t string) bool {
	mu.RLock()
	defer mu.RUnlock()
	for _, vt := range validTypes {
		if t == vt {
			return true
		}
	}
	return false
}

func AllTypes() []string {
	mu.RLock()
	defer mu.RUnlock()
	return append([]string(nil), validTypes...)
}

func TypesRegexPattern() string {
	types := AllTypes()
	quoted := make([]string, len(types))
	for i, t := range types {
		quoted[i] = regexp.QuoteMeta(t)
	}
	return strings.Join(quoted, "|")
}

// Header is the parsed first line of a conventional commit message.
type Header struct {
	Type     string
	Scope    string
	Subject  string
	Breaking bool
}

// Parse reads "type(scope)!: subject" from the first line of message, with an
// optional leading emoji. A "BREAKING CHANGE:" footer also marks the commit as
// breaking. It does not check Type against the accepted types.
func Parse(message string) (Header, bool) {
	message = strings.TrimSpace(message)
	first, body, _ := strings.Cut(message, "\n")
	m := headerPattern.FindStringSubmatch(strings.TrimSpace(first))
	if m == nil {
		return Header{Subject: strings.TrimSpace(first)}, false
	}
	h := Header{
		Type:     strings.ToLower(m[3]),
		Scope:    m[5],
		Breaking: m[6] == "!",
		Subject:  m[7],
	}
	if strings.Contains(body, "BREAKING CHANGE:") || strings.Contains(body, "BREAKING-CHANGE:") {
		h.Breaking = true
	}
	return h, true
}

// AddType prefixes message with "commitType: " unless it already starts with
// a valid commit type.
func AddType(message, commitType string) string {
	message = strings.TrimSpace(message)
	if commitType == "" || BuildRegexPatternWithEmoji().MatchString(message) {
		return message
	}
	return commitType + ": " + message
}

// AddEmoji puts emoji in front of message if it is not already there.
func AddEmoji(message, emoji string) string {
	message = strings.TrimSpace(message)
	if emoji == "" || strings.HasPrefix(message, emoji) {
		return message
	}
	return emoji + " " + message
}

// GuessCommitType tries to infer the commit type from keywords in the
// message. It returns an empty string when nothing matches.
func GuessCommitType(message string) string {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "feat"), strings.Contains(lower, "add"), strings.Contains(lower, "create"), strings.Contains(lower, "introduce"):
		return "feat"
	case strings.Contains(lower, "fix"):
		return "fix"
	case strings.Contains(lower, "doc"):
		return "docs"
	case strings.Contains(lower, "refactor"):
		return "refactor"
	case strings.Contains(lower, "test"):
		return "test"
	case strings.Contains(lower, "perf"):
		return "perf"
	case strings.Contains(lower, "build"):
		return "build"
	case strings.Contains(lower, "ci"):
		return "ci"
	case strings.Contains(lower, "chore"):
		return "chore"
	default:
		return ""
	}
}
