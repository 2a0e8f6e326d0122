package versioner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"golang.org/x/mod/semver"

	"github.com/renatogalera/gitpick/pkg/committypes"
)

// Bump is the part of the version a release increments.
type Bump int

const (
	BumpPatch Bump = iota
	BumpMinor
	BumpMajor
)

func (b Bump) String() string {
	switch b {
	case BumpMajor:
		return "major"
	case BumpMinor:
		return "minor"
	default:
		return "patch"
	}
}

// GetCurrentVersionTag retrieves the most recent tag that is a valid semantic
// version. It returns "" when the repository has none.
func GetCurrentVersionTag(repo *git.Repository) (string, error) {
	tagIter, err := repo.Tags()
	if err != nil {
		return "", fmt.Errorf("failed to get tags: %w", err)
	}
	var latestTag string
	err = tagIter.ForEach(func(ref *plumbing.Reference) error {
		tagName := ref.Name().Short()
		if strings.HasPrefix(tagName, "v") && semver.IsValid(tagName) {
			if latestTag == "" || semver.Compare(tagName, latestTag) > 0 {
				latestTag = tagName
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return latestTag, nil
}

// SuggestBump picks the bump for a release containing the given commit
// messages: any breaking change is major, any feat is minor, anything else is
// a patch.
func SuggestBump(messages []string) Bump {
	bump := BumpPatch
	for _, msg := range messages {
		h, ok := committypes.Parse(msg)
		if !ok {
			continue
		}
		if h.Breaking {
			return BumpMajor
		}
		if h.Type == "feat" {
			bump = BumpMinor
		}
	}
	return bump
}

// NextVersion applies b to currentVersion. An empty or invalid current
// version counts as v0.0.0.
func NextVersion(currentVersion string, b Bump) string {
	major, minor, patch := parseVersionTriplet(normalize(currentVersion))
	switch b {
	case BumpMajor:
		return fmt.Sprintf("v%d.0.0", major+1)
	case BumpMinor:
		return fmt.Sprintf("v%d.%d.0", major, minor+1)
	default:
		return fmt.Sprintf("v%d.%d.%d", major, minor, patch+1)
	}
}

// CreateTag creates a lightweight tag on HEAD.
func CreateTag(repo *git.Repository, newVersionTag string) error {
	if newVersionTag == "" {
		return errors.New("no version tag provided")
	}
	if !semver.IsValid(newVersionTag) {
		return fmt.Errorf("%s is not a semantic version", newVersionTag)
	}
	headRef, err := repo.Head()
	if err != nil {
		return fmt.Errorf("failed to get HEAD reference: %w", err)
	}
	if _, err := repo.CreateTag(newVersionTag, headRef.Hash(), nil); err != nil {
		return fmt.Errorf("failed to create tag %s: %w", newVersionTag, err)
	}
	return nil
}

// PushTag pushes a tag to remote.
func PushTag(ctx context.Context, repo *git.Repository, remote, tag string) error {
	err := repo.PushContext(ctx, &git.PushOptions{
		RemoteName: remote,
		RefSpecs: []config.RefSpec{
			config.RefSpec("refs/tags/" + tag + ":refs/tags/" + tag),
		},
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("failed to push tag %s: %w", tag, err)
	}
	return nil
}

func normalize(version string) string {
	if version == "" || !semver.IsValid(version) {
		return "0.0.0"
	}
	return stripLeadingV(semver.Canonical(version))
}

func stripLeadingV(version string) string {
	return strings.TrimPrefix(version, "v")
}
