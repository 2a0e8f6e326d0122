package template

import (
	"context"
	"strings"

	"github.com/renatogalera/gitpick/pkg/committypes"
	"github.com/renatogalera/gitpick/pkg/git"
)

var currentBranch = git.GetCurrentBranch

// ApplyTemplate replaces well-known tokens in a commit template.
// Supported tokens:
//
//	{COMMIT_MESSAGE} - replaced with the commit message
//	{GIT_BRANCH}     - replaced with the current branch name
//
// An empty template returns the message unchanged.
func ApplyTemplate(ctx context.Context, templateStr, commitMessage string) (string, error) {
	if strings.TrimSpace(templateStr) == "" {
		return commitMessage, nil
	}
	result := templateStr
	if strings.Contains(result, "{COMMIT_MESSAGE}") {
		result = strings.ReplaceAll(result, "{COMMIT_MESSAGE}", commitMessage)
	}
	if strings.Contains(result, "{GIT_BRANCH}") {
		branch, err := currentBranch(ctx)
		if err != nil {
			return "", err
		}
		result = strings.ReplaceAll(result, "{GIT_BRANCH}", branch)
	}
	return result, nil
}

// Compose builds the final commit message: the commit type prefix (unless
// the message already has one), the emoji for that type, then the template.
func Compose(ctx context.Context, message, commitType, emoji, templateStr string) (string, error) {
	msg := committypes.AddType(message, commitType)
	msg = committypes.AddEmoji(msg, emoji)
	msg, err := ApplyTemplate(ctx, templateStr, msg)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(msg), nil
}
