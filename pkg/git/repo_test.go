package git

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiffOptions_Args(t *testing.T) {
	tests := []struct {
		name string
		opts DiffOptions
		want []string
	}{
		{
			name: "defaults",
			want: []string{"diff", "--no-color", "--no-ext-diff", "--"},
		},
		{
			name: "everything",
			opts: DiffOptions{
				Revisions:         []string{"main", "feature"},
				Paths:             []string{"pkg/", "README.md"},
				ContextLines:      5,
				IgnoreAllSpace:    true,
				IgnoreSpaceChange: true,
				IgnoreBlankLines:  true,
			},
			want: []string{
				"diff", "--no-color", "--no-ext-diff", "-U5",
				"--ignore-all-space", "--ignore-space-change", "--ignore-blank-lines",
				"main", "feature", "--", "pkg/", "README.md",
			},
		},
		{
			name: "staged",
			opts: DiffOptions{Cached: true, Paths: []string{"go.mod"}},
			want: []string{"diff", "--no-color", "--no-ext-diff", "--cached", "--", "go.mod"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.opts.Args())
		})
	}
}
