package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOrCreateConfig_WritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gitpick", "config.yaml")

	cfg, err := LoadOrCreateConfig(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.FileExists(t, path)

	again, err := LoadOrCreateConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
	require.NoError(t, again.Validate())
}

func TestLoadOrCreateConfig_ReadsNestedSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `scratchDir: /tmp/picks
lockFiles: [go.sum]
diff:
  contextLines: 5
  ignoreBlankLines: true
tag:
  push: true
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadOrCreateConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/picks", cfg.ScratchDir)
	assert.Equal(t, []string{"go.sum"}, cfg.LockFiles)
	assert.Equal(t, DiffSettings{ContextLines: 5, IgnoreBlankLines: true}, cfg.Diff)
	assert.True(t, cfg.Tag.Push)
	assert.Equal(t, DefaultRemote, cfg.Tag.Remote)
}

func TestLoadOrCreateConfig_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("diff: [unclosed"), 0o644))
	_, err := LoadOrCreateConfig(path)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "bad email", mutate: func(c *Config) { c.AuthorEmail = "not-an-email" }, wantErr: true},
		{name: "negative context", mutate: func(c *Config) { c.Diff.ContextLines = -1 }, wantErr: true},
		{name: "empty commit type", mutate: func(c *Config) { c.CommitTypes[0].Type = "" }, wantErr: true},
		{name: "upper commit type", mutate: func(c *Config) { c.CommitTypes[0].Type = "Feat" }, wantErr: true},
		{name: "remote with space", mutate: func(c *Config) { c.Tag.Remote = "my origin" }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTypeNamesAndEmojis(t *testing.T) {
	cfg := &Config{CommitTypes: []CommitTypeConfig{{Type: "feat", Emoji: "✨"}, {Type: "wip"}}}
	assert.Equal(t, []string{"feat", "wip"}, cfg.TypeNames())
	assert.Equal(t, map[string]string{"feat": "✨"}, cfg.Emojis())
}

func TestConfigManager_MergeConfiguration(t *testing.T) {
	cfg := Default()
	cfg.ScratchDir = "/from/file"
	cfg.Diff.ContextLines = 3

	cm := NewConfigManager(cfg)
	cm.RegisterFlag("scratchDir", "/from/flag")
	cm.RegisterFlag("diff.contextLines", 8)
	cm.RegisterFlag("diff.ignoreAllSpace", true)
	cm.RegisterFlag("tag.push", false)
	cm.RegisterFlag("lockFiles", []string{})
	cm.RegisterFlag("authorName", "")

	merged, err := cm.MergeConfiguration()
	require.NoError(t, err)
	assert.Equal(t, "/from/flag", merged.ScratchDir)
	assert.Equal(t, 8, merged.Diff.ContextLines)
	assert.True(t, merged.Diff.IgnoreAllSpace)
	assert.False(t, merged.Tag.Push)
	assert.Equal(t, Default().LockFiles, merged.LockFiles, "empty flag keeps file value")
	assert.Equal(t, DefaultAuthorName, merged.AuthorName)
}

func TestConfigManager_ExplicitZeroWins(t *testing.T) {
	cfg := Default()
	cfg.Tag.Push = true
	cfg.Diff.ContextLines = 5

	cm := NewConfigManager(cfg)
	cm.SetFlag("tag.push", false)
	cm.SetFlag("diff.contextLines", 0)
	cm.RegisterFlag("template", "")

	merged, err := cm.MergeConfiguration()
	require.NoError(t, err)
	assert.False(t, merged.Tag.Push)
	assert.Zero(t, merged.Diff.ContextLines)
	assert.Empty(t, merged.Template)
}

func TestConfigManager_Errors(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   interface{}
		wantErr string
	}{
		{name: "unknown key", key: "diff.context", value: 3, wantErr: "unknown config keys: diff.context"},
		{name: "wrong type", key: "scratchDir", value: 7, wantErr: "cannot use int as string"},
		{name: "fails validation", key: "diff.contextLines", value: 5000, wantErr: "ContextLines"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cm := NewConfigManager(Default())
			cm.RegisterFlag(tt.key, tt.value)
			_, err := cm.MergeConfiguration()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
