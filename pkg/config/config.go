package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	DefaultRemote = "origin"
)

var (
	DefaultAuthorName  = "gitpick"
	DefaultAuthorEmail = "gitpick@example.com"
)

type CommitTypeConfig struct {
	Type  string `yaml:"type,omitempty" validate:"required,lowercase"`
	Emoji string `yaml:"emoji,omitempty"`
}

// DiffSettings shape the diffs gitpick prints. ContextLines also sets the hunk
// size for pick (0 keeps git's default); the whitespace switches only apply to
// the staged diff shown by commit, since pick must see every change it reverts.
type DiffSettings struct {
	ContextLines     int  `yaml:"contextLines,omitempty" validate:"gte=0,lte=1000"`
	IgnoreAllSpace   bool `yaml:"ignoreAllSpace,omitempty"`
	IgnoreBlankLines bool `yaml:"ignoreBlankLines,omitempty"`
}

type TagSettings struct {
	Push   bool   `yaml:"push,omitempty"`
	Remote string `yaml:"remote,omitempty" validate:"omitempty,excludesall= "`
}

type Config struct {
	ScratchDir  string             `yaml:"scratchDir,omitempty"`
	LockFiles   []string           `yaml:"lockFiles,omitempty"`
	CommitTypes []CommitTypeConfig `yaml:"commitTypes,omitempty" validate:"dive"`
	EnableEmoji bool               `yaml:"enableEmoji,omitempty"`
	Template    string             `yaml:"template,omitempty"`

	AuthorName  string `yaml:"authorName,omitempty"`
	AuthorEmail string `yaml:"authorEmail,omitempty" validate:"omitempty,email"`

	Diff DiffSettings `yaml:"diff,omitempty"`
	Tag  TagSettings  `yaml:"tag,omitempty"`
}

// Default returns the configuration written on first run.
func Default() *Config {
	return &Config{
		AuthorName:  DefaultAuthorName,
		AuthorEmail: DefaultAuthorEmail,
		LockFiles:   []string{"go.sum", "yarn.lock", "pnpm-lock.yaml", "package-lock.json"},
		CommitTypes: []CommitTypeConfig{
			{Type: "feat", Emoji: "✨"},
			{Type: "fix", Emoji: "🐛"},
			{Type: "docs", Emoji: "📚"},
			{Type: "style", Emoji: "💎"},
			{Type: "refactor", Emoji: "♻️"},
			{Type: "test", Emoji: "🧪"},
			{Type: "chore", Emoji: "🔧"},
			{Type: "perf", Emoji: "🚀"},
			{Type: "build", Emoji: "📦"},
			{Type: "ci", Emoji: "👷"},
		},
		Tag: TagSettings{Remote: DefaultRemote},
	}
}

// DefaultPath returns ~/.config/<binary>/config.yaml.
func DefaultPath() (string, error) {
	exePath, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to determine executable path: %w", err)
	}
	binaryName := filepath.Base(exePath)

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", binaryName, "config.yaml"), nil
}

// LoadOrCreateConfig reads the config at path, writing the defaults there
// first if the file does not exist. An empty path means DefaultPath.
func LoadOrCreateConfig(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	configDir := filepath.Dir(path)
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		if err := os.MkdirAll(configDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		defaultCfg := Default()
		if err := saveConfig(path, defaultCfg); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return defaultCfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if cfg.Tag.Remote == "" {
		cfg.Tag.Remote = DefaultRemote
	}
	return &cfg, nil
}

func saveConfig(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (cfg *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// TypeNames returns the configured commit types in order.
func (cfg *Config) TypeNames() []string {
	names := make([]string, 0, len(cfg.CommitTypes))
	for _, ct := range cfg.CommitTypes {
		names = append(names, ct.Type)
	}
	return names
}

// Emojis maps each configured commit type to its emoji.
func (cfg *Config) Emojis() map[string]string {
	m := make(map[string]string, len(cfg.CommitTypes))
	for _, ct := range cfg.CommitTypes {
		if ct.Emoji != "" {
			m[ct.Type] = ct.Emoji
		}
	}
	return m
}
