package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the base configuration: built-in defaults, then a config file,
// then environment variables, then CLI flags (later stages win). The
// configuration resolver (internal/orgconf) layers file-level org settings
// and ancestor property inheritance on top of this.
type Config struct {
	Todo     TodoConfig     `yaml:"todo"`
	Logging  LoggingConfig  `yaml:"logging"`
	Priority PriorityConfig `yaml:"priority"`
	Archive  ArchiveConfig  `yaml:"archive"`
	Inherit  InheritConfig  `yaml:"inherit"`
	Cache    CacheConfig    `yaml:"cache"`
	Log      LogConfig      `yaml:"log"`

	DeadlineWarningDays int `yaml:"deadline_warning_days"`
}

// TodoConfig holds the default TODO keyword sequence, in the same
// "KW1(k1) KW2(k2!) | DONE(d@)" textual form used by #+TODO: lines, so the
// same orgtime.ParseKeywordSequence parser serves both the base config and
// file-level overrides.
type TodoConfig struct {
	Sequence string `yaml:"sequence"`
}

// LogAction names (not type names), matching spec.md §6.4's
// "none"|"time"|"note" vocabulary.
const (
	LogActionNone = "none"
	LogActionTime = "time"
	LogActionNote = "note"
)

type LoggingConfig struct {
	Done        string `yaml:"done"`
	Repeat      string `yaml:"repeat"`
	Reschedule  string `yaml:"reschedule"`
	Redeadline  string `yaml:"redeadline"`
	Refile      string `yaml:"refile"`
}

type PriorityConfig struct {
	Highest string `yaml:"highest"`
	Lowest  string `yaml:"lowest"`
	Default string `yaml:"default"`
}

type ArchiveConfig struct {
	// LocationPattern is appended to a file's path sans extension to form
	// its archive sibling; spec.md §4.E.9 fixes this to "_archive".
	LocationPattern string `yaml:"location_pattern"`
}

type InheritConfig struct {
	Tags                       bool     `yaml:"tags"`
	Properties                 bool     `yaml:"properties"`
	PropertyAllowList          []string `yaml:"property_allow_list"`
	TagsExcludeFromInheritance []string `yaml:"tags_exclude_from_inheritance"`
}

type CacheConfig struct {
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"max_entries"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

func DefaultConfig() *Config {
	return &Config{
		Todo: TodoConfig{Sequence: "TODO | DONE"},
		Logging: LoggingConfig{
			Done:       LogActionTime,
			Repeat:     LogActionTime,
			Reschedule: LogActionNote,
			Redeadline: LogActionNote,
			Refile:     LogActionNone,
		},
		Priority: PriorityConfig{Highest: "A", Lowest: "C", Default: "B"},
		Archive:  ArchiveConfig{LocationPattern: "_archive"},
		Inherit: InheritConfig{
			Tags:       true,
			Properties: false,
		},
		Cache: CacheConfig{
			TTL:        60 * time.Second,
			MaxEntries: 10000,
		},
		Log:                 LogConfig{Level: "info"},
		DeadlineWarningDays: 14,
	}
}

// Load loads configuration using the real environment.
func Load() (*Config, error) {
	return LoadWithEnv(os.Getenv)
}

// LoadWithEnv loads configuration using the provided environment lookup
// function. This allows tests to provide isolated environment values.
func LoadWithEnv(getenv func(string) string) (*Config, error) {
	cfg := DefaultConfig()

	configPath := getConfigPathWithEnv(getenv)
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if days := getenv("ORGCTL_DEADLINE_WARNING_DAYS"); days != "" {
		if n, err := strconv.Atoi(days); err == nil && n >= 0 {
			cfg.DeadlineWarningDays = n
		}
	}
	if done := getenv("ORGCTL_LOG_DONE"); done != "" {
		cfg.Logging.Done = done
	}

	return cfg, nil
}

func getConfigPath() string {
	return getConfigPathWithEnv(os.Getenv)
}

func getConfigPathWithEnv(getenv func(string) string) string {
	if xdgConfig := getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "orgctl", "config.yaml")
	}

	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "orgctl", "config.yaml")
}
