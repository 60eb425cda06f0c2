// Package config loads wallkit settings from the config file, environment
// and CLI flags through viper. Precedence: flags, then WALLKIT_* env vars,
// then the file, then defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/wallkit/wallkit/internal/compositor"
	"github.com/wallkit/wallkit/internal/store"
)

// Transition holds the swww animation settings.
type Transition struct {
	Type     string  `mapstructure:"type"`
	FPS      int     `mapstructure:"fps"`
	Duration float64 `mapstructure:"duration"`
}

// Config is the resolved runtime configuration.
type Config struct {
	WallpaperDir string        `mapstructure:"wallpaper_dir"`
	StateDir     string        `mapstructure:"state_dir"`
	Compositor   string        `mapstructure:"compositor"`
	Mode         string        `mapstructure:"mode"`
	PerWorkspace bool          `mapstructure:"per_workspace"`
	CycleTarget  string        `mapstructure:"cycle_target"`
	Transition   Transition    `mapstructure:"transition"`
	QueryTimeout time.Duration `mapstructure:"query_timeout"`
	ApplyTimeout time.Duration `mapstructure:"apply_timeout"`
	LockTimeout  time.Duration `mapstructure:"lock_timeout"`
	LogLevel     string        `mapstructure:"log_level"`
}

var resizeModes = map[string]struct{}{
	"crop": {}, "fit": {}, "no": {}, "stretch": {},
}

// SetDefaults installs the default values on a viper instance.
func SetDefaults(v *viper.Viper) {
	home, _ := os.UserHomeDir()
	v.SetDefault("wallpaper_dir", filepath.Join(home, "Pictures", "wallpapers"))
	v.SetDefault("state_dir", store.DefaultRoot())
	v.SetDefault("compositor", "")
	v.SetDefault("mode", "crop")
	v.SetDefault("per_workspace", false)
	v.SetDefault("cycle_target", "focused")
	v.SetDefault("transition.type", "fade")
	v.SetDefault("transition.fps", 60)
	v.SetDefault("transition.duration", 1.0)
	v.SetDefault("query_timeout", 5*time.Second)
	v.SetDefault("apply_timeout", 15*time.Second)
	v.SetDefault("lock_timeout", 3*time.Second)
	v.SetDefault("log_level", "info")
}

// DefaultPath returns the config file location honoring XDG_CONFIG_HOME.
func DefaultPath() string {
	if env := os.Getenv("XDG_CONFIG_HOME"); env != "" {
		return filepath.Join(env, "wallkit", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "wallkit", "config.yaml")
}

// Load reads and validates the configuration. A missing config file is
// fine; defaults plus flags carry the day.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the rest of the program cannot act on.
func (c *Config) Validate() error {
	if c.WallpaperDir == "" {
		return errors.New("wallpaper_dir cannot be empty")
	}
	if c.StateDir == "" {
		return errors.New("state_dir cannot be empty")
	}
	if _, ok := resizeModes[c.Mode]; !ok {
		return fmt.Errorf("mode %q is not one of crop, fit, no, stretch", c.Mode)
	}
	switch c.CycleTarget {
	case "focused", "all":
	default:
		return fmt.Errorf("cycle_target %q is not focused or all", c.CycleTarget)
	}
	if c.Compositor != "" {
		if _, ok := compositor.ParseKind(c.Compositor); !ok {
			return fmt.Errorf("unknown compositor %q", c.Compositor)
		}
	}
	if c.Transition.FPS <= 0 {
		return errors.New("transition.fps must be positive")
	}
	if c.Transition.Duration <= 0 {
		return errors.New("transition.duration must be positive")
	}
	for name, d := range map[string]time.Duration{
		"query_timeout": c.QueryTimeout,
		"apply_timeout": c.ApplyTimeout,
		"lock_timeout":  c.LockTimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	return nil
}
