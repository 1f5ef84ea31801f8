package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type Config struct {
	ProjectsRoot string `toml:"projects_root"`
	ArchiveDir   string `toml:"archive_dir"`
	DBPath       string `toml:"db_path"`
	ClaudeBin    string `toml:"claude_bin"`
	TmuxBin      string `toml:"tmux_bin"`
}

func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ProjectsRoot: filepath.Join(home, ".claude", "projects"),
		ArchiveDir:   filepath.Join(home, ".claude", "archive"),
		DBPath:       filepath.Join(home, ".config", "ccsm", "ccsm.db"),
		ClaudeBin:    "claude",
		TmuxBin:      "tmux",
	}

	cfgPath := filepath.Join(home, ".config", "ccsm", "config.toml")
	if _, err := os.Stat(cfgPath); err == nil {
		if _, err := toml.DecodeFile(cfgPath, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfgPath, err)
		}
	}

	// expand ~ in paths
	cfg.ProjectsRoot = expandHome(cfg.ProjectsRoot, home)
	cfg.ArchiveDir = expandHome(cfg.ArchiveDir, home)
	cfg.DBPath = expandHome(cfg.DBPath, home)

	return cfg, nil
}

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
