// SPDX-License-Identifier: GPL-2.0-or-later

// Package config loads the server's TOML configuration file.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Spotify holds the paths to the spotify client and its fullscreen
// helper.
type Spotify struct {
	Executable    string `toml:"executable"`
	FullscreenExe string `toml:"fullscreen_exe"`
}

// Config is the server's full runtime configuration.
type Config struct {
	// RootDirs are the absolute crawl roots for the file index. Order
	// matters: indices into this slice are persisted in the cache.
	RootDirs []string `toml:"root_dirs"`

	// Port is the TCP port the transport listens on.
	Port int `toml:"port"`

	// PoweroffExe is invoked for PowerCtrl::Poweroff.
	PoweroffExe string `toml:"poweroff_exe"`

	// RefreshCacheBoot triggers a file index refresh once on startup.
	RefreshCacheBoot bool `toml:"refresh_cache_boot"`

	Spotify Spotify `toml:"spotify"`
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %q: %w", path, err)
	}
	return Parse(raw)
}

// Parse validates and decodes raw TOML bytes, rejecting unknown keys.
func Parse(raw []byte) (*Config, error) {
	var c Config
	dec := toml.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	if len(c.RootDirs) == 0 {
		return fmt.Errorf("config: root_dirs must list at least one directory")
	}
	for _, dir := range c.RootDirs {
		if !filepath.IsAbs(dir) {
			return fmt.Errorf("config: root_dirs entry %q is not an absolute path", dir)
		}
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: port %d out of range", c.Port)
	}
	if c.PoweroffExe == "" {
		return fmt.Errorf("config: poweroff_exe must be set")
	}
	if c.Spotify.Executable == "" {
		return fmt.Errorf("config: spotify.executable must be set")
	}
	if c.Spotify.FullscreenExe == "" {
		return fmt.Errorf("config: spotify.fullscreen_exe must be set")
	}
	return nil
}
