// Copyright (c) voidfemme 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config loads the stash configuration file and resolves filesystem
// paths that may contain a leading "~".
//
// The configuration lives at $XDG_CONFIG_HOME/stash/stash.toml (falling back
// to ~/.config on Unix). A stash.yaml sibling is accepted as well; if both
// exist, the TOML file wins. A missing file is not an error and yields a
// zero-value configuration.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
)

// FS is a filesystem abstraction used for file operations.
// Default is the OS filesystem, but can be replaced with a mock for testing.
var FS = afero.NewOsFs()

const (
	// DefaultLogDir is where rolling logs of past commands are kept unless
	// overridden by the configuration file or the command line.
	DefaultLogDir = "~/.cache/stash"
	// DefaultRetain is the number of log files kept before pruning.
	DefaultRetain = 20
)

var (
	// ErrInvalidConfig is returned when the configuration file cannot be decoded.
	ErrInvalidConfig = errors.New("invalid configuration file")
	// ErrNoConfigDir is returned when the user configuration directory cannot be determined.
	ErrNoConfigDir = errors.New("could not determine configuration directory")
)

// File is the on-disk configuration for stash.
type File struct {
	// Ignore lists program names for which logging is skipped entirely.
	Ignore []string `toml:"ignore" yaml:"ignore"`
	// LogDir overrides the default log directory.
	LogDir string `toml:"log_dir" yaml:"log_dir"`
	// Retain overrides the default number of log files to keep.
	Retain int `toml:"retain" yaml:"retain"`
}

// Load reads the stash configuration file if one exists.
func Load() (File, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return File{}, errors.Join(ErrNoConfigDir, err)
	}

	var cfg File

	tomlPath := filepath.Join(dir, "stash", "stash.toml")
	if data, err := afero.ReadFile(FS, tomlPath); err == nil {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return File{}, errors.Join(ErrInvalidConfig, err)
		}

		return cfg, nil
	}

	yamlPath := filepath.Join(dir, "stash", "stash.yaml")
	if data, err := afero.ReadFile(FS, yamlPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return File{}, errors.Join(ErrInvalidConfig, err)
		}

		return cfg, nil
	}

	return File{}, nil
}

// EffectiveLogDir resolves the log directory: the CLI value when given, then
// the configuration file, then DefaultLogDir. The result has a leading "~"
// expanded.
func (f File) EffectiveLogDir(cliValue string, cliSet bool) (string, error) {
	dir := DefaultLogDir

	switch {
	case cliSet:
		dir = cliValue
	case f.LogDir != "":
		dir = f.LogDir
	}

	return ExpandHome(dir)
}

// EffectiveRetain resolves the retention count: the CLI value when given,
// then the configuration file, then DefaultRetain.
func (f File) EffectiveRetain(cliValue int, cliSet bool) int {
	switch {
	case cliSet:
		return cliValue
	case f.Retain > 0:
		return f.Retain
	}

	return DefaultRetain
}

// ExpandHome replaces a leading "~" in path with the user's home directory.
// Paths without a leading "~" are returned unchanged.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~"+string(os.PathSeparator)) {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path, err //nolint:wrapcheck
	}

	if path == "~" {
		return home, nil
	}

	return filepath.Join(home, path[2:]), nil
}
