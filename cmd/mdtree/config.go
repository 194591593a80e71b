// Copyright 2024 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"zombiezen.com/go/mdtree"
)

// Output formats.
const (
	formatTree     = "tree"
	formatHTML     = "html"
	formatMarkdown = "markdown"
)

// Config is the merged configuration from defaults,
// the config file, MDTREE_* environment variables, and flags.
type Config struct {
	Format     string `mapstructure:"format"`
	MaxNesting int    `mapstructure:"max_nesting"`
	IgnoreRaw  bool   `mapstructure:"ignore_raw"`
	SoftBreak  string `mapstructure:"soft_break"`
	LogLevel   string `mapstructure:"log_level"`
}

// flagKeys maps configuration keys to the flags that override them.
var flagKeys = map[string]string{
	"format":      "format",
	"max_nesting": "max-nesting",
	"ignore_raw":  "ignore-raw",
	"soft_break":  "soft-break",
	"log_level":   "log-level",
}

// loadConfig reads configuration into v.
// If configFile is empty, mdtree.yaml is searched for
// in the user's config directory, the home directory, and the working directory,
// and a missing file is not an error.
func loadConfig(v *viper.Viper, flags *pflag.FlagSet, configFile string) (*Config, error) {
	v.SetDefault("format", formatTree)
	v.SetDefault("max_nesting", mdtree.DefaultMaxNesting)
	v.SetDefault("ignore_raw", false)
	v.SetDefault("soft_break", mdtree.SoftBreakPreserve.String())
	v.SetDefault("log_level", "warn")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("mdtree")
		v.SetConfigType("yaml")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "mdtree"))
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix("MDTREE")
	v.AutomaticEnv()

	for key, name := range flagKeys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return nil, fmt.Errorf("bind --%s: %w", name, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) validate() error {
	switch cfg.Format {
	case formatTree, formatHTML, formatMarkdown:
	default:
		return fmt.Errorf("unknown format %q (must be %s, %s, or %s)", cfg.Format, formatTree, formatHTML, formatMarkdown)
	}
	if cfg.MaxNesting < 1 {
		return fmt.Errorf("max nesting must be positive (got %d)", cfg.MaxNesting)
	}
	if _, err := mdtree.ParseSoftBreakBehavior(cfg.SoftBreak); err != nil {
		return err
	}
	return nil
}

func (cfg *Config) parseOptions() *mdtree.ParseOptions {
	return &mdtree.ParseOptions{MaxNesting: cfg.MaxNesting}
}

func (cfg *Config) htmlRenderer() *mdtree.HTMLRenderer {
	// Already checked by validate.
	softBreak, _ := mdtree.ParseSoftBreakBehavior(cfg.SoftBreak)
	return &mdtree.HTMLRenderer{
		SoftBreakBehavior: softBreak,
		IgnoreRaw:         cfg.IgnoreRaw,
	}
}
