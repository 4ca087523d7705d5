// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package config resolves .janitor.yaml / JANITOR_* environment overrides
// into validated pipeline and editor options, the way the teacher's own
// cobra/viper commands resolve theirs.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/codejanitor/janitor/services/janitor/extscan"
	"github.com/codejanitor/janitor/services/janitor/graph"
	"github.com/codejanitor/janitor/services/janitor/pipeline"
)

// Config is the resolved, validated shape of `.janitor.yaml` (or
// JANITOR_*-prefixed env vars). Every directory/extension set the
// pipeline and its collaborators use is overridable here.
type Config struct {
	ExcludedDirs    []string  `mapstructure:"excluded_dirs" validate:"dive,min=1"`
	ProtectedDirs   []string  `mapstructure:"protected_dirs" validate:"dive,min=1"`
	EntryPointFiles []string  `mapstructure:"entry_point_files" validate:"dive,min=1"`
	PluginDirs      []string  `mapstructure:"plugin_dirs" validate:"dive,min=1"`
	GrepExtensions  []string  `mapstructure:"grep_extensions" validate:"dive,min=1"`
	LibraryMode     bool      `mapstructure:"library_mode"`
	Languages       Languages `mapstructure:"languages"`
}

// Languages toggles each CST driver independently, so a project that is
// pure Python can skip compiling queries for grammars it never hits.
type Languages struct {
	Python     bool `mapstructure:"python"`
	JavaScript bool `mapstructure:"javascript"`
	TypeScript bool `mapstructure:"typescript"`
	Cpp        bool `mapstructure:"cpp"`
	Rust       bool `mapstructure:"rust"`
}

// DefaultLanguages enables every driver, matching the CST Host's own
// zero-config default.
func DefaultLanguages() Languages {
	return Languages{Python: true, JavaScript: true, TypeScript: true, Cpp: true, Rust: true}
}

var validate = validator.New()

// Load resolves configuration from (in ascending priority) built-in
// defaults, `.janitor.yaml` in searchPaths, and `JANITOR_*` environment
// variables, then validates the result.
func Load(searchPaths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(".janitor")
	v.SetConfigType("yaml")
	for _, p := range searchPaths {
		v.AddConfigPath(p)
	}
	v.SetEnvPrefix("JANITOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: reading .janitor.yaml: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshaling: %w", err)
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config: invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("excluded_dirs", setKeys(pipeline.DefaultOptions().GrepShieldOptions.ExcludeDirs))
	v.SetDefault("protected_dirs", setKeys(pipeline.DefaultProtectedDirs))
	v.SetDefault("plugin_dirs", setKeys(pipeline.DefaultOptions().PluginDirs))
	v.SetDefault("grep_extensions", setKeys(extscan.DefaultGrepExtensions))
	v.SetDefault("entry_point_files", []string{"wsgi.py", "asgi.py", "manage.py", "main.py", "app.py"})
	v.SetDefault("library_mode", false)
	v.SetDefault("languages.python", true)
	v.SetDefault("languages.javascript", true)
	v.SetDefault("languages.typescript", true)
	v.SetDefault("languages.cpp", true)
	v.SetDefault("languages.rust", true)
}

func setKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// EnabledLanguages lowers the per-language toggles into the driver-name set
// ast.NewHostForLanguages expects.
func (c *Config) EnabledLanguages() map[string]bool {
	return map[string]bool{
		"python":     c.Languages.Python,
		"javascript": c.Languages.JavaScript,
		"typescript": c.Languages.TypeScript,
		"cpp":        c.Languages.Cpp,
		"rust":       c.Languages.Rust,
	}
}

// ToBuildOptions lowers the excluded-directory set into the graph builder's
// walk options.
func (c *Config) ToBuildOptions() graph.BuildOptions {
	return graph.BuildOptions{ExcludeDirs: toSet(c.ExcludedDirs)}
}

// ToPipelineOptions lowers the resolved config into pipeline.Options.
func (c *Config) ToPipelineOptions() pipeline.Options {
	opts := pipeline.DefaultOptions()
	opts.ProtectedDirs = toSet(c.ProtectedDirs)
	opts.PluginDirs = toSet(c.PluginDirs)
	opts.LibraryMode = c.LibraryMode
	opts.GrepShieldOptions.ExcludeDirs = toSet(c.ExcludedDirs)
	opts.GrepShieldOptions.Extensions = toSet(c.GrepExtensions)
	opts.BridgeExcludeDirs = toSet(c.ExcludedDirs)
	opts.OrphanEntryPointFiles = toSet(c.EntryPointFiles)
	return opts
}

func toSet(values []string) map[string]bool {
	out := make(map[string]bool, len(values))
	for _, v := range values {
		out[v] = true
	}
	return out
}
