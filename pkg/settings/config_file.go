// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package settings

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ConfigFileName is the file FindConfigFile looks for.
const ConfigFileName = ".cmdsettings.toml"

// fileConfig is the on-disk form of Config. Absent keys keep the value of
// the Config being overlaid.
type fileConfig struct {
	Indicators                   []string        `toml:"indicators" yaml:"indicators"`
	AllowSwitchCharsInArguments  *bool           `toml:"allow_switch_chars_in_arguments" yaml:"allow_switch_chars_in_arguments"`
	PropertySwitchesAreExclusive *bool           `toml:"property_switches_are_exclusive" yaml:"property_switches_are_exclusive"`
	ContinueOnFailedValidation   *bool           `toml:"continue_on_failed_validation" yaml:"continue_on_failed_validation"`
	CaseSensitive                *bool           `toml:"case_sensitive" yaml:"case_sensitive"`
	Unconsumed                   *UnconsumedMode `toml:"unconsumed" yaml:"unconsumed"`
	Verify                       *bool           `toml:"verify" yaml:"verify"`
}

func (fc fileConfig) apply(cfg Config) Config {
	if fc.Indicators != nil {
		cfg.Indicators = fc.Indicators
	}
	setIf(&cfg.AllowSwitchCharsInArguments, fc.AllowSwitchCharsInArguments)
	setIf(&cfg.PropertySwitchesAreExclusive, fc.PropertySwitchesAreExclusive)
	setIf(&cfg.ContinueOnFailedValidation, fc.ContinueOnFailedValidation)
	setIf(&cfg.CaseSensitive, fc.CaseSensitive)
	setIf(&cfg.Unconsumed, fc.Unconsumed)
	setIf(&cfg.Verify, fc.Verify)
	return cfg
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// LoadConfigFile overlays the TOML or YAML file at path onto base. The
// format is chosen by extension; ".yaml" and ".yml" are YAML, anything
// else is TOML.
func LoadConfigFile(path string, base Config) (Config, error) {
	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		raw, err := os.ReadFile(path)
		if err != nil {
			return base, err
		}
		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(true)
		if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
			return base, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	default:
		md, err := toml.DecodeFile(path, &fc)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return base, err
			}
			return base, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return base, fmt.Errorf("failed to parse %s: unknown key %q", path, undecoded[0].String())
		}
	}
	return fc.apply(base), nil
}

// FindConfigFile walks up from startDir looking for ConfigFileName. It
// returns an error wrapping os.ErrNotExist when there is none.
func FindConfigFile(startDir string) (string, error) {
	dir := startDir
	for {
		path := filepath.Join(dir, ConfigFileName)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%s: %w", ConfigFileName, os.ErrNotExist)
		}
		dir = parent
	}
}
