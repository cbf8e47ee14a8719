// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package settings

import (
	"fmt"
	"strings"

	"tailscale.com/types/logger"
)

// UnconsumedMode is the policy for tokens that are neither a switch nor a
// positional argument.
type UnconsumedMode uint8

const (
	Allowed UnconsumedMode = iota
	NotAllowed
	Required
)

func (m UnconsumedMode) String() string {
	switch m {
	case Allowed:
		return "allowed"
	case NotAllowed:
		return "not-allowed"
	case Required:
		return "required"
	}
	return fmt.Sprintf("UnconsumedMode(%d)", uint8(m))
}

func (m UnconsumedMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *UnconsumedMode) UnmarshalText(b []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "allowed":
		*m = Allowed
	case "not-allowed", "notallowed", "not_allowed":
		*m = NotAllowed
	case "required":
		*m = Required
	default:
		return fmt.Errorf("invalid unconsumed argument mode %q (want allowed|not-allowed|required)", b)
	}
	return nil
}

// Config controls a single parse.
type Config struct {
	// Indicators are the switch prefixes, tried in order. The first one
	// that prefixes a token is stripped. An empty list disables switches.
	Indicators []string

	// AllowSwitchCharsInArguments lets a switch consume following tokens
	// that look like switches themselves.
	AllowSwitchCharsInArguments bool

	// PropertySwitchesAreExclusive makes the names declared on one field
	// mutually exclusive.
	PropertySwitchesAreExclusive bool

	// ContinueOnFailedValidation keeps scanning when a validator rejects
	// values instead of failing the parse.
	ContinueOnFailedValidation bool

	CaseSensitive bool

	Unconsumed UnconsumedMode

	// Verify runs Descriptor.Validate before parsing. The result is
	// memoized per descriptor.
	Verify bool

	// Logf, if non-nil, receives a trace of parser decisions.
	Logf logger.Logf
}

// DefaultConfig returns the stock configuration: "-" and "/" indicators,
// case-insensitive names, exclusive property switches and leftovers
// allowed.
func DefaultConfig() Config {
	return Config{
		Indicators:                   []string{"-", "/"},
		PropertySwitchesAreExclusive: true,
	}
}

// SameName reports whether a and b name the same switch under c's case
// rule.
func (c Config) SameName(a, b string) bool {
	if c.CaseSensitive {
		return a == b
	}
	return strings.EqualFold(a, b)
}

// Tracef forwards to Logf when one is configured.
func (c Config) Tracef(format string, args ...any) {
	if c.Logf != nil {
		c.Logf(format, args...)
	}
}

// ruleKey is the part of a Config that changes how a descriptor is read.
type ruleKey struct {
	caseSensitive bool
	propExclusive bool
}

type checkKey struct {
	ruleKey
	unconsumed UnconsumedMode
}

func (c Config) ruleKey() ruleKey {
	return ruleKey{caseSensitive: c.CaseSensitive, propExclusive: c.PropertySwitchesAreExclusive}
}

func (c Config) checkKey() checkKey {
	return checkKey{ruleKey: c.ruleKey(), unconsumed: c.Unconsumed}
}
