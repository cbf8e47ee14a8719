// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"net/netip"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"
	"github.com/yeetrun/cmdsettings/pkg/convert"
	"github.com/yeetrun/cmdsettings/pkg/settings"
)

func init() {
	convert.Register(convert.Default, semver.StrictNewVersion)
}

// example is one settings type the demo can parse.
type example struct {
	name        string
	description string
	usage       string
	examples    []string
	descriptor  func() (*settings.Descriptor, error)
	// newValue returns a pointer to a fresh settings value.
	newValue func() any
	// report turns a parsed value into what gets printed. Nil prints the
	// value itself.
	report func(any) (any, error)
}

var examples = []example{
	{
		name:        "backup",
		description: "Action switches, a joined list, flags and three positionals",
		usage:       "-- [-add|-remove|-modify|-action NAME] [-log FILE] [-s] [INPUT [OUTPUT [ACTION]]]",
		examples: []string{
			"settingsdemo backup -- -remove -log out.log in.txt out.txt",
			"settingsdemo backup -- -writemode Append Overwrite|Truncate ---mylista;b;c",
		},
		descriptor: backupDescriptor,
		newValue:   func() any { return &backupSettings{Action: actionAdd} },
	},
	{
		name:        "vars",
		description: "Variable lists with a counting validator and a joined switch",
		usage:       "-- [-var NAME...] [-otherA; B]",
		examples:    []string{"settingsdemo vars -- -var a b c \"-otherx; y;z\""},
		descriptor:  settings.For[varsSettings],
		newValue:    func() any { return new(varsSettings) },
	},
	{
		name:        "count",
		description: "A single integer switch",
		usage:       "-- [-count N]",
		examples:    []string{"settingsdemo count -- /count 3"},
		descriptor:  settings.For[countSettings],
		newValue:    func() any { return new(countSettings) },
	},
	{
		name:        "release",
		description: "Custom converters: semantic versions, UUIDs, URLs and addresses",
		usage:       "-- -version SEMVER [-requiresV1,V2] [-satisfies CONSTRAINT] [-id UUID] CHANNEL",
		examples: []string{
			"settingsdemo release -- -version 1.4.0 -satisfies \">=1.2\" -timeout 90s stable",
		},
		descriptor: settings.For[releaseSettings],
		newValue:   func() any { return new(releaseSettings) },
		report:     releaseReport,
	},
}

func findExample(name string) (example, bool) {
	i := slices.IndexFunc(examples, func(e example) bool { return e.name == name })
	if i < 0 {
		return example{}, false
	}
	return examples[i], true
}

type action int

const (
	actionAdd action = iota
	actionRemove
	actionModify
)

var actionMembers = []convert.Member{
	{Name: "Add", Value: actionAdd},
	{Name: "Remove", Value: actionRemove},
	{Name: "Modify", Value: actionModify},
}

func (action) EnumMembers() []convert.Member { return actionMembers }

func (a action) MarshalText() ([]byte, error) {
	for _, m := range actionMembers {
		if m.Value == a {
			return []byte(m.Name), nil
		}
	}
	return []byte(strconv.Itoa(int(a))), nil
}

type writeMode uint8

const (
	writeAppend writeMode = 1 << iota
	writeOverwrite
	writeReplace
	writeReverse
	writeRepeat
	writeTruncate
)

var writeModeMembers = []convert.Member{
	{Name: "None", Value: writeMode(0)},
	{Name: "Append", Value: writeAppend},
	{Name: "Overwrite", Value: writeOverwrite},
	{Name: "Replace", Value: writeReplace},
	{Name: "Reverse", Value: writeReverse},
	{Name: "Repeat", Value: writeRepeat},
	{Name: "Truncate", Value: writeTruncate},
}

func (writeMode) EnumMembers() []convert.Member { return writeModeMembers }
func (writeMode) EnumFlags() bool { return true }

func (m writeMode) MarshalText() ([]byte, error) {
	if m == 0 {
		return []byte("None"), nil
	}
	var names []string
	for _, mem := range writeModeMembers[1:] {
		if v := mem.Value.(writeMode); m&v != 0 {
			names = append(names, mem.Name)
			m &^= v
		}
	}
	if m != 0 {
		names = append(names, strconv.Itoa(int(m)))
	}
	return []byte(strings.Join(names, "|")), nil
}

// backupSettings is declared with the builder rather than tags.
type backupSettings struct {
	Action     action      `yaml:"action"`
	Log        string      `yaml:"log,omitempty"`
	Silent     bool        `yaml:"silent"`
	Messages   []string    `yaml:"messages,omitempty"`
	Folder     []writeMode `yaml:"writemode,omitempty"`
	MyList     []string    `yaml:"mylist,omitempty"`
	TrueFalse  bool        `yaml:"truefalse"`
	InputFile  string      `yaml:"input,omitempty"`
	OutputFile string      `yaml:"output,omitempty"`
	ActionArg  action      `yaml:"action_arg"`
	Unconsumed []string    `yaml:"unconsumed,omitempty"`
}

func (*backupSettings) ValidateTrueFalse(s string) bool {
	_, err := strconv.ParseBool(s)
	return err == nil
}

func (*backupSettings) ValidateFilePath(p string) bool { return strings.TrimSpace(p) != "" }

func (*backupSettings) ValidateActionArg(action) bool { return true }

func (*backupSettings) ValidateWriteMode(modes []writeMode) int {
	// Stop at the first mode that asks to both append and overwrite.
	for i, m := range modes {
		if m&writeAppend != 0 && m&writeOverwrite != 0 {
			return i
		}
	}
	return len(modes)
}

func (*backupSettings) ValidateUnconsumed([]string) bool { return true }

var backupDescriptor = sync.OnceValues(func() (*settings.Descriptor, error) {
	return settings.NewBuilder[backupSettings]().
		Switch("Action", "action", settings.Args(1, settings.Unlimited)).
		Switch("Action", "add", settings.Set(actionAdd), settings.Args(0, 0), settings.ExclusiveOf("action", "remove", "modify")).
		Switch("Action", "remove", settings.Set(actionRemove), settings.Args(0, 0), settings.ExclusiveOf("action", "add", "modify")).
		Switch("Action", "modify", settings.Set(actionModify), settings.Args(0, 0), settings.ExclusiveOf("action", "add", "remove")).
		Switch("Log", "", settings.Args(1, settings.Unlimited)).
		Switch("Silent", "s", settings.Set(true)).
		Switch("Silent", "silent", settings.Set(true)).
		Switch("Messages", "").
		Switch("Folder", "writemode").
		Switch("MyList", "--mylist", settings.Join()).
		Switch("TrueFalse", "truefalse", settings.Args(1, settings.Unlimited)).
		Switch("InputFile", "input").
		Argument("InputFile", 0, false).
		Argument("OutputFile", 1, false).
		Argument("ActionArg", 2, false).
		Leftover("Unconsumed").
		ValidateSwitch("truefalse", "ValidateTrueFalse").
		ValidateSwitch("writemode", "ValidateWriteMode").
		ValidateArgument(0, "ValidateFilePath").
		ValidateArgument(1, "ValidateFilePath").
		ValidateArgument(2, "ValidateActionArg").
		ValidateLeftover("ValidateUnconsumed").
		Build()
})

type varsSettings struct {
	Var   []string `switch:"var" validate:"ValidateVar" yaml:"var,omitempty"`
	Other []string `switch:"other" args:"0-4" join:"" sep:"; " yaml:"other,omitempty"`
	Rest  []string `leftover:"" validate:"ValidateRest" yaml:"unconsumed,omitempty"`
}

// ValidateVar accepts names up to the first one that is not an
// identifier.
func (*varsSettings) ValidateVar(names []string) int {
	for i, n := range names {
		if n == "" || strings.ContainsAny(n, " =") {
			return i
		}
	}
	return len(names)
}

func (*varsSettings) ValidateRest([]string) bool { return true }

type countSettings struct {
	Count int      `switch:"count" args:"1" yaml:"count"`
	Rest  []string `leftover:"" yaml:"unconsumed,omitempty"`
}

var channels = []string{"stable", "beta", "nightly"}

type releaseSettings struct {
	Version   *semver.Version   `switch:"version" occurs:"1" args:"1"`
	Requires  []*semver.Version `switch:"requires" join:"" sep:","`
	Satisfies string            `switch:"satisfies"`
	ID        uuid.UUID         `switch:"id"`
	Timeout   time.Duration     `switch:"timeout"`
	Mirror    *url.URL          `switch:"mirror"`
	Listen    netip.AddrPort    `switch:"listen"`
	Channel   string            `pos:"0" validate:"ValidateChannel"`
	Notes     []string          `leftover:""`
}

func (*releaseSettings) ValidateChannel(c string) bool { return slices.Contains(channels, c) }

type releaseOutput struct {
	Version   string   `yaml:"version"`
	Requires  []string `yaml:"requires,omitempty"`
	Satisfies *bool    `yaml:"satisfies,omitempty"`
	ID        string   `yaml:"id,omitempty"`
	Timeout   string   `yaml:"timeout,omitempty"`
	Mirror    string   `yaml:"mirror,omitempty"`
	Listen    string   `yaml:"listen,omitempty"`
	Channel   string   `yaml:"channel"`
	Notes     []string `yaml:"notes,omitempty"`
}

func releaseReport(v any) (any, error) {
	s := v.(*releaseSettings)
	out := releaseOutput{Channel: s.Channel, Notes: s.Notes}
	if s.Version != nil {
		out.Version = s.Version.String()
	}
	for _, r := range s.Requires {
		out.Requires = append(out.Requires, r.String())
	}
	if s.Satisfies != "" && s.Version != nil {
		c, err := semver.NewConstraint(s.Satisfies)
		if err != nil {
			return nil, fmt.Errorf("invalid constraint %q: %w", s.Satisfies, err)
		}
		ok := c.Check(s.Version)
		out.Satisfies = &ok
	}
	if s.ID != uuid.Nil {
		out.ID = s.ID.String()
	}
	if s.Timeout != 0 {
		out.Timeout = s.Timeout.String()
	}
	if s.Mirror != nil {
		out.Mirror = s.Mirror.String()
	}
	if s.Listen.IsValid() {
		out.Listen = s.Listen.String()
	}
	return out, nil
}
