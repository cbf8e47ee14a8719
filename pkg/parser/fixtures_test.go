// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parser

import (
	"errors"
	"strings"

	"github.com/yeetrun/cmdsettings/pkg/convert"
	"github.com/yeetrun/cmdsettings/pkg/settings"
)

type testEnum int

const (
	Value1 testEnum = iota + 1
	Value2
	Value3
	Value4
	Value5
)

func (testEnum) EnumMembers() []convert.Member {
	return []convert.Member{
		{Name: "Value1", Value: Value1}, {Name: "Value2", Value: Value2}, {Name: "Value3", Value: Value3}, {Name: "Value4", Value: Value4}, {Name: "Value5", Value: Value5},
	}
}

type testFlags uint32

const (
	Flag1 testFlags = 1 << iota
	Flag2
	Flag3
	Flag4
	Flag5
)

func (testFlags) EnumMembers() []convert.Member {
	return []convert.Member{
		{Name: "Flag1", Value: Flag1}, {Name: "Flag2", Value: Flag2}, {Name: "Flag3", Value: Flag3}, {Name: "Flag4", Value: Flag4}, {Name: "Flag5", Value: Flag5},
	}
}

func (testFlags) EnumFlags() bool { return true }

type valueSettings struct {
	Name   string   `switch:"Name"`
	Count  int      `switch:"Count"`
	Pair   []string `switch:"Pair" args:"2-*"`
	Once   string   `switch:"Once" occurs:"0-1"`
	Silent bool     `switch:"Silent" set:"true"`

	IntList   []int `switch:"IntList"`
	IntListVM []int `switch:"IntListVM" validate:"HalfInts"`

	MyJoinedString []string `switch:"MyJoinedString=" join:"" sep:";| "`
	JoinedInts     []int    `switch:"JoinedIntListAlways1Element" join:"" sep:""`

	Enum      testEnum   `switch:"Enum"`
	EnumArray []testEnum `switch:"EnumArray"`

	FlagsEnumVM1       testFlags   `switch:"FlagsEnumVM1" validate:"AllFlags"`
	FlagsEnumVM2       testFlags   `switch:"FlagsEnumVM2" validate:"HalfFlags"`
	FlagsEnumArray     []testFlags `switch:"FlagsEnumArray"`
	FlagsEnumJoined    testFlags   `switch:"FlagsEnumJoined" join:""`
	FlagsEnumJoinedSep testFlags   `switch:"FlagsEnumJoinedSep" join:"" sep:";,"`

	Rest []string `leftover:""`
}

func (s *valueSettings) HalfInts(vals []int) int { return len(vals) / 2 }

func (s *valueSettings) AllFlags(f testFlags) bool { return f != 0 }

func (s *valueSettings) HalfFlags(fs []testFlags) int { return len(fs) / 2 }

type exclusiveSettings struct {
	Alpha bool   `switch:"a,alpha" set:"true" exclusive:"beta"`
	Beta  bool   `switch:"beta" set:"true"`
	Gamma string `switch:"gamma"`
}

type positionalSettings struct {
	Input  string   `switch:"input" pos:"0" validate:"CheckPath"`
	Port   int      `pos:"1"`
	Mode   testEnum `pos:"2?" validate:"CheckMode"`
	Rest   []string `leftover:"" validate:"CheckRest"`
	Reject bool     `switch:"reject" set:"true"`
}

func (s *positionalSettings) CheckPath(p string) bool { return !strings.HasPrefix(p, "bad") }

func (s *positionalSettings) CheckMode(m testEnum) bool { return m != Value4 }

func (s *positionalSettings) CheckRest(rest []string) bool { return !s.Reject }

var errBoom = errors.New("boom")

type faultSettings struct {
	Fail   string `switch:"fail" validate:"Fails"`
	Panic  string `switch:"panic" validate:"Panics"`
	Greedy []int  `switch:"greedy" validate:"TooMany"`
}

func (s *faultSettings) Fails(v string) (bool, error) { return false, errBoom }

func (s *faultSettings) Panics(v string) bool { panic("validator exploded") }

func (s *faultSettings) TooMany(v []int) int { return len(v) + 1 }

type prefixSettings struct {
	F    string   `switch:"f" join:""`
	Foo  string   `switch:"foo"`
	Rest []string `leftover:""`
}

type action int

const (
	actionAdd action = iota
	actionRemove
	actionModify
)

func (action) EnumMembers() []convert.Member {
	return []convert.Member{{Name: "Add", Value: actionAdd}, {Name: "Remove", Value: actionRemove}, {Name: "Modify", Value: actionModify}}
}

type actionSettings struct {
	Action action
	Log    string
	Rest   []string
}

func actionDescriptor() (*settings.Descriptor, error) {
	return settings.NewBuilder[actionSettings]().
		Switch("Action", "action", settings.Args(1, settings.Unlimited)).
		Switch("Action", "add", settings.Set(actionAdd), settings.Args(0, 0), settings.ExclusiveOf("action", "remove", "modify")).
		Switch("Action", "remove", settings.Set(actionRemove), settings.Args(0, 0), settings.ExclusiveOf("action", "add", "modify")).
		Switch("Action", "modify", settings.Set(actionModify), settings.Args(0, 0), settings.ExclusiveOf("action", "add", "remove")).
		Switch("Log", "", settings.Args(1, settings.Unlimited)).
		Leftover("Rest").
		Build()
}

func testConfig() settings.Config {
	cfg := settings.DefaultConfig()
	cfg.Verify = true
	return cfg
}

type joinedSettings struct {
	L    []int    `switch:"l" join:"" sep:"," validate:"Half"`
	Rest []string `leftover:""`
}

// Half accepts the first half of the joined values.
func (s *joinedSettings) Half(v []int) int { return len(v) / 2 }

type noLeftoverSettings struct {
	N int `switch:"n"`
}
