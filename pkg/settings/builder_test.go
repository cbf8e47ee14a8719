// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package settings

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/yeetrun/cmdsettings/pkg/convert"
	"tailscale.com/util/must"
)

func TestSplitAny(t *testing.T) {
	tests := []struct {
		in, seps string
		want     []string
	}{
		{"a;b", ";", []string{"a", "b"}},
		{" a;b c|d", ";| ", []string{"", "a", "b", "c", "d"}},
		{"a;;b", ";", []string{"a", "", "b"}},
		{"a;b", "", []string{"a;b"}},
		{"", ";", []string{""}},
		{"x→y", "→", []string{"x", "y"}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, SplitAny(tt.in, tt.seps)); diff != "" {
			t.Errorf("SplitAny(%q, %q) mismatch (-want +got):\n%s", tt.in, tt.seps, diff)
		}
	}
}

type level int

const (
	levelLow level = iota
	levelHigh
)

type built1 struct {
	Level   level
	Timeout time.Duration
	Files   []string
	Rest    []string
}

func (*built1) NotEmpty(files []string) int {
	for i, f := range files {
		if f == "" {
			return i
		}
	}
	return len(files)
}

func TestBuilder(t *testing.T) {
	reg := convert.NewRegistry()
	must.Do(reg.RegisterEnum(reflect.TypeFor[level](), false,
		convert.Member{Name: "low", Value: levelLow},
		convert.Member{Name: "high", Value: levelHigh}))

	d := must.Get(NewBuilder[built1](WithRegistry(reg)).
		Switch("Level", "level").
		Switch("Level", "hi", Set(levelHigh), Args(0, 0)).
		Switch("Timeout", "", Occurs(1, 1)).
		Switch("Files", "f", Join(), Separator(","), ExclusiveOf("level")).
		Leftover("Rest").
		ValidateSwitch("f", "NotEmpty").
		Build())

	if err := d.Validate(DefaultConfig()); err != nil {
		t.Fatalf("Validate() = %v", err)
	}

	if got := d.Switches[0].Target.Kind; got != convert.Enum {
		t.Errorf("level kind = %v, want enum", got)
	}
	if got := d.Switches[1].SetValue.Interface(); got != levelHigh {
		t.Errorf("hi set value = %v", got)
	}
	if got := d.Switches[2].Name; got != "Timeout" {
		t.Errorf("unnamed switch = %q, want field name", got)
	}
	if s := d.Switches[3]; s.Validator == nil || s.Validator.Mode() != ArgValues {
		t.Errorf("f validator = %+v, want values mode", s.Validator)
	}
	if !strings.HasSuffix(d.Switches[3].Validator.Func, ".NotEmpty") {
		t.Errorf("validator name = %q", d.Switches[3].Validator.Func)
	}

	r := d.Rules(DefaultConfig())
	if r.Lookup("LEVEL") != d.Switches[0] {
		t.Error("Lookup is not case-insensitive by default")
	}
	if r.Lookup("nope") != nil {
		t.Error("Lookup(nope) != nil")
	}
	// level and hi share a field; f excludes level explicitly.
	for _, pair := range [][2]int{{0, 1}, {1, 0}, {3, 0}, {0, 3}} {
		if !r.Excludes(pair[0], pair[1]) {
			t.Errorf("Excludes(%d, %d) = false", pair[0], pair[1])
		}
	}
	if r.Excludes(1, 3) || r.Excludes(2, 3) {
		t.Error("unrelated switches exclude each other")
	}

	cfg := DefaultConfig()
	cfg.CaseSensitive = true
	cfg.PropertySwitchesAreExclusive = false
	r = d.Rules(cfg)
	if r.Lookup("LEVEL") != nil {
		t.Error("case-sensitive Lookup(LEVEL) != nil")
	}
	if r.Excludes(0, 1) {
		t.Error("property switches exclusive with the option off")
	}
	if d.Rules(cfg) != r {
		t.Error("Rules is not memoized")
	}
}

func TestBuilderFieldErrors(t *testing.T) {
	tests := []struct {
		name string
		b    *Builder
		want string
	}{
		{"missing field", NewBuilder[built1]().Switch("Nope", "n"), "no such field"},
		{"missing leftover", NewBuilder[built1]().Leftover("Nope"), "no such field"},
		{"leftover type", NewBuilder[built1]().Leftover("Level"), "leftover field must be an exported []string"},
		{"missing method", NewBuilder[built1]().Switch("Files", "f").ValidateSwitch("f", "Nope"), "no method Nope"},
		{"not a func", NewBuilder[built1]().Switch("Files", "f").ValidateSwitch("f", 42), "must be a func or a method name"},
		{"bad option", NewBuilder[built1]().Switch("Timeout", "t", SetText("soon")), "bad option"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.b.Build()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Build() = %v, want it to contain %q", err, tt.want)
			}
		})
	}
}

type embedded struct {
	Inner struct {
		Depth int
	}
}

func TestBuilderDottedPath(t *testing.T) {
	d := must.Get(NewBuilder[embedded]().Switch("Inner.Depth", "depth").Build())
	if got := d.Switches[0].Slot.Index; !cmp.Equal(got, []int{0, 0}) {
		t.Errorf("Inner.Depth index = %v, want [0 0]", got)
	}
}
