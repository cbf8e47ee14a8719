// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package settings

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"tailscale.com/util/must"
)

type (
	dupNames struct {
		A string `switch:"x"`
		B string `switch:"X"`
	}
	selfExclusive struct {
		A string `switch:"x" exclusive:"X"`
	}
	unknownExclusive struct {
		A string `switch:"x" exclusive:"y"`
	}
	zeroOccurs struct {
		A string `switch:"x" occurs:"0"`
	}
	invertedOccurs struct {
		A string `switch:"x" occurs:"3-2"`
	}
	invertedArgs struct {
		A []int `switch:"x" args:"2-1"`
	}
	scalarSep struct {
		A string `switch:"x" sep:","`
	}
	scalarManyArgs struct {
		A string `switch:"x" args:"0-2"`
	}
	requiredExclusive struct {
		A string `switch:"a" occurs:"1" exclusive:"b"`
		B string `switch:"b" occurs:"1-*"`
	}
	requiredAliases struct {
		A string `switch:"a,b" occurs:"1"`
	}
	gapArgs struct {
		A string `pos:"0"`
		B string `pos:"2"`
	}
	dupArgs struct {
		A string `pos:"0"`
		B string `pos:"0"`
	}
	collectionArg struct {
		A []int `pos:"0"`
	}
	globalValidator struct {
		Rest []string `leftover:"" validate:"CheckRest"`
	}
	twoParams struct {
		A string `switch:"a" validate:"TwoParams"`
	}
	badResult struct {
		A string `switch:"a" validate:"BadResult"`
	}
	scalarCount struct {
		A int `switch:"a" validate:"ScalarCount"`
	}
	positionalCount struct {
		A []string `switch:"a"`
		B string   `pos:"0" validate:"PositionalCount"`
	}
	wrongParam struct {
		A string `switch:"a" validate:"WrongParam"`
	}
	leftoverCount struct {
		Rest []string `leftover:"" validate:"LeftoverCount"`
	}
	noLeftover struct {
		N int `switch:"n"`
	}
)

func (*globalValidator) CheckRest([]string) bool { return true }
func (*twoParams) TwoParams(a, b string) bool { return true }
func (*badResult) BadResult(string) string { return "" }
func (*scalarCount) ScalarCount(int) int { return 1 }
func (*positionalCount) PositionalCount(string) int { return 1 }
func (*wrongParam) WrongParam(int) bool { return true }
func (*leftoverCount) LeftoverCount([]string) (int, error) { return 0, nil }

func TestValidate(t *testing.T) {
	notAllowed := DefaultConfig()
	notAllowed.Unconsumed = NotAllowed
	required := DefaultConfig()
	required.Unconsumed = Required

	tests := []struct {
		name string
		typ  reflect.Type
		cfg  Config
		want string // substring of the error, "" for valid
	}{
		{"duplicate names", reflect.TypeFor[dupNames](), DefaultConfig(), "duplicate switch name"},
		{"self exclusive", reflect.TypeFor[selfExclusive](), DefaultConfig(), "exclusive of itself"},
		{"unknown exclusive", reflect.TypeFor[unknownExclusive](), DefaultConfig(), `unknown switch "y"`},
		{"zero max occurrences", reflect.TypeFor[zeroOccurs](), DefaultConfig(), "must be positive or unlimited"},
		{"inverted occurrences", reflect.TypeFor[invertedOccurs](), DefaultConfig(), "minimum occurrences 3 exceeds maximum 2"},
		{"inverted arguments", reflect.TypeFor[invertedArgs](), DefaultConfig(), "minimum arguments 2 exceeds maximum 1"},
		{"separator on scalar", reflect.TypeFor[scalarSep](), DefaultConfig(), "separator on a scalar field"},
		{"many arguments on scalar", reflect.TypeFor[scalarManyArgs](), DefaultConfig(), "more than one argument"},
		{"required exclusive", reflect.TypeFor[requiredExclusive](), DefaultConfig(), `exclusive of required switch "b"`},
		{"required aliases", reflect.TypeFor[requiredAliases](), DefaultConfig(), `exclusive of required switch "b"`},
		{"gap in positional indices", reflect.TypeFor[gapArgs](), DefaultConfig(), "missing 1"},
		{"duplicate positional index", reflect.TypeFor[dupArgs](), DefaultConfig(), "index also declared on field A"},
		{"collection positional", reflect.TypeFor[collectionArg](), DefaultConfig(), "cannot be a collection"},
		{"leftover validator when leftovers are not allowed", reflect.TypeFor[globalValidator](), notAllowed, "leftover arguments not allowed"},
		{"leftover validator", reflect.TypeFor[globalValidator](), DefaultConfig(), ""},
		{"two parameters", reflect.TypeFor[twoParams](), DefaultConfig(), "exactly one value parameter, has 2"},
		{"string result", reflect.TypeFor[badResult](), DefaultConfig(), "must return bool or int, not string"},
		{"count on scalar", reflect.TypeFor[scalarCount](), DefaultConfig(), "returning a count must take a slice"},
		{"count on positional", reflect.TypeFor[positionalCount](), DefaultConfig(), "positional validator must return bool"},
		{"mismatched parameter", reflect.TypeFor[wrongParam](), DefaultConfig(), "parameter type int does not match"},
		{"count on leftovers", reflect.TypeFor[leftoverCount](), DefaultConfig(), "leftover validator must return bool"},
		{"leftovers required without a field", reflect.TypeFor[noLeftover](), required, "no leftover field"},
		{"leftovers allowed without a field", reflect.TypeFor[noLeftover](), DefaultConfig(), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := must.Get(Build(tt.typ))
			err := d.Validate(tt.cfg)
			if tt.want == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, ErrDescriptor) {
				t.Fatalf("Validate() = %v, want ErrDescriptor", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestValidateDependsOnConfig(t *testing.T) {
	d := must.Get(Build(reflect.TypeFor[requiredAliases]()))
	cfg := DefaultConfig()
	cfg.PropertySwitchesAreExclusive = false
	if err := d.Validate(cfg); err != nil {
		t.Errorf("Validate() without property exclusivity = %v", err)
	}

	d = must.Get(Build(reflect.TypeFor[dupNames]()))
	cfg = DefaultConfig()
	cfg.CaseSensitive = true
	if err := d.Validate(cfg); err != nil {
		t.Errorf("Validate() case-sensitive = %v", err)
	}
}

func TestValidateIsMemoized(t *testing.T) {
	d := must.Get(Build(reflect.TypeFor[dupNames]()))
	first := d.Validate(DefaultConfig())
	second := d.Validate(DefaultConfig())
	if first == nil || first != second {
		t.Errorf("Validate() = %v then %v, want the same error twice", first, second)
	}

	d = must.Get(Build(reflect.TypeFor[tagged]()))
	if err := d.Validate(DefaultConfig()); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	// A typed nil in the interface would fail this comparison.
	if err := d.Validate(DefaultConfig()); err != nil {
		t.Errorf("second Validate() = %#v", err)
	}
}

type bound struct {
	Name  string
	Count int
	Rest  []string
}

func TestValidateBuilderBindings(t *testing.T) {
	tests := []struct {
		name string
		b    *Builder
		want string
	}{
		{
			name: "validator for unknown switch",
			b:    NewBuilder[bound]().Switch("Name", "n").ValidateSwitch("missing", func(string) bool { return true }),
			want: `no switch named "missing"`,
		},
		{
			name: "validator for unknown argument",
			b:    NewBuilder[bound]().Argument("Name", 0, true).ValidateArgument(3, func(string) bool { return true }),
			want: "no positional argument 3",
		},
		{
			name: "two validators on one switch",
			b: NewBuilder[bound]().Switch("Name", "n").
				ValidateSwitch("n", func(string) bool { return true }).
				ValidateSwitch("N", func(string) bool { return true }),
			want: "switch already validated",
		},
		{
			name: "two leftover validators",
			b: NewBuilder[bound]().Leftover("Rest").
				ValidateLeftover(func([]string) bool { return true }).
				ValidateLeftover(func([]string) bool { return false }),
			want: "second leftover validator",
		},
		{
			name: "leftover validator without leftover field",
			b:    NewBuilder[bound]().ValidateLeftover(func([]string) bool { return true }),
			want: "without a leftover field",
		},
		{
			name: "switch and index",
			b:    NewBuilder[bound]().Switch("Name", "n").Validator(Validator{Switch: "n", Index: 0}, func(string) bool { return true }),
			want: "bound to both",
		},
		{
			name: "unbound",
			b:    NewBuilder[bound]().Validator(Validator{Index: -1}, func(string) bool { return true }),
			want: "not bound to anything",
		},
		{
			name: "set value of the wrong type",
			b:    NewBuilder[bound]().Switch("Count", "c", Set("three")),
			want: "set value is not assignable to int",
		},
		{
			name: "func validators",
			b: NewBuilder[bound]().
				Switch("Count", "c").
				Argument("Name", 0, false).
				Leftover("Rest").
				ValidateSwitch("C", func(n int) bool { return n > 0 }).
				ValidateArgument(0, func(s string) (bool, error) { return s != "", nil }).
				ValidateLeftover(func([]string) bool { return true }),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := must.Get(tt.b.Build())
			err := d.Validate(DefaultConfig())
			if tt.want == "" {
				if err != nil {
					t.Fatalf("Validate() = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want it to contain %q", err, tt.want)
			}
		})
	}
}
