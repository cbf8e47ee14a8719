// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package settings

import (
	"reflect"
	"slices"
	"strings"

	"github.com/yeetrun/cmdsettings/pkg/convert"
	"tailscale.com/syncs"
	"tailscale.com/util/mak"
	"tailscale.com/util/set"
)

// DefaultSeparator splits joined arguments of collection switches that do
// not declare their own separator.
const DefaultSeparator = ";"

// Unlimited is the upper bound meaning "no limit" for occurrences and
// argument counts.
const Unlimited = -1

// Slot addresses a field of the settings struct.
type Slot struct {
	Index []int
	Type  reflect.Type
}

// Field returns the addressed field of inst, which must be the settings
// struct value (not a pointer to it).
func (s Slot) Field(inst reflect.Value) reflect.Value {
	return inst.FieldByIndex(s.Index)
}

// Set assigns v to the addressed field.
func (s Slot) Set(inst reflect.Value, v reflect.Value) {
	s.Field(inst).Set(v)
}

// Switch is one switch name bound to a field. A field with several names
// has one Switch per name, all sharing the same Slot.
type Switch struct {
	ID     int // position in Descriptor.Switches
	Name   string
	Field  string
	Slot   Slot
	Target convert.Target

	MinOccurs int
	MaxOccurs int // Unlimited or > 0
	MinArgs   int
	MaxArgs   int // Unlimited, 0 or > 0

	Exclusive []string
	Join      bool
	// Separator splits joined arguments. Nil means the default: ";" for
	// collections, no splitting otherwise.
	Separator *string
	// SetValue is assigned when the switch is given without arguments.
	SetValue reflect.Value

	Validator *Validator
}

// ArgLimit is the effective maximum argument count: targets that hold a
// single value take at most one.
func (s *Switch) ArgLimit() int {
	if s.MaxArgs != 0 && !s.Target.IsCollection() && !s.Target.IsFlags() {
		return 1
	}
	return s.MaxArgs
}

// Sep returns the effective joined-argument separator.
func (s *Switch) Sep() string {
	if s.Separator != nil {
		return *s.Separator
	}
	if s.Target.IsCollection() {
		return DefaultSeparator
	}
	return ""
}

// Argument is a positional argument slot.
type Argument struct {
	Index    int
	Name     string
	Field    string
	Slot     Slot
	Target   convert.Target
	Required bool

	Validator *Validator
}

// Descriptor is the parsed metadata of a settings struct. It is not
// modified after Build returns and may be shared between goroutines.
type Descriptor struct {
	Type       reflect.Type
	Switches   []*Switch
	Arguments  []*Argument // ordered by Index
	Leftover   *Slot       // nil when the struct has no leftover field
	Validators []*Validator

	// Global validates the leftover arguments.
	Global *Validator

	rules   syncs.Map[ruleKey, *Rules]
	checked syncs.Map[checkKey, error]
}

// Rules is a descriptor read under one configuration: switch lookup by
// name and the symmetric exclusion relation between switches.
type Rules struct {
	fold      bool
	names     map[string]*Switch
	exclusive []set.Set[int]
}

// Rules returns the lookup tables for cfg, building them on first use.
func (d *Descriptor) Rules(cfg Config) *Rules {
	r, _ := d.rules.LoadOrInit(cfg.ruleKey(), func() *Rules {
		return d.buildRules(cfg)
	})
	return r
}

func (d *Descriptor) buildRules(cfg Config) *Rules {
	r := &Rules{
		fold:      !cfg.CaseSensitive,
		exclusive: make([]set.Set[int], len(d.Switches)),
	}
	for _, s := range d.Switches {
		k := r.key(s.Name)
		if _, dup := r.names[k]; !dup {
			mak.Set(&r.names, k, s)
		}
		r.exclusive[s.ID] = make(set.Set[int])
	}
	for _, s := range d.Switches {
		for _, name := range s.Exclusive {
			for _, o := range d.Switches {
				if o.ID != s.ID && cfg.SameName(o.Name, name) {
					r.exclusive[s.ID].Add(o.ID)
					r.exclusive[o.ID].Add(s.ID)
				}
			}
		}
		if !cfg.PropertySwitchesAreExclusive {
			continue
		}
		for _, o := range d.Switches {
			if o.ID != s.ID && slices.Equal(o.Slot.Index, s.Slot.Index) {
				r.exclusive[s.ID].Add(o.ID)
			}
		}
	}
	return r
}

func (r *Rules) key(name string) string {
	if r.fold {
		return strings.ToLower(name)
	}
	return name
}

// Lookup returns the first registered switch called name, or nil.
func (r *Rules) Lookup(name string) *Switch {
	return r.names[r.key(name)]
}

// Excludes reports whether switches a and b may not appear together.
func (r *Rules) Excludes(a, b int) bool {
	return r.exclusive[a].Contains(b)
}

// SwitchNamed returns the first switch called name under cfg's case rule.
func (d *Descriptor) SwitchNamed(cfg Config, name string) *Switch {
	for _, s := range d.Switches {
		if cfg.SameName(s.Name, name) {
			return s
		}
	}
	return nil
}
