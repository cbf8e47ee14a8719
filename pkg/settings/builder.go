// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package settings

import (
	"fmt"
	"reflect"
	"runtime"
	"slices"
	"strings"

	"github.com/huandu/xstrings"
	"github.com/yeetrun/cmdsettings/pkg/convert"
)

// Option configures descriptor construction.
type Option func(*Builder)

// WithRegistry resolves field types against r instead of convert.Default.
func WithRegistry(r *convert.Registry) Option {
	return func(b *Builder) { b.registry = r }
}

// SwitchOption adjusts a switch definition. Options run after the target
// type is resolved and the defaults are set.
type SwitchOption func(*Switch) error

// Occurs bounds how many times the switch may appear. Use Unlimited for
// no upper bound.
func Occurs(min, max int) SwitchOption {
	return func(s *Switch) error {
		s.MinOccurs, s.MaxOccurs = min, max
		return nil
	}
}

// Args bounds how many arguments the switch takes. Use Unlimited for no
// upper bound.
func Args(min, max int) SwitchOption {
	return func(s *Switch) error {
		s.MinArgs, s.MaxArgs = min, max
		return nil
	}
}

// Join makes the switch take its arguments from the rest of its own token.
func Join() SwitchOption {
	return func(s *Switch) error {
		s.Join = true
		return nil
	}
}

// Separator sets the characters that split joined arguments. Each
// character is a separator on its own.
func Separator(sep string) SwitchOption {
	return func(s *Switch) error {
		s.Separator = &sep
		return nil
	}
}

// ExclusiveOf names switches that may not be given together with this one.
func ExclusiveOf(names ...string) SwitchOption {
	return func(s *Switch) error {
		s.Exclusive = append(s.Exclusive, names...)
		return nil
	}
}

// Set is the value assigned when the switch is given without arguments.
func Set(v any) SwitchOption {
	return func(s *Switch) error {
		if v == nil {
			s.SetValue = s.Target.Zero()
			return nil
		}
		s.SetValue = reflect.ValueOf(v)
		return nil
	}
}

// SetText is like Set but converts raw the same way a command line
// argument would be converted.
func SetText(raw string) SwitchOption {
	return func(s *Switch) error {
		parts := []string{raw}
		if s.Target.IsCollection() {
			parts = splitAny(raw, s.Sep())
		}
		vals := make([]reflect.Value, 0, len(parts))
		for _, p := range parts {
			v, err := s.Target.Convert(p)
			if err != nil {
				return fmt.Errorf("set value: %w", err)
			}
			vals = append(vals, v)
		}
		s.SetValue = s.Target.Aggregate(vals)
		return nil
	}
}

// SplitAny splits s at every occurrence of any character of seps. Empty
// fields are kept. An empty seps returns s whole.
func SplitAny(s, seps string) []string {
	return splitAny(s, seps)
}

func splitAny(s, seps string) []string {
	if seps == "" {
		return []string{s}
	}
	var out []string
	start := 0
	for i, r := range s {
		if strings.ContainsRune(seps, r) {
			out = append(out, s[start:i])
			start = i + len(string(r))
		}
	}
	return append(out, s[start:])
}

type fieldRef struct {
	name  string // field name or dotted path
	index []int  // nil until resolved
}

type switchSpec struct {
	field fieldRef
	name  string
	opts  []SwitchOption
}

type argSpec struct {
	field    fieldRef
	index    int
	required bool
}

type validatorSpec struct {
	bind Validator
	fn   any
}

// Builder assembles a Descriptor by hand. Calls record the first problem
// and Build reports it.
type Builder struct {
	typ        reflect.Type
	registry   *convert.Registry
	switches   []switchSpec
	args       []argSpec
	leftover   *fieldRef
	validators []validatorSpec
	err        error
}

// NewBuilder returns a Builder for the settings struct T. Struct tags on
// T are ignored; use Build or For to read them.
func NewBuilder[T any](opts ...Option) *Builder {
	return newBuilder(reflect.TypeFor[T](), opts)
}

func newBuilder(t reflect.Type, opts []Option) *Builder {
	b := &Builder{typ: t, registry: convert.Default}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Switch declares a switch called name on field. An empty name uses the
// field name.
func (b *Builder) Switch(field, name string, opts ...SwitchOption) *Builder {
	b.switches = append(b.switches, switchSpec{field: fieldRef{name: field}, name: name, opts: opts})
	return b
}

// Argument declares field as the positional argument at index.
func (b *Builder) Argument(field string, index int, required bool) *Builder {
	b.args = append(b.args, argSpec{field: fieldRef{name: field}, index: index, required: required})
	return b
}

// Leftover names the []string field that receives unconsumed arguments.
func (b *Builder) Leftover(field string) *Builder {
	b.leftover = &fieldRef{name: field}
	return b
}

// Validator binds fn as described by v's Switch, Index and Global fields.
// fn is a func or the name of a method on *T.
func (b *Builder) Validator(v Validator, fn any) *Builder {
	b.validators = append(b.validators, validatorSpec{bind: v, fn: fn})
	return b
}

// ValidateSwitch binds fn to the switch called name.
func (b *Builder) ValidateSwitch(name string, fn any) *Builder {
	return b.Validator(Validator{Switch: name, Index: -1}, fn)
}

// ValidateArgument binds fn to the positional argument at index.
func (b *Builder) ValidateArgument(index int, fn any) *Builder {
	return b.Validator(Validator{Index: index}, fn)
}

// ValidateLeftover binds fn to the leftover arguments.
func (b *Builder) ValidateLeftover(fn any) *Builder {
	return b.Validator(Validator{Global: true, Index: -1}, fn)
}

func (b *Builder) fail(field, sw string, index int, format string, args ...any) {
	if b.err != nil {
		return
	}
	b.err = &DescriptorError{Type: b.typ, Field: field, Switch: sw, Index: index, Msg: fmt.Sprintf(format, args...)}
}

func (b *Builder) lookupField(ref fieldRef) (reflect.StructField, bool) {
	if ref.index != nil {
		f := b.typ.FieldByIndex(ref.index)
		f.Index = ref.index
		return f, true
	}
	f, ok := b.typ.FieldByName(ref.name)
	if !ok {
		// Dotted paths reach fields of embedded structs explicitly.
		t := b.typ
		var idx []int
		for part := range strings.SplitSeq(ref.name, ".") {
			if t.Kind() != reflect.Struct {
				return reflect.StructField{}, false
			}
			sf, found := t.FieldByName(part)
			if !found {
				return reflect.StructField{}, false
			}
			idx = append(idx, sf.Index...)
			t = sf.Type
		}
		f = b.typ.FieldByIndex(idx)
		f.Index = idx
	}
	return f, true
}

func (b *Builder) resolveField(ref fieldRef, sw string, index int) (Slot, convert.Target, bool) {
	f, ok := b.lookupField(ref)
	if !ok {
		b.fail(ref.name, sw, index, "no such field")
		return Slot{}, convert.Target{}, false
	}
	if !f.IsExported() {
		b.fail(ref.name, sw, index, "field is not exported")
		return Slot{}, convert.Target{}, false
	}
	target, err := b.registry.Resolve(f.Type)
	if err != nil {
		b.err = &DescriptorError{Type: b.typ, Field: ref.name, Switch: sw, Index: index, Msg: "field type has no string conversion", Err: err}
		return Slot{}, convert.Target{}, false
	}
	return Slot{Index: f.Index, Type: f.Type}, target, true
}

func (b *Builder) newValidator(spec validatorSpec) *Validator {
	var v *Validator
	switch fn := spec.fn.(type) {
	case string:
		m, ok := reflect.PointerTo(b.typ).MethodByName(fn)
		if !ok {
			b.fail("", spec.bind.Switch, spec.bind.Index, "no method %s on %v", fn, reflect.PointerTo(b.typ))
			return nil
		}
		v = newMethodValidator(m, reflect.PointerTo(b.typ))
	default:
		rv := reflect.ValueOf(fn)
		if rv.Kind() != reflect.Func || rv.IsNil() {
			b.fail("", spec.bind.Switch, spec.bind.Index, "validator must be a func or a method name, not %T", fn)
			return nil
		}
		name := "func"
		if rf := runtime.FuncForPC(rv.Pointer()); rf != nil {
			name = rf.Name()
		}
		v = newFuncValidator(rv, name)
	}
	v.Switch, v.Index, v.Global = spec.bind.Switch, spec.bind.Index, spec.bind.Global
	return v
}

// Build resolves every declaration into a Descriptor. It fails on
// declarations it cannot represent; semantic checks are left to
// Descriptor.Validate.
func (b *Builder) Build() (*Descriptor, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.typ.Kind() != reflect.Struct {
		return nil, &DescriptorError{Type: b.typ, Index: -1, Msg: "settings type must be a struct"}
	}
	d := &Descriptor{Type: b.typ}

	for _, spec := range b.switches {
		slot, target, ok := b.resolveField(spec.field, spec.name, -1)
		if !ok {
			return nil, b.err
		}
		name := spec.name
		if name == "" {
			name = b.typ.FieldByIndex(slot.Index).Name
		}
		s := &Switch{
			ID:        len(d.Switches),
			Name:      name,
			Field:     spec.field.name,
			Slot:      slot,
			Target:    target,
			MaxOccurs: Unlimited,
			MaxArgs:   Unlimited,
			SetValue:  target.Zero(),
		}
		for _, o := range spec.opts {
			if err := o(s); err != nil {
				return nil, &DescriptorError{Type: b.typ, Field: s.Field, Switch: s.Name, Index: -1, Msg: "bad option", Err: err}
			}
		}
		d.Switches = append(d.Switches, s)
	}

	for _, spec := range b.args {
		slot, target, ok := b.resolveField(spec.field, "", spec.index)
		if !ok {
			return nil, b.err
		}
		d.Arguments = append(d.Arguments, &Argument{
			Index:    spec.index,
			Name:     xstrings.ToKebabCase(b.typ.FieldByIndex(slot.Index).Name),
			Field:    spec.field.name,
			Slot:     slot,
			Target:   target,
			Required: spec.required,
		})
	}
	slices.SortStableFunc(d.Arguments, func(x, y *Argument) int { return x.Index - y.Index })

	if b.leftover != nil {
		f, ok := b.lookupField(*b.leftover)
		if !ok {
			return nil, &DescriptorError{Type: b.typ, Field: b.leftover.name, Index: -1, Msg: "no such field"}
		}
		if f.Type.Kind() != reflect.Slice || f.Type.Elem().Kind() != reflect.String || !f.IsExported() {
			return nil, &DescriptorError{Type: b.typ, Field: b.leftover.name, Index: -1, Msg: fmt.Sprintf("leftover field must be an exported []string, not %v", f.Type)}
		}
		d.Leftover = &Slot{Index: f.Index, Type: f.Type}
	}

	for _, spec := range b.validators {
		v := b.newValidator(spec)
		if v == nil {
			return nil, b.err
		}
		d.bind(v)
		d.Validators = append(d.Validators, v)
	}
	return d, nil
}

// bind attaches v to its target and decides how it is called. Targets
// that do not exist, and second validators for the same target, are left
// for Validate to report.
func (d *Descriptor) bind(v *Validator) {
	switch {
	case v.Global:
		if d.Global == nil {
			d.Global = v
		}
		if v.Param() == stringsType {
			v.mode = ArgRawList
		}
	case v.Switch != "":
		for _, s := range d.bindCandidates(v.Switch) {
			if v.mode == ArgInvalid {
				v.mode = switchMode(v.Param(), s.Target)
			}
			if s.Validator == nil {
				s.Validator = v
			}
		}
	case v.Index >= 0:
		for _, a := range d.Arguments {
			if a.Index != v.Index {
				continue
			}
			v.mode = argumentMode(v.Param(), a.Target)
			if a.Validator == nil {
				a.Validator = v
			}
			break
		}
	}
}

// bindCandidates returns the switches called name, preferring exact
// matches over case-insensitive ones.
func (d *Descriptor) bindCandidates(name string) []*Switch {
	var exact, folded []*Switch
	for _, s := range d.Switches {
		switch {
		case s.Name == name:
			exact = append(exact, s)
		case strings.EqualFold(s.Name, name):
			folded = append(folded, s)
		}
	}
	if len(exact) > 0 {
		return exact
	}
	return folded
}
