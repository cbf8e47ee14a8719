// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package settings

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// switchOnlyTags only make sense next to a switch tag.
var switchOnlyTags = []string{"occurs", "args", "join", "sep", "set", "exclusive"}

// Build reads the settings metadata from the struct tags of t.
func Build(t reflect.Type, opts ...Option) (*Descriptor, error) {
	b := newBuilder(t, opts)
	if t.Kind() != reflect.Struct {
		return nil, &DescriptorError{Type: t, Index: -1, Msg: "settings type must be a struct"}
	}
	b.addTags(t, nil, "")
	return b.Build()
}

func hasSettingsTag(f reflect.StructField) bool {
	for _, k := range []string{"switch", "pos", "validate", "leftover"} {
		if _, ok := f.Tag.Lookup(k); ok {
			return true
		}
	}
	return false
}

func (b *Builder) addTags(t reflect.Type, index []int, prefix string) {
	for i := range t.NumField() {
		f := t.Field(i)
		idx := append(slices.Clone(index), i)
		path := prefix + f.Name
		if f.Anonymous && f.Type.Kind() == reflect.Struct && !hasSettingsTag(f) {
			b.addTags(f.Type, idx, path+".")
			continue
		}
		if !hasSettingsTag(f) {
			for _, k := range switchOnlyTags {
				if _, ok := f.Tag.Lookup(k); ok {
					b.fail(path, "", -1, "%s tag without a switch tag", k)
				}
			}
			continue
		}
		ref := fieldRef{name: path, index: idx}
		b.addFieldTags(f, ref)
	}
}

func (b *Builder) addFieldTags(f reflect.StructField, ref fieldRef) {
	validate := strings.TrimSpace(f.Tag.Get("validate"))

	if _, ok := f.Tag.Lookup("leftover"); ok {
		b.leftover = &ref
		if validate != "" {
			b.Validator(Validator{Global: true, Index: -1}, validate)
		}
		return
	}

	if names, ok := f.Tag.Lookup("switch"); ok {
		opts, err := switchTagOptions(f.Tag)
		if err != nil {
			b.fail(ref.name, "", -1, "%v", err)
			return
		}
		list := []string{""}
		if strings.TrimSpace(names) != "" {
			list = list[:0]
			for n := range strings.SplitSeq(names, ",") {
				list = append(list, strings.TrimSpace(n))
			}
		}
		for _, name := range list {
			if name == "" {
				name = f.Name
			}
			b.switches = append(b.switches, switchSpec{field: ref, name: name, opts: opts})
			if validate != "" {
				b.ValidateSwitch(name, validate)
			}
		}
	}

	if pos, ok := f.Tag.Lookup("pos"); ok {
		required := true
		if strings.HasSuffix(pos, "?") {
			required = false
			pos = strings.TrimSuffix(pos, "?")
		}
		n, err := strconv.Atoi(strings.TrimSpace(pos))
		if err != nil {
			b.fail(ref.name, "", -1, "invalid pos tag %q", f.Tag.Get("pos"))
			return
		}
		b.args = append(b.args, argSpec{field: ref, index: n, required: required})
		if validate != "" {
			b.ValidateArgument(n, validate)
		}
	}
}

func switchTagOptions(tag reflect.StructTag) ([]SwitchOption, error) {
	var opts []SwitchOption
	if v, ok := tag.Lookup("occurs"); ok {
		min, max, err := parseBounds(v)
		if err != nil {
			return nil, fmt.Errorf("occurs tag: %w", err)
		}
		opts = append(opts, Occurs(min, max))
	}
	if v, ok := tag.Lookup("args"); ok {
		min, max, err := parseBounds(v)
		if err != nil {
			return nil, fmt.Errorf("args tag: %w", err)
		}
		opts = append(opts, Args(min, max))
	}
	if v, ok := tag.Lookup("join"); ok {
		join := true
		if v != "" {
			var err error
			if join, err = strconv.ParseBool(v); err != nil {
				return nil, fmt.Errorf("join tag: %w", err)
			}
		}
		if join {
			opts = append(opts, Join())
		}
	}
	if v, ok := tag.Lookup("sep"); ok {
		opts = append(opts, Separator(v))
	}
	if v, ok := tag.Lookup("exclusive"); ok {
		var names []string
		for n := range strings.SplitSeq(v, ",") {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
		opts = append(opts, ExclusiveOf(names...))
	}
	// set goes last so that it sees the separator.
	if v, ok := tag.Lookup("set"); ok {
		opts = append(opts, SetText(v))
	}
	return opts, nil
}

// parseBounds reads "N", "N-M", "N-*", "N-" or "*". A single number is an
// exact bound.
func parseBounds(s string) (min, max int, err error) {
	s = strings.TrimSpace(s)
	if s == "*" {
		return 0, Unlimited, nil
	}
	lo, hi, ranged := strings.Cut(s, "-")
	if min, err = strconv.Atoi(strings.TrimSpace(lo)); err != nil {
		return 0, 0, fmt.Errorf("invalid bound %q", s)
	}
	if !ranged {
		return min, min, nil
	}
	switch hi = strings.TrimSpace(hi); hi {
	case "", "*":
		return min, Unlimited, nil
	}
	if max, err = strconv.Atoi(hi); err != nil {
		return 0, 0, fmt.Errorf("invalid bound %q", s)
	}
	return min, max, nil
}
