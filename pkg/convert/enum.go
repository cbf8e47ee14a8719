// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package convert

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Member is one named value of an enum type.
type Member struct {
	Name  string
	Value any
}

// Enumerated is implemented by integer types whose values can be given
// on the command line by name.
type Enumerated interface {
	EnumMembers() []Member
}

// Flagged is implemented by Enumerated types whose members are bits that
// may be combined with '|'.
type Flagged interface {
	EnumFlags() bool
}

type enumTable struct {
	typ    reflect.Type
	flags  bool
	names  []string
	values []reflect.Value
}

func newEnumTable(t reflect.Type, flags bool, members []Member) (*enumTable, error) {
	if !isInteger(t.Kind()) {
		return nil, fmt.Errorf("enum %v: underlying type %v is not an integer", t, t.Kind())
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("enum %v: no members", t)
	}
	et := &enumTable{typ: t, flags: flags}
	for _, m := range members {
		if m.Name == "" {
			return nil, fmt.Errorf("enum %v: member with empty name", t)
		}
		v := reflect.ValueOf(m.Value)
		if !v.IsValid() || !v.Type().ConvertibleTo(t) || !isInteger(v.Kind()) {
			return nil, fmt.Errorf("enum %v: member %q has value of type %T", t, m.Name, m.Value)
		}
		et.names = append(et.names, m.Name)
		et.values = append(et.values, v.Convert(t))
	}
	return et, nil
}

// lookup matches name exactly, then ignoring case, then as an integer
// literal of the enum's width.
func (et *enumTable) lookup(name string) (reflect.Value, error) {
	for i, n := range et.names {
		if n == name {
			return et.values[i], nil
		}
	}
	for i, n := range et.names {
		if strings.EqualFold(n, name) {
			return et.values[i], nil
		}
	}
	v := reflect.New(et.typ).Elem()
	bits := et.typ.Bits()
	if isSigned(et.typ.Kind()) {
		if n, err := strconv.ParseInt(name, 10, bits); err == nil {
			v.SetInt(n)
			return v, nil
		}
	} else if n, err := strconv.ParseUint(name, 10, bits); err == nil {
		v.SetUint(n)
		return v, nil
	}
	return reflect.Value{}, fmt.Errorf("no member named %q", name)
}

// Names returns the member names of an enum target in declaration order.
func (t Target) Names() []string {
	if t.Elem.enum == nil {
		return nil
	}
	return append([]string(nil), t.Elem.enum.names...)
}

func isInteger(k reflect.Kind) bool {
	return isSigned(k) || isUnsigned(k)
}

func isSigned(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUnsigned(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}
