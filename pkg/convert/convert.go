// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package convert turns raw command line tokens into typed Go values.
//
// The shape of a destination is resolved once into a Target, which fixes
// its Kind (Scalar, Enum, Flags or Collection). After that, converting a
// token and aggregating a run of converted values into the destination
// field does not inspect types again.
package convert

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Kind is the closed set of destination shapes.
type Kind uint8

const (
	Scalar Kind = iota + 1
	Enum
	Flags
	Collection
)

func (k Kind) String() string {
	switch k {
	case Scalar:
		return "scalar"
	case Enum:
		return "enum"
	case Flags:
		return "flags"
	case Collection:
		return "collection"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// ErrUnsupported is returned by Resolve for types that have no string
// conversion.
var ErrUnsupported = errors.New("unsupported type")

// Error reports a token that could not be converted.
type Error struct {
	Value string
	Type  reflect.Type
	Err   error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("invalid %s value %q", e.Type, e.Value)
	}
	return fmt.Sprintf("invalid %s value %q: %v", e.Type, e.Value, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Element describes how a single token becomes a value.
type Element struct {
	Kind Kind         // Scalar, Enum or Flags
	Type reflect.Type // type produced by the parser, pointers stripped
	Ptr  bool         // destination holds *Type

	parse func(string) (reflect.Value, error)
	enum  *enumTable
}

// Target is a resolved destination type.
type Target struct {
	Kind Kind
	Type reflect.Type // declared destination type
	Elem Element
}

// IsCollection reports whether the destination holds a sequence.
func (t Target) IsCollection() bool { return t.Kind == Collection }

// IsFlags reports whether the destination is a single flags-enum value.
func (t Target) IsFlags() bool { return t.Kind == Flags }

// Zero returns the zero value of the declared type.
func (t Target) Zero() reflect.Value {
	return reflect.Zero(t.Type)
}

// Convert converts one token into a value of t.Elem.Type. Flags-enum
// tokens may combine several members with '|'.
func (t Target) Convert(raw string) (reflect.Value, error) {
	return t.Elem.convert(raw)
}

// Aggregate folds converted values into a value assignable to t.Type.
// Scalars and enums take the first value, flags-enums OR every value and
// collections keep them all in order. Aggregate of no values is the zero
// value.
func (t Target) Aggregate(vals []reflect.Value) reflect.Value {
	if len(vals) == 0 {
		return t.Zero()
	}
	switch t.Kind {
	case Collection:
		out := reflect.MakeSlice(t.Type, len(vals), len(vals))
		for i, v := range vals {
			out.Index(i).Set(t.Elem.box(v))
		}
		return out
	case Flags:
		acc := vals[0]
		for _, v := range vals[1:] {
			acc = Or(acc, v)
		}
		return t.Elem.box(acc)
	default:
		return t.Elem.box(vals[0])
	}
}

// Box turns a converted element into the form stored in the destination,
// allocating when the destination holds pointers.
func (t Target) Box(v reflect.Value) reflect.Value {
	return t.Elem.box(v)
}

func (e Element) box(v reflect.Value) reflect.Value {
	if !e.Ptr {
		return v
	}
	p := reflect.New(e.Type)
	p.Elem().Set(v)
	return p
}

func (e Element) convert(raw string) (reflect.Value, error) {
	switch e.Kind {
	case Enum:
		v, err := e.enum.lookup(strings.TrimSpace(raw))
		if err != nil {
			return reflect.Value{}, &Error{Value: raw, Type: e.Type, Err: err}
		}
		return v, nil
	case Flags:
		var acc reflect.Value
		for part := range strings.SplitSeq(raw, "|") {
			v, err := e.enum.lookup(strings.TrimSpace(part))
			if err != nil {
				return reflect.Value{}, &Error{Value: raw, Type: e.Type, Err: err}
			}
			if !acc.IsValid() {
				acc = v
				continue
			}
			acc = Or(acc, v)
		}
		return acc, nil
	}
	v, err := e.parse(raw)
	if err != nil {
		var ce *Error
		if errors.As(err, &ce) {
			return reflect.Value{}, err
		}
		return reflect.Value{}, &Error{Value: raw, Type: e.Type, Err: err}
	}
	return v, nil
}

// Or returns a|b computed at the exact width and signedness of a's
// underlying integer kind. Both values must share a type.
func Or(a, b reflect.Value) reflect.Value {
	out := reflect.New(a.Type()).Elem()
	switch a.Kind() {
	case reflect.Int8:
		out.SetInt(int64(int8(a.Int()) | int8(b.Int())))
	case reflect.Int16:
		out.SetInt(int64(int16(a.Int()) | int16(b.Int())))
	case reflect.Int32:
		out.SetInt(int64(int32(a.Int()) | int32(b.Int())))
	case reflect.Int, reflect.Int64:
		out.SetInt(a.Int() | b.Int())
	case reflect.Uint8:
		out.SetUint(uint64(uint8(a.Uint()) | uint8(b.Uint())))
	case reflect.Uint16:
		out.SetUint(uint64(uint16(a.Uint()) | uint16(b.Uint())))
	case reflect.Uint32:
		out.SetUint(uint64(uint32(a.Uint()) | uint32(b.Uint())))
	case reflect.Uint, reflect.Uint64, reflect.Uintptr:
		out.SetUint(a.Uint() | b.Uint())
	default:
		panic(fmt.Sprintf("convert.Or: %v is not an integer type", a.Type()))
	}
	return out
}
