// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package settings

import (
	"fmt"
	"reflect"

	"github.com/yeetrun/cmdsettings/pkg/convert"
)

// ArgMode is how a validator receives the values it checks.
type ArgMode uint8

const (
	ArgInvalid   ArgMode = iota
	ArgRaw               // string: the raw token
	ArgRawList           // []string: every eligible raw token
	ArgValues            // []T: every eligible converted value
	ArgAggregate         // T: the value that would be committed
)

// Validator is a user check bound to a switch name, a positional index or
// the leftover arguments. It is either a plain func or a method of the
// settings type, called on the instance being parsed.
//
// The callable takes one argument and returns bool or int, optionally
// followed by an error. A bool accepts all or none of the values; an int
// accepts that many of them, in order. A non-nil error or a panic is a
// validator fault.
type Validator struct {
	Func   string // name used in diagnostics
	Switch string // bound switch name, empty if none
	Index  int    // bound positional index, -1 if none
	Global bool   // bound to leftover arguments

	fn     reflect.Value
	method bool
	mode   ArgMode
}

func newFuncValidator(fn reflect.Value, name string) *Validator {
	return &Validator{Func: name, Index: -1, fn: fn}
}

func newMethodValidator(m reflect.Method, recv reflect.Type) *Validator {
	return &Validator{
		Func:   fmt.Sprintf("(%v).%s", recv, m.Name),
		Index:  -1,
		fn:     m.Func,
		method: true,
	}
}

// Mode reports how the engine passes values to the validator.
func (v *Validator) Mode() ArgMode { return v.mode }

// Param is the type of the validator's value parameter.
func (v *Validator) Param() reflect.Type {
	t := v.fn.Type()
	if t.NumIn() != v.numIn() {
		return nil
	}
	return t.In(t.NumIn() - 1)
}

func (v *Validator) numIn() int {
	if v.method {
		return 2
	}
	return 1
}

// Counts reports whether the validator returns an accepted count rather
// than a bool.
func (v *Validator) Counts() bool {
	t := v.fn.Type()
	return t.NumOut() > 0 && t.Out(0).Kind() != reflect.Bool
}

// Call invokes the validator on arg and returns how many of eligible
// values it accepted. recv is the *T settings pointer, used by method
// validators.
func (v *Validator) Call(recv, arg reflect.Value, eligible int) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s panicked: %v", v.Func, r)
		}
	}()
	in := []reflect.Value{arg}
	if v.method {
		in = []reflect.Value{recv, arg}
	}
	out := v.fn.Call(in)
	if len(out) == 2 && !out[1].IsNil() {
		return 0, out[1].Interface().(error)
	}
	r := out[0]
	if r.Kind() == reflect.Bool {
		if r.Bool() {
			return eligible, nil
		}
		return 0, nil
	}
	return int(r.Int()), nil
}

var (
	stringType  = reflect.TypeFor[string]()
	stringsType = reflect.TypeFor[[]string]()
	errorType   = reflect.TypeFor[error]()
)

// fits reports whether a value of type t can be passed as p.
func fits(p, t reflect.Type) bool {
	return p == t || p.Kind() == reflect.Interface && t.Implements(p)
}

// storedType is the type of one converted element as the field holds it.
func storedType(e convert.Element) reflect.Type {
	if e.Ptr {
		return reflect.PointerTo(e.Type)
	}
	return e.Type
}

// switchMode decides how a switch validator with parameter p is fed.
func switchMode(p reflect.Type, t convert.Target) ArgMode {
	switch {
	case p == nil:
		return ArgInvalid
	case p == stringType && !t.IsCollection():
		return ArgRaw
	case p == stringsType && !fits(p, t.Type):
		return ArgRawList
	case p.Kind() == reflect.Slice && (p == t.Type || fits(p.Elem(), storedType(t.Elem))):
		return ArgValues
	case fits(p, t.Type):
		return ArgAggregate
	}
	return ArgInvalid
}

// argumentMode decides how a positional validator with parameter p is fed.
func argumentMode(p reflect.Type, t convert.Target) ArgMode {
	switch {
	case p == nil:
		return ArgInvalid
	case p == stringType && t.Type != stringType:
		return ArgRaw
	case fits(p, t.Type):
		return ArgAggregate
	}
	return ArgInvalid
}

// shapeError describes what is wrong with the validator's signature, or
// returns "".
func (v *Validator) shapeError() string {
	t := v.fn.Type()
	if t.NumIn() != v.numIn() {
		return fmt.Sprintf("must take exactly one value parameter, has %d", t.NumIn()-v.numIn()+1)
	}
	if t.NumOut() < 1 || t.NumOut() > 2 {
		return "must return bool or int, optionally followed by error"
	}
	if t.NumOut() == 2 && t.Out(1) != errorType {
		return fmt.Sprintf("second result must be error, not %v", t.Out(1))
	}
	switch t.Out(0).Kind() {
	case reflect.Bool, reflect.Int:
	default:
		return fmt.Sprintf("must return bool or int, not %v", t.Out(0))
	}
	switch {
	case v.Global:
		if v.Param() != stringsType {
			return fmt.Sprintf("leftover validator must take []string, not %v", v.Param())
		}
		if v.Counts() {
			return "leftover validator must return bool"
		}
	case v.Index >= 0:
		if v.Counts() {
			return "positional validator must return bool"
		}
	default:
		if v.Counts() && v.mode != ArgValues && v.mode != ArgRawList {
			return "a validator returning a count must take a slice"
		}
	}
	if v.mode == ArgInvalid && !v.Global {
		return fmt.Sprintf("parameter type %v does not match the bound field", v.Param())
	}
	return ""
}
