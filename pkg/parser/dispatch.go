// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parser

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/yeetrun/cmdsettings/pkg/settings"
)

// validateSwitch runs the validator of s over the eligible values and
// returns how many of them it accepted.
func (st *state) validateSwitch(s *settings.Switch, raw []string, vals []reflect.Value) (int, error) {
	v := s.Validator
	var arg reflect.Value
	switch v.Mode() {
	case settings.ArgRaw:
		r := raw[0]
		if s.Target.IsFlags() {
			r = strings.Join(raw, "|")
		}
		arg = reflect.ValueOf(r)
	case settings.ArgRawList:
		arg = reflect.ValueOf(slices.Clone(raw))
	case settings.ArgValues:
		arg = reflect.MakeSlice(v.Param(), len(vals), len(vals))
		for i, x := range vals {
			arg.Index(i).Set(s.Target.Box(x))
		}
	case settings.ArgAggregate:
		arg = s.Target.Aggregate(vals)
	default:
		return 0, &settings.DescriptorError{
			Type:   st.d.Type,
			Switch: s.Name,
			Index:  -1,
			Msg:    fmt.Sprintf("validator %s does not accept %v values", v.Func, s.Target.Type),
		}
	}
	n, err := v.Call(st.recv, arg, len(vals))
	if err != nil {
		return 0, &Error{
			Kind:   ValidatorFault,
			Switch: s.Name,
			Index:  -1,
			Tokens: raw,
			Msg:    fmt.Sprintf("validator %s failed", v.Func),
			Err:    err,
		}
	}
	if n < 0 || n > len(vals) {
		return 0, &settings.DescriptorError{
			Type:   st.d.Type,
			Switch: s.Name,
			Index:  -1,
			Msg:    fmt.Sprintf("validator %s accepted %d of %d values", v.Func, n, len(vals)),
		}
	}
	return n, nil
}

// validateArgument runs the validator of positional argument a.
func (st *state) validateArgument(a *settings.Argument, tok string, val reflect.Value) (bool, error) {
	v := a.Validator
	var arg reflect.Value
	switch v.Mode() {
	case settings.ArgRaw:
		arg = reflect.ValueOf(tok)
	case settings.ArgAggregate:
		arg = a.Target.Aggregate([]reflect.Value{val})
	default:
		return false, &settings.DescriptorError{
			Type:  st.d.Type,
			Index: a.Index,
			Msg:   fmt.Sprintf("validator %s does not accept %v values", v.Func, a.Target.Type),
		}
	}
	n, err := v.Call(st.recv, arg, 1)
	if err != nil {
		return false, &Error{
			Kind:   ValidatorFault,
			Index:  a.Index,
			Arg:    a.Name,
			Tokens: []string{tok},
			Msg:    fmt.Sprintf("validator %s failed", v.Func),
			Err:    err,
		}
	}
	return n == 1, nil
}

// validateLeftover runs the leftover validator over every leftover token.
func (st *state) validateLeftover() (bool, error) {
	v := st.d.Global
	if v.Mode() != settings.ArgRawList {
		return false, &settings.DescriptorError{
			Type:  st.d.Type,
			Index: -1,
			Msg:   fmt.Sprintf("leftover validator %s must take []string", v.Func),
		}
	}
	n, err := v.Call(st.recv, reflect.ValueOf(slices.Clone(st.leftover)), len(st.leftover))
	if err != nil {
		return false, &Error{
			Kind:   ValidatorFault,
			Index:  -1,
			Tokens: st.leftover,
			Msg:    fmt.Sprintf("validator %s failed", v.Func),
			Err:    err,
		}
	}
	return n == len(st.leftover), nil
}
