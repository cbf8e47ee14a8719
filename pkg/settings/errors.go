// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package settings

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ErrDescriptor matches every *DescriptorError with errors.Is.
var ErrDescriptor = errors.New("invalid settings descriptor")

// DescriptorError reports malformed settings metadata. It means the
// settings type is wrong, not the command line.
type DescriptorError struct {
	Type   reflect.Type
	Field  string
	Switch string
	Index  int // positional index, -1 if not applicable
	Msg    string
	Err    error
}

func (e *DescriptorError) Error() string {
	var b strings.Builder
	b.WriteString("settings")
	if e.Type != nil {
		fmt.Fprintf(&b, " %v", e.Type)
	}
	switch {
	case e.Switch != "":
		fmt.Fprintf(&b, ": switch %q", e.Switch)
	case e.Index >= 0:
		fmt.Fprintf(&b, ": argument %d", e.Index)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " (field %s)", e.Field)
	}
	b.WriteString(": ")
	b.WriteString(e.Msg)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *DescriptorError) Is(target error) bool {
	return target == ErrDescriptor
}

func (e *DescriptorError) Unwrap() error {
	return e.Err
}

func (d *Descriptor) switchErr(s *Switch, format string, args ...any) *DescriptorError {
	return &DescriptorError{Type: d.Type, Field: s.Field, Switch: s.Name, Index: -1, Msg: fmt.Sprintf(format, args...)}
}

func (d *Descriptor) argErr(a *Argument, format string, args ...any) *DescriptorError {
	return &DescriptorError{Type: d.Type, Field: a.Field, Index: a.Index, Msg: fmt.Sprintf(format, args...)}
}

func (d *Descriptor) validatorErr(v *Validator, format string, args ...any) *DescriptorError {
	return &DescriptorError{
		Type:   d.Type,
		Switch: v.Switch,
		Index:  v.Index,
		Msg:    fmt.Sprintf("validator %s: ", v.Func) + fmt.Sprintf(format, args...),
	}
}
