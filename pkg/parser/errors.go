// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yeetrun/cmdsettings/pkg/convert"
)

// Kind classifies a command line error. Kinds are errors themselves so
// that errors.Is(err, parser.Exclusivity) matches any *Error of that kind.
type Kind uint8

const (
	// Exclusivity: two switches that exclude each other were both given.
	Exclusivity Kind = iota + 1
	// OccurrenceBound: a switch was given too often, or a required switch
	// or positional argument was missing.
	OccurrenceBound
	// ArgumentCount: a switch got too few arguments, too many joined
	// arguments, or joined arguments that did not all convert.
	ArgumentCount
	// Conversion: a positional token could not be converted.
	Conversion
	// ValidationRejected: a validator rejected the values and the
	// configuration does not allow continuing.
	ValidationRejected
	// ValidatorFault: a validator returned an error or panicked.
	ValidatorFault
	// UnconsumedPolicy: leftover arguments conflict with the configured
	// policy.
	UnconsumedPolicy
)

func (k Kind) String() string {
	switch k {
	case Exclusivity:
		return "exclusive switches"
	case OccurrenceBound:
		return "occurrence bound"
	case ArgumentCount:
		return "argument count"
	case Conversion:
		return "conversion"
	case ValidationRejected:
		return "validation rejected"
	case ValidatorFault:
		return "validator fault"
	case UnconsumedPolicy:
		return "unconsumed arguments"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

func (k Kind) Error() string { return k.String() }

// Error is a command line that does not satisfy the settings descriptor.
type Error struct {
	Kind   Kind
	Switch string   // offending switch, if any
	Index  int      // offending positional index, -1 if none
	Arg    string   // display name of the positional argument
	Other  string   // the conflicting switch for Exclusivity
	Tokens []string // offending tokens
	Want   int      // bound that was violated
	Got    int      // count that violated it
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	switch {
	case e.Switch != "":
		fmt.Fprintf(&b, "switch %q", e.Switch)
	case e.Index >= 0:
		fmt.Fprintf(&b, "argument %d", e.Index)
		if e.Arg != "" {
			fmt.Fprintf(&b, " (%s)", e.Arg)
		}
	default:
		b.WriteString("leftover arguments")
	}
	b.WriteString(": ")
	b.WriteString(e.Msg)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Hint suggests how to fix the command line, or returns "".
func (e *Error) Hint() string {
	var ce *convert.Error
	if errors.As(e.Err, &ce) {
		return fmt.Sprintf("%q is not a valid %v", ce.Value, ce.Type)
	}
	switch e.Kind {
	case Exclusivity:
		return fmt.Sprintf("use either %q or %q", e.Other, e.Switch)
	case OccurrenceBound:
		switch {
		case e.Switch != "" && e.Got > e.Want:
			return fmt.Sprintf("give %q at most %d time(s)", e.Switch, e.Want)
		case e.Switch != "":
			return fmt.Sprintf("add %q", e.Switch)
		case e.Arg != "":
			return fmt.Sprintf("supply the %s argument", e.Arg)
		}
	case ArgumentCount:
		if e.Got < e.Want {
			return fmt.Sprintf("%q needs %d argument(s)", e.Switch, e.Want)
		}
	case UnconsumedPolicy:
		if e.Got > 0 {
			return "remove the extra arguments"
		}
		return "pass at least one extra argument"
	}
	return ""
}

func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}
