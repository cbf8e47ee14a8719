// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package parser populates settings structs from command line tokens.
//
// Parsing is a single left-to-right pass. Each token is a switch (an
// indicator such as "-" followed by a known switch name), the next
// positional argument, or a leftover. The first violated constraint stops
// the parse; fields set before it keep their values.
package parser

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/google/shlex"
	"github.com/yeetrun/cmdsettings/pkg/settings"
)

// Parse parses tokens into a new T using the tag-built descriptor of T.
// On error the partially populated value is returned alongside it.
func Parse[T any](tokens []string, cfg settings.Config) (*T, error) {
	dst := new(T)
	return dst, ParseInto(dst, tokens, cfg)
}

// ParseInto is Parse into an existing value. Fields not mentioned on the
// command line keep their current values.
func ParseInto[T any](dst *T, tokens []string, cfg settings.Config) error {
	d, err := settings.For[T]()
	if err != nil {
		return err
	}
	return Run(tokens, cfg, d, dst)
}

// ParseCommandLine splits line with shell quoting rules and parses the
// result like Parse.
func ParseCommandLine[T any](line string, cfg settings.Config) (*T, error) {
	tokens, err := Split(line)
	if err != nil {
		return nil, err
	}
	return Parse[T](tokens, cfg)
}

// Split breaks a command line into tokens, honoring quotes and escapes.
func Split(line string) ([]string, error) {
	tokens, err := shlex.Split(line)
	if err != nil {
		return nil, fmt.Errorf("failed to split command line: %w", err)
	}
	return tokens, nil
}

// Run parses tokens into dst, which must be a non-nil pointer to d.Type.
// Command line problems are reported as *Error; problems with the
// descriptor itself as *settings.DescriptorError.
func Run(tokens []string, cfg settings.Config, d *settings.Descriptor, dst any) error {
	if d == nil {
		return &settings.DescriptorError{Index: -1, Msg: "nil descriptor"}
	}
	recv := reflect.ValueOf(dst)
	if recv.Kind() != reflect.Pointer || recv.IsNil() || recv.Elem().Type() != d.Type {
		return &settings.DescriptorError{
			Type:  d.Type,
			Index: -1,
			Msg:   fmt.Sprintf("destination must be a non-nil *%v, not %T", d.Type, dst),
		}
	}
	if cfg.Verify {
		if err := d.Validate(cfg); err != nil {
			return err
		}
	}
	st := &state{
		cfg:    cfg,
		d:      d,
		rules:  d.Rules(cfg),
		recv:   recv,
		inst:   recv.Elem(),
		tokens: tokens,
		counts: make([]int, len(d.Switches)),
	}
	return st.run()
}

type state struct {
	cfg   settings.Config
	d     *settings.Descriptor
	rules *settings.Rules
	recv  reflect.Value // *T
	inst  reflect.Value // T

	tokens   []string
	counts   []int // occurrences by switch ID
	seen     []int // switch IDs in order of first appearance
	nextArg  int   // position in d.Arguments
	leftover []string
}

func (st *state) run() error {
	for i := 0; i < len(st.tokens); i++ {
		tok := st.tokens[i]
		s, rest := st.match(tok)
		if s == nil {
			if err := st.positional(tok); err != nil {
				return err
			}
			continue
		}
		n, err := st.handleSwitch(s, rest, i)
		if err != nil {
			return err
		}
		i += n
	}
	return st.finish()
}

// match finds the switch named by tok. The first indicator prefixing tok
// is stripped, then the longest registered name at the start of the
// remainder wins. A name shorter than the remainder only matches joined
// switches. rest is what follows the name.
func (st *state) match(tok string) (s *settings.Switch, rest string) {
	for _, ind := range st.cfg.Indicators {
		if ind == "" || !strings.HasPrefix(tok, ind) {
			continue
		}
		body := tok[len(ind):]
		for n := len(body); n > 0; n-- {
			s := st.rules.Lookup(body[:n])
			if s == nil {
				continue
			}
			if n < len(body) && !s.Join {
				return nil, ""
			}
			return s, body[n:]
		}
		return nil, ""
	}
	return nil, ""
}

func (st *state) isSwitch(tok string) bool {
	s, _ := st.match(tok)
	return s != nil
}

// handleSwitch processes one occurrence of s at token i and returns how
// many following tokens it consumed.
func (st *state) handleSwitch(s *settings.Switch, rest string, i int) (int, error) {
	for _, p := range st.seen {
		if st.rules.Excludes(s.ID, p) {
			return 0, &Error{
				Kind:   Exclusivity,
				Switch: s.Name,
				Index:  -1,
				Other:  st.d.Switches[p].Name,
				Tokens: []string{st.tokens[i]},
				Msg:    fmt.Sprintf("cannot be used together with %q", st.d.Switches[p].Name),
			}
		}
	}
	if s.MaxOccurs > 0 && st.counts[s.ID] >= s.MaxOccurs {
		return 0, &Error{
			Kind:   OccurrenceBound,
			Switch: s.Name,
			Index:  -1,
			Tokens: []string{st.tokens[i]},
			Want:   s.MaxOccurs,
			Got:    st.counts[s.ID] + 1,
			Msg:    fmt.Sprintf("may be given at most %d times", s.MaxOccurs),
		}
	}

	raw, err := st.collect(s, rest, i)
	if err != nil {
		return 0, err
	}

	vals := make([]reflect.Value, 0, len(raw))
	var convErr error
	for _, r := range raw {
		v, err := s.Target.Convert(r)
		if err != nil {
			convErr = err
			break
		}
		vals = append(vals, v)
	}
	if s.Join && len(vals) != len(raw) {
		return 0, &Error{
			Kind:   ArgumentCount,
			Switch: s.Name,
			Index:  -1,
			Tokens: raw,
			Want:   len(raw),
			Got:    len(vals),
			Msg:    fmt.Sprintf("only %d of %d joined arguments are valid", len(vals), len(raw)),
			Err:    convErr,
		}
	}
	if len(vals) < s.MinArgs {
		return 0, st.tooFew(s, raw, len(vals), convErr)
	}
	raw = raw[:len(vals)]

	if s.Validator != nil && len(vals) > 0 {
		n, err := st.validateSwitch(s, raw, vals)
		if err != nil {
			return 0, err
		}
		if n < len(vals) {
			st.cfg.Tracef("switch %q: validator %s accepted %d of %d values", s.Name, s.Validator.Func, n, len(vals))
			if !st.cfg.ContinueOnFailedValidation && (n == 0 || s.Join) {
				return 0, &Error{
					Kind:   ValidationRejected,
					Switch: s.Name,
					Index:  -1,
					Tokens: raw[n:],
					Want:   len(vals),
					Got:    n,
					Msg:    fmt.Sprintf("validator %s rejected %q", s.Validator.Func, raw[n:]),
				}
			}
			if n < s.MinArgs {
				return 0, st.tooFew(s, raw, n, nil)
			}
			vals, raw = vals[:n], raw[:n]
		}
	}

	value := s.SetValue
	if len(vals) > 0 {
		value = s.Target.Aggregate(vals)
	}
	if err := st.set(s.Slot, value, s.Name); err != nil {
		return 0, err
	}
	if st.counts[s.ID] == 0 {
		st.seen = append(st.seen, s.ID)
	}
	st.counts[s.ID]++
	st.cfg.Tracef("switch %q: committed %d argument(s) %q", s.Name, len(vals), raw)

	if s.Join {
		return 0, nil
	}
	return len(vals), nil
}

// collect gathers the argument strings of s: the remainder of its own
// token for joined switches, otherwise the tokens that follow it.
func (st *state) collect(s *settings.Switch, rest string, i int) ([]string, error) {
	limit := s.ArgLimit()
	if s.Join {
		var raw []string
		if rest != "" {
			sep := s.Sep()
			if sep != "" && (s.Target.IsCollection() || s.Target.IsFlags()) {
				raw = settings.SplitAny(rest, sep)
			} else {
				raw = []string{rest}
			}
		}
		if limit >= 0 && len(raw) > limit {
			return nil, &Error{
				Kind:   ArgumentCount,
				Switch: s.Name,
				Index:  -1,
				Tokens: raw,
				Want:   limit,
				Got:    len(raw),
				Msg:    fmt.Sprintf("takes at most %d argument(s), got %d", limit, len(raw)),
			}
		}
		return raw, nil
	}
	var raw []string
	for j := i + 1; j < len(st.tokens) && (limit < 0 || len(raw) < limit); j++ {
		tok := st.tokens[j]
		if !st.cfg.AllowSwitchCharsInArguments && st.isSwitch(tok) {
			break
		}
		raw = append(raw, tok)
	}
	return raw, nil
}

func (st *state) tooFew(s *settings.Switch, raw []string, got int, cause error) *Error {
	return &Error{
		Kind:   ArgumentCount,
		Switch: s.Name,
		Index:  -1,
		Tokens: raw,
		Want:   s.MinArgs,
		Got:    got,
		Msg:    fmt.Sprintf("requires at least %d argument(s), got %d", s.MinArgs, got),
		Err:    cause,
	}
}

// positional assigns tok to the next positional argument, or records it
// as a leftover when every positional slot has been used.
func (st *state) positional(tok string) error {
	if st.nextArg >= len(st.d.Arguments) {
		st.leftover = append(st.leftover, tok)
		return nil
	}
	a := st.d.Arguments[st.nextArg]
	st.nextArg++

	v, err := a.Target.Convert(tok)
	if err != nil {
		return &Error{
			Kind:   Conversion,
			Index:  a.Index,
			Arg:    a.Name,
			Tokens: []string{tok},
			Msg:    fmt.Sprintf("cannot use %q", tok),
			Err:    err,
		}
	}
	if a.Validator != nil {
		ok, err := st.validateArgument(a, tok, v)
		if err != nil {
			return err
		}
		if !ok {
			if !st.cfg.ContinueOnFailedValidation {
				return &Error{
					Kind:   ValidationRejected,
					Index:  a.Index,
					Arg:    a.Name,
					Tokens: []string{tok},
					Want:   1,
					Msg:    fmt.Sprintf("validator %s rejected %q", a.Validator.Func, tok),
				}
			}
			st.cfg.Tracef("argument %d: validator %s rejected %q, skipped", a.Index, a.Validator.Func, tok)
			return nil
		}
	}
	st.cfg.Tracef("argument %d: committed %q", a.Index, tok)
	return st.set(a.Slot, a.Target.Aggregate([]reflect.Value{v}), "")
}

// finish enforces the minimums and the leftover policy after the scan.
func (st *state) finish() error {
	for _, s := range st.d.Switches {
		if st.counts[s.ID] < s.MinOccurs {
			return &Error{
				Kind:   OccurrenceBound,
				Switch: s.Name,
				Index:  -1,
				Want:   s.MinOccurs,
				Got:    st.counts[s.ID],
				Msg:    fmt.Sprintf("must be given at least %d time(s), got %d", s.MinOccurs, st.counts[s.ID]),
			}
		}
	}
	for _, a := range st.d.Arguments[st.nextArg:] {
		if a.Required {
			return &Error{
				Kind:  OccurrenceBound,
				Index: a.Index,
				Arg:   a.Name,
				Want:  1,
				Msg:   "missing required argument",
			}
		}
	}

	switch {
	case len(st.leftover) > 0 && st.cfg.Unconsumed == settings.NotAllowed:
		return &Error{
			Kind:   UnconsumedPolicy,
			Index:  -1,
			Tokens: st.leftover,
			Got:    len(st.leftover),
			Msg:    fmt.Sprintf("unexpected %q", st.leftover),
		}
	case len(st.leftover) > 0 && st.d.Leftover == nil:
		return &Error{
			Kind:   UnconsumedPolicy,
			Index:  -1,
			Tokens: st.leftover,
			Got:    len(st.leftover),
			Msg:    fmt.Sprintf("unexpected %q, %v has no leftover field", st.leftover, st.d.Type),
		}
	case len(st.leftover) > 0:
		if st.d.Global != nil {
			ok, err := st.validateLeftover()
			if err != nil {
				return err
			}
			if !ok {
				if !st.cfg.ContinueOnFailedValidation {
					return &Error{
						Kind:   ValidationRejected,
						Index:  -1,
						Tokens: st.leftover,
						Got:    len(st.leftover),
						Msg:    fmt.Sprintf("validator %s rejected %q", st.d.Global.Func, st.leftover),
					}
				}
				return nil
			}
		}
		v := reflect.ValueOf(st.leftover).Convert(st.d.Leftover.Type)
		return st.set(*st.d.Leftover, v, "")
	case st.cfg.Unconsumed == settings.Required:
		return &Error{
			Kind:  UnconsumedPolicy,
			Index: -1,
			Want:  1,
			Msg:   "at least one is required",
		}
	}
	return nil
}

func (st *state) set(slot settings.Slot, v reflect.Value, sw string) error {
	if !v.IsValid() {
		return &settings.DescriptorError{Type: st.d.Type, Switch: sw, Index: -1, Msg: "no value to assign"}
	}
	if !v.Type().AssignableTo(slot.Type) {
		return &settings.DescriptorError{
			Type:   st.d.Type,
			Switch: sw,
			Index:  -1,
			Msg:    fmt.Sprintf("value of type %v is not assignable to %v", v.Type(), slot.Type),
		}
	}
	slot.Set(st.inst, v)
	return nil
}
