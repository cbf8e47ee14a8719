// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package settings

// Validate checks the descriptor for consistency under cfg and returns the
// first problem found as a *DescriptorError. The result is computed once
// per distinct configuration and reused.
func (d *Descriptor) Validate(cfg Config) error {
	err, _ := d.checked.LoadOrInit(cfg.checkKey(), func() error {
		if err := d.validate(cfg); err != nil {
			return err
		}
		return nil
	})
	return err
}

func (d *Descriptor) validate(cfg Config) *DescriptorError {
	if err := d.validateSwitches(cfg); err != nil {
		return err
	}
	if err := d.validateArguments(); err != nil {
		return err
	}
	if err := d.validateLeftover(cfg); err != nil {
		return err
	}
	return d.validateValidators(cfg)
}

func (d *Descriptor) validateSwitches(cfg Config) *DescriptorError {
	for i, s := range d.Switches {
		for _, o := range d.Switches[:i] {
			if cfg.SameName(o.Name, s.Name) {
				return d.switchErr(s, "duplicate switch name (also declared on field %s)", o.Field)
			}
		}
		for _, name := range s.Exclusive {
			if cfg.SameName(name, s.Name) {
				return d.switchErr(s, "switch is exclusive of itself")
			}
			if d.SwitchNamed(cfg, name) == nil {
				return d.switchErr(s, "exclusive of unknown switch %q", name)
			}
		}
		switch {
		case s.MinOccurs < 0:
			return d.switchErr(s, "minimum occurrences %d is negative", s.MinOccurs)
		case s.MaxOccurs == 0 || s.MaxOccurs < Unlimited:
			return d.switchErr(s, "maximum occurrences %d must be positive or unlimited", s.MaxOccurs)
		case s.MaxOccurs > 0 && s.MinOccurs > s.MaxOccurs:
			return d.switchErr(s, "minimum occurrences %d exceeds maximum %d", s.MinOccurs, s.MaxOccurs)
		case s.MinArgs < 0:
			return d.switchErr(s, "minimum arguments %d is negative", s.MinArgs)
		case s.MaxArgs < Unlimited:
			return d.switchErr(s, "maximum arguments %d must be non-negative or unlimited", s.MaxArgs)
		case s.MaxArgs >= 0 && s.MinArgs > s.MaxArgs:
			return d.switchErr(s, "minimum arguments %d exceeds maximum %d", s.MinArgs, s.MaxArgs)
		}
		if s.Separator != nil && !s.Target.IsCollection() && !s.Target.IsFlags() {
			return d.switchErr(s, "separator on a %v field", s.Target.Kind)
		}
		if !s.Target.IsCollection() && (s.MaxArgs > 1 || s.MinArgs > 1) {
			return d.switchErr(s, "more than one argument on a %v field", s.Target.Kind)
		}
		if !s.SetValue.IsValid() || !s.SetValue.Type().AssignableTo(s.Slot.Type) {
			return d.switchErr(s, "set value is not assignable to %v", s.Slot.Type)
		}
	}

	rules := d.Rules(cfg)
	for i, s := range d.Switches {
		if s.MinOccurs == 0 {
			continue
		}
		for _, o := range d.Switches[i+1:] {
			if o.MinOccurs > 0 && rules.Excludes(s.ID, o.ID) {
				return d.switchErr(s, "required switch is exclusive of required switch %q", o.Name)
			}
		}
	}
	return nil
}

func (d *Descriptor) validateArguments() *DescriptorError {
	for i, a := range d.Arguments {
		switch {
		case a.Index < 0:
			return d.argErr(a, "negative index")
		case i > 0 && d.Arguments[i-1].Index == a.Index:
			return d.argErr(a, "index also declared on field %s", d.Arguments[i-1].Field)
		case a.Index != i:
			return d.argErr(a, "indices must be contiguous from 0, missing %d", i)
		case a.Target.IsCollection():
			return d.argErr(a, "positional argument cannot be a collection")
		}
	}
	return nil
}

func (d *Descriptor) validateLeftover(cfg Config) *DescriptorError {
	if cfg.Unconsumed == Required && d.Leftover == nil {
		return &DescriptorError{Type: d.Type, Index: -1, Msg: "leftover arguments are required but there is no leftover field"}
	}
	var global *Validator
	for _, v := range d.Validators {
		if !v.Global {
			continue
		}
		if global != nil {
			return d.validatorErr(v, "second leftover validator, %s is already bound", global.Func)
		}
		global = v
	}
	if global == nil {
		return nil
	}
	if cfg.Unconsumed == NotAllowed {
		return d.validatorErr(global, "leftover validator with leftover arguments not allowed")
	}
	if d.Leftover == nil {
		return d.validatorErr(global, "leftover validator without a leftover field")
	}
	return nil
}

func (d *Descriptor) validateValidators(cfg Config) *DescriptorError {
	for i, v := range d.Validators {
		switch {
		case v.Global:
		case v.Switch != "" && v.Index >= 0:
			return d.validatorErr(v, "bound to both a switch and a positional index")
		case v.Switch == "" && v.Index < 0:
			return d.validatorErr(v, "not bound to anything")
		case v.Switch != "":
			if d.SwitchNamed(cfg, v.Switch) == nil {
				return d.validatorErr(v, "no switch named %q", v.Switch)
			}
			for _, o := range d.Validators[:i] {
				if !o.Global && o.Index < 0 && cfg.SameName(o.Switch, v.Switch) {
					return d.validatorErr(v, "switch already validated by %s", o.Func)
				}
			}
		default:
			if !d.hasArgument(v.Index) {
				return d.validatorErr(v, "no positional argument %d", v.Index)
			}
			for _, o := range d.Validators[:i] {
				if !o.Global && o.Switch == "" && o.Index == v.Index {
					return d.validatorErr(v, "argument already validated by %s", o.Func)
				}
			}
		}
		if msg := v.shapeError(); msg != "" {
			return d.validatorErr(v, "%s", msg)
		}
	}
	return nil
}

func (d *Descriptor) hasArgument(index int) bool {
	for _, a := range d.Arguments {
		if a.Index == index {
			return true
		}
	}
	return false
}
